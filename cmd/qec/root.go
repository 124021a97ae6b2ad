package main

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/theapemachine/errnie"

	"github.com/theapemachine/qec"
	"github.com/theapemachine/qec/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile string
	Format     string

	v *viper.Viper
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the qec CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{v: viper.New()}
	defaults := qec.NewConfig()

	cmd := &cobra.Command{
		Use:   "qec",
		Short: "Shor code error-correction experiments",
		Long: `Encode a logical bit with the 9-qubit Shor code, inject Pauli faults,
extract syndromes, correct, decode and check the bit survived.

Settings come from flags, QEC_* environment variables, or a --config file
(any format viper reads), in that order of precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ConfigFile, "config", "", "config file")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.Int("workers", defaults.Workers, "worker goroutines")
	flags.Uint64("seed", defaults.Seed, "run seed")
	flags.String("db", "", "sqlite database to record results in")
	flags.Int("rate", 0, "backend submissions per second (0 = unlimited)")
	flags.Int("shots", defaults.Shots, "shots per circuit")
	flags.Bool("ancilla-reset", false, "reset ancillas after syndrome extraction")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewPairsCommand(opts))
	cmd.AddCommand(NewZCheckCommand(opts))
	cmd.AddCommand(NewNoisyCommand(opts))
	cmd.AddCommand(NewSweepCommand(opts))

	return cmd
}

func (opts *RootOptions) load(cmd *cobra.Command) error {
	if !isValidFormat(opts.Format) {
		return WrapExitError(ExitCommandError, "invalid flags",
			errors.Wrapf(qec.ErrConfig, "format %q must be one of %v", opts.Format, ValidFormats))
	}

	v := opts.v
	v.SetEnvPrefix("QEC")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return WrapExitError(ExitCommandError, "binding flags", err)
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return WrapExitError(ExitCommandError, "reading config", err)
		}
	}

	return nil
}

/*
config materialises the merged settings. Integer settings are read as raw
strings and parsed strictly, so a malformed flag, environment variable or
config value is rejected instead of decaying to zero. Subcommand flags that
were not registered simply keep their defaults.
*/
func (opts *RootOptions) config() (*qec.Config, error) {
	v := opts.v
	cfg := qec.NewConfig()

	var err error
	if cfg.Workers, err = positiveInt("workers", v.GetString("workers")); err != nil {
		return nil, err
	}
	if cfg.Shots, err = positiveInt("shots", v.GetString("shots")); err != nil {
		return nil, err
	}
	if cfg.Seed, err = seed(v.GetString("seed")); err != nil {
		return nil, err
	}
	if cfg.RateLimit, err = rate(v.GetString("rate")); err != nil {
		return nil, err
	}

	cfg.DatabasePath = v.GetString("db")
	cfg.AncillaReset = v.GetBool("ancilla-reset")

	if v.IsSet("trials") {
		if cfg.Trials, err = positiveInt("trials", v.GetString("trials")); err != nil {
			return nil, err
		}
	}
	if v.IsSet("error") {
		cfg.ErrorKind = v.GetString("error")
	}
	if v.IsSet("qubit") {
		if cfg.Qubit, err = qubit(v.GetString("qubit")); err != nil {
			return nil, err
		}
	}
	if v.IsSet("draw") {
		cfg.QASMPath = v.GetString("draw")
	}
	if v.IsSet("input") {
		if cfg.InputState, err = inputState(v.GetString("input")); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

/*
session is everything a command needs to run experiments: the pool, the
runner over it, and the store when --db is set. close releases all three.
*/
type session struct {
	cfg    *qec.Config
	pool   *qec.Q
	runner *qec.Runner
	store  *store.Store
}

func (opts *RootOptions) open(ctx context.Context) (*session, error) {
	cfg, err := opts.config()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	s := &session{cfg: cfg}

	if cfg.DatabasePath != "" {
		if s.store, err = store.Open(cfg.DatabasePath); err != nil {
			return nil, WrapExitError(ExitCommandError, "opening results store", err)
		}
	}

	s.pool = qec.NewQ(ctx, cfg.Workers, cfg, qec.NewMetrics())
	s.runner = qec.NewRunner(s.pool, cfg, qec.SimulatorFactory(cfg.Seed))
	return s, nil
}

func (s *session) close() {
	errnie.Info("pool metrics: %v", s.pool.Metrics().ExportMetrics())
	s.pool.Close()

	if s.store != nil {
		s.store.Close()
	}
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
