package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/varstate/internal/config"
	"github.com/roach88/varstate/internal/export"
	"github.com/roach88/varstate/internal/keygen"
	"github.com/roach88/varstate/internal/store"
	"github.com/roach88/varstate/internal/variable"
)

// session is everything a command needs to touch the store.
type session struct {
	cfg    config.Config
	logger *zap.Logger
	store  *store.Store
	state  *variable.State
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(opts *RootOptions) (config.Config, error) {
	path, allowMissing := opts.ConfigPath, false
	if path == "" {
		path, allowMissing = DefaultConfigFile, true
	}

	cfg, err := config.Load(path, allowMissing)
	if err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}
	if opts.Verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "invalid config", err)
	}
	return cfg, nil
}

// openSession opens the configured store and wires the variable state,
// its key generator and, if enabled, the export listener.
func openSession(opts *RootOptions, stderr io.Writer) (*session, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	logger, err := cfg.NewLogger(stderr)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to build logger", err)
	}

	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	tc := st.Transactions()

	keys, err := keygen.NewDBGenerator(tc, cfg.Partition)
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to create key generator", err)
	}

	stateOpts := []variable.Option{variable.WithLogger(logger.Named("variable"))}
	if cfg.Export.IsEnabled() {
		w := export.NewWriter(tc,
			export.WithNamePrefixes(cfg.Export.NamePrefixes...),
			export.WithLogger(logger.Named("export")),
		)
		stateOpts = append(stateOpts, variable.WithListener(w))
	}

	logger.Debug("session opened",
		zap.String("database", cfg.Database),
		zap.Int32("partition", cfg.Partition),
		zap.Bool("export", cfg.Export.IsEnabled()),
	)

	return &session{
		cfg:    cfg,
		logger: logger,
		store:  st,
		state:  variable.New(tc, keys, stateOpts...),
	}, nil
}

// run executes fn in one transaction.
func (s *session) run(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := s.store.Transactions().Run(ctx, fn); err != nil {
		return WrapExitError(ExitCommandError, "operation failed", err)
	}
	return nil
}

func (s *session) Close() error {
	_ = s.logger.Sync()
	return s.store.Close()
}

// withSession opens a session for the duration of fn.
func withSession(opts *RootOptions, cmd *cobra.Command, fn func(s *session, out *OutputFormatter) error) error {
	s, err := openSession(opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.Close()

	return fn(s, newFormatter(opts, cmd))
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// parseKey parses a scope or workflow key argument.
func parseKey(what, arg string) (int64, error) {
	k, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid %s %q: must be an integer", what, arg))
	}
	return k, nil
}
