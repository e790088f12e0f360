// Package app provides the application context and dependency management
// for the mrmscat CLI: configuration, logging, and a lazily built catalog
// client shared by every command.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hdwx/mrms"
	"github.com/hdwx/mrms/internal/appcontext"
	"github.com/hdwx/mrms/internal/cmd/output"
	"github.com/hdwx/mrms/pkg/errors"
	"github.com/hdwx/mrms/pkg/logging"
	"github.com/hdwx/mrms/pkg/metrics"
	"github.com/hdwx/mrms/pkg/reconcile"
)

var _ appcontext.Interface = (*App)(nil)

// App represents the mrmscat application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// Catalog client (lazy-initialized, singleton)
	mu      sync.RWMutex
	client  mrms.Client
	metrics *metrics.Recorder
}

// New creates a new App instance with the given version information and
// the configuration found in the environment.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, err
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the --format value, or table on a terminal and JSON
// otherwise.
func (a *App) OutputFormat() string {
	return string(output.DetectFormat(a.config.Format))
}

// StatusFile returns the configured status document path.
func (a *App) StatusFile() string {
	return a.config.StatusFile
}

// Client returns the catalog client, creating it lazily if needed.
func (a *App) Client() (mrms.Client, error) {
	a.mu.RLock()
	if a.client != nil {
		c := a.client
		a.mu.RUnlock()
		return c, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client != nil {
		return a.client, nil
	}

	c, err := mrms.New(a.clientOptions()...)
	if err != nil {
		return nil, errors.NewConfigError("client", "creating catalog client", err)
	}

	a.client = c
	return c, nil
}

// Shutdown flushes the metrics textfile, if one is configured.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.RLock()
	recorder := a.metrics
	a.mu.RUnlock()

	if recorder == nil || a.config.MetricsTextfile == "" {
		return nil
	}
	if err := recorder.WriteTextfile(a.config.MetricsTextfile); err != nil {
		return err
	}
	a.logger.Debug().Str("path", a.config.MetricsTextfile).Msg("Wrote metrics textfile")
	return nil
}

// clientOptions constructs client options from the app configuration.
// Callers hold a.mu.
func (a *App) clientOptions() []mrms.Option {
	opts := []mrms.Option{
		mrms.WithOutputRoot(a.config.OutputRoot),
		mrms.WithConflictPolicy(reconcile.Policy(a.config.ConflictPolicy)),
		mrms.WithReloadSeconds(a.config.ReloadSeconds),
		mrms.WithConcurrency(a.config.Concurrency),
	}

	if a.config.MetricsTextfile != "" {
		if a.metrics == nil {
			a.metrics = metrics.New()
		}
		opts = append(opts, mrms.WithMetrics(a.metrics))
	}

	return opts
}

// useLogger replaces the app logger and makes it the library default.
func (a *App) useLogger(logger zerolog.Logger) {
	a.logger = &logger
	logging.SetDefault(logger)
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		if config == nil {
			return errors.NewValidationError("config", nil, "config is required")
		}
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithClient sets a custom catalog client (useful for testing).
func WithClient(c mrms.Client) Option {
	return func(a *App) error {
		a.client = c
		return nil
	}
}
