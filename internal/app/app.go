// Package app initializes and holds long-lived application services,
// acting as a dependency injection container.
package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/prodscout/prodscout/internal/clock/system"
	"github.com/prodscout/prodscout/internal/config"
	"github.com/prodscout/prodscout/internal/logging"
	"github.com/prodscout/prodscout/internal/metrics"
	"github.com/prodscout/prodscout/internal/report"
	"github.com/prodscout/prodscout/internal/research"
	"github.com/prodscout/prodscout/internal/run"
	"github.com/prodscout/prodscout/internal/source"
	"github.com/prodscout/prodscout/internal/source/aliexpress"
	"github.com/prodscout/prodscout/internal/source/amazon"
	"github.com/prodscout/prodscout/internal/source/ebay"
	"github.com/prodscout/prodscout/internal/source/google"
	"github.com/prodscout/prodscout/internal/source/tiktok"
)

// App holds the shared, long-lived services: logger, clock, report
// store, source registry and the run orchestrator. Initialized once at
// startup and handed to the commands that need it.
type App struct {
	cfg    config.Config
	logger *zap.Logger
	clock  research.Clock
	store  *report.Store
	runner *run.Runner
}

// New builds the application services from configuration.
func New(cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	metrics.Init()

	store, err := report.NewStore(cfg.Reports.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("init report store: %w", err)
	}

	clk := system.New()

	timeout := cfg.FetchTimeout()
	ua := cfg.HTTP.UserAgent
	maxRows := cfg.HTTP.MaxRows

	registry := source.NewRegistry(
		google.New(google.Config{UserAgent: ua, Timeout: timeout}),
		amazon.New(amazon.Config{UserAgent: ua, Timeout: timeout, MaxRows: maxRows}),
		ebay.New(ebay.Config{UserAgent: ua, Timeout: timeout, MaxRows: maxRows}),
		aliexpress.New(aliexpress.Config{UserAgent: ua, Timeout: timeout, MaxRows: maxRows}),
		tiktok.New(tiktok.Config{UserAgent: ua, Timeout: timeout, MaxRows: maxRows}),
	)

	dispatcher := source.NewDispatcher(registry, clk, logger)
	runner := run.New(registry, dispatcher, store, clk, logger)

	return &App{
		cfg:    cfg,
		logger: logger,
		clock:  clk,
		store:  store,
		runner: runner,
	}, nil
}

// Close flushes buffered log entries.
func (a *App) Close() {
	_ = a.logger.Sync() //nolint:errcheck // stderr sync failures are unactionable
}

// Config returns the loaded configuration.
func (a *App) Config() config.Config {
	return a.cfg
}

// Logger returns the shared zap logger instance.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Clock returns the shared clock.
func (a *App) Clock() research.Clock {
	return a.clock
}

// Store returns the report store.
func (a *App) Store() *report.Store {
	return a.store
}

// Runner returns the research run orchestrator.
func (a *App) Runner() *run.Runner {
	return a.runner
}
