package app

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/de-tools/report-atlas/pkg/services/config"
	"github.com/de-tools/report-atlas/pkg/services/metrics"
	"github.com/de-tools/report-atlas/pkg/services/report"
	"github.com/de-tools/report-atlas/pkg/services/upload"
	"github.com/de-tools/report-atlas/pkg/store/client"
	"github.com/de-tools/report-atlas/pkg/store/duckdb"
	"github.com/de-tools/report-atlas/pkg/store/duckdb/tracking"
	"github.com/rs/zerolog"
)

// App wires the services shared by the CLI and the web gateway
type App struct {
	Settings *config.Settings
	Logger   zerolog.Logger
	Client   *client.Client
	Reports  *report.DefaultController
	Uploads  *upload.Tracker
	Metrics  metrics.Fetcher

	db *sql.DB
}

// NewLogger writes JSON logs, or human readable ones at debug level
func NewLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	if lvl <= zerolog.DebugLevel {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			Level(lvl).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}

// New builds the application. withTracking opens the local DuckDB tracking
// store; without it Resume has nothing to resume.
func New(ctx context.Context, settings *config.Settings, logger zerolog.Logger, withTracking bool) (*App, error) {
	baseURL, token, err := resolveBackend(ctx, settings)
	if err != nil {
		return nil, err
	}

	c := client.New(client.Options{
		BaseURL:        baseURL,
		Token:          token,
		RequestTimeout: settings.RequestTimeout,
		UploadTimeout:  settings.UploadTimeout,
		Retry: client.RetryPolicy{
			MaxAttempts: settings.Retry.MaxAttempts,
			BaseDelay:   settings.Retry.BaseDelay,
			Factor:      settings.Retry.Factor,
			MaxDelay:    settings.Retry.MaxDelay,
		},
		Logger: &logger,
	})

	a := &App{
		Settings: settings,
		Logger:   logger,
		Client:   c,
		Uploads:  upload.NewTracker(c).WithTimeout(settings.UploadTimeout),
		Metrics:  metrics.NewFetcher(c),
	}

	opts := report.Options{Defaults: a.AwaitOptions()}
	if withTracking {
		db, err := duckdb.NewDB(duckdb.Settings{DbPath: settings.Database})
		if err != nil {
			return nil, fmt.Errorf("failed to create DuckDB instance: %w", err)
		}
		store, err := tracking.NewStore(db)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to create tracking store: %w", err)
		}
		a.db = db
		opts.Store = store
	}
	a.Reports = report.NewController(c, opts)

	logger.Debug().Str("base_url", baseURL).Str("environment", settings.Environment).Msg("client configured")
	return a, nil
}

// AwaitOptions maps the polling settings. An initial delay of zero in the
// settings polls immediately.
func (a *App) AwaitOptions() report.AwaitOptions {
	initialDelay := a.Settings.Polling.InitialDelay
	if initialDelay <= 0 {
		initialDelay = report.NoInitialDelay
	}
	return report.AwaitOptions{
		PollInterval: a.Settings.Polling.Interval,
		InitialDelay: initialDelay,
		MaxAttempts:  a.Settings.Polling.MaxAttempts,
	}
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// resolveBackend picks the base URL and token source. A credentials profile
// supplies both when configured; otherwise the token comes from the
// environment on every request.
func resolveBackend(ctx context.Context, settings *config.Settings) (string, client.TokenSource, error) {
	if settings.CredentialsPath == "" {
		baseURL, err := settings.ResolveBaseURL()
		if err != nil {
			return "", nil, err
		}
		return baseURL, client.EnvToken(settings.TokenEnv), nil
	}

	registry, err := config.NewRegistry(settings.CredentialsPath)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create config registry: %w", err)
	}
	profile, err := registry.GetProfile(ctx, settings.Profile)
	if err != nil {
		return "", nil, err
	}

	if settings.BaseURL == "" && profile.Host != "" {
		settings.BaseURL = profile.Host
	}
	baseURL, err := settings.ResolveBaseURL()
	if err != nil {
		return "", nil, err
	}
	return baseURL, client.NewProfileToken(registry, settings.Profile), nil
}
