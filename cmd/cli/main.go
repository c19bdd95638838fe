package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/de-tools/report-atlas/pkg/runtime/app"
	"github.com/de-tools/report-atlas/pkg/runtime/terminal"
	"github.com/de-tools/report-atlas/pkg/services/config"
	"github.com/de-tools/report-atlas/pkg/services/export"
	"github.com/de-tools/report-atlas/pkg/store/client"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, client.ErrAuthExpired) {
			err = fmt.Errorf("%w: credentials expired, run with a fresh token", err)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	settings, err := config.LoadSettings(os.Getenv("REPORTS_CONFIG"))
	if err != nil {
		return err
	}

	logger := app.NewLogger(settings.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx)

	a, err := app.New(ctx, settings, logger, true)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close tracking store")
		}
	}()

	sink, err := export.NewSink(ctx, settings.Export)
	if err != nil {
		return err
	}

	cli := terminal.NewCLI(terminal.Options{
		Reports: a.Reports,
		Uploads: a.Uploads,
		Metrics: a.Metrics,
		Sink:    sink,
		Polling: a.AwaitOptions(),
		Output:  os.Stdout,
	})
	return cli.Execute(ctx)
}
