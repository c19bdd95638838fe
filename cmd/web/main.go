package main

import (
	"fmt"
	"net"
	"os"

	"github.com/de-tools/report-atlas/pkg/runtime/app"
	"github.com/de-tools/report-atlas/pkg/server"
	"github.com/de-tools/report-atlas/pkg/services/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the metrics gateway for Report Atlas",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to a YAML settings file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	settings, err := config.LoadSettings(cfgPath)
	if err != nil {
		return err
	}

	logger := app.NewLogger(settings.LogLevel)
	ctx := logger.WithContext(cmd.Context())

	a, err := app.New(ctx, settings, logger, false)
	if err != nil {
		return err
	}

	if settings.Server.Host == "" && settings.Server.Port == "" {
		return fmt.Errorf("missing server configuration: set REPORTS_SERVER_HOST and REPORTS_SERVER_PORT")
	}
	addr := net.JoinHostPort(settings.Server.Host, settings.Server.Port)

	api := server.NewWebAPI(server.Config{
		Addr: addr,
		Dependencies: server.Dependencies{
			Reports: a.Reports,
			Metrics: a.Metrics,
			Logger:  logger,
		},
	})
	return api.Start()
}
