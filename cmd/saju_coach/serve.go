package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/jonathan/saju-coach/internal/config"
	"github.com/jonathan/saju-coach/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the chart, gap, auth and coaching chat endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default 8080)")
	rootCmd.AddCommand(serveCmd)
}

// resolveConfig layers flags over the environment over the optional config file,
// then fills package defaults.
func resolveConfig(path string, port int) (config.Config, error) {
	cfg := config.FromEnv()

	var file config.Config
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return config.Config{}, err
		}
		file = *loaded
	}
	if port != 0 {
		cfg.Port = port
	}
	cfg = cfg.MergeWithDefaults(file)
	if file.Verbose {
		cfg.Verbose = true
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(configPath, servePort)
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := server.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info("starting server",
		zap.Int("port", cfg.Port),
		zap.String("birth_timezone", cfg.BirthTimezone))
	return srv.Start(ctx)
}
