// Package main is the entry point for the logsift API server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cisec/logsift/internal/config"
	"github.com/cisec/logsift/internal/pipeline"
	"github.com/cisec/logsift/internal/server"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

var (
	cfgFile    string
	logLevel   string
	listenAddr string
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "logsiftd",
		Short:   "Cisco syslog classification API server",
		Long:    `logsiftd serves the classification engine over HTTP: parse, summarize and export submitted log lines, with a websocket live feed for ingested records.`,
		Version: version,
		RunE:    run,
	}

	rootCmd.Flags().StringVarP(&cfgFile, "config", "c", "", "config file path (optional)")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "log level (debug, info, warn, error)")
	rootCmd.Flags().StringVarP(&listenAddr, "listen", "a", "", "listen address (overrides config)")

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Commit: ` + commit + `
Build Date: ` + buildDate + "\n")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if cfgFile != "" {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if listenAddr != "" {
		cfg.Server.Listen = listenAddr
	}

	logger := setupLogger(cfg.Logging.Level)

	logger.Info().
		Str("version", version).
		Str("commit", commit).
		Str("build_date", buildDate).
		Msg("Starting logsiftd")

	reg, err := cfg.BuildRegistry()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to build extractor registry")
	}

	p := pipeline.New(reg, logger, pipeline.WithWorkers(cfg.Pipeline.Workers))
	srv := server.New(cfg.Server, p, logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("Shutdown error")
		}
	}()

	if err := srv.Start(); err != nil {
		logger.Error().Err(err).Msg("Server error")
		return err
	}

	logger.Info().Msg("Server stopped")
	return nil
}

func setupLogger(level string) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var l zerolog.Level
	switch level {
	case "debug":
		l = zerolog.DebugLevel
	case "info":
		l = zerolog.InfoLevel
	case "warn":
		l = zerolog.WarnLevel
	case "error":
		l = zerolog.ErrorLevel
	default:
		l = zerolog.InfoLevel
	}

	return zerolog.New(os.Stdout).
		Level(l).
		With().
		Timestamp().
		Str("service", "logsiftd").
		Logger()
}
