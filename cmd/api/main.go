// Package main is the entry point for the Leads API server.
//
// It loads configuration, builds the credential source for the configured
// auth mode, wires the staff directory client and lead store into the core
// chassis, and serves HTTP with graceful shutdown on SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"

	"leadsapi/internal/api/handlers"
	"leadsapi/internal/auth"
	"leadsapi/internal/config"
	"leadsapi/internal/core"
	"leadsapi/internal/directory"
	"leadsapi/internal/store"
	"leadsapi/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so that main() can cleanly exit on
// error.
func run() error {
	// The SSM client is lazy and the loader skips resolution entirely when
	// APP_ENV=local, so the provider can be constructed unconditionally.
	cfg, err := config.Load(config.NewSSMProvider(regionFromEnv()))
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("leads API starting",
		"environment", cfg.Environment,
		"auth_mode", cfg.Auth.Mode,
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
		"port", cfg.Server.Port,
	)

	source, err := newCredentialSource(cfg, logger)
	if err != nil {
		return fmt.Errorf("building credential source: %w", err)
	}

	staffDir := directory.NewClient(cfg.StaffDirectory.BaseURL, cfg.StaffDirectory.Timeout, logger)
	leads := store.NewLeadRepository()

	srv, err := core.NewServer(cfg, source, staffDir, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	if cfg.Observability.EnableMetrics {
		metrics, err := newMetricsCollector(cfg, logger)
		if err != nil {
			return fmt.Errorf("creating metrics collector: %w", err)
		}
		srv.Metrics = metrics
	}

	leadHandler := handlers.NewLeadHandler(leads, srv.Validator, logger)
	srv.RouteRegistrars = append(srv.RouteRegistrars, leadHandler.Routes(srv))

	srv.MountRoutes()

	return runHTTPServer(srv, cfg, logger)
}

// newCredentialSource builds the CredentialSource for the configured auth
// mode. The policy engine is identical across modes; only principal
// resolution differs.
func newCredentialSource(cfg *config.Config, logger *slog.Logger) (auth.CredentialSource, error) {
	switch cfg.Auth.Mode {
	case config.AuthModeDemo:
		return &auth.DemoSource{}, nil
	case config.AuthModeJWT:
		return auth.NewJWTSource([]byte(cfg.Auth.JWTSigningKey.Unmask()))
	case config.AuthModeGateway:
		return &auth.GatewaySource{Logger: logger}, nil
	case config.AuthModeNoop:
		return &auth.AnonymousSource{}, nil
	default:
		return nil, fmt.Errorf("unsupported auth mode %q", cfg.Auth.Mode)
	}
}

// newMetricsCollector builds the CloudWatch-backed request metrics collector.
func newMetricsCollector(cfg *config.Config, logger *slog.Logger) (core.MetricsCollector, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for CloudWatch: %w", err)
	}

	client := cloudwatch.NewFromConfig(awsCfg)
	return telemetry.NewCloudWatchCollector(client, cfg.Observability.MetricNamespace, logger), nil
}

// regionFromEnv reads AWS_REGION before configuration is parsed, since the
// SSM provider participates in config loading itself.
func regionFromEnv() string {
	if region := os.Getenv("AWS_REGION"); region != "" {
		return region
	}
	return "us-east-1"
}

// runHTTPServer starts the server in standard HTTP mode with graceful
// shutdown.
func runHTTPServer(srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)

	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("initiating graceful shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

// newLogger creates a structured slog.Logger configured for the given level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: lvl,
	})
	return slog.New(handler)
}
