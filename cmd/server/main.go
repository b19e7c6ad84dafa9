package main

import (
	"context"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/akeren/trustlink-waitlist/config"
	"github.com/akeren/trustlink-waitlist/domain"
	"github.com/akeren/trustlink-waitlist/internal/log"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := log.NewLoggerWithJSONOutput()
	logger.Info("TrustLink waitlist server starting")

	appConfig, err := config.LoadApplicationConfiguration(logger, autoMigrateRequested(os.Args[1:]))
	if err != nil {
		logger.Error("Failed to load application configuration", "error", err.Error())
		os.Exit(1)
	}

	domain.SetupCoreDomain(appConfig)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server...")
		if err := appConfig.RouterService.RunHTTPServer(); err != nil {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		logger.Error("Server error", "error", err)
		appConfig.Cleanup()
		os.Exit(1)
	case <-ctx.Done():
		logger.Info("Shutdown signal received, draining in-flight requests")
		shutdown(appConfig)
	}
}

// autoMigrateRequested reports whether --auto-migrate (or -m) was passed.
func autoMigrateRequested(args []string) bool {
	return slices.ContainsFunc(args, func(arg string) bool {
		arg = strings.ToLower(arg)
		return arg == "--auto-migrate" || arg == "-m"
	})
}

// shutdown stops accepting requests, waits for in-flight ones, then closes
// the database pool and tracer.
func shutdown(appConfig *config.ApplicationConfig) {
	logger := appConfig.Logger

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := appConfig.RouterService.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	} else {
		logger.Info("HTTP server shut down gracefully")
	}
	appConfig.Cleanup()

	logger.Info("Graceful shutdown completed")
}
