package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aescanero/resforecast/internal/application/predictor"
	"github.com/aescanero/resforecast/internal/config"
	"github.com/aescanero/resforecast/internal/logging"
	"github.com/aescanero/resforecast/pkg/adapters/artifact"
	"github.com/aescanero/resforecast/pkg/api/http"

	"go.uber.org/zap"
)

var (
	// Version is set by build flags
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		Debug:      cfg.Debug,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting resource prediction server",
		zap.String("version", Version),
		zap.String("build_time", BuildTime))

	// Load artifacts. A missing or corrupt artifact is a deployment error.
	bundle, err := artifact.Load(artifact.Paths{
		Model:        cfg.Artifacts.ModelPath,
		InputScaler:  cfg.Artifacts.InputScalerPath,
		OutputScaler: cfg.Artifacts.OutputScalerPath,
	}, logger)
	if err != nil {
		logger.Fatal("failed to load artifacts", zap.Error(err))
	}

	pred, err := predictor.New(bundle.Model, bundle.InputScaler, bundle.OutputScaler, logger)
	if err != nil {
		logger.Fatal("artifacts do not fit together", zap.Error(err))
	}

	httpServer := http.NewServer(&http.Config{
		Addr:         cfg.GetHTTPAddr(),
		Debug:        cfg.Debug,
		ReadTimeout:  cfg.Timeouts.HTTPRead,
		WriteTimeout: cfg.Timeouts.HTTPWrite,
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
		Predictor:    pred,
		Logger:       logger,
	})

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	logger.Info("resource prediction server started",
		zap.String("addr", cfg.GetHTTPAddr()),
		zap.Bool("debug", cfg.Debug))

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.Shutdown)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	logger.Info("resource prediction server shut down complete")
}
