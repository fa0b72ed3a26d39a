// Command stubserver runs the local in-memory booking API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/lodgely/bookingkit/internal/infrastructure/config"
	"github.com/lodgely/bookingkit/internal/infrastructure/logger"
	"github.com/lodgely/bookingkit/internal/infrastructure/telemetry"
	"github.com/lodgely/bookingkit/internal/stubserver"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting stub booking API",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.Stub.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracer, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName + "-stub",
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() { _ = tracer.Shutdown(context.Background()) }()

	server, err := stubserver.NewServer(cfg.Stub, log)
	if err != nil {
		log.Fatal("Failed to build stub server", zap.Error(err))
	}

	if err := server.Run(ctx); err != nil {
		log.Error("Stub server exited with error", zap.Error(err))
		os.Exit(1)
	}
	log.Info("Stub server stopped")
}
