package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/birbparty/dandb-go/internal/cleanup"
	"github.com/birbparty/dandb-go/internal/sandbox"
	"github.com/birbparty/dandb-go/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telCfg := telemetry.NewConfigFromEnv()
	telCfg.ServiceName = "dandb-sandbox"
	if err := telemetry.Init(ctx, telCfg); err != nil {
		telemetry.L().WithError(err).Fatal("Failed to initialize telemetry")
	}
	defer func() { _ = telemetry.Shutdown(context.Background()) }()
	log := telemetry.L()

	cfg, err := sandbox.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	store := sandbox.NewStore(cfg.UserTokenTTL)
	if cfg.SeedFixtures {
		sandbox.Seed(store)
		log.WithField("email", sandbox.DemoEmail).Info("✅ Seeded demo businesses, pages and user")
	}

	sweeper := cleanup.NewService(cleanup.LoadConfig())
	sweeper.Register("sandbox", store)
	go sweeper.Start(ctx)

	app := sandbox.NewApp(cfg, store, telemetry.DefaultMetrics(), prometheus.DefaultGatherer)

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("🛑 Shutting down gracefully...")
		cancel()
		if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
			log.WithError(err).Error("Server forced to shutdown")
		}
	}()

	log.WithFields(map[string]interface{}{
		"address":   cfg.Address(),
		"client_id": cfg.ClientID,
		"metrics":   cfg.MetricsPath,
	}).Info("🚀 DandB sandbox listening")

	if err := app.Listen(cfg.Address()); err != nil {
		log.WithError(err).Fatal("Failed to start server")
	}
}
