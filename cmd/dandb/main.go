// Command dandb calls the DandB API from the command line. Credentials and
// the token cache backend come from DANDB_* environment variables; see
// loadConfig.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/birbparty/dandb-go/internal/telemetry"
)

func main() {
	os.Exit(realMain(os.Args[1:]))
}

func realMain(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	telCfg := telemetry.NewConfigFromEnv()
	telCfg.ServiceName = "dandb-cli"
	if os.Getenv("LOG_LEVEL") == "" {
		telCfg.LogLevel = "warn"
	}
	if err := telemetry.Init(ctx, telCfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize telemetry: %v\n", err)
		return 1
	}
	defer func() { _ = telemetry.Shutdown(context.Background()) }()
	log := telemetry.L()

	if len(args) == 0 || args[0] == "help" || args[0] == "-h" {
		usage(os.Stderr)
		return 2
	}

	cfg, err := loadConfig()
	if err != nil {
		log.WithError(err).Error("Failed to load configuration")
		return 1
	}

	tokens, closer, err := openTokenCache(ctx, cfg.TokenCache)
	if err != nil {
		log.WithError(err).WithField("backend", cfg.TokenCache).Error("Failed to open token cache")
		return 1
	}
	defer closer.Close()

	observer := telemetry.NewObserver(log, telemetry.DefaultMetrics(), telemetry.Tracer())
	client, err := newClient(cfg, tokens, observer)
	if err != nil {
		log.WithError(err).Error("Failed to create client")
		return 1
	}
	defer client.Close()

	err = run(ctx, client, args, os.Stdout)
	var invalid *InvalidResponseError
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		fmt.Fprintln(os.Stderr, err)
		return 2
	case errors.As(err, &invalid):
		log.WithField("code", invalid.StatusCode).Warn(invalid.Error())
		return 3
	default:
		log.WithError(err).Error("Request failed")
		return 1
	}
}
