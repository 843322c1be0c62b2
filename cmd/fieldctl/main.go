// Command fieldctl is an interactive terminal client for the field
// operations backend.
package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	"fieldops.service/internal/app"
	"fieldops.service/internal/config"
	"fieldops.service/pkg/logger"
	"fieldops.service/pkg/telemetry"
	"github.com/rs/zerolog/log"
)

func main() {
	demo := flag.Bool("demo", false, "use the in-memory backend seeded with demo data")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load configuration")
	}
	if *demo {
		cfg.Backend = config.BackendMemory
		cfg.SeedDemo = true
	}
	logger.Setup(cfg.IsLocalDev)

	// Spans are only worth keeping when a collector is configured.
	shutdownTracer, err := telemetry.InitTracer(context.Background(), cfg.ServiceName+"-fieldctl", cfg.OTelEndpoint, io.Discard)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init tracer")
	}
	defer func() {
		_ = shutdownTracer(context.Background())
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.EnrichContextWithLogger(ctx)

	services, closeBackend, err := app.Connect(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting services")
	}
	defer closeBackend()

	if _, _, err := services.Auth.Restore(ctx); err != nil {
		log.Warn().Err(err).Msg("Could not restore session")
	}

	newShell(services, os.Stdin, os.Stdout).run(ctx)
}
