package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"fieldops.service/internal/app"
	"fieldops.service/internal/config"
	"fieldops.service/internal/worker"
	"fieldops.service/internal/worker/reportgen"
	"fieldops.service/pkg/aws"
	"fieldops.service/pkg/logger"
	"fieldops.service/pkg/telemetry"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load configuration")
	}
	logger.Setup(cfg.IsLocalDev)

	if cfg.ReportSQSQueueURL == "" {
		log.Fatal().Msg("REPORT_SQS_QUEUE_URL is required")
	}

	shutdownTracer, err := telemetry.InitTracer(context.Background(), cfg.ServiceName+"-report-worker", cfg.OTelEndpoint, os.Stdout)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init tracer")
	}
	defer func() {
		_ = shutdownTracer(context.Background())
	}()

	// Backend plus the S3 bucket the exports are uploaded to.
	services, closeBackend, err := app.Connect(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting services")
	}
	defer closeBackend()

	// AWS SDK Config
	awsCfg, err := aws.NewAWSConfig(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to load SDK config")
	}

	processor := reportgen.NewProcessor(services.Reports)

	// Start Worker
	ctx, cancel := context.WithCancel(context.Background())
	consumer := worker.NewWorker(aws.NewSQSClient(awsCfg), cfg.ReportSQSQueueURL, processor)
	consumer.Concurrency = cfg.WorkerConcurrency

	stopped := make(chan struct{})
	go func() {
		consumer.Start(ctx)
		close(stopped)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info().Msg("Shutting down worker...")

	// Cancel the context to signal the worker to stop polling.
	cancel()
	<-stopped

	log.Info().Msg("Worker exited gracefully")
}
