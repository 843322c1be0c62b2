package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"fieldops.service/internal/app"
	"fieldops.service/internal/config"
	"fieldops.service/internal/core"
	"fieldops.service/internal/worker"
	"fieldops.service/internal/worker/email"
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

	if cfg.EmailSQSQueueURL == "" {
		log.Fatal().Msg("EMAIL_SQS_QUEUE_URL is required")
	}

	shutdownTracer, err := telemetry.InitTracer(context.Background(), cfg.ServiceName+"-email-worker", cfg.OTelEndpoint, os.Stdout)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init tracer")
	}
	defer func() {
		_ = shutdownTracer(context.Background())
	}()

	// The worker directory is read from the same backend the API writes to.
	b, closeBackend, err := app.OpenBackend(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening backend")
	}
	defer closeBackend()

	// AWS SDK Config
	awsCfg, err := aws.NewAWSConfig(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to load SDK config")
	}

	// Initialize Dependencies
	emailService := core.NewSESEmailService(aws.NewSESClient(awsCfg), cfg.EmailSender)
	processor := email.NewProcessor(emailService, core.NewWorkerService(b))

	// Start Worker
	ctx, cancel := context.WithCancel(context.Background())
	consumer := worker.NewWorker(aws.NewSQSClient(awsCfg), cfg.EmailSQSQueueURL, processor)
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
