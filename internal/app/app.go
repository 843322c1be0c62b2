// Package app assembles the domain services from configuration. Every binary
// goes through it so the API, the workers and the terminal client see the
// same backend.
package app

import (
	"context"
	"fmt"
	"time"

	"fieldops.service/internal/adapters/appwrite"
	"fieldops.service/internal/adapters/memory"
	"fieldops.service/internal/adapters/postgres"
	"fieldops.service/internal/config"
	"fieldops.service/internal/core"
	"fieldops.service/internal/ports/backend"
	"fieldops.service/internal/ports/messaging"
	"fieldops.service/internal/ports/storage"
	"fieldops.service/pkg/aws"
	"fieldops.service/pkg/database"
	"github.com/rs/zerolog/log"
)

type Services struct {
	Auth      *core.AuthService
	Workers   *core.WorkerService
	CheckIns  *core.CheckInService
	Customers *core.CustomerService
	Surveys   *core.SurveyService
	Reports   *core.ReportService
	Captures  *core.CaptureService
	Dashboard *core.DashboardService
}

// NewServices builds the services over one backend. producer and files may be
// nil: events are then dropped and exports are rendered on demand.
func NewServices(cfg config.Config, b backend.Backend, producer messaging.EventProducer, files storage.FileStore) *Services {
	if producer == nil {
		producer = messaging.NewProducer(nil, "", "")
	}
	return &Services{
		Auth:      core.NewAuthService(b),
		Workers:   core.NewWorkerService(b),
		CheckIns:  core.NewCheckInService(b, producer, cfg.CheckInPageSize),
		Customers: core.NewCustomerService(b),
		Surveys:   core.NewSurveyService(b, cfg.SurveyBaseURL),
		Reports:   core.NewReportService(b, producer, files),
		Captures:  core.NewCaptureService(b, files),
		Dashboard: core.NewDashboardService(b, cfg.ActiveWorkerPageSize),
	}
}

// OpenBackend connects to the backend selected by cfg.Backend. The returned
// close function releases its connections.
func OpenBackend(ctx context.Context, cfg config.Config) (backend.Backend, func(), error) {
	switch cfg.Backend {
	case config.BackendMemory, "":
		store := memory.NewStore()
		if cfg.SeedDemo {
			if err := memory.SeedDemo(ctx, store, time.Now().UTC()); err != nil {
				return nil, nil, fmt.Errorf("seed demo data: %w", err)
			}
			log.Info().Msg("Seeded in-memory backend with demo data")
		}
		return store, func() {}, nil

	case config.BackendPostgres:
		db, err := database.NewInstrumentedConnection(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		store := postgres.NewStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		log.Info().Msg("Successfully connected to the database.")
		return store, func() { db.Close() }, nil

	case config.BackendAppwrite:
		client, err := appwrite.NewClient(appwrite.Config{
			Endpoint:    cfg.AppwriteEndpoint,
			ProjectID:   cfg.AppwriteProjectID,
			DatabaseID:  cfg.AppwriteDatabaseID,
			Collections: cfg.Collections(),
			Timeout:     time.Duration(cfg.AppwriteTimeoutSec) * time.Second,
		})
		if err != nil {
			return nil, nil, err
		}
		return client, func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

// Connect opens the configured backend and the AWS side: SQS when a queue URL
// is set, S3 when a bucket is set. The in-memory backend keeps files in
// memory too.
func Connect(ctx context.Context, cfg config.Config) (*Services, func(), error) {
	b, closeBackend, err := OpenBackend(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	var producer messaging.EventProducer
	var files storage.FileStore
	if cfg.Backend == config.BackendMemory || cfg.Backend == "" {
		files = storage.NewMemoryStore()
	}

	if cfg.EmailSQSQueueURL != "" || cfg.ReportSQSQueueURL != "" || cfg.FileBucket != "" {
		awsCfg, err := aws.NewAWSConfig(ctx, cfg)
		if err != nil {
			closeBackend()
			return nil, nil, fmt.Errorf("unable to load SDK config: %w", err)
		}
		if cfg.EmailSQSQueueURL != "" || cfg.ReportSQSQueueURL != "" {
			producer = messaging.NewSQSProducer(aws.NewSQSClient(awsCfg), cfg.EmailSQSQueueURL, cfg.ReportSQSQueueURL)
		}
		if cfg.FileBucket != "" {
			files = storage.NewS3Store(aws.NewS3Client(awsCfg, cfg.IsLocalDev), cfg.FileBucket)
		}
	}

	log.Info().Str("backend", cfg.Backend).Bool("queues", producer != nil).Bool("files", files != nil).Msg("Services wired")
	return NewServices(cfg, b, producer, files), closeBackend, nil
}
