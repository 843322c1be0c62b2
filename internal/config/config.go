package config

import (
	"strings"

	"github.com/spf13/viper"
)

// The services run in containers with their settings passed as environment
// variables. BACKEND picks which document store the domain layer talks to.

type Config struct {
	IsLocalDev  bool   `mapstructure:"IS_LOCAL_DEV"`
	ServiceName string `mapstructure:"SERVICE_NAME"`
	ServerPort  string `mapstructure:"SERVER_PORT"`
	Backend     string `mapstructure:"BACKEND"`
	SeedDemo    bool   `mapstructure:"SEED_DEMO"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`

	AppwriteEndpoint   string `mapstructure:"APPWRITE_ENDPOINT"`
	AppwriteProjectID  string `mapstructure:"APPWRITE_PROJECT_ID"`
	AppwriteDatabaseID string `mapstructure:"APPWRITE_DATABASE_ID"`
	AppwriteTimeoutSec int    `mapstructure:"APPWRITE_TIMEOUT_SECONDS"`

	CollectionWorkers         string `mapstructure:"COLLECTION_WORKERS"`
	CollectionCheckIns        string `mapstructure:"COLLECTION_CHECKINS"`
	CollectionCustomers       string `mapstructure:"COLLECTION_CUSTOMERS"`
	CollectionSurveys         string `mapstructure:"COLLECTION_SURVEYS"`
	CollectionSurveyResponses string `mapstructure:"COLLECTION_SURVEY_RESPONSES"`
	CollectionReports         string `mapstructure:"COLLECTION_REPORTS"`
	CollectionCaptures        string `mapstructure:"COLLECTION_CAPTURES"`

	AWSRegion         string `mapstructure:"AWS_REGION"`
	AWSEndpoint       string `mapstructure:"AWS_ENDPOINT"`
	EmailSQSQueueURL  string `mapstructure:"EMAIL_SQS_QUEUE_URL"`
	ReportSQSQueueURL string `mapstructure:"REPORT_SQS_QUEUE_URL"`
	FileBucket        string `mapstructure:"FILE_BUCKET"`
	EmailSender       string `mapstructure:"EMAIL_SENDER"`

	OTelEndpoint string `mapstructure:"OTEL_EXPORTER_ENDPOINT"`

	SurveyBaseURL        string `mapstructure:"SURVEY_BASE_URL"`
	CheckInPageSize      int    `mapstructure:"CHECKIN_PAGE_SIZE"`
	ActiveWorkerPageSize int    `mapstructure:"ACTIVE_WORKER_PAGE_SIZE"`
	WorkerConcurrency    int    `mapstructure:"WORKER_CONCURRENCY"`
}

// Backend kinds accepted by BACKEND.
const (
	BackendAppwrite = "appwrite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// LoadConfig reads configuration from environment variables on top of defaults.
func LoadConfig() (config Config, err error) {
	v := viper.New()
	setDefaults(v)

	// Read in environment variables that match the keys.
	v.AutomaticEnv()

	err = v.Unmarshal(&config)
	config.Backend = strings.ToLower(strings.TrimSpace(config.Backend))
	return
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("IS_LOCAL_DEV", false)
	v.SetDefault("SERVICE_NAME", "fieldops")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("BACKEND", BackendMemory)
	v.SetDefault("SEED_DEMO", false)

	v.SetDefault("DB_HOST", "db")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "user")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "fieldops_db")

	v.SetDefault("APPWRITE_ENDPOINT", "https://fra.cloud.appwrite.io/v1")
	v.SetDefault("APPWRITE_PROJECT_ID", "")
	v.SetDefault("APPWRITE_DATABASE_ID", "")
	v.SetDefault("APPWRITE_TIMEOUT_SECONDS", 10)

	v.SetDefault("COLLECTION_WORKERS", "workers")
	v.SetDefault("COLLECTION_CHECKINS", "checkins")
	v.SetDefault("COLLECTION_CUSTOMERS", "customers")
	v.SetDefault("COLLECTION_SURVEYS", "surveys")
	v.SetDefault("COLLECTION_SURVEY_RESPONSES", "survey_responses")
	v.SetDefault("COLLECTION_REPORTS", "reports")
	v.SetDefault("COLLECTION_CAPTURES", "captures")

	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("AWS_ENDPOINT", "http://localstack:4566")
	v.SetDefault("EMAIL_SQS_QUEUE_URL", "")
	v.SetDefault("REPORT_SQS_QUEUE_URL", "")
	v.SetDefault("FILE_BUCKET", "")
	v.SetDefault("EMAIL_SENDER", "shifts@fieldops.local")

	v.SetDefault("OTEL_EXPORTER_ENDPOINT", "")

	v.SetDefault("SURVEY_BASE_URL", "https://survey.workforceapp.com")
	v.SetDefault("CHECKIN_PAGE_SIZE", 50)
	v.SetDefault("ACTIVE_WORKER_PAGE_SIZE", 100)
	v.SetDefault("WORKER_CONCURRENCY", 10)
}

// Collections maps the logical collection names used by the domain layer to
// the identifiers the configured backend knows them by.
func (c Config) Collections() map[string]string {
	return map[string]string{
		"workers":          c.CollectionWorkers,
		"checkins":         c.CollectionCheckIns,
		"customers":        c.CollectionCustomers,
		"surveys":          c.CollectionSurveys,
		"survey_responses": c.CollectionSurveyResponses,
		"reports":          c.CollectionReports,
		"captures":         c.CollectionCaptures,
	}
}
