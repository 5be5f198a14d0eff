package config

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

var singleConfig *Config = nil

type Config struct {
	Database   *dbConfig
	Service    *svcConfig
	Pipeline   *pipelineConfig
	Storage    *storageConfig
	Summarizer *summarizerConfig
}

type dbConfig struct {
	Type     string `envconfig:"DOCFLOW_DB_TYPE" default:"sqlite" validate:"oneof=sqlite pgsql"`
	Hostname string `envconfig:"DOCFLOW_DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DOCFLOW_DB_PORT" default:"5432"`
	Name     string `envconfig:"DOCFLOW_DB_NAME" default:"docflow.db"`
	User     string `envconfig:"DOCFLOW_DB_USER" default:"admin"`
	Password string `envconfig:"DOCFLOW_DB_PASS" default:"adminpass"`
}

type svcConfig struct {
	Address        string `envconfig:"DOCFLOW_ADDRESS" default:":8080"`
	MetricsAddress string `envconfig:"DOCFLOW_METRICS_ADDRESS" default:":8081"`
	LogLevel       string `envconfig:"DOCFLOW_LOG_LEVEL" default:"info"`
}

type pipelineConfig struct {
	MaxUploadBytes    int64         `envconfig:"DOCFLOW_MAX_UPLOAD_BYTES" default:"20971520" validate:"gt=0"`
	SupportedFormats  []string      `envconfig:"DOCFLOW_SUPPORTED_FORMATS" default:"pdf,txt,md,html,csv,xlsx"`
	ExtractionTimeout time.Duration `envconfig:"DOCFLOW_EXTRACTION_TIMEOUT" default:"30s"`
	SummaryTimeout    time.Duration `envconfig:"DOCFLOW_SUMMARY_TIMEOUT" default:"45s"`
	JobTTL            time.Duration `envconfig:"DOCFLOW_JOB_TTL" default:"24h"`
	EvictionInterval  time.Duration `envconfig:"DOCFLOW_EVICTION_INTERVAL" default:"1h"`
}

type storageConfig struct {
	Backend   string `envconfig:"DOCFLOW_STORAGE_BACKEND" default:"local" validate:"oneof=local minio"`
	UploadDir string `envconfig:"DOCFLOW_UPLOAD_DIR" default:"tmp/uploads"`

	MinioEndpoint  string `envconfig:"DOCFLOW_MINIO_ENDPOINT" default:""`
	MinioBucket    string `envconfig:"DOCFLOW_MINIO_BUCKET" default:"docflow-uploads"`
	MinioAccessKey string `envconfig:"DOCFLOW_MINIO_ACCESS_KEY" default:""`
	MinioSecretKey string `envconfig:"DOCFLOW_MINIO_SECRET_KEY" default:""`
	MinioUseSSL    bool   `envconfig:"DOCFLOW_MINIO_USE_SSL" default:"false"`
}

type summarizerConfig struct {
	Model       string  `envconfig:"DOCFLOW_SUMMARY_MODEL" default:"gpt-4o-mini"`
	APIKey      string  `envconfig:"DOCFLOW_OPENAI_API_KEY" default:""`
	BaseURL     string  `envconfig:"DOCFLOW_OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	Temperature float32 `envconfig:"DOCFLOW_SUMMARY_TEMPERATURE" default:"0.2"`
}

func New() (*Config, error) {
	if singleConfig == nil {
		singleConfig = new(Config)
		if err := envconfig.Process("", singleConfig); err != nil {
			return nil, err
		}
		if err := validator.New().Struct(singleConfig); err != nil {
			singleConfig = nil
			return nil, err
		}
	}
	return singleConfig, nil
}

// NewDefault returns a config with defaults only, ignoring the environment.
// Tests use it to get a sqlite-backed, local-storage setup.
func NewDefault() *Config {
	return &Config{
		Database: &dbConfig{
			Type: "sqlite",
			Name: ":memory:",
		},
		Service: &svcConfig{
			Address:        ":8080",
			MetricsAddress: ":8081",
			LogLevel:       "info",
		},
		Pipeline: &pipelineConfig{
			MaxUploadBytes:    20 * 1024 * 1024,
			SupportedFormats:  []string{"pdf", "txt", "md", "html", "csv", "xlsx"},
			ExtractionTimeout: 30 * time.Second,
			SummaryTimeout:    45 * time.Second,
			JobTTL:            24 * time.Hour,
			EvictionInterval:  time.Hour,
		},
		Storage: &storageConfig{
			Backend:   "local",
			UploadDir: "tmp/uploads",
		},
		Summarizer: &summarizerConfig{
			Model:       "gpt-4o-mini",
			BaseURL:     "https://api.openai.com/v1",
			Temperature: 0.2,
		},
	}
}
