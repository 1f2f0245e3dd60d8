package config

import (
	"fmt"
	"log"
	"time"

	"github.com/cloo-solutions/hirelens/internal/chunking"
	"github.com/cloo-solutions/hirelens/internal/service"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is read from HIRELENS_* variables. envconfig falls back to the
// unprefixed name, so SENTRY_DSN and ENVIRONMENT work as-is.
type Config struct {
	Port    string `envconfig:"PORT" default:"8080"`
	Debug   bool   `envconfig:"DEBUG" default:"false"`
	LogJSON bool   `envconfig:"LOG_JSON" default:"true"`

	DatabaseURL      string `envconfig:"DATABASE_URL" required:"true"`
	DatabaseMaxConns int32  `envconfig:"DATABASE_MAX_CONNS" default:"10"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"hirelens-archive"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	OpenAIAPIKey   string `envconfig:"OPENAI_API_KEY"`
	EmbeddingModel string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`

	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	GeminiModel  string `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`

	EvalMaxAttempts int           `envconfig:"EVAL_MAX_ATTEMPTS" default:"4"`
	EvalBackoffBase time.Duration `envconfig:"EVAL_BACKOFF_BASE" default:"2s"`
	EvalLeaseTTL    time.Duration `envconfig:"EVAL_LEASE_TTL" default:"5m"`
	RetrievalTopK   int           `envconfig:"RETRIEVAL_TOP_K" default:"8"`

	ChunkTargetChars  int `envconfig:"CHUNK_TARGET_CHARS" default:"800"`
	ChunkOverlapChars int `envconfig:"CHUNK_OVERLAP_CHARS" default:"100"`
	ChunkMinChars     int `envconfig:"CHUNK_MIN_CHARS" default:"200"`

	IndexPollInterval time.Duration `envconfig:"INDEX_POLL_INTERVAL" default:"5s"`
	MigrationsPath    string        `envconfig:"MIGRATIONS_PATH" default:"migrations"`

	// InitOwnerID with InitAPIKey seeds a known key at startup.
	InitOwnerID string `envconfig:"INIT_OWNER_ID"`
	InitAPIKey  string `envconfig:"INIT_API_KEY"`

	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("HIRELENS", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasGemini() bool {
	return c.GeminiAPIKey != ""
}

func (c *Config) HasBootstrapKey() bool {
	return c.InitOwnerID != "" && c.InitAPIKey != ""
}

func (c *Config) HasSentry() bool {
	return c.SentryDSN != ""
}

// ChunkConfig returns the segmenter settings.
func (c *Config) ChunkConfig() chunking.Config {
	return chunking.Config{
		TargetChars:  c.ChunkTargetChars,
		OverlapChars: c.ChunkOverlapChars,
		MinChars:     c.ChunkMinChars,
	}
}

// EvaluationConfig returns the evaluation orchestrator settings.
func (c *Config) EvaluationConfig() service.EvaluationConfig {
	return service.EvaluationConfig{
		Retry: service.RetryPolicy{
			MaxAttempts: c.EvalMaxAttempts,
			BackoffBase: c.EvalBackoffBase,
		},
		LeaseTTL: c.EvalLeaseTTL,
		TopK:     c.RetrievalTopK,
		Model:    c.GeminiModel,
	}
}

// TracesSampleRate samples every trace in development and 10% elsewhere.
func (c *Config) TracesSampleRate() float64 {
	if c.Environment == "development" {
		return 1.0
	}
	return 0.1
}
