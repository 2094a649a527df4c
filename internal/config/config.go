package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	LogLevel string

	// Local persistence
	DataDir string

	// Functions backend (real storage/OCR/LLM clients)
	FunctionsBaseURL string
	FunctionKey      string
	OpenAIDeployment string

	// S3 (alternative image storage backend)
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3BucketName      string
	S3UseSSL          bool

	// Remote call timeout; zero keeps the transport default.
	HTTPTimeout time.Duration

	// Upload limits
	MaxUploadSize int64
}

// Load reads configuration from the environment. Missing backend
// configuration is not an error: the service selector falls back to the
// stub implementations when a backend block is incomplete.
func Load() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		DataDir:           getEnv("DATA_DIR", "data"),
		FunctionsBaseURL:  getEnv("FUNCTIONS_BASE_URL", ""),
		FunctionKey:       getEnv("FUNCTIONS_KEY", ""),
		OpenAIDeployment:  getEnv("OPENAI_DEPLOYMENT", ""),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3BucketName:      getEnv("S3_BUCKET_NAME", "documents"),
		S3UseSSL:          getEnv("S3_USE_SSL", "false") == "true",
		HTTPTimeout:       getEnvDuration("HTTP_TIMEOUT", 0),
		MaxUploadSize:     20 * 1024 * 1024,
	}

	return cfg, nil
}

// FunctionsConfigured reports whether all three values required by the
// real remote clients are present. Partial configuration counts as absent.
func (c *Config) FunctionsConfigured() bool {
	return c.FunctionsBaseURL != "" && c.FunctionKey != "" && c.OpenAIDeployment != ""
}

// S3Configured reports whether the S3 image storage backend can be used.
func (c *Config) S3Configured() bool {
	return c.S3Endpoint != "" && c.S3AccessKeyID != "" && c.S3SecretAccessKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
