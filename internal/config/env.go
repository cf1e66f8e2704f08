package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// envPrefix is the prefix for all environment variables.
const envPrefix = "DOCVEC"

// EnvConfig holds environment-based configuration.
// Field names map to environment variables with the DOCVEC_ prefix,
// e.g. DOCVEC_DATA_DIR, DOCVEC_EMBEDDING_DIMENSION.
type EnvConfig struct {
	// DataDir is the data directory path.
	// Default: ~/.docvec
	DataDir string `envconfig:"DATA_DIR"`

	// LogLevel is the log verbosity level.
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// EmbeddingDimension is the expected embedding vector length.
	EmbeddingDimension int `envconfig:"EMBEDDING_DIMENSION" default:"384"`

	// TextBudgetChars caps the length of text sent to the embedding model.
	TextBudgetChars int `envconfig:"TEXT_BUDGET_CHARS" default:"512"`

	// MaxRetries caps retry attempts for transient store failures.
	MaxRetries int `envconfig:"MAX_RETRIES" default:"3"`

	// RetryBaseDelay is the initial retry backoff delay.
	RetryBaseDelay time.Duration `envconfig:"RETRY_BASE_DELAY" default:"100ms"`

	// DeleteBatchSize is the batch size for bulk deletes.
	DeleteBatchSize int `envconfig:"DELETE_BATCH_SIZE" default:"100"`

	// SearchLimit is the default similarity search result limit.
	SearchLimit int `envconfig:"SEARCH_LIMIT" default:"10"`
}

// LoadEnv reads configuration from the environment.
func LoadEnv() (EnvConfig, error) {
	var env EnvConfig
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return EnvConfig{}, fmt.Errorf("process environment config: %w", err)
	}
	return env, nil
}

// ToAppConfig converts environment configuration into an AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	return NewAppConfigWithOptions(
		WithDataDir(e.DataDir),
		WithLogLevel(e.LogLevel),
		WithLogFormat(e.LogFormat),
		WithEmbeddingDimension(e.EmbeddingDimension),
		WithTextBudgetChars(e.TextBudgetChars),
		WithMaxRetries(e.MaxRetries),
		WithRetryBaseDelay(e.RetryBaseDelay),
		WithDeleteBatchSize(e.DeleteBatchSize),
		WithSearchLimit(e.SearchLimit),
	)
}
