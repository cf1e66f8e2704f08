// Package config provides library configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Default configuration values.
const (
	DefaultLogLevel           = "INFO"
	DefaultLogFormat          = "pretty"
	DefaultEmbeddingDimension = 384
	DefaultTextBudgetChars    = 512
	DefaultMaxRetries         = 3
	DefaultRetryBaseDelay     = 100 * time.Millisecond
	DefaultRetryMaxDelay      = 5 * time.Second
	DefaultBackoffFactor      = 2.0
	DefaultDeleteBatchSize    = 100
	DefaultSearchLimit        = 10
	DefaultEmbedderModelDir   = "models"
)

// DefaultDataDir returns the default data directory (~/.docvec).
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".docvec"
	}
	return filepath.Join(home, ".docvec")
}

// PrepareDataDir ensures the data directory exists and returns its
// absolute path. An empty dir selects the default.
func PrepareDataDir(dir string) (string, error) {
	if dir == "" {
		dir = DefaultDataDir()
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve data directory %q: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return "", fmt.Errorf("create data directory %q: %w", abs, err)
	}
	return abs, nil
}

// AppConfig holds resolved application configuration.
type AppConfig struct {
	logLevel           string
	logFormat          string
	dataDir            string
	embeddingDimension int
	textBudgetChars    int
	maxRetries         int
	retryBaseDelay     time.Duration
	retryMaxDelay      time.Duration
	backoffFactor      float64
	deleteBatchSize    int
	searchLimit        int
}

// NewAppConfig creates an AppConfig with defaults.
func NewAppConfig() AppConfig {
	return AppConfig{
		logLevel:           DefaultLogLevel,
		logFormat:          DefaultLogFormat,
		dataDir:            DefaultDataDir(),
		embeddingDimension: DefaultEmbeddingDimension,
		textBudgetChars:    DefaultTextBudgetChars,
		maxRetries:         DefaultMaxRetries,
		retryBaseDelay:     DefaultRetryBaseDelay,
		retryMaxDelay:      DefaultRetryMaxDelay,
		backoffFactor:      DefaultBackoffFactor,
		deleteBatchSize:    DefaultDeleteBatchSize,
		searchLimit:        DefaultSearchLimit,
	}
}

// AppConfigOption configures an AppConfig.
type AppConfigOption func(*AppConfig)

// NewAppConfigWithOptions creates an AppConfig with defaults and applies options.
func NewAppConfigWithOptions(opts ...AppConfigOption) AppConfig {
	cfg := NewAppConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithLogLevel sets the log verbosity level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) {
		if level != "" {
			c.logLevel = level
		}
	}
}

// WithLogFormat sets the log output format (pretty or json).
func WithLogFormat(format string) AppConfigOption {
	return func(c *AppConfig) {
		if format != "" {
			c.logFormat = format
		}
	}
}

// WithDataDir sets the data directory.
func WithDataDir(dir string) AppConfigOption {
	return func(c *AppConfig) {
		if dir != "" {
			c.dataDir = dir
		}
	}
}

// WithEmbeddingDimension sets the expected embedding dimensionality.
func WithEmbeddingDimension(dim int) AppConfigOption {
	return func(c *AppConfig) {
		if dim > 0 {
			c.embeddingDimension = dim
		}
	}
}

// WithTextBudgetChars sets the character budget for embedded text.
func WithTextBudgetChars(n int) AppConfigOption {
	return func(c *AppConfig) {
		if n > 0 {
			c.textBudgetChars = n
		}
	}
}

// WithMaxRetries sets the retry attempt cap for store operations.
func WithMaxRetries(n int) AppConfigOption {
	return func(c *AppConfig) {
		if n > 0 {
			c.maxRetries = n
		}
	}
}

// WithRetryBaseDelay sets the initial retry backoff delay.
func WithRetryBaseDelay(d time.Duration) AppConfigOption {
	return func(c *AppConfig) {
		if d > 0 {
			c.retryBaseDelay = d
		}
	}
}

// WithDeleteBatchSize sets the batch size for bulk deletes.
func WithDeleteBatchSize(n int) AppConfigOption {
	return func(c *AppConfig) {
		if n > 0 {
			c.deleteBatchSize = n
		}
	}
}

// WithSearchLimit sets the default similarity search result limit.
func WithSearchLimit(n int) AppConfigOption {
	return func(c *AppConfig) {
		if n > 0 {
			c.searchLimit = n
		}
	}
}

// LogLevel returns the log verbosity level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log output format.
func (c AppConfig) LogFormat() string { return c.logFormat }

// DataDir returns the data directory.
func (c AppConfig) DataDir() string { return c.dataDir }

// EmbeddingDimension returns the expected embedding dimensionality.
func (c AppConfig) EmbeddingDimension() int { return c.embeddingDimension }

// TextBudgetChars returns the character budget for embedded text.
func (c AppConfig) TextBudgetChars() int { return c.textBudgetChars }

// MaxRetries returns the retry attempt cap for store operations.
func (c AppConfig) MaxRetries() int { return c.maxRetries }

// RetryBaseDelay returns the initial retry backoff delay.
func (c AppConfig) RetryBaseDelay() time.Duration { return c.retryBaseDelay }

// RetryMaxDelay returns the retry backoff delay ceiling.
func (c AppConfig) RetryMaxDelay() time.Duration { return c.retryMaxDelay }

// BackoffFactor returns the retry backoff multiplier.
func (c AppConfig) BackoffFactor() float64 { return c.backoffFactor }

// DeleteBatchSize returns the batch size for bulk deletes.
func (c AppConfig) DeleteBatchSize() int { return c.deleteBatchSize }

// SearchLimit returns the default similarity search result limit.
func (c AppConfig) SearchLimit() int { return c.searchLimit }
