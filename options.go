package docvec

import (
	"log/slog"
	"time"

	"github.com/docvec/docvec/domain/search"
	"github.com/docvec/docvec/infrastructure/provider"
	"github.com/docvec/docvec/internal/config"
)

// clientConfig holds configuration for Client construction.
// Use newClientConfig() to create with defaults from internal/config.
type clientConfig struct {
	dbPath        string
	modelDir      string
	workspaceRoot string
	configFile    string
	dotenvPath    string
	loadEnv       bool
	embedder      search.Embedder
	logger        *slog.Logger
	appOpts       []config.AppConfigOption
}

func newClientConfig() *clientConfig {
	return &clientConfig{}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithSQLite sets the SQLite database file path.
// Defaults to {dataDir}/docvec.db.
func WithSQLite(path string) Option {
	return func(c *clientConfig) {
		c.dbPath = path
	}
}

// WithDataDir sets the data directory for the database and model files.
func WithDataDir(dir string) Option {
	return func(c *clientConfig) {
		c.appOpts = append(c.appOpts, config.WithDataDir(dir))
	}
}

// WithModelDir sets the directory where built-in model files are stored.
// Defaults to {dataDir}/models if not specified.
func WithModelDir(dir string) Option {
	return func(c *clientConfig) {
		c.modelDir = dir
	}
}

// WithWorkspaceRoot sets the workspace root that absolute file paths are
// made relative to. Callers passing workspace-relative paths can omit it.
func WithWorkspaceRoot(dir string) Option {
	return func(c *clientConfig) {
		c.workspaceRoot = dir
	}
}

// WithEmbedder sets a custom embedding provider.
func WithEmbedder(e search.Embedder) Option {
	return func(c *clientConfig) {
		c.embedder = e
	}
}

// WithOpenAI sets an OpenAI-compatible API as the embedding provider.
func WithOpenAI(apiKey string) Option {
	return func(c *clientConfig) {
		c.embedder = provider.NewOpenAIEmbedder(provider.OpenAIConfig{APIKey: apiKey})
	}
}

// WithOpenAIConfig sets an OpenAI-compatible embedding provider with
// custom configuration.
func WithOpenAIConfig(cfg provider.OpenAIConfig) Option {
	return func(c *clientConfig) {
		c.embedder = provider.NewOpenAIEmbedder(cfg)
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

// WithEnvironment loads configuration from DOCVEC_* environment variables
// and, when present, a .env file in the working directory.
func WithEnvironment() Option {
	return func(c *clientConfig) {
		c.loadEnv = true
	}
}

// WithDotEnv loads environment variables from the given .env file before
// reading DOCVEC_* configuration. Implies WithEnvironment.
func WithDotEnv(path string) Option {
	return func(c *clientConfig) {
		c.loadEnv = true
		c.dotenvPath = path
	}
}

// WithConfigFile overlays configuration from a YAML file. A missing file
// is ignored.
func WithConfigFile(path string) Option {
	return func(c *clientConfig) {
		c.configFile = path
	}
}

// WithExpectedDimension sets the expected embedding vector length.
// Defaults to 384.
func WithExpectedDimension(n int) Option {
	return func(c *clientConfig) {
		c.appOpts = append(c.appOpts, config.WithEmbeddingDimension(n))
	}
}

// WithTextBudget caps the number of characters sent to the embedding model
// per symbol. Defaults to 512.
func WithTextBudget(n int) Option {
	return func(c *clientConfig) {
		c.appOpts = append(c.appOpts, config.WithTextBudgetChars(n))
	}
}

// WithMaxRetries caps retry attempts for transient store failures.
// Defaults to 3.
func WithMaxRetries(n int) Option {
	return func(c *clientConfig) {
		c.appOpts = append(c.appOpts, config.WithMaxRetries(n))
	}
}

// WithRetryBaseDelay sets the initial retry backoff delay. Lower values
// speed up tests; defaults to 100ms.
func WithRetryBaseDelay(d time.Duration) Option {
	return func(c *clientConfig) {
		c.appOpts = append(c.appOpts, config.WithRetryBaseDelay(d))
	}
}

// WithDeleteBatchSize sets the batch size for bulk deletes. Defaults to 100.
func WithDeleteBatchSize(n int) Option {
	return func(c *clientConfig) {
		c.appOpts = append(c.appOpts, config.WithDeleteBatchSize(n))
	}
}

// WithSearchLimit sets the default similarity search result limit.
// Defaults to 10.
func WithSearchLimit(n int) Option {
	return func(c *clientConfig) {
		c.appOpts = append(c.appOpts, config.WithSearchLimit(n))
	}
}

// WithLogLevel sets the log verbosity level (DEBUG, INFO, WARN, ERROR).
func WithLogLevel(level string) Option {
	return func(c *clientConfig) {
		c.appOpts = append(c.appOpts, config.WithLogLevel(level))
	}
}

// WithLogFormat sets the log output format (pretty or json).
func WithLogFormat(format string) Option {
	return func(c *clientConfig) {
		c.appOpts = append(c.appOpts, config.WithLogFormat(format))
	}
}
