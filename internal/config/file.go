package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig mirrors EnvConfig for YAML configuration files. Zero values
// mean "not set" and leave the corresponding default untouched.
type FileConfig struct {
	DataDir            string        `yaml:"data_dir"`
	LogLevel           string        `yaml:"log_level"`
	LogFormat          string        `yaml:"log_format"`
	EmbeddingDimension int           `yaml:"embedding_dimension"`
	TextBudgetChars    int           `yaml:"text_budget_chars"`
	MaxRetries         int           `yaml:"max_retries"`
	RetryBaseDelay     time.Duration `yaml:"retry_base_delay"`
	DeleteBatchSize    int           `yaml:"delete_batch_size"`
	SearchLimit        int           `yaml:"search_limit"`
}

// LoadFile reads a YAML configuration file. A missing file is not an error;
// an unreadable or malformed file is.
func LoadFile(path string) (FileConfig, error) {
	var fc FileConfig

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return fc, nil
	}
	if err != nil {
		return fc, fmt.Errorf("read config file %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("parse config file %q: %w", path, err)
	}
	return fc, nil
}

// Apply overlays the file configuration onto cfg, returning the result.
// Unset fields keep their existing values.
func (f FileConfig) Apply(cfg AppConfig) AppConfig {
	opts := []AppConfigOption{
		WithDataDir(f.DataDir),
		WithLogLevel(f.LogLevel),
		WithLogFormat(f.LogFormat),
		WithEmbeddingDimension(f.EmbeddingDimension),
		WithTextBudgetChars(f.TextBudgetChars),
		WithMaxRetries(f.MaxRetries),
		WithRetryBaseDelay(f.RetryBaseDelay),
		WithDeleteBatchSize(f.DeleteBatchSize),
		WithSearchLimit(f.SearchLimit),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
