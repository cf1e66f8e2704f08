package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewAppConfig_Defaults(t *testing.T) {
	cfg := NewAppConfig()

	if cfg.LogLevel() != "INFO" {
		t.Errorf("LogLevel() = %q, want INFO", cfg.LogLevel())
	}
	if cfg.EmbeddingDimension() != 384 {
		t.Errorf("EmbeddingDimension() = %d, want 384", cfg.EmbeddingDimension())
	}
	if cfg.TextBudgetChars() != 512 {
		t.Errorf("TextBudgetChars() = %d, want 512", cfg.TextBudgetChars())
	}
	if cfg.MaxRetries() != 3 {
		t.Errorf("MaxRetries() = %d, want 3", cfg.MaxRetries())
	}
	if cfg.DeleteBatchSize() != 100 {
		t.Errorf("DeleteBatchSize() = %d, want 100", cfg.DeleteBatchSize())
	}
	if cfg.SearchLimit() != 10 {
		t.Errorf("SearchLimit() = %d, want 10", cfg.SearchLimit())
	}
}

func TestNewAppConfigWithOptions(t *testing.T) {
	cfg := NewAppConfigWithOptions(
		WithLogLevel("DEBUG"),
		WithLogFormat("json"),
		WithEmbeddingDimension(768),
		WithMaxRetries(5),
		WithRetryBaseDelay(250*time.Millisecond),
	)

	if cfg.LogLevel() != "DEBUG" {
		t.Errorf("LogLevel() = %q, want DEBUG", cfg.LogLevel())
	}
	if cfg.LogFormat() != "json" {
		t.Errorf("LogFormat() = %q, want json", cfg.LogFormat())
	}
	if cfg.EmbeddingDimension() != 768 {
		t.Errorf("EmbeddingDimension() = %d, want 768", cfg.EmbeddingDimension())
	}
	if cfg.MaxRetries() != 5 {
		t.Errorf("MaxRetries() = %d, want 5", cfg.MaxRetries())
	}
	if cfg.RetryBaseDelay() != 250*time.Millisecond {
		t.Errorf("RetryBaseDelay() = %v, want 250ms", cfg.RetryBaseDelay())
	}
}

func TestOptions_IgnoreInvalidValues(t *testing.T) {
	cfg := NewAppConfigWithOptions(
		WithEmbeddingDimension(-1),
		WithMaxRetries(0),
		WithLogLevel(""),
	)

	if cfg.EmbeddingDimension() != DefaultEmbeddingDimension {
		t.Errorf("invalid dimension should keep default, got %d", cfg.EmbeddingDimension())
	}
	if cfg.MaxRetries() != DefaultMaxRetries {
		t.Errorf("invalid retries should keep default, got %d", cfg.MaxRetries())
	}
	if cfg.LogLevel() != DefaultLogLevel {
		t.Errorf("empty level should keep default, got %q", cfg.LogLevel())
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("DOCVEC_LOG_LEVEL", "DEBUG")
	t.Setenv("DOCVEC_EMBEDDING_DIMENSION", "512")
	t.Setenv("DOCVEC_RETRY_BASE_DELAY", "50ms")

	env, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv() error: %v", err)
	}

	cfg := env.ToAppConfig()
	if cfg.LogLevel() != "DEBUG" {
		t.Errorf("LogLevel() = %q, want DEBUG", cfg.LogLevel())
	}
	if cfg.EmbeddingDimension() != 512 {
		t.Errorf("EmbeddingDimension() = %d, want 512", cfg.EmbeddingDimension())
	}
	if cfg.RetryBaseDelay() != 50*time.Millisecond {
		t.Errorf("RetryBaseDelay() = %v, want 50ms", cfg.RetryBaseDelay())
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docvec.yaml")
	content := "log_level: WARN\nembedding_dimension: 768\nsearch_limit: 25\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	fc, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}

	cfg := fc.Apply(NewAppConfig())
	if cfg.LogLevel() != "WARN" {
		t.Errorf("LogLevel() = %q, want WARN", cfg.LogLevel())
	}
	if cfg.EmbeddingDimension() != 768 {
		t.Errorf("EmbeddingDimension() = %d, want 768", cfg.EmbeddingDimension())
	}
	if cfg.SearchLimit() != 25 {
		t.Errorf("SearchLimit() = %d, want 25", cfg.SearchLimit())
	}
	// Fields absent from the file keep their defaults.
	if cfg.MaxRetries() != DefaultMaxRetries {
		t.Errorf("MaxRetries() = %d, want default", cfg.MaxRetries())
	}
}

func TestLoadFile_Missing(t *testing.T) {
	fc, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error, got: %v", err)
	}
	cfg := fc.Apply(NewAppConfig())
	if cfg.LogLevel() != DefaultLogLevel {
		t.Errorf("LogLevel() = %q, want default", cfg.LogLevel())
	}
}

func TestPrepareDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	got, err := PrepareDataDir(dir)
	if err != nil {
		t.Fatalf("PrepareDataDir() error: %v", err)
	}
	info, err := os.Stat(got)
	if err != nil {
		t.Fatalf("stat created dir: %v", err)
	}
	if !info.IsDir() {
		t.Error("expected a directory")
	}
}
