package persistence

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/docvec/docvec/domain/index"
	"github.com/docvec/docvec/domain/search"
	"github.com/docvec/docvec/internal/config"
	"github.com/docvec/docvec/internal/database"
	"github.com/docvec/docvec/internal/retry"
)

const initKey = "initialize"

// deleteSampleSize caps the number of failed ids reported in a
// PartialDeleteError.
const deleteSampleSize = 5

// EmbeddingStore is the SQLite-backed gateway to the embedding index.
// It owns the table lifecycle and wraps every operation in validation
// and retry/backoff.
//
// Initialization is lazy and shared: the first caller opens the table,
// concurrent callers converge on that one attempt, and a failed attempt
// leaves the store uninitialized so a later caller can retry.
type EmbeddingStore struct {
	db        database.Database
	logger    *slog.Logger
	retryCfg  retry.Config
	batchSize int
	dimension int

	flight singleflight.Group
	mu     sync.Mutex
	ready  bool
}

// NewEmbeddingStore creates an EmbeddingStore. The table is not touched
// until the first operation or an explicit Initialize call.
func NewEmbeddingStore(db database.Database, cfg config.AppConfig, logger *slog.Logger) *EmbeddingStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmbeddingStore{
		db:     db,
		logger: logger,
		retryCfg: retry.Config{
			MaxAttempts: cfg.MaxRetries(),
			BaseDelay:   cfg.RetryBaseDelay(),
			MaxDelay:    cfg.RetryMaxDelay(),
			Multiplier:  cfg.BackoffFactor(),
		},
		batchSize: cfg.DeleteBatchSize(),
		dimension: cfg.EmbeddingDimension(),
	}
}

// Initialize brings the store to its Ready state: migrates the meta table,
// checks the schema-version marker and creates or rebuilds the embeddings
// table. Idempotent; concurrent callers share a single attempt.
func (s *EmbeddingStore) Initialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.ready {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	_, err, _ := s.flight.Do(initKey, func() (any, error) {
		if err := ensureSchema(s.db, s.logger); err != nil {
			return nil, &index.InitializationError{Cat: initCategory(err), Err: err}
		}
		s.mu.Lock()
		s.ready = true
		s.mu.Unlock()
		return nil, nil
	})
	return err
}

// initCategory maps a setup failure onto the initialization error taxonomy:
// permission, filesystem, database, table, memory or unknown.
func initCategory(err error) index.Category {
	switch cat := index.Classify(err); cat {
	case index.CategoryPermission, index.CategoryFilesystem, index.CategoryMemory:
		return cat
	case index.CategorySchema, index.CategoryConstraint, index.CategoryTable:
		return index.CategoryTable
	case index.CategoryConnection, index.CategoryLock, index.CategoryTimeout, index.CategoryDatabase:
		return index.CategoryDatabase
	default:
		return index.CategoryUnknown
	}
}

// Upsert stores a record, replacing any record with the same id. The
// underlying engine has no native upsert, so this is an explicit delete
// followed by an insert; the pair runs in one transaction and is retried
// atomically on transient failures.
func (s *EmbeddingStore) Upsert(ctx context.Context, record index.Record) error {
	if err := s.Initialize(ctx); err != nil {
		return err
	}
	if err := validateRecord(record); err != nil {
		return err
	}

	model := toModel(record)
	_, err := retry.Do(ctx, s.retryCfg, index.Transient, func() (struct{}, error) {
		err := s.db.Session(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("id = ?", model.ID).Delete(&EmbeddingModel{}).Error; err != nil {
				return err
			}
			return tx.Create(&model).Error
		})
		return struct{}{}, err
	})
	if err != nil {
		return &index.StoreError{Op: "upsert", Cat: index.Classify(err), Err: err}
	}
	return nil
}

// validateRecord checks the invariants every stored record must satisfy.
func validateRecord(r index.Record) error {
	if r.ID() == "" {
		return index.NewValidationError("id", "must not be empty")
	}
	if r.Text() == "" {
		return index.NewValidationError("text", "must not be empty")
	}
	if r.FilePath() == "" {
		return index.NewValidationError("filePath", "must not be empty")
	}
	return index.ValidateVector(r.Vector())
}

// Delete removes ids in sequential fixed-size batches. A batch that still
// fails with an infrastructure-class error after retries aborts the
// remaining batches; other failures are recorded and processing continues.
// If any id failed, a *PartialDeleteError is returned after all reachable
// batches were attempted.
func (s *EmbeddingStore) Delete(ctx context.Context, ids []string) error {
	if err := s.Initialize(ctx); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	var deleted int
	var failed []string
	var lastErr error

	for start := 0; start < len(ids); start += s.batchSize {
		end := min(start+s.batchSize, len(ids))
		batch := ids[start:end]

		_, err := retry.Do(ctx, s.retryCfg, index.Transient, func() (struct{}, error) {
			return struct{}{}, s.db.Session(ctx).
				Where("id IN ?", batch).
				Delete(&EmbeddingModel{}).Error
		})
		if err == nil {
			deleted += len(batch)
			continue
		}

		lastErr = err
		failed = append(failed, batch...)
		s.logger.Warn("delete batch failed",
			"batch_size", len(batch),
			"category", index.Classify(err),
			"error", err,
		)

		if index.Infrastructure(err) {
			// The store is likely unreachable; remaining batches would
			// only compound retries against a dead resource.
			failed = append(failed, ids[end:]...)
			break
		}
	}

	if len(failed) > 0 {
		sample := failed
		if len(sample) > deleteSampleSize {
			sample = sample[:deleteSampleSize]
		}
		return &index.PartialDeleteError{
			Deleted: deleted,
			Failed:  len(failed),
			Sample:  sample,
			Err:     lastErr,
		}
	}
	return nil
}

// IDsByFilePath returns the ids of every record of the given file via an
// indexed lookup on the file_path column.
func (s *EmbeddingStore) IDsByFilePath(ctx context.Context, filePath string) ([]string, error) {
	if err := s.Initialize(ctx); err != nil {
		return nil, err
	}
	if filePath == "" {
		return nil, index.NewValidationError("filePath", "must not be empty")
	}

	ids, err := retry.Do(ctx, s.retryCfg, index.Transient, func() ([]string, error) {
		var found []string
		err := s.db.Session(ctx).
			Model(&EmbeddingModel{}).
			Where("file_path = ?", filePath).
			Pluck("id", &found).Error
		return found, err
	})
	if err != nil {
		return nil, &index.StoreError{Op: "query", Cat: index.Classify(err), Err: err}
	}
	return ids, nil
}

// DeleteFileEmbeddings removes every record whose id carries the file's
// prefix. Used when a file is deleted outright.
func (s *EmbeddingStore) DeleteFileEmbeddings(ctx context.Context, filePath string) error {
	if err := s.Initialize(ctx); err != nil {
		return err
	}
	if filePath == "" {
		return index.NewValidationError("filePath", "must not be empty")
	}

	prefix := index.FilePrefix(filePath)
	_, err := retry.Do(ctx, s.retryCfg, index.Transient, func() (struct{}, error) {
		return struct{}{}, s.db.Session(ctx).
			Where("id LIKE ? ESCAPE '\\'", likePattern(prefix)).
			Delete(&EmbeddingModel{}).Error
	})
	if err != nil {
		return &index.StoreError{Op: "delete", Cat: index.Classify(err), Err: err}
	}
	return nil
}

// likePattern escapes LIKE metacharacters in prefix and appends the
// wildcard, so a literal "%" or "_" in a file path cannot over-match.
func likePattern(prefix string) string {
	escaped := make([]byte, 0, len(prefix)+4)
	for i := 0; i < len(prefix); i++ {
		switch prefix[i] {
		case '%', '_', '\\':
			escaped = append(escaped, '\\')
		}
		escaped = append(escaped, prefix[i])
	}
	return string(escaped) + "%"
}

// Search returns the records most similar to the query vector, highest
// score first. Distance is converted to a bounded score via 1/(1+|d|).
//
// All vectors are loaded and ranked in memory, like the rest of the
// SQLite-backed search path; acceptable while per-workspace record counts
// stay small.
func (s *EmbeddingStore) Search(ctx context.Context, vector []float64, limit int) ([]search.Result, error) {
	if err := s.Initialize(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, index.NewValidationError("limit", "must be positive")
	}
	if err := index.ValidateVector(vector); err != nil {
		return nil, err
	}
	if s.dimension > 0 && len(vector) != s.dimension {
		return nil, index.NewValidationError("vector",
			fmt.Sprintf("dimension %d does not match store dimension %d", len(vector), s.dimension))
	}

	models, err := retry.Do(ctx, s.retryCfg, index.Transient, func() ([]EmbeddingModel, error) {
		var found []EmbeddingModel
		err := s.db.Session(ctx).Find(&found).Error
		return found, err
	})
	if err != nil {
		return nil, &index.StoreError{Op: "search", Cat: index.Classify(err), Err: err}
	}

	valid := models[:0]
	for _, m := range models {
		if len(m.Embedding) == 0 {
			s.logger.Warn("skipping record with empty embedding", "id", m.ID)
			continue
		}
		valid = append(valid, m)
	}

	matches := topKNearest(vector, valid, limit)
	results := make([]search.Result, len(matches))
	for i, m := range matches {
		results[i] = search.NewResult(
			m.model.ID,
			m.model.Text,
			m.model.FilePath,
			search.ScoreFromDistance(m.distance),
		)
	}
	return results, nil
}

var _ index.Store = (*EmbeddingStore)(nil)
