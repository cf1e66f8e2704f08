// Package service implements the application-level use cases: keeping the
// embedding index aligned with observed source state and querying it.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/docvec/docvec/domain/index"
	"github.com/docvec/docvec/domain/search"
	"github.com/docvec/docvec/domain/symbol"
	"github.com/docvec/docvec/internal/hashutil"
	"github.com/docvec/docvec/internal/log"
	"github.com/docvec/docvec/internal/pathutil"
)

// Sync reconciles the persisted embedding index with the symbols currently
// observed in a source file. It is deliberately forgiving: a reconciliation
// pass reports what happened through metrics and never fails the caller.
type Sync struct {
	store         index.Store
	embedder      search.Embedder
	workspaceRoot string
	logger        *slog.Logger
}

// NewSync creates a Sync service. workspaceRoot anchors absolute file paths;
// it may be empty when callers always pass workspace-relative paths.
func NewSync(store index.Store, embedder search.Embedder, workspaceRoot string, logger *slog.Logger) *Sync {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sync{
		store:         store,
		embedder:      embedder,
		workspaceRoot: workspaceRoot,
		logger:        logger,
	}
}

// SyncFile runs one reconciliation pass for filePath: stale embeddings are
// deleted, new documented symbols are embedded and stored, and everything
// already present is left untouched. The returned metrics are the complete
// account of the pass.
//
// SyncFile never returns an error and never panics. Individual symbol
// failures are counted and the pass continues; an infrastructure-class
// failure (the store is unreachable) abandons the rest of the pass with the
// remaining symbols counted as failed.
func (s *Sync) SyncFile(ctx context.Context, symbols []symbol.CodeSymbol, filePath string) (metrics index.Metrics) {
	ctx = log.WithPassID(ctx, uuid.NewString())
	logger := log.ForPass(ctx, s.logger)

	// pending holds the not-yet-completed symbols, including the one in
	// flight, so a panic anywhere in the pass is converted into failure
	// counts instead of escaping to the caller.
	var pending []symbol.CodeSymbol
	defer func() {
		if r := recover(); r != nil {
			logger.Error("reconciliation pass panicked, abandoning remaining symbols",
				"panic", r,
				"remaining", len(pending),
			)
			metrics.RecordFailures(len(pending))
		}
	}()

	normalized, err := pathutil.Normalize(filePath, s.workspaceRoot)
	if err != nil {
		logger.Error("cannot normalize file path, abandoning pass",
			"file_path", filePath,
			"error", err,
		)
		metrics.RecordFailures(len(symbols))
		return metrics
	}
	logger = logger.With("file_path", normalized)

	existing, err := s.store.IDsByFilePath(ctx, normalized)
	if err != nil {
		// Reconciling against an assumed-empty index is safe: upserts are
		// idempotent and stale rows are caught on a later pass.
		logger.Warn("querying existing ids failed, assuming empty index for file",
			"category", index.Classify(err),
			"error", err,
		)
		existing = nil
	}

	plan, err := index.BuildPlan(existing, symbols, normalized)
	if err != nil {
		logger.Error("building reconciliation plan failed",
			"error", err,
		)
		metrics.RecordFailures(len(symbols))
		return metrics
	}

	if ids := plan.IDsToDelete(); len(ids) > 0 {
		if err := s.store.Delete(ctx, ids); err != nil {
			logger.Warn("deleting stale embeddings failed",
				"count", len(ids),
				"category", index.Classify(err),
				"error", err,
			)
		} else {
			logger.Debug("deleted stale embeddings", "count", len(ids))
		}
	}

	toUpsert := plan.SymbolsToUpsert()
	for i := 0; i < len(toUpsert); i++ {
		pending = toUpsert[i:]
		sym := toUpsert[i]

		text := sym.PlainDocText()
		if text == "" {
			metrics.RecordSkip()
			continue
		}

		if err := s.embedAndStore(ctx, sym, text, normalized); err != nil {
			metrics.RecordFailure()
			logger.Warn("symbol failed",
				"symbol", sym.Name(),
				"category", index.Classify(err),
				"error", err,
			)
			if index.Infrastructure(err) {
				remaining := len(toUpsert) - i - 1
				logger.Error("store unreachable, abandoning remaining symbols",
					"remaining", remaining,
				)
				metrics.RecordFailures(remaining)
				pending = nil
				return metrics
			}
			continue
		}
		metrics.RecordSuccess()
	}
	pending = nil

	logger.Info("reconciliation pass complete",
		"processed", metrics.Processed(),
		"successful", metrics.Successful(),
		"failed", metrics.Failed(),
		"skipped", metrics.Skipped(),
	)
	return metrics
}

// RemoveFile deletes every embedding of a file that no longer exists.
func (s *Sync) RemoveFile(ctx context.Context, filePath string) error {
	normalized, err := pathutil.Normalize(filePath, s.workspaceRoot)
	if err != nil {
		return err
	}
	if err := s.store.DeleteFileEmbeddings(ctx, normalized); err != nil {
		return err
	}
	s.logger.Info("removed file embeddings", "file_path", normalized)
	return nil
}

func (s *Sync) embedAndStore(ctx context.Context, sym symbol.CodeSymbol, text, filePath string) error {
	id, err := index.GenerateID(filePath, sym.Name())
	if err != nil {
		return err
	}

	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed %q: %w", sym.Name(), err)
	}

	record := index.NewRecord(id, text, vector, filePath, hashutil.ContentHash(text))
	return s.store.Upsert(ctx, record)
}
