package index

import (
	"context"

	"github.com/docvec/docvec/domain/search"
)

// Store is the gateway to the persisted embedding index. Implementations
// own the table lifecycle and wrap every operation in validation and
// retry/backoff.
type Store interface {
	// Initialize brings the store to its Ready state. Idempotent;
	// concurrent callers share one outcome. Failures are reported as
	// *InitializationError.
	Initialize(ctx context.Context) error

	// Upsert stores a record, replacing any record with the same id.
	Upsert(ctx context.Context, record Record) error

	// Delete removes the given ids in sequential batches. When some ids
	// fail it returns *PartialDeleteError after attempting all reachable
	// batches.
	Delete(ctx context.Context, ids []string) error

	// IDsByFilePath returns the ids of every record of a file.
	IDsByFilePath(ctx context.Context, filePath string) ([]string, error)

	// DeleteFileEmbeddings removes every record whose id carries the
	// file's prefix. Used when a file is deleted outright.
	DeleteFileEmbeddings(ctx context.Context, filePath string) error

	// Search returns the records most similar to the query vector,
	// highest score first.
	Search(ctx context.Context, vector []float64, limit int) ([]search.Result, error)
}
