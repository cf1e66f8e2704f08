// Package search defines the embedding and similarity-search contracts.
package search

import "context"

// Embedder converts text into a fixed-length embedding vector.
// Implementations must be deterministic for an unchanged model and input.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}
