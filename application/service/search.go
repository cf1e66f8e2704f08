package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/docvec/docvec/domain/index"
	"github.com/docvec/docvec/domain/search"
)

// Search answers semantic queries against the embedding index.
type Search struct {
	store        index.Store
	embedder     search.Embedder
	defaultLimit int
	logger       *slog.Logger
}

// NewSearch creates a Search service. defaultLimit is used when a query
// does not specify its own limit.
func NewSearch(store index.Store, embedder search.Embedder, defaultLimit int, logger *slog.Logger) *Search {
	if logger == nil {
		logger = slog.Default()
	}
	return &Search{
		store:        store,
		embedder:     embedder,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
}

// Query embeds the query text and returns the closest stored records,
// highest score first. A non-positive limit selects the configured default.
func (s *Search) Query(ctx context.Context, query string, limit int) ([]search.Result, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := s.store.Search(ctx, vector, limit)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("semantic search complete",
		"results", len(results),
		"limit", limit,
	)
	return results, nil
}
