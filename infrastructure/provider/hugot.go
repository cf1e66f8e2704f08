// Package provider implements embedding generation backends.
package provider

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"

	"github.com/docvec/docvec/domain/index"
	"github.com/docvec/docvec/domain/search"
	"github.com/docvec/docvec/internal/config"
)

// ortSingleton holds the process-wide ONNX Runtime session and pipeline.
// ORT only allows one active session per process, so all HugotEmbedder
// instances must share it. The mutex serializes both initialization and
// inference (ORT is not thread-safe).
var ortSingleton struct {
	session  *hugot.Session
	pipeline *pipelines.FeatureExtractionPipeline
	mu       sync.Mutex
	ready    bool
}

// HugotEmbedder generates embeddings locally with an ONNX sentence
// transformer (mean pooling plus normalization). The model is loaded
// lazily on the first Embed call and shared for the life of the process.
//
// Output for a fixed model and input is deterministic, which keeps
// re-embedding of unchanged documentation idempotent.
type HugotEmbedder struct {
	modelDir  string
	budget    int
	dimension int
	logger    *slog.Logger
}

// NewHugotEmbedder creates a HugotEmbedder that looks for model files in
// modelDir. The model is not loaded until the first Embed call.
func NewHugotEmbedder(modelDir string, cfg config.AppConfig, logger *slog.Logger) *HugotEmbedder {
	if logger == nil {
		logger = slog.Default()
	}
	return &HugotEmbedder{
		modelDir:  modelDir,
		budget:    cfg.TextBudgetChars(),
		dimension: cfg.EmbeddingDimension(),
		logger:    logger,
	}
}

// Available reports whether a usable model directory exists on disk.
func (h *HugotEmbedder) Available() bool {
	_, err := h.diskModelPath()
	return err == nil
}

// Embed generates the embedding vector for one piece of documentation text.
func (h *HugotEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	input := preprocessText(text, h.budget)
	if input == "" {
		return nil, index.NewValidationError("text", "must not be empty or whitespace-only")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := h.initialize(); err != nil {
		return nil, fmt.Errorf("initialize embedding model: %w", err)
	}

	// Hold the singleton mutex for inference — ORT is not thread-safe.
	ortSingleton.mu.Lock()
	defer ortSingleton.mu.Unlock()

	result, err := ortSingleton.pipeline.RunPipeline([]string{input})
	if err != nil {
		return nil, fmt.Errorf("run embedding pipeline: %w", err)
	}
	if len(result.Embeddings) != 1 {
		return nil, fmt.Errorf("embedding pipeline returned %d vectors for one input", len(result.Embeddings))
	}

	vec32 := result.Embeddings[0]
	vector := make([]float64, len(vec32))
	for i, v := range vec32 {
		vector[i] = float64(v)
	}

	if err := index.ValidateVector(vector); err != nil {
		return nil, fmt.Errorf("embedding pipeline produced invalid vector: %w", err)
	}
	if h.dimension > 0 && len(vector) != h.dimension {
		h.logger.Warn("embedding dimension differs from configured dimension",
			"got", len(vector),
			"expected", h.dimension,
		)
	}
	return vector, nil
}

func (h *HugotEmbedder) initialize() error {
	ortSingleton.mu.Lock()
	defer ortSingleton.mu.Unlock()

	if ortSingleton.ready {
		return nil
	}

	session, err := newHugotSession()
	if err != nil {
		return fmt.Errorf("create hugot session: %w", err)
	}

	modelPath, err := h.diskModelPath()
	if err != nil {
		_ = session.Destroy()
		return err
	}

	pipelineCfg := hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "docvec-embeddings",
		Options: []hugot.FeatureExtractionOption{
			pipelines.WithNormalization(),
		},
	}
	pipeline, err := hugot.NewPipeline(session, pipelineCfg)
	if err != nil {
		_ = session.Destroy()
		return fmt.Errorf("create feature extraction pipeline: %w", err)
	}

	h.logger.Info("embedding model loaded", "model_path", modelPath)

	ortSingleton.session = session
	ortSingleton.pipeline = pipeline
	ortSingleton.ready = true
	return nil
}

// diskModelPath looks for a model subdirectory containing tokenizer.json
// inside modelDir.
func (h *HugotEmbedder) diskModelPath() (string, error) {
	entries, err := os.ReadDir(h.modelDir)
	if err != nil {
		return "", fmt.Errorf("read model directory %s: %w", h.modelDir, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		candidate := filepath.Join(h.modelDir, entry.Name())
		if _, statErr := os.Stat(filepath.Join(candidate, "tokenizer.json")); statErr == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no model subdirectory with tokenizer.json found in %s", h.modelDir)
}

// Close is a no-op. The ONNX Runtime session is process-global and shared
// across all HugotEmbedder instances; it is cleaned up on process exit.
func (h *HugotEmbedder) Close() error {
	return nil
}

var _ search.Embedder = (*HugotEmbedder)(nil)
