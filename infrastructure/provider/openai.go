package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/docvec/docvec/domain/index"
	"github.com/docvec/docvec/domain/search"
	"github.com/docvec/docvec/internal/retry"
)

// DefaultOpenAIEmbeddingModel is used when no model is configured.
const DefaultOpenAIEmbeddingModel = "text-embedding-3-small"

// errEmptyEmbeddingResponse indicates the API returned HTTP 200 but no
// embedding data. Transient upstream issues (rate limiting behind a 200
// status) can produce such responses, so it is retryable.
var errEmptyEmbeddingResponse = errors.New("empty embedding response")

// OpenAIEmbedder generates embeddings through an OpenAI-compatible API.
// It is the remote alternative to the local HugotEmbedder and shares the
// same retry/backoff behavior as the rest of the stack.
type OpenAIEmbedder struct {
	client   *openai.Client
	model    string
	budget   int
	retryCfg retry.Config
}

// OpenAIConfig holds the connection settings for an OpenAI-compatible
// embedding endpoint.
type OpenAIConfig struct {
	APIKey          string
	BaseURL         string
	Model           string
	Timeout         time.Duration
	TextBudgetChars int
	MaxRetries      int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffFactor   float64
}

// NewOpenAIEmbedder creates an OpenAIEmbedder from configuration. Zero
// values fall back to sensible defaults.
func NewOpenAIEmbedder(cfg OpenAIConfig) *OpenAIEmbedder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIEmbeddingModel
	}

	retryCfg := retry.DefaultConfig()
	if cfg.MaxRetries > 0 {
		retryCfg.MaxAttempts = cfg.MaxRetries
	}
	if cfg.InitialDelay > 0 {
		retryCfg.BaseDelay = cfg.InitialDelay
	}
	if cfg.MaxDelay > 0 {
		retryCfg.MaxDelay = cfg.MaxDelay
	}
	if cfg.BackoffFactor > 0 {
		retryCfg.Multiplier = cfg.BackoffFactor
	}

	return &OpenAIEmbedder{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    model,
		budget:   cfg.TextBudgetChars,
		retryCfg: retryCfg,
	}
}

// Embed generates the embedding vector for one piece of documentation text.
func (p *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	input := preprocessText(text, p.budget)
	if input == "" {
		return nil, index.NewValidationError("text", "must not be empty or whitespace-only")
	}

	req := openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(p.model),
		Input: []string{input},
	}

	resp, err := retry.Do(ctx, p.retryCfg, openAIRetryable, func() (openai.EmbeddingResponse, error) {
		resp, err := p.client.CreateEmbeddings(ctx, req)
		if err != nil {
			return resp, err
		}
		if len(resp.Data) != 1 {
			return resp, fmt.Errorf("%w: got %d vectors for one input", errEmptyEmbeddingResponse, len(resp.Data))
		}
		return resp, nil
	})
	if err != nil {
		return nil, fmt.Errorf("openai embedding: %w", err)
	}

	data := resp.Data[0].Embedding
	vector := make([]float64, len(data))
	for i, v := range data {
		vector[i] = float64(v)
	}

	if err := index.ValidateVector(vector); err != nil {
		return nil, fmt.Errorf("openai embedding response invalid: %w", err)
	}
	return vector, nil
}

// Close is a no-op for the remote embedder.
func (p *OpenAIEmbedder) Close() error {
	return nil
}

// openAIRetryable reports whether an embedding API error is worth retrying:
// rate limits, server-side failures, network timeouts and empty responses.
func openAIRetryable(err error) bool {
	if errors.Is(err, errEmptyEmbeddingResponse) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	// RequestError covers transport-level failures before a response
	// arrives; those are network conditions and retryable.
	var reqErr *openai.RequestError
	return errors.As(err, &reqErr)
}

var _ search.Embedder = (*OpenAIEmbedder)(nil)
