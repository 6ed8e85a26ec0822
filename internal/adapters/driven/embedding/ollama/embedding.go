// Package ollama embeds text with a local Ollama server.
package ollama

import (
	"cmp"
	"context"
	"time"

	"github.com/custodia-labs/docmatch/internal/adapters/driven/apiclient"
	"github.com/custodia-labs/docmatch/internal/core/domain"
	"github.com/custodia-labs/docmatch/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultModel      = "nomic-embed-text"
	DefaultTimeout    = 30 * time.Second
	DefaultDimensions = 768
)

// Config configures the service. No field is required.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration

	// Dimensions is the vector size. Zero means DefaultDimensions and a
	// negative value adopts the size of the first response.
	Dimensions int
}

// EmbeddingService calls POST /api/embeddings.
type EmbeddingService struct {
	api   *apiclient.Client
	model string
	dims  *apiclient.Dims
}

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// NewEmbeddingService fills in defaults for any unset field.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	return &EmbeddingService{
		api:   apiclient.New("ollama", cmp.Or(cfg.BaseURL, DefaultBaseURL), cmp.Or(cfg.Timeout, DefaultTimeout)),
		model: cmp.Or(cfg.Model, DefaultModel),
		dims:  apiclient.NewDims(cmp.Or(cfg.Dimensions, DefaultDimensions)),
	}
}

// Embed returns the vector for text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	const op = "ollama embed"

	var resp embedResponse
	if err := s.api.PostJSON(ctx, op, "/api/embeddings", embedRequest{Model: s.model, Prompt: text}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embedding) == 0 {
		return nil, domain.ProviderError(op, "no embedding returned", nil)
	}

	vec := apiclient.Float32(resp.Embedding)
	if err := s.dims.Check(op, len(vec)); err != nil {
		return nil, err
	}
	return vec, nil
}

// Dimensions is 0 until the first response when the size was not known.
func (s *EmbeddingService) Dimensions() int { return s.dims.Get() }

func (s *EmbeddingService) ModelName() string { return s.model }

func (s *EmbeddingService) Close() error { return nil }

// Ping lists local models, which checks the server is up without loading one.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.api.Get(ctx, "ollama ping", "/api/tags")
}
