// Package openai embeds text with the OpenAI embeddings API or any service
// that speaks the same protocol.
package openai

import (
	"cmp"
	"context"
	"strings"
	"time"

	"github.com/custodia-labs/docmatch/internal/adapters/driven/apiclient"
	"github.com/custodia-labs/docmatch/internal/core/domain"
	"github.com/custodia-labs/docmatch/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "text-embedding-ada-002"
	DefaultTimeout = 30 * time.Second

	fallbackDimensions = 1536
)

// Config configures the service. APIKey is required.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration

	// Dimensions is the vector size. Zero uses the model's known size.
	// text-embedding-3 models are asked to shorten their output to it.
	Dimensions int
}

// EmbeddingService calls POST /embeddings with one input per request.
type EmbeddingService struct {
	api   *apiclient.Client
	model string
	dims  *apiclient.Dims
	// shorten is set for models that accept a dimensions parameter.
	shorten bool
}

type embeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// NewEmbeddingService validates cfg and fills in defaults.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, domain.ConfigurationError("openai", "API key is required")
	}
	model := cmp.Or(cfg.Model, DefaultModel)
	dims := cfg.Dimensions
	if dims <= 0 {
		dims = domain.EmbeddingDimensions()[model]
	}
	if dims <= 0 {
		dims = fallbackDimensions
	}
	api := apiclient.New("openai",
		cmp.Or(cfg.BaseURL, DefaultBaseURL),
		cmp.Or(cfg.Timeout, DefaultTimeout),
		apiclient.WithBearer(cfg.APIKey))

	return &EmbeddingService{
		api:     api,
		model:   model,
		dims:    apiclient.NewDims(dims),
		shorten: strings.HasPrefix(model, "text-embedding-3-"),
	}, nil
}

// Embed returns the vector for text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	const op = "openai embed"

	req := embeddingRequest{Model: s.model, Input: []string{text}}
	if s.shorten {
		req.Dimensions = s.dims.Get()
	}

	var resp embeddingResponse
	if err := s.api.PostJSON(ctx, op, "/embeddings", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, domain.ProviderError(op, "no embedding returned", nil)
	}

	vec := apiclient.Float32(resp.Data[0].Embedding)
	if err := s.dims.Check(op, len(vec)); err != nil {
		return nil, err
	}
	return vec, nil
}

func (s *EmbeddingService) Dimensions() int   { return s.dims.Get() }
func (s *EmbeddingService) ModelName() string { return s.model }
func (s *EmbeddingService) Close() error      { return nil }

// Ping lists models, which checks the key without running inference.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.api.Get(ctx, "openai ping", "/models")
}
