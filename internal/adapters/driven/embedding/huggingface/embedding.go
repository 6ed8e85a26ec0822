// Package huggingface provides an embedding service adapter using the
// Hugging Face hosted inference API.
package huggingface

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/custodia-labs/docmatch/internal/adapters/driven/apiclient"
	"github.com/custodia-labs/docmatch/internal/core/domain"
	"github.com/custodia-labs/docmatch/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultBaseURL = "https://router.huggingface.co/hf-inference/models"
	DefaultModel   = "sentence-transformers/all-MiniLM-L6-v2"
	DefaultTimeout = 30 * time.Second

	// MaxInputRunes bounds the text sent per request.
	MaxInputRunes = 2000
)

// Config configures the service. APIKey is required.
type Config struct {
	APIKey string

	// BaseURL is the models endpoint prefix; the model id is appended.
	BaseURL string

	// Model is a feature-extraction model id.
	Model string

	Timeout time.Duration

	// Dimensions is the expected vector size. Zero adopts the first response.
	Dimensions int
}

// EmbeddingService posts to {BaseURL}/{Model} and mean-pools token output.
type EmbeddingService struct {
	api   *apiclient.Client
	model string
	dims  *apiclient.Dims
}

type embedRequest struct {
	Inputs  string       `json:"inputs"`
	Options embedOptions `json:"options"`
}

type embedOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

// NewEmbeddingService validates cfg and fills in defaults.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, domain.ConfigurationError("huggingface", "API key is required")
	}
	return &EmbeddingService{
		api: apiclient.New("huggingface",
			cmp.Or(cfg.BaseURL, DefaultBaseURL),
			cmp.Or(cfg.Timeout, DefaultTimeout),
			apiclient.WithBearer(cfg.APIKey)),
		model: cmp.Or(cfg.Model, DefaultModel),
		dims:  apiclient.NewDims(cfg.Dimensions),
	}, nil
}

// Embed returns the vector for the first MaxInputRunes of text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	const op = "huggingface embed"

	body, err := s.api.Post(ctx, op, "/"+s.model, embedRequest{
		Inputs:  truncate(text, MaxInputRunes),
		Options: embedOptions{WaitForModel: true},
	})
	if err != nil {
		return nil, err
	}

	vec, err := decodeEmbedding(body)
	if err != nil {
		return nil, domain.ProviderError(op, "decode response", err)
	}
	if err := s.dims.Check(op, len(vec)); err != nil {
		return nil, err
	}
	return vec, nil
}

var errEmpty = errors.New("empty embedding")

// decodeEmbedding accepts a flat vector, a token matrix, or a batch of one
// token matrix.
func decodeEmbedding(body []byte) ([]float32, error) {
	var flat []float64
	if err := json.Unmarshal(body, &flat); err == nil {
		if len(flat) == 0 {
			return nil, errEmpty
		}
		return apiclient.Float32(flat), nil
	}

	var matrix [][]float64
	if err := json.Unmarshal(body, &matrix); err == nil {
		return meanPool(matrix)
	}

	var batch [][][]float64
	if err := json.Unmarshal(body, &batch); err == nil && len(batch) > 0 {
		return meanPool(batch[0])
	}

	return nil, errors.New("unexpected response shape")
}

func meanPool(rows [][]float64) ([]float32, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errEmpty
	}
	dims := len(rows[0])
	sum := make([]float64, dims)
	for _, row := range rows {
		if len(row) != dims {
			return nil, errors.New("ragged token matrix")
		}
		for i, v := range row {
			sum[i] += v
		}
	}
	for i := range sum {
		sum[i] /= float64(len(rows))
	}
	return apiclient.Float32(sum), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Dimensions is 0 before the first call when it was not configured.
func (s *EmbeddingService) Dimensions() int { return s.dims.Get() }

func (s *EmbeddingService) ModelName() string { return s.model }

func (s *EmbeddingService) Close() error { return nil }

// Ping embeds a short probe. The router has no cheaper authenticated call.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	_, err := s.Embed(ctx, "ping")
	return err
}
