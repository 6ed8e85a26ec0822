// Package openai completes prompts with the OpenAI chat completions API or
// any service that speaks the same protocol.
package openai

import (
	"cmp"
	"context"
	"time"

	"github.com/custodia-labs/docmatch/internal/adapters/driven/apiclient"
	"github.com/custodia-labs/docmatch/internal/core/domain"
	"github.com/custodia-labs/docmatch/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultLLMModel   = "gpt-3.5-turbo"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig configures the service. APIKey is required.
type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService calls POST /chat/completions.
type LLMService struct {
	api   *apiclient.Client
	model string
}

type chatCompletionRequest struct {
	Model    string               `json:"model"`
	Messages []driven.ChatMessage `json:"messages"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message driven.ChatMessage `json:"message"`
	} `json:"choices"`
}

// NewLLMService validates cfg and fills in defaults.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, domain.ConfigurationError("openai", "API key is required")
	}
	return &LLMService{
		api: apiclient.New("openai",
			cmp.Or(cfg.BaseURL, DefaultBaseURL),
			cmp.Or(cfg.Timeout, DefaultLLMTimeout),
			apiclient.WithBearer(cfg.APIKey)),
		model: cmp.Or(cfg.Model, DefaultLLMModel),
	}, nil
}

// Complete sends system (when set) and user as a two-message chat and
// returns the first choice.
func (s *LLMService) Complete(ctx context.Context, system, user string) (string, error) {
	const op = "openai complete"

	messages := make([]driven.ChatMessage, 0, 2)
	if system != "" {
		messages = append(messages, driven.ChatMessage{Role: "system", Content: system})
	}
	messages = append(messages, driven.ChatMessage{Role: "user", Content: user})

	var resp chatCompletionResponse
	if err := s.api.PostJSON(ctx, op, "/chat/completions",
		chatCompletionRequest{Model: s.model, Messages: messages}, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", domain.ProviderError(op, "no response choices returned", nil)
	}
	return resp.Choices[0].Message.Content, nil
}

func (s *LLMService) ModelName() string { return s.model }

// Ping lists models, which checks the key without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.api.Get(ctx, "openai ping", "/models")
}

func (s *LLMService) Close() error { return nil }
