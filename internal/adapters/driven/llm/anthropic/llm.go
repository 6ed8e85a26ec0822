// Package anthropic completes prompts with the Anthropic Messages API.
package anthropic

import (
	"cmp"
	"context"
	"strings"
	"time"

	"github.com/custodia-labs/docmatch/internal/adapters/driven/apiclient"
	"github.com/custodia-labs/docmatch/internal/core/domain"
	"github.com/custodia-labs/docmatch/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-3-5-sonnet-latest"
	DefaultTimeout   = 120 * time.Second
	DefaultMaxTokens = 1024

	anthropicVersion = "2023-06-01"
)

// Config configures the service. APIKey is required.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService calls POST /v1/messages.
type LLMService struct {
	api   *apiclient.Client
	model string
}

type messagesRequest struct {
	Model     string               `json:"model"`
	Messages  []driven.ChatMessage `json:"messages"`
	MaxTokens int                  `json:"max_tokens"`
	System    string               `json:"system,omitempty"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// NewLLMService validates cfg and fills in defaults.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, domain.ConfigurationError("anthropic", "API key is required")
	}
	return &LLMService{
		api: apiclient.New("anthropic",
			cmp.Or(cfg.BaseURL, DefaultBaseURL),
			cmp.Or(cfg.Timeout, DefaultTimeout),
			apiclient.WithHeader("x-api-key", cfg.APIKey),
			apiclient.WithHeader("anthropic-version", anthropicVersion)),
		model: cmp.Or(cfg.Model, DefaultModel),
	}, nil
}

// Complete sends user as the only message with system as the top-level
// system field, and joins the text blocks of the reply.
func (s *LLMService) Complete(ctx context.Context, system, user string) (string, error) {
	const op = "anthropic complete"

	req := messagesRequest{
		Model:     s.model,
		Messages:  []driven.ChatMessage{{Role: "user", Content: user}},
		MaxTokens: DefaultMaxTokens,
		System:    system,
	}
	var resp messagesResponse
	if err := s.api.PostJSON(ctx, op, "/v1/messages", req, &resp); err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", domain.ProviderError(op, "no text content returned", nil)
	}
	return sb.String(), nil
}

func (s *LLMService) ModelName() string { return s.model }

// Ping lists models, which checks the key without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.api.Get(ctx, "anthropic ping", "/v1/models")
}

func (s *LLMService) Close() error { return nil }
