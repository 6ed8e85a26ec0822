// Package ollama completes prompts with a local Ollama server.
package ollama

import (
	"cmp"
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/docmatch/internal/adapters/driven/apiclient"
	"github.com/custodia-labs/docmatch/internal/core/domain"
	"github.com/custodia-labs/docmatch/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultLLMModel   = "llama3.2"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig configures the service. No field is required.
type LLMConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService calls POST /api/generate without streaming.
type LLMService struct {
	api   *apiclient.Client
	model string
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// NewLLMService fills in defaults for any unset field.
func NewLLMService(cfg LLMConfig) *LLMService {
	return &LLMService{
		api:   apiclient.New("ollama", cmp.Or(cfg.BaseURL, DefaultBaseURL), cmp.Or(cfg.Timeout, DefaultLLMTimeout)),
		model: cmp.Or(cfg.Model, DefaultLLMModel),
	}
}

// ComposePrompt folds the system instruction into a single generate prompt.
func ComposePrompt(system, user string) string {
	return fmt.Sprintf("System: %s\n\nUser: %s\n\n", system, user)
}

// Complete runs one generate call over the composed prompt.
func (s *LLMService) Complete(ctx context.Context, system, user string) (string, error) {
	const op = "ollama complete"

	var resp generateResponse
	req := generateRequest{Model: s.model, Prompt: ComposePrompt(system, user)}
	if err := s.api.PostJSON(ctx, op, "/api/generate", req, &resp); err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", domain.ProviderError(op, resp.Error, nil)
	}
	return resp.Response, nil
}

func (s *LLMService) ModelName() string { return s.model }

// Ping lists local models, which checks the server is up without loading one.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.api.Get(ctx, "ollama ping", "/api/tags")
}

func (s *LLMService) Close() error { return nil }
