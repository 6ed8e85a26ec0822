// Package huggingface provides an LLM service adapter using the Hugging Face
// hosted inference API for text-generation models.
package huggingface

import (
	"cmp"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/docmatch/internal/adapters/driven/apiclient"
	"github.com/custodia-labs/docmatch/internal/core/domain"
	"github.com/custodia-labs/docmatch/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL      = "https://router.huggingface.co/hf-inference/models"
	DefaultModel        = "meta-llama/Llama-2-7b-chat-hf"
	DefaultTimeout      = 120 * time.Second
	DefaultMaxNewTokens = 1024
	DefaultTemperature  = 0.3
)

// Config configures the service. APIKey is required.
type Config struct {
	APIKey string

	// BaseURL is the models endpoint prefix; the model id is appended.
	BaseURL string

	// Model is a text-generation model id.
	Model string

	Timeout time.Duration
}

// LLMService posts instruction-formatted prompts to {BaseURL}/{Model}.
type LLMService struct {
	api   *apiclient.Client
	model string
}

type generateRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters generateParameters `json:"parameters"`
	Options    generateOptions    `json:"options"`
}

type generateParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	ReturnFullText bool    `json:"return_full_text"`
}

type generateOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

type generateResponse []struct {
	GeneratedText string `json:"generated_text"`
}

// NewLLMService validates cfg and fills in defaults.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, domain.ConfigurationError("huggingface", "API key is required")
	}
	return &LLMService{
		api: apiclient.New("huggingface",
			cmp.Or(cfg.BaseURL, DefaultBaseURL),
			cmp.Or(cfg.Timeout, DefaultTimeout),
			apiclient.WithBearer(cfg.APIKey)),
		model: cmp.Or(cfg.Model, DefaultModel),
	}, nil
}

// FormatInstruction wraps the system and user text in the instruction
// template used by chat-tuned Llama models.
func FormatInstruction(system, user string) string {
	return fmt.Sprintf("<s>[INST] <<SYS>>\n%s\n<</SYS>>\n\n%s [/INST]", system, user)
}

// Complete generates a reply to the instruction-formatted prompt.
func (s *LLMService) Complete(ctx context.Context, system, user string) (string, error) {
	const op = "huggingface complete"

	req := generateRequest{
		Inputs: FormatInstruction(system, user),
		Parameters: generateParameters{
			MaxNewTokens: DefaultMaxNewTokens,
			Temperature:  DefaultTemperature,
		},
		Options: generateOptions{WaitForModel: true},
	}
	var resp generateResponse
	if err := s.api.PostJSON(ctx, op, "/"+s.model, req, &resp); err != nil {
		return "", err
	}
	if len(resp) == 0 {
		return "", domain.ProviderError(op, "no generated text returned", nil)
	}
	return strings.TrimSpace(resp[0].GeneratedText), nil
}

func (s *LLMService) ModelName() string { return s.model }

// Ping runs a minimal generation. The router has no cheaper authenticated call.
func (s *LLMService) Ping(ctx context.Context) error {
	_, err := s.Complete(ctx, "Reply with OK.", "ping")
	return err
}

func (s *LLMService) Close() error { return nil }
