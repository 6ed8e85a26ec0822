// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"fmt"
	"time"

	"github.com/custodia-labs/docmatch/internal/adapters/driven/embedding/cached"
	hfembed "github.com/custodia-labs/docmatch/internal/adapters/driven/embedding/huggingface"
	ollamaembed "github.com/custodia-labs/docmatch/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/docmatch/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/docmatch/internal/adapters/driven/llm/anthropic"
	hfllm "github.com/custodia-labs/docmatch/internal/adapters/driven/llm/huggingface"
	ollamallm "github.com/custodia-labs/docmatch/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/docmatch/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/docmatch/internal/core/domain"
	"github.com/custodia-labs/docmatch/internal/core/ports/driven"
)

// Options tune how services are constructed.
type Options struct {
	// Timeout bounds every outbound call. Zero uses the adapter default.
	Timeout time.Duration

	// RequestsPerSecond throttles calls. Zero disables throttling.
	RequestsPerSecond float64

	// CacheSize enables an LRU cache of embeddings when positive.
	CacheSize int
}

// OptionsFromSettings derives construction options from engine settings.
func OptionsFromSettings(engine domain.EngineSettings) Options {
	return Options{
		Timeout:           engine.Timeout(),
		RequestsPerSecond: engine.RequestsPerSecond,
		CacheSize:         cached.DefaultSize,
	}
}

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	Warnings         []string // Non-fatal issues; the affected service is nil.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Initialise builds both services from settings without contacting them.
// A service that cannot be built is left nil and reported as a warning so
// the boundary can still start and report configuration problems per call.
func Initialise(settings *domain.AppSettings) *InitResult {
	result := &InitResult{}
	opts := OptionsFromSettings(settings.Engine)

	embedder, err := CreateEmbeddingService(&settings.Embedding, opts)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("embedding: %v", err))
	}
	result.EmbeddingService = embedder

	llm, err := CreateLLMService(&settings.LLM, opts)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("llm: %v", err))
	}
	result.LLMService = llm

	return result
}

// CreateEmbeddingService creates the embedding service named by settings.
// Returns nil when no provider is selected. An unknown provider, a provider
// without embeddings, or a missing API key is a configuration error.
func CreateEmbeddingService(settings *domain.EmbeddingSettings, opts Options) (driven.EmbeddingService, error) {
	if settings == nil || settings.Provider == "" {
		return nil, nil
	}

	var (
		svc driven.EmbeddingService
		err error
	)
	switch settings.Provider {
	case domain.AIProviderOllama:
		svc = createOllamaEmbedding(settings, opts)

	case domain.AIProviderOpenAI:
		svc, err = createOpenAIEmbedding(settings, opts)

	case domain.AIProviderHuggingFace:
		svc, err = createHuggingFaceEmbedding(settings, opts)

	case domain.AIProviderAnthropic:
		return nil, domain.ConfigurationError("embedding",
			"anthropic does not support embeddings, use ollama, openai or huggingface")

	default:
		return nil, domain.ConfigurationError("embedding",
			fmt.Sprintf("unsupported embedding provider: %s", settings.Provider))
	}
	if err != nil {
		return nil, err
	}

	if opts.RequestsPerSecond > 0 {
		svc = NewLimitedEmbeddingService(svc, NewRateLimiter(opts.RequestsPerSecond, 1))
	}
	if opts.CacheSize > 0 {
		svc = cached.New(svc, opts.CacheSize)
	}
	return svc, nil
}

// CreateLLMService creates the LLM service named by settings.
// Returns nil when no provider is selected.
func CreateLLMService(settings *domain.LLMSettings, opts Options) (driven.LLMService, error) {
	if settings == nil || settings.Provider == "" {
		return nil, nil
	}

	var (
		svc driven.LLMService
		err error
	)
	switch settings.Provider {
	case domain.AIProviderOllama:
		svc = createOllamaLLM(settings, opts)

	case domain.AIProviderOpenAI:
		svc, err = createOpenAILLM(settings, opts)

	case domain.AIProviderAnthropic:
		svc, err = createAnthropicLLM(settings, opts)

	case domain.AIProviderHuggingFace:
		svc, err = createHuggingFaceLLM(settings, opts)

	default:
		return nil, domain.ConfigurationError("llm",
			fmt.Sprintf("unsupported LLM provider: %s", settings.Provider))
	}
	if err != nil {
		return nil, err
	}

	if opts.RequestsPerSecond > 0 {
		svc = NewLimitedLLMService(svc, NewRateLimiter(opts.RequestsPerSecond, 1))
	}
	return svc, nil
}

// createOllamaEmbedding creates an Ollama embedding service.
// Unknown models take their size from the first response.
func createOllamaEmbedding(settings *domain.EmbeddingSettings, opts Options) driven.EmbeddingService {
	dimensions := domain.EmbeddingDimensions()[settings.Model]
	if dimensions == 0 && settings.Model != "" {
		dimensions = -1
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Timeout:    opts.Timeout,
		Dimensions: dimensions,
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings, opts Options) (driven.EmbeddingService, error) {
	dimensions := domain.EmbeddingDimensions()[settings.Model]

	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Timeout:    opts.Timeout,
		Dimensions: dimensions,
	})
}

// createHuggingFaceEmbedding creates a Hugging Face embedding service.
func createHuggingFaceEmbedding(settings *domain.EmbeddingSettings, opts Options) (driven.EmbeddingService, error) {
	return hfembed.NewEmbeddingService(hfembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Timeout:    opts.Timeout,
		Dimensions: domain.EmbeddingDimensions()[settings.Model],
	})
}

// createOllamaLLM creates an Ollama LLM service.
func createOllamaLLM(settings *domain.LLMSettings, opts Options) driven.LLMService {
	return ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
		Timeout: opts.Timeout,
	})
}

// createOpenAILLM creates an OpenAI LLM service.
func createOpenAILLM(settings *domain.LLMSettings, opts Options) (driven.LLMService, error) {
	return openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
		Timeout: opts.Timeout,
	})
}

// createAnthropicLLM creates an Anthropic LLM service.
func createAnthropicLLM(settings *domain.LLMSettings, opts Options) (driven.LLMService, error) {
	return anthropicllm.NewLLMService(anthropicllm.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
		Timeout: opts.Timeout,
	})
}

// createHuggingFaceLLM creates a Hugging Face LLM service.
func createHuggingFaceLLM(settings *domain.LLMSettings, opts Options) (driven.LLMService, error) {
	return hfllm.NewLLMService(hfllm.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
		Timeout: opts.Timeout,
	})
}
