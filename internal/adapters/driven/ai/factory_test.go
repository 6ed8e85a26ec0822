package ai

import (
	"strings"
	"testing"
	"time"

	"github.com/custodia-labs/docmatch/internal/adapters/driven/embedding/cached"
	"github.com/custodia-labs/docmatch/internal/core/domain"
)

func TestInitResult_Close(t *testing.T) {
	t.Run("close with nil services", func(t *testing.T) {
		result := &InitResult{}
		// Should not panic
		result.Close()
	})
}

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name        string
		settings    *domain.EmbeddingSettings
		wantNil     bool
		wantKind    domain.ErrorKind
		errContains string
	}{
		{
			name:     "nil settings returns nil",
			settings: nil,
			wantNil:  true,
		},
		{
			name:     "no provider returns nil",
			settings: &domain.EmbeddingSettings{},
			wantNil:  true,
		},
		{
			name: "ollama provider creates service",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "nomic-embed-text",
			},
		},
		{
			name: "openai provider creates service",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOpenAI,
				APIKey:   "test-key",
				Model:    "text-embedding-3-small",
			},
		},
		{
			name: "huggingface provider creates service",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderHuggingFace,
				APIKey:   "hf_test",
			},
		},
		{
			name: "openai without key is a configuration error",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOpenAI,
			},
			wantNil:     true,
			wantKind:    domain.KindConfiguration,
			errContains: "API key is required",
		},
		{
			name: "anthropic provider returns error",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderAnthropic,
				APIKey:   "test-key",
			},
			wantNil:     true,
			wantKind:    domain.KindConfiguration,
			errContains: "anthropic does not support embeddings",
		},
		{
			name: "unknown provider is a configuration error",
			settings: &domain.EmbeddingSettings{
				Provider: "unknown",
				APIKey:   "test-key",
			},
			wantNil:     true,
			wantKind:    domain.KindConfiguration,
			errContains: "unsupported embedding provider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings, Options{})

			if tt.wantKind != "" {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if got := domain.KindOf(err); got != tt.wantKind {
					t.Errorf("kind = %s, want %s", got, tt.wantKind)
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q should contain %q", err.Error(), tt.errContains)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if tt.wantNil && svc != nil {
				t.Error("expected nil service, got non-nil")
			}
			if !tt.wantNil && svc == nil {
				t.Error("expected non-nil service, got nil")
			}
			if svc != nil {
				svc.Close()
			}
		})
	}
}

func TestCreateEmbeddingService_Decorators(t *testing.T) {
	settings := &domain.EmbeddingSettings{Provider: domain.AIProviderOllama, Model: "nomic-embed-text"}

	svc, err := CreateEmbeddingService(settings, Options{RequestsPerSecond: 5, CacheSize: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer svc.Close()

	c, ok := svc.(*cached.EmbeddingService)
	if !ok {
		t.Fatalf("expected cached service, got %T", svc)
	}
	if _, ok := c.Inner().(*limitedEmbedding); !ok {
		t.Errorf("expected rate limited inner service, got %T", c.Inner())
	}
	if svc.Dimensions() != 768 {
		t.Errorf("Dimensions() = %d, want 768", svc.Dimensions())
	}
}

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.LLMSettings
		wantNil  bool
		wantErr  bool
	}{
		{
			name:     "nil settings returns nil",
			settings: nil,
			wantNil:  true,
		},
		{
			name:     "no provider returns nil",
			settings: &domain.LLMSettings{},
			wantNil:  true,
		},
		{
			name: "ollama provider creates service",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "llama3.2",
			},
		},
		{
			name: "openai provider creates service",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderOpenAI,
				APIKey:   "test-key",
				Model:    "gpt-3.5-turbo",
			},
		},
		{
			name: "anthropic provider creates service",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderAnthropic,
				APIKey:   "test-key",
				Model:    "claude-3-5-sonnet-latest",
			},
		},
		{
			name: "huggingface provider creates service",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderHuggingFace,
				APIKey:   "hf_test",
			},
		},
		{
			name: "anthropic without key is an error",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderAnthropic,
			},
			wantNil: true,
			wantErr: true,
		},
		{
			name: "unknown provider is an error",
			settings: &domain.LLMSettings{
				Provider: "unknown",
				APIKey:   "test-key",
			},
			wantNil: true,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(tt.settings, Options{Timeout: time.Second})

			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				} else if domain.KindOf(err) != domain.KindConfiguration {
					t.Errorf("kind = %s, want configuration_error", domain.KindOf(err))
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if tt.wantNil && svc != nil {
				t.Error("expected nil service, got non-nil")
			}
			if !tt.wantNil && svc == nil {
				t.Error("expected non-nil service, got nil")
			}
			if svc != nil {
				svc.Close()
			}
		})
	}
}

func TestCreateLLMService_RateLimited(t *testing.T) {
	settings := &domain.LLMSettings{Provider: domain.AIProviderOllama}

	svc, err := CreateLLMService(settings, Options{RequestsPerSecond: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := svc.(*limitedLLM); !ok {
		t.Errorf("expected rate limited service, got %T", svc)
	}
}

func TestInitialise(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.LLM = domain.LLMSettings{Provider: domain.AIProviderOpenAI}

	result := Initialise(&settings)
	defer result.Close()

	if result.EmbeddingService == nil {
		t.Error("expected embedding service from defaults")
	}
	if result.LLMService != nil {
		t.Error("expected nil LLM service when key is missing")
	}
	if len(result.Warnings) != 1 {
		t.Errorf("expected 1 warning, got %v", result.Warnings)
	}
}
