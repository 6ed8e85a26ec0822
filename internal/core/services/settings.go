package services

import (
	"cmp"
	"fmt"
	"strings"

	"github.com/custodia-labs/docmatch/internal/core/domain"
	"github.com/custodia-labs/docmatch/internal/core/ports/driven"
	"github.com/custodia-labs/docmatch/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedAPIKey       = "embedding.api_key"
	keyLLMProvider       = "llm.provider"
	keyLLMModel          = "llm.model"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
	keyIndexDir          = "index.dir"
	keyIndexNormalize    = "index.normalize"
	keyChunkerSize       = "chunker.size"
	keyChunkerStep       = "chunker.step"
	keyEngineConcurrency = "engine.concurrency"
	keyEngineTimeout     = "engine.timeout_seconds"
	keyEngineRPS         = "engine.requests_per_second"
	keyLimitQAUpload     = "limits.qa_upload_mb"
	keyLimitMatchUpload  = "limits.match_upload_mb"
	keyLimitCandidate    = "limits.candidate_chars"
	keyServerAddr        = "server.addr"
)

const defaultOllamaURL = "http://localhost:11434"

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:    s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Index: domain.IndexSettings{
			Dir:       s.getString(keyIndexDir, defaults.Index.Dir),
			Normalize: s.getBool(keyIndexNormalize, defaults.Index.Normalize),
		},
		Chunker: domain.ChunkerSettings{
			Size: s.getInt(keyChunkerSize, defaults.Chunker.Size),
			Step: s.getInt(keyChunkerStep, defaults.Chunker.Step),
		},
		Engine: domain.EngineSettings{
			Concurrency:       s.getInt(keyEngineConcurrency, defaults.Engine.Concurrency),
			TimeoutSeconds:    s.getInt(keyEngineTimeout, defaults.Engine.TimeoutSeconds),
			RequestsPerSecond: s.configStore.GetFloat(keyEngineRPS),
		},
		Limits: domain.LimitSettings{
			QAUploadMB:     s.getInt(keyLimitQAUpload, defaults.Limits.QAUploadMB),
			MatchUploadMB:  s.getInt(keyLimitMatchUpload, defaults.Limits.MatchUploadMB),
			CandidateChars: s.getInt(keyLimitCandidate, defaults.Limits.CandidateChars),
		},
		Server: domain.ServerSettings{
			Addr: s.getString(keyServerAddr, defaults.Server.Addr),
		},
	}

	// A stored LLM model without a provider is meaningless.
	if settings.LLM.Provider == "" {
		settings.LLM.Model = ""
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		name  string
		value any
	}{
		{keyEmbedProvider, "embedding provider", settings.Embedding.Provider.String()},
		{keyEmbedModel, "embedding model", settings.Embedding.Model},
		{keyEmbedBaseURL, "embedding base_url", settings.Embedding.BaseURL},
		{keyLLMProvider, "llm provider", settings.LLM.Provider.String()},
		{keyLLMModel, "llm model", settings.LLM.Model},
		{keyLLMBaseURL, "llm base_url", settings.LLM.BaseURL},
		{keyIndexDir, "index dir", settings.Index.Dir},
		{keyIndexNormalize, "index normalize", settings.Index.Normalize},
		{keyChunkerSize, "chunker size", settings.Chunker.Size},
		{keyChunkerStep, "chunker step", settings.Chunker.Step},
		{keyEngineConcurrency, "engine concurrency", settings.Engine.Concurrency},
		{keyEngineTimeout, "engine timeout", settings.Engine.TimeoutSeconds},
		{keyEngineRPS, "engine requests_per_second", settings.Engine.RequestsPerSecond},
		{keyLimitQAUpload, "qa upload limit", settings.Limits.QAUploadMB},
		{keyLimitMatchUpload, "match upload limit", settings.Limits.MatchUploadMB},
		{keyLimitCandidate, "candidate chars", settings.Limits.CandidateChars},
		{keyServerAddr, "server addr", settings.Server.Addr},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.name, err)
		}
	}

	// Empty keys are not written so a stored key survives a save that
	// came from settings without one.
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}
	if settings.LLM.APIKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}

	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if !provider.SupportsEmbedding() {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}
	return s.update(func(settings *domain.AppSettings) error {
		e := &settings.Embedding
		return assignProvider(provider, model, apiKey, domain.DefaultEmbeddingModels(),
			&e.Provider, &e.Model, &e.BaseURL, &e.APIKey)
	})
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}
	return s.update(func(settings *domain.AppSettings) error {
		l := &settings.LLM
		return assignProvider(provider, model, apiKey, domain.DefaultLLMModels(),
			&l.Provider, &l.Model, &l.BaseURL, &l.APIKey)
	})
}

// assignProvider fills one provider block. An empty model falls back to the
// provider default; hosted providers always use their built-in endpoint.
func assignProvider(
	provider domain.AIProvider, model, apiKey string, defaults map[domain.AIProvider]string,
	dstProvider *domain.AIProvider, dstModel, dstBaseURL, dstKey *string,
) error {
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}
	*dstProvider = provider
	*dstModel = cmp.Or(model, defaults[provider], *dstModel)
	switch {
	case !provider.IsLocal():
		*dstBaseURL = ""
	case *dstBaseURL == "":
		*dstBaseURL = defaultOllamaURL
	}
	*dstKey = apiKey
	return nil
}

// update loads the stored settings, applies fn and saves the result.
func (s *SettingsService) update(fn func(*domain.AppSettings) error) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if err := fn(settings); err != nil {
		return err
	}
	return s.Save(settings)
}

// SetIndexDir sets where the index artifacts are stored.
func (s *SettingsService) SetIndexDir(dir string) error {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return fmt.Errorf("index directory cannot be empty")
	}

	return s.update(func(settings *domain.AppSettings) error {
		settings.Index.Dir = dir
		return nil
	})
}

// Validate checks that the current settings are usable. Embeddings are
// required for every operation; an LLM is optional but must be complete
// when a provider is set.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("embedding provider %q is not configured", settings.Embedding.Provider)
	}
	if settings.LLM.Provider != "" && !settings.LLM.IsConfigured() {
		return fmt.Errorf("LLM provider %q is not configured", settings.LLM.Provider)
	}
	if settings.Chunker.Step >= settings.Chunker.Size {
		return fmt.Errorf("chunker step (%d) must be less than size (%d)",
			settings.Chunker.Step, settings.Chunker.Size)
	}
	if settings.Engine.Concurrency < 1 {
		return fmt.Errorf("engine concurrency must be at least 1")
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Unset or zero values fall back to the supplied default.

func (s *SettingsService) getString(key, fallback string) string {
	return cmp.Or(s.configStore.GetString(key), fallback)
}

func (s *SettingsService) getInt(key string, fallback int) int {
	return cmp.Or(s.configStore.GetInt(key), fallback)
}

func (s *SettingsService) getBool(key string, fallback bool) bool {
	if _, ok := s.configStore.Get(key); ok {
		return s.configStore.GetBool(key)
	}
	return fallback
}

func (s *SettingsService) getProvider(key string, fallback domain.AIProvider) domain.AIProvider {
	if p := domain.AIProvider(s.configStore.GetString(key)); p.IsValid() {
		return p
	}
	return fallback
}
