// Package env overlays environment variables on top of the persisted
// settings. Variables use the DOCMATCH_ prefix with dots replaced by
// underscores (DOCMATCH_EMBEDDING_PROVIDER, DOCMATCH_LLM_API_KEY, ...).
// The unprefixed variables understood by earlier deployments are read too;
// a prefixed variable wins over its unprefixed counterpart.
package env

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/custodia-labs/docmatch/internal/core/domain"
	"github.com/custodia-labs/docmatch/internal/logger"
)

// Prefix is the environment prefix for docmatch settings.
const Prefix = "DOCMATCH"

// Overlay reads settings from the environment.
type Overlay struct {
	v *viper.Viper
}

// New creates an overlay bound to the process environment.
func New() *Overlay {
	v := viper.New()
	v.SetEnvPrefix(Prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unprefixed variables. BindEnv with explicit names bypasses the prefix.
	legacy := map[string][]string{
		"legacy.api_type":              {"API_TYPE"},
		"legacy.openai_api_key":        {"OPENAI_API_KEY"},
		"legacy.hf_api_key":            {"HF_API_KEY", "HUGGINGFACE_API_KEY"},
		"legacy.anthropic_api_key":     {"ANTHROPIC_API_KEY"},
		"legacy.ollama_base_url":       {"OLLAMA_BASE_URL"},
		"legacy.openai_embedding":      {"OPENAI_EMBEDDING_MODEL"},
		"legacy.openai_chat":           {"OPENAI_CHAT_MODEL"},
		"legacy.ollama_embedding":      {"OLLAMA_EMBEDDING_MODEL"},
		"legacy.ollama_chat":           {"OLLAMA_CHAT_MODEL"},
		"legacy.hf_embedding":          {"HF_EMBEDDING_MODEL"},
		"legacy.hf_chat":               {"HF_CHAT_MODEL"},
		"legacy.chunk_size":            {"CHUNK_SIZE"},
		"legacy.chunk_overlap":         {"CHUNK_OVERLAP"},
		"legacy.max_content_length_mb": {"MAX_CONTENT_LENGTH_MB"},
	}
	for key, names := range legacy {
		_ = v.BindEnv(append([]string{key}, names...)...)
	}

	return &Overlay{v: v}
}

// Apply overlays environment values onto settings in place.
func (o *Overlay) Apply(settings *domain.AppSettings) {
	o.applyLegacy(settings)

	if p := o.v.GetString("embedding.provider"); p != "" {
		settings.Embedding.Provider = domain.AIProvider(strings.ToLower(p))
	}
	o.setString("embedding.model", &settings.Embedding.Model)
	o.setString("embedding.base_url", &settings.Embedding.BaseURL)
	o.setString("embedding.api_key", &settings.Embedding.APIKey)

	if p := o.v.GetString("llm.provider"); p != "" {
		settings.LLM.Provider = domain.AIProvider(strings.ToLower(p))
	}
	o.setString("llm.model", &settings.LLM.Model)
	o.setString("llm.base_url", &settings.LLM.BaseURL)
	o.setString("llm.api_key", &settings.LLM.APIKey)

	o.setString("index.dir", &settings.Index.Dir)
	if o.v.IsSet("index.normalize") {
		settings.Index.Normalize = o.v.GetBool("index.normalize")
	}

	o.setInt("chunker.size", &settings.Chunker.Size)
	o.setInt("chunker.step", &settings.Chunker.Step)

	o.setInt("engine.concurrency", &settings.Engine.Concurrency)
	o.setInt("engine.timeout_seconds", &settings.Engine.TimeoutSeconds)
	if o.v.IsSet("engine.requests_per_second") {
		settings.Engine.RequestsPerSecond = o.v.GetFloat64("engine.requests_per_second")
	}

	o.setInt("limits.qa_upload_mb", &settings.Limits.QAUploadMB)
	o.setInt("limits.match_upload_mb", &settings.Limits.MatchUploadMB)
	o.setInt("limits.candidate_chars", &settings.Limits.CandidateChars)

	o.setString("server.addr", &settings.Server.Addr)
}

// applyLegacy maps API_TYPE and the provider specific variables. API_TYPE
// selects the provider for both embeddings and chat; Anthropic has no
// embeddings so only the chat side switches for it.
func (o *Overlay) applyLegacy(settings *domain.AppSettings) {
	apiType := strings.ToLower(strings.TrimSpace(o.v.GetString("legacy.api_type")))
	switch apiType {
	case "":
	case "hf":
		apiType = string(domain.AIProviderHuggingFace)
	case "claude":
		apiType = string(domain.AIProviderAnthropic)
	}

	if apiType != "" {
		provider := domain.AIProvider(apiType)
		if !provider.IsValid() {
			logger.Warn("ignoring unknown API_TYPE %q", apiType)
		} else {
			if provider.SupportsEmbedding() && provider != settings.Embedding.Provider {
				settings.Embedding.Provider = provider
				settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
			}
			if provider != settings.LLM.Provider {
				settings.LLM.Provider = provider
				settings.LLM.Model = domain.DefaultLLMModels()[provider]
			}
		}
	}

	o.applyProviderVars(settings, domain.AIProviderOpenAI, "legacy.openai_api_key", "", "legacy.openai_embedding", "legacy.openai_chat")
	o.applyProviderVars(settings, domain.AIProviderHuggingFace, "legacy.hf_api_key", "", "legacy.hf_embedding", "legacy.hf_chat")
	o.applyProviderVars(settings, domain.AIProviderAnthropic, "legacy.anthropic_api_key", "", "", "")
	o.applyProviderVars(settings, domain.AIProviderOllama, "", "legacy.ollama_base_url", "legacy.ollama_embedding", "legacy.ollama_chat")

	if size := o.v.GetInt("legacy.chunk_size"); size > 0 {
		overlap := settings.Chunker.Size - settings.Chunker.Step
		settings.Chunker.Size = size
		settings.Chunker.Step = size - overlap
		if settings.Chunker.Step <= 0 {
			settings.Chunker.Step = size
		}
	}
	if o.v.IsSet("legacy.chunk_overlap") {
		if overlap := o.v.GetInt("legacy.chunk_overlap"); overlap >= 0 && overlap < settings.Chunker.Size {
			settings.Chunker.Step = settings.Chunker.Size - overlap
		}
	}
	if mb := o.v.GetInt("legacy.max_content_length_mb"); mb > 0 {
		settings.Limits.QAUploadMB = mb
	}
}

// applyProviderVars fills credentials, endpoint and models for whichever
// side is configured for provider. Empty key names are skipped.
func (o *Overlay) applyProviderVars(settings *domain.AppSettings, provider domain.AIProvider, apiKey, baseURL, embedModel, chatModel string) {
	if settings.Embedding.Provider == provider {
		o.setString(apiKey, &settings.Embedding.APIKey)
		o.setString(baseURL, &settings.Embedding.BaseURL)
		o.setString(embedModel, &settings.Embedding.Model)
	}
	if settings.LLM.Provider == provider {
		o.setString(apiKey, &settings.LLM.APIKey)
		o.setString(baseURL, &settings.LLM.BaseURL)
		o.setString(chatModel, &settings.LLM.Model)
	}
}

func (o *Overlay) setString(key string, dst *string) {
	if key == "" {
		return
	}
	if s := strings.TrimSpace(o.v.GetString(key)); s != "" {
		*dst = s
	}
}

func (o *Overlay) setInt(key string, dst *int) {
	if n := o.v.GetInt(key); n > 0 {
		*dst = n
	}
}
