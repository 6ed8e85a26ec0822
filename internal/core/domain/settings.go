package domain

import "time"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	AIProviderOllama      AIProvider = "ollama"
	AIProviderOpenAI      AIProvider = "openai"
	AIProviderHuggingFace AIProvider = "huggingface"
	AIProviderAnthropic   AIProvider = "anthropic" // LLM only
)

type providerTraits struct {
	label     string
	local     bool
	embedding bool
}

var providers = map[AIProvider]providerTraits{
	AIProviderOllama:      {label: "Ollama (local)", local: true, embedding: true},
	AIProviderOpenAI:      {label: "OpenAI (cloud)", embedding: true},
	AIProviderHuggingFace: {label: "Hugging Face (cloud)", embedding: true},
	AIProviderAnthropic:   {label: "Anthropic (cloud)"},
}

// IsValid reports whether p is a known provider.
func (p AIProvider) IsValid() bool {
	_, ok := providers[p]
	return ok
}

// SupportsEmbedding reports whether p can produce embeddings.
func (p AIProvider) SupportsEmbedding() bool {
	return providers[p].embedding
}

// RequiresAPIKey reports whether p is a hosted service that needs a key.
func (p AIProvider) RequiresAPIKey() bool {
	return p.IsValid() && !p.IsLocal()
}

// IsLocal reports whether p runs on the local machine.
func (p AIProvider) IsLocal() bool {
	return providers[p].local
}

func (p AIProvider) String() string {
	return string(p)
}

// Description returns a label for prompts and status output.
func (p AIProvider) Description() string {
	if t, ok := providers[p]; ok {
		return t.label
	}
	return "Unknown"
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint. Empty uses the provider default.
	BaseURL string

	// APIKey is the API key (for OpenAI/Hugging Face).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.SupportsEmbedding() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint. Empty uses the provider default.
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic/Hugging Face).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// IndexSettings holds vector index configuration.
type IndexSettings struct {
	// Dir holds the two companion index files and the lock file.
	Dir string

	// Normalize unit-normalises vectors before insertion and querying so
	// that inner product equals cosine similarity.
	Normalize bool
}

// ChunkerSettings holds the sliding window policy.
type ChunkerSettings struct {
	// Size is the window length in runes.
	Size int

	// Step is the distance between window starts. Must be less than Size.
	Step int
}

// EngineSettings controls outbound call behaviour.
type EngineSettings struct {
	// Concurrency caps in-flight provider calls in a batch. 1 is sequential.
	Concurrency int

	// TimeoutSeconds bounds every outbound call.
	TimeoutSeconds int

	// RequestsPerSecond throttles provider calls. 0 disables throttling.
	RequestsPerSecond float64
}

// Timeout returns the per-call timeout.
func (e EngineSettings) Timeout() time.Duration {
	return time.Duration(e.TimeoutSeconds) * time.Second
}

// LimitSettings holds input size limits.
type LimitSettings struct {
	// QAUploadMB is the maximum document size for question answering.
	QAUploadMB int

	// MatchUploadMB is the maximum resume or job document size.
	MatchUploadMB int

	// CandidateChars is the rune budget for embedding a resume or job.
	CandidateChars int
}

// QAUploadBytes returns the QA upload limit in bytes.
func (l LimitSettings) QAUploadBytes() int64 {
	return int64(l.QAUploadMB) << 20
}

// MatchUploadBytes returns the matching upload limit in bytes.
func (l LimitSettings) MatchUploadBytes() int64 {
	return int64(l.MatchUploadMB) << 20
}

// ServerSettings holds the HTTP boundary configuration.
type ServerSettings struct {
	Addr string
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds LLM provider settings.
	LLM LLMSettings

	// Index holds vector index settings.
	Index IndexSettings

	// Chunker holds chunking settings.
	Chunker ChunkerSettings

	// Engine holds outbound call settings.
	Engine EngineSettings

	// Limits holds input size limits.
	Limits LimitSettings

	// Server holds HTTP server settings.
	Server ServerSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// Embedding defaults to a local Ollama; LLM is left unconfigured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    DefaultEmbeddingModels()[AIProviderOllama],
		},
		LLM: LLMSettings{},
		Index: IndexSettings{
			Dir:       "",
			Normalize: true,
		},
		Chunker: ChunkerSettings{
			Size: 500,
			Step: 400,
		},
		Engine: EngineSettings{
			Concurrency:    1,
			TimeoutSeconds: 30,
		},
		Limits: LimitSettings{
			QAUploadMB:     16,
			MatchUploadMB:  50,
			CandidateChars: 8000,
		},
		Server: ServerSettings{
			Addr: ":5000",
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderHuggingFace,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderHuggingFace,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:      "nomic-embed-text",
		AIProviderOpenAI:      "text-embedding-ada-002",
		AIProviderHuggingFace: "sentence-transformers/all-MiniLM-L6-v2",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:      "llama3.2",
		AIProviderOpenAI:      "gpt-3.5-turbo",
		AIProviderHuggingFace: "meta-llama/Llama-2-7b-chat-hf",
		AIProviderAnthropic:   "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Hugging Face models
		"sentence-transformers/all-MiniLM-L6-v2":  384,
		"sentence-transformers/all-mpnet-base-v2": 768,
		"BAAI/bge-small-en-v1.5":                  384,
		"BAAI/bge-base-en-v1.5":                   768,
	}
}
