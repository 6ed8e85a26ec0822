package services

import (
	"context"
	"strings"
	"sync"

	"github.com/custodia-labs/docmatch/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/docmatch/internal/core/domain"
	"github.com/custodia-labs/docmatch/internal/core/ports/driven"
)

// mockEmbeddingService returns vectors from a lookup table keyed by text,
// falling back to fn and then to a constant vector.
type mockEmbeddingService struct {
	mu      sync.Mutex
	vectors map[string][]float32
	fn      func(text string) ([]float32, error)
	dims    int
	calls   []string
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	m.mu.Unlock()

	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	if m.fn != nil {
		return m.fn(text)
	}
	v := make([]float32, m.Dimensions())
	v[0] = 1
	return v, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	if m.dims == 0 {
		return 2
	}
	return m.dims
}

func (m *mockEmbeddingService) ModelName() string { return "mock-embed" }

func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }

func (m *mockEmbeddingService) Close() error { return nil }

func (m *mockEmbeddingService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// mockLLMService answers with a fixed reply or via fn, recording prompts.
type mockLLMService struct {
	mu       sync.Mutex
	response string
	err      error
	fn       func(system, user string) (string, error)
	systems  []string
	users    []string
}

func (m *mockLLMService) Complete(_ context.Context, system, user string) (string, error) {
	m.mu.Lock()
	m.systems = append(m.systems, system)
	m.users = append(m.users, user)
	m.mu.Unlock()

	if m.fn != nil {
		return m.fn(system, user)
	}
	return m.response, m.err
}

func (m *mockLLMService) ModelName() string { return "mock-llm" }

func (m *mockLLMService) Ping(_ context.Context) error { return nil }

func (m *mockLLMService) Close() error { return nil }

func (m *mockLLMService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

// mockPromptStore serves prompts from a map.
type mockPromptStore struct {
	prompts map[string]string
}

func newMockPromptStore() *mockPromptStore {
	return &mockPromptStore{prompts: map[string]string{
		driven.PromptQASystem:               defaultQASystemPrompt,
		driven.PromptExtractSkills:          "extract skills as JSON",
		driven.PromptExtractJobRequirements: "extract requirements as JSON",
	}}
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// mockExtractorRegistry treats every document as plain text split into
// pages on form feeds. URIs ending in .bin are rejected.
type mockExtractorRegistry struct{}

func (mockExtractorRegistry) Extract(_ context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	if strings.HasSuffix(raw.URI, ".bin") {
		return nil, domain.InputValidationError("extract", "unsupported document type")
	}
	return &domain.Document{
		ID:    "doc-" + raw.URI,
		Name:  raw.URI,
		Pages: strings.Split(string(raw.Content), "\f"),
	}, nil
}

func (mockExtractorRegistry) Register(_ driven.TextExtractor) {}

func (mockExtractorRegistry) SupportedMIMETypes() []string { return []string{"text/plain"} }

// mockIndexStore keeps the last saved snapshot in memory.
type mockIndexStore struct {
	mu       sync.Mutex
	snapshot *domain.IndexSnapshot
	saveErr  error
	loadErr  error
	saves    int
	loads    int
}

func (m *mockIndexStore) Save(snap *domain.IndexSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.snapshot = snap
	return nil
}

func (m *mockIndexStore) Load() (*domain.IndexSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.snapshot == nil {
		return nil, domain.IndexNotFoundError("load index")
	}
	return m.snapshot, nil
}

func (m *mockIndexStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = nil
	return nil
}

func (m *mockIndexStore) Status() (domain.IndexStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snapshot == nil {
		return domain.IndexStatus{}, nil
	}
	return domain.IndexStatus{
		Exists:       true,
		TotalChunks:  len(m.snapshot.Chunks),
		TotalPages:   m.snapshot.TotalPages,
		Dimensions:   m.snapshot.Dimensions,
		DocumentName: m.snapshot.DocumentName,
	}, nil
}

func (m *mockIndexStore) Close() error { return nil }

func flatIndexFactory(dims int) driven.VectorIndex {
	return flat.New(dims)
}

// snapshotOf builds a valid snapshot from vectors with one chunk each.
func snapshotOf(vectors [][]float32, pages int) *domain.IndexSnapshot {
	chunks := make([]domain.Chunk, len(vectors))
	for i := range vectors {
		chunks[i] = domain.Chunk{
			ID:      string(rune('a' + i)),
			Index:   i,
			Content: "chunk " + string(rune('a'+i)),
			Page:    i + 1,
		}
	}
	dims := 0
	if len(vectors) > 0 {
		dims = len(vectors[0])
	}
	return &domain.IndexSnapshot{
		BuildID:    "build-1",
		Dimensions: dims,
		Vectors:    vectors,
		Chunks:     chunks,
		TotalPages: pages,
	}
}
