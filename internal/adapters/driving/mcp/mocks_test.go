package mcp

import (
	"context"
	"io"

	"github.com/custodia-labs/docmatch/internal/core/domain"
	"github.com/custodia-labs/docmatch/internal/core/ports/driving"
)

// mockQAService is a mock implementation of driving.QAService.
type mockQAService struct {
	answer *domain.Answer
	hits   []domain.RetrievedChunk
	status domain.IndexStatus
	err    error

	lastQuery string
	lastK     int
}

func (m *mockQAService) Ingest(_ context.Context, _ *domain.RawDocument) (*domain.IngestResult, error) {
	return nil, m.err
}

func (m *mockQAService) Retrieve(_ context.Context, query string, k int) ([]domain.RetrievedChunk, error) {
	m.lastQuery = query
	m.lastK = k
	return m.hits, m.err
}

func (m *mockQAService) Ask(_ context.Context, question string) (*domain.Answer, error) {
	m.lastQuery = question
	return m.answer, m.err
}

func (m *mockQAService) Status(_ context.Context) (domain.IndexStatus, error) {
	return m.status, m.err
}

func (m *mockQAService) Clear(_ context.Context) error {
	return m.err
}

// mockMatchingService is a mock implementation of driving.MatchingService.
type mockMatchingService struct {
	skills domain.SkillSet
	err    error
}

func (m *mockMatchingService) NewSession() *domain.Session {
	return domain.NewSession("test")
}

func (m *mockMatchingService) AddCandidates(
	_ context.Context, _ *domain.Session, _ []*domain.RawDocument,
) ([]domain.CandidateOutcome, error) {
	return nil, m.err
}

func (m *mockMatchingService) SetJobText(_ context.Context, _ *domain.Session, _ string) (*domain.Job, error) {
	return nil, m.err
}

func (m *mockMatchingService) SetJobDocument(_ context.Context, _ *domain.Session, _ *domain.RawDocument) (*domain.Job, error) {
	return nil, m.err
}

func (m *mockMatchingService) Match(_ context.Context, _ *domain.Session) ([]domain.MatchResult, domain.MatchSummary, error) {
	return nil, domain.MatchSummary{}, m.err
}

func (m *mockMatchingService) ExtractSkills(_ context.Context, _ string) (domain.SkillSet, error) {
	return m.skills, m.err
}

func (m *mockMatchingService) Export(_ *domain.Session, _ driving.ExportFormat, _ io.Writer) error {
	return m.err
}
