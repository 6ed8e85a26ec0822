package httpapi

import (
	"context"
	"io"

	"github.com/custodia-labs/docmatch/internal/core/domain"
	"github.com/custodia-labs/docmatch/internal/core/ports/driving"
	"github.com/custodia-labs/docmatch/internal/core/services"
)

type mockQAService struct {
	ingested *domain.RawDocument
	result   *domain.IngestResult
	answer   *domain.Answer
	hits     []domain.RetrievedChunk
	status   domain.IndexStatus
	err      error
	cleared  bool
	lastK    int
}

func (m *mockQAService) Ingest(_ context.Context, raw *domain.RawDocument) (*domain.IngestResult, error) {
	m.ingested = raw
	return m.result, m.err
}

func (m *mockQAService) Retrieve(_ context.Context, _ string, k int) ([]domain.RetrievedChunk, error) {
	m.lastK = k
	return m.hits, m.err
}

func (m *mockQAService) Ask(_ context.Context, _ string) (*domain.Answer, error) {
	return m.answer, m.err
}

func (m *mockQAService) Status(_ context.Context) (domain.IndexStatus, error) {
	return m.status, m.err
}

func (m *mockQAService) Clear(_ context.Context) error {
	m.cleared = true
	return m.err
}

// mockMatchingService records uploads on the session it is given, scoring
// every candidate 50.
type mockMatchingService struct {
	uploads []*domain.RawDocument
	skills  domain.SkillSet
	err     error
}

func (m *mockMatchingService) NewSession() *domain.Session {
	return domain.NewSession("test-session")
}

func (m *mockMatchingService) AddCandidates(
	_ context.Context, sess *domain.Session, raws []*domain.RawDocument,
) ([]domain.CandidateOutcome, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.uploads = append(m.uploads, raws...)
	outcomes := make([]domain.CandidateOutcome, len(raws))
	for i, raw := range raws {
		c := &domain.Candidate{ID: raw.URI, Filename: raw.URI, CharCount: len(raw.Content), Embedding: []float32{1}}
		sess.AddCandidates(c)
		outcomes[i] = domain.CandidateOutcome{Index: i, Candidate: c.ID, Filename: c.Filename, CharCount: c.CharCount, Success: true}
	}
	return outcomes, nil
}

func (m *mockMatchingService) SetJobText(_ context.Context, sess *domain.Session, text string) (*domain.Job, error) {
	if text == "" {
		return nil, domain.InputValidationError("set job", "no job description provided")
	}
	job := &domain.Job{ID: "job", Source: "text", CharCount: len(text)}
	sess.SetJob(job)
	return job, nil
}

func (m *mockMatchingService) SetJobDocument(_ context.Context, sess *domain.Session, raw *domain.RawDocument) (*domain.Job, error) {
	job := &domain.Job{ID: "job", Source: raw.URI, CharCount: len(raw.Content)}
	sess.SetJob(job)
	return job, nil
}

func (m *mockMatchingService) Match(_ context.Context, sess *domain.Session) ([]domain.MatchResult, domain.MatchSummary, error) {
	candidates := sess.Candidates()
	if len(candidates) == 0 {
		return nil, domain.MatchSummary{}, domain.InputValidationError("match", "no resumes uploaded")
	}
	if sess.Job() == nil {
		return nil, domain.MatchSummary{}, domain.InputValidationError("match", "no job description provided")
	}
	results := make([]domain.MatchResult, len(candidates))
	for i, c := range candidates {
		results[i] = domain.MatchResult{CandidateID: c.ID, Filename: c.Filename, Index: i,
			SemanticScore: 50, StructuredScore: 50, FinalScore: 50}
	}
	services.Rank(results)
	summary := services.Summarise(results)
	sess.SetResults(results)
	return results, summary, nil
}

func (m *mockMatchingService) ExtractSkills(_ context.Context, _ string) (domain.SkillSet, error) {
	return m.skills, m.err
}

func (m *mockMatchingService) Export(sess *domain.Session, format driving.ExportFormat, w io.Writer) error {
	return services.ExportResults(sess.Results(), format, w)
}

type mockSettingsService struct {
	settings domain.AppSettings
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) { return &m.settings, nil }

func (m *mockSettingsService) Save(_ *domain.AppSettings) error { return nil }

func (m *mockSettingsService) SetEmbeddingProvider(_ domain.AIProvider, _, _ string) error {
	return nil
}

func (m *mockSettingsService) SetLLMProvider(_ domain.AIProvider, _, _ string) error { return nil }

func (m *mockSettingsService) SetIndexDir(_ string) error { return nil }

func (m *mockSettingsService) Validate() error { return nil }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return nil }

func (m *mockSettingsService) ValidateLLMConfig() error { return nil }
