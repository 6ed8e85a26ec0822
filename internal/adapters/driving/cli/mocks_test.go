package cli

import (
	"bytes"
	"context"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/docmatch/internal/core/domain"
	"github.com/custodia-labs/docmatch/internal/core/ports/driving"
	"github.com/custodia-labs/docmatch/internal/core/services"
)

type mockQAService struct {
	ingested *domain.RawDocument
	lastK    int
	cleared  bool
	status   domain.IndexStatus
	err      error
}

func (m *mockQAService) Ingest(_ context.Context, raw *domain.RawDocument) (*domain.IngestResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.ingested = raw
	return &domain.IngestResult{Filename: raw.URI, TotalPages: 2, TotalChunks: 4, FailedChunks: 1}, nil
}

func (m *mockQAService) Retrieve(_ context.Context, query string, k int) ([]domain.RetrievedChunk, error) {
	m.lastK = k
	if m.err != nil {
		return nil, m.err
	}
	return []domain.RetrievedChunk{
		{Chunk: domain.Chunk{Content: "match for " + query, Page: 2}, Score: 0.875},
	}, nil
}

func (m *mockQAService) Ask(_ context.Context, question string) (*domain.Answer, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Answer{
		Answer:         "Answer to " + question,
		RelevantChunks: []domain.RelevantChunk{{Text: "source text...", Page: 1, Score: 0.5}},
		TotalPages:     2,
	}, nil
}

func (m *mockQAService) Status(_ context.Context) (domain.IndexStatus, error) {
	return m.status, m.err
}

func (m *mockQAService) Clear(_ context.Context) error {
	m.cleared = true
	return m.err
}

// mockMatchingService scores candidates by upload order: 90, 70, 50...
type mockMatchingService struct {
	job    *domain.Job
	skills domain.SkillSet
}

func (m *mockMatchingService) NewSession() *domain.Session {
	return domain.NewSession("cli-test")
}

func (m *mockMatchingService) AddCandidates(
	_ context.Context, sess *domain.Session, raws []*domain.RawDocument,
) ([]domain.CandidateOutcome, error) {
	outcomes := make([]domain.CandidateOutcome, len(raws))
	for i, raw := range raws {
		c := &domain.Candidate{ID: raw.URI, Filename: raw.URI, CharCount: len(raw.Content)}
		sess.AddCandidates(c)
		outcomes[i] = domain.CandidateOutcome{Index: i, Candidate: c.ID, Filename: c.Filename, CharCount: c.CharCount, Success: true}
	}
	return outcomes, nil
}

func (m *mockMatchingService) SetJobText(_ context.Context, sess *domain.Session, text string) (*domain.Job, error) {
	if text == "" {
		return nil, domain.InputValidationError("set job", "no job description provided")
	}
	m.job = &domain.Job{ID: "job", Source: "text", Text: text, CharCount: len(text)}
	sess.SetJob(m.job)
	return m.job, nil
}

func (m *mockMatchingService) SetJobDocument(_ context.Context, sess *domain.Session, raw *domain.RawDocument) (*domain.Job, error) {
	m.job = &domain.Job{ID: "job", Source: raw.URI, Text: string(raw.Content), CharCount: len(raw.Content)}
	sess.SetJob(m.job)
	return m.job, nil
}

func (m *mockMatchingService) Match(_ context.Context, sess *domain.Session) ([]domain.MatchResult, domain.MatchSummary, error) {
	candidates := sess.Candidates()
	results := make([]domain.MatchResult, len(candidates))
	for i, c := range candidates {
		score := float64(90 - 20*i)
		results[i] = domain.MatchResult{CandidateID: c.ID, Filename: c.Filename, Index: i,
			SemanticScore: score, StructuredScore: 50, FinalScore: score}
	}
	services.Rank(results)
	summary := services.Summarise(results)
	sess.SetResults(results)
	return results, summary, nil
}

func (m *mockMatchingService) ExtractSkills(_ context.Context, _ string) (domain.SkillSet, error) {
	return m.skills, nil
}

func (m *mockMatchingService) Export(sess *domain.Session, format driving.ExportFormat, w io.Writer) error {
	return services.ExportResults(sess.Results(), format, w)
}

type mockSettingsService struct {
	settings  domain.AppSettings
	verifyErr error
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) { return &m.settings, nil }

func (m *mockSettingsService) Save(s *domain.AppSettings) error {
	m.settings = *s
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(p domain.AIProvider, model, apiKey string) error {
	m.settings.Embedding.Provider, m.settings.Embedding.Model, m.settings.Embedding.APIKey = p, model, apiKey
	return nil
}

func (m *mockSettingsService) SetLLMProvider(p domain.AIProvider, model, apiKey string) error {
	m.settings.LLM.Provider, m.settings.LLM.Model, m.settings.LLM.APIKey = p, model, apiKey
	return nil
}

func (m *mockSettingsService) SetIndexDir(dir string) error {
	m.settings.Index.Dir = dir
	return nil
}

func (m *mockSettingsService) Validate() error { return nil }
func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }
func (m *mockSettingsService) ValidateEmbeddingConfig() error { return m.verifyErr }
func (m *mockSettingsService) ValidateLLMConfig() error { return m.verifyErr }

type testServices struct {
	qa       *mockQAService
	matching *mockMatchingService
	settings *mockSettingsService
}

// setupTestServices installs mocks and returns them with a cleanup that
// restores the previous services and resets every flag.
func setupTestServices() (*testServices, func()) {
	prevQA, prevMatching, prevSettings := qaService, matchingService, settingsService

	ts := &testServices{
		qa:       &mockQAService{},
		matching: &mockMatchingService{},
		settings: &mockSettingsService{settings: domain.DefaultAppSettings()},
	}
	qaService, matchingService, settingsService = ts.qa, ts.matching, ts.settings

	return ts, func() {
		qaService, matchingService, settingsService = prevQA, prevMatching, prevSettings
		resetFlags(rootCmd)
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue) //nolint:errcheck // defaults always parse
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args and returns combined output.
func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}
