package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/docmatch/internal/core/domain"
	"github.com/custodia-labs/docmatch/internal/core/ports/driven"
	"github.com/custodia-labs/docmatch/internal/core/ports/driving"
	"github.com/custodia-labs/docmatch/internal/logger"
)

// Ensure MatchingService implements the interface.
var _ driving.MatchingService = (*MatchingService)(nil)

// MatchingOptions tunes the matching pipeline.
type MatchingOptions struct {
	// Concurrency caps in-flight provider calls per batch.
	Concurrency int

	// CandidateChars is the rune budget for embedding and extraction.
	CandidateChars int

	// MaxUploadBytes rejects larger resumes or job documents. 0 disables.
	MaxUploadBytes int64
}

// MatchingService ranks resumes against a job description.
type MatchingService struct {
	extractors driven.ExtractorRegistry
	embedder   driven.EmbeddingService
	attributes *AttributeExtractor
	opts       MatchingOptions
}

// NewMatchingService creates a matching service. Without an LLM in
// attributes, ranking uses the semantic score alone.
func NewMatchingService(
	extractors driven.ExtractorRegistry,
	embedder driven.EmbeddingService,
	attributes *AttributeExtractor,
	opts MatchingOptions,
) *MatchingService {
	if opts.CandidateChars <= 0 {
		opts.CandidateChars = DefaultExtractionRunes
	}
	return &MatchingService{
		extractors: extractors,
		embedder:   embedder,
		attributes: attributes,
		opts:       opts,
	}
}

// NewSession creates an empty session.
func (s *MatchingService) NewSession() *domain.Session {
	return domain.NewSession(uuid.New().String())
}

// AddCandidates extracts and embeds every resume and appends them to the
// session in submission order. A resume that fails is kept with its error
// so that totals stay auditable.
func (s *MatchingService) AddCandidates(
	ctx context.Context, sess *domain.Session, raws []*domain.RawDocument,
) ([]domain.CandidateOutcome, error) {
	const op = "add candidates"
	logger.Section("Add Candidates")

	if len(raws) == 0 {
		return nil, domain.InputValidationError(op, "no files provided")
	}
	if s.embedder == nil {
		return nil, domain.NewError(domain.KindConfiguration, op,
			"no embedding provider configured", domain.ErrEmbeddingUnavailable)
	}

	outcomes := dispatch(ctx, s.opts.Concurrency, raws, s.processCandidate)

	candidates := make([]*domain.Candidate, 0, len(outcomes))
	report := make([]domain.CandidateOutcome, 0, len(outcomes))
	for _, o := range outcomes {
		c := o.Value
		if c == nil {
			// Context ended before the unit ran.
			c = &domain.Candidate{ID: uuid.New().String()}
		}
		c.Filename = filename(raws[o.Index], o.Index)
		if o.Err != nil {
			c.Error = o.Err.Error()
			logger.Warn("Candidate %q failed: %v", c.Filename, o.Err)
		}
		candidates = append(candidates, c)
		report = append(report, domain.CandidateOutcome{
			Index:     o.Index,
			Candidate: c.ID,
			Filename:  c.Filename,
			CharCount: c.CharCount,
			Success:   c.Error == "",
			Error:     c.Error,
		})
	}

	sess.AddCandidates(candidates...)
	logger.Debug("Session %s now has %d candidates", sess.ID, len(sess.Candidates()))
	return report, nil
}

// processCandidate returns a candidate even on failure so its name survives.
func (s *MatchingService) processCandidate(ctx context.Context, raw *domain.RawDocument) (*domain.Candidate, error) {
	c := &domain.Candidate{ID: uuid.New().String()}

	text, err := s.readText(ctx, "add candidate", raw)
	if err != nil {
		return c, err
	}
	c.CharCount = utf8.RuneCountInString(text)
	c.Text = truncateRunes(text, s.opts.CandidateChars)

	vec, err := s.embedder.Embed(ctx, c.Text)
	if err != nil {
		return c, fmt.Errorf("embedding error: %w", err)
	}
	c.Embedding = vec
	return c, nil
}

// SetJobText sets the job from free text.
func (s *MatchingService) SetJobText(ctx context.Context, sess *domain.Session, text string) (*domain.Job, error) {
	const op = "set job"

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.InputValidationError(op, "no job description provided")
	}
	return s.setJob(ctx, sess, "text", text)
}

// SetJobDocument sets the job from an uploaded document.
func (s *MatchingService) SetJobDocument(ctx context.Context, sess *domain.Session, raw *domain.RawDocument) (*domain.Job, error) {
	const op = "set job"

	text, err := s.readText(ctx, op, raw)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.InputValidationError(op, "job document contains no text")
	}
	return s.setJob(ctx, sess, filename(raw, 0), text)
}

func (s *MatchingService) setJob(ctx context.Context, sess *domain.Session, source, text string) (*domain.Job, error) {
	const op = "set job"
	logger.Section("Set Job")

	if s.embedder == nil {
		return nil, domain.NewError(domain.KindConfiguration, op,
			"no embedding provider configured", domain.ErrEmbeddingUnavailable)
	}

	job := &domain.Job{
		ID:        uuid.New().String(),
		Source:    source,
		CharCount: utf8.RuneCountInString(text),
		Text:      truncateRunes(text, s.opts.CandidateChars),
	}

	vec, err := s.embedder.Embed(ctx, job.Text)
	if err != nil {
		return nil, err
	}
	job.Embedding = vec

	if s.attributes != nil && s.attributes.Available() {
		req := s.attributes.ExtractJobRequirements(ctx, job.Text)
		job.Requirements = &req
		logger.Debug("Job requirements: %d required, %d preferred", len(req.RequiredSkills), len(req.PreferredSkills))
	}

	sess.SetJob(job)
	return job, nil
}

// Match scores every candidate against the session's job, ranks them and
// stores the results on the session. Candidate skills are extracted on
// first use and cached on the candidate. A bundle whose LLM call failed is
// used for this run only, so the next run extracts it again.
func (s *MatchingService) Match(ctx context.Context, sess *domain.Session) ([]domain.MatchResult, domain.MatchSummary, error) {
	const op = "match"
	logger.Section("Match")

	release := sess.AcquireRun()
	defer release()

	candidates := sess.Candidates()
	if len(candidates) == 0 {
		return nil, domain.MatchSummary{}, domain.InputValidationError(op, "no resumes uploaded")
	}
	job := sess.Job()
	if job == nil {
		return nil, domain.MatchSummary{}, domain.InputValidationError(op, "no job description provided")
	}

	structured := job.Requirements != nil && job.Requirements.Error == "" &&
		s.attributes != nil && s.attributes.Available()

	skills := make([]*domain.SkillSet, len(candidates))
	if structured {
		var pending []int
		for i, c := range candidates {
			switch {
			case !c.OK():
			case c.Skills != nil:
				skills[i] = c.Skills
			default:
				pending = append(pending, i)
			}
		}
		extracted := dispatch(ctx, s.opts.Concurrency, pending, func(ctx context.Context, i int) (domain.SkillSet, error) {
			return s.attributes.extractSkills(ctx, candidates[i].Text)
		})
		if err := ctx.Err(); err != nil {
			return nil, domain.MatchSummary{}, err
		}
		for _, o := range extracted {
			i := pending[o.Index]
			set := o.Value
			skills[i] = &set
			if o.Err != nil {
				logger.Debug("Skills for %s not cached: %v", candidates[i].Filename, o.Err)
				continue
			}
			candidates[i].Skills = &set
		}
	}

	results := make([]domain.MatchResult, 0, len(candidates))
	for i, c := range candidates {
		results = append(results, s.score(i, c, job, skills[i]))
	}
	Rank(results)
	summary := Summarise(results)

	sess.SetResults(results)
	logger.Debug("Matched %d candidates: %d processed, %d failed", summary.Total, summary.Processed, summary.Failed)
	return results, summary, nil
}

// score fuses the semantic and structured scores. A nil skills means
// structured matching is off for this run.
func (s *MatchingService) score(index int, c *domain.Candidate, job *domain.Job, skills *domain.SkillSet) domain.MatchResult {
	r := domain.MatchResult{
		CandidateID: c.ID,
		Filename:    c.Filename,
		Index:       index,
		CharCount:   c.CharCount,
	}
	if !c.OK() {
		r.Error = c.Error
		if r.Error == "" {
			r.Error = "processing failed"
		}
		return r
	}

	structured := skills != nil
	r.SemanticScore = SemanticScore(c.Embedding, job.Embedding)
	r.StructuredScore = NeutralStructuredScore

	if structured {
		details := SkillMatch(*skills, *job.Requirements)
		r.StructuredScore = details.TotalScore
		r.SkillDetails = &details
	}

	r.FinalScore = FuseScores(r.SemanticScore, r.StructuredScore, structured)
	return r
}

// ExtractSkills runs skill extraction over arbitrary text.
func (s *MatchingService) ExtractSkills(ctx context.Context, text string) (domain.SkillSet, error) {
	const op = "extract skills"

	text = strings.TrimSpace(text)
	if text == "" {
		return domain.SkillSet{}, domain.InputValidationError(op, "no text provided")
	}
	if s.attributes == nil || !s.attributes.Available() {
		return domain.SkillSet{}, domain.NewError(domain.KindConfiguration, op,
			"no LLM provider configured", domain.ErrLLMUnavailable)
	}
	return s.attributes.ExtractSkills(ctx, text), nil
}

// Export renders the session's last results.
func (s *MatchingService) Export(sess *domain.Session, format driving.ExportFormat, w io.Writer) error {
	return ExportResults(sess.Results(), format, w)
}

// readText validates size, extracts the document and returns its text.
func (s *MatchingService) readText(ctx context.Context, op string, raw *domain.RawDocument) (string, error) {
	if raw == nil || len(raw.Content) == 0 {
		return "", domain.InputValidationError(op, "no file provided")
	}
	if s.opts.MaxUploadBytes > 0 && raw.Size() > s.opts.MaxUploadBytes {
		return "", domain.InputValidationError(op,
			fmt.Sprintf("file exceeds the %d MB limit", s.opts.MaxUploadBytes>>20))
	}
	doc, err := s.extractors.Extract(ctx, raw)
	if err != nil {
		return "", err
	}
	return doc.Text(), nil
}

func filename(raw *domain.RawDocument, index int) string {
	if raw != nil && raw.URI != "" {
		return filepath.Base(raw.URI)
	}
	return fmt.Sprintf("Resume %d", index)
}
