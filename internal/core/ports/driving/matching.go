package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/docmatch/internal/core/domain"
)

// ExportFormat selects the rendering of exported match results.
type ExportFormat string

// Supported export formats.
const (
	ExportCSV  ExportFormat = "csv"
	ExportJSON ExportFormat = "json"
	ExportYAML ExportFormat = "yaml"
)

// MatchingService ranks candidates against a job. All state lives in the
// caller-owned session.
type MatchingService interface {
	// NewSession creates an empty session.
	NewSession() *domain.Session

	// AddCandidates processes resumes and appends them to the session.
	// Per-candidate failures are recorded, not returned.
	AddCandidates(ctx context.Context, sess *domain.Session, raws []*domain.RawDocument) ([]domain.CandidateOutcome, error)

	// SetJobText sets the job from free text.
	SetJobText(ctx context.Context, sess *domain.Session, text string) (*domain.Job, error)

	// SetJobDocument sets the job from an uploaded document.
	SetJobDocument(ctx context.Context, sess *domain.Session, raw *domain.RawDocument) (*domain.Job, error)

	// Match scores and ranks every candidate and stores the results.
	Match(ctx context.Context, sess *domain.Session) ([]domain.MatchResult, domain.MatchSummary, error)

	// ExtractSkills runs skill extraction over arbitrary text.
	ExtractSkills(ctx context.Context, text string) (domain.SkillSet, error)

	// Export renders the session's last results.
	Export(sess *domain.Session, format ExportFormat, w io.Writer) error
}
