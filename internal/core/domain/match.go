package domain

// Candidate is a submitted resume. The whole text is embedded as one unit.
type Candidate struct {
	ID       string `json:"id" yaml:"id"`
	Filename string `json:"filename" yaml:"filename"`

	// Text is the extracted text, truncated to the candidate character budget.
	Text      string `json:"-" yaml:"-"`
	CharCount int    `json:"char_count" yaml:"char_count"`

	Embedding []float32 `json:"-" yaml:"-"`

	// Skills is nil until extraction has run.
	Skills *SkillSet `json:"skills,omitempty" yaml:"skills,omitempty"`

	// Error records why extraction or embedding failed. A failed candidate is
	// kept so that totals remain auditable.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// OK reports whether the candidate can be scored.
func (c *Candidate) OK() bool {
	return c.Error == "" && len(c.Embedding) > 0
}

// Job is the reference description candidates are matched against.
type Job struct {
	ID     string `json:"id" yaml:"id"`
	Source string `json:"source" yaml:"source"`

	Text      string    `json:"-" yaml:"-"`
	CharCount int       `json:"char_count" yaml:"char_count"`
	Embedding []float32 `json:"-" yaml:"-"`

	// Requirements is nil when no LLM is configured. Structured scoring is
	// skipped in that case.
	Requirements *JobRequirements `json:"requirements,omitempty" yaml:"requirements,omitempty"`
}

// SkillDetails explains a structured-overlap score.
type SkillDetails struct {
	TotalScore       float64  `json:"total_score" yaml:"total_score"`
	RequiredScore    float64  `json:"required_score" yaml:"required_score"`
	PreferredScore   float64  `json:"preferred_score" yaml:"preferred_score"`
	RequiredMatches  []string `json:"required_matches" yaml:"required_matches"`
	RequiredMissing  []string `json:"required_missing" yaml:"required_missing"`
	PreferredMatches []string `json:"preferred_matches" yaml:"preferred_matches"`
	TotalRequired    int      `json:"total_required" yaml:"total_required"`
	TotalPreferred   int      `json:"total_preferred" yaml:"total_preferred"`

	ExtractedSkills SkillSet `json:"extracted_skills" yaml:"extracted_skills"`
}

// MatchResult is one candidate's fused score. Results are recomputed
// wholesale on every matching run.
type MatchResult struct {
	CandidateID string `json:"candidate_id" yaml:"candidate_id"`
	Filename    string `json:"resume_filename" yaml:"resume_filename"`

	// Index is the candidate's position in the submitted order.
	Index int `json:"index" yaml:"index"`

	SemanticScore   float64 `json:"semantic_score" yaml:"semantic_score"`
	StructuredScore float64 `json:"skill_score" yaml:"skill_score"`
	FinalScore      float64 `json:"final_score" yaml:"final_score"`

	// Rank is 1-based and dense in final-score order.
	Rank int `json:"rank" yaml:"rank"`

	SkillDetails *SkillDetails `json:"skill_details,omitempty" yaml:"skill_details,omitempty"`
	CharCount    int           `json:"char_count" yaml:"char_count"`

	// Error marks a candidate that failed upstream; its FinalScore is 0.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether the result carries an error marker.
func (r *MatchResult) Failed() bool {
	return r.Error != ""
}

// MatchSummary aggregates a matching run over the non-failed results.
type MatchSummary struct {
	Total        int     `json:"total" yaml:"total"`
	Processed    int     `json:"processed" yaml:"processed"`
	Failed       int     `json:"failed" yaml:"failed"`
	AverageScore float64 `json:"average_score" yaml:"average_score"`
	HighestScore float64 `json:"highest_score" yaml:"highest_score"`
	LowestScore  float64 `json:"lowest_score" yaml:"lowest_score"`
	Above80      int     `json:"above_80" yaml:"above_80"`
	Above60      int     `json:"above_60" yaml:"above_60"`
	Below40      int     `json:"below_40" yaml:"below_40"`
	Message      string  `json:"message,omitempty" yaml:"message,omitempty"`
}

// CandidateOutcome reports the processing of one submitted resume.
type CandidateOutcome struct {
	Index     int    `json:"index"`
	Candidate string `json:"candidate_id,omitempty"`
	Filename  string `json:"filename"`
	CharCount int    `json:"char_count"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}
