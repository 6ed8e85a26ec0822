package domain

import "strings"

// NotSpecified is the default for free-text attribute categories.
const NotSpecified = "Not specified"

// SkillSet is the structured attribute bundle extracted from a candidate.
// Every category is non-nil after Normalise so callers never null-check.
type SkillSet struct {
	TechnicalSkills []string `json:"technical_skills" yaml:"technical_skills"`
	SoftSkills      []string `json:"soft_skills" yaml:"soft_skills"`
	Tools           []string `json:"tools" yaml:"tools"`
	Languages       []string `json:"languages" yaml:"languages"`
	Frameworks      []string `json:"frameworks" yaml:"frameworks"`
	Certifications  []string `json:"certifications" yaml:"certifications"`

	// Error is set when extraction failed and the defaults were returned.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Normalise back-fills missing categories with empty lists.
func (s *SkillSet) Normalise() {
	s.TechnicalSkills = orEmpty(s.TechnicalSkills)
	s.SoftSkills = orEmpty(s.SoftSkills)
	s.Tools = orEmpty(s.Tools)
	s.Languages = orEmpty(s.Languages)
	s.Frameworks = orEmpty(s.Frameworks)
	s.Certifications = orEmpty(s.Certifications)
}

// All returns every skill across categories, lowercased and trimmed.
func (s *SkillSet) All() []string {
	var all []string
	for _, group := range [][]string{
		s.TechnicalSkills, s.SoftSkills, s.Tools,
		s.Languages, s.Frameworks, s.Certifications,
	} {
		for _, skill := range group {
			skill = strings.ToLower(strings.TrimSpace(skill))
			if skill != "" {
				all = append(all, skill)
			}
		}
	}
	return all
}

// EmptySkillSet returns the all-empty default bundle.
func EmptySkillSet() SkillSet {
	var s SkillSet
	s.Normalise()
	return s
}

// JobRequirements is the structured attribute bundle extracted from a job
// description.
type JobRequirements struct {
	RequiredSkills      []string `json:"required_skills" yaml:"required_skills"`
	PreferredSkills     []string `json:"preferred_skills" yaml:"preferred_skills"`
	ExperienceYears     string   `json:"experience_years" yaml:"experience_years"`
	Education           string   `json:"education" yaml:"education"`
	KeyResponsibilities []string `json:"key_responsibilities" yaml:"key_responsibilities"`

	// Error is set when extraction failed and the defaults were returned.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Normalise back-fills missing categories with their empty defaults.
func (j *JobRequirements) Normalise() {
	j.RequiredSkills = orEmpty(j.RequiredSkills)
	j.PreferredSkills = orEmpty(j.PreferredSkills)
	j.KeyResponsibilities = orEmpty(j.KeyResponsibilities)
	if strings.TrimSpace(j.ExperienceYears) == "" {
		j.ExperienceYears = NotSpecified
	}
	if strings.TrimSpace(j.Education) == "" {
		j.Education = NotSpecified
	}
}

// EmptyJobRequirements returns the all-empty default bundle.
func EmptyJobRequirements() JobRequirements {
	var j JobRequirements
	j.Normalise()
	return j
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
