package services

import (
	"sort"
	"strings"

	"github.com/custodia-labs/docmatch/internal/core/domain"
)

// Fusion weights.
const (
	SemanticWeight   = 0.6
	StructuredWeight = 0.4

	RequiredWeight  = 0.7
	PreferredWeight = 0.3

	// NeutralStructuredScore is reported when no structured data exists.
	NeutralStructuredScore = 50.0
)

// SemanticScore maps the cosine similarity of a and b from [-1, 1] to
// [0, 100].
func SemanticScore(a, b []float32) float64 {
	return round2((cosine(a, b) + 1) * 50)
}

// SkillMatch compares a candidate's skills against job requirements. A
// requirement is satisfied when it and any candidate skill contain one
// another, case-insensitively. Empty requirement sets score 100.
func SkillMatch(skills domain.SkillSet, req domain.JobRequirements) domain.SkillDetails {
	have := skills.All()

	required := lowerAll(req.RequiredSkills)
	preferred := lowerAll(req.PreferredSkills)

	details := domain.SkillDetails{
		RequiredMatches:  []string{},
		RequiredMissing:  []string{},
		PreferredMatches: []string{},
		TotalRequired:    len(required),
		TotalPreferred:   len(preferred),
		ExtractedSkills:  skills,
	}

	for _, skill := range required {
		if overlaps(skill, have) {
			details.RequiredMatches = append(details.RequiredMatches, skill)
		} else {
			details.RequiredMissing = append(details.RequiredMissing, skill)
		}
	}
	for _, skill := range preferred {
		if overlaps(skill, have) {
			details.PreferredMatches = append(details.PreferredMatches, skill)
		}
	}

	requiredScore := 100.0
	if len(required) > 0 {
		requiredScore = float64(len(details.RequiredMatches)) / float64(len(required)) * 100
	}
	preferredScore := 100.0
	if len(preferred) > 0 {
		preferredScore = float64(len(details.PreferredMatches)) / float64(len(preferred)) * 100
	}

	details.RequiredScore = round2(requiredScore)
	details.PreferredScore = round2(preferredScore)
	details.TotalScore = round2(requiredScore*RequiredWeight + preferredScore*PreferredWeight)
	return details
}

func overlaps(skill string, have []string) bool {
	for _, h := range have {
		if strings.Contains(h, skill) || strings.Contains(skill, h) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// FuseScores combines semantic and structured scores. Without structured
// data the final score is the semantic score alone.
func FuseScores(semantic, structured float64, hasStructured bool) float64 {
	if !hasStructured {
		return round2(semantic)
	}
	return round2(semantic*SemanticWeight + structured*StructuredWeight)
}

// Rank sorts results by final score descending and assigns dense 1-based
// ranks. Ties keep their input order.
func Rank(results []domain.MatchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinalScore > results[j].FinalScore
	})
	for i := range results {
		results[i].Rank = i + 1
	}
}

// Summarise aggregates the non-failed results of a run.
func Summarise(results []domain.MatchResult) domain.MatchSummary {
	summary := domain.MatchSummary{Total: len(results)}

	var sum float64
	first := true
	for _, r := range results {
		if r.Failed() {
			summary.Failed++
			continue
		}
		summary.Processed++
		sum += r.FinalScore
		if first || r.FinalScore > summary.HighestScore {
			summary.HighestScore = r.FinalScore
		}
		if first || r.FinalScore < summary.LowestScore {
			summary.LowestScore = r.FinalScore
		}
		first = false

		// Buckets are cumulative: a score of 85 counts in both above_80
		// and above_60.
		if r.FinalScore >= 80 {
			summary.Above80++
		}
		if r.FinalScore >= 60 {
			summary.Above60++
		}
		if r.FinalScore < 40 {
			summary.Below40++
		}
	}

	switch {
	case summary.Total == 0:
		summary.Message = "No results"
		return summary
	case summary.Processed == 0:
		summary.Message = "All resumes failed processing"
		return summary
	}
	summary.AverageScore = round2(sum / float64(summary.Processed))
	summary.HighestScore = round2(summary.HighestScore)
	summary.LowestScore = round2(summary.LowestScore)
	return summary
}
