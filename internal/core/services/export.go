package services

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/docmatch/internal/core/domain"
	"github.com/custodia-labs/docmatch/internal/core/ports/driving"
)

var csvHeader = []string{
	"Rank", "Resume", "Final Score", "Semantic Score", "Skill Score",
	"Required Skills Matched", "Required Skills Missing",
}

// ParseExportFormat validates a user-supplied format name.
func ParseExportFormat(s string) (driving.ExportFormat, error) {
	switch f := driving.ExportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case driving.ExportCSV, driving.ExportJSON, driving.ExportYAML:
		return f, nil
	case "":
		return driving.ExportJSON, nil
	default:
		return "", domain.InputValidationError("export", fmt.Sprintf("unknown export format %q", s))
	}
}

// ExportResults renders results in the given format.
func ExportResults(results []domain.MatchResult, format driving.ExportFormat, w io.Writer) error {
	const op = "export"

	if len(results) == 0 {
		return domain.InputValidationError(op, "no results to export; run matching first")
	}

	switch format {
	case driving.ExportCSV:
		return writeCSV(results, w)
	case driving.ExportJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case driving.ExportYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	default:
		return domain.InputValidationError(op, fmt.Sprintf("unknown export format %q", format))
	}
}

func writeCSV(results []domain.MatchResult, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range results {
		var matched, missing int
		if r.SkillDetails != nil {
			matched = len(r.SkillDetails.RequiredMatches)
			missing = len(r.SkillDetails.RequiredMissing)
		}
		row := []string{
			strconv.Itoa(r.Rank),
			r.Filename,
			formatScore(r.FinalScore),
			formatScore(r.SemanticScore),
			formatScore(r.StructuredScore),
			strconv.Itoa(matched),
			strconv.Itoa(missing),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatScore(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
