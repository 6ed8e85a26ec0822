package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docmatch/internal/core/domain"
	"github.com/custodia-labs/docmatch/internal/core/ports/driving"
	"github.com/custodia-labs/docmatch/internal/core/services"
)

var (
	matchJobFile string
	matchJobText string
	matchFormat  string
	matchOutput  string
	skillsFile   string
)

var matchCmd = &cobra.Command{
	Use:   "match [resume...]",
	Short: "Rank resumes against a job description",
	Long: `Scores every resume against a job description and prints the ranking.

The semantic score compares whole-document embeddings. When an LLM is
configured, extracted skills are matched against the job requirements and
fused with the semantic score.

Examples:
  docmatch match --job role.pdf alice.pdf bob.pdf
  docmatch match --job-text "Senior Go engineer" resumes/*.pdf --format csv --output ranking.csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMatch,
}

var skillsCmd = &cobra.Command{
	Use:   "skills [text]",
	Short: "Extract skills from text or a file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSkills,
}

func init() {
	matchCmd.Flags().StringVarP(&matchJobFile, "job", "j", "", "job description file")
	matchCmd.Flags().StringVar(&matchJobText, "job-text", "", "job description text")
	matchCmd.Flags().StringVarP(&matchFormat, "format", "f", "table", "output format: table, csv, json or yaml")
	matchCmd.Flags().StringVarP(&matchOutput, "output", "o", "", "write results to a file instead of stdout")
	matchCmd.MarkFlagsMutuallyExclusive("job", "job-text")
	matchCmd.MarkFlagsOneRequired("job", "job-text")

	skillsCmd.Flags().StringVar(&skillsFile, "file", "", "read text from a document")

	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(skillsCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	if matchingService == nil {
		return errors.New("matching service not configured")
	}

	// Validate the format before any provider calls are made.
	var format driving.ExportFormat
	if matchFormat != "table" {
		f, err := services.ParseExportFormat(matchFormat)
		if err != nil {
			return err
		}
		format = f
	}

	ctx := commandContext(cmd)
	sess := matchingService.NewSession()

	if matchJobFile != "" {
		raw, err := readDocument(matchJobFile)
		if err != nil {
			return err
		}
		if _, err := matchingService.SetJobDocument(ctx, sess, raw); err != nil {
			return fmt.Errorf("job description: %w", err)
		}
	} else if _, err := matchingService.SetJobText(ctx, sess, matchJobText); err != nil {
		return fmt.Errorf("job description: %w", err)
	}

	raws := make([]*domain.RawDocument, 0, len(args))
	for _, path := range args {
		raw, err := readDocument(path)
		if err != nil {
			return err
		}
		raws = append(raws, raw)
	}

	outcomes, err := matchingService.AddCandidates(ctx, sess, raws)
	if err != nil {
		return fmt.Errorf("loading resumes: %w", err)
	}
	for _, o := range outcomes {
		if !o.Success {
			cmd.PrintErrf("Warning: %s: %s\n", o.Filename, o.Error)
		}
	}

	results, summary, err := matchingService.Match(ctx, sess)
	if err != nil {
		return fmt.Errorf("match failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if matchOutput != "" {
		f, err := os.Create(matchOutput)
		if err != nil {
			return fmt.Errorf("creating %s: %w", matchOutput, err)
		}
		defer f.Close()
		out = f
	}

	if format == "" {
		printMatchTable(out, results, summary)
	} else if err := matchingService.Export(sess, format, out); err != nil {
		return err
	}

	if matchOutput != "" {
		cmd.Printf("Wrote %d result(s) to %s\n", len(results), matchOutput)
	}
	return nil
}

func printMatchTable(w io.Writer, results []domain.MatchResult, summary domain.MatchSummary) {
	fmt.Fprintf(w, "%-5s %-32s %8s %8s %8s\n", "Rank", "Resume", "Final", "Semantic", "Skills")
	for i := range results {
		r := &results[i]
		if r.Error != "" {
			fmt.Fprintf(w, "%-5d %-32s %8s  %s\n", r.Rank, truncate(r.Filename, 32), "-", r.Error)
			continue
		}
		fmt.Fprintf(w, "%-5d %-32s %8.2f %8.2f %8.2f\n",
			r.Rank, truncate(r.Filename, 32), r.FinalScore, r.SemanticScore, r.StructuredScore)
	}

	fmt.Fprintln(w)
	if summary.Message != "" {
		fmt.Fprintln(w, summary.Message)
		return
	}
	fmt.Fprintf(w, "Processed %d of %d, average %.2f (highest %.2f, lowest %.2f)\n",
		summary.Processed, summary.Total, summary.AverageScore, summary.HighestScore, summary.LowestScore)
	fmt.Fprintf(w, "Above 80: %d  Above 60: %d  Below 40: %d\n",
		summary.Above80, summary.Above60, summary.Below40)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func runSkills(cmd *cobra.Command, args []string) error {
	if matchingService == nil {
		return errors.New("matching service not configured")
	}

	var text string
	switch {
	case skillsFile != "":
		data, err := os.ReadFile(skillsFile)
		if err != nil {
			return fmt.Errorf("reading %s: %w", skillsFile, err)
		}
		text = string(data)
	case len(args) == 1:
		text = args[0]
	default:
		return errors.New("provide text or --file")
	}

	skills, err := matchingService.ExtractSkills(commandContext(cmd), text)
	if err != nil {
		return fmt.Errorf("skill extraction failed: %w", err)
	}

	groups := []struct {
		name  string
		items []string
	}{
		{"Technical", skills.TechnicalSkills},
		{"Soft", skills.SoftSkills},
		{"Tools", skills.Tools},
		{"Languages", skills.Languages},
		{"Frameworks", skills.Frameworks},
		{"Certifications", skills.Certifications},
	}
	for _, g := range groups {
		if len(g.items) == 0 {
			continue
		}
		cmd.Printf("%s: %s\n", g.name, strings.Join(g.items, ", "))
	}
	if skills.Error != "" {
		cmd.Printf("Warning: %s\n", skills.Error)
	}
	return nil
}
