// Package cli implements the docmatch command line with cobra.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docmatch/internal/core/domain"
	"github.com/custodia-labs/docmatch/internal/core/ports/driving"
	"github.com/custodia-labs/docmatch/internal/logger"
)

var (
	version = "dev"

	qaService       driving.QAService
	matchingService driving.MatchingService
	settingsService driving.SettingsService
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "docmatch",
	Short: "Question answering and resume matching over documents",
	Long: `docmatch indexes a document for retrieval-augmented question answering
and ranks resumes against a job description.

Embeddings and completions come from a configured AI provider.
Run 'docmatch settings' to see the active configuration.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Services holds the driving ports the commands run against.
type Services struct {
	QA       driving.QAService
	Matching driving.MatchingService
	Settings driving.SettingsService
}

// SetServices wires the application services into the commands.
func SetServices(s Services) {
	qaService = s.QA
	matchingService = s.Matching
	settingsService = s.Settings
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// commandContext returns the command's context, falling back to Background
// when the command was executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// readDocument loads a file from disk as a raw document.
func readDocument(path string) (*domain.RawDocument, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return &domain.RawDocument{
		URI:     filepath.Base(path),
		Content: content,
	}, nil
}
