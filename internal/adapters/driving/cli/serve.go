package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docmatch/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/docmatch/internal/core/domain"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the question answering and matching API under /api.

The server keeps one matching session in memory for its lifetime.
The listen address defaults to the server.addr setting.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from settings)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if qaService == nil || matchingService == nil {
		return errors.New("services not configured")
	}

	settings := domain.DefaultAppSettings()
	if settingsService != nil {
		current, err := settingsService.Get()
		if err != nil {
			return err
		}
		settings = *current
	}

	addr, _ := cmd.Flags().GetString("addr") //nolint:errcheck // flag is defined above
	if addr == "" {
		addr = settings.Server.Addr
	}

	server, err := httpapi.NewServer(&httpapi.Ports{
		QA:       qaService,
		Matching: matchingService,
		Settings: settingsService,
	}, httpapi.Options{
		MaxQAUpload:    settings.Limits.QAUploadBytes(),
		MaxMatchUpload: settings.Limits.MatchUploadBytes(),
	})
	if err != nil {
		return err
	}

	cmd.Printf("docmatch API listening on %s\n", addr)
	return server.Run(commandContext(cmd), addr)
}
