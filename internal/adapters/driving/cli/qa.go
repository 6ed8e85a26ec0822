package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docmatch/internal/core/domain"
	"github.com/custodia-labs/docmatch/internal/core/ports/driving"
)

var (
	retrieveK    int
	retrieveJSON bool
	askJSON      bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Index a document for question answering",
	Long: `Extracts text from a PDF or plain text file, splits it into overlapping
chunks, embeds every chunk and replaces the current index.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the indexed document",
	Args:  cobra.ExactArgs(1),
	RunE:  runAsk,
}

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Show the chunks most similar to a query",
	Args:  cobra.ExactArgs(1),
	RunE:  runRetrieve,
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Inspect or clear the document index",
}

var indexStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index status",
	RunE:  runIndexStatus,
}

var indexClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the index",
	RunE:  runIndexClear,
}

func init() {
	retrieveCmd.Flags().IntVarP(&retrieveK, "top", "k", driving.DefaultRetrieveK, "number of chunks to return")
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "output chunks as JSON")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")

	indexCmd.AddCommand(indexStatusCmd)
	indexCmd.AddCommand(indexClearCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(retrieveCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if qaService == nil {
		return errors.New("QA service not configured")
	}

	raw, err := readDocument(args[0])
	if err != nil {
		return err
	}

	result, err := qaService.Ingest(commandContext(cmd), raw)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	if result.TotalChunks == 0 {
		cmd.Printf("%s contains no text; index unchanged.\n", result.Filename)
		return nil
	}

	cmd.Printf("Indexed %s\n", result.Filename)
	cmd.Printf("  Pages:  %d\n", result.TotalPages)
	cmd.Printf("  Chunks: %d\n", result.TotalChunks)
	if result.FailedChunks > 0 {
		cmd.Printf("  Failed: %d (dropped)\n", result.FailedChunks)
	}
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	if qaService == nil {
		return errors.New("QA service not configured")
	}

	answer, err := qaService.Ask(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return printJSON(cmd, answer)
	}

	cmd.Println(answer.Answer)
	cmd.Println()
	cmd.Println("Sources:")
	for _, c := range answer.RelevantChunks {
		cmd.Printf("  [Page %d] (%.3f) %s\n", c.Page, c.Score, c.Text)
	}
	return nil
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	if qaService == nil {
		return errors.New("QA service not configured")
	}

	hits, err := qaService.Retrieve(commandContext(cmd), args[0], retrieveK)
	if err != nil {
		return fmt.Errorf("retrieve failed: %w", err)
	}

	if retrieveJSON {
		return printJSON(cmd, hits)
	}

	if len(hits) == 0 {
		cmd.Println("No chunks found.")
		return nil
	}
	for i, h := range hits {
		cmd.Printf("  [%d] Page %d (%.3f)\n", i+1, h.Chunk.Page, h.Score)
		cmd.Printf("      %s\n", h.Chunk.Content)
	}
	return nil
}

func runIndexStatus(cmd *cobra.Command, _ []string) error {
	if qaService == nil {
		return errors.New("QA service not configured")
	}

	status, err := qaService.Status(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("status failed: %w", err)
	}

	printIndexStatus(cmd, status)
	return nil
}

func printIndexStatus(cmd *cobra.Command, status domain.IndexStatus) {
	if !status.Exists {
		cmd.Println("No index. Run 'docmatch ingest <file>' to build one.")
		return
	}

	cmd.Println("Index")
	cmd.Printf("  Document:    %s\n", status.DocumentName)
	cmd.Printf("  Pages:       %d\n", status.TotalPages)
	cmd.Printf("  Chunks:      %d\n", status.TotalChunks)
	cmd.Printf("  Dimensions:  %d\n", status.Dimensions)
	cmd.Printf("  Vector file: %d bytes\n", status.VectorFileSize)
	cmd.Printf("  Chunk file:  %d bytes\n", status.ChunkFileSize)
	if !status.BuiltAt.IsZero() {
		cmd.Printf("  Built:       %s\n", status.BuiltAt.Format(time.RFC3339))
	}
}

func runIndexClear(cmd *cobra.Command, _ []string) error {
	if qaService == nil {
		return errors.New("QA service not configured")
	}

	if err := qaService.Clear(commandContext(cmd)); err != nil {
		return fmt.Errorf("clear failed: %w", err)
	}
	cmd.Println("Index cleared.")
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
