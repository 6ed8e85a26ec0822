package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docmatch/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers, the index location and other options.

Use subcommands to configure specific settings or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure all settings step by step.`,
	RunE:  runSettingsWizard,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long: `Configure the embedding provider used for indexing and matching.

Without --provider the command prompts for each value.

Examples:
  docmatch settings embedding
  docmatch settings embedding --provider openai --api-key "$OPENAI_API_KEY"`,
	RunE: runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long: `Configure the LLM provider used for answers and skill extraction.

Without --provider the command prompts for each value.

Examples:
  docmatch settings llm
  docmatch settings llm --provider anthropic --api-key "$ANTHROPIC_API_KEY"`,
	RunE: runSettingsLLM,
}

// providerFlags configure a provider without prompting.
type providerFlags struct {
	provider string
	model    string
	apiKey   string
	noVerify bool
}

func (f *providerFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.provider, "provider", "", "provider name, skips the prompts")
	cmd.Flags().StringVar(&f.model, "model", "", "model name (default: the provider's default)")
	cmd.Flags().StringVar(&f.apiKey, "api-key", "", "API key for cloud providers")
	cmd.Flags().BoolVar(&f.noVerify, "no-verify", false, "save without contacting the provider")
}

var embeddingFlags, llmFlags providerFlags

var settingsIndexDirCmd = &cobra.Command{
	Use:   "index-dir [path]",
	Short: "Set the index directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsIndexDir,
}

func init() {
	embeddingFlags.bind(settingsEmbeddingCmd)
	llmFlags.bind(settingsLLMCmd)

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsIndexDirCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	e := settings.Embedding
	printProvider(cmd, "Embedding", e.Provider, e.Model, e.BaseURL, e.APIKey, e.IsConfigured(), "not configured")

	l := settings.LLM
	printProvider(cmd, "LLM", l.Provider, l.Model, l.BaseURL, l.APIKey, l.IsConfigured(),
		"not configured (answers and skill matching disabled)")

	cmd.Println("[Index]")
	cmd.Printf("  Directory: %s\n", settings.Index.Dir)
	cmd.Printf("  Normalize: %t\n", settings.Index.Normalize)
	cmd.Printf("  Chunk size: %d, step: %d\n", settings.Chunker.Size, settings.Chunker.Step)
	cmd.Println()

	cmd.Println("[Engine]")
	cmd.Printf("  Concurrency: %d\n", settings.Engine.Concurrency)
	cmd.Printf("  Timeout: %s\n", settings.Engine.Timeout())
	if settings.Engine.RequestsPerSecond > 0 {
		cmd.Printf("  Rate limit: %.2f req/s\n", settings.Engine.RequestsPerSecond)
	}
	cmd.Println()

	cmd.Println("[Limits]")
	cmd.Printf("  QA upload: %d MB\n", settings.Limits.QAUploadMB)
	cmd.Printf("  Match upload: %d MB\n", settings.Limits.MatchUploadMB)
	cmd.Printf("  Candidate chars: %d\n", settings.Limits.CandidateChars)
	cmd.Printf("  Server address: %s\n", settings.Server.Addr)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'docmatch settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func printProvider(cmd *cobra.Command, title string, p domain.AIProvider, model, baseURL, apiKey string,
	configured bool, unconfigured string) {
	cmd.Printf("[%s]\n", title)
	if p == "" {
		cmd.Println("  Provider: (none)")
	} else {
		cmd.Printf("  Provider: %s\n", p.Description())
		cmd.Printf("  Model: %s\n", model)
	}
	if baseURL != "" {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if p.RequiresAPIKey() {
		key := "(not set)"
		if apiKey != "" {
			key = maskAPIKey(apiKey)
		}
		cmd.Printf("  API Key: %s\n", key)
	}
	status := "configured"
	if !configured {
		status = unconfigured
	}
	cmd.Printf("  Status: %s\n\n", status)
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	in := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("docmatch Settings Wizard")
	cmd.Println("========================")
	cmd.Println()

	cmd.Println("Step 1: Embedding provider")
	cmd.Println("Embeddings are required for indexing and matching.")
	cmd.Println()
	if err := configureProvider(cmd, in, embeddingChoice(), providerFlags{}); err != nil {
		return err
	}

	cmd.Println("Step 2: LLM provider")
	cmd.Println("An LLM answers questions and extracts skills. Without one, matching")
	cmd.Println("uses semantic scores only.")
	cmd.Print("\nConfigure an LLM now? [Y/n]: ")
	if yes(readLine(in), true) {
		cmd.Println()
		if err := configureProvider(cmd, in, llmChoice(), providerFlags{}); err != nil {
			return err
		}
	} else {
		cmd.Println("Skipped.")
		cmd.Println()
	}

	cmd.Println("Step 3: Index directory")
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	cmd.Printf("Enter index directory [%s]: ", settings.Index.Dir)
	if dir := readLine(in); dir != "" {
		if err := settingsService.SetIndexDir(dir); err != nil {
			return fmt.Errorf("failed to set index directory: %w", err)
		}
	}
	cmd.Println()

	cmd.Println("Configuration complete.")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}
	return nil
}

func runSettingsIndexDir(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.SetIndexDir(args[0]); err != nil {
		return fmt.Errorf("failed to set index directory: %w", err)
	}
	cmd.Printf("Index directory set to: %s\n", args[0])
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return configureProvider(cmd, bufio.NewReader(cmd.InOrStdin()), embeddingChoice(), embeddingFlags)
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return configureProvider(cmd, bufio.NewReader(cmd.InOrStdin()), llmChoice(), llmFlags)
}

// providerChoice is what differs between the embedding and LLM prompts.
type providerChoice struct {
	kind      string
	providers []domain.AIProvider
	models    map[domain.AIProvider]string
	set       func(p domain.AIProvider, model, apiKey string) error
	verify    func() error
}

func embeddingChoice() providerChoice {
	return providerChoice{
		kind:      "embedding",
		providers: domain.AllEmbeddingProviders(),
		models:    domain.DefaultEmbeddingModels(),
		set:       settingsService.SetEmbeddingProvider,
		verify:    settingsService.ValidateEmbeddingConfig,
	}
}

func llmChoice() providerChoice {
	return providerChoice{
		kind:      "LLM",
		providers: domain.AllLLMProviders(),
		models:    domain.DefaultLLMModels(),
		set:       settingsService.SetLLMProvider,
		verify:    settingsService.ValidateLLMConfig,
	}
}

// configureProvider prompts for anything flags leave open. Setting
// flags.provider makes the whole call non-interactive.
func configureProvider(cmd *cobra.Command, in *bufio.Reader, c providerChoice, flags providerFlags) error {
	interactive := flags.provider == ""

	var provider domain.AIProvider
	if interactive {
		cmd.Printf("Select %s provider\n", c.kind)
		for i, p := range c.providers {
			cmd.Printf("  %d. %s\n", i+1, p.Description())
		}
		cmd.Print("\nEnter choice [1]: ")
		provider = c.providers[parseChoice(readLine(in), len(c.providers), 1)-1]
	} else {
		provider = domain.AIProvider(strings.ToLower(flags.provider))
		if !slices.Contains(c.providers, provider) {
			return fmt.Errorf("unknown %s provider %q (choose from %s)", c.kind, flags.provider, joinProviders(c.providers))
		}
	}

	model := flags.model
	if model == "" {
		model = c.models[provider]
		if interactive {
			cmd.Printf("Enter model name [%s]: ", model)
			if m := readLine(in); m != "" {
				model = m
			}
		}
	}

	apiKey := flags.apiKey
	if provider.RequiresAPIKey() && apiKey == "" {
		if interactive {
			cmd.Print("Enter API key: ")
			apiKey = readSecret(cmd.InOrStdin(), in)
			cmd.Println()
		}
		if apiKey == "" {
			return fmt.Errorf("%s requires an API key", provider)
		}
	}

	if err := c.set(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure %s provider: %w", c.kind, err)
	}

	if !flags.noVerify {
		cmd.Printf("Checking %s... ", provider.Description())
		if err := c.verify(); err != nil {
			cmd.Println("FAILED")
			return fmt.Errorf("%s provider saved but not reachable: %w", c.kind, err)
		}
		cmd.Println("OK")
	}

	cmd.Printf("%s provider set to %s (%s)\n\n", c.kind, provider.Description(), model)
	return nil
}

func joinProviders(ps []domain.AIProvider) string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.String()
	}
	return strings.Join(names, ", ")
}

//nolint:errcheck // EOF reads as an empty answer
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

// yes reads a y/n answer; blank means def.
func yes(answer string, def bool) bool {
	switch strings.ToLower(answer) {
	case "":
		return def
	case "y", "yes":
		return true
	default:
		return false
	}
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readSecret reads without echo from a terminal and falls back to a plain
// line when input is piped.
func readSecret(src io.Reader, buffered *bufio.Reader) string {
	if f, ok := src.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if secret, err := term.ReadPassword(int(f.Fd())); err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	return readLine(buffered)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
