// Command docmatch answers questions over an indexed document and ranks
// resumes against a job description.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/docmatch/internal/adapters/driven/ai"
	"github.com/custodia-labs/docmatch/internal/adapters/driven/config/env"
	"github.com/custodia-labs/docmatch/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docmatch/internal/adapters/driven/storage/index"
	"github.com/custodia-labs/docmatch/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/docmatch/internal/adapters/driving/cli"
	"github.com/custodia-labs/docmatch/internal/core/ports/driven"
	"github.com/custodia-labs/docmatch/internal/core/services"
	"github.com/custodia-labs/docmatch/internal/extractors"
	"github.com/custodia-labs/docmatch/internal/extractors/pdf"
	"github.com/custodia-labs/docmatch/internal/extractors/plaintext"
	"github.com/custodia-labs/docmatch/internal/logger"
	"github.com/custodia-labs/docmatch/internal/postprocessors/chunker"
)

// Set by the linker: -ldflags "-X main.version=1.2.3".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	defer logger.Sync() //nolint:errcheck // nothing useful to do on exit

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A missing .env file is normal.
	_ = godotenv.Load() //nolint:errcheck

	cleanup, err := wire(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer cleanup()

	cli.SetVersion(version)
	if err := cli.Execute(ctx); err != nil {
		return 1
	}
	return 0
}

// wire builds the services from settings and installs them in the CLI.
func wire(ctx context.Context) (func(), error) {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	env.New().Apply(settings)

	aiServices := ai.Initialise(settings)
	for _, w := range aiServices.Warnings {
		logger.Warn("%s", w)
	}

	store, err := index.NewStore(settings.Index.Dir)
	if err != nil {
		aiServices.Close()
		return nil, err
	}
	manager := services.NewIndexManager(store, func(dimensions int) driven.VectorIndex {
		return flat.New(dimensions)
	})

	// Another process may rebuild the index; reload lazily when it does.
	watcher, err := index.Watch(ctx, store.Dir(), manager.Invalidate)
	if err != nil {
		logger.Warn("index watcher disabled: %v", err)
	}

	prompts, err := file.NewPromptStore("")
	if err != nil {
		aiServices.Close()
		return nil, err
	}

	registry := extractors.NewRegistry(pdf.New(), plaintext.New())
	chunks := chunker.New(
		chunker.WithSize(settings.Chunker.Size),
		chunker.WithStep(settings.Chunker.Step),
	)

	qa := services.NewQAService(registry, chunks, aiServices.EmbeddingService, aiServices.LLMService,
		prompts, manager, services.QAOptions{
			Concurrency:    settings.Engine.Concurrency,
			Normalize:      settings.Index.Normalize,
			MaxUploadBytes: settings.Limits.QAUploadBytes(),
		})

	attributes := services.NewAttributeExtractor(aiServices.LLMService, prompts, settings.Limits.CandidateChars)
	matching := services.NewMatchingService(registry, aiServices.EmbeddingService, attributes,
		services.MatchingOptions{
			Concurrency:    settings.Engine.Concurrency,
			CandidateChars: settings.Limits.CandidateChars,
			MaxUploadBytes: settings.Limits.MatchUploadBytes(),
		})

	cli.SetServices(cli.Services{
		QA:       qa,
		Matching: matching,
		Settings: settingsService,
	})

	return func() {
		if watcher != nil {
			watcher.Close() //nolint:errcheck
		}
		store.Close() //nolint:errcheck
		aiServices.Close()
	}, nil
}
