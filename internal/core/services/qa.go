package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docmatch/internal/core/domain"
	"github.com/custodia-labs/docmatch/internal/core/ports/driven"
	"github.com/custodia-labs/docmatch/internal/core/ports/driving"
	"github.com/custodia-labs/docmatch/internal/logger"
)

// Ensure QAService implements the interface.
var _ driving.QAService = (*QAService)(nil)

const (
	defaultQASystemPrompt = "You are answering questions about a %d-page document. " +
		"When providing answers, mention page numbers when relevant. Be concise and helpful."

	qaUserPrompt = "Context: %s\n\nQuestion: %s\n\nAnswer based on the context:"

	previewRunes = 200
)

// QAOptions tunes the question answering pipeline.
type QAOptions struct {
	// Concurrency caps in-flight embedding calls during ingest.
	Concurrency int

	// Normalize unit-scales vectors at build and query time.
	Normalize bool

	// MaxUploadBytes rejects larger documents before extraction. 0 disables.
	MaxUploadBytes int64
}

// QAService answers questions over a single indexed document.
type QAService struct {
	extractors driven.ExtractorRegistry
	chunker    driven.Chunker
	embedder   driven.EmbeddingService
	llm        driven.LLMService
	prompts    driven.PromptStore
	index      *IndexManager
	retriever  *Retriever
	opts       QAOptions
}

// NewQAService creates a QA service. The llm and prompts parameters are
// optional: without an LLM, Ingest and Retrieve work but Ask fails with a
// configuration error.
func NewQAService(
	extractors driven.ExtractorRegistry,
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
	llm driven.LLMService,
	prompts driven.PromptStore,
	index *IndexManager,
	opts QAOptions,
) *QAService {
	return &QAService{
		extractors: extractors,
		chunker:    chunker,
		embedder:   embedder,
		llm:        llm,
		prompts:    prompts,
		index:      index,
		retriever:  NewRetriever(embedder, index, opts.Normalize),
		opts:       opts,
	}
}

// Ingest extracts, chunks and embeds a document and replaces the index.
// Chunks whose embedding fails are dropped; if every chunk fails the first
// error is returned and the previous index is left in place.
func (s *QAService) Ingest(ctx context.Context, raw *domain.RawDocument) (*domain.IngestResult, error) {
	const op = "ingest"
	logger.Section("Ingest")

	if raw == nil || len(raw.Content) == 0 {
		return nil, domain.InputValidationError(op, "no document provided")
	}
	if s.opts.MaxUploadBytes > 0 && raw.Size() > s.opts.MaxUploadBytes {
		return nil, domain.InputValidationError(op,
			fmt.Sprintf("document exceeds the %d MB limit", s.opts.MaxUploadBytes>>20))
	}
	if s.embedder == nil {
		return nil, domain.NewError(domain.KindConfiguration, op,
			"no embedding provider configured", domain.ErrEmbeddingUnavailable)
	}

	doc, err := s.extractors.Extract(ctx, raw)
	if err != nil {
		return nil, err
	}
	logger.Debug("Extracted %q: %d pages", doc.Name, doc.PageCount())

	chunks := s.chunker.Chunk(doc)
	result := &domain.IngestResult{
		DocumentID: doc.ID,
		Filename:   doc.Name,
		TotalPages: doc.PageCount(),
	}
	if len(chunks) == 0 {
		logger.Warn("Document %q produced no text; index left unchanged", doc.Name)
		return result, nil
	}
	logger.Debug("Chunked into %d windows", len(chunks))

	start := time.Now()
	outcomes := dispatch(ctx, s.opts.Concurrency, chunks, func(ctx context.Context, c domain.Chunk) ([]float32, error) {
		return s.embedder.Embed(ctx, c.Content)
	})

	kept := make([]domain.Chunk, 0, len(chunks))
	vectors := make([][]float32, 0, len(chunks))
	var firstErr error
	for _, o := range outcomes {
		if o.Err != nil {
			if firstErr == nil {
				firstErr = o.Err
			}
			if !domain.IsRecoverable(o.Err) {
				return nil, o.Err
			}
			logger.Warn("Embedding chunk %d failed: %v", o.Index, o.Err)
			result.FailedChunks++
			continue
		}
		c := chunks[o.Index]
		c.Index = len(kept)
		kept = append(kept, c)
		vec := o.Value
		if s.opts.Normalize {
			vec = normalize(vec)
		}
		vectors = append(vectors, vec)
	}
	if len(kept) == 0 {
		return nil, firstErr
	}
	logger.Debug("Embedded %d chunks in %s (%d failed)", len(kept), time.Since(start), result.FailedChunks)

	snap := &domain.IndexSnapshot{
		BuildID:      uuid.New().String(),
		Dimensions:   len(vectors[0]),
		Vectors:      vectors,
		Chunks:       kept,
		TotalPages:   doc.PageCount(),
		DocumentName: doc.Name,
		BuiltAt:      time.Now().UTC(),
	}
	if err := s.index.Build(snap); err != nil {
		return nil, err
	}

	result.TotalChunks = len(kept)
	return result, nil
}

// Retrieve returns the k chunks most similar to query.
func (s *QAService) Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievedChunk, error) {
	hits, _, err := s.retriever.Retrieve(ctx, query, k)
	return hits, err
}

// Ask retrieves the top chunks for question and asks the LLM to answer
// from them.
func (s *QAService) Ask(ctx context.Context, question string) (*domain.Answer, error) {
	const op = "ask"
	logger.Section("Ask")

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.InputValidationError(op, "no question provided")
	}
	if s.llm == nil {
		return nil, domain.NewError(domain.KindConfiguration, op,
			"no LLM provider configured", domain.ErrLLMUnavailable)
	}

	hits, pages, err := s.retriever.Retrieve(ctx, question, driving.DefaultRetrieveK)
	if err != nil {
		return nil, err
	}

	parts := make([]string, 0, len(hits))
	relevant := make([]domain.RelevantChunk, 0, len(hits))
	for _, h := range hits {
		parts = append(parts, fmt.Sprintf("[Page %d]: %s", h.Chunk.Page, h.Chunk.Content))
		relevant = append(relevant, domain.RelevantChunk{
			Text:  truncateRunes(h.Chunk.Content, previewRunes) + "...",
			Page:  h.Chunk.Page,
			Score: h.Score,
		})
	}

	system := s.systemPrompt(pages)
	user := fmt.Sprintf(qaUserPrompt, strings.Join(parts, "\n\n"), question)

	answer, err := s.llm.Complete(ctx, system, user)
	if err != nil {
		return nil, err
	}

	return &domain.Answer{
		Answer:         strings.TrimSpace(answer),
		RelevantChunks: relevant,
		TotalPages:     pages,
	}, nil
}

func (s *QAService) systemPrompt(pages int) string {
	tmpl := defaultQASystemPrompt
	if s.prompts != nil {
		if p, err := s.prompts.Load(driven.PromptQASystem); err == nil && strings.TrimSpace(p) != "" {
			tmpl = p
		}
	}
	// Overrides may drop the placeholder.
	if !strings.Contains(tmpl, "%d") {
		return tmpl
	}
	return fmt.Sprintf(tmpl, pages)
}

// Status reports the persisted index without loading vectors.
func (s *QAService) Status(_ context.Context) (domain.IndexStatus, error) {
	return s.index.Status()
}

// Clear removes the index.
func (s *QAService) Clear(_ context.Context) error {
	logger.Debug("Clearing index")
	return s.index.Clear()
}
