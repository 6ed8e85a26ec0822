package driven

import "github.com/custodia-labs/docmatch/internal/core/domain"

// Chunker splits a document into overlapping windows.
type Chunker interface {
	// Name returns the chunker name for logging and configuration.
	Name() string

	// Chunk returns the chunks of doc in order. An empty document or one
	// with zero pages yields zero chunks and no error.
	Chunk(doc *domain.Document) []domain.Chunk
}
