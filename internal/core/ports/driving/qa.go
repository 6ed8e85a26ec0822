package driving

import (
	"context"

	"github.com/custodia-labs/docmatch/internal/core/domain"
)

// DefaultRetrieveK is the number of chunks retrieved for an answer.
const DefaultRetrieveK = 3

// QAService answers questions over a single indexed document.
type QAService interface {
	// Ingest extracts, chunks and embeds a document and replaces the index.
	Ingest(ctx context.Context, raw *domain.RawDocument) (*domain.IngestResult, error)

	// Retrieve returns the k chunks most similar to query in index order.
	Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievedChunk, error)

	// Ask retrieves context for question and generates an answer.
	Ask(ctx context.Context, question string) (*domain.Answer, error)

	// Status reports the persisted index without loading vectors.
	Status(ctx context.Context) (domain.IndexStatus, error)

	// Clear removes the index.
	Clear(ctx context.Context) error
}
