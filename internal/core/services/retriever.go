package services

import (
	"context"
	"strings"

	"github.com/custodia-labs/docmatch/internal/core/domain"
	"github.com/custodia-labs/docmatch/internal/core/ports/driven"
	"github.com/custodia-labs/docmatch/internal/core/ports/driving"
	"github.com/custodia-labs/docmatch/internal/logger"
)

// Retriever resolves a free-text query to the most similar indexed chunks.
type Retriever struct {
	embedder  driven.EmbeddingService
	index     *IndexManager
	normalize bool
}

// NewRetriever creates a retriever. When normalize is set the query vector
// is unit-scaled so that scores are cosine similarities, matching vectors
// that were normalised at build time.
func NewRetriever(embedder driven.EmbeddingService, index *IndexManager, normalize bool) *Retriever {
	return &Retriever{
		embedder:  embedder,
		index:     index,
		normalize: normalize,
	}
}

// Retrieve embeds query and returns up to k chunks in the order the index
// ranked them, plus the indexed document's page count. k <= 0 uses the
// default of 3. An index with fewer than k entries returns all of them.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievedChunk, int, error) {
	const op = "retrieve"

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, 0, domain.InputValidationError(op, "query is empty")
	}
	if k <= 0 {
		k = driving.DefaultRetrieveK
	}
	if r.embedder == nil {
		return nil, 0, domain.NewError(domain.KindConfiguration, op,
			"no embedding provider configured", domain.ErrEmbeddingUnavailable)
	}

	// Fail on a missing index before spending a provider call.
	if err := r.index.Ensure(); err != nil {
		return nil, 0, err
	}

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	if r.normalize {
		vec = normalize(vec)
	}

	hits, pages, err := r.index.Search(vec, k)
	if err != nil {
		return nil, 0, err
	}
	logger.Debug("Retrieved %d chunks for %q", len(hits), query)
	return hits, pages, nil
}
