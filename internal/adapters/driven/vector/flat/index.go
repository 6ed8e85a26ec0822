// Package flat provides an exact inner-product vector index.
//
// Every search scans all stored vectors. Document collections here are one
// document or a few hundred resumes, where a linear scan is exact and fast.
package flat

import (
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/docmatch/internal/core/domain"
	"github.com/custodia-labs/docmatch/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is an in-memory exact inner-product index with fixed dimensionality.
// It is safe for concurrent searches; Build takes an exclusive lock.
type Index struct {
	mu         sync.RWMutex
	dimensions int
	vectors    [][]float32
}

// New creates an empty index for vectors of the given size.
func New(dimensions int) *Index {
	return &Index{dimensions: dimensions}
}

// Build replaces the index contents. The input slices are copied.
func (x *Index) Build(vectors [][]float32) error {
	stored := make([][]float32, len(vectors))
	for i, v := range vectors {
		if len(v) != x.dimensions {
			return domain.ConfigurationError("vector index",
				fmt.Sprintf("vector %d has %d dimensions, index expects %d", i, len(v), x.dimensions))
		}
		stored[i] = append([]float32(nil), v...)
	}

	x.mu.Lock()
	x.vectors = stored
	x.mu.Unlock()
	return nil
}

// Search returns the k highest inner products in descending order.
// Ties keep insertion order.
func (x *Index) Search(query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) != x.dimensions {
		return nil, domain.ConfigurationError("vector search",
			fmt.Sprintf("query has %d dimensions, index expects %d", len(query), x.dimensions))
	}
	if k <= 0 {
		return nil, domain.InputValidationError("vector search", "k must be positive")
	}

	x.mu.RLock()
	hits := make([]driven.VectorHit, len(x.vectors))
	for i, v := range x.vectors {
		hits[i] = driven.VectorHit{Position: i, Score: Dot(query, v)}
	}
	x.mu.RUnlock()

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Len returns the number of stored vectors.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.vectors)
}

// Dimensions returns the vector size.
func (x *Index) Dimensions() int {
	return x.dimensions
}

// Dot returns the inner product of a and b over their common length.
func Dot(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
