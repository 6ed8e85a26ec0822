package driven

import "github.com/custodia-labs/docmatch/internal/core/domain"

// VectorIndex provides exact inner-product similarity search.
// The index performs no normalisation; callers normalise when they want
// cosine similarity.
type VectorIndex interface {
	// Build replaces the index contents. Position i holds vectors[i].
	// All vectors must share the index dimensionality.
	Build(vectors [][]float32) error

	// Search returns up to k hits in descending score order.
	// Fewer than k entries is not an error.
	Search(query []float32, k int) ([]VectorHit, error)

	// Len returns the number of stored vectors.
	Len() int

	// Dimensions returns the vector size.
	Dimensions() int
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// Position is the insertion position of the matched vector.
	Position int

	// Score is the inner product with the query.
	Score float32
}

// IndexStore persists an index snapshot as two companion artifacts.
type IndexStore interface {
	// Save writes both artifacts atomically as a pair.
	Save(snapshot *domain.IndexSnapshot) error

	// Load reads both artifacts. It fails with an index-not-found error when
	// neither exists and an index-inconsistent error when only one does or
	// they disagree.
	Load() (*domain.IndexSnapshot, error)

	// Clear removes both artifacts.
	Clear() error

	// Status reports existence and size without loading the vectors.
	Status() (domain.IndexStatus, error)

	// Close releases resources.
	Close() error
}
