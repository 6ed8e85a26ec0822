package apiclient

import (
	"fmt"
	"sync"

	"github.com/custodia-labs/docmatch/internal/core/domain"
)

// Dims tracks an embedding model's vector size. A non-positive initial size
// is adopted from the first vector seen.
type Dims struct {
	mu sync.RWMutex
	n  int
}

// NewDims starts with n dimensions.
func NewDims(n int) *Dims {
	return &Dims{n: n}
}

// Get returns the size, or 0 while it is still unknown.
func (d *Dims) Get() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return max(d.n, 0)
}

// Check records got as the size when unknown and otherwise requires it to
// match.
func (d *Dims) Check(op string, got int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.n <= 0 {
		d.n = got
		return nil
	}
	if got != d.n {
		return domain.ProviderError(op, fmt.Sprintf("expected %d dimensions, got %d", d.n, got), nil)
	}
	return nil
}

// Float32 narrows a decoded JSON vector.
func Float32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}
