package services

import (
	"sync"

	"github.com/custodia-labs/docmatch/internal/core/domain"
	"github.com/custodia-labs/docmatch/internal/core/ports/driven"
	"github.com/custodia-labs/docmatch/internal/logger"
)

// IndexFactory creates an empty vector index of the given dimensionality.
type IndexFactory func(dimensions int) driven.VectorIndex

// IndexManager owns the in-memory copy of the persisted index. The snapshot
// is loaded lazily on first search and dropped by Invalidate when the
// artifacts change on disk. Build and Clear serialise against Search.
type IndexManager struct {
	store    driven.IndexStore
	newIndex IndexFactory

	mu       sync.RWMutex
	snapshot *domain.IndexSnapshot
	index    driven.VectorIndex
}

// NewIndexManager creates a manager over store.
func NewIndexManager(store driven.IndexStore, newIndex IndexFactory) *IndexManager {
	return &IndexManager{
		store:    store,
		newIndex: newIndex,
	}
}

// Build indexes the snapshot, persists both artifacts and makes it current.
// Nothing is replaced if any step fails.
func (m *IndexManager) Build(snap *domain.IndexSnapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}

	idx := m.newIndex(snap.Dimensions)
	if err := idx.Build(snap.Vectors); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Save(snap); err != nil {
		return err
	}
	m.snapshot = snap
	m.index = idx
	logger.Debug("Index built: build=%s chunks=%d dims=%d", snap.BuildID, len(snap.Chunks), snap.Dimensions)
	return nil
}

// Ensure loads the persisted index if it is not already in memory.
func (m *IndexManager) Ensure() error {
	m.mu.RLock()
	loaded := m.index != nil
	m.mu.RUnlock()
	if loaded {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadLocked()
}

func (m *IndexManager) loadLocked() error {
	if m.index != nil {
		return nil
	}

	snap, err := m.store.Load()
	if err != nil {
		return err
	}
	idx := m.newIndex(snap.Dimensions)
	if err := idx.Build(snap.Vectors); err != nil {
		return err
	}

	m.snapshot = snap
	m.index = idx
	logger.Debug("Index loaded: build=%s chunks=%d", snap.BuildID, len(snap.Chunks))
	return nil
}

// Search returns the chunks nearest to query in descending score order
// along with the source document's page count.
func (m *IndexManager) Search(query []float32, k int) ([]domain.RetrievedChunk, int, error) {
	const op = "search index"

	if err := m.Ensure(); err != nil {
		return nil, 0, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	// Invalidated between Ensure and here.
	if m.index == nil {
		return nil, 0, domain.IndexNotFoundError(op)
	}
	if len(query) != m.index.Dimensions() {
		return nil, 0, domain.ConfigurationError(op,
			"query dimensionality differs from the index; rebuild the index after switching embedding provider")
	}

	hits, err := m.index.Search(query, k)
	if err != nil {
		return nil, 0, err
	}

	out := make([]domain.RetrievedChunk, 0, len(hits))
	for _, h := range hits {
		if h.Position < 0 || h.Position >= len(m.snapshot.Chunks) {
			return nil, 0, domain.IndexInconsistentError(op, "hit position outside the side-table")
		}
		out = append(out, domain.RetrievedChunk{
			Chunk: m.snapshot.Chunks[h.Position],
			Score: h.Score,
		})
	}
	return out, m.snapshot.TotalPages, nil
}

// Invalidate drops the in-memory copy. The next search reloads from disk.
func (m *IndexManager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.index != nil {
		logger.Debug("Index invalidated")
	}
	m.snapshot = nil
	m.index = nil
}

// Clear removes the persisted index and the in-memory copy.
func (m *IndexManager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = nil
	m.index = nil
	return m.store.Clear()
}

// Status reports the persisted index without loading vectors.
func (m *IndexManager) Status() (domain.IndexStatus, error) {
	return m.store.Status()
}
