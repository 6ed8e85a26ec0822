package index

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/docmatch/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docmatch/internal/core/domain"
	"github.com/custodia-labs/docmatch/internal/core/ports/driven"
	"github.com/custodia-labs/docmatch/internal/logger"
)

// File names inside the index directory.
const (
	VectorsFile = "vectors.bin"
	ChunksFile  = "chunks.db"
	LockFile    = "index.lock"
)

// Ensure Store implements the interface.
var _ driven.IndexStore = (*Store)(nil)

// Store persists index snapshots in a directory.
type Store struct {
	dir  string
	mu   sync.Mutex // in-process; the file lock covers other processes
	lock *FileLock
}

// NewStore creates a store rooted at dir.
// If dir is empty, defaults to ~/.docmatch/index.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".docmatch", "index")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	return &Store{dir: dir, lock: NewFileLock(dir)}, nil
}

// Dir returns the index directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) vectorsPath() string { return filepath.Join(s.dir, VectorsFile) }
func (s *Store) chunksPath() string  { return filepath.Join(s.dir, ChunksFile) }

// Save writes both files to temporary names and renames them into place.
func (s *Store) Save(snap *domain.IndexSnapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	if snap.BuildID == "" {
		return domain.InputValidationError("save index", "build id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.lock.Lock(); err != nil {
		return err
	}
	defer s.lock.Unlock() //nolint:errcheck // best effort

	tmpVectors := s.vectorsPath() + ".tmp-" + snap.BuildID
	tmpChunks := s.chunksPath() + ".tmp-" + snap.BuildID
	defer os.Remove(tmpVectors) //nolint:errcheck // gone after rename
	defer os.Remove(tmpChunks)  //nolint:errcheck // gone after rename

	if err := writeVectorFile(tmpVectors, snap); err != nil {
		return fmt.Errorf("writing vectors: %w", err)
	}
	if err := writeChunkFile(tmpChunks, snap); err != nil {
		return fmt.Errorf("writing chunks: %w", err)
	}

	// A crash between the renames leaves mismatched build ids, which Load
	// reports as inconsistent.
	if err := os.Rename(tmpChunks, s.chunksPath()); err != nil {
		return fmt.Errorf("installing chunks: %w", err)
	}
	if err := os.Rename(tmpVectors, s.vectorsPath()); err != nil {
		return fmt.Errorf("installing vectors: %w", err)
	}

	logger.Debug("index %s saved: %d chunks, %d dimensions", snap.BuildID, len(snap.Chunks), snap.Dimensions)
	return nil
}

func writeVectorFile(path string, snap *domain.IndexSnapshot) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if err := writeVectors(f, snap.BuildID, snap.Dimensions, snap.Vectors); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeChunkFile(path string, snap *domain.IndexSnapshot) error {
	_ = os.Remove(path)
	table, err := sqlite.Create(path)
	if err != nil {
		return err
	}
	if err := table.WriteBuild(context.Background(), sqlite.HeaderOf(snap), snap.Chunks); err != nil {
		table.Close()
		return err
	}
	return table.Close()
}

// presence reports which of the two files exist.
func (s *Store) presence() (vectors, chunks os.FileInfo, err error) {
	vectors, err = statIfExists(s.vectorsPath())
	if err != nil {
		return nil, nil, err
	}
	chunks, err = statIfExists(s.chunksPath())
	if err != nil {
		return nil, nil, err
	}
	return vectors, chunks, nil
}

func statIfExists(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return info, err
}

// checkPair maps file presence to the not-found and inconsistent errors.
func checkPair(op string, vectors, chunks os.FileInfo) error {
	switch {
	case vectors == nil && chunks == nil:
		return domain.IndexNotFoundError(op)
	case vectors == nil:
		return domain.IndexInconsistentError(op, "chunk table present without vector file")
	case chunks == nil:
		return domain.IndexInconsistentError(op, "vector file present without chunk table")
	}
	return nil
}

// Load reads both files and checks that they belong to the same build.
func (s *Store) Load() (*domain.IndexSnapshot, error) {
	const op = "load index"

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.lock.RLock(); err != nil {
		return nil, err
	}
	defer s.lock.Unlock() //nolint:errcheck // best effort

	vinfo, cinfo, err := s.presence()
	if err != nil {
		return nil, fmt.Errorf("checking index files: %w", err)
	}
	if err := checkPair(op, vinfo, cinfo); err != nil {
		return nil, err
	}

	f, err := os.Open(s.vectorsPath())
	if err != nil {
		return nil, fmt.Errorf("opening vectors: %w", err)
	}
	var vh vectorHeader
	var vectors [][]float32
	info, err := f.Stat()
	if err == nil {
		vh, vectors, err = readVectors(f, info.Size())
	}
	f.Close()
	if err != nil {
		return nil, domain.NewError(domain.KindIndexInconsistent, op, "vector file is unreadable", err)
	}

	table, err := sqlite.Open(s.chunksPath())
	if err != nil {
		return nil, fmt.Errorf("opening chunks: %w", err)
	}
	defer table.Close()

	ctx := context.Background()
	ch, err := table.Header(ctx)
	if errors.Is(err, sqlite.ErrNoBuild) {
		return nil, domain.IndexInconsistentError(op, "chunk table has no build header")
	}
	if err != nil {
		return nil, err
	}
	chunks, err := table.Chunks(ctx)
	if err != nil {
		return nil, err
	}

	switch {
	case ch.BuildID != vh.BuildID:
		return nil, domain.IndexInconsistentError(op,
			fmt.Sprintf("vector build %s does not match chunk build %s", vh.BuildID, ch.BuildID))
	case len(chunks) != vh.Count || ch.ChunkCount != vh.Count:
		return nil, domain.IndexInconsistentError(op,
			fmt.Sprintf("%d vectors but %d chunks", vh.Count, len(chunks)))
	case ch.Dimensions != vh.Dimensions:
		return nil, domain.IndexInconsistentError(op, "dimensionality differs between files")
	}

	snap := &domain.IndexSnapshot{
		BuildID:      vh.BuildID,
		Dimensions:   vh.Dimensions,
		Vectors:      vectors,
		Chunks:       chunks,
		TotalPages:   ch.TotalPages,
		DocumentName: ch.DocumentName,
		BuiltAt:      ch.BuiltAt,
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return snap, nil
}

// Status reports what is on disk from file sizes and the chunk table
// header, without reading the vectors.
func (s *Store) Status() (domain.IndexStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.lock.RLock(); err != nil {
		return domain.IndexStatus{}, err
	}
	defer s.lock.Unlock() //nolint:errcheck // best effort

	vinfo, cinfo, err := s.presence()
	if err != nil {
		return domain.IndexStatus{}, fmt.Errorf("checking index files: %w", err)
	}

	var status domain.IndexStatus
	if vinfo != nil {
		status.VectorFileSize = vinfo.Size()
	}
	if cinfo != nil {
		status.ChunkFileSize = cinfo.Size()
	}
	if vinfo == nil || cinfo == nil {
		return status, nil
	}

	table, err := sqlite.Open(s.chunksPath())
	if err != nil {
		return status, fmt.Errorf("opening chunks: %w", err)
	}
	defer table.Close()

	h, err := table.Header(context.Background())
	if errors.Is(err, sqlite.ErrNoBuild) {
		return status, nil
	}
	if err != nil {
		return status, err
	}

	status.Exists = true
	status.TotalChunks = h.ChunkCount
	status.TotalPages = h.TotalPages
	status.Dimensions = h.Dimensions
	status.DocumentName = h.DocumentName
	status.BuiltAt = h.BuiltAt
	return status, nil
}

// Clear removes both files. Clearing an empty directory is not an error.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.lock.Lock(); err != nil {
		return err
	}
	defer s.lock.Unlock() //nolint:errcheck // best effort

	for _, path := range []string{s.vectorsPath(), s.chunksPath()} {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing %s: %w", filepath.Base(path), err)
		}
	}
	logger.Debug("index cleared in %s", s.dir)
	return nil
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}
