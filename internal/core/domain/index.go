package domain

import "time"

// IndexSnapshot is the full content of a persisted index: the vector blob
// and its side-table. Vectors[i] belongs to Chunks[i].
type IndexSnapshot struct {
	// BuildID ties the two persisted artifacts to the same build.
	BuildID string

	Dimensions int
	Vectors    [][]float32
	Chunks     []Chunk

	// TotalPages is the page count of the source document.
	TotalPages   int
	DocumentName string
	BuiltAt      time.Time
}

// Validate checks the lockstep and dimensionality invariants.
func (s *IndexSnapshot) Validate() error {
	if len(s.Vectors) != len(s.Chunks) {
		return IndexInconsistentError("validate snapshot", "vector and chunk counts differ")
	}
	for i, v := range s.Vectors {
		if len(v) != s.Dimensions {
			return NewError(KindConfiguration, "validate snapshot",
				"vector dimensionality differs from index dimensionality", nil)
		}
		if s.Chunks[i].Index != i {
			return IndexInconsistentError("validate snapshot", "chunk position out of order")
		}
	}
	return nil
}

// IndexStatus describes the persisted index without loading the vectors.
type IndexStatus struct {
	Exists         bool      `json:"database_exists"`
	VectorFileSize int64     `json:"vector_file_size,omitempty"`
	ChunkFileSize  int64     `json:"chunk_file_size,omitempty"`
	TotalChunks    int       `json:"total_chunks,omitempty"`
	TotalPages     int       `json:"total_pages,omitempty"`
	Dimensions     int       `json:"dimensions,omitempty"`
	DocumentName   string    `json:"document_name,omitempty"`
	BuiltAt        time.Time `json:"built_at,omitempty"`
}
