package domain

// RetrievedChunk is a chunk resolved from an index hit.
type RetrievedChunk struct {
	Chunk Chunk

	// Score is the inner product between the query and chunk vectors.
	Score float32
}

// RelevantChunk is a retrieved chunk as shown alongside an answer.
type RelevantChunk struct {
	// Text is a preview of the chunk content.
	Text  string  `json:"text"`
	Page  int     `json:"page"`
	Score float32 `json:"score"`
}

// Answer is the result of a question over the indexed document.
type Answer struct {
	Answer         string          `json:"answer"`
	RelevantChunks []RelevantChunk `json:"relevant_chunks"`
	TotalPages     int             `json:"total_pages"`
}

// IngestResult reports an index build.
type IngestResult struct {
	DocumentID   string `json:"document_id"`
	Filename     string `json:"filename"`
	TotalPages   int    `json:"total_pages"`
	TotalChunks  int    `json:"total_chunks"`
	FailedChunks int    `json:"failed_chunks"`
}
