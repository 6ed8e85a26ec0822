package domain

import (
	"strings"
	"time"
)

// Document is an uploaded source after text extraction.
// It is read-only once created; a re-upload supersedes it rather than
// merging into it.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Name is the original file name or a caller-supplied label.
	Name string

	// MIMEType is the detected content type.
	MIMEType string

	// Pages holds the extracted text of each page in order.
	Pages []string

	// Metadata contains extractor-specific key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the document was extracted.
	CreatedAt time.Time
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// Text returns the page texts concatenated with no separator.
func (d *Document) Text() string {
	return strings.Join(d.Pages, "")
}

// Chunk is a contiguous text window over a document, the unit indexed for
// retrieval. Chunks are owned by the index build that produced them.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Index is the ordinal position within the document. It equals the
	// chunk's position in the vector index.
	Index int

	// Content is the text content of this chunk.
	Content string

	// Page is the estimated source page, 1-based. It is interpolated from
	// the start offset and is approximate.
	Page int

	// Start is the offset of the first rune of the chunk in the document text.
	Start int
}
