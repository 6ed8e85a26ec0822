package domain

// RawDocument represents opaque bytes submitted by a caller.
// It is the input to text extraction.
type RawDocument struct {
	// URI is the original file name or path.
	URI string

	// MIMEType is the content type (e.g., "application/pdf").
	// Empty means detect from content and extension.
	MIMEType string

	// Content is the raw bytes.
	Content []byte

	// Metadata contains caller-supplied key-value pairs.
	Metadata map[string]any
}

// Size returns the payload size in bytes.
func (r *RawDocument) Size() int64 {
	return int64(len(r.Content))
}
