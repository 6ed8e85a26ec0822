// Package plaintext extracts plain text submissions as a single page.
package plaintext

import (
	"context"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/docmatch/internal/core/domain"
	"github.com/custodia-labs/docmatch/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor handles plain text documents.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/markdown",
	}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 5 // Fallback extractor
}

// Extract returns the raw text as a one-page document.
func (e *Extractor) Extract(_ context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if !utf8.Valid(raw.Content) {
		return nil, domain.InputValidationError("extract text", "content is not valid UTF-8 text")
	}

	mimeType := raw.MIMEType
	if mimeType == "" {
		mimeType = "text/plain"
	}

	doc := &domain.Document{
		ID:        uuid.New().String(),
		Name:      filepath.Base(raw.URI),
		MIMEType:  mimeType,
		Pages:     []string{string(raw.Content)},
		Metadata:  map[string]any{"format": "text"},
		CreatedAt: time.Now(),
	}
	for k, v := range raw.Metadata {
		doc.Metadata[k] = v
	}

	return doc, nil
}
