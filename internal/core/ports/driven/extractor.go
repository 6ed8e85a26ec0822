package driven

import (
	"context"

	"github.com/custodia-labs/docmatch/internal/core/domain"
)

// TextExtractor pulls page texts out of an uploaded document.
// Each extractor handles specific MIME types (e.g., PDF, plain text).
type TextExtractor interface {
	// SupportedMIMETypes returns the MIME types this extractor handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific extractors should return 50-89.
	// Fallback extractors should return 1-9.
	Priority() int

	// Extract transforms a raw upload into a document with ordered pages.
	Extract(ctx context.Context, raw *domain.RawDocument) (*domain.Document, error)
}

// ExtractorRegistry selects the appropriate extractor for a document.
type ExtractorRegistry interface {
	// Extract detects the MIME type when absent and runs the best extractor.
	// Unsupported types fail with an input validation error.
	Extract(ctx context.Context, raw *domain.RawDocument) (*domain.Document, error)

	// Register adds an extractor to the registry.
	Register(extractor TextExtractor)

	// SupportedMIMETypes returns all MIME types that can be extracted.
	SupportedMIMETypes() []string
}
