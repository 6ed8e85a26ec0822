package extractors

import (
	"context"
	"mime"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/docmatch/internal/core/domain"
	"github.com/custodia-labs/docmatch/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

var extensionTypes = map[string]string{
	".pdf":  "application/pdf",
	".txt":  "text/plain",
	".text": "text/plain",
	".md":   "text/markdown",
}

// Registry dispatches uploads to the highest-priority extractor for their
// MIME type.
type Registry struct {
	mu         sync.RWMutex
	extractors map[string][]driven.TextExtractor
}

// NewRegistry creates a registry with the given extractors.
func NewRegistry(extractors ...driven.TextExtractor) *Registry {
	r := &Registry{extractors: make(map[string][]driven.TextExtractor)}
	for _, e := range extractors {
		r.Register(e)
	}
	return r
}

// Register adds an extractor to the registry.
func (r *Registry) Register(extractor driven.TextExtractor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, mimeType := range extractor.SupportedMIMETypes() {
		list := append(r.extractors[mimeType], extractor)
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Priority() > list[j].Priority()
		})
		r.extractors[mimeType] = list
	}
}

// SupportedMIMETypes returns all MIME types that can be extracted.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.extractors))
	for t := range r.extractors {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Extract detects the MIME type when absent and runs the best extractor.
func (r *Registry) Extract(ctx context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	mimeType := DetectMIMEType(raw)

	r.mu.RLock()
	list := r.extractors[mimeType]
	r.mu.RUnlock()

	if len(list) == 0 {
		return nil, domain.InputValidationError("extract",
			"unsupported file type "+mimeType+"; only PDF and plain text are accepted")
	}

	withType := *raw
	withType.MIMEType = mimeType
	return list[0].Extract(ctx, &withType)
}

// DetectMIMEType returns the declared type without parameters, falling back
// to the file extension and then to content sniffing.
func DetectMIMEType(raw *domain.RawDocument) string {
	if raw.MIMEType != "" && raw.MIMEType != "application/octet-stream" {
		if mediaType, _, err := mime.ParseMediaType(raw.MIMEType); err == nil {
			return mediaType
		}
		return strings.ToLower(raw.MIMEType)
	}

	if t, ok := extensionTypes[strings.ToLower(filepath.Ext(raw.URI))]; ok {
		return t
	}

	sniffed := http.DetectContentType(raw.Content)
	if mediaType, _, err := mime.ParseMediaType(sniffed); err == nil {
		return mediaType
	}
	return sniffed
}
