// Package chunker provides a fixed-size sliding window chunker.
package chunker

import (
	"github.com/google/uuid"

	"github.com/custodia-labs/docmatch/internal/core/domain"
	"github.com/custodia-labs/docmatch/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

// DefaultSize is the default number of runes per chunk.
const DefaultSize = 500

// DefaultStep is the default distance between chunk starts.
// Consecutive chunks overlap by DefaultSize - DefaultStep runes.
const DefaultStep = 400

// Processor splits document text into overlapping fixed-size windows.
type Processor struct {
	size int
	step int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithSize sets the window size in runes.
func WithSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.size = size
		}
	}
}

// WithStep sets the distance between window starts in runes.
func WithStep(step int) Option {
	return func(p *Processor) {
		if step > 0 {
			p.step = step
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		size: DefaultSize,
		step: DefaultStep,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Step must stay below size or windows stop overlapping
	if p.step >= p.size {
		p.step = p.size * 4 / 5
		if p.step == 0 {
			p.step = 1
		}
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Size returns the window size.
func (p *Processor) Size() int {
	return p.size
}

// Step returns the window step.
func (p *Processor) Step() int {
	return p.step
}

// Chunk splits the document text into windows and estimates each window's
// source page from its start offset.
func (p *Processor) Chunk(doc *domain.Document) []domain.Chunk {
	pages := doc.PageCount()
	text := []rune(doc.Text())
	if pages == 0 || len(text) == 0 {
		return nil
	}

	chunks := make([]domain.Chunk, 0, len(text)/p.step+1)
	for start := 0; start < len(text); start += p.step {
		end := start + p.size
		if end > len(text) {
			end = len(text)
		}

		chunks = append(chunks, domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			Index:      len(chunks),
			Content:    string(text[start:end]),
			Page:       EstimatePage(start, len(text), pages),
			Start:      start,
		})
	}

	return chunks
}

// EstimatePage linearly interpolates the page of a rune offset using an
// integer runes-per-page divisor: start / (length / pages) + 1, clamped to
// [1, pages]. With fewer runes than pages every offset maps to the last page.
func EstimatePage(start, length, pages int) int {
	if pages <= 0 {
		return 0
	}
	if length <= 0 {
		return 1
	}
	perPage := length / pages
	if perPage == 0 {
		return pages
	}
	return max(1, min(start/perPage+1, pages))
}
