package mcp

import (
	"github.com/custodia-labs/docmatch/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// QA answers questions over the indexed document.
	QA driving.QAService

	// Matching provides skill extraction. Optional.
	Matching driving.MatchingService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.QA == nil {
		return ErrMissingQAService
	}
	return nil
}
