// Package mcp provides an MCP (Model Context Protocol) server adapter for docmatch.
// It lets AI assistants ask questions about the indexed document and extract
// skills from text.
package mcp

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/docmatch/internal/core/domain"
)

// ErrMissingQAService is returned when the QA service is not provided.
var ErrMissingQAService = errors.New("mcp: QA service is required")

// ErrMatchingUnavailable is returned by extract_skills when no matching
// service was provided.
var ErrMatchingUnavailable = errors.New("mcp: skill extraction is not available")

// toolError prefixes err with its kind so clients can tell caller mistakes
// from provider failures.
func toolError(err error) error {
	return fmt.Errorf("%s: %w", domain.KindOf(err), err)
}
