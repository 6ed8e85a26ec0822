// Package domain defines the core business entities for docmatch.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: Extracted page texts of an upload
//   - Chunk: A retrievable window over a document
//   - IndexSnapshot: Vectors plus their side-table
//   - Candidate, Job, MatchResult: The matching workflow
//   - Session: Caller-owned matching state
//   - Error: Classified failures (configuration, provider, timeout, ...)
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
