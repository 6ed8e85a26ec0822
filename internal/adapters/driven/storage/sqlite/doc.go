// Package sqlite stores the chunk side-table of a persisted vector index.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Each file holds exactly one build:
//
//   - build: a single header row with the build id, dimensionality, chunk
//     count, page count and source document
//   - chunks: one row per chunk, keyed by vector position
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// The file lives next to its vector blob, by default ~/.docmatch/index/chunks.db.
// Files are written once and replaced whole by the next build, so the rollback
// journal is used instead of WAL and no sidecar files outlive a write.
package sqlite
