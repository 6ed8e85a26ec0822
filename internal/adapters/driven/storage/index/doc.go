// Package index persists a vector index as two companion files in one
// directory:
//
//   - vectors.bin: a little-endian float32 blob with a small header
//   - chunks.db: the SQLite chunk side-table (see package sqlite)
//
// Both files carry the same build id. They are written to temporary names
// and renamed into place under an exclusive file lock, so a reader sees
// either the previous pair or the new pair. A pair whose build ids differ,
// or a directory holding only one of the two files, is reported as
// inconsistent rather than silently loaded.
package index
