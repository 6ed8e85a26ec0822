package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/docmatch/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/docmatch/internal/core/domain"
)

// ErrNoBuild is returned when the file has no build header.
var ErrNoBuild = errors.New("chunk table has no build header")

// BuildHeader describes the build a chunk table belongs to.
type BuildHeader struct {
	BuildID      string
	Dimensions   int
	ChunkCount   int
	TotalPages   int
	DocumentID   string
	DocumentName string
	BuiltAt      time.Time
}

// HeaderOf returns the header for a snapshot.
func HeaderOf(snap *domain.IndexSnapshot) BuildHeader {
	h := BuildHeader{
		BuildID:      snap.BuildID,
		Dimensions:   snap.Dimensions,
		ChunkCount:   len(snap.Chunks),
		TotalPages:   snap.TotalPages,
		DocumentName: snap.DocumentName,
		BuiltAt:      snap.BuiltAt,
	}
	if len(snap.Chunks) > 0 {
		h.DocumentID = snap.Chunks[0].DocumentID
	}
	return h
}

// Store is a chunk side-table backed by one SQLite file.
type Store struct {
	db   *sql.DB
	path string
}

// Create opens a new chunk table at path and applies the schema.
// The caller is expected to pass a fresh temporary path.
func Create(path string) (*Store, error) {
	s, err := open(path)
	if err != nil {
		return nil, err
	}
	if err := s.migrate(); err != nil {
		s.db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Open opens an existing chunk table for reading.
func Open(path string) (*Store, error) {
	return open(path)
}

func open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(DELETE)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection keeps the single-file lifecycle simple.
	db.SetMaxOpenConns(1)
	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// WriteBuild stores the header and every chunk in one transaction.
func (s *Store) WriteBuild(ctx context.Context, header BuildHeader, chunks []domain.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO build
			(id, build_id, dimensions, chunk_count, total_pages, document_id, document_name, built_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?)`,
		header.BuildID, header.Dimensions, header.ChunkCount, header.TotalPages,
		header.DocumentID, header.DocumentName, header.BuiltAt.UTC())
	if err != nil {
		return fmt.Errorf("writing build header: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks`); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (position, id, document_id, content, page, start_offset)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing chunk insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		if _, err := stmt.ExecContext(ctx, c.Index, c.ID, c.DocumentID, c.Content, c.Page, c.Start); err != nil {
			return fmt.Errorf("inserting chunk %d: %w", c.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing build: %w", err)
	}
	return nil
}

// Header returns the build header. ErrNoBuild means the file is not a
// complete chunk table.
func (s *Store) Header(ctx context.Context) (BuildHeader, error) {
	var h BuildHeader
	row := s.db.QueryRowContext(ctx, `
		SELECT build_id, dimensions, chunk_count, total_pages, document_id, document_name, built_at
		FROM build WHERE id = 1`)
	err := row.Scan(&h.BuildID, &h.Dimensions, &h.ChunkCount, &h.TotalPages,
		&h.DocumentID, &h.DocumentName, &h.BuiltAt)
	if errors.Is(err, sql.ErrNoRows) || isMissingTable(err) {
		return BuildHeader{}, ErrNoBuild
	}
	if err != nil {
		return BuildHeader{}, fmt.Errorf("reading build header: %w", err)
	}
	return h, nil
}

// Chunks returns every chunk ordered by position.
func (s *Store) Chunks(ctx context.Context) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT position, id, document_id, content, page, start_offset
		FROM chunks ORDER BY position`)
	if isMissingTable(err) {
		return nil, ErrNoBuild
	}
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		var c domain.Chunk
		if err := rows.Scan(&c.Index, &c.ID, &c.DocumentID, &c.Content, &c.Page, &c.Start); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

func isMissingTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}

// migrate applies pending migrations, each in its own transaction.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	pending, err := migrations.After(current)
	if err != nil {
		return err
	}
	for _, m := range pending {
		if err := s.apply(m); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) apply(m migrations.Migration) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("migration %s: %w", m.Name, err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(m.SQL); err != nil {
		return fmt.Errorf("executing migration %s: %w", m.Name, err)
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.Version); err != nil {
		return fmt.Errorf("recording migration %s: %w", m.Name, err)
	}
	return tx.Commit()
}
