package store

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pbaille/cycles/internal/domain"
)

//go:embed schema.sql
var schema string

const dayLayout = "2006-01-02"

// ErrNoImports is returned when nothing has been imported yet
var ErrNoImports = errors.New("no export imported yet")

// Store handles database operations
type Store struct {
	db *sql.DB
}

// New creates a new Store with the given database path
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Initialize schema
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// ReplaceEntries stores a normalized export as the current entry log.
// An export is a full snapshot, so previously stored entries are removed.
// Either the whole batch is stored or nothing is.
func (s *Store) ReplaceEntries(source string, entries []domain.Entry, discarded int) (*domain.Import, error) {
	imp := &domain.Import{
		ID:         uuid.New().String(),
		Source:     source,
		ImportedAt: time.Now().UTC(),
		Entries:    len(entries),
		Discarded:  discarded,
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM entries"); err != nil {
		return nil, fmt.Errorf("clear entries: %w", err)
	}

	_, err = tx.Exec(
		"INSERT INTO imports (id, source, imported_at, entry_count, discarded_count) VALUES (?, ?, ?, ?, ?)",
		imp.ID, imp.Source, imp.ImportedAt, imp.Entries, imp.Discarded,
	)
	if err != nil {
		return nil, fmt.Errorf("insert import: %w", err)
	}

	stmt, err := tx.Prepare(
		"INSERT INTO entries (id, import_id, position, day, kind, flow, intensity_rank, device) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
	)
	if err != nil {
		return nil, fmt.Errorf("prepare entry insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		_, err := stmt.Exec(
			uuid.New().String(), imp.ID, i,
			e.Date.Format(dayLayout), string(e.Kind), e.Flow, e.Rank, e.Device,
		)
		if err != nil {
			return nil, fmt.Errorf("insert entry %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return imp, nil
}

// ListEntries returns the stored entry log in input order
func (s *Store) ListEntries() ([]domain.Entry, error) {
	rows, err := s.db.Query(
		"SELECT id, day, kind, flow, intensity_rank, device FROM entries ORDER BY position",
	)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		var e domain.Entry
		var day, kind string
		if err := rows.Scan(&e.ID, &day, &kind, &e.Flow, &e.Rank, &e.Device); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Date, err = time.Parse(dayLayout, day)
		if err != nil {
			return nil, fmt.Errorf("parse entry day %q: %w", day, err)
		}
		e.Kind = domain.Kind(kind)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// ListImports returns recent imports, newest first
func (s *Store) ListImports(limit int) ([]domain.Import, error) {
	rows, err := s.db.Query(
		"SELECT id, source, imported_at, entry_count, discarded_count FROM imports ORDER BY imported_at DESC, rowid DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}
	defer rows.Close()

	var imports []domain.Import
	for rows.Next() {
		var imp domain.Import
		if err := rows.Scan(&imp.ID, &imp.Source, &imp.ImportedAt, &imp.Entries, &imp.Discarded); err != nil {
			return nil, fmt.Errorf("scan import: %w", err)
		}
		imports = append(imports, imp)
	}

	return imports, rows.Err()
}

// LatestImport returns the most recent import
func (s *Store) LatestImport() (*domain.Import, error) {
	imports, err := s.ListImports(1)
	if err != nil {
		return nil, err
	}
	if len(imports) == 0 {
		return nil, ErrNoImports
	}
	return &imports[0], nil
}
