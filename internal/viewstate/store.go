package viewstate

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rebeliceyang/lazydb/internal/vtable"
)

//go:embed schema.sql
var schemaSQL string

// ErrNotFound is returned when no view state is stored for a key.
var ErrNotFound = errors.New("view state not found")

// Entry is one persisted view state.
type Entry struct {
	Key       string
	State     vtable.ViewState
	UpdatedAt time.Time
}

// Store persists table view state keyed by logical table identity.
type Store struct {
	db *sql.DB
}

// Key builds the identity of a table within a source.
func Key(source, table string) string {
	return source + "/" + table
}

// NewStore opens (creating if needed) the store at path.
func NewStore(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open view state store: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create view state schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Get returns the state stored for key. Malformed fields of a stored entry
// are dropped rather than failing the load.
func (s *Store) Get(key string) (vtable.ViewState, error) {
	var raw string
	err := s.db.QueryRow(`SELECT state FROM view_state WHERE table_key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return vtable.ViewState{}, ErrNotFound
	}
	if err != nil {
		return vtable.ViewState{}, fmt.Errorf("failed to read view state: %w", err)
	}
	return Decode([]byte(raw)), nil
}

// Put stores state for key, replacing any previous entry. An empty state
// deletes the entry.
func (s *Store) Put(key string, state vtable.ViewState) error {
	if IsEmpty(state) {
		return s.Delete(key)
	}
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode view state: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO view_state (table_key, state, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(table_key) DO UPDATE SET
			state = excluded.state,
			updated_at = excluded.updated_at`,
		key, string(data))
	if err != nil {
		return fmt.Errorf("failed to save view state: %w", err)
	}
	return nil
}

// Delete removes the entry for key.
func (s *Store) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM view_state WHERE table_key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete view state: %w", err)
	}
	return nil
}

// Recent returns the most recently updated entries.
func (s *Store) Recent(limit int) ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT table_key, state, updated_at
		FROM view_state
		ORDER BY updated_at DESC, table_key
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list view state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var raw string
		if err := rows.Scan(&e.Key, &raw, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan view state: %w", err)
		}
		e.State = Decode([]byte(raw))
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// IsEmpty reports whether state carries nothing worth persisting.
func IsEmpty(vs vtable.ViewState) bool {
	return vs.SortColumn == "" &&
		len(vs.PinnedColumns) == 0 &&
		len(vs.ColumnWidths) == 0 &&
		len(vs.RowHeights) == 0 &&
		vs.SearchTerm == ""
}
