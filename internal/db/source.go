package db

import (
	"context"
	"errors"
	"time"

	"github.com/rebeliceyang/lazydb/internal/vtable"
)

// ErrTableNotFound is returned when a referenced table does not exist.
var ErrTableNotFound = errors.New("table not found")

// TableRef identifies a table within a source.
type TableRef struct {
	Schema string
	Name   string
}

// String returns the qualified name, omitting an empty schema.
func (r TableRef) String() string {
	if r.Schema == "" {
		return r.Name
	}
	return r.Schema + "." + r.Name
}

// ColumnInfo describes one column of a table.
type ColumnInfo struct {
	Name       string
	DataType   string
	Nullable   bool
	Default    string
	PrimaryKey bool
	IsJsonb    bool
	IsArray    bool
}

// Page is one loaded window of a table or query result.
type Page struct {
	vtable.Page

	// TotalRows is the row count of the whole relation, which may exceed
	// the rows held by this page.
	TotalRows int64
	Duration  time.Duration
}

// HasNext reports whether rows exist past this page.
func (p *Page) HasNext() bool {
	return int64(p.StartIndex+p.Len()) < p.TotalRows
}

// Source is a browsable database.
type Source interface {
	Name() string
	ListTables(ctx context.Context) ([]TableRef, error)
	Columns(ctx context.Context, ref TableRef) ([]ColumnInfo, error)
	Page(ctx context.Context, ref TableRef, offset, limit int) (*Page, error)
	Query(ctx context.Context, sql string) (*Page, error)
	Close() error
}

// Watcher is implemented by sources that can report external changes.
type Watcher interface {
	Watch(ctx context.Context) (<-chan struct{}, error)
}

var schemaColumns = []string{"column", "type", "nullable", "default", "primary_key"}

// SchemaPage renders column metadata as a table page.
func SchemaPage(cols []ColumnInfo) *vtable.Page {
	rows := make([][]vtable.Value, len(cols))
	for i, c := range cols {
		var def vtable.Value
		if c.Default != "" {
			def = c.Default
		}
		rows[i] = []vtable.Value{c.Name, c.DataType, c.Nullable, def, c.PrimaryKey}
	}
	return &vtable.Page{Rows: rows, Columns: schemaColumns}
}
