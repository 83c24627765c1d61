package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/sync/errgroup"

	"github.com/rebeliceyang/lazydb/internal/db"
	"github.com/rebeliceyang/lazydb/internal/vtable"
)

// Source browses a SQLite database file.
type Source struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

var (
	_ db.Source  = (*Source)(nil)
	_ db.Watcher = (*Source)(nil)
)

// Open opens the database at path read-only.
func Open(path string, logger *slog.Logger) (*Source, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	conn, err := sql.Open("sqlite3", "file:"+abs+"?mode=ro&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	return &Source{db: conn, path: abs, logger: logger}, nil
}

func (s *Source) Name() string { return filepath.Base(s.path) }

// Path returns the absolute database path.
func (s *Source) Path() string { return s.path }

func (s *Source) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// quoteIdent quotes a SQLite identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// ListTables returns user tables ordered by name.
func (s *Source) ListTables(ctx context.Context) ([]db.TableRef, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tables []db.TableRef
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		tables = append(tables, db.TableRef{Name: name})
	}
	return tables, rows.Err()
}

// Columns returns column metadata from PRAGMA table_info.
func (s *Source) Columns(ctx context.Context, ref db.TableRef) ([]db.ColumnInfo, error) {
	rows, err := s.db.QueryContext(ctx, "PRAGMA table_info("+quoteIdent(ref.Name)+")")
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cols []db.ColumnInfo
	for rows.Next() {
		var (
			cid     int
			c       db.ColumnInfo
			notNull bool
			def     sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &c.Name, &c.DataType, &notNull, &def, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		c.Nullable = !notNull
		c.Default = def.String
		c.PrimaryKey = pk > 0
		c.IsJsonb = strings.EqualFold(c.DataType, "json")
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%s: %w", ref, db.ErrTableNotFound)
	}
	return cols, nil
}

// Page loads limit rows starting at offset, counting the table alongside.
func (s *Source) Page(ctx context.Context, ref db.TableRef, offset, limit int) (*db.Page, error) {
	start := time.Now()
	ident := quoteIdent(ref.Name)

	var total int64
	var page *vtable.Page
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.db.QueryRowContext(gctx, "SELECT COUNT(*) FROM "+ident).Scan(&total); err != nil {
			return fmt.Errorf("failed to count rows: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		page, err = s.collect(gctx, "SELECT * FROM "+ident+" LIMIT ? OFFSET ?", limit, offset)
		if err != nil {
			return fmt.Errorf("failed to query table data: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		if strings.Contains(err.Error(), "no such table") {
			return nil, fmt.Errorf("%s: %w", ref, db.ErrTableNotFound)
		}
		return nil, err
	}

	page.StartIndex = offset
	s.logger.Debug("page loaded", "table", ref.String(), "offset", offset, "rows", page.Len(), "total", total)
	return &db.Page{Page: *page, TotalRows: total, Duration: time.Since(start)}, nil
}

// Query runs an arbitrary statement and returns its rows.
func (s *Source) Query(ctx context.Context, query string) (*db.Page, error) {
	start := time.Now()
	page, err := s.collect(ctx, query)
	if err != nil {
		return nil, err
	}
	return &db.Page{Page: *page, TotalRows: int64(page.Len()), Duration: time.Since(start)}, nil
}

func (s *Source) collect(ctx context.Context, query string, args ...any) (*vtable.Page, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var data [][]vtable.Value
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		data = append(data, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &vtable.Page{Rows: data, Columns: columns}, nil
}
