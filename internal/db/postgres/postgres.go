package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/rebeliceyang/lazydb/internal/db"
	"github.com/rebeliceyang/lazydb/internal/vtable"
)

// Options configures a PostgreSQL source.
type Options struct {
	MaxConns     int32
	QueryTimeout time.Duration
	Logger       *slog.Logger
}

// Source browses a PostgreSQL database through a pgx pool.
type Source struct {
	pool    *pgxpool.Pool
	name    string
	timeout time.Duration
	logger  *slog.Logger
}

var _ db.Source = (*Source)(nil)

// Open connects to dsn. When the DSN carries no password the OS keyring
// is consulted.
func Open(ctx context.Context, dsn string, opts Options) (*Source, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	cc := poolConfig.ConnConfig
	if cc.Password == "" {
		secret, err := LookupPassword(cc.Host, cc.Port, cc.Database, cc.User)
		switch {
		case err == nil:
			cc.Password = secret
		case errors.Is(err, ErrPasswordNotFound):
		default:
			logger.Warn("keyring lookup failed", "error", err)
		}
	}

	poolConfig.MaxConns = 5
	if opts.MaxConns > 0 {
		poolConfig.MaxConns = opts.MaxConns
	}
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Source{
		pool:    pool,
		name:    fmt.Sprintf("%s@%s/%s", cc.User, cc.Host, cc.Database),
		timeout: opts.QueryTimeout,
		logger:  logger,
	}, nil
}

func (s *Source) Name() string { return s.name }

func (s *Source) Close() error {
	s.pool.Close()
	return nil
}

func (s *Source) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// ListTables returns user tables across all non-system schemas.
func (s *Source) ListTables(ctx context.Context) ([]db.TableRef, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT schemaname, tablename
		FROM pg_catalog.pg_tables
		WHERE schemaname NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
		ORDER BY schemaname, tablename`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []db.TableRef
	for rows.Next() {
		var t db.TableRef
		if err := rows.Scan(&t.Schema, &t.Name); err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

// Columns returns column metadata in ordinal order.
func (s *Source) Columns(ctx context.Context, ref db.TableRef) ([]db.ColumnInfo, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT
			c.column_name,
			c.data_type,
			c.udt_name,
			c.is_nullable = 'YES',
			COALESCE(c.column_default, ''),
			EXISTS (
				SELECT 1
				FROM information_schema.table_constraints tc
				JOIN information_schema.key_column_usage kcu
				  ON tc.constraint_name = kcu.constraint_name
				 AND tc.table_schema = kcu.table_schema
				WHERE tc.constraint_type = 'PRIMARY KEY'
				  AND tc.table_schema = c.table_schema
				  AND tc.table_name = c.table_name
				  AND kcu.column_name = c.column_name
			)
		FROM information_schema.columns c
		WHERE c.table_schema = $1 AND c.table_name = $2
		ORDER BY c.ordinal_position`, ref.Schema, ref.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}
	defer rows.Close()

	var cols []db.ColumnInfo
	for rows.Next() {
		var c db.ColumnInfo
		var udt string
		if err := rows.Scan(&c.Name, &c.DataType, &udt, &c.Nullable, &c.Default, &c.PrimaryKey); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		c.IsJsonb = udt == "jsonb"
		c.IsArray = c.DataType == "ARRAY"
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

// Page loads limit rows starting at offset. The row count and the rows are
// fetched concurrently.
func (s *Source) Page(ctx context.Context, ref db.TableRef, offset, limit int) (*db.Page, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	ident := pgx.Identifier{ref.Schema, ref.Name}.Sanitize()

	var total int64
	var page *vtable.Page
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.pool.QueryRow(gctx, "SELECT COUNT(*) FROM "+ident).Scan(&total); err != nil {
			return fmt.Errorf("failed to count rows: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		page, err = s.collect(gctx, fmt.Sprintf("SELECT * FROM %s LIMIT %d OFFSET %d", ident, limit, offset))
		if err != nil {
			return fmt.Errorf("failed to query table data: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	page.StartIndex = offset
	s.logger.Debug("page loaded", "table", ref.String(), "offset", offset, "rows", page.Len(), "total", total)
	return &db.Page{Page: *page, TotalRows: total, Duration: time.Since(start)}, nil
}

// Query runs an arbitrary statement and returns its rows.
func (s *Source) Query(ctx context.Context, sql string) (*db.Page, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	page, err := s.collect(ctx, sql)
	if err != nil {
		return nil, err
	}
	return &db.Page{Page: *page, TotalRows: int64(page.Len()), Duration: time.Since(start)}, nil
}

func (s *Source) collect(ctx context.Context, sql string) (*vtable.Page, error) {
	rows, err := s.pool.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	columns := make([]string, len(fieldDescs))
	for i, fd := range fieldDescs {
		columns[i] = fd.Name
	}

	var data [][]vtable.Value
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make([]vtable.Value, len(values))
		for i, v := range values {
			row[i] = normalize(v)
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &vtable.Page{Rows: data, Columns: columns}, nil
}

// normalize converts pgx values into the scalar types the table engine
// compares and renders.
func normalize(v any) vtable.Value {
	switch x := v.(type) {
	case nil:
		return nil
	case map[string]any, []any:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprintf("%v", x)
		}
		return string(b)
	case [16]byte:
		return uuid.UUID(x).String()
	case pgtype.Numeric:
		if !x.Valid {
			return nil
		}
		if f, err := x.Float64Value(); err == nil && f.Valid {
			return f.Float64
		}
		return fmt.Sprintf("%v", x)
	case netip.Prefix:
		return x.String()
	case netip.Addr:
		return x.String()
	case pgtype.Interval:
		if !x.Valid {
			return nil
		}
		d := time.Duration(x.Microseconds) * time.Microsecond
		if x.Days == 0 && x.Months == 0 {
			return d.String()
		}
		return fmt.Sprintf("%dmon %dday %s", x.Months, x.Days, d)
	default:
		return v
	}
}
