package warehouse

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"lyricflow/internal/storage"
)

// Postgres keeps the output tables in a schema named after the dataset.
type Postgres struct {
	db     *storage.DB
	schema string

	mu      sync.Mutex
	created map[string]bool
}

func NewPostgres(ctx context.Context, dsn, schema string) (*Postgres, error) {
	if err := validIdent(schema); err != nil {
		return nil, fmt.Errorf("postgres schema: %w", err)
	}
	db, err := storage.NewDB(ctx, dsn)
	if err != nil {
		return nil, err
	}
	schemaCtx, cancel := context.WithTimeout(ctx, storage.PingTimeout)
	defer cancel()
	if _, err := db.Pool.Exec(schemaCtx, "CREATE SCHEMA IF NOT EXISTS "+schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Postgres{db: db, schema: schema, created: map[string]bool{}}, nil
}

// DB exposes the pool so the run audit store can share it.
func (p *Postgres) DB() *storage.DB { return p.db }

func (p *Postgres) Table(name string) string { return p.schema + "." + name }

func (p *Postgres) ensureTable(ctx context.Context, table string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.created[table] {
		return nil
	}
	cols, err := columns(table)
	if err != nil {
		return err
	}
	if _, err := p.db.Pool.Exec(ctx, postgresDialect.createTable(p.Table(table), cols)); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	p.created[table] = true
	return nil
}

func (p *Postgres) Append(ctx context.Context, table string, rows []Row) error {
	if err := p.ensureTable(ctx, table); err != nil {
		return err
	}
	cols, _ := columns(table)
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	src := make([][]any, len(rows))
	for i, r := range rows {
		vals := make([]any, len(cols))
		for j, c := range cols {
			vals[j] = r[c.Name]
		}
		src[i] = vals
	}
	n, err := p.db.Pool.CopyFrom(ctx, pgx.Identifier{p.schema, table}, names, pgx.CopyFromRows(src))
	if err != nil {
		return fmt.Errorf("copy into %s: %w", table, err)
	}
	if int(n) != len(rows) {
		return fmt.Errorf("copy into %s: wrote %d of %d rows", table, n, len(rows))
	}
	return nil
}

func (p *Postgres) Query(ctx context.Context, q string) ([]Row, error) {
	rows, err := p.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query postgres: %w", err)
	}
	defer rows.Close()
	fields := rows.FieldDescriptions()
	var out []Row
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		r := make(Row, len(fields))
		for i, f := range fields {
			r[f.Name] = pgValue(vals[i])
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// pgValue flattens NUMERIC results of AVG/SUM to float64.
func pgValue(v any) any {
	n, ok := v.(pgtype.Numeric)
	if !ok {
		return v
	}
	f, err := n.Float64Value()
	if err != nil || !f.Valid {
		return nil
	}
	return f.Float64
}

func (p *Postgres) Close() error {
	p.db.Close()
	return nil
}
