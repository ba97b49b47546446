package warehouse

import (
	"context"
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"lyricflow/internal/config"
	"lyricflow/internal/models"
	"lyricflow/internal/util"
)

// Loader appends rows to a table, creating it when needed.
type Loader interface {
	Append(ctx context.Context, table string, rows []Row) error
}

// Querier runs read-only aggregate SQL. Table returns the dialect-qualified
// name to splice into queries.
type Querier interface {
	Table(name string) string
	Query(ctx context.Context, sql string) ([]Row, error)
}

type Warehouse interface {
	Loader
	Querier
	Close() error
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func validIdent(s string) error {
	if !identRe.MatchString(s) {
		return fmt.Errorf("invalid identifier %q", s)
	}
	return nil
}

// Open selects the backend named by cfg.Warehouse.
func Open(ctx context.Context, cfg config.Config) (Warehouse, error) {
	switch cfg.Warehouse {
	case "bigquery":
		return NewBigQuery(ctx, cfg.ProjectID, cfg.DatasetID)
	case "postgres":
		return NewPostgres(ctx, cfg.PostgresURL, cfg.DatasetID)
	case "sqlite", "":
		return NewSQLite(ctx, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("%w: warehouse %q", util.ErrUnknownBackend, cfg.Warehouse)
	}
}

type LoadResult struct {
	TablesUpdated []string       `json:"tables_updated"`
	RowsLoaded    map[string]int `json:"rows_loaded"`
}

// LoadAll appends every non-empty table in load order, batchSize rows per
// call. Empty tables are skipped with a warning. The first error aborts.
func LoadAll(ctx context.Context, l Loader, t Tables, batchSize int, log *zap.SugaredLogger) (LoadResult, error) {
	if batchSize <= 0 {
		batchSize = 100
	}
	res := LoadResult{RowsLoaded: map[string]int{}}
	byTable := t.Rows()
	for _, table := range models.OutputTables {
		rows := byTable[table]
		if len(rows) == 0 {
			log.Warnw("no rows for table; skipping", "table", table)
			continue
		}
		for start := 0; start < len(rows); start += batchSize {
			end := min(start+batchSize, len(rows))
			if err := l.Append(ctx, table, rows[start:end]); err != nil {
				return res, fmt.Errorf("%w: %s: %w", util.ErrLoadFailed, table, err)
			}
			res.RowsLoaded[table] += end - start
		}
		res.TablesUpdated = append(res.TablesUpdated, table)
		log.Infow("loaded table", "table", table, "rows", len(rows))
	}
	return res, nil
}

func columns(table string) ([]config.Column, error) {
	cols := config.TableSchema(table)
	if cols == nil {
		return nil, fmt.Errorf("unknown table %q", table)
	}
	return cols, nil
}
