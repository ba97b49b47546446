package warehouse

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

// BigQuery appends through NDJSON load jobs.
type BigQuery struct {
	client  *bigquery.Client
	project string
	dataset string
}

func NewBigQuery(ctx context.Context, project, dataset string) (*BigQuery, error) {
	if err := validIdent(dataset); err != nil {
		return nil, fmt.Errorf("bigquery dataset: %w", err)
	}
	c, err := bigquery.NewClient(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("create bigquery client: %w", err)
	}
	return &BigQuery{client: c, project: project, dataset: dataset}, nil
}

func (b *BigQuery) Table(name string) string {
	return fmt.Sprintf("`%s.%s.%s`", b.project, b.dataset, name)
}

func bqSchema(table string) (bigquery.Schema, error) {
	cols, err := columns(table)
	if err != nil {
		return nil, err
	}
	s := make(bigquery.Schema, len(cols))
	for i, c := range cols {
		s[i] = &bigquery.FieldSchema{Name: c.Name, Type: bigquery.FieldType(c.Type), Required: c.Required()}
	}
	return s, nil
}

func (b *BigQuery) Append(ctx context.Context, table string, rows []Row) error {
	schema, err := bqSchema(table)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range rows {
		if err := enc.Encode(bqRow(r)); err != nil {
			return fmt.Errorf("encode %s row: %w", table, err)
		}
	}

	src := bigquery.NewReaderSource(&buf)
	src.SourceFormat = bigquery.JSON
	src.Schema = schema

	loader := b.client.Dataset(b.dataset).Table(table).LoaderFrom(src)
	loader.WriteDisposition = bigquery.WriteAppend
	loader.CreateDisposition = bigquery.CreateIfNeeded

	job, err := loader.Run(ctx)
	if err != nil {
		return fmt.Errorf("start load job %s: %w", table, err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("wait load job %s: %w", table, err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("load job %s: %w", table, err)
	}
	return nil
}

func bqRow(r Row) map[string]any {
	out := make(map[string]any, len(r))
	for k, v := range r {
		if t, ok := v.(time.Time); ok {
			out[k] = t.Format(time.RFC3339Nano)
			continue
		}
		out[k] = v
	}
	return out
}

func (b *BigQuery) Query(ctx context.Context, q string) ([]Row, error) {
	it, err := b.client.Query(q).Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("query bigquery: %w", err)
	}
	var out []Row
	for {
		var m map[string]bigquery.Value
		err := it.Next(&m)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read bigquery row: %w", err)
		}
		r := make(Row, len(m))
		for k, v := range m {
			r[k] = v
		}
		out = append(out, r)
	}
	return out, nil
}

func (b *BigQuery) Close() error { return b.client.Close() }
