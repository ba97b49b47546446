package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"lyricflow/internal/ingest"
	"lyricflow/internal/models"
	"lyricflow/internal/objectstore"
)

type Extracted struct {
	Records      []models.LyricRecord `json:"records"`
	FilesSeen    int                  `json:"files_seen"`
	FilesSkipped int                  `json:"files_skipped"`
	Skips        []models.Skip        `json:"skips,omitempty"`
}

// Extract lists prefix and parses every supported file. A file that fails to
// read or parse is skipped with a reason; only a listing failure is an error.
func Extract(ctx context.Context, store objectstore.Store, parser ingest.Parser, prefix string, log *zap.SugaredLogger) (Extracted, error) {
	objs, err := store.List(ctx, prefix)
	if err != nil {
		return Extracted{}, fmt.Errorf("list %q: %w", prefix, err)
	}
	var out Extracted
	for _, o := range objs {
		if !ingest.Supported(o.Name) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return Extracted{}, err
		}
		out.FilesSeen++
		b, err := store.Read(ctx, o.Name)
		if err == nil {
			var recs []models.LyricRecord
			recs, err = parser.Parse(o.Name, b)
			if err == nil {
				out.Records = append(out.Records, recs...)
				log.Infow("parsed file", "file", o.Name, "records", len(recs))
				continue
			}
		}
		log.Warnw("skipping file", "file", o.Name, "error", err)
		out.FilesSkipped++
		out.Skips = append(out.Skips, models.Skip{Source: o.Name, Reason: err.Error()})
	}
	log.Infow("extraction finished", "prefix", prefix, "files", out.FilesSeen, "records", len(out.Records))
	return out, nil
}
