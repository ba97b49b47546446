package warehouse

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lyricflow/internal/config"
	"lyricflow/internal/models"
	"lyricflow/internal/util"
)

func sampleTables() Tables {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	year := 1999
	return Tables{
		Raw: []models.LyricRecord{
			{ID: "a", Title: "A", Artist: "X", Genre: "pop", Year: &year, Lyrics: "la", CreatedAt: now},
			{ID: "b", Title: "B", Artist: "Y", Genre: "rock", Lyrics: "na", CreatedAt: now},
		},
		Processed: []models.ProcessedLyric{
			{ID: "a", WordCount: 2, UniqueWords: 2, Tokens: []string{"love", "joy"}, ProcessedAt: now},
		},
		WordFrequency: []models.WordFrequency{
			{LyricsID: "a", Word: "love", Frequency: 1, TFIDF: 0.7, POSTag: "NN", CreatedAt: now},
			{LyricsID: "a", Word: "joy", Frequency: 1, POSTag: "NN", IsStopword: false, CreatedAt: now},
			{LyricsID: "b", Word: "night", Frequency: 3, POSTag: "UNKNOWN", CreatedAt: now},
		},
	}
}

func TestRowsEncodeArraysAndNulls(t *testing.T) {
	rows := sampleTables().Rows()
	require.Len(t, rows[models.TableRawLyrics], 2)
	require.Equal(t, int64(1999), rows[models.TableRawLyrics][0]["year"])
	require.Nil(t, rows[models.TableRawLyrics][1]["year"])
	require.Equal(t, `["love","joy"]`, rows[models.TableProcessedLyrics][0]["tokens"])
	require.Empty(t, rows[models.TableSentimentAnalysis])
}

type recordingLoader struct {
	calls map[string][]int
	fail  string
}

func (r *recordingLoader) Append(_ context.Context, table string, rows []Row) error {
	if table == r.fail {
		return errors.New("quota exceeded")
	}
	r.calls[table] = append(r.calls[table], len(rows))
	return nil
}

func TestLoadAllChunksAndSkipsEmptyTables(t *testing.T) {
	l := &recordingLoader{calls: map[string][]int{}}
	res, err := LoadAll(context.Background(), l, sampleTables(), 2, zap.NewNop().Sugar())
	require.NoError(t, err)
	require.Equal(t, []string{models.TableRawLyrics, models.TableProcessedLyrics, models.TableWordFrequency}, res.TablesUpdated)
	require.Equal(t, []int{2, 1}, l.calls[models.TableWordFrequency])
	require.Equal(t, 3, res.RowsLoaded[models.TableWordFrequency])
	require.NotContains(t, l.calls, models.TableSentimentAnalysis)
}

func TestLoadAllStopsOnError(t *testing.T) {
	l := &recordingLoader{calls: map[string][]int{}, fail: models.TableProcessedLyrics}
	res, err := LoadAll(context.Background(), l, sampleTables(), 100, zap.NewNop().Sugar())
	require.ErrorIs(t, err, util.ErrLoadFailed)
	require.Contains(t, err.Error(), "quota exceeded")
	require.Equal(t, []string{models.TableRawLyrics}, res.TablesUpdated)
	require.NotContains(t, l.calls, models.TableWordFrequency)
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	w, err := NewSQLite(ctx, filepath.Join(t.TempDir(), "wh", "lyrics.db"))
	require.NoError(t, err)
	defer w.Close()

	_, err = LoadAll(ctx, w, sampleTables(), 1, zap.NewNop().Sugar())
	require.NoError(t, err)
	// Append semantics: a second run adds rows.
	_, err = LoadAll(ctx, w, sampleTables(), 10, zap.NewNop().Sugar())
	require.NoError(t, err)

	rows, err := w.Query(ctx, "SELECT COUNT(*) AS n FROM "+w.Table(models.TableWordFrequency))
	require.NoError(t, err)
	require.Equal(t, int64(6), rows[0]["n"])

	rows, err = w.Query(ctx, "SELECT tokens, processed_at FROM processed_lyrics LIMIT 1")
	require.NoError(t, err)
	require.Equal(t, `["love","joy"]`, rows[0]["tokens"])
	require.Equal(t, "2024-01-02T03:04:05Z", rows[0]["processed_at"])
}

func TestSQLiteRejectsUnknownTable(t *testing.T) {
	w, err := NewSQLite(context.Background(), filepath.Join(t.TempDir(), "x.db"))
	require.NoError(t, err)
	defer w.Close()
	require.Error(t, w.Append(context.Background(), "nope", []Row{{"a": 1}}))
}

func TestCreateTableDDL(t *testing.T) {
	ddl := postgresDialect.createTable("lyrics_analysis.word_frequency", config.TableSchema(models.TableWordFrequency))
	require.Contains(t, ddl, "lyrics_id TEXT NOT NULL")
	require.Contains(t, ddl, "tf_idf DOUBLE PRECISION,")
	require.Contains(t, ddl, "created_at TIMESTAMPTZ\n)")
	ins := sqliteDialect.insert("t", config.TableSchema(models.TableWordFrequency))
	require.Equal(t, "INSERT INTO t (lyrics_id, word, frequency, tf_idf, pos_tag, is_stopword, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)", ins)
}

func TestOpenUnknownWarehouse(t *testing.T) {
	cfg := config.Defaults()
	cfg.Warehouse = "redshift"
	_, err := Open(context.Background(), cfg)
	require.ErrorIs(t, err, util.ErrUnknownBackend)
	require.Error(t, validIdent("drop table;"))
}
