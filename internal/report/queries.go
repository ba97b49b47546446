package report

import (
	"fmt"

	"lyricflow/internal/models"
	"lyricflow/internal/warehouse"
)

// The SQL below sticks to what SQLite, Postgres and BigQuery all accept:
// no COUNTIF, no aliases in HAVING, no integer division.

func sentimentByYearSQL(q warehouse.Querier, o Options) string {
	return fmt.Sprintf(`SELECT
  r.year AS year,
  AVG(s.sentiment_score) AS avg_sentiment,
  COUNT(*) AS song_count,
  SUM(CASE WHEN s.sentiment_label = 'positive' THEN 1 ELSE 0 END) * 100.0 / COUNT(*) AS positive_pct,
  SUM(CASE WHEN s.sentiment_label = 'negative' THEN 1 ELSE 0 END) * 100.0 / COUNT(*) AS negative_pct
FROM %s r
JOIN %s s ON r.id = s.lyrics_id
WHERE r.year IS NOT NULL AND r.year BETWEEN %d AND %d
GROUP BY r.year
HAVING COUNT(*) >= %d
ORDER BY year`,
		q.Table(models.TableRawLyrics), q.Table(models.TableSentimentAnalysis),
		o.FromYear, o.ToYear, o.MinSongsPerYear)
}

func sentimentByGenreSQL(q warehouse.Querier, o Options) string {
	return fmt.Sprintf(`SELECT
  r.genre AS genre,
  COUNT(*) AS song_count,
  AVG(s.sentiment_score) AS avg_sentiment,
  AVG(s.sentiment_score * s.sentiment_score) AS avg_sq_sentiment,
  SUM(CASE WHEN s.sentiment_label = 'positive' THEN 1 ELSE 0 END) * 100.0 / COUNT(*) AS positive_pct
FROM %s r
JOIN %s s ON r.id = s.lyrics_id
WHERE r.genre IS NOT NULL AND r.genre != 'Unknown'
GROUP BY r.genre
HAVING COUNT(*) >= %d
ORDER BY avg_sentiment DESC`,
		q.Table(models.TableRawLyrics), q.Table(models.TableSentimentAnalysis), o.MinSongsPerGenre)
}

func topWordsSQL(q warehouse.Querier, o Options) string {
	return fmt.Sprintf(`SELECT
  s.sentiment_label AS label,
  w.word AS word,
  SUM(w.frequency) AS total_frequency
FROM %s w
JOIN %s s ON w.lyrics_id = s.lyrics_id
WHERE w.is_stopword = FALSE AND LENGTH(w.word) >= 3
GROUP BY s.sentiment_label, w.word
HAVING SUM(w.frequency) >= %d
ORDER BY label, total_frequency DESC, word`,
		q.Table(models.TableWordFrequency), q.Table(models.TableSentimentAnalysis), o.MinWordFrequency)
}

func complexitySQL(q warehouse.Querier, o Options) string {
	return fmt.Sprintf(`SELECT
  r.genre AS genre,
  r.year AS year,
  COUNT(*) AS song_count,
  SUM(p.word_count) AS sum_word_count,
  SUM(p.unique_words) AS sum_unique_words,
  SUM(p.readability_score) AS sum_readability
FROM %s r
JOIN %s p ON r.id = p.id
WHERE r.year IS NOT NULL AND r.year BETWEEN %d AND %d
  AND r.genre IS NOT NULL AND r.genre != 'Unknown'
GROUP BY r.genre, r.year`,
		q.Table(models.TableRawLyrics), q.Table(models.TableProcessedLyrics), o.ComplexityFromYear, o.ComplexityToYear)
}
