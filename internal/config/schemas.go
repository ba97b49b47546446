package config

import "lyricflow/internal/models"

const (
	TypeString    = "STRING"
	TypeInteger   = "INTEGER"
	TypeFloat     = "FLOAT"
	TypeBoolean   = "BOOLEAN"
	TypeTimestamp = "TIMESTAMP"

	ModeRequired = "REQUIRED"
	ModeNullable = "NULLABLE"
)

type Column struct {
	Name string
	Type string
	Mode string
}

func (c Column) Required() bool { return c.Mode == ModeRequired }

func req(name, typ string) Column { return Column{Name: name, Type: typ, Mode: ModeRequired} }
func opt(name, typ string) Column { return Column{Name: name, Type: typ, Mode: ModeNullable} }

// TableSchemas holds the column layout of every output table. Array fields
// are stored as JSON-encoded STRING columns.
var TableSchemas = map[string][]Column{
	models.TableRawLyrics: {
		req("id", TypeString),
		opt("title", TypeString),
		opt("artist", TypeString),
		opt("album", TypeString),
		opt("genre", TypeString),
		opt("year", TypeInteger),
		opt("lyrics", TypeString),
		opt("source", TypeString),
		opt("created_at", TypeTimestamp),
		opt("file_path", TypeString),
	},
	models.TableProcessedLyrics: {
		req("id", TypeString),
		opt("title", TypeString),
		opt("artist", TypeString),
		opt("word_count", TypeInteger),
		opt("unique_words", TypeInteger),
		opt("avg_word_length", TypeFloat),
		opt("readability_score", TypeFloat),
		opt("language", TypeString),
		opt("processed_text", TypeString),
		opt("tokens", TypeString),
		opt("processed_at", TypeTimestamp),
	},
	models.TableWordFrequency: {
		req("lyrics_id", TypeString),
		req("word", TypeString),
		opt("frequency", TypeInteger),
		opt("tf_idf", TypeFloat),
		opt("pos_tag", TypeString),
		opt("is_stopword", TypeBoolean),
		opt("created_at", TypeTimestamp),
	},
	models.TableSentimentAnalysis: {
		req("lyrics_id", TypeString),
		opt("sentiment_score", TypeFloat),
		opt("sentiment_label", TypeString),
		opt("confidence", TypeFloat),
		opt("positive_words", TypeString),
		opt("negative_words", TypeString),
		opt("neutral_words", TypeString),
		opt("analyzed_at", TypeTimestamp),
	},
}

// TableSchema returns the columns of name, or nil for an unknown table.
func TableSchema(name string) []Column {
	return TableSchemas[name]
}
