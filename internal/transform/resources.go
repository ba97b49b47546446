package transform

import (
	"lyricflow/internal/pos"
	"lyricflow/internal/sentiment"
	"lyricflow/internal/textproc"
)

// Resources is the immutable NLP bundle shared by every transform. Build it
// once at startup and pass it in.
type Resources struct {
	Stopwords textproc.StopwordSet
	Tagger    *pos.Tagger
	Sentiment *sentiment.Analyzer
}

func LoadResources() *Resources {
	return &Resources{
		Stopwords: textproc.EnglishStopwords(),
		Tagger:    pos.NewTagger(),
		Sentiment: sentiment.NewAnalyzer(),
	}
}
