package textproc

import (
	"bufio"
	"bytes"
	_ "embed"
	"strings"
)

//go:embed stopwords_en.txt
var stopwordsEN []byte

// StopwordSet is a read-only set of lowercase words.
type StopwordSet map[string]struct{}

func (s StopwordSet) Contains(w string) bool {
	_, ok := s[w]
	return ok
}

// EnglishStopwords parses the embedded English stopword list.
func EnglishStopwords() StopwordSet {
	return parseWordList(stopwordsEN)
}

func parseWordList(raw []byte) StopwordSet {
	set := make(StopwordSet, 200)
	sc := bufio.NewScanner(bytes.NewReader(raw))
	for sc.Scan() {
		w := strings.TrimSpace(sc.Text())
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}
