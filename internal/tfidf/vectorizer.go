// Package tfidf fits a corpus-wide TF-IDF model over lyric texts and scores
// each document against it.
package tfidf

import (
	"bufio"
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"
)

//go:embed stopwords_en.txt
var stopwordsRaw []byte

var englishStopWords = func() map[string]struct{} {
	set := make(map[string]struct{}, 320)
	sc := bufio.NewScanner(bytes.NewReader(stopwordsRaw))
	for sc.Scan() {
		if w := strings.TrimSpace(sc.Text()); w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}()

var ErrInvalidConfig = errors.New("tfidf: invalid vectorizer config")

// Vectorizer holds the fitting parameters.
type Vectorizer struct {
	MaxFeatures int
	MinDF       int
	MaxDF       float64
	NGramMin    int
	NGramMax    int
	StopWords   bool
}

// NewVectorizer returns the lyric-corpus configuration: uni- and bigrams,
// English stop words removed, terms in fewer than 2 documents or more than 95%
// of documents dropped.
func NewVectorizer(maxFeatures int) Vectorizer {
	return Vectorizer{
		MaxFeatures: maxFeatures,
		MinDF:       2,
		MaxDF:       0.95,
		NGramMin:    1,
		NGramMax:    2,
		StopWords:   true,
	}
}

func (v Vectorizer) validate() error {
	if v.MinDF < 1 || v.MaxDF <= 0 || v.MaxDF > 1 || v.NGramMin < 1 || v.NGramMax < v.NGramMin || v.MaxFeatures < 0 {
		return fmt.Errorf("%w: %+v", ErrInvalidConfig, v)
	}
	return nil
}

// Row is a sparse, L2-normalized document vector keyed by term.
type Row map[string]float64

// Weight returns the weight of term, or 0 when it is outside the vocabulary.
func (r Row) Weight(term string) float64 {
	return r[term]
}

// Model is an immutable fitted vocabulary with its idf weights.
type Model struct {
	features []string
	vocab    map[string]int
	idf      []float64
	nDocs    int
	v        Vectorizer
}

func (m *Model) FeatureNames() []string {
	out := make([]string, len(m.features))
	copy(out, m.features)
	return out
}

// Empty reports whether pruning left no terms; every row is then all-zero.
func (m *Model) Empty() bool { return len(m.features) == 0 }

func (m *Model) Docs() int { return m.nDocs }

// IDF returns the idf of term and whether it is in the vocabulary.
func (m *Model) IDF(term string) (float64, bool) {
	i, ok := m.vocab[term]
	if !ok {
		return 0, false
	}
	return m.idf[i], true
}

// Fit builds the vocabulary over corpus.
func (v Vectorizer) Fit(corpus []string) (*Model, error) {
	m, _, err := v.FitTransform(corpus)
	return m, err
}

// FitTransform fits the model and returns one row per corpus document, in
// corpus order.
func (v Vectorizer) FitTransform(corpus []string) (*Model, []Row, error) {
	if err := v.validate(); err != nil {
		return nil, nil, err
	}
	counts := make([]map[string]int, len(corpus))
	df := make(map[string]int)
	total := make(map[string]int)
	for i, doc := range corpus {
		c := v.termCounts(doc)
		counts[i] = c
		for term, n := range c {
			df[term]++
			total[term] += n
		}
	}

	n := len(corpus)
	maxDocs := v.MaxDF * float64(n)
	var kept []string
	if maxDocs >= float64(v.MinDF) {
		for term, d := range df {
			if d >= v.MinDF && float64(d) <= maxDocs {
				kept = append(kept, term)
			}
		}
	}
	sort.Strings(kept)
	if v.MaxFeatures > 0 && len(kept) > v.MaxFeatures {
		sort.SliceStable(kept, func(a, b int) bool { return total[kept[a]] > total[kept[b]] })
		kept = kept[:v.MaxFeatures]
		sort.Strings(kept)
	}

	m := &Model{
		features: kept,
		vocab:    make(map[string]int, len(kept)),
		idf:      make([]float64, len(kept)),
		nDocs:    n,
		v:        v,
	}
	for i, term := range kept {
		m.vocab[term] = i
		m.idf[i] = math.Log(float64(1+n)/float64(1+df[term])) + 1
	}

	rows := make([]Row, n)
	for i, c := range counts {
		rows[i] = m.weigh(c)
	}
	return m, rows, nil
}

// Transform scores doc against the fitted vocabulary.
func (m *Model) Transform(doc string) Row {
	return m.weigh(m.v.termCounts(doc))
}

func (m *Model) weigh(counts map[string]int) Row {
	idx := make([]int, 0, len(counts))
	for term := range counts {
		if i, ok := m.vocab[term]; ok {
			idx = append(idx, i)
		}
	}
	// Fixed summation order keeps rows bit-identical across calls.
	sort.Ints(idx)

	row := make(Row, len(idx))
	var norm float64
	for _, i := range idx {
		term := m.features[i]
		w := float64(counts[term]) * m.idf[i]
		row[term] = w
		norm += w * w
	}
	if norm == 0 {
		return row
	}
	norm = math.Sqrt(norm)
	for term, w := range row {
		row[term] = w / norm
	}
	return row
}

func (v Vectorizer) termCounts(doc string) map[string]int {
	toks := Analyze(doc, v.StopWords)
	counts := make(map[string]int)
	for n := v.NGramMin; n <= v.NGramMax; n++ {
		for i := 0; i+n <= len(toks); i++ {
			counts[strings.Join(toks[i:i+n], " ")]++
		}
	}
	return counts
}

// Analyze lowercases doc and returns runs of two or more word characters
// (letters, digits, underscore), optionally without English stop words.
func Analyze(doc string, dropStopWords bool) []string {
	doc = strings.ToLower(doc)
	var toks []string
	var cur []rune
	flush := func() {
		if len(cur) >= 2 {
			t := string(cur)
			if _, stop := englishStopWords[t]; !(dropStopWords && stop) {
				toks = append(toks, t)
			}
		}
		cur = cur[:0]
	}
	for _, r := range doc {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.Is(unicode.Mn, r) {
			cur = append(cur, r)
			continue
		}
		flush()
	}
	flush()
	return toks
}
