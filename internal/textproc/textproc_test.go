package textproc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	cases := map[string]string{
		"Hello, World! This is a test... 123 #hashtag @mention": "hello world this is a test 123 hashtag mention",
		"":                      "",
		"   ":                   "",
		"Café\tDéjà-vu\n\nOK":   "caf d j vu ok",
		"ALL CAPS & numbers 42": "all caps numbers 42",
	}
	for in, want := range cases {
		require.Equal(t, want, Clean(in), "input %q", in)
	}
}

func TestCleanIsIdempotent(t *testing.T) {
	inputs := []string{
		"Hello, World! This is a test... 123 #hashtag @mention",
		"  I'm   walkin' on sunshine -- whoa!! ",
		"Ünïcödé ✓ text\r\nwith lines",
	}
	for _, in := range inputs {
		once := Clean(in)
		require.Equal(t, once, Clean(once))
	}
}

func TestTokenizeFiltersStopwordsAndShortWords(t *testing.T) {
	tok := NewTokenizer(EnglishStopwords(), 3)
	got := tok.Tokenize(Clean("This is a happy beautiful wonderful song about love and joy"))
	require.Equal(t, []string{"happy", "beautiful", "wonderful", "song", "love", "joy"}, got)
}

func TestTokenizeKeepsOrderOfContentWords(t *testing.T) {
	tok := NewTokenizer(EnglishStopwords(), 3)
	in := "river mountain river sunshine"
	require.Equal(t, []string{"river", "mountain", "river", "sunshine"}, tok.Tokenize(in))
	require.Empty(t, tok.Tokenize(""))
	require.Equal(t, []string{"abc"}, tok.Tokenize("abc 123 a1b ab"))
}

func TestTokenizerDefaultsMinLength(t *testing.T) {
	tok := NewTokenizer(StopwordSet{}, 0)
	require.Equal(t, DefaultMinWordLength, tok.MinLength)
}

func TestEnglishStopwords(t *testing.T) {
	sw := EnglishStopwords()
	for _, w := range []string{"the", "is", "about", "don't", "wouldn"} {
		require.True(t, sw.Contains(w), w)
	}
	require.False(t, sw.Contains("love"))
}

func TestCountSyllables(t *testing.T) {
	cases := map[string]int{
		"beautiful": 3,
		"world":     1,
		"hello":     2,
		"a":         1,
		"rhythm":    1,
		"queue":     1,
		"HAPPY":     2,
		",":         1,
		"":          1,
	}
	for w, want := range cases {
		require.Equal(t, want, CountSyllables(w), w)
	}
}

func TestSentences(t *testing.T) {
	got := Sentences("I love you. Do you love me? Mr. Jones said yes. Then we left")
	require.Equal(t, []string{"I love you.", "Do you love me?", "Mr. Jones said yes.", "Then we left"}, got)
	require.Empty(t, Sentences("   "))
	require.Equal(t, []string{"3.14 is pi"}, Sentences("3.14 is pi"))
}

func TestWords(t *testing.T) {
	got := Words(`I can't stop, "baby" (don't go) now. She's gone.`)
	require.Equal(t, []string{
		"I", "ca", "n't", "stop", ",", `"`, "baby", `"`,
		"(", "do", "n't", "go", ")", "now", ".",
		"She", "'s", "gone", ".",
	}, got)
}

func TestReadabilityRange(t *testing.T) {
	require.Equal(t, 0.0, Readability(""))
	require.Equal(t, 0.0, Readability("  \n "))

	inputs := []string{
		"The cat sat on the mat.",
		"Incomprehensibility notwithstanding, institutionalization characterizes organizational deliberations.",
		"Love love love\nbaby baby\nyeah",
		"...",
	}
	for _, in := range inputs {
		s := Readability(in)
		require.GreaterOrEqual(t, s, 0.0, in)
		require.LessOrEqual(t, s, 100.0, in)
	}
	require.Equal(t, 100.0, Readability("The cat sat on the mat."))
	require.Equal(t, 0.0, Readability("Incomprehensibility notwithstanding, institutionalization characterizes organizational deliberations."))
}

func TestReadabilityMidRange(t *testing.T) {
	// 7 tokens (the comma counts) in 1 sentence, 15 syllables.
	s := Readability("Walking along the river, remembering yesterday")
	require.InDelta(t, 206.835-1.015*7-84.6*(15.0/7.0), s, 1e-9)
}
