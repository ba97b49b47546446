// Package ingest turns raw lyric files into normalized LyricRecords.
package ingest

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"lyricflow/internal/models"
	"lyricflow/internal/util"
)

const unknown = "Unknown"

var yearRe = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// Normalize maps loosely keyed input fields onto a LyricRecord. Nil and empty
// values count as missing.
func Normalize(fields map[string]any, filename string, now time.Time) models.LyricRecord {
	id := str(fields["id"])
	if id == "" {
		id = GenerateID(fields, filename)
	}
	year := ParseYear(first(fields, "year", "release_year"))
	return models.LyricRecord{
		ID:        id,
		Title:     orDefault(str(first(fields, "title", "song")), unknown),
		Artist:    orDefault(str(first(fields, "artist", "singer")), unknown),
		Album:     orDefault(str(fields["album"]), unknown),
		Genre:     orDefault(str(fields["genre"]), unknown),
		Year:      year,
		Lyrics:    norm.NFC.String(util.SanitizeText(str(first(fields, "lyrics", "text")))),
		Source:    filename,
		CreatedAt: now.UTC(),
		FilePath:  filename,
	}
}

// GenerateID hashes the lowercased title, artist and filename. Each field is
// length-prefixed so that no two distinct triples share a key.
func GenerateID(fields map[string]any, filename string) string {
	title := orDefault(str(first(fields, "title", "song")), "unknown")
	artist := orDefault(str(first(fields, "artist", "singer")), "unknown")
	return util.MD5Hex(idKey(title, artist, filename))
}

func idKey(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		p = strings.ToLower(p)
		b.WriteString(strconv.Itoa(len(p)))
		b.WriteByte(':')
		b.WriteString(p)
	}
	return b.String()
}

// ParseYear accepts integers, whole floats and strings. Strings are searched
// for a 19xx/20xx year before falling back to a plain integer parse.
func ParseYear(v any) *int {
	switch x := v.(type) {
	case nil:
		return nil
	case int:
		return &x
	case int64:
		n := int(x)
		return &n
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
		n := int(x)
		return &n
	case json.Number:
		if n, err := x.Int64(); err == nil {
			y := int(n)
			return &y
		}
		if f, err := x.Float64(); err == nil {
			return ParseYear(f)
		}
		return nil
	case string:
		if m := yearRe.FindString(x); m != "" {
			n, _ := strconv.Atoi(m)
			return &n
		}
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return nil
		}
		return &n
	default:
		return nil
	}
}

func first(fields map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := fields[k]; ok && str(v) != "" {
			return v
		}
	}
	return nil
}

func str(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
