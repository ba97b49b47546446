package ingest

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"lyricflow/internal/models"
	"lyricflow/internal/util"
)

var supported = map[string]bool{".json": true, ".csv": true, ".txt": true}

// Supported reports whether name has a parseable extension, ignoring case.
func Supported(name string) bool {
	return supported[strings.ToLower(path.Ext(name))]
}

// Parser converts file contents into records. Now stamps CreatedAt.
type Parser struct {
	Now func() time.Time
}

func NewParser() Parser {
	return Parser{Now: time.Now}
}

// Parse dispatches on the file extension. A parse error means the whole file
// is skipped.
func (p Parser) Parse(filename string, content []byte) ([]models.LyricRecord, error) {
	text, err := decode(content)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filename, err)
	}
	switch strings.ToLower(path.Ext(filename)) {
	case ".json":
		return p.ParseJSON(text, filename)
	case ".csv":
		return p.ParseCSV(text, filename)
	case ".txt":
		return p.ParseTXT(text, filename), nil
	default:
		return nil, fmt.Errorf("%w: %s", util.ErrUnsupportedFormat, filename)
	}
}

// decode strips a UTF-8 or UTF-16 byte order mark and returns UTF-8 text.
func decode(b []byte) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ParseJSON accepts a single object or an array of objects.
func (p Parser) ParseJSON(text, filename string) ([]models.LyricRecord, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	now := p.now()
	switch x := v.(type) {
	case map[string]any:
		return []models.LyricRecord{Normalize(x, filename, now)}, nil
	case []any:
		out := make([]models.LyricRecord, 0, len(x))
		for i, item := range x {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: array element %d is not an object", util.ErrMalformedRecord, i)
			}
			out = append(out, Normalize(obj, filename, now))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: json root must be an object or array", util.ErrMalformedRecord)
	}
}

// ParseCSV reads a header row and one record per following row. Short rows
// leave the trailing columns missing.
func (p Parser) ParseCSV(text, filename string) ([]models.LyricRecord, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	now := p.now()
	var out []models.LyricRecord
	for line := 2; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if len(row) > len(header) {
			return nil, fmt.Errorf("%w: csv line %d has %d fields, header has %d", util.ErrMalformedRecord, line, len(row), len(header))
		}
		fields := make(map[string]any, len(header))
		for i, v := range row {
			fields[header[i]] = v
		}
		out = append(out, Normalize(fields, filename, now))
	}
	return out, nil
}

// ParseTXT treats the first line as the title and the rest as lyrics. Fewer
// than two lines yields nothing.
func (p Parser) ParseTXT(text, filename string) []models.LyricRecord {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) < 2 {
		return nil
	}
	fields := map[string]any{
		"title":  strings.TrimSpace(lines[0]),
		"lyrics": strings.TrimSpace(strings.Join(lines[1:], "\n")),
	}
	return []models.LyricRecord{Normalize(fields, filename, p.now())}
}

func (p Parser) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}
