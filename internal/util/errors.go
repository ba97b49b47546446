package util

import "errors"

var (
	ErrUnsupportedFormat = errors.New("unsupported input format")
	ErrMalformedRecord   = errors.New("malformed lyric record")
	ErrLyricsTooLarge    = errors.New("lyrics exceed maximum size")
	ErrEmptyRecordID     = errors.New("lyric record has no id")

	ErrUnknownBackend = errors.New("unknown backend")
	ErrLoadFailed     = errors.New("warehouse load failed")
)
