// Package extract derives type-specific metadata from stored document files.
// Extraction never fails: broken input degrades to a minimal result.
package extract

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"docstore/internal/model"
)

// PreviewLength is the number of characters kept as a content preview.
const PreviewLength = 2000

const (
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "latin-1"
	EncodingBinary = "binary"
)

// Text decodes data as UTF-8, falling back to ISO-8859-1, and counts lines,
// words and characters. Content with NUL bytes that is not valid UTF-8 is
// reported as binary with no counts.
func Text(data []byte) *model.TextMetadata {
	var (
		content  string
		encoding string
	)
	switch {
	case utf8.Valid(data):
		content, encoding = string(data), EncodingUTF8
	case bytes.IndexByte(data, 0) >= 0:
		return &model.TextMetadata{Encoding: EncodingBinary}
	default:
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return &model.TextMetadata{Encoding: EncodingBinary}
		}
		content, encoding = string(decoded), EncodingLatin1
	}

	lines := strings.Count(content, "\n") + 1
	words := len(strings.Fields(content))
	chars := utf8.RuneCountInString(content)

	return &model.TextMetadata{
		Encoding:       encoding,
		LineCount:      &lines,
		WordCount:      &words,
		CharacterCount: &chars,
		ContentPreview: preview(content),
	}
}

// preview returns the first PreviewLength characters of s, or nil when s is empty.
func preview(s string) *string {
	if s == "" {
		return nil
	}
	p := truncateRunes(s, PreviewLength)
	return &p
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
