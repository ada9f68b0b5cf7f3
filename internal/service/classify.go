package service

import (
	"fmt"
	"mime"
	"path/filepath"
	"slices"
	"strings"

	"docstore/internal/model"
)

// ClassifyType picks the document type from the MIME type first and the file
// extension second. Generic MIME types (empty, octet-stream, text/plain) defer
// to the extension; anything unrecognised is plain text.
func ClassifyType(mimeType, filename string) model.DocumentType {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if parsed, _, err := mime.ParseMediaType(mt); err == nil {
		mt = parsed
	}
	switch mt {
	case "application/pdf":
		return model.TypePDF
	case "text/markdown", "text/x-markdown":
		return model.TypeMarkdown
	case "text/html":
		return model.TypeHTML
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return model.TypePDF
	case ".md":
		return model.TypeMarkdown
	case ".html", ".htm":
		return model.TypeHTML
	default:
		return model.TypeText
	}
}

// validateFilename checks presence and the extension allow-list, ignoring
// case, and returns the extension as written.
func validateFilename(name string, allowed []string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", ErrFilenameRequired
	}
	ext := filepath.Ext(name)
	lower := strings.ToLower(ext)
	if lower == "" || !slices.Contains(allowed, lower) {
		return "", fmt.Errorf("%w: %q (allowed: %s)", ErrInvalidFile, lower, strings.Join(allowed, ", "))
	}
	return ext, nil
}

// defaultTitle is the filename without directory or extension.
func defaultTitle(name string) string {
	base := filepath.Base(name)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		return "Untitled"
	}
	return stem
}

func parseStatus(s string) (model.DocumentStatus, error) {
	st := model.DocumentStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

func parseType(s string) (model.DocumentType, error) {
	t := model.DocumentType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
	return t, nil
}
