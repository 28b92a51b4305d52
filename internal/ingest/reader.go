package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ExtractionError reports a source that could not be turned into text.
// It names the offending format so callers can surface a useful message.
type ExtractionError struct {
	Path   string
	Format string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extract %s (%s): %v", e.Path, e.Format, e.Err)
	}
	return fmt.Sprintf("extract %s: unsupported format %q", e.Path, e.Format)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// TextExtractor turns a source file into plain text.
type TextExtractor interface {
	// Extract reads the file at path and returns its text content.
	// Unsupported or corrupt inputs fail with an *ExtractionError.
	Extract(path string) (string, error)
	// Supports reports whether the extractor handles the file's format.
	Supports(path string) bool
}

// fileTypes maps extensions to the canonical type name carried in
// work-item payloads.
var fileTypes = map[string]string{
	".txt":      "txt",
	".md":       "md",
	".markdown": "md",
	".log":      "log",
}

// FileType returns the canonical type for a path, or "" if unsupported.
func FileType(path string) string {
	return fileTypes[strings.ToLower(filepath.Ext(path))]
}

// PlainTextExtractor reads plain-text formats (txt, markdown, logs)
// straight from disk.
type PlainTextExtractor struct{}

// NewPlainTextExtractor creates a PlainTextExtractor.
func NewPlainTextExtractor() *PlainTextExtractor {
	return &PlainTextExtractor{}
}

func (x *PlainTextExtractor) Supports(path string) bool {
	return FileType(path) != ""
}

func (x *PlainTextExtractor) Extract(path string) (string, error) {
	format := FileType(path)
	if format == "" {
		return "", &ExtractionError{Path: path, Format: strings.ToLower(filepath.Ext(path))}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", &ExtractionError{Path: path, Format: format, Err: err}
	}
	if !utf8.Valid(content) {
		return "", &ExtractionError{Path: path, Format: format, Err: fmt.Errorf("not valid UTF-8 text")}
	}
	return string(content), nil
}
