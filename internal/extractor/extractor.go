// Package extractor converts uploaded documents into normalized markdown.
// Each supported input format has its own adapter behind the Extractor
// interface; the registry resolves the adapter from the declared MIME type
// with a filename-extension fallback.
package extractor

import (
	"context"
	"io"
	"path/filepath"
	"strings"
)

// Result is the outcome of a successful extraction. Markdown is
// all-or-nothing: adapters never return partial output alongside an error.
type Result struct {
	Markdown string
	Pages    int
}

type Extractor interface {
	Extract(ctx context.Context, r io.Reader) (Result, error)
}

// mimeFormats maps declared content types to format keys.
var mimeFormats = map[string]string{
	"application/pdf": "pdf",
	"text/plain":      "txt",
	"text/markdown":   "md",
	"text/html":       "html",
	"text/csv":        "csv",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": "xlsx",
}

var extFormats = map[string]string{
	".pdf":      "pdf",
	".txt":      "txt",
	".md":       "md",
	".markdown": "md",
	".html":     "html",
	".htm":      "html",
	".csv":      "csv",
	".xlsx":     "xlsx",
}

// Format resolves the pipeline format key for a declared MIME type, falling
// back to the filename extension when the MIME type is absent or unknown.
func Format(mimeType, filename string) (string, bool) {
	mt := mimeType
	if idx := strings.IndexByte(mt, ';'); idx >= 0 {
		mt = mt[:idx]
	}
	mt = strings.TrimSpace(strings.ToLower(mt))
	if format, ok := mimeFormats[mt]; ok {
		return format, true
	}
	if format, ok := extFormats[strings.ToLower(filepath.Ext(filename))]; ok {
		return format, true
	}
	return "", false
}

// Registry holds the configured adapters keyed by format.
type Registry struct {
	byFormat map[string]Extractor
}

// NewRegistry returns a registry with all built-in adapters wired.
func NewRegistry() *Registry {
	r := &Registry{byFormat: make(map[string]Extractor)}
	r.Register("pdf", NewPDFExtractor())
	r.Register("txt", NewTextExtractor())
	r.Register("md", NewMarkdownExtractor())
	r.Register("html", NewHTMLExtractor())
	r.Register("csv", NewCSVExtractor())
	r.Register("xlsx", NewXLSXExtractor())
	return r
}

func (r *Registry) Register(format string, e Extractor) {
	r.byFormat[format] = e
}

func (r *Registry) For(format string) (Extractor, bool) {
	e, ok := r.byFormat[format]
	return e, ok
}

// Formats lists the registered format keys.
func (r *Registry) Formats() []string {
	formats := make([]string, 0, len(r.byFormat))
	for f := range r.byFormat {
		formats = append(formats, f)
	}
	return formats
}
