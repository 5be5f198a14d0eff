// Package summarizer produces a short natural-language summary of converted
// markdown. Summarization is best effort: callers treat any error here as
// non-fatal to the conversion job.
package summarizer

import (
	"context"

	"github.com/pkg/errors"
)

// Metadata carries document context that helps the model frame the summary.
type Metadata struct {
	Filename string
	MimeType string
	Pages    int
}

type Summarizer interface {
	Summarize(ctx context.Context, markdown string, meta Metadata) (string, error)
}

// Disabled is used when no API key is configured. Every call fails, which
// the pipeline degrades into a completed job without a summary.
type Disabled struct{}

var _ Summarizer = (*Disabled)(nil)

func NewDisabled() *Disabled {
	return &Disabled{}
}

func (d *Disabled) Summarize(ctx context.Context, markdown string, meta Metadata) (string, error) {
	return "", errors.New("summarizer is not configured")
}
