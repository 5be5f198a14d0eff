package extractor

import (
	"context"
	"io"

	"github.com/pkg/errors"
)

// TextExtractor handles plain text uploads: cleaned, otherwise verbatim.
type TextExtractor struct{}

var _ Extractor = (*TextExtractor)(nil)

func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

func (e *TextExtractor) Extract(ctx context.Context, r io.Reader) (Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, errors.Wrap(err, "reading text")
	}
	markdown := CleanText(string(data))
	if markdown == "" {
		return Result{}, errors.New("document is empty")
	}
	return Result{Markdown: markdown, Pages: 1}, nil
}

// MarkdownExtractor passes markdown input through untouched apart from
// control-character cleanup, so existing formatting survives.
type MarkdownExtractor struct{}

var _ Extractor = (*MarkdownExtractor)(nil)

func NewMarkdownExtractor() *MarkdownExtractor {
	return &MarkdownExtractor{}
}

func (e *MarkdownExtractor) Extract(ctx context.Context, r io.Reader) (Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, errors.Wrap(err, "reading markdown")
	}
	markdown := CleanText(string(data))
	if markdown == "" {
		return Result{}, errors.New("document is empty")
	}
	return Result{Markdown: markdown, Pages: 1}, nil
}
