package extractor

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/pkg/errors"
)

// PDFExtractor renders PDF text page by page with go-fitz, emitting one
// markdown section per page.
type PDFExtractor struct{}

var _ Extractor = (*PDFExtractor)(nil)

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

func (e *PDFExtractor) Extract(ctx context.Context, r io.Reader) (Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, errors.Wrap(err, "reading pdf")
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return Result{}, errors.Wrap(err, "opening pdf")
	}
	defer doc.Close()

	pageCount := doc.NumPage()
	if pageCount == 0 {
		return Result{}, errors.New("pdf has no pages")
	}

	var b strings.Builder
	for pageNum := 0; pageNum < pageCount; pageNum++ {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		default:
		}

		text, err := doc.Text(pageNum)
		if err != nil {
			return Result{}, errors.Wrapf(err, "extracting text from page %d", pageNum+1)
		}
		text = CleanText(text)
		if text == "" {
			continue
		}
		b.WriteString(fmt.Sprintf("## Page %d\n\n%s\n\n", pageNum+1, text))
	}

	markdown := strings.TrimSpace(b.String())
	if markdown == "" {
		return Result{}, errors.New("pdf contains no extractable text")
	}

	return Result{Markdown: markdown, Pages: pageCount}, nil
}
