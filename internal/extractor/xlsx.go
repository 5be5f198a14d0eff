package extractor

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// XLSXExtractor converts a workbook into markdown, one section with a table
// per non-empty sheet. Pages is the number of sheets rendered.
type XLSXExtractor struct{}

var _ Extractor = (*XLSXExtractor)(nil)

func NewXLSXExtractor() *XLSXExtractor {
	return &XLSXExtractor{}
}

func (e *XLSXExtractor) Extract(ctx context.Context, r io.Reader) (Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Result{}, errors.Wrap(err, "opening workbook")
	}
	defer f.Close()

	var b strings.Builder
	rendered := 0
	for _, sheet := range f.GetSheetList() {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		default:
		}

		rows, err := f.GetRows(sheet)
		if err != nil {
			return Result{}, errors.Wrapf(err, "reading sheet %s", sheet)
		}
		if len(rows) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("## %s\n\n%s\n\n", sheet, markdownTable(rows)))
		rendered++
	}

	if rendered == 0 {
		return Result{}, errors.New("workbook has no data")
	}

	return Result{Markdown: strings.TrimSpace(b.String()), Pages: rendered}, nil
}
