package extractor

import (
	"context"
	"encoding/csv"
	"io"

	"github.com/pkg/errors"
)

// CSVExtractor renders a CSV file as a single markdown table, first row as
// header, matching how the spreadsheet adapters present tabular data.
type CSVExtractor struct{}

var _ Extractor = (*CSVExtractor)(nil)

func NewCSVExtractor() *CSVExtractor {
	return &CSVExtractor{}
}

func (e *CSVExtractor) Extract(ctx context.Context, r io.Reader) (Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return Result{}, errors.Wrap(err, "parsing csv")
	}
	if len(rows) == 0 {
		return Result{}, errors.New("csv has no rows")
	}

	return Result{Markdown: markdownTable(rows), Pages: 1}, nil
}
