package extractor_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/fridadocs/docflow/internal/extractor"
)

func TestFormatResolution(t *testing.T) {
	tests := []struct {
		name     string
		mimeType string
		filename string
		want     string
		ok       bool
	}{
		{name: "pdf mime", mimeType: "application/pdf", filename: "", want: "pdf", ok: true},
		{name: "mime with params", mimeType: "text/plain; charset=utf-8", filename: "", want: "txt", ok: true},
		{name: "mime wins over extension", mimeType: "text/csv", filename: "data.txt", want: "csv", ok: true},
		{name: "extension fallback", mimeType: "", filename: "notes.md", want: "md", ok: true},
		{name: "markdown long extension", mimeType: "", filename: "notes.markdown", want: "md", ok: true},
		{name: "htm extension", mimeType: "", filename: "page.htm", want: "html", ok: true},
		{name: "unknown mime falls back to extension", mimeType: "application/octet-stream", filename: "report.xlsx", want: "xlsx", ok: true},
		{name: "case insensitive", mimeType: "Text/HTML", filename: "", want: "html", ok: true},
		{name: "unsupported", mimeType: "image/gif", filename: "pixel.gif", want: "", ok: false},
		{name: "nothing declared", mimeType: "", filename: "README", want: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractor.Format(tt.mimeType, tt.filename)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestRegistryCoversAllFormats(t *testing.T) {
	registry := extractor.NewRegistry()
	for _, format := range []string{"pdf", "txt", "md", "html", "csv", "xlsx"} {
		_, ok := registry.For(format)
		require.True(t, ok, "missing adapter for %s", format)
	}
	_, ok := registry.For("docx")
	require.False(t, ok)
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "strips control chars", in: "a\x00b\x07c", want: "abc"},
		{name: "normalizes crlf", in: "one\r\ntwo\rthree", want: "one\ntwo\nthree"},
		{name: "collapses blank lines", in: "one\n\n\n\n\ntwo", want: "one\n\ntwo"},
		{name: "drops trailing spaces", in: "one  \ntwo\t\n", want: "one\ntwo"},
		{name: "trims", in: "  padded  ", want: "padded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, extractor.CleanText(tt.in))
		})
	}
}

func TestTextExtract(t *testing.T) {
	e := extractor.NewTextExtractor()

	result, err := e.Extract(context.Background(), strings.NewReader("plain body\r\nsecond line"))
	require.NoError(t, err)
	require.Equal(t, "plain body\nsecond line", result.Markdown)
	require.Equal(t, 1, result.Pages)

	_, err = e.Extract(context.Background(), strings.NewReader("   \n\n  "))
	require.Error(t, err)
}

func TestCSVExtract(t *testing.T) {
	e := extractor.NewCSVExtractor()

	result, err := e.Extract(context.Background(), strings.NewReader("name,amount\nwidgets,12\ngadgets,7\n"))
	require.NoError(t, err)
	require.Equal(t, 1, result.Pages)
	require.Contains(t, result.Markdown, "| name | amount |")
	require.Contains(t, result.Markdown, "| --- | --- |")
	require.Contains(t, result.Markdown, "| widgets | 12 |")

	_, err = e.Extract(context.Background(), strings.NewReader(""))
	require.Error(t, err)
}

func TestCSVExtractEscapesPipes(t *testing.T) {
	e := extractor.NewCSVExtractor()

	result, err := e.Extract(context.Background(), strings.NewReader("col\na|b\n"))
	require.NoError(t, err)
	require.Contains(t, result.Markdown, `a\|b`)
}

func TestHTMLExtract(t *testing.T) {
	e := extractor.NewHTMLExtractor()

	page := `<html><head><title>ignored</title><style>p{color:red}</style></head>
<body><h1>Title</h1><p>First paragraph.</p><ul><li>one</li><li>two</li></ul>
<script>var hidden = true;</script></body></html>`

	result, err := e.Extract(context.Background(), strings.NewReader(page))
	require.NoError(t, err)
	require.Contains(t, result.Markdown, "# Title")
	require.Contains(t, result.Markdown, "First paragraph.")
	require.Contains(t, result.Markdown, "- one")
	require.Contains(t, result.Markdown, "- two")
	require.NotContains(t, result.Markdown, "hidden")
	require.NotContains(t, result.Markdown, "color:red")
	require.NotContains(t, result.Markdown, "ignored")
}

func TestXLSXExtract(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"name", "amount"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"widgets", 12}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	e := extractor.NewXLSXExtractor()
	result, err := e.Extract(context.Background(), &buf)
	require.NoError(t, err)
	require.Equal(t, 1, result.Pages)
	require.Contains(t, result.Markdown, "## Sheet1")
	require.Contains(t, result.Markdown, "| name | amount |")
	require.Contains(t, result.Markdown, "| widgets | 12 |")
}

func TestXLSXExtractRejectsGarbage(t *testing.T) {
	e := extractor.NewXLSXExtractor()
	_, err := e.Extract(context.Background(), strings.NewReader("not a workbook"))
	require.Error(t, err)
}
