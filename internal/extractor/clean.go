package extractor

import (
	"regexp"
	"strings"
)

var (
	controlChars   = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
	excessNewlines = regexp.MustCompile(`(\r\n|\r|\n){3,}`)
	trailingSpace  = regexp.MustCompile(`[ \t]+\n`)
)

// CleanText normalizes extracted text for markdown output: control
// characters are stripped, runs of blank lines are collapsed to one, and
// trailing whitespace is removed.
func CleanText(text string) string {
	cleaned := controlChars.ReplaceAllString(text, "")
	cleaned = strings.ReplaceAll(cleaned, "\r\n", "\n")
	cleaned = strings.ReplaceAll(cleaned, "\r", "\n")
	cleaned = excessNewlines.ReplaceAllString(cleaned, "\n\n")
	cleaned = trailingSpace.ReplaceAllString(cleaned, "\n")
	return strings.TrimSpace(cleaned)
}

// escapeCell makes a string safe inside a markdown table cell.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

// markdownTable renders rows as a markdown table. The first row is treated
// as the header; ragged rows are padded to the header width.
func markdownTable(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	width := len(rows[0])
	for _, row := range rows[1:] {
		if len(row) > width {
			width = len(row)
		}
	}

	var b strings.Builder
	writeRow := func(row []string) {
		b.WriteString("|")
		for i := 0; i < width; i++ {
			cell := ""
			if i < len(row) {
				cell = escapeCell(row[i])
			}
			b.WriteString(" " + cell + " |")
		}
		b.WriteString("\n")
	}

	writeRow(rows[0])
	b.WriteString("|")
	for i := 0; i < width; i++ {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for _, row := range rows[1:] {
		writeRow(row)
	}
	return strings.TrimRight(b.String(), "\n")
}
