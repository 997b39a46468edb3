package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docbundle/internal/doctree"
)

// CSVParser renders a CSV file as a single markdown table. The first
// record is the header row.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	tree := &doctree.DocTree{Title: trimExt(filename, ".csv")}
	if len(records) == 0 {
		return tree, nil
	}

	headers := records[0]
	var sb strings.Builder
	writeRow(&sb, headers, len(headers))
	sb.WriteString("|")
	for range headers {
		sb.WriteString(" --- |")
	}
	sb.WriteString("\n")
	for _, row := range records[1:] {
		writeRow(&sb, row, len(headers))
	}

	tree.Children = []*doctree.DocNode{{Text: sb.String()}}
	return tree, nil
}

// writeRow pads or truncates row to width cells.
func writeRow(sb *strings.Builder, row []string, width int) {
	sb.WriteString("|")
	for i := 0; i < width; i++ {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		cell = strings.ReplaceAll(cell, "|", `\|`)
		cell = strings.ReplaceAll(cell, "\n", " ")
		sb.WriteString(" " + cell + " |")
	}
	sb.WriteString("\n")
}
