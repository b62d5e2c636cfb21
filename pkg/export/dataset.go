package export

import (
	"fmt"
	"strings"
)

// Format names an export file type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

// Formats lists the supported formats in display order.
var Formats = []Format{FormatCSV, FormatPDF, FormatXLSX}

// ParseFormat maps a user supplied name to a Format.
func ParseFormat(raw string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported export format %q", raw)
}

// Dataset is a titled table. Every row has one cell per header.
type Dataset struct {
	Title   string
	Headers []string
	Rows    [][]string
}

func (d Dataset) validate() error {
	if len(d.Headers) == 0 {
		return fmt.Errorf("dataset %q has no headers", d.Title)
	}
	for i, row := range d.Rows {
		if len(row) != len(d.Headers) {
			return fmt.Errorf("dataset %q row %d has %d cells, want %d", d.Title, i, len(row), len(d.Headers))
		}
	}
	return nil
}
