// Package ingest loads Spamzilla exports and consolidated output files into
// records. It owns all file handling so the classification engine only sees
// in-memory rows.
package ingest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonesrussell/north-cloud/spam-checker/internal/domain"
)

var (
	// ErrMissingColumn is returned when a required header is absent.
	ErrMissingColumn = errors.New("missing required column")
	// ErrUnsupportedFormat is returned for file extensions other than csv and xlsx.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// Format identifies a tabular file format.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a format name such as "csv" or ".XLSX".
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(s, "."))); f {
	case FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// FormatFromPath returns the format implied by a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// ReadRowsFile loads raw rows from a CSV or XLSX export.
func ReadRowsFile(path string) ([]domain.RawRow, error) {
	table, err := readTableFile(path)
	if err != nil {
		return nil, err
	}
	rows, err := parseRows(table)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// ReadRecordsFile loads consolidated records from a file written by export.
func ReadRecordsFile(path string) ([]domain.ConsolidatedRecord, error) {
	table, err := readTableFile(path)
	if err != nil {
		return nil, err
	}
	records, err := parseRecords(table)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

func readTableFile(path string) ([][]string, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	var table [][]string
	switch format {
	case FormatCSV:
		table, err = readCSVTable(f)
	case FormatXLSX:
		table, err = readXLSXTable(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}
