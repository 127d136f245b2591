package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/jonesrussell/north-cloud/spam-checker/internal/domain"
	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV parses raw rows from a CSV export.
func ReadCSV(r io.Reader) ([]domain.RawRow, error) {
	table, err := readCSVTable(r)
	if err != nil {
		return nil, err
	}
	return parseRows(table)
}

// ReadRecordsCSV parses consolidated records from CSV.
func ReadRecordsCSV(r io.Reader) ([]domain.ConsolidatedRecord, error) {
	table, err := readCSVTable(r)
	if err != nil {
		return nil, err
	}
	return parseRecords(table)
}

func readCSVTable(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	data, err = decodeText(data)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	table, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return table, nil
}

// decodeText strips a UTF-8 BOM and converts Windows-1252 input, which
// spreadsheet exports on Windows still produce, to UTF-8.
func decodeText(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data, nil
	}

	out, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("decode windows-1252: %w", err)
	}
	return out, nil
}
