package ingest

import (
	"errors"
	"fmt"
	"io"

	"github.com/jonesrussell/north-cloud/spam-checker/internal/domain"
	"github.com/xuri/excelize/v2"
)

// ReadXLSX parses raw rows from the first sheet of a workbook.
func ReadXLSX(r io.Reader) ([]domain.RawRow, error) {
	table, err := readXLSXTable(r)
	if err != nil {
		return nil, err
	}
	return parseRows(table)
}

// ReadRecordsXLSX parses consolidated records from the first sheet of a workbook.
func ReadRecordsXLSX(r io.Reader) ([]domain.ConsolidatedRecord, error) {
	table, err := readXLSXTable(r)
	if err != nil {
		return nil, err
	}
	return parseRecords(table)
}

func readXLSXTable(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}
