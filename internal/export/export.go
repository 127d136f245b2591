// Package export writes consolidated records in the fixed output layout.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jonesrussell/north-cloud/spam-checker/internal/domain"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/ingest"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet written to XLSX output.
const SheetName = "Spam Checker"

const fileSuffix = "_spam_checker"

// DatedPath returns <dir>/<YYYYMMDD>_spam_checker.<format> for day.
func DatedPath(dir string, day time.Time, format ingest.Format) string {
	return filepath.Join(dir, day.Format("20060102")+fileSuffix+"."+string(format))
}

// WriteFile writes records to path in the format implied by its extension.
func WriteFile(path string, records []domain.ConsolidatedRecord) error {
	format, err := ingest.FormatFromPath(path)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err = os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}

	if err = Write(f, format, records); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}

// Write encodes records to w.
func Write(w io.Writer, format ingest.Format, records []domain.ConsolidatedRecord) error {
	switch format {
	case ingest.FormatCSV:
		return WriteCSV(w, records)
	case ingest.FormatXLSX:
		return WriteXLSX(w, records)
	default:
		return fmt.Errorf("%w: %q", ingest.ErrUnsupportedFormat, format)
	}
}

// WriteCSV writes the header and one line per record.
func WriteCSV(w io.Writer, records []domain.ConsolidatedRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(domain.OutputColumns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i := range records {
		if err := cw.Write(records[i].Cells()); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteXLSX writes a single-sheet workbook. Spam and present scores are
// written as numbers so spreadsheet filters work on them.
func WriteXLSX(w io.Writer, records []domain.ConsolidatedRecord) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := make([]any, len(domain.OutputColumns))
	for i, h := range domain.OutputColumns {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := xlsxRow(&records[i])
		if err = f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func xlsxRow(r *domain.ConsolidatedRecord) []any {
	return []any{
		r.Domain,
		r.FlaggedString(),
		r.MessageString(),
		r.SpamFlag(),
		r.PotentialString(),
		scoreCell(r.AhrefsDR),
		scoreCell(r.SZScore),
	}
}

// scoreCell leaves absent scores as empty cells rather than zero.
func scoreCell(s domain.Score) any {
	if !s.Valid {
		return nil
	}
	return s.Float64
}
