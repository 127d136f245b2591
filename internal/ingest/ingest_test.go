package ingest_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonesrussell/north-cloud/spam-checker/internal/domain"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadCSV(t *testing.T) {
	t.Parallel()

	input := "\ufeffdomain name,Spam message,Ahrefs Domain Rating,SZ Score,Extra\n" +
		"Spam.com,contains viagra offer,,\n" +
		"spam.com,,40,n/a\n" +
		",test,,\n" +
		",,,\n" +
		"odd.net,\"quoted, message\",high,7\n"

	rows, err := ingest.ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, "Spam.com", rows[0].Domain)
	assert.Equal(t, 2, rows[0].Line)
	assert.False(t, rows[0].AhrefsDR.Valid)

	assert.Equal(t, "40", rows[1].AhrefsDR.String())
	assert.False(t, rows[1].SZScore.Valid)
	assert.Empty(t, rows[1].Mismatches)

	assert.Empty(t, rows[2].Domain)
	assert.Equal(t, "test", rows[2].SpamMessage)

	odd := rows[3]
	assert.Equal(t, 6, odd.Line)
	assert.Equal(t, "quoted, message", odd.SpamMessage)
	assert.False(t, odd.AhrefsDR.Valid)
	assert.Equal(t, "7", odd.SZScore.String())
	assert.Equal(t, []domain.FieldMismatch{{Field: domain.ColumnAhrefsRating, Value: "high"}}, odd.Mismatches)
}

func TestReadCSV_OptionalColumnsMissing(t *testing.T) {
	t.Parallel()

	rows, err := ingest.ReadCSV(strings.NewReader("Spam message,Domain Name\nhello,a.com\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "a.com", rows[0].Domain)
	assert.False(t, rows[0].SZScore.Valid)
}

func TestReadCSV_MissingRequiredColumn(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{"empty file", ""},
		{"no domain column", "Spam message\nhello\n"},
		{"no message column", "Domain Name\na.com\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ingest.ReadCSV(strings.NewReader(tt.input))
			require.ErrorIs(t, err, ingest.ErrMissingColumn)
		})
	}
}

func TestReadCSV_Windows1252(t *testing.T) {
	t.Parallel()

	// 0xE9 is "é" in Windows-1252 and invalid on its own in UTF-8.
	input := []byte("Domain Name,Spam message\ncaf\xe9.com,r\xe9sum\xe9 spam\n")

	rows, err := ingest.ReadCSV(bytes.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "café.com", rows[0].Domain)
	assert.Equal(t, "résumé spam", rows[0].SpamMessage)
}

func newWorkbook(t *testing.T, table [][]string) []byte {
	t.Helper()

	f := excelize.NewFile()
	for r, values := range table {
		for c, v := range values {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cell, v))
		}
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestReadXLSX(t *testing.T) {
	t.Parallel()

	data := newWorkbook(t, [][]string{
		{"Domain Name", "Spam message", "Ahrefs Domain Rating"},
		{"x.com", "casino", "20"},
		{"x.com", "", "35"},
	})

	rows, err := ingest.ReadXLSX(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "casino", rows[0].SpamMessage)
	assert.Equal(t, "35", rows[1].AhrefsDR.String())
}

func TestReadXLSX_InvalidWorkbook(t *testing.T) {
	t.Parallel()

	_, err := ingest.ReadXLSX(strings.NewReader("not excel"))
	require.Error(t, err)
}

func TestReadRecordsCSV(t *testing.T) {
	t.Parallel()

	input := "Domain Name,Flagged,Message,Spam,Potential Spam,Ahrefs DR,SZ Score\n" +
		"dup.com,\"casino, loan\",a | b,1,click here,35,\n" +
		"clean.com,,,0,,,0\n"

	records, err := ingest.ReadRecordsCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, []string{"casino", "loan"}, records[0].Flagged)
	assert.Equal(t, []string{"a", "b"}, records[0].Messages)
	assert.True(t, records[0].Spam)
	assert.Equal(t, []string{"click here"}, records[0].Potential)
	assert.Equal(t, "35", records[0].AhrefsDR.String())
	assert.False(t, records[0].SZScore.Valid)

	assert.False(t, records[1].Spam)
	assert.Empty(t, records[1].Flagged)
	assert.True(t, records[1].SZScore.Valid)
}

func TestReadRecordsCSV_Malformed(t *testing.T) {
	t.Parallel()

	input := "Domain Name,Flagged,Spam,Ahrefs DR\na.com,,maybe,\n"
	_, err := ingest.ReadRecordsCSV(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestReadRowsFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	csvPath := filepath.Join(dir, "export.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("Domain Name,Spam message\na.com,x\n"), 0o600))
	rows, err := ingest.ReadRowsFile(csvPath)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	xlsxPath := filepath.Join(dir, "export.XLSX")
	require.NoError(t, os.WriteFile(xlsxPath, newWorkbook(t, [][]string{{"Domain Name", "Spam message"}, {"b.com", "y"}}), 0o600))
	rows, err = ingest.ReadRowsFile(xlsxPath)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = ingest.ReadRowsFile(filepath.Join(dir, "export.json"))
	require.ErrorIs(t, err, ingest.ErrUnsupportedFormat)
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	f, err := ingest.ParseFormat(".CSV")
	require.NoError(t, err)
	assert.Equal(t, ingest.FormatCSV, f)

	_, err = ingest.ParseFormat("ods")
	require.ErrorIs(t, err, ingest.ErrUnsupportedFormat)
}
