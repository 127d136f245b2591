package ingest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jonesrussell/north-cloud/spam-checker/internal/domain"
)

// columnMap maps a header name to its index, -1 when absent.
type columnMap map[string]int

// buildColumnMap matches headers case-insensitively, ignoring surrounding
// whitespace. The first occurrence of a repeated header wins.
func buildColumnMap(header []string, names ...string) columnMap {
	byFolded := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, seen := byFolded[key]; !seen {
			byFolded[key] = i
		}
	}

	cm := make(columnMap, len(names))
	for _, n := range names {
		if i, ok := byFolded[strings.ToLower(n)]; ok {
			cm[n] = i
		} else {
			cm[n] = -1
		}
	}
	return cm
}

func (cm columnMap) require(names ...string) error {
	var missing []string
	for _, n := range names {
		if cm[n] < 0 {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

// cell returns the value of column name in row, "" when the column is absent
// or the row is short.
func (cm columnMap) cell(row []string, name string) string {
	i := cm[name]
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseRows converts an input table whose first row is the header.
// Rows without a domain are kept so the consolidator can count them.
func parseRows(table [][]string) ([]domain.RawRow, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, domain.ColumnDomainName)
	}

	cm := buildColumnMap(table[0],
		domain.ColumnDomainName,
		domain.ColumnSpamMessage,
		domain.ColumnAhrefsRating,
		domain.ColumnSZScore,
	)
	if err := cm.require(domain.ColumnDomainName, domain.ColumnSpamMessage); err != nil {
		return nil, err
	}

	rows := make([]domain.RawRow, 0, len(table)-1)
	for i, rec := range table[1:] {
		if blankRow(rec) {
			continue
		}

		row := domain.RawRow{
			Line:        i + 2,
			Domain:      cm.cell(rec, domain.ColumnDomainName),
			SpamMessage: cm.cell(rec, domain.ColumnSpamMessage),
		}
		row.AhrefsDR = parseScoreCell(&row, domain.ColumnAhrefsRating, cm.cell(rec, domain.ColumnAhrefsRating))
		row.SZScore = parseScoreCell(&row, domain.ColumnSZScore, cm.cell(rec, domain.ColumnSZScore))
		rows = append(rows, row)
	}
	return rows, nil
}

func parseScoreCell(row *domain.RawRow, field, raw string) domain.Score {
	s, err := domain.ParseScore(raw)
	if errors.Is(err, domain.ErrNotNumeric) {
		row.Mismatches = append(row.Mismatches, domain.FieldMismatch{Field: field, Value: raw})
	}
	return s
}

// parseRecords converts a consolidated output table. Unlike raw exports these
// files are machine written, so malformed cells are errors.
func parseRecords(table [][]string) ([]domain.ConsolidatedRecord, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, domain.ColumnDomainName)
	}

	cm := buildColumnMap(table[0], domain.OutputColumns...)
	if err := cm.require(domain.ColumnDomainName, domain.ColumnFlagged, domain.ColumnSpam); err != nil {
		return nil, err
	}

	records := make([]domain.ConsolidatedRecord, 0, len(table)-1)
	for i, rec := range table[1:] {
		line := i + 2
		if blankRow(rec) {
			continue
		}

		r, err := parseRecord(cm, rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if r.Key() == "" {
			continue
		}
		records = append(records, r)
	}
	return records, nil
}

func parseRecord(cm columnMap, rec []string) (domain.ConsolidatedRecord, error) {
	r := domain.ConsolidatedRecord{
		Domain:    strings.TrimSpace(cm.cell(rec, domain.ColumnDomainName)),
		Flagged:   domain.SplitList(cm.cell(rec, domain.ColumnFlagged), domain.TermSeparator),
		Messages:  domain.SplitList(cm.cell(rec, domain.ColumnMessage), domain.MessageSeparator),
		Potential: domain.SplitList(cm.cell(rec, domain.ColumnPotentialSpam), domain.TermSeparator),
	}

	spam := strings.TrimSpace(cm.cell(rec, domain.ColumnSpam))
	if spam != "" {
		v, err := strconv.ParseBool(spam)
		if err != nil {
			return r, fmt.Errorf("%s: %q is not 0 or 1", domain.ColumnSpam, spam)
		}
		r.Spam = v
	}

	var err error
	if r.AhrefsDR, err = domain.ParseScore(cm.cell(rec, domain.ColumnAhrefsDR)); err != nil {
		return r, fmt.Errorf("%s: %w", domain.ColumnAhrefsDR, err)
	}
	if r.SZScore, err = domain.ParseScore(cm.cell(rec, domain.ColumnSZScore)); err != nil {
		return r, fmt.Errorf("%s: %w", domain.ColumnSZScore, err)
	}
	return r, nil
}
