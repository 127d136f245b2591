package ingest

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jonesrussell/north-cloud/spam-checker/internal/domain"
	"gopkg.in/yaml.v3"
)

// Correction is a manual fix for every row of one domain.
type Correction struct {
	Domain        string  `yaml:"domain"`
	ReplaceDomain string  `yaml:"replace_domain,omitempty"`
	Message       *string `yaml:"message,omitempty"`
	Drop          bool    `yaml:"drop,omitempty"`
}

// Corrections is a validated set of fixes keyed by normalized domain.
type Corrections struct {
	byKey map[string]Correction
}

type correctionsFile struct {
	Corrections []Correction `yaml:"corrections"`
}

// CorrectionStats counts what Apply changed. DroppedMismatches counts the
// field mismatches carried by dropped rows, which never reach the consolidator.
type CorrectionStats struct {
	Corrected         int
	Dropped           int
	DroppedMismatches int
}

// LoadCorrections reads a corrections YAML file.
func LoadCorrections(path string) (*Corrections, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corrections: %w", err)
	}
	c, err := ParseCorrections(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// ParseCorrections parses corrections YAML.
func ParseCorrections(data []byte) (*Corrections, error) {
	var f correctionsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse corrections: %w", err)
	}
	return NewCorrections(f.Corrections)
}

// NewCorrections validates a list of corrections.
func NewCorrections(list []Correction) (*Corrections, error) {
	c := &Corrections{byKey: make(map[string]Correction, len(list))}
	for i, corr := range list {
		key := domain.NormalizeDomain(corr.Domain)
		switch {
		case key == "":
			return nil, fmt.Errorf("correction %d: domain is required", i)
		case corr.Drop && (corr.ReplaceDomain != "" || corr.Message != nil):
			return nil, fmt.Errorf("correction %d (%s): drop cannot be combined with replacements", i, corr.Domain)
		case !corr.Drop && strings.TrimSpace(corr.ReplaceDomain) == "" && corr.Message == nil:
			return nil, fmt.Errorf("correction %d (%s): nothing to change", i, corr.Domain)
		}
		if _, dup := c.byKey[key]; dup {
			return nil, fmt.Errorf("correction %d: %w: %s", i, errDuplicateCorrection, corr.Domain)
		}
		c.byKey[key] = corr
	}
	return c, nil
}

var errDuplicateCorrection = errors.New("duplicate correction")

// Len returns the number of corrections.
func (c *Corrections) Len() int {
	if c == nil {
		return 0
	}
	return len(c.byKey)
}

// Apply returns a corrected copy of rows. Rows of dropped domains are
// removed; rows are otherwise matched on their original domain key.
func (c *Corrections) Apply(rows []domain.RawRow) ([]domain.RawRow, CorrectionStats) {
	var stats CorrectionStats
	if c.Len() == 0 {
		return rows, stats
	}

	out := make([]domain.RawRow, 0, len(rows))
	for _, row := range rows {
		corr, ok := c.byKey[row.Key()]
		if !ok {
			out = append(out, row)
			continue
		}
		if corr.Drop {
			stats.Dropped++
			stats.DroppedMismatches += len(row.Mismatches)
			continue
		}
		if d := strings.TrimSpace(corr.ReplaceDomain); d != "" {
			row.Domain = d
		}
		if corr.Message != nil {
			row.SpamMessage = *corr.Message
		}
		stats.Corrected++
		out = append(out, row)
	}
	return out, stats
}
