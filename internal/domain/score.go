package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrNotNumeric is returned by ParseScore for cells that hold text.
var ErrNotNumeric = errors.New("value is not numeric")

// Score is an optional numeric metric such as a domain rating.
// The zero value is absent; absent is distinct from a present zero.
type Score struct {
	Float64 float64
	Valid   bool
}

// NewScore returns a present score. NaN and infinities are treated as absent.
func NewScore(v float64) Score {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Score{}
	}
	return Score{Float64: v, Valid: true}
}

// missingMarkers are cell contents spreadsheet exports use for "no value".
var missingMarkers = map[string]struct{}{
	"": {}, "-": {}, "n/a": {}, "#n/a": {}, "na": {}, "nan": {}, "null": {}, "none": {},
}

// ParseScore parses a spreadsheet cell. Missing markers yield an absent score
// with no error; any other non-numeric text yields an absent score and
// ErrNotNumeric so callers can record the mismatch.
func ParseScore(raw string) (Score, error) {
	s := strings.TrimSpace(raw)
	if _, ok := missingMarkers[strings.ToLower(s)]; ok {
		return Score{}, nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Score{}, fmt.Errorf("%q: %w", raw, ErrNotNumeric)
	}

	return NewScore(v), nil
}

// Max returns the larger of two scores; an absent score never wins.
func (s Score) Max(o Score) Score {
	switch {
	case !o.Valid:
		return s
	case !s.Valid:
		return o
	case o.Float64 > s.Float64:
		return o
	default:
		return s
	}
}

// String renders the score for output files; absent renders empty.
func (s Score) String() string {
	if !s.Valid {
		return ""
	}
	return strconv.FormatFloat(s.Float64, 'f', -1, 64)
}

// MarshalJSON encodes absent as null.
func (s Score) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.Float64)
}

// UnmarshalJSON accepts null, a number, or a numeric string.
func (s *Score) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = Score{}
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		*s = NewScore(v)
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("decode score: %w", err)
	}

	parsed, err := ParseScore(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Value implements driver.Valuer.
func (s Score) Value() (driver.Value, error) {
	if !s.Valid {
		return nil, nil
	}
	return s.Float64, nil
}

// Scan implements sql.Scanner.
func (s *Score) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = Score{}
	case float64:
		*s = NewScore(v)
	case int64:
		*s = NewScore(float64(v))
	case []byte:
		return s.scanString(string(v))
	case string:
		return s.scanString(v)
	default:
		return fmt.Errorf("scan score: unsupported type %T", src)
	}
	return nil
}

func (s *Score) scanString(v string) error {
	parsed, err := ParseScore(v)
	if err != nil {
		return fmt.Errorf("scan score: %w", err)
	}
	*s = parsed
	return nil
}
