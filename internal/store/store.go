// Package store persists consolidated records so that successive runs
// accumulate into one authoritative domain table.
package store

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jonesrussell/north-cloud/spam-checker/infrastructure/retry"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/consolidator"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/domain"
	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// ErrUnsupportedDriver is returned by Open for drivers other than sqlite3 and postgres.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// ErrInMemoryDSN is returned by Open for a SQLite DSN whose database lives in
// one connection. Migrations run on their own connection and would create the
// schema in a different database.
var ErrInMemoryDSN = errors.New("in-memory sqlite database is not supported")

// CheckDSN reports whether dsn names a database every connection can share.
func CheckDSN(driverName, dsn string) error {
	if driverName != DriverSQLite {
		return nil
	}
	d := strings.TrimSpace(dsn)
	if d == "" || d == ":memory:" || strings.HasPrefix(d, "file::memory:") || strings.Contains(d, "mode=memory") {
		return fmt.Errorf("%w: %q", ErrInMemoryDSN, dsn)
	}
	return nil
}

const (
	defaultMaxOpenConns    = 10
	defaultConnMaxLifetime = 5 * time.Minute
	pingTimeout            = 5 * time.Second

	// keysPerQuery bounds IN-list size below SQLite's variable limit.
	keysPerQuery = 500
)

var connectRetry = retry.Config{
	MaxAttempts:  5,
	InitialDelay: 500 * time.Millisecond,
	MaxDelay:     5 * time.Second,
}

// Store reads and merges consolidated records.
type Store struct {
	db       *sqlx.DB
	collator *consolidator.Collator
}

// New wraps an open connection. The schema must already exist.
func New(db *sqlx.DB, collator *consolidator.Collator) *Store {
	return &Store{db: db, collator: collator}
}

// Open connects, applies migrations and returns a Store. The first ping is
// retried so a database that is still starting does not fail the command.
func Open(ctx context.Context, driverName, dsn string, collator *consolidator.Collator) (*Store, error) {
	if driverName != DriverSQLite && driverName != DriverPostgres {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driverName)
	}
	if err := CheckDSN(driverName, dsn); err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if driverName == DriverSQLite {
		// SQLite allows one writer; serializing avoids "database is locked".
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(defaultMaxOpenConns)
	}
	db.SetConnMaxLifetime(defaultConnMaxLifetime)

	s := New(db, collator)
	if err = retry.Do(ctx, connectRetry, s.Ping); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err = migrateUp(driverName, dsn); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return s.db.PingContext(pingCtx)
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// stringList stores a list column as a JSON array.
type stringList []string

func (l stringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *stringList) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*l = stringList{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("scan string list: unsupported type %T", src)
	}

	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("scan string list: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*l = out
	return nil
}

type recordRow struct {
	DomainKey string       `db:"domain_key"`
	Domain    string       `db:"domain"`
	Flagged   stringList   `db:"flagged"`
	Messages  stringList   `db:"messages"`
	Spam      bool         `db:"spam"`
	Potential stringList   `db:"potential"`
	AhrefsDR  domain.Score `db:"ahrefs_dr"`
	SZScore   domain.Score `db:"sz_score"`
	UpdatedAt time.Time    `db:"updated_at"`
}

func (r *recordRow) toRecord() domain.ConsolidatedRecord {
	return domain.ConsolidatedRecord{
		Domain:    r.Domain,
		Flagged:   r.Flagged,
		Messages:  r.Messages,
		Spam:      r.Spam,
		Potential: r.Potential,
		AhrefsDR:  r.AhrefsDR,
		SZScore:   r.SZScore,
	}
}

const selectRecords = `
	SELECT domain_key, domain, flagged, messages, spam, potential, ahrefs_dr, sz_score, updated_at
	FROM domain_records`

const upsertRecord = `
	INSERT INTO domain_records
		(domain_key, domain, flagged, messages, spam, potential, ahrefs_dr, sz_score, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (domain_key) DO UPDATE SET
		domain = excluded.domain,
		flagged = excluded.flagged,
		messages = excluded.messages,
		spam = excluded.spam,
		potential = excluded.potential,
		ahrefs_dr = excluded.ahrefs_dr,
		sz_score = excluded.sz_score,
		updated_at = excluded.updated_at`

// List returns every stored record ordered by domain key.
func (s *Store) List(ctx context.Context) ([]domain.ConsolidatedRecord, error) {
	var rows []recordRow
	if err := s.db.SelectContext(ctx, &rows, selectRecords+" ORDER BY domain_key"); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	out := make([]domain.ConsolidatedRecord, len(rows))
	for i := range rows {
		out[i] = rows[i].toRecord()
	}
	return out, nil
}

// Merge collates records with what is already stored for the same domains
// and writes the result back in one transaction. Merging the same records
// twice leaves the table unchanged. It returns the merged records.
func (s *Store) Merge(ctx context.Context, records []domain.ConsolidatedRecord) ([]domain.ConsolidatedRecord, error) {
	if len(records) == 0 {
		return []domain.ConsolidatedRecord{}, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin merge: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := s.loadKeys(ctx, tx, recordKeys(records))
	if err != nil {
		return nil, err
	}

	merged := s.collator.Collate(existing, records)

	now := time.Now().UTC()
	query := tx.Rebind(upsertRecord)
	for i := range merged {
		r := &merged[i]
		_, err = tx.ExecContext(ctx, query,
			r.Key(), r.Domain,
			stringList(r.Flagged), stringList(r.Messages),
			r.Spam,
			stringList(r.Potential),
			r.AhrefsDR, r.SZScore,
			now,
		)
		if err != nil {
			return nil, fmt.Errorf("upsert %s: %w", r.Domain, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit merge: %w", err)
	}
	return merged, nil
}

func recordKeys(records []domain.ConsolidatedRecord) []string {
	seen := make(map[string]struct{}, len(records))
	keys := make([]string, 0, len(records))
	for i := range records {
		k := records[i].Key()
		if k == "" {
			continue
		}
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	return keys
}

func (s *Store) loadKeys(ctx context.Context, tx *sqlx.Tx, keys []string) ([]domain.ConsolidatedRecord, error) {
	var out []domain.ConsolidatedRecord
	for start := 0; start < len(keys); start += keysPerQuery {
		end := min(start+keysPerQuery, len(keys))

		query, args, err := sqlx.In(selectRecords+" WHERE domain_key IN (?)", keys[start:end])
		if err != nil {
			return nil, fmt.Errorf("build key query: %w", err)
		}

		var rows []recordRow
		if err = tx.SelectContext(ctx, &rows, tx.Rebind(query), args...); err != nil {
			return nil, fmt.Errorf("load existing records: %w", err)
		}
		for i := range rows {
			out = append(out, rows[i].toRecord())
		}
	}
	return out, nil
}

// Run is the stored summary of one consolidation or collation run.
type Run struct {
	ID        uuid.UUID
	StartedAt time.Time
	Command   string
	Sources   []string
	Summary   domain.Summary
}

const insertRun = `
	INSERT INTO consolidation_runs
		(id, started_at, command, sources, rule_set_version, rows_in, rows_skipped, rows_corrected,
		 type_mismatches, domains_out, spam_domains, potential_domains, clean_domains, duration_ms)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// RecordRun stores a run summary, assigning an ID when run has none.
func (s *Store) RecordRun(ctx context.Context, run *Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	skipped := run.Summary.RowsSkipped
	if skipped == nil {
		skipped = map[string]int{}
	}
	skippedJSON, err := json.Marshal(skipped)
	if err != nil {
		return fmt.Errorf("encode skipped rows: %w", err)
	}

	sum := &run.Summary
	_, err = s.db.ExecContext(ctx, s.db.Rebind(insertRun),
		run.ID.String(), run.StartedAt, run.Command, stringList(run.Sources), sum.RuleSetVersion,
		sum.RowsIn, string(skippedJSON), sum.RowsCorrected, sum.TypeMismatches,
		sum.DomainsOut, sum.SpamDomains, sum.PotentialDomains, sum.CleanDomains,
		sum.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}
