// Package ledger records which documents were processed with which
// configuration. It stores run metadata only: names, counts, the config
// signature and the outcome. Row contents never reach the database.
package ledger

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/commonid/internal/clock"
)

//go:embed schema.sql
var schemaSQL string

// Schema versions:
// 0 - runs table
// 1 - index on config_signature
const currentSchemaVersion = 1

// Run is one ledger entry.
type Run struct {
	ID              string    `json:"id"`
	RecordedAt      time.Time `json:"recorded_at"`
	Region          string    `json:"region"`
	ConfigSignature string    `json:"config_signature"`
	Document        string    `json:"document"`
	Rows            int       `json:"rows"`
	ErrorRows       int       `json:"error_rows"`
	Valid           bool      `json:"valid"`
	MappingOnly     bool      `json:"mapping_only"`
	OutputFile      string    `json:"output_file"`
}

// Ledger is a sqlite-backed run log.
type Ledger struct {
	db    *sql.DB
	clock clock.Clock
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock sets the clock used to stamp runs.
func WithClock(c clock.Clock) Option {
	return func(l *Ledger) { l.clock = c }
}

// Open creates or opens the ledger database at path and brings its schema
// up to date. ":memory:" works for tests.
func Open(path string, opts ...Option) (*Ledger, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "open ledger")
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "connect ledger")
	}
	// One writer; a single connection also keeps :memory: databases alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, err
	}

	l := &Ledger{db: db, clock: clock.System{}}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Close closes the database.
func (l *Ledger) Close() error {
	if l.db == nil {
		return nil
	}
	return l.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return errors.Wrapf(err, "execute %q", pragma)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return errors.Wrap(err, "apply ledger schema")
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return errors.Wrap(err, "read user_version")
	}
	if version < 1 {
		if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_runs_signature ON runs(config_signature)`); err != nil {
			return errors.Wrap(err, "migrate ledger to v1")
		}
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return errors.Wrap(err, "set user_version")
	}
	return nil
}

// Record stores a run. ID and RecordedAt are assigned when empty, and the
// stored run is returned.
func (l *Ledger) Record(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return Run{}, errors.Wrap(err, "generate run id")
		}
		run.ID = id.String()
	}
	if run.RecordedAt.IsZero() {
		run.RecordedAt = l.clock.Now()
	}
	run.RecordedAt = run.RecordedAt.UTC()

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, recorded_at, region, config_signature, document, row_count, error_row_count, valid, mapping_only, output_file)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.RecordedAt.Format(time.RFC3339Nano),
		run.Region,
		run.ConfigSignature,
		run.Document,
		run.Rows,
		run.ErrorRows,
		boolInt(run.Valid),
		boolInt(run.MappingOnly),
		run.OutputFile,
	)
	if err != nil {
		return Run{}, errors.Wrap(err, "record run")
	}
	return run, nil
}

// List returns the most recent runs first, at most limit of them. A
// non-positive limit returns every run.
func (l *Ledger) List(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT id, recorded_at, region, config_signature, document, row_count, error_row_count, valid, mapping_only, output_file
		FROM runs
		ORDER BY recorded_at DESC, id DESC
	`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r          Run
			recordedAt string
			valid      int
			mapping    int
		)
		if err := rows.Scan(&r.ID, &recordedAt, &r.Region, &r.ConfigSignature, &r.Document,
			&r.Rows, &r.ErrorRows, &valid, &mapping, &r.OutputFile); err != nil {
			return nil, errors.Wrap(err, "scan run")
		}
		r.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt)
		if err != nil {
			return nil, errors.Wrapf(err, "parse recorded_at of run %s", r.ID)
		}
		r.Valid = valid == 1
		r.MappingOnly = mapping == 1
		runs = append(runs, r)
	}
	return runs, errors.Wrap(rows.Err(), "iterate runs")
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
