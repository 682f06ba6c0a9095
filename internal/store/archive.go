package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"jobradar/internal/model"
)

// Ensure Archive implements model.Archiver.
var _ model.Archiver = (*Archive)(nil)

// Archive keeps a queryable history of finished runs and their
// validated records in a SQLite database. The JSON reports remain the
// artifacts of record; the archive exists for the history and review
// commands.
type Archive struct {
	db *sql.DB
}

// NewArchive opens (or creates) the database at dbPath and ensures the
// schema exists.
func NewArchive(dbPath string) (*Archive, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening archive db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging archive db: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id            TEXT PRIMARY KEY,
		started_at        DATETIME NOT NULL,
		report_path       TEXT,
		items_fetched     INTEGER NOT NULL DEFAULT 0,
		items_new         INTEGER NOT NULL DEFAULT 0,
		items_skipped     INTEGER NOT NULL DEFAULT 0,
		items_failed      INTEGER NOT NULL DEFAULT 0,
		records_validated INTEGER NOT NULL DEFAULT 0,
		records_rejected  INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS records (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id         TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
		company        TEXT NOT NULL,
		title          TEXT NOT NULL,
		location       TEXT,
		salary_min     REAL,
		salary_max     REAL,
		salary_text    TEXT,
		requirements   TEXT,
		contact_phone  TEXT,
		contact_email  TEXT,
		published_date TEXT,
		source         TEXT,
		link           TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_records_run ON records(run_id);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating archive schema: %w", err)
	}

	return &Archive{db: db}, nil
}

// SaveRun stores the run row and its records in one transaction.
func (a *Archive) SaveRun(batch model.RunBatch, reportPath string) error {
	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning archive tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO runs
		(run_id, started_at, report_path, items_fetched, items_new, items_skipped, items_failed, records_validated, records_rejected)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		batch.RunID, batch.StartedAt, reportPath,
		batch.Meta.ItemsFetched, batch.Meta.ItemsNew, batch.Meta.ItemsSkipped,
		batch.Meta.ItemsFailed, batch.Meta.RecordsValidated, batch.Meta.RecordsRejected,
	)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", batch.RunID, err)
	}

	stmt, err := tx.Prepare(`INSERT INTO records
		(run_id, company, title, location, salary_min, salary_max, salary_text, requirements, contact_phone, contact_email, published_date, source, link)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing record insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range batch.Records {
		_, err := stmt.Exec(batch.RunID,
			r.Company, r.Title, r.Location,
			nullableBound(r.SalaryMin), nullableBound(r.SalaryMax), r.SalaryText,
			r.Requirements, r.ContactPhone, r.ContactEmail,
			r.PublishedDate, r.Source, r.Link,
		)
		if err != nil {
			return fmt.Errorf("inserting record for run %s: %w", batch.RunID, err)
		}
	}

	return tx.Commit()
}

// RunSummary is one row of run history.
type RunSummary struct {
	RunID            string
	StartedAt        time.Time
	ReportPath       string
	ItemsFetched     int
	ItemsNew         int
	ItemsFailed      int
	RecordsValidated int
	RecordsRejected  int
}

// RecentRuns returns up to limit runs, newest first.
func (a *Archive) RecentRuns(limit int) ([]RunSummary, error) {
	rows, err := a.db.Query(`SELECT run_id, started_at, report_path, items_fetched, items_new, items_failed, records_validated, records_rejected
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var rs RunSummary
		var reportPath sql.NullString
		if err := rows.Scan(&rs.RunID, &rs.StartedAt, &reportPath,
			&rs.ItemsFetched, &rs.ItemsNew, &rs.ItemsFailed,
			&rs.RecordsValidated, &rs.RecordsRejected); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		rs.ReportPath = reportPath.String
		out = append(out, rs)
	}
	return out, rows.Err()
}

// RecordsForRun returns the validated records stored for one run, in
// insertion order.
func (a *Archive) RecordsForRun(runID string) ([]model.JobRecord, error) {
	rows, err := a.db.Query(`SELECT company, title, location, salary_min, salary_max, salary_text, requirements, contact_phone, contact_email, published_date, source, link
		FROM records WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying records for run %s: %w", runID, err)
	}
	defer rows.Close()

	var out []model.JobRecord
	for rows.Next() {
		var r model.JobRecord
		var lo, hi sql.NullFloat64
		if err := rows.Scan(&r.Company, &r.Title, &r.Location,
			&lo, &hi, &r.SalaryText,
			&r.Requirements, &r.ContactPhone, &r.ContactEmail,
			&r.PublishedDate, &r.Source, &r.Link); err != nil {
			return nil, fmt.Errorf("scanning record row: %w", err)
		}
		if lo.Valid {
			v := lo.Float64
			r.SalaryMin = &v
		}
		if hi.Valid {
			v := hi.Float64
			r.SalaryMax = &v
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Cleanup deletes runs older than the given duration, cascading to
// their records.
func (a *Archive) Cleanup(olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)
	if _, err := a.db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("enabling cascade: %w", err)
	}
	if _, err := a.db.Exec("DELETE FROM runs WHERE started_at < ?", cutoff); err != nil {
		return fmt.Errorf("cleaning up runs older than %v: %w", olderThan, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

func nullableBound(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
