// Package persistence stores run reports in SQLite.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/psi-verify/internal/check"
	"github.com/talgya/psi-verify/internal/engine"
)

// ErrRunNotFound is returned when no run matches the requested ID.
var ErrRunNotFound = errors.New("run not found")

// ErrMetaNotFound is returned by GetMeta for an unset key.
var ErrMetaNotFound = errors.New("meta key not found")

const schemaVersion = "1"

// DB wraps a SQLite connection holding run history.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path. The special
// path ":memory:" opens a private in-memory database.
func Open(path string) (*DB, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	conn, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// A single connection keeps writes serialized and in-memory
	// databases visible to every query.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL,
		seed INTEGER NOT NULL,
		workers INTEGER NOT NULL,
		cancelled INTEGER NOT NULL,
		suites INTEGER NOT NULL,
		checks INTEGER NOT NULL,
		passed INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		errored INTEGER NOT NULL,
		skipped INTEGER NOT NULL,
		violations INTEGER NOT NULL,
		assertions INTEGER NOT NULL,
		exit_code INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS suite_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		suite_id TEXT NOT NULL,
		book TEXT NOT NULL,
		chapter INTEGER NOT NULL,
		variant TEXT NOT NULL,
		title TEXT NOT NULL,
		verdict TEXT NOT NULL,
		violations_json TEXT NOT NULL,
		issues_json TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		duration_ns INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS check_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		suite_result_id INTEGER NOT NULL REFERENCES suite_results(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		outcome TEXT NOT NULL,
		message TEXT NOT NULL,
		assertions INTEGER NOT NULL,
		notes_json TEXT NOT NULL,
		duration_ns INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_suite_results_run ON suite_results(run_id);
	CREATE INDEX IF NOT EXISTS idx_suite_results_suite ON suite_results(suite_id);
	CREATE INDEX IF NOT EXISTS idx_check_results_suite ON check_results(suite_result_id);
	`
	if _, err := db.conn.Exec(schema); err != nil {
		return err
	}
	return db.SaveMeta("schema_version", schemaVersion)
}

// RunSummary is one row of run history.
type RunSummary struct {
	ID         string       `json:"id"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Seed       int64        `json:"seed"`
	Workers    int          `json:"workers"`
	Cancelled  bool         `json:"cancelled"`
	ExitCode   int          `json:"exit_code"`
	Stats      engine.Stats `json:"stats"`
}

type runRow struct {
	ID         string `db:"id"`
	StartedAt  int64  `db:"started_at"`
	FinishedAt int64  `db:"finished_at"`
	Seed       int64  `db:"seed"`
	Workers    int    `db:"workers"`
	Cancelled  bool   `db:"cancelled"`
	Suites     int    `db:"suites"`
	Checks     int    `db:"checks"`
	Passed     int    `db:"passed"`
	Failed     int    `db:"failed"`
	Errored    int    `db:"errored"`
	Skipped    int    `db:"skipped"`
	Violations int    `db:"violations"`
	Assertions int    `db:"assertions"`
	ExitCode   int    `db:"exit_code"`
}

func (r runRow) summary() RunSummary {
	return RunSummary{
		ID:         r.ID,
		StartedAt:  time.Unix(0, r.StartedAt).UTC(),
		FinishedAt: time.Unix(0, r.FinishedAt).UTC(),
		Seed:       r.Seed,
		Workers:    r.Workers,
		Cancelled:  r.Cancelled,
		ExitCode:   r.ExitCode,
		Stats: engine.Stats{
			Suites:     r.Suites,
			Checks:     r.Checks,
			Passed:     r.Passed,
			Failed:     r.Failed,
			Errored:    r.Errored,
			Skipped:    r.Skipped,
			Violations: r.Violations,
			Assertions: r.Assertions,
		},
	}
}

type suiteRow struct {
	ID             int64  `db:"id"`
	RunID          string `db:"run_id"`
	SuiteID        string `db:"suite_id"`
	Book           string `db:"book"`
	Chapter        int    `db:"chapter"`
	Variant        string `db:"variant"`
	Title          string `db:"title"`
	Verdict        string `db:"verdict"`
	ViolationsJSON string `db:"violations_json"`
	IssuesJSON     string `db:"issues_json"`
	StartedAt      int64  `db:"started_at"`
	DurationNS     int64  `db:"duration_ns"`
}

type checkRow struct {
	SuiteResultID int64  `db:"suite_result_id"`
	Name          string `db:"name"`
	Outcome       string `db:"outcome"`
	Message       string `db:"message"`
	Assertions    int    `db:"assertions"`
	NotesJSON     string `db:"notes_json"`
	DurationNS    int64  `db:"duration_ns"`
}

const runColumns = `id, started_at, finished_at, seed, workers, cancelled, suites, checks,
	passed, failed, errored, skipped, violations, assertions, exit_code`

// SaveReport writes a report with all its suite and check results.
func (db *DB) SaveReport(rep *engine.Report) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	st := rep.Stats
	_, err = tx.Exec(`INSERT INTO runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rep.RunID, rep.StartedAt.UnixNano(), rep.FinishedAt.UnixNano(), rep.Seed, rep.Workers,
		rep.Cancelled, st.Suites, st.Checks, st.Passed, st.Failed, st.Errored, st.Skipped,
		st.Violations, st.Assertions, rep.ExitCode(),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", rep.RunID, err)
	}

	checkStmt, err := tx.Preparex(`INSERT INTO check_results
		(suite_result_id, position, name, outcome, message, assertions, notes_json, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer checkStmt.Close()

	for i, sr := range rep.Suites {
		violationsJSON, _ := json.Marshal(sr.Violations)
		issuesJSON, _ := json.Marshal(sr.Issues)

		res, err := tx.Exec(`INSERT INTO suite_results
			(run_id, position, suite_id, book, chapter, variant, title, verdict,
			 violations_json, issues_json, started_at, duration_ns)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rep.RunID, i, sr.ID, sr.Book, sr.Chapter, string(sr.Variant), sr.Title,
			string(sr.Verdict), string(violationsJSON), string(issuesJSON),
			sr.StartedAt.UnixNano(), int64(sr.Duration),
		)
		if err != nil {
			return fmt.Errorf("insert suite %s: %w", sr.ID, err)
		}
		suiteRowID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("insert suite %s: %w", sr.ID, err)
		}

		for j, cr := range sr.Checks {
			notesJSON, _ := json.Marshal(cr.Notes)
			if _, err := checkStmt.Exec(suiteRowID, j, cr.Name, string(cr.Outcome), cr.Message,
				cr.Assertions, string(notesJSON), int64(cr.Duration)); err != nil {
				return fmt.Errorf("insert check %s/%s: %w", sr.ID, cr.Name, err)
			}
		}
	}

	if _, err := tx.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES ('last_run_id', ?)", rep.RunID); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	slog.Info("run saved", "run", rep.RunID, "suites", len(rep.Suites))
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]RunSummary, error) {
	var rows []runRow
	err := db.conn.Select(&rows,
		"SELECT "+runColumns+" FROM runs ORDER BY started_at DESC, id LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	out := make([]RunSummary, len(rows))
	for i, r := range rows {
		out[i] = r.summary()
	}
	return out, nil
}

// LoadRun reassembles a stored report. A unique ID prefix is accepted.
func (db *DB) LoadRun(id string) (*engine.Report, error) {
	var rows []runRow
	err := db.conn.Select(&rows,
		"SELECT "+runColumns+" FROM runs WHERE id LIKE ? ESCAPE '\\' LIMIT 2", escapeLike(id)+"%")
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", id, err)
	}
	switch {
	case len(rows) == 0:
		return nil, fmt.Errorf("load run %s: %w", id, ErrRunNotFound)
	case len(rows) > 1:
		return nil, fmt.Errorf("load run %s: ambiguous prefix", id)
	}
	row := rows[0]
	sum := row.summary()

	rep := &engine.Report{
		RunID:      row.ID,
		StartedAt:  sum.StartedAt,
		FinishedAt: sum.FinishedAt,
		Seed:       row.Seed,
		Workers:    row.Workers,
		Cancelled:  row.Cancelled,
	}

	var suites []suiteRow
	if err := db.conn.Select(&suites, `SELECT id, run_id, suite_id, book, chapter, variant, title,
		verdict, violations_json, issues_json, started_at, duration_ns
		FROM suite_results WHERE run_id = ? ORDER BY position`, row.ID); err != nil {
		return nil, fmt.Errorf("load suites of %s: %w", row.ID, err)
	}

	var checks []checkRow
	if err := db.conn.Select(&checks, `SELECT c.suite_result_id AS suite_result_id, c.name AS name, c.outcome AS outcome,
		c.message AS message, c.assertions AS assertions, c.notes_json AS notes_json,
		c.duration_ns AS duration_ns
		FROM check_results c JOIN suite_results s ON s.id = c.suite_result_id
		WHERE s.run_id = ? ORDER BY s.position, c.position`, row.ID); err != nil {
		return nil, fmt.Errorf("load checks of %s: %w", row.ID, err)
	}
	bySuite := make(map[int64][]check.CheckResult, len(suites))
	for _, c := range checks {
		cr := check.CheckResult{
			Name:       c.Name,
			Outcome:    check.Outcome(c.Outcome),
			Message:    c.Message,
			Assertions: c.Assertions,
			Duration:   time.Duration(c.DurationNS),
		}
		if err := json.Unmarshal([]byte(c.NotesJSON), &cr.Notes); err != nil {
			return nil, fmt.Errorf("decode notes of %s check %q: %w", row.ID, c.Name, err)
		}
		bySuite[c.SuiteResultID] = append(bySuite[c.SuiteResultID], cr)
	}

	for _, s := range suites {
		sr := check.SuiteResult{
			ID:        s.SuiteID,
			Book:      s.Book,
			Chapter:   s.Chapter,
			Variant:   check.Variant(s.Variant),
			Title:     s.Title,
			Verdict:   check.Verdict(s.Verdict),
			Checks:    bySuite[s.ID],
			StartedAt: time.Unix(0, s.StartedAt).UTC(),
			Duration:  time.Duration(s.DurationNS),
		}
		if err := json.Unmarshal([]byte(s.ViolationsJSON), &sr.Violations); err != nil {
			return nil, fmt.Errorf("decode violations of %s/%s: %w", row.ID, s.SuiteID, err)
		}
		if err := json.Unmarshal([]byte(s.IssuesJSON), &sr.Issues); err != nil {
			return nil, fmt.Errorf("decode issues of %s/%s: %w", row.ID, s.SuiteID, err)
		}
		rep.Suites = append(rep.Suites, sr)
	}
	rep.Recount()
	return rep, nil
}

// LatestRun loads the most recently saved report.
func (db *DB) LatestRun() (*engine.Report, error) {
	id, err := db.GetMeta("last_run_id")
	if errors.Is(err, ErrMetaNotFound) {
		return nil, fmt.Errorf("latest run: %w", ErrRunNotFound)
	}
	if err != nil {
		return nil, err
	}
	return db.LoadRun(id)
}

// SuiteRecord is one past result of a single suite.
type SuiteRecord struct {
	RunID     string        `json:"run_id"`
	SuiteID   string        `json:"suite_id"`
	Verdict   check.Verdict `json:"verdict"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
}

// SuiteHistory returns the latest results of one suite, newest first.
func (db *DB) SuiteHistory(suiteID string, limit int) ([]SuiteRecord, error) {
	var rows []struct {
		RunID      string `db:"run_id"`
		SuiteID    string `db:"suite_id"`
		Verdict    string `db:"verdict"`
		StartedAt  int64  `db:"started_at"`
		DurationNS int64  `db:"duration_ns"`
	}
	err := db.conn.Select(&rows, `SELECT s.run_id AS run_id, s.suite_id AS suite_id, s.verdict AS verdict,
		s.started_at AS started_at, s.duration_ns AS duration_ns
		FROM suite_results s JOIN runs r ON r.id = s.run_id
		WHERE s.suite_id = ? ORDER BY r.started_at DESC LIMIT ?`, suiteID, limit)
	if err != nil {
		return nil, fmt.Errorf("suite history %s: %w", suiteID, err)
	}
	out := make([]SuiteRecord, len(rows))
	for i, r := range rows {
		out[i] = SuiteRecord{
			RunID:     r.RunID,
			SuiteID:   r.SuiteID,
			Verdict:   check.Verdict(r.Verdict),
			StartedAt: time.Unix(0, r.StartedAt).UTC(),
			Duration:  time.Duration(r.DurationNS),
		}
	}
	return out, nil
}

// DeleteRun removes a run and its results. When the run was the latest,
// the latest pointer moves to the newest remaining run.
func (db *DB) DeleteRun(id string) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM check_results WHERE suite_result_id IN
		(SELECT id FROM suite_results WHERE run_id = ?)`, id); err != nil {
		return fmt.Errorf("delete checks of %s: %w", id, err)
	}
	if _, err := tx.Exec("DELETE FROM suite_results WHERE run_id = ?", id); err != nil {
		return fmt.Errorf("delete suites of %s: %w", id, err)
	}
	res, err := tx.Exec("DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete run %s: %w", id, ErrRunNotFound)
	}
	if err := repointLatest(tx, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	slog.Info("run deleted", "run", id)
	return nil
}

func repointLatest(tx *sqlx.Tx, deleted string) error {
	var latest string
	err := tx.Get(&latest, "SELECT value FROM meta WHERE key = 'last_run_id'")
	if errors.Is(err, sql.ErrNoRows) || (err == nil && latest != deleted) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read latest run: %w", err)
	}

	var next string
	err = tx.Get(&next, "SELECT id FROM runs ORDER BY started_at DESC, id LIMIT 1")
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.Exec("DELETE FROM meta WHERE key = 'last_run_id'")
	case err == nil:
		_, err = tx.Exec("UPDATE meta SET value = ? WHERE key = 'last_run_id'", next)
	}
	if err != nil {
		return fmt.Errorf("move latest run: %w", err)
	}
	return nil
}

// SaveMeta stores a key-value pair.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM meta WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%s: %w", key, ErrMetaNotFound)
	}
	return value, err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
