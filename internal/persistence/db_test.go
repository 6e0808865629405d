package persistence

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/psi-verify/internal/check"
	"github.com/talgya/psi-verify/internal/engine"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleReport(id string, started time.Time) *engine.Report {
	rep := &engine.Report{
		RunID:      id,
		StartedAt:  started,
		FinishedAt: started.Add(1500 * time.Millisecond),
		Seed:       42,
		Workers:    4,
		Suites: []check.SuiteResult{
			{
				ID: "constants-001", Book: "constants", Chapter: 1, Variant: check.VariantBase,
				Title: "Foundations", Verdict: check.VerdictPass, StartedAt: started,
				Duration: 3 * time.Millisecond,
				Checks: []check.CheckResult{
					{Name: "golden ratio", Outcome: check.OutcomePass, Assertions: 3,
						Notes: []string{"phi=1.618"}, Duration: time.Millisecond},
					{Name: "fibonacci", Outcome: check.OutcomePass, Assertions: 2, Duration: time.Millisecond},
				},
			},
			{
				ID: "structum-048-strict", Book: "structum", Chapter: 48, Variant: check.VariantStrict,
				Title: "Strict", Verdict: check.VerdictViolation, StartedAt: started,
				Violations: []string{"fitted exponent"}, Issues: []string{"loose bound"},
				Checks: []check.CheckResult{
					{Name: "ratio", Outcome: check.OutcomePass, Assertions: 1},
				},
			},
			{
				ID: "constants-002", Book: "constants", Chapter: 2, Verdict: check.VerdictFail,
				Variant: check.VariantBase, StartedAt: started,
				Checks: []check.CheckResult{
					{Name: "bound", Outcome: check.OutcomeFail, Message: "1 not less than 0", Assertions: 1},
				},
			},
		},
	}
	rep.Recount()
	return rep
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	db := openTemp(t)
	started := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
	rep := sampleReport("run-aaaa", started)
	require.NoError(t, db.SaveReport(rep))

	got, err := db.LoadRun("run-aaaa")
	require.NoError(t, err)
	assert.Equal(t, rep.RunID, got.RunID)
	assert.True(t, rep.StartedAt.Equal(got.StartedAt))
	assert.True(t, rep.FinishedAt.Equal(got.FinishedAt))
	assert.Equal(t, rep.Seed, got.Seed)
	assert.Equal(t, rep.Workers, got.Workers)
	assert.Equal(t, rep.Stats, got.Stats)
	assert.Equal(t, rep.ExitCode(), got.ExitCode())

	require.Len(t, got.Suites, 3)
	for i := range rep.Suites {
		want, have := rep.Suites[i], got.Suites[i]
		assert.Equal(t, want.ID, have.ID)
		assert.Equal(t, want.Verdict, have.Verdict)
		assert.Equal(t, want.Violations, have.Violations)
		assert.Equal(t, want.Issues, have.Issues)
		assert.Equal(t, want.Checks, have.Checks)
		assert.Equal(t, want.Duration, have.Duration)
	}
}

func TestLoadRunPrefixAndMissing(t *testing.T) {
	db := openTemp(t)
	now := time.Now()
	require.NoError(t, db.SaveReport(sampleReport("3f2a-one", now)))
	require.NoError(t, db.SaveReport(sampleReport("3f9b-two", now.Add(time.Second))))

	got, err := db.LoadRun("3f2")
	require.NoError(t, err)
	assert.Equal(t, "3f2a-one", got.RunID)

	_, err = db.LoadRun("3f")
	assert.ErrorContains(t, err, "ambiguous")

	_, err = db.LoadRun("nope")
	assert.ErrorIs(t, err, ErrRunNotFound)

	// LIKE wildcards in the prefix are literal.
	_, err = db.LoadRun("%")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestListRunsNewestFirst(t *testing.T) {
	db := openTemp(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"r1", "r2", "r3"} {
		require.NoError(t, db.SaveReport(sampleReport(id, base.Add(time.Duration(i)*time.Hour))))
	}

	runs, err := db.ListRuns(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "r3", runs[0].ID)
	assert.Equal(t, "r2", runs[1].ID)
	assert.Equal(t, engine.ExitFail, runs[0].ExitCode)
	assert.Equal(t, 1, runs[0].Stats.Violations)

	latest, err := db.LatestRun()
	require.NoError(t, err)
	assert.Equal(t, "r3", latest.RunID)
}

func TestSuiteHistory(t *testing.T) {
	db := openTemp(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.SaveReport(sampleReport("old", base)))
	require.NoError(t, db.SaveReport(sampleReport("new", base.Add(time.Minute))))

	hist, err := db.SuiteHistory("structum-048-strict", 10)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, "new", hist[0].RunID)
	assert.Equal(t, check.VerdictViolation, hist[0].Verdict)

	none, err := db.SuiteHistory("missing", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDeleteRun(t *testing.T) {
	db := openTemp(t)
	require.NoError(t, db.SaveReport(sampleReport("gone", time.Now())))
	require.NoError(t, db.DeleteRun("gone"))

	_, err := db.LoadRun("gone")
	assert.ErrorIs(t, err, ErrRunNotFound)
	assert.ErrorIs(t, db.DeleteRun("gone"), ErrRunNotFound)

	hist, err := db.SuiteHistory("constants-001", 5)
	require.NoError(t, err)
	assert.Empty(t, hist)
}

func TestDeleteLatestRunMovesPointer(t *testing.T) {
	db := openTemp(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.SaveReport(sampleReport("run-a", base)))
	require.NoError(t, db.SaveReport(sampleReport("run-b", base.Add(time.Hour))))

	require.NoError(t, db.DeleteRun("run-b"))
	latest, err := db.LatestRun()
	require.NoError(t, err)
	assert.Equal(t, "run-a", latest.RunID)

	// Deleting an older run leaves the pointer alone.
	require.NoError(t, db.SaveReport(sampleReport("run-c", base.Add(2*time.Hour))))
	require.NoError(t, db.DeleteRun("run-a"))
	latest, err = db.LatestRun()
	require.NoError(t, err)
	assert.Equal(t, "run-c", latest.RunID)

	require.NoError(t, db.DeleteRun("run-c"))
	_, err = db.LatestRun()
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestLoadRunRejectsCorruptColumns(t *testing.T) {
	db := openTemp(t)
	require.NoError(t, db.SaveReport(sampleReport("bad", time.Now())))

	_, err := db.conn.Exec("UPDATE suite_results SET issues_json = '{' WHERE suite_id = 'structum-048-strict'")
	require.NoError(t, err)
	_, err = db.LoadRun("bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode issues of bad/structum-048-strict")

	_, err = db.conn.Exec("UPDATE suite_results SET issues_json = 'null'")
	require.NoError(t, err)
	_, err = db.conn.Exec("UPDATE check_results SET notes_json = 'oops' WHERE name = 'golden ratio'")
	require.NoError(t, err)
	_, err = db.LoadRun("bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `decode notes of bad check "golden ratio"`)
}

func TestMeta(t *testing.T) {
	db := openTemp(t)

	v, err := db.GetMeta("schema_version")
	require.NoError(t, err)
	assert.Equal(t, schemaVersion, v)

	_, err = db.GetMeta("absent")
	assert.ErrorIs(t, err, ErrMetaNotFound)

	require.NoError(t, db.SaveMeta("k", "1"))
	require.NoError(t, db.SaveMeta("k", "2"))
	v, err = db.GetMeta("k")
	require.NoError(t, err)
	assert.Equal(t, "2", v)

	_, err = db.LatestRun()
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestMemoryDatabase(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.SaveReport(sampleReport("mem", time.Now())))
	runs, err := db.ListRuns(10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
