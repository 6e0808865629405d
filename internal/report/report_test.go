package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/psi-verify/internal/chapters"
	"github.com/talgya/psi-verify/internal/check"
	"github.com/talgya/psi-verify/internal/engine"
	"github.com/talgya/psi-verify/internal/persistence"
)

func sample() *engine.Report {
	start := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)
	rep := &engine.Report{
		RunID:      "0f1e2d3c-aaaa-bbbb-cccc-000000000000",
		StartedAt:  start,
		FinishedAt: start.Add(1500 * time.Millisecond),
		Seed:       42,
		Suites: []check.SuiteResult{
			{ID: "constants-001", Title: "Foundations", Verdict: check.VerdictPass, Duration: 2 * time.Millisecond,
				Checks: []check.CheckResult{
					{Name: "golden ratio", Outcome: check.OutcomePass, Assertions: 2, Notes: []string{"phi=1.618"}},
				}},
			{ID: "constants-002", Verdict: check.VerdictFail,
				Checks: []check.CheckResult{
					{Name: "bound", Outcome: check.OutcomeFail, Message: "2 not less than 1\nsecond line", Assertions: 1},
					{Name: "boom", Outcome: check.OutcomeError, Message: "panic: x | y"},
				}},
			{ID: "structum-048-strict", Verdict: check.VerdictViolation,
				Violations: []string{"fitted exponent"}, Issues: []string{"loose bound"},
				Checks:     []check.CheckResult{{Name: "ratio", Outcome: check.OutcomePass, Assertions: 1}}},
		},
	}
	rep.Recount()
	return rep
}

func TestTextQuiet(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, sample(), Options{}))
	out := buf.String()

	assert.Contains(t, out, "PASS      constants-001")
	assert.Contains(t, out, "FAIL      constants-002")
	assert.Contains(t, out, "VIOLATION structum-048-strict")
	assert.Contains(t, out, "✗ bound: 2 not less than 1 …")
	assert.Contains(t, out, "! boom: panic: x | y")
	assert.Contains(t, out, "violation: fitted exponent")
	assert.NotContains(t, out, "golden ratio", "passing checks are hidden unless verbose")
	assert.NotContains(t, out, "loose bound")
	assert.Contains(t, out, "3 suites, 4 checks: 2 passed, 1 failed, 1 errored, 0 skipped; 4 assertions; 1 strict violation")
	assert.Contains(t, out, "seed 42")
	assert.Contains(t, out, "1.5 s")
	assert.NotContains(t, out, "\x1b[", "no escape codes without color")
}

func TestTextVerbose(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, sample(), Options{Verbose: true}))
	out := buf.String()
	assert.Contains(t, out, "✓ golden ratio")
	assert.Contains(t, out, "phi=1.618")
	assert.Contains(t, out, "issue: loose bound")
}

func TestSummaryCancelled(t *testing.T) {
	rep := sample()
	rep.Cancelled = true
	assert.True(t, strings.HasSuffix(Summary(rep), "; cancelled"))
}

func TestDuration(t *testing.T) {
	assert.Equal(t, "0 s", Duration(0))
	assert.Equal(t, "1.5 ms", Duration(1500*time.Microsecond))
	assert.Equal(t, "2 s", Duration(2*time.Second))
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, sample()))

	var back engine.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, sample().Stats, back.Stats)
	assert.Equal(t, engine.ExitFail, back.ExitCode())
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sample())
	assert.Contains(t, md, "# Run 0f1e2d3c")
	assert.Contains(t, md, "- Exit code: 1")
	assert.Contains(t, md, "| `constants-001` | pass | 1/1 | 2 |")
	assert.Contains(t, md, "## constants-002")
	assert.Contains(t, md, `- **boom** (error): panic: x \| y`)
	assert.Contains(t, md, "- violation: fitted exponent")
	assert.NotContains(t, md, "## constants-001")
}

func TestSuiteDetailAndRender(t *testing.T) {
	s, err := chapters.Default().Lookup("structum-048-strict")
	require.NoError(t, err)

	md := SuiteDetail(s)
	assert.Contains(t, md, "- ID: `structum-048-strict`")
	assert.Contains(t, md, "- Variant: strict")
	assert.Contains(t, md, "## Violations (10)")
	assert.Contains(t, md, "## Issues (8)")
	assert.Contains(t, md, "## Checks (")

	out, err := RenderMarkdown(md, false, 100)
	require.NoError(t, err)
	assert.Contains(t, out, "structum-048-strict")
	assert.NotContains(t, out, "\x1b[")
}

func TestTables(t *testing.T) {
	cat := chapters.Default()
	var buf bytes.Buffer
	require.NoError(t, Chapters(&buf, cat.All(), false))
	for _, id := range cat.IDs() {
		assert.Contains(t, buf.String(), id)
	}

	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	buf.Reset()
	runs := []persistence.RunSummary{{
		ID: "0123456789abcdef", StartedAt: now.Add(-3 * time.Hour), ExitCode: 2,
		Stats: engine.Stats{Suites: 19, Passed: 1200, Violations: 1},
	}}
	require.NoError(t, Runs(&buf, runs, now, false))
	assert.Contains(t, buf.String(), "01234567")
	assert.NotContains(t, buf.String(), "0123456789abcdef")
	assert.Contains(t, buf.String(), "3 hours ago")
	assert.Contains(t, buf.String(), "1,200")

	buf.Reset()
	records := []persistence.SuiteRecord{{RunID: "r1", Verdict: check.VerdictViolation, StartedAt: now.Add(-time.Minute)}}
	require.NoError(t, History(&buf, records, now, false))
	assert.Contains(t, buf.String(), "VIOLATION")
	assert.Contains(t, buf.String(), "1 minute ago")
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}
