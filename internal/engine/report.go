package engine

import (
	"errors"
	"time"

	"github.com/talgya/psi-verify/internal/check"
)

// Exit codes returned by Report.ExitCode.
const (
	ExitPass      = 0
	ExitFail      = 1
	ExitViolation = 2
	ExitCancelled = 3
)

// Report is the result of one run.
type Report struct {
	RunID      string              `json:"run_id"`
	StartedAt  time.Time           `json:"started_at"`
	FinishedAt time.Time           `json:"finished_at"`
	Seed       int64               `json:"seed"`
	Workers    int                 `json:"workers,omitempty"`
	Cancelled  bool                `json:"cancelled,omitempty"`
	Suites     []check.SuiteResult `json:"suites"`
	Stats      Stats               `json:"stats"`
}

// Stats aggregates a report. Check counts are over checks; Violations
// counts suites whose verdict is a strict violation.
type Stats struct {
	Suites     int `json:"suites"`
	Checks     int `json:"checks"`
	Passed     int `json:"passed"`
	Failed     int `json:"failed"`
	Errored    int `json:"errored"`
	Skipped    int `json:"skipped"`
	Violations int `json:"violations"`
	Assertions int `json:"assertions"`
}

// Recount recomputes Stats from Suites.
func (r *Report) Recount() {
	var s Stats
	s.Suites = len(r.Suites)
	for _, sr := range r.Suites {
		p, f, e, sk := sr.Counts()
		s.Checks += len(sr.Checks)
		s.Passed += p
		s.Failed += f
		s.Errored += e
		s.Skipped += sk
		s.Assertions += sr.Assertions()
		if sr.Verdict == check.VerdictViolation {
			s.Violations++
		}
	}
	r.Stats = s
}

// Duration is the wall time of the run.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Verdicts counts suites by verdict.
func (r *Report) Verdicts() map[check.Verdict]int {
	out := make(map[check.Verdict]int)
	for _, sr := range r.Suites {
		out[sr.Verdict]++
	}
	return out
}

// ExitCode maps the report onto the process exit status: 0 when every
// suite passed, 1 on any failed or errored check, 2 when the only
// problems are strict violations, 3 when the run was cancelled.
func (r *Report) ExitCode() int {
	if r.Cancelled {
		return ExitCancelled
	}
	violation := false
	for _, sr := range r.Suites {
		switch sr.Verdict {
		case check.VerdictFail:
			return ExitFail
		case check.VerdictViolation:
			violation = true
		}
	}
	if violation {
		return ExitViolation
	}
	return ExitPass
}

// Err joins the errors of every failed or violating suite.
func (r *Report) Err() error {
	var errs []error
	for _, sr := range r.Suites {
		if err := sr.Err(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Suite returns the result for id.
func (r *Report) Suite(id string) (check.SuiteResult, bool) {
	for _, sr := range r.Suites {
		if sr.ID == id {
			return sr, true
		}
	}
	return check.SuiteResult{}, false
}
