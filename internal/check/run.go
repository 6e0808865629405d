package check

import (
	"context"
	"fmt"
	"time"

	"github.com/talgya/psi-verify/internal/entropy"
)

// RunCheck executes one check. A failed assertion yields OutcomeFail;
// any other panic yields OutcomeError.
func RunCheck(chk Check, seed int64) (res CheckResult) {
	c := newC(chk.Name, seed)
	start := time.Now()
	res = CheckResult{Name: chk.Name, Outcome: OutcomePass}

	defer func() {
		res.Duration = time.Since(start)
		res.Assertions = c.assertions
		res.Notes = c.notes
		if r := recover(); r != nil {
			if f, ok := r.(failure); ok {
				res.Outcome = OutcomeFail
				res.Message = f.msg
				return
			}
			res.Outcome = OutcomeError
			res.Message = fmt.Sprintf("panic: %v", r)
		}
	}()

	if chk.Fn == nil {
		panic("check has no function")
	}
	chk.Fn(c)
	return res
}

// Run executes every check of the suite in order. Checks draw randomness
// from a seed derived from seed and the suite ID. onCheck, when non-nil,
// is called after each check. A cancelled context marks the remaining
// checks skipped, and a suite with skipped checks and no failure is
// skipped rather than judged.
func (s *Suite) Run(ctx context.Context, seed int64, onCheck func(CheckResult)) SuiteResult {
	out := SuiteResult{
		ID:         s.ID,
		Book:       s.Book,
		Chapter:    s.Chapter,
		Variant:    s.Variant,
		Title:      s.Title,
		Violations: s.Violations,
		Issues:     s.Issues,
		StartedAt:  time.Now(),
	}

	suiteSeed := entropy.Derive(seed, s.ID)
	for _, chk := range s.Checks {
		var res CheckResult
		if ctx.Err() != nil {
			res = CheckResult{Name: chk.Name, Outcome: OutcomeSkipped, Message: ctx.Err().Error()}
		} else {
			res = RunCheck(chk, suiteSeed)
		}
		out.Checks = append(out.Checks, res)
		if onCheck != nil {
			onCheck(res)
		}
	}

	out.Duration = time.Since(out.StartedAt)
	out.Verdict = Decide(out.Checks, out.Violations)
	if out.Verdict != VerdictFail && skippedAny(out.Checks) {
		out.Verdict = VerdictSkipped
	}
	return out
}

func skippedAny(checks []CheckResult) bool {
	for _, c := range checks {
		if c.Outcome == OutcomeSkipped {
			return true
		}
	}
	return false
}

// Skip builds the result of a suite that never started.
func (s *Suite) Skip(reason string) SuiteResult {
	out := SuiteResult{
		ID:      s.ID,
		Book:    s.Book,
		Chapter: s.Chapter,
		Variant: s.Variant,
		Title:   s.Title,
		Verdict: VerdictSkipped,
	}
	for _, chk := range s.Checks {
		out.Checks = append(out.Checks, CheckResult{Name: chk.Name, Outcome: OutcomeSkipped, Message: reason})
	}
	return out
}

// Validate reports structural problems with a suite definition.
func (s *Suite) Validate() error {
	if s.ID == "" {
		return &OpError{Op: "validate suite", Kind: KindInvalid, Err: fmt.Errorf("missing id: %w", ErrInvalid)}
	}
	if len(s.Checks) == 0 {
		return &OpError{Op: s.ID, Kind: KindInvalid, Err: fmt.Errorf("no checks: %w", ErrInvalid)}
	}
	seen := make(map[string]bool, len(s.Checks))
	for _, chk := range s.Checks {
		if chk.Fn == nil {
			return &OpError{Op: s.ID, Kind: KindInvalid, Err: fmt.Errorf("check %q has no function: %w", chk.Name, ErrInvalid)}
		}
		if seen[chk.Name] {
			return &OpError{Op: s.ID, Kind: KindInvalid, Err: fmt.Errorf("duplicate check %q: %w", chk.Name, ErrInvalid)}
		}
		seen[chk.Name] = true
	}
	return nil
}
