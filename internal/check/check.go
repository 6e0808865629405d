// Package check models a formula check: a suite of closed-form numeric
// expressions asserted against each other or against experimental
// constants within author-chosen tolerances.
package check

import "time"

// Variant distinguishes the revisions a chapter script went through.
type Variant string

const (
	VariantBase      Variant = "base"
	VariantCorrected Variant = "corrected"
	VariantStrict    Variant = "strict"
	VariantHonest    Variant = "honest"
	VariantFinal     Variant = "final"
)

// Variants lists every known variant in display order.
var Variants = []Variant{VariantBase, VariantCorrected, VariantStrict, VariantHonest, VariantFinal}

// ParseVariant validates a variant name.
func ParseVariant(s string) (Variant, error) {
	for _, v := range Variants {
		if string(v) == s {
			return v, nil
		}
	}
	return "", &OpError{Op: "parse variant", Kind: KindInvalid, Err: errUnknownVariant(s)}
}

// Outcome is the result of one check.
type Outcome string

const (
	OutcomePass    Outcome = "pass"
	OutcomeFail    Outcome = "fail"
	OutcomeError   Outcome = "error"
	OutcomeSkipped Outcome = "skipped"
)

// Verdict is the result of a whole suite.
type Verdict string

const (
	VerdictPass      Verdict = "pass"
	VerdictFail      Verdict = "fail"
	VerdictViolation Verdict = "violation"
	VerdictSkipped   Verdict = "skipped"
)

// Constant is a named value a suite works with, shown by `show`.
type Constant struct {
	Name   string  `json:"name"`
	Symbol string  `json:"symbol,omitempty"`
	Value  float64 `json:"value"`
	Note   string  `json:"note,omitempty"`
}

// Check is one named verification.
type Check struct {
	Name string
	Doc  string
	Fn   func(c *C)
}

// Suite is one chapter script.
type Suite struct {
	ID        string
	Book      string
	Part      string
	Chapter   int
	Variant   Variant
	Title     string
	Source    string
	Narrative string // markdown

	Constants []Constant
	Checks    []Check

	// Violations are critical first-principles violations a strict suite
	// declares against its own chapter. Any entry turns the verdict into
	// VerdictViolation.
	Violations []string
	// Issues are minor notes that do not affect the verdict.
	Issues []string
}

// CheckResult is the outcome of running one Check.
type CheckResult struct {
	Name       string        `json:"name"`
	Outcome    Outcome       `json:"outcome"`
	Message    string        `json:"message,omitempty"`
	Assertions int           `json:"assertions"`
	Notes      []string      `json:"notes,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
}

// SuiteResult is the outcome of running one Suite.
type SuiteResult struct {
	ID         string        `json:"id"`
	Book       string        `json:"book"`
	Chapter    int           `json:"chapter"`
	Variant    Variant       `json:"variant"`
	Title      string        `json:"title"`
	Verdict    Verdict       `json:"verdict"`
	Checks     []CheckResult `json:"checks"`
	Violations []string      `json:"violations,omitempty"`
	Issues     []string      `json:"issues,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration_ns"`
}

// Counts tallies check outcomes.
func (r SuiteResult) Counts() (passed, failed, errored, skipped int) {
	for _, c := range r.Checks {
		switch c.Outcome {
		case OutcomePass:
			passed++
		case OutcomeFail:
			failed++
		case OutcomeError:
			errored++
		case OutcomeSkipped:
			skipped++
		}
	}
	return passed, failed, errored, skipped
}

// Assertions sums the assertions evaluated across checks.
func (r SuiteResult) Assertions() int {
	n := 0
	for _, c := range r.Checks {
		n += c.Assertions
	}
	return n
}

// Err returns nil for a passing suite, ErrCheckFailed for failures and
// ErrStrictViolation for declared violations.
func (r SuiteResult) Err() error {
	switch r.Verdict {
	case VerdictFail:
		_, failed, errored, _ := r.Counts()
		return &OpError{Op: r.ID, Kind: KindFailed, Err: failedChecks(failed + errored)}
	case VerdictViolation:
		return &OpError{Op: r.ID, Kind: KindViolation, Err: violations(r.Chapter, len(r.Violations))}
	}
	return nil
}

// Decide computes a suite verdict from its check results.
func Decide(checks []CheckResult, violations []string) Verdict {
	for _, c := range checks {
		if c.Outcome == OutcomeFail || c.Outcome == OutcomeError {
			return VerdictFail
		}
	}
	if len(violations) > 0 {
		return VerdictViolation
	}
	return VerdictPass
}
