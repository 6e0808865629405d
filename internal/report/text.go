// Package report renders run reports and suite descriptions as text,
// JSON and markdown.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/talgya/psi-verify/internal/check"
	"github.com/talgya/psi-verify/internal/engine"
)

// Options control text rendering.
type Options struct {
	Verbose bool // include narration and passing checks
	Color   bool
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Theme holds the styles of the text report.
type Theme struct {
	Title     lipgloss.Style
	Faint     lipgloss.Style
	Pass      lipgloss.Style
	Fail      lipgloss.Style
	Violation lipgloss.Style
	Skipped   lipgloss.Style
}

// NewTheme returns coloured styles, or plain ones when color is false.
func NewTheme(color bool) Theme {
	if !color {
		plain := lipgloss.NewStyle()
		return Theme{plain, plain, plain, plain, plain, plain}
	}
	return Theme{
		Title:     lipgloss.NewStyle().Bold(true),
		Faint:     lipgloss.NewStyle().Faint(true),
		Pass:      lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		Fail:      lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		Violation: lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true),
		Skipped:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

func (t Theme) verdict(v check.Verdict) string {
	label := fmt.Sprintf("%-9s", strings.ToUpper(string(v)))
	switch v {
	case check.VerdictPass:
		return t.Pass.Render(label)
	case check.VerdictFail:
		return t.Fail.Render(label)
	case check.VerdictViolation:
		return t.Violation.Render(label)
	}
	return t.Skipped.Render(label)
}

func (t Theme) outcome(o check.Outcome) string {
	switch o {
	case check.OutcomePass:
		return t.Pass.Render("✓")
	case check.OutcomeFail:
		return t.Fail.Render("✗")
	case check.OutcomeError:
		return t.Fail.Render("!")
	}
	return t.Skipped.Render("-")
}

// Text writes a human-readable report.
func Text(w io.Writer, rep *engine.Report, opts Options) error {
	th := NewTheme(opts.Color)
	var b strings.Builder

	for _, sr := range rep.Suites {
		fmt.Fprintf(&b, "%s %s  %s\n", th.verdict(sr.Verdict), th.Title.Render(sr.ID),
			th.Faint.Render(suiteLine(sr)))
		for _, cr := range sr.Checks {
			if !opts.Verbose && cr.Outcome == check.OutcomePass {
				continue
			}
			fmt.Fprintf(&b, "    %s %s", th.outcome(cr.Outcome), cr.Name)
			if cr.Message != "" {
				fmt.Fprintf(&b, ": %s", firstLine(cr.Message))
			}
			b.WriteByte('\n')
			if opts.Verbose {
				for _, note := range cr.Notes {
					fmt.Fprintf(&b, "        %s\n", th.Faint.Render(note))
				}
			}
		}
		if sr.Verdict == check.VerdictViolation || opts.Verbose {
			for _, v := range sr.Violations {
				fmt.Fprintf(&b, "    %s %s\n", th.Violation.Render("violation:"), v)
			}
		}
		if opts.Verbose {
			for _, issue := range sr.Issues {
				fmt.Fprintf(&b, "    %s %s\n", th.Faint.Render("issue:"), issue)
			}
		}
	}

	b.WriteByte('\n')
	b.WriteString(Summary(rep))
	b.WriteByte('\n')
	fmt.Fprintf(&b, "%s\n", th.Faint.Render(fmt.Sprintf("run %s  seed %d  %s",
		rep.RunID, rep.Seed, Duration(rep.Duration()))))

	_, err := io.WriteString(w, b.String())
	return err
}

func suiteLine(sr check.SuiteResult) string {
	parts := []string{}
	if sr.Title != "" {
		parts = append(parts, sr.Title)
	}
	parts = append(parts, fmt.Sprintf("%s %s, %s %s, %s",
		humanize.Comma(int64(len(sr.Checks))), plural(len(sr.Checks), "check"),
		humanize.Comma(int64(sr.Assertions())), plural(sr.Assertions(), "assertion"),
		Duration(sr.Duration)))
	return strings.Join(parts, "  ")
}

// Summary returns the one-line tally of a report.
func Summary(rep *engine.Report) string {
	st := rep.Stats
	s := fmt.Sprintf("%s %s, %s %s: %s passed, %s failed, %s errored, %s skipped; %s %s",
		humanize.Comma(int64(st.Suites)), plural(st.Suites, "suite"),
		humanize.Comma(int64(st.Checks)), plural(st.Checks, "check"),
		humanize.Comma(int64(st.Passed)), humanize.Comma(int64(st.Failed)),
		humanize.Comma(int64(st.Errored)), humanize.Comma(int64(st.Skipped)),
		humanize.Comma(int64(st.Assertions)), plural(st.Assertions, "assertion"))
	if st.Violations > 0 {
		s += fmt.Sprintf("; %d strict %s", st.Violations, plural(st.Violations, "violation"))
	}
	if rep.Cancelled {
		s += "; cancelled"
	}
	return s
}

// Duration formats d with SI prefixes, e.g. "1.5 ms".
func Duration(d time.Duration) string {
	if d <= 0 {
		return "0 s"
	}
	return humanize.SIWithDigits(d.Seconds(), 2, "s")
}

// JSON writes the report as indented JSON.
func JSON(w io.Writer, rep *engine.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}
