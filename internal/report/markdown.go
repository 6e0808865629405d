package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/talgya/psi-verify/internal/check"
	"github.com/talgya/psi-verify/internal/engine"
)

// Markdown renders a report as a markdown document.
func Markdown(rep *engine.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Run %s\n\n", rep.RunID)
	fmt.Fprintf(&b, "- Started: %s\n", rep.StartedAt.UTC().Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "- Duration: %s\n", Duration(rep.Duration()))
	fmt.Fprintf(&b, "- Seed: %d\n", rep.Seed)
	fmt.Fprintf(&b, "- Exit code: %d\n\n", rep.ExitCode())
	fmt.Fprintf(&b, "%s\n\n", Summary(rep))

	b.WriteString("| Suite | Verdict | Checks | Assertions | Duration |\n")
	b.WriteString("|---|---|---:|---:|---:|\n")
	for _, sr := range rep.Suites {
		p, _, _, _ := sr.Counts()
		fmt.Fprintf(&b, "| `%s` | %s | %d/%d | %d | %s |\n",
			sr.ID, sr.Verdict, p, len(sr.Checks), sr.Assertions(), Duration(sr.Duration))
	}

	for _, sr := range rep.Suites {
		var bad []check.CheckResult
		for _, cr := range sr.Checks {
			if cr.Outcome == check.OutcomeFail || cr.Outcome == check.OutcomeError {
				bad = append(bad, cr)
			}
		}
		if len(bad) == 0 && len(sr.Violations) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n\n", sr.ID)
		for _, cr := range bad {
			fmt.Fprintf(&b, "- **%s** (%s): %s\n", cr.Name, cr.Outcome, escapeLine(cr.Message))
		}
		for _, v := range sr.Violations {
			fmt.Fprintf(&b, "- violation: %s\n", v)
		}
	}
	return b.String()
}

// SuiteDetail describes a suite as markdown: metadata, narrative,
// constants, checks and any declared violations or issues.
func SuiteDetail(s *check.Suite) string {
	var b strings.Builder
	title := s.ID
	if s.Title != "" {
		title = s.Title
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "- ID: `%s`\n", s.ID)
	fmt.Fprintf(&b, "- Book: %s\n", s.Book)
	if s.Part != "" {
		fmt.Fprintf(&b, "- Part: %s\n", s.Part)
	}
	if s.Chapter > 0 {
		fmt.Fprintf(&b, "- Chapter: %d\n", s.Chapter)
	}
	if s.Variant != "" {
		fmt.Fprintf(&b, "- Variant: %s\n", s.Variant)
	}
	if s.Source != "" {
		fmt.Fprintf(&b, "- Source: `%s`\n", s.Source)
	}

	if s.Narrative != "" {
		fmt.Fprintf(&b, "\n%s\n", strings.TrimSpace(s.Narrative))
	}

	if len(s.Constants) > 0 {
		b.WriteString("\n## Constants\n\n| Name | Symbol | Value | Note |\n|---|---|---:|---|\n")
		for _, c := range s.Constants {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				c.Name, c.Symbol, strconv.FormatFloat(c.Value, 'g', 12, 64), c.Note)
		}
	}

	fmt.Fprintf(&b, "\n## Checks (%d)\n\n", len(s.Checks))
	for i, chk := range s.Checks {
		fmt.Fprintf(&b, "%d. **%s**", i+1, chk.Name)
		if chk.Doc != "" {
			fmt.Fprintf(&b, ": %s", chk.Doc)
		}
		b.WriteByte('\n')
	}

	if len(s.Violations) > 0 {
		fmt.Fprintf(&b, "\n## Violations (%d)\n\n", len(s.Violations))
		for _, v := range s.Violations {
			fmt.Fprintf(&b, "- %s\n", v)
		}
	}
	if len(s.Issues) > 0 {
		fmt.Fprintf(&b, "\n## Issues (%d)\n\n", len(s.Issues))
		for _, v := range s.Issues {
			fmt.Fprintf(&b, "- %s\n", v)
		}
	}
	return b.String()
}

// RenderMarkdown renders markdown for the terminal. Without color the
// plain "notty" style is used.
func RenderMarkdown(md string, color bool, width int) (string, error) {
	style := glamour.WithStandardStyle("notty")
	if color {
		style = glamour.WithAutoStyle()
	}
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return "", fmt.Errorf("markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}

func escapeLine(s string) string {
	return strings.ReplaceAll(firstLine(s), "|", `\|`)
}
