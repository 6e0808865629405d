package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/talgya/psi-verify/internal/check"
	"github.com/talgya/psi-verify/internal/persistence"
)

func newTable(th Theme, headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(th.Faint).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return th.Title.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

// Chapters writes the catalog listing used by `list`.
func Chapters(w io.Writer, suites []*check.Suite, color bool) error {
	th := NewTheme(color)
	t := newTable(th, "ID", "Book", "Ch", "Variant", "Checks", "Title")
	for _, s := range suites {
		ch := "-"
		if s.Chapter > 0 {
			ch = strconv.Itoa(s.Chapter)
		}
		t.Row(s.ID, s.Book, ch, string(s.Variant), strconv.Itoa(len(s.Checks)), s.Title)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// Runs writes stored run summaries used by `history`.
func Runs(w io.Writer, runs []persistence.RunSummary, now time.Time, color bool) error {
	th := NewTheme(color)
	t := newTable(th, "Run", "Started", "Suites", "Passed", "Failed", "Violations", "Exit")
	for _, r := range runs {
		t.Row(
			shortID(r.ID),
			humanize.RelTime(r.StartedAt, now, "ago", "from now"),
			strconv.Itoa(r.Stats.Suites),
			humanize.Comma(int64(r.Stats.Passed)),
			humanize.Comma(int64(r.Stats.Failed+r.Stats.Errored)),
			strconv.Itoa(r.Stats.Violations),
			strconv.Itoa(r.ExitCode),
		)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// History writes the past verdicts of one suite.
func History(w io.Writer, records []persistence.SuiteRecord, now time.Time, color bool) error {
	th := NewTheme(color)
	t := newTable(th, "Run", "Started", "Verdict", "Duration")
	for _, r := range records {
		t.Row(shortID(r.RunID), humanize.RelTime(r.StartedAt, now, "ago", "from now"),
			th.verdict(r.Verdict), Duration(r.Duration))
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
