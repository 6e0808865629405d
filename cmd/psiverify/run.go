package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/talgya/psi-verify/internal/check"
	"github.com/talgya/psi-verify/internal/engine"
	"github.com/talgya/psi-verify/internal/report"
)

type runFlags struct {
	book     string
	variant  string
	workers  int
	failFast bool
	format   string
	verbose  bool
	noStore  bool
	seed     int64
}

func (a *app) runCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run [chapter-id...]",
		Short: "Run chapter checks",
		Long: `Run the checks of the selected chapters, or of every chapter when none is named.

Exit status: 0 when every suite passes, 1 when a check fails or errors,
2 when the only problems are strict first-principles violations, 3 when
the run is interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("workers") {
				a.cfg.Workers = f.workers
			}
			if cmd.Flags().Changed("fail-fast") {
				a.cfg.FailFast = f.failFast
			}
			if cmd.Flags().Changed("seed") {
				a.cfg.Seed = f.seed
			}
			return a.run(cmd, args, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.book, "book", "", "only chapters of this book")
	fl.StringVar(&f.variant, "variant", "", "only chapters of this variant")
	fl.IntVarP(&f.workers, "workers", "w", 0, "suites run in parallel (0 = GOMAXPROCS)")
	fl.BoolVar(&f.failFast, "fail-fast", false, "skip remaining suites after the first failure")
	fl.StringVarP(&f.format, "format", "f", "text", "output format: text, json or markdown")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "show passing checks and narration")
	fl.BoolVar(&f.noStore, "no-store", false, "do not record the run")
	fl.Int64Var(&f.seed, "seed", 0, "random seed for stochastic checks (0 = fresh)")
	return cmd
}

func (a *app) selectSuites(args []string, book, variant string) ([]*check.Suite, error) {
	var v check.Variant
	if variant != "" {
		parsed, err := check.ParseVariant(variant)
		if err != nil {
			return nil, err
		}
		v = parsed
	}
	if len(args) > 0 {
		suites, err := a.catalog.Select(args)
		if err != nil {
			return nil, err
		}
		var out []*check.Suite
		for _, s := range suites {
			if (book == "" || s.Book == book) && (v == "" || s.Variant == v) {
				out = append(out, s)
			}
		}
		return out, nil
	}
	return a.catalog.Filter(book, v), nil
}

func (a *app) run(cmd *cobra.Command, args []string, f runFlags) error {
	switch f.format {
	case "text", "json", "markdown":
	default:
		return fmt.Errorf("unknown format %q", f.format)
	}
	suites, err := a.selectSuites(args, f.book, f.variant)
	if err != nil {
		return err
	}
	if len(suites) == 0 {
		return errors.New("no chapters match the selection")
	}

	hooks := engine.Hooks{
		OnSuiteDone: func(res check.SuiteResult) {
			err := res.Err()
			switch {
			case check.IsKind(err, check.KindViolation):
				slog.Info("strict violations recorded", "suite", res.ID, "count", len(res.Violations))
			case check.IsKind(err, check.KindFailed):
				slog.Debug("suite failed", "suite", res.ID, "err", err)
			default:
				slog.Debug("suite done", "suite", res.ID, "verdict", res.Verdict, "elapsed", res.Duration)
			}
		},
	}
	runner := engine.NewRunner(
		engine.WithWorkers(a.cfg.Workers),
		engine.WithFailFast(a.cfg.FailFast),
		engine.WithSeed(a.cfg.Seed),
		engine.WithHooks(hooks),
	)
	rep, runErr := runner.Run(cmd.Context(), suites)
	if runErr != nil {
		slog.Warn("run interrupted", "err", runErr)
	}

	if err := a.render(a.stdout, rep, f); err != nil {
		return err
	}
	if !f.noStore {
		a.record(cmd, rep)
	}

	if code := rep.ExitCode(); code != engine.ExitPass {
		return &exitError{code: code}
	}
	return nil
}

func (a *app) render(w io.Writer, rep *engine.Report, f runFlags) error {
	switch f.format {
	case "json":
		return report.JSON(w, rep)
	case "markdown":
		_, err := io.WriteString(w, report.Markdown(rep))
		return err
	}
	return report.Text(w, rep, report.Options{Verbose: f.verbose, Color: a.color()})
}

// record stores and caches the report. Failures are logged and never
// change the exit status.
func (a *app) record(cmd *cobra.Command, rep *engine.Report) {
	db, err := a.openStore()
	if err != nil {
		slog.Error("run not saved", "err", err)
	} else {
		if err := db.SaveReport(rep); err != nil {
			slog.Error("run not saved", "run", rep.RunID, "err", err)
		}
		db.Close()
	}

	if c := a.openCache(); c != nil {
		if err := c.Put(cmd.Context(), rep); err != nil {
			slog.Error("run not cached", "run", rep.RunID, "err", err)
		}
		c.Close()
	}
}
