package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/talgya/psi-verify/internal/persistence"
	"github.com/talgya/psi-verify/internal/report"
)

func (a *app) historyCmd() *cobra.Command {
	var limit int
	var suiteID, runID, deleteID string
	var verbose bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			switch {
			case deleteID != "":
				return a.deleteRun(cmd, db, deleteID)
			case runID != "":
				rep, err := db.LoadRun(runID)
				if err != nil {
					return err
				}
				return report.Text(a.stdout, rep, report.Options{Verbose: verbose, Color: a.color()})
			case suiteID != "":
				if _, err := a.catalog.Lookup(suiteID); err != nil {
					return err
				}
				records, err := db.SuiteHistory(suiteID, limit)
				if err != nil {
					return err
				}
				return report.History(a.stdout, records, time.Now(), a.color())
			}
			runs, err := db.ListRuns(limit)
			if err != nil {
				return err
			}
			return report.Runs(a.stdout, runs, time.Now(), a.color())
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of entries")
	cmd.Flags().StringVar(&suiteID, "suite", "", "history of one chapter suite")
	cmd.Flags().StringVar(&runID, "run", "", "print a stored run (ID or unique prefix)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "with --run, show passing checks")
	cmd.Flags().StringVar(&deleteID, "delete", "", "delete a stored run (ID or unique prefix)")
	cmd.MarkFlagsMutuallyExclusive("delete", "run", "suite")
	return cmd
}

// deleteRun removes a run from the store and drops its cached copies.
func (a *app) deleteRun(cmd *cobra.Command, db *persistence.DB, id string) error {
	rep, err := db.LoadRun(id)
	if err != nil {
		return err
	}
	if err := db.DeleteRun(rep.RunID); err != nil {
		return err
	}
	if c := a.openCache(); c != nil {
		if err := c.Invalidate(cmd.Context(), rep.RunID); err != nil {
			slog.Warn("cached run not dropped", "run", rep.RunID, "err", err)
		}
		c.Close()
	}
	fmt.Fprintf(a.stdout, "deleted run %s\n", rep.RunID)
	return nil
}
