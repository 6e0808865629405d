package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/talgya/psi-verify/internal/report"
)

func (a *app) listCmd() *cobra.Command {
	var book, variant string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List chapter suites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			suites, err := a.selectSuites(nil, book, variant)
			if err != nil {
				return err
			}
			if asJSON {
				type entry struct {
					ID      string `json:"id"`
					Book    string `json:"book"`
					Chapter int    `json:"chapter"`
					Variant string `json:"variant"`
					Title   string `json:"title"`
					Checks  int    `json:"checks"`
				}
				out := make([]entry, 0, len(suites))
				for _, s := range suites {
					out = append(out, entry{s.ID, s.Book, s.Chapter, string(s.Variant), s.Title, len(s.Checks)})
				}
				return writeIndented(a.stdout, out)
			}
			return report.Chapters(a.stdout, suites, a.color())
		},
	}
	cmd.Flags().StringVar(&book, "book", "", "only chapters of this book")
	cmd.Flags().StringVar(&variant, "variant", "", "only chapters of this variant")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
