package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/talgya/psi-verify/internal/report"
)

func (a *app) showCmd() *cobra.Command {
	var raw bool
	var width int
	cmd := &cobra.Command{
		Use:   "show <chapter-id>",
		Short: "Describe a chapter suite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.catalog.Lookup(args[0])
			if err != nil {
				return err
			}
			md := report.SuiteDetail(s)
			if raw {
				_, err := io.WriteString(a.stdout, md)
				return err
			}
			out, err := report.RenderMarkdown(md, a.color(), width)
			if err != nil {
				return err
			}
			_, err = io.WriteString(a.stdout, out)
			return err
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print markdown without rendering")
	cmd.Flags().IntVar(&width, "width", 100, "wrap width")
	return cmd
}
