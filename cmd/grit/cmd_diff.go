package main

import (
	"fmt"

	"github.com/gritvcs/grit/pkg/diff"
	"github.com/gritvcs/grit/pkg/repo"
	"github.com/spf13/cobra"
)

func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff",
		Short: "Show unstaged changes against the index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			report, err := r.Status()
			if err != nil {
				return err
			}

			ix, err := r.LoadIndex()
			if err != nil {
				return err
			}
			ws := r.Workspace()

			out := cmd.OutOrStdout()
			for _, ps := range report.Paths {
				if ps.Work != repo.Modified {
					continue
				}
				entry, ok := ix.Get(ps.Path)
				if !ok {
					continue
				}
				staged, err := r.Store.ReadBlob(entry.Hash)
				if err != nil {
					return err
				}
				work, err := ws.Read(ps.Path)
				if err != nil {
					return err
				}
				text := diff.Unified(
					"a/"+ps.Path, "b/"+ps.Path,
					diff.SplitLines(string(staged.Data)),
					diff.SplitLines(string(work)),
				)
				if text != "" {
					fmt.Fprint(out, text)
				}
			}
			return nil
		},
	}
}
