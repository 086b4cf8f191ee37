package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gritvcs/grit/pkg/lockfile"
	"github.com/gritvcs/grit/pkg/repo"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show working tree status",
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

			// Touched-but-identical files get their stat cache refreshed
			// opportunistically; a concurrent lock holder just means the
			// cache stays cold until the next run.
			if err := r.ApplyStatRefresh(report); err != nil && !errors.Is(err, lockfile.ErrLocked) {
				return err
			}

			out := cmd.OutOrStdout()

			branch := "main"
			if head, err := r.Head(); err == nil && strings.HasPrefix(head, "refs/heads/") {
				branch = strings.TrimPrefix(head, "refs/heads/")
			}
			fmt.Fprintf(out, "on %s\n", branch)

			for _, ps := range report.Paths {
				if ps.Index == repo.Unchanged && ps.Work == repo.Unchanged {
					continue
				}
				fmt.Fprintf(out, "%s%s %s\n", indexCode(ps.Index), workCode(ps.Work), ps.Path)
			}
			for _, p := range report.Untracked {
				fmt.Fprintf(out, "?? %s\n", p)
			}
			return nil
		},
	}
}

func indexCode(k repo.ChangeKind) string {
	switch k {
	case repo.Added:
		return "A"
	case repo.Modified:
		return "M"
	case repo.Deleted:
		return "D"
	default:
		return " "
	}
}

func workCode(k repo.ChangeKind) string {
	switch k {
	case repo.Modified:
		return "M"
	case repo.Deleted:
		return "D"
	default:
		return " "
	}
}
