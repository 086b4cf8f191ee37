package main

import (
	"fmt"

	"github.com/gritvcs/grit/pkg/object"
	"github.com/gritvcs/grit/pkg/repo"
	"github.com/spf13/cobra"
)

func newCatFileCmd() *cobra.Command {
	var showType bool
	var showSize bool
	var prettyPrint bool

	cmd := &cobra.Command{
		Use:   "cat-file (-t | -s | -p) <hash>",
		Short: "Inspect a stored object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			modes := 0
			for _, b := range []bool{showType, showSize, prettyPrint} {
				if b {
					modes++
				}
			}
			if modes != 1 {
				return fmt.Errorf("exactly one of -t, -s, -p is required")
			}

			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			hash := object.Hash(args[0])
			kind, data, err := r.Store.Read(hash)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case showType:
				fmt.Fprintln(out, kind)
			case showSize:
				fmt.Fprintln(out, len(data))
			case prettyPrint:
				return prettyPrintObject(cmd, kind, data)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&showType, "type", "t", false, "print the object type")
	cmd.Flags().BoolVarP(&showSize, "size", "s", false, "print the content size in bytes")
	cmd.Flags().BoolVarP(&prettyPrint, "pretty", "p", false, "pretty-print the object content")
	return cmd
}

func prettyPrintObject(cmd *cobra.Command, kind object.ObjectType, data []byte) error {
	out := cmd.OutOrStdout()
	switch kind {
	case object.TypeBlob:
		_, err := out.Write(data)
		return err
	case object.TypeTree:
		tree, err := object.UnmarshalTree(data)
		if err != nil {
			return err
		}
		for _, e := range tree.Entries {
			entryKind := object.TypeBlob
			if e.IsDir() {
				entryKind = object.TypeTree
			}
			mode := e.Mode
			for len(mode) < 6 {
				mode = "0" + mode
			}
			fmt.Fprintf(out, "%s %s %s\t%s\n", mode, entryKind, e.Hash, e.Name)
		}
		return nil
	case object.TypeCommit:
		// Commits are stored as text; validate before echoing so a
		// corrupt object fails loudly instead of printing garbage.
		if _, err := object.UnmarshalCommit(data); err != nil {
			return err
		}
		_, err := out.Write(data)
		return err
	default:
		return fmt.Errorf("unknown object type %q", kind)
	}
}
