package main

import (
	"fmt"
	"strings"

	"github.com/gritvcs/grit/pkg/repo"
	"github.com/spf13/cobra"
)

func newCommitCmd() *cobra.Command {
	var message string
	var sign bool
	var keyPath string

	cmd := &cobra.Command{
		Use:   "commit -m <message>",
		Short: "Record the staged tree as a new commit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(message) == "" {
				return fmt.Errorf("commit message is required (-m)")
			}

			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			var signer repo.CommitSigner
			if sign {
				cfg, err := r.ReadConfig()
				if err != nil {
					return err
				}
				path := keyPath
				if path == "" {
					path = cfg.Signing.Key
				}
				signer, path, err = newSSHCommitSigner(path)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "signing with %s\n", path)
			}

			hash, err := r.CommitWithSigner(message, signer)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", hash)
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().BoolVarP(&sign, "sign", "S", false, "sign the commit with an SSH key")
	cmd.Flags().StringVar(&keyPath, "key", "", "SSH private key path (overrides signing.key)")
	return cmd
}
