package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

type commitCmdFlags struct {
	message string
}

func newCommitCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commit",
		Short: "record the staged snapshot as a new commit",
		Args:  cobra.NoArgs,
	}

	flags := commitCmdFlags{}
	cmd.Flags().StringVarP(&flags.message, "message", "m", "", "Commit message.")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return commitCmd(cmd.OutOrStdout(), cfg, flags)
	}

	return cmd
}

func commitCmd(out io.Writer, cfg *globalFlags, flags commitCmdFlags) error {
	if flags.message == "" {
		return errors.New("commit message is required (-m)")
	}

	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}

	id, err := r.Commit(flags.message, defaultSignature())
	if err != nil {
		return err
	}

	fmt.Fprintln(out, id)
	return nil
}
