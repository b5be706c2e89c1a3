package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newCheckoutCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkout TARGET",
		Short: "switch the working tree and index to a branch or commit",
		Args:  cobra.ExactArgs(1),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return checkoutCmd(cmd.OutOrStdout(), cfg, args[0])
	}

	return cmd
}

func checkoutCmd(out io.Writer, cfg *globalFlags, target string) error {
	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}

	res, err := r.Checkout(target)
	if err != nil {
		return err
	}

	if res.Branch != "" {
		fmt.Fprintf(out, "Switched to branch '%s'\n", res.Branch)
	} else {
		fmt.Fprintf(out, "HEAD is now at %s (detached)\n", res.CommitID)
	}
	return nil
}
