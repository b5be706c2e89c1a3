package main

import (
	"io"

	"github.com/spf13/cobra"
)

func newAddCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add PATH...",
		Short: "stage files in the working tree",
		Args:  cobra.MinimumNArgs(1),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return addCmd(cmd.OutOrStdout(), cfg, args)
	}

	return cmd
}

func addCmd(out io.Writer, cfg *globalFlags, paths []string) error {
	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}
	return r.Stage(paths)
}
