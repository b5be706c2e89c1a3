package main

import (
	"github.com/mintvcs/mintvcs/internal/pathutil"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// globalFlags holds the flags every subcommand can see, threading the
// -C flag through every command.
type globalFlags struct {
	C pflag.Value
}

func newRootCmd(cwd string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "mintvcs",
		Short:         "a local, content-addressed version control tool",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cfg := &globalFlags{
		C: pathutil.NewDirPathFlagWithDefault(cwd),
	}
	cmd.PersistentFlags().VarP(cfg.C, "C", "C", "Run as if mintvcs was started in the provided path instead of the current working directory.")

	// porcelain
	cmd.AddCommand(newInitCmd(cfg))
	cmd.AddCommand(newAddCmd(cfg))
	cmd.AddCommand(newCommitCmd(cfg))
	cmd.AddCommand(newLogCmd(cfg))
	cmd.AddCommand(newStatusCmd(cfg))
	cmd.AddCommand(newCheckoutCmd(cfg))
	cmd.AddCommand(newBranchCmd(cfg))
	cmd.AddCommand(newMergeCmd(cfg))

	// plumbing
	cmd.AddCommand(newHashObjectCmd(cfg))

	return cmd
}
