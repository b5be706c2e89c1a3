package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newMergeCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge BRANCH",
		Short: "three-way merge a branch into HEAD",
		Args:  cobra.ExactArgs(1),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return mergeCmd(cmd.OutOrStdout(), cfg, args[0])
	}

	return cmd
}

func mergeCmd(out io.Writer, cfg *globalFlags, target string) error {
	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}

	res, err := r.Merge(target)
	if err != nil {
		return err
	}

	if res.UpToDate {
		fmt.Fprintln(out, "Already up to date.")
		return nil
	}

	fmt.Fprintf(out, "Merge made by the three-way merge strategy: %s\n", res.MergeCommit)
	for _, c := range res.Conflicts {
		fmt.Fprintf(out, "CONFLICT: content conflict in %s\n", c)
	}
	return nil
}
