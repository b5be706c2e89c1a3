package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newStatusCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "show staged, unstaged, and untracked changes",
		Args:  cobra.NoArgs,
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return statusCmd(cmd.OutOrStdout(), cfg)
	}

	return cmd
}

func statusCmd(out io.Writer, cfg *globalFlags) error {
	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}

	report, err := r.Status()
	if err != nil {
		return err
	}

	if report.Detached {
		fmt.Fprintln(out, "HEAD detached")
	} else {
		fmt.Fprintf(out, "On branch %s\n", report.Branch)
	}

	printStatusSection(out, "Changes to be committed:", report.Staged)
	printStatusSection(out, "Changes not staged for commit:", report.ModifiedNotStaged)
	printStatusSection(out, "Deleted:", report.Deleted)
	printStatusSection(out, "Untracked files:", report.Untracked)

	if report.IsClean() {
		fmt.Fprintln(out, "nothing to commit, working tree clean")
	}
	return nil
}

func printStatusSection(out io.Writer, title string, paths []string) {
	if len(paths) == 0 {
		return
	}
	fmt.Fprintln(out, title)
	for _, p := range paths {
		fmt.Fprintf(out, "\t%s\n", p)
	}
	fmt.Fprintln(out)
}
