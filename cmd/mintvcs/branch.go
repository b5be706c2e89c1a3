package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newBranchCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "branch",
		Short: "list, create, delete, or rename branches",
	}

	cmd.AddCommand(newBranchListCmd(cfg))
	cmd.AddCommand(newBranchCreateCmd(cfg))
	cmd.AddCommand(newBranchDeleteCmd(cfg))
	cmd.AddCommand(newBranchRenameCmd(cfg))

	return cmd
}

func newBranchListCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "list local branches",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return branchListCmd(cmd.OutOrStdout(), cfg)
	}
	return cmd
}

func branchListCmd(out io.Writer, cfg *globalFlags) error {
	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}

	branches, err := r.ListBranches()
	if err != nil {
		return err
	}

	current, hasCurrent, err := r.Refs.CurrentBranch()
	if err != nil {
		return err
	}

	for _, b := range branches {
		prefix := "  "
		if hasCurrent && b == current {
			prefix = "* "
		}
		fmt.Fprintf(out, "%s%s\n", prefix, b)
	}
	return nil
}

func newBranchCreateCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "create a branch pointing at HEAD",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return branchCreateCmd(cmd.OutOrStdout(), cfg, args[0])
	}
	return cmd
}

func branchCreateCmd(out io.Writer, cfg *globalFlags, name string) error {
	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}
	_, err = r.CreateBranch(name)
	return err
}

func newBranchDeleteCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "delete a branch",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return branchDeleteCmd(cmd.OutOrStdout(), cfg, args[0])
	}
	return cmd
}

func branchDeleteCmd(out io.Writer, cfg *globalFlags, name string) error {
	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}
	return r.DeleteBranch(name)
}

func newBranchRenameCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename OLD NEW",
		Short: "rename a branch",
		Args:  cobra.ExactArgs(2),
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return branchRenameCmd(cmd.OutOrStdout(), cfg, args[0], args[1])
	}
	return cmd
}

func branchRenameCmd(out io.Writer, cfg *globalFlags, oldName, newName string) error {
	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}
	return r.RenameBranch(oldName, newName)
}
