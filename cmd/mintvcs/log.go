package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newLogCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "show the commit history reachable from HEAD",
		Args:  cobra.NoArgs,
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return logCmd(cmd.OutOrStdout(), cfg)
	}

	return cmd
}

func logCmd(out io.Writer, cfg *globalFlags) error {
	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}

	commits, err := r.Log()
	if err != nil {
		return err
	}

	for _, c := range commits {
		fmt.Fprintf(out, "commit %s\n", c.ID())
		author := c.Author()
		fmt.Fprintf(out, "Author: %s <%s>\n", author.Name, author.Email)
		fmt.Fprintf(out, "Date:   %s\n\n", author.Time.Format("Mon Jan 2 15:04:05 2006 -0700"))
		fmt.Fprintf(out, "    %s\n\n", c.Message())
	}
	return nil
}
