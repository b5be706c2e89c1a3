package main

import (
	"fmt"
	"io"

	"github.com/mintvcs/mintvcs"
	"github.com/mintvcs/mintvcs/internal/gitpath"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

type initCmdFlags struct {
	quiet bool
}

func newInitCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "create an empty mintvcs repository",
		Args:  cobra.NoArgs,
	}

	flags := initCmdFlags{}
	cmd.Flags().BoolVarP(&flags.quiet, "quiet", "q", false, "Only print error messages.")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return initCmd(cmd.OutOrStdout(), cfg, flags)
	}

	return cmd
}

func initCmd(out io.Writer, cfg *globalFlags, flags initCmdFlags) error {
	workDir := cfg.C.String()

	_, err := mintvcs.Init(afero.NewOsFs(), workDir)
	if err != nil {
		return err
	}

	fprintln(flags.quiet, out, fmt.Sprintf("Initialized empty mintvcs repository in %s/%s", workDir, gitpath.DotVCSPath))
	return nil
}
