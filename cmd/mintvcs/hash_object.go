package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mintvcs/mintvcs"
	"github.com/mintvcs/mintvcs/object"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

type hashObjectCmdFlags struct {
	write bool
	typ   string
}

func newHashObjectCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash-object FILE",
		Short: "compute an object's identity and optionally store it",
		Args:  cobra.ExactArgs(1),
	}

	flags := hashObjectCmdFlags{}
	cmd.Flags().BoolVarP(&flags.write, "write", "w", false, "Actually write the object into the object store, as opposed to just computing its identity.")
	cmd.Flags().StringVarP(&flags.typ, "type", "t", "blob", "Specify the object type: blob, tree, or commit.")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return hashObjectCmd(cmd.OutOrStdout(), cfg, flags, args[0])
	}

	return cmd
}

func hashObjectCmd(out io.Writer, cfg *globalFlags, flags hashObjectCmdFlags, filePath string) error {
	kind, err := object.ParseKind(flags.typ)
	if err != nil {
		return xerrors.Errorf("unsupported object type %q: %w", flags.typ, err)
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	if !flags.write {
		id, err := mintvcs.ComputeObjectID(kind, content)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, id)
		return nil
	}

	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}
	id, err := r.WriteObject(kind, content)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, id)
	return nil
}
