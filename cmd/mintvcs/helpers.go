package main

import (
	"fmt"
	"io"
	"os"
	"os/user"

	"github.com/mintvcs/mintvcs"
	"github.com/mintvcs/mintvcs/internal/pathutil"
	"github.com/mintvcs/mintvcs/object"
	"github.com/spf13/afero"
)

// loadRepository opens the repository reachable from cfg.C, walking up
// parent directories to find the REPO root the same way a real VCS lets
// a command run from any subdirectory of the working tree.
func loadRepository(cfg *globalFlags) (*mintvcs.Repository, error) {
	root, err := pathutil.RepoRootFromPath(cfg.C.String())
	if err != nil {
		return nil, err
	}
	return mintvcs.Open(afero.NewOsFs(), root)
}

func fprintln(quiet bool, out io.Writer, msg ...interface{}) {
	if !quiet {
		fmt.Fprintln(out, msg...)
	}
}

func fprintf(quiet bool, out io.Writer, format string, a ...interface{}) {
	if !quiet {
		fmt.Fprintf(out, format, a...)
	}
}

// defaultSignature builds the author/committer identity commits are
// recorded with. There's no per-repo user config to read, so this
// falls back to the OS account.
func defaultSignature() object.Signature {
	name := "mintvcs"
	if u, err := user.Current(); err == nil && u.Username != "" {
		name = u.Username
	}
	host := "localhost"
	if h, err := os.Hostname(); err == nil && h != "" {
		host = h
	}
	return object.NewSignature(name, name+"@"+host)
}
