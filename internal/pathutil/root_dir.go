package pathutil

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/mintvcs/mintvcs/internal/gitpath"
	"golang.org/x/xerrors"
)

// ErrNoRepo is returned when no repository is found in the current
// directory or any of its parents.
var ErrNoRepo = errors.New("not a mintvcs repository (or any of the parent directories)")

// RepoRoot returns the absolute path to the working tree root of the
// repository containing the current directory.
func RepoRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", xerrors.Errorf("could not get current working directory: %w", err)
	}
	return RepoRootFromPath(wd)
}

// RepoRootFromPath returns the absolute path to the working tree root
// of the repository containing p, walking up parent directories until
// a REPO directory (.mintvcs) is found.
func RepoRootFromPath(p string) (string, error) {
	prev := ""
	for p != prev {
		info, err := os.Stat(filepath.Join(p, gitpath.DotVCSPath))
		if err == nil && info.IsDir() {
			return p, nil
		}

		prev = p
		p = filepath.Dir(p)
	}
	return "", ErrNoRepo
}
