// Package worktree enumerates and reads/writes the files under a
// repository's working directory, applying .mintvcsignore filtering.
package worktree

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mintvcs/mintvcs/internal/gitpath"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// Tree enumerates and accesses files under root, ignoring whatever
// Ignores names.
type Tree struct {
	fs      afero.Fs
	root    string
	repoDir string
	ignores *Ignores
}

// New returns a Tree rooted at root. repoDir is the name of the
// repository directory (".mintvcs") which, along with the ignore file
// itself, is always implicitly ignored.
func New(fs afero.Fs, root, repoDir string, ignores *Ignores) *Tree {
	return &Tree{fs: fs, root: root, repoDir: repoDir, ignores: ignores}
}

// Enumerate returns every non-ignored regular file under root, as
// paths relative to root using forward slashes, sorted.
func (t *Tree) Enumerate() ([]string, error) {
	var paths []string
	err := afero.Walk(t.fs, t.root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(t.root, p)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		first := strings.SplitN(rel, "/", 2)[0]
		if first == t.repoDir || rel == gitpath.IgnoreFileName {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if t.ignores.Matches(rel) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			return nil
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, xerrors.Errorf("could not enumerate working tree: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

// ReadFile returns the bytes of the file at the given root-relative path.
func (t *Tree) ReadFile(relPath string) ([]byte, error) {
	b, err := afero.ReadFile(t.fs, filepath.Join(t.root, filepath.FromSlash(relPath)))
	if err != nil {
		return nil, xerrors.Errorf("could not read %s: %w", relPath, err)
	}
	return b, nil
}

// WriteFile writes content to the given root-relative path, creating
// parent directories as needed.
func (t *Tree) WriteFile(relPath string, content []byte) error {
	abs := filepath.Join(t.root, filepath.FromSlash(relPath))
	if err := t.fs.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return xerrors.Errorf("could not create directory for %s: %w", relPath, err)
	}
	if err := afero.WriteFile(t.fs, abs, content, 0o644); err != nil {
		return xerrors.Errorf("could not write %s: %w", relPath, err)
	}
	return nil
}

// RemoveFile deletes the file at the given root-relative path. It is
// not an error if the file is already absent.
func (t *Tree) RemoveFile(relPath string) error {
	err := t.fs.Remove(filepath.Join(t.root, filepath.FromSlash(relPath)))
	if err != nil && !os.IsNotExist(err) {
		return xerrors.Errorf("could not remove %s: %w", relPath, err)
	}
	return nil
}

// Stat reports whether relPath exists under root.
func (t *Tree) Stat(relPath string) (bool, error) {
	exists, err := afero.Exists(t.fs, filepath.Join(t.root, filepath.FromSlash(relPath)))
	if err != nil {
		return false, xerrors.Errorf("could not stat %s: %w", relPath, err)
	}
	return exists, nil
}

// IsIgnored reports whether relPath is ignored.
func (t *Tree) IsIgnored(relPath string) bool {
	first := strings.SplitN(relPath, "/", 2)[0]
	return first == t.repoDir || relPath == gitpath.IgnoreFileName || t.ignores.Matches(relPath)
}

// IsDir reports whether relPath names a directory under root.
func (t *Tree) IsDir(relPath string) (bool, error) {
	info, err := t.fs.Stat(filepath.Join(t.root, filepath.FromSlash(relPath)))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, xerrors.Errorf("could not stat %s: %w", relPath, err)
	}
	return info.IsDir(), nil
}
