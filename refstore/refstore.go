// Package refstore persists and resolves named references and the
// HEAD pointer: symbolic-vs-direct resolution and name validation, on
// a flat model with no packed-refs, no remote-tracking refs, no
// reflog.
package refstore

import (
	"bytes"
	"errors"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mintvcs/mintvcs/internal/gitpath"
	"github.com/mintvcs/mintvcs/objecthash"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

var (
	// ErrNotFound is returned when a branch, tag, or ref file doesn't exist.
	ErrNotFound = errors.New("reference not found")
	// ErrAlreadyExists is returned by creation calls that collide with
	// an existing branch or tag.
	ErrAlreadyExists = errors.New("reference already exists")
	// ErrInvalidRef is returned when a branch/tag name fails validation,
	// or a ref file's content doesn't parse.
	ErrInvalidRef = errors.New("invalid reference")
	// ErrProtectedBranch is returned when attempting to delete or
	// rename the branch currently targeted by a symbolic HEAD.
	ErrProtectedBranch = errors.New("branch is currently checked out")
)

const symbolicPrefix = "ref: "

// HeadState describes the two shapes HEAD can take.
type HeadState struct {
	// Symbolic is true when HEAD points at a branch (or other ref)
	// rather than directly at a commit.
	Symbolic bool
	// Target is the ref path HEAD points at, e.g. "refs/heads/main".
	// Only meaningful when Symbolic is true.
	Target string
	// Direct is the commit identity HEAD points at directly. Only
	// meaningful when Symbolic is false.
	Direct objecthash.Identity
}

// Store reads and writes references under a REPO directory.
type Store struct {
	fs   afero.Fs
	root string
}

// New returns a Store rooted at root (normally .mintvcs).
func New(fs afero.Fs, root string) *Store {
	return &Store{fs: fs, root: root}
}

func (s *Store) headPath() string {
	return filepath.Join(s.root, gitpath.HEADPath)
}

func (s *Store) refPath(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(name))
}

func (s *Store) branchPath(name string) string {
	return s.refPath(path.Join(gitpath.RefsHeadsPath, name))
}

func (s *Store) tagPath(name string) string {
	return s.refPath(path.Join(gitpath.RefsTagsPath, name))
}

// ReadHEAD reads and parses REPO/HEAD.
func (s *Store) ReadHEAD() (HeadState, error) {
	raw, err := afero.ReadFile(s.fs, s.headPath())
	if err != nil {
		return HeadState{}, xerrors.Errorf("could not read HEAD: %w", err)
	}
	return parseHeadContent(raw)
}

func parseHeadContent(raw []byte) (HeadState, error) {
	line := strings.TrimRight(string(raw), "\n")
	if strings.HasPrefix(line, symbolicPrefix) {
		target := strings.TrimSpace(strings.TrimPrefix(line, symbolicPrefix))
		if !IsRefNameValid(target) {
			return HeadState{}, xerrors.Errorf("HEAD target %q: %w", target, ErrInvalidRef)
		}
		return HeadState{Symbolic: true, Target: target}, nil
	}

	id, err := objecthash.Parse(line)
	if err != nil {
		return HeadState{}, xerrors.Errorf("malformed HEAD content %q: %w", line, ErrInvalidRef)
	}
	return HeadState{Direct: id}, nil
}

// ResolveHEAD follows one level of symbolic indirection and returns
// the commit identity HEAD currently points at. It returns
// (zero-value, false, nil) for the unborn-branch state: HEAD is
// symbolic and the target branch file does not exist yet, which is
// legal before the first commit.
func (s *Store) ResolveHEAD() (objecthash.Identity, bool, error) {
	head, err := s.ReadHEAD()
	if err != nil {
		return objecthash.NullIdentity, false, err
	}
	if !head.Symbolic {
		return head.Direct, true, nil
	}

	id, err := s.readRefFile(s.refPath(head.Target))
	if errors.Is(err, ErrNotFound) {
		return objecthash.NullIdentity, false, nil
	}
	if err != nil {
		return objecthash.NullIdentity, false, err
	}
	return id, true, nil
}

// UpdateCurrent writes identity to whichever location HEAD currently
// targets: the referenced branch file if HEAD is symbolic, or HEAD
// itself if detached.
func (s *Store) UpdateCurrent(id objecthash.Identity) error {
	head, err := s.ReadHEAD()
	if err != nil {
		return err
	}
	if !head.Symbolic {
		return s.SetHeadDirect(id)
	}
	return s.writeRefFile(s.refPath(head.Target), id)
}

// SetHeadSymbolic points HEAD at a branch by name (not by full ref path).
func (s *Store) SetHeadSymbolic(branchName string) error {
	if !IsRefNameValid(branchName) {
		return xerrors.Errorf("branch name %q: %w", branchName, ErrInvalidRef)
	}
	content := symbolicPrefix + path.Join(gitpath.RefsHeadsPath, branchName) + "\n"
	return afero.WriteFile(s.fs, s.headPath(), []byte(content), 0o644)
}

// SetHeadDirect points HEAD directly at a commit, detaching it.
func (s *Store) SetHeadDirect(id objecthash.Identity) error {
	return afero.WriteFile(s.fs, s.headPath(), []byte(id.String()+"\n"), 0o644)
}

// CurrentBranch returns the short branch name HEAD points at, and
// false when HEAD is detached.
func (s *Store) CurrentBranch() (string, bool, error) {
	head, err := s.ReadHEAD()
	if err != nil {
		return "", false, err
	}
	if !head.Symbolic {
		return "", false, nil
	}
	return strings.TrimPrefix(head.Target, gitpath.RefsHeadsPath+"/"), true, nil
}

// ListBranches returns every local branch name, sorted.
func (s *Store) ListBranches() ([]string, error) {
	return s.listRefs(filepath.Join(s.root, gitpath.RefsHeadsPath))
}

// ListTags returns every tag name, sorted.
func (s *Store) ListTags() ([]string, error) {
	return s.listRefs(filepath.Join(s.root, gitpath.RefsTagsPath))
}

func (s *Store) listRefs(dir string) ([]string, error) {
	var names []string
	err := afero.Walk(s.fs, dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) && p == dir {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, xerrors.Errorf("could not list %s: %w", dir, err)
	}
	sort.Strings(names)
	return names, nil
}

// ReadBranch returns the commit identity a branch points at.
func (s *Store) ReadBranch(name string) (objecthash.Identity, error) {
	return s.readRefFile(s.branchPath(name))
}

// WriteBranch creates or overwrites a branch.
func (s *Store) WriteBranch(name string, id objecthash.Identity) error {
	if !IsRefNameValid(name) {
		return xerrors.Errorf("branch name %q: %w", name, ErrInvalidRef)
	}
	return s.writeRefFile(s.branchPath(name), id)
}

// CreateBranch creates a new branch, failing if it already exists.
func (s *Store) CreateBranch(name string, id objecthash.Identity) error {
	if !IsRefNameValid(name) {
		return xerrors.Errorf("branch name %q: %w", name, ErrInvalidRef)
	}
	exists, err := afero.Exists(s.fs, s.branchPath(name))
	if err != nil {
		return xerrors.Errorf("could not check branch %s: %w", name, err)
	}
	if exists {
		return xerrors.Errorf("branch %s: %w", name, ErrAlreadyExists)
	}
	return s.writeRefFile(s.branchPath(name), id)
}

// DeleteBranch removes a branch. Deleting the branch currently
// targeted by a symbolic HEAD is refused.
func (s *Store) DeleteBranch(name string) error {
	if err := s.guardCurrentBranch(name); err != nil {
		return err
	}
	if err := s.fs.Remove(s.branchPath(name)); err != nil {
		if os.IsNotExist(err) {
			return xerrors.Errorf("branch %s: %w", name, ErrNotFound)
		}
		return xerrors.Errorf("could not delete branch %s: %w", name, err)
	}
	return nil
}

// RenameBranch renames a branch. Renaming the branch currently
// targeted by a symbolic HEAD is refused.
func (s *Store) RenameBranch(oldName, newName string) error {
	if !IsRefNameValid(newName) {
		return xerrors.Errorf("branch name %q: %w", newName, ErrInvalidRef)
	}
	if err := s.guardCurrentBranch(oldName); err != nil {
		return err
	}

	id, err := s.ReadBranch(oldName)
	if err != nil {
		return err
	}
	exists, err := afero.Exists(s.fs, s.branchPath(newName))
	if err != nil {
		return xerrors.Errorf("could not check branch %s: %w", newName, err)
	}
	if exists {
		return xerrors.Errorf("branch %s: %w", newName, ErrAlreadyExists)
	}
	if err := s.writeRefFile(s.branchPath(newName), id); err != nil {
		return err
	}
	return s.fs.Remove(s.branchPath(oldName))
}

func (s *Store) guardCurrentBranch(name string) error {
	current, onBranch, err := s.CurrentBranch()
	if err != nil {
		return err
	}
	if onBranch && current == name {
		return xerrors.Errorf("branch %s: %w", name, ErrProtectedBranch)
	}
	return nil
}

// ReadTag returns the commit identity a tag points at.
func (s *Store) ReadTag(name string) (objecthash.Identity, error) {
	return s.readRefFile(s.tagPath(name))
}

// WriteTag creates a tag, failing if it already exists -- tags are
// meant to be stable markers, unlike branches.
func (s *Store) WriteTag(name string, id objecthash.Identity) error {
	if !IsRefNameValid(name) {
		return xerrors.Errorf("tag name %q: %w", name, ErrInvalidRef)
	}
	exists, err := afero.Exists(s.fs, s.tagPath(name))
	if err != nil {
		return xerrors.Errorf("could not check tag %s: %w", name, err)
	}
	if exists {
		return xerrors.Errorf("tag %s: %w", name, ErrAlreadyExists)
	}
	return s.writeRefFile(s.tagPath(name), id)
}

func (s *Store) readRefFile(p string) (objecthash.Identity, error) {
	raw, err := afero.ReadFile(s.fs, p)
	if err != nil {
		if os.IsNotExist(err) {
			return objecthash.NullIdentity, xerrors.Errorf("%s: %w", p, ErrNotFound)
		}
		return objecthash.NullIdentity, xerrors.Errorf("could not read %s: %w", p, err)
	}
	id, err := objecthash.Parse(string(bytes.TrimSpace(raw)))
	if err != nil {
		return objecthash.NullIdentity, xerrors.Errorf("malformed ref %s: %w", p, ErrInvalidRef)
	}
	return id, nil
}

func (s *Store) writeRefFile(p string, id objecthash.Identity) error {
	if err := s.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return xerrors.Errorf("could not create directory for %s: %w", p, err)
	}
	if err := afero.WriteFile(s.fs, p, []byte(id.String()+"\n"), 0o644); err != nil {
		return xerrors.Errorf("could not write %s: %w", p, err)
	}
	return nil
}

// IsRefNameValid reports whether name is usable as a branch or tag
// short name. It rejects path traversal (".."), backslashes, control
// characters, and leading dashes, in addition to the empty/trailing-
// dot/trailing-slash/".lock" checks.
func IsRefNameValid(name string) bool {
	if name == "" || name == "/" || name[len(name)-1] == '/' || name[len(name)-1] == '.' {
		return false
	}
	if strings.HasPrefix(name, "-") {
		return false
	}

	for i, c := range name {
		if c < 32 || c == 127 {
			return false
		}
		if c == '*' || c == '?' || c == '~' || c == ':' || c == '^' || c == '[' || c == '\\' || c == ' ' {
			return false
		}
		if i < len(name)-1 && name[i:i+2] == ".." {
			return false
		}
	}

	for _, segment := range strings.Split(name, "/") {
		if segment == "" || segment[0] == '.' || segment[len(segment)-1] == '.' || strings.HasSuffix(segment, ".lock") {
			return false
		}
	}
	return true
}
