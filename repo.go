// Package mintvcs wires together the object store, reference store,
// index, and working tree into the Repository type every command-line
// operation acts on. There are no packfiles and no bare-repository
// backend abstraction: a single afero.Fs serves both the REPO
// directory and the working tree.
package mintvcs

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/mintvcs/mintvcs/checkout"
	"github.com/mintvcs/mintvcs/config"
	"github.com/mintvcs/mintvcs/index"
	"github.com/mintvcs/mintvcs/internal/gitpath"
	"github.com/mintvcs/mintvcs/merge"
	"github.com/mintvcs/mintvcs/object"
	"github.com/mintvcs/mintvcs/objecthash"
	"github.com/mintvcs/mintvcs/objstore"
	"github.com/mintvcs/mintvcs/refstore"
	"github.com/mintvcs/mintvcs/snapshot"
	"github.com/mintvcs/mintvcs/status"
	"github.com/mintvcs/mintvcs/worktree"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// Sentinel errors for the Repository-level operations. Lower-level
// packages (objstore, refstore, index, checkout, merge) define their
// own; these cover what only this package can detect.
var (
	// ErrNotARepo is returned when the target directory has no REPO
	// (.mintvcs) directory.
	ErrNotARepo = errors.New("not a mintvcs repository")
	// ErrRepoExists is returned by Init when a REPO directory already
	// exists at the target.
	ErrRepoExists = errors.New("mintvcs repository already exists")
	// ErrIndexEmpty is returned by Commit when nothing is staged.
	ErrIndexEmpty = errors.New("nothing staged for commit")
	// ErrUnbornHEAD is returned by CreateBranch while HEAD is still
	// unborn. Merge reports an unborn HEAD through merge's own
	// ErrNoCommonAncestor instead.
	ErrUnbornHEAD = errors.New("HEAD has no commits yet")
)

// DefaultBranch is the branch HEAD points to symbolically right after
// Init, before any commit exists.
const DefaultBranch = "main"

// Repository is a single REPO directory plus the working tree it
// tracks, and the stores wired on top of them.
type Repository struct {
	fs      afero.Fs
	workDir string
	repoDir string

	Objects *objstore.Store
	Refs    *refstore.Store
}

// Init creates the REPO skeleton (objects/, refs/heads/, refs/tags/,
// HEAD, config, description) under workDir/.mintvcs and returns the
// opened Repository. Fails with ErrRepoExists if one is already there.
func Init(fs afero.Fs, workDir string) (*Repository, error) {
	repoDir := filepath.Join(workDir, gitpath.DotVCSPath)

	exists, err := afero.DirExists(fs, repoDir)
	if err != nil {
		return nil, xerrors.Errorf("could not check %s: %w", repoDir, err)
	}
	if exists {
		return nil, xerrors.Errorf("%s: %w", repoDir, ErrRepoExists)
	}

	for _, dir := range []string{gitpath.ObjectsPath, gitpath.RefsHeadsPath, gitpath.RefsTagsPath} {
		if err := fs.MkdirAll(filepath.Join(repoDir, dir), 0o755); err != nil {
			return nil, xerrors.Errorf("could not create %s: %w", dir, err)
		}
	}

	if err := afero.WriteFile(fs, filepath.Join(repoDir, gitpath.DescriptionPath),
		[]byte("Unnamed repository; edit this file to name it for display.\n"), 0o644); err != nil {
		return nil, xerrors.Errorf("could not write description: %w", err)
	}

	if err := config.Save(fs, repoDir, config.Default()); err != nil {
		return nil, err
	}

	refs := refstore.New(fs, repoDir)
	if err := refs.SetHeadSymbolic(DefaultBranch); err != nil {
		return nil, err
	}

	return Open(fs, workDir)
}

// Open loads an existing repository rooted at workDir. Fails with
// ErrNotARepo if no REPO directory is found there.
func Open(fs afero.Fs, workDir string) (*Repository, error) {
	repoDir := filepath.Join(workDir, gitpath.DotVCSPath)

	exists, err := afero.DirExists(fs, repoDir)
	if err != nil {
		return nil, xerrors.Errorf("could not check %s: %w", repoDir, err)
	}
	if !exists {
		return nil, xerrors.Errorf("%s: %w", workDir, ErrNotARepo)
	}

	return &Repository{
		fs:      fs,
		workDir: workDir,
		repoDir: repoDir,
		Objects: objstore.New(fs, repoDir),
		Refs:    refstore.New(fs, repoDir),
	}, nil
}

// WorkDir returns the absolute path to the working tree root.
func (r *Repository) WorkDir() string {
	return r.workDir
}

// RepoDir returns the absolute path to the REPO directory (.mintvcs).
func (r *Repository) RepoDir() string {
	return r.repoDir
}

func (r *Repository) loadIndex() (*index.Index, error) {
	return index.Load(r.fs, r.repoDir)
}

func (r *Repository) workTree() (*worktree.Tree, error) {
	ignores, err := worktree.LoadIgnores(r.fs, r.workDir)
	if err != nil {
		return nil, err
	}
	return worktree.New(r.fs, r.workDir, gitpath.DotVCSPath, ignores), nil
}

// ComputeObjectID validates content against kind's grammar (tree and
// commit bodies must parse; a blob is always valid) and returns the
// identity it would be stored under, without touching the store. This
// is what `hash-object` without `-w` uses.
func ComputeObjectID(kind object.Kind, content []byte) (objecthash.Identity, error) {
	obj := object.New(kind, content)
	switch kind {
	case object.KindTree:
		if _, err := object.AsTree(obj); err != nil {
			return objecthash.NullIdentity, err
		}
	case object.KindCommit:
		if _, err := object.AsCommit(obj); err != nil {
			return objecthash.NullIdentity, err
		}
	}
	return obj.ID(), nil
}

// WriteObject validates and stores content as an object of the given
// kind, returning its identity. This is what `hash-object -w` uses.
// Staging and merge-conflict materialization don't go through it: they
// build blobs with NewBlob and store them with PutCanonical directly.
func (r *Repository) WriteObject(kind object.Kind, content []byte) (objecthash.Identity, error) {
	id, err := ComputeObjectID(kind, content)
	if err != nil {
		return objecthash.NullIdentity, err
	}
	if err := r.Objects.PutCanonical(id, object.New(kind, content).Canonical()); err != nil {
		return objecthash.NullIdentity, err
	}
	return id, nil
}

// Stage implements the `add` command: each element of paths is either
// a file, a directory (staged recursively), or the literal token "."
// (stage the entire working tree).
func (r *Repository) Stage(paths []string) error {
	idx, err := r.loadIndex()
	if err != nil {
		return err
	}
	tree, err := r.workTree()
	if err != nil {
		return err
	}

	for _, p := range paths {
		if p == "." {
			all, err := tree.Enumerate()
			if err != nil {
				return err
			}
			for _, rel := range all {
				if err := r.stageOne(idx, tree, rel); err != nil {
					return err
				}
			}
			continue
		}

		rel, err := relPath(r.workDir, p)
		if err != nil {
			return err
		}
		if tree.IsIgnored(rel) {
			continue
		}

		isDir, err := tree.IsDir(rel)
		if err != nil {
			return err
		}
		if isDir {
			all, err := tree.Enumerate()
			if err != nil {
				return err
			}
			prefix := rel + "/"
			for _, candidate := range all {
				if candidate == rel || strings.HasPrefix(candidate, prefix) {
					if err := r.stageOne(idx, tree, candidate); err != nil {
						return err
					}
				}
			}
			continue
		}

		if err := r.stageOne(idx, tree, rel); err != nil {
			return err
		}
	}

	return idx.Save()
}

func (r *Repository) stageOne(idx *index.Index, tree *worktree.Tree, relPath string) error {
	if tree.IsIgnored(relPath) {
		return nil
	}
	content, err := tree.ReadFile(relPath)
	if err != nil {
		return err
	}
	blob := object.NewBlob(content)
	if err := r.Objects.PutCanonical(blob.ID(), blob.ToObject().Canonical()); err != nil {
		return err
	}
	idx.Put(relPath, blob.ID())
	return nil
}

func relPath(workDir, p string) (string, error) {
	abs := p
	if !filepath.IsAbs(p) {
		abs = filepath.Join(workDir, p)
	}
	rel, err := filepath.Rel(workDir, abs)
	if err != nil {
		return "", xerrors.Errorf("could not resolve %s relative to %s: %w", p, workDir, err)
	}
	return filepath.ToSlash(rel), nil
}

// Commit implements the `commit` command: it builds a tree from the
// index, writes a commit object with HEAD's current commit (if any) as
// its sole parent, and updates HEAD's current target. Fails with
// ErrIndexEmpty if nothing is staged.
func (r *Repository) Commit(message string, author object.Signature) (objecthash.Identity, error) {
	idx, err := r.loadIndex()
	if err != nil {
		return objecthash.NullIdentity, err
	}
	if idx.Len() == 0 {
		return objecthash.NullIdentity, ErrIndexEmpty
	}

	entries := make([]snapshot.Entry, 0, idx.Len())
	for _, p := range idx.Paths() {
		e, _ := idx.Get(p)
		entries = append(entries, snapshot.Entry{Path: p, Identity: e.Identity})
	}
	treeID, err := snapshot.Build(r.Objects, entries)
	if err != nil {
		return objecthash.NullIdentity, err
	}

	var parents []objecthash.Identity
	headID, hasHead, err := r.Refs.ResolveHEAD()
	if err != nil {
		return objecthash.NullIdentity, err
	}
	if hasHead {
		parents = []objecthash.Identity{headID}
	}

	commit := object.NewCommit(treeID, author, object.CommitOptions{
		Message: message,
		Parents: parents,
	})
	if err := r.Objects.PutCanonical(commit.ID(), commit.ToObject().Canonical()); err != nil {
		return objecthash.NullIdentity, err
	}
	if err := r.Refs.UpdateCurrent(commit.ID()); err != nil {
		return objecthash.NullIdentity, err
	}
	return commit.ID(), nil
}

// Log walks the first-parent chain from HEAD, returning commits newest
// first.
func (r *Repository) Log() ([]*object.Commit, error) {
	id, hasHead, err := r.Refs.ResolveHEAD()
	if err != nil {
		return nil, err
	}
	if !hasHead {
		return nil, nil
	}

	var commits []*object.Commit
	for {
		canonical, err := r.Objects.GetCanonical(id)
		if err != nil {
			return nil, xerrors.Errorf("could not read commit %s: %w", id, err)
		}
		obj, err := object.Decode(canonical)
		if err != nil {
			return nil, xerrors.Errorf("could not decode commit %s: %w", id, err)
		}
		c, err := object.AsCommit(obj)
		if err != nil {
			return nil, xerrors.Errorf("could not parse commit %s: %w", id, err)
		}
		commits = append(commits, c)

		parents := c.ParentIDs()
		if len(parents) == 0 {
			break
		}
		id = parents[0]
	}
	return commits, nil
}

// Status classifies every tracked and working-tree path into staged,
// modified, deleted, untracked, or clean.
func (r *Repository) Status() (status.Report, error) {
	idx, err := r.loadIndex()
	if err != nil {
		return status.Report{}, err
	}
	tree, err := r.workTree()
	if err != nil {
		return status.Report{}, err
	}
	return status.Compute(r.Objects, r.Refs, idx, tree)
}

// Checkout resolves target (branch, commit, or ref) and materializes
// it into the working tree and index.
func (r *Repository) Checkout(target string) (checkout.Result, error) {
	engine := checkout.New(r.fs, r.repoDir, r.Objects, r.Refs)
	return engine.Checkout(target)
}

// CreateBranch creates a branch named name pointing at HEAD's current
// commit. Fails with ErrUnbornHEAD if there is no commit yet.
func (r *Repository) CreateBranch(name string) (objecthash.Identity, error) {
	id, hasHead, err := r.Refs.ResolveHEAD()
	if err != nil {
		return objecthash.NullIdentity, err
	}
	if !hasHead {
		return objecthash.NullIdentity, ErrUnbornHEAD
	}
	if err := r.Refs.CreateBranch(name, id); err != nil {
		return objecthash.NullIdentity, err
	}
	return id, nil
}

// ListBranches returns every local branch name, sorted.
func (r *Repository) ListBranches() ([]string, error) {
	return r.Refs.ListBranches()
}

// DeleteBranch removes a branch. Refused if it's the currently
// checked-out branch.
func (r *Repository) DeleteBranch(name string) error {
	return r.Refs.DeleteBranch(name)
}

// RenameBranch renames a branch. Refused if it's the currently
// checked-out branch.
func (r *Repository) RenameBranch(oldName, newName string) error {
	return r.Refs.RenameBranch(oldName, newName)
}

// Merge merges targetBranch into whatever HEAD currently points at. It
// does not touch the working tree; callers that want the merged
// snapshot on disk call Checkout("HEAD") afterward.
func (r *Repository) Merge(targetBranch string) (merge.Result, error) {
	engine := merge.New(r.Objects, r.Refs)
	return engine.Merge(targetBranch)
}
