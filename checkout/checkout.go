// Package checkout resolves a target (branch, commit, or ref) and
// materializes its tree into the working directory and index. The
// target can be a branch name, HEAD, a refs/ path, or an abbreviated
// hex commit prefix.
package checkout

import (
	"errors"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mintvcs/mintvcs/index"
	"github.com/mintvcs/mintvcs/internal/gitpath"
	"github.com/mintvcs/mintvcs/object"
	"github.com/mintvcs/mintvcs/objecthash"
	"github.com/mintvcs/mintvcs/objstore"
	"github.com/mintvcs/mintvcs/refstore"
	"github.com/mintvcs/mintvcs/snapshot"
	"github.com/mintvcs/mintvcs/worktree"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// ErrUnresolvedRef is returned when a target can't be resolved to a
// commit by any of the strategies in order, or an abbreviated hex
// matches more than one stored object.
var ErrUnresolvedRef = errors.New("could not resolve checkout target")

const minAbbreviatedLen = 7

// Result reports what a checkout did, for the caller to print.
type Result struct {
	CommitID objecthash.Identity
	// Branch is the branch name switched to, empty when the resulting
	// HEAD is detached.
	Branch string
}

// Engine performs checkouts against a repository's stores.
type Engine struct {
	fs    afero.Fs
	root  string
	store *objstore.Store
	refs  *refstore.Store
}

// New returns an Engine operating on the given stores.
func New(fs afero.Fs, root string, store *objstore.Store, refs *refstore.Store) *Engine {
	return &Engine{fs: fs, root: root, store: store, refs: refs}
}

// resolve tries, in order: branch name, HEAD, a refs/ path, then an
// abbreviated hex prefix.
func (e *Engine) resolve(target string) (objecthash.Identity, string, error) {
	if id, err := e.refs.ReadBranch(target); err == nil {
		return id, target, nil
	} else if !errors.Is(err, refstore.ErrNotFound) {
		return objecthash.NullIdentity, "", err
	}

	if target == "HEAD" {
		id, ok, err := e.refs.ResolveHEAD()
		if err != nil {
			return objecthash.NullIdentity, "", err
		}
		if !ok {
			return objecthash.NullIdentity, "", xerrors.Errorf("HEAD is unborn: %w", ErrUnresolvedRef)
		}
		return id, "", nil
	}

	if strings.HasPrefix(target, "refs/") {
		id, err := e.readRefPath(target)
		if err != nil {
			return objecthash.NullIdentity, "", err
		}
		return id, "", nil
	}

	if isHex(target) && len(target) >= minAbbreviatedLen {
		id, err := e.resolveAbbreviated(target)
		if err != nil {
			return objecthash.NullIdentity, "", err
		}
		return id, "", nil
	}

	return objecthash.NullIdentity, "", xerrors.Errorf("%q: %w", target, ErrUnresolvedRef)
}

func (e *Engine) readRefPath(refPath string) (objecthash.Identity, error) {
	name := strings.TrimPrefix(refPath, gitpath.RefsHeadsPath+"/")
	if name != refPath {
		return e.refs.ReadBranch(name)
	}
	name = strings.TrimPrefix(refPath, gitpath.RefsTagsPath+"/")
	if name != refPath {
		return e.refs.ReadTag(name)
	}
	return objecthash.NullIdentity, xerrors.Errorf("%q: %w", refPath, ErrUnresolvedRef)
}

func (e *Engine) resolveAbbreviated(prefix string) (objecthash.Identity, error) {
	if len(prefix) < 2 {
		return objecthash.NullIdentity, xerrors.Errorf("%q: %w", prefix, ErrUnresolvedRef)
	}
	dirName := prefix[:2]
	dir := filepath.Join(e.root, gitpath.ObjectsPath, dirName)

	var matches []objecthash.Identity
	entries, err := afero.ReadDir(e.fs, dir)
	if err != nil {
		return objecthash.NullIdentity, xerrors.Errorf("%q: %w", prefix, ErrUnresolvedRef)
	}
	for _, entry := range entries {
		id := objecthash.Identity(dirName + entry.Name())
		if id.HasPrefix(prefix) {
			matches = append(matches, id)
		}
	}

	switch len(matches) {
	case 0:
		return objecthash.NullIdentity, xerrors.Errorf("%q: %w", prefix, ErrUnresolvedRef)
	case 1:
		return matches[0], nil
	default:
		return objecthash.NullIdentity, xerrors.Errorf("%q is ambiguous: %w", prefix, ErrUnresolvedRef)
	}
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return false
		}
	}
	return true
}

// Checkout resolves target and materializes it into the working tree
// and index.
func (e *Engine) Checkout(target string) (Result, error) {
	commitID, branch, err := e.resolve(target)
	if err != nil {
		return Result{}, err
	}

	commitCanonical, err := e.store.GetCanonical(commitID)
	if err != nil {
		return Result{}, xerrors.Errorf("could not read commit %s: %w", commitID, err)
	}
	commitObj, err := object.Decode(commitCanonical)
	if err != nil {
		return Result{}, xerrors.Errorf("could not decode commit %s: %w", commitID, err)
	}
	commit, err := object.AsCommit(commitObj)
	if err != nil {
		return Result{}, xerrors.Errorf("could not parse commit %s: %w", commitID, err)
	}

	newTracked, err := snapshot.Flatten(e.store, commit.TreeID())
	if err != nil {
		return Result{}, err
	}

	idx, err := index.Load(e.fs, e.root)
	if err != nil {
		return Result{}, err
	}

	tree := worktree.New(e.fs, workTreeRoot(e.root), gitpath.DotVCSPath, worktree.NoIgnores())

	// Compute new-tracked from the target tree first, then delete
	// old-tracked \ new-tracked, instead of clearing every previously
	// tracked path unconditionally.
	for _, oldPath := range idx.Paths() {
		if _, stillTracked := newTracked[oldPath]; stillTracked {
			continue
		}
		if err := tree.RemoveFile(oldPath); err != nil {
			return Result{}, err
		}
	}

	paths := make([]string, 0, len(newTracked))
	for p := range newTracked {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		blobID := newTracked[p]
		content, err := e.store.GetCanonical(blobID)
		if err != nil {
			return Result{}, xerrors.Errorf("could not read blob for %s: %w", p, err)
		}
		obj, err := object.Decode(content)
		if err != nil {
			return Result{}, xerrors.Errorf("could not decode blob for %s: %w", p, err)
		}
		if err := tree.WriteFile(p, object.AsBlob(obj).Bytes()); err != nil {
			return Result{}, err
		}
	}

	idx.Reset()
	for _, p := range paths {
		idx.Put(p, newTracked[p])
	}
	if err := idx.Save(); err != nil {
		return Result{}, err
	}

	if branch != "" {
		if err := e.refs.SetHeadSymbolic(branch); err != nil {
			return Result{}, err
		}
	} else {
		if err := e.refs.SetHeadDirect(commitID); err != nil {
			return Result{}, err
		}
	}

	return Result{CommitID: commitID, Branch: branch}, nil
}

// workTreeRoot maps a REPO path (e.g. ".mintvcs") to the working tree
// root it lives under.
func workTreeRoot(root string) string {
	return filepath.Dir(root)
}
