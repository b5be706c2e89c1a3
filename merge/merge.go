// Package merge implements the three-way merge: it resolves each path
// independently against the merge base, materializes conflict blobs
// where both sides changed the same path differently, and writes a
// two-parent merge commit.
//
// This never touches the working tree -- callers invoke checkout
// afterward if they want the merged snapshot reflected on disk.
package merge

import (
	"bytes"
	"errors"
	"sort"
	"strings"

	"github.com/mintvcs/mintvcs/history"
	"github.com/mintvcs/mintvcs/object"
	"github.com/mintvcs/mintvcs/objecthash"
	"github.com/mintvcs/mintvcs/objstore"
	"github.com/mintvcs/mintvcs/refstore"
	"github.com/mintvcs/mintvcs/snapshot"
	"golang.org/x/xerrors"
)

// ErrNoCommonAncestor is returned when the current and target
// branches share no history.
var ErrNoCommonAncestor = errors.New("no common ancestor")

// Result reports the outcome of a merge.
type Result struct {
	// UpToDate is true when current already equals target; no commit
	// was created.
	UpToDate bool
	// MergeCommit is the identity of the new merge commit. Zero when
	// UpToDate.
	MergeCommit objecthash.Identity
	// Conflicts lists every path that needed a conflict blob, sorted.
	Conflicts []string
}

// Engine performs merges against a repository's stores.
type Engine struct {
	store  *objstore.Store
	refs   *refstore.Store
	walker *history.Walker
}

// New returns an Engine operating on the given stores.
func New(store *objstore.Store, refs *refstore.Store) *Engine {
	return &Engine{store: store, refs: refs, walker: history.New(store)}
}

// Merge merges targetBranch into whatever HEAD currently points at.
func (e *Engine) Merge(targetBranch string) (Result, error) {
	currentID, hasCurrent, err := e.refs.ResolveHEAD()
	if err != nil {
		return Result{}, err
	}
	if !hasCurrent {
		return Result{}, xerrors.Errorf("HEAD is unborn: %w", ErrNoCommonAncestor)
	}

	targetID, err := e.refs.ReadBranch(targetBranch)
	if err != nil {
		return Result{}, err
	}

	if currentID == targetID {
		return Result{UpToDate: true}, nil
	}

	baseID, ok, err := e.walker.LCA(currentID, targetID)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{}, ErrNoCommonAncestor
	}

	baseFiles, err := e.flattenCommit(baseID)
	if err != nil {
		return Result{}, err
	}
	currentFiles, err := e.flattenCommit(currentID)
	if err != nil {
		return Result{}, err
	}
	targetFiles, err := e.flattenCommit(targetID)
	if err != nil {
		return Result{}, err
	}

	paths := unionKeys(baseFiles, currentFiles, targetFiles)

	merged := make([]snapshot.Entry, 0, len(paths))
	var conflicts []string

	for _, p := range paths {
		// Absent entries stand in for epsilon.
		b := baseFiles[p]
		s := currentFiles[p]
		t := targetFiles[p]

		switch {
		case s == t:
			if !s.IsZero() {
				merged = append(merged, snapshot.Entry{Path: p, Identity: s})
			}
		case s == b && t != b:
			merged = append(merged, snapshot.Entry{Path: p, Identity: t})
		case t == b && s != b:
			merged = append(merged, snapshot.Entry{Path: p, Identity: s})
		default:
			conflictID, err := e.writeConflictBlob(p, s, t)
			if err != nil {
				return Result{}, err
			}
			merged = append(merged, snapshot.Entry{Path: p, Identity: conflictID})
			conflicts = append(conflicts, p)
		}
	}

	sort.Strings(conflicts)

	mergedTreeID, err := snapshot.Build(e.store, merged)
	if err != nil {
		return Result{}, err
	}

	commit := object.NewCommit(mergedTreeID, object.NewSignature("merge", "merge@mintvcs"), object.CommitOptions{
		Message: "Merge branch " + targetBranch + " into HEAD",
		Parents: []objecthash.Identity{currentID, targetID},
	})
	if err := e.store.PutCanonical(commit.ID(), commit.ToObject().Canonical()); err != nil {
		return Result{}, err
	}

	if err := e.refs.UpdateCurrent(commit.ID()); err != nil {
		return Result{}, err
	}

	return Result{MergeCommit: commit.ID(), Conflicts: conflicts}, nil
}

func (e *Engine) flattenCommit(id objecthash.Identity) (map[string]objecthash.Identity, error) {
	canonical, err := e.store.GetCanonical(id)
	if err != nil {
		return nil, xerrors.Errorf("could not read commit %s: %w", id, err)
	}
	obj, err := object.Decode(canonical)
	if err != nil {
		return nil, xerrors.Errorf("could not decode commit %s: %w", id, err)
	}
	commit, err := object.AsCommit(obj)
	if err != nil {
		return nil, xerrors.Errorf("could not parse commit %s: %w", id, err)
	}
	return snapshot.Flatten(e.store, commit.TreeID())
}

// writeConflictBlob builds and stores the conflict blob for a path
// where both sides diverged from the base.
func (e *Engine) writeConflictBlob(path string, source, target objecthash.Identity) (objecthash.Identity, error) {
	sourceContent, err := e.readBlobContent(source)
	if err != nil {
		return objecthash.NullIdentity, xerrors.Errorf("path %s: %w", path, err)
	}
	targetContent, err := e.readBlobContent(target)
	if err != nil {
		return objecthash.NullIdentity, xerrors.Errorf("path %s: %w", path, err)
	}

	buf := new(bytes.Buffer)
	buf.WriteString("<<<<<<< SOURCE\n")
	buf.Write(ensureTrailingNewline(sourceContent))
	buf.WriteString("=======\n")
	buf.Write(ensureTrailingNewline(targetContent))
	buf.WriteString(">>>>>>> TARGET\n")

	blob := object.NewBlob(buf.Bytes())
	if err := e.store.PutCanonical(blob.ID(), blob.ToObject().Canonical()); err != nil {
		return objecthash.NullIdentity, err
	}
	return blob.ID(), nil
}

func (e *Engine) readBlobContent(id objecthash.Identity) ([]byte, error) {
	if id.IsZero() {
		return nil, nil
	}
	canonical, err := e.store.GetCanonical(id)
	if err != nil {
		return nil, xerrors.Errorf("could not read blob %s: %w", id, err)
	}
	obj, err := object.Decode(canonical)
	if err != nil {
		return nil, xerrors.Errorf("could not decode blob %s: %w", id, err)
	}
	return object.AsBlob(obj).Bytes(), nil
}

func ensureTrailingNewline(content []byte) []byte {
	if len(content) == 0 {
		return content
	}
	if strings.HasSuffix(string(content), "\n") {
		return content
	}
	return append(append([]byte{}, content...), '\n')
}

func unionKeys(maps ...map[string]objecthash.Identity) []string {
	seen := map[string]struct{}{}
	for _, m := range maps {
		for k := range m {
			seen[k] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
