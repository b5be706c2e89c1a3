// Package status classifies every path into one of five buckets by
// comparing the HEAD commit's tree, the index, and the working tree,
// built from the same store/index/worktree primitives every other
// component here uses.
package status

import (
	"sort"

	"github.com/mintvcs/mintvcs/index"
	"github.com/mintvcs/mintvcs/object"
	"github.com/mintvcs/mintvcs/objecthash"
	"github.com/mintvcs/mintvcs/objstore"
	"github.com/mintvcs/mintvcs/refstore"
	"github.com/mintvcs/mintvcs/snapshot"
	"github.com/mintvcs/mintvcs/worktree"
	"golang.org/x/xerrors"
)

// Report is the classification of every path in play, each list
// sorted lexicographically.
type Report struct {
	Staged            []string
	ModifiedNotStaged []string
	Deleted           []string
	Untracked         []string
	// Branch is the current branch name; Detached is true when HEAD
	// has no branch (a raw commit identity).
	Branch   string
	Detached bool
}

// IsClean reports whether every bucket is empty.
func (r Report) IsClean() bool {
	return len(r.Staged) == 0 && len(r.ModifiedNotStaged) == 0 &&
		len(r.Deleted) == 0 && len(r.Untracked) == 0
}

// Compute builds a Report by comparing HEAD's tree (read through refs
// and store), idx, and the files tree enumerates.
func Compute(store *objstore.Store, refs *refstore.Store, idx *index.Index, tree *worktree.Tree) (Report, error) {
	report := Report{}

	branch, ok, err := refs.CurrentBranch()
	if err != nil {
		return Report{}, err
	}
	report.Detached = !ok
	report.Branch = branch

	headID, hasHead, err := refs.ResolveHEAD()
	if err != nil {
		return Report{}, err
	}

	var headFiles map[string]objecthash.Identity
	if hasHead {
		commitCanonical, err := store.GetCanonical(headID)
		if err != nil {
			return Report{}, xerrors.Errorf("could not read HEAD commit: %w", err)
		}
		commitObj, err := object.Decode(commitCanonical)
		if err != nil {
			return Report{}, xerrors.Errorf("could not decode HEAD commit: %w", err)
		}
		commit, err := object.AsCommit(commitObj)
		if err != nil {
			return Report{}, xerrors.Errorf("could not parse HEAD commit: %w", err)
		}
		headFiles, err = snapshot.Flatten(store, commit.TreeID())
		if err != nil {
			return Report{}, err
		}
	} else {
		headFiles = map[string]objecthash.Identity{}
	}

	workingFiles, err := tree.Enumerate()
	if err != nil {
		return Report{}, err
	}
	inWorkingTree := make(map[string]struct{}, len(workingFiles))
	for _, p := range workingFiles {
		inWorkingTree[p] = struct{}{}
	}

	staged := map[string]struct{}{}
	modified := map[string]struct{}{}
	deleted := map[string]struct{}{}

	for _, p := range idx.Paths() {
		entry, _ := idx.Get(p)
		if _, present := inWorkingTree[p]; present {
			content, err := tree.ReadFile(p)
			if err != nil {
				return Report{}, err
			}
			blob := object.NewBlob(content)
			if blob.ID() != entry.Identity {
				modified[p] = struct{}{}
				continue
			}
			headBlobID, inHead := headFiles[p]
			if !inHead || headBlobID != entry.Identity {
				staged[p] = struct{}{}
			}
			continue
		}

		deleted[p] = struct{}{}
		headBlobID, inHead := headFiles[p]
		if !inHead || headBlobID != entry.Identity {
			staged[p] = struct{}{}
		}
	}

	untracked := map[string]struct{}{}
	for _, p := range workingFiles {
		if _, staged := idx.Get(p); !staged {
			untracked[p] = struct{}{}
		}
	}

	report.Staged = sortedKeys(staged)
	report.ModifiedNotStaged = sortedKeys(modified)
	report.Deleted = sortedKeys(deleted)
	report.Untracked = sortedKeys(untracked)
	return report, nil
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
