// Package history walks the commit parent DAG: listing a commit's
// parents and finding the lowest common ancestor of two commits, built
// from the object package's Commit/parent accessors the same way every
// other component here composes objstore + object.
package history

import (
	"github.com/mintvcs/mintvcs/object"
	"github.com/mintvcs/mintvcs/objecthash"
	"github.com/mintvcs/mintvcs/objstore"
	"golang.org/x/xerrors"
)

// Walker reads commits out of a Store to walk the history DAG.
type Walker struct {
	store *objstore.Store
}

// New returns a Walker reading commits from store.
func New(store *objstore.Store) *Walker {
	return &Walker{store: store}
}

func (w *Walker) commit(id objecthash.Identity) (*object.Commit, error) {
	canonical, err := w.store.GetCanonical(id)
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
	return c, nil
}

// Parents returns the identities of a commit's parents, in the order
// they were recorded: none for a root commit, one for a regular
// commit, two or more for a merge.
func (w *Walker) Parents(id objecthash.Identity) ([]objecthash.Identity, error) {
	c, err := w.commit(id)
	if err != nil {
		return nil, err
	}
	return c.ParentIDs(), nil
}

// LCA finds the lowest common ancestor of a and b by bidirectional
// breadth-first search over the parent relation, with memoization of
// already-visited commits on each side. It returns (zero, false, nil)
// when the two histories are disjoint.
//
// Ties among multiple minimal common ancestors are broken by
// first-seen order of the search; this is a documented best-effort
// choice, not a canonical one.
func (w *Walker) LCA(a, b objecthash.Identity) (objecthash.Identity, bool, error) {
	if a == b {
		return a, true, nil
	}

	visitedFromA := map[objecthash.Identity]struct{}{a: {}}
	visitedFromB := map[objecthash.Identity]struct{}{b: {}}
	frontierA := []objecthash.Identity{a}
	frontierB := []objecthash.Identity{b}

	for len(frontierA) > 0 || len(frontierB) > 0 {
		if len(frontierA) > 0 {
			next, found, err := w.step(frontierA, visitedFromA, visitedFromB)
			if err != nil {
				return objecthash.NullIdentity, false, err
			}
			if found != objecthash.NullIdentity {
				return found, true, nil
			}
			frontierA = next
		}
		if len(frontierB) > 0 {
			next, found, err := w.step(frontierB, visitedFromB, visitedFromA)
			if err != nil {
				return objecthash.NullIdentity, false, err
			}
			if found != objecthash.NullIdentity {
				return found, true, nil
			}
			frontierB = next
		}
	}

	return objecthash.NullIdentity, false, nil
}

// step expands one BFS layer from frontier, recording newly discovered
// commits into visited. If any newly discovered commit is already in
// otherSide, the search has found a common ancestor.
func (w *Walker) step(
	frontier []objecthash.Identity,
	visited map[objecthash.Identity]struct{},
	otherSide map[objecthash.Identity]struct{},
) ([]objecthash.Identity, objecthash.Identity, error) {
	var next []objecthash.Identity
	for _, id := range frontier {
		parents, err := w.Parents(id)
		if err != nil {
			return nil, objecthash.NullIdentity, err
		}
		for _, p := range parents {
			if _, ok := visited[p]; ok {
				continue
			}
			visited[p] = struct{}{}
			if _, ok := otherSide[p]; ok {
				return nil, p, nil
			}
			next = append(next, p)
		}
	}
	return next, objecthash.NullIdentity, nil
}
