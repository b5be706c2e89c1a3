// Package snapshot builds the tree object graph for a commit from the
// flat index, with full recursion over arbitrarily nested paths.
//
// Intermediate directories are kept in an arena -- a map keyed by
// directory path -- addressed by string keys rather than assembled as
// a graph of heap-allocated nodes with child pointers. The shape is
// always a tree during construction (no sharing, no cycles), so a
// pointer graph was never required.
package snapshot

import (
	"sort"
	"strings"

	"github.com/mintvcs/mintvcs/object"
	"github.com/mintvcs/mintvcs/objecthash"
	"github.com/mintvcs/mintvcs/objstore"
	"golang.org/x/xerrors"
)

// dir is one directory level in the arena: its staged blobs, and the
// names of its immediate subdirectories.
type dir struct {
	blobs   map[string]objecthash.Identity
	subdirs map[string]struct{}
}

func newDir() *dir {
	return &dir{blobs: map[string]objecthash.Identity{}, subdirs: map[string]struct{}{}}
}

// Entry is one staged path and the blob identity to place at it.
type Entry struct {
	Path     string
	Identity objecthash.Identity
}

// Build constructs the tree graph for entries and writes every new
// tree object to store, returning the root tree's identity. entries
// need not be pre-sorted; Build establishes lexicographic order itself
// at every directory level.
func Build(store *objstore.Store, entries []Entry) (objecthash.Identity, error) {
	arena := map[string]*dir{"": newDir()}

	ensureDir := func(path string) *dir {
		if d, ok := arena[path]; ok {
			return d
		}
		d := newDir()
		arena[path] = d
		return d
	}

	for _, e := range entries {
		components := strings.Split(e.Path, "/")
		parent := ""
		for i := 0; i < len(components)-1; i++ {
			child := components[i]
			d := ensureDir(parent)
			d.subdirs[child] = struct{}{}
			if parent == "" {
				parent = child
			} else {
				parent = parent + "/" + child
			}
			ensureDir(parent)
		}
		leaf := components[len(components)-1]
		ensureDir(parent).blobs[leaf] = e.Identity
	}

	var writeDir func(path string) (objecthash.Identity, error)
	writeDir = func(path string) (objecthash.Identity, error) {
		d, ok := arena[path]
		if !ok {
			d = newDir()
		}

		names := make([]string, 0, len(d.blobs)+len(d.subdirs))
		for name := range d.blobs {
			names = append(names, name)
		}
		for name := range d.subdirs {
			names = append(names, name)
		}
		sort.Strings(names)

		treeEntries := make([]object.TreeEntry, 0, len(names))
		for _, name := range names {
			if id, isBlob := d.blobs[name]; isBlob {
				treeEntries = append(treeEntries, object.TreeEntry{
					Mode: object.ModeFile,
					Name: name,
					ID:   id,
				})
				continue
			}

			childPath := name
			if path != "" {
				childPath = path + "/" + name
			}
			childID, err := writeDir(childPath)
			if err != nil {
				return objecthash.NullIdentity, err
			}
			treeEntries = append(treeEntries, object.TreeEntry{
				Mode: object.ModeDirectory,
				Name: name,
				ID:   childID,
			})
		}

		tree := object.NewTree(treeEntries)
		if err := store.PutCanonical(tree.ID(), tree.ToObject().Canonical()); err != nil {
			return objecthash.NullIdentity, xerrors.Errorf("could not write tree %q: %w", path, err)
		}
		return tree.ID(), nil
	}

	return writeDir("")
}

// Flatten reads the tree named by id, recursively, and returns its
// files as a flat path -> blob identity map. This is the inverse of
// Build, used by checkout, status, and merge to compare a commit's
// snapshot against the index or working tree without reasoning about
// tree nesting themselves.
func Flatten(store *objstore.Store, id objecthash.Identity) (map[string]objecthash.Identity, error) {
	out := map[string]objecthash.Identity{}
	if err := flattenInto(store, id, "", out); err != nil {
		return nil, err
	}
	return out, nil
}

func flattenInto(store *objstore.Store, id objecthash.Identity, prefix string, out map[string]objecthash.Identity) error {
	canonical, err := store.GetCanonical(id)
	if err != nil {
		return xerrors.Errorf("could not read tree %s: %w", id, err)
	}
	obj, err := object.Decode(canonical)
	if err != nil {
		return xerrors.Errorf("could not decode tree %s: %w", id, err)
	}
	tree, err := object.AsTree(obj)
	if err != nil {
		return xerrors.Errorf("could not parse tree %s: %w", id, err)
	}

	for _, e := range tree.Entries() {
		path := e.Name
		if prefix != "" {
			path = prefix + "/" + e.Name
		}
		if e.Mode == object.ModeDirectory {
			if err := flattenInto(store, e.ID, path, out); err != nil {
				return err
			}
			continue
		}
		out[path] = e.ID
	}
	return nil
}
