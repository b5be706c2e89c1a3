package object

import (
	"bytes"
	"errors"

	"github.com/mintvcs/mintvcs/internal/readutil"
	"github.com/mintvcs/mintvcs/objecthash"
	"golang.org/x/xerrors"
)

// EntryMode is the mode of an entry inside a tree: this system only
// distinguishes files (100644) from directories (40000) -- no
// executable bit, no symlinks, no gitlinks.
type EntryMode string

// The two supported entry modes.
const (
	ModeFile      EntryMode = "100644"
	ModeDirectory EntryMode = "40000"
)

// Kind returns the object kind an entry of this mode points at.
func (m EntryMode) Kind() Kind {
	if m == ModeDirectory {
		return KindTree
	}
	return KindBlob
}

// IsValid reports whether m is one of the two supported modes.
func (m EntryMode) IsValid() bool {
	return m == ModeFile || m == ModeDirectory
}

// ErrTreeCorrupt is returned when a tree body doesn't match the
// repeated `<mode> <name>\0<40-hex-id>` grammar.
var ErrTreeCorrupt = errors.New("corrupt tree object")

// TreeEntry is one directory entry: a name, the mode it was stored
// with, and the identity of the blob or tree it names.
type TreeEntry struct {
	Mode EntryMode
	Name string
	ID   objecthash.Identity
}

// Tree wraps an Object known to hold directory entries.
type Tree struct {
	rawObject *Object
	entries   []TreeEntry
}

// NewTree serializes entries into a tree Object. Callers must provide
// entries in lexicographic order by name -- this function does not
// sort, so that snapshot.Build (the only producer) can be the single
// place responsible for ordering.
func NewTree(entries []TreeEntry) *Tree {
	buf := new(bytes.Buffer)
	for _, e := range entries {
		buf.WriteString(string(e.Mode))
		buf.WriteByte(' ')
		buf.WriteString(e.Name)
		buf.WriteByte(0)
		buf.WriteString(string(e.ID))
	}
	return &Tree{
		rawObject: New(KindTree, buf.Bytes()),
		entries:   entries,
	}
}

// AsTree parses an already-decoded Object as a Tree. The caller is
// expected to have checked o.Kind() == KindTree.
func AsTree(o *Object) (*Tree, error) {
	entries := []TreeEntry{}
	body := o.Bytes()
	offset := 0
	for i := 1; offset < len(body); i++ {
		modeBytes := readutil.ReadTo(body[offset:], ' ')
		if modeBytes == nil {
			return nil, xerrors.Errorf("entry %d: missing mode: %w", i, ErrTreeCorrupt)
		}
		offset += len(modeBytes) + 1

		mode := EntryMode(modeBytes)
		if !mode.IsValid() {
			return nil, xerrors.Errorf("entry %d: invalid mode %q: %w", i, modeBytes, ErrTreeCorrupt)
		}

		nameBytes := readutil.ReadTo(body[offset:], 0)
		if nameBytes == nil {
			return nil, xerrors.Errorf("entry %d: missing name: %w", i, ErrTreeCorrupt)
		}
		offset += len(nameBytes) + 1

		if offset+objecthash.HexSize > len(body) {
			return nil, xerrors.Errorf("entry %d: truncated identity: %w", i, ErrTreeCorrupt)
		}
		id, err := objecthash.Parse(string(body[offset : offset+objecthash.HexSize]))
		if err != nil {
			return nil, xerrors.Errorf("entry %d: %s: %w", i, err.Error(), ErrTreeCorrupt)
		}
		offset += objecthash.HexSize

		entries = append(entries, TreeEntry{
			Mode: mode,
			Name: string(nameBytes),
			ID:   id,
		})
	}

	return &Tree{rawObject: o, entries: entries}, nil
}

// Entries returns a copy of the tree's entries, in the order they were
// stored.
func (t *Tree) Entries() []TreeEntry {
	out := make([]TreeEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// ID returns the tree's identity.
func (t *Tree) ID() objecthash.Identity {
	return t.rawObject.ID()
}

// ToObject returns the Tree's underlying Object.
func (t *Tree) ToObject() *Object {
	return t.rawObject
}

// EntryByName looks up a single entry by name, mirroring how callers
// usually want to descend one path component at a time.
func (t *Tree) EntryByName(name string) (TreeEntry, bool) {
	for _, e := range t.entries {
		if e.Name == name {
			return e, true
		}
	}
	return TreeEntry{}, false
}
