// Package index implements the staging table: a flat map from
// working-tree path to the blob identity staged for it, persisted as
// plain text, one line per entry -- there is no stat cache, no
// extensions, and no footer checksum to maintain.
package index

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mintvcs/mintvcs/internal/gitpath"
	"github.com/mintvcs/mintvcs/objecthash"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// Mode and Kind are fixed for every entry in this system: regular
// files staged as blobs. They're still recorded on each line so the
// on-disk format stays self-describing.
const (
	entryMode = "100644"
	entryKind = "blob"
)

// ErrFormat is returned when an index file's content doesn't match the
// `<mode> <kind> <identity> <path>` grammar.
var ErrFormat = errors.New("malformed index entry")

// Entry is one staged path.
type Entry struct {
	Identity objecthash.Identity
}

// Index is the in-memory staging table, loaded from and persisted to
// REPO/index.
type Index struct {
	fs   afero.Fs
	root string

	entries map[string]Entry
}

// New returns an empty Index rooted at root.
func New(fs afero.Fs, root string) *Index {
	return &Index{fs: fs, root: root, entries: map[string]Entry{}}
}

func (idx *Index) path() string {
	return filepath.Join(idx.root, gitpath.IndexPath)
}

// Load reads REPO/index, replacing the in-memory table. A missing file
// is treated as an empty index.
func Load(fs afero.Fs, root string) (*Index, error) {
	idx := New(fs, root)

	f, err := fs.Open(idx.path())
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, xerrors.Errorf("could not open index: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only handle

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		path, entry, err := parseLine(line)
		if err != nil {
			return nil, xerrors.Errorf("line %d: %w", lineNo, err)
		}
		idx.entries[path] = entry
	}
	if err := scanner.Err(); err != nil {
		return nil, xerrors.Errorf("could not read index: %w", err)
	}
	return idx, nil
}

func parseLine(line string) (string, Entry, error) {
	parts := strings.SplitN(line, " ", 4)
	if len(parts) != 4 {
		return "", Entry{}, xerrors.Errorf("expected 4 fields, got %d: %w", len(parts), ErrFormat)
	}
	if parts[0] != entryMode || parts[1] != entryKind {
		return "", Entry{}, xerrors.Errorf("unsupported mode/kind %q/%q: %w", parts[0], parts[1], ErrFormat)
	}
	id, err := objecthash.Parse(parts[2])
	if err != nil {
		return "", Entry{}, xerrors.Errorf("invalid identity %q: %w", parts[2], ErrFormat)
	}
	return parts[3], Entry{Identity: id}, nil
}

// Put inserts or replaces the entry for path.
func (idx *Index) Put(path string, id objecthash.Identity) {
	idx.entries[normalizePath(path)] = Entry{Identity: id}
}

// Get returns the entry staged for path.
func (idx *Index) Get(path string) (Entry, bool) {
	e, ok := idx.entries[normalizePath(path)]
	return e, ok
}

// Remove drops path from the index. It is a no-op if path isn't staged.
func (idx *Index) Remove(path string) {
	delete(idx.entries, normalizePath(path))
}

// Paths returns every staged path, sorted lexicographically.
func (idx *Index) Paths() []string {
	paths := make([]string, 0, len(idx.entries))
	for p := range idx.entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Len returns the number of staged entries.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Reset discards every staged entry, used by checkout when rewriting
// the index to mirror a different tree.
func (idx *Index) Reset() {
	idx.entries = map[string]Entry{}
}

// Save persists the index, sorted lexicographically by path.
func (idx *Index) Save() error {
	buf := new(bytes.Buffer)
	for _, p := range idx.Paths() {
		e := idx.entries[p]
		fmt.Fprintf(buf, "%s %s %s %s\n", entryMode, entryKind, e.Identity, p)
	}
	if err := idx.fs.MkdirAll(idx.root, 0o755); err != nil {
		return xerrors.Errorf("could not create repo directory: %w", err)
	}
	if err := afero.WriteFile(idx.fs, idx.path(), buf.Bytes(), 0o644); err != nil {
		return xerrors.Errorf("could not write index: %w", err)
	}
	return nil
}

func normalizePath(p string) string {
	return filepath.ToSlash(p)
}
