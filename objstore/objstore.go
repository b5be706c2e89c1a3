// Package objstore is the content-addressed object store: it persists
// and retrieves the compressed bytes of blob/tree/commit objects under
// a two-level fan-out directory, keyed by their hex identity. It never
// looks inside an object's content -- that's the object package's job.
package objstore

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/mintvcs/mintvcs/codec"
	"github.com/mintvcs/mintvcs/internal/cache"
	"github.com/mintvcs/mintvcs/internal/errutil"
	"github.com/mintvcs/mintvcs/internal/gitpath"
	"github.com/mintvcs/mintvcs/internal/syncutil"
	"github.com/mintvcs/mintvcs/objecthash"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// ErrNotFound is returned by Get/GetCanonical when the identity doesn't
// name a stored object.
var ErrNotFound = errors.New("object not found")

// lockStripes is the number of stripes in the named mutex guarding
// concurrent writes. A prime offers better distribution across hashed
// identities.
const lockStripes = 251

// cacheEntries bounds the in-memory read cache. Repositories are small
// local working copies, so a modest cache avoids re-inflating the same
// handful of hot objects (HEAD's tree, recent commits) over and over
// during a single command.
const cacheEntries = 256

// Store is a content-addressed, on-disk object store rooted at a
// REPO/objects directory.
type Store struct {
	fs   afero.Fs
	root string

	locks *syncutil.NamedMutex
	cache *cache.LRU
}

// New returns a Store that persists objects under root/objects using
// fs. root is normally the REPO directory (.mintvcs).
func New(fs afero.Fs, root string) *Store {
	return &Store{
		fs:    fs,
		root:  root,
		locks: syncutil.NewNamedMutex(lockStripes),
		cache: cache.NewLRU(cacheEntries),
	}
}

// path returns the on-disk path of the object named by id.
func (s *Store) path(id objecthash.Identity) string {
	dir, file := id.FanOut()
	return filepath.Join(s.root, gitpath.ObjectsPath, dir, file)
}

// Has reports whether an object with the given identity is stored.
func (s *Store) Has(id objecthash.Identity) (bool, error) {
	s.locks.RLock([]byte(id))
	defer s.locks.RUnlock([]byte(id))
	return s.hasUnsafe(id)
}

func (s *Store) hasUnsafe(id objecthash.Identity) (bool, error) {
	if _, ok := s.cache.Get(id); ok {
		return true, nil
	}
	_, err := s.fs.Stat(s.path(id))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, xerrors.Errorf("could not stat object %s: %w", id, err)
}

// Put stores already-compressed bytes under id. Objects are immutable:
// if an object with this identity already exists on disk the call is a
// successful no-op -- its content is assumed identical since the
// identity is a pure function of content.
func (s *Store) Put(id objecthash.Identity, compressed []byte) error {
	s.locks.Lock([]byte(id))
	defer s.locks.Unlock([]byte(id))

	exists, err := s.hasUnsafe(id)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	p := s.path(id)
	if err := s.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return xerrors.Errorf("could not create object directory for %s: %w", id, err)
	}
	// objects are read-only once written
	if err := afero.WriteFile(s.fs, p, compressed, 0o444); err != nil {
		return xerrors.Errorf("could not persist object %s: %w", id, err)
	}
	return nil
}

// Get returns the compressed bytes stored under id.
func (s *Store) Get(id objecthash.Identity) (compressed []byte, err error) {
	s.locks.RLock([]byte(id))
	defer s.locks.RUnlock([]byte(id))

	f, err := s.fs.Open(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, xerrors.Errorf("%s: %w", id, ErrNotFound)
		}
		return nil, xerrors.Errorf("could not open object %s: %w", id, err)
	}
	defer errutil.Close(f, &err)

	compressed, err = io.ReadAll(f)
	if err != nil {
		return nil, xerrors.Errorf("could not read object %s: %w", id, err)
	}
	return compressed, nil
}

// PutCanonical compresses canonical bytes and stores them, then keeps
// the uncompressed form in the read cache so a following GetCanonical
// doesn't have to re-decompress what was just written.
func (s *Store) PutCanonical(id objecthash.Identity, canonical []byte) error {
	compressed, err := codec.Compress(canonical)
	if err != nil {
		return xerrors.Errorf("could not compress object %s: %w", id, err)
	}
	if err := s.Put(id, compressed); err != nil {
		return err
	}
	s.cache.Add(id, canonical)
	return nil
}

// GetCanonical retrieves and decompresses the canonical bytes of the
// object named by id.
func (s *Store) GetCanonical(id objecthash.Identity) ([]byte, error) {
	if cached, ok := s.cache.Get(id); ok {
		if b, valid := cached.([]byte); valid {
			return b, nil
		}
	}

	compressed, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	canonical, err := codec.Decompress(compressed)
	if err != nil {
		return nil, xerrors.Errorf("could not decompress object %s: %w", id, err)
	}
	s.cache.Add(id, canonical)
	return canonical, nil
}
