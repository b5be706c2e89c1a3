// Package objecthash computes and parses the content identities used
// to address every object in the store: the 40-character lowercase hex
// rendering of the SHA-1 of an object's canonical serialized form.
package objecthash

import (
	"crypto/sha1" //nolint:gosec // content addressing, not a security boundary
	"encoding/hex"
	"errors"
	"hash"
)

// Size is the length, in bytes, of a raw digest.
const Size = sha1.Size

// HexSize is the length, in characters, of an Identity's hex rendering.
const HexSize = Size * 2

// ErrInvalidIdentity is returned when a string cannot be parsed as an
// Identity.
var ErrInvalidIdentity = errors.New("invalid object identity")

// NullIdentity is the zero value of an Identity.
var NullIdentity Identity

// Identity is the 40-character lowercase hex name of an object. Tree
// bodies embed identities as hex text (see object.Tree), so Identity is
// carried as a string end to end rather than as a fixed byte array.
type Identity string

// String returns the identity unchanged; it satisfies fmt.Stringer.
func (id Identity) String() string {
	return string(id)
}

// IsZero returns whether the identity is the zero value.
func (id Identity) IsZero() bool {
	return id == NullIdentity
}

// Bytes decodes the hex identity back to its raw 20-byte digest.
func (id Identity) Bytes() ([]byte, error) {
	b, err := hex.DecodeString(string(id))
	if err != nil {
		return nil, ErrInvalidIdentity
	}
	if len(b) != Size {
		return nil, ErrInvalidIdentity
	}
	return b, nil
}

// FanOut returns the two-level fan-out directory name and file name
// used to store the object on disk: the first 2 hex characters, and
// the remaining 38.
func (id Identity) FanOut() (dir, file string) {
	s := string(id)
	return s[:2], s[2:]
}

// Parse validates that s is a well-formed identity (40 lowercase hex
// characters) and returns it as an Identity.
func Parse(s string) (Identity, error) {
	if len(s) != HexSize {
		return NullIdentity, ErrInvalidIdentity
	}
	if _, err := hex.DecodeString(s); err != nil {
		return NullIdentity, ErrInvalidIdentity
	}
	for _, c := range s {
		if c >= 'A' && c <= 'F' {
			return NullIdentity, ErrInvalidIdentity
		}
	}
	return Identity(s), nil
}

// HasPrefix returns whether the identity starts with the given (already
// lowercased) hex prefix. Used to resolve abbreviated identities.
func (id Identity) HasPrefix(prefix string) bool {
	s := string(id)
	if len(prefix) > len(s) {
		return false
	}
	return s[:len(prefix)] == prefix
}

// Hasher streams bytes into a SHA-1 digest. This system has a single,
// non-pluggable hash algorithm.
type Hasher struct {
	h      hash.Hash
	closed bool
}

// NewHasher returns a new, ready to use Hasher.
func NewHasher() *Hasher {
	return &Hasher{h: sha1.New()} //nolint:gosec // content addressing, not a security boundary
}

// Write feeds more bytes into the running digest. It is a contract
// violation to call Write after Sum.
func (h *Hasher) Write(p []byte) (int, error) {
	if h.closed {
		panic("objecthash: Write called after Sum")
	}
	return h.h.Write(p)
}

// Sum finalizes the digest and returns its Identity. It is a contract
// violation to call Sum twice.
func (h *Hasher) Sum() Identity {
	if h.closed {
		panic("objecthash: Sum called twice")
	}
	h.closed = true
	return Identity(hex.EncodeToString(h.h.Sum(nil)))
}

// Sum returns the Identity of the given content in a single call.
func Sum(content []byte) Identity {
	h := NewHasher()
	_, _ = h.Write(content)
	return h.Sum()
}
