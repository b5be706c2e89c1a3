// Package object encodes and decodes the three kinds of content-addressed
// objects this system stores: blobs, trees, and commits. It is the
// "ObjectCodec" component of the design: given content, it produces the
// canonical on-disk byte representation and the Identity that names it;
// given stored bytes, it recovers the typed value.
package object

import (
	"bytes"
	"errors"
	"strconv"
	"sync"

	"github.com/mintvcs/mintvcs/internal/readutil"
	"github.com/mintvcs/mintvcs/objecthash"
	"golang.org/x/xerrors"
)

// Kind discriminates the three object variants. It's a closed set, so
// callers switch on it rather than using a class hierarchy.
type Kind int8

// The three supported object kinds.
const (
	KindBlob Kind = iota + 1
	KindTree
	KindCommit
)

// String renders the kind the way it appears in an object's header.
func (k Kind) String() string {
	switch k {
	case KindBlob:
		return "blob"
	case KindTree:
		return "tree"
	case KindCommit:
		return "commit"
	default:
		panic("object: unknown kind")
	}
}

// ErrUnknownKind is returned when an object header names a kind other
// than blob/tree/commit.
var ErrUnknownKind = errors.New("unknown object kind")

// ParseKind returns the Kind matching its header string.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "blob":
		return KindBlob, nil
	case "tree":
		return KindTree, nil
	case "commit":
		return KindCommit, nil
	default:
		return 0, ErrUnknownKind
	}
}

// Sentinel errors not already covered by objecthash or codec.
var (
	// ErrCorrupt is returned when stored bytes don't match the
	// `<kind> <len>\0<body>` canonical shape, or a kind-specific body
	// fails to parse.
	ErrCorrupt = errors.New("corrupt object")
)

// Object is a single content-addressed object: a kind tag plus its raw
// body, with an identity computed lazily and cached (objects are
// immutable once constructed, so the identity never changes).
type Object struct {
	kind    Kind
	content []byte

	idOnce sync.Once
	id     objecthash.Identity
}

// New wraps raw body bytes as an object of the given kind. The body is
// NOT validated against the kind's grammar here -- that only happens
// when the caller asks to interpret it (AsTree, AsCommit).
func New(kind Kind, content []byte) *Object {
	return &Object{kind: kind, content: content}
}

// Kind returns the object's kind.
func (o *Object) Kind() Kind {
	return o.kind
}

// Bytes returns the object's body (without the `<kind> <len>\0` header).
func (o *Object) Bytes() []byte {
	return o.content
}

// Size returns the length of the body.
func (o *Object) Size() int {
	return len(o.content)
}

// Canonical returns the full canonical serialization of the object:
// `<kind> <len>\0<body>`. This is what gets hashed and what gets
// compressed and stored.
func (o *Object) Canonical() []byte {
	w := new(bytes.Buffer)
	w.WriteString(o.kind.String())
	w.WriteByte(' ')
	w.WriteString(strconv.Itoa(o.Size()))
	w.WriteByte(0)
	w.Write(o.content)
	return w.Bytes()
}

// ID returns the object's content identity, computing it on first use.
func (o *Object) ID() objecthash.Identity {
	o.idOnce.Do(func() {
		o.id = objecthash.Sum(o.Canonical())
	})
	return o.id
}

// Decode splits a canonical byte sequence (as produced by Canonical, and
// as read back from the store after decompression) into its Object.
// ErrCorrupt is returned if there's no header, the kind is unknown, or
// the declared length doesn't match the body.
func Decode(raw []byte) (*Object, error) {
	header := readutil.ReadTo(raw, 0)
	if header == nil {
		return nil, xerrors.Errorf("no NUL header terminator: %w", ErrCorrupt)
	}

	parts := bytes.SplitN(header, []byte{' '}, 2)
	if len(parts) != 2 {
		return nil, xerrors.Errorf("malformed header %q: %w", header, ErrCorrupt)
	}

	kind, err := ParseKind(string(parts[0]))
	if err != nil {
		return nil, xerrors.Errorf("%s: %w", err.Error(), ErrCorrupt)
	}

	size, err := strconv.Atoi(string(parts[1]))
	if err != nil {
		return nil, xerrors.Errorf("invalid size %q: %w", parts[1], ErrCorrupt)
	}

	body := raw[len(header)+1:]
	if len(body) != size {
		return nil, xerrors.Errorf("declared size %d but body is %d bytes: %w", size, len(body), ErrCorrupt)
	}

	return New(kind, body), nil
}
