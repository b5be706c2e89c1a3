package object

import "github.com/mintvcs/mintvcs/objecthash"

// Blob wraps an Object known to hold opaque file content.
type Blob struct {
	rawObject *Object
}

// NewBlob builds a new blob object from its content.
func NewBlob(content []byte) *Blob {
	return &Blob{rawObject: New(KindBlob, content)}
}

// AsBlob interprets an already-decoded Object as a Blob. The caller is
// expected to have checked o.Kind() == KindBlob.
func AsBlob(o *Object) *Blob {
	return &Blob{rawObject: o}
}

// ID returns the blob's identity.
func (b *Blob) ID() objecthash.Identity {
	return b.rawObject.ID()
}

// Bytes returns the blob's content.
func (b *Blob) Bytes() []byte {
	return b.rawObject.content
}

// Size returns the size, in bytes, of the blob's content.
func (b *Blob) Size() int {
	return len(b.rawObject.content)
}

// ToObject returns the Blob's underlying Object.
func (b *Blob) ToObject() *Object {
	return b.rawObject
}
