// Package codec implements the byte-stream compression primitive used
// to persist objects on disk: a thin, allocation-light wrapper around
// DEFLATE (compress/zlib).
package codec

import (
	"bytes"
	"compress/zlib"
	"errors"
	"io"

	"github.com/mintvcs/mintvcs/internal/errutil"
	"golang.org/x/xerrors"
)

// ErrFormat is returned by Decompress when the input is not a valid
// zlib stream.
var ErrFormat = errors.New("malformed compressed stream")

// Compress zlib-compresses b.
func Compress(b []byte) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := zlib.NewWriter(buf)

	if _, err := w.Write(b); err != nil {
		return nil, xerrors.Errorf("could not compress data: %w", err)
	}
	// zlib buffers internally; the stream isn't complete (and nothing
	// is readable from buf) until Close flushes it.
	if err := w.Close(); err != nil {
		return nil, xerrors.Errorf("could not flush compressed data: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress reverses Compress. ErrFormat is returned if b isn't a
// valid zlib stream.
func Decompress(b []byte) (out []byte, err error) {
	r, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, xerrors.Errorf("%s: %w", err.Error(), ErrFormat)
	}
	defer errutil.Close(r, &err)

	out, err = io.ReadAll(r)
	if err != nil {
		return nil, xerrors.Errorf("%s: %w", err.Error(), ErrFormat)
	}
	return out, nil
}
