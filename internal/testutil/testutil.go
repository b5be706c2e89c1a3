// Package testutil contains small helpers shared by this module's tests.
package testutil

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TempDir creates a temp dir and returns a cleanup method.
func TempDir(t *testing.T) (out string, cleanup func()) {
	out, err := os.MkdirTemp("", strings.ReplaceAll(t.Name(), "/", "_")+"_")
	require.NoError(t, err)

	cleanup = func() {
		require.NoError(t, os.RemoveAll(out))
	}
	return out, cleanup
}

// TempFile creates an empty temp file and returns it with a cleanup
// method that closes and removes it.
func TempFile(t *testing.T) (f *os.File, cleanup func()) {
	f, err := os.CreateTemp("", strings.ReplaceAll(t.Name(), "/", "_")+"_")
	require.NoError(t, err)

	cleanup = func() {
		f.Close() //nolint:errcheck // removed right after
		require.NoError(t, os.Remove(f.Name()))
	}
	return f, cleanup
}
