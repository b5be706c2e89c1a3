package status_test

import (
	"testing"

	"github.com/mintvcs/mintvcs/index"
	"github.com/mintvcs/mintvcs/object"
	"github.com/mintvcs/mintvcs/objstore"
	"github.com/mintvcs/mintvcs/refstore"
	"github.com/mintvcs/mintvcs/snapshot"
	"github.com/mintvcs/mintvcs/status"
	"github.com/mintvcs/mintvcs/worktree"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stageAndCommit(t *testing.T, fs afero.Fs, store *objstore.Store, refs *refstore.Store, idx *index.Index, files map[string]string) {
	t.Helper()
	entries := make([]snapshot.Entry, 0, len(files))
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
		blob := object.NewBlob([]byte(content))
		require.NoError(t, store.PutCanonical(blob.ID(), blob.ToObject().Canonical()))
		idx.Put(path, blob.ID())
		entries = append(entries, snapshot.Entry{Path: path, Identity: blob.ID()})
	}
	require.NoError(t, idx.Save())

	treeID, err := snapshot.Build(store, entries)
	require.NoError(t, err)
	commit := object.NewCommit(treeID, object.NewSignature("t", "t@e.com"), object.CommitOptions{Message: "m"})
	require.NoError(t, store.PutCanonical(commit.ID(), commit.ToObject().Canonical()))
	require.NoError(t, refs.UpdateCurrent(commit.ID()))
}

func TestCleanAfterCommit(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	store := objstore.New(fs, ".mintvcs")
	refs := refstore.New(fs, ".mintvcs")
	require.NoError(t, refs.SetHeadSymbolic("main"))
	idx := index.New(fs, ".mintvcs")

	stageAndCommit(t, fs, store, refs, idx, map[string]string{"a.txt": "a\n"})

	tree := worktree.New(fs, ".", ".mintvcs", worktree.NoIgnores())
	report, err := status.Compute(store, refs, idx, tree)
	require.NoError(t, err)
	assert.True(t, report.IsClean())
	assert.Equal(t, "main", report.Branch)
}

func TestModifiedNotStaged(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	store := objstore.New(fs, ".mintvcs")
	refs := refstore.New(fs, ".mintvcs")
	require.NoError(t, refs.SetHeadSymbolic("main"))
	idx := index.New(fs, ".mintvcs")
	stageAndCommit(t, fs, store, refs, idx, map[string]string{"a.txt": "a\n"})

	require.NoError(t, afero.WriteFile(fs, "a.txt", []byte("changed\n"), 0o644))

	tree := worktree.New(fs, ".", ".mintvcs", worktree.NoIgnores())
	report, err := status.Compute(store, refs, idx, tree)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, report.ModifiedNotStaged)
	assert.Empty(t, report.Staged)
}

func TestDeletedFromWorkingTree(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	store := objstore.New(fs, ".mintvcs")
	refs := refstore.New(fs, ".mintvcs")
	require.NoError(t, refs.SetHeadSymbolic("main"))
	idx := index.New(fs, ".mintvcs")
	stageAndCommit(t, fs, store, refs, idx, map[string]string{"a.txt": "a\n"})

	require.NoError(t, fs.Remove("a.txt"))

	tree := worktree.New(fs, ".", ".mintvcs", worktree.NoIgnores())
	report, err := status.Compute(store, refs, idx, tree)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, report.Deleted)
}

func TestUntracked(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	store := objstore.New(fs, ".mintvcs")
	refs := refstore.New(fs, ".mintvcs")
	require.NoError(t, refs.SetHeadSymbolic("main"))
	idx := index.New(fs, ".mintvcs")
	stageAndCommit(t, fs, store, refs, idx, map[string]string{"a.txt": "a\n"})

	require.NoError(t, afero.WriteFile(fs, "new.txt", []byte("n\n"), 0o644))

	tree := worktree.New(fs, ".", ".mintvcs", worktree.NoIgnores())
	report, err := status.Compute(store, refs, idx, tree)
	require.NoError(t, err)
	assert.Equal(t, []string{"new.txt"}, report.Untracked)
}
