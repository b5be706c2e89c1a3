package merge_test

import (
	"testing"

	"github.com/mintvcs/mintvcs/merge"
	"github.com/mintvcs/mintvcs/object"
	"github.com/mintvcs/mintvcs/objecthash"
	"github.com/mintvcs/mintvcs/objstore"
	"github.com/mintvcs/mintvcs/refstore"
	"github.com/mintvcs/mintvcs/snapshot"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store *objstore.Store
	refs  *refstore.Store
}

func newFixture() *fixture {
	fs := afero.NewMemMapFs()
	return &fixture{store: objstore.New(fs, ".mintvcs"), refs: refstore.New(fs, ".mintvcs")}
}

func (f *fixture) commit(t *testing.T, files map[string]string, parents ...objecthash.Identity) objecthash.Identity {
	t.Helper()
	entries := make([]snapshot.Entry, 0, len(files))
	for path, content := range files {
		blob := object.NewBlob([]byte(content))
		require.NoError(t, f.store.PutCanonical(blob.ID(), blob.ToObject().Canonical()))
		entries = append(entries, snapshot.Entry{Path: path, Identity: blob.ID()})
	}
	treeID, err := snapshot.Build(f.store, entries)
	require.NoError(t, err)

	c := object.NewCommit(treeID, object.NewSignature("t", "t@e.com"), object.CommitOptions{
		Message: "m",
		Parents: parents,
	})
	require.NoError(t, f.store.PutCanonical(c.ID(), c.ToObject().Canonical()))
	return c.ID()
}

func (f *fixture) treeOf(t *testing.T, commitID objecthash.Identity) objecthash.Identity {
	t.Helper()
	canonical, err := f.store.GetCanonical(commitID)
	require.NoError(t, err)
	obj, err := object.Decode(canonical)
	require.NoError(t, err)
	c, err := object.AsCommit(obj)
	require.NoError(t, err)
	return c.TreeID()
}

func TestMergeAlreadyUpToDate(t *testing.T) {
	t.Parallel()

	f := newFixture()
	require.NoError(t, f.refs.SetHeadSymbolic("main"))
	base := f.commit(t, map[string]string{"a.txt": "a\n"})
	require.NoError(t, f.refs.CreateBranch("main", base))
	require.NoError(t, f.refs.CreateBranch("feat", base))
	require.NoError(t, f.refs.UpdateCurrent(base))

	engine := merge.New(f.store, f.refs)
	res, err := engine.Merge("feat")
	require.NoError(t, err)
	assert.True(t, res.UpToDate)
}

func TestMergeCleanTwoSidedChange(t *testing.T) {
	t.Parallel()

	f := newFixture()
	require.NoError(t, f.refs.SetHeadSymbolic("main"))
	base := f.commit(t, map[string]string{"a.txt": "a\n"})
	require.NoError(t, f.refs.CreateBranch("main", base))
	require.NoError(t, f.refs.UpdateCurrent(base))

	feat := f.commit(t, map[string]string{"a.txt": "a\n", "b.txt": "b\n"}, base)
	require.NoError(t, f.refs.CreateBranch("feat", feat))

	mainTip := f.commit(t, map[string]string{"a.txt": "a2\n"}, base)
	require.NoError(t, f.refs.WriteBranch("main", mainTip))
	require.NoError(t, f.refs.UpdateCurrent(mainTip))

	engine := merge.New(f.store, f.refs)
	res, err := engine.Merge("feat")
	require.NoError(t, err)
	assert.False(t, res.UpToDate)
	assert.Empty(t, res.Conflicts)
	assert.False(t, res.MergeCommit.IsZero())

	merged, err := snapshot.Flatten(f.store, f.treeOf(t, res.MergeCommit))
	require.NoError(t, err)
	assert.Len(t, merged, 2)
}

func TestMergeConflict(t *testing.T) {
	t.Parallel()

	f := newFixture()
	require.NoError(t, f.refs.SetHeadSymbolic("main"))
	base := f.commit(t, map[string]string{"a.txt": "a\n"})
	require.NoError(t, f.refs.CreateBranch("main", base))
	require.NoError(t, f.refs.UpdateCurrent(base))

	x := f.commit(t, map[string]string{"a.txt": "x\n"}, base)
	require.NoError(t, f.refs.CreateBranch("x", x))

	mainTip := f.commit(t, map[string]string{"a.txt": "y\n"}, base)
	require.NoError(t, f.refs.WriteBranch("main", mainTip))
	require.NoError(t, f.refs.UpdateCurrent(mainTip))

	engine := merge.New(f.store, f.refs)
	res, err := engine.Merge("x")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, res.Conflicts)

	mergedFiles, err := snapshot.Flatten(f.store, f.treeOf(t, res.MergeCommit))
	require.NoError(t, err)
	canonical, err := f.store.GetCanonical(mergedFiles["a.txt"])
	require.NoError(t, err)
	obj, err := object.Decode(canonical)
	require.NoError(t, err)
	assert.Equal(t, "<<<<<<< SOURCE\ny\n=======\nx\n>>>>>>> TARGET\n", string(object.AsBlob(obj).Bytes()))
}
