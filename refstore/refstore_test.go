package refstore_test

import (
	"testing"

	"github.com/mintvcs/mintvcs/objecthash"
	"github.com/mintvcs/mintvcs/refstore"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commitID(b byte) objecthash.Identity {
	id, err := objecthash.Parse(repeatHex(b))
	if err != nil {
		panic(err)
	}
	return id
}

func repeatHex(b byte) string {
	out := make([]byte, objecthash.HexSize)
	for i := range out {
		out[i] = b
	}
	return string(out)
}

func newUnbornStore(t *testing.T) *refstore.Store {
	t.Helper()
	fs := afero.NewMemMapFs()
	store := refstore.New(fs, ".mintvcs")
	require.NoError(t, store.SetHeadSymbolic("main"))
	return store
}

func TestUnbornBranchResolvesToNone(t *testing.T) {
	t.Parallel()

	store := newUnbornStore(t)
	_, ok, err := store.ResolveHEAD()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateCurrentFollowsSymbolicHEAD(t *testing.T) {
	t.Parallel()

	store := newUnbornStore(t)
	id := commitID('a')

	require.NoError(t, store.UpdateCurrent(id))

	got, ok, err := store.ResolveHEAD()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, id, got)

	branchID, err := store.ReadBranch("main")
	require.NoError(t, err)
	assert.Equal(t, id, branchID)
}

func TestUpdateCurrentDetachedWritesHEADDirectly(t *testing.T) {
	t.Parallel()

	store := newUnbornStore(t)
	id := commitID('b')
	require.NoError(t, store.SetHeadDirect(id))

	newID := commitID('c')
	require.NoError(t, store.UpdateCurrent(newID))

	head, err := store.ReadHEAD()
	require.NoError(t, err)
	assert.False(t, head.Symbolic)
	assert.Equal(t, newID, head.Direct)
}

func TestCreateBranchRejectsDuplicate(t *testing.T) {
	t.Parallel()

	store := newUnbornStore(t)
	id := commitID('a')
	require.NoError(t, store.CreateBranch("feat", id))

	err := store.CreateBranch("feat", id)
	assert.ErrorIs(t, err, refstore.ErrAlreadyExists)
}

func TestDeleteCurrentBranchIsProtected(t *testing.T) {
	t.Parallel()

	store := newUnbornStore(t)
	require.NoError(t, store.UpdateCurrent(commitID('a')))

	err := store.DeleteBranch("main")
	assert.ErrorIs(t, err, refstore.ErrProtectedBranch)
}

func TestRenameBranch(t *testing.T) {
	t.Parallel()

	store := newUnbornStore(t)
	id := commitID('a')
	require.NoError(t, store.CreateBranch("old", id))

	require.NoError(t, store.RenameBranch("old", "new"))

	_, err := store.ReadBranch("old")
	assert.ErrorIs(t, err, refstore.ErrNotFound)

	got, err := store.ReadBranch("new")
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestListBranchesSorted(t *testing.T) {
	t.Parallel()

	store := newUnbornStore(t)
	id := commitID('a')
	require.NoError(t, store.CreateBranch("zeta", id))
	require.NoError(t, store.CreateBranch("alpha", id))

	names, err := store.ListBranches()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, names)
}

func TestCurrentBranchDetached(t *testing.T) {
	t.Parallel()

	store := newUnbornStore(t)
	require.NoError(t, store.SetHeadDirect(commitID('a')))

	_, onBranch, err := store.CurrentBranch()
	require.NoError(t, err)
	assert.False(t, onBranch)
}

func TestRefNameValidation(t *testing.T) {
	t.Parallel()

	valid := []string{"main", "feature/login", "v1"}
	for _, name := range valid {
		assert.True(t, refstore.IsRefNameValid(name), name)
	}

	invalid := []string{"", "-flag", "a/../b", `a\b`, "a.", "a/", "a.lock", "a b"}
	for _, name := range invalid {
		assert.False(t, refstore.IsRefNameValid(name), name)
	}
}
