package main

import (
	"bytes"
	"os"
	"testing"

	"github.com/mintvcs/mintvcs/internal/testutil"
	"github.com/stretchr/testify/require"
)

func TestEndToEndWorkflow(t *testing.T) {
	t.Parallel()

	dirPath, cleanup := testutil.TempDir(t)
	t.Cleanup(cleanup)
	cfg := &globalFlags{C: testutil.NewStringValue(dirPath)}

	require.NoError(t, initCmd(os.Stdout, cfg, initCmdFlags{quiet: true}))

	require.NoError(t, os.WriteFile(dirPath+"/a.txt", []byte("hello\n"), 0o644))
	require.NoError(t, addCmd(os.Stdout, cfg, []string{"."}))

	commitOut := bytes.NewBufferString("")
	require.NoError(t, commitCmd(commitOut, cfg, commitCmdFlags{message: "first"}))
	require.NotEmpty(t, commitOut.String())

	require.NoError(t, branchCreateCmd(os.Stdout, cfg, "feature"))

	branchOut := bytes.NewBufferString("")
	require.NoError(t, branchListCmd(branchOut, cfg))
	require.Contains(t, branchOut.String(), "main")
	require.Contains(t, branchOut.String(), "feature")

	statusOut := bytes.NewBufferString("")
	require.NoError(t, statusCmd(statusOut, cfg))
	require.Contains(t, statusOut.String(), "nothing to commit")

	logOut := bytes.NewBufferString("")
	require.NoError(t, logCmd(logOut, cfg))
	require.Contains(t, logOut.String(), "first")

	checkoutOut := bytes.NewBufferString("")
	require.NoError(t, checkoutCmd(checkoutOut, cfg, "feature"))
	require.Contains(t, checkoutOut.String(), "feature")
}
