package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/mintvcs/mintvcs/internal/gitpath"
	"github.com/mintvcs/mintvcs/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitParams(t *testing.T) {
	t.Parallel()

	dirPath, cleanup := testutil.TempDir(t)
	t.Cleanup(cleanup)

	cwd, err := os.Getwd()
	require.NoError(t, err)

	cmd := newRootCmd(cwd)
	cmd.SetArgs([]string{"init", "-C", dirPath})

	require.NotPanics(t, func() {
		err = cmd.Execute()
	})
	require.NoError(t, err)
}

func TestInit(t *testing.T) {
	t.Parallel()

	t.Run("should create the repo directory", func(t *testing.T) {
		t.Parallel()

		dirPath, cleanup := testutil.TempDir(t)
		t.Cleanup(cleanup)

		stdout := bytes.NewBufferString("")
		err := initCmd(stdout, &globalFlags{C: testutil.NewStringValue(dirPath)}, initCmdFlags{})
		require.NoError(t, err)

		repoDir := filepath.Join(dirPath, gitpath.DotVCSPath)
		info, err := os.Stat(repoDir)
		require.NoError(t, err)
		assert.True(t, info.IsDir(), "expected .mintvcs to be a dir")

		expectedOut := fmt.Sprintf("Initialized empty mintvcs repository in %s/%s\n", dirPath, gitpath.DotVCSPath)
		assert.Equal(t, expectedOut, stdout.String())
	})

	t.Run("running twice should fail", func(t *testing.T) {
		t.Parallel()

		dirPath, cleanup := testutil.TempDir(t)
		t.Cleanup(cleanup)

		err := initCmd(os.Stdout, &globalFlags{C: testutil.NewStringValue(dirPath)}, initCmdFlags{})
		require.NoError(t, err)

		err = initCmd(os.Stdout, &globalFlags{C: testutil.NewStringValue(dirPath)}, initCmdFlags{})
		require.Error(t, err)
	})

	t.Run("quiet should prevent writing data to stdout", func(t *testing.T) {
		t.Parallel()

		dirPath, cleanup := testutil.TempDir(t)
		t.Cleanup(cleanup)

		stdout := bytes.NewBufferString("")
		err := initCmd(stdout, &globalFlags{C: testutil.NewStringValue(dirPath)}, initCmdFlags{quiet: true})
		require.NoError(t, err)

		assert.Empty(t, stdout.String(), "no output was expected")
	})
}
