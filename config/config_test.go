package config_test

import (
	"testing"

	"github.com/mintvcs/mintvcs/config"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	cfg := config.Default()
	cfg.Bare = true

	require.NoError(t, config.Save(fs, ".mintvcs", cfg))

	loaded, err := config.Load(fs, ".mintvcs")
	require.NoError(t, err)
	assert.Equal(t, cfg.RepositoryFormatVersion, loaded.RepositoryFormatVersion)
	assert.True(t, loaded.Bare)
}

func TestLoadMissingKeysFallBackToDefaults(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, ".mintvcs/config", []byte("[core]\n"), 0o644))

	loaded, err := config.Load(fs, ".mintvcs")
	require.NoError(t, err)
	assert.Equal(t, "0", loaded.RepositoryFormatVersion)
	assert.False(t, loaded.Bare)
}
