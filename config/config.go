// Package config reads and writes the REPO/config file. This only
// ever carries the [core] section -- there's no remote/branch/user
// config to aggregate, and no layering of local config over a
// system/global one.
package config

import (
	"bytes"
	"path/filepath"

	"github.com/mintvcs/mintvcs/internal/gitpath"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
	"gopkg.in/ini.v1"
)

// Section and key names used in REPO/config.
const (
	sectionCore              = "core"
	keyRepoFormatVersion     = "repositoryformatversion"
	keyBare                  = "bare"
	defaultRepoFormatVersion = "0"
)

// Config holds the values read from, or to be written to, REPO/config.
type Config struct {
	// RepositoryFormatVersion is always "0" for this format; kept so
	// the file has a recognizable shape and a future incompatible
	// change has somewhere to signal itself.
	RepositoryFormatVersion string
	// Bare reports whether the repository has no working tree.
	Bare bool
}

// Default returns the configuration written by Init.
func Default() *Config {
	return &Config{
		RepositoryFormatVersion: defaultRepoFormatVersion,
		Bare:                    false,
	}
}

// Load reads and parses REPO/config.
func Load(fs afero.Fs, root string) (*Config, error) {
	path := filepath.Join(root, gitpath.ConfigPath)
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, xerrors.Errorf("could not read config: %w", err)
	}

	f, err := ini.Load(b)
	if err != nil {
		return nil, xerrors.Errorf("could not parse config: %w", err)
	}

	core := f.Section(sectionCore)
	cfg := Default()
	if core.HasKey(keyRepoFormatVersion) {
		cfg.RepositoryFormatVersion = core.Key(keyRepoFormatVersion).String()
	}
	if core.HasKey(keyBare) {
		cfg.Bare = core.Key(keyBare).MustBool(false)
	}
	return cfg, nil
}

// Save writes cfg to REPO/config, creating it if needed.
func Save(fs afero.Fs, root string, cfg *Config) error {
	f := ini.Empty()
	core, err := f.NewSection(sectionCore)
	if err != nil {
		return xerrors.Errorf("could not create core section: %w", err)
	}
	if _, err := core.NewKey(keyRepoFormatVersion, cfg.RepositoryFormatVersion); err != nil {
		return xerrors.Errorf("could not set %s: %w", keyRepoFormatVersion, err)
	}
	if _, err := core.NewKey(keyBare, boolString(cfg.Bare)); err != nil {
		return xerrors.Errorf("could not set %s: %w", keyBare, err)
	}

	path := filepath.Join(root, gitpath.ConfigPath)
	buf := new(bytes.Buffer)
	if _, err := f.WriteTo(buf); err != nil {
		return xerrors.Errorf("could not render config: %w", err)
	}
	if err := afero.WriteFile(fs, path, buf.Bytes(), 0o644); err != nil {
		return xerrors.Errorf("could not write config: %w", err)
	}
	return nil
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
