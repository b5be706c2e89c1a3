package worktree

import (
	"bufio"
	"bytes"
	"path/filepath"
	"strings"

	"github.com/mintvcs/mintvcs/internal/gitpath"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// Ignores holds the parsed patterns from a .mintvcsignore file: one
// pattern per line, "#" introduces a comment, trailing slashes are
// stripped, backslashes are normalized to forward slashes, and
// matching is exact -- on either the first path component or the full
// relative path -- never glob-based.
type Ignores struct {
	patterns map[string]struct{}
}

// NoIgnores returns an Ignores with no patterns.
func NoIgnores() *Ignores {
	return &Ignores{patterns: map[string]struct{}{}}
}

// LoadIgnores reads and parses REPO-root-relative .mintvcsignore. A
// missing file is treated as no patterns.
func LoadIgnores(fs afero.Fs, root string) (*Ignores, error) {
	path := filepath.Join(root, gitpath.IgnoreFileName)
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		if exists, existsErr := afero.Exists(fs, path); existsErr == nil && !exists {
			return NoIgnores(), nil
		}
		return nil, xerrors.Errorf("could not read %s: %w", gitpath.IgnoreFileName, err)
	}
	return ParseIgnores(raw), nil
}

// ParseIgnores parses the content of a .mintvcsignore file.
func ParseIgnores(raw []byte) *Ignores {
	ig := &Ignores{patterns: map[string]struct{}{}}
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	for scanner.Scan() {
		line := scanner.Text()
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.ReplaceAll(line, `\`, "/")
		line = strings.TrimSuffix(line, "/")
		if line == "" {
			continue
		}
		ig.patterns[line] = struct{}{}
	}
	return ig
}

// Matches reports whether relPath (forward-slash, relative to repo
// root) should be ignored: either its first path component or its
// full path exactly matches a pattern.
func (ig *Ignores) Matches(relPath string) bool {
	if _, ok := ig.patterns[relPath]; ok {
		return true
	}
	first := strings.SplitN(relPath, "/", 2)[0]
	_, ok := ig.patterns[first]
	return ok
}
