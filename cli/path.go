package cli

import (
	"path/filepath"
	"strings"

	"github.com/thenexthub/Codira-sub015/pkg"
)

// baseConfig is the base name of the configuration file.
const baseConfig = "config.yaml"

// configPath returns the path formed by joining the configuration directory
// with the given path elements.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{pkg.ConfigDir()}, elem...)...)
}

// cacheDir returns the cache directory path.
func cacheDir() string { return pkg.CacheDir() }

// profileDir returns the directory receiving profiles of the given command
// line. Only the leading command word names the subdirectory.
func profileDir(base, command string) string {
	name, _, _ := strings.Cut(strings.TrimSpace(command), " ")
	if name == "" {
		name = "root"
	}
	return filepath.Join(base, name)
}
