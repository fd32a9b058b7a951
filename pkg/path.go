//nolint:gochecknoglobals
package pkg

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// DirMode is the permission mode for created directories.
const DirMode os.FileMode = 0o700

// prefixRules rewrite the executable name into the directory prefix.
var prefixRules = []struct {
	pattern *regexp.Regexp
	repl    string
}{
	{regexp.MustCompile(`^__debug_bin\d+$`), Name}, // default output from dlv
	{regexp.MustCompile(`^\.+`), ""},               // leading dot(s)
}

// Prefix returns the base name of the executable, which names the
// configuration and cache directories. A dlv debug binary maps to [Name]
// and leading dots are removed.
var Prefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		if exe, err := os.Executable(); err == nil {
			id = exe
		}

		id = filepath.Base(id)
		id = strings.TrimSuffix(id, filepath.Ext(id))

		for _, rule := range prefixRules {
			id = rule.pattern.ReplaceAllString(id, rule.repl)
		}

		if id == "" {
			return Name
		}

		return id
	},
)

// userDir returns the directory from base joined with [Prefix]. When base
// fails, the home directory joined with fallback is used, then the working
// directory.
func userDir(base func() (string, error), fallback string) string {
	dir, err := base()
	if err != nil {
		if home, herr := os.UserHomeDir(); herr == nil {
			dir = filepath.Join(home, fallback)
		} else if dir, err = os.Getwd(); err != nil {
			dir = "."
		}
	}

	return filepath.Join(dir, Prefix())
}

// ConfigDir returns the configuration directory path.
var ConfigDir = sync.OnceValue(func() string {
	return userDir(os.UserConfigDir, ".config")
})

// CacheDir returns the cache directory path used for transient files such
// as the REPL history and profiles.
var CacheDir = sync.OnceValue(func() string {
	return userDir(os.UserCacheDir, ".cache")
})

// MkdirAll creates the configuration and cache directories.
func MkdirAll() error {
	for _, dir := range []string{ConfigDir(), CacheDir()} {
		if err := os.MkdirAll(dir, DirMode); err != nil {
			return err
		}
	}

	return nil
}
