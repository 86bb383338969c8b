// Package xdg resolves XDG Base Directory paths for the grader's on-disk
// state, primarily the test-case cache.
package xdg

import (
	"os"
	"path/filepath"
)

// CacheHome returns the base directory for cached data, honoring
// XDG_CACHE_HOME and falling back to ~/.cache.
func CacheHome() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, ".cache")
}

// AppCacheDir returns the application-specific cache directory.
func AppCacheDir(appName string) string {
	return filepath.Join(CacheHome(), appName)
}

// EnsureDir creates the directory if it does not exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
