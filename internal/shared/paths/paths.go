package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// AppName is the directory every cache path lives under
const AppName = "pylearn"

// Cache subdirectories
const (
	Python      = "python"
	Compilation = "wasm-compiled"
)

// CacheRoot returns the per-user cache directory, falling back to the
// system temp dir when the user has none
func CacheRoot() string {
	dir, err := os.UserCacheDir()
	if err != nil || dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, AppName)
}

// PythonDist returns the directory holding interpreter distributions
func PythonDist() string {
	return filepath.Join(CacheRoot(), Python)
}

// CompilationCache returns the directory for compiled WebAssembly
func CompilationCache() string {
	return filepath.Join(CacheRoot(), Compilation)
}

// Confine joins name under root and fails if the result leaves root.
// Absolute names and parent references are re-rooted first.
func Confine(root, name string) (string, error) {
	root = filepath.Clean(root)
	target := filepath.Join(root, filepath.Clean("/"+filepath.FromSlash(name)))
	if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", fmt.Errorf("path %q escapes %s", name, root)
	}
	return target, nil
}

// ValidateVersion checks that a version string is safe to use as a
// directory name
func ValidateVersion(version string) error {
	if version == "" {
		return fmt.Errorf("version cannot be empty")
	}
	if filepath.IsAbs(version) {
		return fmt.Errorf("version cannot be an absolute path")
	}
	if filepath.Clean(version) != version || strings.ContainsAny(version, `/\`) || version == ".." {
		return fmt.Errorf("version contains invalid path components")
	}
	return nil
}
