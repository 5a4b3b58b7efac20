package fsutils

import (
	"fmt"
	"os"
	"path/filepath"
)

// CreateDir creates a directory, and any missing parents, if it doesn't exist.
func CreateDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// WriteToFile writes content to a file, overwriting if it exists. The parent
// directory is created when missing.
func WriteToFile(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create parent of %q: %w", path, err)
	}
	return os.WriteFile(path, content, 0644)
}

// ReadFile reads the content of a file.
func ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// FileExists checks if a path exists and is a regular file (not a directory).
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists checks if a path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// RemoveDir deletes a directory tree. A missing directory is not an error.
func RemoveDir(path string) error {
	if path == "" {
		return nil
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to remove directory %q: %w", path, err)
	}
	return nil
}
