// Package testutil provides common test helpers for the vagrant-shim project.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// TempProfile creates a shell profile file with the given content inside a
// temporary home directory and returns its path.
func TempProfile(t *testing.T, name, content string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, name)

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("TempProfile: write failed: %v", err)
	}

	return path
}

// ReadProfile returns the current content of a profile file.
func ReadProfile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadProfile: read failed: %v", err)
	}

	return string(data)
}

// TempHome creates a temporary home directory containing the given
// (initially empty) dotfiles and points $HOME at it.
func TempHome(t *testing.T, dotfiles ...string) string {
	t.Helper()

	home := t.TempDir()
	for _, name := range dotfiles {
		if err := os.WriteFile(filepath.Join(home, name), nil, 0644); err != nil {
			t.Fatalf("TempHome: write %s failed: %v", name, err)
		}
	}
	t.Setenv("HOME", home)

	return home
}

// TempConfigFile creates a temporary config.toml with the given content
// and returns its path. The file is automatically cleaned up.
func TempConfigFile(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("TempConfigFile: write failed: %v", err)
	}

	return path
}

// TempStateFile creates a temporary state.json with the given content
// and returns its path.
func TempStateFile(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("TempStateFile: write failed: %v", err)
	}

	return path
}
