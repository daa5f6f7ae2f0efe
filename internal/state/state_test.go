package state_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hbjs97/vagrant-shim/internal/state"
	"github.com/hbjs97/vagrant-shim/internal/testutil"
)

func TestLoadState_ValidJSON(t *testing.T) {
	content := `{
		"version": 1,
		"entries": {
			"/home/u/.bashrc": {
				"image": "vagrant-libvirt:latest",
				"block_hash": "abc123",
				"installed_at": "2026-02-14T10:30:00Z"
			}
		}
	}`
	path := testutil.TempStateFile(t, content)
	s, err := state.Load(afero.NewOsFs(), path)

	require.NoError(t, err)
	assert.Equal(t, 1, s.Version)
	e, ok := s.Get("/home/u/.bashrc")
	require.True(t, ok)
	assert.Equal(t, "vagrant-libvirt:latest", e.Image)
}

func TestLoadState_MissingFile(t *testing.T) {
	s, err := state.Load(afero.NewMemMapFs(), "/nonexistent/state.json")
	require.NoError(t, err) // graceful: empty state
	assert.Empty(t, s.Entries)
}

func TestLoadState_InvalidJSON(t *testing.T) {
	path := testutil.TempStateFile(t, "not json {{{")
	s, err := state.Load(afero.NewOsFs(), path)
	require.NoError(t, err) // graceful degradation
	assert.Empty(t, s.Entries)
}

func TestState_SetRemoveSave(t *testing.T) {
	fsys := afero.NewMemMapFs()
	path := "/state/vagrant-shim/state.json"
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.FixedZone("KST", 9*3600))

	s := state.New()
	s.Set("/home/u/.zshrc", state.NewEntry("img:1", "vagrant(){\n}", now))
	s.Set("/home/u/.bashrc", state.NewEntry("img:2", "vagrant(){\n}", now))
	require.NoError(t, s.Save(fsys, path))

	info, err := fsys.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, "-rw-------", info.Mode().Perm().String())

	loaded, err := state.Load(fsys, path)
	require.NoError(t, err)
	assert.Equal(t, []string{"/home/u/.bashrc", "/home/u/.zshrc"}, loaded.Paths())
	e, _ := loaded.Get("/home/u/.zshrc")
	assert.Equal(t, "2026-10-15T00:00:00Z", e.InstalledAt)

	loaded.Remove("/home/u/.zshrc")
	_, ok := loaded.Get("/home/u/.zshrc")
	assert.False(t, ok)
}

func TestHashBlock(t *testing.T) {
	a := state.HashBlock("vagrant(){\n}")
	assert.Len(t, a, 64)
	assert.Equal(t, a, state.HashBlock("vagrant(){\n}"))
	assert.NotEqual(t, a, state.HashBlock("vagrant(){\n  x\n}"))
}

func TestDefaultPath(t *testing.T) {
	assert.Equal(t, "state.json", filepath.Base(state.DefaultPath()))
}
