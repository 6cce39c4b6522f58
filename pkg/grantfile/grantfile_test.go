package grantfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sambigeara/healthperm/pkg/types"
)

func TestLoadMissingFile(t *testing.T) {
	f, err := Load(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)
	assert.Empty(t, f.Apps)
	assert.False(t, f.Granted("com.example.fit")("x"))
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("apps: [\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)

	f := &File{}
	f.Set("com.example.fit", []types.PermissionID{"b", "a", "b"})
	f.Set("com.example.sleep", []types.PermissionID{"c"})
	require.NoError(t, Save(path, f))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []types.PermissionID{"a", "b"}, loaded.Apps["com.example.fit"].Granted)

	granted := loaded.Granted("com.example.sleep")
	assert.True(t, granted("c"))
	assert.False(t, granted("a"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.Mode().IsRegular())
}

func TestSetEmptyRemovesApp(t *testing.T) {
	f := &File{}
	f.Set("a", []types.PermissionID{"x"})
	f.Set("a", nil)
	assert.NotContains(t, f.Apps, "a")
}
