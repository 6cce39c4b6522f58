package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sambigeara/healthperm/pkg/perm"
)

func TestLoadMissingUsesDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "catalog.yaml"), cfg.Catalog)
	assert.Equal(t, filepath.Join(dir, "grants.yaml"), cfg.GrantsFile)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultFetchTimeout, cfg.FetchTimeout)
}

func TestLoadResolvesPaths(t *testing.T) {
	dir := t.TempDir()
	raw := "catalog: apps/fit.yaml\ngrantsFile: /var/lib/healthperm/grants.yaml\nlogLevel: debug\nfetchTimeout: 3s\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte(raw), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "apps", "fit.yaml"), cfg.Catalog)
	assert.Equal(t, "/var/lib/healthperm/grants.yaml", cfg.GrantsFile)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"negative timeout", "fetchTimeout: -1s\n"},
		{"negative refresh", "refreshInterval: -30s\n"},
		{"bad level", "logLevel: chatty\n"},
		{"bad yaml", "catalog: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte(tt.raw), 0o600))
			_, err := Load(dir)
			require.Error(t, err)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")

	require.NoError(t, Save(dir, &Config{Catalog: "fit.yaml", LogLevel: "warn"}))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "fit.yaml"), cfg.Catalog)
	assert.Equal(t, "warn", cfg.LogLevel)

	require.Error(t, Save(dir, &Config{FetchTimeout: -time.Second}))
}

func TestSharingGroup(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", perm.DefaultGroup},
		{"none", ""},
		{" staff ", "staff"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, (&Config{SharedGroup: tt.in}).SharingGroup())
		})
	}
}

func TestInitWritesDefaultsOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")

	created, err := Init(dir)
	require.NoError(t, err)
	assert.True(t, created)

	raw, err := os.ReadFile(filepath.Join(dir, configFileName))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "logLevel: info")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultFetchTimeout, cfg.FetchTimeout)

	require.NoError(t, Save(dir, &Config{LogLevel: "debug"}))
	created, err = Init(dir)
	require.NoError(t, err)
	assert.False(t, created)

	cfg, err = Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}
