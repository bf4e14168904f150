package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "user", cfg.Terminal.User)
	assert.Equal(t, "portfolio-os", cfg.Terminal.Host)
	assert.True(t, cfg.Terminal.Color)
	assert.Empty(t, cfg.Seed.Path)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deskfs.toml")
	content := `
[log]
level = "debug"

[seed]
path = "/etc/deskfs/seed.yaml"

[terminal]
host = "from-file"
color = false

[mount]
point = "/mnt/desk"
metrics_addr = ":9100"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("DESKFS_TERMINAL_HOST", "from-env")
	t.Setenv("DESKFS_MOUNT_ALLOW_OTHER", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/etc/deskfs/seed.yaml", cfg.Seed.Path)
	assert.Equal(t, "from-env", cfg.Terminal.Host)
	assert.Equal(t, "user", cfg.Terminal.User, "unset values keep defaults")
	assert.False(t, cfg.Terminal.Color)
	assert.Equal(t, "/mnt/desk", cfg.Mount.Point)
	assert.True(t, cfg.Mount.AllowOther)
	assert.Equal(t, ":9100", cfg.Mount.MetricsAddr)
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv("DESKFS_LOG_LEVEL", "trace")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "trace", cfg.Log.Level)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorContains(t, err, "failed to parse config file")

	t.Setenv("DESKFS_MOUNT_UID", "not-a-number")
	_, err = Load("")
	assert.ErrorContains(t, err, "failed to load config from environment")
}

func TestPUIDOverride(t *testing.T) {
	t.Setenv("PUID", "1234")
	t.Setenv("PGID", "5678")

	cfg := Default()
	assert.Equal(t, uint32(1234), cfg.Mount.UID)
	assert.Equal(t, uint32(5678), cfg.Mount.GID)
}
