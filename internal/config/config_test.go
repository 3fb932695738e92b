package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lumen.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadPartialConfigKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
[scene]
max_lights = 64

[logging]
level = "debug"
`))
	require.NoError(t, err)

	assert.Equal(t, 64, cfg.Scene.MaxLights)
	// Untouched keys keep their defaults.
	assert.Equal(t, 1024, cfg.Scene.MaxTextures)
	assert.Equal(t, 16*time.Millisecond, cfg.Sync.FrameRate)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.False(t, cfg.Database.Enabled)
}

func TestLoadFullConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
[assets]
dir = "/srv/assets"
manifest_path = "/srv/assets/scene.yaml"

[scripting]
dir = "lua"
entry = "lua/start.lua"

[sync]
frame_rate = "33ms"
max_frames = 100
save_revision = true

[database]
enabled = true
dsn = "postgres://u:p@db:5432/lumen"
conn_max_lifetime = "1h"
`))
	require.NoError(t, err)

	assert.Equal(t, "/srv/assets", cfg.Assets.Dir)
	assert.Equal(t, "lua/start.lua", cfg.Scripting.Entry)
	assert.Equal(t, 33*time.Millisecond, cfg.Sync.FrameRate)
	assert.Equal(t, 100, cfg.Sync.MaxFrames)
	assert.True(t, cfg.Sync.SaveRevision)
	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestLoadMalformedFile(t *testing.T) {
	_, err := Load(writeConfig(t, `[scene`))
	require.Error(t, err)
}
