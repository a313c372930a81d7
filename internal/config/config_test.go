package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000", cfg.Server)
	assert.Equal(t, "", cfg.ChatflowID)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_EnvFallbacks(t *testing.T) {
	t.Setenv("FLOWCHAT_SERVER", "https://chat.example.com")
	t.Setenv("FLOWCHAT_CHATFLOW", "flow-env")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	assert.Equal(t, "https://chat.example.com", cfg.Server)
	assert.Equal(t, "flow-env", cfg.ChatflowID)
}

func TestLoad_FileOverridesEnv(t *testing.T) {
	t.Setenv("FLOWCHAT_SERVER", "https://from-env.example.com")

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server":"https://from-file.example.com","chatflow_id":"flow-file"}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://from-file.example.com", cfg.Server)
	assert.Equal(t, "flow-file", cfg.ChatflowID)
}

func TestLoad_CorruptFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := &Config{Server: "https://chat.example.com", ChatflowID: "flow-1", LogLevel: "debug"}

	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestDir_HonorsEnvOverride(t *testing.T) {
	t.Setenv("FLOWCHAT_CONFIG_DIR", "/tmp/custom-flowchat")

	assert.Equal(t, "/tmp/custom-flowchat", Dir())
	assert.Equal(t, filepath.Join("/tmp/custom-flowchat", "config.json"), DefaultPath())
	assert.Equal(t, filepath.Join("/tmp/custom-flowchat", "tokens.json"), TokenCachePath())
}
