package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv removes the AETHERFY_* variables for the duration of a test.
// t.Setenv registers the restore; Unsetenv then removes the variable so an
// empty value does not shadow file-provided settings.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"AETHERFY_API_KEY", "AETHERFY_VECTORS_API_KEY", "AETHERFY_WORKSPACE", "AETHERFY_ENDPOINT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("AETHERFY_API_KEY", "afy_test_0123456789abcdef")
	t.Setenv("AETHERFY_WORKSPACE", "team-a")
	t.Setenv("AETHERFY_ENDPOINT", "https://eu.vectors.aetherfy.com")

	e, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, "afy_test_0123456789abcdef", e.APIKey)
	assert.Equal(t, "team-a", e.Workspace)
	assert.Equal(t, "https://eu.vectors.aetherfy.com", e.Endpoint)
	assert.Empty(t, e.AltAPIKey)
}

func TestResolveAPIKeyPrecedence(t *testing.T) {
	e := &Env{APIKey: "env-primary", AltAPIKey: "env-alt"}

	assert.Equal(t, "explicit", e.ResolveAPIKey("explicit"), "explicit argument wins")
	assert.Equal(t, "env-primary", e.ResolveAPIKey(""), "AETHERFY_API_KEY beats the alternate")

	alt := &Env{AltAPIKey: "env-alt"}
	assert.Equal(t, "env-alt", alt.ResolveAPIKey(""), "alternate variable is the last fallback")

	empty := &Env{}
	assert.Empty(t, empty.ResolveAPIKey(""))
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("endpoint: https://vectors.example.com\nworkspace: team-a\ntimeout: 5s\nfallback_endpoints:\n  - https://eu.vectors.example.com\n")
	require.NoError(t, os.WriteFile(path, content, 0600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://vectors.example.com", cfg.Endpoint)
	assert.Equal(t, "team-a", cfg.Workspace)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, []string{"https://eu.vectors.example.com"}, cfg.FallbackEndpoints)
}

func TestLoadFileEnvOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("AETHERFY_WORKSPACE", "env-ws")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workspace: file-ws\n"), 0600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "env-ws", cfg.Workspace, "environment overrides the file")
}

func TestLoadFileMissingIsNotAnError(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Endpoint)
}

func TestLoadFileRejectsInsecurePermissions(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workspace: team-a\n"), 0644))

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insecure config file permissions")
}
