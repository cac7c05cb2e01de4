package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hobbyhub/hobbyhub/internal/client/session"
)

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := &Config{
		Version:   "0.1.0",
		ServerURL: "https://api.hobbyhub.io",
		Session: session.State{
			AccessToken:   "access-1",
			RefreshToken:  "refresh-1",
			UserID:        42,
			Authenticated: true,
		},
	}
	require.NoError(t, cfg.WriteConfig(path))

	require.NoError(t, LoadConfig(path))
	loaded := GetConfig()
	require.NotNil(t, loaded)
	assert.Equal(t, "https://api.hobbyhub.io", loaded.ServerURL)
	assert.Equal(t, "access-1", loaded.Session.AccessToken)
	assert.Equal(t, "refresh-1", loaded.Session.RefreshToken)
	assert.Equal(t, int64(42), loaded.Session.UserID)
	assert.True(t, loaded.Session.Authenticated)
}

func TestLoadConfigRequiresServerURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: \"0.1.0\"\n"), 0600))

	err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server_url")
}

func TestLoadConfigMissingFile(t *testing.T) {
	err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestConfigFilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := &Config{Version: "0.1.0", ServerURL: "https://api.hobbyhub.io"}
	require.NoError(t, cfg.WriteConfig(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestMorphServer(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"api.hobbyhub.io", "https://api.hobbyhub.io"},
		{"http://localhost:8080", "http://localhost:8080"},
		{"https://api.hobbyhub.io/", "https://api.hobbyhub.io"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MorphServer(tt.in))
	}
}
