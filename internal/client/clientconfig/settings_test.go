package clientconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	settings, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), settings)
	assert.Equal(t, 3*time.Second, settings.Notify.RetryDelay())
}

func TestLoadOverridesDefaults(t *testing.T) {
	doc := `
server_url = "https://hub.example.com:8443"
page_size = 30

[oauth]
google_client_id = "gid"
google_redirect_uri = "https://hub.example.com/oauth/google"
kakao_client_id = "kid"
kakao_redirect_uri = "https://hub.example.com/oauth/kakao"

[notify]
max_retries = 10
retry_delay_seconds = 1
`
	path := filepath.Join(t.TempDir(), "hobbyhub.toml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	settings, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://hub.example.com:8443", settings.ServerURL)
	assert.Equal(t, 30, settings.PageSize)
	assert.Equal(t, "gid", settings.OAuth.GoogleClientID)
	assert.Equal(t, "kid", settings.OAuth.KakaoClientID)
	assert.Equal(t, 10, settings.Notify.MaxRetries)
	assert.Equal(t, time.Second, settings.Notify.RetryDelay())
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("server_url = [not toml"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
