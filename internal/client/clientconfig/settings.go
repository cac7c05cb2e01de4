// Package clientconfig loads static application settings: OAuth provider
// registration, default paging, and the notification channel's reconnect
// policy. These are deploy-time settings, separate from the per-user session
// state the CLI config file holds.
package clientconfig

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// OAuthSettings holds the client-side registration of the two identity
// providers. Secrets stay server-side; only client ids and redirect URIs
// live here.
type OAuthSettings struct {
	GoogleClientID    string `toml:"google_client_id"`
	GoogleRedirectURI string `toml:"google_redirect_uri"`
	KakaoClientID     string `toml:"kakao_client_id"`
	KakaoRedirectURI  string `toml:"kakao_redirect_uri"`
}

// NotifySettings is the reconnect policy of the push notification channel.
type NotifySettings struct {
	MaxRetries        int `toml:"max_retries"`
	RetryDelaySeconds int `toml:"retry_delay_seconds"`
}

// RetryDelay returns the backoff interval as a duration.
func (n NotifySettings) RetryDelay() time.Duration {
	return time.Duration(n.RetryDelaySeconds) * time.Second
}

// Settings is the full application settings document.
type Settings struct {
	ServerURL string         `toml:"server_url"`
	PageSize  int            `toml:"page_size"`
	OAuth     OAuthSettings  `toml:"oauth"`
	Notify    NotifySettings `toml:"notify"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		PageSize: 15,
		Notify: NotifySettings{
			MaxRetries:        5,
			RetryDelaySeconds: 3,
		},
	}
}

// Load reads settings from the given toml file, filling unset fields with
// defaults. A missing file is not an error: the defaults are returned.
func Load(path string) (Settings, error) {
	settings := Default()
	if path == "" {
		return settings, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return settings, nil
	}
	if _, err := toml.DecodeFile(path, &settings); err != nil {
		return settings, fmt.Errorf("unable to parse settings file %s: %w", path, err)
	}
	if settings.PageSize <= 0 {
		settings.PageSize = 15
	}
	if settings.Notify.MaxRetries <= 0 {
		settings.Notify.MaxRetries = 5
	}
	if settings.Notify.RetryDelaySeconds <= 0 {
		settings.Notify.RetryDelaySeconds = 3
	}
	return settings, nil
}
