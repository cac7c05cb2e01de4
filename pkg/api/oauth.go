package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/hobbyhub/hobbyhub/internal/client/session"
)

// OAuthProvider describes a third-party identity provider. The client builds
// the authorize URL; the authorization code on the callback is consumed
// server-side through CompleteOAuth.
type OAuthProvider struct {
	Name              string
	AuthorizeEndpoint string
	ClientID          string
	RedirectURI       string
	Scope             string
}

// AuthorizeURL returns the provider's authorization URL with client id,
// redirect URI, and response_type=code.
func (p OAuthProvider) AuthorizeURL() string {
	q := url.Values{}
	q.Set("client_id", p.ClientID)
	q.Set("redirect_uri", p.RedirectURI)
	q.Set("response_type", "code")
	if p.Scope != "" {
		q.Set("scope", p.Scope)
	}
	return p.AuthorizeEndpoint + "?" + q.Encode()
}

// GoogleOAuth returns the Google identity provider.
func GoogleOAuth(clientID, redirectURI string) OAuthProvider {
	return OAuthProvider{
		Name:              "google",
		AuthorizeEndpoint: "https://accounts.google.com/o/oauth2/v2/auth",
		ClientID:          clientID,
		RedirectURI:       redirectURI,
		Scope:             "email profile",
	}
}

// KakaoOAuth returns the Kakao identity provider.
func KakaoOAuth(clientID, redirectURI string) OAuthProvider {
	return OAuthProvider{
		Name:              "kakao",
		AuthorizeEndpoint: "https://kauth.kakao.com/oauth/authorize",
		ClientID:          clientID,
		RedirectURI:       redirectURI,
	}
}

// CompleteOAuth exchanges an authorization code for a session via the
// backend. The backend talks to the provider; the client never holds
// provider secrets.
func (c *Client) CompleteOAuth(ctx context.Context, provider, code string) (session.LoginResult, error) {
	var res session.LoginResult
	if provider == "" || code == "" {
		return res, ErrValidation.Msg("provider and code are required")
	}
	path := fmt.Sprintf("/oauth/%s", provider)
	if err := c.postJSON(ctx, http.MethodPost, path, map[string]string{"code": code}, &res); err != nil {
		return res, err
	}
	return res, nil
}
