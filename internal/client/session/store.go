// Package session holds the client-side authentication state: the
// access/refresh token pair, the user identity, and the authenticated flag.
// It is the single source of truth for that state. The store performs the
// network call for token refresh but holds no retry policy; retry behavior
// lives in the HTTP client that invokes it.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/hobbyhub/hobbyhub/internal/common/httpclient"
)

// refreshPath is the backend endpoint that exchanges a refresh token for a
// new access token.
const refreshPath = "/user/token/refresh"

// LoginResult is the payload returned by login, signup, and OAuth callback
// endpoints.
type LoginResult struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	UserID       int64  `json:"userId"`
}

// State is the serializable form of the session, persisted by the CLI config
// layer between invocations.
type State struct {
	AccessToken   string `yaml:"access_token" json:"accessToken"`
	RefreshToken  string `yaml:"refresh_token" json:"refreshToken"`
	UserID        int64  `yaml:"user_id" json:"userId"`
	Authenticated bool   `yaml:"authenticated" json:"authenticated"`
}

// refreshCall is a single in-flight refresh shared by concurrent callers.
type refreshCall struct {
	done chan struct{}
	ok   bool
}

// Store is the client session store. All methods are safe for concurrent
// use. Concurrent Refresh calls are de-duplicated into one in-flight
// operation whose result every caller shares.
type Store struct {
	mu            sync.Mutex
	serverURL     string
	httpClient    *http.Client
	accessToken   string
	refreshToken  string
	userID        int64
	authenticated bool
	inflight      *refreshCall
}

// Option configures a Store.
type Option func(*Store)

// WithHTTPClient overrides the HTTP client used for the refresh call.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *Store) {
		s.httpClient = hc
	}
}

// New creates an unauthenticated session store bound to the given server.
func New(serverURL string, opts ...Option) *Store {
	s := &Store{
		serverURL:  serverURL,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetAuth stores the token pair and user id from a successful login and
// marks the session authenticated.
func (s *Store) SetAuth(res LoginResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = res.AccessToken
	s.refreshToken = res.RefreshToken
	s.userID = res.UserID
	s.authenticated = true
}

// SetPublicUser clears all session fields to the unauthenticated default.
func (s *Store) SetPublicUser() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = ""
	s.refreshToken = ""
	s.userID = 0
	s.authenticated = false
}

// Logout clears the session. Alias of SetPublicUser; the server holds no
// client-visible logout state.
func (s *Store) Logout() {
	s.SetPublicUser()
}

// Downgrade implements httpclient.SessionProvider. Called by the HTTP client
// when a refresh-and-retry cycle fails.
func (s *Store) Downgrade() {
	s.SetPublicUser()
}

// GetServerURL returns the backend base URL.
func (s *Store) GetServerURL() string {
	return s.serverURL
}

// CurrentToken returns the access token, empty when unauthenticated.
func (s *Store) CurrentToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken
}

// Authenticated reports whether the session holds a valid login.
func (s *Store) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// UserID returns the logged-in user's id, 0 when unauthenticated.
func (s *Store) UserID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// Snapshot returns a copy of the session for persistence.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		AccessToken:   s.accessToken,
		RefreshToken:  s.refreshToken,
		UserID:        s.userID,
		Authenticated: s.authenticated,
	}
}

// Restore loads a previously persisted session state.
func (s *Store) Restore(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = st.AccessToken
	s.refreshToken = st.RefreshToken
	s.userID = st.UserID
	s.authenticated = st.Authenticated
}

// TokenExpiry returns the expiry of the access token read from its exp
// claim, without verifying the signature. Returns the zero time when there
// is no token or the claim cannot be read. Display use only; the server is
// the authority on token validity.
func (s *Store) TokenExpiry() time.Time {
	token := s.CurrentToken()
	if token == "" {
		return time.Time{}
	}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// Refresh exchanges the stored refresh token for a new access token. On
// success the access token is replaced and true is returned. On any failure
// (no refresh token, network error, rejected token, malformed response) it
// returns false and leaves existing tokens untouched; the caller decides
// fallback behavior.
//
// Concurrent callers share a single in-flight refresh: the first caller
// performs the network call, the rest wait for its result.
func (s *Store) Refresh(ctx context.Context) bool {
	s.mu.Lock()
	if s.inflight != nil {
		call := s.inflight
		s.mu.Unlock()
		select {
		case <-call.done:
			return call.ok
		case <-ctx.Done():
			return false
		}
	}
	if s.refreshToken == "" {
		s.mu.Unlock()
		return false
	}
	call := &refreshCall{done: make(chan struct{})}
	s.inflight = call
	refreshToken := s.refreshToken
	s.mu.Unlock()

	newToken, err := s.requestNewToken(ctx, refreshToken)

	s.mu.Lock()
	if err == nil && newToken != "" {
		s.accessToken = newToken
		call.ok = true
	} else if err != nil {
		log.Ctx(ctx).Debug().Err(err).Msg("token refresh failed")
	}
	s.inflight = nil
	s.mu.Unlock()
	close(call.done)

	return call.ok
}

// requestNewToken performs the refresh network call. It goes through a bare
// HTTP client rather than the interceptor, so a 401 here can never recurse
// into another refresh.
func (s *Store) requestNewToken(ctx context.Context, refreshToken string) (string, error) {
	u, err := url.Parse(s.serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Path == "" {
		u.Path = "/"
	}
	u.Path = path.Join(u.Path, refreshPath)

	reqBody, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return "", fmt.Errorf("failed to encode refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("refresh request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read refresh response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("refresh rejected with status %d", resp.StatusCode)
	}

	var res struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return "", fmt.Errorf("malformed refresh response: %w", err)
	}
	return res.AccessToken, nil
}

// Compile-time check that Store satisfies the HTTP client's provider
// interface.
var _ httpclient.SessionProvider = &Store{}
