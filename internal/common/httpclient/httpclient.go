// Package httpclient provides the authenticated HTTP client used to reach the
// hobbyhub backend REST API. It attaches bearer tokens from a SessionProvider,
// transparently recovers from expired-token failures with a single
// refresh-and-retry cycle, and exposes a streaming variant for the
// notification event stream.
package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// SessionProvider supplies authentication state to the client. The client
// only reads tokens and invokes Refresh/Downgrade; it never mutates session
// fields directly. Implementations must make Refresh safe for concurrent
// callers.
type SessionProvider interface {
	// GetServerURL returns the base URL of the backend server.
	GetServerURL() string
	// CurrentToken returns the current access token, empty when
	// unauthenticated.
	CurrentToken() string
	// Refresh exchanges the refresh token for a new access token. Returns
	// true when a new access token is in place.
	Refresh(ctx context.Context) bool
	// Downgrade clears the session to the unauthenticated public state.
	Downgrade()
}

// ServerError is the error envelope the backend returns on failures.
type ServerError struct {
	Status  int    `json:"status"`  // HTTP status code echoed by the server
	Message string `json:"message"` // error message from the server
}

// HTTPError represents a failed request with its HTTP status code and message.
type HTTPError struct {
	StatusCode int    // HTTP status code of the error
	Message    string // error message or raw response body
}

// Error implements the error interface for HTTPError.
func (e *HTTPError) Error() string {
	return e.Message
}

// credentialPaths are endpoints where a 401 means bad credentials, not an
// expired session. Refresh must not be attempted for these so a wrong
// password surfaces to the caller unchanged.
var credentialPaths = []string{
	"/user/login",
	"/user/signup",
	"/user/token/refresh",
}

func isCredentialPath(p string) bool {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	for _, cp := range credentialPaths {
		if p == cp || strings.HasPrefix(p, cp+"/") {
			return true
		}
	}
	return false
}

// HTTPClient is a client for the hobbyhub REST API. It handles token
// attachment, request building, response decoding, and expired-token
// recovery.
type HTTPClient struct {
	session    SessionProvider
	httpClient *http.Client
}

// ClientOptions contains options for configuring the HTTP client.
type ClientOptions struct {
	DisableCertValidation bool // if true, skips TLS certificate validation
}

// NewClient creates a new HTTP client bound to the given session provider.
func NewClient(session SessionProvider, opts ...ClientOptions) *HTTPClient {
	clientOpts := ClientOptions{}
	if len(opts) > 0 {
		clientOpts = opts[0]
	}
	return NewClientWithOptions(session, clientOpts)
}

// NewClientWithOptions creates a new HTTP client with explicit options.
func NewClientWithOptions(session SessionProvider, opts ClientOptions) *HTTPClient {
	httpClient := &http.Client{}

	if opts.DisableCertValidation {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true,
			},
		}
	}

	return &HTTPClient{
		session:    session,
		httpClient: httpClient,
	}
}

// RequestOptions contains options for making HTTP requests.
// All fields are required except QueryParams and Body.
type RequestOptions struct {
	Method      string            // HTTP method (GET, POST, PUT, DELETE)
	Path        string            // API endpoint path
	QueryParams map[string]string // optional query parameters
	Body        []byte            // optional request body
}

// DoRequest makes an HTTP request with the given options.
// Returns the response body, Location header (if present), and any error.
//
// A 401 response against a non-credential path triggers exactly one token
// refresh through the session provider. On success the original request is
// re-issued once with the new token; on failure the session is downgraded to
// the public state and the original error is returned. At most one
// refresh-and-retry cycle happens per call.
func (c *HTTPClient) DoRequest(ctx context.Context, opts RequestOptions) ([]byte, string, error) {
	body, location, err := c.do(ctx, opts, c.session.CurrentToken())
	if err == nil {
		return body, location, nil
	}

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusUnauthorized {
		return nil, "", err
	}
	if isCredentialPath(opts.Path) {
		// credential failure, surface unchanged
		return nil, "", err
	}

	if !c.session.Refresh(ctx) || c.session.CurrentToken() == "" {
		log.Ctx(ctx).Debug().Str("path", opts.Path).Msg("token refresh failed, downgrading session")
		c.session.Downgrade()
		return nil, "", err
	}

	return c.do(ctx, opts, c.session.CurrentToken())
}

// do builds and executes a single request with the given token. It never
// retries.
func (c *HTTPClient) do(ctx context.Context, opts RequestOptions, token string) ([]byte, string, error) {
	req, err := c.buildRequest(ctx, opts, token)
	if err != nil {
		return nil, "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, "", decodeError(resp.StatusCode, body)
	}

	return body, resp.Header.Get("Location"), nil
}

// buildRequest assembles the outbound request: URL, query parameters, JSON
// content type, a per-request id, and the bearer token when one is present.
func (c *HTTPClient) buildRequest(ctx context.Context, opts RequestOptions, token string) (*http.Request, error) {
	u, err := url.Parse(c.session.GetServerURL())
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Path == "" {
		u.Path = "/"
	}
	u.Path = path.Join(u.Path, opts.Path)

	q := u.Query()
	for k, v := range opts.QueryParams {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, opts.Method, u.String(), bytes.NewBuffer(opts.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.New().String())

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req, nil
}

// decodeError turns a failed response into an HTTPError, preferring the
// server's error envelope when the body carries one.
func decodeError(statusCode int, body []byte) error {
	var serverErr ServerError
	if err := json.Unmarshal(body, &serverErr); err == nil && serverErr.Message != "" {
		return &HTTPError{
			StatusCode: statusCode,
			Message:    serverErr.Message,
		}
	}
	return &HTTPError{
		StatusCode: statusCode,
		Message:    string(body),
	}
}

// StreamRequest makes an HTTP request and returns a reader over the raw
// response body, used for the server-sent event stream. The caller is
// responsible for closing the returned reader. No refresh-retry is attempted
// here; the notification channel owns its own reconnect policy.
func (c *HTTPClient) StreamRequest(ctx context.Context, opts RequestOptions) (io.ReadCloser, error) {
	req, err := c.buildRequest(ctx, opts, c.session.CurrentToken())
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, decodeError(resp.StatusCode, body)
	}

	return resp.Body, nil
}
