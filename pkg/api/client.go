// Package api provides typed wrappers over the hobbyhub REST API: auth
// flows, the post feed, comments, likes, search, notifications, and the user
// profile/ranking pages. All wrappers go through an httpclient.RequestDoer,
// which owns token attachment and expired-token recovery.
package api

import (
	"context"
	"fmt"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/hobbyhub/hobbyhub/internal/common/httpclient"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client is a typed client for the hobbyhub backend.
type Client struct {
	doer     httpclient.RequestDoer
	pageSize int
}

// Option configures a Client.
type Option func(*Client)

// WithPageSize sets the default page size for pager constructors.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// New creates a Client over the given request doer.
func New(doer httpclient.RequestDoer, opts ...Option) *Client {
	c := &Client{
		doer:     doer,
		pageSize: 15,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Doer exposes the underlying request doer, used by the notification channel
// to open the event stream with the same auth state.
func (c *Client) Doer() httpclient.RequestDoer {
	return c.doer
}

// Status fetches server status and version information.
func (c *Client) Status(ctx context.Context) (ServerStatus, error) {
	var status ServerStatus
	body, _, err := c.doer.DoRequest(ctx, httpclient.RequestOptions{
		Method: http.MethodGet,
		Path:   "/status",
	})
	if err != nil {
		return status, err
	}
	if err := json.Unmarshal(body, &status); err != nil {
		return status, fmt.Errorf("failed to parse status response: %w", err)
	}
	return status, nil
}

// requestGet builds the options for a GET against a paginated endpoint.
func requestGet(path string, query map[string]string) httpclient.RequestOptions {
	return httpclient.RequestOptions{
		Method:      http.MethodGet,
		Path:        path,
		QueryParams: query,
	}
}

// getJSON performs a GET and decodes the response into out.
func (c *Client) getJSON(ctx context.Context, path string, query map[string]string, out any) error {
	body, _, err := c.doer.DoRequest(ctx, httpclient.RequestOptions{
		Method:      http.MethodGet,
		Path:        path,
		QueryParams: query,
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response from %s: %w", path, err)
	}
	return nil
}

// postJSON performs a request with a JSON body and decodes the response into
// out when out is non-nil.
func (c *Client) postJSON(ctx context.Context, method, path string, in any, out any) error {
	var reqBody []byte
	if in != nil {
		var err error
		reqBody, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request for %s: %w", path, err)
		}
	}
	body, _, err := c.doer.DoRequest(ctx, httpclient.RequestOptions{
		Method: method,
		Path:   path,
		Body:   reqBody,
	})
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response from %s: %w", path, err)
	}
	return nil
}
