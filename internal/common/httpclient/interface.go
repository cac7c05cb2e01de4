package httpclient

import (
	"context"
	"io"
)

// RequestDoer is the interface the rest of the client codes against. It lets
// higher layers (the typed API wrappers, the notification channel, tests)
// stay independent of how requests reach the server.
type RequestDoer interface {
	// DoRequest makes an HTTP request with the given options.
	// Returns the response body, Location header (if present), and any error.
	DoRequest(ctx context.Context, opts RequestOptions) ([]byte, string, error)

	// StreamRequest makes an HTTP request and streams the response body.
	// The caller is responsible for closing the returned reader.
	StreamRequest(ctx context.Context, opts RequestOptions) (io.ReadCloser, error)
}

// Compile-time check that HTTPClient satisfies RequestDoer.
var _ RequestDoer = &HTTPClient{}
