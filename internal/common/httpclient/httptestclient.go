package httpclient

import (
	"net/http"
	"net/http/httptest"
)

// handlerTransport routes requests straight into an http.Handler using
// httptest, so tests run the full client code path without a listener.
type handlerTransport struct {
	handler http.Handler
}

func (t handlerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rec := httptest.NewRecorder()
	t.handler.ServeHTTP(rec, req)
	return rec.Result(), nil
}

// NewTestTransport returns a RoundTripper that serves requests in-process
// from the given handler. Useful for pointing other HTTP clients, such as
// the session store's refresh client, at the same test backend.
func NewTestTransport(handler http.Handler) http.RoundTripper {
	return handlerTransport{handler: handler}
}

// NewTestClient creates an HTTPClient whose requests are served in-process
// by the given handler. The interception and refresh-retry logic is the same
// as the real client's; only the transport differs.
func NewTestClient(session SessionProvider, handler http.Handler) *HTTPClient {
	return &HTTPClient{
		session: session,
		httpClient: &http.Client{
			Transport: handlerTransport{handler: handler},
		},
	}
}
