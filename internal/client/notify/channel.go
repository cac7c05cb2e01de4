// Package notify implements the push notification channel: a long-lived
// one-way server-sent event stream that delivers notification events to an
// authenticated session without polling. The channel is a small state
// machine (DISCONNECTED, CONNECTING, CONNECTED, ERROR) with a bounded
// fixed-delay reconnect policy.
package notify

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/hobbyhub/hobbyhub/internal/common/httpclient"
	"github.com/hobbyhub/hobbyhub/pkg/api"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrRetriesExhausted is returned by Run when the reconnect budget is spent.
// The channel stays DISCONNECTED afterwards; reconnecting again is a caller
// decision (a new Run on the next auth change).
var ErrRetriesExhausted = errors.New("notification channel retries exhausted")

// State is the connection state of the channel.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateError
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Streamer opens the event stream. Satisfied by httpclient.HTTPClient.
type Streamer interface {
	StreamRequest(ctx context.Context, opts httpclient.RequestOptions) (io.ReadCloser, error)
}

// Options configures the channel.
type Options struct {
	Path       string        // stream endpoint, defaults to api.NotificationStreamPath
	MaxRetries int           // reconnect attempts after the initial failure, defaults to 5
	RetryDelay time.Duration // fixed backoff between attempts, defaults to 3s
	Buffer     int           // event channel buffer, defaults to 16
}

func (o *Options) fillDefaults() {
	if o.Path == "" {
		o.Path = api.NotificationStreamPath
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 5
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = 3 * time.Second
	}
	if o.Buffer <= 0 {
		o.Buffer = 16
	}
}

// Channel is the push notification channel. Create one per authenticated
// session; it must not outlive the session's auth state, which the owner
// enforces by canceling the Run context on logout.
type Channel struct {
	client Streamer
	opts   Options

	mu     sync.Mutex
	state  State
	events chan api.Notification
}

// New creates a channel over the given streamer.
func New(client Streamer, opts Options) *Channel {
	opts.fillDefaults()
	return &Channel{
		client: client,
		opts:   opts,
		state:  StateDisconnected,
		events: make(chan api.Notification, opts.Buffer),
	}
}

// Events returns the channel on which parsed notifications are delivered.
// It is closed when Run returns.
func (c *Channel) Events() <-chan api.Notification {
	return c.events
}

// State returns the current connection state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Channel) setState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != s {
		log.Debug().Str("from", c.state.String()).Str("to", s.String()).Msg("notification channel state")
		c.state = s
	}
}

// Run connects the stream and delivers events until ctx is canceled or the
// reconnect budget is exhausted. A successful connection resets the retry
// counter. Run is one-shot: it closes Events on return.
func (c *Channel) Run(ctx context.Context) error {
	defer close(c.events)
	defer c.setState(StateDisconnected)

	for {
		stream, err := c.connect(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn().Err(err).Msg("notification channel giving up")
			return ErrRetriesExhausted
		}

		c.setState(StateConnected)
		err = c.consume(ctx, stream)
		stream.Close()

		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.setState(StateError)
		log.Warn().Err(err).Msg("notification stream broke, reconnecting")
	}
}

// connect opens the stream, retrying with a fixed delay up to the configured
// bound. The initial attempt plus MaxRetries reconnects are allowed before
// giving up.
func (c *Channel) connect(ctx context.Context) (io.ReadCloser, error) {
	var stream io.ReadCloser
	err := retry.Do(
		func() error {
			c.setState(StateConnecting)
			r, err := c.client.StreamRequest(ctx, httpclient.RequestOptions{
				Method: http.MethodGet,
				Path:   c.opts.Path,
			})
			if err != nil {
				c.setState(StateError)
				return err
			}
			stream = r
			return nil
		},
		retry.Attempts(uint(c.opts.MaxRetries)+1),
		retry.Delay(c.opts.RetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
	if err != nil {
		return nil, errors.Wrap(err, "notification stream connect")
	}
	return stream, nil
}

// consume reads newline-delimited SSE frames until the stream breaks. A
// malformed event payload is logged and dropped; it does not tear down the
// connection.
func (c *Channel) consume(ctx context.Context, stream io.Reader) error {
	scanner := bufio.NewScanner(stream)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			// event:/id: fields are not used by the backend
			continue
		}

		var n api.Notification
		if err := json.Unmarshal([]byte(strings.TrimSpace(data)), &n); err != nil {
			log.Warn().Err(err).Msg("dropping malformed notification event")
			continue
		}

		select {
		case c.events <- n:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if err := scanner.Err(); err != nil {
		return err
	}
	return io.EOF
}
