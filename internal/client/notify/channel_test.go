package notify

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hobbyhub/hobbyhub/internal/client/session"
	"github.com/hobbyhub/hobbyhub/internal/common/httpclient"
	"github.com/hobbyhub/hobbyhub/internal/hubtest"
	"github.com/hobbyhub/hobbyhub/pkg/api"
)

// stubStreamer scripts the outcome of each StreamRequest call.
type stubStreamer struct {
	calls  atomic.Int32
	script func(call int32) (io.ReadCloser, error)
}

func (s *stubStreamer) StreamRequest(ctx context.Context, opts httpclient.RequestOptions) (io.ReadCloser, error) {
	return s.script(s.calls.Add(1))
}

func testOptions() Options {
	return Options{
		MaxRetries: 5,
		RetryDelay: time.Millisecond,
	}
}

func TestRetriesExhaustedGoesPermanentlyDisconnected(t *testing.T) {
	streamer := &stubStreamer{
		script: func(call int32) (io.ReadCloser, error) {
			return nil, fmt.Errorf("connection refused")
		},
	}

	ch := New(streamer, testOptions())
	err := ch.Run(context.Background())
	require.ErrorIs(t, err, ErrRetriesExhausted)

	// initial attempt plus 5 retries, never a 7th
	assert.Equal(t, int32(6), streamer.calls.Load())
	assert.Equal(t, StateDisconnected, ch.State())

	// no further automatic attempts after Run returns
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(6), streamer.calls.Load())
}

func TestSuccessfulConnectResetsRetryBudget(t *testing.T) {
	events := "data: {\"notificationId\":1,\"notificationType\":\"LIKE\",\"senderNickname\":\"ann\"}\n" +
		"data: {\"notificationId\":2,\"notificationType\":\"COMMENT\",\"senderNickname\":\"bob\"}\n"

	streamer := &stubStreamer{
		script: func(call int32) (io.ReadCloser, error) {
			if call == 1 {
				return io.NopCloser(strings.NewReader(events)), nil
			}
			return nil, fmt.Errorf("connection refused")
		},
	}

	ch := New(streamer, testOptions())
	done := make(chan error, 1)
	go func() { done <- ch.Run(context.Background()) }()

	var got []api.Notification
	for n := range ch.Events() {
		got = append(got, n)
	}
	require.ErrorIs(t, <-done, ErrRetriesExhausted)

	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].NotificationID)
	assert.Equal(t, api.NotificationLike, got[0].NotificationType)
	assert.Equal(t, "bob", got[1].SenderNickname)

	// the successful first connection reset the counter, so the broken
	// stream earned a fresh budget of 6 attempts: 7 calls total
	assert.Equal(t, int32(7), streamer.calls.Load())
	assert.Equal(t, StateDisconnected, ch.State())
}

func TestMalformedEventDroppedWithoutTeardown(t *testing.T) {
	events := "data: {not json}\n" +
		": heartbeat\n" +
		"\n" +
		"data: {\"notificationId\":9,\"notificationType\":\"COMMENT\",\"message\":\"new comment\"}\n"

	streamer := &stubStreamer{
		script: func(call int32) (io.ReadCloser, error) {
			if call == 1 {
				return io.NopCloser(strings.NewReader(events)), nil
			}
			return nil, fmt.Errorf("connection refused")
		},
	}

	ch := New(streamer, testOptions())
	done := make(chan error, 1)
	go func() { done <- ch.Run(context.Background()) }()

	var got []api.Notification
	for n := range ch.Events() {
		got = append(got, n)
	}
	<-done

	// the bad payload is dropped, the good one after it still arrives
	require.Len(t, got, 1)
	assert.Equal(t, int64(9), got[0].NotificationID)
	assert.Equal(t, "new comment", got[0].Message)
}

// ctxReadCloser blocks reads until its context is canceled, mimicking a
// context-aware network body with no traffic.
type ctxReadCloser struct {
	ctx context.Context
}

func (r ctxReadCloser) Read(p []byte) (int, error) {
	<-r.ctx.Done()
	return 0, r.ctx.Err()
}

func (r ctxReadCloser) Close() error { return nil }

type blockingStreamer struct {
	blocked chan struct{}
}

func (s *blockingStreamer) StreamRequest(ctx context.Context, opts httpclient.RequestOptions) (io.ReadCloser, error) {
	close(s.blocked)
	return ctxReadCloser{ctx: ctx}, nil
}

func TestCancelTearsDownChannel(t *testing.T) {
	blocked := make(chan struct{})
	streamer := &blockingStreamer{blocked: blocked}

	ctx, cancel := context.WithCancel(context.Background())
	ch := New(streamer, testOptions())
	done := make(chan error, 1)
	go func() { done <- ch.Run(ctx) }()

	<-blocked
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
	assert.Equal(t, StateDisconnected, ch.State())
}

func TestChannelDeliversBackendStream(t *testing.T) {
	srv := hubtest.NewServer()
	srv.StreamEvents = []string{
		`{"notificationId":1,"senderNickname":"minsu","message":"minsu commented on your post","notificationType":"COMMENT","read":false,"createdAt":"2026-08-01T10:00:00Z"}`,
		`{"notificationId":2,"senderNickname":"jiyeon","message":"jiyeon liked your post","notificationType":"LIKE","read":false,"createdAt":"2026-08-01T10:05:00Z"}`,
	}

	store := session.New("http://hubtest.local")
	store.SetAuth(session.LoginResult{
		AccessToken:  srv.ValidToken(),
		RefreshToken: srv.RefreshToken(),
		UserID:       1,
	})
	hc := httpclient.NewTestClient(store, srv.Router)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := New(hc, testOptions())
	done := make(chan error, 1)
	go func() { done <- ch.Run(ctx) }()

	// the backend closes the stream after the scripted events, so each
	// reconnect replays them; the first two deliveries are deterministic
	var got []api.Notification
	for n := range ch.Events() {
		got = append(got, n)
		if len(got) == 2 {
			cancel()
		}
	}
	require.ErrorIs(t, <-done, context.Canceled)

	require.GreaterOrEqual(t, len(got), 2)
	assert.Equal(t, int64(1), got[0].NotificationID)
	assert.Equal(t, api.NotificationComment, got[0].NotificationType)
	assert.Equal(t, "minsu", got[0].SenderNickname)
	assert.Equal(t, int64(2), got[1].NotificationID)
	assert.Equal(t, api.NotificationLike, got[1].NotificationType)
	assert.Equal(t, StateDisconnected, ch.State())
}

func TestChannelRequiresAuthenticatedSession(t *testing.T) {
	srv := hubtest.NewServer()
	srv.StreamEvents = []string{`{"notificationId":1,"notificationType":"LIKE"}`}

	// unauthenticated store: the subscribe endpoint rejects the connect,
	// so the channel burns its budget and gives up
	store := session.New("http://hubtest.local")
	hc := httpclient.NewTestClient(store, srv.Router)

	ch := New(hc, Options{MaxRetries: 1, RetryDelay: time.Millisecond})
	err := ch.Run(context.Background())
	require.ErrorIs(t, err, ErrRetriesExhausted)
	assert.Equal(t, StateDisconnected, ch.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "DISCONNECTED", StateDisconnected.String())
	assert.Equal(t, "CONNECTING", StateConnecting.String())
	assert.Equal(t, "CONNECTED", StateConnected.String())
	assert.Equal(t, "ERROR", StateError.String())
}
