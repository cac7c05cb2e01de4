package page

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID        int64  `json:"id"`
	CreatedAt string `json:"createdAt"`
}

func itemKey(it item) (int64, string) {
	return it.ID, it.CreatedAt
}

// makeItems builds n items with descending ids starting at first, matching
// the newest-first server ordering.
func makeItems(first int64, n int) []item {
	items := make([]item, n)
	for i := range items {
		items[i] = item{ID: first - int64(i), CreatedAt: fmt.Sprintf("2026-08-%02dT00:00:00Z", n-i)}
	}
	return items
}

func TestLengthBasedTermination(t *testing.T) {
	var cursors []Cursor
	fetch := func(ctx context.Context, cur Cursor, size int) (Result[item], error) {
		cursors = append(cursors, cur)
		if cur.LastID == nil {
			return Result[item]{Items: makeItems(100, size)}, nil
		}
		// second page is short, signaling exhaustion
		return Result[item]{Items: makeItems(*cur.LastID-1, size-8)}, nil
	}

	p := NewPager(fetch, itemKey, 15)

	first, err := p.Next(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 15)
	assert.True(t, p.HasMore(), "full page means another fetch is allowed")

	second, err := p.Next(context.Background())
	require.NoError(t, err)
	require.Len(t, second, 7)
	assert.False(t, p.HasMore(), "short page means exhausted")

	_, err = p.Next(context.Background())
	assert.ErrorIs(t, err, ErrExhausted)

	// first request omits the cursor, second continues from the last item
	require.Len(t, cursors, 2)
	assert.Nil(t, cursors[0].LastID)
	require.NotNil(t, cursors[1].LastID)
	assert.Equal(t, first[len(first)-1].ID, *cursors[1].LastID)
}

func TestFirstPageCursorOmittedPerInstance(t *testing.T) {
	fetch := func(ctx context.Context, cur Cursor, size int) (Result[item], error) {
		return Result[item]{Items: makeItems(50, size)}, nil
	}

	a := NewPager(fetch, itemKey, 10)
	b := NewPager(fetch, itemKey, 10)

	_, err := a.Next(context.Background())
	require.NoError(t, err)
	require.NotNil(t, a.Cursor().LastID)

	// an independent pager starts from scratch; cursor state does not leak
	assert.Nil(t, b.Cursor().LastID)
}

func TestFlagBasedTermination(t *testing.T) {
	boolPtr := func(v bool) *bool { return &v }
	int64Ptr := func(v int64) *int64 { return &v }
	strPtr := func(v string) *string { return &v }

	calls := 0
	fetch := func(ctx context.Context, cur Cursor, size int) (Result[item], error) {
		calls++
		if calls == 1 {
			// short page but the server says there is more
			return Result[item]{
				Items:         makeItems(30, 4),
				HasMore:       boolPtr(true),
				NextID:        int64Ptr(27),
				NextCreatedAt: strPtr("2026-08-01T00:00:00Z"),
			}, nil
		}
		// full page but the server says this is the end
		return Result[item]{Items: makeItems(26, size), HasMore: boolPtr(false)}, nil
	}

	p := NewPager(fetch, itemKey, 15)

	_, err := p.Next(context.Background())
	require.NoError(t, err)
	assert.True(t, p.HasMore(), "has_more=true overrides the short page length")

	// server-provided next cursor wins over last-item derivation
	cur := p.Cursor()
	require.NotNil(t, cur.LastID)
	assert.Equal(t, int64(27), *cur.LastID)
	require.NotNil(t, cur.CreatedAt)
	assert.Equal(t, "2026-08-01T00:00:00Z", *cur.CreatedAt)

	_, err = p.Next(context.Background())
	require.NoError(t, err)
	assert.False(t, p.HasMore(), "has_more=false overrides the full page length")
}

func TestSingleFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	fetch := func(ctx context.Context, cur Cursor, size int) (Result[item], error) {
		close(started)
		<-release
		return Result[item]{Items: makeItems(10, 3)}, nil
	}

	p := NewPager(fetch, itemKey, 15)

	done := make(chan error, 1)
	go func() {
		_, err := p.Next(context.Background())
		done <- err
	}()

	<-started
	_, err := p.Next(context.Background())
	assert.ErrorIs(t, err, ErrFetchInFlight)

	close(release)
	require.NoError(t, <-done)

	select {
	case <-time.After(time.Second):
		t.Fatal("pager never finished")
	default:
	}
}

func TestFetchErrorKeepsCursor(t *testing.T) {
	var cursors []Cursor
	fail := false
	fetch := func(ctx context.Context, cur Cursor, size int) (Result[item], error) {
		cursors = append(cursors, cur)
		if fail {
			return Result[item]{}, fmt.Errorf("backend unavailable")
		}
		return Result[item]{Items: makeItems(100, size)}, nil
	}

	p := NewPager(fetch, itemKey, 15)

	_, err := p.Next(context.Background())
	require.NoError(t, err)

	fail = true
	_, err = p.Next(context.Background())
	require.Error(t, err)

	// manual retry re-requests the same page
	fail = false
	_, err = p.Next(context.Background())
	require.NoError(t, err)

	require.Len(t, cursors, 3)
	assert.Equal(t, cursors[1], cursors[2])
}

func TestCursorSetParams(t *testing.T) {
	q := map[string]string{"size": "15"}
	Cursor{}.SetParams(q, "lastPostId", "")
	assert.NotContains(t, q, "lastPostId", "first page omits the cursor entirely")

	id := int64(37)
	ts := "2026-07-01T12:00:00Z"
	q = map[string]string{}
	Cursor{LastID: &id, CreatedAt: &ts}.SetParams(q, "cursorId", "cursorCreatedAt")
	assert.Equal(t, "37", q["cursorId"])
	assert.Equal(t, ts, q["cursorCreatedAt"])
}

func TestDecodeEnvelope(t *testing.T) {
	t.Run("bare array", func(t *testing.T) {
		res, err := DecodeEnvelope[item]([]byte(`[{"id":3,"createdAt":"t3"},{"id":2,"createdAt":"t2"}]`), "posts")
		require.NoError(t, err)
		require.Len(t, res.Items, 2)
		assert.Nil(t, res.HasMore)
		assert.Equal(t, int64(3), res.Items[0].ID)
	})

	t.Run("flag envelope", func(t *testing.T) {
		body := `{"posts":[{"id":9,"createdAt":"t9"}],"has_more":true,"cursor_id":9,"cursor_created_at":"t9"}`
		res, err := DecodeEnvelope[item]([]byte(body), "posts")
		require.NoError(t, err)
		require.Len(t, res.Items, 1)
		require.NotNil(t, res.HasMore)
		assert.True(t, *res.HasMore)
		require.NotNil(t, res.NextID)
		assert.Equal(t, int64(9), *res.NextID)
		require.NotNil(t, res.NextCreatedAt)
		assert.Equal(t, "t9", *res.NextCreatedAt)
	})

	t.Run("camelCase envelope", func(t *testing.T) {
		body := `{"notifications":[{"id":5}],"hasMore":false}`
		res, err := DecodeEnvelope[item]([]byte(body), "notifications")
		require.NoError(t, err)
		require.NotNil(t, res.HasMore)
		assert.False(t, *res.HasMore)
	})

	t.Run("missing list key", func(t *testing.T) {
		_, err := DecodeEnvelope[item]([]byte(`{"wrong":[]}`), "posts")
		assert.Error(t, err)
	})
}
