// Package page implements the cursor pagination contract shared by every
// list-fetching endpoint: feed, comments, notifications, and search. Pages
// are fetched by referencing the last-seen item's identifier (and creation
// timestamp for search) rather than an offset.
package page

import (
	"context"
	"strconv"
	"sync"

	"github.com/hobbyhub/hobbyhub/internal/common/apperrors"
)

// DefaultPageSize is the page size used when the caller does not set one.
const DefaultPageSize = 15

var (
	// ErrFetchInFlight is returned by Next while a fetch for the current
	// page is still running. The pager is single-flight: callers must
	// observe page N before page N+1 is requested.
	ErrFetchInFlight = apperrors.New("page fetch already in flight")

	// ErrExhausted is returned by Next once the server has no further pages.
	ErrExhausted = apperrors.New("no more pages")
)

// Cursor identifies the position after the last consumed item. The zero
// value means "first page": no cursor fields are sent at all, since 0 must
// never be confused with a valid identifier.
type Cursor struct {
	LastID    *int64  // identifier of the last item of the previous page
	CreatedAt *string // creation timestamp tie-breaker, search only
}

// SetParams writes the cursor fields into query parameters under the given
// keys, omitting them entirely on the first page. tsKey may be empty for
// endpoints without a timestamp tie-breaker.
func (c Cursor) SetParams(q map[string]string, idKey, tsKey string) {
	if c.LastID != nil {
		q[idKey] = strconv.FormatInt(*c.LastID, 10)
	}
	if tsKey != "" && c.CreatedAt != nil {
		q[tsKey] = *c.CreatedAt
	}
}

// Result is one decoded page. HasMore is nil when the endpoint signals
// termination by page length instead of an explicit flag. NextID and
// NextCreatedAt carry the server-provided next cursor when the envelope has
// one; otherwise continuation is derived from the last item.
type Result[T any] struct {
	Items         []T
	HasMore       *bool
	NextID        *int64
	NextCreatedAt *string
}

// KeyFunc extracts the identifier and creation timestamp of an item, used to
// derive the next cursor from the last element of a page. createdAt may be
// empty for endpoints without a timestamp tie-breaker.
type KeyFunc[T any] func(item T) (id int64, createdAt string)

// FetchFunc fetches one page at the given cursor.
type FetchFunc[T any] func(ctx context.Context, cur Cursor, size int) (Result[T], error)

// Pager walks a paginated endpoint. Each Pager owns its cursor state;
// independent pagers share nothing. All methods are safe for concurrent use.
type Pager[T any] struct {
	mu        sync.Mutex
	fetch     FetchFunc[T]
	key       KeyFunc[T]
	size      int
	cursor    Cursor
	exhausted bool
	inFlight  bool
}

// NewPager creates a pager over fetch with the given page size. A
// non-positive size falls back to DefaultPageSize.
func NewPager[T any](fetch FetchFunc[T], key KeyFunc[T], size int) *Pager[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	return &Pager[T]{
		fetch: fetch,
		key:   key,
		size:  size,
	}
}

// Next fetches the next page. Returns ErrExhausted when there are no further
// pages and ErrFetchInFlight when a fetch is already running. A fetch error
// is surfaced to the caller without advancing the cursor, so a manual retry
// re-requests the same page.
func (p *Pager[T]) Next(ctx context.Context) ([]T, error) {
	p.mu.Lock()
	if p.inFlight {
		p.mu.Unlock()
		return nil, ErrFetchInFlight
	}
	if p.exhausted {
		p.mu.Unlock()
		return nil, ErrExhausted
	}
	p.inFlight = true
	cur := p.cursor
	size := p.size
	p.mu.Unlock()

	res, err := p.fetch(ctx, cur, size)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.inFlight = false
	if err != nil {
		return nil, err
	}

	if res.HasMore != nil {
		p.exhausted = !*res.HasMore
	} else {
		p.exhausted = len(res.Items) < size
	}

	if len(res.Items) > 0 {
		if res.NextID != nil {
			p.cursor = Cursor{LastID: res.NextID, CreatedAt: res.NextCreatedAt}
		} else {
			id, createdAt := p.key(res.Items[len(res.Items)-1])
			next := Cursor{LastID: &id}
			if createdAt != "" {
				next.CreatedAt = &createdAt
			}
			p.cursor = next
		}
	}
	return res.Items, nil
}

// HasMore reports whether another page may exist.
func (p *Pager[T]) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.exhausted
}

// Cursor returns the current continuation cursor.
func (p *Pager[T]) Cursor() Cursor {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor
}

// Size returns the configured page size.
func (p *Pager[T]) Size() int {
	return p.size
}
