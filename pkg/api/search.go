package api

import (
	"context"
	"strconv"

	"github.com/hobbyhub/hobbyhub/internal/client/page"
)

func searchKey(p SearchPost) (int64, string) {
	return p.PostID, p.CreatedAt
}

// SearchPosts fetches one page of post search results. Search uses a
// two-part cursor (creation timestamp plus post id, breaking ties between
// identical-timestamp rows) and a flag-based envelope with an explicit
// has_more field.
func (c *Client) SearchPosts(ctx context.Context, keyword string, cur page.Cursor, limit int) (page.Result[SearchPost], error) {
	q := map[string]string{
		"keyword": keyword,
		"limit":   strconv.Itoa(limit),
	}
	cur.SetParams(q, "cursorId", "cursorCreatedAt")

	body, _, err := c.doer.DoRequest(ctx, requestGet("/search/posts", q))
	if err != nil {
		return page.Result[SearchPost]{}, err
	}
	return page.DecodeEnvelope[SearchPost](body, "posts")
}

// SearchPager returns a pager over search results for a keyword.
func (c *Client) SearchPager(keyword string, limit int) *page.Pager[SearchPost] {
	if limit <= 0 {
		limit = c.pageSize
	}
	fetch := func(ctx context.Context, cur page.Cursor, size int) (page.Result[SearchPost], error) {
		return c.SearchPosts(ctx, keyword, cur, size)
	}
	return page.NewPager(fetch, searchKey, limit)
}
