package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/hobbyhub/hobbyhub/internal/client/page"
)

func postKey(p Post) (int64, string) {
	return p.PostID, p.CreatedAt
}

// Feed fetches one page of the post feed, newest first. The first page omits
// the cursor; subsequent pages pass the last post id of the previous page as
// lastPostId.
func (c *Client) Feed(ctx context.Context, cur page.Cursor, size int) (page.Result[Post], error) {
	q := map[string]string{"size": strconv.Itoa(size)}
	cur.SetParams(q, "lastPostId", "")

	body, _, err := c.doer.DoRequest(ctx, requestGet("/posts", q))
	if err != nil {
		return page.Result[Post]{}, err
	}
	return page.DecodeEnvelope[Post](body, "posts")
}

// FeedPager returns a pager over the post feed. size <= 0 uses the client
// default.
func (c *Client) FeedPager(size int) *page.Pager[Post] {
	if size <= 0 {
		size = c.pageSize
	}
	return page.NewPager(c.Feed, postKey, size)
}

// GetPost fetches one post with its detail fields.
func (c *Client) GetPost(ctx context.Context, postID int64) (Post, error) {
	var post Post
	err := c.getJSON(ctx, fmt.Sprintf("/post/%d", postID), nil, &post)
	return post, err
}

// CreatePostRequest is the form for publishing a post.
type CreatePostRequest struct {
	Title    string `json:"title" validate:"required,min=1,max=100"`
	Content  string `json:"content" validate:"required,min=1"`
	Category string `json:"category" validate:"required"`
}

// CreatePost publishes a new post and returns the created record.
func (c *Client) CreatePost(ctx context.Context, req CreatePostRequest) (Post, error) {
	var post Post
	if err := validate.Struct(req); err != nil {
		return post, ErrValidation.Err(err)
	}
	err := c.postJSON(ctx, http.MethodPost, "/post", req, &post)
	return post, err
}

// ToggleLike flips the caller's like on a post and returns the new state.
func (c *Client) ToggleLike(ctx context.Context, postID int64) (LikeResult, error) {
	var res LikeResult
	err := c.postJSON(ctx, http.MethodPost, fmt.Sprintf("/post/%d/like", postID), nil, &res)
	return res, err
}
