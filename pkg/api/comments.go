package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/hobbyhub/hobbyhub/internal/client/page"
)

func commentKey(c Comment) (int64, string) {
	return c.CommentID, c.CreatedAt
}

// Comments fetches one page of comments for a post, newest first.
func (c *Client) Comments(ctx context.Context, postID int64, cur page.Cursor, size int) (page.Result[Comment], error) {
	q := map[string]string{
		"postId": strconv.FormatInt(postID, 10),
		"size":   strconv.Itoa(size),
	}
	cur.SetParams(q, "lastCommentId", "")

	body, _, err := c.doer.DoRequest(ctx, requestGet("/comments", q))
	if err != nil {
		return page.Result[Comment]{}, err
	}
	return page.DecodeEnvelope[Comment](body, "comments")
}

// CommentsPager returns a pager over a post's comments.
func (c *Client) CommentsPager(postID int64, size int) *page.Pager[Comment] {
	if size <= 0 {
		size = c.pageSize
	}
	fetch := func(ctx context.Context, cur page.Cursor, size int) (page.Result[Comment], error) {
		return c.Comments(ctx, postID, cur, size)
	}
	return page.NewPager(fetch, commentKey, size)
}

// AddCommentRequest is the form for commenting on a post.
type AddCommentRequest struct {
	PostID  int64  `json:"postId" validate:"required"`
	Content string `json:"content" validate:"required,min=1,max=500"`
}

// AddComment posts a comment and returns the created record.
func (c *Client) AddComment(ctx context.Context, req AddCommentRequest) (Comment, error) {
	var comment Comment
	if err := validate.Struct(req); err != nil {
		return comment, ErrValidation.Err(err)
	}
	err := c.postJSON(ctx, http.MethodPost, "/comment", req, &comment)
	return comment, err
}
