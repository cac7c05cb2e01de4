package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/tidwall/sjson"

	"github.com/hobbyhub/hobbyhub/internal/common/httpclient"
)

// MyPage fetches the caller's profile summary.
func (c *Client) MyPage(ctx context.Context) (UserProfile, error) {
	var profile UserProfile
	err := c.getJSON(ctx, "/my-page", nil, &profile)
	return profile, err
}

// Ranking fetches the top entries of the user ranking board. limit <= 0
// uses the client default page size.
func (c *Client) Ranking(ctx context.Context, limit int) ([]RankEntry, error) {
	if limit <= 0 {
		limit = c.pageSize
	}
	var entries []RankEntry
	err := c.getJSON(ctx, "/my-page/rank", map[string]string{"limit": strconv.Itoa(limit)}, &entries)
	return entries, err
}

// UpdateNickname changes the caller's nickname. The update body is sparse:
// only the fields being changed are sent.
func (c *Client) UpdateNickname(ctx context.Context, nickname string) (UserProfile, error) {
	var profile UserProfile
	if len(nickname) < 2 || len(nickname) > 20 {
		return profile, ErrValidation.Msg("nickname must be 2-20 characters")
	}

	body, err := sjson.SetBytes([]byte(`{}`), "nickname", nickname)
	if err != nil {
		return profile, err
	}
	respBody, _, err := c.doer.DoRequest(ctx, httpclient.RequestOptions{
		Method: http.MethodPut,
		Path:   "/my-page",
		Body:   body,
	})
	if err != nil {
		return profile, err
	}
	if err := json.Unmarshal(respBody, &profile); err != nil {
		return profile, err
	}
	return profile, nil
}
