package api_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hobbyhub/hobbyhub/internal/client/page"
	"github.com/hobbyhub/hobbyhub/internal/client/session"
	"github.com/hobbyhub/hobbyhub/internal/common/httpclient"
	"github.com/hobbyhub/hobbyhub/internal/hubtest"
	"github.com/hobbyhub/hobbyhub/pkg/api"
)

// newEnv wires a fake backend, a session store, and an API client together
// in-process. The session store's refresh call goes through the same backend.
func newEnv(t *testing.T) (*hubtest.Server, *session.Store, *api.Client) {
	t.Helper()
	srv := hubtest.NewServer()
	store := session.New("http://hubtest.local",
		session.WithHTTPClient(&http.Client{Transport: httpclient.NewTestTransport(srv.Router)}))
	client := api.New(httpclient.NewTestClient(store, srv.Router))
	return srv, store, client
}

func login(t *testing.T, store *session.Store, client *api.Client) {
	t.Helper()
	res, err := client.Login(context.Background(), api.LoginRequest{
		Email:    "ann@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	store.SetAuth(res)
}

func TestLoginEstablishesSession(t *testing.T) {
	srv, store, client := newEnv(t)

	login(t, store, client)

	assert.True(t, store.Authenticated())
	assert.Equal(t, srv.ValidToken(), store.CurrentToken())
	assert.Equal(t, int64(1), store.UserID())
}

func TestLoginBadCredentialsSurfacedWithoutRefresh(t *testing.T) {
	srv, store, client := newEnv(t)

	_, err := client.Login(context.Background(), api.LoginRequest{
		Email:    "ann@example.com",
		Password: "wrong-password",
	})
	require.Error(t, err)

	var httpErr *httpclient.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
	assert.Equal(t, 0, srv.RefreshCalls)
	assert.False(t, store.Authenticated())
}

func TestLoginValidationNeverReachesNetwork(t *testing.T) {
	srv, _, client := newEnv(t)

	_, err := client.Login(context.Background(), api.LoginRequest{
		Email:    "not-an-email",
		Password: "password123",
	})
	require.ErrorIs(t, err, api.ErrValidation)
	assert.Equal(t, 0, srv.LoginCalls)

	_, err = client.Login(context.Background(), api.LoginRequest{
		Email:    "ann@example.com",
		Password: "short",
	})
	require.ErrorIs(t, err, api.ErrValidation)
	assert.Equal(t, 0, srv.LoginCalls)
}

func TestSignupLogsAccountIn(t *testing.T) {
	srv, store, client := newEnv(t)

	res, err := client.Signup(context.Background(), api.SignupRequest{
		Email:    "bob@example.com",
		Password: "password456",
		Nickname: "bob",
	})
	require.NoError(t, err)
	store.SetAuth(res)

	assert.True(t, store.Authenticated())
	assert.Equal(t, srv.ValidToken(), store.CurrentToken())
}

func TestExpiredTokenRefreshedAndRequestRetried(t *testing.T) {
	srv, store, client := newEnv(t)
	login(t, store, client)

	srv.ExpireAccessToken()

	profile, err := client.MyPage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ann", profile.Nickname)

	assert.Equal(t, 1, srv.RefreshCalls)
	assert.Equal(t, srv.ValidToken(), store.CurrentToken())
	assert.True(t, store.Authenticated())
}

func TestFailedRefreshDowngradesToPublicSession(t *testing.T) {
	srv, store, client := newEnv(t)
	login(t, store, client)

	srv.ExpireAccessToken()
	srv.FailRefresh = true

	_, err := client.MyPage(context.Background())
	require.Error(t, err)

	var httpErr *httpclient.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)

	assert.False(t, store.Authenticated())
	assert.Empty(t, store.CurrentToken())
}

func TestFeedPagerWalksToExhaustion(t *testing.T) {
	srv, store, client := newEnv(t)
	login(t, store, client)
	srv.SeedPosts(40)

	pager := client.FeedPager(15)
	ctx := context.Background()

	first, err := pager.Next(ctx)
	require.NoError(t, err)
	require.Len(t, first, 15)
	assert.Equal(t, int64(40), first[0].PostID)
	assert.Equal(t, int64(26), first[14].PostID)
	assert.True(t, pager.HasMore())

	second, err := pager.Next(ctx)
	require.NoError(t, err)
	require.Len(t, second, 15)
	assert.Equal(t, int64(25), second[0].PostID)
	assert.Equal(t, int64(11), second[14].PostID)

	third, err := pager.Next(ctx)
	require.NoError(t, err)
	require.Len(t, third, 10)
	assert.Equal(t, int64(1), third[9].PostID)
	assert.False(t, pager.HasMore())

	_, err = pager.Next(ctx)
	assert.ErrorIs(t, err, page.ErrExhausted)
}

func TestIndependentPagersDoNotShareCursors(t *testing.T) {
	srv, store, client := newEnv(t)
	login(t, store, client)
	srv.SeedPosts(20)

	ctx := context.Background()
	a := client.FeedPager(15)
	b := client.FeedPager(15)

	pageA, err := a.Next(ctx)
	require.NoError(t, err)
	pageB, err := b.Next(ctx)
	require.NoError(t, err)

	// both start at the first page
	assert.Equal(t, pageA[0].PostID, pageB[0].PostID)
	assert.Equal(t, int64(20), pageB[0].PostID)
}

func TestSearchFlagBasedTermination(t *testing.T) {
	srv, store, client := newEnv(t)
	login(t, store, client)
	srv.SeedPosts(20)

	pager := client.SearchPager("post", 15)
	ctx := context.Background()

	first, err := pager.Next(ctx)
	require.NoError(t, err)
	require.Len(t, first, 15)
	assert.True(t, pager.HasMore())

	second, err := pager.Next(ctx)
	require.NoError(t, err)
	require.Len(t, second, 5)
	assert.Equal(t, int64(1), second[4].PostID)
	assert.False(t, pager.HasMore())
}

func TestCreatePostAndFetchDetail(t *testing.T) {
	srv, store, client := newEnv(t)
	login(t, store, client)
	srv.SeedPosts(3)

	created, err := client.CreatePost(context.Background(), api.CreatePostRequest{
		Title:    "new route at the gym",
		Content:  "tried the new overhang problem today",
		Category: "climbing",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), created.PostID)

	got, err := client.GetPost(context.Background(), created.PostID)
	require.NoError(t, err)
	assert.Equal(t, "new route at the gym", got.Title)
	assert.Equal(t, "ann", got.AuthorNickname)
}

func TestToggleLikeFlipsState(t *testing.T) {
	srv, store, client := newEnv(t)
	login(t, store, client)
	srv.SeedPosts(1)

	res, err := client.ToggleLike(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Equal(t, 1, res.LikeCount)

	res, err = client.ToggleLike(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.Equal(t, 0, res.LikeCount)
}

func TestAddAndListComments(t *testing.T) {
	srv, store, client := newEnv(t)
	login(t, store, client)
	srv.SeedPosts(1)

	comment, err := client.AddComment(context.Background(), api.AddCommentRequest{
		PostID:  1,
		Content: "nice problem, what grade?",
	})
	require.NoError(t, err)
	assert.Equal(t, "ann", comment.AuthorNickname)

	res, err := client.Comments(context.Background(), 1, page.Cursor{}, 15)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "nice problem, what grade?", res.Items[0].Content)
}

func TestNotificationsListAndAcknowledge(t *testing.T) {
	srv, store, client := newEnv(t)
	login(t, store, client)
	srv.Notifications = []api.Notification{
		{NotificationID: 3, SenderNickname: "minsu", Message: "commented on your post", NotificationType: api.NotificationComment},
		{NotificationID: 2, SenderNickname: "jiyeon", Message: "liked your post", NotificationType: api.NotificationLike},
		{NotificationID: 1, SenderNickname: "minsu", Message: "liked your post", NotificationType: api.NotificationLike, Read: true},
	}

	ctx := context.Background()

	count, err := client.UnreadNotificationCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	res, err := client.Notifications(ctx, page.Cursor{}, 15)
	require.NoError(t, err)
	require.Len(t, res.Items, 3)
	assert.Equal(t, int64(3), res.Items[0].NotificationID)

	require.NoError(t, client.MarkNotificationRead(ctx, 3))

	count, err = client.UnreadNotificationCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestUpdateNickname(t *testing.T) {
	_, store, client := newEnv(t)
	login(t, store, client)

	profile, err := client.UpdateNickname(context.Background(), "ann-climbs")
	require.NoError(t, err)
	assert.Equal(t, "ann-climbs", profile.Nickname)

	_, err = client.UpdateNickname(context.Background(), "a")
	assert.ErrorIs(t, err, api.ErrValidation)
}

func TestRankingLimit(t *testing.T) {
	_, store, client := newEnv(t)
	login(t, store, client)

	entries, err := client.Ranking(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "minsu", entries[0].Nickname)
}

func TestStatus(t *testing.T) {
	_, _, client := newEnv(t)

	status, err := client.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.4.2", status.ServerVersion)
	assert.Equal(t, "1.2.0", status.APIVersion)
	assert.NotEmpty(t, status.ServerTime)
}

func TestCompleteOAuth(t *testing.T) {
	srv, store, client := newEnv(t)

	res, err := client.CompleteOAuth(context.Background(), "google", "good-code")
	require.NoError(t, err)
	store.SetAuth(res)
	assert.Equal(t, srv.ValidToken(), store.CurrentToken())

	_, err = client.CompleteOAuth(context.Background(), "google", "bad-code")
	require.Error(t, err)

	_, err = client.CompleteOAuth(context.Background(), "", "good-code")
	assert.ErrorIs(t, err, api.ErrValidation)
}

func TestAuthorizeURL(t *testing.T) {
	p := api.GoogleOAuth("client-123", "https://app.hobbyhub.io/oauth/callback")
	u := p.AuthorizeURL()
	assert.Contains(t, u, "client_id=client-123")
	assert.Contains(t, u, "response_type=code")
	assert.Contains(t, u, "redirect_uri=")
}
