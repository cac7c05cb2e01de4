package api

// Notification types pushed by the server.
const (
	NotificationComment = "COMMENT"
	NotificationLike    = "LIKE"
)

// Post is a feed entry.
type Post struct {
	PostID         int64  `json:"postId"`
	Title          string `json:"title"`
	Content        string `json:"content"`
	Category       string `json:"category"`
	AuthorNickname string `json:"authorNickname"`
	LikeCount      int    `json:"likeCount"`
	CommentCount   int    `json:"commentCount"`
	Liked          bool   `json:"liked"`
	CreatedAt      string `json:"createdAt"`
}

// Comment is a comment on a post.
type Comment struct {
	CommentID      int64  `json:"commentId"`
	PostID         int64  `json:"postId"`
	AuthorNickname string `json:"authorNickname"`
	Content        string `json:"content"`
	CreatedAt      string `json:"createdAt"`
}

// Notification is a server-created notification, delivered both through the
// paginated list endpoint and the push channel.
type Notification struct {
	NotificationID   int64  `json:"notificationId"`
	SenderNickname   string `json:"senderNickname"`
	Message          string `json:"message"`
	NotificationType string `json:"notificationType"`
	Read             bool   `json:"read"`
	CreatedAt        string `json:"createdAt"`
}

// LikeResult is returned by the like toggle endpoint.
type LikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}

// SearchPost is a search hit. Search pagination uses the creation timestamp
// plus the post id as a tie-breaker for identical-timestamp rows.
type SearchPost struct {
	PostID         int64  `json:"postId"`
	Title          string `json:"title"`
	Content        string `json:"content"`
	AuthorNickname string `json:"authorNickname"`
	CreatedAt      string `json:"createdAt"`
}

// UserProfile is the my-page summary.
type UserProfile struct {
	UserID       int64  `json:"userId"`
	Email        string `json:"email"`
	Nickname     string `json:"nickname"`
	PostCount    int    `json:"postCount"`
	CommentCount int    `json:"commentCount"`
	LikeCount    int    `json:"likeCount"`
	Score        int    `json:"score"`
	Rank         int    `json:"rank"`
}

// RankEntry is one row of the user ranking board.
type RankEntry struct {
	Rank     int    `json:"rank"`
	Nickname string `json:"nickname"`
	Score    int    `json:"score"`
}

// ServerStatus is the response of the /status endpoint.
type ServerStatus struct {
	ServerVersion string `json:"serverVersion"`
	APIVersion    string `json:"apiVersion"`
	ServerTime    string `json:"serverTime"`
}
