// Package hubtest provides an in-process fake of the hobbyhub backend for
// tests. It implements the REST surface the client touches (auth, feed,
// comments, search, notifications, profile) plus the notification event
// stream, with scriptable failure modes for token refresh.
package hubtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/tidwall/sjson"

	"github.com/hobbyhub/hobbyhub/internal/common/httpx"
	"github.com/hobbyhub/hobbyhub/internal/common/middleware"
	"github.com/hobbyhub/hobbyhub/pkg/api"
)

// Server is the fake backend. Mutate its exported fields between requests
// to script scenarios; all access is guarded by the internal mutex.
type Server struct {
	Router *chi.Mux

	mu sync.Mutex

	// registered account
	Email    string
	Password string
	Nickname string
	UserID   int64

	accessToken  string
	refreshToken string
	tokenSeq     int

	// scriptable behavior
	FailRefresh  bool
	RefreshCalls int
	LoginCalls   int

	Posts         []api.Post
	Comments      map[int64][]api.Comment
	Notifications []api.Notification
	StreamEvents  []string // raw SSE data payloads for /notifications/subscribe
	liked         map[int64]bool
}

// NewServer creates a fake backend with one registered account
// (ann@example.com / password123) and mounts all handlers.
func NewServer() *Server {
	s := &Server{
		Email:    "ann@example.com",
		Password: "password123",
		Nickname: "ann",
		UserID:   1,
		Comments: map[int64][]api.Comment{},
		liked:    map[int64]bool{},
	}
	s.rotateTokens()
	s.mountHandlers()
	return s
}

// mountHandlers wires the REST surface onto the router.
func (s *Server) mountHandlers() {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))
	r.Use(middleware.RequestLogger)
	r.Use(middleware.PanicHandler)

	r.Post("/user/login", s.handleLogin)
	r.Post("/user/signup", s.handleSignup)
	r.Post("/user/token/refresh", s.handleRefresh)
	r.Post("/oauth/{provider}", s.handleOAuth)
	r.Get("/status", s.handleStatus)

	r.Get("/posts", s.handleFeed)
	r.Get("/post/{id}", s.handleGetPost)
	r.Get("/search/posts", s.handleSearch)
	r.Get("/comments", s.handleComments)

	// authenticated surface
	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Post("/post", s.handleCreatePost)
		r.Post("/post/{id}/like", s.handleToggleLike)
		r.Post("/comment", s.handleAddComment)
		r.Get("/notifications", s.handleNotifications)
		r.Get("/notifications/count", s.handleNotificationCount)
		r.Put("/notifications/{id}/read", s.handleMarkRead)
		r.Get("/notifications/subscribe", s.handleSubscribe)
		r.Get("/my-page", s.handleMyPage)
		r.Put("/my-page", s.handleUpdateProfile)
		r.Get("/my-page/rank", s.handleRank)
	})

	s.Router = r
}

func (s *Server) rotateTokens() {
	s.tokenSeq++
	s.accessToken = fmt.Sprintf("access-%d", s.tokenSeq)
	s.refreshToken = "refresh-1"
}

// ValidToken returns the currently accepted access token.
func (s *Server) ValidToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken
}

// RefreshToken returns the currently accepted refresh token.
func (s *Server) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshToken
}

// ExpireAccessToken invalidates the current access token without touching
// the refresh token, simulating access-token expiry server-side.
func (s *Server) ExpireAccessToken() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenSeq++
	s.accessToken = fmt.Sprintf("access-%d", s.tokenSeq)
}

// SeedPosts fills the feed with n posts, ids n down to 1, newest first.
func (s *Server) SeedPosts(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Posts = nil
	for i := n; i >= 1; i-- {
		s.Posts = append(s.Posts, api.Post{
			PostID:         int64(i),
			Title:          fmt.Sprintf("post %d", i),
			Content:        fmt.Sprintf("content of post %d", i),
			Category:       "climbing",
			AuthorNickname: "ann",
			CreatedAt:      time.Date(2026, 8, 1, 0, 0, i, 0, time.UTC).Format(time.RFC3339),
		})
	}
}

// requireAuth rejects requests whose bearer token is not the current access
// token.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.tokenOK(r) {
			httpx.ErrUnauthorized("token expired").Send(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) tokenOK(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	s.mu.Lock()
	defer s.mu.Unlock()
	return auth == "Bearer "+s.accessToken
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.ErrInvalidRequest("malformed login request").Send(w)
		return
	}

	s.mu.Lock()
	s.LoginCalls++
	ok := req.Email == s.Email && req.Password == s.Password
	if ok {
		s.rotateTokens()
	}
	res := map[string]any{
		"accessToken":  s.accessToken,
		"refreshToken": s.refreshToken,
		"userId":       s.UserID,
	}
	s.mu.Unlock()

	if !ok {
		httpx.ErrUnauthorized("invalid credentials").Send(w)
		return
	}
	httpx.SendJSON(r.Context(), w, http.StatusOK, res)
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Nickname string `json:"nickname"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.ErrInvalidRequest("malformed signup request").Send(w)
		return
	}

	s.mu.Lock()
	if req.Email == s.Email {
		s.mu.Unlock()
		httpx.ErrUnauthorized("email already registered").Send(w)
		return
	}
	s.Email = req.Email
	s.Password = req.Password
	s.Nickname = req.Nickname
	s.UserID++
	s.rotateTokens()
	res := map[string]any{
		"accessToken":  s.accessToken,
		"refreshToken": s.refreshToken,
		"userId":       s.UserID,
	}
	s.mu.Unlock()

	httpx.SendJSON(r.Context(), w, http.StatusCreated, res)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.ErrInvalidRequest("malformed refresh request").Send(w)
		return
	}

	s.mu.Lock()
	s.RefreshCalls++
	if s.FailRefresh || req.RefreshToken != s.refreshToken {
		s.mu.Unlock()
		httpx.ErrUnauthorized("refresh token rejected").Send(w)
		return
	}
	s.tokenSeq++
	s.accessToken = fmt.Sprintf("access-%d", s.tokenSeq)
	res := map[string]string{"accessToken": s.accessToken}
	s.mu.Unlock()

	httpx.SendJSON(r.Context(), w, http.StatusOK, res)
}

func (s *Server) handleOAuth(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		httpx.ErrInvalidRequest("missing authorization code").Send(w)
		return
	}
	if req.Code != "good-code" {
		httpx.ErrUnauthorized("authorization code rejected").Send(w)
		return
	}

	s.mu.Lock()
	s.rotateTokens()
	res := map[string]any{
		"accessToken":  s.accessToken,
		"refreshToken": s.refreshToken,
		"userId":       s.UserID,
	}
	s.mu.Unlock()

	httpx.SendJSON(r.Context(), w, http.StatusOK, res)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	httpx.SendJSON(r.Context(), w, http.StatusOK, api.ServerStatus{
		ServerVersion: "1.4.2",
		APIVersion:    "1.2.0",
		ServerTime:    time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	// public with no token, but a presented stale token is rejected
	if r.Header.Get("Authorization") != "" && !s.tokenOK(r) {
		httpx.ErrUnauthorized("token expired").Send(w)
		return
	}

	size := queryInt(r, "size", 15)
	lastPostID := queryInt64(r, "lastPostId", 0)

	s.mu.Lock()
	var items []api.Post
	for _, p := range s.Posts {
		if lastPostID != 0 && p.PostID >= lastPostID {
			continue
		}
		items = append(items, p)
		if len(items) == size {
			break
		}
	}
	s.mu.Unlock()

	if items == nil {
		items = []api.Post{}
	}
	httpx.SendJSON(r.Context(), w, http.StatusOK, items)
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.ErrInvalidRequest("invalid post id").Send(w)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.Posts {
		if p.PostID == id {
			httpx.SendJSON(r.Context(), w, http.StatusOK, p)
			return
		}
	}
	httpx.ErrNotFound("post not found").Send(w)
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title    string `json:"title"`
		Content  string `json:"content"`
		Category string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		httpx.ErrInvalidRequest("malformed post").Send(w)
		return
	}

	s.mu.Lock()
	var nextID int64 = 1
	if len(s.Posts) > 0 {
		nextID = s.Posts[0].PostID + 1
	}
	post := api.Post{
		PostID:         nextID,
		Title:          req.Title,
		Content:        req.Content,
		Category:       req.Category,
		AuthorNickname: s.Nickname,
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
	}
	s.Posts = append([]api.Post{post}, s.Posts...)
	s.mu.Unlock()

	httpx.SendJSON(r.Context(), w, http.StatusCreated, post, fmt.Sprintf("/post/%d", post.PostID))
}

func (s *Server) handleToggleLike(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.ErrInvalidRequest("invalid post id").Send(w)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Posts {
		if s.Posts[i].PostID != id {
			continue
		}
		if s.liked[id] {
			s.liked[id] = false
			s.Posts[i].LikeCount--
		} else {
			s.liked[id] = true
			s.Posts[i].LikeCount++
		}
		s.Posts[i].Liked = s.liked[id]
		httpx.SendJSON(r.Context(), w, http.StatusOK, api.LikeResult{
			Liked:     s.liked[id],
			LikeCount: s.Posts[i].LikeCount,
		})
		return
	}
	httpx.ErrNotFound("post not found").Send(w)
}

func (s *Server) handleComments(w http.ResponseWriter, r *http.Request) {
	postID := queryInt64(r, "postId", 0)
	size := queryInt(r, "size", 15)
	lastCommentID := queryInt64(r, "lastCommentId", 0)

	s.mu.Lock()
	var items []api.Comment
	for _, c := range s.Comments[postID] {
		if lastCommentID != 0 && c.CommentID >= lastCommentID {
			continue
		}
		items = append(items, c)
		if len(items) == size {
			break
		}
	}
	s.mu.Unlock()

	if items == nil {
		items = []api.Comment{}
	}
	httpx.SendJSON(r.Context(), w, http.StatusOK, map[string]any{"comments": items})
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PostID  int64  `json:"postId"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Content == "" {
		httpx.ErrInvalidRequest("malformed comment").Send(w)
		return
	}

	s.mu.Lock()
	comment := api.Comment{
		CommentID:      int64(len(s.Comments[req.PostID]) + 1),
		PostID:         req.PostID,
		AuthorNickname: s.Nickname,
		Content:        req.Content,
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
	}
	s.Comments[req.PostID] = append([]api.Comment{comment}, s.Comments[req.PostID]...)
	s.mu.Unlock()

	httpx.SendJSON(r.Context(), w, http.StatusCreated, comment)
}

// handleSearch serves the flag-based pagination envelope: items under
// "posts" plus has_more and an explicit next-cursor pair.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")
	limit := queryInt(r, "limit", 15)
	cursorID := queryInt64(r, "cursorId", 0)

	s.mu.Lock()
	var hits []api.SearchPost
	more := false
	for _, p := range s.Posts {
		if keyword != "" && !strings.Contains(p.Title, keyword) && !strings.Contains(p.Content, keyword) {
			continue
		}
		if cursorID != 0 && p.PostID >= cursorID {
			continue
		}
		if len(hits) == limit {
			more = true
			break
		}
		hits = append(hits, api.SearchPost{
			PostID:         p.PostID,
			Title:          p.Title,
			Content:        p.Content,
			AuthorNickname: p.AuthorNickname,
			CreatedAt:      p.CreatedAt,
		})
	}
	s.mu.Unlock()

	if hits == nil {
		hits = []api.SearchPost{}
	}
	body, err := json.Marshal(map[string]any{"posts": hits})
	if err != nil {
		httpx.ErrApplicationError().Send(w)
		return
	}
	body, _ = sjson.SetBytes(body, "has_more", more)
	if more {
		last := hits[len(hits)-1]
		body, _ = sjson.SetBytes(body, "cursor_id", last.PostID)
		body, _ = sjson.SetBytes(body, "cursor_created_at", last.CreatedAt)
	}
	httpx.SendJSON(r.Context(), w, http.StatusOK, body)
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	size := queryInt(r, "size", 15)
	lastID := queryInt64(r, "lastNotificationId", 0)

	s.mu.Lock()
	var items []api.Notification
	for _, n := range s.Notifications {
		if lastID != 0 && n.NotificationID >= lastID {
			continue
		}
		items = append(items, n)
		if len(items) == size {
			break
		}
	}
	s.mu.Unlock()

	if items == nil {
		items = []api.Notification{}
	}
	httpx.SendJSON(r.Context(), w, http.StatusOK, map[string]any{"notifications": items})
}

func (s *Server) handleNotificationCount(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	count := 0
	for _, n := range s.Notifications {
		if !n.Read {
			count++
		}
	}
	s.mu.Unlock()
	httpx.SendJSON(r.Context(), w, http.StatusOK, map[string]int{"count": count})
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.ErrInvalidRequest("invalid notification id").Send(w)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Notifications {
		if s.Notifications[i].NotificationID == id {
			s.Notifications[i].Read = true
			httpx.SendJSON(r.Context(), w, http.StatusOK, s.Notifications[i])
			return
		}
	}
	httpx.ErrNotFound("notification not found").Send(w)
}

// handleSubscribe emits the scripted events as server-sent event frames and
// closes the stream.
func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		httpx.ErrApplicationError("streaming not supported").Send(w)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	s.mu.Lock()
	events := append([]string(nil), s.StreamEvents...)
	s.mu.Unlock()

	for _, data := range events {
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}
}

func (s *Server) handleMyPage(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	profile := api.UserProfile{
		UserID:       s.UserID,
		Email:        s.Email,
		Nickname:     s.Nickname,
		PostCount:    len(s.Posts),
		CommentCount: len(s.Comments),
		Score:        120,
		Rank:         3,
	}
	s.mu.Unlock()
	httpx.SendJSON(r.Context(), w, http.StatusOK, profile)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Nickname string `json:"nickname"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Nickname == "" {
		httpx.ErrInvalidRequest("malformed profile update").Send(w)
		return
	}

	s.mu.Lock()
	s.Nickname = req.Nickname
	profile := api.UserProfile{
		UserID:   s.UserID,
		Email:    s.Email,
		Nickname: s.Nickname,
	}
	s.mu.Unlock()
	httpx.SendJSON(r.Context(), w, http.StatusOK, profile)
}

func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 15)
	entries := []api.RankEntry{
		{Rank: 1, Nickname: "minsu", Score: 310},
		{Rank: 2, Nickname: "jiyeon", Score: 250},
		{Rank: 3, Nickname: "ann", Score: 120},
	}
	if limit < len(entries) {
		entries = entries[:limit]
	}
	httpx.SendJSON(r.Context(), w, http.StatusOK, entries)
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func queryInt64(r *http.Request, key string, def int64) int64 {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}
