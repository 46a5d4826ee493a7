package stubserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tecsocial/client/internal/model"
)

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username, email and password are required")
		return
	}
	email := strings.ToLower(req.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[email]; taken {
		writeError(w, http.StatusConflict, "User already exists")
		return
	}
	if _, taken := s.byName[req.Username]; taken {
		writeError(w, http.StatusConflict, "User already exists")
		return
	}

	s.nextUser++
	a := &account{id: s.nextUser, username: req.Username, email: email, password: req.Password}
	s.accounts[a.id] = a
	s.byEmail[email] = a.id
	s.byName[a.username] = a.id
	s.follows[a.id] = make(map[int64]struct{})
	token := s.issueToken(a.id)

	s.log.Info("account created", zap.Int64("user", a.id), zap.String("username", a.username))
	writeJSON(w, http.StatusCreated, map[string]any{
		"token":    token,
		"user":     a.id,
		"username": a.username,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[strings.ToLower(req.Email)]
	if !ok || s.accounts[id].password != req.Password {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	token := s.issueToken(id)

	writeJSON(w, http.StatusOK, map[string]any{
		"token":    token,
		"userId":   id,
		"username": s.accounts[id].username,
	})
}

// pageParams reads page and limit, defaulting to the first page of 30.
func pageParams(r *http.Request) (page, limit int) {
	page, limit = 1, 30
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	return page, limit
}

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// pagePosts slices the most-recent-first listing of ids down to one page.
// Caller must hold mu.
func (s *Server) pagePosts(ids []int64, page, limit int) []model.Post {
	out := make([]model.Post, 0, limit)
	start := (page - 1) * limit
	for i := start; i < start+limit && i < len(ids); i++ {
		out = append(out, s.viewPost(s.posts[ids[i]]))
	}
	return out
}

// recentFirst returns post ids in reverse creation order, optionally
// restricted to one author. Caller must hold mu.
func (s *Server) recentFirst(authorID int64) []int64 {
	ids := make([]int64, 0, len(s.postOrder))
	for i := len(s.postOrder) - 1; i >= 0; i-- {
		id := s.postOrder[i]
		if authorID == 0 || s.posts[id].authorID == authorID {
			ids = append(ids, id)
		}
	}
	return ids
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)

	s.mu.Lock()
	posts := s.pagePosts(s.recentFirst(0), page, limit)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, posts)
}

func (s *Server) handleListUserPosts(w http.ResponseWriter, r *http.Request) {
	userID, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	page, limit := pageParams(r)

	s.mu.Lock()
	posts := s.pagePosts(s.recentFirst(userID), page, limit)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, posts)
}

type postRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	s.mu.Lock()
	s.nextPost++
	now := s.now()
	p := &post{
		id:        s.nextPost,
		authorID:  viewerFromContext(r.Context()),
		content:   strings.TrimSpace(req.Content),
		createdAt: now,
		updatedAt: now,
		likes:     make(map[int64]struct{}),
	}
	s.posts[p.id] = p
	s.postOrder = append(s.postOrder, p.id)
	view := s.viewPost(p)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	postID, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return
	}
	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[postID]
	if !ok {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}
	if p.authorID != viewerFromContext(r.Context()) {
		writeError(w, http.StatusForbidden, "You can only edit your own posts")
		return
	}

	p.content = strings.TrimSpace(req.Content)
	p.updatedAt = s.now()
	writeJSON(w, http.StatusOK, s.viewPost(p))
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	postID, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[postID]
	if !ok {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}
	if p.authorID != viewerFromContext(r.Context()) {
		writeError(w, http.StatusForbidden, "You can only delete your own posts")
		return
	}

	delete(s.posts, postID)
	for i, id := range s.postOrder {
		if id == postID {
			s.postOrder = append(s.postOrder[:i], s.postOrder[i+1:]...)
			break
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLike(w http.ResponseWriter, r *http.Request) {
	s.setLike(w, r, true)
}

func (s *Server) handleUnlike(w http.ResponseWriter, r *http.Request) {
	s.setLike(w, r, false)
}

// setLike records or erases the viewer's like. Repeating an already
// recorded state is not an error.
func (s *Server) setLike(w http.ResponseWriter, r *http.Request, liked bool) {
	postID, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[postID]
	if !ok {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}

	viewerID := viewerFromContext(r.Context())
	if liked {
		p.likes[viewerID] = struct{}{}
	} else {
		delete(p.likes, viewerID)
	}
	writeJSON(w, http.StatusOK, s.viewPost(p))
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[userID]
	if !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	var followerCount int64
	for _, followed := range s.follows {
		if _, yes := followed[userID]; yes {
			followerCount++
		}
	}
	viewerID := viewerFromContext(r.Context())
	_, isFollowing := s.follows[viewerID][userID]

	writeJSON(w, http.StatusOK, model.Profile{
		ID:             a.id,
		Username:       a.username,
		FollowerCount:  model.Count(followerCount),
		FollowingCount: model.Count(len(s.follows[userID])),
		IsFollowing:    isFollowing,
	})
}

func (s *Server) handleListFollowers(w http.ResponseWriter, r *http.Request) {
	userID, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]model.User, 0)
	for followerID, followed := range s.follows {
		if _, yes := followed[userID]; yes {
			a := s.accounts[followerID]
			users = append(users, model.User{ID: a.id, Username: a.username})
		}
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleListFollowing(w http.ResponseWriter, r *http.Request) {
	userID, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]model.User, 0)
	for followedID := range s.follows[userID] {
		a := s.accounts[followedID]
		users = append(users, model.User{ID: a.id, Username: a.username})
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleFollow(w http.ResponseWriter, r *http.Request) {
	userID, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	viewerID := viewerFromContext(r.Context())
	if userID == viewerID {
		writeError(w, http.StatusBadRequest, "You cannot follow yourself")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[userID]; !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	s.follows[viewerID][userID] = struct{}{}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Followed successfully"})
}

func (s *Server) handleUnfollow(w http.ResponseWriter, r *http.Request) {
	userID, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[userID]; !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	delete(s.follows[viewerFromContext(r.Context())], userID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Unfollowed successfully"})
}
