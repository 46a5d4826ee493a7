// Package stubserver implements an in-memory stand-in for the social
// backend. It serves the same REST contract the api client speaks, backed
// by maps instead of a database, and exists for local development and
// end-to-end tests against a real HTTP boundary.
package stubserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tecsocial/client/internal/model"
)

type ctxKey string

const viewerKey ctxKey = "viewer"

type account struct {
	id       int64
	username string
	email    string
	password string
}

type post struct {
	id        int64
	authorID  int64
	content   string
	createdAt time.Time
	updatedAt time.Time
	likes     map[int64]struct{}
}

// Server holds the in-memory state behind the stub API. All fields are
// guarded by mu; handlers copy data out before encoding.
type Server struct {
	log *zap.Logger
	now func() time.Time

	mu        sync.Mutex
	accounts  map[int64]*account
	byEmail   map[string]int64
	byName    map[string]int64
	posts     map[int64]*post
	postOrder []int64
	follows   map[int64]map[int64]struct{}
	tokens    map[string]int64
	nextUser  int64
	nextPost  int64
}

// New returns an empty Server.
func New(log *zap.Logger) *Server {
	return &Server{
		log:      log,
		now:      time.Now,
		accounts: make(map[int64]*account),
		byEmail:  make(map[string]int64),
		byName:   make(map[string]int64),
		posts:    make(map[int64]*post),
		follows:  make(map[int64]map[int64]struct{}),
		tokens:   make(map[string]int64),
	}
}

// Router mounts the API under /api. Signup and login are public; every
// other endpoint requires a bearer token issued by them.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(s.withRequestLogging)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", s.handleSignup)
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.tokenAuth)

			r.Get("/posts", s.handleListPosts)
			r.Post("/posts", s.handleCreatePost)
			r.Patch("/posts/{id}", s.handleUpdatePost)
			r.Put("/posts/{id}", s.handleUpdatePost)
			r.Delete("/posts/{id}", s.handleDeletePost)
			r.Put("/posts/{id}/like", s.handleLike)
			r.Delete("/posts/{id}/like", s.handleUnlike)

			r.Get("/users/{id}", s.handleGetProfile)
			r.Get("/users/{id}/posts", s.handleListUserPosts)
			r.Get("/users/{id}/followers", s.handleListFollowers)
			r.Get("/users/{id}/following", s.handleListFollowing)
			r.Put("/users/{id}/follow", s.handleFollow)
			r.Delete("/users/{id}/follow", s.handleUnfollow)
		})
	})

	return r
}

// withRequestLogging logs each request with its method, path and duration.
func (s *Server) withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("request served",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// tokenAuth resolves the bearer token to a user id and stores it in the
// request context as the viewer.
func (s *Server) tokenAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing token")
			return
		}

		s.mu.Lock()
		viewerID, ok := s.tokens[token]
		s.mu.Unlock()
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), viewerKey, viewerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// viewerFromContext returns the authenticated user id set by tokenAuth.
func viewerFromContext(ctx context.Context) int64 {
	id, _ := ctx.Value(viewerKey).(int64)
	return id
}

// issueToken mints and records a fresh bearer token for the user. Caller
// must hold mu.
func (s *Server) issueToken(userID int64) string {
	token := uuid.NewString()
	s.tokens[token] = userID
	return token
}

// viewPost renders a post in the wire shape the clients expect, with the
// author's username denormalized in.
func (s *Server) viewPost(p *post) model.Post {
	likes := make([]int64, 0, len(p.likes))
	for id := range p.likes {
		likes = append(likes, id)
	}
	username := ""
	if a, ok := s.accounts[p.authorID]; ok {
		username = a.username
	}
	return model.Post{
		ID:        p.id,
		Content:   p.content,
		CreatedAt: p.createdAt,
		UpdatedAt: p.updatedAt,
		AuthorID:  p.authorID,
		Username:  username,
		Likes:     likes,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
