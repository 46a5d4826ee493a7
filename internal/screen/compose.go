package screen

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tecsocial/client/internal/api"
	"github.com/tecsocial/client/internal/cache"
	"github.com/tecsocial/client/internal/model"
)

// ComposeScreen creates new posts. Creation is not optimistic: the post
// has no id until the backend assigns one, so the screen waits for the
// created resource and seeds the cache with it.
type ComposeScreen struct {
	gw      Gateway
	session Session
	posts   *cache.Posts
	log     *zap.Logger
}

// NewComposeScreen mounts the create-post screen.
func NewComposeScreen(gw Gateway, sess Session, posts *cache.Posts, log *zap.Logger) *ComposeScreen {
	return &ComposeScreen{gw: gw, session: sess, posts: posts, log: log}
}

// Submit validates and publishes content, returning the created post.
// Validation failures surface before any network call.
func (s *ComposeScreen) Submit(ctx context.Context, content string) (model.Post, error) {
	trimmed, err := model.ValidateContent(content)
	if err != nil {
		return model.Post{}, err
	}
	if _, ok := s.session.Credential(); !ok {
		return model.Post{}, api.ErrNoToken
	}

	post, err := s.gw.CreatePost(ctx, trimmed)
	if err != nil {
		return model.Post{}, fmt.Errorf("creating post: %w", err)
	}
	s.posts.Put(post)
	return post, nil
}
