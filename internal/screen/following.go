package screen

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tecsocial/client/internal/api"
	"github.com/tecsocial/client/internal/cache"
	"github.com/tecsocial/client/internal/model"
	"github.com/tecsocial/client/internal/mutation"
)

// Composer produces the following feed; *feed.Composer implements it.
type Composer interface {
	Compose(ctx context.Context, viewerID int64) ([]model.Post, error)
}

// FollowingScreen shows posts authored by accounts the viewer follows.
type FollowingScreen struct {
	gw       Gateway
	session  Session
	engine   *mutation.Engine
	posts    *cache.Posts
	composer Composer
	log      *zap.Logger

	list   postList
	cancel func()
}

// NewFollowingScreen mounts the following feed.
func NewFollowingScreen(gw Gateway, sess Session, eng *mutation.Engine, posts *cache.Posts, composer Composer, log *zap.Logger) *FollowingScreen {
	s := &FollowingScreen{gw: gw, session: sess, engine: eng, posts: posts, composer: composer, log: log}
	s.cancel = posts.Subscribe(s.list.apply)
	return s
}

// Load composes the feed from the viewer's follow set. Without a
// credential it is a silent no-op.
func (s *FollowingScreen) Load(ctx context.Context) error {
	cred, ok := s.session.Credential()
	if !ok {
		return nil
	}
	data, err := s.composer.Compose(ctx, cred.UserID)
	if err != nil {
		return fmt.Errorf("loading following feed: %w", err)
	}
	s.posts.Put(data...)
	s.list.set(data)
	return nil
}

// Refresh re-runs the full feed composition.
func (s *FollowingScreen) Refresh(ctx context.Context) error { return s.Load(ctx) }

// OnFocus re-runs the full feed composition.
func (s *FollowingScreen) OnFocus(ctx context.Context) error { return s.Load(ctx) }

// Posts returns a render copy of the feed.
func (s *FollowingScreen) Posts() []model.Post { return s.list.snapshot() }

// ToggleLike likes or unlikes a feed post.
func (s *FollowingScreen) ToggleLike(ctx context.Context, postID int64) error {
	cred, ok := s.session.Credential()
	if !ok {
		return api.ErrNoToken
	}
	return toggleLike(ctx, s.gw, s.engine, s.posts, &s.list, cred.UserID, postID)
}

// Close cancels the cache subscription.
func (s *FollowingScreen) Close() { s.cancel() }
