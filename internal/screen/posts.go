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

// timelineLimit is the page size of the global timeline screen.
const timelineLimit = 30

// PostsScreen is the global most-recent-first timeline.
type PostsScreen struct {
	gw      Gateway
	session Session
	engine  *mutation.Engine
	posts   *cache.Posts
	log     *zap.Logger

	list   postList
	cancel func()
}

// NewPostsScreen mounts the timeline and subscribes it to the shared
// post cache. Call Close when the screen is discarded.
func NewPostsScreen(gw Gateway, sess Session, eng *mutation.Engine, posts *cache.Posts, log *zap.Logger) *PostsScreen {
	s := &PostsScreen{gw: gw, session: sess, engine: eng, posts: posts, log: log}
	s.cancel = posts.Subscribe(s.list.apply)
	return s
}

// Load fetches the first page of the timeline. Without a credential it is
// a silent no-op; Posts stays empty.
func (s *PostsScreen) Load(ctx context.Context) error {
	if _, ok := s.session.Credential(); !ok {
		return nil
	}
	data, err := s.gw.ListPosts(ctx, 1, timelineLimit)
	if err != nil {
		return fmt.Errorf("loading posts: %w", err)
	}
	s.posts.Put(data...)
	s.list.set(data)
	return nil
}

// Refresh re-runs the full fetch (the manual refresh gesture).
func (s *PostsScreen) Refresh(ctx context.Context) error { return s.Load(ctx) }

// OnFocus re-runs the full fetch when navigation returns to the screen.
func (s *PostsScreen) OnFocus(ctx context.Context) error { return s.Load(ctx) }

// Posts returns a render copy of the current local post list.
func (s *PostsScreen) Posts() []model.Post { return s.list.snapshot() }

// ToggleLike likes or unlikes the post based on the viewer's current
// membership in its likes set.
func (s *PostsScreen) ToggleLike(ctx context.Context, postID int64) error {
	cred, ok := s.session.Credential()
	if !ok {
		return api.ErrNoToken
	}
	return toggleLike(ctx, s.gw, s.engine, s.posts, &s.list, cred.UserID, postID)
}

// Close cancels the cache subscription.
func (s *PostsScreen) Close() { s.cancel() }
