package screen

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tecsocial/client/internal/api"
	"github.com/tecsocial/client/internal/cache"
	"github.com/tecsocial/client/internal/model"
	"github.com/tecsocial/client/internal/mutation"
)

// profilePostsLimit is the page size of a user's own post list.
const profilePostsLimit = 10

// ProfileScreen shows the viewer's own profile and posts, with edit and
// delete for the posts they own.
type ProfileScreen struct {
	gw      Gateway
	session Session
	engine  *mutation.Engine
	posts   *cache.Posts
	log     *zap.Logger

	// now stamps optimistic edits; the authoritative timestamp stays
	// whatever the backend stores.
	now func() time.Time

	list   postList
	cancel func()

	mu         sync.Mutex
	profile    model.Profile
	hasProfile bool
}

// NewProfileScreen mounts the viewer's profile screen.
func NewProfileScreen(gw Gateway, sess Session, eng *mutation.Engine, posts *cache.Posts, log *zap.Logger) *ProfileScreen {
	s := &ProfileScreen{gw: gw, session: sess, engine: eng, posts: posts, log: log, now: time.Now}
	s.cancel = posts.Subscribe(s.list.apply)
	return s
}

// Load fetches the profile snapshot and the viewer's posts in full.
// Without a credential it is a silent no-op.
func (s *ProfileScreen) Load(ctx context.Context) error {
	cred, ok := s.session.Credential()
	if !ok {
		return nil
	}

	profile, err := s.gw.GetProfile(ctx, cred.UserID)
	if err != nil {
		return fmt.Errorf("loading profile: %w", err)
	}
	posts, err := s.gw.ListUserPosts(ctx, cred.UserID, 1, profilePostsLimit)
	if err != nil {
		return fmt.Errorf("loading own posts: %w", err)
	}

	s.mu.Lock()
	s.profile = profile
	s.hasProfile = true
	s.mu.Unlock()

	s.posts.Put(posts...)
	s.list.set(posts)
	return nil
}

// Refresh re-runs the full fetch.
func (s *ProfileScreen) Refresh(ctx context.Context) error { return s.Load(ctx) }

// OnFocus re-runs the full fetch; the profile screen shows the viewer's
// own mutable content, so every return to it reloads.
func (s *ProfileScreen) OnFocus(ctx context.Context) error { return s.Load(ctx) }

// Profile returns the current snapshot. ok is false before the first
// successful load.
func (s *ProfileScreen) Profile() (model.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile, s.hasProfile
}

// Posts returns a render copy of the viewer's posts.
func (s *ProfileScreen) Posts() []model.Post { return s.list.snapshot() }

// ToggleLike likes or unlikes one of the viewer's own posts.
func (s *ProfileScreen) ToggleLike(ctx context.Context, postID int64) error {
	cred, ok := s.session.Credential()
	if !ok {
		return api.ErrNoToken
	}
	return toggleLike(ctx, s.gw, s.engine, s.posts, &s.list, cred.UserID, postID)
}

// Edit replaces a post's content optimistically and settles it against
// the backend. The optimistic copy gets the local clock as its updated
// timestamp, which only feeds the "(edited)" marker; the client does not
// re-fetch the authoritative one. Validation failures surface before any
// network call.
func (s *ProfileScreen) Edit(ctx context.Context, postID int64, content string) error {
	trimmed, err := model.ValidateContent(content)
	if err != nil {
		return err
	}
	if _, ok := s.session.Credential(); !ok {
		return api.ErrNoToken
	}
	post, ok := s.list.get(postID)
	if !ok {
		return ErrNotFound
	}
	if _, cached := s.posts.Get(postID); !cached {
		s.posts.Put(post)
	}

	return s.engine.Do(ctx, mutation.PostEntity(postID),
		func() func() {
			prev, _ := s.posts.Update(postID, func(p *model.Post) {
				p.Content = trimmed
				p.UpdatedAt = s.now()
			})
			return func() { s.posts.Restore(prev) }
		},
		func(ctx context.Context) error {
			_, err := s.gw.UpdatePost(ctx, postID, trimmed)
			return err
		},
	)
}

// Delete removes a post optimistically from this screen only; the shared
// cache drops it once the backend confirms, so other screens never see an
// unconfirmed removal. On failure the post is restored at its old
// position.
func (s *ProfileScreen) Delete(ctx context.Context, postID int64) error {
	if _, ok := s.session.Credential(); !ok {
		return api.ErrNoToken
	}
	if _, ok := s.list.get(postID); !ok {
		return ErrNotFound
	}

	var removed model.Post
	var idx int
	err := s.engine.Do(ctx, mutation.PostEntity(postID),
		func() func() {
			var found bool
			removed, idx, found = s.list.remove(postID)
			if !found {
				return nil
			}
			return func() { s.list.insert(removed, idx) }
		},
		func(ctx context.Context) error {
			return s.gw.DeletePost(ctx, postID)
		},
	)
	if err != nil {
		return err
	}
	s.posts.Remove(postID)
	return nil
}

// Close cancels the cache subscription.
func (s *ProfileScreen) Close() { s.cancel() }
