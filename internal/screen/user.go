package screen

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/tecsocial/client/internal/api"
	"github.com/tecsocial/client/internal/cache"
	"github.com/tecsocial/client/internal/model"
	"github.com/tecsocial/client/internal/mutation"
)

// userPostsLimit is the page size of another user's post list.
const userPostsLimit = 10

// UserScreen shows another user's profile and posts, with the
// follow/unfollow toggle.
type UserScreen struct {
	gw      Gateway
	session Session
	engine  *mutation.Engine
	posts   *cache.Posts
	log     *zap.Logger
	userID  int64

	list   postList
	cancel func()

	mu         sync.Mutex
	profile    model.Profile
	hasProfile bool
}

// NewUserScreen mounts the screen for the given user.
func NewUserScreen(gw Gateway, sess Session, eng *mutation.Engine, posts *cache.Posts, log *zap.Logger, userID int64) *UserScreen {
	s := &UserScreen{gw: gw, session: sess, engine: eng, posts: posts, log: log, userID: userID}
	s.cancel = posts.Subscribe(s.list.apply)
	return s
}

// UserID returns the profiled user's id.
func (s *UserScreen) UserID() int64 { return s.userID }

// Load fetches the profile snapshot and the user's posts in full.
// Without a credential it is a silent no-op.
func (s *UserScreen) Load(ctx context.Context) error {
	if _, ok := s.session.Credential(); !ok {
		return nil
	}

	profile, err := s.gw.GetProfile(ctx, s.userID)
	if err != nil {
		return fmt.Errorf("loading user %d: %w", s.userID, err)
	}
	posts, err := s.gw.ListUserPosts(ctx, s.userID, 1, userPostsLimit)
	if err != nil {
		return fmt.Errorf("loading posts of user %d: %w", s.userID, err)
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
func (s *UserScreen) Refresh(ctx context.Context) error { return s.Load(ctx) }

// OnFocus re-runs the full fetch.
func (s *UserScreen) OnFocus(ctx context.Context) error { return s.Load(ctx) }

// Profile returns the current snapshot. ok is false before the first
// successful load.
func (s *UserScreen) Profile() (model.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile, s.hasProfile
}

// Posts returns a render copy of the user's posts.
func (s *UserScreen) Posts() []model.Post { return s.list.snapshot() }

// ToggleLike likes or unlikes one of the user's posts.
func (s *UserScreen) ToggleLike(ctx context.Context, postID int64) error {
	cred, ok := s.session.Credential()
	if !ok {
		return api.ErrNoToken
	}
	return toggleLike(ctx, s.gw, s.engine, s.posts, &s.list, cred.UserID, postID)
}

// ToggleFollow follows or unfollows the user based on the snapshot's
// current state. Only the is-following flag flips optimistically; the
// follower count is a cross-user aggregate the client cannot safely
// guess, so a confirmed toggle is followed by a fresh profile fetch that
// re-derives it. The backend's confirmation message is returned.
func (s *UserScreen) ToggleFollow(ctx context.Context) (string, error) {
	if _, ok := s.session.Credential(); !ok {
		return "", api.ErrNoToken
	}

	s.mu.Lock()
	if !s.hasProfile {
		s.mu.Unlock()
		return "", ErrNotLoaded
	}
	following := s.profile.IsFollowing
	s.mu.Unlock()

	var message string
	err := s.engine.Do(ctx, mutation.UserEntity(s.userID),
		func() func() {
			s.setFollowing(!following)
			return func() { s.setFollowing(following) }
		},
		func(ctx context.Context) error {
			var err error
			if following {
				message, err = s.gw.Unfollow(ctx, s.userID)
			} else {
				message, err = s.gw.Follow(ctx, s.userID)
			}
			return err
		},
	)
	if err != nil {
		return "", err
	}

	// Counts come from the server, never from a local increment. A failed
	// re-fetch leaves them stale until the next focus re-fetch.
	if profile, err := s.gw.GetProfile(ctx, s.userID); err == nil {
		s.mu.Lock()
		s.profile = profile
		s.mu.Unlock()
	} else {
		s.log.Warn("profile re-fetch after follow toggle failed",
			zap.Int64("user", s.userID), zap.Error(err))
	}
	return message, nil
}

func (s *UserScreen) setFollowing(v bool) {
	s.mu.Lock()
	s.profile.IsFollowing = v
	s.mu.Unlock()
}

// Close cancels the cache subscription.
func (s *UserScreen) Close() { s.cancel() }
