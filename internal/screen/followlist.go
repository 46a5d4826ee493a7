package screen

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/tecsocial/client/internal/model"
)

// FollowKind selects which side of the follow relation a list shows.
type FollowKind int

const (
	// Followers lists the users following the subject.
	Followers FollowKind = iota
	// Following lists the users the subject follows.
	Following
)

func (k FollowKind) String() string {
	if k == Followers {
		return "followers"
	}
	return "following"
}

// FollowListScreen shows the followers or following list of a user.
type FollowListScreen struct {
	gw      Gateway
	session Session
	log     *zap.Logger
	userID  int64
	kind    FollowKind

	mu    sync.Mutex
	users []model.User
}

// NewFollowListScreen mounts a follower/following list for the user.
func NewFollowListScreen(gw Gateway, sess Session, log *zap.Logger, userID int64, kind FollowKind) *FollowListScreen {
	return &FollowListScreen{gw: gw, session: sess, log: log, userID: userID, kind: kind}
}

// Load fetches the list in full. Without a credential it is a silent
// no-op.
func (s *FollowListScreen) Load(ctx context.Context) error {
	if _, ok := s.session.Credential(); !ok {
		return nil
	}

	var (
		users []model.User
		err   error
	)
	if s.kind == Followers {
		users, err = s.gw.ListFollowers(ctx, s.userID)
	} else {
		users, err = s.gw.ListFollowing(ctx, s.userID)
	}
	if err != nil {
		return fmt.Errorf("loading %s of user %d: %w", s.kind, s.userID, err)
	}

	s.mu.Lock()
	s.users = users
	s.mu.Unlock()
	return nil
}

// Refresh re-runs the full fetch.
func (s *FollowListScreen) Refresh(ctx context.Context) error { return s.Load(ctx) }

// OnFocus re-runs the full fetch.
func (s *FollowListScreen) OnFocus(ctx context.Context) error { return s.Load(ctx) }

// Users returns a render copy of the list.
func (s *FollowListScreen) Users() []model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.User(nil), s.users...)
}
