package screen

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tecsocial/client/internal/api"
	"github.com/tecsocial/client/internal/cache"
	"github.com/tecsocial/client/internal/model"
	"github.com/tecsocial/client/internal/mutation"
	"github.com/tecsocial/client/internal/session"
)

// mockGateway implements Gateway with overridable funcs. Unset funcs
// fail the calling test so unexpected traffic is visible.
type mockGateway struct {
	t *testing.T

	ListPostsFunc     func(ctx context.Context, page, limit int) ([]model.Post, error)
	ListUserPostsFunc func(ctx context.Context, userID int64, page, limit int) ([]model.Post, error)
	GetProfileFunc    func(ctx context.Context, userID int64) (model.Profile, error)
	ListFollowersFunc func(ctx context.Context, userID int64) ([]model.User, error)
	ListFollowingFunc func(ctx context.Context, userID int64) ([]model.User, error)
	CreatePostFunc    func(ctx context.Context, content string) (model.Post, error)
	UpdatePostFunc    func(ctx context.Context, id int64, content string) (model.Post, error)
	DeletePostFunc    func(ctx context.Context, id int64) error
	LikeFunc          func(ctx context.Context, postID int64) error
	UnlikeFunc        func(ctx context.Context, postID int64) error
	FollowFunc        func(ctx context.Context, userID int64) (string, error)
	UnfollowFunc      func(ctx context.Context, userID int64) (string, error)
}

func (m *mockGateway) ListPosts(ctx context.Context, page, limit int) ([]model.Post, error) {
	if m.ListPostsFunc == nil {
		m.t.Fatal("unexpected ListPosts")
	}
	return m.ListPostsFunc(ctx, page, limit)
}

func (m *mockGateway) ListUserPosts(ctx context.Context, userID int64, page, limit int) ([]model.Post, error) {
	if m.ListUserPostsFunc == nil {
		m.t.Fatal("unexpected ListUserPosts")
	}
	return m.ListUserPostsFunc(ctx, userID, page, limit)
}

func (m *mockGateway) GetProfile(ctx context.Context, userID int64) (model.Profile, error) {
	if m.GetProfileFunc == nil {
		m.t.Fatal("unexpected GetProfile")
	}
	return m.GetProfileFunc(ctx, userID)
}

func (m *mockGateway) ListFollowers(ctx context.Context, userID int64) ([]model.User, error) {
	if m.ListFollowersFunc == nil {
		m.t.Fatal("unexpected ListFollowers")
	}
	return m.ListFollowersFunc(ctx, userID)
}

func (m *mockGateway) ListFollowing(ctx context.Context, userID int64) ([]model.User, error) {
	if m.ListFollowingFunc == nil {
		m.t.Fatal("unexpected ListFollowing")
	}
	return m.ListFollowingFunc(ctx, userID)
}

func (m *mockGateway) CreatePost(ctx context.Context, content string) (model.Post, error) {
	if m.CreatePostFunc == nil {
		m.t.Fatal("unexpected CreatePost")
	}
	return m.CreatePostFunc(ctx, content)
}

func (m *mockGateway) UpdatePost(ctx context.Context, id int64, content string) (model.Post, error) {
	if m.UpdatePostFunc == nil {
		m.t.Fatal("unexpected UpdatePost")
	}
	return m.UpdatePostFunc(ctx, id, content)
}

func (m *mockGateway) DeletePost(ctx context.Context, id int64) error {
	if m.DeletePostFunc == nil {
		m.t.Fatal("unexpected DeletePost")
	}
	return m.DeletePostFunc(ctx, id)
}

func (m *mockGateway) Like(ctx context.Context, postID int64) error {
	if m.LikeFunc == nil {
		m.t.Fatal("unexpected Like")
	}
	return m.LikeFunc(ctx, postID)
}

func (m *mockGateway) Unlike(ctx context.Context, postID int64) error {
	if m.UnlikeFunc == nil {
		m.t.Fatal("unexpected Unlike")
	}
	return m.UnlikeFunc(ctx, postID)
}

func (m *mockGateway) Follow(ctx context.Context, userID int64) (string, error) {
	if m.FollowFunc == nil {
		m.t.Fatal("unexpected Follow")
	}
	return m.FollowFunc(ctx, userID)
}

func (m *mockGateway) Unfollow(ctx context.Context, userID int64) (string, error) {
	if m.UnfollowFunc == nil {
		m.t.Fatal("unexpected Unfollow")
	}
	return m.UnfollowFunc(ctx, userID)
}

// mockSession reports a fixed credential.
type mockSession struct {
	cred session.Credential
	ok   bool
}

func (m *mockSession) Credential() (session.Credential, bool) { return m.cred, m.ok }

func authedSession(userID int64) *mockSession {
	return &mockSession{cred: session.Credential{Token: "tok", UserID: userID}, ok: true}
}

const viewerID = int64(7)

func newPostsScreen(t *testing.T, gw *mockGateway) (*PostsScreen, *cache.Posts) {
	t.Helper()
	posts := cache.NewPosts()
	s := NewPostsScreen(gw, authedSession(viewerID), mutation.New(zap.NewNop()), posts, zap.NewNop())
	t.Cleanup(s.Close)
	return s, posts
}

func TestPostsScreen_LoadWithoutCredential(t *testing.T) {
	gw := &mockGateway{t: t} // any gateway call fails the test
	posts := cache.NewPosts()
	s := NewPostsScreen(gw, &mockSession{}, mutation.New(zap.NewNop()), posts, zap.NewNop())
	defer s.Close()

	require.NoError(t, s.Load(context.Background()))
	assert.Empty(t, s.Posts())
}

func TestPostsScreen_Load(t *testing.T) {
	gw := &mockGateway{t: t}
	gw.ListPostsFunc = func(_ context.Context, page, limit int) ([]model.Post, error) {
		assert.Equal(t, 1, page)
		assert.Equal(t, 30, limit)
		return []model.Post{{ID: 1, Content: "a"}, {ID: 2, Content: "b"}}, nil
	}

	s, _ := newPostsScreen(t, gw)
	require.NoError(t, s.Load(context.Background()))
	assert.Len(t, s.Posts(), 2)
}

func TestToggleLike_RoundTripRestoresSet(t *testing.T) {
	gw := &mockGateway{t: t}
	gw.ListPostsFunc = func(context.Context, int, int) ([]model.Post, error) {
		return []model.Post{{ID: 1, Likes: []int64{3}}}, nil
	}
	gw.LikeFunc = func(context.Context, int64) error { return nil }
	gw.UnlikeFunc = func(context.Context, int64) error { return nil }

	s, _ := newPostsScreen(t, gw)
	require.NoError(t, s.Load(context.Background()))

	require.NoError(t, s.ToggleLike(context.Background(), 1))
	assert.True(t, s.Posts()[0].LikedBy(viewerID))

	require.NoError(t, s.ToggleLike(context.Background(), 1))
	assert.Equal(t, []int64{3}, s.Posts()[0].Likes,
		"two confirmed toggles must restore the original set")
}

func TestToggleLike_RollbackOnFailure(t *testing.T) {
	gw := &mockGateway{t: t}
	gw.ListPostsFunc = func(context.Context, int, int) ([]model.Post, error) {
		return []model.Post{{ID: 1, Likes: []int64{3}}}, nil
	}
	gw.LikeFunc = func(context.Context, int64) error { return errors.New("boom") }

	s, _ := newPostsScreen(t, gw)
	require.NoError(t, s.Load(context.Background()))

	err := s.ToggleLike(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, []int64{3}, s.Posts()[0].Likes,
		"the likes set after settling must equal the set before the toggle")
}

func TestToggleLike_ChoosesUnlikeFromMembership(t *testing.T) {
	gw := &mockGateway{t: t}
	gw.ListPostsFunc = func(context.Context, int, int) ([]model.Post, error) {
		return []model.Post{{ID: 1, Likes: []int64{viewerID}}}, nil
	}
	unliked := false
	gw.UnlikeFunc = func(context.Context, int64) error {
		unliked = true
		return nil
	}

	s, _ := newPostsScreen(t, gw)
	require.NoError(t, s.Load(context.Background()))

	require.NoError(t, s.ToggleLike(context.Background(), 1))
	assert.True(t, unliked)
	assert.False(t, s.Posts()[0].LikedBy(viewerID))
}

func TestToggleLike_UnknownPost(t *testing.T) {
	gw := &mockGateway{t: t}
	gw.ListPostsFunc = func(context.Context, int, int) ([]model.Post, error) {
		return []model.Post{}, nil
	}

	s, _ := newPostsScreen(t, gw)
	require.NoError(t, s.Load(context.Background()))

	assert.ErrorIs(t, s.ToggleLike(context.Background(), 42), ErrNotFound)
}

func TestToggleLike_NoTokenIsDistinctOutcome(t *testing.T) {
	gw := &mockGateway{t: t}
	posts := cache.NewPosts()
	s := NewPostsScreen(gw, &mockSession{}, mutation.New(zap.NewNop()), posts, zap.NewNop())
	defer s.Close()

	assert.ErrorIs(t, s.ToggleLike(context.Background(), 1), api.ErrNoToken)
}

// Two screens holding the same post observe each other's confirmed
// mutations through the shared cache.
func TestCrossScreen_LikePropagates(t *testing.T) {
	gw := &mockGateway{t: t}
	gw.ListPostsFunc = func(context.Context, int, int) ([]model.Post, error) {
		return []model.Post{{ID: 1, Likes: []int64{}}}, nil
	}
	gw.LikeFunc = func(context.Context, int64) error { return nil }

	posts := cache.NewPosts()
	eng := mutation.New(zap.NewNop())
	sess := authedSession(viewerID)

	a := NewPostsScreen(gw, sess, eng, posts, zap.NewNop())
	defer a.Close()
	b := NewPostsScreen(gw, sess, eng, posts, zap.NewNop())
	defer b.Close()

	require.NoError(t, a.Load(context.Background()))
	require.NoError(t, b.Load(context.Background()))

	require.NoError(t, a.ToggleLike(context.Background(), 1))

	assert.True(t, b.Posts()[0].LikedBy(viewerID),
		"screen B must observe the like applied through screen A")
}
