package feed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tecsocial/client/internal/model"
)

type mockAPI struct {
	ListFollowingFunc func(ctx context.Context, userID int64) ([]model.User, error)
	ListPostsFunc     func(ctx context.Context, page, limit int) ([]model.Post, error)
	postCalls         int
}

func (m *mockAPI) ListFollowing(ctx context.Context, userID int64) ([]model.User, error) {
	return m.ListFollowingFunc(ctx, userID)
}

func (m *mockAPI) ListPosts(ctx context.Context, page, limit int) ([]model.Post, error) {
	m.postCalls++
	return m.ListPostsFunc(ctx, page, limit)
}

func TestCompose_EmptyFollowSetShortCircuits(t *testing.T) {
	api := &mockAPI{
		ListFollowingFunc: func(context.Context, int64) ([]model.User, error) {
			return []model.User{}, nil
		},
		ListPostsFunc: func(context.Context, int, int) ([]model.Post, error) {
			t.Fatal("the post listing must not be queried for an empty follow set")
			return nil, nil
		},
	}

	feed, err := New(api).Compose(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, feed)
	assert.Zero(t, api.postCalls)
}

func TestCompose_FiltersPreservingOrder(t *testing.T) {
	api := &mockAPI{
		ListFollowingFunc: func(context.Context, int64) ([]model.User, error) {
			return []model.User{{ID: 5}, {ID: 9}}, nil
		},
		ListPostsFunc: func(_ context.Context, page, limit int) ([]model.Post, error) {
			return []model.Post{
				{ID: 1, AuthorID: 5},
				{ID: 2, AuthorID: 7},
				{ID: 3, AuthorID: 9},
			}, nil
		},
	}

	feed, err := New(api).Compose(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, feed, 2)
	assert.Equal(t, int64(1), feed[0].ID)
	assert.Equal(t, int64(3), feed[1].ID)
}

func TestCompose_WalksPagesUntilShortPage(t *testing.T) {
	pages := map[int][]model.Post{
		1: {{ID: 1, AuthorID: 2}, {ID: 2, AuthorID: 2}},
		2: {{ID: 3, AuthorID: 5}}, // short page: listing exhausted
	}
	api := &mockAPI{
		ListFollowingFunc: func(context.Context, int64) ([]model.User, error) {
			return []model.User{{ID: 5}}, nil
		},
		ListPostsFunc: func(_ context.Context, page, limit int) ([]model.Post, error) {
			return pages[page], nil
		},
	}

	c := New(api)
	c.PageLimit = 2
	c.Target = 5

	feed, err := c.Compose(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, feed, 1)
	assert.Equal(t, int64(3), feed[0].ID)
	assert.Equal(t, 2, api.postCalls)
}

func TestCompose_StopsAtTarget(t *testing.T) {
	api := &mockAPI{
		ListFollowingFunc: func(context.Context, int64) ([]model.User, error) {
			return []model.User{{ID: 5}}, nil
		},
		ListPostsFunc: func(_ context.Context, page, limit int) ([]model.Post, error) {
			out := make([]model.Post, limit)
			for i := range out {
				out[i] = model.Post{ID: int64(page*100 + i), AuthorID: 5}
			}
			return out, nil
		},
	}

	c := New(api)
	c.PageLimit = 2
	c.Target = 2

	feed, err := c.Compose(context.Background(), 1)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, len(feed), 2)
	assert.Equal(t, 1, api.postCalls, "enough matches on the first page must stop the walk")
}

func TestCompose_MaxPagesBound(t *testing.T) {
	api := &mockAPI{
		ListFollowingFunc: func(context.Context, int64) ([]model.User, error) {
			return []model.User{{ID: 99}}, nil
		},
		ListPostsFunc: func(_ context.Context, page, limit int) ([]model.Post, error) {
			out := make([]model.Post, limit)
			for i := range out {
				out[i] = model.Post{ID: int64(page*100 + i), AuthorID: 1}
			}
			return out, nil
		},
	}

	c := New(api)
	c.PageLimit = 2
	c.Target = 1
	c.MaxPages = 3

	feed, err := c.Compose(context.Background(), 1)
	require.NoError(t, err)

	assert.Empty(t, feed)
	assert.Equal(t, 3, api.postCalls)
}

func TestCompose_FollowListError(t *testing.T) {
	wantErr := errors.New("boom")
	api := &mockAPI{
		ListFollowingFunc: func(context.Context, int64) ([]model.User, error) {
			return nil, wantErr
		},
	}

	_, err := New(api).Compose(context.Background(), 1)
	assert.ErrorIs(t, err, wantErr)
}
