package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tecsocial/client/internal/model"
)

func pageQuery(page, limit int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	return q
}

// ListPosts returns one page of the global most-recent-first post listing.
func (c *Client) ListPosts(ctx context.Context, page, limit int) ([]model.Post, error) {
	var posts []model.Post
	err := c.do(ctx, http.MethodGet, "/posts", pageQuery(page, limit), nil, &posts, true)
	return posts, err
}

// ListUserPosts returns one page of the given user's posts.
func (c *Client) ListUserPosts(ctx context.Context, userID int64, page, limit int) ([]model.Post, error) {
	var posts []model.Post
	path := fmt.Sprintf("/users/%d/posts", userID)
	err := c.do(ctx, http.MethodGet, path, pageQuery(page, limit), nil, &posts, true)
	return posts, err
}

// CreatePost publishes a new post. Content must already be validated.
func (c *Client) CreatePost(ctx context.Context, content string) (model.Post, error) {
	var post model.Post
	body := map[string]string{"content": content}
	err := c.do(ctx, http.MethodPost, "/posts", nil, body, &post, true)
	return post, err
}

// UpdatePost edits a post's content. Newer backend deploys serve the edit
// on PATCH, older ones only on PUT; PATCH is tried first with a PUT
// fallback on any remote failure.
func (c *Client) UpdatePost(ctx context.Context, id int64, content string) (model.Post, error) {
	var post model.Post
	body := map[string]string{"content": content}
	path := fmt.Sprintf("/posts/%d", id)

	err := c.do(ctx, http.MethodPatch, path, nil, body, &post, true)
	if err == nil || errors.Is(err, ErrNoToken) {
		return post, err
	}
	err = c.do(ctx, http.MethodPut, path, nil, body, &post, true)
	return post, err
}

// DeletePost removes a post owned by the viewer.
func (c *Client) DeletePost(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/posts/%d", id), nil, nil, nil, true)
}

// Like marks the post liked by the viewer. Safe to request even if the
// server already recorded the like.
func (c *Client) Like(ctx context.Context, postID int64) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/posts/%d/like", postID), nil, nil, nil, true)
}

// Unlike removes the viewer's like from the post.
func (c *Client) Unlike(ctx context.Context, postID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/posts/%d/like", postID), nil, nil, nil, true)
}
