package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tecsocial/client/internal/model"
)

// GetProfile fetches a user's profile snapshot, including follow counts
// and whether the viewer follows them.
func (c *Client) GetProfile(ctx context.Context, userID int64) (model.Profile, error) {
	var profile model.Profile
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d", userID), nil, nil, &profile, true)
	return profile, err
}

// ListFollowers returns the users following userID.
func (c *Client) ListFollowers(ctx context.Context, userID int64) ([]model.User, error) {
	var users []model.User
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d/followers", userID), nil, nil, &users, true)
	return users, err
}

// ListFollowing returns the users userID follows. The backend serves the
// whole set in a single unbounded page.
func (c *Client) ListFollowing(ctx context.Context, userID int64) ([]model.User, error) {
	var users []model.User
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d/following", userID), nil, nil, &users, true)
	return users, err
}

// Follow makes the viewer follow userID and returns the backend's
// confirmation message. Safe to request if the follow already exists.
func (c *Client) Follow(ctx context.Context, userID int64) (string, error) {
	var res struct {
		Message string `json:"message"`
	}
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/users/%d/follow", userID), nil, nil, &res, true)
	return res.Message, err
}

// Unfollow removes the viewer's follow of userID and returns the
// backend's confirmation message.
func (c *Client) Unfollow(ctx context.Context, userID int64) (string, error) {
	var res struct {
		Message string `json:"message"`
	}
	err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/users/%d/follow", userID), nil, nil, &res, true)
	return res.Message, err
}
