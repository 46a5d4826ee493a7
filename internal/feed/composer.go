// Package feed composes the "posts from people you follow" listing,
// which the backend does not expose as a single endpoint.
package feed

import (
	"context"
	"fmt"

	"github.com/tecsocial/client/internal/model"
)

// API is the slice of the gateway the composer consumes.
type API interface {
	ListFollowing(ctx context.Context, userID int64) ([]model.User, error)
	ListPosts(ctx context.Context, page, limit int) ([]model.Post, error)
}

const (
	// DefaultPageLimit is the global-listing page size used for the join.
	DefaultPageLimit = 100
	// DefaultTarget is how many matching posts the composer collects
	// before it stops fetching further pages.
	DefaultTarget = 30
	// DefaultMaxPages bounds the page walk regardless of match count.
	DefaultMaxPages = 10
)

// Composer joins the viewer's follow set with the global post listing.
type Composer struct {
	api API

	// PageLimit, Target, and MaxPages tune the incremental join; zero
	// values fall back to the defaults.
	PageLimit int
	Target    int
	MaxPages  int
}

// New returns a Composer with the default join bounds.
func New(api API) *Composer {
	return &Composer{
		api:       api,
		PageLimit: DefaultPageLimit,
		Target:    DefaultTarget,
		MaxPages:  DefaultMaxPages,
	}
}

// Compose returns the viewer's following feed, most recent first.
//
// If the viewer follows nobody the feed is empty and the post listing is
// never queried. Otherwise pages of the global listing are fetched and
// filtered to posts authored by followed users, preserving their relative
// order, until a page comes back short (listing exhausted), Target
// matches are collected, or MaxPages is reached.
func (c *Composer) Compose(ctx context.Context, viewerID int64) ([]model.Post, error) {
	following, err := c.api.ListFollowing(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("feed: listing follow set: %w", err)
	}
	if len(following) == 0 {
		return []model.Post{}, nil
	}

	followed := make(map[int64]struct{}, len(following))
	for _, u := range following {
		followed[u.ID] = struct{}{}
	}

	limit, target, maxPages := c.PageLimit, c.Target, c.MaxPages
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if target <= 0 {
		target = DefaultTarget
	}
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	feed := make([]model.Post, 0, target)
	for page := 1; page <= maxPages; page++ {
		posts, err := c.api.ListPosts(ctx, page, limit)
		if err != nil {
			return nil, fmt.Errorf("feed: listing posts (page %d): %w", page, err)
		}
		for _, p := range posts {
			if _, ok := followed[p.AuthorID]; ok {
				feed = append(feed, p)
			}
		}
		if len(posts) < limit || len(feed) >= target {
			break
		}
	}
	return feed, nil
}
