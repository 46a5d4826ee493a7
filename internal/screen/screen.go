// Package screen implements the view-models behind each screen of the
// client.
//
// Every screen that displays posts or profile data follows the same
// reload discipline: a full fetch on first mount while a credential
// exists, a full re-fetch on every regain of focus, and the same fetch
// for the manual refresh gesture. Screens never read each other's state;
// beyond the shared post cache, consistency between screens comes only
// from those re-fetches.
package screen

import (
	"context"
	"errors"
	"sync"

	"github.com/tecsocial/client/internal/cache"
	"github.com/tecsocial/client/internal/model"
	"github.com/tecsocial/client/internal/mutation"
	"github.com/tecsocial/client/internal/session"
)

var (
	// ErrNotFound is returned when a mutation targets a post the screen
	// does not hold.
	ErrNotFound = errors.New("screen: post not found")
	// ErrMissingFields is returned when a form field is left empty.
	ErrMissingFields = errors.New("screen: all fields are required")
	// ErrAccountExists is returned when signup is rejected because the
	// email or username is already taken.
	ErrAccountExists = errors.New("screen: email or username already in use")
	// ErrNotLoaded is returned when a mutation runs before the screen's
	// first successful fetch.
	ErrNotLoaded = errors.New("screen: not loaded")
)

// Gateway is the slice of the API client the screens consume. Each call
// either succeeds with the described payload or fails with a transport,
// authorization, or validation error.
type Gateway interface {
	ListPosts(ctx context.Context, page, limit int) ([]model.Post, error)
	ListUserPosts(ctx context.Context, userID int64, page, limit int) ([]model.Post, error)
	GetProfile(ctx context.Context, userID int64) (model.Profile, error)
	ListFollowers(ctx context.Context, userID int64) ([]model.User, error)
	ListFollowing(ctx context.Context, userID int64) ([]model.User, error)
	CreatePost(ctx context.Context, content string) (model.Post, error)
	UpdatePost(ctx context.Context, id int64, content string) (model.Post, error)
	DeletePost(ctx context.Context, id int64) error
	Like(ctx context.Context, postID int64) error
	Unlike(ctx context.Context, postID int64) error
	Follow(ctx context.Context, userID int64) (string, error)
	Unfollow(ctx context.Context, userID int64) (string, error)
}

// Session exposes the part of the session store the screens read.
type Session interface {
	Credential() (session.Credential, bool)
}

// postList is a screen's local, independently fetched copy of posts,
// kept fresh by the screen's cache subscription.
type postList struct {
	mu    sync.Mutex
	posts []model.Post
}

func (l *postList) set(posts []model.Post) {
	cloned := make([]model.Post, len(posts))
	for i, p := range posts {
		cloned[i] = p.Clone()
	}
	l.mu.Lock()
	l.posts = cloned
	l.mu.Unlock()
}

// snapshot returns a render copy of the list.
func (l *postList) snapshot() []model.Post {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.Post, len(l.posts))
	for i, p := range l.posts {
		out[i] = p.Clone()
	}
	return out
}

func (l *postList) get(id int64) (model.Post, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range l.posts {
		if p.ID == id {
			return p.Clone(), true
		}
	}
	return model.Post{}, false
}

// replace swaps the list's copy of the post if it is present.
func (l *postList) replace(p model.Post) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.posts {
		if l.posts[i].ID == p.ID {
			l.posts[i] = p.Clone()
			return
		}
	}
}

// remove drops the post, returning the removed copy and its index for a
// possible restore.
func (l *postList) remove(id int64) (model.Post, int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, p := range l.posts {
		if p.ID == id {
			removed := p.Clone()
			l.posts = append(l.posts[:i], l.posts[i+1:]...)
			return removed, i, true
		}
	}
	return model.Post{}, 0, false
}

// insert puts the post back at idx, clamped to the list bounds.
func (l *postList) insert(p model.Post, idx int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if idx < 0 {
		idx = 0
	}
	if idx > len(l.posts) {
		idx = len(l.posts)
	}
	l.posts = append(l.posts[:idx], append([]model.Post{p.Clone()}, l.posts[idx:]...)...)
}

// apply reconciles one cache event into the list. Updates touch only
// posts the list already holds; a list never adopts posts it did not
// fetch.
func (l *postList) apply(ev cache.Event) {
	switch ev.Type {
	case cache.Updated:
		l.replace(ev.Post)
	case cache.Removed:
		l.remove(ev.Post.ID)
	}
}

// toggleLike flips the viewer's membership in the post's likes set
// through the optimistic engine. Like versus unlike is chosen from the
// current membership, not from a separate pending flag, so a confirmed
// round trip of two toggles restores the original set.
func toggleLike(ctx context.Context, gw Gateway, eng *mutation.Engine, posts *cache.Posts, list *postList, viewerID, postID int64) error {
	post, ok := list.get(postID)
	if !ok {
		return ErrNotFound
	}
	if _, cached := posts.Get(postID); !cached {
		posts.Put(post)
	}
	liked := post.LikedBy(viewerID)

	return eng.Do(ctx, mutation.PostEntity(postID),
		func() func() {
			prev, _ := posts.Update(postID, func(p *model.Post) {
				if liked {
					p.RemoveLike(viewerID)
				} else {
					p.AddLike(viewerID)
				}
			})
			return func() { posts.Restore(prev) }
		},
		func(ctx context.Context) error {
			if liked {
				return gw.Unlike(ctx, postID)
			}
			return gw.Like(ctx, postID)
		},
	)
}
