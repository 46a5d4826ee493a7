// Package cache holds the shared post cache. Each screen still renders
// its own local copy, but all of them subscribe here, so a mutation
// applied through one screen is observed by every other screen holding
// the same post instead of staying stale until the next focus re-fetch.
package cache

import (
	"sync"

	"github.com/tecsocial/client/internal/model"
)

// EventType classifies a cache change.
type EventType int

const (
	// Updated means the post's cached copy changed.
	Updated EventType = iota
	// Removed means the post left the cache (confirmed delete).
	Removed
)

// Event describes one change to a cached post.
type Event struct {
	Type EventType
	Post model.Post
}

// Posts is an in-memory post cache with synchronous subscriber fan-out.
// Events are delivered on the mutating goroutine, after the cache lock is
// released.
type Posts struct {
	mu      sync.Mutex
	posts   map[int64]model.Post
	subs    map[int]func(Event)
	nextSub int
}

// NewPosts returns an empty cache.
func NewPosts() *Posts {
	return &Posts{
		posts: make(map[int64]model.Post),
		subs:  make(map[int]func(Event)),
	}
}

// Put stores fetched posts, replacing any cached copies. Fetch results
// are not fanned out: the fetching screen already holds them, and other
// screens reconcile through their own focus re-fetch.
func (c *Posts) Put(posts ...model.Post) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range posts {
		c.posts[p.ID] = p.Clone()
	}
}

// Get returns an independent copy of the cached post.
func (c *Posts) Get(id int64) (model.Post, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.posts[id]
	if !ok {
		return model.Post{}, false
	}
	return p.Clone(), true
}

// Update applies fn to the cached post and notifies subscribers. It
// returns the pre-mutation copy for rollback; ok is false and nothing is
// published if the post is not cached.
func (c *Posts) Update(id int64, fn func(*model.Post)) (prev model.Post, ok bool) {
	c.mu.Lock()
	p, found := c.posts[id]
	if !found {
		c.mu.Unlock()
		return model.Post{}, false
	}
	prev = p.Clone()
	next := p.Clone()
	fn(&next)
	c.posts[id] = next
	subs := c.snapshotSubs()
	c.mu.Unlock()

	c.publish(subs, Event{Type: Updated, Post: next.Clone()})
	return prev, true
}

// Restore puts back a previous copy (rollback) and notifies subscribers.
func (c *Posts) Restore(post model.Post) {
	c.mu.Lock()
	c.posts[post.ID] = post.Clone()
	subs := c.snapshotSubs()
	c.mu.Unlock()

	c.publish(subs, Event{Type: Updated, Post: post.Clone()})
}

// Remove drops the post and notifies subscribers. It is published only
// for confirmed deletes; an optimistic removal stays local to the
// deleting screen until the backend confirms it.
func (c *Posts) Remove(id int64) (prev model.Post, ok bool) {
	c.mu.Lock()
	p, found := c.posts[id]
	if !found {
		c.mu.Unlock()
		return model.Post{}, false
	}
	delete(c.posts, id)
	subs := c.snapshotSubs()
	c.mu.Unlock()

	c.publish(subs, Event{Type: Removed, Post: p.Clone()})
	return p.Clone(), true
}

// Subscribe registers fn for every subsequent change. The returned
// function cancels the subscription.
func (c *Posts) Subscribe(fn func(Event)) (cancel func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

// snapshotSubs must be called with c.mu held.
func (c *Posts) snapshotSubs() []func(Event) {
	out := make([]func(Event), 0, len(c.subs))
	for _, fn := range c.subs {
		out = append(out, fn)
	}
	return out
}

func (c *Posts) publish(subs []func(Event), ev Event) {
	for _, fn := range subs {
		fn(ev)
	}
}
