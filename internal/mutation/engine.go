// Package mutation implements the optimistic apply-then-settle pattern
// behind every like, follow, edit, and delete action.
//
// A mutation's local effect is applied synchronously before its remote
// call is issued. There are exactly three outcomes: the remote call
// succeeds and the applied state is kept, it fails and the revert runs,
// or the entity already has a mutation in flight and nothing happens
// (ErrBusy). Failed mutations are never retried automatically.
package mutation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Entity identifies the target of a mutation for pending-slot tracking.
type Entity struct {
	Kind string
	ID   int64
}

// PostEntity keys a mutation on a post.
func PostEntity(id int64) Entity { return Entity{Kind: "post", ID: id} }

// UserEntity keys a mutation on a user (follow/unfollow).
func UserEntity(id int64) Entity { return Entity{Kind: "user", ID: id} }

// ErrBusy is returned when a mutation targets an entity that already has
// one in flight. The local state is untouched in that case.
var ErrBusy = errors.New("mutation: entity busy")

// Engine runs optimistic mutations with at most one in flight per entity.
// Distinct entities are not serialized against each other.
type Engine struct {
	mu      sync.Mutex
	pending map[Entity]struct{}
	log     *zap.Logger
}

// New returns an Engine with no pending mutations.
func New(log *zap.Logger) *Engine {
	return &Engine{pending: make(map[Entity]struct{}), log: log}
}

// Do runs one mutation against entity. apply must change the local state
// and return a revert that restores the pre-mutation value; it runs
// before call is issued. On remote failure the revert runs and the
// wrapped error is returned; on success the applied state stands as the
// new local state.
func (e *Engine) Do(ctx context.Context, entity Entity, apply func() (revert func()), call func(context.Context) error) error {
	e.mu.Lock()
	if _, inFlight := e.pending[entity]; inFlight {
		e.mu.Unlock()
		return ErrBusy
	}
	e.pending[entity] = struct{}{}
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		delete(e.pending, entity)
		e.mu.Unlock()
	}()

	revert := apply()
	if err := call(ctx); err != nil {
		if revert != nil {
			revert()
		}
		e.log.Warn("mutation rolled back",
			zap.String("kind", entity.Kind),
			zap.Int64("id", entity.ID),
			zap.Error(err),
		)
		return fmt.Errorf("mutation: %s %d: %w", entity.Kind, entity.ID, err)
	}
	return nil
}
