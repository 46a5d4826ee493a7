package mutation

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDo_SuccessKeepsAppliedState(t *testing.T) {
	e := New(zap.NewNop())
	value := 0

	err := e.Do(context.Background(), PostEntity(1),
		func() func() {
			value = 1
			return func() { value = 0 }
		},
		func(context.Context) error { return nil },
	)

	require.NoError(t, err)
	assert.Equal(t, 1, value, "confirmed mutations keep the applied state")
}

func TestDo_FailureRunsRevert(t *testing.T) {
	e := New(zap.NewNop())
	value := 0
	remoteErr := errors.New("boom")

	err := e.Do(context.Background(), PostEntity(1),
		func() func() {
			value = 1
			return func() { value = 0 }
		},
		func(context.Context) error { return remoteErr },
	)

	require.ErrorIs(t, err, remoteErr)
	assert.Equal(t, 0, value, "failed mutations revert to the pre-mutation state")
}

func TestDo_ApplyHappensBeforeCall(t *testing.T) {
	e := New(zap.NewNop())
	applied := false

	err := e.Do(context.Background(), PostEntity(1),
		func() func() {
			applied = true
			return nil
		},
		func(context.Context) error {
			assert.True(t, applied, "the optimistic apply must happen before the remote call")
			return nil
		},
	)
	require.NoError(t, err)
}

func TestDo_BusyEntityRejected(t *testing.T) {
	e := New(zap.NewNop())

	firstInFlight := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- e.Do(context.Background(), PostEntity(1),
			func() func() { return nil },
			func(context.Context) error {
				close(firstInFlight)
				<-release
				return nil
			},
		)
	}()

	<-firstInFlight
	applied := false
	err := e.Do(context.Background(), PostEntity(1),
		func() func() {
			applied = true
			return nil
		},
		func(context.Context) error { return nil },
	)
	assert.ErrorIs(t, err, ErrBusy)
	assert.False(t, applied, "a rejected mutation must not touch local state")

	close(release)
	require.NoError(t, <-done)

	// The slot is free again once the first mutation settles.
	require.NoError(t, e.Do(context.Background(), PostEntity(1),
		func() func() { return nil },
		func(context.Context) error { return nil },
	))
}

func TestDo_DistinctEntitiesNotSerialized(t *testing.T) {
	e := New(zap.NewNop())

	var wg sync.WaitGroup
	firstInFlight := make(chan struct{})
	release := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = e.Do(context.Background(), PostEntity(1),
			func() func() { return nil },
			func(context.Context) error {
				close(firstInFlight)
				<-release
				return nil
			},
		)
	}()

	<-firstInFlight
	err := e.Do(context.Background(), PostEntity(2),
		func() func() { return nil },
		func(context.Context) error { return nil },
	)
	assert.NoError(t, err, "a different entity must not be blocked")

	close(release)
	wg.Wait()
}

func TestDo_NilRevertTolerated(t *testing.T) {
	e := New(zap.NewNop())
	err := e.Do(context.Background(), UserEntity(3),
		func() func() { return nil },
		func(context.Context) error { return errors.New("boom") },
	)
	assert.Error(t, err)
}
