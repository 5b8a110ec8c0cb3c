package optimistic

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/pkg/logger"
)

// memStore is an in-memory StateStore for tests.
type memStore struct {
	mu          sync.Mutex
	value       []string
	loads       int
	saveErr     error
	invalidated int
}

func (s *memStore) Load(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	out := make([]string, len(s.value))
	copy(out, s.value)
	return out, nil
}

func (s *memStore) Save(ctx context.Context, value []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.value = value
	return nil
}

func (s *memStore) Invalidate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidated++
	return nil
}

func (s *memStore) current() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

func TestMutateCommit(t *testing.T) {
	store := &memStore{value: []string{"a", "b", "c"}}
	coord := NewCoordinator[[]string](store, logger.NewNop())

	var sentWhileApplied []string
	err := coord.Mutate(context.Background(), []string{"c", "a", "b"}, func(ctx context.Context) error {
		// The speculative order must already be visible before the network
		// confirms.
		sentWhileApplied = store.current()
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, sentWhileApplied)
	assert.Equal(t, StateCommitted, coord.State())
	assert.Equal(t, 1, store.invalidated, "commit must invalidate cached state")
}

func TestMutateRollbackRestoresSnapshotVerbatim(t *testing.T) {
	prior := []string{"a", "b", "c"}
	store := &memStore{value: prior}
	coord := NewCoordinator[[]string](store, logger.NewNop())

	sendErr := errors.New("request failed: 503")
	err := coord.Mutate(context.Background(), []string{"c", "b", "a"}, func(ctx context.Context) error {
		return sendErr
	})

	// The failure surfaces exactly once, as the returned error.
	require.ErrorIs(t, err, sendErr)
	assert.Equal(t, prior, store.current(), "local state must match the pre-mutation snapshot")
	assert.Equal(t, StateRolledBack, coord.State())
	assert.Zero(t, store.invalidated, "rollback must not invalidate")
}

func TestMutateRollsBackEvenWhenContextCanceled(t *testing.T) {
	prior := []string{"a", "b"}
	store := &memStore{value: prior}
	coord := NewCoordinator[[]string](store, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	err := coord.Mutate(ctx, []string{"b", "a"}, func(ctx context.Context) error {
		cancel()
		return ctx.Err()
	})

	require.Error(t, err)
	assert.Equal(t, prior, store.current())
	assert.Equal(t, StateRolledBack, coord.State())
}

func TestMutateSpeculativeApplyFailure(t *testing.T) {
	store := &memStore{value: []string{"a"}, saveErr: errors.New("disk full")}
	coord := NewCoordinator[[]string](store, logger.NewNop())

	err := coord.Mutate(context.Background(), []string{"b"}, func(ctx context.Context) error {
		t.Fatal("send must not run when the speculative apply failed")
		return nil
	})

	require.Error(t, err)
	assert.Equal(t, StateIdle, coord.State())
}

func TestSecondMutateWaitsForResolution(t *testing.T) {
	store := &memStore{value: []string{"a"}}
	coord := NewCoordinator[[]string](store, logger.NewNop())

	firstInFlight := make(chan struct{})
	release := make(chan struct{})
	secondDone := make(chan error, 1)

	go func() {
		_ = coord.Mutate(context.Background(), []string{"b"}, func(ctx context.Context) error {
			close(firstInFlight)
			<-release
			return nil
		})
	}()

	<-firstInFlight
	assert.True(t, coord.Pending())
	assert.Equal(t, StatePending, coord.State())

	go func() {
		secondDone <- coord.Mutate(context.Background(), []string{"c"}, func(ctx context.Context) error {
			return nil
		})
	}()

	// While the first mutation is pending the second must not resolve;
	// snapshots never stack.
	select {
	case <-secondDone:
		t.Fatal("second mutate resolved while the first was still pending")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-secondDone)
	assert.Equal(t, []string{"c"}, store.current())
}

func TestMutateWaitHonorsContext(t *testing.T) {
	store := &memStore{value: []string{"a"}}
	coord := NewCoordinator[[]string](store, logger.NewNop())

	firstInFlight := make(chan struct{})
	release := make(chan struct{})
	defer close(release)

	go func() {
		_ = coord.Mutate(context.Background(), []string{"b"}, func(ctx context.Context) error {
			close(firstInFlight)
			<-release
			return nil
		})
	}()

	<-firstInFlight
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	loadsBefore := func() int {
		store.mu.Lock()
		defer store.mu.Unlock()
		return store.loads
	}()

	err := coord.Mutate(ctx, []string{"c"}, func(ctx context.Context) error { return nil })
	require.ErrorIs(t, err, context.DeadlineExceeded)

	store.mu.Lock()
	loadsAfter := store.loads
	store.mu.Unlock()
	assert.Equal(t, loadsBefore, loadsAfter, "a canceled waiter must not touch the store")
}
