// Package optimistic implements the snapshot/apply/commit-or-rollback
// pattern for speculative local mutations ahead of server confirmation.
package optimistic

import (
	"context"
	"sync"

	errs "fintrack/pkg/errors"
	"fintrack/pkg/logger"
)

// State is the lifecycle of the most recent mutation.
type State string

const (
	StateIdle       State = "idle"
	StatePending    State = "pending"
	StateCommitted  State = "committed"
	StateRolledBack State = "rolled_back"
)

// StateStore reads and writes the locally cached state a mutation
// speculates on, and invalidates it after commit so the next read
// reconciles with the server's authoritative version.
type StateStore[T any] interface {
	Load(ctx context.Context) (T, error)
	Save(ctx context.Context, value T) error
	Invalidate(ctx context.Context) error
}

// snapshot holds the prior state captured for one in-flight mutation. It
// exists exactly while that mutation is Pending, so "pending with no
// snapshot" cannot be represented.
type snapshot[T any] struct {
	prior T
}

// Coordinator serializes speculative mutations of one resource. A second
// Mutate while one is Pending blocks until the first resolves; snapshots
// never stack.
type Coordinator[T any] struct {
	store  StateStore[T]
	logger logger.Logger

	// sem has capacity 1: at most one Pending mutation per resource.
	sem chan struct{}

	mu       sync.Mutex
	last     State
	inflight *snapshot[T]
}

func NewCoordinator[T any](store StateStore[T], log logger.Logger) *Coordinator[T] {
	return &Coordinator[T]{
		store:  store,
		logger: log,
		sem:    make(chan struct{}, 1),
		last:   StateIdle,
	}
}

// State reports the resolution of the most recent mutation.
func (c *Coordinator[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Pending reports whether a mutation is currently in flight, i.e. a
// snapshot is being held.
func (c *Coordinator[T]) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight != nil
}

// Mutate captures a snapshot, writes next to local state immediately (so
// the UI reflects it before the network confirms), then issues send. On
// success the snapshot is discarded and the cached state invalidated; on
// failure the snapshot is restored verbatim and the send error returned
// once. Local state is never left partially applied.
func (c *Coordinator[T]) Mutate(ctx context.Context, next T, send func(ctx context.Context) error) error {
	select {
	case c.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-c.sem }()

	prior, err := c.store.Load(ctx)
	if err != nil {
		return errs.Wrap(err, "failed to capture snapshot")
	}

	c.transition(StatePending, &snapshot[T]{prior: prior})

	if err := c.store.Save(ctx, next); err != nil {
		c.transition(StateIdle, nil)
		return errs.Wrap(err, "failed to apply speculative state")
	}

	if err := send(ctx); err != nil {
		// Restore even when the surrounding context is already torn down;
		// a canceled ctx must not strand the speculative state.
		if rbErr := c.store.Save(context.WithoutCancel(ctx), prior); rbErr != nil {
			c.logger.Error("Rollback write failed, local state may be stale", map[string]interface{}{
				"error": rbErr.Error(),
			})
		}
		c.transition(StateRolledBack, nil)
		return err
	}

	if err := c.store.Invalidate(ctx); err != nil {
		c.logger.Warn("Post-commit invalidation failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	c.transition(StateCommitted, nil)
	return nil
}

func (c *Coordinator[T]) transition(next State, snap *snapshot[T]) {
	c.mu.Lock()
	c.last = next
	c.inflight = snap
	c.mu.Unlock()
}
