package pipeline

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Gate bounds the number of in-flight calls against a rate-limited provider.
// It is constructed once per execution context and passed into the Pipeline,
// so per-run concurrency stays configurable and testable.
type Gate struct {
	sem *semaphore.Weighted
}

func NewGate(capacity int) *Gate {
	if capacity <= 0 {
		capacity = 1
	}
	return &Gate{sem: semaphore.NewWeighted(int64(capacity))}
}

// Do runs fn once a slot is available. Acquisition respects ctx cancellation.
func (g *Gate) Do(ctx context.Context, fn func() error) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer g.sem.Release(1)
	return fn()
}
