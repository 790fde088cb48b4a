package numbering

import (
	"context"
	"sync"
)

// Counter is an atomic increment-and-fetch keyed by scope. The first call for a scope returns 1.
type Counter interface {
	NextSequence(ctx context.Context, scope string) (int64, error)
}

// CounterFunc adapts a function to Counter.
type CounterFunc func(ctx context.Context, scope string) (int64, error)

func (f CounterFunc) NextSequence(ctx context.Context, scope string) (int64, error) {
	return f(ctx, scope)
}

// LocalCounter serializes allocation inside one process. It is only correct when no other
// process writes documents to the same record store.
type LocalCounter struct {
	mu   sync.Mutex
	last map[string]int64
}

func NewLocalCounter() *LocalCounter {
	return &LocalCounter{last: make(map[string]int64)}
}

// Seed sets a scope's last issued value, e.g. from the highest number already stored.
func (c *LocalCounter) Seed(scope string, last int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if last > c.last[scope] {
		c.last[scope] = last
	}
}

func (c *LocalCounter) NextSequence(ctx context.Context, scope string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last[scope]++
	return c.last[scope], nil
}
