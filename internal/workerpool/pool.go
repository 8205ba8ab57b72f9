// Package workerpool bounds concurrent outbound collaborator calls.
//
// Every blocking call the pipeline makes (listing fetch, per-photo audit,
// per-photo generation) goes through one shared pool so a single large job
// cannot starve others or overwhelm the upstream services, and the HTTP
// handlers never block on collaborator latency themselves.
package workerpool

import "context"

// Pool is a fixed-capacity slot pool. The capacity counter is the only
// shared state and is managed entirely by the channel semaphore.
type Pool struct {
	slots chan struct{}
}

// New creates a pool with the given number of execution slots.
// Sizes below one are clamped to one.
func New(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{
		slots: make(chan struct{}, size),
	}
}

// Do runs fn in the calling goroutine once a slot is free, returning fn's
// error. It waits for a slot unless ctx is done first.
func (p *Pool) Do(ctx context.Context, fn func() error) error {
	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-p.slots }()

	return fn()
}

// Size returns the pool capacity.
func (p *Pool) Size() int {
	return cap(p.slots)
}
