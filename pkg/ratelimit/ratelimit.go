// Package ratelimit provides a counting gate that bounds the number of
// concurrent outbound search-provider calls.
package ratelimit

import "context"

// DefaultCapacity is the process-wide bound on concurrent provider calls.
const DefaultCapacity = 5

// Limiter is a fixed-capacity counting semaphore. Acquire blocks until a slot
// frees; Release returns one. Waiters wake in roughly FIFO order via the
// runtime's channel scheduling, which is enough to prevent starvation under
// bounded load.
type Limiter struct {
	slots chan struct{}
}

// New creates a limiter with the given capacity. Non-positive capacities fall
// back to DefaultCapacity.
func New(capacity int) *Limiter {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Limiter{slots: make(chan struct{}, capacity)}
}

// Acquire claims a slot, blocking until one is free or ctx is done.
func (l *Limiter) Acquire(ctx context.Context) error {
	select {
	case l.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a slot. It must be called exactly once per successful
// Acquire, including when the guarded call fails.
func (l *Limiter) Release() {
	select {
	case <-l.slots:
	default:
		// Release without a matching Acquire is a programming error; do not block.
	}
}

// Capacity returns the slot count.
func (l *Limiter) Capacity() int { return cap(l.slots) }

// InUse returns the number of currently held slots.
func (l *Limiter) InUse() int { return len(l.slots) }
