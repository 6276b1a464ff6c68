package core

// limiter.go bounds how many uploads are decoded at once.
//
// Decoding materializes a whole sheet in memory, so the loader takes a slot
// before reading a file. When every slot is taken a caller waits up to maxWait
// and then fails with ErrTooManyUploads.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyUploads is returned when no slot frees up within the wait time.
var ErrTooManyUploads = errors.New("too many concurrent uploads, please try again later")

const (
	DefaultMaxConcurrentUploads = 5
	DefaultMaxWaitTime          = 30 * time.Second
)

// SlotLimiter is a counting semaphore with drain support.
type SlotLimiter struct {
	slots   chan struct{}
	maxWait time.Duration

	mu      sync.Mutex
	active  int
	drained chan struct{} // closed and replaced whenever active drops to zero
}

// NewSlotLimiter allows maxConcurrent holders; non-positive arguments use the defaults.
func NewSlotLimiter(maxConcurrent int, maxWait time.Duration) *SlotLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentUploads
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &SlotLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
		drained: make(chan struct{}),
	}
}

// Acquire takes a slot, waiting at most the configured time.
// Every successful Acquire must be paired with Release.
func (l *SlotLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.inc()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManyUploads
	}
}

// Release returns a slot taken by Acquire.
func (l *SlotLimiter) Release() {
	l.mu.Lock()
	l.active--
	if l.active == 0 {
		close(l.drained)
		l.drained = make(chan struct{})
	}
	l.mu.Unlock()

	<-l.slots
}

func (l *SlotLimiter) inc() {
	l.mu.Lock()
	l.active++
	l.mu.Unlock()
}

// Active returns the number of held slots.
func (l *SlotLimiter) Active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// Capacity returns the maximum number of holders.
func (l *SlotLimiter) Capacity() int {
	return cap(l.slots)
}

// Available returns the number of free slots.
func (l *SlotLimiter) Available() int {
	return cap(l.slots) - len(l.slots)
}

// WaitForDrain blocks until no slot is held or ctx ends.
func (l *SlotLimiter) WaitForDrain(ctx context.Context) error {
	l.mu.Lock()
	if l.active == 0 {
		l.mu.Unlock()
		return nil
	}
	drained := l.drained
	l.mu.Unlock()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LimiterStatus is a point-in-time view of a SlotLimiter.
type LimiterStatus struct {
	Active    int `json:"active"`
	Available int `json:"available"`
	Capacity  int `json:"capacity"`
}

// Status returns the limiter state for health reporting.
func (l *SlotLimiter) Status() LimiterStatus {
	return LimiterStatus{
		Active:    l.Active(),
		Available: l.Available(),
		Capacity:  l.Capacity(),
	}
}
