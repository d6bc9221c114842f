package booking

import (
	"context"
	"sync"
)

// Locker serializes the read-modify-write critical section for one slot id.
// Reservation and release go through it so that two near-simultaneous
// bookings can never both observe the same free capacity. The in-process
// implementation below covers single-instance deployments; the Redis
// locker in internal/redis covers multi-instance ones.
type Locker interface {
	WithSlotLock(ctx context.Context, slotID string, fn func(ctx context.Context) error) error
}

type mutexLocker struct {
	mu    sync.Mutex
	slots map[string]*slotMutex
}

type slotMutex struct {
	sync.Mutex
	refs int
}

// NewMutexLocker returns an in-process Locker keyed by slot id. Unused
// entries are dropped once their last holder leaves.
func NewMutexLocker() Locker {
	return &mutexLocker{slots: make(map[string]*slotMutex)}
}

func (l *mutexLocker) WithSlotLock(ctx context.Context, slotID string, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	sm, ok := l.slots[slotID]
	if !ok {
		sm = &slotMutex{}
		l.slots[slotID] = sm
	}
	sm.refs++
	l.mu.Unlock()

	sm.Lock()
	defer func() {
		sm.Unlock()
		l.mu.Lock()
		sm.refs--
		if sm.refs == 0 {
			delete(l.slots, slotID)
		}
		l.mu.Unlock()
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}
