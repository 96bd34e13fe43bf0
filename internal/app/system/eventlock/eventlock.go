// internal/app/system/eventlock/eventlock.go

// Package eventlock serializes roster mutations per event.
//
// Join and cancel both read signup state and then write it (count-then-insert,
// delete-then-promote). Two concurrent requests interleaving those steps can
// overfill an event or promote the same waitlisted member twice, so every
// mutation for an event runs under that event's lock. Locks are keyed by
// event id: operations on different events never contend.
//
// Acquisition waits are bounded. A caller that cannot get the lock in time
// receives ErrBusy and should retry the whole operation rather than reuse
// anything it read before.
package eventlock

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrBusy means the per-event lock could not be acquired within the wait
// budget. The operation was not started; retrying it is safe.
var ErrBusy = errors.New("event is busy; retry")

// DefaultWait is the lock acquisition budget used when Configure is not
// called. Roster operations are a handful of Mongo round-trips, so anything
// holding a lock longer than this is already in trouble.
const DefaultWait = 5 * time.Second

// Locker hands out one mutex per event id. The zero value is not usable;
// call New.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*entry
	wait  time.Duration
}

type entry struct {
	ch   chan struct{} // capacity 1; holding the token = holding the lock
	refs int
}

// New creates a Locker with the given acquisition wait budget.
// wait <= 0 falls back to DefaultWait.
func New(wait time.Duration) *Locker {
	if wait <= 0 {
		wait = DefaultWait
	}
	return &Locker{locks: make(map[string]*entry), wait: wait}
}

// Acquire takes the lock for key, waiting up to the configured budget or
// until ctx is done. On success it returns a release function; the caller
// must invoke it exactly once. On timeout it returns ErrBusy.
func (l *Locker) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		e.ch <- struct{}{}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case <-e.ch:
		return func() { l.release(key, e) }, nil
	case <-ctx.Done():
		l.unref(key, e)
		return nil, ctx.Err()
	case <-timer.C:
		l.unref(key, e)
		return nil, ErrBusy
	}
}

func (l *Locker) release(key string, e *entry) {
	e.ch <- struct{}{}
	l.unref(key, e)
}

// unref drops a reference and evicts the map entry once nobody holds or
// waits on it, so idle events do not accumulate locks forever.
func (l *Locker) unref(key string, e *entry) {
	l.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
	l.mu.Unlock()
}
