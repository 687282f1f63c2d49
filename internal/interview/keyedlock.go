package interview

import (
	"context"
	"sync"
)

// keyedLock serializes work per key. Waiters on the same key are served
// in the order they called Lock; distinct keys never contend beyond the
// short table mutex.
type keyedLock struct {
	mu      sync.Mutex
	entries map[int64]*lockEntry
}

type lockEntry struct {
	waiters []chan struct{}
}

func newKeyedLock() *keyedLock {
	return &keyedLock{entries: make(map[int64]*lockEntry)}
}

// Lock blocks until key is held or ctx is done. The returned func releases it.
func (l *keyedLock) Lock(ctx context.Context, key int64) (func(), error) {
	l.mu.Lock()
	e, held := l.entries[key]
	if !held {
		l.entries[key] = &lockEntry{}
		l.mu.Unlock()
		return func() { l.unlock(key) }, nil
	}
	ch := make(chan struct{})
	e.waiters = append(e.waiters, ch)
	l.mu.Unlock()

	select {
	case <-ch:
		return func() { l.unlock(key) }, nil
	case <-ctx.Done():
		l.mu.Lock()
		for i, w := range e.waiters {
			if w == ch {
				e.waiters = append(e.waiters[:i], e.waiters[i+1:]...)
				l.mu.Unlock()
				return nil, ctx.Err()
			}
		}
		l.mu.Unlock()
		// Ownership was handed over while we were giving up; pass it on.
		l.unlock(key)
		return nil, ctx.Err()
	}
}

func (l *keyedLock) unlock(key int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		panic("interview: unlock of unlocked key")
	}
	if len(e.waiters) == 0 {
		delete(l.entries, key)
		return
	}
	next := e.waiters[0]
	e.waiters = e.waiters[1:]
	close(next)
}

func (l *keyedLock) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
