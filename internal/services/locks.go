package services

import (
	"context"
	"sync"
)

// Locker hands out non-blocking per-key locks. ok is false when the key is
// already held.
type Locker interface {
	TryLock(ctx context.Context, key string) (release func(), ok bool, err error)
}

type memoryLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewMemoryLocker() Locker {
	return &memoryLocker{held: map[string]struct{}{}}
}

func (l *memoryLocker) TryLock(_ context.Context, key string) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.held[key]; busy {
		return nil, false, nil
	}
	l.held[key] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, true, nil
}
