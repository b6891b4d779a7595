package lock

import (
	"context"
	"fmt"
	"sync"
)

// KeyedMutex is the in-process Locker, used with the memory storage driver
// and whenever no redis address is configured.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	sem  chan struct{}
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyLock)}
}

func (m *KeyedMutex) Obtain(ctx context.Context, key string) (Lease, error) {
	m.mu.Lock()
	kl, ok := m.locks[key]
	if !ok {
		kl = &keyLock{sem: make(chan struct{}, 1)}
		m.locks[key] = kl
	}
	kl.refs++
	m.mu.Unlock()

	select {
	case kl.sem <- struct{}{}:
		return &mutexLease{owner: m, key: key, kl: kl}, nil
	case <-ctx.Done():
		m.unref(key, kl)
		return nil, fmt.Errorf("%w: %v", ErrNotObtained, ctx.Err())
	}
}

func (m *KeyedMutex) unref(key string, kl *keyLock) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(m.locks, key)
	}
}

type mutexLease struct {
	owner *KeyedMutex
	key   string
	kl    *keyLock
	once  sync.Once
}

func (l *mutexLease) Release(_ context.Context) error {
	l.once.Do(func() {
		<-l.kl.sem
		l.owner.unref(l.key, l.kl)
	})
	return nil
}
