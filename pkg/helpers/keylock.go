package helpers

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Locker is implemented by KeyedMutex and RedisLocker.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// KeyedMutex serializes work per key inside one process.
// Entries are dropped once no holder or waiter remains.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyEntry
}

type keyEntry struct {
	ch   chan struct{}
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyEntry)}
}

// Lock blocks until key is free or ctx is done. The returned func releases it.
func (k *KeyedMutex) Lock(ctx context.Context, key string) (func(), error) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &keyEntry{ch: make(chan struct{}, 1)}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		k.release(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			k.release(key, e)
		})
	}, nil
}

func (k *KeyedMutex) release(key string, e *keyEntry) {
	k.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()
}

// Len returns the number of keys currently tracked.
func (k *KeyedMutex) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}

// FallbackLocker takes Primary and drops to Fallback when Primary fails for a
// reason other than ctx ending, e.g. Redis unreachable. While degraded, keys are
// only serialized within this process.
type FallbackLocker struct {
	Primary  Locker
	Fallback Locker
	Logger   *logrus.Logger
}

func NewFallbackLocker(primary, fallback Locker, logger *logrus.Logger) *FallbackLocker {
	if fallback == nil {
		fallback = NewKeyedMutex()
	}
	return &FallbackLocker{Primary: primary, Fallback: fallback, Logger: logger}
}

func (f *FallbackLocker) Lock(ctx context.Context, key string) (func(), error) {
	unlock, err := f.Primary.Lock(ctx, key)
	if err == nil {
		return unlock, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}
	if f.Logger != nil {
		f.Logger.WithError(err).WithField("key", key).Warn("distributed lock unavailable; using in-process lock")
	}
	return f.Fallback.Lock(ctx, key)
}
