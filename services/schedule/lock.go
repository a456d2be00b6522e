package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Locker serializes work per key. Lock blocks until the key is free or ctx is done;
// the returned unlock is safe to call more than once.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// KeyedMutex is an in-process Locker. Entries are dropped once nobody holds or waits on them.
type KeyedMutex struct {
	mu    sync.Mutex
	slots map[string]*keyedSlot
}

type keyedSlot struct {
	ch   chan struct{}
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{slots: make(map[string]*keyedSlot)}
}

func (m *KeyedMutex) Lock(ctx context.Context, key string) (func(), error) {
	m.mu.Lock()
	if m.slots == nil {
		m.slots = make(map[string]*keyedSlot)
	}
	s, ok := m.slots[key]
	if !ok {
		s = &keyedSlot{ch: make(chan struct{}, 1)}
		m.slots[key] = s
	}
	s.refs++
	m.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-s.ch
				m.release(key, s)
			})
		}, nil
	case <-ctx.Done():
		m.release(key, s)
		return nil, fmt.Errorf("acquire lock %s: %w", key, ctx.Err())
	}
}

func (m *KeyedMutex) release(key string, s *keyedSlot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(m.slots, key)
	}
}

// compare-and-delete so an expired holder cannot free a lock someone else now owns
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker is a Locker shared by every instance pointed at the same Redis.
// A holder that dies keeps the key until TTL expires.
type RedisLocker struct {
	Client        *redis.Client
	TTL           time.Duration
	RetryInterval time.Duration
	Prefix        string
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	ttl := l.TTL
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	retry := l.RetryInterval
	if retry <= 0 {
		retry = 25 * time.Millisecond
	}
	prefix := l.Prefix
	if prefix == "" {
		prefix = "lock:"
	}
	fullKey := prefix + key
	token := uuid.New().String()

	for {
		ok, err := l.Client.SetNX(ctx, fullKey, token, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			var once sync.Once
			return func() {
				once.Do(func() { l.release(fullKey, token) })
			}, nil
		}

		timer := time.NewTimer(retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("acquire lock %s: %w", key, ctx.Err())
		case <-timer.C:
		}
	}
}

func (l *RedisLocker) release(fullKey, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := releaseScript.Run(ctx, l.Client, []string{fullKey}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		zap.L().Warn("failed to release lock", zap.String("key", fullKey), zap.Error(err))
	}
}

func vendorLockKey(vendorID string) string {
	return "vendor:" + vendorID
}
