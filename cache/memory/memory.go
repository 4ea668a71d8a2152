// Package memory provides an in-process cache.Store.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/alphadose/haxmap"

	"github.com/adeilh/go-netcall/cache"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

func (e *entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Store keeps entries in a concurrent map. Expired entries are dropped on
// read. Reads are lock-free; writes and evictions share mu so an eviction
// only removes the exact entry it found expired.
type Store struct {
	entries *haxmap.Map[string, *entry]
	now     func() time.Time
	mu      sync.Mutex
}

// NewStore builds an empty Store.
func NewStore() *Store {
	return &Store{entries: haxmap.New[string, *entry](), now: time.Now}
}

// WithClock overrides the time source (useful for tests).
func (s *Store) WithClock(now func() time.Time) *Store {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e, ok := s.entries.Get(key)
	if !ok {
		return nil, cache.ErrNotFound
	}
	if e.expired(s.now()) {
		s.evict(key, e)
		return nil, cache.ErrNotFound
	}
	return append([]byte(nil), e.value...), nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e := &entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.mu.Lock()
	s.entries.Set(key, e)
	s.mu.Unlock()
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries.Get(key); !ok {
		return cache.ErrNotFound
	}
	s.entries.Del(key)
	return nil
}

func (s *Store) evict(key string, stale *entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.entries.Get(key); ok && cur == stale {
		s.entries.Del(key)
	}
}

// Len reports the number of stored entries, expired ones included.
func (s *Store) Len() int {
	return int(s.entries.Len())
}
