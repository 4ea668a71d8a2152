package offline

import (
	"context"
	"errors"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"github.com/adeilh/go-netcall/cache"
)

// DefaultRefreshDelta is how long a TimeResolveStrategy trusts its local copy.
const DefaultRefreshDelta = time.Hour

// KeyStrategy keeps the resource as JSON under a single key.
type KeyStrategy[T any] struct {
	Key string
	TTL time.Duration
}

func (s KeyStrategy[T]) ReadLocal(ctx context.Context, store cache.Store) (T, bool, error) {
	var data T
	raw, err := store.Get(ctx, s.Key)
	if errors.Is(err, cache.ErrNotFound) {
		return data, false, nil
	}
	if err != nil {
		return data, false, err
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return data, false, err
	}
	return data, true, nil
}

func (s KeyStrategy[T]) ConsumeRemote(ctx context.Context, data T, store cache.Store) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return store.Set(ctx, s.Key, raw, s.TTL)
}

// Invalidate drops the cached copy. A missing entry is not an error.
func (s KeyStrategy[T]) Invalidate(ctx context.Context, store cache.Store) error {
	if err := store.Delete(ctx, s.Key); err != nil && !errors.Is(err, cache.ErrNotFound) {
		return err
	}
	return nil
}

// TimeResolveStrategy trusts the local copy for RefreshDelta after the last
// remote refresh, then invalidates it so the next query goes to the network.
// The refresh clock starts when the strategy is created.
type TimeResolveStrategy[T any] struct {
	local        KeyStrategy[T]
	refreshDelta time.Duration
	now          func() time.Time

	mu          sync.Mutex
	lastRefresh time.Time
}

// NewTimeResolveStrategy builds a strategy for key. A non-positive delta uses DefaultRefreshDelta.
func NewTimeResolveStrategy[T any](key string, refreshDelta time.Duration) *TimeResolveStrategy[T] {
	return newTimeResolveStrategy[T](key, refreshDelta, time.Now)
}

func newTimeResolveStrategy[T any](key string, refreshDelta time.Duration, now func() time.Time) *TimeResolveStrategy[T] {
	if refreshDelta <= 0 {
		refreshDelta = DefaultRefreshDelta
	}
	return &TimeResolveStrategy[T]{
		local:        KeyStrategy[T]{Key: key},
		refreshDelta: refreshDelta,
		now:          now,
		lastRefresh:  now(),
	}
}

// WithTTL sets the store TTL used when the local copy is written.
func (s *TimeResolveStrategy[T]) WithTTL(ttl time.Duration) *TimeResolveStrategy[T] {
	s.local.TTL = ttl
	return s
}

func (s *TimeResolveStrategy[T]) ReadLocal(ctx context.Context, store cache.Store) (T, bool, error) {
	if s.stale() {
		var zero T
		return zero, false, s.local.Invalidate(ctx, store)
	}
	return s.local.ReadLocal(ctx, store)
}

func (s *TimeResolveStrategy[T]) ConsumeRemote(ctx context.Context, data T, store cache.Store) error {
	s.mu.Lock()
	s.lastRefresh = s.now()
	s.mu.Unlock()
	return s.local.ConsumeRemote(ctx, data, store)
}

func (s *TimeResolveStrategy[T]) stale() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now().Sub(s.lastRefresh) >= s.refreshDelta
}
