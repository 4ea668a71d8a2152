// Package offline serves data from a local cache.Store or the network,
// depending on an access policy and a per-query strategy.
package offline

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
	json "github.com/goccy/go-json"

	"github.com/adeilh/go-netcall/cache"
	"github.com/adeilh/go-netcall/httpx"
	"github.com/adeilh/go-netcall/safecall"
)

// ErrCacheMiss is returned by CacheOnly queries when nothing is cached.
var ErrCacheMiss = errors.New("offline: cache miss")

// AccessPolicy decides whether a query consults the cache, the network or both.
type AccessPolicy int

const (
	// CacheNone always goes to the network.
	CacheNone AccessPolicy = iota + 1
	// CacheFirst answers from the cache and falls back to the network on a miss.
	CacheFirst
	// CacheOnly answers from the cache and fails with ErrCacheMiss on a miss.
	CacheOnly
)

func (p AccessPolicy) String() string {
	switch p {
	case CacheNone:
		return "cache_none"
	case CacheFirst:
		return "cache_first"
	case CacheOnly:
		return "cache_only"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// QueryStrategy reads and refreshes the local copy of one resource.
type QueryStrategy[T any] interface {
	ReadLocal(ctx context.Context, store cache.Store) (T, bool, error)
	ConsumeRemote(ctx context.Context, data T, store cache.Store) error
}

// Repository fetches T from a JSON endpoint through an httpx.Client.
type Repository[T any] struct {
	client *httpx.Client
	store  cache.Store
	policy AccessPolicy
}

// NewRepository builds a Repository using CacheFirst by default.
func NewRepository[T any](client *httpx.Client, store cache.Store) *Repository[T] {
	return &Repository[T]{client: client, store: store, policy: CacheFirst}
}

// WithDefaultPolicy changes the policy used by Get.
func (r *Repository[T]) WithDefaultPolicy(p AccessPolicy) *Repository[T] {
	if p >= CacheNone && p <= CacheOnly {
		r.policy = p
	}
	return r
}

// Get runs Query with the repository's default policy.
func (r *Repository[T]) Get(ctx context.Context, path string, strategy QueryStrategy[T], opts ...httpx.RequestOption) (T, error) {
	return r.Query(ctx, r.policy, path, strategy, opts...)
}

// Query resolves path according to policy. A server error surfaces as
// *httpx.ResourceError; a local failure surfaces as its cause.
func (r *Repository[T]) Query(ctx context.Context, policy AccessPolicy, path string, strategy QueryStrategy[T], opts ...httpx.RequestOption) (T, error) {
	var zero T
	if policy != CacheNone {
		data, ok, err := strategy.ReadLocal(ctx, r.store)
		if err != nil {
			return zero, fmt.Errorf("offline: read local %s: %w", path, err)
		}
		if ok {
			return data, nil
		}
		if policy == CacheOnly {
			return zero, ErrCacheMiss
		}
	}
	return r.fetch(ctx, path, strategy, opts...)
}

func (r *Repository[T]) fetch(ctx context.Context, path string, strategy QueryStrategy[T], opts ...httpx.RequestOption) (T, error) {
	var zero T
	res, err := r.client.SafeGet(ctx, path, nil, opts...)
	if err != nil {
		return zero, err
	}

	switch v := res.(type) {
	case safecall.Success[*resty.Response]:
		var data T
		if err := json.Unmarshal(v.Response.Body(), &data); err != nil {
			return zero, fmt.Errorf("offline: decode %s: %w", path, err)
		}
		if err := strategy.ConsumeRemote(ctx, data, r.store); err != nil {
			return zero, fmt.Errorf("offline: store %s: %w", path, err)
		}
		return data, nil
	case safecall.ServerError[*resty.Response]:
		return zero, httpx.NewResourceError(v.Response)
	case safecall.Failure[*resty.Response]:
		return zero, v.Cause
	default:
		return zero, fmt.Errorf("offline: unexpected result %T", res)
	}
}
