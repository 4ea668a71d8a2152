// Package redis implements cache.Store over the Redis wire protocol without
// a client library dependency.
package redis

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/adeilh/go-netcall/cache"
)

// Store implements cache.Store on a pooled set of Redis connections. Keys
// are namespaced with Options.KeyPrefix.
type Store struct {
	opts Options
	pool *pool
}

var _ cache.Store = (*Store)(nil)

// NewStore builds a Redis-backed cache store. Connections are dialed lazily.
func NewStore(opts Options) *Store {
	cfg := opts.withDefaults()
	return &Store{opts: cfg, pool: newPool(cfg)}
}

// WithDial allows overriding the dialer (useful for tests).
func (s *Store) WithDial(fn func(context.Context, Options) (net.Conn, error)) *Store {
	if fn != nil {
		s.pool.dial = fn
	}
	return s
}

// Close drops idle connections.
func (s *Store) Close() { s.pool.close() }

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	reply, err := s.exec(ctx, []byte("GET"), s.key(key))
	if err != nil {
		return nil, err
	}
	switch v := reply.(type) {
	case nil:
		return nil, cache.ErrNotFound
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("redis: unexpected GET reply %T", reply)
	}
}

func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	reply, err := s.exec(ctx, setCommand(s.key(key), value, ttl)...)
	if err != nil {
		return err
	}
	return expectOK("SET", reply)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	reply, err := s.exec(ctx, []byte("DEL"), s.key(key))
	if err != nil {
		return err
	}
	n, ok := reply.(int64)
	if !ok {
		return fmt.Errorf("redis: unexpected DEL reply %T", reply)
	}
	if n == 0 {
		return cache.ErrNotFound
	}
	return nil
}

// SetMany writes all entries in one round trip.
func (s *Store) SetMany(ctx context.Context, entries map[string][]byte, ttl time.Duration) error {
	if len(entries) == 0 {
		return nil
	}
	cmds := make([][][]byte, 0, len(entries))
	for k, v := range entries {
		cmds = append(cmds, setCommand(s.key(k), v, ttl))
	}
	replies, err := s.pipeline(ctx, cmds...)
	if err != nil {
		return err
	}
	for _, reply := range replies {
		if err := expectOK("SET", reply); err != nil {
			return err
		}
	}
	return nil
}

// Ping checks that the server answers.
func (s *Store) Ping(ctx context.Context) error {
	reply, err := s.exec(ctx, []byte("PING"))
	if err != nil {
		return err
	}
	if reply != "PONG" {
		return fmt.Errorf("redis: unexpected PING reply %v", reply)
	}
	return nil
}

func (s *Store) key(k string) []byte {
	return []byte(s.opts.KeyPrefix + k)
}

func (s *Store) exec(ctx context.Context, args ...[]byte) (any, error) {
	replies, err := s.pipeline(ctx, args)
	if err != nil {
		return nil, err
	}
	return replies[0], nil
}

func (s *Store) pipeline(ctx context.Context, cmds ...[][]byte) ([]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, err := s.pool.get(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.put(c)
	return c.do(s.opts, cmds...)
}

func setCommand(key, value []byte, ttl time.Duration) [][]byte {
	cmd := [][]byte{[]byte("SET"), key, value}
	if ttl > 0 {
		ms := ttl.Milliseconds()
		if ms == 0 {
			ms = 1
		}
		cmd = append(cmd, []byte("PX"), []byte(strconv.FormatInt(ms, 10)))
	}
	return cmd
}

func expectOK(op string, reply any) error {
	if reply == "OK" {
		return nil
	}
	return fmt.Errorf("redis: %s failed: %v", op, reply)
}
