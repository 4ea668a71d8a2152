package redis

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/adeilh/go-netcall/cache"
)

func newTestStore(t *testing.T, f *fakeServer, opts Options) *Store {
	t.Helper()
	opts.Addr = f.Addr()
	s := NewStore(opts)
	t.Cleanup(s.Close)
	return s
}

func TestStoreRoundTrip(t *testing.T) {
	f := newFakeServer(t, "")
	s := newTestStore(t, f, Options{KeyPrefix: "test:"})
	ctx := context.Background()

	if err := s.Set(ctx, "a", []byte("alpha\r\nbeta"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := s.Get(ctx, "a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "alpha\r\nbeta" {
		t.Fatalf("unexpected value %q", got)
	}
	if keys := f.setKeys(); len(keys) != 1 || keys[0] != "test:a" {
		t.Fatalf("expected prefixed key, got %v", keys)
	}

	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, "a"); !errors.Is(err, cache.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestStoreDefaultPrefix(t *testing.T) {
	f := newFakeServer(t, "")
	s := newTestStore(t, f, Options{})
	if err := s.Set(context.Background(), "k", []byte("v"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if keys := f.setKeys(); len(keys) != 1 || keys[0] != DefaultKeyPrefix+"k" {
		t.Fatalf("expected default prefix, got %v", keys)
	}
}

func TestStoreExpiry(t *testing.T) {
	f := newFakeServer(t, "")
	s := newTestStore(t, f, Options{})
	ctx := context.Background()

	if err := s.Set(ctx, "short", []byte("v"), 20*time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(40 * time.Millisecond)
	if _, err := s.Get(ctx, "short"); !errors.Is(err, cache.ErrNotFound) {
		t.Fatalf("expected expired key, got %v", err)
	}
}

func TestStoreDeleteMissing(t *testing.T) {
	f := newFakeServer(t, "")
	s := newTestStore(t, f, Options{})
	if err := s.Delete(context.Background(), "nope"); !errors.Is(err, cache.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreSetMany(t *testing.T) {
	f := newFakeServer(t, "")
	s := newTestStore(t, f, Options{})
	ctx := context.Background()

	entries := map[string][]byte{"x": []byte("1"), "y": []byte("2"), "z": []byte("3")}
	if err := s.SetMany(ctx, entries, time.Minute); err != nil {
		t.Fatalf("set many: %v", err)
	}
	for k, want := range entries {
		got, err := s.Get(ctx, k)
		if err != nil {
			t.Fatalf("get %s: %v", k, err)
		}
		if string(got) != string(want) {
			t.Fatalf("key %s: expected %q, got %q", k, want, got)
		}
	}
}

func TestStoreAuth(t *testing.T) {
	f := newFakeServer(t, "secret")

	s := newTestStore(t, f, Options{Password: "secret", DB: 2})
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("ping with password: %v", err)
	}

	bad := newTestStore(t, f, Options{Password: "wrong"})
	err := bad.Ping(context.Background())
	var serr ServerError
	if !errors.As(err, &serr) || !strings.HasPrefix(string(serr), "WRONGPASS") {
		t.Fatalf("expected WRONGPASS, got %v", err)
	}
}

func TestStoreCanceledContext(t *testing.T) {
	f := newFakeServer(t, "")
	s := newTestStore(t, f, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Get(ctx, "k"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestStoreWithDial(t *testing.T) {
	f := newFakeServer(t, "")
	dials := 0
	s := NewStore(Options{Addr: "unused:1"}).WithDial(func(ctx context.Context, _ Options) (net.Conn, error) {
		dials++
		var d net.Dialer
		return d.DialContext(ctx, "tcp", f.Addr())
	})
	defer s.Close()

	for range 3 {
		if err := s.Ping(context.Background()); err != nil {
			t.Fatalf("ping: %v", err)
		}
	}
	if dials != 1 {
		t.Fatalf("expected pooled connection reuse, dialed %d times", dials)
	}
}

func TestReadReply(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("*3\r\n:7\r\n$-1\r\n+OK\r\n"))
	reply, err := readReply(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	items, ok := reply.([]any)
	if !ok || len(items) != 3 {
		t.Fatalf("unexpected reply %#v", reply)
	}
	if items[0] != int64(7) || items[1] != nil || items[2] != "OK" {
		t.Fatalf("unexpected items %#v", items)
	}

	if _, err := readReply(bufio.NewReader(strings.NewReader("?x\r\n"))); err == nil {
		t.Fatal("expected error for unknown reply type")
	}
}
