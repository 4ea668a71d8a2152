package redis

import (
	"bufio"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeServer speaks enough RESP to exercise Store without a real Redis.
type fakeServer struct {
	ln       net.Listener
	password string

	mu      sync.Mutex
	data    map[string]fakeEntry
	keysSet []string
}

type fakeEntry struct {
	value     []byte
	expiresAt time.Time
}

func newFakeServer(t *testing.T, password string) *fakeServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	f := &fakeServer{ln: ln, password: password, data: make(map[string]fakeEntry)}
	go f.serve()
	t.Cleanup(func() { _ = ln.Close() })
	return f
}

func (f *fakeServer) Addr() string { return f.ln.Addr().String() }

func (f *fakeServer) setKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.keysSet...)
}

func (f *fakeServer) serve() {
	for {
		conn, err := f.ln.Accept()
		if err != nil {
			return
		}
		go f.handle(conn)
	}
}

func (f *fakeServer) handle(conn net.Conn) {
	defer conn.Close()
	reader := bufio.NewReader(conn)
	authed := f.password == ""
	for {
		raw, err := readReply(reader)
		if err != nil {
			return
		}
		parts, ok := raw.([]any)
		if !ok || len(parts) == 0 {
			return
		}
		args := make([]string, len(parts))
		for i, p := range parts {
			b, _ := p.([]byte)
			args[i] = string(b)
		}
		cmd := strings.ToUpper(args[0])
		if cmd == "AUTH" {
			if len(args) == 2 && args[1] == f.password {
				authed = true
				fmt.Fprint(conn, "+OK\r\n")
			} else {
				fmt.Fprint(conn, "-WRONGPASS invalid password\r\n")
			}
			continue
		}
		if !authed {
			fmt.Fprint(conn, "-NOAUTH Authentication required\r\n")
			continue
		}
		_, _ = conn.Write(f.exec(cmd, args[1:]))
	}
}

func (f *fakeServer) exec(cmd string, args []string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch cmd {
	case "PING":
		return []byte("+PONG\r\n")
	case "SELECT":
		return []byte("+OK\r\n")
	case "SET":
		e := fakeEntry{value: []byte(args[1])}
		if len(args) == 4 && strings.EqualFold(args[2], "PX") {
			ms, _ := strconv.ParseInt(args[3], 10, 64)
			e.expiresAt = time.Now().Add(time.Duration(ms) * time.Millisecond)
		}
		f.data[args[0]] = e
		f.keysSet = append(f.keysSet, args[0])
		return []byte("+OK\r\n")
	case "GET":
		return bulk(f.lookup(args[0]))
	case "DEL":
		n := 0
		for _, k := range args {
			if _, ok := f.lookup(k); ok {
				n++
			}
			delete(f.data, k)
		}
		return []byte(fmt.Sprintf(":%d\r\n", n))
	default:
		return []byte("-ERR unknown command '" + cmd + "'\r\n")
	}
}

func (f *fakeServer) lookup(key string) ([]byte, bool) {
	e, ok := f.data[key]
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		delete(f.data, key)
		return nil, false
	}
	return e.value, true
}

func bulk(v []byte, ok bool) []byte {
	if !ok {
		return []byte("$-1\r\n")
	}
	return []byte(fmt.Sprintf("$%d\r\n%s\r\n", len(v), v))
}
