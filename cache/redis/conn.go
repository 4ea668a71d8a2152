package redis

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strconv"
	"time"
)

type dialFunc func(context.Context, Options) (net.Conn, error)

type conn struct {
	nc  net.Conn
	br  *bufio.Reader
	buf []byte
	bad bool
}

// do writes every command, then reads one reply per command.
func (c *conn) do(opts Options, cmds ...[][]byte) ([]any, error) {
	c.buf = c.buf[:0]
	for _, cmd := range cmds {
		c.buf = appendCommand(c.buf, cmd...)
	}
	if err := deadline(c.nc.SetWriteDeadline, opts.WriteTimeout); err != nil {
		c.bad = true
		return nil, err
	}
	if _, err := c.nc.Write(c.buf); err != nil {
		c.bad = true
		return nil, err
	}
	if err := deadline(c.nc.SetReadDeadline, opts.ReadTimeout); err != nil {
		c.bad = true
		return nil, err
	}

	replies := make([]any, len(cmds))
	var firstErr error
	for i := range cmds {
		reply, err := readReply(c.br)
		var serr ServerError
		if err != nil && !errors.As(err, &serr) {
			c.bad = true
			return nil, err
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
		replies[i] = reply
	}
	return replies, firstErr
}

type pool struct {
	opts Options
	dial dialFunc
	idle chan *conn
}

func newPool(opts Options) *pool {
	return &pool{opts: opts, dial: defaultDial, idle: make(chan *conn, opts.PoolSize)}
}

func (p *pool) get(ctx context.Context) (*conn, error) {
	select {
	case c := <-p.idle:
		return c, nil
	default:
	}

	nc, err := p.dial(ctx, p.opts)
	if err != nil {
		return nil, err
	}
	c := &conn{nc: nc, br: bufio.NewReader(nc)}
	if err := p.handshake(c); err != nil {
		_ = nc.Close()
		return nil, err
	}
	return c, nil
}

func (p *pool) put(c *conn) {
	if c.bad {
		_ = c.nc.Close()
		return
	}
	select {
	case p.idle <- c:
	default:
		_ = c.nc.Close()
	}
}

func (p *pool) handshake(c *conn) error {
	var cmds [][][]byte
	if p.opts.Password != "" {
		cmds = append(cmds, [][]byte{[]byte("AUTH"), []byte(p.opts.Password)})
	}
	if p.opts.DB > 0 {
		cmds = append(cmds, [][]byte{[]byte("SELECT"), []byte(strconv.Itoa(p.opts.DB))})
	}
	if len(cmds) == 0 {
		return nil
	}
	_, err := c.do(p.opts, cmds...)
	return err
}

func (p *pool) close() {
	for {
		select {
		case c := <-p.idle:
			_ = c.nc.Close()
		default:
			return
		}
	}
}

func defaultDial(ctx context.Context, opts Options) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: opts.DialTimeout}
	return dialer.DialContext(ctx, "tcp", opts.Addr)
}

func deadline(set func(time.Time) error, timeout time.Duration) error {
	if timeout <= 0 {
		return nil
	}
	return set(time.Now().Add(timeout))
}
