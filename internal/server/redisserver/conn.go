package redisserver

import (
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/yndnr/minikv/pkg/resp"
)

const (
	// readChunkSize is the size of a single transport read.
	readChunkSize = 4 * 1024

	// maxRequestSize bounds the bytes buffered for one incomplete request.
	maxRequestSize = resp.MaxBulkLen + 64*1024
)

// ErrRequestTooLarge reports a request that outgrew maxRequestSize before
// it could be decoded. It wraps resp.ErrProtocol.
var ErrRequestTooLarge = fmt.Errorf("%w: request too large", resp.ErrProtocol)

// Conn represents a single client connection.
type Conn struct {
	netConn net.Conn
	id      string

	// buf holds received bytes not yet consumed by the decoder.
	buf   []byte
	chunk []byte
	out   []byte

	limiter *rate.Limiter
	closed  atomic.Bool
}

// newConn wraps c. rateLimit is the number of commands per second the
// connection may issue; 0 disables limiting.
func newConn(c net.Conn, rateLimit int) *Conn {
	conn := &Conn{
		netConn: c,
		id:      ulid.Make().String(),
		chunk:   make([]byte, readChunkSize),
	}
	if rateLimit > 0 {
		conn.limiter = rate.NewLimiter(rate.Limit(rateLimit), rateLimit)
	}
	return conn
}

// ID returns the connection ID.
func (c *Conn) ID() string {
	return c.id
}

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.netConn.RemoteAddr()
}

// Close closes the transport. It is safe to call more than once.
func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.netConn.Close()
}

// Buffered returns the number of received bytes not yet decoded.
func (c *Conn) Buffered() int {
	return len(c.buf)
}

// next decodes the next buffered message and drops its bytes from the
// buffer. It returns resp.ErrIncomplete when more bytes are needed.
func (c *Conn) next() (resp.Value, error) {
	if len(c.buf) == 0 {
		return resp.Value{}, resp.ErrIncomplete
	}
	v, n, err := resp.Decode(c.buf)
	if err != nil {
		if errors.Is(err, resp.ErrIncomplete) && len(c.buf) > maxRequestSize {
			return resp.Value{}, ErrRequestTooLarge
		}
		return resp.Value{}, err
	}
	c.buf = append(c.buf[:0], c.buf[n:]...)
	return v, nil
}

// fill performs one read with the given deadline and appends the bytes to
// the buffer.
func (c *Conn) fill(timeout time.Duration) (int, error) {
	if err := c.netConn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return 0, err
	}
	n, err := c.netConn.Read(c.chunk)
	c.buf = append(c.buf, c.chunk[:n]...)
	return n, err
}

// write encodes v and writes it with the given deadline.
func (c *Conn) write(v resp.Value, timeout time.Duration) error {
	out, err := resp.AppendEncode(c.out[:0], v)
	if err != nil {
		return err
	}
	c.out = out
	if err := c.netConn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}
	_, err = c.netConn.Write(c.out)
	return err
}

// allow reports whether the rate limiter admits one more command.
func (c *Conn) allow() bool {
	return c.limiter == nil || c.limiter.Allow()
}
