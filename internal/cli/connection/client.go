package connection

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/yndnr/minikv/pkg/resp"
)

// DefaultTimeout bounds dialing and each round trip.
const DefaultTimeout = 5 * time.Second

// ErrClosed is returned by Do after Close.
var ErrClosed = errors.New("connection closed")

// ServerError is an error reply from the server.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return e.Message
}

// Client is a single RESP connection. It is not safe for concurrent use.
type Client struct {
	addr    string
	timeout time.Duration
	conn    net.Conn
	buf     []byte
	chunk   []byte
}

// Dial connects to addr. A non-positive timeout means DefaultTimeout.
func Dial(ctx context.Context, addr string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	return newClient(conn, addr, timeout), nil
}

func newClient(conn net.Conn, addr string, timeout time.Duration) *Client {
	return &Client{
		addr:    addr,
		timeout: timeout,
		conn:    conn,
		chunk:   make([]byte, 4096),
	}
}

// Addr returns the server address.
func (c *Client) Addr() string {
	return c.addr
}

// Close closes the connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// Do sends one command and waits for its reply. Error replies are
// returned as a *ServerError alongside the decoded value.
func (c *Client) Do(ctx context.Context, args ...string) (resp.Value, error) {
	if c.conn == nil {
		return resp.Value{}, ErrClosed
	}
	if len(args) == 0 {
		return resp.Value{}, errors.New("empty command")
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return resp.Value{}, err
	}

	if _, err := c.conn.Write(resp.EncodeCommand(args...)); err != nil {
		return resp.Value{}, fmt.Errorf("send %s: %w", args[0], err)
	}

	v, err := c.readReply()
	if err != nil {
		return resp.Value{}, err
	}
	if v.Kind == resp.KindError {
		return v, &ServerError{Message: v.Str}
	}
	return v, nil
}

func (c *Client) readReply() (resp.Value, error) {
	for {
		v, n, err := resp.DecodeReply(c.buf)
		if err == nil {
			c.buf = append(c.buf[:0], c.buf[n:]...)
			return v, nil
		}
		if !errors.Is(err, resp.ErrIncomplete) {
			return resp.Value{}, fmt.Errorf("read reply: %w", err)
		}

		n, err = c.conn.Read(c.chunk)
		c.buf = append(c.buf, c.chunk[:n]...)
		if err != nil && n == 0 {
			return resp.Value{}, fmt.Errorf("read reply: %w", err)
		}
	}
}
