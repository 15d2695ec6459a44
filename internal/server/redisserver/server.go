package redisserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yndnr/minikv/internal/storage/memory"
	"github.com/yndnr/minikv/internal/telemetry/logger"
	"github.com/yndnr/minikv/internal/telemetry/metric"
	"github.com/yndnr/minikv/pkg/resp"
)

// Default timeouts, used when the corresponding Config field is zero.
const (
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 30 * time.Second
	DefaultIdleTimeout  = 5 * time.Minute
)

// ErrServerRunning is returned by Start on a server that is already running.
var ErrServerRunning = errors.New("redis server already running")

// Config holds the RESP server configuration.
type Config struct {
	// Addr is the TCP listen address.
	Addr string
	// ReadTimeout bounds the time to receive the rest of a started request.
	ReadTimeout time.Duration
	// WriteTimeout bounds the time to write one reply.
	WriteTimeout time.Duration
	// IdleTimeout bounds the wait for the first byte of the next request.
	IdleTimeout time.Duration
	// RateLimit is the maximum number of commands per second per
	// connection. 0 disables rate limiting.
	RateLimit int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:         "127.0.0.1:6379",
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
		IdleTimeout:  DefaultIdleTimeout,
	}
}

func (c *Config) timeouts() (read, write, idle time.Duration) {
	read, write, idle = c.ReadTimeout, c.WriteTimeout, c.IdleTimeout
	if read <= 0 {
		read = DefaultReadTimeout
	}
	if write <= 0 {
		write = DefaultWriteTimeout
	}
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	return read, write, idle
}

// Server accepts RESP connections and serves them from a shared store.
type Server struct {
	cfg     *Config
	handler *CommandHandler
	metrics *metric.Registry
	logger  logger.Logger

	running atomic.Bool
	wg      sync.WaitGroup

	mu    sync.Mutex
	ln    net.Listener
	conns map[*Conn]struct{}
}

// New creates a RESP server. A nil cfg uses DefaultConfig, a nil metrics
// registry uses metric.Global and a nil logger discards output.
func New(cfg *Config, store *memory.Store, metrics *metric.Registry, l logger.Logger) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if metrics == nil {
		metrics = metric.Global()
	}
	if l == nil {
		l = logger.Nop()
	}

	return &Server{
		cfg:     cfg,
		handler: NewCommandHandler(store, metrics, l),
		metrics: metrics,
		logger:  l,
		conns:   make(map[*Conn]struct{}),
	}
}

// Start binds the listen address and serves connections in the
// background. Cancelling ctx stops accepting new connections.
func (s *Server) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrServerRunning
	}

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		s.running.Store(false)
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	s.logger.Info("redis server listening", "address", ln.Addr().String())

	context.AfterFunc(ctx, func() {
		_ = ln.Close()
	})

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.acceptLoop(ctx, ln); err != nil {
			s.logger.Error("redis accept loop failed", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound listen address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Shutdown stops accepting connections, closes every open connection and
// waits for their goroutines to exit or for ctx to end.
func (s *Server) Shutdown(ctx context.Context) error {
	s.running.Store(false)

	s.mu.Lock()
	var firstErr error
	if s.ln != nil {
		if err := s.ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			firstErr = err
		}
	}
	for c := range s.conns {
		_ = c.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.logger.Info("redis server stopped")
	return firstErr
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	for {
		nc, err := ln.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				s.logger.Warn("accept timeout", "error", err)
				continue
			}
			return err
		}

		c := newConn(nc, s.cfg.RateLimit)
		if !s.track(c) {
			_ = c.Close()
			return nil
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(ctx, c)
		}()
	}
}

func (s *Server) track(c *Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running.Load() {
		return false
	}
	s.conns[c] = struct{}{}
	return true
}

func (s *Server) untrack(c *Conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
}

// serveConn runs the read, decode, dispatch and write cycle for one
// connection until the peer closes it, a transport error occurs, or a
// protocol error is reported back to the peer.
func (s *Server) serveConn(ctx context.Context, c *Conn) {
	ctx = logger.WithConnID(logger.WithLogger(ctx, s.logger), c.ID())
	log := logger.L(ctx).With("remote", remoteString(c))

	s.metrics.ConnOpened()
	defer s.metrics.ConnClosed()
	defer s.untrack(c)
	defer c.Close()

	defer func() {
		if r := recover(); r != nil {
			log.Error("panic serving connection",
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
		}
	}()

	log.Debug("connection opened")
	defer log.Debug("connection closed")

	readTimeout, writeTimeout, idleTimeout := s.cfg.timeouts()

	for {
		// Dispatch every complete request already buffered.
		for {
			req, err := c.next()
			if errors.Is(err, resp.ErrIncomplete) {
				break
			}
			if err != nil {
				s.metrics.ProtocolErrors.Inc()
				log.Warn("protocol error", "error", err)
				_ = c.write(protocolErrorReply(err), writeTimeout)
				return
			}

			var reply resp.Value
			if c.allow() {
				reply = s.handler.Handle(ctx, req)
			} else {
				s.metrics.ObserveCommand(commandLabel(req), metric.ResultLimited, 0)
				reply = errorReply(ErrRateLimited)
			}

			if err := writeReply(ctx, c, reply, writeTimeout); err != nil {
				log.Debug("write failed", "error", err)
				return
			}
		}

		// Waiting for a new request may take as long as the idle timeout;
		// the rest of a started request must arrive within the read timeout.
		timeout := readTimeout
		if c.Buffered() == 0 {
			timeout = idleTimeout
		}

		n, err := c.fill(timeout)
		if err != nil {
			if n > 0 {
				// Decode what arrived alongside the error before giving up.
				continue
			}
			switch {
			case errors.Is(err, io.EOF):
				if c.Buffered() > 0 {
					log.Debug("peer closed mid-request", "buffered", c.Buffered())
				}
			case isTimeout(err):
				log.Debug("connection timed out")
			case errors.Is(err, net.ErrClosed):
			default:
				log.Debug("read failed", "error", err)
			}
			return
		}
	}
}

// protocolErrorReply formats a decode failure as "ERR protocol error: ...".
// writeReply writes reply to c. A reply the codec rejects is replaced by
// an error reply, so only transport failures are returned.
func writeReply(ctx context.Context, c *Conn, reply resp.Value, timeout time.Duration) error {
	err := c.write(reply, timeout)
	if !errors.Is(err, resp.ErrUnsupportedReply) {
		return err
	}
	logger.L(ctx).Error("reply not encodable", "kind", reply.Kind.String(), "error", err)
	return c.write(errorReply(ErrReplyEncoding), timeout)
}

func protocolErrorReply(err error) resp.Value {
	detail := strings.TrimPrefix(err.Error(), resp.ErrProtocol.Error())
	detail = strings.TrimPrefix(detail, ": ")
	if detail == "" {
		return errorReply(errors.New("protocol error"))
	}
	return errorReply(errors.New("protocol error: " + detail))
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func remoteString(c *Conn) string {
	if addr := c.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}
