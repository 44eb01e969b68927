// Package tcp accepts NMEA streams over TCP, one stream per connection.
package tcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/bft-labs/shiplog/internal/backoff"
	"github.com/bft-labs/shiplog/internal/ports"
)

// Defaults.
const (
	DefaultAddr            = ":3100"
	DefaultReadBufferBytes = 4096
)

// Config configures a Server.
type Config struct {
	Addr            string
	ReadBufferBytes int
}

// Server is a TCP listener feeding a StreamHandler.
type Server struct {
	cfg     Config
	handler ports.StreamHandler
	logger  ports.Logger

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	closed   bool
	wg       sync.WaitGroup
}

// NewServer returns a Server; call Listen then Serve.
func NewServer(cfg Config, handler ports.StreamHandler, logger ports.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.ReadBufferBytes <= 0 {
		cfg.ReadBufferBytes = DefaultReadBufferBytes
	}
	return &Server{
		cfg:     cfg,
		handler: handler,
		logger:  logger,
		conns:   make(map[net.Conn]struct{}),
	}
}

// Listen binds the configured address.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	s.logger.Info("listening", ports.String("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve accepts connections until ctx is cancelled or Close is called, then
// waits for open connections to finish.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return errors.New("tcp server: Serve called before Listen")
	}

	stop := context.AfterFunc(ctx, func() { s.Close() })
	defer stop()

	b := backoff.New(5*time.Millisecond, time.Second)
	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.isClosed() {
				s.wg.Wait()
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				s.logger.Warn("accept failed, retrying", ports.Err(err))
				b.Wait(ctx)
				continue
			}
			s.Close()
			s.wg.Wait()
			return fmt.Errorf("accept: %w", err)
		}
		b.Reset()

		if !s.track(conn) {
			conn.Close()
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)
			s.handle(conn)
		}()
	}
}

// handle copies one connection into its own stream.
func (s *Server) handle(conn net.Conn) {
	remote := conn.RemoteAddr().String()
	stream := s.handler.Open(remote)
	defer stream.Close()
	s.logger.Info("connection opened", ports.String("remote", remote))

	var total uint64
	buf := make([]byte, s.cfg.ReadBufferBytes)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			total += uint64(n)
			if _, werr := stream.Write(buf[:n]); werr != nil {
				s.logger.Warn("stream write failed", ports.String("remote", remote), ports.Err(werr))
				break
			}
		}
		if err != nil {
			if !errors.Is(err, net.ErrClosed) && !errors.Is(err, io.EOF) {
				s.logger.Warn("connection read failed", ports.String("remote", remote), ports.Err(err))
			}
			break
		}
	}
	s.logger.Info("connection closed",
		ports.String("remote", remote),
		ports.String("received", humanize.Bytes(total)))
}

// Close stops accepting and closes every open connection. Sessions then
// run their own close path.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}
	for c := range s.conns {
		c.Close()
	}
	return err
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Server) track(c net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[c] = struct{}{}
	return true
}

func (s *Server) untrack(c net.Conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
	c.Close()
}

// Connections returns the number of open connections.
func (s *Server) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}
