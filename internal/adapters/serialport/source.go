// Package serialport reads NMEA sentences from a serial device.
package serialport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"

	"github.com/bft-labs/shiplog/internal/backoff"
	"github.com/bft-labs/shiplog/internal/ports"
)

// DefaultReadTimeout bounds a single read so Run notices cancellation.
const DefaultReadTimeout = 500 * time.Millisecond

// Opener opens the device at path.
type Opener func(path string, mode *serial.Mode) (io.ReadCloser, error)

// OpenPort opens a real serial port with DefaultReadTimeout.
func OpenPort(path string, mode *serial.Mode) (io.ReadCloser, error) {
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, err
	}
	if err := port.SetReadTimeout(DefaultReadTimeout); err != nil {
		port.Close()
		return nil, err
	}
	return port, nil
}

// Config configures a Source.
type Config struct {
	Path            string
	Options         PortOptions
	ReadBufferBytes int
	Open            Opener
	Backoff         *backoff.Backoff
}

// Source feeds bytes from a serial device into one stream per open. A
// device that disappears is reopened with backoff.
type Source struct {
	path    string
	mode    *serial.Mode
	bufSize int
	open    Opener
	backoff *backoff.Backoff
	handler ports.StreamHandler
	logger  ports.Logger
}

// NewSource validates cfg and returns a Source.
func NewSource(cfg Config, handler ports.StreamHandler, logger ports.Logger) (*Source, error) {
	if cfg.Path == "" {
		return nil, errors.New("serial port path is empty")
	}
	mode, err := cfg.Options.SerialMode()
	if err != nil {
		return nil, fmt.Errorf("serial port %s: %w", cfg.Path, err)
	}
	if cfg.ReadBufferBytes <= 0 {
		cfg.ReadBufferBytes = 4096
	}
	if cfg.Open == nil {
		cfg.Open = OpenPort
	}
	if cfg.Backoff == nil {
		cfg.Backoff = backoff.New(backoff.DefaultInitial, backoff.DefaultMax)
	}
	return &Source{
		path:    cfg.Path,
		mode:    mode,
		bufSize: cfg.ReadBufferBytes,
		open:    cfg.Open,
		backoff: cfg.Backoff,
		handler: handler,
		logger:  logger,
	}, nil
}

// Run reads until ctx is cancelled.
func (s *Source) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		port, err := s.open(s.path, s.mode)
		if err != nil {
			s.logger.Warn("serial open failed",
				ports.String("path", s.path),
				ports.Duration("retry_in", s.backoff.Current()),
				ports.Err(err))
			if !s.backoff.Wait(ctx) {
				return nil
			}
			continue
		}
		s.backoff.Reset()
		s.logger.Info("serial port opened",
			ports.String("path", s.path),
			ports.Int("baud", s.mode.BaudRate))

		err = s.pump(ctx, port)
		if err == nil {
			return nil
		}
		s.logger.Warn("serial read failed",
			ports.String("path", s.path),
			ports.Err(err))
		if !s.backoff.Wait(ctx) {
			return nil
		}
	}
}

// pump copies from port into a fresh stream. It returns nil when ctx ends
// and the read error otherwise.
func (s *Source) pump(ctx context.Context, port io.ReadCloser) error {
	stream := s.handler.Open("serial:" + s.path)
	defer stream.Close()

	// Unblock a read that ignores the timeout.
	stop := context.AfterFunc(ctx, func() { port.Close() })
	defer func() {
		if stop() {
			port.Close()
		}
	}()

	buf := make([]byte, s.bufSize)
	for {
		n, err := port.Read(buf)
		if n > 0 {
			if _, werr := stream.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return io.ErrUnexpectedEOF
			}
			return err
		}
		// n == 0 with no error is a read timeout.
	}
}
