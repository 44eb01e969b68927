package app

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/bft-labs/shiplog/internal/domain"
	"github.com/bft-labs/shiplog/internal/nmea"
	"github.com/bft-labs/shiplog/internal/ports"
	"github.com/bft-labs/shiplog/pkg/ais"
	"github.com/bft-labs/shiplog/pkg/log"
)

// SessionConfig holds the collaborators of a Session. Registry, Policy and
// Sink may be shared between sessions.
type SessionConfig struct {
	ID              string
	Source          string
	MaxLineBytes    int
	Registry        *nmea.Registry
	Policy          *IntervalPolicy
	Sink            ports.RecordSink
	Clock           Clock
	Logger          ports.Logger
	Events          SampleEventEmitter
	CommitTimeout   time.Duration
	FlushOnShutdown bool
}

// SessionStats counts what a session has seen.
type SessionStats struct {
	Bytes     uint64
	Lines     uint64
	Sentences uint64
	AISFrames uint64
	Overflows uint64
}

// Session is the ingest pipeline of one connection. It owns the
// connection's LogEntry and Sampler. Write and HandleBatch must be called
// from a single goroutine. The sampler's timer copies the entry at expiry
// under entryMu, which field updates also hold.
type Session struct {
	id       string
	source   string
	entryMu  sync.Mutex
	entry    domain.LogEntry
	lines    *LineBuffer
	registry *nmea.Registry
	policy   *IntervalPolicy
	sampler  *Sampler
	clock    Clock
	logger   ports.Logger
	flush    bool
	opened   time.Time
	onClose  func(*Session)

	bytes     atomic.Uint64
	nLines    atomic.Uint64
	sentences atomic.Uint64
	frames    atomic.Uint64
	closed    atomic.Bool
}

// NewSession creates a session with an empty LogEntry and an idle sampler.
func NewSession(cfg SessionConfig) *Session {
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	if cfg.Registry == nil {
		cfg.Registry = nmea.DefaultRegistry()
	}
	if cfg.Policy == nil {
		cfg.Policy = NewIntervalPolicy(nil)
	}
	if cfg.Clock == nil {
		cfg.Clock = RealClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewNoopLogger()
	}
	s := &Session{
		id:       cfg.ID,
		source:   cfg.Source,
		lines:    NewLineBuffer(cfg.MaxLineBytes),
		registry: cfg.Registry,
		policy:   cfg.Policy,
		clock:    cfg.Clock,
		logger:   cfg.Logger,
		flush:    cfg.FlushOnShutdown,
		opened:   cfg.Clock.Now(),
	}
	s.sampler = NewSampler(SamplerConfig{
		Sink:          cfg.Sink,
		Clock:         cfg.Clock,
		Logger:        cfg.Logger,
		Events:        cfg.Events,
		CommitTimeout: cfg.CommitTimeout,
		Snapshot:      s.Entry,
	})
	return s
}

// ID returns the session identifier stored with every committed sample.
func (s *Session) ID() string { return s.id }

// Write feeds raw bytes from the connection. The complete lines of one
// Write form one batch. It never fails.
func (s *Session) Write(p []byte) (int, error) {
	s.bytes.Add(uint64(len(p)))
	if lines := s.lines.Feed(p); len(lines) > 0 {
		s.HandleBatch(lines)
	}
	return len(p), nil
}

// HandleBatch applies every NMEA sentence in lines to the entry, then
// offers a sample to the sampler if the first AIS sentence of the batch
// carries a navigational status with a configured interval. The entry is
// copied when the sample's delay expires, so later sentences are included.
func (s *Session) HandleBatch(lines []string) {
	s.nLines.Add(uint64(len(lines)))
	s.entryMu.Lock()
	applied := s.registry.ApplyLines(&s.entry, lines)
	s.entryMu.Unlock()
	s.sentences.Add(uint64(applied))

	raw, ok := ais.FirstSentence(lines)
	if !ok {
		return
	}
	s.frames.Add(1)

	frame, err := ais.Decode(raw)
	if err != nil {
		s.logger.Debug("ais sentence skipped",
			ports.String("session", s.id),
			ports.Err(err),
		)
		return
	}
	delay, ok := s.policy.Delay(frame.NavigationalStatus)
	if !ok {
		s.logger.Debug("no interval for navigational status",
			ports.String("session", s.id),
			ports.String("nav_status", frame.NavigationalStatus.String()),
		)
		return
	}

	sample := domain.Sample{
		SessionID:   s.id,
		NavStatus:   int(frame.NavigationalStatus),
		MessageType: frame.MessageType,
		MMSI:        frame.MMSI,
		Trigger:     raw,
		AcceptedAt:  s.clock.Now(),
	}
	if err := s.sampler.Request(sample, delay); err != nil && !errors.Is(err, domain.ErrSamplerBusy) {
		s.logger.Warn("sample rejected", ports.String("session", s.id), ports.Err(err))
	}
}

// Entry returns a deep copy of the current LogEntry.
func (s *Session) Entry() domain.LogEntry {
	s.entryMu.Lock()
	defer s.entryMu.Unlock()
	return s.entry.Clone()
}

// SamplerState returns the state of the session's sampler slot.
func (s *Session) SamplerState() SamplerState {
	return s.sampler.State()
}

// Stats returns the session counters.
func (s *Session) Stats() SessionStats {
	return SessionStats{
		Bytes:     s.bytes.Load(),
		Lines:     s.nLines.Load(),
		Sentences: s.sentences.Load(),
		AISFrames: s.frames.Load(),
		Overflows: s.lines.Overflows(),
	}
}

// Close processes a trailing unterminated line and stops the sampler. A
// held sample is committed only when the session was configured with
// FlushOnShutdown.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if line, ok := s.lines.Flush(); ok {
		s.HandleBatch([]string{line})
	}
	s.sampler.Close(s.flush)

	st := s.Stats()
	s.logger.Info("session closed",
		ports.String("session", s.id),
		ports.String("source", s.source),
		ports.String("received", humanize.Bytes(st.Bytes)),
		ports.Uint64("lines", st.Lines),
		ports.Uint64("sentences", st.Sentences),
		ports.Duration("duration", s.clock.Now().Sub(s.opened)),
	)
	if s.onClose != nil {
		s.onClose(s)
	}
	return nil
}
