package app

import (
	"sync"
	"time"

	"github.com/bft-labs/shiplog/internal/nmea"
	"github.com/bft-labs/shiplog/internal/ports"
	"github.com/bft-labs/shiplog/pkg/log"
)

// HubConfig holds what every session of a Hub shares.
type HubConfig struct {
	MaxLineBytes    int
	FlushOnShutdown bool
	CommitTimeout   time.Duration
	Registry        *nmea.Registry
	Policy          *IntervalPolicy
	Sink            ports.RecordSink
	Clock           Clock
	Logger          ports.Logger
	Events          SampleEventEmitter
}

// Hub creates one Session per inbound stream and tracks the open ones so
// they can be closed together. It implements ports.StreamHandler.
type Hub struct {
	cfg HubConfig

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewHub creates a hub. Missing registry, policy, clock and logger get
// defaults.
func NewHub(cfg HubConfig) *Hub {
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
	return &Hub{cfg: cfg, sessions: make(map[string]*Session)}
}

// Open starts a session for a new connection.
func (h *Hub) Open(source string) ports.Stream {
	return h.OpenSession(source)
}

// OpenSession is Open returning the concrete session.
func (h *Hub) OpenSession(source string) *Session {
	s := NewSession(SessionConfig{
		Source:          source,
		MaxLineBytes:    h.cfg.MaxLineBytes,
		Registry:        h.cfg.Registry,
		Policy:          h.cfg.Policy,
		Sink:            h.cfg.Sink,
		Clock:           h.cfg.Clock,
		Logger:          h.cfg.Logger,
		Events:          h.cfg.Events,
		CommitTimeout:   h.cfg.CommitTimeout,
		FlushOnShutdown: h.cfg.FlushOnShutdown,
	})
	s.onClose = h.remove

	h.mu.Lock()
	h.sessions[s.ID()] = s
	n := len(h.sessions)
	h.mu.Unlock()

	h.cfg.Logger.Info("session opened",
		ports.String("session", s.ID()),
		ports.String("source", source),
		ports.Int("open_sessions", n),
	)
	return s
}

func (h *Hub) remove(s *Session) {
	h.mu.Lock()
	delete(h.sessions, s.ID())
	h.mu.Unlock()
}

// Policy returns the interval policy shared by all sessions.
func (h *Hub) Policy() *IntervalPolicy {
	return h.cfg.Policy
}

// Len returns the number of open sessions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// CloseAll stops the samplers of every open session. Transports close their
// own sessions when their connections end; this covers sessions whose
// connection goroutines did not exit in time.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	open := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		open = append(open, s)
	}
	h.mu.Unlock()

	for _, s := range open {
		s.sampler.Close(h.cfg.FlushOnShutdown)
	}
}
