package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bft-labs/shiplog/internal/domain"
	"github.com/bft-labs/shiplog/internal/ports"
	"github.com/bft-labs/shiplog/pkg/log"
)

// DefaultCommitTimeout bounds a single sink commit.
const DefaultCommitTimeout = 10 * time.Second

// SamplerState is the state of a Sampler's single slot.
type SamplerState int

const (
	SamplerIdle SamplerState = iota
	SamplerHolding
)

// String returns a human-readable representation of the state.
func (s SamplerState) String() string {
	switch s {
	case SamplerIdle:
		return "Idle"
	case SamplerHolding:
		return "Holding"
	default:
		return "Unknown"
	}
}

// SampleEventEmitter is notified of sampler activity. Calls are made outside
// the sampler lock.
type SampleEventEmitter interface {
	OnSampleAccepted(sample domain.Sample)
	OnSampleDropped(sample domain.Sample)
	OnSampleCommitted(sample domain.Sample, duration time.Duration)
	OnCommitFailed(sample domain.Sample, err error)
}

// SamplerConfig holds the collaborators of a Sampler.
type SamplerConfig struct {
	Sink          ports.RecordSink
	Clock         Clock
	Logger        ports.Logger
	Events        SampleEventEmitter
	CommitTimeout time.Duration

	// Snapshot, when set, supplies the entry to persist. It is called once
	// per commit, at expiry or on a flushing Close, outside the sampler lock.
	Snapshot func() domain.LogEntry
}

// Sampler holds at most one sample and commits it to the sink when its
// delay expires. Requests arriving while a sample is held are dropped.
//
// Request and the timer callback serialize on the same mutex. The slot
// stays occupied while the sink call is in flight, so commits never overlap
// and happen in acceptance order.
type Sampler struct {
	sink          ports.RecordSink
	clock         Clock
	logger        ports.Logger
	events        SampleEventEmitter
	commitTimeout time.Duration
	snapshot      func() domain.LogEntry

	mu         sync.Mutex
	state      SamplerState
	held       domain.Sample
	timer      Timer
	closed     bool
	committing bool
	inflight   sync.WaitGroup
}

// NewSampler creates an idle sampler.
func NewSampler(cfg SamplerConfig) *Sampler {
	if cfg.Clock == nil {
		cfg.Clock = RealClock{}
	}
	if cfg.CommitTimeout <= 0 {
		cfg.CommitTimeout = DefaultCommitTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewNoopLogger()
	}
	return &Sampler{
		sink:          cfg.Sink,
		clock:         cfg.Clock,
		logger:        cfg.Logger,
		events:        cfg.Events,
		commitTimeout: cfg.CommitTimeout,
		snapshot:      cfg.Snapshot,
		state:         SamplerIdle,
	}
}

// State returns the current slot state.
func (s *Sampler) State() SamplerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Request offers a sample to be committed after delay. It never blocks on
// the sink. It returns ErrSamplerBusy if a sample is already held and
// ErrSamplerClosed after Close.
func (s *Sampler) Request(sample domain.Sample, delay time.Duration) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSamplerClosed
	}
	if s.state == SamplerHolding {
		s.mu.Unlock()
		s.logger.Debug("sample dropped, slot occupied",
			ports.String("session", sample.SessionID),
			ports.Int("nav_status", sample.NavStatus),
		)
		if s.events != nil {
			s.events.OnSampleDropped(sample)
		}
		return domain.ErrSamplerBusy
	}

	sample.Delay = delay
	if sample.AcceptedAt.IsZero() {
		sample.AcceptedAt = s.clock.Now()
	}
	s.state = SamplerHolding
	s.held = sample
	s.timer = s.clock.AfterFunc(delay, s.expire)
	s.mu.Unlock()

	s.logger.Debug("sample accepted",
		ports.String("session", sample.SessionID),
		ports.Int("nav_status", sample.NavStatus),
		ports.Duration("delay", delay),
	)
	if s.events != nil {
		s.events.OnSampleAccepted(sample)
	}
	return nil
}

// expire runs on the timer goroutine.
func (s *Sampler) expire() {
	s.mu.Lock()
	if s.state != SamplerHolding || s.committing {
		s.mu.Unlock()
		return
	}
	sample := s.held
	s.timer = nil
	s.committing = true
	s.inflight.Add(1)
	s.mu.Unlock()
	defer s.inflight.Done()

	s.commit(sample)
	s.release()
}

func (s *Sampler) release() {
	s.mu.Lock()
	s.state = SamplerIdle
	s.held = domain.Sample{}
	s.committing = false
	s.mu.Unlock()
}

func (s *Sampler) commit(sample domain.Sample) {
	if s.snapshot != nil {
		sample.Entry = s.snapshot()
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.commitTimeout)
	defer cancel()

	start := time.Now()
	err := s.sink.Commit(ctx, sample)
	elapsed := time.Since(start)
	if err != nil {
		if !errors.Is(err, domain.ErrSinkFailure) {
			err = fmt.Errorf("%w: %w", domain.ErrSinkFailure, err)
		}
		s.logger.Error("commit failed",
			ports.String("session", sample.SessionID),
			ports.Int("nav_status", sample.NavStatus),
			ports.Err(err),
		)
		if s.events != nil {
			s.events.OnCommitFailed(sample, err)
		}
		return
	}

	s.logger.Info("sample committed",
		ports.String("session", sample.SessionID),
		ports.Int("nav_status", sample.NavStatus),
		ports.Duration("delay", sample.Delay),
		ports.Duration("took", elapsed),
	)
	if s.events != nil {
		s.events.OnSampleCommitted(sample, elapsed)
	}
}

// Close stops the sampler. A held sample whose commit has not started is
// committed synchronously when flush is true and abandoned otherwise. A
// commit already in flight is waited for, so the sink may be closed once
// Close returns.
func (s *Sampler) Close(flush bool) {
	s.mu.Lock()
	s.closed = true
	if s.state != SamplerHolding || s.committing {
		s.mu.Unlock()
		s.inflight.Wait()
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	sample := s.held
	s.timer = nil
	s.committing = true
	s.inflight.Add(1)
	s.mu.Unlock()
	defer s.inflight.Done()

	if flush {
		s.commit(sample)
	} else {
		s.logger.Info("pending sample abandoned",
			ports.String("session", sample.SessionID),
			ports.Int("nav_status", sample.NavStatus),
			ports.Time("due_at", sample.DueAt()),
		)
	}
	s.release()
}
