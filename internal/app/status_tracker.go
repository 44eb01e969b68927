package app

import (
	"context"
	"sync"
	"time"

	"github.com/bft-labs/shiplog/internal/domain"
	"github.com/bft-labs/shiplog/internal/ports"
	"github.com/bft-labs/shiplog/pkg/log"
)

// StatusTracker counts sampler events and persists the counters after each
// commit attempt. Events are forwarded to next, if set.
type StatusTracker struct {
	repo   ports.StatusRepository
	logger ports.Logger
	next   SampleEventEmitter

	mu     sync.Mutex
	status domain.Status
}

// NewStatusTracker creates a tracker. repo and next may be nil.
func NewStatusTracker(repo ports.StatusRepository, logger ports.Logger, next SampleEventEmitter) *StatusTracker {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &StatusTracker{repo: repo, logger: logger, next: next}
}

// Load restores counters saved by a previous run.
func (t *StatusTracker) Load(ctx context.Context) error {
	if t.repo == nil {
		return nil
	}
	st, err := t.repo.Load(ctx)
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.status = st
	t.mu.Unlock()
	return nil
}

// Status returns a copy of the counters.
func (t *StatusTracker) Status() domain.Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *StatusTracker) OnSampleAccepted(sample domain.Sample) {
	t.mu.Lock()
	t.status.Accepted++
	t.mu.Unlock()
	if t.next != nil {
		t.next.OnSampleAccepted(sample)
	}
}

func (t *StatusTracker) OnSampleDropped(sample domain.Sample) {
	t.mu.Lock()
	t.status.Dropped++
	t.mu.Unlock()
	if t.next != nil {
		t.next.OnSampleDropped(sample)
	}
}

func (t *StatusTracker) OnSampleCommitted(sample domain.Sample, duration time.Duration) {
	t.mu.Lock()
	t.status.Committed++
	t.status.LastNavStatus = sample.NavStatus
	t.status.LastCommitAt = time.Now().UTC()
	snapshot := t.status
	t.mu.Unlock()

	t.save(snapshot)
	if t.next != nil {
		t.next.OnSampleCommitted(sample, duration)
	}
}

func (t *StatusTracker) OnCommitFailed(sample domain.Sample, err error) {
	t.mu.Lock()
	t.status.Failed++
	t.status.LastError = err.Error()
	snapshot := t.status
	t.mu.Unlock()

	t.save(snapshot)
	if t.next != nil {
		t.next.OnCommitFailed(sample, err)
	}
}

func (t *StatusTracker) save(st domain.Status) {
	if t.repo == nil {
		return
	}
	if err := t.repo.Save(context.Background(), st); err != nil {
		t.logger.Warn("failed to persist status", ports.Err(err))
	}
}
