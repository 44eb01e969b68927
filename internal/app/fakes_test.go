package app

import (
	"context"
	"sync"
	"time"

	"github.com/bft-labs/shiplog/internal/domain"
)

var epoch = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// recordingSink stores committed samples and can be told to fail.
type recordingSink struct {
	mu       sync.Mutex
	commits  []domain.Sample
	err      error
	onCommit func(domain.Sample)
}

func (s *recordingSink) Commit(ctx context.Context, sample domain.Sample) error {
	if s.onCommit != nil {
		s.onCommit(sample)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.commits = append(s.commits, sample)
	return nil
}

func (s *recordingSink) Close() error { return nil }

func (s *recordingSink) Commits() []domain.Sample {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Sample(nil), s.commits...)
}

// countingEmitter counts sampler events.
type countingEmitter struct {
	mu                                   sync.Mutex
	accepted, dropped, committed, failed int
}

func (c *countingEmitter) OnSampleAccepted(domain.Sample) {
	c.mu.Lock()
	c.accepted++
	c.mu.Unlock()
}

func (c *countingEmitter) OnSampleDropped(domain.Sample) {
	c.mu.Lock()
	c.dropped++
	c.mu.Unlock()
}

func (c *countingEmitter) OnSampleCommitted(domain.Sample, time.Duration) {
	c.mu.Lock()
	c.committed++
	c.mu.Unlock()
}

func (c *countingEmitter) OnCommitFailed(domain.Sample, error) {
	c.mu.Lock()
	c.failed++
	c.mu.Unlock()
}

func (c *countingEmitter) counts() [4]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return [4]int{c.accepted, c.dropped, c.committed, c.failed}
}
