package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/shiplog/internal/domain"
)

type memoryStatusRepo struct {
	mu    sync.Mutex
	saved []domain.Status
	load  domain.Status
	err   error
}

func (m *memoryStatusRepo) Load(context.Context) (domain.Status, error) {
	return m.load, m.err
}

func (m *memoryStatusRepo) Save(_ context.Context, st domain.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, st)
	return nil
}

func TestStatusTracker_CountsAndPersists(t *testing.T) {
	repo := &memoryStatusRepo{load: domain.Status{Committed: 7}}
	next := &countingEmitter{}
	tr := NewStatusTracker(repo, nil, next)
	require.NoError(t, tr.Load(context.Background()))

	clock := NewManualClock(epoch)
	sink := &recordingSink{}
	s := NewSession(SessionConfig{Sink: sink, Clock: clock, Events: tr})

	_, _ = s.Write([]byte(aisStatus3 + "\n"))
	_, _ = s.Write([]byte(aisStatus0 + "\n"))
	clock.Advance(30 * time.Second)

	st := tr.Status()
	assert.Equal(t, uint64(1), st.Accepted)
	assert.Equal(t, uint64(1), st.Dropped)
	assert.Equal(t, uint64(8), st.Committed)
	assert.Equal(t, 3, st.LastNavStatus)
	assert.False(t, st.LastCommitAt.IsZero())
	assert.Equal(t, [4]int{1, 1, 1, 0}, next.counts())

	repo.mu.Lock()
	defer repo.mu.Unlock()
	require.Len(t, repo.saved, 1)
	assert.Equal(t, uint64(8), repo.saved[0].Committed)
}

func TestStatusTracker_RecordsFailure(t *testing.T) {
	tr := NewStatusTracker(nil, nil, nil)
	tr.OnCommitFailed(domain.Sample{}, errors.New("boom"))

	st := tr.Status()
	assert.Equal(t, uint64(1), st.Failed)
	assert.Equal(t, "boom", st.LastError)
}

func TestStatusTracker_LoadError(t *testing.T) {
	tr := NewStatusTracker(&memoryStatusRepo{err: errors.New("corrupt")}, nil, nil)
	assert.Error(t, tr.Load(context.Background()))
}
