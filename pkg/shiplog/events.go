package shiplog

import (
	"time"

	"github.com/bft-labs/shiplog/internal/app"
	"github.com/bft-labs/shiplog/internal/domain"
)

// StateChangeEvent reports a lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// SampleEvent describes a sample accepted, dropped or committed by a
// session's sampler.
type SampleEvent struct {
	SessionID string
	NavStatus int
	MMSI      uint32
	Delay     time.Duration

	// Entry is the persisted record; set for commits and failures only.
	Entry domain.LogEntry

	// Duration is the sink call time; set for commits only.
	Duration time.Duration
}

// CommitFailedEvent reports a sink failure. The sample is not retried.
type CommitFailedEvent struct {
	Sample SampleEvent
	Error  error
}

// EventHandler receives service notifications. Methods are called from
// connection and timer goroutines and must return quickly.
type EventHandler interface {
	OnStateChange(StateChangeEvent)
	OnSampleAccepted(SampleEvent)
	OnSampleDropped(SampleEvent)
	OnSampleCommitted(SampleEvent)
	OnCommitFailed(CommitFailedEvent)
}

// NoopEventHandler can be embedded to implement only some methods.
type NoopEventHandler struct{}

func (NoopEventHandler) OnStateChange(StateChangeEvent)   {}
func (NoopEventHandler) OnSampleAccepted(SampleEvent)     {}
func (NoopEventHandler) OnSampleDropped(SampleEvent)      {}
func (NoopEventHandler) OnSampleCommitted(SampleEvent)    {}
func (NoopEventHandler) OnCommitFailed(CommitFailedEvent) {}

// eventEmitterWrapper adapts EventHandler to the internal emitter
// interfaces.
type eventEmitterWrapper struct {
	handler EventHandler
}

func sampleEvent(s domain.Sample) SampleEvent {
	return SampleEvent{
		SessionID: s.SessionID,
		NavStatus: s.NavStatus,
		MMSI:      s.MMSI,
		Delay:     s.Delay,
		Entry:     s.Entry,
	}
}

func (e *eventEmitterWrapper) OnStateChange(previous, current app.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: convertState(previous),
		Current:  convertState(current),
		Reason:   reason,
	})
}

func (e *eventEmitterWrapper) OnSampleAccepted(s domain.Sample) {
	if e.handler != nil {
		e.handler.OnSampleAccepted(sampleEvent(s))
	}
}

func (e *eventEmitterWrapper) OnSampleDropped(s domain.Sample) {
	if e.handler != nil {
		e.handler.OnSampleDropped(sampleEvent(s))
	}
}

func (e *eventEmitterWrapper) OnSampleCommitted(s domain.Sample, d time.Duration) {
	if e.handler == nil {
		return
	}
	ev := sampleEvent(s)
	ev.Duration = d
	e.handler.OnSampleCommitted(ev)
}

func (e *eventEmitterWrapper) OnCommitFailed(s domain.Sample, err error) {
	if e.handler != nil {
		e.handler.OnCommitFailed(CommitFailedEvent{Sample: sampleEvent(s), Error: err})
	}
}
