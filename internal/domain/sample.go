package domain

import "time"

// Sample is a request to persist a snapshot of a LogEntry after Delay.
// Entry is filled with a deep copy of the live record when the delay
// expires; it is empty while the sample is held.
type Sample struct {
	// SessionID identifies the connection the snapshot came from.
	SessionID string

	// Entry is the snapshot to persist.
	Entry LogEntry

	// NavStatus is the AIS navigational status that selected Delay.
	NavStatus int

	// MessageType is the AIS message type of the triggering frame.
	MessageType int

	// MMSI of the vessel that sent the triggering frame.
	MMSI uint32

	// Trigger is the raw AIS sentence the status was decoded from.
	Trigger string

	// Delay is how long the sample is held before it is committed.
	Delay time.Duration

	// AcceptedAt is when the sampler accepted the request.
	AcceptedAt time.Time
}

// DueAt returns the instant the sample becomes due for commit.
func (s Sample) DueAt() time.Time {
	return s.AcceptedAt.Add(s.Delay)
}
