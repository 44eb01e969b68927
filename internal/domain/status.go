package domain

import "time"

// Status holds sampler counters persisted between runs.
type Status struct {
	// Accepted counts samples the sampler took into its slot.
	Accepted uint64 `json:"accepted"`

	// Dropped counts requests rejected because the slot was occupied.
	Dropped uint64 `json:"dropped"`

	// Committed counts samples the sink stored successfully.
	Committed uint64 `json:"committed"`

	// Failed counts samples the sink rejected.
	Failed uint64 `json:"failed"`

	// LastNavStatus is the navigational status of the last committed sample.
	LastNavStatus int `json:"last_nav_status"`

	// LastCommitAt is when the last successful commit finished.
	LastCommitAt time.Time `json:"last_commit_at"`

	// LastError is the message of the most recent sink failure.
	LastError string `json:"last_error,omitempty"`
}
