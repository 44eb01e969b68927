package domain

import "errors"

// Domain errors represent error conditions in the shiplog domain.
// They are returned by the public API and can be checked with errors.Is.
var (
	// ErrMalformedSentence is returned when a line cannot be tokenized.
	ErrMalformedSentence = errors.New("shiplog: malformed sentence")

	// ErrUnsupportedSentence is returned when no handler exists for a sentence type.
	ErrUnsupportedSentence = errors.New("shiplog: unsupported sentence")

	// ErrSamplerBusy is returned when a sample is requested while another is held.
	ErrSamplerBusy = errors.New("shiplog: sampler busy")

	// ErrSamplerClosed is returned when a sample is requested after Close.
	ErrSamplerClosed = errors.New("shiplog: sampler closed")

	// ErrSinkFailure wraps errors returned by a record sink.
	ErrSinkFailure = errors.New("shiplog: sink failure")

	// ErrAlreadyRunning is returned when Start() is called on a running instance.
	ErrAlreadyRunning = errors.New("shiplog: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped instance.
	ErrNotRunning = errors.New("shiplog: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("shiplog: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("shiplog: invalid configuration")
)
