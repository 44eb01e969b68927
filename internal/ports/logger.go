package ports

import "github.com/bft-labs/shiplog/pkg/log"

// Logger is the structured logger used inside the service.
type Logger = log.Logger

// Field is a structured log field.
type Field = log.Field

// Field constructors, re-exported so internal packages import one place.
var (
	String   = log.String
	Int      = log.Int
	Int64    = log.Int64
	Uint64   = log.Uint64
	Float64  = log.Float64
	Bool     = log.Bool
	Duration = log.Duration
	Time     = log.Time
	Err      = log.Err
	Any      = log.Any
)
