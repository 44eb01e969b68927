package ports

import (
	"context"
	"time"

	"github.com/bft-labs/shiplog/internal/domain"
)

// RecordSink persists committed samples.
// Implementations must be safe for concurrent use: samplers of different
// connections commit from their own timer goroutines.
type RecordSink interface {
	// Commit stores the sample. A returned error is logged by the caller and
	// the sample is not retried.
	Commit(ctx context.Context, sample domain.Sample) error

	// Close releases resources held by the sink.
	Close() error
}

// RecordPruner is implemented by sinks that can delete old records.
type RecordPruner interface {
	// Prune deletes records committed before the cutoff and reports how
	// many were removed.
	Prune(ctx context.Context, before time.Time) (int64, error)
}
