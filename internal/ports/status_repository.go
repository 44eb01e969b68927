package ports

import (
	"context"

	"github.com/bft-labs/shiplog/internal/domain"
)

// StatusRepository persists sampler counters across restarts.
type StatusRepository interface {
	// Load retrieves the last saved status.
	// Returns an empty status and nil error if none was saved.
	Load(ctx context.Context) (domain.Status, error)

	// Save persists the status atomically.
	Save(ctx context.Context, status domain.Status) error
}
