package shiplog

import (
	"context"
	"sync"
	"time"

	"github.com/bft-labs/shiplog/internal/ports"
)

// CleanupConfig configures periodic deletion of old committed entries. It
// only takes effect with a sink that supports pruning (SQLite).
type CleanupConfig struct {
	Enabled bool

	// Retention is how long entries are kept.
	Retention time.Duration

	// CheckInterval is how often old entries are deleted. Default: 1 hour
	CheckInterval time.Duration
}

// WithCleanupConfig enables retention cleanup.
func WithCleanupConfig(cfg CleanupConfig) Option {
	if !cfg.Enabled || cfg.Retention <= 0 {
		return func(o *options) {}
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = time.Hour
	}
	return func(o *options) {
		o.cleanupConfig = &cfg
	}
}

// cleanupRunner prunes the sink on a ticker.
type cleanupRunner struct {
	retention     time.Duration
	checkInterval time.Duration
	pruner        ports.RecordPruner
	logger        ports.Logger
	now           func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newCleanupRunner(cfg CleanupConfig, pruner ports.RecordPruner, logger ports.Logger) *cleanupRunner {
	return &cleanupRunner{
		retention:     cfg.Retention,
		checkInterval: cfg.CheckInterval,
		pruner:        pruner,
		logger:        logger,
		now:           time.Now,
	}
}

func (c *cleanupRunner) start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	c.logger.Info("retention cleanup enabled",
		ports.Duration("retention", c.retention),
		ports.Duration("interval", c.checkInterval))

	c.wg.Add(1)
	go c.loop(runCtx)
}

func (c *cleanupRunner) stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
}

func (c *cleanupRunner) loop(ctx context.Context) {
	defer c.wg.Done()

	c.runOnce(ctx)

	ticker := time.NewTicker(c.checkInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.runOnce(ctx)
		}
	}
}

// runOnce deletes entries recorded before now - retention.
func (c *cleanupRunner) runOnce(ctx context.Context) {
	cutoff := c.now().Add(-c.retention)
	n, err := c.pruner.Prune(ctx, cutoff)
	if err != nil {
		if ctx.Err() == nil {
			c.logger.Error("retention cleanup failed", ports.Err(err))
		}
		return
	}
	if n > 0 {
		c.logger.Info("retention cleanup",
			ports.Int64("deleted", n),
			ports.Time("before", cutoff))
	}
}
