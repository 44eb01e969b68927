// Package configwatcher reloads parts of the shiplog configuration file at
// runtime. When the file changes it re-reads it and applies log_level and
// intervals to the running service.
package configwatcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/shiplog/internal/cliconfig"
	"github.com/bft-labs/shiplog/pkg/log"
	"github.com/bft-labs/shiplog/pkg/shiplog"
)

// Plugin watches one config file.
type Plugin struct {
	mu sync.Mutex

	path          string
	debounceDelay time.Duration
	changed       map[string]bool

	logger   log.Logger
	control  shiplog.Controller
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
	reloads  int
}

// Config holds configuration options for the config watcher plugin.
type Config struct {
	// Path is the config file to watch. Required.
	Path string

	// DebounceDelay is how long to wait after the last change before
	// reloading. Default: 100 milliseconds
	DebounceDelay time.Duration

	// Changed names flags set on the command line; the keys they control
	// are not reloaded from the file.
	Changed map[string]bool
}

// DefaultConfig returns a Config watching path.
func DefaultConfig(path string) Config {
	return Config{
		Path:          path,
		DebounceDelay: 100 * time.Millisecond,
	}
}

// New creates a config watcher plugin.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	return &Plugin{
		path:          cfg.Path,
		debounceDelay: cfg.DebounceDelay,
		changed:       cfg.Changed,
	}
}

// WithConfigWatcher returns a shiplog Option that enables the plugin.
func WithConfigWatcher(cfg Config) shiplog.Option {
	return shiplog.WithPlugin(New(cfg))
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "configwatcher"
}

// Initialize starts watching. A missing path disables the plugin.
func (p *Plugin) Initialize(ctx context.Context, cfg shiplog.PluginConfig) error {
	p.mu.Lock()
	p.logger = cfg.Logger
	p.control = cfg.Control
	p.mu.Unlock()

	if p.logger == nil {
		p.logger = log.NewNoopLogger()
	}
	if p.path == "" {
		p.logger.Warn("config watcher disabled: no config file")
		return nil
	}
	if p.control == nil {
		return errors.New("config watcher: no controller")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config watcher: %w", err)
	}
	// Editors replace files on save, so watch the directory.
	if err := watcher.Add(filepath.Dir(p.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("config watcher: watch %s: %w", filepath.Dir(p.path), err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.logger.Info("config watcher started", log.String("path", p.path))

	p.wg.Add(1)
	go p.watchLoop(watchCtx, watcher)
	return nil
}

// Shutdown stops the watcher.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	p.mu.Lock()
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.mu.Unlock()
	return nil
}

// Reloads returns how many times the file was applied.
func (p *Plugin) Reloads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reloads
}

func (p *Plugin) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer p.wg.Done()
	defer watcher.Close()

	name := filepath.Clean(p.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != name {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			p.debounceReload(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("config watcher error", log.Err(err))
		}
	}
}

func (p *Plugin) debounceReload(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(p.debounceDelay, func() {
		if ctx.Err() != nil {
			return
		}
		if err := p.reload(); err != nil {
			p.logger.Error("config reload failed", log.String("path", p.path), log.Err(err))
		}
	})
}

// reload re-reads the file and applies the reloadable keys. A file without
// an intervals table restores the default intervals.
func (p *Plugin) reload() error {
	if !cliconfig.FileExists(p.path) {
		return nil
	}
	fc, err := cliconfig.LoadFileConfig(p.path)
	if err != nil {
		return err
	}

	if fc.LogLevel != "" && !p.changed["log-level"] {
		if err := p.control.SetLogLevel(fc.LogLevel); err != nil {
			return fmt.Errorf("log_level: %w", err)
		}
	}
	if !p.changed["interval"] {
		table, err := cliconfig.ParseIntervals(fc.Intervals)
		if err != nil {
			return err
		}
		if err := p.control.SetIntervals(table); err != nil {
			return err
		}
	}

	p.mu.Lock()
	p.reloads++
	p.mu.Unlock()
	p.logger.Info("config reloaded", log.String("path", p.path))
	return nil
}

var _ shiplog.Plugin = (*Plugin)(nil)
