package shiplog

import (
	"context"
	"time"

	"github.com/bft-labs/shiplog/pkg/log"
)

// Plugin extends a Service. Plugins are initialized in registration order
// on Start and shut down in reverse order on Stop.
type Plugin interface {
	Name() string
	Initialize(ctx context.Context, cfg PluginConfig) error
	Shutdown(ctx context.Context) error
}

// Controller is the runtime surface plugins may adjust.
type Controller interface {
	// SetLogLevel changes the log level if the logger supports it.
	SetLogLevel(level string) error
	// SetIntervals replaces the sampling table of every session. Nil
	// restores the defaults.
	SetIntervals(table map[int]time.Duration) error
}

// PluginConfig is passed to Plugin.Initialize.
type PluginConfig struct {
	StateDir string
	Logger   log.Logger
	Control  Controller
}
