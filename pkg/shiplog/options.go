package shiplog

import (
	"github.com/bft-labs/shiplog/internal/ports"
	"github.com/bft-labs/shiplog/pkg/log"
)

// Option configures optional behavior of a Service.
type Option func(*options)

type options struct {
	httpClient    ports.HTTPClient
	logger        log.Logger
	eventHandler  EventHandler
	sink          ports.RecordSink
	plugins       []Plugin
	cleanupConfig *CleanupConfig
}

func defaultOptions() options {
	return options{logger: log.NewNoopLogger()}
}

// WithHTTPClient sets the client used by the http sink. By default a client
// with Config.HTTPTimeout is used.
func WithHTTPClient(client ports.HTTPClient) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger sets the logger. If it also implements log.LevelSetter, the
// level can be changed at runtime. Without it nothing is logged.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEventHandler sets a handler for service events.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithSink commits samples to sink instead of the one selected by
// Config.Sink. The service does not close it. If sink also implements
// ports.RecordPruner it is used for retention cleanup.
func WithSink(sink ports.RecordSink) Option {
	return func(o *options) {
		o.sink = sink
	}
}

// WithPlugin registers a plugin.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}
