package shiplog

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bft-labs/shiplog/internal/adapters/fs"
	httpAdapter "github.com/bft-labs/shiplog/internal/adapters/http"
	"github.com/bft-labs/shiplog/internal/adapters/serialport"
	"github.com/bft-labs/shiplog/internal/adapters/sqlite"
	"github.com/bft-labs/shiplog/internal/adapters/tcp"
	"github.com/bft-labs/shiplog/internal/app"
	"github.com/bft-labs/shiplog/internal/domain"
	"github.com/bft-labs/shiplog/internal/ports"
	"github.com/bft-labs/shiplog/pkg/log"
)

// Service ingests NMEA/AIS streams and commits sampled state records. Use
// New to create one, then Start.
type Service struct {
	config    Config
	opts      options
	logger    ports.Logger
	lifecycle *app.Lifecycle
	emitter   *eventEmitterWrapper
	policy    *app.IntervalPolicy
	tracker   *app.StatusTracker
	plugins   []Plugin

	mu        sync.RWMutex
	sink      ports.RecordSink
	ownsSink  bool
	hub       *app.Hub
	tcpServer *tcp.Server
	cleanup   *cleanupRunner
}

// New creates a Service in StateStopped. It returns an error wrapping
// domain.ErrInvalidConfig if cfg is invalid.
func New(cfg Config, opts ...Option) (*Service, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := validateModuleVersions(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}

	table, err := intervalTable(cfg.Intervals)
	if err != nil {
		return nil, err
	}

	emitter := &eventEmitterWrapper{handler: o.eventHandler}

	var statusRepo ports.StatusRepository
	if cfg.StateDir != "" {
		statusRepo = fs.NewStatusFile(cfg.StateDir)
	}

	return &Service{
		config:    cfg,
		opts:      o,
		logger:    o.logger,
		lifecycle: app.NewLifecycle(o.logger, emitter),
		emitter:   emitter,
		policy:    app.NewIntervalPolicy(table),
		tracker:   app.NewStatusTracker(statusRepo, o.logger, emitter),
		plugins:   o.plugins,
	}, nil
}

// Start opens the sink, binds the inputs and begins ingesting in the
// background. The context bounds the lifetime of the service.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}
	if err := s.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.lifecycle.SetCancel(cancel)

	fail := func(reason string, err error) error {
		cancel()
		s.closeSink()
		_ = s.lifecycle.TransitionTo(app.StateCrashed, reason)
		return err
	}

	if err := s.openSink(); err != nil {
		return fail("sink open failed", err)
	}
	if err := s.tracker.Load(runCtx); err != nil {
		s.logger.Warn("status file unreadable, counters reset", ports.Err(err))
	}

	s.hub = app.NewHub(app.HubConfig{
		MaxLineBytes:    s.config.MaxLineBytes,
		FlushOnShutdown: s.config.FlushOnShutdown,
		CommitTimeout:   s.config.CommitTimeout,
		Policy:          s.policy,
		Sink:            s.sink,
		Logger:          s.logger,
		Events:          s.tracker,
	})

	var source *serialport.Source
	if s.config.SerialPort != "" {
		var err error
		source, err = serialport.NewSource(serialport.Config{
			Path:            s.config.SerialPort,
			Options:         s.config.portOptions(),
			ReadBufferBytes: s.config.ReadBufferBytes,
		}, s.hub, s.logger)
		if err != nil {
			return fail("serial setup failed", err)
		}
	}

	s.tcpServer = nil
	if s.config.ListenAddr != "" {
		srv := tcp.NewServer(tcp.Config{
			Addr:            s.config.ListenAddr,
			ReadBufferBytes: s.config.ReadBufferBytes,
		}, s.hub, s.logger)
		if err := srv.Listen(); err != nil {
			return fail("listen failed", err)
		}
		s.tcpServer = srv
	}

	pluginCfg := PluginConfig{
		StateDir: s.config.StateDir,
		Logger:   s.logger,
		Control:  s,
	}
	for _, p := range s.plugins {
		if err := p.Initialize(runCtx, pluginCfg); err != nil {
			s.logger.Error("plugin initialization failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
			if s.tcpServer != nil {
				s.tcpServer.Close()
			}
			return fail("plugin init failed: "+p.Name(), err)
		}
		s.logger.Info("plugin initialized", ports.String("plugin", p.Name()))
	}

	s.cleanup = nil
	if cc := s.opts.cleanupConfig; cc != nil {
		if pruner, ok := s.sink.(ports.RecordPruner); ok {
			s.cleanup = newCleanupRunner(*cc, pruner, s.logger)
			s.cleanup.start(runCtx)
		} else {
			s.logger.Warn("retention cleanup disabled: sink cannot prune")
		}
	}

	if srv := s.tcpServer; srv != nil {
		s.lifecycle.Go(func() {
			if err := srv.Serve(runCtx); err != nil {
				s.logger.Error("tcp server stopped", ports.Err(err))
				_ = s.lifecycle.TransitionTo(app.StateCrashed, err.Error())
			}
		})
	}
	if source != nil {
		s.lifecycle.Go(func() {
			_ = source.Run(runCtx)
		})
	}

	return s.lifecycle.TransitionTo(app.StateRunning, "inputs started")
}

// Stop closes the inputs, lets every session settle its held sample
// (committed when FlushOnShutdown is set), waits for commits already in
// flight and then closes the sink. It waits up
// to 30 seconds and returns domain.ErrShutdownTimeout if that is exceeded.
func (s *Service) Stop() error {
	s.mu.Lock()
	if !s.lifecycle.CanStop() {
		s.mu.Unlock()
		return domain.ErrNotRunning
	}
	if err := s.lifecycle.TransitionTo(app.StateStopping, "Stop() called"); err != nil {
		s.mu.Unlock()
		return err
	}
	s.lifecycle.Cancel()
	if s.tcpServer != nil {
		s.tcpServer.Close()
	}
	s.mu.Unlock()

	err := s.lifecycle.WaitWithTimeout(app.ShutdownTimeout)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hub != nil {
		s.hub.CloseAll()
	}
	if s.cleanup != nil {
		s.cleanup.stop()
	}

	shutdownCtx := context.Background()
	for i := len(s.plugins) - 1; i >= 0; i-- {
		p := s.plugins[i]
		if shutdownErr := p.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Error("plugin shutdown failed",
				ports.String("plugin", p.Name()),
				ports.Err(shutdownErr))
		} else {
			s.logger.Info("plugin shutdown complete", ports.String("plugin", p.Name()))
		}
	}

	s.closeSink()

	if err != nil {
		_ = s.lifecycle.TransitionTo(app.StateCrashed, "shutdown timeout")
	} else {
		_ = s.lifecycle.TransitionTo(app.StateStopped, "graceful shutdown")
	}
	return err
}

// Status returns the current lifecycle state.
func (s *Service) Status() State {
	return convertState(s.lifecycle.State())
}

// Stats returns the sample counters, including those restored from the
// status file.
func (s *Service) Stats() domain.Status {
	return s.tracker.Status()
}

// Sessions returns the number of open input sessions.
func (s *Service) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.hub == nil {
		return 0
	}
	return s.hub.Len()
}

// Addr returns the TCP listener address, or nil if not listening.
func (s *Service) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tcpServer == nil {
		return nil
	}
	return s.tcpServer.Addr()
}

// SetLogLevel implements Controller.
func (s *Service) SetLogLevel(level string) error {
	ls, ok := s.logger.(log.LevelSetter)
	if !ok {
		return errors.New("logger does not support level changes")
	}
	if err := ls.SetLevel(level); err != nil {
		return err
	}
	s.logger.Info("log level changed", ports.String("level", level))
	return nil
}

// SetIntervals implements Controller. Sessions pick up the new table on
// their next AIS sentence; held samples keep their delay.
func (s *Service) SetIntervals(table map[int]time.Duration) error {
	t, err := intervalTable(table)
	if err != nil {
		return err
	}
	s.policy.Replace(t)
	s.logger.Info("sampling intervals changed", ports.Int("statuses", len(s.policy.Table())))
	return nil
}

// openSink sets s.sink from the options or the configuration.
func (s *Service) openSink() error {
	if s.opts.sink != nil {
		s.sink, s.ownsSink = s.opts.sink, false
		return nil
	}
	switch strings.ToLower(s.config.Sink) {
	case SinkHTTP:
		s.sink = httpAdapter.NewSink(s.opts.httpClient, s.config.SinkURL, s.config.AuthKey, s.logger)
	default:
		store, err := sqlite.Open(s.config.DBPath, s.logger)
		if err != nil {
			return fmt.Errorf("open sqlite sink: %w", err)
		}
		s.sink = store
	}
	s.ownsSink = true
	return nil
}

func (s *Service) closeSink() {
	if s.sink == nil || !s.ownsSink {
		return
	}
	if err := s.sink.Close(); err != nil {
		s.logger.Warn("sink close failed", ports.Err(err))
	}
	s.sink = nil
}
