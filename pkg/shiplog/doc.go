// Package shiplog provides an embeddable vessel logger. It accepts NMEA 0183
// and AIS sentence streams over TCP or a serial port, keeps a current-state
// record per stream and commits snapshots of it at a rate chosen from the
// vessel's AIS navigational status.
//
// # Basic Usage
//
//	cfg := shiplog.DefaultConfig()
//	cfg.ListenAddr = ":3100"
//	cfg.StateDir = "/var/lib/shiplog"
//
//	svc, err := shiplog.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := svc.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	// ... run until shutdown signal ...
//	if err := svc.Stop(); err != nil {
//	    log.Printf("shutdown error: %v", err)
//	}
//
// # Sampling
//
// Each input stream gets its own session. When a batch of lines carries an
// AIS position report, its navigational status selects a delay from the
// interval table (see [Config.Intervals]). The session holds a snapshot of
// its record for that delay and then commits it; requests arriving while a
// snapshot is held are dropped.
//
// # Sinks
//
// Samples go to SQLite ([SinkSQLite], the default) or are POSTed as JSON
// ([SinkHTTP]). [WithSink] plugs in any other ports.RecordSink.
//
// # Lifecycle States
//
// A Service is in one of [StateStopped], [StateStarting], [StateRunning],
// [StateStopping] or [StateCrashed]. Use [Service.Status] to query it.
//
// # Plugins
//
//	svc, err := shiplog.New(cfg,
//	    configwatcher.WithConfigWatcher(configwatcher.DefaultConfig(path)),
//	    shiplog.WithCleanupConfig(shiplog.CleanupConfig{Enabled: true, Retention: 30 * 24 * time.Hour}),
//	)
package shiplog
