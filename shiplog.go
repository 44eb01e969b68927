// Package shiplog records a vessel's navigation state from its NMEA 0183 and
// AIS feed.
//
// Example usage:
//
//	cfg := shiplog.DefaultConfig()
//	cfg.ListenAddr = ":3100"
//	cfg.StateDir = "/var/lib/shiplog"
//	if err := shiplog.Run(ctx, cfg); err != nil {
//	    log.Fatal(err)
//	}
//
// For Start/Stop control, events and plugins use pkg/shiplog directly.
package shiplog

import (
	"context"

	"github.com/bft-labs/shiplog/pkg/shiplog"
)

// Config is the service configuration.
type Config = shiplog.Config

// Option configures optional behavior of the service.
type Option = shiplog.Option

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return shiplog.DefaultConfig()
}

// Run starts the service and blocks until ctx is cancelled, then stops it
// gracefully.
func Run(ctx context.Context, cfg Config, opts ...Option) error {
	svc, err := shiplog.New(cfg, opts...)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return svc.Stop()
}
