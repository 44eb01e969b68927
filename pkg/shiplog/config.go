package shiplog

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/bft-labs/shiplog/internal/adapters/serialport"
	"github.com/bft-labs/shiplog/internal/app"
	"github.com/bft-labs/shiplog/internal/domain"
	"github.com/bft-labs/shiplog/pkg/ais"
)

// Sink kinds.
const (
	SinkSQLite = "sqlite"
	SinkHTTP   = "http"
)

// Config holds the configuration of a Service. Use DefaultConfig for
// defaults.
type Config struct {
	// ListenAddr is the TCP address accepting NMEA streams. Empty disables
	// the listener.
	ListenAddr string

	// SerialPort is a device path read as one additional stream. Empty
	// disables serial input.
	SerialPort     string
	SerialBaud     int
	SerialDataBits int
	SerialStopBits int
	SerialParity   string

	// Sink selects where samples are committed: SinkSQLite (DBPath) or
	// SinkHTTP (SinkURL). Ignored when WithSink is used.
	Sink        string
	DBPath      string
	SinkURL     string
	AuthKey     string
	HTTPTimeout time.Duration

	MaxLineBytes    int
	ReadBufferBytes int

	// StateDir holds status.json. Empty disables the status file.
	StateDir string

	// FlushOnShutdown commits held samples on Stop instead of dropping
	// them.
	FlushOnShutdown bool
	CommitTimeout   time.Duration

	// Intervals replaces the default status -> delay table. Statuses not
	// listed are never sampled.
	Intervals map[int]time.Duration
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	c := Config{}
	c.SetDefaults()
	return c
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Sink == "" {
		c.Sink = SinkSQLite
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 15 * time.Second
	}
	if c.MaxLineBytes <= 0 {
		c.MaxLineBytes = app.DefaultMaxLineBytes
	}
	if c.ReadBufferBytes <= 0 {
		c.ReadBufferBytes = 4096
	}
	if c.CommitTimeout <= 0 {
		c.CommitTimeout = app.DefaultCommitTimeout
	}
	if c.DBPath == "" && c.StateDir != "" {
		c.DBPath = filepath.Join(c.StateDir, "shiplog.db")
	}
}

// Validate checks the configuration. Errors wrap domain.ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.ListenAddr == "" && c.SerialPort == "" {
		return invalid("no input: set ListenAddr or SerialPort")
	}
	if c.SerialPort != "" {
		if _, err := c.portOptions().Normalize(); err != nil {
			return invalid(err.Error())
		}
	}
	switch strings.ToLower(c.Sink) {
	case SinkSQLite:
		if c.DBPath == "" {
			return invalid("DBPath is required for the sqlite sink")
		}
	case SinkHTTP:
		if c.SinkURL == "" {
			return invalid("SinkURL is required for the http sink")
		}
	default:
		return invalid(fmt.Sprintf("unknown sink %q", c.Sink))
	}
	if _, err := intervalTable(c.Intervals); err != nil {
		return err
	}
	return nil
}

func (c *Config) portOptions() serialport.PortOptions {
	return serialport.PortOptions{
		BaudRate: c.SerialBaud,
		DataBits: c.SerialDataBits,
		StopBits: c.SerialStopBits,
		Parity:   c.SerialParity,
	}
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, msg)
}

// intervalTable converts a status table to the policy's key type. Nil stays
// nil so the policy falls back to its defaults.
func intervalTable(in map[int]time.Duration) (map[ais.NavStatus]time.Duration, error) {
	if in == nil {
		return nil, nil
	}
	out := make(map[ais.NavStatus]time.Duration, len(in))
	for k, v := range in {
		if k < 0 || k > int(ais.Undefined) {
			return nil, invalid(fmt.Sprintf("interval status %d out of range", k))
		}
		if v <= 0 {
			return nil, invalid(fmt.Sprintf("interval for status %d must be positive", k))
		}
		out[ais.NavStatus(k)] = v
	}
	return out, nil
}
