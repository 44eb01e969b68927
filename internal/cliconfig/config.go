package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bft-labs/shiplog/internal/domain"
	"github.com/bft-labs/shiplog/pkg/log"
)

// Sink kinds.
const (
	SinkSQLite = "sqlite"
	SinkHTTP   = "http"
)

// Config holds CLI configuration for shiplog.
type Config struct {
	ListenAddr string

	SerialPort     string
	SerialBaud     int
	SerialDataBits int
	SerialStopBits int
	SerialParity   string

	Sink        string
	DBPath      string
	SinkURL     string
	AuthKey     string
	HTTPTimeout time.Duration

	MaxLineBytes    int
	ReadBufferBytes int
	StateDir        string
	LogLevel        string
	FlushOnShutdown bool

	Retention       time.Duration
	CleanupInterval time.Duration

	// Intervals overrides the sampling delay per navigational status. Nil
	// keeps the built-in table.
	Intervals map[int]time.Duration
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		ListenAddr:      ":3100",
		SerialBaud:      4800,
		Sink:            SinkSQLite,
		HTTPTimeout:     15 * time.Second,
		MaxLineBytes:    4096,
		ReadBufferBytes: 4096,
		LogLevel:        "info",
		CleanupInterval: time.Hour,
		AuthKey:         os.Getenv("SHIPLOG_AUTH_KEY"),
	}
}

// DefaultStateDir returns $HOME/.shiplog, or "." when the home directory is
// unknown.
func DefaultStateDir() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".shiplog")
	}
	return "."
}

// Validate checks the configuration for errors and sets derived defaults.
// Errors wrap domain.ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.ListenAddr == "" && c.SerialPort == "" {
		return invalid("listen-addr or serial-port is required")
	}
	if c.StateDir == "" {
		c.StateDir = DefaultStateDir()
	}

	c.Sink = strings.ToLower(strings.TrimSpace(c.Sink))
	switch c.Sink {
	case "", SinkSQLite:
		c.Sink = SinkSQLite
		if c.DBPath == "" {
			c.DBPath = filepath.Join(c.StateDir, "shiplog.db")
		}
	case SinkHTTP:
		if c.SinkURL == "" {
			return invalid("sink-url is required for the http sink")
		}
		c.SinkURL = strings.TrimRight(c.SinkURL, "/")
		if c.HTTPTimeout <= 0 {
			return invalid("http timeout must be positive")
		}
	default:
		return invalid(fmt.Sprintf("unknown sink %q: expected sqlite or http", c.Sink))
	}

	if c.MaxLineBytes <= 0 {
		return invalid("max line bytes must be positive")
	}
	if c.ReadBufferBytes <= 0 {
		return invalid("read buffer bytes must be positive")
	}
	if c.Retention < 0 {
		return invalid("retention must not be negative")
	}
	if c.Retention > 0 && c.CleanupInterval <= 0 {
		return invalid("cleanup interval must be positive when retention is set")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return invalid(err.Error())
	}
	if err := validateIntervals(c.Intervals); err != nil {
		return err
	}
	return nil
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, msg)
}

func validateIntervals(table map[int]time.Duration) error {
	for status, d := range table {
		if status < 0 || status > 15 {
			return invalid(fmt.Sprintf("interval status %d out of range 0-15", status))
		}
		if d <= 0 {
			return invalid(fmt.Sprintf("interval for status %d must be positive", status))
		}
	}
	return nil
}

// ParseIntervals converts status -> duration strings, as found in config
// files, env and flags, into an interval table.
func ParseIntervals(raw map[string]string) (map[int]time.Duration, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	table := make(map[int]time.Duration, len(raw))
	for k, v := range raw {
		status, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil {
			return nil, fmt.Errorf("%w: interval status %q is not a number", domain.ErrInvalidConfig, k)
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("%w: interval for status %d: %v", domain.ErrInvalidConfig, status, err)
		}
		table[status] = d
	}
	if err := validateIntervals(table); err != nil {
		return nil, err
	}
	return table, nil
}

// parseIntervalList parses "0=10s,1=2m".
func parseIntervalList(s string) (map[int]time.Duration, error) {
	raw := map[string]string{}
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("%w: interval %q: expected status=duration", domain.ErrInvalidConfig, pair)
		}
		raw[k] = v
	}
	return ParseIntervals(raw)
}

// FormatIntervals renders a table in the "0=10s,1=2m0s" form, ordered by
// status.
func FormatIntervals(table map[int]time.Duration) string {
	keys := make([]int, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%d=%s", k, table[k])
	}
	return strings.Join(parts, ",")
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	if c.AuthKey != "" {
		c.AuthKey = "*****"
	}
	return c
}

// configSetter applies values while respecting flag precedence: a value
// is only applied if the corresponding flag was not set explicitly.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString is setInt for env values.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	s.setInt(flag, i, dst)
	return nil
}

// setBoolFromString accepts the forms of strconv.ParseBool.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = b
	return nil
}

func (s *configSetter) setIntervals(flag string, value map[int]time.Duration, dst *map[int]time.Duration) {
	if len(value) == 0 || s.changed[flag] {
		return
	}
	*dst = value
}
