package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FileConfig mirrors Config with durations as strings. It decodes from TOML
// or YAML.
type FileConfig struct {
	ListenAddr      string            `toml:"listen_addr" yaml:"listen_addr"`
	SerialPort      string            `toml:"serial_port" yaml:"serial_port"`
	SerialBaud      int               `toml:"serial_baud" yaml:"serial_baud"`
	SerialDataBits  int               `toml:"serial_data_bits" yaml:"serial_data_bits"`
	SerialStopBits  int               `toml:"serial_stop_bits" yaml:"serial_stop_bits"`
	SerialParity    string            `toml:"serial_parity" yaml:"serial_parity"`
	Sink            string            `toml:"sink" yaml:"sink"`
	DBPath          string            `toml:"db_path" yaml:"db_path"`
	SinkURL         string            `toml:"sink_url" yaml:"sink_url"`
	AuthKey         string            `toml:"auth_key" yaml:"auth_key"`
	HTTPTimeout     string            `toml:"http_timeout" yaml:"http_timeout"`
	MaxLineBytes    int               `toml:"max_line_bytes" yaml:"max_line_bytes"`
	ReadBufferBytes int               `toml:"read_buffer_bytes" yaml:"read_buffer_bytes"`
	StateDir        string            `toml:"state_dir" yaml:"state_dir"`
	LogLevel        string            `toml:"log_level" yaml:"log_level"`
	FlushOnShutdown *bool             `toml:"flush_on_shutdown" yaml:"flush_on_shutdown"`
	Retention       string            `toml:"retention" yaml:"retention"`
	CleanupInterval string            `toml:"cleanup_interval" yaml:"cleanup_interval"`
	Intervals       map[string]string `toml:"intervals" yaml:"intervals"`
}

// LoadFileConfig reads a config file. Paths ending in .yaml or .yml are
// parsed as YAML, everything else as TOML.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &fc)
	default:
		err = toml.Unmarshal(b, &fc)
	}
	if err != nil {
		return fc, fmt.Errorf("parse %s: %w", path, err)
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.shiplog/config.toml, or "" when the home
// directory is unknown.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".shiplog", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies fc to cfg, skipping keys whose flag was set.
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("listen-addr", fc.ListenAddr, &cfg.ListenAddr)
	s.setString("serial-port", fc.SerialPort, &cfg.SerialPort)
	s.setString("serial-parity", fc.SerialParity, &cfg.SerialParity)
	s.setString("sink", fc.Sink, &cfg.Sink)
	s.setString("db-path", fc.DBPath, &cfg.DBPath)
	s.setString("sink-url", fc.SinkURL, &cfg.SinkURL)
	s.setString("auth-key", fc.AuthKey, &cfg.AuthKey)
	s.setString("state-dir", fc.StateDir, &cfg.StateDir)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	s.setInt("serial-baud", fc.SerialBaud, &cfg.SerialBaud)
	s.setInt("serial-data-bits", fc.SerialDataBits, &cfg.SerialDataBits)
	s.setInt("serial-stop-bits", fc.SerialStopBits, &cfg.SerialStopBits)
	s.setInt("max-line-bytes", fc.MaxLineBytes, &cfg.MaxLineBytes)
	s.setInt("read-buffer-bytes", fc.ReadBufferBytes, &cfg.ReadBufferBytes)

	if err := s.setDuration("timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("retention", fc.Retention, &cfg.Retention); err != nil {
		return err
	}
	if err := s.setDuration("cleanup-interval", fc.CleanupInterval, &cfg.CleanupInterval); err != nil {
		return err
	}

	s.setBool("flush-on-shutdown", fc.FlushOnShutdown, &cfg.FlushOnShutdown)

	intervals, err := ParseIntervals(fc.Intervals)
	if err != nil {
		return err
	}
	s.setIntervals("interval", intervals, &cfg.Intervals)
	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
