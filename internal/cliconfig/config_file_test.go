package cliconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestApplyFileConfig(t *testing.T) {
	trueVal := true

	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
		wantErr    bool
	}{
		{
			name: "applies all valid config values",
			fileConfig: FileConfig{
				ListenAddr:      ":4000",
				SerialPort:      "/dev/ttyUSB0",
				SerialBaud:      38400,
				Sink:            "http",
				SinkURL:         "https://logbook.example",
				HTTPTimeout:     "5s",
				Retention:       "720h",
				FlushOnShutdown: &trueVal,
				Intervals:       map[string]string{"0": "5s"},
			},
			changed: map[string]bool{},
			expected: Config{
				ListenAddr:      ":4000",
				SerialPort:      "/dev/ttyUSB0",
				SerialBaud:      38400,
				Sink:            "http",
				SinkURL:         "https://logbook.example",
				HTTPTimeout:     5 * time.Second,
				Retention:       720 * time.Hour,
				FlushOnShutdown: true,
				Intervals:       map[int]time.Duration{0: 5 * time.Second},
			},
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				ListenAddr: ":4000",
				LogLevel:   "debug",
				Intervals:  map[string]string{"1": "1m"},
			},
			changed: map[string]bool{"listen-addr": true, "interval": true},
			initial: Config{
				ListenAddr: ":5000",
				Intervals:  map[int]time.Duration{1: time.Hour},
			},
			expected: Config{
				ListenAddr: ":5000",
				LogLevel:   "debug",
				Intervals:  map[int]time.Duration{1: time.Hour},
			},
		},
		{
			name:       "invalid duration",
			fileConfig: FileConfig{Retention: "a month"},
			changed:    map[string]bool{},
			wantErr:    true,
		},
		{
			name:       "invalid interval",
			fileConfig: FileConfig{Intervals: map[string]string{"x": "1s"}},
			changed:    map[string]bool{},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ApplyFileConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if diff := cmp.Diff(tt.expected, cfg); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadFileConfig_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
listen_addr = ":3200"
sink = "sqlite"
db_path = "/data/shiplog.db"
log_level = "debug"
flush_on_shutdown = true

[intervals]
0 = "5s"
5 = "10m"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}
	if fc.ListenAddr != ":3200" || fc.DBPath != "/data/shiplog.db" || fc.LogLevel != "debug" {
		t.Errorf("unexpected file config: %+v", fc)
	}
	if fc.FlushOnShutdown == nil || !*fc.FlushOnShutdown {
		t.Errorf("FlushOnShutdown = %v", fc.FlushOnShutdown)
	}
	if diff := cmp.Diff(map[string]string{"0": "5s", "5": "10m"}, fc.Intervals); diff != "" {
		t.Errorf("intervals mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFileConfig_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shiplog.yaml")
	content := `
serial_port: /dev/ttyAMA0
serial_baud: 38400
serial_parity: none
sink: http
sink_url: https://logbook.example
intervals:
  "1": 3m
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}
	if fc.SerialPort != "/dev/ttyAMA0" || fc.SerialBaud != 38400 || fc.Sink != "http" {
		t.Errorf("unexpected file config: %+v", fc)
	}
	if fc.Intervals["1"] != "3m" {
		t.Errorf("intervals = %v", fc.Intervals)
	}
}

func TestLoadFileConfig_Errors(t *testing.T) {
	if _, err := LoadFileConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("missing file: expected error")
	}

	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("listen_addr = "), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFileConfig(path); err == nil {
		t.Error("malformed toml: expected error")
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	if !FileExists(dir) {
		t.Error("FileExists(dir) = false")
	}
	if FileExists(filepath.Join(dir, "nope")) {
		t.Error("FileExists(missing) = true")
	}
}
