package configwatcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/shiplog/pkg/log"
	"github.com/bft-labs/shiplog/pkg/shiplog"
)

type recordingControl struct {
	mu        sync.Mutex
	levels    []string
	intervals []map[int]time.Duration
}

func (c *recordingControl) SetLogLevel(level string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.levels = append(c.levels, level)
	return nil
}

func (c *recordingControl) SetIntervals(table map[int]time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.intervals = append(c.intervals, table)
	return nil
}

func (c *recordingControl) snapshot() ([]string, []map[int]time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.levels...), append([]map[int]time.Duration(nil), c.intervals...)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func startPlugin(t *testing.T, cfg Config, ctl shiplog.Controller) *Plugin {
	t.Helper()
	p := New(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		_ = p.Shutdown(context.Background())
	})
	if err := p.Initialize(ctx, shiplog.PluginConfig{Logger: log.NewNoopLogger(), Control: ctl}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return p
}

func TestPlugin_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `log_level = "info"`)

	ctl := &recordingControl{}
	p := startPlugin(t, Config{Path: path, DebounceDelay: 10 * time.Millisecond}, ctl)

	writeFile(t, path, "log_level = \"debug\"\n[intervals]\n0 = \"5s\"\n")
	waitFor(t, func() bool { return p.Reloads() >= 1 })

	levels, intervals := ctl.snapshot()
	if levels[len(levels)-1] != "debug" {
		t.Errorf("levels = %v, want last debug", levels)
	}
	last := intervals[len(intervals)-1]
	if len(last) != 1 || last[0] != 5*time.Second {
		t.Errorf("intervals = %v, want {0:5s}", last)
	}
}

func TestPlugin_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	writeFile(t, path, `log_level = "info"`)

	ctl := &recordingControl{}
	p := startPlugin(t, Config{Path: path, DebounceDelay: 10 * time.Millisecond}, ctl)

	writeFile(t, filepath.Join(dir, "other.toml"), `log_level = "debug"`)
	time.Sleep(200 * time.Millisecond)

	if n := p.Reloads(); n != 0 {
		t.Fatalf("Reloads() = %d, want 0", n)
	}
}

func TestPlugin_RespectsChangedFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "log_level: info\n")

	ctl := &recordingControl{}
	p := startPlugin(t, Config{
		Path:          path,
		DebounceDelay: 10 * time.Millisecond,
		Changed:       map[string]bool{"log-level": true, "interval": true},
	}, ctl)

	writeFile(t, path, "log_level: error\nintervals:\n  \"1\": 1m\n")
	waitFor(t, func() bool { return p.Reloads() >= 1 })

	levels, intervals := ctl.snapshot()
	if len(levels) != 0 || len(intervals) != 0 {
		t.Fatalf("flag-controlled keys reloaded: levels=%v intervals=%v", levels, intervals)
	}
}

func TestPlugin_InvalidFileKeepsRunning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `log_level = "info"`)

	ctl := &recordingControl{}
	p := startPlugin(t, Config{Path: path, DebounceDelay: 50 * time.Millisecond}, ctl)

	writeFile(t, path, `log_level = `)
	time.Sleep(200 * time.Millisecond)
	if n := p.Reloads(); n != 0 {
		t.Fatalf("Reloads() = %d after invalid file, want 0", n)
	}

	writeFile(t, path, `log_level = "warn"`)
	waitFor(t, func() bool { return p.Reloads() >= 1 })
}

func TestPlugin_DisabledWithoutPath(t *testing.T) {
	p := New(Config{})
	if err := p.Initialize(context.Background(), shiplog.PluginConfig{}); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
}

func TestPlugin_Name(t *testing.T) {
	if got := New(DefaultConfig("x")).Name(); got != "configwatcher" {
		t.Errorf("Name() = %q", got)
	}
}
