package shiplog

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/shiplog/internal/adapters/sqlite"
	"github.com/bft-labs/shiplog/internal/domain"
	"github.com/bft-labs/shiplog/pkg/log"
)

const (
	rmcLine     = "$GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W*6A\r\n"
	aisUnderWay = "!AIVDM,1,1,,A,13HOI:0P0000VOHLCnHQKwvL05Ip,0*23\r\n"
	aisMoored   = "!AIVDM,1,1,,B,177KQJ5000G?tO`K>RA1wUbN0TKH,0*5C\r\n"
)

type memorySink struct {
	mu      sync.Mutex
	samples []domain.Sample
	err     error
}

func (s *memorySink) Commit(_ context.Context, sample domain.Sample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.samples = append(s.samples, sample)
	return nil
}

func (s *memorySink) Close() error { return nil }

func (s *memorySink) committed() []domain.Sample {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Sample(nil), s.samples...)
}

// blockingSink holds every commit until release is closed.
type blockingSink struct {
	memorySink
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingSink() *blockingSink {
	return &blockingSink{started: make(chan struct{}), release: make(chan struct{})}
}

func (s *blockingSink) Commit(ctx context.Context, sample domain.Sample) error {
	s.once.Do(func() { close(s.started) })
	<-s.release
	return s.memorySink.Commit(ctx, sample)
}

type recordingHandler struct {
	NoopEventHandler
	mu     sync.Mutex
	states []State
	failed int
}

func (h *recordingHandler) OnStateChange(ev StateChangeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.states = append(h.states, ev.Current)
}

func (h *recordingHandler) OnCommitFailed(CommitFailedEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failed++
}

func testConfig(t *testing.T) Config {
	cfg := DefaultConfig()
	cfg.ListenAddr = "127.0.0.1:0"
	cfg.StateDir = t.TempDir()
	cfg.DBPath = filepath.Join(cfg.StateDir, "shiplog.db")
	cfg.Intervals = map[int]time.Duration{0: 20 * time.Millisecond, 5: time.Hour}
	return cfg
}

func startService(t *testing.T, cfg Config, opts ...Option) *Service {
	t.Helper()
	svc, err := New(cfg, opts...)
	require.NoError(t, err)
	require.NoError(t, svc.Start(context.Background()))
	t.Cleanup(func() {
		if svc.Status() == StateRunning {
			_ = svc.Stop()
		}
	})
	return svc
}

func dial(t *testing.T, svc *Service) net.Conn {
	t.Helper()
	conn, err := net.Dial("tcp", svc.Addr().String())
	require.NoError(t, err)
	return conn
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	cfg := testConfig(t)
	cfg.Intervals = map[int]time.Duration{42: time.Second}
	_, err = New(cfg)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	cfg = testConfig(t)
	cfg.Sink = SinkHTTP
	_, err = New(cfg)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestService_CommitsSampleOverTCP(t *testing.T) {
	sink := &memorySink{}
	cfg := testConfig(t)
	svc := startService(t, cfg, WithSink(sink))
	assert.Equal(t, StateRunning, svc.Status())

	conn := dial(t, svc)
	defer conn.Close()
	_, err := conn.Write([]byte(rmcLine + aisUnderWay))
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(sink.committed()) == 1 }, 3*time.Second, 5*time.Millisecond)

	got := sink.committed()[0]
	assert.Equal(t, 0, got.NavStatus)
	assert.Equal(t, uint32(227006760), got.MMSI)
	assert.Equal(t, 20*time.Millisecond, got.Delay)
	require.NotNil(t, got.Entry.Latitude)
	assert.InDelta(t, 48.1173, *got.Entry.Latitude, 1e-6)

	require.Eventually(t, func() bool { return svc.Stats().Committed == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, uint64(1), svc.Stats().Accepted)

	require.NoError(t, svc.Stop())
	assert.Equal(t, StateStopped, svc.Status())

	_, err = os.Stat(filepath.Join(cfg.StateDir, "status.json"))
	assert.NoError(t, err, "status file written")
}

func TestService_FlushOnShutdown(t *testing.T) {
	for _, flush := range []bool{true, false} {
		sink := &memorySink{}
		cfg := testConfig(t)
		cfg.FlushOnShutdown = flush
		svc := startService(t, cfg, WithSink(sink))

		conn := dial(t, svc)
		_, err := conn.Write([]byte(aisMoored))
		require.NoError(t, err)
		require.Eventually(t, func() bool { return svc.Stats().Accepted == 1 }, 3*time.Second, 5*time.Millisecond)

		require.NoError(t, svc.Stop())
		conn.Close()

		want := 0
		if flush {
			want = 1
		}
		assert.Len(t, sink.committed(), want, "flush=%v", flush)
	}
}

func TestService_StopWaitsForInFlightCommit(t *testing.T) {
	sink := newBlockingSink()
	svc := startService(t, testConfig(t), WithSink(sink))

	conn := dial(t, svc)
	defer conn.Close()
	_, err := conn.Write([]byte(rmcLine + aisUnderWay))
	require.NoError(t, err)

	select {
	case <-sink.started:
	case <-time.After(3 * time.Second):
		t.Fatal("commit never started")
	}

	stopped := make(chan error, 1)
	go func() { stopped <- svc.Stop() }()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a commit was in flight")
	case <-time.After(100 * time.Millisecond):
	}

	close(sink.release)
	select {
	case err := <-stopped:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return after the commit finished")
	}
	assert.Len(t, sink.committed(), 1)
	assert.Equal(t, uint64(0), svc.Stats().Failed)
}

func TestService_SinkFailureIsReported(t *testing.T) {
	sink := &memorySink{err: errors.New("disk full")}
	handler := &recordingHandler{}
	svc := startService(t, testConfig(t), WithSink(sink), WithEventHandler(handler))

	conn := dial(t, svc)
	defer conn.Close()
	_, err := conn.Write([]byte(aisUnderWay))
	require.NoError(t, err)

	require.Eventually(t, func() bool { return svc.Stats().Failed == 1 }, 3*time.Second, 5*time.Millisecond)
	handler.mu.Lock()
	assert.Equal(t, 1, handler.failed)
	handler.mu.Unlock()
	assert.Contains(t, svc.Stats().LastError, "disk full")
}

func TestService_LifecycleErrors(t *testing.T) {
	handler := &recordingHandler{}
	svc, err := New(testConfig(t), WithSink(&memorySink{}), WithEventHandler(handler))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Stop(), domain.ErrNotRunning)
	require.NoError(t, svc.Start(context.Background()))
	assert.ErrorIs(t, svc.Start(context.Background()), domain.ErrAlreadyRunning)
	require.NoError(t, svc.Stop())
	assert.ErrorIs(t, svc.Stop(), domain.ErrNotRunning)

	handler.mu.Lock()
	defer handler.mu.Unlock()
	assert.Equal(t, []State{StateStarting, StateRunning, StateStopping, StateStopped}, handler.states)
}

func TestService_ListenFailureCrashes(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := testConfig(t)
	cfg.ListenAddr = ln.Addr().String()
	svc, err := New(cfg, WithSink(&memorySink{}))
	require.NoError(t, err)

	assert.Error(t, svc.Start(context.Background()))
	assert.Equal(t, StateCrashed, svc.Status())
}

func TestService_SQLiteSink(t *testing.T) {
	cfg := testConfig(t)
	svc := startService(t, cfg)

	conn := dial(t, svc)
	_, err := conn.Write([]byte(rmcLine + aisUnderWay))
	require.NoError(t, err)
	require.Eventually(t, func() bool { return svc.Stats().Committed == 1 }, 3*time.Second, 5*time.Millisecond)
	conn.Close()
	require.NoError(t, svc.Stop())

	store, err := sqlite.Open(cfg.DBPath, log.NewNoopLogger())
	require.NoError(t, err)
	defer store.Close()
	rows, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "!AIVDM,1,1,,A,13HOI:0P0000VOHLCnHQKwvL05Ip,0*23", rows[0].Sentence)
	require.NotNil(t, rows[0].Entry.SpeedOverGround)
	assert.InDelta(t, 22.4, *rows[0].Entry.SpeedOverGround, 1e-9)
}

func TestService_SetIntervals(t *testing.T) {
	sink := &memorySink{}
	svc := startService(t, testConfig(t), WithSink(sink))

	assert.ErrorIs(t, svc.SetIntervals(map[int]time.Duration{-1: time.Second}), domain.ErrInvalidConfig)

	// Status 5 held for an hour under the test table; shorten it.
	require.NoError(t, svc.SetIntervals(map[int]time.Duration{5: 10 * time.Millisecond}))

	conn := dial(t, svc)
	defer conn.Close()
	_, err := conn.Write([]byte(aisMoored))
	require.NoError(t, err)
	require.Eventually(t, func() bool { return len(sink.committed()) == 1 }, 3*time.Second, 5*time.Millisecond)
	assert.Equal(t, 10*time.Millisecond, sink.committed()[0].Delay)

	// Status 0 is no longer in the table.
	_, err = conn.Write([]byte(aisUnderWay))
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, sink.committed(), 1)
}

func TestService_SetLogLevel(t *testing.T) {
	svc, err := New(testConfig(t), WithSink(&memorySink{}))
	require.NoError(t, err)
	assert.Error(t, svc.SetLogLevel("debug"), "noop logger cannot change level")

	svc, err = New(testConfig(t), WithSink(&memorySink{}), WithLogger(log.NewZerologAdapterWithWriter(&syncDiscard{})))
	require.NoError(t, err)
	assert.NoError(t, svc.SetLogLevel("info"))
	assert.Error(t, svc.SetLogLevel("loud"))
}

type syncDiscard struct{}

func (syncDiscard) Write(p []byte) (int, error) { return len(p), nil }

func TestIsVersionCompatible(t *testing.T) {
	tests := []struct {
		version, min string
		want         bool
	}{
		{"1.0.0", "1.0.0", true},
		{"1.1.0", "1.0.0", true},
		{"1.0.1", "1.0.2", false},
		{"2.0.0", "1.9.9", true},
		{"0.9.0", "1.0.0", false},
	}
	for _, tt := range tests {
		if got := isVersionCompatible(tt.version, tt.min); got != tt.want {
			t.Errorf("isVersionCompatible(%s, %s) = %v, want %v", tt.version, tt.min, got, tt.want)
		}
	}
	if err := validateModuleVersions(); err != nil {
		t.Fatalf("validateModuleVersions() = %v", err)
	}
}
