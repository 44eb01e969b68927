package log

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zerolog.Level
		wantErr bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"INFO", zerolog.InfoLevel, false},
		{"", zerolog.InfoLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{" error ", zerolog.ErrorLevel, false},
		{"trace", zerolog.NoLevel, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestZerologAdapter_WritesFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerologAdapterWithLogger(zerolog.New(&buf))

	l.Error("commit failed", String("session", "abc"), Int("status", 5), Err(errors.New("disk full")))

	out := buf.String()
	for _, want := range []string{`"session":"abc"`, `"status":5`, `"error":"disk full"`, `"message":"commit failed"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output %s missing %s", out, want)
		}
	}
}

func TestZerologAdapter_SetLevel(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	var buf bytes.Buffer
	l := NewZerologAdapterWithLogger(zerolog.New(&buf))

	if err := l.SetLevel("warn"); err != nil {
		t.Fatalf("SetLevel: %v", err)
	}
	l.Info("hidden")
	l.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message written at warn level: %s", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn message missing: %s", out)
	}

	if err := l.SetLevel("verbose"); err == nil {
		t.Error("SetLevel(verbose) should fail")
	}
}
