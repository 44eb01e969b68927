// Package http delivers committed samples to a webhook.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"time"

	"github.com/bft-labs/shiplog/internal/domain"
	"github.com/bft-labs/shiplog/internal/ports"
)

// maxErrorBody limits how much of a failed response is quoted in errors.
const maxErrorBody = 512

// Record is the JSON document posted for each committed sample.
type Record struct {
	domain.LogEntry
	SessionID   string    `json:"session_id"`
	RecordedAt  time.Time `json:"recorded_at"`
	NavStatus   int       `json:"nav_status"`
	MessageType int       `json:"message_type"`
	MMSI        uint32    `json:"mmsi"`
	DelayMillis int64     `json:"sampling_delay_ms"`
	Sentence    string    `json:"sentence"`
}

// NewRecord flattens a sample into its wire form.
func NewRecord(sample domain.Sample, recordedAt time.Time) Record {
	return Record{
		LogEntry:    sample.Entry,
		SessionID:   sample.SessionID,
		RecordedAt:  recordedAt.UTC(),
		NavStatus:   sample.NavStatus,
		MessageType: sample.MessageType,
		MMSI:        sample.MMSI,
		DelayMillis: sample.Delay.Milliseconds(),
		Sentence:    sample.Trigger,
	}
}

// Sink implements ports.RecordSink by POSTing each sample as JSON.
type Sink struct {
	client  ports.HTTPClient
	url     string
	authKey string
	logger  ports.Logger
	now     func() time.Time
}

// NewSink creates a webhook sink posting to url. An empty authKey sends no
// Authorization header.
func NewSink(client ports.HTTPClient, url, authKey string, logger ports.Logger) *Sink {
	return &Sink{
		client:  client,
		url:     url,
		authKey: authKey,
		logger:  logger,
		now:     time.Now,
	}
}

// Commit posts the sample. Any non-2xx response is an error.
func (s *Sink) Commit(ctx context.Context, sample domain.Sample) error {
	body, err := json.Marshal(NewRecord(sample, s.now()))
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "shiplog ("+runtime.GOOS+"/"+runtime.GOARCH+")")
	req.Header.Set("X-Shiplog-Session", sample.SessionID)
	if s.authKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.authKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: webhook returned %d: %s", domain.ErrSinkFailure, resp.StatusCode, bytes.TrimSpace(respBody))
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	s.logger.Debug("record delivered",
		ports.String("url", s.url),
		ports.Int("status", resp.StatusCode),
		ports.Int("bytes", len(body)),
	)
	return nil
}

// Close is a no-op; the HTTP client is owned by the caller.
func (s *Sink) Close() error {
	return nil
}
