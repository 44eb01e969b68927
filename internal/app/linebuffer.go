package app

import (
	"bytes"
	"strings"
)

// DefaultMaxLineBytes caps a single buffered line. NMEA allows 82
// characters; the slack covers proprietary and AIS sentences.
const DefaultMaxLineBytes = 4096

// LineBuffer reassembles newline-terminated lines from arbitrary chunks.
// A line that grows past the limit is discarded up to its terminating
// newline.
type LineBuffer struct {
	max        int
	pending    []byte
	discarding bool
	overflows  uint64
}

// NewLineBuffer returns a buffer that keeps lines of at most maxLineBytes.
func NewLineBuffer(maxLineBytes int) *LineBuffer {
	if maxLineBytes <= 0 {
		maxLineBytes = DefaultMaxLineBytes
	}
	return &LineBuffer{max: maxLineBytes}
}

// Feed appends a chunk and returns the lines it completed, trimmed, with
// empty lines removed. The unterminated tail is kept for the next call.
func (b *LineBuffer) Feed(chunk []byte) []string {
	var lines []string
	for len(chunk) > 0 {
		i := bytes.IndexByte(chunk, '\n')
		if i < 0 {
			b.appendPartial(chunk)
			break
		}
		if b.discarding {
			b.discarding = false
		} else {
			b.appendPartial(chunk[:i])
			if !b.discarding {
				if line := strings.TrimSpace(string(b.pending)); line != "" {
					lines = append(lines, line)
				}
			}
			b.discarding = false
		}
		b.pending = b.pending[:0]
		chunk = chunk[i+1:]
	}
	return lines
}

func (b *LineBuffer) appendPartial(p []byte) {
	if b.discarding {
		return
	}
	b.pending = append(b.pending, p...)
	if len(b.pending) > b.max {
		b.pending = b.pending[:0]
		b.discarding = true
		b.overflows++
	}
}

// Flush returns the buffered unterminated line, if any, and resets the
// buffer. It is used when the stream ends without a final newline.
func (b *LineBuffer) Flush() (string, bool) {
	line := strings.TrimSpace(string(b.pending))
	discarded := b.discarding
	b.pending = b.pending[:0]
	b.discarding = false
	if discarded || line == "" {
		return "", false
	}
	return line, true
}

// Pending returns the number of buffered bytes.
func (b *LineBuffer) Pending() int {
	return len(b.pending)
}

// Overflows returns how many lines were discarded for exceeding the limit.
func (b *LineBuffer) Overflows() uint64 {
	return b.overflows
}
