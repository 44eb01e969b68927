package nmea

import (
	"sort"
	"strings"

	"github.com/bft-labs/shiplog/internal/domain"
)

// Handler applies a sentence's fields to the entry.
type Handler func(entry *domain.LogEntry, s Sentence)

// Registry maps sentence types to handlers. Register during setup; after
// that a Registry is read-only and safe to share between sessions.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// DefaultRegistry returns a registry with every built-in sentence handler.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("RMC", applyRMC)
	r.Register("VTG", applyVTG)
	r.Register("VHW", applyVHW)
	r.Register("HDT", applyHDT)
	r.Register("GLL", applyGLL)
	r.Register("GGA", applyGGA)
	r.Register("ZDA", applyZDA)
	r.Register("VBW", applyVBW)
	r.Register("MWV", applyMWV)
	r.Register("MDA", applyMDA)
	r.Register("MTW", applyMTW)
	r.Register("MWD", applyMWD)
	r.Register("RSA", applyRSA)
	r.Register("RPM", applyRPM)
	return r
}

// Register adds or replaces the handler for a sentence type.
func (r *Registry) Register(sentenceType string, h Handler) {
	r.handlers[strings.ToUpper(sentenceType)] = h
}

// Apply runs the handler for s against the entry. It reports false when no
// handler exists for the sentence type.
func (r *Registry) Apply(entry *domain.LogEntry, s Sentence) bool {
	h, ok := r.handlers[s.Type]
	if !ok {
		return false
	}
	h(entry, s)
	return true
}

// ApplyLines applies every NMEA sentence among lines and returns how many
// had a handler. Non-NMEA lines and unknown types are skipped.
func (r *Registry) ApplyLines(entry *domain.LogEntry, lines []string) int {
	n := 0
	for _, line := range lines {
		s, ok := Classify(line)
		if !ok {
			continue
		}
		if r.Apply(entry, s) {
			n++
		}
	}
	return n
}

// Types returns the registered sentence types in sorted order.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
