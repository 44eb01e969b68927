package nmea

import (
	"fmt"
	"strings"

	"github.com/bft-labs/shiplog/internal/domain"
)

// Sentence is one tokenized NMEA line.
type Sentence struct {
	// Raw is the trimmed input line.
	Raw string

	// Talker is the two-character talker identifier, e.g. "GP" or "II".
	Talker string

	// Type is the three-character sentence type, e.g. "RMC".
	Type string

	// Fields is the comma-split body with the checksum removed. Fields[0]
	// is the address field (talker and type) so indices match the NMEA
	// field numbering.
	Fields []string
}

// Field returns field i, or "" if the sentence is shorter.
func (s Sentence) Field(i int) string {
	if i < 0 || i >= len(s.Fields) {
		return ""
	}
	return s.Fields[i]
}

// Split breaks a blob received from the wire into lines. Trailing carriage
// returns are trimmed and empty lines dropped.
func Split(blob string) []string {
	raw := strings.Split(blob, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimRight(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}

// Parse tokenizes a line starting with '$'. Anything after '*' is treated as
// the checksum and discarded.
func Parse(line string) (Sentence, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "$") {
		return Sentence{}, fmt.Errorf("%w: missing '$'", domain.ErrMalformedSentence)
	}
	body := line[1:]
	if star := strings.IndexByte(body, '*'); star >= 0 {
		body = body[:star]
	}
	fields := strings.Split(body, ",")
	addr := fields[0]
	if len(addr) < 5 {
		return Sentence{}, fmt.Errorf("%w: short address %q", domain.ErrMalformedSentence, addr)
	}
	return Sentence{
		Raw:    line,
		Talker: addr[:2],
		Type:   strings.ToUpper(addr[2:5]),
		Fields: fields,
	}, nil
}

// Classify is Parse for callers that only care whether the line is an NMEA
// sentence. Lines that do not start with '$' are not an error.
func Classify(line string) (Sentence, bool) {
	s, err := Parse(line)
	if err != nil {
		return Sentence{}, false
	}
	return s, true
}
