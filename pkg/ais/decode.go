package ais

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ArmorPrefix marks an AIS sentence received from another vessel.
const ArmorPrefix = "!AIVDM"

var (
	// ErrInvalidFrame is returned for sentences that cannot be decoded.
	ErrInvalidFrame = errors.New("ais: invalid frame")

	// ErrNotApplicable is returned for well-formed sentences that carry no
	// navigational status: multi-fragment messages and message types other
	// than 1, 2 and 3.
	ErrNotApplicable = errors.New("ais: not applicable")
)

// Bit layout of a class A position report.
const (
	typeOffset   = 0
	typeWidth    = 6
	mmsiOffset   = 8
	mmsiWidth    = 30
	statusOffset = 38
	statusWidth  = 4
)

// Frame is the decode result of one single-fragment position report.
type Frame struct {
	TotalSentences     int
	SentenceNumber     int
	Channel            string
	Payload            string
	MessageType        int
	MMSI               uint32
	NavigationalStatus NavStatus
}

// FirstSentence returns the first line starting with !AIVDM. Later AIS lines
// in the same batch are ignored.
func FirstSentence(lines []string) (string, bool) {
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, ArmorPrefix) {
			return line, true
		}
	}
	return "", false
}

// Decode extracts the navigational status from an !AIVDM sentence.
func Decode(sentence string) (Frame, error) {
	fields := strings.Split(strings.TrimSpace(sentence), ",")
	if len(fields) < 7 {
		return Frame{}, fmt.Errorf("%w: %d fields, want at least 7", ErrInvalidFrame, len(fields))
	}
	if fields[0] != ArmorPrefix {
		return Frame{}, fmt.Errorf("%w: unexpected header %q", ErrInvalidFrame, fields[0])
	}

	total, err := strconv.Atoi(fields[1])
	if err != nil {
		return Frame{}, fmt.Errorf("%w: fragment count %q", ErrInvalidFrame, fields[1])
	}
	number, err := strconv.Atoi(fields[2])
	if err != nil {
		return Frame{}, fmt.Errorf("%w: fragment number %q", ErrInvalidFrame, fields[2])
	}
	if total > 1 || number > 1 {
		return Frame{}, fmt.Errorf("%w: fragment %d of %d", ErrNotApplicable, number, total)
	}

	frame := Frame{
		TotalSentences: total,
		SentenceNumber: number,
		Channel:        fields[4],
		Payload:        fields[5],
	}

	r, err := Dearmor(frame.Payload)
	if err != nil {
		return Frame{}, err
	}
	msgType, err := r.Uint(typeOffset, typeWidth)
	if err != nil {
		return Frame{}, err
	}
	frame.MessageType = int(msgType)
	if msgType < 1 || msgType > 3 {
		return Frame{}, fmt.Errorf("%w: message type %d", ErrNotApplicable, msgType)
	}

	status, err := r.Uint(statusOffset, statusWidth)
	if err != nil {
		return Frame{}, err
	}
	frame.NavigationalStatus = NavStatus(status)

	mmsi, err := r.Uint(mmsiOffset, mmsiWidth)
	if err != nil {
		return Frame{}, err
	}
	frame.MMSI = uint32(mmsi)

	return frame, nil
}

// NavigationalStatus decodes sentence and reports its status, or false when
// the sentence is invalid or not applicable.
func NavigationalStatus(sentence string) (NavStatus, bool) {
	frame, err := Decode(sentence)
	if err != nil {
		return 0, false
	}
	return frame.NavigationalStatus, true
}
