package ais

import "fmt"

// BitReader extracts big-endian bit fields from a de-armored payload.
type BitReader struct {
	buf  []byte
	bits int
}

// NewBitReader wraps buf, of which the first bits bits are significant.
func NewBitReader(buf []byte, bits int) *BitReader {
	if bits > len(buf)*8 {
		bits = len(buf) * 8
	}
	return &BitReader{buf: buf, bits: bits}
}

// Dearmor unpacks an armored payload into a BitReader. Characters outside
// the armor alphabet are rejected with ErrInvalidFrame.
func Dearmor(payload string) (*BitReader, error) {
	buf := make([]byte, (len(payload)*6+7)/8)
	pos := 0
	for i := 0; i < len(payload); i++ {
		v, ok := sixBit(payload[i])
		if !ok {
			return nil, fmt.Errorf("%w: invalid armor character %q at %d", ErrInvalidFrame, payload[i], i)
		}
		for b := 5; b >= 0; b-- {
			if v>>uint(b)&1 == 1 {
				buf[pos>>3] |= 0x80 >> uint(pos&7)
			}
			pos++
		}
	}
	return &BitReader{buf: buf, bits: pos}, nil
}

// sixBit maps an armor character to its 6-bit value: '0'..'W' are 0..39
// and '`'..'w' are 40..63.
func sixBit(c byte) (byte, bool) {
	switch {
	case c >= 48 && c <= 87:
		return c - 48, true
	case c >= 96 && c <= 119:
		return c - 56, true
	default:
		return 0, false
	}
}

// Len returns the number of significant bits.
func (r *BitReader) Len() int {
	return r.bits
}

// Uint returns the unsigned value of width bits starting at offset.
func (r *BitReader) Uint(offset, width int) (uint64, error) {
	if offset < 0 || width < 1 || width > 64 {
		return 0, fmt.Errorf("%w: bad field [%d,+%d)", ErrInvalidFrame, offset, width)
	}
	if offset+width > r.bits {
		return 0, fmt.Errorf("%w: field [%d,%d) beyond %d-bit payload", ErrInvalidFrame, offset, offset+width, r.bits)
	}
	var v uint64
	for i := offset; i < offset+width; i++ {
		v <<= 1
		if r.buf[i>>3]&(0x80>>uint(i&7)) != 0 {
			v |= 1
		}
	}
	return v, nil
}
