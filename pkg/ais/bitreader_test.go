package ais

import (
	"errors"
	"testing"
)

func TestDearmor_Alphabet(t *testing.T) {
	const alphabet = "0123456789:;<=>?@ABCDEFGHIJKLMNOPQRSTUVW`abcdefghijklmnopqrstuvw"
	r, err := Dearmor(alphabet)
	if err != nil {
		t.Fatalf("Dearmor: %v", err)
	}
	if r.Len() != 64*6 {
		t.Fatalf("Len() = %d, want %d", r.Len(), 64*6)
	}
	for i := 0; i < 64; i++ {
		v, err := r.Uint(i*6, 6)
		if err != nil {
			t.Fatalf("Uint(%d, 6): %v", i*6, err)
		}
		if int(v) != i {
			t.Errorf("character %q = %d, want %d", alphabet[i], v, i)
		}
	}
}

func TestDearmor_RejectsOutsideAlphabet(t *testing.T) {
	for _, c := range []string{"X", "_", "x", " ", "/", "~"} {
		if _, err := Dearmor("13" + c); !errors.Is(err, ErrInvalidFrame) {
			t.Errorf("Dearmor(%q) error = %v, want ErrInvalidFrame", "13"+c, err)
		}
	}
}

func TestBitReader_Uint(t *testing.T) {
	r := NewBitReader([]byte{0b1010_1100, 0b0101_0011}, 16)
	tests := []struct {
		offset, width int
		want          uint64
	}{
		{0, 1, 1},
		{0, 4, 0b1010},
		{4, 4, 0b1100},
		{6, 4, 0b0001},
		{0, 16, 0xAC53},
		{15, 1, 1},
	}
	for _, tt := range tests {
		got, err := r.Uint(tt.offset, tt.width)
		if err != nil {
			t.Fatalf("Uint(%d, %d): %v", tt.offset, tt.width, err)
		}
		if got != tt.want {
			t.Errorf("Uint(%d, %d) = %b, want %b", tt.offset, tt.width, got, tt.want)
		}
	}
}

func TestBitReader_OutOfRange(t *testing.T) {
	r := NewBitReader([]byte{0xFF}, 6)
	for _, c := range [][2]int{{4, 4}, {-1, 2}, {0, 0}, {0, 65}, {6, 1}} {
		if _, err := r.Uint(c[0], c[1]); !errors.Is(err, ErrInvalidFrame) {
			t.Errorf("Uint(%d, %d) error = %v, want ErrInvalidFrame", c[0], c[1], err)
		}
	}
	if r.Len() != 6 {
		t.Errorf("Len() = %d, want 6", r.Len())
	}
}
