package qgif

import (
	"encoding/binary"
	"errors"
	"testing"
)

func header(frames uint8, w, h uint16) []byte {
	b := make([]byte, HeaderSize)
	b[0] = frames
	binary.LittleEndian.PutUint16(b[1:3], w)
	binary.LittleEndian.PutUint16(b[3:5], h)
	return b
}

func TestParseHeader(t *testing.T) {
	h, err := ParseHeader(header(3, 128, 64))
	if err != nil {
		t.Fatalf("ParseHeader() error = %v", err)
	}
	if h.FrameCount != 3 || h.Width != 128 || h.Height != 64 {
		t.Fatalf("ParseHeader() = %+v", h)
	}
	if got := h.DataOffset(); got != 5+2*3 {
		t.Fatalf("DataOffset() = %d, want 11", got)
	}
}

func TestParseHeaderRejects(t *testing.T) {
	cases := []struct {
		name string
		data []byte
	}{
		{"short", []byte{1, 2}},
		{"zero frames", header(0, 128, 64)},
		{"wrong width", header(1, 64, 64)},
		{"wrong height", header(1, 128, 32)},
	}
	for _, tc := range cases {
		if _, err := ParseHeader(tc.data); !errors.Is(err, ErrFormat) {
			t.Errorf("%s: ParseHeader() error = %v, want ErrFormat", tc.name, err)
		}
	}
}

func TestEmbeddedAnimationsWellFormed(t *testing.T) {
	for _, a := range []*Animation{BootAnimation(), IdleAnimation()} {
		if a.FrameCount == 0 {
			t.Fatalf("FrameCount = 0")
		}
		if int(a.FrameCount) != len(a.Frames) || int(a.FrameCount) != len(a.Delays) {
			t.Fatalf("frame/delay count mismatch: %d frames=%d delays=%d",
				a.FrameCount, len(a.Frames), len(a.Delays))
		}
		for i, f := range a.Frames {
			if len(f) != FrameSize {
				t.Fatalf("frame %d size = %d, want %d", i, len(f), FrameSize)
			}
		}
	}
}
