// Package qgif implements the .qgif animation container and its streaming
// player.
//
// File layout:
//
//	[0]     uint8   frame_count (1-255)
//	[1:3]   uint16  width, little-endian
//	[3:5]   uint16  height, little-endian
//	[5:..]  uint16  delays[frame_count], milliseconds, little-endian
//	[..]    frames[frame_count], each ceil(width/8)*height bytes,
//	        1 bit per pixel, row-major, MSB first
//
// Width and height must match the device panel; anything else is rejected.
package qgif

import (
	"encoding/binary"
	"errors"
	"fmt"

	"qbit/hal"
)

const (
	HeaderSize = 5
	MaxFrames  = 255

	FrameWidth  = hal.DisplayWidth
	FrameHeight = hal.DisplayHeight
	FrameSize   = (FrameWidth / 8) * FrameHeight
)

// Ext is the filename suffix that marks a file as eligible for playback.
const Ext = ".qgif"

// ErrFormat reports a malformed or mismatched animation header, or a
// truncated frame read.
var ErrFormat = errors.New("qgif: bad format")

// Header is the fixed 5-byte file header.
type Header struct {
	FrameCount uint8
	Width      uint16
	Height     uint16
}

// ParseHeader decodes and validates the header from a byte slice.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: header too short", ErrFormat)
	}
	h := Header{
		FrameCount: data[0],
		Width:      binary.LittleEndian.Uint16(data[1:3]),
		Height:     binary.LittleEndian.Uint16(data[3:5]),
	}
	if err := h.Validate(); err != nil {
		return Header{}, err
	}
	return h, nil
}

// Validate checks the header invariants for this device class.
func (h Header) Validate() error {
	if h.FrameCount == 0 {
		return fmt.Errorf("%w: zero frames", ErrFormat)
	}
	if h.Width != FrameWidth || h.Height != FrameHeight {
		return fmt.Errorf("%w: dimensions %dx%d, want %dx%d",
			ErrFormat, h.Width, h.Height, FrameWidth, FrameHeight)
	}
	return nil
}

// DataOffset returns the byte offset of the first frame payload.
func (h Header) DataOffset() uint32 {
	return HeaderSize + 2*uint32(h.FrameCount)
}

// Animation is a fully in-memory animation, used for the embedded boot and
// idle sequences. It plays through the identical timing and rendering path
// as file-backed streams.
type Animation struct {
	FrameCount uint8
	Width      uint16
	Height     uint16
	Delays     []uint16
	Frames     [][]byte
}
