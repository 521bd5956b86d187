// Package oled owns the 128x64 monochrome page buffer and every way pixels
// get into it: the animation frame transform, tinyfont text screens, and
// column-wise bitmap drawing with circular scroll.
package oled

import (
	"image/color"
	"sync"

	"qbit/hal"
)

// Display geometry, re-exported for drawing code.
const (
	Width  = hal.DisplayWidth
	Height = hal.DisplayHeight
	Pages  = hal.DisplayPages
)

// ScrollGapPx is the blank gap inserted between repeats when content wider
// than the display scrolls circularly.
const ScrollGapPx = 64

// Buffer is the single physical display buffer in SSD1306 page layout:
// Pages rows of Width bytes, each byte one 8-pixel vertical strip, LSB on
// top.
//
// The display task is the only writer. The mutex exists solely so that
// Display and Snapshot are atomic with respect to external readers
// (diagnostics); drawing itself is unlocked single-writer hot path.
type Buffer struct {
	mu   sync.Mutex
	buf  [hal.DisplayBytes]byte
	sink hal.FrameSink
}

func New(sink hal.FrameSink) *Buffer {
	return &Buffer{sink: sink}
}

// ClearBuffer zeroes the draw buffer without flushing.
func (b *Buffer) ClearBuffer() {
	for i := range b.buf {
		b.buf[i] = 0
	}
}

// Size implements drivers.Displayer so tinyfont can draw on the buffer.
func (b *Buffer) Size() (int16, int16) { return Width, Height }

// SetPixel implements drivers.Displayer. Any non-black color sets the pixel.
func (b *Buffer) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return
	}
	idx := int(y/8)*Width + int(x)
	bit := uint(y % 8)
	if c.R > 0 || c.G > 0 || c.B > 0 {
		b.buf[idx] |= 1 << bit
	} else {
		b.buf[idx] &^= 1 << bit
	}
}

// Display flushes the buffer to the panel. Implements drivers.Displayer.
func (b *Buffer) Display() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sink == nil {
		return nil
	}
	return b.sink.Flush(b.buf[:])
}

// Snapshot copies the current buffer for external readers.
func (b *Buffer) Snapshot(dst []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	copy(dst, b.buf[:])
}

// Rotate180 rotates the buffer in place: reverse the byte order, then
// reverse the bits within each byte. Used by the text path, which draws
// upright and rotates to match the panel mounting.
func (b *Buffer) Rotate180() {
	n := len(b.buf)
	for i := 0; i < n/2; i++ {
		b.buf[i], b.buf[n-1-i] = b.buf[n-1-i], b.buf[i]
	}
	for i := range b.buf {
		v := b.buf[i]
		v = v>>4 | v<<4
		v = (v&0xCC)>>2 | (v&0x33)<<2
		v = (v&0xAA)>>1 | (v&0x55)<<1
		b.buf[i] = v
	}
}
