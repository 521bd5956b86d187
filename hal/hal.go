package hal

import (
	"errors"
	"io"
)

var ErrNotImplemented = errors.New("not implemented")

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
}

// Display dimensions for this device class. The SSD1306 page buffer is
// 8 pages of 128 vertical-byte columns.
const (
	DisplayWidth  = 128
	DisplayHeight = 64
	DisplayPages  = DisplayHeight / 8
	DisplayBytes  = DisplayWidth * DisplayPages
)

// FrameSink receives complete page-layout display buffers.
//
// Flush must copy or transmit buf before returning; callers reuse it.
type FrameSink interface {
	Flush(buf []byte) error
}

// BrightnessSink is implemented by sinks whose panel exposes a contrast
// control. 0 is dimmest, 255 brightest.
type BrightnessSink interface {
	SetBrightness(level uint8)
}

// TouchPin is the single digital touch input.
type TouchPin interface {
	// Read reports whether the pin is high (touched).
	Read() bool
}

// Tone is a fire-and-forget square-wave output (buzzer).
type Tone interface {
	Play(freqHz uint16)
	Stop()
}

// File is an open animation stream.
type File interface {
	io.ReadSeeker
	io.Closer
}

// Filestore is the flash-backed animation store.
//
// Names are flat (no directories) and List returns them in no particular
// order.
type Filestore interface {
	Open(name string) (File, error)
	Exists(name string) bool
	List() ([]string, error)
	Remove(name string) error
	Usage() (used, total uint32)
}

// Clock provides the monotonic millisecond timebase used by all task loops.
type Clock interface {
	NowMs() uint64
}

// Link reports and controls the WiFi link and the provisioning portal.
type Link interface {
	Up() bool
	IP() string
	StartPortal()
	StopPortal()
	PortalActive() bool
}

// HAL is the only contact point between the runtime and the hardware.
type HAL interface {
	Logger() Logger
	Display() FrameSink
	Touch() TouchPin
	Tone() Tone
	Files() Filestore
	Clock() Clock
	Link() Link
}
