// Package event defines the typed messages exchanged between the input,
// network and display tasks, the bounded queues that carry them, and the
// shared connectivity register.
package event

// GestureKind classifies a completed touch interaction.
//
// TouchDown is advisory (immediate feedback only) and never alone
// constitutes a gesture.
type GestureKind uint8

const (
	TouchDown GestureKind = iota + 1
	SingleTap
	DoubleTap
	LongPress
)

func (k GestureKind) String() string {
	switch k {
	case TouchDown:
		return "touch_down"
	case SingleTap:
		return "single_tap"
	case DoubleTap:
		return "double_tap"
	case LongPress:
		return "long_press"
	default:
		return "none"
	}
}

// Gesture is produced by the input task and consumed by the display task.
// Immutable once queued.
type Gesture struct {
	Kind GestureKind
	AtMs uint64
}

// Bitmap is a heap-owned 1bpp page-packed image attached to a poke.
//
// Ownership moves with the event: whoever holds the last reference must
// call Release on every code path, including discard-without-render.
type Bitmap struct {
	Data   []byte
	Width  uint16
	Height uint16
}

// Release drops the pixel data. Safe to call on nil and more than once.
func (b *Bitmap) Release() {
	if b == nil {
		return
	}
	b.Data = nil
	b.Width = 0
	b.Height = 0
}

// Released reports whether the buffer has been dropped (or never existed).
func (b *Bitmap) Released() bool { return b == nil || b.Data == nil }

// Clone returns an independently owned copy.
func (b *Bitmap) Clone() *Bitmap {
	if b == nil || b.Data == nil {
		return nil
	}
	data := make([]byte, len(b.Data))
	copy(data, b.Data)
	return &Bitmap{Data: data, Width: b.Width, Height: b.Height}
}

// NetworkKind tags the NetworkEvent variant.
type NetworkKind uint8

const (
	Poke NetworkKind = iota + 1
	PokeBitmap
	ClaimRequest
	WifiStatus
	WSStatus
	Command
)

// NetworkEvent is produced by the network task and consumed by the display
// task. For PokeBitmap events the two bitmap buffers transfer ownership to
// the consumer.
type NetworkEvent struct {
	Kind   NetworkKind
	Sender string
	Text   string

	SenderBmp *Bitmap
	TextBmp   *Bitmap

	Connected bool

	// Command payload (Kind == Command): Sender carries the command name,
	// Text the raw payload, matching the producer-side topic decode.
}

// Release frees any owned bitmap buffers. The single release path for every
// discard branch.
func (e *NetworkEvent) Release() {
	if e == nil {
		return
	}
	e.SenderBmp.Release()
	e.TextBmp.Release()
}
