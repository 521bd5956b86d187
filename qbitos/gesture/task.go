package gesture

import (
	"time"

	"qbit/hal"
	"qbit/qbitos/event"
)

// Task samples the touch pin at the fixed poll interval and publishes
// recognized gestures to the input queue.
type Task struct {
	Pin   hal.TouchPin
	Clock hal.Clock
	Out   *event.GestureQueue
	Log   hal.Logger
}

// Run loops until stop closes. Dropped events are logged, not retried; a
// full queue means the display task is stalled and stale gestures help
// nobody.
func (t *Task) Run(stop <-chan struct{}) {
	var r Recognizer
	for {
		select {
		case <-stop:
			return
		default:
		}

		g, ok := r.Step(t.Pin.Read(), t.Clock.NowMs())
		if ok && !t.Out.TrySend(g) && t.Log != nil {
			t.Log.WriteLineString("gesture: queue full, dropped " + g.Kind.String())
		}

		time.Sleep(PollIntervalMs * time.Millisecond)
	}
}
