package event

import (
	"sync/atomic"
	"time"
)

// Queue depths. Gestures are small and frequent; network events are rarer
// but may carry owned buffers, so they get more slack.
const (
	gestureSlots = 8
	netSlots     = 16
)

// GestureQueue is a fixed-size producer/consumer queue. Producers use
// TrySend and drop on overflow; the display task is the sole consumer.
type GestureQueue struct {
	_     [0]func() // prevent accidental copying.
	head  atomic.Uint32
	tail  atomic.Uint32
	slots [gestureSlots]Gesture
}

// TrySend attempts to enqueue a gesture, returning false if the queue is full.
func (q *GestureQueue) TrySend(g Gesture) bool {
	head := q.head.Load()
	tail := q.tail.Load()
	if head-tail >= gestureSlots {
		return false
	}
	if !q.head.CompareAndSwap(head, head+1) {
		return false
	}
	q.slots[head%gestureSlots] = g
	return true
}

// TryRecv attempts to dequeue one gesture, returning false if empty.
func (q *GestureQueue) TryRecv() (Gesture, bool) {
	tail := q.tail.Load()
	head := q.head.Load()
	if tail == head {
		return Gesture{}, false
	}
	g := q.slots[tail%gestureSlots]
	q.tail.Store(tail + 1)
	return g, true
}

// NetQueue carries NetworkEvents from the network task (and other external
// producers such as the dashboard) to the display task.
type NetQueue struct {
	_     [0]func()
	head  atomic.Uint32
	tail  atomic.Uint32
	slots [netSlots]NetworkEvent
}

// TrySend attempts to enqueue an event, returning false if the queue is full.
// On false the caller still owns any buffers inside the event.
func (q *NetQueue) TrySend(e NetworkEvent) bool {
	head := q.head.Load()
	tail := q.tail.Load()
	if head-tail >= netSlots {
		return false
	}
	if !q.head.CompareAndSwap(head, head+1) {
		return false
	}
	q.slots[head%netSlots] = e
	return true
}

// TryRecv attempts to dequeue one event. The caller takes ownership of any
// buffers inside.
func (q *NetQueue) TryRecv() (NetworkEvent, bool) {
	tail := q.tail.Load()
	head := q.head.Load()
	if tail == head {
		return NetworkEvent{}, false
	}
	e := q.slots[tail%netSlots]
	q.slots[tail%netSlots] = NetworkEvent{}
	q.tail.Store(tail + 1)
	return e, true
}

// Enqueue retry policy for events carrying owned buffers.
const (
	sendRetries = 3
	sendBackoff = 20 * time.Millisecond
)

// SendOrRelease enqueues with a bounded retry and, if the queue stays full,
// releases the event's owned buffers so they cannot leak. Reports whether
// the event was delivered.
func (q *NetQueue) SendOrRelease(e NetworkEvent) bool {
	for i := 0; i < sendRetries; i++ {
		if q.TrySend(e) {
			return true
		}
		time.Sleep(sendBackoff)
	}
	e.Release()
	return false
}
