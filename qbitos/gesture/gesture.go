// Package gesture turns raw touch pin samples into tap, double-tap and
// long-press events.
package gesture

import "qbit/qbitos/event"

// Timing thresholds in milliseconds. PollIntervalMs is the sample period the
// input task must honor for the thresholds to hold.
const (
	LongPressMs       = 1500
	DoubleTapWindowMs = 300
	PollIntervalMs    = 10
)

type state uint8

const (
	stateIdle state = iota
	stateTouched
	stateWaitSecondTap
	stateWaitRelease
)

// Recognizer is a pure sampling state machine. Feed it one pin sample per
// poll interval; it emits at most one gesture per sample.
type Recognizer struct {
	st        state
	downMs    uint64
	releaseMs uint64
}

// Step consumes one sample. The second return is false when no gesture
// fired.
func (r *Recognizer) Step(pinHigh bool, nowMs uint64) (event.Gesture, bool) {
	switch r.st {
	case stateIdle:
		if pinHigh {
			r.st = stateTouched
			r.downMs = nowMs
			return event.Gesture{Kind: event.TouchDown, AtMs: nowMs}, true
		}

	case stateTouched:
		if pinHigh {
			if nowMs-r.downMs >= LongPressMs {
				r.st = stateWaitRelease
				return event.Gesture{Kind: event.LongPress, AtMs: nowMs}, true
			}
			return event.Gesture{}, false
		}
		// Released. Short presses open the double-tap window; longer ones
		// resolve immediately.
		if nowMs-r.downMs < DoubleTapWindowMs {
			r.st = stateWaitSecondTap
			r.releaseMs = nowMs
			return event.Gesture{}, false
		}
		r.st = stateIdle
		return event.Gesture{Kind: event.SingleTap, AtMs: nowMs}, true

	case stateWaitSecondTap:
		if pinHigh {
			r.st = stateWaitRelease
			return event.Gesture{Kind: event.DoubleTap, AtMs: nowMs}, true
		}
		if nowMs-r.releaseMs >= DoubleTapWindowMs {
			r.st = stateIdle
			return event.Gesture{Kind: event.SingleTap, AtMs: nowMs}, true
		}

	case stateWaitRelease:
		if !pinHigh {
			r.st = stateIdle
		}
	}
	return event.Gesture{}, false
}
