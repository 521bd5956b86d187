package gesture

import (
	"testing"

	"qbit/qbitos/event"
)

// run feeds the recognizer a pin trace sampled every PollIntervalMs starting
// at t=0 and collects fired gestures. pinAt reports the pin level at a given
// millisecond.
func run(r *Recognizer, durMs uint64, pinAt func(ms uint64) bool) []event.GestureKind {
	var out []event.GestureKind
	for t := uint64(0); t <= durMs; t += PollIntervalMs {
		if g, ok := r.Step(pinAt(t), t); ok {
			out = append(out, g.Kind)
		}
	}
	return out
}

func TestShortTapIsSingleTapAfterWindow(t *testing.T) {
	var r Recognizer
	// Press 10..110ms, release, then quiet.
	got := run(&r, 1000, func(ms uint64) bool { return ms >= 10 && ms < 110 })

	want := []event.GestureKind{event.TouchDown, event.SingleTap}
	assertKinds(t, got, want)
}

func TestTwoQuickTapsAreDoubleTap(t *testing.T) {
	var r Recognizer
	// Tap 0..100, gap 100..200, tap 200..300.
	got := run(&r, 1000, func(ms uint64) bool {
		return ms < 100 || (ms >= 200 && ms < 300)
	})

	want := []event.GestureKind{event.TouchDown, event.DoubleTap}
	assertKinds(t, got, want)
}

func TestHoldIsLongPress(t *testing.T) {
	var r Recognizer
	got := run(&r, 3000, func(ms uint64) bool { return ms < 2000 })

	want := []event.GestureKind{event.TouchDown, event.LongPress}
	assertKinds(t, got, want)
}

func TestMediumPressResolvesWithoutWindow(t *testing.T) {
	var r Recognizer
	// 500ms press: too long for a double-tap candidate, too short for a
	// long press. Resolves to a single tap at release.
	got := run(&r, 600, func(ms uint64) bool { return ms < 500 })

	want := []event.GestureKind{event.TouchDown, event.SingleTap}
	assertKinds(t, got, want)
}

func TestSecondGestureAfterRelease(t *testing.T) {
	var r Recognizer
	// Long press, release, then a short tap.
	got := run(&r, 4000, func(ms uint64) bool {
		return ms < 1600 || (ms >= 2000 && ms < 2100)
	})

	want := []event.GestureKind{
		event.TouchDown, event.LongPress,
		event.TouchDown, event.SingleTap,
	}
	assertKinds(t, got, want)
}

func assertKinds(t *testing.T, got, want []event.GestureKind) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("gestures = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("gesture %d = %v, want %v", i, got[i], want[i])
		}
	}
}
