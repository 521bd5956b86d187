package display

import (
	"testing"

	"qbit/qbitos/event"
)

func hasOp(effects []Effect, op Op) bool {
	for _, e := range effects {
		if e.Op == op {
			return true
		}
	}
	return false
}

func pokeEvent(sender, text string) *event.NetworkEvent {
	return &event.NetworkEvent{Kind: event.Poke, Sender: sender, Text: text}
}

func TestStartupToPlayback(t *testing.T) {
	var m Machine

	eff := m.Start(false, 0)
	if m.State() != StateWifiSetup || !hasOp(eff, OpShowWifiSetup) {
		t.Fatalf("Start(down) state = %v, effects %v", m.State(), eff)
	}

	eff = m.HandleNet(&event.NetworkEvent{Kind: event.WifiStatus, Connected: true}, 5000)
	if m.State() != StateConnectedInfo || !hasOp(eff, OpShowConnectedInfo) {
		t.Fatalf("wifi up: state = %v", m.State())
	}

	if eff = m.Tick(5000+ConnectedInfoMs-1, false); len(eff) != 0 {
		t.Fatalf("early tick transitioned: %v", eff)
	}
	eff = m.Tick(5000+ConnectedInfoMs, false)
	if m.State() != StatePlayback || !hasOp(eff, OpPlayerSeed) {
		t.Fatalf("info timeout: state = %v, effects %v", m.State(), eff)
	}
	if !m.PlayerActive() {
		t.Fatalf("PlayerActive() = false in playback")
	}
}

func TestStartWithWifiUpSkipsSetup(t *testing.T) {
	var m Machine
	eff := m.Start(true, 0)
	if m.State() != StateConnectedInfo || !hasOp(eff, OpShowConnectedInfo) {
		t.Fatalf("Start(up) state = %v", m.State())
	}
}

func toPlayback(t *testing.T, m *Machine) {
	t.Helper()
	m.Start(true, 0)
	m.Tick(ConnectedInfoMs, false)
	if m.State() != StatePlayback {
		t.Fatalf("setup: state = %v, want playback", m.State())
	}
}

func TestPokeShowsAndTimesOut(t *testing.T) {
	var m Machine
	toPlayback(t, &m)

	eff := m.HandleNet(pokeEvent("ana", "hi there"), 10000)
	if m.State() != StatePokeDisplay || !hasOp(eff, OpShowPoke) || !hasOp(eff, OpMelody) {
		t.Fatalf("poke: state = %v, effects %v", m.State(), eff)
	}
	if m.History().Len() != 1 {
		t.Fatalf("history len = %d, want 1", m.History().Len())
	}

	m.Tick(10000+PokeDisplayMs, false)
	if m.State() != StatePlayback || m.ActivePoke() != nil {
		t.Fatalf("poke timeout: state = %v", m.State())
	}
	// The record stays in history after display ends.
	if m.History().At(0).Sender != "ana" {
		t.Fatalf("history lost the poke")
	}
}

func TestDefaultPokeDoesNotReplaceCustom(t *testing.T) {
	var m Machine
	toPlayback(t, &m)

	m.HandleNet(pokeEvent("ana", "custom message"), 10000)
	eff := m.HandleNet(pokeEvent("bob", ""), 10500)

	if hasOp(eff, OpShowPoke) {
		t.Fatalf("default poke replaced custom display")
	}
	if m.ActivePoke().Sender != "ana" {
		t.Fatalf("active poke = %q, want ana", m.ActivePoke().Sender)
	}
	if m.History().Len() != 2 {
		t.Fatalf("history len = %d, want 2", m.History().Len())
	}
}

func TestPokeIgnoredDuringClaimReleasesBuffers(t *testing.T) {
	var m Machine
	toPlayback(t, &m)

	m.HandleNet(&event.NetworkEvent{Kind: event.ClaimRequest, Sender: "ana"}, 10000)
	if m.State() != StateClaimPrompt {
		t.Fatalf("state = %v, want claim prompt", m.State())
	}

	bmp := &event.Bitmap{Data: []byte{1, 2}, Width: 16, Height: 8}
	e := &event.NetworkEvent{Kind: event.PokeBitmap, Sender: "bob", SenderBmp: bmp}
	if eff := m.HandleNet(e, 10100); len(eff) != 0 {
		t.Fatalf("poke during claim produced effects: %v", eff)
	}
	if !bmp.Released() {
		t.Fatalf("ignored poke bitmap not released")
	}
	if m.History().Len() != 0 {
		t.Fatalf("ignored poke entered history")
	}
}

func TestClaimConfirmOnLongPress(t *testing.T) {
	var m Machine
	toPlayback(t, &m)

	m.HandleNet(&event.NetworkEvent{Kind: event.ClaimRequest, Sender: "ana"}, 10000)
	eff := m.HandleGesture(event.Gesture{Kind: event.LongPress}, 12000)
	if !hasOp(eff, OpClaimConfirm) {
		t.Fatalf("long press did not confirm: %v", eff)
	}

	m.Tick(12000+ClaimConfirmMs, false)
	if m.State() != StatePlayback {
		t.Fatalf("after confirm hold: state = %v", m.State())
	}
}

func TestClaimTimeoutRejects(t *testing.T) {
	var m Machine
	toPlayback(t, &m)

	m.HandleNet(&event.NetworkEvent{Kind: event.ClaimRequest, Sender: "ana"}, 10000)
	eff := m.Tick(10000+ClaimTimeoutMs, false)
	if !hasOp(eff, OpClaimReject) {
		t.Fatalf("timeout did not reject: %v", eff)
	}
	m.Tick(10000+ClaimTimeoutMs+ClaimRejectMs, false)
	if m.State() != StatePlayback {
		t.Fatalf("after reject: state = %v", m.State())
	}
}

func TestHistoryNavigation(t *testing.T) {
	var m Machine
	toPlayback(t, &m)

	m.HandleNet(pokeEvent("a", "1"), 10000)
	m.Tick(10000+PokeDisplayMs, false)
	m.HandleNet(pokeEvent("b", "2"), 20000)
	m.Tick(20000+PokeDisplayMs, false)

	eff := m.HandleGesture(event.Gesture{Kind: event.DoubleTap}, 30000)
	if m.State() != StateHistoryTime || !hasOp(eff, OpShowClock) {
		t.Fatalf("double tap in playback: state = %v", m.State())
	}

	eff = m.HandleGesture(event.Gesture{Kind: event.SingleTap}, 30100)
	if m.State() != StateHistoryPoke || !hasOp(eff, OpShowHistoryPoke) {
		t.Fatalf("tap in history-time: state = %v", m.State())
	}
	// Most recent first.
	if m.History().At(0).Sender != "b" {
		t.Fatalf("history order: At(0) = %q, want b", m.History().At(0).Sender)
	}

	m.HandleGesture(event.Gesture{Kind: event.SingleTap}, 30200) // entry 1
	m.HandleGesture(event.Gesture{Kind: event.SingleTap}, 30300) // past the end
	if m.State() != StatePlayback {
		t.Fatalf("after last entry: state = %v", m.State())
	}
}

func TestHistoryIdleTimeout(t *testing.T) {
	var m Machine
	toPlayback(t, &m)

	m.HandleGesture(event.Gesture{Kind: event.DoubleTap}, 10000)
	m.Tick(10000+HistoryIdleMs, false)
	if m.State() != StatePlayback {
		t.Fatalf("history idle: state = %v", m.State())
	}
}

func TestSingleTapAdvancesAnimation(t *testing.T) {
	var m Machine
	toPlayback(t, &m)

	eff := m.HandleGesture(event.Gesture{Kind: event.SingleTap}, 10000)
	if !hasOp(eff, OpPlayerAdvance) {
		t.Fatalf("single tap in playback: %v", eff)
	}
	if m.State() != StatePlayback {
		t.Fatalf("state = %v, want playback", m.State())
	}
}

func TestDoubleTapInHistoryTimeReturns(t *testing.T) {
	var m Machine
	toPlayback(t, &m)

	m.HandleGesture(event.Gesture{Kind: event.DoubleTap}, 10000)
	m.HandleGesture(event.Gesture{Kind: event.DoubleTap}, 10100)
	if m.State() != StatePlayback {
		t.Fatalf("state = %v, want playback", m.State())
	}
}

func TestMuteFeedbackReturnsToPrevState(t *testing.T) {
	var m Machine
	toPlayback(t, &m)

	eff := m.HandleGesture(event.Gesture{Kind: event.LongPress}, 10000)
	if !hasOp(eff, OpToggleMute) {
		t.Fatalf("long press in playback: %v", eff)
	}

	eff = m.MuteResult(true, 10010)
	if m.State() != StateMuteFeedback || !hasOp(eff, OpPublishMute) {
		t.Fatalf("MuteResult: state = %v, effects %v", m.State(), eff)
	}
	m.Tick(10010+MuteFeedbackMs, false)
	if m.State() != StatePlayback {
		t.Fatalf("after feedback: state = %v", m.State())
	}
}

func TestMuteDuringClaimReturnsToClaim(t *testing.T) {
	var m Machine
	toPlayback(t, &m)

	m.HandleNet(&event.NetworkEvent{Kind: event.ClaimRequest, Sender: "ana"}, 10000)
	eff := m.HandleNet(&event.NetworkEvent{Kind: event.Command, Sender: "mute"}, 11000)
	if !hasOp(eff, OpToggleMute) {
		t.Fatalf("mute command during claim: %v", eff)
	}
	m.MuteResult(true, 11010)
	if m.State() != StateMuteFeedback {
		t.Fatalf("state = %v, want mute feedback", m.State())
	}

	eff = m.Tick(11010+MuteFeedbackMs, false)
	if m.State() != StateClaimPrompt {
		t.Fatalf("after feedback: state = %v, want claim prompt", m.State())
	}
	if !hasOp(eff, OpShowText) {
		t.Fatalf("claim prompt not redrawn: %v", eff)
	}

	// The prompt is still live and can be answered.
	eff = m.HandleGesture(event.Gesture{Kind: event.LongPress}, 14000)
	if !hasOp(eff, OpClaimConfirm) {
		t.Fatalf("claim lost after mute feedback: %v", eff)
	}
}

func TestMuteDuringPokeReturnsToPoke(t *testing.T) {
	var m Machine
	toPlayback(t, &m)

	m.HandleNet(pokeEvent("ana", "hi"), 10000)
	m.HandleNet(&event.NetworkEvent{Kind: event.Command, Sender: "mute"}, 11000)
	m.MuteResult(true, 11010)

	eff := m.Tick(11010+MuteFeedbackMs, false)
	if m.State() != StatePokeDisplay || !hasOp(eff, OpShowPoke) {
		t.Fatalf("after feedback: state = %v, effects %v", m.State(), eff)
	}
	if m.ActivePoke() == nil || m.ActivePoke().Sender != "ana" {
		t.Fatalf("active poke lost across mute feedback")
	}
}

func TestOfflineBannerPausesPlayer(t *testing.T) {
	var m Machine
	toPlayback(t, &m)

	eff := m.HandleNet(&event.NetworkEvent{Kind: event.WSStatus, Connected: false}, 10000)
	if !hasOp(eff, OpShowText) {
		t.Fatalf("offline: no banner effect: %v", eff)
	}
	if m.PlayerActive() {
		t.Fatalf("player active during banner")
	}
	m.Tick(10000+OfflineBannerMs, false)
	if !m.PlayerActive() {
		t.Fatalf("player not resumed after banner")
	}
}

func TestMuteCommandFromNetwork(t *testing.T) {
	var m Machine
	toPlayback(t, &m)

	eff := m.HandleNet(&event.NetworkEvent{Kind: event.Command, Sender: "mute"}, 10000)
	if !hasOp(eff, OpToggleMute) {
		t.Fatalf("mute command: %v", eff)
	}
	eff = m.HandleNet(&event.NetworkEvent{Kind: event.Command, Sender: "animation_next"}, 10100)
	if !hasOp(eff, OpPlayerAdvance) {
		t.Fatalf("animation_next command: %v", eff)
	}
}

func TestScrollingPokeUsesLongerTimeout(t *testing.T) {
	var m Machine
	toPlayback(t, &m)

	wide := &event.Bitmap{Data: make([]byte, 400), Width: 200, Height: 16}
	m.HandleNet(&event.NetworkEvent{Kind: event.PokeBitmap, Sender: "ana", SenderBmp: wide}, 10000)

	// Still showing at the static timeout.
	m.Tick(10000+PokeDisplayMs, false)
	if m.State() != StatePokeDisplay {
		t.Fatalf("scrolling poke ended at static timeout")
	}
	// Scroll ticks advance the offset and redraw.
	eff := m.Tick(10000+PokeDisplayMs+PokeScrollIntervalMs, false)
	if !hasOp(eff, OpShowPoke) {
		t.Fatalf("scroll tick produced no redraw: %v", eff)
	}
	s, _ := m.Scroll()
	if s == 0 {
		t.Fatalf("sender scroll offset did not advance")
	}

	m.Tick(10000+PokeScrollDisplayMs, false)
	if m.State() != StatePlayback {
		t.Fatalf("scrolling poke did not end at %dms", PokeScrollDisplayMs)
	}
}
