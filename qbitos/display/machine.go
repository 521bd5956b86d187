// Package display is the screen orchestrator: a pure state machine that maps
// gestures, network events and time onto draw, melody, player and publish
// effects. The task loop in this package executes the effects; the machine
// itself touches no hardware, so transitions are testable with a fake clock.
package display

import (
	"qbit/qbitos/event"
	"qbit/qbitos/oled"
)

type State uint8

const (
	StateBoot State = iota
	StateWifiSetup
	StateConnectedInfo
	StatePlayback
	StatePokeDisplay
	StateClaimPrompt
	StateHistoryTime
	StateHistoryPoke
	StateMuteFeedback
)

func (s State) String() string {
	switch s {
	case StateBoot:
		return "boot"
	case StateWifiSetup:
		return "wifi-setup"
	case StateConnectedInfo:
		return "connected-info"
	case StatePlayback:
		return "playback"
	case StatePokeDisplay:
		return "poke"
	case StateClaimPrompt:
		return "claim"
	case StateHistoryTime:
		return "history-time"
	case StateHistoryPoke:
		return "history-poke"
	case StateMuteFeedback:
		return "mute-feedback"
	}
	return "unknown"
}

// Timing constants, all milliseconds unless suffixed otherwise.
const (
	BootGifSpeed = 10

	ConnectedInfoMs = 3000
	ClaimTimeoutMs  = 30000
	ClaimConfirmMs  = 2000
	ClaimRejectMs   = 1500
	HistoryIdleMs   = 3000
	MuteFeedbackMs  = 2000
	OfflineBannerMs = 2000

	PortalThresholdMs = 15000
	wifiRedrawMs      = 500

	PokeDisplayMs        = 5000
	PokeScrollDisplayMs  = 8000
	PokeScrollIntervalMs = 30
	PokeScrollStepPx     = 2
)

// Text elements wider than this scroll.
const maxStaticTextPx = 120

const claimHoldHint = "Hold to confirm"

type claimPhase uint8

const (
	claimWaiting claimPhase = iota
	claimConfirmed
	claimRejected
)

// Machine holds the orchestrator state. Single-task ownership; no locking.
type Machine struct {
	st        State
	prev      State // return target for MuteFeedback
	enteredMs uint64

	hist History

	poke         *PokeRecord // active poke, owned by hist
	senderVW     uint16      // virtual scroll widths, 0 = static
	textVW       uint16
	senderScroll int16
	textScroll   int16
	lastScrollMs uint64

	claimUser string
	claim     claimPhase

	histIdx int

	wifiStartMs    uint64
	portalDetails  bool
	lastWifiDrawMs uint64

	offlineUntilMs uint64
}

func (m *Machine) State() State            { return m.st }
func (m *Machine) History() *History       { return &m.hist }
func (m *Machine) ActivePoke() *PokeRecord { return m.poke }
func (m *Machine) WifiStartMs() uint64     { return m.wifiStartMs }
func (m *Machine) PortalDetails() bool     { return m.portalDetails }

// Scroll returns the current pixel offsets of the active poke's sender and
// text elements.
func (m *Machine) Scroll() (sender, text int16) {
	return m.senderScroll, m.textScroll
}

// VirtualWidths returns the scroll wrap widths of the active poke's
// elements, 0 for static elements.
func (m *Machine) VirtualWidths() (sender, text uint16) {
	return m.senderVW, m.textVW
}

// PlayerActive reports whether the animation player owns the screen.
func (m *Machine) PlayerActive() bool {
	return m.st == StatePlayback && m.offlineUntilMs == 0
}

func (m *Machine) enter(st State, now uint64) {
	m.st = st
	m.enteredMs = now
}

// Start leaves the boot state once the boot animation has played.
func (m *Machine) Start(wifiUp bool, now uint64) []Effect {
	if wifiUp {
		m.enter(StateConnectedInfo, now)
		return []Effect{{Op: OpShowConnectedInfo}}
	}
	m.wifiStartMs = now
	m.lastWifiDrawMs = now
	m.enter(StateWifiSetup, now)
	return []Effect{{Op: OpShowWifiSetup}}
}

// HandleGesture consumes one recognized gesture.
func (m *Machine) HandleGesture(g event.Gesture, now uint64) []Effect {
	eff := []Effect{{Op: OpPublishTouch, Text: g.Kind.String()}}

	if g.Kind == event.TouchDown {
		return append(eff, play(MelodyTouch))
	}

	switch m.st {
	case StateWifiSetup:
		if g.Kind == event.SingleTap {
			m.portalDetails = !m.portalDetails
			eff = append(eff, Effect{Op: OpShowWifiSetup})
		}

	case StatePlayback:
		switch g.Kind {
		case event.SingleTap:
			eff = append(eff, Effect{Op: OpPlayerAdvance})
		case event.DoubleTap:
			m.enter(StateHistoryTime, now)
			eff = append(eff, Effect{Op: OpShowClock})
		case event.LongPress:
			eff = append(eff, Effect{Op: OpToggleMute})
		}

	case StateHistoryTime:
		switch g.Kind {
		case event.SingleTap:
			if m.hist.Len() == 0 {
				m.enter(StatePlayback, now)
				break
			}
			m.histIdx = 0
			m.enter(StateHistoryPoke, now)
			eff = append(eff, Effect{Op: OpShowHistoryPoke, Idx: 0})
		case event.DoubleTap:
			m.enter(StatePlayback, now)
		}

	case StateHistoryPoke:
		if g.Kind == event.SingleTap {
			m.histIdx++
			if m.histIdx >= m.hist.Len() || m.histIdx >= HistorySize {
				m.enter(StatePlayback, now)
				break
			}
			m.enteredMs = now
			eff = append(eff, Effect{Op: OpShowHistoryPoke, Idx: m.histIdx})
		}

	case StatePokeDisplay:
		if g.Kind == event.SingleTap {
			m.poke = nil
			m.enter(StatePlayback, now)
		}

	case StateClaimPrompt:
		if g.Kind == event.LongPress && m.claim == claimWaiting {
			m.claim = claimConfirmed
			m.enteredMs = now
			eff = append(eff,
				Effect{Op: OpClaimConfirm, Text: m.claimUser},
				play(MelodyClaim),
				showText("[ Claimed! ]", m.claimUser, "", ""),
			)
		}
	}
	return eff
}

// HandleNet consumes one network event. The machine takes ownership of any
// bitmap buffers; events it ignores are released here.
func (m *Machine) HandleNet(e *event.NetworkEvent, now uint64) []Effect {
	switch e.Kind {
	case event.Poke, event.PokeBitmap:
		return m.handlePoke(e, now)

	case event.ClaimRequest:
		m.poke = nil
		m.claimUser = e.Sender
		m.claim = claimWaiting
		m.enter(StateClaimPrompt, now)
		return []Effect{
			play(MelodyClaim),
			showText("[ Claim Request ]", e.Sender, "", claimHoldHint),
		}

	case event.WifiStatus, event.WSStatus:
		if e.Connected {
			if e.Kind == event.WifiStatus && m.st == StateWifiSetup {
				m.enter(StateConnectedInfo, now)
				return []Effect{{Op: OpShowConnectedInfo}}
			}
			m.offlineUntilMs = 0
			return nil
		}
		if m.st == StatePlayback {
			m.offlineUntilMs = now + OfflineBannerMs
			return []Effect{showText("", "[ Offline ]", "", "")}
		}
		return nil

	case event.Command:
		switch e.Sender {
		case "mute":
			return []Effect{{Op: OpToggleMute}}
		case "animation_next":
			return []Effect{{Op: OpPlayerAdvance}}
		}
	}
	return nil
}

func (m *Machine) handlePoke(e *event.NetworkEvent, now uint64) []Effect {
	// Pokes never interrupt a claim prompt or mute feedback.
	if m.st == StateClaimPrompt || m.st == StateMuteFeedback {
		e.Release()
		return nil
	}

	rec := &PokeRecord{
		Sender:    e.Sender,
		Text:      e.Text,
		SenderBmp: e.SenderBmp,
		TextBmp:   e.TextBmp,
		AtMs:      now,
	}
	m.hist.Add(rec)

	// A bare "Poke!" does not replace a custom message already showing.
	if m.st == StatePokeDisplay && m.poke.Custom() && !rec.Custom() {
		return []Effect{play(MelodyPoke)}
	}

	m.poke = rec
	m.senderVW = scrollWidth(rec.SenderBmp, rec.Sender)
	m.textVW = scrollWidth(rec.TextBmp, rec.Text)
	m.senderScroll = 0
	m.textScroll = 0
	m.lastScrollMs = now
	m.enter(StatePokeDisplay, now)
	return []Effect{play(MelodyPoke), {Op: OpShowPoke}}
}

// scrollWidth returns the virtual width of a poke element when it needs to
// scroll, 0 when it fits.
func scrollWidth(bmp *event.Bitmap, text string) uint16 {
	var w uint16
	if bmp != nil {
		w = bmp.Width
	} else {
		w = oled.TextWidth(text)
	}
	limit := uint16(oled.Width)
	if bmp == nil {
		limit = maxStaticTextPx
	}
	if w <= limit {
		return 0
	}
	return w + oled.ScrollGapPx
}

// MuteResult enters the feedback screen after the task has toggled mute.
func (m *Machine) MuteResult(muted bool, now uint64) []Effect {
	if m.st != StateMuteFeedback {
		m.prev = m.st
	}
	m.enter(StateMuteFeedback, now)

	label := "[ UNMUTED ]"
	id := MelodyUnmute
	if muted {
		label = "[ MUTED ]"
		id = MelodyMute
	}
	return []Effect{
		showText("", label, "", ""),
		play(id),
		{Op: OpPublishMute, Flag: muted},
	}
}

// Tick advances time-driven behavior. portal reports whether the
// provisioning portal is active.
func (m *Machine) Tick(now uint64, portal bool) []Effect {
	elapsed := now - m.enteredMs

	switch m.st {
	case StateWifiSetup:
		// The connecting screen carries a countdown bar and needs refreshing;
		// the portal screen is static.
		if !portal && now-m.lastWifiDrawMs >= wifiRedrawMs {
			m.lastWifiDrawMs = now
			return []Effect{{Op: OpShowWifiSetup}}
		}

	case StateConnectedInfo:
		if elapsed >= ConnectedInfoMs {
			m.enter(StatePlayback, now)
			return []Effect{{Op: OpPlayerSeed}}
		}

	case StatePlayback:
		if m.offlineUntilMs != 0 && now >= m.offlineUntilMs {
			m.offlineUntilMs = 0
		}

	case StatePokeDisplay:
		dur := uint64(PokeDisplayMs)
		scrolling := m.senderVW != 0 || m.textVW != 0
		if scrolling {
			dur = PokeScrollDisplayMs
		}
		if elapsed >= dur {
			m.poke = nil
			m.enter(StatePlayback, now)
			return nil
		}
		if scrolling && now-m.lastScrollMs >= PokeScrollIntervalMs {
			m.lastScrollMs = now
			if m.senderVW != 0 {
				m.senderScroll = (m.senderScroll + PokeScrollStepPx) % int16(m.senderVW)
			}
			if m.textVW != 0 {
				m.textScroll = (m.textScroll + PokeScrollStepPx) % int16(m.textVW)
			}
			return []Effect{{Op: OpShowPoke}}
		}

	case StateClaimPrompt:
		switch m.claim {
		case claimWaiting:
			if elapsed >= ClaimTimeoutMs {
				m.claim = claimRejected
				m.enteredMs = now
				return []Effect{
					{Op: OpClaimReject, Text: m.claimUser},
					showText("[ Claim Timeout ]", "", "", ""),
				}
			}
		case claimConfirmed:
			if elapsed >= ClaimConfirmMs {
				m.enter(StatePlayback, now)
			}
		case claimRejected:
			if elapsed >= ClaimRejectMs {
				m.enter(StatePlayback, now)
			}
		}

	case StateHistoryTime, StateHistoryPoke:
		if elapsed >= HistoryIdleMs {
			m.enter(StatePlayback, now)
		}

	case StateMuteFeedback:
		if elapsed >= MuteFeedbackMs {
			m.enter(m.prev, now)
			return m.redraw()
		}
	}
	return nil
}

// redraw re-renders the current state's screen after an overlay ends. The
// playback state needs no effect; the player resumes on the next tick.
func (m *Machine) redraw() []Effect {
	switch m.st {
	case StateWifiSetup:
		return []Effect{{Op: OpShowWifiSetup}}
	case StateConnectedInfo:
		return []Effect{{Op: OpShowConnectedInfo}}
	case StatePokeDisplay:
		return []Effect{{Op: OpShowPoke}}
	case StateClaimPrompt:
		switch m.claim {
		case claimConfirmed:
			return []Effect{showText("[ Claimed! ]", m.claimUser, "", "")}
		case claimRejected:
			return []Effect{showText("[ Claim Timeout ]", "", "", "")}
		}
		return []Effect{showText("[ Claim Request ]", m.claimUser, "", claimHoldHint)}
	case StateHistoryTime:
		return []Effect{{Op: OpShowClock}}
	case StateHistoryPoke:
		return []Effect{{Op: OpShowHistoryPoke, Idx: m.histIdx}}
	}
	return nil
}
