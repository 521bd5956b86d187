package display

import (
	"fmt"
	"time"

	"qbit/hal"
	"qbit/qbitos/event"
	"qbit/qbitos/melody"
	"qbit/qbitos/qgif"
	"qbit/qbitos/settings"
	"qbit/qbitos/timesvc"
)

// Publisher is the outbound side of the network task, as seen from the
// orchestrator.
type Publisher interface {
	PublishTouch(name string)
	PublishMuteState(muted bool)
	PublishAnimationState(file string)
	ClaimConfirm(user string)
	ClaimReject(user string)
}

// NopPublisher is used when the device runs unlinked.
type NopPublisher struct{}

func (NopPublisher) PublishTouch(string)          {}
func (NopPublisher) PublishMuteState(bool)        {}
func (NopPublisher) PublishAnimationState(string) {}
func (NopPublisher) ClaimConfirm(string)          {}
func (NopPublisher) ClaimReject(string)           {}

const taskTickMs = 5

// Task is the display task loop: it owns the screen, drains the gesture and
// network queues, steps the state machine and executes its effects.
type Task struct {
	Screens  Screens
	Player   *qgif.Player
	Melody   *melody.Player
	Settings *settings.Store
	Time     *timesvc.Service
	Gestures *event.GestureQueue
	Net      *event.NetQueue
	Conn     *event.Conn
	Pub      Publisher
	Clock    hal.Clock
	Link     hal.Link
	Log      hal.Logger

	m        Machine
	melodies [6]*melody.Melody
}

// Machine exposes the state machine for diagnostics.
func (t *Task) Machine() *Machine { return &t.m }

func (t *Task) init() {
	if t.Pub == nil {
		t.Pub = NopPublisher{}
	}
	for id, src := range map[MelodyID]string{
		MelodyBoot:   melody.Boot,
		MelodyTouch:  melody.Touch,
		MelodyPoke:   melody.Poke,
		MelodyClaim:  melody.Claim,
		MelodyMute:   melody.Mute,
		MelodyUnmute: melody.Unmute,
	} {
		m, err := melody.Parse(src)
		if err != nil {
			t.logf("display: melody %d: %v", id, err)
			continue
		}
		t.melodies[id] = m
	}
}

func (t *Task) logf(format string, args ...any) {
	if t.Log != nil {
		t.Log.WriteLineString(fmt.Sprintf(format, args...))
	}
}

// Run plays the boot sequence and then loops until stop closes.
func (t *Task) Run(stop <-chan struct{}) {
	t.init()

	t.playMelody(MelodyBoot)
	t.Player.PlayAnimation(qgif.BootAnimation(), BootGifSpeed,
		func(ms uint64) { time.Sleep(time.Duration(ms) * time.Millisecond) },
		func() { t.Melody.Advance(t.Clock.NowMs()) },
	)
	t.Player.SetIdleAnimation(qgif.IdleAnimation())
	t.Player.SetSpeed(t.Settings.PlaybackSpeed())

	t.exec(t.m.Start(t.Link.Up(), t.Clock.NowMs()))

	for {
		select {
		case <-stop:
			return
		default:
		}
		now := t.Clock.NowMs()

		if g, ok := t.Gestures.TryRecv(); ok {
			t.exec(t.m.HandleGesture(g, now))
		}
		if e, ok := t.Net.TryRecv(); ok {
			t.exec(t.m.HandleNet(&e, now))
		}
		t.exec(t.m.Tick(now, t.Conn.Has(event.BitPortal)))

		t.Melody.Advance(now)
		if t.m.PlayerActive() {
			t.Player.Tick(now)
		}

		time.Sleep(taskTickMs * time.Millisecond)
	}
}

func (t *Task) exec(effects []Effect) {
	for _, e := range effects {
		t.execOne(e)
	}
}

func (t *Task) execOne(e Effect) {
	now := t.Clock.NowMs()
	switch e.Op {
	case OpShowText:
		t.Screens.Text(e.Lines)

	case OpShowWifiSetup:
		if t.Conn.Has(event.BitPortal) {
			t.Screens.WifiPortal(t.Settings.DeviceName(), t.m.PortalDetails())
			return
		}
		t.Screens.WifiConnecting(now - t.m.WifiStartMs())

	case OpShowConnectedInfo:
		t.Screens.ConnectedInfo(t.Link.IP())

	case OpShowClock:
		t.Screens.Clock(t.Time.Formatted(), t.Time.DateFormatted())

	case OpShowPoke:
		ss, ts := t.m.Scroll()
		svw, tvw := t.m.VirtualWidths()
		t.Screens.Poke(t.m.ActivePoke(), ss, ts, svw, tvw)

	case OpShowHistoryPoke:
		t.Screens.HistoryPoke(t.m.History().At(e.Idx), e.Idx, t.m.History().Len())

	case OpMelody:
		t.playMelody(e.Melody)

	case OpMelodyStop:
		t.Melody.Stop()

	case OpPlayerSeed:
		t.Player.BuildShuffleBag()
		t.Player.SetAutoAdvance(t.Settings.LoopsPerGif())
		if next := t.Player.NextShuffle(); next != "" {
			t.Player.SetFile(next)
			t.Pub.PublishAnimationState(next)
		}

	case OpPlayerAdvance:
		if next := t.Player.NextShuffle(); next != "" {
			t.Player.SetFile(next)
			t.Pub.PublishAnimationState(next)
		}

	case OpToggleMute:
		muted := t.Settings.ToggleMute()
		if err := t.Settings.Persist(); err != nil {
			t.logf("display: persist settings: %v", err)
		}
		t.exec(t.m.MuteResult(muted, now))

	case OpClaimConfirm:
		t.Pub.ClaimConfirm(e.Text)

	case OpClaimReject:
		t.Pub.ClaimReject(e.Text)

	case OpPublishTouch:
		t.Pub.PublishTouch(e.Text)

	case OpPublishMute:
		t.Pub.PublishMuteState(e.Flag)
	}
}

func (t *Task) playMelody(id MelodyID) {
	if t.Settings.Muted() {
		return
	}
	if m := t.melodies[id]; m != nil {
		t.Melody.Begin(m, t.Clock.NowMs())
	}
}
