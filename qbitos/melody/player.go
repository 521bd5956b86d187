package melody

import "qbit/hal"

// Player steps through a melody one Advance call at a time. It belongs to a
// single task; no locking.
type Player struct {
	tone hal.Tone

	cur     *Melody
	idx     int
	startMs uint64
}

func NewPlayer(tone hal.Tone) *Player {
	return &Player{tone: tone}
}

// Begin starts a melody, cutting off anything already playing. A nil melody
// just stops.
func (p *Player) Begin(m *Melody, nowMs uint64) {
	p.Stop()
	if m == nil || len(m.Notes) == 0 {
		return
	}
	p.cur = m
	p.idx = 0
	p.startMs = nowMs
	p.play(m.Notes[0])
}

// Advance moves to the next note when the current one has elapsed. Call it
// every task tick; it is a no-op while idle.
func (p *Player) Advance(nowMs uint64) {
	if p.cur == nil {
		return
	}
	n := p.cur.Notes[p.idx]
	if nowMs-p.startMs < uint64(n.Ms) {
		return
	}
	p.idx++
	if p.idx >= len(p.cur.Notes) {
		p.Stop()
		return
	}
	p.startMs = nowMs
	p.play(p.cur.Notes[p.idx])
}

// Playing reports whether a melody is in progress.
func (p *Player) Playing() bool { return p.cur != nil }

// Stop silences the buzzer and clears the current melody.
func (p *Player) Stop() {
	p.cur = nil
	p.tone.Stop()
}

func (p *Player) play(n Note) {
	if n.FreqHz == 0 {
		p.tone.Stop()
		return
	}
	p.tone.Play(n.FreqHz)
}
