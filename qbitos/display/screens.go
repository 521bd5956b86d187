package display

import (
	"fmt"

	"qbit/qbitos/oled"
)

// Poke screen geometry: header on top, sender element, then message element.
const (
	pokeHeaderBase = 10
	pokeSenderY    = 15
	pokeElemH      = 16
)

// Screens composes the non-animation screens on the shared buffer. All
// methods clear, draw upright, rotate and flush.
type Screens struct {
	B *oled.Buffer
}

func (s Screens) Text(lines [4]string) {
	s.B.ShowText(lines[0], lines[1], lines[2], lines[3])
}

func (s Screens) Clock(timeStr, dateStr string) {
	s.B.ShowClock(timeStr, dateStr)
}

func (s Screens) ConnectedInfo(ip string) {
	s.B.ShowText("[ Wi-Fi Connected ]", ip, "http://qbit.local", "")
}

// WifiConnecting shows the countdown bar toward the portal threshold.
func (s Screens) WifiConnecting(elapsedMs uint64) {
	const barLen = 18
	filled := int(elapsedMs * barLen / PortalThresholdMs)
	if filled > barLen {
		filled = barLen
	}
	bar := make([]byte, 0, barLen+2)
	bar = append(bar, '[')
	for i := 0; i < barLen; i++ {
		if i < filled {
			bar = append(bar, '#')
		} else {
			bar = append(bar, '.')
		}
	}
	bar = append(bar, ']')
	s.B.ShowText("[ Wi-Fi Setup ]", "Connecting...", string(bar), "")
}

// WifiPortal shows the provisioning access point instructions, with a
// second detail page toggled by tap.
func (s Screens) WifiPortal(apName string, details bool) {
	if details {
		s.B.ShowText("[ Portal Active ]", "Join the AP, then", "open 192.168.4.1", "Tap to go back")
		return
	}
	s.B.ShowText("[ Wi-Fi Setup ]", "AP: "+apName, "http://192.168.4.1", "Tap for details")
}

// Poke draws the active poke with the given scroll offsets.
func (s Screens) Poke(rec *PokeRecord, senderScroll, textScroll int16, senderVW, textVW uint16) {
	if rec == nil {
		return
	}
	b := s.B
	b.ClearBuffer()

	centerLine(b, pokeHeaderBase, ">> Poke! <<")

	senderH := int16(pokeElemH)
	if rec.SenderBmp != nil {
		senderH = int16(rec.SenderBmp.Height)
		b.DrawBitmap(rec.SenderBmp.Data, rec.SenderBmp.Width, rec.SenderBmp.Height, pokeSenderY, senderScroll)
	} else {
		scrollText(b, pokeSenderY+12, rec.Sender, senderScroll, senderVW)
	}

	textY := pokeSenderY + senderH + 1
	if rec.TextBmp != nil {
		b.DrawBitmap(rec.TextBmp.Data, rec.TextBmp.Width, rec.TextBmp.Height, textY, textScroll)
	} else if rec.Text != "" {
		scrollText(b, textY+12, rec.Text, textScroll, textVW)
	}

	b.Rotate180()
	_ = b.Display()
}

// HistoryPoke draws history entry idx of count, most recent first.
func (s Screens) HistoryPoke(rec *PokeRecord, idx, count int) {
	if rec == nil {
		return
	}
	b := s.B
	b.ClearBuffer()

	centerLine(b, pokeHeaderBase, fmt.Sprintf("[ Poke %d/%d ]", idx+1, count))

	if rec.SenderBmp != nil {
		b.DrawBitmap(rec.SenderBmp.Data, rec.SenderBmp.Width, rec.SenderBmp.Height, pokeSenderY, 0)
	} else {
		b.WriteLineAt(4, pokeSenderY+12, rec.Sender)
	}

	textY := int16(pokeSenderY + pokeElemH + 1)
	if rec.TextBmp != nil {
		b.DrawBitmap(rec.TextBmp.Data, rec.TextBmp.Width, rec.TextBmp.Height, textY, 0)
	} else if rec.Text != "" {
		b.WriteLineAt(4, textY+12, rec.Text)
	}

	b.Rotate180()
	_ = b.Display()
}

func centerLine(b *oled.Buffer, baseline int16, s string) {
	w := int16(oled.TextWidth(s))
	x := (oled.Width - w) / 2
	if x < 0 {
		x = 0
	}
	b.WriteLineAt(x, baseline, s)
}

// scrollText draws a text element, wrapping circularly when it scrolls.
func scrollText(b *oled.Buffer, baseline int16, s string, scroll int16, vw uint16) {
	if vw == 0 {
		b.WriteLineAt(4, baseline, s)
		return
	}
	x := 4 - scroll
	b.WriteLineAt(x, baseline, s)
	b.WriteLineAt(x+int16(vw), baseline, s)
}
