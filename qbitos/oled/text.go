package oled

import (
	"image/color"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freemono"
	"tinygo.org/x/tinyfont/proggy"
)

var (
	bodyFont  = &proggy.TinySZ8pt7b
	clockFont = &freemono.Bold12pt7b
)

var white = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}

// Text line baselines for the four-line status layout.
const (
	textX     = 4
	textLine1 = 13
	textLine2 = 28
	textLine3 = 43
	textLine4 = 58
)

// TextWidth returns the pixel width of s in the body font, used for
// scroll-timeout decisions.
func TextWidth(s string) uint16 {
	_, outbox := tinyfont.LineWidth(bodyFont, s)
	return uint16(outbox)
}

// ShowText renders up to four lines of body text and flushes. Empty lines
// are skipped.
func (b *Buffer) ShowText(l1, l2, l3, l4 string) {
	b.ClearBuffer()
	ys := [4]int16{textLine1, textLine2, textLine3, textLine4}
	for i, s := range [4]string{l1, l2, l3, l4} {
		if s == "" {
			continue
		}
		tinyfont.WriteLine(b, bodyFont, textX, ys[i], s, white)
	}
	b.Rotate180()
	_ = b.Display()
}

// ShowClock renders the large centered time with the date beneath it.
func (b *Buffer) ShowClock(timeStr, dateStr string) {
	b.ClearBuffer()

	_, tw := tinyfont.LineWidth(clockFont, timeStr)
	tx := (Width - int16(tw)) / 2
	if tx < 0 {
		tx = 0
	}
	tinyfont.WriteLine(b, clockFont, tx, 38, timeStr, white)

	_, dw := tinyfont.LineWidth(bodyFont, dateStr)
	dx := (Width - int16(dw)) / 2
	if dx < 0 {
		dx = 0
	}
	tinyfont.WriteLine(b, bodyFont, dx, 58, dateStr, white)

	b.Rotate180()
	_ = b.Display()
}

// WriteLineAt draws a single body-font line at an arbitrary baseline without
// clearing or flushing. Used by composite screens (pokes, history).
func (b *Buffer) WriteLineAt(x, y int16, s string) {
	tinyfont.WriteLine(b, bodyFont, x, y, s, white)
}
