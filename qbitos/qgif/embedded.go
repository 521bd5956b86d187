package qgif

// Embedded animations are generated rather than stored: the boot sequence is
// an expanding ring, the idle interlude a bouncing dot. Both go through the
// same render path as file-backed animations.

// BootAnimation returns the power-on sequence, played at high speed while the
// network comes up.
func BootAnimation() *Animation {
	const frames = 24
	a := &Animation{
		FrameCount: frames,
		Width:      FrameWidth,
		Height:     FrameHeight,
	}
	for f := 0; f < frames; f++ {
		a.Delays = append(a.Delays, 80)
		buf := make([]byte, FrameSize)
		r := 2 + f*3
		drawCircle(buf, FrameWidth/2, FrameHeight/2, r)
		if f > 4 {
			drawCircle(buf, FrameWidth/2, FrameHeight/2, r-12)
		}
		a.Frames = append(a.Frames, buf)
	}
	return a
}

// IdleAnimation returns the short interlude played between shuffled files.
func IdleAnimation() *Animation {
	const frames = 16
	a := &Animation{
		FrameCount: frames,
		Width:      FrameWidth,
		Height:     FrameHeight,
	}
	for f := 0; f < frames; f++ {
		a.Delays = append(a.Delays, 60)
		buf := make([]byte, FrameSize)
		// Dot sweeps left to right and bounces on a sine-free triangle wave.
		x := 8 + f*7
		y := FrameHeight/2 - 16 + tri(f)*4
		drawDot(buf, x, y)
		drawDot(buf, x, y+1)
		drawDot(buf, x+1, y)
		drawDot(buf, x+1, y+1)
		a.Frames = append(a.Frames, buf)
	}
	return a
}

func tri(f int) int {
	f = f % 16
	if f < 8 {
		return f
	}
	return 15 - f
}

// drawDot sets one pixel in a row-major 1bpp frame, MSB first.
func drawDot(buf []byte, x, y int) {
	if x < 0 || x >= FrameWidth || y < 0 || y >= FrameHeight {
		return
	}
	buf[y*(FrameWidth/8)+x/8] |= 0x80 >> (x % 8)
}

// drawCircle plots a midpoint circle outline.
func drawCircle(buf []byte, cx, cy, r int) {
	if r < 0 {
		return
	}
	x, y, err := r, 0, 0
	for x >= y {
		drawDot(buf, cx+x, cy+y)
		drawDot(buf, cx+y, cy+x)
		drawDot(buf, cx-y, cy+x)
		drawDot(buf, cx-x, cy+y)
		drawDot(buf, cx-x, cy-y)
		drawDot(buf, cx-y, cy-x)
		drawDot(buf, cx+y, cy-x)
		drawDot(buf, cx+x, cy-y)
		y++
		err += 1 + 2*y
		if 2*(err-x)+1 > 0 {
			x--
			err += 1 - 2*x
		}
	}
}
