//go:build !tinygo

package hal

import (
	"errors"
	"image"

	"github.com/hajimehoshi/ebiten/v2"

	"qbit/internal/buildinfo"
)

const windowScale = 4

// RunWindow opens a desktop window mirroring the OLED and forwarding
// mouse/space input to the touch pin. It blocks until the window closes.
func RunWindow(h HAL, title string) error {
	hh, ok := h.(*hostHAL)
	if !ok {
		return errors.New("hal: RunWindow needs a host HAL")
	}

	g := &hostGame{h: hh}
	ebiten.SetWindowTitle(title + " (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(DisplayWidth*windowScale, DisplayHeight*windowScale)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}

type hostGame struct {
	h       *hostHAL
	img     *image.RGBA
	fbImg   *ebiten.Image
	scratch [DisplayBytes]byte
}

func (g *hostGame) Update() error {
	pressed := ebiten.IsKeyPressed(ebiten.KeySpace) ||
		ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	g.h.touch.Set(pressed)
	// W toggles the simulated WiFi link for provisioning-flow testing.
	if ebiten.IsKeyPressed(ebiten.KeyW) {
		g.h.link.SetUp(false)
	} else if ebiten.IsKeyPressed(ebiten.KeyE) {
		g.h.link.SetUp(true)
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	if g.img == nil {
		g.img = image.NewRGBA(image.Rect(0, 0, DisplayWidth, DisplayHeight))
		g.fbImg = ebiten.NewImage(DisplayWidth, DisplayHeight)
	}

	g.h.sink.snapshot(g.scratch[:])
	lit := g.h.sink.brightness()

	dst := g.img.Pix
	for y := 0; y < DisplayHeight; y++ {
		page := y / 8
		bit := uint(y % 8)
		for x := 0; x < DisplayWidth; x++ {
			on := g.scratch[page*DisplayWidth+x]&(1<<bit) != 0
			j := (y*DisplayWidth + x) * 4
			var v byte
			if on {
				v = lit
			}
			dst[j+0] = v
			dst[j+1] = v
			dst[j+2] = v
			dst[j+3] = 0xFF
		}
	}

	g.fbImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return DisplayWidth, DisplayHeight
}
