//go:build tinygo

package hal

import (
	"errors"
	"machine"
	"time"

	"tinygo.org/x/drivers/ssd1306"
)

// Pin assignment for the qbit board rev A.
const (
	pinTouch = machine.GPIO4
	pinSDA   = machine.GPIO20
	pinSCL   = machine.GPIO21
)

type deviceHAL struct {
	logger deviceLogger
	sink   *ssd1306Sink
	touch  devicePin
	tone   nullTone
	files  nullFilestore
	clk    deviceClock
	link   nullLink
}

// New returns the on-device HAL implementation.
func New() HAL {
	i2c := machine.I2C0
	_ = i2c.Configure(machine.I2CConfig{Frequency: 400_000, SDA: pinSDA, SCL: pinSCL})
	time.Sleep(10 * time.Millisecond)

	dev := ssd1306.NewI2C(i2c)
	dev.Configure(ssd1306.Config{
		Width:   DisplayWidth,
		Height:  DisplayHeight,
		Address: 0x3C,
	})
	dev.ClearDisplay()

	pinTouch.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})

	return &deviceHAL{sink: &ssd1306Sink{dev: &dev}, clk: deviceClock{start: time.Now()}}
}

func (h *deviceHAL) Logger() Logger     { return h.logger }
func (h *deviceHAL) Display() FrameSink { return h.sink }
func (h *deviceHAL) Touch() TouchPin    { return h.touch }
func (h *deviceHAL) Tone() Tone         { return h.tone }
func (h *deviceHAL) Files() Filestore   { return h.files }
func (h *deviceHAL) Clock() Clock       { return h.clk }
func (h *deviceHAL) Link() Link         { return h.link }

type deviceLogger struct{}

func (deviceLogger) WriteLineString(s string) { println(s) }

// ssd1306Sink pushes complete page buffers straight to the driver; the
// driver's internal buffer uses the same page-column layout.
type ssd1306Sink struct {
	dev *ssd1306.Device
}

func (s *ssd1306Sink) Flush(buf []byte) error {
	if err := s.dev.SetBuffer(buf); err != nil {
		return err
	}
	return s.dev.Display()
}

// SetBrightness writes the panel contrast register.
func (s *ssd1306Sink) SetBrightness(level uint8) {
	s.dev.Command(ssd1306.SETCONTRAST)
	s.dev.Command(level)
}

type devicePin struct{}

func (devicePin) Read() bool { return pinTouch.Get() }

type nullTone struct{}

func (nullTone) Play(freqHz uint16) {}
func (nullTone) Stop()              {}

type deviceClock struct {
	start time.Time
}

func (c deviceClock) NowMs() uint64 {
	return uint64(time.Since(c.start) / time.Millisecond)
}

// nullFilestore reports an empty store until the flash filesystem collaborator
// lands for this board.
type nullFilestore struct{}

var errNoFS = errors.New("hal: no flash filesystem")

func (nullFilestore) Open(name string) (File, error) { return nil, errNoFS }
func (nullFilestore) Exists(name string) bool        { return false }
func (nullFilestore) List() ([]string, error)        { return nil, nil }
func (nullFilestore) Remove(name string) error       { return errNoFS }
func (nullFilestore) Usage() (used, total uint32)    { return 0, 0 }

type nullLink struct{}

func (nullLink) Up() bool           { return false }
func (nullLink) IP() string         { return "" }
func (nullLink) StartPortal()       {}
func (nullLink) StopPortal()        {}
func (nullLink) PortalActive() bool { return false }
