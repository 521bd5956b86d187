package qgif

import (
	"fmt"
	"io"
	"strings"

	"qbit/hal"
	"qbit/qbitos/oled"
)

// Player streams one animation at a time from the filestore, frame-paced,
// with selectable speed, looping, shuffle auto-advance and an optional
// embedded idle animation between files.
//
// Tick runs on the display task. The mutex guards the fields that external
// writers (dashboard, MQTT commands) touch: requested file, speed and
// auto-advance.
type Player struct {
	files  hal.Filestore
	screen *oled.Buffer
	log    hal.Logger

	mu sharedFields

	file       hal.File
	playing    bool
	frameCount uint8
	width      uint16
	height     uint16
	delays     [MaxFrames]uint16
	frameBuf   [FrameSize]byte

	currentFrame uint8
	lastFrameMs  uint64
	dataOffset   uint32

	bag       *ShuffleBag
	loopCount uint8

	idle        *Animation
	idlePlaying bool
	idleFrame   uint8
	idleLastMs  uint64
}

// sharedFields are reachable from outside the display task.
type sharedFields struct {
	lock          chan struct{} // 1-slot semaphore, created in NewPlayer
	currentFile   string
	requestedFile string
	fileChanged   bool
	speedDivisor  uint16
	loopsPerGif   uint8
}

func NewPlayer(files hal.Filestore, screen *oled.Buffer, log hal.Logger) *Player {
	p := &Player{files: files, screen: screen, log: log}
	p.mu.lock = make(chan struct{}, 1)
	p.mu.speedDivisor = 1
	p.bag = NewShuffleBag(nil)
	p.bag.Reload = p.listFiles
	return p
}

func (p *Player) lock()   { p.mu.lock <- struct{}{} }
func (p *Player) unlock() { <-p.mu.lock }

func (p *Player) logf(format string, args ...any) {
	if p.log != nil {
		p.log.WriteLineString(fmt.Sprintf(format, args...))
	}
}

// listFiles enumerates eligible animation names.
func (p *Player) listFiles() []string {
	names, err := p.files.List()
	if err != nil {
		return nil
	}
	var out []string
	for _, n := range names {
		if strings.HasSuffix(n, Ext) {
			out = append(out, n)
		}
	}
	return out
}

// HasFiles reports whether at least one eligible animation exists.
func (p *Player) HasFiles() bool { return len(p.listFiles()) > 0 }

// List returns all eligible animation names.
func (p *Player) List() []string { return p.listFiles() }

// NextFile returns the name after current in enumeration order, wrapping
// around; an unknown or empty current yields the first file.
func (p *Player) NextFile(current string) string {
	files := p.listFiles()
	if len(files) == 0 {
		return ""
	}
	for i, f := range files {
		if f == current {
			return files[(i+1)%len(files)]
		}
	}
	return files[0]
}

// BuildShuffleBag (re)scans the filestore and reshuffles. Call after files
// are added or removed.
func (p *Player) BuildShuffleBag() { p.bag.Build(p.listFiles()) }

// NextShuffle returns the next name from the shuffle bag.
func (p *Player) NextShuffle() string { return p.bag.Next() }

// SetAutoAdvance switches to the next shuffled file after each animation has
// looped loopsPerGif times. 0 disables auto-advance.
func (p *Player) SetAutoAdvance(loopsPerGif uint8) {
	p.lock()
	p.mu.loopsPerGif = loopsPerGif
	p.unlock()
}

// LoopsPerGif returns the configured auto-advance loop count.
func (p *Player) LoopsPerGif() uint8 {
	p.lock()
	defer p.unlock()
	return p.mu.loopsPerGif
}

// SetIdleAnimation configures the embedded animation played once between
// files when auto-advance fires.
func (p *Player) SetIdleAnimation(a *Animation) { p.idle = a }

// SetFile requests a file change, applied on the next Tick. An empty name
// stops playback.
func (p *Player) SetFile(name string) {
	p.lock()
	p.mu.requestedFile = name
	p.mu.fileChanged = true
	p.unlock()
}

// CurrentFile returns the name currently being played ("" if idle).
func (p *Player) CurrentFile() string {
	p.lock()
	defer p.unlock()
	return p.mu.currentFile
}

// SetSpeed sets the playback speed divisor (1 = normal, 2 = 2x, ...).
// Zero is coerced to 1.
func (p *Player) SetSpeed(divisor uint16) {
	if divisor == 0 {
		divisor = 1
	}
	p.lock()
	p.mu.speedDivisor = divisor
	p.unlock()
}

// Speed returns the current speed divisor.
func (p *Player) Speed() uint16 {
	p.lock()
	defer p.unlock()
	return p.mu.speedDivisor
}

// Usage reports filestore occupancy for the dashboard.
func (p *Player) Usage() (used, total uint32) { return p.files.Usage() }

// open validates the header, reads the delay table and prepares frame
// streaming. Failure leaves no open stream.
func (p *Player) open(name string) error {
	p.closeFile()

	f, err := p.files.Open(name)
	if err != nil {
		return err
	}

	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(f, hdr[:]); err != nil {
		f.Close()
		return fmt.Errorf("%w: read header: %v", ErrFormat, err)
	}
	h, err := ParseHeader(hdr[:])
	if err != nil {
		f.Close()
		return err
	}

	delayBytes := int(h.FrameCount) * 2
	delayBuf := make([]byte, delayBytes)
	if _, err := io.ReadFull(f, delayBuf); err != nil {
		f.Close()
		return fmt.Errorf("%w: read delays: %v", ErrFormat, err)
	}
	for i := 0; i < int(h.FrameCount); i++ {
		p.delays[i] = uint16(delayBuf[i*2]) | uint16(delayBuf[i*2+1])<<8
	}

	p.file = f
	p.frameCount = h.FrameCount
	p.width = h.Width
	p.height = h.Height
	p.dataOffset = h.DataOffset()
	p.currentFrame = 0
	p.lastFrameMs = 0 // render the first frame immediately
	p.loopCount = 0
	p.playing = true

	p.lock()
	p.mu.currentFile = name
	p.unlock()
	return nil
}

func (p *Player) closeFile() {
	if p.file != nil {
		p.file.Close()
		p.file = nil
	}
	p.playing = false
}

// readFrame seeks to frame idx and fills frameBuf.
func (p *Player) readFrame(idx uint8) bool {
	off := int64(p.dataOffset) + int64(idx)*FrameSize
	if _, err := p.file.Seek(off, io.SeekStart); err != nil {
		return false
	}
	_, err := io.ReadFull(p.file, p.frameBuf[:])
	return err == nil
}

// stop aborts playback of the current stream without crashing; the
// orchestrator handles user-visible recovery.
func (p *Player) stop() {
	p.closeFile()
	p.lock()
	p.mu.currentFile = ""
	p.unlock()
}

// Tick advances playback. Non-blocking: returns immediately when no frame
// is due.
func (p *Player) Tick(nowMs uint64) {
	if p.screen == nil {
		return
	}

	p.lock()
	speed := p.mu.speedDivisor
	changed := p.mu.fileChanged
	requested := p.mu.requestedFile
	p.mu.fileChanged = false
	loopsPerGif := p.mu.loopsPerGif
	p.unlock()
	if speed == 0 {
		speed = 1
	}

	// Idle animation playback between files.
	if p.idlePlaying && p.idle != nil {
		// A pending file change cancels the idle run.
		if !changed {
			p.tickIdle(nowMs, speed)
			return
		}
		p.idlePlaying = false
		p.idleFrame = 0
	}

	if changed {
		if requested != "" {
			if err := p.open(requested); err != nil {
				p.logf("qgif: open %s: %v", requested, err)
				p.stop()
			}
		} else {
			p.stop()
		}
	}

	if !p.playing {
		return
	}

	delay := uint64(p.delays[p.currentFrame] / speed)
	if delay < 1 {
		delay = 1
	}
	if nowMs-p.lastFrameMs < delay {
		return
	}

	if p.readFrame(p.currentFrame) {
		p.screen.RenderFrame(p.frameBuf[:], int(p.width), int(p.height))
	} else {
		p.logf("qgif: short frame read, stopping %s", p.CurrentFile())
		p.stop()
		return
	}

	p.lastFrameMs = nowMs
	p.currentFrame++
	if p.currentFrame < p.frameCount {
		return
	}
	p.currentFrame = 0
	p.loopCount++

	if loopsPerGif == 0 || p.loopCount < loopsPerGif {
		return
	}
	p.loopCount = 0

	if p.idle != nil {
		p.idlePlaying = true
		p.idleFrame = 0
		p.idleLastMs = 0 // first idle frame immediately
		return
	}
	if next := p.NextShuffle(); next != "" {
		p.SetFile(next)
	}
}

// tickIdle plays the embedded idle animation once, then advances to the
// next shuffled file.
func (p *Player) tickIdle(nowMs uint64, speed uint16) {
	a := p.idle
	delay := uint64(a.Delays[p.idleFrame] / speed)
	if delay < 1 {
		delay = 1
	}
	if nowMs-p.idleLastMs < delay {
		return
	}

	p.screen.RenderFrame(a.Frames[p.idleFrame], int(a.Width), int(a.Height))
	p.idleLastMs = nowMs
	p.idleFrame++
	if p.idleFrame < a.FrameCount {
		return
	}
	p.idlePlaying = false
	p.idleFrame = 0
	if next := p.NextShuffle(); next != "" {
		p.SetFile(next)
	}
}

// PlayAnimation renders an in-memory animation frame by frame through the
// normal transform, pacing with the supplied sleep function. Used for the
// boot sequence, where blocking is acceptable.
func (p *Player) PlayAnimation(a *Animation, speed uint16, sleepMs func(uint64), onFrame func()) {
	if a == nil || p.screen == nil {
		return
	}
	if speed == 0 {
		speed = 1
	}
	for f := uint8(0); f < a.FrameCount; f++ {
		if onFrame != nil {
			onFrame()
		}
		p.screen.RenderFrame(a.Frames[f], int(a.Width), int(a.Height))
		d := uint64(a.Delays[f] / speed)
		if d < 1 {
			d = 1
		}
		if sleepMs != nil {
			sleepMs(d)
		}
	}
}
