//go:build !tinygo

package hal

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

type hostHAL struct {
	logger *hostLogger
	sink   *hostSink
	touch  *hostTouch
	tone   *hostTone
	files  *DirFilestore
	clk    *hostClock
	link   *hostLink
}

// HostConfig selects the host-side collaborators.
type HostConfig struct {
	// AnimDir is the directory holding .qgif files.
	AnimDir string
	// QuotaBytes caps reported storage (0 = default 1.5MB flash partition).
	QuotaBytes uint32
}

// NewHost returns a host HAL implementation backed by a local directory.
func NewHost(cfg HostConfig) HAL {
	if cfg.AnimDir == "" {
		cfg.AnimDir = "animations"
	}
	if cfg.QuotaBytes == 0 {
		cfg.QuotaBytes = 1536 * 1024
	}
	return &hostHAL{
		logger: &hostLogger{w: os.Stdout},
		sink:   newHostSink(),
		touch:  &hostTouch{},
		tone:   &hostTone{},
		files:  NewDirFilestore(cfg.AnimDir, cfg.QuotaBytes),
		clk:    newHostClock(),
		link:   &hostLink{up: true, ip: "127.0.0.1"},
	}
}

func (h *hostHAL) Logger() Logger     { return h.logger }
func (h *hostHAL) Display() FrameSink { return h.sink }
func (h *hostHAL) Touch() TouchPin    { return h.touch }
func (h *hostHAL) Tone() Tone         { return h.tone }
func (h *hostHAL) Files() Filestore   { return h.files }
func (h *hostHAL) Clock() Clock       { return h.clk }
func (h *hostHAL) Link() Link         { return h.link }

type hostLogger struct {
	mu sync.Mutex
	w  *os.File
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

// hostSink keeps the last flushed frame so the window (or the dashboard
// diagnostics endpoint) can read it without racing the display task.
type hostSink struct {
	mu    sync.Mutex
	last  [DisplayBytes]byte
	level atomic.Uint32 // panel contrast, mirrored as pixel intensity
}

func newHostSink() *hostSink {
	s := &hostSink{}
	s.level.Store(0xFF)
	return s
}

func (s *hostSink) SetBrightness(level uint8) { s.level.Store(uint32(level)) }

func (s *hostSink) brightness() uint8 { return uint8(s.level.Load()) }

func (s *hostSink) Flush(buf []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy(s.last[:], buf)
	return nil
}

func (s *hostSink) snapshot(dst []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy(dst, s.last[:])
}

// hostTouch is a virtual pin driven by the window (mouse/space) or tests.
type hostTouch struct {
	level atomic.Bool
}

func (t *hostTouch) Read() bool    { return t.level.Load() }
func (t *hostTouch) Set(high bool) { t.level.Store(high) }

type hostTone struct {
	freq atomic.Uint32
}

func (t *hostTone) Play(freqHz uint16) { t.freq.Store(uint32(freqHz)) }
func (t *hostTone) Stop()              { t.freq.Store(0) }

type hostClock struct {
	start time.Time
}

func newHostClock() *hostClock { return &hostClock{start: time.Now()} }

func (c *hostClock) NowMs() uint64 {
	return uint64(time.Since(c.start) / time.Millisecond)
}

// hostLink simulates the WiFi collaborator: up by default, toggleable for
// provisioning-flow testing.
type hostLink struct {
	mu     sync.Mutex
	up     bool
	portal bool
	ip     string
}

func (l *hostLink) Up() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.up
}

func (l *hostLink) SetUp(up bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.up = up
}

func (l *hostLink) IP() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ip
}

func (l *hostLink) StartPortal() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.portal = true
}

func (l *hostLink) StopPortal() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.portal = false
}

func (l *hostLink) PortalActive() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.portal
}
