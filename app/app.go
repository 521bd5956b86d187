// Package app wires the HAL into the runtime: queues, screen, player and the
// input and display tasks. Network and dashboard surfaces are host-side and
// attach from the entrypoint, so this package builds for both targets.
package app

import (
	"qbit/hal"
	"qbit/qbitos/display"
	"qbit/qbitos/event"
	"qbit/qbitos/gesture"
	"qbit/qbitos/melody"
	"qbit/qbitos/oled"
	"qbit/qbitos/qgif"
	"qbit/qbitos/settings"
	"qbit/qbitos/timesvc"
)

// Runtime owns the shared state of a running device.
type Runtime struct {
	Gestures event.GestureQueue
	Net      event.NetQueue
	Conn     event.Conn

	Screen *oled.Buffer
	Player *qgif.Player
	Time   *timesvc.Service

	Display *display.Task
	Input   *gesture.Task
}

// New wires everything up but starts nothing. pub may be nil when running
// unlinked.
func New(h hal.HAL, set *settings.Store, pub display.Publisher) *Runtime {
	rt := &Runtime{}
	rt.Screen = oled.New(h.Display())
	if bs, ok := h.Display().(hal.BrightnessSink); ok {
		bs.SetBrightness(set.Brightness())
	}
	rt.Player = qgif.NewPlayer(h.Files(), rt.Screen, h.Logger())
	rt.Time = timesvc.New()
	if err := rt.Time.SetTimezone(set.Timezone()); err != nil {
		h.Logger().WriteLineString("app: timezone " + set.Timezone() + " unavailable, using UTC")
	}

	rt.Display = &display.Task{
		Screens:  display.Screens{B: rt.Screen},
		Player:   rt.Player,
		Melody:   melody.NewPlayer(h.Tone()),
		Settings: set,
		Time:     rt.Time,
		Gestures: &rt.Gestures,
		Net:      &rt.Net,
		Conn:     &rt.Conn,
		Pub:      pub,
		Clock:    h.Clock(),
		Link:     h.Link(),
		Log:      h.Logger(),
	}
	rt.Input = &gesture.Task{
		Pin:   h.Touch(),
		Clock: h.Clock(),
		Out:   &rt.Gestures,
		Log:   h.Logger(),
	}
	return rt
}

// Run starts the input task and blocks in the display task until stop
// closes.
func (rt *Runtime) Run(stop <-chan struct{}) {
	go rt.Input.Run(stop)
	rt.Display.Run(stop)
}
