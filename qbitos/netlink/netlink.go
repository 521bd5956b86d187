// Package netlink is the network task: it owns the WebSocket link to the
// backend, the MQTT session, and the WiFi link watcher, and feeds everything
// inbound into the network queue as typed events.
package netlink

import (
	"fmt"
	"sync"

	"qbit/hal"
	"qbit/internal/buildinfo"
	"qbit/qbitos/event"
	"qbit/qbitos/settings"
)

// Reconnect cadence. Fixed intervals, no backoff: the device is the only
// client and the links are local.
const (
	wsReconnectMs   = 5000
	mqttReconnectMs = 5000
	linkPollMs      = 1000
)

// Task runs the network side. Construct with New; Run blocks until stop
// closes.
type Task struct {
	set  *settings.Store
	link hal.Link
	log  hal.Logger
	out  *event.NetQueue
	conn *event.Conn

	ws   *wsClient
	mqtt *mqttClient
}

func New(set *settings.Store, link hal.Link, log hal.Logger, out *event.NetQueue, conn *event.Conn) *Task {
	t := &Task{set: set, link: link, log: log, out: out, conn: conn}
	t.ws = newWSClient(t)
	t.mqtt = newMQTTClient(t)
	return t
}

func (t *Task) logf(format string, args ...any) {
	if t.log != nil {
		t.log.WriteLineString(fmt.Sprintf(format, args...))
	}
}

// Run starts the link watcher, WebSocket and MQTT loops and blocks until
// stop closes.
func (t *Task) Run(stop <-chan struct{}) {
	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); t.watchLink(stop) }()
	go func() { defer wg.Done(); t.ws.run(stop) }()
	go func() { defer wg.Done(); t.mqtt.run(stop) }()
	wg.Wait()
}

// registration returns the device identity sent to the backend on connect.
func (t *Task) registration() map[string]any {
	v := t.set.Snapshot()
	return map[string]any{
		"type":    "device.register",
		"id":      v.DeviceID,
		"name":    v.DeviceName,
		"ip":      t.link.IP(),
		"version": buildinfo.Short(),
	}
}

// Publisher surface used by the display task.

func (t *Task) PublishTouch(name string) {
	t.mqtt.publish("touch", name, false)
}

func (t *Task) PublishMuteState(muted bool) {
	state := "OFF"
	if muted {
		state = "ON"
	}
	t.mqtt.publish("mute/state", state, true)
}

func (t *Task) PublishAnimationState(file string) {
	t.mqtt.publish("animation/state", file, true)
}

func (t *Task) ClaimConfirm(user string) {
	t.ws.send(map[string]any{"type": "claim_confirm", "userName": user})
}

func (t *Task) ClaimReject(user string) {
	t.ws.send(map[string]any{"type": "claim_reject", "userName": user})
}
