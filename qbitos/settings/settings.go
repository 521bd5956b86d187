// Package settings holds the mutable device configuration and persists it
// through a pluggable backend.
package settings

import (
	"strconv"
	"sync"
)

// Defaults applied when a key is absent from the backend.
const (
	DefaultDeviceName    = "qbit"
	DefaultMQTTPort      = 1883
	DefaultMQTTPrefix    = "qbit"
	DefaultWSPort        = 8080
	DefaultBuzzerVolume  = 5
	DefaultBrightness    = 255
	DefaultPlaybackSpeed = 1
	DefaultLoopsPerGif   = 1
	DefaultTimezone      = "UTC"
)

// Backend loads and stores the flat key/value form of the settings.
type Backend interface {
	Load() (map[string]string, error)
	Save(map[string]string) error
}

// Values is the full configuration set.
type Values struct {
	DeviceID   string
	DeviceName string

	MQTTHost     string
	MQTTPort     uint16
	MQTTUser     string
	MQTTPassword string
	MQTTPrefix   string

	WSHost string
	WSPort uint16

	BuzzerVolume uint8
	SavedVolume  uint8 // volume before the last mute
	Brightness   uint8

	PlaybackSpeed uint16
	LoopsPerGif   uint8
	Timezone      string
}

// Store is the concurrency-safe settings holder. All tasks read through it;
// the network and dashboard tasks write.
type Store struct {
	mu      sync.Mutex
	v       Values
	backend Backend
}

// NewStore loads from the backend, filling defaults for missing keys. A nil
// backend yields an all-defaults volatile store.
func NewStore(b Backend) (*Store, error) {
	s := &Store{backend: b}
	s.v = Values{
		DeviceName:    DefaultDeviceName,
		MQTTPort:      DefaultMQTTPort,
		MQTTPrefix:    DefaultMQTTPrefix,
		WSPort:        DefaultWSPort,
		BuzzerVolume:  DefaultBuzzerVolume,
		SavedVolume:   DefaultBuzzerVolume,
		Brightness:    DefaultBrightness,
		PlaybackSpeed: DefaultPlaybackSpeed,
		LoopsPerGif:   DefaultLoopsPerGif,
		Timezone:      DefaultTimezone,
	}
	if b == nil {
		return s, nil
	}
	kv, err := b.Load()
	if err != nil {
		return nil, err
	}
	s.apply(kv)
	return s, nil
}

func (s *Store) apply(kv map[string]string) {
	str := func(key string, dst *string) {
		if v, ok := kv[key]; ok {
			*dst = v
		}
	}
	u16 := func(key string, dst *uint16) {
		if v, ok := kv[key]; ok {
			if n, err := strconv.ParseUint(v, 10, 16); err == nil {
				*dst = uint16(n)
			}
		}
	}
	u8 := func(key string, dst *uint8) {
		if v, ok := kv[key]; ok {
			if n, err := strconv.ParseUint(v, 10, 8); err == nil {
				*dst = uint8(n)
			}
		}
	}

	str("DEVICE_ID", &s.v.DeviceID)
	str("DEVICE_NAME", &s.v.DeviceName)
	str("MQTT_HOST", &s.v.MQTTHost)
	u16("MQTT_PORT", &s.v.MQTTPort)
	str("MQTT_USER", &s.v.MQTTUser)
	str("MQTT_PASSWORD", &s.v.MQTTPassword)
	str("MQTT_PREFIX", &s.v.MQTTPrefix)
	str("WS_HOST", &s.v.WSHost)
	u16("WS_PORT", &s.v.WSPort)
	u8("BUZZER_VOLUME", &s.v.BuzzerVolume)
	u8("SAVED_VOLUME", &s.v.SavedVolume)
	u8("BRIGHTNESS", &s.v.Brightness)
	u16("PLAYBACK_SPEED", &s.v.PlaybackSpeed)
	u8("LOOPS_PER_GIF", &s.v.LoopsPerGif)
	str("TIMEZONE", &s.v.Timezone)
}

func (s *Store) export() map[string]string {
	return map[string]string{
		"DEVICE_ID":      s.v.DeviceID,
		"DEVICE_NAME":    s.v.DeviceName,
		"MQTT_HOST":      s.v.MQTTHost,
		"MQTT_PORT":      strconv.Itoa(int(s.v.MQTTPort)),
		"MQTT_USER":      s.v.MQTTUser,
		"MQTT_PASSWORD":  s.v.MQTTPassword,
		"MQTT_PREFIX":    s.v.MQTTPrefix,
		"WS_HOST":        s.v.WSHost,
		"WS_PORT":        strconv.Itoa(int(s.v.WSPort)),
		"BUZZER_VOLUME":  strconv.Itoa(int(s.v.BuzzerVolume)),
		"SAVED_VOLUME":   strconv.Itoa(int(s.v.SavedVolume)),
		"BRIGHTNESS":     strconv.Itoa(int(s.v.Brightness)),
		"PLAYBACK_SPEED": strconv.Itoa(int(s.v.PlaybackSpeed)),
		"LOOPS_PER_GIF":  strconv.Itoa(int(s.v.LoopsPerGif)),
		"TIMEZONE":       s.v.Timezone,
	}
}

// Persist writes the current values through the backend.
func (s *Store) Persist() error {
	s.mu.Lock()
	kv := s.export()
	b := s.backend
	s.mu.Unlock()
	if b == nil {
		return nil
	}
	return b.Save(kv)
}

// Snapshot returns a copy of all values.
func (s *Store) Snapshot() Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v
}

// Update applies fn under the lock.
func (s *Store) Update(fn func(*Values)) {
	s.mu.Lock()
	fn(&s.v)
	s.mu.Unlock()
}

func (s *Store) DeviceID() string   { return s.get().DeviceID }
func (s *Store) DeviceName() string { return s.get().DeviceName }
func (s *Store) Timezone() string   { return s.get().Timezone }

func (s *Store) BuzzerVolume() uint8 {
	return s.get().BuzzerVolume
}

// SetBuzzerVolume sets the live volume without touching the saved one.
func (s *Store) SetBuzzerVolume(v uint8) {
	s.Update(func(val *Values) { val.BuzzerVolume = v })
}

// ToggleMute flips the mute state, saving and restoring the previous volume,
// and reports whether the device is now muted.
func (s *Store) ToggleMute() bool {
	var muted bool
	s.Update(func(v *Values) {
		if v.BuzzerVolume > 0 {
			v.SavedVolume = v.BuzzerVolume
			v.BuzzerVolume = 0
			muted = true
			return
		}
		restored := v.SavedVolume
		if restored == 0 {
			restored = DefaultBuzzerVolume
		}
		v.BuzzerVolume = restored
	})
	return muted
}

// Muted reports whether the buzzer volume is zero.
func (s *Store) Muted() bool { return s.get().BuzzerVolume == 0 }

func (s *Store) Brightness() uint8 { return s.get().Brightness }

func (s *Store) SetBrightness(v uint8) {
	s.Update(func(val *Values) { val.Brightness = v })
}

func (s *Store) LoopsPerGif() uint8 { return s.get().LoopsPerGif }

func (s *Store) PlaybackSpeed() uint16 { return s.get().PlaybackSpeed }

func (s *Store) SetPlaybackSpeed(v uint16) {
	if v == 0 {
		v = 1
	}
	s.Update(func(val *Values) { val.PlaybackSpeed = v })
}

func (s *Store) get() Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v
}
