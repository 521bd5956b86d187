package settings

import "testing"

type mapBackend struct {
	kv    map[string]string
	saved map[string]string
}

func (b *mapBackend) Load() (map[string]string, error) { return b.kv, nil }
func (b *mapBackend) Save(kv map[string]string) error  { b.saved = kv; return nil }

func TestNewStoreDefaults(t *testing.T) {
	s, err := NewStore(nil)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	v := s.Snapshot()
	if v.DeviceName != DefaultDeviceName || v.MQTTPort != DefaultMQTTPort ||
		v.BuzzerVolume != DefaultBuzzerVolume || v.PlaybackSpeed != 1 {
		t.Fatalf("defaults = %+v", v)
	}
}

func TestNewStoreAppliesBackend(t *testing.T) {
	b := &mapBackend{kv: map[string]string{
		"DEVICE_ID":      "qbit-42",
		"MQTT_PORT":      "8883",
		"BUZZER_VOLUME":  "9",
		"PLAYBACK_SPEED": "3",
		"MQTT_PORT_BAD":  "x",
	}}
	s, err := NewStore(b)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	v := s.Snapshot()
	if v.DeviceID != "qbit-42" || v.MQTTPort != 8883 || v.BuzzerVolume != 9 || v.PlaybackSpeed != 3 {
		t.Fatalf("loaded = %+v", v)
	}
	// Absent keys keep their defaults.
	if v.DeviceName != DefaultDeviceName {
		t.Fatalf("DeviceName = %q, want default", v.DeviceName)
	}
}

func TestPersistRoundTrip(t *testing.T) {
	b := &mapBackend{kv: map[string]string{}}
	s, _ := NewStore(b)
	s.Update(func(v *Values) { v.DeviceID = "abc"; v.WSPort = 9001 })
	if err := s.Persist(); err != nil {
		t.Fatalf("Persist() error = %v", err)
	}
	if b.saved["DEVICE_ID"] != "abc" || b.saved["WS_PORT"] != "9001" {
		t.Fatalf("saved = %v", b.saved)
	}
}

func TestToggleMuteSavesAndRestores(t *testing.T) {
	s, _ := NewStore(nil)
	s.SetBuzzerVolume(7)

	if muted := s.ToggleMute(); !muted {
		t.Fatalf("ToggleMute() = false, want muted")
	}
	if !s.Muted() || s.BuzzerVolume() != 0 {
		t.Fatalf("volume after mute = %d", s.BuzzerVolume())
	}

	if muted := s.ToggleMute(); muted {
		t.Fatalf("ToggleMute() = true, want unmuted")
	}
	if s.BuzzerVolume() != 7 {
		t.Fatalf("restored volume = %d, want 7", s.BuzzerVolume())
	}
}

func TestToggleMuteFromZeroSavedVolume(t *testing.T) {
	s, _ := NewStore(nil)
	s.Update(func(v *Values) { v.BuzzerVolume = 0; v.SavedVolume = 0 })
	s.ToggleMute() // unmute with nothing saved falls back to the default
	if s.BuzzerVolume() != DefaultBuzzerVolume {
		t.Fatalf("volume = %d, want %d", s.BuzzerVolume(), DefaultBuzzerVolume)
	}
}

func TestSetPlaybackSpeedClampsZero(t *testing.T) {
	s, _ := NewStore(nil)
	s.SetPlaybackSpeed(0)
	if got := s.PlaybackSpeed(); got != 1 {
		t.Fatalf("PlaybackSpeed() = %d, want 1", got)
	}
}
