package display

import (
	"errors"
	"testing"

	"qbit/hal"
	"qbit/qbitos/oled"
	"qbit/qbitos/qgif"
	"qbit/qbitos/settings"
)

type emptyStore struct{}

func (emptyStore) Open(string) (hal.File, error) { return nil, errors.New("not found") }
func (emptyStore) Exists(string) bool            { return false }
func (emptyStore) List() ([]string, error)       { return nil, nil }
func (emptyStore) Remove(string) error           { return nil }
func (emptyStore) Usage() (uint32, uint32)       { return 0, 0 }

type fixedClock uint64

func (c fixedClock) NowMs() uint64 { return uint64(c) }

func TestPlayerSeedUsesConfiguredLoops(t *testing.T) {
	set, _ := settings.NewStore(nil)
	set.Update(func(v *settings.Values) { v.LoopsPerGif = 3 })

	task := &Task{
		Player:   qgif.NewPlayer(emptyStore{}, oled.New(nil), nil),
		Settings: set,
		Pub:      NopPublisher{},
		Clock:    fixedClock(0),
	}
	task.execOne(Effect{Op: OpPlayerSeed})
	if got := task.Player.LoopsPerGif(); got != 3 {
		t.Fatalf("LoopsPerGif() = %d, want 3", got)
	}
}
