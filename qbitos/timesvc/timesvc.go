// Package timesvc formats wall-clock time for the clock screen and status
// payloads.
package timesvc

import (
	"sync"
	"time"
)

// Service formats times in a configurable zone. The now function is
// injectable for tests.
type Service struct {
	mu  sync.Mutex
	loc *time.Location
	now func() time.Time
}

func New() *Service {
	return &Service{loc: time.UTC, now: time.Now}
}

// SetTimezone switches to an IANA zone name. Unknown names are rejected and
// the previous zone is kept.
func (s *Service) SetTimezone(name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.loc = loc
	s.mu.Unlock()
	return nil
}

func (s *Service) local() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now().In(s.loc)
}

// Formatted returns HH:MM for the clock screen.
func (s *Service) Formatted() string { return s.local().Format("15:04") }

// DateFormatted returns YYYY-MM-DD for the clock screen.
func (s *Service) DateFormatted() string { return s.local().Format("2006-01-02") }

// ISO8601 returns the full timestamp for status payloads.
func (s *Service) ISO8601() string { return s.local().Format(time.RFC3339) }

// Epoch returns Unix seconds.
func (s *Service) Epoch() int64 { return s.local().Unix() }
