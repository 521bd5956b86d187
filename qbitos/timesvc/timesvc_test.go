package timesvc

import (
	"testing"
	"time"
)

func fixed(s *Service, t time.Time) { s.now = func() time.Time { return t } }

func TestFormatting(t *testing.T) {
	s := New()
	fixed(s, time.Date(2026, 8, 30, 14, 7, 9, 0, time.UTC))

	if got := s.Formatted(); got != "14:07" {
		t.Errorf("Formatted() = %q, want 14:07", got)
	}
	if got := s.DateFormatted(); got != "2026-08-30" {
		t.Errorf("DateFormatted() = %q, want 2026-08-30", got)
	}
	if got := s.ISO8601(); got != "2026-08-30T14:07:09Z" {
		t.Errorf("ISO8601() = %q", got)
	}
}

func TestSetTimezone(t *testing.T) {
	s := New()
	fixed(s, time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC))

	if err := s.SetTimezone("America/New_York"); err != nil {
		t.Skipf("zone database unavailable: %v", err)
	}
	if got := s.Formatted(); got != "07:00" {
		t.Errorf("Formatted() in New York = %q, want 07:00", got)
	}

	if err := s.SetTimezone("Not/AZone"); err == nil {
		t.Errorf("SetTimezone(bad) = nil, want error")
	}
	// Bad zone must not clobber the good one.
	if got := s.Formatted(); got != "07:00" {
		t.Errorf("Formatted() after bad zone = %q, want 07:00", got)
	}
}
