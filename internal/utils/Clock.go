package utils

import (
	"fmt"
	"time"
)

// DefaultTimezone is the timezone attendance data is reported in.
const DefaultTimezone = "Asia/Tokyo"

type Clock interface {
	Now() time.Time
	Location() *time.Location
}

// SystemClock reports wall time in Zone, or in UTC when Zone is nil.
type SystemClock struct {
	Zone *time.Location
}

func NewSystemClock(timezone string) (*SystemClock, error) {
	if timezone == "" {
		timezone = DefaultTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", timezone, err)
	}
	return &SystemClock{Zone: loc}, nil
}

func (s SystemClock) Now() time.Time {
	return time.Now().In(s.Location())
}

func (s SystemClock) Location() *time.Location {
	if s.Zone == nil {
		return time.UTC
	}
	return s.Zone
}

type MockClock struct {
	FixedNow time.Time
}

func (m *MockClock) Now() time.Time {
	return m.FixedNow
}

func (m *MockClock) Location() *time.Location {
	return m.FixedNow.Location()
}

func (m *MockClock) SetNow(now time.Time) {
	m.FixedNow = now
}
