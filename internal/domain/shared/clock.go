package shared

import "time"

// Clock supplies wall-clock timestamps for events and transactions.
// Simulated time is the day counter; the clock only stamps records.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system time in UTC
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now().UTC()
}

// MockClock is a controllable Clock for tests
type MockClock struct {
	CurrentTime time.Time
}

func (m *MockClock) Now() time.Time {
	return m.CurrentTime
}

// Advance moves the mock clock forward by the given duration
func (m *MockClock) Advance(d time.Duration) {
	m.CurrentTime = m.CurrentTime.Add(d)
}

// NewMockClock creates a MockClock starting at the given time.
// A zero start time defaults to 2025-01-01 UTC so test output stays stable.
func NewMockClock(start time.Time) *MockClock {
	if start.IsZero() {
		start = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return &MockClock{CurrentTime: start}
}

func NewRealClock() Clock {
	return RealClock{}
}
