package clock

import (
	"sync"
	"time"
)

// MockTime is a controllable TimeProvider for tests.
type MockTime struct {
	mu  sync.RWMutex
	now time.Time
}

func NewMockTime(start time.Time) *MockTime {
	return &MockTime{now: start}
}

func (m *MockTime) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

// Advance moves the mocked time forward by d.
func (m *MockTime) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}
