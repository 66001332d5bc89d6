package player

import (
	"context"
	"sync"
	"time"
)

// MockSegmentPlayer implements SegmentPlayer for testing. It records
// every play in order, simulates clip length with a configurable
// delay, and supports per-URL error injection.
type MockSegmentPlayer struct {
	mu sync.Mutex

	// PlayDelay simulates how long each clip takes; 0 plays instantly.
	PlayDelay time.Duration

	durations map[string]time.Duration
	playErrs  map[string]error

	plays     []string
	cancelled int
	stopAlls  int
}

// NewMockSegmentPlayer creates a mock that plays every clip instantly.
func NewMockSegmentPlayer() *MockSegmentPlayer {
	return &MockSegmentPlayer{
		durations: make(map[string]time.Duration),
		playErrs:  make(map[string]error),
	}
}

// SetDuration sets the measured length reported for url.
func (m *MockSegmentPlayer) SetDuration(url string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.durations[url] = d
}

// SetPlayErr makes Play return err for url.
func (m *MockSegmentPlayer) SetPlayErr(url string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playErrs[url] = err
}

// Play records the play and sleeps for PlayDelay or until cancellation.
func (m *MockSegmentPlayer) Play(ctx context.Context, url string) error {
	m.mu.Lock()
	m.plays = append(m.plays, url)
	err := m.playErrs[url]
	delay := m.PlayDelay
	m.mu.Unlock()

	if err != nil {
		return err
	}
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		m.mu.Lock()
		m.cancelled++
		m.mu.Unlock()
		return nil
	case <-timer.C:
		return nil
	}
}

// Duration reports the configured clip length, 0 when unset.
func (m *MockSegmentPlayer) Duration(url string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.durations[url]
}

// StopAll records the call.
func (m *MockSegmentPlayer) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopAlls++
}

// Plays returns the URLs played so far, in order.
func (m *MockSegmentPlayer) Plays() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.plays))
	copy(out, m.plays)
	return out
}

// PlayCount returns how many plays were recorded.
func (m *MockSegmentPlayer) PlayCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.plays)
}

// Cancelled returns how many plays were cut short by cancellation.
func (m *MockSegmentPlayer) Cancelled() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancelled
}

// StopAllCalls returns how many times StopAll was invoked.
func (m *MockSegmentPlayer) StopAllCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopAlls
}
