package audio

import (
	"context"
	"sync"
	"time"
)

// MockSink implements Sink for testing. It simulates playback by
// sleeping for the clip's measured duration, optionally scaled so
// tests run fast, and records every play for verification.
type MockSink struct {
	mu sync.Mutex

	// SpeedMultiplier divides simulated playback time; 0 means play
	// instantly.
	SpeedMultiplier float64

	// PlayErr, when set, is returned from every Play call.
	PlayErr error

	// FallbackDuration substitutes for clips with unknown duration.
	FallbackDuration time.Duration

	plays     []string
	cancelled int
}

// NewMockSink creates a mock sink that completes playback instantly.
func NewMockSink() *MockSink {
	return &MockSink{}
}

// Play simulates rendering the clip.
func (s *MockSink) Play(ctx context.Context, clip *Clip) error {
	s.mu.Lock()
	s.plays = append(s.plays, clip.URL)
	err := s.PlayErr
	d := clip.Duration
	if d == 0 {
		d = s.FallbackDuration
	}
	if s.SpeedMultiplier > 0 {
		d = time.Duration(float64(d) / s.SpeedMultiplier)
	} else {
		d = 0
	}
	s.mu.Unlock()

	if err != nil {
		return err
	}
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		s.mu.Lock()
		s.cancelled++
		s.mu.Unlock()
		return nil
	case <-timer.C:
		return nil
	}
}

// Plays returns the URLs played so far, in order.
func (s *MockSink) Plays() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.plays))
	copy(out, s.plays)
	return out
}

// Cancelled returns how many plays were cut short by cancellation.
func (s *MockSink) Cancelled() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}
