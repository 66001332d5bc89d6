package player

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// waitFor polls cond until it holds or the timeout expires.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func testGateConfig() Config {
	cfg := DefaultConfig()
	cfg.Countdown = 30 * time.Millisecond
	cfg.CountdownTick = 10 * time.Millisecond
	return cfg
}

// releaseInto marks the activation the way the navigator's release
// hook does. The gate goroutine is the only caller, and the tests read
// the flags only after the session has unwound.
func releaseInto(act *activation) func(fire bool) bool {
	return func(fire bool) bool {
		act.instructionComplete = true
		if fire && !act.autoTriggered {
			act.autoTriggered = true
			return true
		}
		return false
	}
}

// stateRecorder collects gate state callbacks.
type stateRecorder struct {
	mu     sync.Mutex
	states []GateState
}

func (r *stateRecorder) record(s GateState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *stateRecorder) all() []GateState {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]GateState, len(r.states))
	copy(out, r.states)
	return out
}

// TestGateReleasesManualSlide tests that a slide without auto playback
// releases immediately, with no countdown and no trigger.
func TestGateReleasesManualSlide(t *testing.T) {
	mock := NewMockSegmentPlayer()
	slide := &Slide{ID: "activity-1-speaking", Kind: KindManual}
	var act activation
	rec := &stateRecorder{}

	g := newGateSession(testGateConfig(), mock, slide, releaseInto(&act), nil)
	g.onState = rec.record
	g.start()
	<-g.done

	if g.state() != GateReleased {
		t.Errorf("state = %v, want %v", g.state(), GateReleased)
	}
	if !act.instructionComplete {
		t.Error("instructionComplete not set after release")
	}
	states := rec.all()
	if len(states) == 0 || states[len(states)-1] != GateReleased {
		t.Errorf("recorded states %v, want released last", states)
	}
	for _, s := range states {
		if s == GateCountingDown {
			t.Error("manual slide must not count down")
		}
	}
	if mock.PlayCount() != 0 {
		t.Errorf("played %d clips, want 0", mock.PlayCount())
	}
}

// TestGateInstructionAudioFailsOpen tests that a broken instruction
// clip logs and releases rather than blocking the learner.
func TestGateInstructionAudioFailsOpen(t *testing.T) {
	mock := NewMockSegmentPlayer()
	mock.SetPlayErr("intro.wav", errors.New("decode failed"))
	slide := &Slide{
		ID:                  "activity-1-listening",
		Kind:                KindManual,
		InstructionAudioURL: "intro.wav",
	}
	var act activation

	g := newGateSession(testGateConfig(), mock, slide, releaseInto(&act), nil)
	g.start()
	<-g.done

	if g.state() != GateReleased {
		t.Errorf("state = %v, want %v", g.state(), GateReleased)
	}
	if !act.instructionComplete {
		t.Error("instructionComplete not set after failed instruction audio")
	}
	if got := mock.Plays(); len(got) != 1 || got[0] != "intro.wav" {
		t.Errorf("plays = %v, want [intro.wav]", got)
	}
}

// TestGateCountdownAutoTrigger tests that an auto-triggerable slide
// counts down and fires its trigger exactly once.
func TestGateCountdownAutoTrigger(t *testing.T) {
	mock := NewMockSegmentPlayer()
	slide := &Slide{
		ID:       "activity-2-listening",
		Kind:     KindAutoTriggerable,
		Segments: []Segment{{URL: "a.wav"}},
	}
	var act activation
	var fired atomic.Int32

	var ticks []time.Duration
	var mu sync.Mutex

	g := newGateSession(testGateConfig(), mock, slide, releaseInto(&act), func() {
		fired.Add(1)
	})
	g.onCountdown = func(remaining time.Duration) {
		mu.Lock()
		ticks = append(ticks, remaining)
		mu.Unlock()
	}
	g.start()
	<-g.done

	if got := fired.Load(); got != 1 {
		t.Errorf("trigger fired %d times, want 1", got)
	}
	if !act.autoTriggered {
		t.Error("autoTriggered not set")
	}
	if !act.instructionComplete {
		t.Error("instructionComplete not set")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(ticks) < 2 {
		t.Fatalf("recorded %d countdown ticks, want at least 2", len(ticks))
	}
	if ticks[0] != 30*time.Millisecond {
		t.Errorf("first tick = %v, want full countdown", ticks[0])
	}
	if ticks[len(ticks)-1] != 0 {
		t.Errorf("last tick = %v, want 0", ticks[len(ticks)-1])
	}
	for i := 1; i < len(ticks); i++ {
		if ticks[i] > ticks[i-1] {
			t.Errorf("countdown not monotonic: %v", ticks)
			break
		}
	}
}

// TestGateManualShortCircuit tests that a click during the countdown
// releases immediately and the trigger still fires exactly once.
func TestGateManualShortCircuit(t *testing.T) {
	cfg := testGateConfig()
	cfg.Countdown = 10 * time.Second // would block the test if not short-circuited

	mock := NewMockSegmentPlayer()
	slide := &Slide{
		ID:       "activity-2-listening",
		Kind:     KindAutoTriggerable,
		Segments: []Segment{{URL: "a.wav"}},
	}
	var act activation
	var fired atomic.Int32

	g := newGateSession(cfg, mock, slide, releaseInto(&act), func() {
		fired.Add(1)
	})
	g.start()

	waitFor(t, time.Second, func() bool { return g.state() == GateCountingDown })
	g.manual()
	g.manual() // second click is a no-op
	<-g.done

	if g.state() != GateReleased {
		t.Errorf("state = %v, want %v", g.state(), GateReleased)
	}
	if got := fired.Load(); got != 1 {
		t.Errorf("trigger fired %d times, want 1", got)
	}
}

// TestGateCancelDuringCountdown tests that teardown mid-countdown
// leaves the activation unreleased and never fires the trigger.
func TestGateCancelDuringCountdown(t *testing.T) {
	cfg := testGateConfig()
	cfg.Countdown = 10 * time.Second

	mock := NewMockSegmentPlayer()
	slide := &Slide{
		ID:       "activity-3-listening",
		Kind:     KindAutoTriggerable,
		Segments: []Segment{{URL: "a.wav"}},
	}
	var act activation
	var fired atomic.Int32

	g := newGateSession(cfg, mock, slide, releaseInto(&act), func() {
		fired.Add(1)
	})
	g.start()

	waitFor(t, time.Second, func() bool { return g.state() == GateCountingDown })
	g.cancelAndWait()

	if got := fired.Load(); got != 0 {
		t.Errorf("trigger fired %d times after cancel, want 0", got)
	}
	if act.instructionComplete {
		t.Error("instructionComplete set after cancelled countdown")
	}
	if g.state() == GateReleased {
		t.Error("cancelled gate must not release")
	}
}

// TestGateCancelDuringInstruction tests teardown while the instruction
// clip is still playing.
func TestGateCancelDuringInstruction(t *testing.T) {
	mock := NewMockSegmentPlayer()
	mock.PlayDelay = 10 * time.Second
	slide := &Slide{
		ID:                  "activity-1-listening",
		Kind:                KindManual,
		InstructionAudioURL: "intro.wav",
	}
	var act activation

	g := newGateSession(testGateConfig(), mock, slide, releaseInto(&act), nil)
	g.start()

	waitFor(t, time.Second, func() bool { return g.state() == GatePlayingInstruction })
	g.cancelAndWait()

	if act.instructionComplete {
		t.Error("instructionComplete set after cancelled instruction")
	}
	if mock.Cancelled() != 1 {
		t.Errorf("cancelled plays = %d, want 1", mock.Cancelled())
	}
}
