package player

import (
	"context"
	"time"
)

// SegmentPlayer defines the audio primitive every sequencing routine is
// built on. Play blocks until the clip ends naturally, fails (a soft
// end: the error is absorbed so sequences degrade gracefully), or ctx
// is cancelled. Cancellation is cooperative and is not reported as an
// error.
type SegmentPlayer interface {
	// Play plays the clip at url to completion, soft end or cancellation.
	Play(ctx context.Context, url string) error

	// Duration reports the measured clip length, 0 when unknown.
	Duration(url string) time.Duration

	// StopAll forcibly halts every active playback instance.
	StopAll()
}

// ProgressReporter receives position and completion reports from the
// navigator after each transition.
type ProgressReporter interface {
	// RecordProgress persists the current position.
	RecordProgress(index, total int) error

	// RecordCompletion persists terminal lesson status. Idempotent
	// after the first success.
	RecordCompletion(index, total int) error
}

// PlaybackKind is decided once at slide-build time and tells the gate
// whether the slide's primary action can be auto-started.
type PlaybackKind int

const (
	// KindManual slides only ever start playback from user input.
	KindManual PlaybackKind = iota
	// KindAutoTriggerable slides carry a trigger the gate may invoke
	// after the countdown.
	KindAutoTriggerable
)

// Segment is one playable audio clip within a sequenced activity, e.g.
// one line of a dialogue.
type Segment struct {
	URL   string // Clip location
	Label string // Display text shown while the clip plays
}

// Slide is one renderable screen of the lesson. Builders produce
// slides; the navigator owns the activation lifecycle.
type Slide struct {
	ID    string // Stable id, grammar activity-<number>(-<letter>)?-<role>
	Title string // Human-readable focus line
	Body  string // Text content of the slide surface

	// Instruction gate inputs.
	InstructionTexts    []string
	InstructionAudioURL string

	// Playback behavior decided at build time.
	Kind     PlaybackKind
	Segments []Segment
	GapMode  GapMode
	GapOpts  GapOptions

	// Lifecycle hooks, invoked exactly once per activation cycle.
	OnEnter func()
	OnLeave func()
}

// AutoTriggerable reports whether the gate may auto-start this slide.
func (s *Slide) AutoTriggerable() bool {
	return s.Kind == KindAutoTriggerable && len(s.Segments) > 0
}

// activation holds the per-activation flags the navigator owns. They
// deliberately live here rather than on the slide so activation state
// never leaks into the rendering layer.
type activation struct {
	active              bool
	autoTriggered       bool
	instructionComplete bool
}

func (a *activation) reset() {
	a.active = false
	a.autoTriggered = false
	a.instructionComplete = false
}
