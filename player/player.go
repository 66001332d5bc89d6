// Package player implements the slide playback and sequencing engine:
// the navigator that advances between slides with lifecycle hooks, the
// per-slide instruction gate, and the timed audio segment sessions that
// drive activity playback.
package player

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// SlideChange describes a completed navigation for UI consumption.
type SlideChange struct {
	Index        int
	Total        int
	Slide        *Slide
	PrevEnabled  bool
	NextEnabled  bool
	ProgressText string
}

// Navigator owns the ordered slide list, the cursor, and the
// enter/leave lifecycle. Exactly one slide is active at any time, or
// zero when the lesson is empty. Both long-running session slots (gate
// and playback) are explicit options: the old tenant is always
// cancelled and waited out before a new one is stored.
type Navigator struct {
	mu       sync.Mutex
	cfg      Config
	player   SegmentPlayer
	reporter ProgressReporter

	slides      []*Slide
	acts        []activation
	current     int
	initialized bool

	// gen increments on every transition; stale session callbacks
	// compare against it and drop themselves.
	gen uint64

	gate    mo.Option[*gateSession]
	session mo.Option[*PlaybackSession]

	keysAttached bool

	// Callbacks
	onSlide       func(SlideChange)
	onStatus      func(string)
	onGate        func(GateState)
	onCountdown   func(time.Duration)
	onScrollReset func()
}

// NewNavigator creates a navigator bound to a segment player and an
// optional progress reporter (nil disables persistence).
func NewNavigator(cfg Config, player SegmentPlayer, reporter ProgressReporter) *Navigator {
	return &Navigator{
		cfg:      cfg,
		player:   player,
		reporter: reporter,
		current:  -1,
		gate:     mo.None[*gateSession](),
		session:  mo.None[*PlaybackSession](),
	}
}

// Initialize installs the slide set and clamps the start index. It
// fires no lifecycle hooks; call Start to activate the first slide.
func (n *Navigator) Initialize(slides []*Slide, startIndex int) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.slides = slides
	n.acts = make([]activation, len(slides))
	n.initialized = true

	if len(slides) == 0 {
		n.current = -1
		return
	}
	n.current = lo.Clamp(startIndex, 0, len(slides)-1)
}

// Start activates the slide Initialize selected. On an empty lesson it
// reports the no-content state with both navigation controls disabled.
func (n *Navigator) Start() {
	n.mu.Lock()
	if !n.initialized {
		n.mu.Unlock()
		return
	}
	if len(n.slides) == 0 {
		n.mu.Unlock()
		if n.onSlide != nil {
			n.onSlide(SlideChange{Index: -1, ProgressText: "No content"})
		}
		return
	}
	start := n.current
	n.mu.Unlock()
	n.GoTo(start)
}

// GoTo navigates to the slide at index, clamped into range. When the
// resolved index is the current, already-active slide the call is a
// no-op. Otherwise the previous slide's sessions are fully torn down
// before the new slide's OnEnter fires; no two slides are ever
// concurrently entered.
func (n *Navigator) GoTo(index int) {
	n.mu.Lock()
	if !n.initialized || len(n.slides) == 0 {
		n.mu.Unlock()
		return
	}
	index = lo.Clamp(index, 0, len(n.slides)-1)
	if index == n.current && n.acts[n.current].active {
		n.mu.Unlock()
		return
	}

	// Evict the old tenants before anything else.
	gate := n.gate
	sess := n.session
	n.gate = mo.None[*gateSession]()
	n.session = mo.None[*PlaybackSession]()

	prev := n.current
	prevActive := prev >= 0 && n.acts[prev].active
	n.gen++
	gen := n.gen
	n.mu.Unlock()

	if g, ok := gate.Get(); ok {
		g.cancelAndWait()
	}
	if s, ok := sess.Get(); ok {
		s.cancelAndWait()
	}
	n.player.StopAll()

	n.mu.Lock()
	if n.gen != gen {
		// A newer transition superseded this one mid-teardown.
		n.mu.Unlock()
		return
	}
	var leave, enter func()
	if prevActive {
		n.acts[prev].reset()
		leave = n.slides[prev].OnLeave
	}
	n.current = index
	n.acts[index].reset()
	n.acts[index].active = true
	slide := n.slides[index]
	enter = slide.OnEnter
	total := len(n.slides)
	n.mu.Unlock()

	if leave != nil {
		leave()
	}
	if enter != nil {
		enter()
	}
	if n.onScrollReset != nil {
		n.onScrollReset()
	}
	if n.onSlide != nil {
		n.onSlide(SlideChange{
			Index:        index,
			Total:        total,
			Slide:        slide,
			PrevEnabled:  index > 0,
			NextEnabled:  index < total-1,
			ProgressText: fmt.Sprintf("Slide %d of %d", index+1, total),
		})
	}

	n.startGate(gen, index, slide)
	n.report(index, total)
}

// Next advances one slide; a no-op at the last slide (never wraps).
func (n *Navigator) Next() {
	n.mu.Lock()
	cur := n.current
	n.mu.Unlock()
	if cur < 0 {
		return
	}
	n.GoTo(cur + 1)
}

// Previous steps back one slide; a no-op at the first slide.
func (n *Navigator) Previous() {
	n.mu.Lock()
	cur := n.current
	n.mu.Unlock()
	if cur < 0 {
		return
	}
	n.GoTo(cur - 1)
}

// Position returns the current index and total slide count. Index is
// -1 while nothing is active.
func (n *Navigator) Position() (index, total int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current, len(n.slides)
}

// CurrentSlide returns the active slide, or nil when the lesson is
// empty or not started.
func (n *Navigator) CurrentSlide() *Slide {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current < 0 || n.current >= len(n.slides) {
		return nil
	}
	if !n.acts[n.current].active {
		return nil
	}
	return n.slides[n.current]
}

// GateState returns the state of the active gate session, GateIdle
// when none is running.
func (n *Navigator) GateState() GateState {
	n.mu.Lock()
	g, ok := n.gate.Get()
	n.mu.Unlock()
	if !ok {
		return GateIdle
	}
	return g.state()
}

// InstructionComplete reports whether the gate has released the
// current slide.
func (n *Navigator) InstructionComplete() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current < 0 || n.current >= len(n.acts) {
		return false
	}
	return n.acts[n.current].instructionComplete
}

// TriggerPrimary handles a user activation of the slide's primary
// control. During the countdown it short-circuits the gate; after
// release it starts (or restarts, once the prior run finished) the
// slide's playback session.
func (n *Navigator) TriggerPrimary() {
	n.mu.Lock()
	if n.current < 0 || n.current >= len(n.slides) {
		n.mu.Unlock()
		return
	}
	gen := n.gen
	act := &n.acts[n.current]

	if g, ok := n.gate.Get(); ok && g.state() != GateReleased {
		n.mu.Unlock()
		g.manual()
		return
	}

	if !act.instructionComplete {
		n.mu.Unlock()
		return
	}
	if s, ok := n.session.Get(); ok && !s.Done() {
		// A run is already in flight.
		n.mu.Unlock()
		return
	}
	act.autoTriggered = true
	n.mu.Unlock()

	n.startPlayback(gen)
}

// AttachKeys wires the arrow-key navigation exactly once for the
// lifetime of the player. Subsequent calls return ErrAlreadyAttached.
func (n *Navigator) AttachKeys(bind func(next, previous func())) error {
	n.mu.Lock()
	if n.keysAttached {
		n.mu.Unlock()
		return ErrAlreadyAttached
	}
	n.keysAttached = true
	n.mu.Unlock()

	bind(n.Next, n.Previous)
	return nil
}

// Teardown cancels every in-flight session, fires the active slide's
// OnLeave, and stops all audio. The navigator may be re-initialized
// afterwards.
func (n *Navigator) Teardown() {
	n.mu.Lock()
	gate := n.gate
	sess := n.session
	n.gate = mo.None[*gateSession]()
	n.session = mo.None[*PlaybackSession]()
	n.gen++
	n.mu.Unlock()

	// Wait the old tenants out before touching activation state, same
	// order as GoTo. The bumped generation drops any release that was
	// already in flight.
	if g, ok := gate.Get(); ok {
		g.cancelAndWait()
	}
	if s, ok := sess.Get(); ok {
		s.cancelAndWait()
	}
	n.player.StopAll()

	n.mu.Lock()
	var leave func()
	if n.current >= 0 && n.current < len(n.acts) && n.acts[n.current].active {
		n.acts[n.current].reset()
		leave = n.slides[n.current].OnLeave
	}
	n.mu.Unlock()

	if leave != nil {
		leave()
	}
}

// OnSlideChange registers the navigation callback.
func (n *Navigator) OnSlideChange(fn func(SlideChange)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.onSlide = fn
}

// OnStatus registers the transient status text callback.
func (n *Navigator) OnStatus(fn func(string)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.onStatus = fn
}

// OnGateState registers the gate state callback.
func (n *Navigator) OnGateState(fn func(GateState)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.onGate = fn
}

// OnCountdown registers the countdown tick callback. The remaining
// duration is what "Starts in Ns" renders from.
func (n *Navigator) OnCountdown(fn func(time.Duration)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.onCountdown = fn
}

// OnScrollReset registers the callback that resets the slide surface
// scroll position after a navigation.
func (n *Navigator) OnScrollReset(fn func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.onScrollReset = fn
}

// startGate begins the instruction gate for a fresh activation. A gate
// that already released for this activation is not re-run.
func (n *Navigator) startGate(gen uint64, index int, slide *Slide) {
	n.mu.Lock()
	if n.gen != gen {
		n.mu.Unlock()
		return
	}
	act := &n.acts[index]
	if act.instructionComplete {
		n.mu.Unlock()
		return
	}

	var trigger func()
	if slide.AutoTriggerable() {
		trigger = func() { n.startPlayback(gen) }
	}
	// The release write goes through the navigator's own lock so the
	// activation flags have a single synchronization domain. A stale
	// generation means a navigation or teardown won the race; the
	// release is dropped.
	markReleased := func(fire bool) bool {
		n.mu.Lock()
		defer n.mu.Unlock()
		if n.gen != gen || index >= len(n.acts) {
			return false
		}
		a := &n.acts[index]
		a.instructionComplete = true
		if fire && !a.autoTriggered {
			a.autoTriggered = true
			return true
		}
		return false
	}
	g := newGateSession(n.cfg, n.player, slide, markReleased, trigger)
	g.onState = n.onGate
	g.onCountdown = n.onCountdown
	n.gate = mo.Some(g)
	n.mu.Unlock()

	g.start()
}

// startPlayback creates and starts a playback session for the current
// slide, evicting any finished prior session. Stale generations are
// dropped: a trigger that raced a navigation does nothing.
func (n *Navigator) startPlayback(gen uint64) {
	n.mu.Lock()
	if n.gen != gen || n.current < 0 {
		n.mu.Unlock()
		return
	}
	slide := n.slides[n.current]
	if len(slide.Segments) == 0 {
		n.mu.Unlock()
		return
	}

	if s, ok := n.session.Get(); ok {
		if !s.Done() {
			n.mu.Unlock()
			return
		}
		// Old tenant already finished; evict before storing the new one.
		n.session = mo.None[*PlaybackSession]()
	}

	ps := newPlaybackSession(n.player, slide.Segments, slide.GapMode, slide.GapOpts)
	ps.onStatus = n.onStatus
	ps.onSegment = func(i int, seg Segment) {
		if n.onStatus != nil && seg.Label != "" {
			n.onStatus(seg.Label)
		}
	}
	ps.onComplete = func() {
		if n.onStatus != nil {
			n.onStatus("")
		}
	}
	n.session = mo.Some(ps)
	n.mu.Unlock()

	ps.start()
}

// report persists the position, and completion when the last slide is
// reached. Write failures are logged; local state stays authoritative
// and the next navigation retries naturally.
func (n *Navigator) report(index, total int) {
	if n.reporter == nil || !n.cfg.ReportProgress {
		return
	}
	if err := n.reporter.RecordProgress(index, total); err != nil {
		log.Warn("progress write failed", "index", index, "err", err)
	}
	if index == total-1 {
		if err := n.reporter.RecordCompletion(index, total); err != nil {
			log.Warn("completion write failed", "index", index, "err", err)
		}
	}
}
