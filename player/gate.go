package player

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// gateSession runs the instruction gate for one slide activation: play
// the instruction clip if the slide has one, then either release
// immediately or run the fixed pre-start countdown with the primary
// control suppressed. The navigator guarantees at most one gate session
// exists across the whole player; starting a new one always tears down
// the previous first.
type gateSession struct {
	cfg     Config
	player  SegmentPlayer
	slide   *Slide
	machine *gateMachine

	// markReleased records the release on the owning activation and
	// reports whether the trigger should fire. The navigator supplies
	// it so activation flags are only ever mutated under its lock.
	markReleased func(fire bool) bool

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	// manualCh is closed when the user clicks the primary control,
	// short-circuiting the countdown.
	manualCh   chan struct{}
	manualOnce sync.Once

	// trigger starts the slide's own playback; fired at most once per
	// activation, by countdown expiry or by the manual click.
	trigger func()

	// Callbacks, invoked from the gate goroutine (or the manual path).
	onState     func(GateState)
	onCountdown func(remaining time.Duration)
}

func newGateSession(cfg Config, player SegmentPlayer, slide *Slide, markReleased func(fire bool) bool, trigger func()) *gateSession {
	ctx, cancel := context.WithCancel(context.Background())
	return &gateSession{
		cfg:          cfg,
		player:       player,
		slide:        slide,
		machine:      newGateMachine(),
		markReleased: markReleased,
		ctx:          ctx,
		cancel:       cancel,
		done:         make(chan struct{}),
		manualCh:     make(chan struct{}),
		trigger:      trigger,
	}
}

// start launches the gate goroutine. Re-invoking the gate for an
// activation that already released is a no-op handled by the navigator.
func (g *gateSession) start() {
	go g.run()
}

// cancelAndWait tears the session down: stop instruction audio, clear
// the countdown timer, and block until the goroutine has unwound.
func (g *gateSession) cancelAndWait() {
	g.cancel()
	<-g.done
}

// state returns the current gate state.
func (g *gateSession) state() GateState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.machine.state()
}

// manual short-circuits the countdown (or fires after it) on a user
// click of the primary control. The trigger still fires exactly once.
func (g *gateSession) manual() {
	g.manualOnce.Do(func() {
		close(g.manualCh)
	})
}

func (g *gateSession) run() {
	defer close(g.done)

	g.transition(GateAwaitingInstruction)

	// Instruction audio, when present, plays before anything else.
	// Errors fail open: a broken instruction clip must never block the
	// learner, so natural end and error both proceed.
	if g.slide.InstructionAudioURL != "" {
		g.transition(GatePlayingInstruction)
		if err := g.player.Play(g.ctx, g.slide.InstructionAudioURL); err != nil {
			log.Warn("instruction audio failed, releasing gate",
				"slide", g.slide.ID, "err", err)
		}
		if g.ctx.Err() != nil {
			return
		}
	}

	if !g.slide.AutoTriggerable() || g.trigger == nil {
		g.release(false)
		return
	}

	// Fixed countdown before auto-start, surfaced tick by tick so the
	// UI can render "Starts in Ns". A manual click during the countdown
	// releases immediately.
	g.transition(GateCountingDown)
	remaining := g.cfg.Countdown
	g.countdown(remaining)

	ticker := time.NewTicker(g.cfg.CountdownTick)
	defer ticker.Stop()

	for remaining > 0 {
		select {
		case <-g.ctx.Done():
			return
		case <-g.manualCh:
			g.release(true)
			return
		case <-ticker.C:
			remaining -= g.cfg.CountdownTick
			if remaining < 0 {
				remaining = 0
			}
			g.countdown(remaining)
		}
	}

	g.release(true)
}

// release transitions to Released, marks the activation complete, and
// optionally fires the slide trigger. The activation write happens
// through markReleased outside g.mu; callers of state() may hold the
// navigator lock, so the two locks never nest.
func (g *gateSession) release(fire bool) {
	g.mu.Lock()
	if g.machine.state() == GateReleased {
		g.mu.Unlock()
		return
	}
	g.machine.transition(GateReleased)
	g.mu.Unlock()

	shouldFire := false
	if g.markReleased != nil {
		shouldFire = g.markReleased(fire)
	}

	if g.onState != nil {
		g.onState(GateReleased)
	}
	if shouldFire && g.trigger != nil {
		g.trigger()
	}
}

func (g *gateSession) transition(to GateState) {
	g.mu.Lock()
	moved := g.machine.transition(to)
	g.mu.Unlock()
	if moved && g.onState != nil {
		g.onState(to)
	}
}

func (g *gateSession) countdown(remaining time.Duration) {
	if g.onCountdown != nil {
		g.onCountdown(remaining)
	}
}
