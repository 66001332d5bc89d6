package player

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// PlaybackSession is one in-flight timed sequence: a single walk over a
// slide's segments with computed inter-segment gaps. A session is
// created on sequence start and is dead after completion, cancellation
// or slide teardown; it is never reused.
type PlaybackSession struct {
	player   SegmentPlayer
	segments []Segment
	mode     GapMode
	opts     GapOptions

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	// Callbacks, invoked from the session goroutine.
	onSegment  func(index int, seg Segment)
	onStatus   func(text string)
	onComplete func()
}

// newPlaybackSession prepares a session for the given segments. The
// session does not run until start is called.
func newPlaybackSession(player SegmentPlayer, segments []Segment, mode GapMode, opts GapOptions) *PlaybackSession {
	ctx, cancel := context.WithCancel(context.Background())
	return &PlaybackSession{
		player:   player,
		segments: segments,
		mode:     mode,
		opts:     opts,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// start launches the session goroutine. Call at most once.
func (ps *PlaybackSession) start() {
	go ps.run()
}

// cancelAndWait cancels the session and blocks until its goroutine has
// fully unwound. Safe to call when the session already completed, and
// safe to call more than once.
func (ps *PlaybackSession) cancelAndWait() {
	ps.cancel()
	<-ps.done
}

// Done reports whether the session has finished running for any reason.
func (ps *PlaybackSession) Done() bool {
	select {
	case <-ps.done:
		return true
	default:
		return false
	}
}

func (ps *PlaybackSession) run() {
	defer close(ps.done)

	if len(ps.segments) == 0 {
		ps.complete()
		return
	}

	for i, seg := range ps.segments {
		if ps.ctx.Err() != nil {
			return
		}

		if ps.onSegment != nil {
			ps.onSegment(i, seg)
		}

		// Clip failures are soft ends: Play absorbs them so a broken
		// clip skips rather than aborting the whole sequence. Anything
		// surfaced here is caller misuse; log and keep walking.
		if err := ps.player.Play(ps.ctx, seg.URL); err != nil {
			log.Warn("segment playback failed, skipping", "url", seg.URL, "err", err)
			ps.status("audio unavailable, skipping")
		}

		if ps.ctx.Err() != nil {
			return
		}

		// No gap after the final segment.
		if i == len(ps.segments)-1 {
			break
		}

		gap := GapFor(ps.mode, ps.player.Duration(seg.URL), ps.opts)
		if !ps.wait(gap) {
			return
		}
	}

	ps.complete()
}

// wait sleeps for d or until cancellation, whichever comes first, and
// reports whether the full duration elapsed. The timer is always
// stopped; nothing fires after cancellation.
func (ps *PlaybackSession) wait(d time.Duration) bool {
	if d <= 0 {
		return ps.ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ps.ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (ps *PlaybackSession) status(text string) {
	if ps.onStatus != nil {
		ps.onStatus(text)
	}
}

func (ps *PlaybackSession) complete() {
	if ps.ctx.Err() != nil {
		return
	}
	if ps.onComplete != nil {
		ps.onComplete()
	}
}
