package player

import (
	"math"
	"time"
)

// GapMode selects the pause policy applied between consecutive audio
// segments within a playback session.
type GapMode int

const (
	// GapListen separates consecutive items with a short fixed pause,
	// independent of clip length.
	GapListen GapMode = iota
	// GapListenRepeat scales the pause with the measured clip duration
	// so the learner has time proportional to what they heard.
	GapListenRepeat
	// GapRead applies a longer fixed dwell for read-along activities.
	GapRead
)

// String returns the string representation of the gap mode.
func (m GapMode) String() string {
	switch m {
	case GapListen:
		return "listen"
	case GapListenRepeat:
		return "listen-repeat"
	case GapRead:
		return "read"
	default:
		return "unknown"
	}
}

// GapOptions holds the clamping bounds for gap computation. Zero
// values fall back to the mode defaults.
type GapOptions struct {
	Min   time.Duration // Lower clamp; also the degraded value for bad durations
	Max   time.Duration // Upper clamp for scaled modes
	Dwell time.Duration // Fixed dwell for GapRead
	Scale float64       // Multiplier applied to measured duration in GapListenRepeat
}

// Mode defaults. Listen gaps separate items, repeat gaps leave speaking
// room, read dwells give time to follow the text.
const (
	defaultListenMin = 500 * time.Millisecond
	defaultListenMax = 1200 * time.Millisecond
	defaultRepeatMin = 500 * time.Millisecond
	defaultRepeatMax = 10 * time.Second
	defaultReadDwell = 1500 * time.Millisecond
	minReadDwell     = 800 * time.Millisecond
	maxReadDwell     = 3 * time.Second
	defaultScale     = 1.2
)

// GapFor computes the pause between two segments for the given mode and
// measured clip duration. It is pure: all randomness (shuffling and the
// like) belongs to callers. Non-finite, missing or negative durations
// degrade to the mode minimum, never to zero.
func GapFor(mode GapMode, measured time.Duration, opts GapOptions) time.Duration {
	if measured < 0 {
		measured = 0
	}

	switch mode {
	case GapListenRepeat:
		minGap := opts.Min
		if minGap <= 0 {
			minGap = defaultRepeatMin
		}
		maxGap := opts.Max
		if maxGap <= 0 {
			maxGap = defaultRepeatMax
		}
		scale := opts.Scale
		if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
			scale = defaultScale
		}
		scaled := scaleDuration(measured, scale)
		return clampDuration(scaled, minGap, maxGap)

	case GapRead:
		dwell := opts.Dwell
		if dwell <= 0 {
			dwell = defaultReadDwell
		}
		return clampDuration(dwell, minReadDwell, maxReadDwell)

	default: // GapListen and anything unrecognized
		minGap := opts.Min
		if minGap <= 0 {
			minGap = defaultListenMin
		}
		maxGap := opts.Max
		if maxGap <= 0 {
			maxGap = defaultListenMax
		}
		// Fixed short gap: the minimum, clamped into the window.
		return clampDuration(minGap, minGap, maxGap)
	}
}

// scaleDuration multiplies a duration by a float factor, guarding
// against overflow and non-finite intermediate values.
func scaleDuration(d time.Duration, scale float64) time.Duration {
	f := float64(d) * scale
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	if f > float64(math.MaxInt64) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(f)
}

func clampDuration(d, lo, hi time.Duration) time.Duration {
	if hi < lo {
		hi = lo
	}
	if d < lo {
		return lo
	}
	if d > hi {
		return hi
	}
	return d
}
