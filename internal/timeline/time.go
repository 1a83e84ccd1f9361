package timeline

import "math"

const (
	// MinClipDuration is the floor, in timeline seconds, below which no trim
	// or slide may shrink a clip.
	MinClipDuration = 0.1

	// MaxTimelineIn caps committed clip positions at 24 hours to reject
	// runaway values from bad pointer math.
	MaxTimelineIn = 24 * 60 * 60.0

	// MinSequenceDuration keeps near-empty sequences scrollable.
	MinSequenceDuration = 60.0

	// DefaultTrackHeight substitutes for a non-positive lane height in
	// coordinate math.
	DefaultTrackHeight = 64.0
)

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// IsValidTime reports whether t is finite and non-negative.
func IsValidTime(t float64) bool {
	return IsFinite(t) && t >= 0
}

// SanitizeTime replaces non-finite or negative times with 0.
func SanitizeTime(t float64) float64 {
	if !IsValidTime(t) {
		return 0
	}
	return t
}

// Sanitize replaces a non-finite value with fallback.
func Sanitize(v, fallback float64) float64 {
	if !IsFinite(v) {
		return fallback
	}
	return v
}

// Clamp bounds v into [lo, hi]. Clamping an in-range value returns it
// unchanged, so the operation is idempotent.
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
