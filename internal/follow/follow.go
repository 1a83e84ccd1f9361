// Package follow keeps the playhead visible during playback by nudging the
// horizontal scroll toward a margin boundary. It is a pure per-frame
// controller: the caller owns the frame loop and feeds it elapsed time, the
// package computes the next scroll position. Easing is frame-time aware, so
// a slow frame rate moves the scroll the same distance per second as a fast
// one.
package follow

import (
	"math"

	"github.com/cutline/cutline/internal/timeline"
	"github.com/cutline/cutline/internal/viewport"
)

// Config tunes the follow behavior. The zero value is usable; zero or
// out-of-range fields fall back to the defaults.
type Config struct {
	// EdgeMarginFrac is the fraction of the viewport width on each side
	// treated as the edge zone. Must stay below 0.5 or the zones would meet.
	EdgeMarginFrac float64
	// Tau is the smoothing time constant in seconds. Larger values ease more
	// slowly.
	Tau float64
	// SettlePx is the remaining distance below which the scroll snaps
	// exactly to the target instead of easing forever.
	SettlePx float64
}

// DefaultConfig returns the stock follow tuning.
func DefaultConfig() Config {
	return Config{
		EdgeMarginFrac: 0.20,
		Tau:            0.15,
		SettlePx:       0.5,
	}
}

func (c Config) normalized() Config {
	d := DefaultConfig()
	if !timeline.IsFinite(c.EdgeMarginFrac) || c.EdgeMarginFrac <= 0 || c.EdgeMarginFrac >= 0.5 {
		c.EdgeMarginFrac = d.EdgeMarginFrac
	}
	if !timeline.IsFinite(c.Tau) || c.Tau <= 0 {
		c.Tau = d.Tau
	}
	if !timeline.IsFinite(c.SettlePx) || c.SettlePx <= 0 {
		c.SettlePx = d.SettlePx
	}
	return c
}

// Target returns the scroll position that brings the playhead back to the
// margin boundary on the side it crossed. needed is false when the playhead
// already sits inside the safe zone, or when the viewport or zoom make
// following meaningless. The target is clamped to [0, contentW - viewportW];
// a contentW of zero or less means the content width is unknown and only the
// lower clamp applies.
func (c Config) Target(playheadSec, zoom, scrollX, viewportW, contentW float64) (target float64, needed bool) {
	c = c.normalized()
	if !timeline.IsFinite(viewportW) || viewportW <= 0 {
		return scrollX, false
	}
	if !timeline.IsFinite(zoom) || zoom <= 0 {
		return scrollX, false
	}
	scrollX = timeline.Sanitize(scrollX, 0)
	playheadSec = timeline.SanitizeTime(playheadSec)

	px := viewport.TimeToPixel(playheadSec, zoom, scrollX)
	margin := c.EdgeMarginFrac * viewportW
	absolute := playheadSec * zoom

	switch {
	case px < margin:
		target = absolute - margin
	case px > viewportW-margin:
		target = absolute - (viewportW - margin)
	default:
		return scrollX, false
	}

	if target < 0 {
		target = 0
	}
	if timeline.IsFinite(contentW) && contentW > 0 {
		if max := contentW - viewportW; max > 0 {
			if target > max {
				target = max
			}
		} else {
			target = 0
		}
	}
	return target, true
}

// Step advances the scroll by one frame of dt seconds, easing toward the
// follow target with an exponential factor of 1 - exp(-dt/tau). Once the
// remaining distance is within SettlePx the scroll lands exactly on the
// target. When no follow is needed the current scroll is returned unchanged.
func (c Config) Step(playheadSec, zoom, scrollX, viewportW, contentW, dt float64) float64 {
	c = c.normalized()
	scrollX = timeline.Sanitize(scrollX, 0)

	target, needed := c.Target(playheadSec, zoom, scrollX, viewportW, contentW)
	if !needed {
		return scrollX
	}

	diff := target - scrollX
	if math.Abs(diff) <= c.SettlePx {
		return target
	}
	if !timeline.IsFinite(dt) || dt <= 0 {
		return scrollX
	}
	alpha := 1 - math.Exp(-dt/c.Tau)
	return scrollX + diff*alpha
}
