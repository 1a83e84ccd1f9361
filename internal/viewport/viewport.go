// Package viewport converts between timeline seconds and screen pixels.
// All functions are pure; the caller supplies zoom (pixels per second) and
// scroll offsets on every call.
package viewport

import (
	"math"

	"github.com/cutline/cutline/internal/timeline"
)

// TimeToPixel maps a time in seconds to a horizontal pixel offset.
func TimeToPixel(timeSec, zoom, scrollX float64) float64 {
	return timeSec*zoom - scrollX
}

// PixelToTime maps a horizontal pixel offset back to seconds, clamped to
// [0, seqDuration]. A non-positive or non-finite zoom cannot be inverted
// and yields 0.
func PixelToTime(px, zoom, scrollX, seqDuration float64) float64 {
	if !timeline.IsFinite(px) || !timeline.IsFinite(scrollX) {
		return 0
	}
	if !timeline.IsFinite(zoom) || zoom <= 0 {
		return 0
	}
	if !timeline.IsValidTime(seqDuration) {
		seqDuration = 0
	}
	t := (px + scrollX) / zoom
	return timeline.Clamp(t, 0, seqDuration)
}

// TrackIndexFromY maps a vertical pixel position to a track index. Negative
// effective positions clamp to 0 and positions past the last track clamp to
// trackCount-1. Non-finite inputs yield 0 and a non-positive track height
// falls back to timeline.DefaultTrackHeight.
func TrackIndexFromY(mouseY, scrollY, trackHeight float64, trackCount int) int {
	if trackCount <= 0 {
		return 0
	}
	if !timeline.IsFinite(mouseY) || !timeline.IsFinite(scrollY) || !timeline.IsFinite(trackHeight) {
		return 0
	}
	if trackHeight <= 0 {
		trackHeight = timeline.DefaultTrackHeight
	}
	idx := int(math.Floor((mouseY + scrollY) / trackHeight))
	if idx < 0 {
		return 0
	}
	if idx >= trackCount {
		return trackCount - 1
	}
	return idx
}
