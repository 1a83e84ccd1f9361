// Package snap finds the nearest snap target for a candidate timeline
// position. Candidates are rebuilt per interaction from the current
// sequence; nothing here is persisted.
package snap

import (
	"math"

	"github.com/cutline/cutline/internal/timeline"
)

// PointType identifies what a snap point was derived from.
type PointType string

const (
	PointClipStart PointType = "clip-start"
	PointClipEnd   PointType = "clip-end"
	PointMarker    PointType = "marker"
	PointPlayhead  PointType = "playhead"
	PointGrid      PointType = "grid"
)

// priority ranks point types for distance ties. Lower wins.
func (pt PointType) priority() int {
	switch pt {
	case PointClipStart, PointClipEnd:
		return 0
	case PointMarker:
		return 1
	case PointPlayhead:
		return 2
	default:
		return 3
	}
}

// Point is a time value a drag can lock onto.
type Point struct {
	Time float64
	Type PointType
}

// Result reports the outcome of a snap query.
type Result struct {
	Snapped bool
	Time    float64
	Point   Point
}

// ThresholdPx is the on-screen capture distance for snapping, in pixels.
const ThresholdPx = 10.0

// Threshold converts the pixel capture distance into seconds at the given
// zoom, so the on-screen distance stays roughly constant: higher zoom means
// a smaller time-domain threshold. Non-positive zoom disables snapping.
func Threshold(zoom float64) float64 {
	if !timeline.IsFinite(zoom) || zoom <= 0 {
		return 0
	}
	return ThresholdPx / zoom
}

// gridSteps is the ladder of usable grid intervals, in seconds.
var gridSteps = []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 15, 30, 60, 120, 300, 600}

// targetGridPx is the preferred on-screen spacing between grid lines.
const targetGridPx = 80.0

// GridInterval picks the smallest ladder step that renders at or above the
// target pixel spacing at the given zoom. Higher zoom therefore produces a
// denser grid in time terms.
func GridInterval(zoom float64) float64 {
	if !timeline.IsFinite(zoom) || zoom <= 0 {
		return gridSteps[len(gridSteps)-1]
	}
	for _, step := range gridSteps {
		if step*zoom >= targetGridPx {
			return step
		}
	}
	return gridSteps[len(gridSteps)-1]
}

// Collect builds the candidate set for one interaction: every clip boundary
// except the dragged clip's own, all markers, the playhead, and grid lines
// across [windowStart, windowEnd]. excludeClipID is empty when nothing is
// being dragged (scrubbing).
func Collect(seq *timeline.Sequence, excludeClipID string, playhead, zoom, windowStart, windowEnd float64) []Point {
	var points []Point
	if seq != nil {
		for ti := range seq.Tracks {
			for _, c := range seq.Tracks[ti].Clips {
				if c.ID == excludeClipID {
					continue
				}
				points = append(points,
					Point{Time: c.TimelineIn, Type: PointClipStart},
					Point{Time: c.TimelineOut(), Type: PointClipEnd},
				)
			}
		}
		for _, mk := range seq.Markers {
			points = append(points, Point{Time: mk.Time, Type: PointMarker})
		}
	}
	if timeline.IsValidTime(playhead) {
		points = append(points, Point{Time: playhead, Type: PointPlayhead})
	}

	step := GridInterval(zoom)
	if timeline.IsFinite(windowStart) && timeline.IsFinite(windowEnd) && windowEnd > windowStart {
		first := math.Floor(windowStart/step) * step
		for t := first; t <= windowEnd; t += step {
			if t < 0 {
				continue
			}
			points = append(points, Point{Time: t, Type: PointGrid})
		}
	}
	return points
}

// Resolve returns the nearest point within threshold of t. Distance ties go
// to the higher-priority type: clip boundaries beat markers beat the
// playhead beat the grid.
func Resolve(t float64, points []Point, threshold float64) Result {
	if !timeline.IsFinite(t) {
		return Result{Time: 0}
	}
	if !timeline.IsFinite(threshold) || threshold <= 0 {
		return Result{Time: t}
	}

	best := -1
	bestDist := math.Inf(1)
	for i, p := range points {
		d := math.Abs(p.Time - t)
		if !timeline.IsFinite(d) || d > threshold {
			continue
		}
		switch {
		case best == -1 || d < bestDist:
			best, bestDist = i, d
		case d == bestDist && p.Type.priority() < points[best].Type.priority():
			best = i
		}
	}
	if best == -1 {
		return Result{Time: t}
	}
	return Result{Snapped: true, Time: points[best].Time, Point: points[best]}
}
