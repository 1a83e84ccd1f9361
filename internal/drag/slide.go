package drag

import (
	"github.com/cutline/cutline/internal/timeline"
)

// ConstraintReason explains why a slide offset was clamped.
type ConstraintReason string

const (
	ReasonNone        ConstraintReason = ""
	ReasonNoPrevious  ConstraintReason = "no-previous"
	ReasonNoNext      ConstraintReason = "no-next"
	ReasonMinDuration ConstraintReason = "min-duration"
)

// NeighborEdit previews how a neighbor clip absorbs the slide.
type NeighborEdit struct {
	ClipID     string
	SourceIn   float64
	SourceOut  float64
	TimelineIn float64
}

// SlideUpdate is the live preview of a slide edit: where the clip sits now,
// how each neighbor's edge follows it, and whether the requested offset had
// to be clamped.
type SlideUpdate struct {
	Offset      float64
	TimelineIn  float64
	Constrained bool
	Reason      ConstraintReason
	Prev        *NeighborEdit
	Next        *NeighborEdit
}

type slideNeighbor struct {
	clipID     string
	sourceIn   float64
	sourceOut  float64
	timelineIn float64
	speed      float64
}

// SlideSession shifts a clip along its track while the adjacent clips absorb
// the movement with their facing edges. The clip's own duration never
// changes; the previous clip's tail and the next clip's head do. Offsets are
// bounded so neither neighbor can shrink below the minimum clip duration,
// and a missing neighbor pins the offset at zero on that side.
type SlideSession struct {
	state      State
	seqID      string
	trackID    string
	clipID     string
	timelineIn float64
	offset     float64
	minOffset  float64
	maxOffset  float64
	prev       *slideNeighbor
	next       *slideNeighbor
}

// StartSlide begins a slide session for clip on track. Returns nil when the
// track is nil or locked.
func StartSlide(seqID string, clip timeline.Clip, track *timeline.Track) *SlideSession {
	if track == nil || track.Locked {
		return nil
	}
	s := &SlideSession{
		state:      StateActive,
		seqID:      seqID,
		trackID:    track.ID,
		clipID:     clip.ID,
		timelineIn: clip.TimelineIn,
	}
	prev, next := track.Neighbors(clip.ID)
	if prev != nil {
		s.prev = snapshotNeighbor(prev)
		if room := prev.Duration() - timeline.MinClipDuration; room > 0 {
			s.minOffset = -room
		}
	}
	if next != nil {
		s.next = snapshotNeighbor(next)
		if room := next.Duration() - timeline.MinClipDuration; room > 0 {
			s.maxOffset = room
		}
	}
	return s
}

func snapshotNeighbor(c *timeline.Clip) *slideNeighbor {
	speed := c.Speed
	if speed <= 0 {
		speed = 1
	}
	return &slideNeighbor{
		clipID:     c.ID,
		sourceIn:   c.SourceIn,
		sourceOut:  c.SourceOut,
		timelineIn: c.TimelineIn,
		speed:      speed,
	}
}

// Active reports whether the session is still accepting updates.
func (s *SlideSession) Active() bool { return s != nil && s.state == StateActive }

// Offset returns the current clamped slide offset in seconds.
func (s *SlideSession) Offset() float64 { return s.offset }

// UpdateSlide folds deltaSec, the pointer's travel in timeline seconds since
// the previous update, into the running offset and clamps it into the range
// the neighbors allow. Constrained is set when the requested offset fell
// outside that range, with Reason naming the binding limit. Overshoot past a
// bound is not banked: once the pointer reverses, the offset follows
// immediately.
func (s *SlideSession) UpdateSlide(deltaSec float64) SlideUpdate {
	if !s.Active() {
		return SlideUpdate{}
	}
	raw := s.offset + timeline.Sanitize(deltaSec, 0)
	s.offset = timeline.Clamp(raw, s.minOffset, s.maxOffset)

	u := SlideUpdate{
		Offset:     s.offset,
		TimelineIn: s.timelineIn + s.offset,
	}
	switch {
	case raw < s.minOffset:
		u.Constrained = true
		if s.prev == nil {
			u.Reason = ReasonNoPrevious
		} else {
			u.Reason = ReasonMinDuration
		}
	case raw > s.maxOffset:
		u.Constrained = true
		if s.next == nil {
			u.Reason = ReasonNoNext
		} else {
			u.Reason = ReasonMinDuration
		}
	}
	if s.prev != nil {
		u.Prev = &NeighborEdit{
			ClipID:     s.prev.clipID,
			SourceIn:   s.prev.sourceIn,
			SourceOut:  s.prev.sourceOut + s.offset*s.prev.speed,
			TimelineIn: s.prev.timelineIn,
		}
	}
	if s.next != nil {
		u.Next = &NeighborEdit{
			ClipID:     s.next.clipID,
			SourceIn:   s.next.sourceIn + s.offset*s.next.speed,
			SourceOut:  s.next.sourceOut,
			TimelineIn: s.next.timelineIn + s.offset,
		}
	}
	return u
}

// EndSlide commits the slide and returns the per-clip changes, ordered so
// that the clip yielding space is edited before the move that claims it.
// A zero offset returns nil; nothing changed.
func (s *SlideSession) EndSlide() []Change {
	if !s.Active() {
		return nil
	}
	s.state = StateCommitted

	if s.offset == 0 {
		return nil
	}

	move := MoveChange{
		SequenceID:    s.seqID,
		TrackID:       s.trackID,
		ClipID:        s.clipID,
		NewTimelineIn: s.timelineIn + s.offset,
	}
	var prevTrim, nextTrim Change
	if s.prev != nil {
		prevTrim = TrimChange{
			SequenceID:   s.seqID,
			TrackID:      s.trackID,
			ClipID:       s.prev.clipID,
			NewSourceOut: Float64Ptr(s.prev.sourceOut + s.offset*s.prev.speed),
		}
	}
	if s.next != nil {
		nextTrim = TrimChange{
			SequenceID:    s.seqID,
			TrackID:       s.trackID,
			ClipID:        s.next.clipID,
			NewSourceIn:   Float64Ptr(s.next.sourceIn + s.offset*s.next.speed),
			NewTimelineIn: Float64Ptr(s.next.timelineIn + s.offset),
		}
	}

	var changes []Change
	if s.offset > 0 {
		// Sliding right: the next clip's head retreats first, then the move,
		// then the previous clip's tail grows into the vacated span.
		if nextTrim != nil {
			changes = append(changes, nextTrim)
		}
		changes = append(changes, move)
		if prevTrim != nil {
			changes = append(changes, prevTrim)
		}
	} else {
		if prevTrim != nil {
			changes = append(changes, prevTrim)
		}
		changes = append(changes, move)
		if nextTrim != nil {
			changes = append(changes, nextTrim)
		}
	}
	return changes
}

// CancelSlide discards the session. Safe to call in any state.
func (s *SlideSession) CancelSlide() {
	if s == nil {
		return
	}
	if s.state == StateActive {
		s.state = StateCancelled
	}
}
