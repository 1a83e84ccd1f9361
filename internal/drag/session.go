// Package drag implements the interactive edit sessions of the timeline:
// pointer-driven moves, edge trims, grouped moves, and slide edits. A
// session snapshots the clip at pointer-down, recomputes its preview from
// that snapshot on every pointer move, and emits change descriptions at
// commit. It never mutates the sequence.
package drag

import (
	"fmt"

	"github.com/cutline/cutline/internal/timeline"
	"github.com/cutline/cutline/internal/viewport"
)

// Type selects what a drag session edits.
type Type int

const (
	TypeMove Type = iota
	TypeTrimLeft
	TypeTrimRight
)

// State tracks the session lifecycle: Idle -> Active -> Committed or
// Cancelled. End and Update are no-ops outside Active.
type State int

const (
	StateIdle State = iota
	StateActive
	StateCommitted
	StateCancelled
)

// Data is the immutable snapshot taken at pointer-down. Previews and
// commits are always computed from these originals plus the live delta,
// never from a previously computed preview, so pointer noise cannot
// accumulate drift.
type Data struct {
	ClipID     string
	Type       Type
	PointerX   float64
	PointerY   float64
	TimelineIn float64
	SourceIn   float64
	SourceOut  float64
	Speed      float64
	TrackID    string
	TrackIndex int
}

// Preview is the ephemeral geometry recomputed on every pointer move. It
// exists only while the session is active.
type Preview struct {
	ClipID     string
	Left       float64 // pixels
	Width      float64 // pixels
	TrackIndex int
	ValidDrop  bool
}

// Session owns one interactive edit from pointer-down to commit or cancel.
type Session struct {
	state   State
	seqID   string
	data    Data
	preview Preview
}

// Start begins a drag session for clip on track. It returns nil when the
// track is nil or locked; locked tracks reject drags outright.
func Start(dragType Type, seqID string, clip timeline.Clip, track *timeline.Track, trackIndex int, pointerX, pointerY float64) *Session {
	if track == nil || track.Locked {
		return nil
	}
	speed := clip.Speed
	if speed <= 0 {
		speed = 1
	}
	s := &Session{
		state: StateActive,
		seqID: seqID,
		data: Data{
			ClipID:     clip.ID,
			Type:       dragType,
			PointerX:   timeline.Sanitize(pointerX, 0),
			PointerY:   timeline.Sanitize(pointerY, 0),
			TimelineIn: clip.TimelineIn,
			SourceIn:   clip.SourceIn,
			SourceOut:  clip.SourceOut,
			Speed:      speed,
			TrackID:    track.ID,
			TrackIndex: trackIndex,
		},
	}
	s.preview = Preview{
		ClipID:     clip.ID,
		TrackIndex: trackIndex,
		ValidDrop:  true,
	}
	return s
}

// Active reports whether the session is still accepting updates.
func (s *Session) Active() bool { return s != nil && s.state == StateActive }

// Data returns the pointer-down snapshot.
func (s *Session) Data() Data { return s.data }

// Preview returns the last computed preview geometry.
func (s *Session) Preview() Preview { return s.preview }

// Update recomputes the preview from the original snapshot plus deltaSec,
// the pointer's travel in timeline seconds since pointer-down. The target
// track index is clamped into [0, len(tracks)-1] and the drop validity is
// re-evaluated against the candidate track's kind and lock state.
func (s *Session) Update(deltaSec float64, targetTrackIndex int, zoom, scrollX float64, tracks []timeline.Track) Preview {
	if !s.Active() {
		return s.preview
	}
	deltaSec = timeline.Sanitize(deltaSec, 0)
	zoom = timeline.Sanitize(zoom, 0)
	scrollX = timeline.Sanitize(scrollX, 0)

	d := s.data
	p := Preview{ClipID: d.ClipID, ValidDrop: true}

	switch d.Type {
	case TypeMove:
		newIn := timeline.Clamp(d.TimelineIn+deltaSec, 0, timeline.MaxTimelineIn)
		p.Left = viewport.TimeToPixel(newIn, zoom, scrollX)
		p.Width = d.duration() * zoom
		p.TrackIndex = clampIndex(targetTrackIndex, len(tracks))
		if p.TrackIndex != d.TrackIndex && p.TrackIndex < len(tracks) {
			target := &tracks[p.TrackIndex]
			src := findKind(tracks, d.TrackID)
			p.ValidDrop = src.CompatibleWith(target.Kind) && !target.Locked
		}

	case TypeTrimLeft:
		newSourceIn, newIn := s.trimLeft(deltaSec)
		p.Left = viewport.TimeToPixel(newIn, zoom, scrollX)
		p.Width = (d.SourceOut - newSourceIn) / d.Speed * zoom
		p.TrackIndex = d.TrackIndex

	case TypeTrimRight:
		newSourceOut := s.trimRight(deltaSec)
		p.Left = viewport.TimeToPixel(d.TimelineIn, zoom, scrollX)
		p.Width = (newSourceOut - d.SourceIn) / d.Speed * zoom
		p.TrackIndex = d.TrackIndex
	}

	s.preview = p
	return p
}

// End commits the session. finalSec is the final timeline position of the
// dragged feature: the clip start for a move, the left edge for a head trim,
// the right edge for a tail trim. It is sanitized against non-finite input
// and clamped exactly as Update clamps previews. The returned warning is a
// user-facing advisory, non-empty only when a cross-track drop was rejected
// as incompatible and the clip reverted to its original track.
func (s *Session) End(finalSec float64, targetTrackIndex int, tracks []timeline.Track) (Change, string) {
	if !s.Active() {
		return nil, ""
	}
	s.state = StateCommitted
	s.preview = Preview{}

	finalSec = timeline.Sanitize(finalSec, 0)
	d := s.data

	switch d.Type {
	case TypeMove:
		newIn := timeline.Clamp(finalSec, 0, timeline.MaxTimelineIn)
		change := MoveChange{
			SequenceID:    s.seqID,
			TrackID:       d.TrackID,
			ClipID:        d.ClipID,
			NewTimelineIn: newIn,
		}
		var warning string
		idx := clampIndex(targetTrackIndex, len(tracks))
		if idx != d.TrackIndex && idx < len(tracks) {
			target := &tracks[idx]
			src := findKind(tracks, d.TrackID)
			if src.CompatibleWith(target.Kind) && !target.Locked {
				change.NewTrackID = target.ID
			} else {
				warning = fmt.Sprintf("Can't move clip to %s track; kept on original track", target.Kind)
			}
		}
		return change, warning

	case TypeTrimLeft:
		newSourceIn, newIn := s.trimLeft(finalSec - d.TimelineIn)
		return TrimChange{
			SequenceID:    s.seqID,
			TrackID:       d.TrackID,
			ClipID:        d.ClipID,
			NewSourceIn:   Float64Ptr(newSourceIn),
			NewTimelineIn: Float64Ptr(newIn),
		}, ""

	case TypeTrimRight:
		newSourceOut := s.trimRight(finalSec - d.timelineOut())
		return TrimChange{
			SequenceID:   s.seqID,
			TrackID:      d.TrackID,
			ClipID:       d.ClipID,
			NewSourceOut: Float64Ptr(newSourceOut),
		}, ""
	}
	return nil, ""
}

// EndMulti commits a grouped move: the offset the primary clip traveled is
// applied to every selected clip's own original position, each clamped
// independently to the timeline bounds. Cross-track reassignment applies
// only to clips that started on the primary's track; clips on locked tracks
// and unknown IDs are skipped. One change is emitted per selected clip.
func (s *Session) EndMulti(seq *timeline.Sequence, finalSec float64, selectedIDs []string, targetTrackIndex int) ([]Change, string) {
	if !s.Active() || s.data.Type != TypeMove {
		return nil, ""
	}
	s.state = StateCommitted
	s.preview = Preview{}

	if seq == nil || len(selectedIDs) == 0 {
		return nil, ""
	}

	d := s.data
	finalSec = timeline.Sanitize(finalSec, 0)
	offset := timeline.Clamp(finalSec, 0, timeline.MaxTimelineIn) - d.TimelineIn

	// Resolve the cross-track target once, from the primary's perspective.
	var newTrackID string
	var warning string
	idx := clampIndex(targetTrackIndex, len(seq.Tracks))
	if idx != d.TrackIndex && idx < len(seq.Tracks) {
		target := &seq.Tracks[idx]
		src := findKind(seq.Tracks, d.TrackID)
		if src.CompatibleWith(target.Kind) && !target.Locked {
			newTrackID = target.ID
		} else {
			warning = fmt.Sprintf("Can't move clips to %s track; kept on original track", target.Kind)
		}
	}

	var changes []Change
	seen := make(map[string]bool, len(selectedIDs))
	for _, id := range selectedIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		clip, track := seq.FindClip(id)
		if clip == nil || track == nil || track.Locked {
			continue
		}
		change := MoveChange{
			SequenceID:    s.seqID,
			TrackID:       track.ID,
			ClipID:        id,
			NewTimelineIn: timeline.Clamp(clip.TimelineIn+offset, 0, timeline.MaxTimelineIn),
		}
		if newTrackID != "" && track.ID == d.TrackID {
			change.NewTrackID = newTrackID
		}
		changes = append(changes, change)
	}
	return changes, warning
}

// Cancel discards the session and its preview. Safe to call in any state.
func (s *Session) Cancel() {
	if s == nil {
		return
	}
	if s.state == StateActive {
		s.state = StateCancelled
	}
	s.preview = Preview{}
}

// trimLeft derives the clamped head trim for a pointer travel of deltaSec
// timeline seconds: the source in-point must stay within [0, out-minimum]
// and the resulting timeline start must not go negative. Returns the new
// source in-point and the coupled timeline start.
func (s *Session) trimLeft(deltaSec float64) (newSourceIn, newTimelineIn float64) {
	d := s.data
	deltaSec = timeline.Sanitize(deltaSec, 0)

	lo := 0.0
	if headroom := d.SourceIn - d.TimelineIn*d.Speed; headroom > lo {
		lo = headroom
	}
	hi := d.SourceOut - timeline.MinClipDuration*d.Speed
	if hi < lo {
		hi = lo
	}
	newSourceIn = timeline.Clamp(d.SourceIn+deltaSec*d.Speed, lo, hi)
	newTimelineIn = d.TimelineIn + (newSourceIn-d.SourceIn)/d.Speed
	return newSourceIn, newTimelineIn
}

// trimRight derives the clamped tail trim for a pointer travel of deltaSec
// timeline seconds. Only the source out-point moves.
func (s *Session) trimRight(deltaSec float64) float64 {
	d := s.data
	deltaSec = timeline.Sanitize(deltaSec, 0)

	lo := d.SourceIn + timeline.MinClipDuration*d.Speed
	newSourceOut := d.SourceOut + deltaSec*d.Speed
	if newSourceOut < lo {
		newSourceOut = lo
	}
	return newSourceOut
}

func (d Data) duration() float64 {
	return (d.SourceOut - d.SourceIn) / d.Speed
}

func (d Data) timelineOut() float64 {
	return d.TimelineIn + d.duration()
}

func clampIndex(idx, count int) int {
	if count <= 0 || idx < 0 {
		return 0
	}
	if idx >= count {
		return count - 1
	}
	return idx
}

// findKind returns the kind of the track with the given ID, defaulting to
// video when the track list no longer contains it.
func findKind(tracks []timeline.Track, trackID string) timeline.Kind {
	for i := range tracks {
		if tracks[i].ID == trackID {
			return tracks[i].Kind
		}
	}
	return timeline.KindVideo
}
