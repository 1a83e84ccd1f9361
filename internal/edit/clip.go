package edit

import (
	"fmt"

	"github.com/cutline/cutline/internal/oplog"
	"github.com/cutline/cutline/internal/timeline"
)

func fptr(v float64) *float64 { return &v }

// MoveClip repositions a clip, optionally onto another track. The move is
// rejected when the destination span overlaps an existing clip.
type MoveClip struct {
	SequenceID    string  `json:"sequenceId"`
	ClipID        string  `json:"clipId"`
	NewTimelineIn float64 `json:"newTimelineIn"`
	NewTrackID    string  `json:"newTrackId,omitempty"`
}

// Kind returns the move operation kind.
func (c *MoveClip) Kind() oplog.Kind { return oplog.KindClipMove }

// Apply moves the clip and returns the move that puts it back.
func (c *MoveClip) Apply(seq *timeline.Sequence) (Command, error) {
	if err := requireSequence(seq, c.SequenceID); err != nil {
		return nil, err
	}
	if !timeline.IsValidTime(c.NewTimelineIn) {
		return nil, fmt.Errorf("newTimelineIn %v: %w", c.NewTimelineIn, ErrInvalid)
	}

	clip, src := seq.FindClip(c.ClipID)
	if clip == nil {
		return nil, fmt.Errorf("clip %s: %w", c.ClipID, ErrNotFound)
	}
	dest := src
	if c.NewTrackID != "" && c.NewTrackID != src.ID {
		if dest = seq.FindTrack(c.NewTrackID); dest == nil {
			return nil, fmt.Errorf("track %s: %w", c.NewTrackID, ErrNotFound)
		}
	}

	start := c.NewTimelineIn
	end := start + clip.Duration()
	ignore := ""
	if dest.ID == src.ID {
		ignore = clip.ID
	}
	if dest.Overlaps(start, end, ignore) {
		return nil, fmt.Errorf("clip %s at %.3fs on track %s: %w", c.ClipID, start, dest.ID, ErrOverlap)
	}

	oldIn := clip.TimelineIn
	oldTrackID := src.ID

	moved := *clip
	moved.TimelineIn = c.NewTimelineIn
	src.RemoveClip(clip.ID)
	dest.InsertClip(moved)

	inv := &MoveClip{SequenceID: c.SequenceID, ClipID: c.ClipID, NewTimelineIn: oldIn}
	if dest.ID != oldTrackID {
		inv.NewTrackID = oldTrackID
	}
	return inv, nil
}

// TrimClip adjusts a clip's source range and, for head trims, its timeline
// start. Only the fields that are set change. The resulting duration must
// stay at or above the minimum clip duration.
type TrimClip struct {
	SequenceID    string   `json:"sequenceId"`
	ClipID        string   `json:"clipId"`
	NewSourceIn   *float64 `json:"newSourceIn,omitempty"`
	NewSourceOut  *float64 `json:"newSourceOut,omitempty"`
	NewTimelineIn *float64 `json:"newTimelineIn,omitempty"`
}

// Kind returns the trim operation kind.
func (c *TrimClip) Kind() oplog.Kind { return oplog.KindClipTrim }

// Apply trims the clip and returns a trim restoring all prior values.
func (c *TrimClip) Apply(seq *timeline.Sequence) (Command, error) {
	if err := requireSequence(seq, c.SequenceID); err != nil {
		return nil, err
	}
	clip, track := seq.FindClip(c.ClipID)
	if clip == nil {
		return nil, fmt.Errorf("clip %s: %w", c.ClipID, ErrNotFound)
	}

	old := *clip
	cand := *clip
	if c.NewSourceIn != nil {
		if !timeline.IsValidTime(*c.NewSourceIn) {
			return nil, fmt.Errorf("newSourceIn %v: %w", *c.NewSourceIn, ErrInvalid)
		}
		cand.SourceIn = *c.NewSourceIn
	}
	if c.NewSourceOut != nil {
		if !timeline.IsValidTime(*c.NewSourceOut) {
			return nil, fmt.Errorf("newSourceOut %v: %w", *c.NewSourceOut, ErrInvalid)
		}
		cand.SourceOut = *c.NewSourceOut
	}
	if c.NewTimelineIn != nil {
		if !timeline.IsValidTime(*c.NewTimelineIn) {
			return nil, fmt.Errorf("newTimelineIn %v: %w", *c.NewTimelineIn, ErrInvalid)
		}
		cand.TimelineIn = *c.NewTimelineIn
	}

	if cand.SourceIn >= cand.SourceOut {
		return nil, fmt.Errorf("source range [%v, %v): %w", cand.SourceIn, cand.SourceOut, ErrInvalid)
	}
	if !timeline.IsFinite(cand.Speed) || cand.Speed < 0 {
		return nil, fmt.Errorf("speed %v: %w", cand.Speed, ErrInvalid)
	}
	if cand.Duration()+durationSlack < timeline.MinClipDuration {
		return nil, fmt.Errorf("trim below %vs minimum duration: %w", timeline.MinClipDuration, ErrInvalid)
	}
	if track.Overlaps(cand.TimelineIn, cand.TimelineOut(), clip.ID) {
		return nil, fmt.Errorf("clip %s trim: %w", c.ClipID, ErrOverlap)
	}

	*clip = cand
	track.SortClips()

	return &TrimClip{
		SequenceID:    c.SequenceID,
		ClipID:        c.ClipID,
		NewSourceIn:   fptr(old.SourceIn),
		NewSourceOut:  fptr(old.SourceOut),
		NewTimelineIn: fptr(old.TimelineIn),
	}, nil
}

// SplitClip cuts a clip in two at a timeline position strictly inside it.
// The first half keeps the clip's ID; the second half gets NewClipID, which
// is generated on apply when empty and recorded for replay.
type SplitClip struct {
	SequenceID string  `json:"sequenceId"`
	TrackID    string  `json:"trackId"`
	ClipID     string  `json:"clipId"`
	SplitAt    float64 `json:"splitAt"`
	NewClipID  string  `json:"newClipId,omitempty"`
}

// Kind returns the split operation kind.
func (c *SplitClip) Kind() oplog.Kind { return oplog.KindClipSplit }

// Apply splits the clip. The inverse removes the second half and restores
// the first half's source out point, in that order, so the halves never
// overlap while undoing.
func (c *SplitClip) Apply(seq *timeline.Sequence) (Command, error) {
	if err := requireSequence(seq, c.SequenceID); err != nil {
		return nil, err
	}
	track := seq.FindTrack(c.TrackID)
	if track == nil {
		return nil, fmt.Errorf("track %s: %w", c.TrackID, ErrNotFound)
	}
	clip := track.Clip(c.ClipID)
	if clip == nil {
		return nil, fmt.Errorf("clip %s: %w", c.ClipID, ErrNotFound)
	}

	start := clip.TimelineIn
	end := clip.TimelineOut()
	if !timeline.IsValidTime(c.SplitAt) || c.SplitAt <= start || c.SplitAt >= end {
		return nil, fmt.Errorf("split at %v outside clip (%v, %v): %w", c.SplitAt, start, end, ErrInvalid)
	}

	speed := clip.Speed
	if speed <= 0 {
		speed = 1
	}
	// Source time advances speed times faster than timeline time.
	sourceSplit := clip.SourceIn + (c.SplitAt-start)*speed

	if c.NewClipID == "" {
		c.NewClipID = timeline.NewID()
	}
	second := *clip
	second.ID = c.NewClipID
	second.SourceIn = sourceSplit
	second.TimelineIn = c.SplitAt

	oldSourceOut := clip.SourceOut
	clip.SourceOut = sourceSplit
	track.InsertClip(second)

	return &Batch{Commands: []Command{
		&RemoveClip{SequenceID: c.SequenceID, ClipID: c.NewClipID},
		&TrimClip{SequenceID: c.SequenceID, ClipID: c.ClipID, NewSourceOut: fptr(oldSourceOut)},
	}}, nil
}

// InsertClip places a clip on a track. An empty clip ID is generated on
// apply.
type InsertClip struct {
	SequenceID string        `json:"sequenceId"`
	TrackID    string        `json:"trackId"`
	Clip       timeline.Clip `json:"clip"`
}

// Kind returns the add operation kind.
func (c *InsertClip) Kind() oplog.Kind { return oplog.KindClipAdd }

// Apply inserts the clip and returns the removal that reverts it.
func (c *InsertClip) Apply(seq *timeline.Sequence) (Command, error) {
	if err := requireSequence(seq, c.SequenceID); err != nil {
		return nil, err
	}
	track := seq.FindTrack(c.TrackID)
	if track == nil {
		return nil, fmt.Errorf("track %s: %w", c.TrackID, ErrNotFound)
	}
	if !timeline.IsValidTime(c.Clip.TimelineIn) || !timeline.IsValidTime(c.Clip.SourceIn) {
		return nil, fmt.Errorf("clip placement: %w", ErrInvalid)
	}
	if c.Clip.SourceIn >= c.Clip.SourceOut {
		return nil, fmt.Errorf("source range [%v, %v): %w", c.Clip.SourceIn, c.Clip.SourceOut, ErrInvalid)
	}
	if track.Overlaps(c.Clip.TimelineIn, c.Clip.TimelineIn+c.Clip.Duration(), "") {
		return nil, fmt.Errorf("clip at %.3fs on track %s: %w", c.Clip.TimelineIn, c.TrackID, ErrOverlap)
	}

	if c.Clip.ID == "" {
		c.Clip.ID = timeline.NewID()
	}
	track.InsertClip(c.Clip)

	return &RemoveClip{SequenceID: c.SequenceID, ClipID: c.Clip.ID}, nil
}

// RemoveClip deletes a clip from its track.
type RemoveClip struct {
	SequenceID string `json:"sequenceId"`
	ClipID     string `json:"clipId"`
}

// Kind returns the remove operation kind.
func (c *RemoveClip) Kind() oplog.Kind { return oplog.KindClipRemove }

// Apply removes the clip and returns the insert that restores it.
func (c *RemoveClip) Apply(seq *timeline.Sequence) (Command, error) {
	if err := requireSequence(seq, c.SequenceID); err != nil {
		return nil, err
	}
	clip, track := seq.FindClip(c.ClipID)
	if clip == nil {
		return nil, fmt.Errorf("clip %s: %w", c.ClipID, ErrNotFound)
	}

	removed := *clip
	track.RemoveClip(c.ClipID)

	return &InsertClip{SequenceID: c.SequenceID, TrackID: track.ID, Clip: removed}, nil
}
