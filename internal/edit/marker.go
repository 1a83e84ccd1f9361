package edit

import (
	"fmt"

	"github.com/cutline/cutline/internal/oplog"
	"github.com/cutline/cutline/internal/timeline"
)

// AddMarker pins a labeled point on the sequence. An empty marker ID is
// generated on apply.
type AddMarker struct {
	SequenceID string          `json:"sequenceId"`
	Marker     timeline.Marker `json:"marker"`
}

// Kind returns the marker add operation kind.
func (c *AddMarker) Kind() oplog.Kind { return oplog.KindMarkerAdd }

// Apply adds the marker and returns the removal that reverts it.
func (c *AddMarker) Apply(seq *timeline.Sequence) (Command, error) {
	if err := requireSequence(seq, c.SequenceID); err != nil {
		return nil, err
	}
	if !timeline.IsValidTime(c.Marker.Time) {
		return nil, fmt.Errorf("marker time %v: %w", c.Marker.Time, ErrInvalid)
	}
	if c.Marker.ID == "" {
		c.Marker.ID = timeline.NewID()
	}
	seq.Markers = append(seq.Markers, c.Marker)
	seq.SortMarkers()

	return &RemoveMarker{SequenceID: c.SequenceID, MarkerID: c.Marker.ID}, nil
}

// RemoveMarker deletes a marker from the sequence.
type RemoveMarker struct {
	SequenceID string `json:"sequenceId"`
	MarkerID   string `json:"markerId"`
}

// Kind returns the marker remove operation kind.
func (c *RemoveMarker) Kind() oplog.Kind { return oplog.KindMarkerRemove }

// Apply removes the marker and returns the add that restores it.
func (c *RemoveMarker) Apply(seq *timeline.Sequence) (Command, error) {
	if err := requireSequence(seq, c.SequenceID); err != nil {
		return nil, err
	}
	for _, m := range seq.Markers {
		if m.ID == c.MarkerID {
			seq.RemoveMarker(c.MarkerID)
			return &AddMarker{SequenceID: c.SequenceID, Marker: m}, nil
		}
	}
	return nil, fmt.Errorf("marker %s: %w", c.MarkerID, ErrNotFound)
}
