// Package timeline holds the sequence/track/clip model edited by the
// interaction engine. The engine reads this graph and emits change
// descriptions; only the edit layer mutates it.
package timeline

import (
	"sort"

	"github.com/google/uuid"
)

// Kind classifies a track lane.
type Kind string

const (
	KindVideo   Kind = "video"
	KindOverlay Kind = "overlay"
	KindAudio   Kind = "audio"
	KindCaption Kind = "caption"
)

// IsVisual reports whether the kind renders into the picture.
func (k Kind) IsVisual() bool {
	return k == KindVideo || k == KindOverlay
}

// CompatibleWith reports whether a clip from a track of this kind may be
// dropped onto a track of the target kind. Video and overlay lanes are
// interchangeable; audio and caption clips stay on their own kind.
func (k Kind) CompatibleWith(target Kind) bool {
	if k == target {
		return true
	}
	return k.IsVisual() && target.IsVisual()
}

// Clip is a placed, trimmed reference to a source asset on a track.
// SourceIn/SourceOut are seconds into the asset; TimelineIn is seconds from
// the sequence start. Speed multiplies source-time consumption per
// timeline-second.
type Clip struct {
	ID         string
	AssetID    string
	TrackID    string
	Label      string
	SourceIn   float64
	SourceOut  float64
	TimelineIn float64
	Speed      float64
}

// Duration returns the clip's timeline duration in seconds.
func (c Clip) Duration() float64 {
	speed := c.Speed
	if speed <= 0 {
		speed = 1
	}
	return (c.SourceOut - c.SourceIn) / speed
}

// TimelineOut returns the clip's end position on the timeline.
func (c Clip) TimelineOut() float64 {
	return c.TimelineIn + c.Duration()
}

// Track is an ordered lane of clips of one kind. Locked tracks reject drags
// and drops; Muted and Visible gate playback, not editing.
type Track struct {
	ID      string
	Kind    Kind
	Name    string
	Clips   []Clip
	Locked  bool
	Muted   bool
	Visible bool
}

// NewTrack returns an empty visible track of the given kind.
func NewTrack(kind Kind, name string) Track {
	return Track{ID: NewID(), Kind: kind, Name: name, Visible: true}
}

// SortClips orders the track's clips by timeline position, ties by ID.
func (t *Track) SortClips() {
	sort.SliceStable(t.Clips, func(i, j int) bool {
		if t.Clips[i].TimelineIn != t.Clips[j].TimelineIn {
			return t.Clips[i].TimelineIn < t.Clips[j].TimelineIn
		}
		return t.Clips[i].ID < t.Clips[j].ID
	})
}

// InsertClip adds a clip, keeping the track ordered.
func (t *Track) InsertClip(c Clip) {
	c.TrackID = t.ID
	t.Clips = append(t.Clips, c)
	t.SortClips()
}

// RemoveClip deletes the clip with the given ID and reports whether it was
// present.
func (t *Track) RemoveClip(clipID string) bool {
	for i := range t.Clips {
		if t.Clips[i].ID == clipID {
			t.Clips = append(t.Clips[:i], t.Clips[i+1:]...)
			return true
		}
	}
	return false
}

// Clip returns a pointer to the clip with the given ID, or nil.
func (t *Track) Clip(clipID string) *Clip {
	for i := range t.Clips {
		if t.Clips[i].ID == clipID {
			return &t.Clips[i]
		}
	}
	return nil
}

// Neighbors returns the clips immediately before and after clipID in
// timeline order. Either may be nil.
func (t *Track) Neighbors(clipID string) (prev, next *Clip) {
	for i := range t.Clips {
		if t.Clips[i].ID != clipID {
			continue
		}
		if i > 0 {
			prev = &t.Clips[i-1]
		}
		if i+1 < len(t.Clips) {
			next = &t.Clips[i+1]
		}
		return prev, next
	}
	return nil, nil
}

// Overlaps reports whether a clip spanning [start, end) would overlap any
// clip on the track other than ignoreID.
func (t *Track) Overlaps(start, end float64, ignoreID string) bool {
	for _, c := range t.Clips {
		if c.ID == ignoreID {
			continue
		}
		if start < c.TimelineOut() && c.TimelineIn < end {
			return true
		}
	}
	return false
}

// Marker is a labeled point of interest on the sequence.
type Marker struct {
	ID    string
	Time  float64
	Label string
	Color string
}

// Sequence owns the tracks and markers of one edited timeline.
type Sequence struct {
	ID      string
	Name    string
	Tracks  []Track
	Markers []Marker
}

// NewSequence returns an empty sequence with a fresh ID.
func NewSequence(name string) *Sequence {
	return &Sequence{ID: NewID(), Name: name}
}

// Duration returns the sequence duration: at least MinSequenceDuration,
// extended to the furthest clip end.
func (s *Sequence) Duration() float64 {
	d := MinSequenceDuration
	for ti := range s.Tracks {
		for _, c := range s.Tracks[ti].Clips {
			if end := c.TimelineOut(); end > d {
				d = end
			}
		}
	}
	return d
}

// FindTrack returns the track with the given ID, or nil.
func (s *Sequence) FindTrack(trackID string) *Track {
	for i := range s.Tracks {
		if s.Tracks[i].ID == trackID {
			return &s.Tracks[i]
		}
	}
	return nil
}

// TrackIndex returns the position of trackID in the track list, or -1.
func (s *Sequence) TrackIndex(trackID string) int {
	for i := range s.Tracks {
		if s.Tracks[i].ID == trackID {
			return i
		}
	}
	return -1
}

// FindClip returns the clip with the given ID and the track holding it, or
// nil, nil when absent.
func (s *Sequence) FindClip(clipID string) (*Clip, *Track) {
	for i := range s.Tracks {
		if c := s.Tracks[i].Clip(clipID); c != nil {
			return c, &s.Tracks[i]
		}
	}
	return nil, nil
}

// SortMarkers orders markers by time, ties by ID.
func (s *Sequence) SortMarkers() {
	sort.SliceStable(s.Markers, func(i, j int) bool {
		if s.Markers[i].Time != s.Markers[j].Time {
			return s.Markers[i].Time < s.Markers[j].Time
		}
		return s.Markers[i].ID < s.Markers[j].ID
	})
}

// RemoveMarker deletes the marker with the given ID and reports whether it
// was present.
func (s *Sequence) RemoveMarker(markerID string) bool {
	for i := range s.Markers {
		if s.Markers[i].ID == markerID {
			s.Markers = append(s.Markers[:i], s.Markers[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the sequence. Autosave snapshots use it so
// the write can happen off the event loop.
func (s *Sequence) Clone() *Sequence {
	out := &Sequence{ID: s.ID, Name: s.Name}
	out.Tracks = make([]Track, len(s.Tracks))
	for i, t := range s.Tracks {
		nt := t
		nt.Clips = make([]Clip, len(t.Clips))
		copy(nt.Clips, t.Clips)
		out.Tracks[i] = nt
	}
	out.Markers = make([]Marker, len(s.Markers))
	copy(out.Markers, s.Markers)
	return out
}

// NewID returns a fresh identifier for clips, tracks and markers.
func NewID() string {
	return uuid.NewString()
}
