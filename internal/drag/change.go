package drag

// Change describes one committed clip edit produced when a session ends.
// The engine never applies changes itself; the caller routes them to the
// edit layer. Concrete types are MoveChange and TrimChange.
type Change interface {
	// TargetClip returns the ID of the clip the change applies to.
	TargetClip() string
}

// MoveChange repositions a clip on the timeline. NewTrackID is set only
// when the drop landed on a different, compatible track; an incompatible
// drop reverts to the original track and leaves it empty.
type MoveChange struct {
	SequenceID    string
	TrackID       string // track the clip was on when the drag started
	ClipID        string
	NewTimelineIn float64
	NewTrackID    string
}

// TargetClip returns the moved clip's ID.
func (m MoveChange) TargetClip() string { return m.ClipID }

// TrimChange adjusts a clip's source range. A head trim sets NewSourceIn
// together with NewTimelineIn so the untouched tail stays stationary; a
// tail trim sets only NewSourceOut.
type TrimChange struct {
	SequenceID    string
	TrackID       string
	ClipID        string
	NewSourceIn   *float64
	NewSourceOut  *float64
	NewTimelineIn *float64
}

// TargetClip returns the trimmed clip's ID.
func (t TrimChange) TargetClip() string { return t.ClipID }

// Float64Ptr returns a pointer to v. Convenience for building trim changes.
func Float64Ptr(v float64) *float64 { return &v }
