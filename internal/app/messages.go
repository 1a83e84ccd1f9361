package app

import "time"

// PlayTickMsg advances the playhead one frame during playback. Gen ties the
// message to the loop generation that scheduled it, so a stale tick from a
// stopped loop is dropped instead of double-driving the playhead.
type PlayTickMsg struct {
	Gen int
	At  time.Time
}

// FollowTickMsg advances the auto-follow scroll one frame.
type FollowTickMsg struct {
	Gen int
	At  time.Time
}

// AutosaveDoneMsg carries the result of a background project save.
type AutosaveDoneMsg struct {
	Err error
}

// ClearWarningMsg clears the advisory in the status bar after a delay. Gen
// guards against clearing a newer warning that replaced the one this clear
// was scheduled for.
type ClearWarningMsg struct {
	Gen int
}
