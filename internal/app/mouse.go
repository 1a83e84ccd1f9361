package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/cutline/cutline/internal/drag"
	"github.com/cutline/cutline/internal/edit"
	"github.com/cutline/cutline/internal/timeline"
	"github.com/cutline/cutline/internal/viewport"
)

// trimHandleCells is the grab zone at each end of a clip. Clips narrower
// than four cells are move-only so a short clip stays draggable at all.
const trimHandleCells = 1.0

// rulerRow is the terminal row that scrubs the playhead when clicked.
const rulerRow = 1

// handleMouse routes pointer events. Wheel notches scroll regardless of any
// active interaction; press, motion, and release drive the scrub, drag, and
// slide state machines.
func (m Model) handleMouse(ev tea.MouseEvent) (tea.Model, tea.Cmd) {
	switch ev.Button {
	case tea.MouseButtonWheelUp:
		m.scrollX = m.clampScrollX(m.scrollX - wheelStepCells)
		return m, nil
	case tea.MouseButtonWheelDown:
		m.scrollX = m.clampScrollX(m.scrollX + wheelStepCells)
		return m, nil
	}

	switch ev.Action {
	case tea.MouseActionPress:
		if ev.Button == tea.MouseButtonLeft {
			return m.mousePress(ev)
		}
	case tea.MouseActionMotion:
		return m.mouseMotion(ev)
	case tea.MouseActionRelease:
		return m.mouseRelease(ev)
	}
	return m, nil
}

func (m Model) mousePress(ev tea.MouseEvent) (Model, tea.Cmd) {
	// Ruler: jump the playhead and keep scrubbing while the button is held.
	// The playhead itself is excluded from the snap candidates; a point
	// cannot snap to where it already is.
	if ev.Y == rulerRow && ev.X >= gutterWidth {
		m = m.cancelInteraction()
		m.scrubbing = true
		m.playing = false
		m.snapPoints = m.collectSnapPoints("", false)
		m.playhead = m.snapScrub(m.timeAtX(ev.X))
		return m, nil
	}

	if !m.inLaneBand(ev.Y) || ev.X < gutterWidth {
		m.selection = nil
		return m, nil
	}

	idx := m.trackIndexAtY(ev.Y)
	track := &m.seq.Tracks[idx]
	clip := clipAtTime(track, m.timeAtX(ev.X))
	if clip == nil {
		if !ev.Shift {
			m.selection = nil
		}
		return m, nil
	}

	if ev.Shift {
		m.selection = toggleSelection(m.selection, clip.ID)
		return m, nil
	}

	m = m.cancelInteraction()

	if ev.Alt {
		s := drag.StartSlide(m.seq.ID, *clip, track)
		if s == nil {
			return m.withWarning("Track is locked")
		}
		m.slide = s
		m.slideClipID = clip.ID
		m.slideView = s.UpdateSlide(0)
		m.lastSlidePx = m.contentPxAtX(ev.X)
		m.selection = []string{clip.ID}
		return m, nil
	}

	dragType := m.dragTypeAt(clip, ev.X)
	if dragType != drag.TypeMove || !containsID(m.selection, clip.ID) {
		m.selection = []string{clip.ID}
	} else {
		m.selection = promoteToPrimary(m.selection, clip.ID)
	}

	sess := drag.Start(dragType, m.seq.ID, *clip, track, idx,
		m.contentPxAtX(ev.X), float64(ev.Y-headerRows)+m.scrollY)
	if sess == nil {
		return m.withWarning("Track is locked")
	}
	m.dragSession = sess
	m.snapPoints = m.collectSnapPoints(clip.ID, true)
	m.dragSession.Update(0, idx, m.zoom, m.scrollX, m.seq.Tracks)
	return m, nil
}

func (m Model) mouseMotion(ev tea.MouseEvent) (Model, tea.Cmd) {
	switch {
	case m.scrubbing:
		m.playhead = m.snapScrub(m.timeAtX(ev.X))

	case m.slide.Active():
		cur := m.contentPxAtX(ev.X)
		m.slideView = m.slide.UpdateSlide((cur - m.lastSlidePx) / m.zoom)
		m.lastSlidePx = cur

	case m.dragSession.Active():
		d := m.dragSession.Data()
		delta := m.snapDelta(d, (m.contentPxAtX(ev.X)-d.PointerX)/m.zoom)
		m.dragSession.Update(delta, m.trackIndexAtY(ev.Y), m.zoom, m.scrollX, m.seq.Tracks)
	}
	return m, nil
}

func (m Model) mouseRelease(ev tea.MouseEvent) (Model, tea.Cmd) {
	switch {
	case m.scrubbing:
		m.scrubbing = false
		m.snapPoints = nil
		return m.kickFollow()

	case m.slide.Active():
		cur := m.contentPxAtX(ev.X)
		m.slide.UpdateSlide((cur - m.lastSlidePx) / m.zoom)
		changes := m.slide.EndSlide()
		m.slide = nil
		m.slideClipID = ""
		m.slideView = drag.SlideUpdate{}
		return m.applyCommand(edit.FromChanges(changes))
	}

	if !m.dragSession.Active() {
		return m, nil
	}

	d := m.dragSession.Data()
	delta := m.snapDelta(d, (m.contentPxAtX(ev.X)-d.PointerX)/m.zoom)
	idx := m.trackIndexAtY(ev.Y)

	sess := m.dragSession
	m.dragSession = nil
	m.snapPoints = nil

	// A click that never traveled is not an edit.
	if delta == 0 && (d.Type != drag.TypeMove || idx == d.TrackIndex) {
		sess.Cancel()
		return m, nil
	}

	final := d.TimelineIn + delta
	if d.Type == drag.TypeTrimRight {
		speed := d.Speed
		if speed <= 0 {
			speed = 1
		}
		final = d.TimelineIn + (d.SourceOut-d.SourceIn)/speed + delta
	}

	if d.Type == drag.TypeMove && len(m.selection) > 1 && containsID(m.selection, d.ClipID) {
		changes, warning := sess.EndMulti(m.seq, final, m.selection, idx)
		return m.commitWithWarning(edit.FromChanges(changes), warning)
	}

	change, warning := sess.End(final, idx, m.seq.Tracks)
	return m.commitWithWarning(edit.FromChange(change), warning)
}

// commitWithWarning applies a command and surfaces an advisory from the drag
// engine alongside whatever the commit itself produced.
func (m Model) commitWithWarning(cmd edit.Command, warning string) (Model, tea.Cmd) {
	next, teaCmd := m.applyCommand(cmd)
	if warning == "" {
		return next, teaCmd
	}
	next, warnCmd := next.withWarning(warning)
	return next, tea.Batch(teaCmd, warnCmd)
}

// dragTypeAt decides between a move and an edge trim from where inside the
// clip the press landed.
func (m Model) dragTypeAt(clip *timeline.Clip, x int) drag.Type {
	startPx := viewport.TimeToPixel(clip.TimelineIn, m.zoom, m.scrollX)
	endPx := viewport.TimeToPixel(clip.TimelineOut(), m.zoom, m.scrollX)
	if endPx-startPx < 4 {
		return drag.TypeMove
	}
	px := float64(x - gutterWidth)
	switch {
	case px < startPx+trimHandleCells:
		return drag.TypeTrimLeft
	case px >= endPx-trimHandleCells:
		return drag.TypeTrimRight
	}
	return drag.TypeMove
}

// clipAtTime finds the clip on track containing t, using the same half-open
// interval the overlap rules use.
func clipAtTime(track *timeline.Track, t float64) *timeline.Clip {
	for i := range track.Clips {
		c := &track.Clips[i]
		if t >= c.TimelineIn && t < c.TimelineOut() {
			return c
		}
	}
	return nil
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// toggleSelection adds id to the selection or removes it when present.
func toggleSelection(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return append(ids, id)
}

// promoteToPrimary moves id to the front, keeping the rest in order.
func promoteToPrimary(ids []string, id string) []string {
	out := []string{id}
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
