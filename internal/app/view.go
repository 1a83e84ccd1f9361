package app

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cutline/cutline/internal/drag"
	"github.com/cutline/cutline/internal/snap"
	"github.com/cutline/cutline/internal/timeline"
	"github.com/cutline/cutline/internal/ui"
	"github.com/cutline/cutline/internal/viewport"
)

// cellClass names the visual role of one timeline cell. Rows are painted as
// rune plus class buffers and styled per run when rendered, so overlays like
// the playhead can replace single cells without re-splitting styled strings.
type cellClass uint8

const (
	classBlank cellClass = iota
	classRuler
	classMarker
	classPlayhead
	classClipVideo
	classClipAudio
	classClipOverlay
	classClipCaption
	classClipSelected
	classGhostValid
	classGhostInvalid
	classSlide
)

func classStyle(c cellClass) lipgloss.Style {
	switch c {
	case classRuler:
		return ui.RulerStyle
	case classMarker:
		return ui.MarkerStyle
	case classPlayhead:
		return ui.PlayheadStyle
	case classClipVideo:
		return ui.ClipVideoStyle
	case classClipAudio:
		return ui.ClipAudioStyle
	case classClipOverlay:
		return ui.ClipOverlayStyle
	case classClipCaption:
		return ui.ClipCaptionStyle
	case classClipSelected:
		return ui.ClipSelectedStyle
	case classGhostValid:
		return ui.GhostValidStyle
	case classGhostInvalid:
		return ui.GhostInvalidStyle
	case classSlide:
		return ui.SlidePreviewStyle
	}
	return lipgloss.NewStyle()
}

func kindClass(k timeline.Kind) cellClass {
	switch k {
	case timeline.KindAudio:
		return classClipAudio
	case timeline.KindOverlay:
		return classClipOverlay
	case timeline.KindCaption:
		return classClipCaption
	}
	return classClipVideo
}

// View renders the full screen: title, ruler, track lanes, status bar, and
// key help.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var sections []string
	sections = append(sections, m.renderHeader())
	sections = append(sections, m.renderRuler())
	sections = append(sections, m.renderLanes()...)
	sections = append(sections, m.renderStatusBar())
	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	title := ui.TitleStyle.Render("CUTLINE")
	name := ui.DimStyle.Render(" · " + m.seq.Name)
	var dirty string
	if m.dirty {
		dirty = ui.DirtyBadgeStyle.Render(" ●")
	}
	return title + name + dirty
}

func (m Model) renderRuler() string {
	gutter := ui.DimStyle.Render(padRight(" "+formatTimecode(m.playhead, true), gutterWidth-1)) +
		ui.DividerStyle.Render("│")
	w := int(m.timelineWidth())
	if w <= 0 {
		return gutter
	}

	runes := blankRow(w)
	classes := make([]cellClass, w)

	interval := snap.GridInterval(m.zoom)
	start := m.scrollX / m.zoom
	for t := math.Ceil(start/interval-1e-9) * interval; ; t += interval {
		col := int(math.Round(viewport.TimeToPixel(t, m.zoom, m.scrollX)))
		if col >= w {
			break
		}
		if col < 0 {
			continue
		}
		runes[col] = '╵'
		classes[col] = classRuler
		label := formatTimecode(t, interval < 1)
		for j, r := range label {
			if col+1+j >= w {
				break
			}
			runes[col+1+j] = r
			classes[col+1+j] = classRuler
		}
	}

	for _, mk := range m.seq.Markers {
		col := int(math.Round(viewport.TimeToPixel(mk.Time, m.zoom, m.scrollX)))
		if col >= 0 && col < w {
			runes[col] = '◆'
			classes[col] = classMarker
		}
	}

	if col := m.playheadCol(); col >= 0 && col < w {
		runes[col] = '▼'
		classes[col] = classPlayhead
	}

	return gutter + renderRow(runes, classes)
}

// renderLanes paints the visible lane rows. Each track occupies laneRows
// terminal rows; scrollY picks which slice of the stack is on screen.
func (m Model) renderLanes() []string {
	area := m.laneArea()
	w := int(m.timelineWidth())
	lane := int(m.laneRows)
	if lane < 1 {
		lane = 1
	}

	var preview *drag.Preview
	if m.dragSession.Active() {
		p := m.dragSession.Preview()
		preview = &p
	}

	rows := make([]string, 0, area)
	for r := 0; r < area; r++ {
		abs := r + int(m.scrollY)
		ti := abs / lane
		if ti >= len(m.seq.Tracks) {
			rows = append(rows, "")
			continue
		}
		rows = append(rows, m.renderLaneRow(&m.seq.Tracks[ti], ti, abs%lane, w, preview))
	}
	return rows
}

func (m Model) renderLaneRow(track *timeline.Track, trackIdx, rowInLane, w int, preview *drag.Preview) string {
	runes := blankRow(w)
	classes := make([]cellClass, w)

	slideActive := m.slide.Active()
	var slidNewIn, slidDur float64
	if slideActive {
		slidNewIn = m.slideView.TimelineIn
		if c, _ := m.seq.FindClip(m.slideClipID); c != nil {
			slidDur = c.Duration()
		}
	}

	for ci := range track.Clips {
		clip := &track.Clips[ci]
		if preview != nil && preview.ClipID == clip.ID {
			continue // dragged clip appears only as the ghost
		}

		startSec := clip.TimelineIn
		endSec := clip.TimelineOut()
		cls := kindClass(track.Kind)
		if containsID(m.selection, clip.ID) {
			cls = classClipSelected
		}

		if slideActive {
			switch {
			case clip.ID == m.slideClipID:
				startSec = slidNewIn
				endSec = slidNewIn + slidDur
				cls = classSlide
			case m.slideView.Prev != nil && clip.ID == m.slideView.Prev.ClipID:
				endSec = slidNewIn
				cls = classSlide
			case m.slideView.Next != nil && clip.ID == m.slideView.Next.ClipID:
				startSec = slidNewIn + slidDur
				cls = classSlide
			}
		}

		label := ""
		if rowInLane == 0 {
			label = clipText(clip)
		}
		left := viewport.TimeToPixel(startSec, m.zoom, m.scrollX)
		paintSpan(runes, classes, left, (endSec-startSec)*m.zoom, cls, '░', label)
	}

	if preview != nil && preview.TrackIndex == trackIdx {
		cls := classGhostValid
		if !preview.ValidDrop {
			cls = classGhostInvalid
		}
		label := ""
		if rowInLane == 0 {
			if c, _ := m.seq.FindClip(preview.ClipID); c != nil {
				label = clipText(c)
			}
		}
		paintSpan(runes, classes, preview.Left, preview.Width, cls, '▒', label)
	}

	if col := m.playheadCol(); col >= 0 && col < w {
		runes[col] = '│'
		classes[col] = classPlayhead
	}

	return m.laneGutter(track, rowInLane) + renderRow(runes, classes)
}

func (m Model) laneGutter(track *timeline.Track, rowInLane int) string {
	if rowInLane != 0 {
		return strings.Repeat(" ", gutterWidth-1) + ui.DividerStyle.Render("│")
	}
	name := padRight(truncateToWidth(track.Name, 8), 9)
	return ui.TrackNameStyle.Render(name) +
		ui.TrackFlagStyle.Render(trackFlags(track)) +
		ui.DividerStyle.Render("│")
}

func (m Model) renderStatusBar() string {
	var parts []string

	if m.playing {
		parts = append(parts, ui.PlayingBadgeStyle.Render("▶ PLAY"))
	} else {
		parts = append(parts, ui.PausedBadgeStyle.Render("■ STOP"))
	}
	parts = append(parts, ui.DimStyle.Render(formatTimecode(m.playhead, true)))
	parts = append(parts, ui.DimStyle.Render(fmt.Sprintf("zoom %.3g", m.zoom)))

	if m.snapEnabled {
		parts = append(parts, ui.SnapBadgeStyle.Render("SNAP"))
	}
	if m.followEnabled {
		parts = append(parts, ui.SelectedStyle.Render("FOLLOW"))
	}
	if n := len(m.selection); n > 0 {
		parts = append(parts, ui.DimStyle.Render(fmt.Sprintf("%d selected", n)))
	}
	if m.slide.Active() && m.slideView.Constrained {
		parts = append(parts, ui.SnapBadgeStyle.Render("slide limit: "+constraintText(m.slideView.Reason)))
	}

	if m.saving {
		parts = append(parts, ui.DimStyle.Render("saving…"))
	} else if m.dirty {
		parts = append(parts, ui.DirtyBadgeStyle.Render("unsaved"))
	}

	if m.warning != "" {
		parts = append(parts, ui.ErrorStyle.Render(m.warning))
	}

	return strings.Join(parts, "  ")
}

func (m Model) renderFooter() string {
	bind := func(key, desc string) string {
		return ui.FooterKeyStyle.Render(key) + ui.FooterDescStyle.Render(" "+desc)
	}
	parts := []string{
		bind("Space", "Play"),
		bind("i", "Insert"),
		bind("s", "Split"),
		bind("u/r", "Undo/Redo"),
		bind("m", "Marker"),
		bind("x", "Delete"),
		bind("+/-", "Zoom"),
		bind("S", "Snap"),
		bind("F", "Follow"),
		bind("alt+drag", "Slide"),
		bind("q", "Quit"),
	}
	return strings.Join(parts, "  ")
}

func constraintText(r drag.ConstraintReason) string {
	switch r {
	case drag.ReasonNoPrevious:
		return "no previous clip"
	case drag.ReasonNoNext:
		return "no next clip"
	case drag.ReasonMinDuration:
		return "neighbor at minimum"
	}
	return ""
}

func (m Model) playheadCol() int {
	return int(math.Round(viewport.TimeToPixel(m.playhead, m.zoom, m.scrollX)))
}

// paintSpan fills [startPx, startPx+widthPx) with fill runes of class cls,
// clipped to the row, and writes label inside the block. A span that rounds
// to nothing still paints one cell so short clips stay visible.
func paintSpan(runes []rune, classes []cellClass, startPx, widthPx float64, cls cellClass, fill rune, label string) {
	start := int(math.Round(startPx))
	end := int(math.Round(startPx + widthPx))
	if end <= start {
		end = start + 1
	}
	if end <= 0 || start >= len(runes) {
		return
	}
	if start < 0 {
		start = 0
	}
	if end > len(runes) {
		end = len(runes)
	}
	for i := start; i < end; i++ {
		runes[i] = fill
		classes[i] = cls
	}
	for j, r := range []rune(label) {
		col := start + 1 + j
		if col >= end-1 {
			break
		}
		runes[col] = r
	}
}

// renderRow styles a rune row per cell class, grouping equal runs to keep
// the escape-sequence overhead down.
func renderRow(runes []rune, classes []cellClass) string {
	var b strings.Builder
	for i := 0; i < len(runes); {
		j := i
		for j < len(runes) && classes[j] == classes[i] {
			j++
		}
		seg := string(runes[i:j])
		if classes[i] == classBlank {
			b.WriteString(seg)
		} else {
			b.WriteString(classStyle(classes[i]).Render(seg))
		}
		i = j
	}
	return b.String()
}

func blankRow(w int) []rune {
	runes := make([]rune, w)
	for i := range runes {
		runes[i] = ' '
	}
	return runes
}

func clipText(c *timeline.Clip) string {
	if c.Label != "" {
		return c.Label
	}
	if c.AssetID != "" {
		return c.AssetID
	}
	return "clip"
}

func trackFlags(track *timeline.Track) string {
	l, mu := ' ', ' '
	if track.Locked {
		l = 'L'
	}
	if track.Muted {
		mu = 'M'
	}
	return string([]rune{l, mu})
}

// formatTimecode renders seconds as m:ss, with tenths when the caller is
// labeling a sub-second scale.
func formatTimecode(t float64, tenths bool) string {
	if !timeline.IsValidTime(t) {
		t = 0
	}
	mins := int(t) / 60
	secs := t - float64(mins*60)
	if tenths {
		return fmt.Sprintf("%d:%04.1f", mins, secs)
	}
	return fmt.Sprintf("%d:%02d", mins, int(secs))
}

// Helpers

func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func truncateToWidth(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible <= width {
		return s
	}
	runes := []rune(s)
	if len(runes) > width-1 {
		return string(runes[:width-1]) + "…"
	}
	return s
}
