package app

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/cutline/cutline/internal/config"
	"github.com/cutline/cutline/internal/drag"
	"github.com/cutline/cutline/internal/edit"
	"github.com/cutline/cutline/internal/follow"
	"github.com/cutline/cutline/internal/project"
	"github.com/cutline/cutline/internal/snap"
	"github.com/cutline/cutline/internal/timeline"
	"github.com/cutline/cutline/internal/viewport"

	tea "github.com/charmbracelet/bubbletea"
)

// Screen layout. One terminal cell is one pixel unit, so zoom is cells per
// second and track height is rows per lane.
const (
	gutterWidth = 12 // track name column left of the timeline
	headerRows  = 2  // title row and ruler row
	footerRows  = 2  // status bar and key help
)

// wheelStepCells is how far one mouse wheel notch scrolls the timeline.
const wheelStepCells = 4.0

// Model is the root bubbletea model for the cutline TUI.
type Model struct {
	// Document
	seq     *timeline.Sequence
	history *edit.History
	store   *project.Store
	logger  zerolog.Logger

	// Viewport
	width    int
	height   int
	zoom     float64 // cells per second
	minZoom  float64
	maxZoom  float64
	scrollX  float64 // cells
	scrollY  float64 // rows
	laneRows float64

	// Playback
	playing      bool
	playhead     float64 // seconds
	playGen      int
	lastPlayTick time.Time

	// Auto-follow
	followEnabled  bool
	followActive   bool
	followGen      int
	followCfg      follow.Config
	lastFollowTick time.Time
	fps            int

	// Interaction
	dragSession *drag.Session
	slide       *drag.SlideSession
	slideClipID string
	slideView   drag.SlideUpdate
	lastSlidePx float64 // content cell of the previous slide motion event
	scrubbing   bool
	selection   []string // primary clip first
	snapEnabled bool
	snapPoints  []snap.Point

	// Advisory
	warning    string
	warningGen int

	// Persistence
	autosave   bool
	saving     bool
	dirty      bool
	editCount  int
	savedCount int
}

// New builds the model from a loaded sequence and configuration. Out-of-range
// config values fall back to usable defaults rather than failing.
func New(seq *timeline.Sequence, history *edit.History, store *project.Store, cfg *config.Config, logger zerolog.Logger) Model {
	zoom := timeline.Sanitize(cfg.Timeline.DefaultZoom, 10)
	minZoom := timeline.Sanitize(cfg.Timeline.MinZoom, 1)
	if minZoom <= 0 {
		minZoom = 1
	}
	maxZoom := timeline.Sanitize(cfg.Timeline.MaxZoom, 200)
	if maxZoom < minZoom {
		maxZoom = minZoom
	}
	zoom = timeline.Clamp(zoom, minZoom, maxZoom)

	laneRows := float64(cfg.Timeline.TrackHeight)
	if laneRows < 1 {
		laneRows = 2
	}
	fps := cfg.Follow.FPS
	if fps < 1 || fps > 120 {
		fps = 30
	}

	return Model{
		seq:     seq,
		history: history,
		store:   store,
		logger:  logger,

		zoom:     zoom,
		minZoom:  minZoom,
		maxZoom:  maxZoom,
		laneRows: laneRows,

		followEnabled: cfg.Follow.Enabled,
		followCfg: follow.Config{
			EdgeMarginFrac: cfg.Follow.EdgeMargin,
			Tau:            cfg.Follow.Tau,
		},
		fps: fps,

		snapEnabled: cfg.Timeline.SnapEnabled,
		autosave:    cfg.Autosave.Enabled,
	}
}

// Init returns no initial command; the first WindowSizeMsg drives layout.
func (m Model) Init() tea.Cmd {
	return nil
}

// playTickCmd schedules the next playback frame for loop generation gen.
func playTickCmd(gen, fps int) tea.Cmd {
	return tea.Tick(time.Second/time.Duration(fps), func(t time.Time) tea.Msg {
		return PlayTickMsg{Gen: gen, At: t}
	})
}

// followTickCmd schedules the next auto-follow frame for loop generation gen.
func followTickCmd(gen, fps int) tea.Cmd {
	return tea.Tick(time.Second/time.Duration(fps), func(t time.Time) tea.Msg {
		return FollowTickMsg{Gen: gen, At: t}
	})
}

// autosaveCmd persists a snapshot of the sequence off the update loop.
func autosaveCmd(store *project.Store, snapshot *timeline.Sequence) tea.Cmd {
	return func() tea.Msg {
		return AutosaveDoneMsg{Err: store.SaveSequence(snapshot)}
	}
}

// clearWarningCmd fires after a delay to clear the advisory for gen.
func clearWarningCmd(gen int) tea.Cmd {
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return ClearWarningMsg{Gen: gen}
	})
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(tea.MouseEvent(msg))

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.scrollX = m.clampScrollX(m.scrollX)
		m.scrollY = m.clampScrollY(m.scrollY)
		return m, nil

	case PlayTickMsg:
		return m.handlePlayTick(msg)

	case FollowTickMsg:
		return m.handleFollowTick(msg)

	case AutosaveDoneMsg:
		m.saving = false
		if msg.Err != nil {
			m.logger.Error().Err(msg.Err).Msg("autosave failed")
			return m.withWarning("Autosave failed; see log")
		}
		if m.savedCount == m.editCount {
			m.dirty = false
			return m, nil
		}
		// Edits landed while the snapshot was being written.
		return m.scheduleAutosave()

	case ClearWarningMsg:
		if msg.Gen == m.warningGen {
			m.warning = ""
		}
		return m, nil
	}

	return m, nil
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyQuit, KeyCtrlC:
		if m.dragSession.Active() {
			m.dragSession.Cancel()
		}
		if m.slide.Active() {
			m.slide.CancelSlide()
		}
		if m.store != nil && m.dirty {
			if err := m.store.SaveSequence(m.seq); err != nil {
				m.logger.Error().Err(err).Msg("save on quit failed")
			}
		}
		return m, tea.Quit

	case KeySpace:
		return m.togglePlayback()

	case KeyLeft:
		return m.scrubBy(-1)

	case KeyRight:
		return m.scrubBy(1)

	case KeyShiftLeft:
		return m.scrubBy(-5)

	case KeyShiftRight:
		return m.scrubBy(5)

	case KeySplit:
		return m.splitAtPlayhead()

	case KeyInsert:
		return m.insertAtPlayhead()

	case KeyUndo:
		if err := m.history.Undo(m.seq); err != nil {
			if errors.Is(err, edit.ErrNothingToUndo) {
				return m.withWarning("Nothing to undo")
			}
			m.logger.Error().Err(err).Msg("undo failed")
			return m.withWarning("Undo failed; see log")
		}
		m.logger.Info().Str("op", m.history.LastOpID()).Msg("undo")
		return m.markEdited()

	case KeyRedo:
		if err := m.history.Redo(m.seq); err != nil {
			if errors.Is(err, edit.ErrNothingToRedo) {
				return m.withWarning("Nothing to redo")
			}
			m.logger.Error().Err(err).Msg("redo failed")
			return m.withWarning("Redo failed; see log")
		}
		m.logger.Info().Str("op", m.history.LastOpID()).Msg("redo")
		return m.markEdited()

	case KeyMarker:
		marker := timeline.Marker{
			Time:  m.playhead,
			Label: fmt.Sprintf("Marker %d", len(m.seq.Markers)+1),
		}
		return m.applyCommand(&edit.AddMarker{SequenceID: m.seq.ID, Marker: marker})

	case KeyDelete:
		return m.deleteSelection()

	case KeyZoomIn, KeyZoomInAlt:
		m = m.setZoom(m.zoom * 1.25)
		return m, nil

	case KeyZoomOut:
		m = m.setZoom(m.zoom / 1.25)
		return m, nil

	case KeyScrollLeft:
		m.scrollX = m.clampScrollX(m.scrollX - 0.2*m.timelineWidth())
		return m, nil

	case KeyScrollRight:
		m.scrollX = m.clampScrollX(m.scrollX + 0.2*m.timelineWidth())
		return m, nil

	case KeyTrackDown:
		m.scrollY = m.clampScrollY(m.scrollY + 1)
		return m, nil

	case KeyTrackUp:
		m.scrollY = m.clampScrollY(m.scrollY - 1)
		return m, nil

	case KeySnapToggle:
		m.snapEnabled = !m.snapEnabled
		return m, nil

	case KeyFollowToggle:
		m.followEnabled = !m.followEnabled
		if m.followEnabled {
			return m.kickFollow()
		}
		return m, nil

	case KeyTab:
		return m.cycleSelection(), nil

	case KeyEscape:
		return m.cancelInteraction(), nil
	}

	return m, nil
}

// togglePlayback starts or stops the playback tick loop. Starting from the
// end of the sequence rewinds to zero first.
func (m Model) togglePlayback() (Model, tea.Cmd) {
	if m.playing {
		m.playing = false
		return m, nil
	}
	if m.playhead >= m.seq.Duration() {
		m.playhead = 0
	}
	m.playing = true
	m.playGen++
	m.lastPlayTick = time.Time{}
	return m, playTickCmd(m.playGen, m.fps)
}

func (m Model) handlePlayTick(msg PlayTickMsg) (Model, tea.Cmd) {
	if msg.Gen != m.playGen || !m.playing {
		return m, nil
	}
	dt := frameSeconds(m.lastPlayTick, msg.At, m.fps)
	m.lastPlayTick = msg.At

	end := m.seq.Duration()
	m.playhead = timeline.Clamp(m.playhead+dt, 0, end)
	if m.playhead >= end {
		m.playing = false
		return m, nil
	}

	cmds := []tea.Cmd{playTickCmd(m.playGen, m.fps)}
	var followCmd tea.Cmd
	m, followCmd = m.kickFollow()
	if followCmd != nil {
		cmds = append(cmds, followCmd)
	}
	return m, tea.Batch(cmds...)
}

// kickFollow starts the auto-follow loop when it is enabled, not already
// running, not suppressed by a scrub or drag, and the playhead actually
// needs chasing.
func (m Model) kickFollow() (Model, tea.Cmd) {
	if !m.followEnabled || m.followActive || m.scrubbing || m.dragSession.Active() || m.slide.Active() {
		return m, nil
	}
	if _, needed := m.followCfg.Target(m.playhead, m.zoom, m.scrollX, m.timelineWidth(), m.contentWidth()); !needed {
		return m, nil
	}
	m.followActive = true
	m.followGen++
	m.lastFollowTick = time.Time{}
	return m, followTickCmd(m.followGen, m.fps)
}

func (m Model) handleFollowTick(msg FollowTickMsg) (Model, tea.Cmd) {
	if msg.Gen != m.followGen || !m.followActive {
		return m, nil
	}
	if !m.followEnabled || m.scrubbing || m.dragSession.Active() || m.slide.Active() {
		m.followActive = false
		return m, nil
	}
	dt := frameSeconds(m.lastFollowTick, msg.At, m.fps)
	m.lastFollowTick = msg.At

	next := m.followCfg.Step(m.playhead, m.zoom, m.scrollX, m.timelineWidth(), m.contentWidth(), dt)
	settled := next == m.scrollX
	m.scrollX = next
	if settled && !m.playing {
		m.followActive = false
		return m, nil
	}
	return m, followTickCmd(m.followGen, m.fps)
}

// scrubBy nudges the playhead by delta seconds and lets follow catch up.
func (m Model) scrubBy(delta float64) (Model, tea.Cmd) {
	m.playhead = timeline.Clamp(m.playhead+delta, 0, m.seq.Duration())
	return m.kickFollow()
}

// applyCommand runs cmd through the undo history and schedules an autosave.
// Rejected edits surface as a transient advisory, never as a crash.
func (m Model) applyCommand(cmd edit.Command) (Model, tea.Cmd) {
	if cmd == nil {
		return m, nil
	}
	if err := m.history.Apply(m.seq, cmd); err != nil {
		m.logger.Warn().Err(err).Str("kind", string(cmd.Kind())).Msg("edit rejected")
		return m.withWarning(editWarning(err))
	}
	m.logger.Info().Str("kind", string(cmd.Kind())).Str("op", m.history.LastOpID()).Msg("edit applied")
	return m.markEdited()
}

// markEdited flags the document dirty and schedules an autosave.
func (m Model) markEdited() (Model, tea.Cmd) {
	m.dirty = true
	m.editCount++
	return m.scheduleAutosave()
}

// scheduleAutosave kicks off a background save of a snapshot. At most one
// save is in flight; edits that land during a save trigger another one when
// it finishes.
func (m Model) scheduleAutosave() (Model, tea.Cmd) {
	if !m.autosave || m.store == nil || m.saving {
		return m, nil
	}
	m.saving = true
	m.savedCount = m.editCount
	return m, autosaveCmd(m.store, m.seq.Clone())
}

// withWarning sets a transient advisory and schedules its removal.
func (m Model) withWarning(text string) (Model, tea.Cmd) {
	m.warning = text
	m.warningGen++
	m.logger.Debug().Str("warning", text).Msg("advisory")
	return m, clearWarningCmd(m.warningGen)
}

// editWarning maps a command error to a short status line.
func editWarning(err error) string {
	switch {
	case errors.Is(err, edit.ErrOverlap):
		return "Clips would overlap; edit rejected"
	case errors.Is(err, edit.ErrInvalid):
		return "Edit out of range; rejected"
	case errors.Is(err, edit.ErrNotFound):
		return "Clip no longer exists"
	}
	return "Edit failed; see log"
}

// splitAtPlayhead cuts the clip under the playhead in two. The primary
// selected clip wins when it contains the playhead; otherwise the topmost
// unlocked track's clip is used.
func (m Model) splitAtPlayhead() (Model, tea.Cmd) {
	clip, track := m.clipAtPlayhead()
	if clip == nil {
		return m.withWarning("No clip under the playhead")
	}
	cmd := &edit.SplitClip{
		SequenceID: m.seq.ID,
		TrackID:    track.ID,
		ClipID:     clip.ID,
		SplitAt:    m.playhead,
	}
	return m.applyCommand(cmd)
}

// insertAtPlayhead places a new five second clip at the playhead. The
// primary selection's track wins when it is unlocked; otherwise the first
// unlocked track takes it. Asset references are synthetic until a media
// bin exists.
func (m Model) insertAtPlayhead() (Model, tea.Cmd) {
	track := m.insertTarget()
	if track == nil {
		return m.withWarning("No unlocked track")
	}
	n := 1
	for i := range m.seq.Tracks {
		n += len(m.seq.Tracks[i].Clips)
	}
	clip := timeline.Clip{
		AssetID:    fmt.Sprintf("asset-%d", n),
		Label:      fmt.Sprintf("Clip %d", n),
		SourceIn:   0,
		SourceOut:  5,
		TimelineIn: m.playhead,
		Speed:      1,
	}
	return m.applyCommand(&edit.InsertClip{SequenceID: m.seq.ID, TrackID: track.ID, Clip: clip})
}

func (m Model) insertTarget() *timeline.Track {
	if len(m.selection) > 0 {
		if _, tr := m.seq.FindClip(m.selection[0]); tr != nil && !tr.Locked {
			return tr
		}
	}
	for i := range m.seq.Tracks {
		if !m.seq.Tracks[i].Locked {
			return &m.seq.Tracks[i]
		}
	}
	return nil
}

func (m Model) clipAtPlayhead() (*timeline.Clip, *timeline.Track) {
	contains := func(c *timeline.Clip) bool {
		return m.playhead > c.TimelineIn && m.playhead < c.TimelineOut()
	}
	if len(m.selection) > 0 {
		if c, tr := m.seq.FindClip(m.selection[0]); c != nil && !tr.Locked && contains(c) {
			return c, tr
		}
	}
	for i := range m.seq.Tracks {
		tr := &m.seq.Tracks[i]
		if tr.Locked {
			continue
		}
		for j := range tr.Clips {
			if c := &tr.Clips[j]; contains(c) {
				return c, tr
			}
		}
	}
	return nil, nil
}

// deleteSelection removes every selected clip on an unlocked track as one
// undoable step.
func (m Model) deleteSelection() (Model, tea.Cmd) {
	var cmds []edit.Command
	for _, id := range m.selection {
		if _, tr := m.seq.FindClip(id); tr == nil || tr.Locked {
			continue
		}
		cmds = append(cmds, &edit.RemoveClip{SequenceID: m.seq.ID, ClipID: id})
	}
	if len(cmds) == 0 {
		return m, nil
	}
	m.selection = nil
	if len(cmds) == 1 {
		return m.applyCommand(cmds[0])
	}
	return m.applyCommand(&edit.Batch{Commands: cmds})
}

// cycleSelection steps the primary selection through every clip in timeline
// order, wrapping at the end.
func (m Model) cycleSelection() Model {
	ids := m.clipOrder()
	if len(ids) == 0 {
		return m
	}
	next := ids[0]
	if len(m.selection) > 0 {
		for i, id := range ids {
			if id == m.selection[0] {
				next = ids[(i+1)%len(ids)]
				break
			}
		}
	}
	m.selection = []string{next}
	return m
}

// clipOrder lists every clip ID sorted by timeline position, then by track.
func (m Model) clipOrder() []string {
	type entry struct {
		id    string
		in    float64
		track int
	}
	var all []entry
	for ti := range m.seq.Tracks {
		for _, c := range m.seq.Tracks[ti].Clips {
			all = append(all, entry{id: c.ID, in: c.TimelineIn, track: ti})
		}
	}
	for i := 1; i < len(all); i++ {
		for j := i; j > 0; j-- {
			a, b := all[j-1], all[j]
			if a.in < b.in || (a.in == b.in && a.track <= b.track) {
				break
			}
			all[j-1], all[j] = b, a
		}
	}
	ids := make([]string, len(all))
	for i, e := range all {
		ids[i] = e.id
	}
	return ids
}

// cancelInteraction abandons any active drag, slide, or scrub.
func (m Model) cancelInteraction() Model {
	if m.dragSession.Active() {
		m.dragSession.Cancel()
	}
	m.dragSession = nil
	if m.slide.Active() {
		m.slide.CancelSlide()
	}
	m.slide = nil
	m.slideClipID = ""
	m.slideView = drag.SlideUpdate{}
	m.scrubbing = false
	m.snapPoints = nil
	return m
}

// setZoom changes the zoom while keeping the time at the viewport center
// fixed on screen.
func (m Model) setZoom(z float64) Model {
	z = timeline.Clamp(timeline.Sanitize(z, m.zoom), m.minZoom, m.maxZoom)
	if z == m.zoom {
		return m
	}
	w := m.timelineWidth()
	centerSec := (m.scrollX + w/2) / m.zoom
	m.zoom = z
	m.scrollX = m.clampScrollX(centerSec*z - w/2)
	return m
}

func (m Model) clampScrollX(x float64) float64 {
	hi := m.contentWidth() - m.timelineWidth()
	if hi < 0 {
		hi = 0
	}
	return timeline.Clamp(timeline.Sanitize(x, 0), 0, hi)
}

func (m Model) clampScrollY(y float64) float64 {
	hi := float64(len(m.seq.Tracks))*m.laneRows - float64(m.laneArea())
	if hi < 0 {
		hi = 0
	}
	return timeline.Clamp(timeline.Sanitize(y, 0), 0, hi)
}

// timelineWidth is the width in cells of the scrollable timeline region.
func (m Model) timelineWidth() float64 {
	w := float64(m.width - gutterWidth)
	if w < 0 {
		return 0
	}
	return w
}

// contentWidth is the full sequence width in cells at the current zoom.
func (m Model) contentWidth() float64 {
	return m.seq.Duration() * m.zoom
}

// laneArea is the number of terminal rows available for track lanes.
func (m Model) laneArea() int {
	rows := m.height - headerRows - footerRows
	if rows < 0 {
		return 0
	}
	return rows
}

// timeAtX maps a terminal column to timeline seconds.
func (m Model) timeAtX(x int) float64 {
	return viewport.PixelToTime(float64(x-gutterWidth), m.zoom, m.scrollX, m.seq.Duration())
}

// contentPxAtX maps a terminal column to an absolute content cell offset,
// unclamped so pointer travel past the sequence edges still measures.
func (m Model) contentPxAtX(x int) float64 {
	return float64(x-gutterWidth) + m.scrollX
}

// trackIndexAtY maps a terminal row to a track index, clamped into range.
func (m Model) trackIndexAtY(y int) int {
	return viewport.TrackIndexFromY(float64(y-headerRows), m.scrollY, m.laneRows, len(m.seq.Tracks))
}

// inLaneBand reports whether a terminal row falls inside the rows that
// actually show tracks.
func (m Model) inLaneBand(y int) bool {
	if y < headerRows || y >= headerRows+m.laneArea() {
		return false
	}
	row := float64(y-headerRows) + m.scrollY
	return row < float64(len(m.seq.Tracks))*m.laneRows
}

// collectSnapPoints gathers snap candidates around the visible window. The
// window is padded by one viewport span on each side so targets just off
// screen still attract. Pass excludeClipID for the clip being dragged and
// includePlayhead=false while scrubbing the playhead itself.
func (m Model) collectSnapPoints(excludeClipID string, includePlayhead bool) []snap.Point {
	if !m.snapEnabled || m.zoom <= 0 {
		return nil
	}
	span := m.timelineWidth() / m.zoom
	start := m.scrollX / m.zoom
	playhead := m.playhead
	if !includePlayhead {
		playhead = math.NaN()
	}
	return snap.Collect(m.seq, excludeClipID, playhead, m.zoom, start-span, start+2*span)
}

// snapScrub resolves a scrub target against the collected points.
func (m Model) snapScrub(t float64) float64 {
	if !m.snapEnabled || len(m.snapPoints) == 0 {
		return t
	}
	return snap.Resolve(t, m.snapPoints, snap.Threshold(m.zoom)).Time
}

// snapDelta adjusts a drag delta so the dragged feature lands on the nearest
// snap point. Moves try both clip edges and keep the closer lock; trims snap
// the edge being pulled.
func (m Model) snapDelta(d drag.Data, deltaSec float64) float64 {
	if !m.snapEnabled || len(m.snapPoints) == 0 {
		return deltaSec
	}
	th := snap.Threshold(m.zoom)
	speed := d.Speed
	if speed <= 0 {
		speed = 1
	}
	dur := (d.SourceOut - d.SourceIn) / speed

	switch d.Type {
	case drag.TypeMove:
		start := d.TimelineIn + deltaSec
		rs := snap.Resolve(start, m.snapPoints, th)
		re := snap.Resolve(start+dur, m.snapPoints, th)
		adjS := math.Inf(1)
		if rs.Snapped {
			adjS = math.Abs(rs.Time - start)
		}
		adjE := math.Inf(1)
		if re.Snapped {
			adjE = math.Abs(re.Time - (start + dur))
		}
		switch {
		case rs.Snapped && adjS <= adjE:
			return rs.Time - d.TimelineIn
		case re.Snapped:
			return re.Time - dur - d.TimelineIn
		}

	case drag.TypeTrimLeft:
		if r := snap.Resolve(d.TimelineIn+deltaSec, m.snapPoints, th); r.Snapped {
			return r.Time - d.TimelineIn
		}

	case drag.TypeTrimRight:
		out := d.TimelineIn + dur
		if r := snap.Resolve(out+deltaSec, m.snapPoints, th); r.Snapped {
			return r.Time - out
		}
	}
	return deltaSec
}

// frameSeconds converts the gap between two tick timestamps to seconds,
// capped so a stalled terminal eases one long frame instead of teleporting.
// A zero last tick (fresh loop) counts as exactly one nominal frame.
func frameSeconds(last, now time.Time, fps int) float64 {
	if fps < 1 {
		fps = 30
	}
	if last.IsZero() || !now.After(last) {
		return 1 / float64(fps)
	}
	dt := now.Sub(last).Seconds()
	if dt > 0.25 {
		dt = 0.25
	}
	return dt
}
