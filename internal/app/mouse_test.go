package app

import (
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cutline/cutline/internal/drag"
	"github.com/cutline/cutline/internal/timeline"
)

func press(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func shiftPress(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft, Shift: true}
}

func altPress(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft, Alt: true}
}

func motion(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft}
}

func release(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonNone}
}

func wheel(b tea.MouseButton) tea.MouseMsg {
	return tea.MouseMsg{X: 40, Y: 4, Action: tea.MouseActionPress, Button: b}
}

// slideSequence builds one video track of three adjacent clips, five seconds
// each, so a slide has a neighbor on both sides.
func slideSequence() *timeline.Sequence {
	seq := timeline.NewSequence("Slide")
	v1 := timeline.NewTrack(timeline.KindVideo, "V1")
	v1.InsertClip(timeline.Clip{ID: "c1", AssetID: "asset-1", Label: "C1", SourceIn: 0, SourceOut: 5, TimelineIn: 0, Speed: 1})
	v1.InsertClip(timeline.Clip{ID: "c2", AssetID: "asset-2", Label: "C2", SourceIn: 0, SourceOut: 5, TimelineIn: 5, Speed: 1})
	v1.InsertClip(timeline.Clip{ID: "c3", AssetID: "asset-3", Label: "C3", SourceIn: 0, SourceOut: 5, TimelineIn: 10, Speed: 1})
	seq.Tracks = []timeline.Track{v1}
	return seq
}

func TestWheelScrollsTimeline(t *testing.T) {
	m := testModel()

	updated, _ := m.Update(wheel(tea.MouseButtonWheelDown))
	model := updated.(Model)
	updated, _ = model.Update(wheel(tea.MouseButtonWheelDown))
	model = updated.(Model)
	if model.scrollX != 8 {
		t.Errorf("scrollX = %v, want 8", model.scrollX)
	}

	updated, _ = model.Update(wheel(tea.MouseButtonWheelUp))
	model = updated.(Model)
	if model.scrollX != 4 {
		t.Errorf("scrollX = %v, want 4", model.scrollX)
	}

	for i := 0; i < 3; i++ {
		updated, _ = model.Update(wheel(tea.MouseButtonWheelUp))
		model = updated.(Model)
	}
	if model.scrollX != 0 {
		t.Errorf("scrollX = %v, want clamped at 0", model.scrollX)
	}
}

func TestRulerPressScrubsPlayhead(t *testing.T) {
	m := testModel()
	m.playing = true

	updated, _ := m.Update(press(32, rulerRow))
	model := updated.(Model)
	if model.playhead != 2 {
		t.Errorf("playhead = %v, want 2", model.playhead)
	}
	if !model.scrubbing {
		t.Error("ruler press should start scrubbing")
	}
	if model.playing {
		t.Error("scrubbing should pause playback")
	}

	updated, _ = model.Update(motion(52, rulerRow))
	model = updated.(Model)
	if model.playhead != 4 {
		t.Errorf("playhead = %v, want 4", model.playhead)
	}

	updated, _ = model.Update(release(52, rulerRow))
	model = updated.(Model)
	if model.scrubbing {
		t.Error("release should stop scrubbing")
	}
}

func TestRulerScrubSnapsToClipEdge(t *testing.T) {
	m := testModel()
	m.snapEnabled = true

	// Column 51 is 3.9s; the end of clip "a" at 4.0s is well inside the
	// ten pixel threshold.
	updated, _ := m.Update(press(51, rulerRow))
	model := updated.(Model)

	if model.playhead != 4 {
		t.Errorf("playhead = %v, want snapped to 4", model.playhead)
	}
}

func TestClickSelectsWithoutEditing(t *testing.T) {
	m := testModel()
	m.zoom = 5

	updated, _ := m.Update(press(22, 2))
	model := updated.(Model)
	if len(model.selection) != 1 || model.selection[0] != "a" {
		t.Fatalf("selection = %v, want [a]", model.selection)
	}

	updated, _ = model.Update(release(22, 2))
	model = updated.(Model)
	if model.seq.Tracks[0].Clips[0].TimelineIn != 0 {
		t.Error("a stationary click must not move the clip")
	}
	if model.history.CanUndo() {
		t.Error("a stationary click must not create an edit")
	}
	if len(model.selection) != 1 || model.selection[0] != "a" {
		t.Errorf("selection = %v, want kept [a]", model.selection)
	}
}

func TestClickEmptySpaceClearsSelection(t *testing.T) {
	m := testModel()
	m.zoom = 5
	m.selection = []string{"a"}

	// 6s is the gap between the clips.
	updated, _ := m.Update(press(42, 2))
	model := updated.(Model)
	if model.selection != nil {
		t.Errorf("selection = %v, want cleared", model.selection)
	}

	model.selection = []string{"a"}
	// Row 10 is below the last track lane.
	updated, _ = model.Update(press(42, 10))
	model = updated.(Model)
	if model.selection != nil {
		t.Errorf("selection = %v, want cleared below the lanes", model.selection)
	}
}

func TestShiftClickTogglesSelection(t *testing.T) {
	m := testModel()
	m.zoom = 5

	updated, _ := m.Update(shiftPress(22, 2))
	model := updated.(Model)
	if len(model.selection) != 1 || model.selection[0] != "a" {
		t.Fatalf("selection = %v, want [a]", model.selection)
	}

	updated, _ = model.Update(shiftPress(67, 2))
	model = updated.(Model)
	if len(model.selection) != 2 {
		t.Fatalf("selection = %v, want [a b]", model.selection)
	}

	updated, _ = model.Update(shiftPress(22, 2))
	model = updated.(Model)
	if len(model.selection) != 1 || model.selection[0] != "b" {
		t.Errorf("selection = %v, want [b]", model.selection)
	}
}

func TestDragMovesClip(t *testing.T) {
	m := testModel()
	m.zoom = 5

	updated, _ := m.Update(press(22, 2))
	model := updated.(Model)

	updated, _ = model.Update(motion(32, 2))
	model = updated.(Model)
	p := model.dragSession.Preview()
	if p.Left != 10 || p.Width != 20 {
		t.Errorf("preview = %+v, want Left 10 Width 20", p)
	}
	if !p.ValidDrop {
		t.Error("same-track preview should be a valid drop")
	}
	// The document itself must not change until release.
	if model.seq.Tracks[0].Clips[0].TimelineIn != 0 {
		t.Error("motion must not mutate the sequence")
	}

	updated, _ = model.Update(release(32, 2))
	model = updated.(Model)
	clip := model.seq.Tracks[0].Clip("a")
	if clip == nil {
		t.Fatal("clip a missing after drag")
	}
	if clip.TimelineIn != 2 {
		t.Fatalf("clip a TimelineIn = %v, want 2", clip.TimelineIn)
	}
	if !model.history.CanUndo() {
		t.Error("committed drag should be undoable")
	}
}

func TestDragRejectedOnOverlapWarns(t *testing.T) {
	m := testModel()
	m.zoom = 5

	updated, _ := m.Update(press(22, 2))
	model := updated.(Model)
	updated, _ = model.Update(release(62, 2))
	model = updated.(Model)

	// 8s start would overlap clip "b" at 10s.
	if !strings.Contains(model.warning, "overlap") {
		t.Errorf("warning = %q, want overlap advisory", model.warning)
	}
	if model.seq.Tracks[0].Clip("a").TimelineIn != 0 {
		t.Error("rejected drag must leave the clip in place")
	}
	if model.history.CanUndo() {
		t.Error("rejected drag must not enter history")
	}
}

func TestDragToCompatibleTrackMoves(t *testing.T) {
	m := testModel()
	m.zoom = 5

	updated, _ := m.Update(press(22, 2))
	model := updated.(Model)
	updated, _ = model.Update(motion(22, 4))
	model = updated.(Model)
	updated, _ = model.Update(release(22, 4))
	model = updated.(Model)

	if len(model.seq.Tracks[0].Clips) != 1 {
		t.Fatalf("video track clips = %d, want 1", len(model.seq.Tracks[0].Clips))
	}
	moved := model.seq.Tracks[1].Clip("a")
	if moved == nil {
		t.Fatal("clip a should land on the overlay track")
	}
	if moved.TimelineIn != 0 {
		t.Errorf("TimelineIn = %v, want 0", moved.TimelineIn)
	}
	if moved.TrackID != model.seq.Tracks[1].ID {
		t.Error("clip should carry the new track ID")
	}
}

func TestDragToIncompatibleTrackKeepsTrack(t *testing.T) {
	m := testModel()
	m.zoom = 5

	updated, _ := m.Update(press(22, 2))
	model := updated.(Model)

	// Row 6 is the audio lane; video cannot land there.
	updated, _ = model.Update(motion(32, 6))
	model = updated.(Model)
	if model.dragSession.Preview().ValidDrop {
		t.Error("audio lane should preview as an invalid drop")
	}

	updated, _ = model.Update(release(32, 6))
	model = updated.(Model)

	if !strings.Contains(model.warning, "kept on original track") {
		t.Errorf("warning = %q", model.warning)
	}
	clip := model.seq.Tracks[0].Clip("a")
	if clip == nil {
		t.Fatal("clip a should stay on the video track")
	}
	if clip.TimelineIn != 2 {
		t.Errorf("TimelineIn = %v, want the time offset 2 still applied", clip.TimelineIn)
	}
}

func TestTrimLeftDrag(t *testing.T) {
	m := testModel()
	m.zoom = 5

	// Column 12 is the first cell of clip "a", inside the trim handle.
	updated, _ := m.Update(press(12, 2))
	model := updated.(Model)

	updated, _ = model.Update(motion(17, 2))
	model = updated.(Model)
	p := model.dragSession.Preview()
	if p.Left != 5 || p.Width != 15 {
		t.Errorf("preview = %+v, want Left 5 Width 15", p)
	}

	updated, _ = model.Update(release(22, 2))
	model = updated.(Model)

	clip := model.seq.Tracks[0].Clip("a")
	if clip.SourceIn != 2 || clip.TimelineIn != 2 {
		t.Errorf("clip = SourceIn %v TimelineIn %v, want 2 and 2", clip.SourceIn, clip.TimelineIn)
	}
	if clip.SourceOut != 4 {
		t.Errorf("SourceOut = %v, want untouched 4", clip.SourceOut)
	}
}

func TestTrimRightDragClampsAtMinDuration(t *testing.T) {
	m := testModel()

	// Column 51 is the last cell of clip "a" at zoom 10.
	updated, _ := m.Update(press(51, 2))
	model := updated.(Model)
	updated, _ = model.Update(release(5, 2))
	model = updated.(Model)

	clip := model.seq.Tracks[0].Clip("a")
	if math.Abs(clip.SourceOut-timeline.MinClipDuration) > 1e-9 {
		t.Errorf("SourceOut = %v, want minimum duration %v", clip.SourceOut, timeline.MinClipDuration)
	}
	if clip.TimelineIn != 0 || clip.SourceIn != 0 {
		t.Error("tail trim must not move the clip start")
	}
}

func TestDragSnapsToNeighborEdge(t *testing.T) {
	m := testModel()
	m.zoom = 5
	m.snapEnabled = true

	updated, _ := m.Update(press(22, 2))
	model := updated.(Model)

	// Raw travel puts the clip end at 9.6s; the start of "b" at 10s pulls
	// it flush.
	updated, _ = model.Update(motion(50, 2))
	model = updated.(Model)
	if p := model.dragSession.Preview(); p.Left != 30 {
		t.Errorf("preview Left = %v, want snapped 30", p.Left)
	}

	updated, _ = model.Update(release(50, 2))
	model = updated.(Model)

	clip := model.seq.Tracks[0].Clip("a")
	if clip.TimelineIn != 6 {
		t.Errorf("TimelineIn = %v, want snapped to 6", clip.TimelineIn)
	}
	if model.warning != "" {
		t.Errorf("warning = %q, want none", model.warning)
	}
}

func TestMultiSelectDragMovesAllSelected(t *testing.T) {
	m := testModel()
	m.zoom = 5

	updated, _ := m.Update(shiftPress(22, 2))
	model := updated.(Model)
	updated, _ = model.Update(shiftPress(67, 2))
	model = updated.(Model)

	updated, _ = model.Update(press(22, 2))
	model = updated.(Model)
	if len(model.selection) != 2 {
		t.Fatalf("selection = %v, want both clips kept", model.selection)
	}

	updated, _ = model.Update(motion(32, 2))
	model = updated.(Model)
	updated, _ = model.Update(release(32, 2))
	model = updated.(Model)

	track := model.seq.Tracks[0]
	if track.Clip("a").TimelineIn != 2 {
		t.Errorf("a TimelineIn = %v, want 2", track.Clip("a").TimelineIn)
	}
	if track.Clip("b").TimelineIn != 12 {
		t.Errorf("b TimelineIn = %v, want 12", track.Clip("b").TimelineIn)
	}

	// The grouped move undoes as one step.
	updated, _ = model.Update(key("u"))
	model = updated.(Model)
	track = model.seq.Tracks[0]
	if track.Clip("a").TimelineIn != 0 || track.Clip("b").TimelineIn != 10 {
		t.Error("one undo should restore both clips")
	}
}

func TestAltDragSlides(t *testing.T) {
	m := testModel()
	m.seq = slideSequence()
	m.zoom = 5

	// Column 47 is 7s, inside the middle clip.
	updated, _ := m.Update(altPress(47, 2))
	model := updated.(Model)
	if !model.slide.Active() {
		t.Fatal("alt press should start a slide")
	}

	updated, _ = model.Update(motion(57, 2))
	model = updated.(Model)
	if model.slideView.Offset != 2 {
		t.Fatalf("offset = %v, want 2", model.slideView.Offset)
	}
	if model.slideView.TimelineIn != 7 {
		t.Errorf("slid clip preview at %v, want 7", model.slideView.TimelineIn)
	}
	if model.slideView.Prev == nil || model.slideView.Prev.SourceOut != 7 {
		t.Error("previous clip preview should extend its tail to 7")
	}
	if model.slideView.Next == nil || model.slideView.Next.TimelineIn != 12 {
		t.Error("next clip preview should retreat to 12")
	}

	updated, _ = model.Update(release(57, 2))
	model = updated.(Model)

	track := model.seq.Tracks[0]
	if got := track.Clip("c1").SourceOut; got != 7 {
		t.Errorf("c1 SourceOut = %v, want 7", got)
	}
	if got := track.Clip("c2").TimelineIn; got != 7 {
		t.Errorf("c2 TimelineIn = %v, want 7", got)
	}
	c3 := track.Clip("c3")
	if c3.TimelineIn != 12 || c3.SourceIn != 2 {
		t.Errorf("c3 = TimelineIn %v SourceIn %v, want 12 and 2", c3.TimelineIn, c3.SourceIn)
	}

	// The whole slide undoes as one step.
	updated, _ = model.Update(key("u"))
	model = updated.(Model)
	track = model.seq.Tracks[0]
	if track.Clip("c1").SourceOut != 5 || track.Clip("c2").TimelineIn != 5 || track.Clip("c3").TimelineIn != 10 {
		t.Error("one undo should restore all three clips")
	}
}

func TestSlideClampsAtNeighborMinimum(t *testing.T) {
	m := testModel()
	m.seq = slideSequence()
	m.zoom = 2

	updated, _ := m.Update(altPress(27, 2))
	model := updated.(Model)

	// Ten seconds of travel, but the next clip can only give up 4.9s.
	updated, _ = model.Update(motion(47, 2))
	model = updated.(Model)

	if !model.slideView.Constrained {
		t.Fatal("slide should report the clamp")
	}
	if model.slideView.Reason != drag.ReasonMinDuration {
		t.Errorf("reason = %q, want %q", model.slideView.Reason, drag.ReasonMinDuration)
	}
	if math.Abs(model.slideView.Offset-4.9) > 1e-9 {
		t.Errorf("offset = %v, want clamped 4.9", model.slideView.Offset)
	}

	// Escape abandons the slide; release afterwards commits nothing.
	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyEscape})
	model = updated.(Model)
	updated, _ = model.Update(release(47, 2))
	model = updated.(Model)

	if model.seq.Tracks[0].Clip("c2").TimelineIn != 5 {
		t.Error("cancelled slide must leave the sequence unchanged")
	}
	if model.history.CanUndo() {
		t.Error("cancelled slide must not enter history")
	}
}

func TestSlideWithoutNextPinsOffset(t *testing.T) {
	m := testModel()
	m.zoom = 5

	// Clip "b" has no next neighbor, so sliding right gives no room.
	updated, _ := m.Update(altPress(67, 2))
	model := updated.(Model)
	updated, _ = model.Update(motion(77, 2))
	model = updated.(Model)

	if model.slideView.Offset != 0 {
		t.Errorf("offset = %v, want pinned at 0", model.slideView.Offset)
	}
	if model.slideView.Reason != drag.ReasonNoNext {
		t.Errorf("reason = %q, want %q", model.slideView.Reason, drag.ReasonNoNext)
	}

	updated, _ = model.Update(release(77, 2))
	model = updated.(Model)
	if model.seq.Tracks[0].Clip("b").TimelineIn != 10 {
		t.Error("zero-offset slide must not move the clip")
	}
	if model.history.CanUndo() {
		t.Error("zero-offset slide must not enter history")
	}
}

func TestEscapeCancelsDrag(t *testing.T) {
	m := testModel()
	m.zoom = 5

	updated, _ := m.Update(press(22, 2))
	model := updated.(Model)
	updated, _ = model.Update(motion(32, 2))
	model = updated.(Model)

	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyEscape})
	model = updated.(Model)
	if model.dragSession.Active() {
		t.Fatal("escape should cancel the drag")
	}

	updated, _ = model.Update(release(32, 2))
	model = updated.(Model)
	if model.seq.Tracks[0].Clip("a").TimelineIn != 0 {
		t.Error("cancelled drag must leave the clip in place")
	}
	if model.history.CanUndo() {
		t.Error("cancelled drag must not enter history")
	}
}

func TestLockedTrackRefusesDrag(t *testing.T) {
	m := testModel()
	m.zoom = 5
	m.seq.Tracks[0].Locked = true

	updated, _ := m.Update(press(22, 2))
	model := updated.(Model)

	if model.dragSession.Active() {
		t.Error("locked track must not start a drag")
	}
	if model.warning != "Track is locked" {
		t.Errorf("warning = %q", model.warning)
	}
}
