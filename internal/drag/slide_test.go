package drag

import (
	"testing"

	"github.com/cutline/cutline/internal/timeline"
)

// slideTrack builds three butted clips: a [0,5), b [5,10), c [10,15).
func slideTrack() timeline.Track {
	return testTrack("v1", timeline.KindVideo,
		testClip("a", 0, 5),
		testClip("b", 5, 5),
		testClip("c", 10, 5),
	)
}

func TestSlideRejectsLockedTrack(t *testing.T) {
	tr := slideTrack()
	tr.Locked = true
	if s := StartSlide("seq", *tr.Clip("b"), &tr); s != nil {
		t.Error("StartSlide on locked track should return nil")
	}
	if s := StartSlide("seq", testClip("b", 5, 5), nil); s != nil {
		t.Error("StartSlide with nil track should return nil")
	}
}

func TestSlideMovesClipAndNeighborEdges(t *testing.T) {
	tr := slideTrack()
	s := StartSlide("seq", *tr.Clip("b"), &tr)

	u := s.UpdateSlide(2)
	if u.Offset != 2 {
		t.Errorf("Offset = %v, want 2", u.Offset)
	}
	if u.TimelineIn != 7 {
		t.Errorf("TimelineIn = %v, want 7", u.TimelineIn)
	}
	if u.Constrained {
		t.Errorf("Constrained = true with reason %q, want unconstrained", u.Reason)
	}
	if u.Prev == nil || u.Prev.SourceOut != 7 {
		t.Errorf("Prev = %+v, want SourceOut 7", u.Prev)
	}
	if u.Prev.TimelineIn != 0 || u.Prev.SourceIn != 0 {
		t.Errorf("Prev = %+v; head of previous clip must not move", u.Prev)
	}
	if u.Next == nil || u.Next.SourceIn != 2 || u.Next.TimelineIn != 12 {
		t.Errorf("Next = %+v, want SourceIn 2 TimelineIn 12", u.Next)
	}
	if u.Next.SourceOut != 5 {
		t.Errorf("Next.SourceOut = %v; tail of next clip must not move", u.Next.SourceOut)
	}
}

func TestSlideAccumulatesOffsetAcrossUpdates(t *testing.T) {
	tr := slideTrack()
	s := StartSlide("seq", *tr.Clip("b"), &tr)

	s.UpdateSlide(1)
	u := s.UpdateSlide(1.5)
	if u.Offset != 2.5 {
		t.Errorf("Offset = %v, want 2.5", u.Offset)
	}
}

func TestSlideClampDoesNotBankOvershoot(t *testing.T) {
	tr := slideTrack()
	s := StartSlide("seq", *tr.Clip("b"), &tr)

	s.UpdateSlide(-20)
	u := s.UpdateSlide(1)
	if want := -(5 - timeline.MinClipDuration) + 1; u.Offset != want {
		t.Errorf("Offset = %v, want %v; reversing off the bound must take effect at once", u.Offset, want)
	}
	if u.Constrained {
		t.Error("Constrained = true after moving back inside the bounds")
	}
}

func TestSlideClampsAtNeighborMinDuration(t *testing.T) {
	tr := slideTrack()
	s := StartSlide("seq", *tr.Clip("b"), &tr)

	u := s.UpdateSlide(-20)
	if want := -(5 - timeline.MinClipDuration); u.Offset != want {
		t.Errorf("Offset = %v, want %v", u.Offset, want)
	}
	if !u.Constrained || u.Reason != ReasonMinDuration {
		t.Errorf("Constrained = %v reason %q, want min-duration", u.Constrained, u.Reason)
	}

	u = s.UpdateSlide(20)
	if want := 5 - timeline.MinClipDuration; u.Offset != want {
		t.Errorf("Offset = %v, want %v", u.Offset, want)
	}
	if !u.Constrained || u.Reason != ReasonMinDuration {
		t.Errorf("Constrained = %v reason %q, want min-duration", u.Constrained, u.Reason)
	}
}

func TestSlideWithoutPreviousPinsLeft(t *testing.T) {
	tr := testTrack("v1", timeline.KindVideo,
		testClip("b", 5, 5),
		testClip("c", 10, 5),
	)
	s := StartSlide("seq", *tr.Clip("b"), &tr)

	u := s.UpdateSlide(-3)
	if u.Offset != 0 {
		t.Errorf("Offset = %v, want 0", u.Offset)
	}
	if !u.Constrained || u.Reason != ReasonNoPrevious {
		t.Errorf("Constrained = %v reason %q, want no-previous", u.Constrained, u.Reason)
	}
	if u.Prev != nil {
		t.Errorf("Prev = %+v, want nil", u.Prev)
	}

	// Sliding right is still allowed against the next neighbor.
	if u := s.UpdateSlide(2); u.Offset != 2 || u.Constrained {
		t.Errorf("right slide = %+v, want offset 2 unconstrained", u)
	}
}

func TestSlideWithoutNextPinsRight(t *testing.T) {
	tr := testTrack("v1", timeline.KindVideo,
		testClip("a", 0, 5),
		testClip("b", 5, 5),
	)
	s := StartSlide("seq", *tr.Clip("b"), &tr)

	u := s.UpdateSlide(3)
	if u.Offset != 0 {
		t.Errorf("Offset = %v, want 0", u.Offset)
	}
	if !u.Constrained || u.Reason != ReasonNoNext {
		t.Errorf("Constrained = %v reason %q, want no-next", u.Constrained, u.Reason)
	}
	if u.Next != nil {
		t.Errorf("Next = %+v, want nil", u.Next)
	}
}

func TestSlideNeighborEditsScaleWithSpeed(t *testing.T) {
	prev := testClip("a", 0, 5)
	prev.Speed = 2
	prev.SourceOut = 10 // 10s of source over 5s of timeline
	tr := testTrack("v1", timeline.KindVideo, prev, testClip("b", 5, 5), testClip("c", 10, 5))

	s := StartSlide("seq", *tr.Clip("b"), &tr)
	u := s.UpdateSlide(1)

	if u.Prev.SourceOut != 12 {
		t.Errorf("Prev.SourceOut = %v, want 12; one timeline second is two source seconds", u.Prev.SourceOut)
	}
	if u.Next.SourceIn != 1 {
		t.Errorf("Next.SourceIn = %v, want 1", u.Next.SourceIn)
	}
}

func TestSlideEndEmitsOrderedChanges(t *testing.T) {
	tr := slideTrack()
	s := StartSlide("seq", *tr.Clip("b"), &tr)
	s.UpdateSlide(2)

	changes := s.EndSlide()
	if len(changes) != 3 {
		t.Fatalf("len(changes) = %d, want 3", len(changes))
	}

	// Sliding right: next yields first, then the move, then prev extends.
	next, ok := changes[0].(TrimChange)
	if !ok || next.ClipID != "c" {
		t.Fatalf("changes[0] = %+v, want trim of c", changes[0])
	}
	if next.NewSourceIn == nil || *next.NewSourceIn != 2 {
		t.Errorf("next NewSourceIn = %v, want 2", next.NewSourceIn)
	}
	if next.NewTimelineIn == nil || *next.NewTimelineIn != 12 {
		t.Errorf("next NewTimelineIn = %v, want 12", next.NewTimelineIn)
	}
	if next.NewSourceOut != nil {
		t.Errorf("next NewSourceOut = %v, want nil", *next.NewSourceOut)
	}

	mv, ok := changes[1].(MoveChange)
	if !ok || mv.ClipID != "b" || mv.NewTimelineIn != 7 {
		t.Fatalf("changes[1] = %+v, want move of b to 7", changes[1])
	}
	if mv.NewTrackID != "" {
		t.Errorf("NewTrackID = %q, want empty; slides never change track", mv.NewTrackID)
	}

	prev, ok := changes[2].(TrimChange)
	if !ok || prev.ClipID != "a" {
		t.Fatalf("changes[2] = %+v, want trim of a", changes[2])
	}
	if prev.NewSourceOut == nil || *prev.NewSourceOut != 7 {
		t.Errorf("prev NewSourceOut = %v, want 7", prev.NewSourceOut)
	}
	if prev.NewSourceIn != nil || prev.NewTimelineIn != nil {
		t.Errorf("prev = %+v; tail trim must only set NewSourceOut", prev)
	}
}

func TestSlideEndNegativeOffsetOrdersPrevFirst(t *testing.T) {
	next := testClip("c", 10, 5)
	next.SourceIn = 3
	next.SourceOut = 8
	tr := testTrack("v1", timeline.KindVideo, testClip("a", 0, 5), testClip("b", 5, 5), next)

	s := StartSlide("seq", *tr.Clip("b"), &tr)
	s.UpdateSlide(-2)

	changes := s.EndSlide()
	if len(changes) != 3 {
		t.Fatalf("len(changes) = %d, want 3", len(changes))
	}
	if tc := changes[0].(TrimChange); tc.ClipID != "a" || *tc.NewSourceOut != 3 {
		t.Errorf("changes[0] = %+v, want a trimmed to SourceOut 3", tc)
	}
	if mv := changes[1].(MoveChange); mv.ClipID != "b" || mv.NewTimelineIn != 3 {
		t.Errorf("changes[1] = %+v, want b at 3", mv)
	}
	if tc := changes[2].(TrimChange); tc.ClipID != "c" || *tc.NewSourceIn != 1 || *tc.NewTimelineIn != 8 {
		t.Errorf("changes[2] = %+v, want c at SourceIn 1 TimelineIn 8", tc)
	}
}

func TestSlideZeroOffsetEmitsNothing(t *testing.T) {
	tr := slideTrack()
	s := StartSlide("seq", *tr.Clip("b"), &tr)

	if changes := s.EndSlide(); changes != nil {
		t.Errorf("EndSlide with zero offset = %v, want nil", changes)
	}
	if s.Active() {
		t.Error("session still active after EndSlide")
	}
}

func TestSlideCancel(t *testing.T) {
	tr := slideTrack()
	s := StartSlide("seq", *tr.Clip("b"), &tr)
	s.UpdateSlide(2)
	s.CancelSlide()

	if s.Active() {
		t.Error("session still active after cancel")
	}
	if changes := s.EndSlide(); changes != nil {
		t.Errorf("EndSlide after cancel = %v, want nil", changes)
	}
	if u := s.UpdateSlide(1); u.Offset != 0 || u.Prev != nil {
		t.Errorf("UpdateSlide after cancel = %+v, want zero update", u)
	}
}
