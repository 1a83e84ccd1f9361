package follow

import (
	"math"
	"testing"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestTargetLeftEdge(t *testing.T) {
	cfg := DefaultConfig()
	// Viewport 1000px, margin 200px. Playhead at 6.5s, zoom 100 -> absolute
	// 650px, viewport-relative 150px: inside the left margin.
	target, needed := cfg.Target(6.5, 100, 500, 1000, 0)
	if !needed {
		t.Fatal("needed = false, want follow toward left margin")
	}
	if target != 450 {
		t.Errorf("target = %v, want 450; playhead should land on the margin boundary", target)
	}
}

func TestTargetRightEdge(t *testing.T) {
	cfg := DefaultConfig()
	// Playhead at 14s -> absolute 1400px, viewport-relative 900px: inside the
	// right margin (boundary at 800px).
	target, needed := cfg.Target(14, 100, 500, 1000, 0)
	if !needed {
		t.Fatal("needed = false, want follow toward right margin")
	}
	if target != 600 {
		t.Errorf("target = %v, want 600, the margin boundary rather than the center", target)
	}
}

func TestTargetSafeZone(t *testing.T) {
	cfg := DefaultConfig()
	target, needed := cfg.Target(10, 100, 500, 1000, 0)
	if needed {
		t.Errorf("needed = true for playhead at viewport center, target %v", target)
	}
	if target != 500 {
		t.Errorf("target = %v, want current scroll 500", target)
	}
}

func TestTargetExactBoundaryIsSafe(t *testing.T) {
	cfg := DefaultConfig()
	// Viewport-relative 200px sits exactly on the margin boundary.
	if _, needed := cfg.Target(7, 100, 500, 1000, 0); needed {
		t.Error("needed = true for playhead exactly on the margin boundary")
	}
}

func TestTargetClampsToContent(t *testing.T) {
	cfg := DefaultConfig()
	// Content 1200px, viewport 1000px: scroll can reach at most 200px.
	target, needed := cfg.Target(11, 100, 150, 1000, 1200)
	if !needed {
		t.Fatal("needed = false, want follow")
	}
	if target != 200 {
		t.Errorf("target = %v, want 200 (content clamp)", target)
	}

	// Near the start the target can demand negative scroll; it clamps to 0.
	target, needed = cfg.Target(0.5, 100, 100, 1000, 1200)
	if !needed {
		t.Fatal("needed = false, want follow toward timeline start")
	}
	if target != 0 {
		t.Errorf("target = %v, want 0", target)
	}
}

func TestTargetUnknownContentSkipsUpperClamp(t *testing.T) {
	cfg := DefaultConfig()
	target, needed := cfg.Target(1000, 100, 98000, 1000, 0)
	if !needed {
		t.Fatal("needed = false, want follow")
	}
	if target != 100000-800 {
		t.Errorf("target = %v, want %v; unknown content width must not clamp", target, 100000-800)
	}
}

func TestTargetContentNarrowerThanViewport(t *testing.T) {
	cfg := DefaultConfig()
	target, needed := cfg.Target(0.1, 100, 50, 1000, 600)
	if !needed {
		t.Fatal("needed = false, want follow")
	}
	if target != 0 {
		t.Errorf("target = %v, want 0 when everything fits in the viewport", target)
	}
}

func TestTargetGuardsDegenerateInputs(t *testing.T) {
	cfg := DefaultConfig()
	if _, needed := cfg.Target(5, 0, 100, 1000, 0); needed {
		t.Error("needed = true with zero zoom")
	}
	if _, needed := cfg.Target(5, 100, 100, 0, 0); needed {
		t.Error("needed = true with zero viewport width")
	}
	if target, _ := cfg.Target(math.NaN(), 100, 100, 1000, 0); math.IsNaN(target) {
		t.Error("target is NaN for NaN playhead")
	}
}

func TestStepEasesTowardTarget(t *testing.T) {
	cfg := DefaultConfig()
	// Right-edge follow from scroll 500 toward 600.
	next := cfg.Step(14, 100, 500, 1000, 0, 0.016)
	if next <= 500 || next >= 600 {
		t.Errorf("next = %v, want strictly between 500 and 600", next)
	}

	// Repeated steps converge on the target without overshooting.
	scroll := 500.0
	for i := 0; i < 400; i++ {
		scroll = cfg.Step(14, 100, scroll, 1000, 0, 0.016)
		if scroll > 600 {
			t.Fatalf("step %d overshot to %v", i, scroll)
		}
	}
	if scroll != 600 {
		t.Errorf("scroll = %v, want exactly 600 after settling", scroll)
	}
}

func TestStepFrameTimeAware(t *testing.T) {
	cfg := DefaultConfig()

	one := cfg.Step(14, 100, 500, 1000, 0, 0.032)

	half := cfg.Step(14, 100, 500, 1000, 0, 0.016)
	two := cfg.Step(14, 100, half, 1000, 0, 0.016)

	if !near(one, two) {
		t.Errorf("one 32ms step = %v, two 16ms steps = %v; easing must match across frame rates", one, two)
	}
}

func TestStepSettlesExactly(t *testing.T) {
	cfg := DefaultConfig()
	// 0.4px from the target: inside SettlePx, so the step lands exactly.
	if next := cfg.Step(14, 100, 599.6, 1000, 0, 0.016); next != 600 {
		t.Errorf("next = %v, want exactly 600", next)
	}
}

func TestStepNoFollowNeeded(t *testing.T) {
	cfg := DefaultConfig()
	if next := cfg.Step(10, 100, 500, 1000, 0, 0.016); next != 500 {
		t.Errorf("next = %v, want unchanged 500", next)
	}
}

func TestStepZeroDt(t *testing.T) {
	cfg := DefaultConfig()
	if next := cfg.Step(14, 100, 500, 1000, 0, 0); next != 500 {
		t.Errorf("next = %v, want unchanged 500 for zero dt", next)
	}
	if next := cfg.Step(14, 100, 500, 1000, 0, math.NaN()); next != 500 {
		t.Errorf("next = %v, want unchanged 500 for NaN dt", next)
	}
}

func TestZeroConfigUsesDefaults(t *testing.T) {
	var cfg Config
	target, needed := cfg.Target(14, 100, 500, 1000, 0)
	if !needed || target != 600 {
		t.Errorf("zero-value config: target = %v needed = %v, want 600 true", target, needed)
	}
}
