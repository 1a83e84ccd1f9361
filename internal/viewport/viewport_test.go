package viewport

import (
	"math"
	"testing"
)

func TestTimeToPixel(t *testing.T) {
	if px := TimeToPixel(5, 100, 0); px != 500 {
		t.Errorf("TimeToPixel(5, 100, 0) = %v, want 500", px)
	}
	if px := TimeToPixel(5, 100, 200); px != 300 {
		t.Errorf("TimeToPixel(5, 100, 200) = %v, want 300", px)
	}
	if px := TimeToPixel(0, 100, 50); px != -50 {
		t.Errorf("TimeToPixel(0, 100, 50) = %v, want -50", px)
	}
}

func TestPixelToTimeInvertsTimeToPixel(t *testing.T) {
	const zoom, scrollX = 80.0, 120.0
	for _, sec := range []float64{0, 1.25, 30, 59.5} {
		px := TimeToPixel(sec, zoom, scrollX)
		if got := PixelToTime(px, zoom, scrollX, 60); got != sec {
			t.Errorf("round trip %v -> %v", sec, got)
		}
	}
}

func TestPixelToTimeClamps(t *testing.T) {
	if got := PixelToTime(-500, 100, 0, 60); got != 0 {
		t.Errorf("negative pixel = %v, want 0", got)
	}
	if got := PixelToTime(1e9, 100, 0, 60); got != 60 {
		t.Errorf("huge pixel = %v, want 60", got)
	}
}

func TestPixelToTimeZeroZoom(t *testing.T) {
	if got := PixelToTime(100, 0, 0, 60); got != 0 {
		t.Errorf("zero zoom = %v, want 0", got)
	}
	if got := PixelToTime(100, -5, 0, 60); got != 0 {
		t.Errorf("negative zoom = %v, want 0", got)
	}
	if got := PixelToTime(100, math.NaN(), 0, 60); got != 0 {
		t.Errorf("NaN zoom = %v, want 0", got)
	}
	if got := PixelToTime(math.Inf(1), 100, 0, 60); got != 0 {
		t.Errorf("Inf pixel = %v, want 0", got)
	}
}

func TestTrackIndexFromY(t *testing.T) {
	if idx := TrackIndexFromY(80, 0, 64, 3); idx != 1 {
		t.Errorf("y=80 scroll=0 = %d, want 1", idx)
	}
	if idx := TrackIndexFromY(80, 64, 64, 3); idx != 2 {
		t.Errorf("y=80 scroll=64 = %d, want 2", idx)
	}
	if idx := TrackIndexFromY(-200, 0, 64, 3); idx != 0 {
		t.Errorf("negative y = %d, want 0", idx)
	}
	if idx := TrackIndexFromY(10000, 0, 64, 3); idx != 2 {
		t.Errorf("below last track = %d, want 2", idx)
	}
}

func TestTrackIndexFromYGuards(t *testing.T) {
	if idx := TrackIndexFromY(math.NaN(), 0, 64, 3); idx != 0 {
		t.Errorf("NaN y = %d, want 0", idx)
	}
	if idx := TrackIndexFromY(80, math.Inf(1), 64, 3); idx != 0 {
		t.Errorf("Inf scroll = %d, want 0", idx)
	}
	// Zero track height substitutes the default (64) instead of dividing
	// by zero.
	if idx := TrackIndexFromY(80, 0, 0, 3); idx != 1 {
		t.Errorf("zero height = %d, want 1", idx)
	}
	if idx := TrackIndexFromY(80, 0, -10, 3); idx != 1 {
		t.Errorf("negative height = %d, want 1", idx)
	}
	if idx := TrackIndexFromY(80, 0, 64, 0); idx != 0 {
		t.Errorf("zero tracks = %d, want 0", idx)
	}
}
