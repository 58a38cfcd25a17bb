package viewport

import (
	"math"
	"testing"

	"github.com/tanema/gween/ease"
)

func approxEqual(a, b, eps float64) bool { return math.Abs(a-b) < eps }

func TestNewPreviewCameraDefaults(t *testing.T) {
	c := NewPreviewCamera()
	if c.Zoom != 1 {
		t.Errorf("Zoom = %v, want 1", c.Zoom)
	}
	if c.X != 0 || c.Y != 0 {
		t.Errorf("X,Y = %v,%v, want 0,0", c.X, c.Y)
	}
}

func TestPreviewCameraScrollToEasesOverTime(t *testing.T) {
	c := NewPreviewCamera()
	c.ScrollTo(100, 50, 1.0, ease.Linear)
	c.Update(0.5)
	if !approxEqual(c.X, 50, 1) || !approxEqual(c.Y, 25, 1) {
		t.Errorf("X,Y after half duration = %v,%v, want ~50,~25", c.X, c.Y)
	}
	c.Update(0.6)
	if c.X != 100 || c.Y != 50 {
		t.Errorf("X,Y after full duration = %v,%v, want settled at 100,50", c.X, c.Y)
	}
}

func TestPreviewCameraZoomByClampsRange(t *testing.T) {
	c := NewPreviewCamera()
	c.ZoomBy(1000)
	if c.Zoom != 40 {
		t.Errorf("Zoom after huge zoom-in = %v, want clamped to 40", c.Zoom)
	}
	c.ZoomBy(0.0001)
	if c.Zoom != 0.05 {
		t.Errorf("Zoom after huge zoom-out = %v, want clamped to 0.05", c.Zoom)
	}
}

func TestPreviewCameraScreenToWorld(t *testing.T) {
	c := NewPreviewCamera()
	c.X, c.Y = 10, 20
	c.Zoom = 2
	x, y := c.ScreenToWorld(100, 100, 0, 0)
	wantX := 100.0/2 + 10
	wantY := 100.0/2 + 20
	if !approxEqual(x, wantX, 1e-9) || !approxEqual(y, wantY, 1e-9) {
		t.Errorf("ScreenToWorld = %v,%v, want %v,%v", x, y, wantX, wantY)
	}
}
