package viewport

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// PreviewCamera is the viewport's pan/zoom state for scrubbing around a
// composed frame larger than the display surface, adapted from the
// teacher's Camera (camera.go): the same gween-eased ScrollTo idiom, pared
// down to what a single full-frame preview needs — no node-follow, no
// AABB culling, since a viewport shows one composited Frame, not a sprite
// scene graph.
type PreviewCamera struct {
	X, Y float64
	Zoom float64

	scrollX *gween.Tween
	scrollY *gween.Tween
}

// NewPreviewCamera returns a camera centered at the origin with no zoom.
func NewPreviewCamera() *PreviewCamera {
	return &PreviewCamera{Zoom: 1}
}

// ScrollTo eases the camera to (x, y) over duration seconds.
func (c *PreviewCamera) ScrollTo(x, y float64, duration float32, easeFn ease.TweenFunc) {
	c.scrollX = gween.New(float32(c.X), float32(x), duration, easeFn)
	c.scrollY = gween.New(float32(c.Y), float32(y), duration, easeFn)
}

// Update advances any in-flight scroll animation by dt seconds.
func (c *PreviewCamera) Update(dt float64) {
	if c.scrollX != nil {
		val, done := c.scrollX.Update(float32(dt))
		c.X = float64(val)
		if done {
			c.scrollX = nil
		}
	}
	if c.scrollY != nil {
		val, done := c.scrollY.Update(float32(dt))
		c.Y = float64(val)
		if done {
			c.scrollY = nil
		}
	}
}

// ZoomBy multiplies Zoom by factor, clamped to a sane [0.05, 40] range so a
// runaway scroll-wheel delta can't zero out or invert the view.
func (c *PreviewCamera) ZoomBy(factor float64) {
	c.Zoom = math.Max(0.05, math.Min(40, c.Zoom*factor))
}

// ScreenToWorld maps a point in the viewport's screen space to the
// composited frame's pixel space, given the viewport's on-screen origin.
func (c *PreviewCamera) ScreenToWorld(screenX, screenY, originX, originY float64) (x, y float64) {
	return (screenX-originX)/c.Zoom + c.X, (screenY-originY)/c.Zoom + c.Y
}
