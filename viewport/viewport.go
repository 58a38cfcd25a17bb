// Package viewport is the optional external display adapter: it uploads a
// composed Frame's pixels to an ebiten.Image and draws it each tick. GPU
// texture upload and viewport rendering are explicitly out of scope for the
// playback core (spec.md §1); this package is the teacher's own ebiten
// dependency given a home outside the core compute path, exactly as
// SPEC_FULL.md's package layout (§2) describes.
package viewport

import (
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	playback "github.com/rivergraph/playback"
)

// crossfadeDuration is how long a dehydrated-then-refreshed frame fades in,
// so a cache-driven Expired->Loaded flip doesn't pop on screen
// (SPEC_FULL.md §4.7 "crossfade-on-reveal").
const crossfadeDuration = 0.25

// View is an ebiten display surface for one comp's output. It is driven by
// repeatedly calling Show with the Composer's latest result; View itself
// never calls into Project/Composer, keeping the viewport a pure
// consumer of Frame values (spec.md §1's "external collaborators
// referenced only by their interface contracts").
type View struct {
	current *ebiten.Image
	fade    *gween.Tween
	alpha   float32
}

// NewView creates an empty View.
func NewView() *View { return &View{alpha: 1} }

// Show uploads frame's pixels to the view's backing ebiten.Image, starting
// a crossfade if wasExpired is true (the caller — normally a
// playback.EventBus subscriber watching AttrsChanged/RepaintRequested —
// knows whether the previous frame at this key was Expired).
func (v *View) Show(frame *playback.Frame, wasExpired bool) error {
	if frame == nil {
		return fmt.Errorf("playback/viewport: Show called with a nil frame")
	}
	bytes := frame.Bytes()
	if bytes == nil {
		return fmt.Errorf("playback/viewport: frame has no pixel data yet (status %v)", frame.Status())
	}

	img := ebiten.NewImageFromImage(&image.RGBA{
		Pix:    bytes,
		Stride: frame.Width * 4,
		Rect:   image.Rect(0, 0, frame.Width, frame.Height),
	})
	v.current = img

	if wasExpired {
		v.alpha = 0
		v.fade = gween.New(0, 1, crossfadeDuration, ease.OutQuad)
	} else {
		v.alpha = 1
		v.fade = nil
	}
	return nil
}

// Update advances the crossfade tween by dt seconds.
func (v *View) Update(dt float64) {
	if v.fade == nil {
		return
	}
	val, done := v.fade.Update(float32(dt))
	v.alpha = val
	if done {
		v.fade = nil
		v.alpha = 1
	}
}

// Draw composites the current frame onto dst at the given opacity-adjusted
// alpha, with its top-left corner at (x, y).
func (v *View) Draw(dst *ebiten.Image, x, y float64) {
	if v.current == nil {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleAlpha(v.alpha)
	dst.DrawImage(v.current, op)
}
