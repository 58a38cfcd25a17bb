package playback

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// fpsRampDuration is how long the on-screen speed readout takes to ease
// between JKL shuttle rungs. Purely cosmetic (SPEC_FULL.md §4.9): the
// authoritative FPSPlay used for frame-advance timing changes
// instantaneously.
const fpsRampDuration = 0.18

// fpsRamp smooths Player.FPSPlay for display, the same way the teacher's
// Camera smooths ScrollTo with a gween.Tween (camera.go) rather than
// snapping the viewport.
type fpsRamp struct {
	tween   *gween.Tween
	current float32
}

func newFPSRamp(initial float64) *fpsRamp {
	return &fpsRamp{current: float32(initial)}
}

// update advances the ramp toward target by dt seconds (or starts a new
// tween if target has moved since the last call) and returns the eased
// display value.
func (r *fpsRamp) update(dt, target float64) float64 {
	t := float32(target)
	if r.tween == nil || r.tween.Finished() {
		if r.current != t {
			r.tween = gween.New(r.current, t, fpsRampDuration, ease.OutCubic)
		}
	}
	if r.tween != nil {
		val, done := r.tween.Update(float32(dt))
		r.current = val
		if done {
			r.tween = nil
			r.current = t
		}
	}
	return float64(r.current)
}

// Value returns the current eased display value without advancing time.
func (r *fpsRamp) Value() float64 { return float64(r.current) }
