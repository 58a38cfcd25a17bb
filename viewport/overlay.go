package viewport

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// StatsOverlay draws a small translucent readout of the active comp's
// playhead and display fps, refreshed a few times a second rather than
// every frame. Adapted from the teacher's NewFPSWidget (fps.go): same
// "own image, semi-transparent fill, ebitenutil.DebugPrint" composition,
// repurposed from an engine-wide FPS/TPS counter to a playback-specific
// frame/speed readout.
type StatsOverlay struct {
	img        *ebiten.Image
	lastUpdate float64
}

// NewStatsOverlay creates a 160x32 overlay image.
func NewStatsOverlay() *StatsOverlay {
	return &StatsOverlay{img: ebiten.NewImage(160, 32)}
}

// Update refreshes the overlay's text at most twice a second.
func (o *StatsOverlay) Update(dt, displayFPS float64, frame int64, playing bool) {
	o.lastUpdate += dt
	if o.lastUpdate < 0.5 {
		return
	}
	o.lastUpdate = 0

	o.img.Clear()
	o.img.Fill(color.RGBA{0, 0, 0, 128})

	state := "paused"
	if playing {
		state = "playing"
	}
	ebitenutil.DebugPrint(o.img, fmt.Sprintf("frame: %d\nfps: %.1f (%s)", frame, displayFPS, state))
}

// Draw blits the overlay at (x, y) on dst.
func (o *StatsOverlay) Draw(dst *ebiten.Image, x, y float64) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(x, y)
	dst.DrawImage(o.img, op)
}
