package viewport

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"strings"

	playback "github.com/rivergraph/playback"
)

// ExportFrame writes frame's pixels to path as a PNG, adapted from the
// teacher's Scene.Screenshot/flushScreenshots (screenshot.go): same
// "encode whatever's currently on screen to a PNG file" idiom, but driven
// directly off a Frame's already-decoded RGBA8 bytes instead of reading
// back an ebiten.Image's premultiplied framebuffer, since SPEC_FULL.md's
// export feature operates on a composited Frame, not a live screen.
func ExportFrame(frame *playback.Frame, path string) error {
	if frame == nil {
		return fmt.Errorf("playback/viewport: ExportFrame called with a nil frame")
	}
	bytes := frame.Bytes()
	if bytes == nil {
		return fmt.Errorf("playback/viewport: frame has no pixel data yet (status %v)", frame.Status())
	}

	img := &image.RGBA{
		Pix:    bytes,
		Stride: frame.Width * 4,
		Rect:   image.Rect(0, 0, frame.Width, frame.Height),
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("playback/viewport: create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("playback/viewport: encode %s: %w", path, err)
	}
	return f.Close()
}

// SanitizeExportLabel mirrors the teacher's sanitizeLabel: replaces
// characters unsafe in file names with underscores, for building an export
// path from a user-supplied comp name or label.
func SanitizeExportLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
