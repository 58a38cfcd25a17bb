package viewport

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	playback "github.com/rivergraph/playback"
)

func TestExportFrameWritesReadablePNG(t *testing.T) {
	f := playback.NewPlaceholder(4, 4, playback.FormatRGBA8)
	pixels := make([]byte, 4*4*4)
	for i := 0; i+3 < len(pixels); i += 4 {
		pixels[i], pixels[i+1], pixels[i+2], pixels[i+3] = 1, 2, 3, 255
	}
	f.Publish(pixels, playback.StatusLoaded)

	dir := t.TempDir()
	path := filepath.Join(dir, "out.png")
	if err := ExportFrame(f, path); err != nil {
		t.Fatalf("ExportFrame: %v", err)
	}

	rf, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening exported file: %v", err)
	}
	defer rf.Close()
	img, err := png.Decode(rf)
	if err != nil {
		t.Fatalf("decoding exported PNG: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 4, 4) {
		t.Errorf("bounds = %v, want 0,0,4,4", img.Bounds())
	}
}

func TestExportFrameRejectsNilFrame(t *testing.T) {
	if err := ExportFrame(nil, filepath.Join(t.TempDir(), "x.png")); err == nil {
		t.Errorf("expected an error for a nil frame")
	}
}

func TestSanitizeExportLabel(t *testing.T) {
	if got := SanitizeExportLabel("Shot 01/Take #2"); got != "Shot_01_Take__2" {
		t.Errorf("SanitizeExportLabel = %q, want Shot_01_Take__2", got)
	}
	if got := SanitizeExportLabel("   "); got != "unlabeled" {
		t.Errorf("SanitizeExportLabel(blank) = %q, want unlabeled", got)
	}
}
