package playback

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewFileNodeDefaults(t *testing.T) {
	n := NewFileNode()
	if n.Kind != NodeFile {
		t.Fatalf("Kind = %v, want NodeFile", n.Kind)
	}
	if n.UUID().String() == "" {
		t.Fatalf("expected a non-empty uuid")
	}
	fps, _ := n.Attrs().GetF32("fps")
	if fps != 24 {
		t.Errorf("fps default = %v, want 24", fps)
	}
}

func TestFileNodeOutFrame(t *testing.T) {
	n := NewFileNode()
	n.Attrs().Set("in", I32Value(10))
	n.Attrs().Set("file_start", I32Value(1))
	n.Attrs().Set("file_end", I32Value(100))
	if got, want := n.OutFrame(), int64(109); got != want {
		t.Errorf("OutFrame() = %d, want %d", got, want)
	}
}

func TestCompNodeFrameAttrNotDAG(t *testing.T) {
	n := NewCompNode()
	n.Attrs().ClearDirty()
	n.SetPlayhead(42)
	if n.Attrs().Dirty() {
		t.Errorf("setting playhead must not mark Attrs dirty (frame is non-DAG)")
	}
	if got := n.Playhead(); got != 42 {
		t.Errorf("Playhead() = %d, want 42", got)
	}
}

func TestCompNodeWidthIsDAG(t *testing.T) {
	n := NewCompNode()
	n.Attrs().ClearDirty()
	n.Attrs().Set("width", I32Value(640))
	if !n.Attrs().Dirty() {
		t.Errorf("setting width must mark Attrs dirty (width is DAG)")
	}
}

func TestAddRemoveLayer(t *testing.T) {
	comp := NewCompNode()
	src := NewFileNode()
	layer := NewLayer(src.UUID())

	comp.AddLayer(layer)
	if len(comp.Layers()) != 1 {
		t.Fatalf("expected 1 layer, got %d", len(comp.Layers()))
	}
	if !comp.Attrs().Dirty() {
		t.Errorf("AddLayer must mark the comp dirty")
	}

	comp.Attrs().ClearDirty()
	if !comp.RemoveLayer(layer.InstanceUUID) {
		t.Fatalf("RemoveLayer returned false for a present layer")
	}
	if len(comp.Layers()) != 0 {
		t.Errorf("expected 0 layers after removal, got %d", len(comp.Layers()))
	}
}

func TestReorderLayersValidatesPermutation(t *testing.T) {
	comp := NewCompNode()
	l1 := NewLayer(NewFileNode().UUID())
	l2 := NewLayer(NewFileNode().UUID())
	comp.AddLayer(l1)
	comp.AddLayer(l2)

	if err := comp.ReorderLayers([]uuid.UUID{l1.InstanceUUID}); err == nil {
		t.Errorf("expected an error when reordering with a missing layer")
	}

	if err := comp.ReorderLayers([]uuid.UUID{l2.InstanceUUID, l1.InstanceUUID}); err != nil {
		t.Fatalf("unexpected error reordering a valid permutation: %v", err)
	}
	if comp.Layers()[0] != l2 || comp.Layers()[1] != l1 {
		t.Errorf("layers not reordered as requested")
	}
}

func TestLayerVisibleRangeAtSpeedOne(t *testing.T) {
	l := NewLayer(NewFileNode().UUID())
	l.Attrs().Set("in", I32Value(5))
	l.Attrs().Set("src_len", I32Value(10))
	l.Attrs().Set("trim_in", I32Value(2))
	l.Attrs().Set("trim_out", I32Value(3))

	if got, want := l.VisibleStart(), int64(7); got != want {
		t.Errorf("VisibleStart() = %d, want %d", got, want)
	}
	if got, want := l.VisibleEnd(), int64(9); got != want {
		t.Errorf("VisibleEnd() = %d, want %d", got, want)
	}
	if !l.Covers(9) {
		t.Errorf("expected frame 9 to be covered")
	}
	if l.Covers(12) {
		t.Errorf("expected frame 12 to be outside the visible range")
	}
}

func TestLayerLocalFrameTranslation(t *testing.T) {
	l := NewLayer(NewFileNode().UUID())
	l.Attrs().Set("in", I32Value(10))
	l.Attrs().Set("trim_in", I32Value(3))
	l.Attrs().Set("speed", F32Value(2))

	if got, want := l.LocalFrame(15), int64(13); got != want {
		t.Errorf("LocalFrame(15) = %d, want %d", got, want)
	}
}

func TestResolvedFramePathWidensPadding(t *testing.T) {
	n := NewFileNode()
	n.Attrs().Set("file_dir", StringValue("/media/shot"))
	n.Attrs().Set("file_mask", StringValue("render.%d.exr"))
	n.Attrs().Set("padding", I32Value(4))

	got := n.ResolvedFramePath(7)
	want := "/media/shot/render.0007.exr"
	if got != want {
		t.Errorf("ResolvedFramePath(7) = %q, want %q", got, want)
	}
}
