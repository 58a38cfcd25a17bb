package loader

import (
	"testing"

	playback "github.com/rivergraph/playback"
)

func TestVideoLoaderCallsDecodeEveryTime(t *testing.T) {
	node := playback.NewFileNode()
	node.Attrs().Set("file_dir", playback.StringValue("/media"))
	node.Attrs().Set("file_mask", playback.StringValue("clip.ts"))

	calls := 0
	l := &VideoLoader{Decode: func(path string, localFrame int64) (*playback.Frame, error) {
		calls++
		f := playback.NewPlaceholder(2, 2, playback.FormatRGBA8)
		return f, nil
	}}

	for i := 0; i < 3; i++ {
		if _, err := l.LoadFrame(node, int64(i)); err != nil {
			t.Fatalf("LoadFrame: %v", err)
		}
	}
	if calls != 3 {
		t.Errorf("Decode call count = %d, want 3 (no caching in the naive loader)", calls)
	}
}

func TestVideoLoaderErrorsWithoutDecodeFunc(t *testing.T) {
	node := playback.NewFileNode()
	l := &VideoLoader{}
	if _, err := l.LoadFrame(node, 0); err == nil {
		t.Errorf("expected an error when no Decode func is configured")
	}
}

func TestKeyframeIndexNearestAtOrBefore(t *testing.T) {
	idx := &keyframeIndex{
		frameToOffset: map[int64]int64{0: 100, 10: 500, 20: 900},
		offsets:       []int64{0, 10, 20},
	}
	frame, offset := idx.nearestKeyframeAtOrBefore(15)
	if frame != 10 || offset != 500 {
		t.Errorf("nearestKeyframeAtOrBefore(15) = (%d, %d), want (10, 500)", frame, offset)
	}
	frame, offset = idx.nearestKeyframeAtOrBefore(0)
	if frame != 0 || offset != 100 {
		t.Errorf("nearestKeyframeAtOrBefore(0) = (%d, %d), want (0, 100)", frame, offset)
	}
	frame, _ = idx.nearestKeyframeAtOrBefore(1000)
	if frame != 20 {
		t.Errorf("nearestKeyframeAtOrBefore(1000) = %d, want the last keyframe 20", frame)
	}
}

func TestIndexedVideoLoaderErrorsWhenIndexingFails(t *testing.T) {
	l := NewIndexedVideoLoader(nil)
	node := playback.NewFileNode()
	node.Attrs().Set("file_dir", playback.StringValue("/media"))
	node.Attrs().Set("file_mask", playback.StringValue("clip.ts"))
	if _, err := l.LoadFrame(node, 0); err == nil {
		t.Errorf("expected an error: the file doesn't exist, indexing should fail first")
	}
}
