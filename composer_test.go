package playback

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/google/uuid"
)

// stubResolver implements NodeResolver over a plain map for composer tests
// that don't need a full Project.
type stubResolver map[uuid.UUID]*Node

func (s stubResolver) ResolveNode(id uuid.UUID) (*Node, bool) {
	n, ok := s[id]
	return n, ok
}

// stubLoader returns a flat-colored frame for any FileNode, so composer
// tests can exercise blending without real image decode.
type stubLoader struct {
	r, g, b, a byte
}

func (s stubLoader) LoadFrame(node *Node, localFrame int64) (*Frame, error) {
	w, h := node.Dimensions()
	bytes := make([]byte, w*h*4)
	for i := 0; i+3 < len(bytes); i += 4 {
		bytes[i], bytes[i+1], bytes[i+2], bytes[i+3] = s.r, s.g, s.b, s.a
	}
	f := newHeader(w, h, FormatRGBA8)
	f.Publish(bytes, StatusLoaded)
	return f, nil
}

func newTestComposer(t *testing.T, resolver stubResolver, loader FrameLoader) *Composer {
	t.Helper()
	cm := NewCacheManagerWithLimit(64 << 20)
	cache := NewFrameCache(cm, StrategyAll, 1000)
	bus := NewEventBus()
	return NewComposer(cache, cm, resolver, loader, bus)
}

func TestComposeSingleOpaqueLayerPassesThrough(t *testing.T) {
	comp := NewCompNode()
	comp.Attrs().Set("width", I32Value(4))
	comp.Attrs().Set("height", I32Value(4))
	comp.Attrs().Set("out", I32Value(10))

	file := NewFileNode()
	file.Attrs().Set("width", I32Value(4))
	file.Attrs().Set("height", I32Value(4))

	layer := NewLayer(file.UUID())
	layer.Attrs().Set("src_len", I32Value(10))
	comp.AddLayer(layer)

	resolver := stubResolver{comp.UUID(): comp, file.UUID(): file}
	composer := newTestComposer(t, resolver, stubLoader{r: 200, g: 100, b: 50, a: 255})

	frame, err := composer.Compose(comp.UUID(), 0, 0)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if frame.Status() != StatusLoaded {
		t.Fatalf("Status() = %v, want Loaded", frame.Status())
	}
	bytes := frame.Bytes()
	if bytes[0] != 200 || bytes[1] != 100 || bytes[2] != 50 {
		t.Errorf("pixel = %v, want opaque source color through", bytes[:4])
	}
}

func TestComposeCycleDetection(t *testing.T) {
	compA := NewCompNode()
	compA.Attrs().Set("width", I32Value(2))
	compA.Attrs().Set("height", I32Value(2))
	compA.Attrs().Set("out", I32Value(10))

	layerToSelf := NewLayer(compA.UUID())
	layerToSelf.Attrs().Set("src_len", I32Value(10))
	compA.AddLayer(layerToSelf)

	resolver := stubResolver{compA.UUID(): compA}
	composer := newTestComposer(t, resolver, stubLoader{})

	frame, err := composer.Compose(compA.UUID(), 0, 0)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if frame.Status() != StatusError {
		t.Errorf("Status() = %v, want Error after self-referencing cycle", frame.Status())
	}
}

func TestComposeCycleDetectionLogsOnce(t *testing.T) {
	compA := NewCompNode()
	compA.Attrs().Set("width", I32Value(2))
	compA.Attrs().Set("height", I32Value(2))
	compA.Attrs().Set("out", I32Value(10))

	compB := NewCompNode()
	compB.Attrs().Set("width", I32Value(2))
	compB.Attrs().Set("height", I32Value(2))
	compB.Attrs().Set("out", I32Value(10))

	// A -> B -> A: a cycle that surfaces from more than one layer, so a
	// naive per-edge log would report it more than once per Compose call.
	layerAtoB := NewLayer(compB.UUID())
	layerAtoB.Attrs().Set("src_len", I32Value(10))
	compA.AddLayer(layerAtoB)
	layerBtoA1 := NewLayer(compA.UUID())
	layerBtoA1.Attrs().Set("src_len", I32Value(10))
	layerBtoA2 := NewLayer(compA.UUID())
	layerBtoA2.Attrs().Set("src_len", I32Value(10))
	compB.AddLayer(layerBtoA1)
	compB.AddLayer(layerBtoA2)

	resolver := stubResolver{compA.UUID(): compA, compB.UUID(): compB}
	composer := newTestComposer(t, resolver, stubLoader{})

	var buf bytes.Buffer
	prev := logger
	SetLogOutput(log.New(&buf, "", 0))
	defer func() { logger = prev }()

	frame, err := composer.Compose(compA.UUID(), 0, 0)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if frame.Status() != StatusError {
		t.Errorf("Status() = %v, want Error after cycle", frame.Status())
	}
	if n := strings.Count(buf.String(), "cycle detected"); n != 1 {
		t.Errorf("cycle log lines = %d, want exactly 1; log was: %q", n, buf.String())
	}
}

func TestComposeCachesSecondLookup(t *testing.T) {
	comp := NewCompNode()
	comp.Attrs().Set("width", I32Value(2))
	comp.Attrs().Set("height", I32Value(2))
	comp.Attrs().Set("out", I32Value(10))

	resolver := stubResolver{comp.UUID(): comp}
	composer := newTestComposer(t, resolver, stubLoader{})

	first, err := composer.Compose(comp.UUID(), 3, 0)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	second, ok := composer.cache.Get(comp.UUID(), 3)
	if !ok {
		t.Fatalf("expected frame 3 to be cached after Compose")
	}
	if first != second {
		t.Errorf("expected Compose and cache.Get to return the same *Frame instance")
	}
}
