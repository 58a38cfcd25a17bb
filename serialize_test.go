package playback

import (
	"testing"

	"github.com/google/uuid"
)

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	proj, cm := newTestProject(t)

	file := NewFileNode()
	file.Attrs().Set("width", I32Value(100))
	file.Attrs().Set("file_dir", StringValue("/media/shot"))
	if err := proj.AddMedia(file, uuid.Nil); err != nil {
		t.Fatal(err)
	}

	comp := NewCompNode()
	comp.Attrs().Set("width", I32Value(100))
	comp.Attrs().Set("height", I32Value(100))
	comp.Attrs().Set("out", I32Value(50))
	layer := NewLayer(file.UUID())
	layer.Attrs().Set("src_len", I32Value(50))
	layer.Attrs().Set("opacity", F32Value(0.5))
	comp.AddLayer(layer)
	if err := proj.AddMedia(comp, uuid.Nil); err != nil {
		t.Fatal(err)
	}
	proj.SetActive(comp.UUID())
	proj.SetSelection([]uuid.UUID{comp.UUID()})

	data, err := proj.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	bus2 := NewEventBus()
	cache2 := NewFrameCache(cm, StrategyAll, 1000)
	loaded, err := DeserializeProject(data, cache2, cm, bus2)
	if err != nil {
		t.Fatalf("DeserializeProject: %v", err)
	}

	if loaded.Active() != comp.UUID() {
		t.Errorf("Active() = %v, want %v", loaded.Active(), comp.UUID())
	}

	loadedComp, ok := loaded.ResolveNode(comp.UUID())
	if !ok {
		t.Fatalf("expected comp node to round-trip")
	}
	w, _ := loadedComp.Attrs().GetI32("width")
	if w != 100 {
		t.Errorf("width = %d, want 100", w)
	}
	if len(loadedComp.Layers()) != 1 {
		t.Fatalf("expected 1 layer to round-trip, got %d", len(loadedComp.Layers()))
	}
	restoredLayer := loadedComp.Layers()[0]
	if restoredLayer.SourceUUID() != file.UUID() {
		t.Errorf("layer SourceUUID() = %v, want %v", restoredLayer.SourceUUID(), file.UUID())
	}
	if restoredLayer.Opacity() != 0.5 {
		t.Errorf("layer Opacity() = %v, want 0.5", restoredLayer.Opacity())
	}

	loadedFile, ok := loaded.ResolveNode(file.UUID())
	if !ok {
		t.Fatalf("expected file node to round-trip")
	}
	dir, _ := loadedFile.Attrs().GetString("file_dir")
	if dir != "/media/shot" {
		t.Errorf("file_dir = %q, want /media/shot", dir)
	}
}

func TestUnmarshalAttrsPreservesUnknownKeyRoundTrip(t *testing.T) {
	sv, err := marshalAttrValue(StringValue("custom-payload"))
	if err != nil {
		t.Fatal(err)
	}
	values := map[string]serializedAttrValue{"vendor_extra": sv}
	a, err := unmarshalAttrs(values, []string{"vendor_extra"})
	if err != nil {
		t.Fatal(err)
	}
	got, ok := a.GetString("vendor_extra")
	if !ok || got != "custom-payload" {
		t.Errorf("GetString(vendor_extra) = (%q, %v), want (custom-payload, true)", got, ok)
	}
}

func TestNodeKindNameRoundTrip(t *testing.T) {
	for _, k := range []NodeKind{NodeFile, NodeComp, NodeCamera, NodeText} {
		name := nodeKindName(k)
		back, err := nodeKindFromName(name)
		if err != nil {
			t.Fatalf("nodeKindFromName(%q): %v", name, err)
		}
		if back != k {
			t.Errorf("round trip for %v produced %v", k, back)
		}
	}
}

func TestNodeKindFromNameRejectsUnknown(t *testing.T) {
	if _, err := nodeKindFromName("bogus"); err == nil {
		t.Errorf("expected an error for an unrecognized node kind name")
	}
}
