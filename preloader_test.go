package playback

import (
	"sync"
	"testing"

	"github.com/google/uuid"
)

func TestPreloaderRunWarmsFramesWithinPlayRange(t *testing.T) {
	proj, cm := newTestProject(t)
	comp := NewCompNode()
	comp.Attrs().Set("width", I32Value(2))
	comp.Attrs().Set("height", I32Value(2))
	comp.Attrs().Set("out", I32Value(3))
	if err := proj.AddMedia(comp, uuid.Nil); err != nil {
		t.Fatal(err)
	}

	workers := NewWorkers(1, cm)
	defer workers.Shutdown()

	pl := NewPreloader(proj, workers, cm, PreloadForward, 4)
	pl.Run(comp.UUID(), 0)

	var wg sync.WaitGroup
	wg.Add(1)
	workers.SubmitWithEpoch(cm.CurrentEpoch(), func() { wg.Done() })
	wg.Wait()

	for f := int64(0); f <= 3; f++ {
		if _, ok := proj.cache.Get(comp.UUID(), f); !ok {
			t.Errorf("expected frame %d to be warmed into the cache", f)
		}
	}
	if _, ok := proj.cache.Get(comp.UUID(), 4); ok {
		t.Errorf("frame 4 is past out=3 and should never have been submitted")
	}
}

func TestNewPreloaderDefaultsRadius(t *testing.T) {
	proj, cm := newTestProject(t)
	workers := NewWorkers(1, cm)
	defer workers.Shutdown()

	pl := NewPreloader(proj, workers, cm, PreloadSpiral, 0)
	if pl.radius != 8 {
		t.Errorf("radius = %d, want default 8", pl.radius)
	}
}

func TestPreloaderIgnoresNonCompTarget(t *testing.T) {
	proj, cm := newTestProject(t)
	file := NewFileNode()
	if err := proj.AddMedia(file, uuid.Nil); err != nil {
		t.Fatal(err)
	}
	workers := NewWorkers(1, cm)
	defer workers.Shutdown()

	pl := NewPreloader(proj, workers, cm, PreloadForward, 4)
	pl.Run(file.UUID(), 0) // must not panic or submit anything for a non-comp node
}
