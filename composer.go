package playback

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// composeState is the per-call-chain cycle guard and camera context for one
// top-level Compose invocation. It is never shared across goroutines: each
// call to Composer.Compose allocates its own, and recursive sub-comp calls
// thread it down the call stack (spec.md §4.7 step 3, "cycle guard").
type composeState struct {
	visiting    map[uuid.UUID]bool
	epoch       uint64
	cycleLogged bool // ensures at most one cycle log line per Compose call
}

// CycleError is returned (and baked into an Error-status Frame) when a
// comp's layer stack references itself, directly or transitively.
type CycleError struct {
	CompUUID uuid.UUID
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("playback: cycle detected at comp %s", e.CompUUID)
}

// Composer recursively evaluates a CompNode's layer stack into a single
// Frame, sampling and blending each contributing layer bottom to top
// (spec.md §4.7). It owns no node storage itself: nodes are looked up
// through a NodeResolver (the owning Project), and results flow through a
// FrameCache so concurrent requests for the same (comp, frame) share one
// computation.
type Composer struct {
	cache    *FrameCache
	cm       *CacheManager
	resolver NodeResolver
	loader   FrameLoader
	bus      *EventBus
}

// NewComposer wires a Composer against the shared cache, cache manager,
// node resolver (normally the Project), file loader, and event bus.
func NewComposer(cache *FrameCache, cm *CacheManager, resolver NodeResolver, loader FrameLoader, bus *EventBus) *Composer {
	return &Composer{cache: cache, cm: cm, resolver: resolver, loader: loader, bus: bus}
}

// Compose evaluates compUUID at frameIdx, using the cache when possible and
// otherwise recursively evaluating the comp's layer stack. epoch is the
// CacheManager epoch current when the request was issued; stale in-flight
// work bails out early once a newer epoch has been stamped (spec.md §4.5).
func (c *Composer) Compose(compUUID uuid.UUID, frameIdx int64, epoch uint64) (*Frame, error) {
	node, ok := c.resolver.ResolveNode(compUUID)
	if !ok || node.Kind != NodeComp {
		return nil, fmt.Errorf("playback: %s is not a comp node", compUUID)
	}

	st := &composeState{visiting: map[uuid.UUID]bool{compUUID: true}, epoch: epoch}
	recompose := func() *Frame { return c.composeUncached(node, frameIdx, st) }

	// spec.md §4.7 step 1: a cached entry is only reusable as-is while it's
	// not Expired. An Expired entry (left behind by dehydrating cascade
	// invalidation) must proceed to step 2 and recompose, not be returned
	// stale.
	if cached, ok := c.cache.Get(compUUID, frameIdx); ok {
		if cached.Status() != StatusExpired {
			return cached, nil
		}
		return c.cache.Recompute(compUUID, frameIdx, recompose), nil
	}

	frame, _ := c.cache.GetOrInsert(compUUID, frameIdx, recompose)
	return frame, nil
}

// composeUncached performs the actual recursive evaluation. Called only
// while the cache holds this (comp, frame) key reserved via singleflight, so
// no two goroutines race to compute the same slot.
func (c *Composer) composeUncached(comp *Node, frameIdx int64, st *composeState) *Frame {
	width, height := comp.Dimensions()
	if c.cm.CurrentEpoch() != st.epoch {
		f := NewPlaceholder(width, height, FormatRGBA8)
		f.MarkError()
		return f
	}

	layers := comp.Layers()
	cameraView := identityMat4
	if cam := topmostCameraView(layers, c.resolver); cam != nil {
		cameraView = *cam
	}

	soloActive := false
	for _, l := range layers {
		if l.Solo() {
			soloActive = true
			break
		}
	}

	type contribution struct {
		frame     *Frame
		transform Mat4
		opacity   float64
		mode      BlendMode
	}
	var contributions []contribution
	statuses := make([]Status, 0, len(layers))

	for _, l := range layers {
		if !l.Visible() || l.Mute() {
			continue
		}
		if soloActive && !l.Solo() {
			continue
		}
		if !l.Covers(frameIdx) {
			continue
		}
		srcNode, ok := c.resolver.ResolveNode(l.SourceUUID())
		if !ok {
			continue
		}
		if srcNode.Kind == NodeCamera {
			// Cameras contribute view state only, handled above; they are
			// never sampled for pixels.
			continue
		}

		localFrame := l.LocalFrame(frameIdx)
		srcFrame, err := c.computeSource(srcNode, localFrame, st)
		if err != nil {
			if srcFrame != nil {
				statuses = append(statuses, srcFrame.Status())
			} else {
				statuses = append(statuses, StatusError)
			}
			continue
		}
		statuses = append(statuses, srcFrame.Status())

		transform := layerTransformMat4(l.Position(), l.Rotation(), l.Scale(), l.Pivot())
		contributions = append(contributions, contribution{
			frame: srcFrame, transform: transform, opacity: l.Opacity(), mode: l.BlendMode(),
		})
	}

	out := make([]byte, width*height*4)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dst := [4]float64{}
			for _, ct := range contributions {
				srcRGBA, ok := sampleLayer(ct.frame, width, height, x, y, cameraView, ct.transform)
				if !ok {
					continue
				}
				dst = blendPixel(ct.mode, dst, srcRGBA, ct.opacity)
			}
			i := (y*width + x) * 4
			out[i] = byte(clampUnit(dst[0]) * 255)
			out[i+1] = byte(clampUnit(dst[1]) * 255)
			out[i+2] = byte(clampUnit(dst[2]) * 255)
			out[i+3] = byte(clampUnit(dst[3]) * 255)
		}
	}

	status := StatusLoaded
	if len(statuses) > 0 {
		status = minStatus(statuses...)
	}

	result := newHeader(width, height, FormatRGBA8)
	result.Publish(out, status)
	return result
}

// computeSource dispatches to the right evaluator for srcNode's kind,
// threading the cycle guard down for nested comps.
func (c *Composer) computeSource(srcNode *Node, localFrame int64, st *composeState) (*Frame, error) {
	switch srcNode.Kind {
	case NodeComp:
		if st.visiting[srcNode.UUID()] {
			err := &CycleError{CompUUID: srcNode.UUID()}
			if !st.cycleLogged {
				logger.Printf("cycle detected at comp %s", srcNode.UUID())
				st.cycleLogged = true
			}
			w, h := srcNode.Dimensions()
			f := NewPlaceholder(w, h, FormatRGBA8)
			f.MarkError()
			return f, err
		}
		st.visiting[srcNode.UUID()] = true
		defer delete(st.visiting, srcNode.UUID())

		frame, _ := c.cache.GetOrInsert(srcNode.UUID(), localFrame, func() *Frame {
			return c.composeUncached(srcNode, localFrame, st)
		})
		return frame, nil

	case NodeText:
		return renderTextNode(srcNode), nil

	case NodeFile:
		if c.loader == nil {
			w, h := srcNode.Dimensions()
			f := NewPlaceholder(w, h, FormatRGBA8)
			f.MarkError()
			return f, fmt.Errorf("playback: no loader configured")
		}
		frame, _ := c.cache.GetOrInsert(srcNode.UUID(), localFrame, func() *Frame {
			f, err := c.loader.LoadFrame(srcNode, localFrame)
			if err != nil {
				w, h := srcNode.Dimensions()
				f = NewPlaceholder(w, h, FormatRGBA8)
				f.MarkError()
			}
			return f
		})
		return frame, nil

	default:
		return nil, fmt.Errorf("playback: unsupported source kind %v", srcNode.Kind)
	}
}

// topmostCameraView returns the view matrix (the inverse of the camera's
// own world transform) of the highest layer in the stack whose source is a
// CameraNode, or nil if none. "Topmost" follows the layer list's own
// bottom-to-top ordering, matching how the same stack determines draw order
// (spec.md §4.7 step 4).
func topmostCameraView(layers []*Layer, resolver NodeResolver) *Mat4 {
	var found *Mat4
	for _, l := range layers {
		srcNode, ok := resolver.ResolveNode(l.SourceUUID())
		if !ok || srcNode.Kind != NodeCamera {
			continue
		}
		world := layerTransformMat4(l.Position(), l.Rotation(), l.Scale(), l.Pivot())
		inv := invertAffine3(world)
		found = &inv
	}
	return found
}

// sampleLayer nearest-neighbor-samples srcFrame at the comp-space pixel
// (dstX, dstY), after mapping it through the inverse of (cameraView *
// transform). Returns ok=false for points that land outside srcFrame.
func sampleLayer(srcFrame *Frame, dstWidth, dstHeight, dstX, dstY int, cameraView, transform Mat4) ([4]float64, bool) {
	var zero [4]float64
	forward := cameraView.Mul(transform)
	inv := invertAffine3(forward)

	dx := float64(dstX) - float64(dstWidth)/2
	dy := float64(dstY) - float64(dstHeight)/2
	src := inv.MulPoint(Vec3{X: dx, Y: dy, Z: 0})

	sx := int(math.Round(src.X + float64(srcFrame.Width)/2))
	sy := int(math.Round(src.Y + float64(srcFrame.Height)/2))
	if sx < 0 || sy < 0 || sx >= srcFrame.Width || sy >= srcFrame.Height {
		return zero, false
	}

	bytes := srcFrame.Bytes()
	if bytes == nil {
		return zero, false
	}
	i := (sy*srcFrame.Width + sx) * 4
	if i+3 >= len(bytes) {
		return zero, false
	}
	return [4]float64{
		float64(bytes[i]) / 255,
		float64(bytes[i+1]) / 255,
		float64(bytes[i+2]) / 255,
		float64(bytes[i+3]) / 255,
	}, true
}
