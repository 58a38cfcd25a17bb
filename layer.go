package playback

import (
	"math"

	"github.com/google/uuid"
)

// Layer is a placement of a source node inside a CompNode, with its own
// Attrs for timing, visibility, and transform (spec.md §3).
type Layer struct {
	InstanceUUID uuid.UUID
	attrs        *Attrs
}

// NewLayer creates a layer referencing sourceUUID, with schema defaults
// applied and source_uuid set.
func NewLayer(sourceUUID uuid.UUID) *Layer {
	l := &Layer{InstanceUUID: uuid.New(), attrs: NewAttrs(layerSchema)}
	l.attrs.Set("source_uuid", UUIDValue(sourceUUID))
	return l
}

// Attrs returns the layer's attribute bag.
func (l *Layer) Attrs() *Attrs { return l.attrs }

func (l *Layer) SourceUUID() uuid.UUID { u, _ := l.attrs.GetUUID("source_uuid"); return u }
func (l *Layer) In() int64             { v, _ := l.attrs.GetI32("in"); return int64(v) }
func (l *Layer) SrcLen() int64         { v, _ := l.attrs.GetI32("src_len"); return int64(v) }
func (l *Layer) TrimIn() int64         { v, _ := l.attrs.GetI32("trim_in"); return int64(v) }
func (l *Layer) TrimOut() int64        { v, _ := l.attrs.GetI32("trim_out"); return int64(v) }

func (l *Layer) Speed() float64 {
	v, ok := l.attrs.GetF32("speed")
	if !ok || v <= 0 {
		return 1.0
	}
	return float64(v)
}

func (l *Layer) Opacity() float64 { v, _ := l.attrs.GetF32("opacity"); return float64(v) }

func (l *Layer) BlendMode() BlendMode {
	s, _ := l.attrs.GetString("blend_mode")
	return ParseBlendMode(s)
}

func (l *Layer) Visible() bool {
	v, ok := l.attrs.GetBool("visible")
	return !ok || v // default true if unset
}

func (l *Layer) Solo() bool { v, _ := l.attrs.GetBool("solo"); return v }
func (l *Layer) Mute() bool { v, _ := l.attrs.GetBool("mute"); return v }

func (l *Layer) Position() Vec3 { v, _ := l.attrs.GetVec3("position"); return v }
func (l *Layer) Rotation() Vec3 { v, _ := l.attrs.GetVec3("rotation"); return v }

func (l *Layer) Scale() Vec3 {
	v, ok := l.attrs.GetVec3("scale")
	if !ok {
		return Vec3{X: 1, Y: 1, Z: 1}
	}
	return v
}

func (l *Layer) Pivot() Vec3 { v, _ := l.attrs.GetVec3("pivot"); return v }

// VisibleStart returns the first parent-timeline frame at which this layer
// is visible: in + ceil(trim_in / speed).
func (l *Layer) VisibleStart() int64 {
	return l.In() + ceilDiv(l.TrimIn(), l.Speed())
}

// VisibleEnd returns the last parent-timeline frame at which this layer is
// visible: in + ceil((src_len - trim_in - trim_out) / speed) - 1.
func (l *Layer) VisibleEnd() int64 {
	span := l.SrcLen() - l.TrimIn() - l.TrimOut()
	return l.In() + ceilDiv(span, l.Speed()) - 1
}

// Covers reports whether frameIdx falls within [VisibleStart, VisibleEnd].
func (l *Layer) Covers(frameIdx int64) bool {
	return frameIdx >= l.VisibleStart() && frameIdx <= l.VisibleEnd()
}

// LocalFrame translates a parent-timeline frame index to the source-local
// index: floor((frame_idx - in) * speed) + trim_in (spec.md §4.7 step 6).
func (l *Layer) LocalFrame(frameIdx int64) int64 {
	delta := float64(frameIdx-l.In()) * l.Speed()
	return int64(math.Floor(delta)) + l.TrimIn()
}

// ceilDiv returns ceil(n / speed) for a non-negative integer n and a
// positive float speed, computed without float rounding surprises for the
// common speed=1 case.
func ceilDiv(n int64, speed float64) int64 {
	if speed == 1 {
		return n
	}
	return int64(math.Ceil(float64(n) / speed))
}
