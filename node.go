package playback

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// NodeKind tags the variant held by a Node, following the teacher's flat
// tagged-struct shape (node.go's NodeType) rather than an interface
// hierarchy (spec.md §9 design note: "avoid inheritance chains").
type NodeKind uint8

const (
	NodeFile NodeKind = iota
	NodeComp
	NodeCamera
	NodeText
)

func (k NodeKind) String() string {
	switch k {
	case NodeFile:
		return "file"
	case NodeComp:
		return "comp"
	case NodeCamera:
		return "camera"
	case NodeText:
		return "text"
	default:
		return "unknown"
	}
}

// Node is one entry in the media pool: a FileNode, CompNode, CameraNode or
// TextNode, distinguished by Kind. Node carries the capability set every
// variant must answer (spec.md §3/§9): identity, timing range, fps,
// dimensions, and compute(). Mutation of a Node's fields is serialized by
// the owning Project's media-pool RWMutex, so Node itself holds no lock.
type Node struct {
	id    uuid.UUID
	Kind  NodeKind
	attrs *Attrs

	// CompNode only: ordered layer stack, bottom to top.
	layers []*Layer
}

// NewFileNode creates a FileNode with the file schema's defaults.
func NewFileNode() *Node {
	return &Node{id: uuid.New(), Kind: NodeFile, attrs: NewAttrs(fileNodeSchema)}
}

// NewCompNode creates an empty CompNode with the comp schema's defaults.
func NewCompNode() *Node {
	return &Node{id: uuid.New(), Kind: NodeComp, attrs: NewAttrs(compNodeSchema)}
}

// NewCameraNode creates a CameraNode with the camera schema's defaults.
func NewCameraNode() *Node {
	return &Node{id: uuid.New(), Kind: NodeCamera, attrs: NewAttrs(cameraNodeSchema)}
}

// NewTextNode creates a TextNode with the text schema's defaults.
func NewTextNode() *Node {
	return &Node{id: uuid.New(), Kind: NodeText, attrs: NewAttrs(textNodeSchema)}
}

// UUID returns the node's stable identity (spec.md §3).
func (n *Node) UUID() uuid.UUID { return n.id }

// Attrs returns the node's attribute bag.
func (n *Node) Attrs() *Attrs { return n.attrs }

// InFrame returns the node's timeline start, or 0 for kinds without one
// (CameraNode).
func (n *Node) InFrame() int64 {
	v, _ := n.attrs.GetI32("in")
	return int64(v)
}

// OutFrame returns the node's timeline end.
func (n *Node) OutFrame() int64 {
	switch n.Kind {
	case NodeFile:
		start, _ := n.attrs.GetI32("file_start")
		end, _ := n.attrs.GetI32("file_end")
		in, _ := n.attrs.GetI32("in")
		return int64(in) + int64(end-start)
	default:
		v, _ := n.attrs.GetI32("out")
		return int64(v)
	}
}

// FPS returns the node's native playback rate, or 0 for CameraNode.
func (n *Node) FPS() float64 {
	v, _ := n.attrs.GetF32("fps")
	return float64(v)
}

// Dimensions returns the node's pixel size. CameraNode reports 0,0 since it
// contributes no pixels of its own.
func (n *Node) Dimensions() (width, height int) {
	w, _ := n.attrs.GetI32("width")
	h, _ := n.attrs.GetI32("height")
	return int(w), int(h)
}

// Layers returns the CompNode's layer stack, bottom to top. Nil for other
// kinds. The returned slice must not be mutated directly; use AddLayer /
// RemoveLayer / ReorderLayers so structural dirtiness is tracked.
func (n *Node) Layers() []*Layer { return n.layers }

// AddLayer appends a layer to the top of the stack and marks the comp
// structurally dirty (adding a layer always invalidates cached frames, even
// though "layers" itself isn't an Attrs key).
func (n *Node) AddLayer(l *Layer) {
	n.layers = append(n.layers, l)
	n.attrs.MarkDirty()
}

// RemoveLayer removes the layer with the given instance UUID, if present.
func (n *Node) RemoveLayer(instanceUUID uuid.UUID) bool {
	for i, l := range n.layers {
		if l.InstanceUUID == instanceUUID {
			n.layers = append(n.layers[:i], n.layers[i+1:]...)
			n.attrs.MarkDirty()
			return true
		}
	}
	return false
}

// ReorderLayers replaces the stack order wholesale (e.g. drag-to-reorder in
// a UI), validating that newOrder is a permutation of the current layers.
func (n *Node) ReorderLayers(newOrder []uuid.UUID) error {
	if len(newOrder) != len(n.layers) {
		return fmt.Errorf("playback: reorder count %d does not match %d existing layers", len(newOrder), len(n.layers))
	}
	byID := make(map[uuid.UUID]*Layer, len(n.layers))
	for _, l := range n.layers {
		byID[l.InstanceUUID] = l
	}
	reordered := make([]*Layer, 0, len(newOrder))
	for _, id := range newOrder {
		l, ok := byID[id]
		if !ok {
			return fmt.Errorf("playback: reorder references unknown layer %s", id)
		}
		reordered = append(reordered, l)
	}
	n.layers = reordered
	n.attrs.MarkDirty()
	return nil
}

// Playhead returns the CompNode's current frame (the "frame" attribute,
// explicitly non-DAG per spec.md §4.10: moving it never invalidates cache).
func (n *Node) Playhead() int64 {
	v, _ := n.attrs.GetI32("frame")
	return int64(v)
}

// SetPlayhead updates the CompNode's current frame without marking the node
// dirty.
func (n *Node) SetPlayhead(frame int64) {
	n.attrs.Set("frame", I32Value(int32(frame)))
}

// ResolvedFramePath computes the on-disk path for a FileNode at a given
// source-local frame index, using file_dir/file_mask/padding. mask may
// contain a literal "%d" token, which is widened to the stored padding
// (e.g. padding=4 turns "render.%d.exr" into "render.%04d.exr"); a mask that
// already specifies its own width verb (e.g. "%04d") is used as-is, and a
// mask with no "%" verb at all (a single video file) is joined unchanged.
func (n *Node) ResolvedFramePath(localFrame int64) string {
	dir, _ := n.attrs.GetString("file_dir")
	mask, _ := n.attrs.GetString("file_mask")
	padding, _ := n.attrs.GetI32("padding")

	if !strings.Contains(mask, "%") {
		return filepath.Join(dir, mask)
	}
	if strings.Contains(mask, "%d") {
		mask = strings.Replace(mask, "%d", fmt.Sprintf("%%0%dd", padding), 1)
	}
	return filepath.Join(dir, fmt.Sprintf(mask, localFrame))
}
