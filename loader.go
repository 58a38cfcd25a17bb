package playback

import "github.com/google/uuid"

// FrameLoader decodes a single source-local frame of a FileNode into a
// Frame. Implementations live in the loader subpackage (sequence.go,
// video.go); this interface is declared here, rather than there, so the
// root package's Composer can depend on it without an import cycle.
type FrameLoader interface {
	LoadFrame(node *Node, localFrame int64) (*Frame, error)
}

// NodeResolver looks up a Node by UUID in a project's media pool. Project
// implements this under its own RWMutex (spec.md §5: "media pool:
// multiple-reader/single-writer lock").
type NodeResolver interface {
	ResolveNode(id uuid.UUID) (*Node, bool)
}
