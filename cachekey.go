package playback

import (
	"fmt"

	"github.com/google/uuid"
)

// CacheKey uniquely identifies a cached composed or loaded frame: a node
// UUID (a CompNode or a leaf node, depending on who published it) paired
// with that node's own local frame index.
type CacheKey struct {
	NodeUUID uuid.UUID
	Frame    int64
}

// String renders the key for use as a singleflight/log key.
func (k CacheKey) String() string {
	return fmt.Sprintf("%s#%d", k.NodeUUID, k.Frame)
}
