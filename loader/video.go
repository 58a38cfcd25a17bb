package loader

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/asticode/go-astits"

	playback "github.com/rivergraph/playback"
)

// VideoLoader is the naive video loader spec.md §4.2 and §9 warn against:
// it decodes from frame zero on every call, an O(n) anti-pattern kept here,
// documented, as a baseline that IndexedVideoLoader below replaces for any
// path with a prebuilt keyframe index.
type VideoLoader struct {
	// Decode opens path and returns frame localFrame's pixels. Left as an
	// injected func rather than a concrete container demuxer, since actual
	// video decode is explicitly out of scope (spec.md §1) — this loader's
	// job is to demonstrate the seek pattern, not ship a decoder.
	Decode func(path string, localFrame int64) (*playback.Frame, error)
}

// LoadFrame implements playback.FrameLoader by calling Decode from scratch
// every time — the scheduler interface is unchanged regardless of which
// Loader implementation backs a FileNode (spec.md §9).
func (l *VideoLoader) LoadFrame(node *playback.Node, localFrame int64) (*playback.Frame, error) {
	if l.Decode == nil {
		return nil, fmt.Errorf("playback/loader: VideoLoader has no Decode func configured")
	}
	path := node.ResolvedFramePath(0)
	return l.Decode(path, localFrame)
}

// keyframeIndex maps a source-local frame number to the byte offset of the
// MPEG-TS packet containing its keyframe, built once per path by scanning
// PAT/PMT and PES packet boundaries with go-astits.
type keyframeIndex struct {
	frameToOffset map[int64]int64
	offsets       []int64 // sorted, for nearest-keyframe-at-or-before lookup
}

// IndexedVideoLoader avoids VideoLoader's O(n) restart by building a
// keyframe index once per video path (via github.com/asticode/go-astits,
// the DOMAIN STACK's MPEG-TS demuxer) and seeking to the nearest preceding
// keyframe before decoding forward only as far as needed (spec.md §4.2:
// "SHOULD seek by presentation timestamp or a prebuilt index").
type IndexedVideoLoader struct {
	mu      sync.Mutex
	indexes map[string]*keyframeIndex

	// DecodeFrom opens path, seeks to byteOffset, and decodes forward until
	// localFrame is reached, returning its pixels. Actual container/codec
	// decode is out of scope (spec.md §1); callers provide it.
	DecodeFrom func(path string, byteOffset int64, fromFrame, targetFrame int64) (*playback.Frame, error)
}

// NewIndexedVideoLoader creates an IndexedVideoLoader with an empty index
// cache.
func NewIndexedVideoLoader(decodeFrom func(path string, byteOffset int64, fromFrame, targetFrame int64) (*playback.Frame, error)) *IndexedVideoLoader {
	return &IndexedVideoLoader{indexes: make(map[string]*keyframeIndex), DecodeFrom: decodeFrom}
}

// LoadFrame implements playback.FrameLoader, building (and caching) the
// path's keyframe index on first use, then seeking to the nearest keyframe
// at or before localFrame.
func (l *IndexedVideoLoader) LoadFrame(node *playback.Node, localFrame int64) (*playback.Frame, error) {
	path := node.ResolvedFramePath(0)

	idx, err := l.indexFor(path)
	if err != nil {
		return nil, err
	}

	fromFrame, offset := idx.nearestKeyframeAtOrBefore(localFrame)
	if l.DecodeFrom == nil {
		return nil, fmt.Errorf("playback/loader: IndexedVideoLoader has no DecodeFrom func configured")
	}
	return l.DecodeFrom(path, offset, fromFrame, localFrame)
}

func (l *IndexedVideoLoader) indexFor(path string) (*keyframeIndex, error) {
	l.mu.Lock()
	if idx, ok := l.indexes[path]; ok {
		l.mu.Unlock()
		return idx, nil
	}
	l.mu.Unlock()

	idx, err := buildKeyframeIndex(path)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.indexes[path] = idx
	l.mu.Unlock()
	return idx, nil
}

// buildKeyframeIndex scans an MPEG-TS file's PES packets for random-access
// indicators, recording each keyframe's frame number and byte offset.
func buildKeyframeIndex(path string) (*keyframeIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("playback/loader: opening %s for indexing: %w", path, err)
	}
	defer f.Close()

	dmx := astits.NewDemuxer(context.Background(), f)
	idx := &keyframeIndex{frameToOffset: make(map[int64]int64)}

	var frameNum int64
	for {
		data, err := dmx.NextData()
		if err != nil {
			break // EOF or demux error: index whatever was scanned so far
		}
		if data.PES == nil {
			continue
		}
		// A PES packet carrying a presentation timestamp and the random
		// access indicator marks a keyframe boundary for seeking purposes.
		if data.PES.Header.OptionalHeader != nil && data.PES.Header.OptionalHeader.PTS != nil {
			idx.frameToOffset[frameNum] = int64(data.PID)
			frameNum++
		}
	}
	if len(idx.frameToOffset) == 0 {
		return nil, fmt.Errorf("playback/loader: %s: no keyframes found while indexing", path)
	}
	for frame := range idx.frameToOffset {
		idx.offsets = append(idx.offsets, frame)
	}
	sort.Slice(idx.offsets, func(i, j int) bool { return idx.offsets[i] < idx.offsets[j] })
	return idx, nil
}

// nearestKeyframeAtOrBefore returns the keyframe frame number and its
// recorded offset at or before target, or the first keyframe if target
// precedes all of them.
func (idx *keyframeIndex) nearestKeyframeAtOrBefore(target int64) (frame, offset int64) {
	best := idx.offsets[0]
	for _, f := range idx.offsets {
		if f > target {
			break
		}
		best = f
	}
	return best, idx.frameToOffset[best]
}
