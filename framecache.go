package playback

import (
	"container/list"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// CacheStrategy controls how many frames per comp the FrameCache retains.
type CacheStrategy uint8

const (
	// StrategyAll keeps up to a configured capacity of frames across all
	// comps, evicting oldest-first by LRU order. The default.
	StrategyAll CacheStrategy = iota
	// StrategyLastOnly keeps only the most recently inserted frame per comp.
	StrategyLastOnly
)

type cacheEntry struct {
	frame   *Frame
	lruElem *list.Element // element in FrameCache.lru, value is CacheKey
}

// FrameCache is a keyed frame store with LRU eviction and dehydration.
// The map is sharded by comp UUID so clear_comp/clear_frame_range only walk
// one comp's entries; a single RWMutex field (mu) protects the whole
// structure, matching spec.md §5's "media pool outer, cache inner" lock
// ordering note — this lock is always the innermost one acquired.
type FrameCache struct {
	mu       sync.RWMutex
	byComp   map[uuid.UUID]map[int64]*cacheEntry
	lru      *list.List // list of CacheKey, front = least recently used
	strategy CacheStrategy
	capacity int // only meaningful for StrategyAll

	cm *CacheManager

	group singleflight.Group // coalesces concurrent get_or_insert "make" calls
}

// NewFrameCache creates an empty cache sharing accounting with cm.
func NewFrameCache(cm *CacheManager, strategy CacheStrategy, capacity int) *FrameCache {
	if capacity <= 0 {
		capacity = 10000
	}
	return &FrameCache{
		byComp:   make(map[uuid.UUID]map[int64]*cacheEntry),
		lru:      list.New(),
		strategy: strategy,
		capacity: capacity,
		cm:       cm,
	}
}

// Get returns the frame at (compUUID, frameIdx), if present, moving it to
// the most-recently-used end of the LRU order.
func (fc *FrameCache) Get(compUUID uuid.UUID, frameIdx int64) (*Frame, bool) {
	fc.mu.RLock()
	inner, ok := fc.byComp[compUUID]
	var entry *cacheEntry
	if ok {
		entry, ok = inner[frameIdx]
	}
	fc.mu.RUnlock()
	if !ok {
		return nil, false
	}
	// The LRU touch is a brief writer acquisition; a lost race here just
	// leaves the key in a slightly stale position, corrected on the next
	// hit (spec.md §4.4).
	fc.mu.Lock()
	if entry.lruElem != nil {
		fc.lru.MoveToBack(entry.lruElem)
	}
	fc.mu.Unlock()
	return entry.frame, true
}

// GetOrInsert returns the existing entry for (compUUID, frameIdx) if one
// exists, or constructs one via make and inserts it. At most one call's make
// runs per key even under concurrent callers, via singleflight.Group —
// satisfying the "at-most-one materialization per key" guarantee (spec.md
// §4.4, §8).
func (fc *FrameCache) GetOrInsert(compUUID uuid.UUID, frameIdx int64, make_ func() *Frame) (frame *Frame, inserted bool) {
	if f, ok := fc.Get(compUUID, frameIdx); ok {
		return f, false
	}
	key := CacheKey{NodeUUID: compUUID, Frame: frameIdx}.String()
	v, _, _ := fc.group.Do(key, func() (any, error) {
		if f, ok := fc.Get(compUUID, frameIdx); ok {
			return result{f, false}, nil
		}
		f := make_()
		fc.Insert(compUUID, frameIdx, f)
		return result{f, true}, nil
	})
	r := v.(result)
	return r.frame, r.inserted
}

type result struct {
	frame    *Frame
	inserted bool
}

// Recompute unconditionally regenerates the frame at (compUUID, frameIdx) via
// make_, coalescing concurrent callers onto a single computation the same
// way GetOrInsert does, then replaces the cached entry. Callers use this
// instead of GetOrInsert when they already know the existing entry is stale
// (Expired) and must be recomposed rather than returned as-is (spec.md §4.7
// step 1's "if present and Expired, proceed to recompose").
func (fc *FrameCache) Recompute(compUUID uuid.UUID, frameIdx int64, make_ func() *Frame) *Frame {
	key := CacheKey{NodeUUID: compUUID, Frame: frameIdx}.String()
	v, _, _ := fc.group.Do(key, func() (any, error) {
		f := make_()
		fc.Insert(compUUID, frameIdx, f)
		return f, nil
	})
	return v.(*Frame)
}

// Insert replaces any prior entry for the key (freeing its memory in the
// accountant first), inserts the new entry, then evicts from the front of
// the LRU list until memory <= limit and, for StrategyAll, count <= capacity.
func (fc *FrameCache) Insert(compUUID uuid.UUID, frameIdx int64, frame *Frame) {
	fc.mu.Lock()
	inner, ok := fc.byComp[compUUID]
	if !ok {
		inner = make(map[int64]*cacheEntry)
		fc.byComp[compUUID] = inner
	}
	key := CacheKey{NodeUUID: compUUID, Frame: frameIdx}
	if existing, ok := inner[frameIdx]; ok {
		fc.cm.Free(existing.frame.Size())
		if existing.lruElem != nil {
			fc.lru.Remove(existing.lruElem)
		}
	}
	if fc.strategy == StrategyLastOnly {
		// Keep only the most recent frame per comp: evict all siblings first.
		for idx, e := range inner {
			if idx == frameIdx {
				continue
			}
			fc.cm.Free(e.frame.Size())
			if e.lruElem != nil {
				fc.lru.Remove(e.lruElem)
			}
			delete(inner, idx)
		}
	}
	elem := fc.lru.PushBack(key)
	inner[frameIdx] = &cacheEntry{frame: frame, lruElem: elem}
	fc.cm.Add(frame.Size())

	fc.evictLocked()
	fc.mu.Unlock()
	fc.cm.RequestRepaint()
}

// evictLocked runs the eviction pass; caller must hold fc.mu for writing.
// Eviction is oldest-first by LRU order. Composing/Loading placeholders are
// exempt (skipped, retried against the next-oldest) to avoid breaking active
// work; Expired entries are evictable and are the Decision in DESIGN.md: they
// still count toward capacity and memory, and each eviction step removes the
// oldest Expired entry first whenever one exists (see evictOneLocked).
func (fc *FrameCache) evictLocked() {
	for fc.overCapacityLocked() {
		if !fc.evictOneLocked() {
			break // nothing left evictable (all entries are active work)
		}
	}
}

func (fc *FrameCache) overCapacityLocked() bool {
	if fc.cm.OverLimit() {
		return true
	}
	if fc.strategy == StrategyAll && fc.lru.Len() > fc.capacity {
		return true
	}
	return false
}

// evictOneLocked removes the single oldest evictable entry, preferring
// Expired entries anywhere in the LRU order over strict oldest-first when
// an Expired entry exists, since a stale-but-visible frame is a better
// eviction candidate than an active in-flight one further back in order.
func (fc *FrameCache) evictOneLocked() bool {
	var expiredCandidate *list.Element
	for e := fc.lru.Front(); e != nil; e = e.Next() {
		key := e.Value.(CacheKey)
		entry := fc.lookupLocked(key)
		if entry == nil {
			fc.lru.Remove(e)
			return true
		}
		status := entry.frame.Status()
		if status == StatusComposing || status == StatusLoading {
			continue
		}
		if status == StatusExpired {
			expiredCandidate = e
			break
		}
		if expiredCandidate == nil {
			// Remember the first plain-evictable entry in case no Expired
			// one turns up, but keep scanning for a preferred Expired one.
			expiredCandidate = e
		}
	}
	if expiredCandidate == nil {
		return false
	}
	key := expiredCandidate.Value.(CacheKey)
	fc.removeKeyLocked(key)
	fc.lru.Remove(expiredCandidate)
	return true
}

func (fc *FrameCache) lookupLocked(key CacheKey) *cacheEntry {
	inner, ok := fc.byComp[key.NodeUUID]
	if !ok {
		return nil
	}
	return inner[key.Frame]
}

func (fc *FrameCache) removeKeyLocked(key CacheKey) {
	inner, ok := fc.byComp[key.NodeUUID]
	if !ok {
		return
	}
	entry, ok := inner[key.Frame]
	if !ok {
		return
	}
	fc.cm.Free(entry.frame.Size())
	delete(inner, key.Frame)
	if len(inner) == 0 {
		delete(fc.byComp, key.NodeUUID)
	}
}

// ClearComp invalidates every cached frame for a comp. If dehydrate is true,
// Loaded entries transition to Expired (pixels remain, memory unchanged).
// Otherwise entries are removed outright and their memory freed.
func (fc *FrameCache) ClearComp(compUUID uuid.UUID, dehydrate bool) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	inner, ok := fc.byComp[compUUID]
	if !ok {
		return
	}
	if dehydrate {
		for _, entry := range inner {
			entry.frame.MarkExpired()
		}
		return
	}
	for idx, entry := range inner {
		fc.cm.Free(entry.frame.Size())
		if entry.lruElem != nil {
			fc.lru.Remove(entry.lruElem)
		}
		delete(inner, idx)
	}
	delete(fc.byComp, compUUID)
}

// ClearFrameRange invalidates frames in [start, end] (inclusive) for a comp,
// for scoped invalidation of partial comp edits.
func (fc *FrameCache) ClearFrameRange(compUUID uuid.UUID, start, end int64, dehydrate bool) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	inner, ok := fc.byComp[compUUID]
	if !ok {
		return
	}
	for idx, entry := range inner {
		if idx < start || idx > end {
			continue
		}
		if dehydrate {
			entry.frame.MarkExpired()
			continue
		}
		fc.cm.Free(entry.frame.Size())
		if entry.lruElem != nil {
			fc.lru.Remove(entry.lruElem)
		}
		delete(inner, idx)
	}
	if len(inner) == 0 {
		delete(fc.byComp, compUUID)
	}
}

// Len returns the total number of cached frames across all comps.
func (fc *FrameCache) Len() int {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	n := 0
	for _, inner := range fc.byComp {
		n += len(inner)
	}
	return n
}

// CompCount returns the number of distinct comps with at least one cached
// frame.
func (fc *FrameCache) CompCount() int {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	return len(fc.byComp)
}
