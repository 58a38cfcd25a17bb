package playback

import (
	"sync/atomic"

	"github.com/shirou/gopsutil/v4/mem"
)

const (
	defaultMemoryReserve     = 256 * 1024 * 1024 // 256MiB reserve withheld from the limit
	defaultMemoryFraction    = 0.75
	fallbackMemoryLimitBytes = 2 * 1024 * 1024 * 1024 // used when RAM can't be queried
)

// CacheManager tracks global memory accounting, the invalidation epoch, and
// the UI repaint flag. It is a process-wide singleton, created once at
// startup and passed explicitly to the components that need it (FrameCache,
// Workers, Composer) rather than reached for via a global lookup — see
// spec.md §9 "Global state".
type CacheManager struct {
	memoryBytes      atomic.Uint64
	memoryLimitBytes atomic.Uint64
	epoch            atomic.Uint64
	repaintRequested atomic.Bool
}

// NewCacheManager creates a CacheManager with a memory limit computed as
// fraction of currently available system RAM, minus a fixed reserve. If the
// system RAM query fails (sandboxed or restricted environments), it falls
// back to a fixed default so startup never fails because of this.
func NewCacheManager(fraction float64) *CacheManager {
	if fraction <= 0 || fraction > 1 {
		fraction = defaultMemoryFraction
	}
	limit := uint64(fallbackMemoryLimitBytes)
	if vm, err := mem.VirtualMemory(); err == nil && vm.Available > defaultMemoryReserve {
		limit = uint64(float64(vm.Available-defaultMemoryReserve) * fraction)
	}
	cm := &CacheManager{}
	cm.memoryLimitBytes.Store(limit)
	return cm
}

// NewCacheManagerWithLimit creates a CacheManager with an explicit byte
// limit, bypassing RAM detection — used by tests and by callers that
// already know their budget (e.g. a container with a memory cgroup).
func NewCacheManagerWithLimit(limitBytes uint64) *CacheManager {
	cm := &CacheManager{}
	cm.memoryLimitBytes.Store(limitBytes)
	return cm
}

// Add records bytes as newly in use. Uses release semantics so a later
// OverLimit/MemoryBytes read by another goroutine observes this addition.
func (cm *CacheManager) Add(bytes int) {
	if bytes <= 0 {
		return
	}
	cm.memoryBytes.Add(uint64(bytes))
}

// Free records bytes as no longer in use. Saturates at zero rather than
// underflowing, per spec.md §8 ("CacheManager accounting never underflows").
func (cm *CacheManager) Free(bytes int) {
	if bytes <= 0 {
		return
	}
	for {
		cur := cm.memoryBytes.Load()
		next := uint64(0)
		if cur > uint64(bytes) {
			next = cur - uint64(bytes)
		}
		if cm.memoryBytes.CompareAndSwap(cur, next) {
			return
		}
	}
}

// MemoryBytes returns the current accounted memory usage.
func (cm *CacheManager) MemoryBytes() uint64 {
	return cm.memoryBytes.Load()
}

// MemoryLimitBytes returns the configured limit.
func (cm *CacheManager) MemoryLimitBytes() uint64 {
	return cm.memoryLimitBytes.Load()
}

// SetMemoryLimitBytes reconfigures the limit at runtime (e.g. from a
// settings change); the next insert's eviction pass will respect it.
func (cm *CacheManager) SetMemoryLimitBytes(limit uint64) {
	cm.memoryLimitBytes.Store(limit)
}

// OverLimit returns true if memory in use exceeds the configured limit.
func (cm *CacheManager) OverLimit() bool {
	return cm.memoryBytes.Load() > cm.memoryLimitBytes.Load()
}

// BumpEpoch increments the epoch and returns the new value. Called on every
// scrub, seek, play/pause transition that invalidates pending work, and on
// every DAG attribute change (spec.md §4.3).
func (cm *CacheManager) BumpEpoch() uint64 {
	return cm.epoch.Add(1)
}

// CurrentEpoch returns the current epoch value.
func (cm *CacheManager) CurrentEpoch() uint64 {
	return cm.epoch.Load()
}

// RequestRepaint sets the repaint flag; the UI loop consumes and clears it
// via ConsumeRepaint.
func (cm *CacheManager) RequestRepaint() {
	cm.repaintRequested.Store(true)
}

// ConsumeRepaint atomically reads and clears the repaint flag, returning
// whether a repaint was pending.
func (cm *CacheManager) ConsumeRepaint() bool {
	return cm.repaintRequested.Swap(false)
}
