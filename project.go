package playback

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// historyCapacity bounds Project.History's undo stack (SPEC_FULL.md §4.8).
const historyCapacity = 100

// historyEntry captures an inverse mutator recorded by modify_comp, so
// undo can replay it without re-deriving the previous Attrs state by hand.
type historyEntry struct {
	nodeUUID uuid.UUID
	undo     func(*Node)
	redo     func(*Node)
}

// History is a bounded undo/redo stack of inverse mutators. It is UI-only:
// it never touches the cache or compose path, matching the non-DAG,
// UI-only nature of Project's own schema fields (spec.md §4.10).
type History struct {
	mu    sync.Mutex
	undos []historyEntry
	redos []historyEntry
}

func newHistory() *History { return &History{} }

func (h *History) push(entry historyEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undos = append(h.undos, entry)
	if len(h.undos) > historyCapacity {
		h.undos = h.undos[len(h.undos)-historyCapacity:]
	}
	h.redos = nil
}

// CanUndo reports whether there is an entry to undo.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undos) > 0
}

// CanRedo reports whether there is an entry to redo.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redos) > 0
}

// Project is the top-level container: the media pool (UUID -> Node) under a
// reader/writer lock, an ordered list of top-level UUIDs, a selection list,
// an optional active UUID, shared cache/event handles, and an undo History
// (spec.md §4.8; History is a SPEC_FULL.md supplement).
type Project struct {
	mu   sync.RWMutex
	pool map[uuid.UUID]*Node

	order     []uuid.UUID
	selection []uuid.UUID
	active    uuid.UUID

	cache    *FrameCache
	cm       *CacheManager
	composer *Composer
	bus      *EventBus

	History *History
}

// NewProject wires a Project against a shared cache, cache manager,
// composer, and event bus.
func NewProject(cache *FrameCache, cm *CacheManager, composer *Composer, bus *EventBus) *Project {
	return &Project{
		pool:    make(map[uuid.UUID]*Node),
		cache:   cache,
		cm:      cm,
		composer: composer,
		bus:     bus,
		History: newHistory(),
	}
}

// ResolveNode implements NodeResolver for Composer, under the pool's read
// lock (spec.md §5: "media pool outer, cache inner" lock ordering).
func (p *Project) ResolveNode(id uuid.UUID) (*Node, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	n, ok := p.pool[id]
	return n, ok
}

// AddMedia inserts node into the pool and its UUID into the top-level
// order, refusing insertion if it would create a cycle when parentHint (a
// comp already in the pool) is about to reference it as a layer source.
// Pass uuid.Nil for parentHint when the node has no immediate parent yet.
func (p *Project) AddMedia(node *Node, parentHint uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.pool[node.UUID()]; exists {
		return fmt.Errorf("playback: uuid %s already present in media pool", node.UUID())
	}
	if parentHint != uuid.Nil {
		if p.wouldCycleLocked(node.UUID(), parentHint) {
			return fmt.Errorf("playback: adding %s under %s would create a cycle", node.UUID(), parentHint)
		}
	}
	p.pool[node.UUID()] = node
	p.order = append(p.order, node.UUID())
	Emit(p.bus, MediaAdded{NodeUUID: node.UUID()})
	return nil
}

// wouldCycleLocked reports whether host transitively reaching candidate
// already exists (i.e. inserting candidate as a source under host would
// close a cycle), via DFS with a visited set (spec.md §9's check_collisions).
// Caller must hold p.mu.
func (p *Project) wouldCycleLocked(candidate, host uuid.UUID) bool {
	if candidate == host {
		return true
	}
	visited := make(map[uuid.UUID]bool)
	var dfs func(uuid.UUID) bool
	dfs = func(u uuid.UUID) bool {
		if u == candidate {
			return true
		}
		if visited[u] {
			return false
		}
		visited[u] = true
		n, ok := p.pool[u]
		if !ok || n.Kind != NodeComp {
			return false
		}
		for _, l := range n.Layers() {
			if dfs(l.SourceUUID()) {
				return true
			}
		}
		return false
	}
	return dfs(host)
}

// RemoveMedia deletes uuid from the pool, the order list, and the
// selection, and clears its cached frames outright.
func (p *Project) RemoveMedia(id uuid.UUID) {
	p.mu.Lock()
	delete(p.pool, id)
	p.order = removeUUID(p.order, id)
	p.selection = removeUUID(p.selection, id)
	if p.active == id {
		p.active = uuid.Nil
	}
	p.mu.Unlock()

	p.cache.ClearComp(id, false)
	Emit(p.bus, MediaRemoved{NodeUUID: id})
}

func removeUUID(s []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := s[:0]
	for _, u := range s {
		if u != id {
			out = append(out, u)
		}
	}
	return out
}

// SetActive sets the active comp UUID and emits ActiveChanged.
func (p *Project) SetActive(id uuid.UUID) {
	p.mu.Lock()
	p.active = id
	p.mu.Unlock()
	Emit(p.bus, ActiveChanged{NodeUUID: id})
}

// Active returns the current active comp UUID, or uuid.Nil if none.
func (p *Project) Active() uuid.UUID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.active
}

// SetSelection replaces the selection list wholesale and emits
// SelectionChanged.
func (p *Project) SetSelection(ids []uuid.UUID) {
	p.mu.Lock()
	p.selection = append([]uuid.UUID{}, ids...)
	p.mu.Unlock()
	Emit(p.bus, SelectionChanged{Selection: ids})
}

// PushOrder appends id to the end of the top-level order list.
func (p *Project) PushOrder(id uuid.UUID) {
	p.mu.Lock()
	p.order = append(p.order, id)
	order := append([]uuid.UUID{}, p.order...)
	p.mu.Unlock()
	Emit(p.bus, OrderChanged{Order: order})
}

// Reorder replaces the top-level order list wholesale.
func (p *Project) Reorder(order []uuid.UUID) {
	p.mu.Lock()
	p.order = append([]uuid.UUID{}, order...)
	p.mu.Unlock()
	Emit(p.bus, OrderChanged{Order: order})
}

// Order returns a snapshot of the top-level order list.
func (p *Project) Order() []uuid.UUID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]uuid.UUID{}, p.order...)
}

// ModifyComp acquires a writer over the pool entry id, runs mutator, and —
// if the node's Attrs ended up dirty — emits AttrsChanged and clears dirty,
// then invalidates the cascade and bumps the cache epoch so in-flight stale
// compositions are abandoned (spec.md §4.8, §4.5). The inverse mutator, if
// provided, is recorded on Project.History for undo (SPEC_FULL.md §4.8); pass
// a nil inverse for mutations that shouldn't be undoable (e.g. playhead moves).
func (p *Project) ModifyComp(id uuid.UUID, mutator func(*Node), inverse func(*Node)) error {
	p.mu.Lock()
	node, ok := p.pool[id]
	if !ok {
		p.mu.Unlock()
		return fmt.Errorf("playback: modify_comp: %s not in media pool", id)
	}

	mutator(node)
	p.mu.Unlock()

	dirty := node.Attrs().Dirty()
	if dirty {
		node.Attrs().ClearDirty()
		Emit(p.bus, AttrsChanged{NodeUUID: id})
		p.InvalidateCascade(id)
		p.cm.BumpEpoch()
	}
	if inverse != nil {
		p.History.push(historyEntry{nodeUUID: id, undo: inverse, redo: mutator})
	}
	return nil
}

// InvalidateCascade finds every comp that references id in any layer,
// directly or transitively, and dehydrates their cached frames (marks
// Loaded -> Expired), recursing until no further parent references id
// (spec.md §4.8). Implemented as a DFS over the whole pool with a visited
// set, since the media pool is UUID-keyed rather than owner-of and offers
// no reverse-reference index.
func (p *Project) InvalidateCascade(id uuid.UUID) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	visited := make(map[uuid.UUID]bool)
	var dfs func(uuid.UUID)
	dfs = func(target uuid.UUID) {
		for parentID, node := range p.pool {
			if node.Kind != NodeComp || visited[parentID] {
				continue
			}
			references := false
			for _, l := range node.Layers() {
				if l.SourceUUID() == target {
					references = true
					break
				}
			}
			if !references {
				continue
			}
			visited[parentID] = true
			p.cache.ClearComp(parentID, true)
			dfs(parentID)
		}
	}
	p.cache.ClearComp(id, true)
	dfs(id)
}

// Undo pops the most recent history entry and replays its undo mutator via
// ModifyComp (recorded again as a redo entry, never growing History
// unboundedly since push() caps at historyCapacity).
func (p *Project) Undo() bool {
	p.History.mu.Lock()
	if len(p.History.undos) == 0 {
		p.History.mu.Unlock()
		return false
	}
	entry := p.History.undos[len(p.History.undos)-1]
	p.History.undos = p.History.undos[:len(p.History.undos)-1]
	p.History.redos = append(p.History.redos, entry)
	p.History.mu.Unlock()

	_ = p.ModifyComp(entry.nodeUUID, entry.undo, nil)
	return true
}

// Redo pops the most recent undone entry and replays its redo mutator.
func (p *Project) Redo() bool {
	p.History.mu.Lock()
	if len(p.History.redos) == 0 {
		p.History.mu.Unlock()
		return false
	}
	entry := p.History.redos[len(p.History.redos)-1]
	p.History.redos = p.History.redos[:len(p.History.redos)-1]
	p.History.mu.Unlock()

	_ = p.ModifyComp(entry.nodeUUID, entry.redo, nil)
	return true
}

// Compose delegates to the wired Composer for (compUUID, frameIdx) at the
// cache manager's current epoch.
func (p *Project) Compose(compUUID uuid.UUID, frameIdx int64) (*Frame, error) {
	return p.composer.Compose(compUUID, frameIdx, p.cm.CurrentEpoch())
}
