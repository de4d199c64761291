package ecsgrid

import (
	"sync"

	"github.com/TheBitDrifter/mask"
)

// EntityID is the dense, nonnegative integer identity of an entity.
// Per spec.md §2 entities carry no generation counter: a recycled id
// is indistinguishable from the entity that originally held it. The
// open question in spec.md §9 ("ABA on recycled ids") explicitly
// reserves generation-tagging as an opt-in extension that changes the
// Entity value shape; ecsgrid keeps the plain-integer shape to stay
// interchangeable with the rest of the described system (see
// DESIGN.md).
type EntityID uint32

// Entity is an opaque handle to a live (or formerly live) entity. It
// carries no data beyond its id.
type Entity = EntityID

// EntityDestroyCallback runs when the entity it was registered against
// is removed via World.RemoveEntity. Grounded on the teacher's
// entity.go relationships/onDestroy field; a supplemented feature not
// present in the distilled spec but useful for the same reason the
// teacher added it — letting dependents clean up without polling.
type EntityDestroyCallback func(Entity)

// relationship tracks a supplemented parent/child link plus any
// destroy callback registered for an entity, mirroring the teacher's
// relationships struct but keyed by id instead of embedded in an
// Entity interface value, since ecsgrid's Entity is a bare integer.
type relationship struct {
	parent    Entity
	hasParent bool
	onDestroy EntityDestroyCallback
}

// entityTable is module D of the design: a paged column of bitmasks
// indexed directly by entity id, plus a free-list of recycled ids.
// Grounded on original_source/crates/ecs/src/entity.rs's
// EntitiesStorage<N> (register_bitmask/get_bitmask/reset_bitmask over
// a BlockVec<BitmaskType, N>), extended with id allocation/recycling
// per spec.md §4.D.
type entityTable struct {
	bitmasks *column[mask.Mask256]

	freeMu sync.Mutex
	free   []EntityID
	next   EntityID

	liveMu sync.Mutex
	live   map[EntityID]bool

	relMu sync.Mutex
	rel   map[EntityID]*relationship
}

func newEntityTable() *entityTable {
	return &entityTable{
		bitmasks: newColumn[mask.Mask256](),
		live:     make(map[EntityID]bool),
		rel:      make(map[EntityID]*relationship),
	}
}

// allocate returns the next entity id, preferring a recycled one, and
// marks it live. Matches spec.md §4.F step 1: "Acquire the next entity
// id (recycled first; otherwise fetch-and-increment of a monotonically
// growing counter)."
func (t *entityTable) allocate() EntityID {
	t.freeMu.Lock()
	var id EntityID
	if n := len(t.free); n > 0 {
		id = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		id = t.next
		t.next++
	}
	t.freeMu.Unlock()

	t.liveMu.Lock()
	t.live[id] = true
	t.liveMu.Unlock()
	return id
}

// isLive reports whether id currently refers to a live entity, i.e.
// one that has been allocated but not yet removed.
func (t *entityTable) isLive(id EntityID) bool {
	t.liveMu.Lock()
	defer t.liveMu.Unlock()
	return t.live[id]
}

// recycle marks id no longer live and enqueues it for reissue. Only
// RemoveEntity calls this, after the id's bitmask has been zeroed and
// every cell it referenced has been cleared (spec.md invariant 4: "a
// recycled id may be reissued only after its removal has completed").
func (t *entityTable) recycle(id EntityID) {
	t.liveMu.Lock()
	delete(t.live, id)
	t.liveMu.Unlock()

	t.freeMu.Lock()
	t.free = append(t.free, id)
	t.freeMu.Unlock()
}

// registerBitmask installs m as entity id's bitmask, growing the
// backing column if id has never been seen before.
func (t *entityTable) registerBitmask(id EntityID, m mask.Mask256) {
	t.bitmasks.set(int(id), m)
}

// getBitmask returns id's bitmask, failing UnknownEntity if id is
// outside the table's logical range (spec.md §4.D).
func (t *entityTable) getBitmask(id EntityID) (mask.Mask256, error) {
	if int(id) >= t.bitmasks.logicalLen() {
		return mask.Mask256{}, UnknownEntityError{ID: id}
	}
	v, ok, err := t.bitmasks.getInBounds(int(id))
	if err != nil {
		return mask.Mask256{}, UnknownEntityError{ID: id}
	}
	if !ok {
		// A page exists but the cell was never installed: still a
		// legitimate zero-mask entity (e.g. just allocated, no
		// components yet), not an UnknownEntity condition.
		return mask.Mask256{}, nil
	}
	return v, nil
}

// resetBitmask zeroes id's bitmask in place, used by RemoveEntity.
func (t *entityTable) resetBitmask(id EntityID) {
	t.bitmasks.set(int(id), mask.Mask256{})
}

// logicalLen is the scan bound query_by_bitmask iterates over:
// [0, logicalLen), ascending, per spec.md §4.H.
func (t *entityTable) logicalLen() int {
	return t.bitmasks.logicalLen()
}

// queryByBitmask returns every live entity id in [0, logicalLen) whose
// bitmask contains every bit set in want, in ascending id order.
func (t *entityTable) queryByBitmask(want mask.Mask256) []EntityID {
	n := t.logicalLen()
	out := make([]EntityID, 0, n)
	for i := 0; i < n; i++ {
		m, ok, err := t.bitmasks.getInBounds(i)
		if err != nil || !ok {
			continue
		}
		if !t.isLive(EntityID(i)) {
			continue
		}
		if m.ContainsAll(want) {
			out = append(out, EntityID(i))
		}
	}
	return out
}

// setParent links child to parent and arranges for callback to run
// when parent is destroyed. Supplemented feature, grounded on the
// teacher's Entity.SetParent/SetDestroyCallback.
func (t *entityTable) setParent(child, parent Entity, callback EntityDestroyCallback) {
	t.relMu.Lock()
	defer t.relMu.Unlock()
	r := t.rel[child]
	if r == nil {
		r = &relationship{}
		t.rel[child] = r
	}
	r.parent = parent
	r.hasParent = true

	pr := t.rel[parent]
	if pr == nil {
		pr = &relationship{}
		t.rel[parent] = pr
	}
	pr.onDestroy = callback
}

// parentOf returns child's parent, if a link was established and the
// parent has not since been destroyed.
func (t *entityTable) parentOf(child Entity) (Entity, bool) {
	t.relMu.Lock()
	defer t.relMu.Unlock()
	r, ok := t.rel[child]
	if !ok || !r.hasParent || !t.isLive(r.parent) {
		return 0, false
	}
	return r.parent, true
}

// setDestroyCallback registers callback to run when id is removed.
func (t *entityTable) setDestroyCallback(id Entity, callback EntityDestroyCallback) {
	t.relMu.Lock()
	defer t.relMu.Unlock()
	r := t.rel[id]
	if r == nil {
		r = &relationship{}
		t.rel[id] = r
	}
	r.onDestroy = callback
}

// runDestroyCallback invokes and clears id's destroy callback, if any,
// then drops id's relationship bookkeeping entirely.
func (t *entityTable) runDestroyCallback(id Entity) {
	t.relMu.Lock()
	r, ok := t.rel[id]
	delete(t.rel, id)
	t.relMu.Unlock()
	if ok && r.onDestroy != nil {
		r.onDestroy(id)
	}
}
