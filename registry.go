package ecsgrid

import (
	"reflect"
	"sync"

	"github.com/TheBitDrifter/mask"
)

// registryEntry pairs a component's permanent bit position with the
// type-erased column backing its storage. Bit positions are assigned
// once, at first Register call, and never reassigned for the lifetime
// of the World — mirrors the teacher's schema.RowIndexFor contract in
// storage.go, where a component's row index is stable once registered.
type registryEntry struct {
	bit    uint32
	column columnErased
}

// registry is the type -> (bit, column) directory every World owns.
// Registration order determines bit order; it has no effect on the
// order query_by_bitmask returns ids in, which is ascending by id.
type registry struct {
	mu      sync.RWMutex
	entries map[reflect.Type]*registryEntry
	order   []reflect.Type
	nextBit uint32
}

func newRegistry() *registry {
	return &registry{entries: make(map[reflect.Type]*registryEntry)}
}

// registerColumn assigns T a bit and a fresh column if it hasn't been seen
// before. Repeated calls for the same T are a no-op (the teacher's
// schema.Register is likewise idempotent per component type).
func registerColumn[T any](r *registry) {
	t := reflect.TypeFor[T]()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[t]; ok {
		return
	}
	r.entries[t] = &registryEntry{bit: r.nextBit, column: newColumn[T]()}
	r.order = append(r.order, t)
	r.nextBit++
}

func (r *registry) entryFor(t reflect.Type) (*registryEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[t]
	return e, ok
}

func (r *registry) bitFor(t reflect.Type) (uint32, error) {
	e, ok := r.entryFor(t)
	if !ok {
		return 0, UnregisteredComponentError{Type: t}
	}
	return e.bit, nil
}

// columnFor returns the live *column[T] for T, failing with
// UnregisteredComponentError if Register[T] was never called.
func columnFor[T any](r *registry) (*column[T], error) {
	t := reflect.TypeFor[T]()
	e, ok := r.entryFor(t)
	if !ok {
		return nil, UnregisteredComponentError{Type: t}
	}
	col, ok := e.column.(*column[T])
	if !ok {
		// Can only happen if two distinct types hash to the same
		// reflect.Type, which reflect.TypeFor guarantees cannot occur.
		return nil, UnregisteredComponentError{Type: t}
	}
	return col, nil
}

// addComponent installs v on entity id's column for T and folds T's
// bit into mutate, the caller-owned bitmask accumulator. It does not
// write the entity table itself — spec.md §4.B/F keep the bitmask
// write as one final step after every column in a bundle has been
// installed, so a concurrent reader never observes a bit set before
// its backing cell exists.
//
// The returned bool reports whether installing v grew T's column past
// its previous page count. Bundle insertion (bundle.go) folds this
// across every field and re-synchronizes page counts once per call
// when any column grew, so a type absent from other bundles never
// drifts out of page alignment with its siblings (spec.md §3
// invariant 1).
func addComponent[T any](r *registry, id EntityID, v T, mutate *mask.Mask256) (bool, error) {
	t := reflect.TypeFor[T]()
	e, ok := r.entryFor(t)
	if !ok {
		return false, UnregisteredComponentError{Type: t}
	}
	col, ok := e.column.(*column[T])
	if !ok {
		return false, UnregisteredComponentError{Type: t}
	}
	grew := col.set(int(id), v)
	mutate.Mark(e.bit)
	return grew, nil
}

// removeComponent clears entity id's cell in T's column and unmarks
// T's bit from mutate. A no-op if T was never registered or the cell
// was never installed.
func removeComponent[T any](r *registry, id EntityID, mutate *mask.Mask256) {
	t := reflect.TypeFor[T]()
	e, ok := r.entryFor(t)
	if !ok {
		return
	}
	col, ok := e.column.(*column[T])
	if !ok {
		return
	}
	col.clear(int(id))
	mutate.Unmark(e.bit)
}

// clearAllAt empties the cell at id in every column whose bit is set
// in bm. Used by World.RemoveEntity after the bitmask has already been
// reset, per spec.md §4.I's ordering requirement.
func (r *registry) clearAllAt(id EntityID, bm mask.Mask256) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.order {
		entry := r.entries[t]
		if bm.ContainsAll(singleBit(entry.bit)) {
			entry.column.clearCell(int(id))
		}
	}
}

// synchronizePages pads every registered column, plus the supplied
// extra columns (the entity table's bitmask column chief among them),
// up to the largest page count currently observed across all of them.
// Grounded on block_vec.rs's sync_mem_to_biggest: BlockVec exposes the
// same "grow every tracked vector to the size of the biggest" op so a
// set of parallel structures never drifts out of page alignment.
// Registry-held columns are locked for growth in registration order to
// give a total, deadlock-free lock ordering (spec.md §5, "Deterministic
// lock ordering").
func (r *registry) synchronizePages(extra ...columnErased) {
	r.mu.RLock()
	cols := make([]columnErased, 0, len(r.order)+len(extra))
	for _, t := range r.order {
		cols = append(cols, r.entries[t].column)
	}
	r.mu.RUnlock()
	cols = append(cols, extra...)

	max := 0
	for _, c := range cols {
		if n := c.pageCount(); n > max {
			max = n
		}
	}
	for _, c := range cols {
		if n := c.pageCount(); n < max {
			c.appendEmptyPages(max - n)
		}
	}
}
