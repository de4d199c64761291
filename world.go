package ecsgrid

import (
	"context"
	"reflect"

	"github.com/TheBitDrifter/mask"
	"github.com/latticeforge/ecsgrid/internal/workerpool"
)

// Pool is the narrow scheduling surface World depends on. spec.md §1
// treats the worker pool as an external collaborator, out of the
// runtime's core scope; World only ever Submits closures and never
// inspects pool internals. workerpool.Pool satisfies this interface,
// but any scheduler can be substituted.
type Pool interface {
	Submit(workerpool.Task)
	SubmitBatch([]workerpool.Task)
	Start()
	Shutdown(context.Context) error
}

// World is the façade module I of the design: it wires together the
// registry, the unique store, the entity table and an injected Pool,
// and exposes the public operations spec.md §4.I names.
type World struct {
	registry *registry
	uniques  *uniqueStore
	entities *entityTable
	pool     Pool
}

// WorldOption configures a World at construction time.
type WorldOption func(*World)

func newWorld(pool Pool) *World {
	return &World{
		registry: newRegistry(),
		uniques:  newUniqueStore(),
		entities: newEntityTable(),
		pool:     pool,
	}
}

// Register installs T as a known component type, assigning it a
// permanent bit. Safe to call more than once for the same T.
func Register[T any](w *World) {
	registerColumn[T](w.registry)
	w.registry.synchronizePages(w.entities.bitmasks)
}

// RegisterUnique installs value as the World's singleton instance of
// T, replacing any existing value.
func RegisterUnique[T any](w *World, value T) {
	registerUnique[T](w.uniques, value)
}

// RemoveEntity implements spec.md §4.I's remove_entity contract:
// bitmask reset happens before cells are cleared, so a concurrent
// scanner can never select an entity whose cells are about to
// disappear. The destroy callback supplemented feature (§6) runs
// first, while the entity is still fully live.
//
// An id that is in range but already removed (or never allocated) is
// not live; per the §6 API table's "silently no-op if unknown"
// contract, RemoveEntity returns nil without touching the free list —
// recycling an already-recycled id would hand the same id to two
// simultaneously-live entities, violating invariant 4.
func (w *World) RemoveEntity(e Entity) error {
	if !w.entities.isLive(e) {
		return nil
	}
	bm, err := w.entities.getBitmask(e)
	if err != nil {
		return err
	}
	w.entities.runDestroyCallback(e)
	w.entities.resetBitmask(e)
	w.registry.clearAllAt(e, bm)
	w.entities.recycle(e)
	return nil
}

// SetDestroyCallback registers callback to run when e is removed.
func (w *World) SetDestroyCallback(e Entity, callback EntityDestroyCallback) {
	w.entities.setDestroyCallback(e, callback)
}

// SetParent establishes a supplemented parent/child relationship; see
// SPEC_FULL.md §6.
func (w *World) SetParent(child, parent Entity, callback EntityDestroyCallback) {
	w.entities.setParent(child, parent, callback)
}

// Parent returns child's parent, if one was set and is still live.
func (w *World) Parent(child Entity) (Entity, bool) {
	return w.entities.parentOf(child)
}

// DebugString lists the component type names currently set in e's
// bitmask, grounded on the teacher's Entity.ComponentsAsString.
func (w *World) DebugString(e Entity) (string, error) {
	bm, err := w.entities.getBitmask(e)
	if err != nil {
		return "", err
	}
	w.registry.mu.RLock()
	defer w.registry.mu.RUnlock()
	names := make([]string, 0)
	for _, t := range w.registry.order {
		entry := w.registry.entries[t]
		if bm.ContainsAll(singleBit(entry.bit)) {
			names = append(names, t.String())
		}
	}
	return joinBracketed(names), nil
}

func singleBit(bit uint32) mask.Mask256 {
	var m mask.Mask256
	m.Mark(bit)
	return m
}

func joinBracketed(names []string) string {
	s := "["
	for i, n := range names {
		if i > 0 {
			s += ", "
		}
		s += n
	}
	return s + "]"
}

// CountMatching is a supplemented query-introspection feature
// (SPEC_FULL.md §6), grounded on the teacher's Cursor.TotalMatched.
// It reports how many live entities carry every one of the given
// component types, without constructing any access handles.
func (w *World) CountMatching(types ...reflect.Type) (int, error) {
	var m mask.Mask256
	for _, t := range types {
		bit, err := w.registry.bitFor(t)
		if err != nil {
			return 0, err
		}
		m.Mark(bit)
	}
	return len(w.entities.queryByBitmask(m)), nil
}

// Get constructs a single access handle synchronously, outside of any
// system dispatch — spec.md §4.I's get<HandleType>(), intended for
// driver-thread use (setup code, debugging, tests).
func Get[H accessHandle](w *World) (H, error) {
	var zero H
	ids, err := idsForHandle(w, zero)
	if err != nil {
		return zero, err
	}
	built, err := zero.build(w, ids)
	if err != nil {
		return zero, err
	}
	return built.(H), nil
}

func idsForHandle(w *World, h accessHandle) ([]EntityID, error) {
	if h.accessKind() != accessFiltered {
		return nil, nil
	}
	bit, err := w.registry.bitFor(h.componentType())
	if err != nil {
		return nil, err
	}
	var m mask.Mask256
	m.Mark(bit)
	return w.entities.queryByBitmask(m), nil
}
