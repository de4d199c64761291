package ecsgrid

import (
	"iter"
	"reflect"
	"slices"

	"github.com/TheBitDrifter/bark"
	"github.com/TheBitDrifter/mask"
)

// accessKind distinguishes filtered (bit-bearing) access handles from
// unique handles during dispatch, per spec.md §4.G step 1.
type accessKind int

const (
	accessFiltered accessKind = iota
	accessUnique
)

// accessHandle is the compile-time-checked, runtime-dispatched contract
// every system parameter type satisfies. build is called once per
// dispatch with the world's registry/unique store and, for filtered
// handles, the already-computed ordered entity id list. Grounded on
// the teacher's AccessibleComponent[T] pattern (component_accessor.go)
// generalized from "one table accessor" to "one of four handle kinds".
type accessHandle interface {
	accessKind() accessKind
	componentType() reflect.Type
	build(w *World, ids []EntityID) (any, error)
}

// Reader is bound to one entity's cell in a ReadView. Read acquires
// the cell's inner lock in shared mode and returns a scoped guard.
type Reader[T any] struct {
	entity Entity
	slot   *cellSlot[T]
}

// ReadGuard is the scoped shared-mode view spec.md §4.E calls "a scoped
// guard yielding const T&". Release must be called exactly once.
type ReadGuard[T any] struct {
	val *cellValue[T]
}

func (g ReadGuard[T]) Value() T {
	return g.val.v
}

// Release unlocks the guard's shared hold on the cell's inner value.
func (g ReadGuard[T]) Release() {
	g.val.mu.RUnlock()
}

// Read acquires a shared read guard over this reader's cell. Panics
// with MissingExpectedCellError if the bitmask contract was violated:
// the entity was supposed to own this component but the cell is empty,
// which can only indicate a concurrent-mutation bug (spec.md §9).
func (r Reader[T]) Read() ReadGuard[T] {
	val := r.slot.reader()
	if val == nil {
		var zero T
		panic(bark.AddTrace(MissingExpectedCellError{Entity: r.entity, Type: reflect.TypeOf(zero)}))
	}
	val.mu.RLock()
	return ReadGuard[T]{val: val}
}

// Writer is WriteView's per-entity element; Write acquires the
// cell's inner lock exclusively.
type Writer[T any] struct {
	entity Entity
	slot   *cellSlot[T]
}

// WriteGuard is the scoped exclusive-mode view of the cell's value.
type WriteGuard[T any] struct {
	val *cellValue[T]
}

func (g WriteGuard[T]) Value() *T {
	return &g.val.v
}

func (g WriteGuard[T]) Release() {
	g.val.mu.Unlock()
}

func (w Writer[T]) Write() WriteGuard[T] {
	val := w.slot.reader()
	if val == nil {
		var zero T
		panic(bark.AddTrace(MissingExpectedCellError{Entity: w.entity, Type: reflect.TypeOf(zero)}))
	}
	val.mu.Lock()
	return WriteGuard[T]{val: val}
}

// ReadView is constructed from a column of T plus the ordered entity
// id list a system's combined filter selected. It exposes a lazy,
// single-pass iterator (.All()) in addition to random Get by id.
type ReadView[T any] struct {
	column *column[T]
	ids    []EntityID
}

func (v ReadView[T]) accessKind() accessKind        { return accessFiltered }
func (v ReadView[T]) componentType() reflect.Type   { return reflect.TypeFor[T]() }
func (v ReadView[T]) build(w *World, ids []EntityID) (any, error) {
	col, err := columnFor[T](w.registry)
	if err != nil {
		return nil, err
	}
	return ReadView[T]{column: col, ids: ids}, nil
}

// Get returns a Reader bound to entity e, and whether e is part of
// this view's filtered id list. It does not itself check the cell.
func (v ReadView[T]) Get(e Entity) (Reader[T], bool) {
	if _, found := slices.BinarySearch(v.ids, e); !found {
		return Reader[T]{}, false
	}
	slot, ok := v.column.slotFor(int(e))
	if !ok {
		return Reader[T]{}, false
	}
	return Reader[T]{entity: e, slot: slot}, true
}

// All lazily yields (entity, Reader[T]) for every id in the view's
// filtered list, in ascending order. A range-over-func iterator,
// matching the teacher's cursor.go/api.go use of iter.Seq2 for
// single-pass table scans.
func (v ReadView[T]) All() iter.Seq2[Entity, Reader[T]] {
	return func(yield func(Entity, Reader[T]) bool) {
		for _, id := range v.ids {
			slot, ok := v.column.slotFor(int(id))
			if !ok {
				panic(bark.AddTrace(MissingExpectedCellError{Entity: id, Type: reflect.TypeFor[T]()}))
			}
			if !yield(id, Reader[T]{entity: id, slot: slot}) {
				return
			}
		}
	}
}

// Len reports the number of entities this view was constructed over.
func (v ReadView[T]) Len() int { return len(v.ids) }

// WriteView mirrors ReadView but yields Writer[T] elements.
type WriteView[T any] struct {
	column *column[T]
	ids    []EntityID
}

func (v WriteView[T]) accessKind() accessKind      { return accessFiltered }
func (v WriteView[T]) componentType() reflect.Type { return reflect.TypeFor[T]() }
func (v WriteView[T]) build(w *World, ids []EntityID) (any, error) {
	col, err := columnFor[T](w.registry)
	if err != nil {
		return nil, err
	}
	return WriteView[T]{column: col, ids: ids}, nil
}

func (v WriteView[T]) Get(e Entity) (Writer[T], bool) {
	if _, found := slices.BinarySearch(v.ids, e); !found {
		return Writer[T]{}, false
	}
	slot, ok := v.column.slotFor(int(e))
	if !ok {
		return Writer[T]{}, false
	}
	return Writer[T]{entity: e, slot: slot}, true
}

func (v WriteView[T]) All() iter.Seq2[Entity, Writer[T]] {
	return func(yield func(Entity, Writer[T]) bool) {
		for _, id := range v.ids {
			slot, ok := v.column.slotFor(int(id))
			if !ok {
				panic(bark.AddTrace(MissingExpectedCellError{Entity: id, Type: reflect.TypeFor[T]()}))
			}
			if !yield(id, Writer[T]{entity: id, slot: slot}) {
				return
			}
		}
	}
}

func (v WriteView[T]) Len() int { return len(v.ids) }

// UniqueRead is a system parameter requesting shared access to the
// world's single instance of T. Unlike ReadView it contributes no bits
// to the dispatch filter (spec.md §4.G step 1: "unique or filtered").
type UniqueRead[T any] struct {
	store *uniqueStore
}

func (u UniqueRead[T]) accessKind() accessKind      { return accessUnique }
func (u UniqueRead[T]) componentType() reflect.Type { return reflect.TypeFor[T]() }
func (u UniqueRead[T]) build(w *World, ids []EntityID) (any, error) {
	if _, err := getUnique[T](w.uniques); err != nil {
		return nil, err
	}
	return UniqueRead[T]{store: w.uniques}, nil
}

func (u UniqueRead[T]) Read() (T, error) {
	return getUnique[T](u.store)
}

// UniqueWrite is the exclusive counterpart of UniqueRead.
type UniqueWrite[T any] struct {
	store *uniqueStore
}

func (u UniqueWrite[T]) accessKind() accessKind      { return accessUnique }
func (u UniqueWrite[T]) componentType() reflect.Type { return reflect.TypeFor[T]() }
func (u UniqueWrite[T]) build(w *World, ids []EntityID) (any, error) {
	if _, err := getUnique[T](w.uniques); err != nil {
		return nil, err
	}
	return UniqueWrite[T]{store: w.uniques}, nil
}

func (u UniqueWrite[T]) Read() (T, error) {
	return getUnique[T](u.store)
}

func (u UniqueWrite[T]) Write(v T) error {
	return setUnique[T](u.store, v)
}

// bitOf returns the component bit a filtered access handle contributes
// to the dispatch filter, or (0, false) for unique handles.
func bitOf(w *World, h accessHandle) (uint32, bool, error) {
	if h.accessKind() != accessFiltered {
		return 0, false, nil
	}
	bit, err := w.registry.bitFor(h.componentType())
	if err != nil {
		return 0, false, err
	}
	return bit, true, nil
}

// buildFilterMask ORs together the bits of every filtered handle among
// handles, per spec.md §4.G step 2.
func buildFilterMask(w *World, handles []accessHandle) (mask.Mask256, error) {
	var m mask.Mask256
	for _, h := range handles {
		bit, filtered, err := bitOf(w, h)
		if err != nil {
			return m, err
		}
		if filtered {
			m.Mark(bit)
		}
	}
	return m, nil
}
