package ecsgrid

import (
	"sync"
	"sync/atomic"
)

// page is one fixed-size block of cells within a column. Grounded on
// original_source/crates/utils/src/block_vec.rs's BlockVec<T, N>: a
// sequence of fixed-size blocks, indexed by i/N at offset i%N, never
// moved or shrunk once allocated.
type page[T any] struct {
	cells []cellSlot[T]
}

// columnErased is the type-erased surface the registry and page
// synchronization need: enough to grow a column and inspect its shape
// without knowing its element type. Every *column[T] implements it.
// This replaces the vtable-per-column spec.md §9 mentions as the
// C++-flavored option; a small method-set interface is the idiomatic
// Go equivalent.
type columnErased interface {
	pageCount() int
	appendEmptyPages(n int)
	logicalLen() int
	clearCell(i int)
}

// column is a paged, per-type store supporting concurrent reads/writes
// at cell granularity while the backing page vector may grow. The
// column-level RWMutex (spec.md §3's "RwLock over the page vector")
// protects only the *page slice itself*: its length and the page
// pointers. Once a page pointer is read out from under the lock, cell
// access goes through the cell's own locks exclusively (spec.md §5
// "Growth under read locks").
type column[T any] struct {
	mu       sync.RWMutex
	pageSize int
	pages    []*page[T]
	maxIndex atomic.Int64 // highest index+1 ever installed; drives logicalLen()
}

// newColumn creates a column with the page size captured from Config
// at construction time; later calls to Config.SetPageSize do not
// retroactively resize existing columns.
func newColumn[T any]() *column[T] {
	return &column[T]{pageSize: Config.PageSize()}
}

func (c *column[T]) pageIndex(i int) (pageIdx, offset int) {
	return i / c.pageSize, i % c.pageSize
}

func (c *column[T]) newPage() *page[T] {
	return &page[T]{cells: make([]cellSlot[T], c.pageSize)}
}

// appendEmptyPages grows the page vector by n empty pages. Guarded by
// the column-level write lock; per spec.md §4.A reads never allocate.
func (c *column[T]) appendEmptyPages(n int) {
	if n <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := 0; i < n; i++ {
		c.pages = append(c.pages, c.newPage())
	}
}

// pageCount reports the number of allocated pages, read under the
// column's read lock so it can be compared safely against sibling
// columns during page synchronization.
func (c *column[T]) pageCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pages)
}

// logicalLen reports one past the highest index ever installed via
// set. Used as the scan bound for query_by_bitmask.
func (c *column[T]) logicalLen() int {
	return int(c.maxIndex.Load())
}

func (c *column[T]) bumpMaxIndex(i int) {
	for {
		cur := c.maxIndex.Load()
		if int64(i+1) <= cur {
			return
		}
		if c.maxIndex.CompareAndSwap(cur, int64(i+1)) {
			return
		}
	}
}

// get returns the value at i and whether the cell is installed.
// Indices beyond the allocated page range are reported as empty
// (spec.md §4.A: "Element access beyond allocated pages yields empty
// for get"), never an error — that distinction is getInBounds's job.
func (c *column[T]) get(i int) (T, bool) {
	slot, ok := c.slotFor(i)
	if !ok {
		var zero T
		return zero, false
	}
	return slot.read()
}

// getInBounds is get's counterpart that distinguishes "no page
// allocated for this index yet" (outOfBoundsError) from "page
// allocated, cell currently empty" (zero value, ok=false). Writers use
// this distinction to know whether they must grow under a write lock.
func (c *column[T]) getInBounds(i int) (T, bool, error) {
	c.mu.RLock()
	pageIdx, offset := c.pageIndex(i)
	if pageIdx >= len(c.pages) {
		c.mu.RUnlock()
		var zero T
		return zero, false, outOfBoundsError{index: i}
	}
	p := c.pages[pageIdx]
	c.mu.RUnlock()
	v, ok := p.cells[offset].read()
	return v, ok, nil
}

// slotFor returns the cell slot backing index i, or false if no page
// has been allocated that far yet.
func (c *column[T]) slotFor(i int) (*cellSlot[T], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	pageIdx, offset := c.pageIndex(i)
	if pageIdx >= len(c.pages) {
		return nil, false
	}
	return &c.pages[pageIdx].cells[offset], true
}

// growTo ensures the page vector covers index i, appending pages as
// needed, and returns the slot for i plus whether growth occurred.
func (c *column[T]) growTo(i int) (*cellSlot[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pageIdx, offset := c.pageIndex(i)
	grew := false
	for pageIdx >= len(c.pages) {
		c.pages = append(c.pages, c.newPage())
		grew = true
	}
	return &c.pages[pageIdx].cells[offset], grew
}

// set installs or replaces the value at index i, growing the page
// vector if needed, and reports whether growth occurred. This is the
// column-level primitive spec.md §4.A names `set(cell, i) -> did_grow`;
// the registry-level add_component contract (spec.md §4.B) layers the
// registry/column lock escalation logic on top of getInBounds/set.
func (c *column[T]) set(i int, v T) (didGrow bool) {
	if _, ok, err := c.getInBounds(i); err == nil {
		slot, _ := c.slotFor(i)
		slot.installOrReplace(v)
		_ = ok
		c.bumpMaxIndex(i)
		return false
	}
	slot, grew := c.growTo(i)
	slot.installOrReplace(v)
	c.bumpMaxIndex(i)
	return grew
}

// clear empties the cell at i, if a page has been allocated that far.
// No-op on out-of-range indices (mirrors remove_entity's no-op on
// unknown entities).
func (c *column[T]) clear(i int) {
	slot, ok := c.slotFor(i)
	if !ok {
		return
	}
	slot.clear()
}

// clearCell is clear's type-erased counterpart, satisfying
// columnErased so the registry can empty a cell during RemoveEntity
// without knowing the column's element type.
func (c *column[T]) clearCell(i int) {
	c.clear(i)
}
