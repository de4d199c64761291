package ecsgrid

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/TheBitDrifter/mask"
	"github.com/latticeforge/ecsgrid/internal/workerpool"
)

// Test component types, reused across the package's test files like
// the teacher's entity_test.go reuses Position/Velocity/Health.
type Position struct {
	X, Y float64
}

type Velocity struct {
	X, Y float64
}

type Health struct {
	Current, Max int
}

type IsPlayer struct{}

type Counter struct {
	N uint32
}

type Clock struct {
	T int
}

// syncPool runs every submitted task synchronously on the calling
// goroutine. Used where tests only care about the resulting state, not
// about genuine concurrency, keeping those tests deterministic without
// needing to wait on real worker goroutines.
type syncPool struct{}

func (syncPool) Submit(t workerpool.Task)       { t() }
func (syncPool) SubmitBatch(ts []workerpool.Task) {
	for _, t := range ts {
		t()
	}
}
func (syncPool) Start()                            {}
func (syncPool) Shutdown(ctx context.Context) error { return nil }

func newTestWorld() *World {
	return Factory.NewWorld(syncPool{})
}

func TestBitmaskCellAgreement(t *testing.T) {
	w := newTestWorld()
	Register[Health](w)
	Register[IsPlayer](w)

	e, err := AddEntity2(w, Health{Current: 20}, IsPlayer{})
	if err != nil {
		t.Fatalf("AddEntity2: %v", err)
	}

	bm, err := w.entities.getBitmask(e)
	if err != nil {
		t.Fatalf("getBitmask: %v", err)
	}

	healthBit, err := w.registry.bitFor(reflect.TypeFor[Health]())
	if err != nil {
		t.Fatalf("bitFor Health: %v", err)
	}
	playerBit, err := w.registry.bitFor(reflect.TypeFor[IsPlayer]())
	if err != nil {
		t.Fatalf("bitFor IsPlayer: %v", err)
	}

	if !bm.ContainsAll(singleBit(healthBit)) {
		t.Errorf("expected bitmask to contain Health bit")
	}
	if !bm.ContainsAll(singleBit(playerBit)) {
		t.Errorf("expected bitmask to contain IsPlayer bit")
	}

	healthCol, err := columnFor[Health](w.registry)
	if err != nil {
		t.Fatalf("columnFor Health: %v", err)
	}
	if _, ok := healthCol.get(int(e)); !ok {
		t.Errorf("expected Health cell to be installed for entity %d", e)
	}
}

func TestQueryByBitmaskOrderingAndMatch(t *testing.T) {
	w := newTestWorld()
	Register[Health](w)
	Register[IsPlayer](w)

	e1, _ := AddEntity1(w, Health{Current: 10})
	e2, _ := AddEntity2(w, Health{Current: 20}, IsPlayer{})
	e3, _ := AddEntity1(w, IsPlayer{})

	healthBit, _ := w.registry.bitFor(reflect.TypeFor[Health]())
	var want mask.Mask256
	want.Mark(healthBit)

	ids := w.entities.queryByBitmask(want)
	if len(ids) != 2 {
		t.Fatalf("expected 2 entities with Health, got %d", len(ids))
	}
	if ids[0] != e1 || ids[1] != e2 {
		t.Errorf("expected ascending order [%d %d], got %v", e1, e2, ids)
	}
	_ = e3
}

func TestRecycledIDRoundTrip(t *testing.T) {
	w := newTestWorld()
	type A struct{ V int }
	Register[A](w)

	e1, _ := AddEntity1(w, A{V: 1})
	e2, _ := AddEntity1(w, A{V: 2})
	e3, _ := AddEntity1(w, A{V: 3})
	_ = e1
	_ = e3

	if err := w.RemoveEntity(e2); err != nil {
		t.Fatalf("RemoveEntity: %v", err)
	}

	e4, err := AddEntity1(w, A{V: 4})
	if err != nil {
		t.Fatalf("AddEntity1: %v", err)
	}
	if e4 != e2 {
		t.Errorf("expected recycled id %d, got %d", e2, e4)
	}

	bm, err := w.entities.getBitmask(e4)
	if err != nil {
		t.Fatalf("getBitmask: %v", err)
	}
	bit, _ := w.registry.bitFor(reflect.TypeFor[A]())
	if !bm.ContainsAll(singleBit(bit)) {
		t.Errorf("recycled entity %d missing its freshly installed bit", e4)
	}
}

func TestZipLengthMatchesFilteredSet(t *testing.T) {
	w := newTestWorld()
	Register[Position](w)
	Register[Velocity](w)

	for i := 0; i < 5; i++ {
		if _, err := AddEntity2(w, Position{X: float64(i)}, Velocity{X: 1}); err != nil {
			t.Fatalf("AddEntity2: %v", err)
		}
	}
	// One entity with only Position, which must not appear in the zip.
	if _, err := AddEntity1(w, Position{X: 99}); err != nil {
		t.Fatalf("AddEntity1: %v", err)
	}

	count := 0
	token, err := RunSystem2(w, func(pos ReadView[Position], vel ReadView[Velocity]) {
		for range Zip2[Reader[Position], Reader[Velocity]](pos, vel) {
			count++
		}
	})
	if err != nil {
		t.Fatalf("RunSystem2: %v", err)
	}
	Wait(token)

	if count != 5 {
		t.Errorf("expected zip to yield 5 tuples, got %d", count)
	}
}

func TestPageSyncInvariant(t *testing.T) {
	w := newTestWorld()
	Register[Position](w)
	Register[Velocity](w)

	n := Config.PageSize()*2 + 17
	for i := 0; i < n; i++ {
		if _, err := AddEntity2(w, Position{}, Velocity{}); err != nil {
			t.Fatalf("AddEntity2 #%d: %v", i, err)
		}
	}

	posCol, _ := columnFor[Position](w.registry)
	velCol, _ := columnFor[Velocity](w.registry)
	bmPages := w.entities.bitmasks.pageCount()

	if posCol.pageCount() != velCol.pageCount() || posCol.pageCount() != bmPages {
		t.Errorf("page counts diverged: position=%d velocity=%d bitmask=%d",
			posCol.pageCount(), velCol.pageCount(), bmPages)
	}
}

// TestPageSyncInvariantUnevenBundles reproduces the case
// TestPageSyncInvariant's uniform bundles hide: a component type that
// is only ever added on its own must still stay page-count aligned
// with a type added on every entity, since systems index every column
// and the bitmask column by the same entity id.
func TestPageSyncInvariantUnevenBundles(t *testing.T) {
	w := newTestWorld()
	Register[Position](w)
	Register[Velocity](w)

	n := Config.PageSize()*2 + 17
	for i := 0; i < n; i++ {
		if _, err := AddEntity1(w, Position{}); err != nil {
			t.Fatalf("AddEntity1 #%d: %v", i, err)
		}
	}
	if _, err := AddEntity1(w, Velocity{}); err != nil {
		t.Fatalf("AddEntity1 Velocity: %v", err)
	}

	posCol, _ := columnFor[Position](w.registry)
	velCol, _ := columnFor[Velocity](w.registry)
	bmPages := w.entities.bitmasks.pageCount()

	if posCol.pageCount() != velCol.pageCount() || posCol.pageCount() != bmPages {
		t.Errorf("page counts diverged after uneven bundles: position=%d velocity=%d bitmask=%d",
			posCol.pageCount(), velCol.pageCount(), bmPages)
	}
}

func TestRemoveEntityTwiceDoesNotDoubleRecycle(t *testing.T) {
	w := newTestWorld()
	type A struct{ V int }
	Register[A](w)

	e1, _ := AddEntity1(w, A{V: 1})
	e2, _ := AddEntity1(w, A{V: 2})

	if err := w.RemoveEntity(e1); err != nil {
		t.Fatalf("first RemoveEntity: %v", err)
	}
	if err := w.RemoveEntity(e1); err != nil {
		t.Fatalf("second RemoveEntity on already-removed id returned an error: %v", err)
	}

	r1, err := AddEntity1(w, A{V: 3})
	if err != nil {
		t.Fatalf("AddEntity1 after removal: %v", err)
	}
	r2, err := AddEntity1(w, A{V: 4})
	if err != nil {
		t.Fatalf("AddEntity1 after removal: %v", err)
	}
	if r1 == r2 {
		t.Fatalf("double RemoveEntity caused id %d to be recycled twice, reissued as both %d and %d", e1, r1, r2)
	}
	_ = e2
}

func TestUnregisteredComponentFails(t *testing.T) {
	w := newTestWorld()
	type Unregistered struct{}
	if _, err := AddEntity1(w, Unregistered{}); err == nil {
		t.Fatal("expected UnregisteredComponentError, got nil")
	} else if _, ok := err.(UnregisteredComponentError); !ok {
		t.Fatalf("expected UnregisteredComponentError, got %T: %v", err, err)
	}
}

func TestMissingUniqueFails(t *testing.T) {
	w := newTestWorld()
	if _, err := getUnique[Clock](w.uniques); err == nil {
		t.Fatal("expected MissingUniqueError, got nil")
	} else if _, ok := err.(MissingUniqueError); !ok {
		t.Fatalf("expected MissingUniqueError, got %T: %v", err, err)
	}
}

func TestDuplicateComponentInBundleRejected(t *testing.T) {
	w := newTestWorld()
	Register[Position](w)
	if _, err := AddEntity2(w, Position{}, Position{}); err == nil {
		t.Fatal("expected DuplicateComponentError, got nil")
	} else if _, ok := err.(DuplicateComponentError); !ok {
		t.Fatalf("expected DuplicateComponentError, got %T: %v", err, err)
	}
}

// waitWithTimeout fails the test instead of hanging forever if token
// is never signaled, since RunSystem's contract promises completion.
func waitWithTimeout(t *testing.T, token *Token, d time.Duration) {
	t.Helper()
	select {
	case <-tokenDone(token):
	case <-time.After(d):
		t.Fatal("timed out waiting for token")
	}
}

func tokenDone(t *Token) <-chan struct{} {
	return t.signal
}
