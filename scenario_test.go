package ecsgrid

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/latticeforge/ecsgrid/internal/workerpool"
)

func newRealPoolWorld(t *testing.T) (*World, func()) {
	t.Helper()
	pool := workerpool.New(workerpool.Options{Workers: 4})
	pool.Start()
	w := Factory.NewWorld(pool)
	return w, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = pool.Shutdown(ctx)
	}
}

// TestScenario1SingleComponentIteration mirrors spec.md §8 scenario 1:
// summing Health across three entities, two of which carry it.
func TestScenario1SingleComponentIteration(t *testing.T) {
	w, done := newRealPoolWorld(t)
	defer done()

	Register[Health](w)
	Register[IsPlayer](w)

	if _, err := AddEntity1(w, Health{Current: 10}); err != nil {
		t.Fatal(err)
	}
	if _, err := AddEntity2(w, Health{Current: 20}, IsPlayer{}); err != nil {
		t.Fatal(err)
	}
	if _, err := AddEntity1(w, IsPlayer{}); err != nil {
		t.Fatal(err)
	}

	var sum int
	var mu sync.Mutex
	readers := 0
	token, err := RunSystem1(w, func(r ReadView[Health]) {
		for _, reader := range r.All() {
			g := reader.Read()
			mu.Lock()
			sum += g.Value().Current
			readers++
			mu.Unlock()
			g.Release()
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	waitWithTimeout(t, token, time.Second)

	if sum != 30 {
		t.Errorf("expected sum 30, got %d", sum)
	}
	if readers != 2 {
		t.Errorf("expected 2 readers, got %d", readers)
	}
}

// TestScenario2FilteredIntersection continues scenario 1's state with a
// two-handle system: only the entity carrying both components matches.
func TestScenario2FilteredIntersection(t *testing.T) {
	w, done := newRealPoolWorld(t)
	defer done()

	Register[Health](w)
	Register[IsPlayer](w)

	AddEntity1(w, Health{Current: 10})
	AddEntity2(w, Health{Current: 20}, IsPlayer{})
	AddEntity1(w, IsPlayer{})

	var pairs int
	var lastHealth int
	token, err := RunSystem2(w, func(h ReadView[Health], p ReadView[IsPlayer]) {
		for _, tup := range Zip2[Reader[Health], Reader[IsPlayer]](h, p) {
			g := tup.A.Read()
			lastHealth = g.Value().Current
			g.Release()
			pairs++
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	waitWithTimeout(t, token, time.Second)

	if pairs != 1 {
		t.Fatalf("expected exactly 1 pair, got %d", pairs)
	}
	if lastHealth != 20 {
		t.Errorf("expected Health == 20, got %d", lastHealth)
	}
}

// TestScenario3WriteThenRead mirrors spec.md §8 scenario 3: a write
// system followed, after wait, by a read system that sums the result.
func TestScenario3WriteThenRead(t *testing.T) {
	w, done := newRealPoolWorld(t)
	defer done()

	Register[Counter](w)
	for i := 0; i < 100; i++ {
		if _, err := AddEntity1(w, Counter{N: 0}); err != nil {
			t.Fatal(err)
		}
	}

	writeToken, err := RunSystem1(w, func(wv WriteView[Counter]) {
		for _, writer := range wv.All() {
			g := writer.Write()
			g.Value().N = 42
			g.Release()
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	waitWithTimeout(t, writeToken, time.Second)

	var sum uint32
	var mu sync.Mutex
	readToken, err := RunSystem1(w, func(rv ReadView[Counter]) {
		for _, reader := range rv.All() {
			g := reader.Read()
			mu.Lock()
			sum += g.Value().N
			mu.Unlock()
			g.Release()
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	waitWithTimeout(t, readToken, time.Second)

	if sum != 4200 {
		t.Errorf("expected sum 4200, got %d", sum)
	}
}

// TestScenario4RemovalHidesEntity mirrors spec.md §8 scenario 4: a
// removed entity disappears from scans and its id is recycled.
func TestScenario4RemovalHidesEntity(t *testing.T) {
	w := newTestWorld()
	type A struct{}
	Register[A](w)

	e1, _ := AddEntity1(w, A{})
	e2, _ := AddEntity1(w, A{})
	e3, _ := AddEntity1(w, A{})

	if err := w.RemoveEntity(e2); err != nil {
		t.Fatal(err)
	}

	count := 0
	token, err := RunSystem1(w, func(r ReadView[A]) {
		count = r.Len()
	})
	if err != nil {
		t.Fatal(err)
	}
	Wait(token)
	if count != 2 {
		t.Fatalf("expected 2 live entities after removal, got %d", count)
	}

	e4, err := AddEntity1(w, A{})
	if err != nil {
		t.Fatal(err)
	}
	if e4 != e2 {
		t.Errorf("expected reused id %d, got %d", e2, e4)
	}

	token, err = RunSystem1(w, func(r ReadView[A]) {
		count = r.Len()
	})
	if err != nil {
		t.Fatal(err)
	}
	Wait(token)
	if count != 3 {
		t.Errorf("expected 3 live entities after reinsertion, got %d", count)
	}
	_ = e1
	_ = e3
}

// TestScenario5UniqueReadWrite mirrors spec.md §8 scenario 5.
func TestScenario5UniqueReadWrite(t *testing.T) {
	w, done := newRealPoolWorld(t)
	defer done()

	RegisterUnique(w, Clock{T: 0})

	writeToken, err := RunSystem1(w, func(u UniqueWrite[Clock]) {
		if err := u.Write(Clock{T: 5}); err != nil {
			t.Error(err)
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	waitWithTimeout(t, writeToken, time.Second)

	var got int
	readToken, err := RunSystem1(w, func(u UniqueRead[Clock]) {
		c, err := u.Read()
		if err != nil {
			t.Error(err)
			return
		}
		got = c.T
	})
	if err != nil {
		t.Fatal(err)
	}
	waitWithTimeout(t, readToken, time.Second)

	if got != 5 {
		t.Errorf("expected Clock.T == 5, got %d", got)
	}
}

// TestScenario6ParallelBarrier mirrors spec.md §8 scenario 6: wait_all
// only returns after every one of three systems has signaled.
func TestScenario6ParallelBarrier(t *testing.T) {
	w, done := newRealPoolWorld(t)
	defer done()

	type Tag struct{ N int }
	Register[Tag](w)
	AddEntity1(w, Tag{N: 1})

	var mu sync.Mutex
	var log []int

	run := func(id int) *Token {
		token, err := RunSystem1(w, func(r ReadView[Tag]) {
			mu.Lock()
			log = append(log, id)
			mu.Unlock()
		})
		if err != nil {
			t.Fatal(err)
		}
		return token
	}

	a := run(1)
	b := run(2)
	c := run(3)
	WaitAll(a, b, c)

	mu.Lock()
	defer mu.Unlock()
	if len(log) != 3 {
		t.Fatalf("expected 3 log entries after wait_all, got %d", len(log))
	}
}

func TestWaitAllIdempotent(t *testing.T) {
	w, done := newRealPoolWorld(t)
	defer done()

	type Tag struct{}
	Register[Tag](w)
	AddEntity1(w, Tag{})

	token, err := RunSystem1(w, func(r ReadView[Tag]) {})
	if err != nil {
		t.Fatal(err)
	}

	WaitAll(token)
	WaitAll(token) // second call must also return immediately
}

func TestConcurrentAddEntityStress(t *testing.T) {
	w := newTestWorld()
	type Tag struct{ Owner int }
	Register[Tag](w)

	const goroutines = 8
	const perGoroutine = 200

	var wg sync.WaitGroup
	ids := make([][]EntityID, goroutines)
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			local := make([]EntityID, 0, perGoroutine)
			for i := 0; i < perGoroutine; i++ {
				id, err := AddEntity1(w, Tag{Owner: g})
				if err != nil {
					t.Error(err)
					return
				}
				local = append(local, id)
			}
			ids[g] = local
		}(g)
	}
	wg.Wait()

	seen := make(map[EntityID]bool)
	for _, group := range ids {
		for _, id := range group {
			if seen[id] {
				t.Fatalf("duplicate entity id %d", id)
			}
			seen[id] = true
			col, err := columnFor[Tag](w.registry)
			if err != nil {
				t.Fatal(err)
			}
			if _, ok := col.get(int(id)); !ok {
				t.Fatalf("entity %d missing its Tag cell", id)
			}
		}
	}
	if len(seen) != goroutines*perGoroutine {
		t.Fatalf("expected %d entities, got %d", goroutines*perGoroutine, len(seen))
	}
}
