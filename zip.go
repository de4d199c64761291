package ecsgrid

import "iter"

// Tuple2..Tuple9 carry the component elements a Zip combinator yields
// alongside the shared entity id, since Go range-over-func iterators
// only carry two values natively (entity, payload). Grounded on the
// same per-arity hand-expansion idiom _examples/edwinsyarief-lazyecs
// uses for GetComponent2..N, standing in for the Rust original's
// generate_bundle!/generate_query! macros (Go has no variadic generics
// to unify these into one definition).
type Tuple2[A, B any] struct {
	A A
	B B
}

type Tuple3[A, B, C any] struct {
	A A
	B B
	C C
}

type Tuple4[A, B, C, D any] struct {
	A A
	B B
	C C
	D D
}

type Tuple5[A, B, C, D, E any] struct {
	A A
	B B
	C C
	D D
	E E
}

type Tuple6[A, B, C, D, E, F any] struct {
	A A
	B B
	C C
	D D
	E E
	F F
}

type Tuple7[A, B, C, D, E, F, G any] struct {
	A A
	B B
	C C
	D D
	E E
	F F
	G G
}

type Tuple8[A, B, C, D, E, F, G, H any] struct {
	A A
	B B
	C C
	D D
	E E
	F F
	G G
	H H
}

type Tuple9[A, B, C, D, E, F, G, H, I any] struct {
	A A
	B B
	C C
	D D
	E E
	F F
	G G
	H H
	I I
}

// zipIDs is the shared invariant every Zip combinator relies on:
// spec.md §4.E guarantees all per-component iterators passed to a zip
// were constructed from the same filtered entity list, so they share
// length and id order. A length mismatch can only indicate internal
// corruption and panics rather than silently truncating.
func zipIDs(lens ...int) int {
	n := lens[0]
	for _, l := range lens[1:] {
		if l != n {
			panic("ecsgrid: zip combinator given iterators of differing length; this indicates internal corruption")
		}
	}
	return n
}

// readerAt is the minimal interface every ReadView/WriteView exposes
// that Zip needs: its filtered id list and per-id element lookup.
type readerAt[T any] interface {
	ids() []Entity
	at(Entity) T
}

func (v ReadView[T]) ids() []Entity { return v.ids }
func (v ReadView[T]) at(e Entity) Reader[T] {
	r, _ := v.Get(e)
	return r
}

func (v WriteView[T]) ids() []Entity { return v.ids }
func (v WriteView[T]) at(e Entity) Writer[T] {
	w, _ := v.Get(e)
	return w
}

// Zip2 yields (entity, tuple-of-elements) for every id shared by both
// views, in ascending order.
func Zip2[A, B any, VA readerAt[A], VB readerAt[B]](va VA, vb VB) iter.Seq2[Entity, Tuple2[A, B]] {
	return func(yield func(Entity, Tuple2[A, B]) bool) {
		ids := va.ids()
		_ = zipIDs(len(ids), len(vb.ids()))
		for _, id := range ids {
			if !yield(id, Tuple2[A, B]{A: va.at(id), B: vb.at(id)}) {
				return
			}
		}
	}
}

func Zip3[A, B, C any, VA readerAt[A], VB readerAt[B], VC readerAt[C]](va VA, vb VB, vc VC) iter.Seq2[Entity, Tuple3[A, B, C]] {
	return func(yield func(Entity, Tuple3[A, B, C]) bool) {
		ids := va.ids()
		_ = zipIDs(len(ids), len(vb.ids()), len(vc.ids()))
		for _, id := range ids {
			if !yield(id, Tuple3[A, B, C]{A: va.at(id), B: vb.at(id), C: vc.at(id)}) {
				return
			}
		}
	}
}

func Zip4[A, B, C, D any, VA readerAt[A], VB readerAt[B], VC readerAt[C], VD readerAt[D]](va VA, vb VB, vc VC, vd VD) iter.Seq2[Entity, Tuple4[A, B, C, D]] {
	return func(yield func(Entity, Tuple4[A, B, C, D]) bool) {
		ids := va.ids()
		_ = zipIDs(len(ids), len(vb.ids()), len(vc.ids()), len(vd.ids()))
		for _, id := range ids {
			if !yield(id, Tuple4[A, B, C, D]{A: va.at(id), B: vb.at(id), C: vc.at(id), D: vd.at(id)}) {
				return
			}
		}
	}
}

func Zip5[A, B, C, D, E any, VA readerAt[A], VB readerAt[B], VC readerAt[C], VD readerAt[D], VE readerAt[E]](va VA, vb VB, vc VC, vd VD, ve VE) iter.Seq2[Entity, Tuple5[A, B, C, D, E]] {
	return func(yield func(Entity, Tuple5[A, B, C, D, E]) bool) {
		ids := va.ids()
		_ = zipIDs(len(ids), len(vb.ids()), len(vc.ids()), len(vd.ids()), len(ve.ids()))
		for _, id := range ids {
			if !yield(id, Tuple5[A, B, C, D, E]{A: va.at(id), B: vb.at(id), C: vc.at(id), D: vd.at(id), E: ve.at(id)}) {
				return
			}
		}
	}
}

func Zip6[A, B, C, D, E, F any, VA readerAt[A], VB readerAt[B], VC readerAt[C], VD readerAt[D], VE readerAt[E], VF readerAt[F]](va VA, vb VB, vc VC, vd VD, ve VE, vf VF) iter.Seq2[Entity, Tuple6[A, B, C, D, E, F]] {
	return func(yield func(Entity, Tuple6[A, B, C, D, E, F]) bool) {
		ids := va.ids()
		_ = zipIDs(len(ids), len(vb.ids()), len(vc.ids()), len(vd.ids()), len(ve.ids()), len(vf.ids()))
		for _, id := range ids {
			if !yield(id, Tuple6[A, B, C, D, E, F]{A: va.at(id), B: vb.at(id), C: vc.at(id), D: vd.at(id), E: ve.at(id), F: vf.at(id)}) {
				return
			}
		}
	}
}

func Zip7[A, B, C, D, E, F, G any, VA readerAt[A], VB readerAt[B], VC readerAt[C], VD readerAt[D], VE readerAt[E], VF readerAt[F], VG readerAt[G]](va VA, vb VB, vc VC, vd VD, ve VE, vf VF, vg VG) iter.Seq2[Entity, Tuple7[A, B, C, D, E, F, G]] {
	return func(yield func(Entity, Tuple7[A, B, C, D, E, F, G]) bool) {
		ids := va.ids()
		_ = zipIDs(len(ids), len(vb.ids()), len(vc.ids()), len(vd.ids()), len(ve.ids()), len(vf.ids()), len(vg.ids()))
		for _, id := range ids {
			if !yield(id, Tuple7[A, B, C, D, E, F, G]{A: va.at(id), B: vb.at(id), C: vc.at(id), D: vd.at(id), E: ve.at(id), F: vf.at(id), G: vg.at(id)}) {
				return
			}
		}
	}
}

func Zip8[A, B, C, D, E, F, G, H any, VA readerAt[A], VB readerAt[B], VC readerAt[C], VD readerAt[D], VE readerAt[E], VF readerAt[F], VG readerAt[G], VH readerAt[H]](va VA, vb VB, vc VC, vd VD, ve VE, vf VF, vg VG, vh VH) iter.Seq2[Entity, Tuple8[A, B, C, D, E, F, G, H]] {
	return func(yield func(Entity, Tuple8[A, B, C, D, E, F, G, H]) bool) {
		ids := va.ids()
		_ = zipIDs(len(ids), len(vb.ids()), len(vc.ids()), len(vd.ids()), len(ve.ids()), len(vf.ids()), len(vg.ids()), len(vh.ids()))
		for _, id := range ids {
			if !yield(id, Tuple8[A, B, C, D, E, F, G, H]{A: va.at(id), B: vb.at(id), C: vc.at(id), D: vd.at(id), E: ve.at(id), F: vf.at(id), G: vg.at(id), H: vh.at(id)}) {
				return
			}
		}
	}
}

func Zip9[A, B, C, D, E, F, G, H, I any, VA readerAt[A], VB readerAt[B], VC readerAt[C], VD readerAt[D], VE readerAt[E], VF readerAt[F], VG readerAt[G], VH readerAt[H], VI readerAt[I]](va VA, vb VB, vc VC, vd VD, ve VE, vf VF, vg VG, vh VH, vi VI) iter.Seq2[Entity, Tuple9[A, B, C, D, E, F, G, H, I]] {
	return func(yield func(Entity, Tuple9[A, B, C, D, E, F, G, H, I]) bool) {
		ids := va.ids()
		_ = zipIDs(len(ids), len(vb.ids()), len(vc.ids()), len(vd.ids()), len(ve.ids()), len(vf.ids()), len(vg.ids()), len(vh.ids()), len(vi.ids()))
		for _, id := range ids {
			if !yield(id, Tuple9[A, B, C, D, E, F, G, H, I]{A: va.at(id), B: vb.at(id), C: vc.at(id), D: vd.at(id), E: ve.at(id), F: vf.at(id), G: vg.at(id), H: vh.at(id), I: vi.at(id)}) {
				return
			}
		}
	}
}
