package ecsgrid

import (
	"reflect"

	"github.com/TheBitDrifter/mask"
)

// checkDistinct rejects a bundle that lists the same component type
// more than once. spec.md §4.F leaves this behavior unspecified
// ("reject at compile time or reject at registration lookup"); ecsgrid
// rejects it at call time with DuplicateComponentError rather than
// silently last-writer-wins.
func checkDistinct(types ...reflect.Type) error {
	seen := make(map[reflect.Type]struct{}, len(types))
	for _, t := range types {
		if _, ok := seen[t]; ok {
			return DuplicateComponentError{Type: t}
		}
		seen[t] = struct{}{}
	}
	return nil
}

// syncIfGrew re-synchronizes every registered column's page count
// against its siblings (plus the entity table's bitmask column) when
// any field of the bundle just installed grew its own column past the
// page count every other column was already padded to. Without this,
// a component type that isn't present on every bundle would silently
// fall behind in page count, violating spec.md §3 invariant 1.
func syncIfGrew(w *World, grew bool) {
	if grew {
		w.registry.synchronizePages(w.entities.bitmasks)
	}
}

// AddEntity1 implements spec.md §4.F's add_entity contract for a
// single-component bundle: allocate an id, install the component,
// write the resulting bitmask once, return the entity. Page counts
// are re-synchronized afterward if installing the component grew its
// column.
func AddEntity1[A any](w *World, a A) (Entity, error) {
	id := w.entities.allocate()
	var m mask.Mask256
	grew, err := addComponent[A](w.registry, id, a, &m)
	if err != nil {
		return 0, err
	}
	w.entities.registerBitmask(id, m)
	syncIfGrew(w, grew)
	return id, nil
}

func AddEntity2[A, B any](w *World, a A, b B) (Entity, error) {
	if err := checkDistinct(reflect.TypeFor[A](), reflect.TypeFor[B]()); err != nil {
		return 0, err
	}
	id := w.entities.allocate()
	var m mask.Mask256
	var grew bool
	g, err := addComponent[A](w.registry, id, a, &m)
	grew = grew || g
	if err != nil {
		return 0, err
	}
	g, err = addComponent[B](w.registry, id, b, &m)
	grew = grew || g
	if err != nil {
		return 0, err
	}
	w.entities.registerBitmask(id, m)
	syncIfGrew(w, grew)
	return id, nil
}

func AddEntity3[A, B, C any](w *World, a A, b B, c C) (Entity, error) {
	if err := checkDistinct(reflect.TypeFor[A](), reflect.TypeFor[B](), reflect.TypeFor[C]()); err != nil {
		return 0, err
	}
	id := w.entities.allocate()
	var m mask.Mask256
	var grew bool
	g, err := addComponent[A](w.registry, id, a, &m)
	grew = grew || g
	if err != nil {
		return 0, err
	}
	g, err = addComponent[B](w.registry, id, b, &m)
	grew = grew || g
	if err != nil {
		return 0, err
	}
	g, err = addComponent[C](w.registry, id, c, &m)
	grew = grew || g
	if err != nil {
		return 0, err
	}
	w.entities.registerBitmask(id, m)
	syncIfGrew(w, grew)
	return id, nil
}

func AddEntity4[A, B, C, D any](w *World, a A, b B, c C, d D) (Entity, error) {
	if err := checkDistinct(reflect.TypeFor[A](), reflect.TypeFor[B](), reflect.TypeFor[C](), reflect.TypeFor[D]()); err != nil {
		return 0, err
	}
	id := w.entities.allocate()
	var m mask.Mask256
	var grew bool
	g, err := addComponent[A](w.registry, id, a, &m)
	grew = grew || g
	if err != nil {
		return 0, err
	}
	g, err = addComponent[B](w.registry, id, b, &m)
	grew = grew || g
	if err != nil {
		return 0, err
	}
	g, err = addComponent[C](w.registry, id, c, &m)
	grew = grew || g
	if err != nil {
		return 0, err
	}
	g, err = addComponent[D](w.registry, id, d, &m)
	grew = grew || g
	if err != nil {
		return 0, err
	}
	w.entities.registerBitmask(id, m)
	syncIfGrew(w, grew)
	return id, nil
}

func AddEntity5[A, B, C, D, E any](w *World, a A, b B, c C, d D, e E) (Entity, error) {
	if err := checkDistinct(reflect.TypeFor[A](), reflect.TypeFor[B](), reflect.TypeFor[C](), reflect.TypeFor[D](), reflect.TypeFor[E]()); err != nil {
		return 0, err
	}
	id := w.entities.allocate()
	var m mask.Mask256
	var grew bool
	g, err := addComponent[A](w.registry, id, a, &m)
	grew = grew || g
	if err != nil {
		return 0, err
	}
	g, err = addComponent[B](w.registry, id, b, &m)
	grew = grew || g
	if err != nil {
		return 0, err
	}
	g, err = addComponent[C](w.registry, id, c, &m)
	grew = grew || g
	if err != nil {
		return 0, err
	}
	g, err = addComponent[D](w.registry, id, d, &m)
	grew = grew || g
	if err != nil {
		return 0, err
	}
	g, err = addComponent[E](w.registry, id, e, &m)
	grew = grew || g
	if err != nil {
		return 0, err
	}
	w.entities.registerBitmask(id, m)
	syncIfGrew(w, grew)
	return id, nil
}

func AddEntity6[A, B, C, D, E, F any](w *World, a A, b B, c C, d D, e E, f F) (Entity, error) {
	if err := checkDistinct(reflect.TypeFor[A](), reflect.TypeFor[B](), reflect.TypeFor[C](), reflect.TypeFor[D](), reflect.TypeFor[E](), reflect.TypeFor[F]()); err != nil {
		return 0, err
	}
	id := w.entities.allocate()
	var m mask.Mask256
	var grew bool
	g, err := addComponent[A](w.registry, id, a, &m)
	grew = grew || g
	if err != nil {
		return 0, err
	}
	g, err = addComponent[B](w.registry, id, b, &m)
	grew = grew || g
	if err != nil {
		return 0, err
	}
	g, err = addComponent[C](w.registry, id, c, &m)
	grew = grew || g
	if err != nil {
		return 0, err
	}
	g, err = addComponent[D](w.registry, id, d, &m)
	grew = grew || g
	if err != nil {
		return 0, err
	}
	g, err = addComponent[E](w.registry, id, e, &m)
	grew = grew || g
	if err != nil {
		return 0, err
	}
	g, err = addComponent[F](w.registry, id, f, &m)
	grew = grew || g
	if err != nil {
		return 0, err
	}
	w.entities.registerBitmask(id, m)
	syncIfGrew(w, grew)
	return id, nil
}

func AddEntity7[A, B, C, D, E, F, G any](w *World, a A, b B, c C, d D, e E, f F, g G) (Entity, error) {
	if err := checkDistinct(reflect.TypeFor[A](), reflect.TypeFor[B](), reflect.TypeFor[C](), reflect.TypeFor[D](), reflect.TypeFor[E](), reflect.TypeFor[F](), reflect.TypeFor[G]()); err != nil {
		return 0, err
	}
	id := w.entities.allocate()
	var m mask.Mask256
	var grew bool
	gr, err := addComponent[A](w.registry, id, a, &m)
	grew = grew || gr
	if err != nil {
		return 0, err
	}
	gr, err = addComponent[B](w.registry, id, b, &m)
	grew = grew || gr
	if err != nil {
		return 0, err
	}
	gr, err = addComponent[C](w.registry, id, c, &m)
	grew = grew || gr
	if err != nil {
		return 0, err
	}
	gr, err = addComponent[D](w.registry, id, d, &m)
	grew = grew || gr
	if err != nil {
		return 0, err
	}
	gr, err = addComponent[E](w.registry, id, e, &m)
	grew = grew || gr
	if err != nil {
		return 0, err
	}
	gr, err = addComponent[F](w.registry, id, f, &m)
	grew = grew || gr
	if err != nil {
		return 0, err
	}
	gr, err = addComponent[G](w.registry, id, g, &m)
	grew = grew || gr
	if err != nil {
		return 0, err
	}
	w.entities.registerBitmask(id, m)
	syncIfGrew(w, grew)
	return id, nil
}

func AddEntity8[A, B, C, D, E, F, G, H any](w *World, a A, b B, c C, d D, e E, f F, g G, h H) (Entity, error) {
	if err := checkDistinct(reflect.TypeFor[A](), reflect.TypeFor[B](), reflect.TypeFor[C](), reflect.TypeFor[D](), reflect.TypeFor[E](), reflect.TypeFor[F](), reflect.TypeFor[G](), reflect.TypeFor[H]()); err != nil {
		return 0, err
	}
	id := w.entities.allocate()
	var m mask.Mask256
	var grew bool
	gr, err := addComponent[A](w.registry, id, a, &m)
	grew = grew || gr
	if err != nil {
		return 0, err
	}
	gr, err = addComponent[B](w.registry, id, b, &m)
	grew = grew || gr
	if err != nil {
		return 0, err
	}
	gr, err = addComponent[C](w.registry, id, c, &m)
	grew = grew || gr
	if err != nil {
		return 0, err
	}
	gr, err = addComponent[D](w.registry, id, d, &m)
	grew = grew || gr
	if err != nil {
		return 0, err
	}
	gr, err = addComponent[E](w.registry, id, e, &m)
	grew = grew || gr
	if err != nil {
		return 0, err
	}
	gr, err = addComponent[F](w.registry, id, f, &m)
	grew = grew || gr
	if err != nil {
		return 0, err
	}
	gr, err = addComponent[G](w.registry, id, g, &m)
	grew = grew || gr
	if err != nil {
		return 0, err
	}
	gr, err = addComponent[H](w.registry, id, h, &m)
	grew = grew || gr
	if err != nil {
		return 0, err
	}
	w.entities.registerBitmask(id, m)
	syncIfGrew(w, grew)
	return id, nil
}

func AddEntity9[A, B, C, D, E, F, G, H, I any](w *World, a A, b B, c C, d D, e E, f F, g G, h H, i I) (Entity, error) {
	if err := checkDistinct(reflect.TypeFor[A](), reflect.TypeFor[B](), reflect.TypeFor[C](), reflect.TypeFor[D](), reflect.TypeFor[E](), reflect.TypeFor[F](), reflect.TypeFor[G](), reflect.TypeFor[H](), reflect.TypeFor[I]()); err != nil {
		return 0, err
	}
	id := w.entities.allocate()
	var m mask.Mask256
	var grew bool
	gr, err := addComponent[A](w.registry, id, a, &m)
	grew = grew || gr
	if err != nil {
		return 0, err
	}
	gr, err = addComponent[B](w.registry, id, b, &m)
	grew = grew || gr
	if err != nil {
		return 0, err
	}
	gr, err = addComponent[C](w.registry, id, c, &m)
	grew = grew || gr
	if err != nil {
		return 0, err
	}
	gr, err = addComponent[D](w.registry, id, d, &m)
	grew = grew || gr
	if err != nil {
		return 0, err
	}
	gr, err = addComponent[E](w.registry, id, e, &m)
	grew = grew || gr
	if err != nil {
		return 0, err
	}
	gr, err = addComponent[F](w.registry, id, f, &m)
	grew = grew || gr
	if err != nil {
		return 0, err
	}
	gr, err = addComponent[G](w.registry, id, g, &m)
	grew = grew || gr
	if err != nil {
		return 0, err
	}
	gr, err = addComponent[H](w.registry, id, h, &m)
	grew = grew || gr
	if err != nil {
		return 0, err
	}
	gr, err = addComponent[I](w.registry, id, i, &m)
	grew = grew || gr
	if err != nil {
		return 0, err
	}
	w.entities.registerBitmask(id, m)
	syncIfGrew(w, grew)
	return id, nil
}
