package ecsgrid

// dispatch implements spec.md §4.G's shared scheduler contract for any
// number of handle parameters: OR together the filtered handles' bits,
// query the entity table once, build each handle from the shared id
// list (or the unique store), post one closure to the pool, and return
// its token immediately. invoke receives the already-built handles and
// calls the user's function; the submitted closure signals the token
// once invoke returns. Every RunSystemN is a thin, arity-specific wrapper around
// this so the dispatch contract itself is written exactly once.
func dispatch(w *World, handles []accessHandle, invoke func(built []any)) (*Token, error) {
	filterMask, err := buildFilterMask(w, handles)
	if err != nil {
		return nil, err
	}
	ids := w.entities.queryByBitmask(filterMask)

	built := make([]any, len(handles))
	for i, h := range handles {
		var hids []EntityID
		if h.accessKind() == accessFiltered {
			hids = ids
		}
		v, err := h.build(w, hids)
		if err != nil {
			return nil, err
		}
		built[i] = v
	}

	token := NewToken()
	w.pool.Submit(func() {
		defer token.Signal()
		invoke(built)
	})
	return token, nil
}

// RunSystem1 dispatches fn, whose single parameter is an access
// handle, to the World's pool and returns a completion token
// immediately without waiting.
func RunSystem1[A accessHandle](w *World, fn func(A)) (*Token, error) {
	var a A
	return dispatch(w, []accessHandle{a}, func(built []any) {
		fn(built[0].(A))
	})
}

func RunSystem2[A, B accessHandle](w *World, fn func(A, B)) (*Token, error) {
	var a A
	var b B
	return dispatch(w, []accessHandle{a, b}, func(built []any) {
		fn(built[0].(A), built[1].(B))
	})
}

func RunSystem3[A, B, C accessHandle](w *World, fn func(A, B, C)) (*Token, error) {
	var a A
	var b B
	var c C
	return dispatch(w, []accessHandle{a, b, c}, func(built []any) {
		fn(built[0].(A), built[1].(B), built[2].(C))
	})
}

func RunSystem4[A, B, C, D accessHandle](w *World, fn func(A, B, C, D)) (*Token, error) {
	var a A
	var b B
	var c C
	var d D
	return dispatch(w, []accessHandle{a, b, c, d}, func(built []any) {
		fn(built[0].(A), built[1].(B), built[2].(C), built[3].(D))
	})
}

func RunSystem5[A, B, C, D, E accessHandle](w *World, fn func(A, B, C, D, E)) (*Token, error) {
	var a A
	var b B
	var c C
	var d D
	var e E
	return dispatch(w, []accessHandle{a, b, c, d, e}, func(built []any) {
		fn(built[0].(A), built[1].(B), built[2].(C), built[3].(D), built[4].(E))
	})
}

func RunSystem6[A, B, C, D, E, F accessHandle](w *World, fn func(A, B, C, D, E, F)) (*Token, error) {
	var a A
	var b B
	var c C
	var d D
	var e E
	var f F
	return dispatch(w, []accessHandle{a, b, c, d, e, f}, func(built []any) {
		fn(built[0].(A), built[1].(B), built[2].(C), built[3].(D), built[4].(E), built[5].(F))
	})
}

func RunSystem7[A, B, C, D, E, F, G accessHandle](w *World, fn func(A, B, C, D, E, F, G)) (*Token, error) {
	var a A
	var b B
	var c C
	var d D
	var e E
	var f F
	var g G
	return dispatch(w, []accessHandle{a, b, c, d, e, f, g}, func(built []any) {
		fn(built[0].(A), built[1].(B), built[2].(C), built[3].(D), built[4].(E), built[5].(F), built[6].(G))
	})
}

func RunSystem8[A, B, C, D, E, F, G, H accessHandle](w *World, fn func(A, B, C, D, E, F, G, H)) (*Token, error) {
	var a A
	var b B
	var c C
	var d D
	var e E
	var f F
	var g G
	var h H
	return dispatch(w, []accessHandle{a, b, c, d, e, f, g, h}, func(built []any) {
		fn(built[0].(A), built[1].(B), built[2].(C), built[3].(D), built[4].(E), built[5].(F), built[6].(G), built[7].(H))
	})
}

func RunSystem9[A, B, C, D, E, F, G, H, I accessHandle](w *World, fn func(A, B, C, D, E, F, G, H, I)) (*Token, error) {
	var a A
	var b B
	var c C
	var d D
	var e E
	var f F
	var g G
	var h H
	var i I
	return dispatch(w, []accessHandle{a, b, c, d, e, f, g, h, i}, func(built []any) {
		fn(built[0].(A), built[1].(B), built[2].(C), built[3].(D), built[4].(E), built[5].(F), built[6].(G), built[7].(H), built[8].(I))
	})
}

// RunSystemWithData1 is the with-data variant spec.md §4.G describes:
// identical dispatch semantics, with data passed as fn's first
// argument.
func RunSystemWithData1[Data any, A accessHandle](w *World, data Data, fn func(Data, A)) (*Token, error) {
	var a A
	return dispatch(w, []accessHandle{a}, func(built []any) {
		fn(data, built[0].(A))
	})
}

func RunSystemWithData2[Data any, A, B accessHandle](w *World, data Data, fn func(Data, A, B)) (*Token, error) {
	var a A
	var b B
	return dispatch(w, []accessHandle{a, b}, func(built []any) {
		fn(data, built[0].(A), built[1].(B))
	})
}

func RunSystemWithData3[Data any, A, B, C accessHandle](w *World, data Data, fn func(Data, A, B, C)) (*Token, error) {
	var a A
	var b B
	var c C
	return dispatch(w, []accessHandle{a, b, c}, func(built []any) {
		fn(data, built[0].(A), built[1].(B), built[2].(C))
	})
}

func RunSystemWithData4[Data any, A, B, C, D accessHandle](w *World, data Data, fn func(Data, A, B, C, D)) (*Token, error) {
	var a A
	var b B
	var c C
	var d D
	return dispatch(w, []accessHandle{a, b, c, d}, func(built []any) {
		fn(data, built[0].(A), built[1].(B), built[2].(C), built[3].(D))
	})
}

func RunSystemWithData5[Data any, A, B, C, D, E accessHandle](w *World, data Data, fn func(Data, A, B, C, D, E)) (*Token, error) {
	var a A
	var b B
	var c C
	var d D
	var e E
	return dispatch(w, []accessHandle{a, b, c, d, e}, func(built []any) {
		fn(data, built[0].(A), built[1].(B), built[2].(C), built[3].(D), built[4].(E))
	})
}

func RunSystemWithData6[Data any, A, B, C, D, E, F accessHandle](w *World, data Data, fn func(Data, A, B, C, D, E, F)) (*Token, error) {
	var a A
	var b B
	var c C
	var d D
	var e E
	var f F
	return dispatch(w, []accessHandle{a, b, c, d, e, f}, func(built []any) {
		fn(data, built[0].(A), built[1].(B), built[2].(C), built[3].(D), built[4].(E), built[5].(F))
	})
}

func RunSystemWithData7[Data any, A, B, C, D, E, F, G accessHandle](w *World, data Data, fn func(Data, A, B, C, D, E, F, G)) (*Token, error) {
	var a A
	var b B
	var c C
	var d D
	var e E
	var f F
	var g G
	return dispatch(w, []accessHandle{a, b, c, d, e, f, g}, func(built []any) {
		fn(data, built[0].(A), built[1].(B), built[2].(C), built[3].(D), built[4].(E), built[5].(F), built[6].(G))
	})
}

func RunSystemWithData8[Data any, A, B, C, D, E, F, G, H accessHandle](w *World, data Data, fn func(Data, A, B, C, D, E, F, G, H)) (*Token, error) {
	var a A
	var b B
	var c C
	var d D
	var e E
	var f F
	var g G
	var h H
	return dispatch(w, []accessHandle{a, b, c, d, e, f, g, h}, func(built []any) {
		fn(data, built[0].(A), built[1].(B), built[2].(C), built[3].(D), built[4].(E), built[5].(F), built[6].(G), built[7].(H))
	})
}

func RunSystemWithData9[Data any, A, B, C, D, E, F, G, H, I accessHandle](w *World, data Data, fn func(Data, A, B, C, D, E, F, G, H, I)) (*Token, error) {
	var a A
	var b B
	var c C
	var d D
	var e E
	var f F
	var g G
	var h H
	var i I
	return dispatch(w, []accessHandle{a, b, c, d, e, f, g, h, i}, func(built []any) {
		fn(data, built[0].(A), built[1].(B), built[2].(C), built[3].(D), built[4].(E), built[5].(F), built[6].(G), built[7].(H), built[8].(I))
	})
}
