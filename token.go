package ecsgrid

import "sync/atomic"

// Token is a single-shot completion flag returned by RunSystem and
// RunSystemWithData. Grounded on original_source/crates/ecs/src/sync.rs's
// TaskSync (an AtomicBool flipped once by the worker, polled by the
// driver thread). Go gives us a cheaper wait primitive than polling —
// a channel closed exactly once — so Wait blocks on a receive instead
// of sleeping in a loop; the Rust original's generate_task_waitable!
// macro exists only because Rust has no unify-arity variadics, which
// Go's plain variadic WaitAll doesn't need.
type Token struct {
	done   atomic.Bool
	signal chan struct{}
}

// NewToken returns a fresh, unsignaled token. Callers normally receive
// tokens from RunSystem/RunSystemWithData rather than constructing one
// directly.
func NewToken() *Token {
	return &Token{signal: make(chan struct{})}
}

// Signal marks the token done. Safe to call more than once; only the
// first call closes the channel.
func (t *Token) Signal() {
	if t.done.CompareAndSwap(false, true) {
		close(t.signal)
	}
}

// Wait blocks the calling goroutine until Signal has been called.
func (t *Token) Wait() {
	<-t.signal
}

// Done reports whether Signal has already been called, without
// blocking.
func (t *Token) Done() bool {
	return t.done.Load()
}

// WaitAll blocks until every token in tokens has been signaled.
// Equivalent to spec.md §4.H's wait_all, implemented as a sequential
// wait over each token's channel rather than a polling loop.
func WaitAll(tokens ...*Token) {
	for _, t := range tokens {
		if t == nil {
			continue
		}
		t.Wait()
	}
}

// Wait is a free-function convenience wrapper so call sites read
// ecsgrid.Wait(token) the way the package doc example shows.
func Wait(t *Token) {
	if t == nil {
		return
	}
	t.Wait()
}
