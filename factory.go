package ecsgrid

// factory implements the global-instance factory pattern the teacher
// uses throughout (see the original warehouse.Factory): a zero-size
// struct, instantiated once as a package-level value, whose methods
// are the package's public constructors.
type factory struct{}

// Factory is the package's single factory instance.
var Factory factory

// NewWorld constructs a World wired to pool. The caller owns pool's
// lifecycle (Start before dispatching any system, Shutdown when done);
// World never starts or stops it.
func (f factory) NewWorld(pool Pool, opts ...WorldOption) *World {
	w := newWorld(pool)
	for _, opt := range opts {
		opt(w)
	}
	return w
}
