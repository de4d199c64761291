package ecsgrid

import (
	"fmt"
	"reflect"
)

// UnregisteredComponentError is raised when a bundle or a system
// references a component type that has never been registered with the
// World. Per spec this is a fatal, diagnosable-in-debug condition:
// callers are expected to register every component at startup.
type UnregisteredComponentError struct {
	Type reflect.Type
}

func (e UnregisteredComponentError) Error() string {
	return fmt.Sprintf("ecsgrid: component %s was never registered", e.Type)
}

// MissingUniqueError is raised when a system requests a unique
// component type that was never installed via RegisterUnique.
type MissingUniqueError struct {
	Type reflect.Type
}

func (e MissingUniqueError) Error() string {
	return fmt.Sprintf("ecsgrid: unique component %s was never registered", e.Type)
}

// UnknownEntityError is raised by internal bitmask lookups on an id
// outside the entity table's logical range. Seeing this means the
// caller is holding an Entity value that was never produced by
// AddEntity on this World.
type UnknownEntityError struct {
	ID EntityID
}

func (e UnknownEntityError) Error() string {
	return fmt.Sprintf("ecsgrid: entity %d is out of range", e.ID)
}

// MissingExpectedCellError indicates invariant 3 was violated: an
// entity's bitmask claimed a component bit but the backing cell was
// empty. This can only happen from a bug in the runtime itself, or
// from a system mutating storage concurrently with a RemoveEntity call
// the spec requires callers not to race (see spec.md §9, "Iterator
// stability under concurrent remove_entity").
type MissingExpectedCellError struct {
	Entity EntityID
	Type   reflect.Type
}

func (e MissingExpectedCellError) Error() string {
	return fmt.Sprintf("ecsgrid: entity %d has bit set for %s but the cell is empty", e.Entity, e.Type)
}

// DuplicateComponentError is raised when a bundle passed to AddEntityN
// lists the same component type more than once. spec.md §9 leaves this
// behavior unspecified; ecsgrid resolves it as a rejection rather than
// a silent last-writer-wins.
type DuplicateComponentError struct {
	Type reflect.Type
}

func (e DuplicateComponentError) Error() string {
	return fmt.Sprintf("ecsgrid: component %s appears twice in the same bundle", e.Type)
}

// outOfBoundsError is the internal, recoverable signal a paged column
// uses to tell its own set "this index has no page yet" so it can
// escalate to a page-growing write lock. It never reaches user code.
type outOfBoundsError struct {
	index int
}

func (e outOfBoundsError) Error() string {
	return fmt.Sprintf("ecsgrid: index %d is beyond the allocated pages", e.index)
}
