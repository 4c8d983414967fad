package loom

import "fmt"

// NoSuchEntityError is returned by any lookup on a dead or never-allocated
// entity id.
type NoSuchEntityError struct {
	ID EntityID
}

func (e NoSuchEntityError) Error() string {
	return fmt.Sprintf("loom: no such entity: %v", e.ID)
}

// MissingComponentError is returned when an entity is expected to carry a
// component it doesn't have.
type MissingComponentError struct {
	ID            EntityID
	ComponentName string
}

func (e MissingComponentError) Error() string {
	return fmt.Sprintf("loom: entity %v has no component %s", e.ID, e.ComponentName)
}

// BorrowError is returned when a shared borrow is requested on a column
// or change list that's currently held exclusively.
type BorrowError struct {
	ComponentName string
}

func (e BorrowError) Error() string {
	return fmt.Sprintf("loom: cannot borrow %s: exclusive borrow held", e.ComponentName)
}

// BorrowMutError is the mutable-borrow counterpart of BorrowError.
type BorrowMutError struct {
	ComponentName string
}

func (e BorrowMutError) Error() string {
	return fmt.Sprintf("loom: cannot mutably borrow %s: a borrow is already held", e.ComponentName)
}

// DisjointError reports entity ids that are not pairwise distinct. No
// function in loom returns it; there are no batch entity operations.
type DisjointError struct {
	IDs []EntityID
}

func (e DisjointError) Error() string {
	return fmt.Sprintf("loom: entity ids are not pairwise distinct: %v", e.IDs)
}

// UnmatchedFetchError is returned when a fetch is prepared against an
// archetype that doesn't carry the components it needs.
type UnmatchedFetchError struct {
	ID       EntityID
	Describe string
	Missing  []string
}

func (e UnmatchedFetchError) Error() string {
	return fmt.Sprintf("loom: entity %v does not match fetch %q: missing %v", e.ID, e.Describe, e.Missing)
}

// LockedStorageError is returned by any structural mutation attempted
// while a lock bit raised with World.AddLock is held. Query iteration does
// not raise lock bits itself.
type LockedStorageError struct{}

func (e LockedStorageError) Error() string {
	return "loom: storage is currently locked"
}

// ComponentExistsError reports a component already present on an entity.
// No function in loom returns it: SetComponent overwrites an existing
// value instead.
type ComponentExistsError struct {
	ComponentName string
}

func (e ComponentExistsError) Error() string {
	return fmt.Sprintf("loom: component already present on entity: %s", e.ComponentName)
}

// ComponentNotFoundError reports a component missing from an entity. No
// function in loom returns it: RemoveComponent treats removing an absent
// component as a no-op.
type ComponentNotFoundError struct {
	ComponentName string
}

func (e ComponentNotFoundError) Error() string {
	return fmt.Sprintf("loom: component not present on entity: %s", e.ComponentName)
}

// ScheduleError wraps an error returned by a system, attaching the
// system's name the way spec.md §7 requires.
type ScheduleError struct {
	SystemName string
	Err        error
}

func (e ScheduleError) Error() string {
	return fmt.Sprintf("loom: system %q failed: %v", e.SystemName, e.Err)
}

func (e ScheduleError) Unwrap() error { return e.Err }
