package loom

import "sync"

// borrowCell implements the single-writer/many-reader borrow discipline
// spec.md §5 requires for every column and change list: a conflicting
// concurrent acquisition fails immediately with a borrow error rather than
// blocking the caller. sync.RWMutex's TryLock/TryRLock (stdlib, Go 1.18+)
// give exactly that fail-fast semantics, which is why this sits on the
// standard library rather than a corpus dependency -- see DESIGN.md.
type borrowCell struct {
	mu   sync.RWMutex
	name string
}

func newBorrowCell(name string) *borrowCell {
	return &borrowCell{name: name}
}

// TryBorrow acquires a shared (read) borrow, returning a release func.
func (b *borrowCell) TryBorrow() (func(), error) {
	if !b.mu.TryRLock() {
		return nil, BorrowError{ComponentName: b.name}
	}
	return b.mu.RUnlock, nil
}

// TryBorrowMut acquires an exclusive (write) borrow, returning a release
// func.
func (b *borrowCell) TryBorrowMut() (func(), error) {
	if !b.mu.TryLock() {
		return nil, BorrowMutError{ComponentName: b.name}
	}
	return b.mu.Unlock, nil
}
