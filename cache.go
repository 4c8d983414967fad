package loom

import "fmt"

// Cache is a capped, string-keyed append-only registry, kept in the
// teacher's own shape (api.go's Cache[T]/SimpleCache[T]): items are never
// removed, only ever looked up by key or by the dense index Register
// handed back.
type Cache[T any] interface {
	GetIndex(string) (int, bool)
	GetItem(int) *T
	GetItem32(uint32) *T
	Register(string, T) (int, error)
}

// SimpleCache is the slice-backed Cache implementation.
type SimpleCache[T any] struct {
	items       []T
	itemIndices map[string]int
	maxCapacity int
}

// NewSimpleCache returns an empty cache capped at capacity entries.
func NewSimpleCache[T any](capacity int) *SimpleCache[T] {
	return &SimpleCache[T]{
		itemIndices: make(map[string]int),
		maxCapacity: capacity,
	}
}

var _ Cache[any] = &SimpleCache[any]{}

func (c *SimpleCache[T]) GetIndex(key string) (int, bool) {
	index, ok := c.itemIndices[key]
	return index, ok
}

func (c *SimpleCache[T]) GetItem(index int) *T {
	return &c.items[index]
}

func (c *SimpleCache[T]) GetItem32(index uint32) *T {
	return &c.items[index]
}

func (c *SimpleCache[T]) Register(key string, item T) (int, error) {
	if existing, ok := c.itemIndices[key]; ok {
		c.items[existing] = item
		return existing, nil
	}
	if len(c.items) >= c.maxCapacity {
		return -1, fmt.Errorf("loom: cache at maximum capacity (%d)", c.maxCapacity)
	}
	idx := len(c.items)
	c.itemIndices[key] = idx
	c.items = append(c.items, item)
	return idx, nil
}

func (c *SimpleCache[T]) Clear() {
	c.items = c.items[:0]
	c.itemIndices = make(map[string]int)
}

// metadataEntry is one (component, key) -> raw-bytes record of the
// component metadata buffer spec.md §6 describes: "a serialised vector of
// (component-id, raw-bytes) used to attach name/debug metadata; its
// layout is internal but stable within a world."
type metadataEntry struct {
	Component ComponentID
	Raw       []byte
}

func metadataKey(c ComponentID, key string) string {
	return fmt.Sprintf("%d:%s", c.Index(), key)
}

// SetComponentMetadata attaches a named, opaque byte payload to component
// c within w -- debug labels, serialization tags, editor hints, anything
// that doesn't belong in the component's Go type itself.
func SetComponentMetadata[T any](w *World, c Component[T], key string, raw []byte) error {
	if w.metadata == nil {
		w.metadata = NewSimpleCache[metadataEntry](4096)
	}
	cid := c.ID(w)
	_, err := w.metadata.Register(metadataKey(cid, key), metadataEntry{Component: cid, Raw: raw})
	return err
}

// ComponentMetadata retrieves a previously attached metadata payload, if
// any.
func ComponentMetadata[T any](w *World, c Component[T], key string) ([]byte, bool) {
	if w.metadata == nil {
		return nil, false
	}
	idx, ok := w.metadata.GetIndex(metadataKey(c.ID(w), key))
	if !ok {
		return nil, false
	}
	return w.metadata.GetItem(idx).Raw, true
}
