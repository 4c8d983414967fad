package loom

import (
	"fmt"
	"reflect"
)

// vtable carries what an archetype needs to manage a component column
// without knowing its concrete type: the component's id, name and reflect
// type, and a constructor for an empty column. spec.md §9 frames this as a
// struct of function pointers built at registration; loom's generics-backed
// columns (see column.go) zero vacated slots themselves, so the vtable
// only needs the pieces below.
type vtable struct {
	id   ComponentID
	name string
	typ  reflect.Type

	newColumn func(capacity int) column
}

func newVTable[T any](id ComponentID) *vtable {
	var zero T
	typ := reflect.TypeOf(zero)
	name := typ.String()
	return &vtable{
		id:   id,
		name: name,
		typ:  typ,
		newColumn: func(capacity int) column {
			return newTypedColumn[T](capacity)
		},
	}
}

func (v *vtable) String() string {
	return fmt.Sprintf("vtable(%s, id=%v)", v.name, v.id)
}
