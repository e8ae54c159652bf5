package ecs

import (
	"reflect"
	"unsafe"
)

// ComponentPool is the type-erased view of a Pool, used by the registry to
// hold pools of unrelated component types.
type ComponentPool interface {
	RemoveEntity(e Entity)
	Has(e Entity) bool
	Len() int
	Cap() int
	Clear()
	Reserve(capacity int)
	Type() reflect.Type
	Entities() []Entity

	// pointer returns the address of e's value, or nil.
	pointer(e Entity) unsafe.Pointer
}
