package ecs

import (
	"reflect"
	"unsafe"
)

// iface represents the internal memory layout of an interface{}.
type iface struct {
	typ  unsafe.Pointer
	data unsafe.Pointer
}

// typeKey returns a process-wide integer identity for t. A reflect.Type is
// an interface whose data word points at the runtime type descriptor, which
// is unique per type.
func typeKey(t reflect.Type) uintptr {
	return uintptr((*iface)(unsafe.Pointer(&t)).data)
}

func typeKeyFor[T any]() uintptr {
	return typeKey(reflect.TypeFor[T]())
}
