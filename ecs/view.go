package ecs

import (
	"iter"
	"reflect"
	"unsafe"
)

// View iterates over the entities that hold a fixed set of component types.
// The type T must be a struct whose fields are pointers to component types.
// Embedded fields are always required. Named fields can be marked as
// optional using the `ecs:"optional"` struct tag; they are set to nil for
// entities that lack the component.
//
// A view only observes the registry's pools. Adding or removing components of
// the viewed types while iterating is not supported; queue such changes in a
// Commands buffer instead.
type View[T any] struct {
	registry    *Registry
	types       []reflect.Type
	optional    []bool
	fieldOffset []uintptr
	pools       []ComponentPool
	required    []int // indices into pools of the required components
}

// NewView creates a view over the component types named by T's fields.
// Pools that do not exist yet are looked up again on every iteration.
func NewView[T any](registry *Registry) *View[T] {
	structType := reflect.TypeFor[T]()
	if structType.Kind() != reflect.Struct {
		panic("View type parameter must be a struct")
	}

	n := structType.NumField()
	v := &View[T]{
		registry:    registry,
		types:       make([]reflect.Type, 0, n),
		optional:    make([]bool, 0, n),
		fieldOffset: make([]uintptr, 0, n),
		pools:       make([]ComponentPool, n),
	}

	for i := 0; i < n; i++ {
		field := structType.Field(i)
		if field.Type.Kind() != reflect.Ptr {
			panic("View struct fields must be pointer types")
		}

		isOptional := false
		if !field.Anonymous {
			tag := field.Tag.Get("ecs")
			if tag != "" {
				if tag != "optional" {
					panic("invalid ecs tag value: \"" + tag + "\" (only \"optional\" is supported)")
				}
				isOptional = true
			}
		}

		v.types = append(v.types, field.Type.Elem())
		v.optional = append(v.optional, isOptional)
		v.fieldOffset = append(v.fieldOffset, field.Offset)
		if !isOptional {
			v.required = append(v.required, i)
		}
	}

	if len(v.required) == 0 {
		panic("View requires at least one non-optional component")
	}

	v.resolve()
	return v
}

// resolve looks up pools that were missing when the view was last used.
// It reports whether every required pool exists.
func (v *View[T]) resolve() bool {
	ok := true
	for i, pool := range v.pools {
		if pool == nil {
			pool = v.registry.pool(v.types[i])
			v.pools[i] = pool
		}
		if pool == nil && !v.optional[i] {
			ok = false
		}
	}
	return ok
}

// driver returns the index of the smallest required pool.
func (v *View[T]) driver() int {
	best := v.required[0]
	for _, i := range v.required[1:] {
		if v.pools[i].Len() < v.pools[best].Len() {
			best = i
		}
	}
	return best
}

// Fill points the fields of dst at e's components. It returns false, leaving
// dst partially written, if e lacks a required component.
func (v *View[T]) Fill(e Entity, dst *T) bool {
	if !v.registry.IsValid(e) || !v.resolve() {
		return false
	}
	return v.fill(e, unsafe.Pointer(dst))
}

// fill writes every field of the struct at base.
func (v *View[T]) fill(e Entity, base unsafe.Pointer) bool {
	for i, pool := range v.pools {
		fieldPtr := unsafe.Pointer(uintptr(base) + v.fieldOffset[i])

		var component unsafe.Pointer
		if pool != nil {
			component = pool.pointer(e)
		}
		if component == nil && !v.optional[i] {
			return false
		}
		*(*unsafe.Pointer)(fieldPtr) = component
	}
	return true
}

// Get returns a populated view struct for e, or nil if e lacks a required
// component.
func (v *View[T]) Get(e Entity) *T {
	var result T
	if !v.Fill(e, &result) {
		return nil
	}
	return &result
}

// Len returns the size of the smallest required pool, an upper bound on the
// number of entities the view visits.
func (v *View[T]) Len() int {
	if !v.resolve() {
		return 0
	}
	return v.pools[v.driver()].Len()
}

// contains reports whether every required pool other than skip holds e.
func (v *View[T]) contains(e Entity, skip int) bool {
	for _, i := range v.required {
		if i != skip && !v.pools[i].Has(e) {
			return false
		}
	}
	return true
}

// Iter returns an iterator over every matching entity and its populated view
// struct. Iteration walks the smallest required pool in dense order.
func (v *View[T]) Iter() iter.Seq2[Entity, T] {
	return func(yield func(Entity, T) bool) {
		if !v.resolve() {
			return
		}

		d := v.driver()
		var result T
		resultPtr := unsafe.Pointer(&result)

		for _, e := range v.pools[d].Entities() {
			if !v.contains(e, d) {
				continue
			}
			if !v.fill(e, resultPtr) {
				continue
			}
			if !yield(e, result) {
				return
			}
		}
	}
}

// Values returns an iterator over just the view structs.
func (v *View[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, value := range v.Iter() {
			if !yield(value) {
				return
			}
		}
	}
}

// Entities returns an iterator over the matching entities without filling
// any components.
func (v *View[T]) Entities() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		if !v.resolve() {
			return
		}

		d := v.driver()
		for _, e := range v.pools[d].Entities() {
			if !v.contains(e, d) {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// Each calls fn with every matching entity and its components.
func (v *View[T]) Each(fn func(Entity, T)) {
	for e, value := range v.Iter() {
		fn(e, value)
	}
}

// EachComponents calls fn with the components of every matching entity.
func (v *View[T]) EachComponents(fn func(T)) {
	for value := range v.Values() {
		fn(value)
	}
}

// EachEntity calls fn with every matching entity.
func (v *View[T]) EachEntity(fn func(Entity)) {
	for e := range v.Entities() {
		fn(e)
	}
}
