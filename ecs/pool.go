package ecs

import (
	"iter"
	"reflect"
	"unsafe"
)

const minPoolCapacity = 64

// Pool stores the components of a single type T.
//
// It remembers the last entity it resolved together with that entity's dense
// position, so repeated Get/Has calls for the same entity skip the sparse
// lookup. The position is cached rather than a pointer because appends may
// move the backing array.
type Pool[T any] struct {
	set *SparseSet[T]
	typ reflect.Type

	lastEntity Entity
	lastPos    uint32
}

// NewPool creates an empty pool with room for at least capacity components.
func NewPool[T any](capacity int) *Pool[T] {
	return &Pool[T]{
		set:        NewSparseSet[T](max(capacity, minPoolCapacity)),
		typ:        reflect.TypeFor[T](),
		lastEntity: Null,
	}
}

func (p *Pool[T]) remember(e Entity) *T {
	pos, ok := p.set.position(e)
	if !ok {
		return nil
	}
	p.lastEntity = e
	p.lastPos = pos
	return &p.set.components[pos]
}

func (p *Pool[T]) forget() {
	p.lastEntity = Null
	p.lastPos = 0
}

// Insert stores value for e unless e already has a component, and returns
// the stored component.
func (p *Pool[T]) Insert(e Entity, value T) *T {
	p.set.Insert(e, value)
	return p.remember(e)
}

// Emplace returns e's component, building it first if e has none.
// An existing component is left untouched.
func (p *Pool[T]) Emplace(e Entity, build func() T) *T {
	if ptr, _ := p.set.Emplace(e, build); ptr == nil {
		return nil
	}
	return p.remember(e)
}

// Get returns a pointer to e's component, or nil.
func (p *Pool[T]) Get(e Entity) *T {
	if e == p.lastEntity && e != Null {
		return &p.set.components[p.lastPos]
	}
	return p.remember(e)
}

// Has reports whether e has a component in this pool.
func (p *Pool[T]) Has(e Entity) bool {
	if e == p.lastEntity && e != Null {
		return true
	}
	return p.set.Contains(e)
}

// RemoveEntity removes e's component. Absent entities are ignored.
func (p *Pool[T]) RemoveEntity(e Entity) {
	if p.lastEntity != Null {
		// the last dense element moves into the removed slot
		moved := p.set.dense[len(p.set.dense)-1]
		if p.lastEntity == e || (p.lastEntity == moved && p.set.Contains(e)) {
			p.forget()
		}
	}
	p.set.Remove(e)
}

// Len returns the number of stored components.
func (p *Pool[T]) Len() int {
	return p.set.Len()
}

// Cap returns the component capacity.
func (p *Pool[T]) Cap() int {
	return p.set.Cap()
}

// Clear removes every component.
func (p *Pool[T]) Clear() {
	p.set.Clear()
	p.forget()
}

// Reserve grows the pool to hold at least capacity components.
func (p *Pool[T]) Reserve(capacity int) {
	p.set.Reserve(capacity)
}

// ShrinkToFit releases unused capacity.
func (p *Pool[T]) ShrinkToFit() {
	p.set.ShrinkToFit()
}

// Sort reorders the components according to less.
func (p *Pool[T]) Sort(less func(a, b *T) bool) {
	p.set.Sort(less)
	p.forget()
}

// Type returns the component type stored in the pool.
func (p *Pool[T]) Type() reflect.Type {
	return p.typ
}

// Entities returns the entities holding a component, in dense order.
func (p *Pool[T]) Entities() []Entity {
	return p.set.Entities()
}

// Components returns the components in dense order, aligned with Entities.
func (p *Pool[T]) Components() []T {
	return p.set.Components()
}

// All iterates over every entity and its component.
func (p *Pool[T]) All() iter.Seq2[Entity, *T] {
	return p.set.All()
}

func (p *Pool[T]) pointer(e Entity) unsafe.Pointer {
	return unsafe.Pointer(p.Get(e))
}
