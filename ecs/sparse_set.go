package ecs

import (
	"iter"
	"math"
	"slices"
	"sort"
)

const (
	sparsePageSize    = 4096
	sparseMinCapacity = 64
	sparseTombstone   = math.MaxUint32
)

// SparseSet maps entities to values of type T. Lookup, insertion and removal
// are O(1) through the sparse index, and values are kept packed in dense
// order for iteration.
//
// Dense order is not stable: Remove moves the last element into the freed
// slot and Sort rewrites the whole order.
type SparseSet[T any] struct {
	sparse     []uint32 // entity index -> dense position, or sparseTombstone
	dense      []Entity
	components []T
}

// NewSparseSet creates a sparse set with room for at least capacity values.
func NewSparseSet[T any](capacity int) *SparseSet[T] {
	s := &SparseSet[T]{}
	s.Reserve(max(capacity, sparseMinCapacity))
	return s
}

func pageAlign(n int) int {
	return (n + sparsePageSize - 1) &^ (sparsePageSize - 1)
}

// assureSpace grows the sparse index so that e's index is addressable.
func (s *SparseSet[T]) assureSpace(e Entity) {
	index := int(e.Index())
	if index < len(s.sparse) {
		return
	}

	required := index + 1
	size := pageAlign(required + required>>1)
	current := len(s.sparse)
	s.sparse = slices.Grow(s.sparse, size-current)[:size]
	for i := current; i < size; i++ {
		s.sparse[i] = sparseTombstone
	}

	estimated := min(size, index+index/5)
	if estimated > cap(s.dense) {
		s.dense = slices.Grow(s.dense, estimated-len(s.dense))
		s.components = slices.Grow(s.components, estimated-len(s.components))
	}
}

// position returns e's dense position, or false if e is not stored.
func (s *SparseSet[T]) position(e Entity) (uint32, bool) {
	index := e.Index()
	if int(index) >= len(s.sparse) {
		return 0, false
	}
	pos := s.sparse[index]
	if int(pos) >= len(s.dense) || s.dense[pos] != e {
		return 0, false
	}
	return pos, true
}

// occupied reports whether e's index slot holds any entity, possibly of
// another generation.
func (s *SparseSet[T]) occupied(e Entity) bool {
	index := e.Index()
	return int(index) < len(s.sparse) && int(s.sparse[index]) < len(s.dense)
}

// Contains reports whether e has a value. A handle with the same index but
// another generation is not contained.
func (s *SparseSet[T]) Contains(e Entity) bool {
	_, ok := s.position(e)
	return ok
}

// Get returns a pointer to e's value, or nil if e is not stored.
// The pointer is invalidated by any insertion, removal, clear or sort.
func (s *SparseSet[T]) Get(e Entity) *T {
	pos, ok := s.position(e)
	if !ok {
		return nil
	}
	return &s.components[pos]
}

func (s *SparseSet[T]) push(e Entity, value T) uint32 {
	pos := uint32(len(s.dense))
	s.sparse[e.Index()] = pos
	s.dense = append(s.dense, e)
	s.components = append(s.components, value)
	return pos
}

// Insert stores value for e. It does not overwrite: if e, or another
// generation of e's index, is already stored the call is ignored and false
// is returned.
func (s *SparseSet[T]) Insert(e Entity, value T) bool {
	if e == Null || s.occupied(e) {
		return false
	}
	s.assureSpace(e)
	s.push(e, value)
	return true
}

// Emplace stores the value produced by build for e and returns it. When e is
// already stored build is not called and the existing value is returned
// unchanged. A nil build stores the zero value. The boolean reports whether
// a value was created. Emplace returns nil if the index slot is held by
// another generation of e.
func (s *SparseSet[T]) Emplace(e Entity, build func() T) (*T, bool) {
	if e == Null {
		return nil, false
	}
	if pos, ok := s.position(e); ok {
		return &s.components[pos], false
	}
	if s.occupied(e) {
		return nil, false
	}
	s.assureSpace(e)

	var value T
	if build != nil {
		value = build()
	}
	pos := s.push(e, value)
	return &s.components[pos], true
}

// Remove deletes e's value by moving the last value into its slot.
// It returns false if e was not stored.
func (s *SparseSet[T]) Remove(e Entity) bool {
	pos, ok := s.position(e)
	if !ok {
		return false
	}

	last := len(s.dense) - 1
	lastEntity := s.dense[last]

	s.components[pos] = s.components[last]
	s.dense[pos] = lastEntity
	s.sparse[lastEntity.Index()] = pos
	s.sparse[e.Index()] = sparseTombstone

	var zero T
	s.components[last] = zero
	s.dense = s.dense[:last]
	s.components = s.components[:last]
	return true
}

// Reserve grows the storage to hold at least capacity values without
// changing the contents.
func (s *SparseSet[T]) Reserve(capacity int) {
	capacity = pageAlign(capacity)
	if capacity > cap(s.sparse) {
		s.sparse = slices.Grow(s.sparse, capacity-len(s.sparse))
	}
	if capacity > cap(s.dense) {
		s.dense = slices.Grow(s.dense, capacity-len(s.dense))
		s.components = slices.Grow(s.components, capacity-len(s.components))
	}
}

// ShrinkToFit releases unused capacity.
func (s *SparseSet[T]) ShrinkToFit() {
	s.sparse = slices.Clip(s.sparse)
	s.dense = slices.Clip(s.dense)
	s.components = slices.Clip(s.components)
}

// Clear removes every value but keeps the allocated storage.
func (s *SparseSet[T]) Clear() {
	for i := range s.sparse {
		s.sparse[i] = sparseTombstone
	}
	clear(s.components)
	s.dense = s.dense[:0]
	s.components = s.components[:0]
}

// Sort reorders the dense storage so that values are ascending according to
// less, then repairs the sparse index.
func (s *SparseSet[T]) Sort(less func(a, b *T) bool) {
	n := len(s.dense)
	if n <= 1 {
		return
	}

	order := make([]uint32, n)
	for i := range order {
		order[i] = uint32(i)
	}
	sort.Slice(order, func(i, j int) bool {
		return less(&s.components[order[i]], &s.components[order[j]])
	})

	dense := make([]Entity, n, cap(s.dense))
	components := make([]T, n, cap(s.components))
	for i, from := range order {
		dense[i] = s.dense[from]
		components[i] = s.components[from]
		s.sparse[dense[i].Index()] = uint32(i)
	}
	s.dense = dense
	s.components = components
}

// Len returns the number of stored values.
func (s *SparseSet[T]) Len() int {
	return len(s.dense)
}

// Cap returns the number of values that fit without reallocating.
func (s *SparseSet[T]) Cap() int {
	return cap(s.components)
}

// Entities returns the stored entities in dense order. The slice aliases
// internal storage and must not be modified.
func (s *SparseSet[T]) Entities() []Entity {
	return s.dense
}

// Components returns the stored values in dense order, aligned with Entities.
func (s *SparseSet[T]) Components() []T {
	return s.components
}

// All iterates over every entity and a pointer to its value in dense order.
func (s *SparseSet[T]) All() iter.Seq2[Entity, *T] {
	return func(yield func(Entity, *T) bool) {
		for i := range s.dense {
			if !yield(s.dense[i], &s.components[i]) {
				return
			}
		}
	}
}
