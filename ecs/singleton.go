package ecs

// Singleton provides access to a single value of type T owned by the
// registry but not attached to any entity. Use it for global state such as
// configuration or frame counters. Singletons survive Registry.Clear.
type Singleton[T any] struct {
	registry *Registry
	value    *T
}

// NewSingleton returns an accessor for the registry's T singleton. If the
// singleton does not exist yet it is created from initializer, or from the
// zero value when no initializer is given.
func NewSingleton[T any](registry *Registry, initializer ...T) *Singleton[T] {
	s := &Singleton[T]{registry: registry}
	if s.lookup() == nil {
		var value T
		if len(initializer) > 0 {
			value = initializer[0]
		}
		s.Set(value)
	}
	return s
}

func (s *Singleton[T]) lookup() *T {
	if s.value != nil {
		return s.value
	}
	stored, ok := s.registry.singletons.Get(typeKeyFor[T]())
	if !ok {
		return nil
	}
	s.value = stored.(*T)
	return s.value
}

// Get returns a pointer to the singleton, or nil if it has not been set.
func (s *Singleton[T]) Get() *T {
	return s.lookup()
}

// Exists reports whether the singleton has been set.
func (s *Singleton[T]) Exists() bool {
	return s.lookup() != nil
}

// Set overwrites the singleton value, creating it if needed.
func (s *Singleton[T]) Set(value T) {
	if ptr := s.lookup(); ptr != nil {
		*ptr = value
		return
	}
	ptr := new(T)
	*ptr = value
	s.registry.singletons.Put(typeKeyFor[T](), ptr)
	s.value = ptr
}
