package ecs

import (
	"iter"
	"reflect"

	"github.com/kamstrup/intmap"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// Registry owns the entity identities and one pool per component type.
// Pools are created on first use of a type and live until the registry is
// discarded; Clear empties them but keeps them registered.
//
// A Registry is not safe for concurrent use.
type Registry struct {
	entities   entityManager
	pools      *intmap.Map[uintptr, ComponentPool]
	singletons *intmap.Map[uintptr, any]

	poolCapacity int
	logger       zerolog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	cfg := defaultRegistryConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Registry{
		entities:     newEntityManager(cfg.entityCapacity),
		pools:        intmap.New[uintptr, ComponentPool](32),
		singletons:   intmap.New[uintptr, any](8),
		poolCapacity: cfg.poolCapacity,
		logger:       cfg.logger,
	}
}

// CreateEntity returns a new valid entity. Retired indices are reused in the
// order they were retired.
func (r *Registry) CreateEntity() Entity {
	return r.entities.create()
}

// DestroyEntity removes every component of e and retires it. Invalid handles
// are ignored.
func (r *Registry) DestroyEntity(e Entity) {
	if !r.entities.isValid(e) {
		return
	}
	for pool := range r.pools.Values() {
		pool.RemoveEntity(e)
	}
	r.entities.destroy(e)
}

// IsValid reports whether e is alive in this registry.
func (r *Registry) IsValid(e Entity) bool {
	return r.entities.isValid(e)
}

// Clear empties every pool and forgets all entities. Previously issued
// handles become invalid; views stay usable.
func (r *Registry) Clear() {
	for pool := range r.pools.Values() {
		pool.Clear()
	}
	r.entities.clear()
	r.logger.Debug().Int("pools", r.pools.Len()).Msg("registry cleared")
}

// Len returns the number of alive entities.
func (r *Registry) Len() int {
	return r.entities.len()
}

// Capacity returns the number of entity slots allocated.
func (r *Registry) Capacity() int {
	return r.entities.capacity()
}

// Entities iterates over the alive entities in unspecified order.
func (r *Registry) Entities() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for _, e := range r.entities.entities() {
			if !yield(e) {
				return
			}
		}
	}
}

// Pools iterates over the registered pools in unspecified order.
func (r *Registry) Pools() iter.Seq[ComponentPool] {
	return r.pools.Values()
}

// pool returns the pool registered for t, or nil.
func (r *Registry) pool(t reflect.Type) ComponentPool {
	pool, ok := r.pools.Get(typeKey(t))
	if !ok {
		return nil
	}
	return pool
}

// HasComponents reports whether e holds a component of every given type.
func (r *Registry) HasComponents(e Entity, types ...reflect.Type) bool {
	if !r.entities.isValid(e) {
		return false
	}
	for _, t := range types {
		pool := r.pool(t)
		if pool == nil || !pool.Has(e) {
			return false
		}
	}
	return true
}

// RemoveComponents removes the components of the given types from e.
// Invalid entities, unknown types and absent components are ignored.
func (r *Registry) RemoveComponents(e Entity, types ...reflect.Type) {
	if !r.entities.isValid(e) {
		return
	}
	for _, t := range types {
		if pool := r.pool(t); pool != nil {
			pool.RemoveEntity(e)
		}
	}
}

// poolOf returns the pool for T, creating it if needed.
func poolOf[T any](r *Registry) *Pool[T] {
	key := typeKeyFor[T]()
	if pool, ok := r.pools.Get(key); ok {
		return pool.(*Pool[T])
	}
	pool := NewPool[T](r.poolCapacity)
	r.pools.Put(key, pool)
	r.logger.Debug().Stringer("type", pool.Type()).Msg("component pool created")
	return pool
}

// PoolOf returns the pool for T, or nil if T has never been used.
func PoolOf[T any](r *Registry) *Pool[T] {
	pool, ok := r.pools.Get(typeKeyFor[T]())
	if !ok {
		return nil
	}
	return pool.(*Pool[T])
}

// RegisterComponent creates the pool for T ahead of first use and reserves
// room for capacity components.
func RegisterComponent[T any](r *Registry, capacity int) *Pool[T] {
	pool := poolOf[T](r)
	pool.Reserve(capacity)
	return pool
}

func invalidEntity(e Entity) error {
	return eris.Wrapf(ErrInvalidEntity, "entity %s", e)
}

// AddComponent stores value as e's T component and returns the stored
// component. If e already has one it is kept and returned unchanged.
func AddComponent[T any](r *Registry, e Entity, value T) (*T, error) {
	if !r.entities.isValid(e) {
		return nil, invalidEntity(e)
	}
	return poolOf[T](r).Insert(e, value), nil
}

// EmplaceComponent returns e's T component, building it with build if e has
// none. An existing component is returned untouched and build is not called.
func EmplaceComponent[T any](r *Registry, e Entity, build func() T) (*T, error) {
	if !r.entities.isValid(e) {
		return nil, invalidEntity(e)
	}
	return poolOf[T](r).Emplace(e, build), nil
}

// ReplaceComponent sets e's T component to value, adding it if absent.
func ReplaceComponent[T any](r *Registry, e Entity, value T) (*T, error) {
	if !r.entities.isValid(e) {
		return nil, invalidEntity(e)
	}
	pool := poolOf[T](r)
	if c := pool.Get(e); c != nil {
		*c = value
		return c, nil
	}
	return pool.Insert(e, value), nil
}

// GetComponent returns a pointer to e's T component. The pointer stays valid
// until the next structural change of T's pool.
func GetComponent[T any](r *Registry, e Entity) (*T, error) {
	if !r.entities.isValid(e) {
		return nil, invalidEntity(e)
	}
	c := poolOf[T](r).Get(e)
	if c == nil {
		return nil, eris.Wrapf(ErrComponentAbsent, "entity %s, component %s", e, reflect.TypeFor[T]())
	}
	return c, nil
}

// ReadComponent returns a copy of e's T component. Unlike GetComponent it
// never creates a pool and reports ErrComponentNotRegistered for a type that
// has never been used.
func ReadComponent[T any](r *Registry, e Entity) (T, error) {
	var zero T
	if !r.entities.isValid(e) {
		return zero, invalidEntity(e)
	}
	pool := PoolOf[T](r)
	if pool == nil {
		return zero, eris.Wrapf(ErrComponentNotRegistered, "component %s", reflect.TypeFor[T]())
	}
	c := pool.Get(e)
	if c == nil {
		return zero, eris.Wrapf(ErrComponentAbsent, "entity %s, component %s", e, reflect.TypeFor[T]())
	}
	return *c, nil
}

// HasComponent reports whether e holds a T component. It is false for
// invalid entities and unused types.
func HasComponent[T any](r *Registry, e Entity) bool {
	if !r.entities.isValid(e) {
		return false
	}
	pool := PoolOf[T](r)
	return pool != nil && pool.Has(e)
}

// RemoveComponent removes e's T component if there is one.
func RemoveComponent[T any](r *Registry, e Entity) {
	if !r.entities.isValid(e) {
		return
	}
	if pool := PoolOf[T](r); pool != nil {
		pool.RemoveEntity(e)
	}
}

// SortComponents reorders T's pool according to less. Views over T will
// visit entities in that order until the pool changes again.
func SortComponents[T any](r *Registry, less func(a, b *T) bool) {
	if pool := PoolOf[T](r); pool != nil {
		pool.Sort(less)
	}
}
