package ecs_test

import "github.com/plus3/vecs/ecs"

// Common test component types
type Position struct {
	X, Y float32
}

type Velocity struct {
	DX, DY float32
}

type Name struct {
	Value string
}

type Health struct {
	Current int
	Max     int
}

type PlayerController struct{}

// Custom primitive types for testing non-struct components
type Score int32
type Temperature float64

type Inventory struct {
	Items []string
}

func newTestRegistry() *ecs.Registry {
	return ecs.NewRegistry()
}

// spawn creates an entity and attaches each of the given setters' components.
func spawn(r *ecs.Registry, setters ...func(*ecs.Registry, ecs.Entity)) ecs.Entity {
	e := r.CreateEntity()
	for _, set := range setters {
		set(r, e)
	}
	return e
}

func with[T any](value T) func(*ecs.Registry, ecs.Entity) {
	return func(r *ecs.Registry, e ecs.Entity) {
		if _, err := ecs.AddComponent(r, e, value); err != nil {
			panic(err)
		}
	}
}
