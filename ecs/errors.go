package ecs

import "github.com/rotisserie/eris"

var (
	// ErrInvalidEntity is returned when an operation targets a handle that is
	// null, destroyed or was never issued by the registry.
	ErrInvalidEntity = eris.New("invalid entity")

	// ErrComponentNotRegistered is returned by read-only lookups for a
	// component type that no entity has ever used.
	ErrComponentNotRegistered = eris.New("component type not registered")

	// ErrComponentAbsent is returned when a valid entity does not hold the
	// requested component.
	ErrComponentAbsent = eris.New("component not present on entity")
)
