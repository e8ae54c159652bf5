package ecs

import (
	"reflect"

	"github.com/rotisserie/eris"
)

// Commands buffers structural changes so they can be applied after a view
// iteration has finished.
type Commands struct {
	destroys []Entity
	removes  []removeComponentCommand
	adds     []addComponentCommand
	defers   []func()
}

// NewCommands creates an empty command buffer.
func NewCommands() *Commands {
	return &Commands{}
}

type addComponentCommand struct {
	entity Entity
	apply  func(*Registry) error
}

type removeComponentCommand struct {
	entity   Entity
	compType reflect.Type
}

// Destroy queues the destruction of e.
func (c *Commands) Destroy(e Entity) {
	c.destroys = append(c.destroys, e)
}

// Remove queues the removal of e's component of type compType.
func (c *Commands) Remove(e Entity, compType reflect.Type) {
	c.removes = append(c.removes, removeComponentCommand{
		entity:   e,
		compType: compType,
	})
}

// Defer queues fn to run after every other queued command.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// AddDeferred queues the replacement of e's T component with value.
func AddDeferred[T any](c *Commands, e Entity, value T) {
	c.adds = append(c.adds, addComponentCommand{
		entity: e,
		apply: func(r *Registry) error {
			_, err := ReplaceComponent(r, e, value)
			return err
		},
	})
}

// RemoveDeferred queues the removal of e's T component.
func RemoveDeferred[T any](c *Commands, e Entity) {
	c.Remove(e, reflect.TypeFor[T]())
}

// Len returns the number of queued commands.
func (c *Commands) Len() int {
	return len(c.destroys) + len(c.removes) + len(c.adds) + len(c.defers)
}

// Flush applies the queued commands to r in the order destroys, removes,
// adds, defers, then resets the buffer. Commands targeting an entity
// destroyed by the same flush are skipped. Every command is attempted; the
// first failure is returned.
func (c *Commands) Flush(r *Registry) error {
	var firstErr error

	destroyed := make(map[Entity]struct{}, len(c.destroys))
	for _, e := range c.destroys {
		r.DestroyEntity(e)
		destroyed[e] = struct{}{}
	}

	for _, cmd := range c.removes {
		if _, ok := destroyed[cmd.entity]; !ok {
			r.RemoveComponents(cmd.entity, cmd.compType)
		}
	}

	for _, cmd := range c.adds {
		if _, ok := destroyed[cmd.entity]; ok {
			continue
		}
		if err := cmd.apply(r); err != nil && firstErr == nil {
			firstErr = eris.Wrap(err, "failed to apply deferred add")
		}
	}

	for _, fn := range c.defers {
		fn()
	}

	clear(c.adds)
	clear(c.defers)
	c.destroys = c.destroys[:0]
	c.removes = c.removes[:0]
	c.adds = c.adds[:0]
	c.defers = c.defers[:0]
	return firstErr
}
