package ecs_test

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/plus3/vecs/ecs"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEntity(t *testing.T) {
	r := newTestRegistry()

	a := r.CreateEntity()
	b := r.CreateEntity()

	assert.NotEqual(t, a, b)
	assert.True(t, r.IsValid(a))
	assert.True(t, r.IsValid(b))
	assert.False(t, r.IsValid(ecs.Null))
	assert.Equal(t, 2, r.Len())
	assert.GreaterOrEqual(t, r.Capacity(), 2)
}

func TestAddComponent(t *testing.T) {
	r := newTestRegistry()
	e := r.CreateEntity()

	pos, err := ecs.AddComponent(r, e, Position{X: 1, Y: 2})
	require.NoError(t, err)
	require.NotNil(t, pos)
	assert.Equal(t, Position{X: 1, Y: 2}, *pos)
	assert.True(t, ecs.HasComponent[Position](r, e))
	assert.False(t, ecs.HasComponent[Velocity](r, e))
}

// Adding a component the entity already has keeps the original value.
func TestAddComponentIsNotUpsert(t *testing.T) {
	r := newTestRegistry()
	e := r.CreateEntity()

	_, err := ecs.AddComponent(r, e, Position{X: 1, Y: 2})
	require.NoError(t, err)
	again, err := ecs.AddComponent(r, e, Position{X: 9, Y: 9})
	require.NoError(t, err)

	assert.Equal(t, Position{X: 1, Y: 2}, *again)
	got, err := ecs.ReadComponent[Position](r, e)
	require.NoError(t, err)
	assert.Equal(t, Position{X: 1, Y: 2}, got)
	assert.Equal(t, 1, ecs.PoolOf[Position](r).Len())
}

func TestEmplaceComponent(t *testing.T) {
	r := newTestRegistry()
	e := r.CreateEntity()
	calls := 0
	build := func() Inventory {
		calls++
		return Inventory{Items: []string{"sword"}}
	}

	inv, err := ecs.EmplaceComponent(r, e, build)
	require.NoError(t, err)
	assert.Equal(t, []string{"sword"}, inv.Items)

	inv, err = ecs.EmplaceComponent(r, e, build)
	require.NoError(t, err)
	assert.Equal(t, []string{"sword"}, inv.Items)
	assert.Equal(t, 1, calls)

	score, err := ecs.EmplaceComponent[Score](r, e, nil)
	require.NoError(t, err)
	assert.Equal(t, Score(0), *score)
}

func TestReplaceComponent(t *testing.T) {
	r := newTestRegistry()
	e := r.CreateEntity()

	// adds when absent
	h, err := ecs.ReplaceComponent(r, e, Health{Current: 50, Max: 100})
	require.NoError(t, err)
	assert.Equal(t, 50, h.Current)

	// overwrites when present
	h, err = ecs.ReplaceComponent(r, e, Health{Current: 80, Max: 100})
	require.NoError(t, err)
	assert.Equal(t, 80, h.Current)

	got, err := ecs.ReadComponent[Health](r, e)
	require.NoError(t, err)
	assert.Equal(t, Health{Current: 80, Max: 100}, got)
	assert.Equal(t, 1, ecs.PoolOf[Health](r).Len())
}

func TestGetComponentMutates(t *testing.T) {
	r := newTestRegistry()
	e := spawn(r, with(Position{X: 1, Y: 1}))

	pos, err := ecs.GetComponent[Position](r, e)
	require.NoError(t, err)
	pos.X = 42

	got, err := ecs.ReadComponent[Position](r, e)
	require.NoError(t, err)
	assert.Equal(t, float32(42), got.X)
}

func TestPrimitiveComponents(t *testing.T) {
	r := newTestRegistry()
	e := spawn(r, with(Score(10)), with(Temperature(36.6)))

	score, err := ecs.ReadComponent[Score](r, e)
	require.NoError(t, err)
	assert.Equal(t, Score(10), score)

	temp, err := ecs.ReadComponent[Temperature](r, e)
	require.NoError(t, err)
	assert.InDelta(t, 36.6, float64(temp), 1e-9)
}

func TestComponentErrors(t *testing.T) {
	r := newTestRegistry()
	e := r.CreateEntity()
	dead := r.CreateEntity()
	r.DestroyEntity(dead)

	t.Run("invalid entity", func(t *testing.T) {
		_, err := ecs.AddComponent(r, dead, Position{})
		assert.True(t, errors.Is(err, ecs.ErrInvalidEntity))

		_, err = ecs.EmplaceComponent[Position](r, ecs.Null, nil)
		assert.True(t, errors.Is(err, ecs.ErrInvalidEntity))

		_, err = ecs.ReplaceComponent(r, dead, Position{})
		assert.True(t, errors.Is(err, ecs.ErrInvalidEntity))

		_, err = ecs.GetComponent[Position](r, dead)
		assert.True(t, errors.Is(err, ecs.ErrInvalidEntity))

		_, err = ecs.ReadComponent[Position](r, dead)
		assert.True(t, eris.Is(err, ecs.ErrInvalidEntity))
	})

	t.Run("read of unused type", func(t *testing.T) {
		_, err := ecs.ReadComponent[Name](r, e)
		assert.True(t, errors.Is(err, ecs.ErrComponentNotRegistered))
		assert.Nil(t, ecs.PoolOf[Name](r), "read must not create a pool")
	})

	t.Run("get of unused type", func(t *testing.T) {
		_, err := ecs.GetComponent[Velocity](r, e)
		assert.True(t, errors.Is(err, ecs.ErrComponentAbsent))
		assert.NotNil(t, ecs.PoolOf[Velocity](r), "get creates the pool")
	})

	t.Run("absent component", func(t *testing.T) {
		other := spawn(r, with(Health{Current: 1}))
		_, err := ecs.ReadComponent[Health](r, e)
		assert.True(t, errors.Is(err, ecs.ErrComponentAbsent))
		assert.False(t, errors.Is(err, ecs.ErrComponentNotRegistered))
		assert.Contains(t, err.Error(), e.String())

		_, err = ecs.ReadComponent[Health](r, other)
		assert.NoError(t, err)
	})

	t.Run("adding to invalid entity creates nothing", func(t *testing.T) {
		_, err := ecs.AddComponent(r, dead, PlayerController{})
		require.Error(t, err)
		assert.Nil(t, ecs.PoolOf[PlayerController](r))
	})
}

func TestDestroyEntityRemovesComponents(t *testing.T) {
	r := newTestRegistry()
	// a third pool exists but e is not in it
	spawn(r, with(Name{Value: "other"}))
	e := spawn(r, with(Position{X: 1}), with(Velocity{DX: 1}))
	keep := spawn(r, with(Position{X: 2}))

	r.DestroyEntity(e)

	assert.False(t, r.IsValid(e))
	assert.False(t, ecs.HasComponent[Position](r, e))
	assert.False(t, ecs.HasComponent[Velocity](r, e))
	assert.Equal(t, 1, ecs.PoolOf[Position](r).Len())
	assert.Equal(t, 0, ecs.PoolOf[Velocity](r).Len())
	assert.Equal(t, 1, ecs.PoolOf[Name](r).Len())

	pos, err := ecs.ReadComponent[Position](r, keep)
	require.NoError(t, err)
	assert.Equal(t, float32(2), pos.X)

	// destroying twice is harmless
	r.DestroyEntity(e)
	r.DestroyEntity(ecs.Null)
	assert.Equal(t, 2, r.Len())
}

func TestRecycledEntityStartsEmpty(t *testing.T) {
	r := newTestRegistry()
	old := spawn(r, with(Position{X: 5}))
	r.DestroyEntity(old)

	fresh := r.CreateEntity()
	require.Equal(t, old.Index(), fresh.Index())
	assert.NotEqual(t, old, fresh)
	assert.False(t, ecs.HasComponent[Position](r, fresh))

	_, err := ecs.GetComponent[Position](r, old)
	assert.True(t, errors.Is(err, ecs.ErrInvalidEntity))
}

func TestHasAndRemoveComponents(t *testing.T) {
	r := newTestRegistry()
	e := spawn(r, with(Position{}), with(Velocity{}), with(Health{}))
	posType := reflect.TypeFor[Position]()
	velType := reflect.TypeFor[Velocity]()
	healthType := reflect.TypeFor[Health]()
	nameType := reflect.TypeFor[Name]()

	assert.True(t, r.HasComponents(e, posType, velType, healthType))
	assert.True(t, r.HasComponents(e))
	assert.False(t, r.HasComponents(e, posType, nameType))
	assert.False(t, r.HasComponents(ecs.Null, posType))

	// unknown types and absent components are ignored
	r.RemoveComponents(e, nameType)
	r.RemoveComponents(e, posType, velType)
	assert.False(t, r.HasComponents(e, posType))
	assert.False(t, r.HasComponents(e, velType))
	assert.True(t, r.HasComponents(e, healthType))

	r.RemoveComponents(e, posType)
	ecs.RemoveComponent[Health](r, e)
	ecs.RemoveComponent[Name](r, e)
	assert.False(t, ecs.HasComponent[Health](r, e))
	assert.True(t, r.IsValid(e))
}

func TestRegistryClear(t *testing.T) {
	r := newTestRegistry()
	a := spawn(r, with(Position{}), with(Velocity{}))
	b := spawn(r, with(Position{}))

	r.Clear()

	assert.Equal(t, 0, r.Len())
	assert.False(t, r.IsValid(a))
	assert.False(t, r.IsValid(b))
	pool := ecs.PoolOf[Position](r)
	require.NotNil(t, pool, "pools stay registered")
	assert.Equal(t, 0, pool.Len())

	c := spawn(r, with(Position{X: 3}))
	assert.Equal(t, uint32(0), c.Index())
	assert.True(t, ecs.HasComponent[Position](r, c))
	assert.False(t, ecs.HasComponent[Velocity](r, c))
}

func TestRegistryEntities(t *testing.T) {
	r := newTestRegistry()
	created := make([]ecs.Entity, 0, 10)
	for range 10 {
		created = append(created, r.CreateEntity())
	}
	r.DestroyEntity(created[3])
	r.DestroyEntity(created[7])

	var alive []ecs.Entity
	for e := range r.Entities() {
		alive = append(alive, e)
	}
	assert.Len(t, alive, 8)
	assert.NotContains(t, alive, created[3])
	assert.NotContains(t, alive, created[7])
	assert.Contains(t, alive, created[0])
}

func TestRegisterComponent(t *testing.T) {
	r := newTestRegistry()
	assert.Nil(t, ecs.PoolOf[Position](r))

	pool := ecs.RegisterComponent[Position](r, 10_000)
	require.NotNil(t, pool)
	assert.Same(t, pool, ecs.PoolOf[Position](r))
	assert.GreaterOrEqual(t, pool.Cap(), 10_000)
	assert.Equal(t, reflect.TypeFor[Position](), pool.Type())

	// registering again returns the same pool
	assert.Same(t, pool, ecs.RegisterComponent[Position](r, 0))

	count := 0
	for range r.Pools() {
		count++
	}
	assert.Equal(t, 1, count)
}

func TestSortComponents(t *testing.T) {
	r := newTestRegistry()
	for _, v := range []int{3, 1, 2} {
		spawn(r, with(Health{Current: v}))
	}

	ecs.SortComponents(r, func(a, b *Health) bool { return a.Current < b.Current })

	pool := ecs.PoolOf[Health](r)
	var order []int
	for _, h := range pool.All() {
		order = append(order, h.Current)
	}
	assert.Equal(t, []int{1, 2, 3}, order)

	// sorting an unused type is a no-op
	ecs.SortComponents(r, func(a, b *Name) bool { return a.Value < b.Value })
	assert.Nil(t, ecs.PoolOf[Name](r))
}

func TestRegistryOptions(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	r := ecs.NewRegistry(
		ecs.WithEntityCapacity(5000),
		ecs.WithPoolCapacity(8192),
		ecs.WithLogger(logger),
	)
	assert.GreaterOrEqual(t, r.Capacity(), 5000)

	spawn(r, with(Position{}))
	assert.GreaterOrEqual(t, ecs.PoolOf[Position](r).Cap(), 8192)
	assert.Contains(t, buf.String(), "component pool created")
	assert.Contains(t, buf.String(), "ecs_test.Position")

	r.Clear()
	assert.Contains(t, buf.String(), "registry cleared")
}
