package ecs

import "sort"

// RegistryStats is a point-in-time summary of a registry.
type RegistryStats struct {
	EntityCount    int
	EntityCapacity int
	PoolCount      int
	ComponentCount int
	SingletonCount int
	Pools          []PoolStats
}

// PoolStats describes one component pool.
type PoolStats struct {
	Type     string
	Size     int
	Capacity int
}

// Stats collects a snapshot of entity and pool usage. Pools are sorted by
// type name.
func (r *Registry) Stats() RegistryStats {
	stats := RegistryStats{
		EntityCount:    r.entities.len(),
		EntityCapacity: r.entities.capacity(),
		PoolCount:      r.pools.Len(),
		SingletonCount: r.singletons.Len(),
		Pools:          make([]PoolStats, 0, r.pools.Len()),
	}

	for pool := range r.pools.Values() {
		stats.ComponentCount += pool.Len()
		stats.Pools = append(stats.Pools, PoolStats{
			Type:     pool.Type().String(),
			Size:     pool.Len(),
			Capacity: pool.Cap(),
		})
	}

	sort.Slice(stats.Pools, func(i, j int) bool {
		return stats.Pools[i].Type < stats.Pools[j].Type
	})
	return stats
}
