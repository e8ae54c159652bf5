package ecs

import "github.com/rs/zerolog"

type registryConfig struct {
	entityCapacity int
	poolCapacity   int
	logger         zerolog.Logger
}

func defaultRegistryConfig() registryConfig {
	return registryConfig{
		entityCapacity: minEntityCapacity,
		poolCapacity:   minPoolCapacity,
		logger:         zerolog.Nop(),
	}
}

// Option configures a Registry.
type Option func(*registryConfig)

// WithEntityCapacity preallocates room for n entities. Values below 1024 are
// raised to 1024.
func WithEntityCapacity(n int) Option {
	return func(c *registryConfig) {
		c.entityCapacity = n
	}
}

// WithPoolCapacity sets the initial capacity of lazily created pools.
func WithPoolCapacity(n int) Option {
	return func(c *registryConfig) {
		c.poolCapacity = n
	}
}

// WithLogger sets the logger used for pool lifecycle events.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *registryConfig) {
		c.logger = logger
	}
}
