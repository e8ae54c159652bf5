package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	"github.com/pkg/profile"
	"github.com/plus3/vecs/ecs"
	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"
)

type Position struct {
	X, Y float32
}

type Velocity struct {
	DX, DY float32
}

type Health struct {
	Current int
	Max     int
}

type Name struct {
	Value string
}

type FrameCount struct {
	Frames int64
}

type mover struct {
	*Position
	*Velocity
}

type mortal struct {
	*Health
	Name *Name `ecs:"optional"`
}

func main() {
	duration := flag.DurationP("duration", "d", 10*time.Second, "The total duration the test should run for.")
	entityCount := flag.IntP("entities", "n", 10000, "The initial number of entities to create.")
	churn := flag.Float64("churn", 0.01, "Fraction of mortal entities destroyed and respawned each frame.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	profileMode := flag.String("profile", "", "Write a cpu or mem profile to the working directory.")
	verbose := flag.BoolP("verbose", "v", false, "Log registry events at debug level.")
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	switch *profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		logger.Fatal().Str("profile", *profileMode).Msg("unknown profile mode, want cpu or mem")
	}

	logger.Info().Msg("Starting ECS benchmark...")

	// 1. Setup Registry
	registry := ecs.NewRegistry(
		ecs.WithEntityCapacity(*entityCount),
		ecs.WithPoolCapacity(*entityCount),
		ecs.WithLogger(logger),
	)
	frames := ecs.NewSingleton[FrameCount](registry)

	// 2. Populate the registry with initial entities
	logger.Info().Int("entities", *entityCount).Msg("Populating registry")
	for i := 0; i < *entityCount; i++ {
		spawnEntity(registry, i)
	}
	logger.Info().Msg("Population complete.")

	// 3. Run the simulation loop
	report := &Report{
		Duration:       *duration,
		Entities:       *entityCount,
		Churn:          *churn,
		GCPauseMetrics: *gcPauseMetrics,
		UpdateTime: Stats{
			Samples: make([]time.Duration, 0),
		},
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	movers := ecs.NewView[mover](registry)
	mortals := ecs.NewView[mortal](registry)
	cmds := ecs.NewCommands()

	logger.Info().Dur("duration", *duration).Msg("Running simulation")
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	startTime := time.Now()
	var totalUpdates int64
	lastFrameTime := time.Now()

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			deltaTime := time.Since(lastFrameTime)
			lastFrameTime = time.Now()

			updateStart := time.Now()
			if err := update(registry, movers, mortals, cmds, float32(deltaTime.Seconds()), float32(*churn)); err != nil {
				logger.Fatal().Err(err).Msg("Frame update failed")
			}
			updateDuration := time.Since(updateStart)

			frames.Get().Frames++
			report.UpdateTime.Samples = append(report.UpdateTime.Samples, updateDuration)
			totalUpdates++
		}
	}

	report.TotalTime = time.Since(startTime)
	report.TotalUpdates = totalUpdates
	report.UpdateTime.Finalize()
	report.Registry = registry.Stats()
	runtime.ReadMemStats(&report.MemStatsEnd)

	logger.Info().Int64("frames", frames.Get().Frames).Msg("Simulation finished.")

	// 4. Generate Report to Console
	fmt.Println("\n\n--- Benchmark Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		logger.Fatal().Err(err).Msg("Failed to generate report")
	}
	fmt.Println("--- End of Report ---")
}

// spawnEntity creates a moving entity. Every second entity is mortal and
// every fourth mortal one is named.
func spawnEntity(r *ecs.Registry, i int) {
	e := r.CreateEntity()
	ecs.AddComponent(r, e, Position{X: rand.Float32() * 100, Y: rand.Float32() * 100})
	ecs.AddComponent(r, e, Velocity{DX: rand.Float32() - 0.5, DY: rand.Float32() - 0.5})
	if i%2 == 0 {
		ecs.AddComponent(r, e, Health{Current: 100, Max: 100})
		if i%8 == 0 {
			ecs.AddComponent(r, e, Name{Value: fmt.Sprintf("entity-%d", i)})
		}
	}
}

// update runs one frame: integrate movement, decay health, and replace a
// fraction of the mortal entities through a command buffer.
func update(r *ecs.Registry, movers *ecs.View[mover], mortals *ecs.View[mortal], cmds *ecs.Commands, dt, churn float32) error {
	movers.EachComponents(func(m mover) {
		m.Position.X += m.Velocity.DX * dt
		m.Position.Y += m.Velocity.DY * dt
	})

	spawned := 0
	mortals.Each(func(e ecs.Entity, m mortal) {
		m.Health.Current--
		if m.Health.Current <= 0 || rand.Float32() < churn {
			cmds.Destroy(e)
			spawned++
		}
	})
	cmds.Defer(func() {
		for i := 0; i < spawned; i++ {
			spawnEntity(r, i*2)
		}
	})

	return cmds.Flush(r)
}
