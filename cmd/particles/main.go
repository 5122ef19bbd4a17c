package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/l1jgo/ecsworld/internal/app"
	"github.com/l1jgo/ecsworld/internal/component"
	"github.com/l1jgo/ecsworld/internal/core/ecs"
	"github.com/l1jgo/ecsworld/internal/system"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}
	log, err := app.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	con := app.NewConsole(os.Stdout)
	con.Banner("ecsworld particles")

	pc := cfg.Particles
	params := component.ParticleParameters{
		DeltaTime:         pc.DeltaTime,
		Mass:              pc.Mass,
		Count:             pc.Count,
		VelocityVariation: pc.VelocityVariation,
	}
	con.Stat("particles", params.Count)

	w := app.NewWorld(cfg.World, log)
	runner, err := app.NewRunner(cfg.Runner, log)
	if err != nil {
		return err
	}
	seed := uint64(pc.Seed)
	runner.Register(system.NewParticleSpawnSystem(params, seed, log))
	runner.Register(system.NewParticleResetSystem(seed, log))
	runner.Register(system.NewAttractionSystem())
	runner.Register(system.NewParticleStatsSystem())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	con.Ready("simulation started")
	err = runner.Run(ctx, w, cfg.Runner.TickRate.Duration, cfg.Runner.MaxTicks)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	g, err := ecs.ResourceRef[component.ParticleStats](w)
	if err != nil {
		return err
	}
	st := g.Get()
	g.Release()
	log.Info("simulation summary",
		zap.Int("particles", st.Count),
		zap.Float64("centroid_x", st.Centroid.X),
		zap.Float64("centroid_y", st.Centroid.Y),
	)
	return nil
}
