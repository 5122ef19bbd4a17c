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
	"github.com/l1jgo/ecsworld/internal/core/event"
	"github.com/l1jgo/ecsworld/internal/data"
	"github.com/l1jgo/ecsworld/internal/scripting"
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
	// 1. Load config
	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}

	// 2. Init logger
	log, err := app.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	con := app.NewConsole(os.Stdout)
	con.Banner("ecsworld battle")

	// 3. Load scenario and scripts
	con.Section("data")
	scenario, err := data.LoadScenario(cfg.Battle.Scenario)
	if err != nil {
		return fmt.Errorf("load scenario: %w", err)
	}
	con.Stat("units", scenario.Count())
	con.Stat("factions", len(scenario.Factions()))

	scripts, err := scripting.NewEngine(cfg.Battle.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer scripts.Close()
	con.OK("combat scripts loaded")
	fmt.Println()

	// 4. World, bus and systems
	w := app.NewWorld(cfg.World, log)
	bus := event.NewBus()
	event.Subscribe(bus, func(e event.EntityDied) {
		fmt.Printf("  %s (%s) has fallen\n", e.Name, e.Faction)
	})
	event.Subscribe(bus, func(e event.BattleFinished) {
		if e.Winner == "" {
			fmt.Printf("  draw after %d rounds\n", e.Rounds)
			return
		}
		fmt.Printf("  %s wins after %d rounds\n", e.Winner, e.Rounds)
	})

	runner, err := app.NewRunner(cfg.Runner, log)
	if err != nil {
		return err
	}
	runner.Register(system.NewSpawnSystem(scenario, log))
	runner.Register(event.NewDispatchSystem(bus))
	runner.Register(system.NewBattleSystem(bus, log))
	runner.Register(system.NewCombatSystem(scripts, log))
	runner.Register(system.NewDeathSystem(bus, log))
	runner.Register(system.NewCleanupSystem(log))

	// 5. Run until a faction wins or a signal arrives
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	con.Ready("battle started")
	err = runner.Run(ctx, w, cfg.Runner.TickRate.Duration, cfg.Runner.MaxTicks)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	// Deliver events emitted during the final tick.
	bus.SwapBuffers()
	bus.DispatchAll()

	var b component.Battle
	if err := ecs.ViewResource(w, func(v component.Battle) error { b = v; return nil }); err != nil {
		return err
	}
	log.Info("battle summary",
		zap.String("winner", string(b.Winner)),
		zap.Int("rounds", b.Round),
		zap.Int("survivors", w.Entities().Len()),
	)
	return nil
}
