package system

import (
	"fmt"
	"time"

	"github.com/l1jgo/ecsworld/internal/component"
	"github.com/l1jgo/ecsworld/internal/core/ecs"
	coresys "github.com/l1jgo/ecsworld/internal/core/system"
	"github.com/l1jgo/ecsworld/internal/data"
	"go.uber.org/zap"
)

// SpawnSystem builds the battle from a scenario (Startup).
type SpawnSystem struct {
	scenario *data.Scenario
	log      *zap.Logger
}

func NewSpawnSystem(sc *data.Scenario, log *zap.Logger) *SpawnSystem {
	return &SpawnSystem{scenario: sc, log: log}
}

func (s *SpawnSystem) Name() string          { return "spawn" }
func (s *SpawnSystem) Phase() coresys.Phase { return coresys.PhaseStartup }

func (s *SpawnSystem) Update(w *ecs.World, _ time.Duration) error {
	n, err := SpawnScenario(w, s.scenario)
	if err != nil {
		return err
	}
	s.log.Info("battle spawned",
		zap.String("scenario", s.scenario.Name),
		zap.Int("units", n),
		zap.Strings("factions", s.scenario.Factions()),
	)
	return nil
}

// SpawnScenario creates the Battle resource and one entity per unit.
func SpawnScenario(w *ecs.World, sc *data.Scenario) (int, error) {
	if err := ecs.CreateResource(w, component.Battle{OnGoing: true, MaxRound: sc.MaxRound}); err != nil {
		return 0, fmt.Errorf("create battle: %w", err)
	}
	// Later systems query these before the first death or the first unit.
	for _, register := range []func(*ecs.World) error{
		ecs.Register[component.Dead],
		ecs.Register[component.Health],
		ecs.Register[component.Faction],
		ecs.Register[component.Attacker],
		ecs.Register[component.Name],
	} {
		if err := register(w); err != nil && !isRegistered(err) {
			return 0, err
		}
	}

	n := 0
	for _, u := range sc.Units {
		for i := 0; i < u.Count; i++ {
			e := w.CreateEntity()
			name := u.Name
			if u.Count > 1 {
				name = fmt.Sprintf("%s#%d", u.Name, i+1)
			}
			ecs.Insert(w, e, component.Name(name))
			ecs.Insert(w, e, component.Faction(u.Faction))
			ecs.Insert(w, e, component.Health{Value: u.Health})
			if u.Damage > 0 {
				ecs.Insert(w, e, component.Attacker{Damage: u.Damage})
			}
			n++
		}
	}
	return n, nil
}
