package system

import (
	"time"

	"github.com/l1jgo/ecsworld/internal/component"
	"github.com/l1jgo/ecsworld/internal/core/ecs"
	"github.com/l1jgo/ecsworld/internal/core/event"
	coresys "github.com/l1jgo/ecsworld/internal/core/system"
	"go.uber.org/zap"
)

// BattleSystem ends the fight once at most one faction still has living
// units, or the round limit is reached (PreUpdate).
type BattleSystem struct {
	bus *event.Bus
	log *zap.Logger
}

func NewBattleSystem(bus *event.Bus, log *zap.Logger) *BattleSystem {
	return &BattleSystem{bus: bus, log: log}
}

func (s *BattleSystem) Name() string          { return "check_battle" }
func (s *BattleSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *BattleSystem) Update(w *ecs.World, _ time.Duration) error {
	var battle component.Battle
	if err := ecs.ViewResource(w, func(b component.Battle) error {
		battle = b
		return nil
	}); err != nil {
		return err
	}
	if !battle.OnGoing {
		return nil
	}

	alive, err := livingFactions(w)
	if err != nil {
		return err
	}

	var winner component.Faction
	switch {
	case len(alive) == 1:
		winner = alive[0]
	case len(alive) == 0:
	case battle.MaxRound > 0 && battle.Round >= battle.MaxRound:
	default:
		return nil
	}

	if err := ecs.UpdateResource(w, func(b *component.Battle) error {
		b.OnGoing = false
		b.Winner = winner
		return nil
	}); err != nil {
		return err
	}
	if s.bus != nil {
		event.Emit(s.bus, event.BattleFinished{Winner: string(winner), Rounds: battle.Round})
	}
	ecs.RequestExit(w, "battle finished")
	s.log.Info("battle finished",
		zap.String("winner", string(winner)),
		zap.Int("rounds", battle.Round),
	)
	return nil
}

// livingFactions lists, in order of first appearance, the factions that own
// at least one unit with positive health.
func livingFactions(w *ecs.World) ([]component.Faction, error) {
	fac, err := ecs.Read[component.Faction](w)
	if err != nil {
		return nil, err
	}
	defer fac.Release()
	hp, err := ecs.Read[component.Health](w)
	if err != nil {
		return nil, err
	}
	defer hp.Release()

	seen := make(map[component.Faction]bool)
	var out []component.Faction
	for _, id := range fac.With(hp.Query()).IDs() {
		h, _ := hp.Get(id)
		if h.Value <= 0 {
			continue
		}
		f, _ := fac.Get(id)
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}
