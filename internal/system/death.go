package system

import (
	"time"

	"github.com/l1jgo/ecsworld/internal/component"
	"github.com/l1jgo/ecsworld/internal/core/ecs"
	"github.com/l1jgo/ecsworld/internal/core/event"
	coresys "github.com/l1jgo/ecsworld/internal/core/system"
	"go.uber.org/zap"
)

// DeathSystem tags units whose health ran out, announces them and queues
// them for deletion by CleanupSystem (PostUpdate).
type DeathSystem struct {
	bus *event.Bus
	log *zap.Logger
}

func NewDeathSystem(bus *event.Bus, log *zap.Logger) *DeathSystem {
	return &DeathSystem{bus: bus, log: log}
}

func (s *DeathSystem) Name() string          { return "death" }
func (s *DeathSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *DeathSystem) Update(w *ecs.World, _ time.Duration) error {
	dying, err := s.collect(w)
	if err != nil {
		return err
	}
	// Read guards are released before tagging; Insert takes the Dead write lock.
	for _, d := range dying {
		ecs.Insert(w, d.Entity, component.Dead{})
		w.MarkForDestruction(d.Entity)
		if s.bus != nil {
			event.Emit(s.bus, d)
		}
		s.log.Info("unit died",
			zap.Uint64("entity", uint64(d.Entity)),
			zap.String("name", d.Name),
			zap.String("faction", d.Faction),
		)
	}
	return nil
}

func (s *DeathSystem) collect(w *ecs.World) ([]event.EntityDied, error) {
	dead, err := ecs.Read[component.Dead](w)
	if err != nil {
		return nil, err
	}
	defer dead.Release()
	fac, err := ecs.Read[component.Faction](w)
	if err != nil {
		return nil, err
	}
	defer fac.Release()
	names, err := ecs.Read[component.Name](w)
	if err != nil {
		return nil, err
	}
	defer names.Release()
	hp, err := ecs.Read[component.Health](w)
	if err != nil {
		return nil, err
	}
	defer hp.Release()

	var out []event.EntityDied
	for _, id := range dead.Without(hp.Query()).IDs() {
		h, _ := hp.Get(id)
		if h.Value > 0 {
			continue
		}
		f, _ := fac.Get(id)
		out = append(out, event.EntityDied{Entity: id, Name: nameOf(names, id), Faction: string(f)})
	}
	return out, nil
}
