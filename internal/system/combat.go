package system

import (
	"time"

	"github.com/l1jgo/ecsworld/internal/component"
	"github.com/l1jgo/ecsworld/internal/core/ecs"
	coresys "github.com/l1jgo/ecsworld/internal/core/system"
	"github.com/l1jgo/ecsworld/internal/scripting"
	"go.uber.org/zap"
)

// CombatSystem resolves one round (Update). Every unit with an Attacker and a
// Faction strikes every living unit of another faction. Units brought to zero
// health earlier in the same round still strike; DeathSystem removes them
// afterwards.
//
// Guards are taken in a fixed order: Attacker, Faction, Name, then Health.
type CombatSystem struct {
	scripts *scripting.Engine
	log     *zap.Logger
}

func NewCombatSystem(scripts *scripting.Engine, log *zap.Logger) *CombatSystem {
	return &CombatSystem{scripts: scripts, log: log}
}

func (s *CombatSystem) Name() string          { return "combat" }
func (s *CombatSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *CombatSystem) Update(w *ecs.World, _ time.Duration) error {
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
	round := battle.Round + 1

	hits, err := s.resolve(w, round)
	if err != nil {
		return err
	}

	if err := ecs.UpdateResource(w, func(b *component.Battle) error {
		b.Round = round
		return nil
	}); err != nil {
		return err
	}
	s.log.Debug("round resolved", zap.Int("round", round), zap.Int("hits", hits))
	return nil
}

func (s *CombatSystem) resolve(w *ecs.World, round int) (int, error) {
	att, err := ecs.Read[component.Attacker](w)
	if err != nil {
		return 0, err
	}
	defer att.Release()
	fac, err := ecs.Read[component.Faction](w)
	if err != nil {
		return 0, err
	}
	defer fac.Release()
	names, err := ecs.Read[component.Name](w)
	if err != nil {
		return 0, err
	}
	defer names.Release()
	hp, err := ecs.Write[component.Health](w)
	if err != nil {
		return 0, err
	}
	defer hp.Release()

	attackers := fac.With(att.Query()).IDs()
	targets := fac.With(hp.Query()).IDs()

	hits := 0
	for _, a := range attackers {
		aAtt, _ := att.Get(a)
		aFac, _ := fac.Get(a)
		for _, t := range targets {
			if t == a {
				continue
			}
			tFac, _ := fac.Get(t)
			if tFac == aFac {
				continue
			}
			h, _ := hp.GetMut(t)
			if h.Value <= 0 {
				continue
			}
			res := s.scripts.CalcAttack(scripting.AttackContext{
				AttackerName:    nameOf(names, a),
				AttackerFaction: string(aFac),
				AttackerDamage:  aAtt.Damage,
				TargetName:      nameOf(names, t),
				TargetFaction:   string(tFac),
				TargetHealth:    h.Value,
				Round:           round,
			})
			if !res.IsHit {
				continue
			}
			h.Value -= res.Damage
			hits++
		}
	}
	return hits, nil
}
