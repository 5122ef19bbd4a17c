package system

import (
	"math/rand/v2"
	"time"

	"github.com/l1jgo/ecsworld/internal/component"
	"github.com/l1jgo/ecsworld/internal/core/ecs"
	coresys "github.com/l1jgo/ecsworld/internal/core/system"
	"go.uber.org/zap"
)

// Particles spawn inside a fieldSize x fieldSize square.
const fieldSize = 600.0

// ParticleSpawnSystem creates the simulation resources and the first
// generation of particles (Startup).
type ParticleSpawnSystem struct {
	params component.ParticleParameters
	rng    *rand.Rand
	log    *zap.Logger
}

func NewParticleSpawnSystem(params component.ParticleParameters, seed uint64, log *zap.Logger) *ParticleSpawnSystem {
	return &ParticleSpawnSystem{params: params, rng: rand.New(rand.NewPCG(seed, seed)), log: log}
}

func (s *ParticleSpawnSystem) Name() string          { return "particle_spawn" }
func (s *ParticleSpawnSystem) Phase() coresys.Phase { return coresys.PhaseStartup }

func (s *ParticleSpawnSystem) Update(w *ecs.World, _ time.Duration) error {
	params := s.params
	params.Reset = false
	if err := ecs.CreateResource(w, params); err != nil {
		return err
	}
	if err := ecs.CreateResource(w, component.ParticleStats{}); err != nil {
		return err
	}
	if err := ecs.Register[component.Particle](w); err != nil && !isRegistered(err) {
		return err
	}
	n := spawnParticles(w, s.rng, params)
	s.log.Info("particles spawned", zap.Int("count", n))
	return nil
}

// ParticleResetSystem replaces every particle when the parameters ask for a
// reset (PreUpdate).
type ParticleResetSystem struct {
	rng *rand.Rand
	log *zap.Logger
}

func NewParticleResetSystem(seed uint64, log *zap.Logger) *ParticleResetSystem {
	return &ParticleResetSystem{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), log: log}
}

func (s *ParticleResetSystem) Name() string          { return "particle_reset" }
func (s *ParticleResetSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *ParticleResetSystem) Update(w *ecs.World, _ time.Duration) error {
	var params component.ParticleParameters
	if err := ecs.UpdateResource(w, func(p *component.ParticleParameters) error {
		params = *p
		p.Reset = false
		return nil
	}); err != nil {
		return err
	}
	if !params.Reset {
		return nil
	}

	old, err := ecs.QueryOf[component.Particle](w)
	if err != nil {
		return err
	}
	for id := range old.All() {
		w.DeleteEntity(id)
	}
	n := spawnParticles(w, s.rng, params)
	s.log.Info("particles reset", zap.Int("removed", old.Len()), zap.Int("spawned", n))
	return nil
}

func spawnParticles(w *ecs.World, rng *rand.Rand, params component.ParticleParameters) int {
	entries := make([]ecs.Entry[component.Particle], 0, params.Count)
	for range params.Count {
		entries = append(entries, ecs.Entry[component.Particle]{
			Entity: w.CreateEntity(),
			Value: component.Particle{
				Position: component.Vec2{X: rng.Float64() * fieldSize, Y: rng.Float64() * fieldSize},
				Velocity: component.Vec2{
					X: spread(rng, params.VelocityVariation),
					Y: spread(rng, params.VelocityVariation),
				},
			},
		})
	}
	ecs.InsertMany(w, entries)
	return len(entries)
}

// spread returns a uniform value in [-v, v).
func spread(rng *rand.Rand, v float64) float64 {
	if v <= 0 {
		return 0
	}
	return (rng.Float64()*2 - 1) * v
}

// AttractionSystem pulls every ordered pair of particles toward each other
// and then integrates positions (Update).
type AttractionSystem struct{}

func NewAttractionSystem() *AttractionSystem { return &AttractionSystem{} }

func (s *AttractionSystem) Name() string          { return "particle_attraction" }
func (s *AttractionSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *AttractionSystem) Update(w *ecs.World, _ time.Duration) error {
	params, err := ecs.ResourceRef[component.ParticleParameters](w)
	if err != nil {
		return err
	}
	defer params.Release()
	p := params.Get()

	return ecs.Update(w, func(g *ecs.WriteGuard[component.Particle]) error {
		ids := g.Query().IDs()
		for _, aID := range ids {
			for _, bID := range ids {
				if aID == bID {
					continue
				}
				a, b, err := g.GetPair(aID, bID)
				if err != nil {
					return err
				}
				diff := b.Position.Sub(a.Position).Scale(p.Mass * p.DeltaTime)
				a.Velocity = a.Velocity.Add(diff)
				b.Velocity = b.Velocity.Sub(diff)
			}
		}
		for _, part := range g.All() {
			part.Position = part.Position.Add(part.Velocity.Scale(p.DeltaTime))
		}
		return nil
	})
}

// ParticleStatsSystem publishes the particle count and centroid (PostUpdate).
type ParticleStatsSystem struct{}

func NewParticleStatsSystem() *ParticleStatsSystem { return &ParticleStatsSystem{} }

func (s *ParticleStatsSystem) Name() string          { return "particle_stats" }
func (s *ParticleStatsSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *ParticleStatsSystem) Update(w *ecs.World, _ time.Duration) error {
	var stats component.ParticleStats
	if err := ecs.View(w, func(g *ecs.ReadGuard[component.Particle]) error {
		var sum component.Vec2
		for _, part := range g.All() {
			sum = sum.Add(part.Position)
			stats.Count++
		}
		if stats.Count > 0 {
			stats.Centroid = sum.Scale(1 / float64(stats.Count))
		}
		return nil
	}); err != nil {
		return err
	}
	return ecs.UpdateResource(w, func(dst *component.ParticleStats) error {
		*dst = stats
		return nil
	})
}
