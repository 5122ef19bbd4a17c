package system

import (
	"time"

	"github.com/l1jgo/ecsworld/internal/core/ecs"
	coresys "github.com/l1jgo/ecsworld/internal/core/system"
	"go.uber.org/zap"
)

// CleanupSystem deletes entities queued via MarkForDestruction (Cleanup).
// Deleting here, after every other phase, keeps the world free of
// half-deleted entities while systems run.
type CleanupSystem struct {
	log *zap.Logger
}

func NewCleanupSystem(log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{log: log}
}

func (s *CleanupSystem) Name() string          { return "cleanup" }
func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(w *ecs.World, _ time.Duration) error {
	if n := w.FlushDestroyQueue(); n > 0 {
		s.log.Debug("entities destroyed", zap.Int("count", n))
	}
	return nil
}
