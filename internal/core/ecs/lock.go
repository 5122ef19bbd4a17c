package ecs

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// lockWatch acquires store and resource locks. With a positive threshold, an
// acquisition that cannot complete immediately arms a timer that logs a
// warning once the wait exceeds it. Acquisition itself never times out.
type lockWatch struct {
	log   *zap.Logger
	after time.Duration
}

func (lw lockWatch) lock(mu *sync.RWMutex, typeName string) {
	if lw.after <= 0 {
		mu.Lock()
		return
	}
	if mu.TryLock() {
		return
	}
	t := lw.arm(typeName, "write")
	mu.Lock()
	t.Stop()
}

func (lw lockWatch) rlock(mu *sync.RWMutex, typeName string) {
	if lw.after <= 0 {
		mu.RLock()
		return
	}
	if mu.TryRLock() {
		return
	}
	t := lw.arm(typeName, "read")
	mu.RLock()
	t.Stop()
}

func (lw lockWatch) arm(typeName, mode string) *time.Timer {
	return time.AfterFunc(lw.after, func() {
		lw.log.Warn("slow lock acquisition",
			zap.String("type", typeName),
			zap.String("mode", mode),
			zap.Duration("threshold", lw.after),
		)
	})
}
