package system

import (
	"fmt"
	"strings"
	"time"

	"github.com/l1jgo/ecsworld/internal/core/ecs"
)

// Phase defines execution ordering within a run.
type Phase int

const (
	PhaseStartup    Phase = iota // 0: once, before the first tick
	PhasePreUpdate               // 1: dispatch last tick's events, check state
	PhaseUpdate                  // 2: simulation logic
	PhasePostUpdate              // 3: react to this tick's changes
	PhaseCleanup                 // 4: destroy queued entities
	PhaseShutdown                // 5: once, after the loop stops
)

var phaseNames = [...]string{"startup", "pre_update", "update", "post_update", "cleanup", "shutdown"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// ParsePhase maps a config name such as "update" back to its Phase.
func ParsePhase(name string) (Phase, error) {
	for i, n := range phaseNames {
		if strings.EqualFold(n, name) {
			return Phase(i), nil
		}
	}
	return 0, fmt.Errorf("unknown phase %q", name)
}

// System is the interface every ECS system implements. Update receives the
// shared World and must reach its data only through guards.
type System interface {
	Name() string
	Phase() Phase
	Update(w *ecs.World, dt time.Duration) error
}

// Func adapts a plain function to System.
type Func struct {
	name  string
	phase Phase
	fn    func(*ecs.World, time.Duration) error
}

func NewFunc(name string, phase Phase, fn func(*ecs.World, time.Duration) error) *Func {
	return &Func{name: name, phase: phase, fn: fn}
}

func (f *Func) Name() string { return f.name }
func (f *Func) Phase() Phase { return f.phase }
func (f *Func) Update(w *ecs.World, dt time.Duration) error {
	return f.fn(w, dt)
}
