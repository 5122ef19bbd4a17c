package system

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/l1jgo/ecsworld/internal/core/ecs"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tickPhases = []Phase{PhasePreUpdate, PhaseUpdate, PhasePostUpdate, PhaseCleanup}

// Runner executes systems in phase order each tick. Within a sequential phase
// systems run in registration order; a pooled phase fans its systems out over
// at most workers goroutines and joins them before the next phase starts.
type Runner struct {
	systems []System
	sorted  bool
	workers int
	pooled  map[Phase]bool
	log     *zap.Logger
}

type RunnerOption func(*Runner)

func WithWorkers(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithPooled marks phases whose systems may run in parallel.
func WithPooled(phases ...Phase) RunnerOption {
	return func(r *Runner) {
		for _, p := range phases {
			r.pooled[p] = true
		}
	}
}

func WithLogger(log *zap.Logger) RunnerOption {
	return func(r *Runner) {
		if log != nil {
			r.log = log
		}
	}
}

func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		systems: make([]System, 0, 16),
		workers: 1,
		pooled:  make(map[Phase]bool),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

// Systems lists the systems of one phase in execution order.
func (r *Runner) Systems(phase Phase) []System {
	r.ensureSorted()
	out := make([]System, 0, len(r.systems))
	for _, s := range r.systems {
		if s.Phase() == phase {
			out = append(out, s)
		}
	}
	return out
}

// Tick runs every per-tick phase once. A failing system does not stop the
// others; all failures of the tick are returned together.
func (r *Runner) Tick(ctx context.Context, w *ecs.World, dt time.Duration) error {
	var errs error
	for _, phase := range tickPhases {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}
		errs = multierr.Append(errs, r.RunPhase(ctx, phase, w, dt))
	}
	return errs
}

// RunPhase runs only the systems of the given phase and returns when all of
// them have finished.
func (r *Runner) RunPhase(ctx context.Context, phase Phase, w *ecs.World, dt time.Duration) error {
	systems := r.Systems(phase)
	if !r.pooled[phase] || r.workers < 2 || len(systems) < 2 {
		var errs error
		for _, s := range systems {
			if err := ctx.Err(); err != nil {
				return multierr.Append(errs, err)
			}
			errs = multierr.Append(errs, r.invoke(s, w, dt))
		}
		return errs
	}

	var (
		mu   sync.Mutex
		errs error
		g    errgroup.Group
	)
	g.SetLimit(r.workers)
	for _, s := range systems {
		g.Go(func() error {
			if err := r.invoke(s, w, dt); err != nil {
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errs
}

// Run executes the startup phase, ticks every tickRate until a system sets the
// exit flag, ctx is cancelled, or maxTicks ticks have run (0 means no limit),
// then executes the shutdown phase. A tickRate of 0 ticks back to back.
// Tick failures are logged and do not stop the loop; a startup failure does.
func (r *Runner) Run(ctx context.Context, w *ecs.World, tickRate time.Duration, maxTicks int) error {
	if err := r.RunPhase(ctx, PhaseStartup, w, 0); err != nil {
		return fmt.Errorf("startup: %w", err)
	}

	var tick <-chan time.Time
	if tickRate > 0 {
		ticker := time.NewTicker(tickRate)
		defer ticker.Stop()
		tick = ticker.C
	}

	ticks, failed := 0, 0
loop:
	for !ecs.ExitRequested(w) && (maxTicks <= 0 || ticks < maxTicks) {
		if tick != nil {
			select {
			case <-ctx.Done():
				break loop
			case <-tick:
			}
		} else if ctx.Err() != nil {
			break loop
		}
		if err := r.Tick(ctx, w, tickRate); err != nil {
			failed++
		}
		ticks++
	}
	r.log.Info("run loop stopped",
		zap.Int("ticks", ticks),
		zap.Int("failed_ticks", failed),
		zap.Bool("exit_requested", ecs.ExitRequested(w)),
	)

	if err := r.RunPhase(context.WithoutCancel(ctx), PhaseShutdown, w, 0); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return ctx.Err()
}

// invoke runs one system, turning a panic into an error so a broken system
// cannot take down its phase. Guards taken through View/Update are already
// released by their defers when the panic reaches here.
func (r *Runner) invoke(s System, w *ecs.World, dt time.Duration) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("system %s panicked: %v", s.Name(), p)
		}
		if err != nil {
			r.log.Error("system failed",
				zap.String("system", s.Name()),
				zap.Stringer("phase", s.Phase()),
				zap.Error(err),
			)
		}
	}()
	if err := s.Update(w, dt); err != nil {
		return fmt.Errorf("system %s: %w", s.Name(), err)
	}
	return nil
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
