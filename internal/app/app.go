// Package app wires configuration into a World and a Runner for the
// command-line programs.
package app

import (
	"fmt"
	"os"

	"github.com/l1jgo/ecsworld/internal/config"
	"github.com/l1jgo/ecsworld/internal/core/ecs"
	coresys "github.com/l1jgo/ecsworld/internal/core/system"
	"go.uber.org/zap"
)

// ConfigEnv overrides the default config path.
const ConfigEnv = "ECSWORLD_CONFIG"

// DefaultConfigPath is used when ConfigEnv is unset.
const DefaultConfigPath = "config/world.toml"

// LoadConfig reads the config file named by ConfigEnv, or the default path.
// A missing default file yields config.Defaults().
func LoadConfig() (*config.Config, error) {
	path := DefaultConfigPath
	if p := os.Getenv(ConfigEnv); p != "" {
		path = p
	} else if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.Defaults(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// NewWorld builds a World from the [world] section.
func NewWorld(cfg config.WorldConfig, log *zap.Logger) *ecs.World {
	return ecs.NewWorld(
		ecs.WithLogger(log),
		ecs.WithIDGenerator(ecs.NewCounter(cfg.FirstEntityID)),
		ecs.WithLockWarning(cfg.LockWarnAfter.Duration),
	)
}

// NewRunner builds a Runner from the [runner] section.
func NewRunner(cfg config.RunnerConfig, log *zap.Logger) (*coresys.Runner, error) {
	pooled := make([]coresys.Phase, 0, len(cfg.PooledPhases))
	for _, name := range cfg.PooledPhases {
		p, err := coresys.ParsePhase(name)
		if err != nil {
			return nil, fmt.Errorf("runner.pooled_phases: %w", err)
		}
		pooled = append(pooled, p)
	}
	return coresys.NewRunner(
		coresys.WithWorkers(cfg.Workers),
		coresys.WithPooled(pooled...),
		coresys.WithLogger(log),
	), nil
}
