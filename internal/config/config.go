package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	World     WorldConfig     `toml:"world"`
	Runner    RunnerConfig    `toml:"runner"`
	Logging   LoggingConfig   `toml:"logging"`
	Battle    BattleConfig    `toml:"battle"`
	Particles ParticlesConfig `toml:"particles"`
}

type WorldConfig struct {
	FirstEntityID uint64   `toml:"first_entity_id"`
	LockWarnAfter Duration `toml:"lock_warn_after"` // 0 disables slow-lock warnings
}

type RunnerConfig struct {
	TickRate     Duration `toml:"tick_rate"`     // 0 = back to back
	Workers      int      `toml:"workers"`       // pool size for pooled phases
	PooledPhases []string `toml:"pooled_phases"` // e.g. ["update"]
	MaxTicks     int      `toml:"max_ticks"`     // 0 = until exit flag
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type BattleConfig struct {
	Scenario   string `toml:"scenario"`
	ScriptsDir string `toml:"scripts_dir"`
}

type ParticlesConfig struct {
	Count             int     `toml:"count"`
	Mass              float64 `toml:"mass"`
	DeltaTime         float64 `toml:"delta_time"`
	VelocityVariation float64 `toml:"velocity_variation"`
	Seed              int64   `toml:"seed"`
}

// Duration reads TOML strings such as "200ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes TOML over the defaults. name is used in error messages.
func Parse(data []byte, name string) (*Config, error) {
	cfg := Defaults()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", name, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("parse config %s: unknown key %s", name, undecoded[0])
	}
	if cfg.Runner.Workers < 1 {
		return nil, fmt.Errorf("config %s: runner.workers must be at least 1", name)
	}
	return cfg, nil
}

func Defaults() *Config {
	return &Config{
		World: WorldConfig{
			FirstEntityID: 1,
		},
		Runner: RunnerConfig{
			TickRate: Duration{200 * time.Millisecond},
			Workers:  4,
			MaxTicks: 0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Battle: BattleConfig{
			Scenario:   "data/yaml/battle.yaml",
			ScriptsDir: "scripts",
		},
		Particles: ParticlesConfig{
			Count:             100,
			Mass:              1.0,
			DeltaTime:         1.0 / 30.0,
			VelocityVariation: 0,
			Seed:              1,
		},
	}
}
