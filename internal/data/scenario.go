package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// UnitTemplate describes one kind of combatant and how many to spawn.
type UnitTemplate struct {
	Name    string `yaml:"name"`
	Faction string `yaml:"faction"`
	Health  int    `yaml:"health"`
	Damage  int    `yaml:"damage"`
	Count   int    `yaml:"count"`
}

// Scenario is a battle setup loaded from YAML.
type Scenario struct {
	Name     string         `yaml:"name"`
	MaxRound int            `yaml:"max_rounds"` // 0 = fight until one faction remains
	Units    []UnitTemplate `yaml:"units"`
}

// LoadScenario loads a battle scenario file.
func LoadScenario(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return ParseScenario(raw)
}

func ParseScenario(raw []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(raw, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	for i := range sc.Units {
		u := &sc.Units[i]
		if u.Count == 0 {
			u.Count = 1
		}
		switch {
		case u.Name == "":
			return nil, fmt.Errorf("scenario unit %d: missing name", i)
		case u.Faction == "":
			return nil, fmt.Errorf("scenario unit %s: missing faction", u.Name)
		case u.Health <= 0:
			return nil, fmt.Errorf("scenario unit %s: health must be positive", u.Name)
		case u.Count < 0 || u.Damage < 0:
			return nil, fmt.Errorf("scenario unit %s: negative count or damage", u.Name)
		}
	}
	return &sc, nil
}

// Count returns the total number of units the scenario spawns.
func (s *Scenario) Count() int {
	n := 0
	for _, u := range s.Units {
		n += u.Count
	}
	return n
}

// Factions lists the distinct factions in first-seen order.
func (s *Scenario) Factions() []string {
	seen := make(map[string]bool, len(s.Units))
	var out []string
	for _, u := range s.Units {
		if !seen[u.Faction] {
			seen[u.Faction] = true
			out = append(out, u.Faction)
		}
	}
	return out
}
