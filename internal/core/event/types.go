package event

import "github.com/l1jgo/ecsworld/internal/core/ecs"

// EntityDied is emitted when an entity's health reaches zero, the tick before
// it is destroyed.
type EntityDied struct {
	Entity  ecs.EntityID
	Name    string
	Faction string
}

// BattleFinished is emitted once when a single faction remains.
type BattleFinished struct {
	Winner string
	Rounds int
}
