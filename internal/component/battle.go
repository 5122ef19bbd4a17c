package component

// Health is an entity's remaining hit points. Zero or less means dead.
type Health struct {
	Value int
}

// Attacker marks an entity that deals damage every round.
type Attacker struct {
	Damage int
}

// Faction groups entities that do not attack each other.
type Faction string

// Name is a display label for logs.
type Name string

// Dead tags an entity whose death has been reported and that waits for cleanup.
type Dead struct{}

// Battle is the resource tracking the fight as a whole.
type Battle struct {
	OnGoing  bool
	Round    int
	MaxRound int // 0 = no limit
	Winner   Faction
}
