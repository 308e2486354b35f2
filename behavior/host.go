package behavior

import "github.com/milk9111/critters/ecs"

// FieldStore is keyed get/set on an entity's base fields (position, size,
// facing, and whatever else content defines). The engine reads and writes
// through it but does not own it. Last write wins within a tick.
type FieldStore interface {
	Get(e ecs.Entity, key string) (any, bool)
	Set(e ecs.Entity, key string, v any)
}

// Rand is the injected random source. Pick's argument must be positive;
// callers branch around empty selections.
type Rand interface {
	Float64(min, max float64) float64
	Pick(n int) int
}

// Host is everything the engine and its handlers consume from the outside
// world. The simulation owns the clock, entity storage, and delivery
// scheduling; the engine only defines how an entity reacts once an event
// reaches it.
type Host interface {
	// Now is monotonic simulation time in seconds, advanced once per tick.
	Now() float64
	Rand() Rand
	Fields() FieldStore

	// Spawn creates an entity of a named archetype with behavior attached;
	// init args are forwarded to the archetype's init dispatch.
	Spawn(archetype string, args ...any) (ecs.Entity, error)
	// Kill marks an entity for removal at the host's sweep point.
	Kill(e ecs.Entity)

	EntitiesOf(archetype string) []ecs.Entity
	Tagged(tag string) []ecs.Entity
	TaggedWith(tag, value string) []ecs.Entity

	// Message queues a named message for the target; the host delivers it
	// at its defined point (before update, next tick).
	Message(target ecs.Entity, name string, args ...any)
}
