package behavior

// Event names a lifecycle hook an entity's behavior can handle.
type Event string

const (
	// EventInit runs once when behavior is attached to an entity.
	EventInit Event = "init"
	// EventUpdate runs every simulation tick.
	EventUpdate Event = "update"
	// EventMessage delivers a named message; args[0] is the message name.
	EventMessage Event = "message"
	// EventCollision delivers a contact; args[0] is the other entity.
	EventCollision Event = "collision"
	// EventReload runs after a definition hot-swap.
	EventReload Event = "reload"
	// EventDeath runs when the host sweeps a killed entity, before the
	// behavior state is torn down. The engine itself never dispatches it.
	EventDeath Event = "death"
)

var knownEvents = map[Event]bool{
	EventInit:      true,
	EventUpdate:    true,
	EventMessage:   true,
	EventCollision: true,
	EventReload:    true,
	EventDeath:     true,
}

// Valid reports whether the event is one of the lifecycle hooks.
func (e Event) Valid() bool {
	return knownEvents[e]
}
