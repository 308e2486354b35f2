// Package creatures defines the sample archetypes that exercise the
// behavior engine: the critter (flee/hunt exclusive modes with a nested
// hungry overlay), the worm it preys on, and the waygate that teleports
// anything touching it across its network.
package creatures

// Archetype names, as registered with the behavior runtime and used for
// prefab lookup.
const (
	ArchetypeCritter = "critter"
	ArchetypeWorm    = "worm"
	ArchetypeWaygate = "waygate"
)

// Base field keys in the host field store. Layer state lives in field
// bags; these are the entity-lifetime values everything shares.
const (
	KeyPos         = "pos"          // cp.Vector
	KeySize        = "size"         // float64
	KeyWander      = "wander"       // procgen.Wander
	KeyBob         = "bob"          // procgen.Bob, unit height
	KeyNetwork     = "network"      // string, waygate network id
	KeyLastArrival = "last_arrival" // float64, sim time
)

// TagNetwork groups waygates into teleport networks; the tag value is the
// network id.
const TagNetwork = "network"
