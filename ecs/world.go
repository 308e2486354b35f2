package ecs

import "sort"

// World owns entity identity, per-entity symbolic fields, archetype
// membership, and the tag index. It is the field store and spawn/query
// surface the behavior runtime talks to; it knows nothing about layers
// or handlers.
type World struct {
	entities   entityStore
	archetypes SparseSet[string]
	fields     map[string]*SparseSet[any]
	tags       TagBank
	dead       []Entity
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{fields: map[string]*SparseSet[any]{}}
}

// Create allocates a new entity of the given archetype.
func (w *World) Create(archetype string) Entity {
	e := w.entities.create()
	w.archetypes.Set(e.id(), archetype)
	return e
}

// Destroy frees an entity immediately, dropping its fields, tags, and
// archetype membership. Most callers should MarkDead and let the host
// sweep instead, so handlers never observe a half-destroyed entity.
func (w *World) Destroy(e Entity) bool {
	if !w.entities.destroy(e) {
		return false
	}
	w.archetypes.Remove(e.id())
	for _, set := range w.fields {
		set.Remove(e.id())
	}
	w.tags.drop(e)
	return true
}

// IsAlive reports whether the handle is valid.
func (w *World) IsAlive(e Entity) bool {
	return w.entities.isAlive(e)
}

// MarkDead queues an entity for the end-of-tick sweep. Marking twice or
// marking a dead entity is harmless.
func (w *World) MarkDead(e Entity) {
	if !w.IsAlive(e) {
		return
	}
	for _, d := range w.dead {
		if d == e {
			return
		}
	}
	w.dead = append(w.dead, e)
}

// Dead returns the entities marked since the last ClearDead.
func (w *World) Dead() []Entity {
	return w.dead
}

// ClearDead resets the dead mark list.
func (w *World) ClearDead() {
	w.dead = w.dead[:0]
}

// Archetype returns the archetype an entity was created as.
func (w *World) Archetype(e Entity) (string, bool) {
	if !w.IsAlive(e) {
		return "", false
	}
	return w.archetypes.Get(e.id())
}

// OfArchetype lists live entities of an archetype in ascending id order.
// The stable order is what makes tick processing reproducible.
func (w *World) OfArchetype(name string) []Entity {
	var out []Entity
	for _, id := range w.archetypes.ids() {
		arch, _ := w.archetypes.Get(id)
		if arch != name {
			continue
		}
		out = append(out, makeEntity(id, w.entities.gen[id-1]))
	}
	sortEntities(out)
	return out
}

// Entities lists all live entities in ascending id order.
func (w *World) Entities() []Entity {
	out := make([]Entity, 0, w.archetypes.Len())
	for _, id := range w.archetypes.ids() {
		out = append(out, makeEntity(id, w.entities.gen[id-1]))
	}
	sortEntities(out)
	return out
}

// Get reads a symbolic field off an entity.
func (w *World) Get(e Entity, key string) (any, bool) {
	if !w.IsAlive(e) {
		return nil, false
	}
	set, ok := w.fields[key]
	if !ok {
		return nil, false
	}
	return set.Get(e.id())
}

// Set writes a symbolic field on an entity. Last write wins.
func (w *World) Set(e Entity, key string, v any) {
	if !w.IsAlive(e) {
		return
	}
	set, ok := w.fields[key]
	if !ok {
		set = &SparseSet[any]{}
		w.fields[key] = set
	}
	set.Set(e.id(), v)
}

// Unset removes a symbolic field from an entity.
func (w *World) Unset(e Entity, key string) {
	if set, ok := w.fields[key]; ok {
		set.Remove(e.id())
	}
}

// Tag attaches tag=value to an entity.
func (w *World) Tag(e Entity, tag, value string) {
	if !w.IsAlive(e) {
		return
	}
	w.tags.deposit(e, tag, value)
}

// TagValue returns the value an entity carries for a tag.
func (w *World) TagValue(e Entity, tag string) (string, bool) {
	return w.tags.value(e, tag)
}

// Tagged lists live entities carrying a tag, in ascending id order.
func (w *World) Tagged(tag string) []Entity {
	out := w.tags.tagged(tag, nil)
	sortEntities(out)
	return out
}

// TaggedWith lists live entities carrying tag=value, in ascending id order.
func (w *World) TaggedWith(tag, value string) []Entity {
	out := w.tags.tagged(tag, &value)
	sortEntities(out)
	return out
}

func sortEntities(ents []Entity) {
	sort.Slice(ents, func(i, j int) bool { return ents[i].id() < ents[j].id() })
}
