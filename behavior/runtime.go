package behavior

import (
	"fmt"
	"log"
	"sort"

	"github.com/milk9111/critters/ecs"
)

// DefaultMaxDepth bounds nested redispatch during a single entity's
// dispatch. Past it, Dispatch fails with ErrHandlerLoop.
const DefaultMaxDepth = 8

// instance is the per-entity mutable behavior state: which layers are
// active and their live field bags. Entity base fields live in the host
// field store, not here.
type instance struct {
	def    *Definition
	entity ecs.Entity
	active map[string]bool
	groups map[string]string // group name -> active member, "" for none
	bags   map[string]*Fields
	depth  int
}

// Runtime drives behavior instances for all entities: it owns definition
// registration, attach/detach, event dispatch, and the enable/disable
// primitives layers call. Single-threaded: one entity's full dispatch,
// including nested self-transitions, completes before the next begins.
type Runtime struct {
	host      Host
	defs      map[string]*Definition
	instances map[ecs.Entity]*instance
	maxDepth  int
}

// NewRuntime creates a runtime bound to a host.
func NewRuntime(host Host) *Runtime {
	return &Runtime{
		host:      host,
		defs:      map[string]*Definition{},
		instances: map[ecs.Entity]*instance{},
		maxDepth:  DefaultMaxDepth,
	}
}

// SetMaxDepth overrides the redispatch depth bound.
func (r *Runtime) SetMaxDepth(n int) {
	if n > 0 {
		r.maxDepth = n
	}
}

// Register makes a compiled definition available for Attach.
func (r *Runtime) Register(d *Definition) {
	r.defs[d.archetype] = d
}

// Definition returns the registered definition for an archetype.
func (r *Runtime) Definition(archetype string) (*Definition, bool) {
	d, ok := r.defs[archetype]
	return d, ok
}

// Attach creates behavior state for an entity: default layers activate,
// then the init event is dispatched with args.
func (r *Runtime) Attach(e ecs.Entity, archetype string, args ...any) error {
	d, ok := r.defs[archetype]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownArchetype, archetype)
	}
	if _, dup := r.instances[e]; dup {
		return fmt.Errorf("%w: entity %s", ErrAlreadyAttached, e)
	}
	inst := &instance{
		def:    d,
		entity: e,
		active: map[string]bool{},
		groups: map[string]string{},
		bags:   map[string]*Fields{},
	}
	r.instances[e] = inst
	if err := r.activateDefaults(inst, nil); err != nil {
		r.Detach(e)
		return err
	}
	if _, _, err := r.Dispatch(e, EventInit, args...); err != nil {
		r.Detach(e)
		return err
	}
	return nil
}

// Attached reports whether the entity carries behavior state.
func (r *Runtime) Attached(e ecs.Entity) bool {
	_, ok := r.instances[e]
	return ok
}

// Detach tears down every active layer (exit hooks run, bags release) and
// drops the instance. It does not dispatch any event; hosts wanting a
// death hook dispatch EventDeath first.
func (r *Runtime) Detach(e ecs.Entity) {
	inst, ok := r.instances[e]
	if !ok {
		return
	}
	for i := len(inst.def.roots) - 1; i >= 0; i-- {
		r.deactivate(inst, inst.def.roots[i])
	}
	delete(r.instances, e)
}

// Enable activates a named layer on an entity, with args forwarded to its
// enter hook. For an exclusive-group member this deactivates the current
// sibling first; enabling the already-active member is a no-op that runs
// no teardown and no re-init. For an overlay it simply stacks on top of
// whatever is active.
func (r *Runtime) Enable(e ecs.Entity, name string, args ...any) error {
	inst, ok := r.instances[e]
	if !ok {
		return fmt.Errorf("%w: entity %s", ErrNotAttached, e)
	}
	l, ok := r.lookup(inst, name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLayer, name)
	}
	return r.activate(inst, l, args)
}

// Disable deactivates a layer by name, or empties a group by its name,
// leaving the group with no active member.
func (r *Runtime) Disable(e ecs.Entity, name string) error {
	inst, ok := r.instances[e]
	if !ok {
		return fmt.Errorf("%w: entity %s", ErrNotAttached, e)
	}
	if l, ok := r.lookup(inst, name); ok {
		r.deactivate(inst, l)
		return nil
	}
	if g, ok := inst.def.groups[name]; ok {
		if cur := inst.groups[g.name]; cur != "" {
			r.deactivate(inst, inst.def.byName[cur])
		}
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownLayer, name)
}

// IsEnabled reports whether a layer is active. Pure query.
func (r *Runtime) IsEnabled(e ecs.Entity, name string) bool {
	inst, ok := r.instances[e]
	return ok && inst.active[name]
}

// Active returns the active member of a group, if any.
func (r *Runtime) Active(e ecs.Entity, grp string) (string, bool) {
	inst, ok := r.instances[e]
	if !ok {
		return "", false
	}
	cur := inst.groups[grp]
	return cur, cur != ""
}

// Fields returns the live bag of an active layer on an entity. Intended
// for hosts and debug views; handler code uses Context.Fields and
// Context.FieldsOf.
func (r *Runtime) Fields(e ecs.Entity, name string) (*Fields, error) {
	inst, ok := r.instances[e]
	if !ok {
		return nil, fmt.Errorf("%w: entity %s", ErrNotAttached, e)
	}
	if _, known := r.lookup(inst, name); !known {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLayer, name)
	}
	if bag, live := inst.bags[name]; live {
		return bag, nil
	}
	return nil, fmt.Errorf("%w: layer %q", ErrInactiveFieldAccess, name)
}

// ActiveLayers lists the entity's active layers, innermost first — the
// same order dispatch resolves them in.
func (r *Runtime) ActiveLayers(e ecs.Entity) []string {
	inst, ok := r.instances[e]
	if !ok {
		return nil
	}
	var out []string
	var walk func(ls []*layer)
	walk = func(ls []*layer) {
		for i := len(ls) - 1; i >= 0; i-- {
			l := ls[i]
			if !inst.active[l.name] {
				continue
			}
			walk(l.children)
			out = append(out, l.name)
		}
	}
	walk(inst.def.roots)
	return out
}

// Reload hot-swaps the definition for an archetype. Active layers that no
// longer exist (or changed group or parent) are deactivated; surviving
// layers keep their field values. Every instance then receives a reload
// dispatch so handlers can resync.
func (r *Runtime) Reload(d *Definition) {
	old, ok := r.defs[d.archetype]
	r.defs[d.archetype] = d
	if !ok {
		return
	}
	for _, e := range r.entitiesOf(old) {
		inst := r.instances[e]
		// Deactivate top-down so a removed parent tears down its whole
		// subtree through the normal path.
		var prune func(ls []*layer)
		prune = func(ls []*layer) {
			for _, l := range ls {
				if !inst.active[l.name] {
					continue
				}
				if !survivesReload(l, d) {
					r.deactivate(inst, l)
					continue
				}
				prune(l.children)
			}
		}
		prune(old.roots)

		inst.def = d
		for name := range inst.groups {
			if _, still := d.groups[name]; !still {
				delete(inst.groups, name)
			}
		}
		if _, _, err := r.Dispatch(e, EventReload); err != nil {
			// A broken reload handler shouldn't take the rest of the
			// archetype down with it.
			log.Printf("behavior: entity=%s reload error: %v", e, err)
		}
	}
}

func survivesReload(l *layer, d *Definition) bool {
	nl, ok := d.byName[l.name]
	if !ok || nl.group != l.group {
		return false
	}
	switch {
	case nl.parent == nil && l.parent == nil:
		return true
	case nl.parent != nil && l.parent != nil:
		return nl.parent.name == l.parent.name
	default:
		return false
	}
}

func (r *Runtime) entitiesOf(d *Definition) []ecs.Entity {
	var out []ecs.Entity
	for e, inst := range r.instances {
		if inst.def == d {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (r *Runtime) lookup(inst *instance, name string) (*layer, bool) {
	l, ok := inst.def.byName[name]
	return l, ok
}

func (r *Runtime) activate(inst *instance, l *layer, args []any) error {
	if l.group != "" {
		if inst.groups[l.group] == l.name {
			return nil // idempotent re-entry, no teardown, no re-init
		}
	} else if inst.active[l.name] {
		return nil
	}
	if l.parent != nil && !inst.active[l.parent.name] {
		return fmt.Errorf("%w: enable %q requires %q", ErrParentInactive, l.name, l.parent.name)
	}
	if l.group != "" {
		if cur := inst.groups[l.group]; cur != "" {
			r.deactivate(inst, inst.def.byName[cur])
		}
	}

	bag := newFields(l.name)
	inst.bags[l.name] = bag
	ctx := &Context{rt: r, inst: inst, layer: l, bag: bag}
	for _, fd := range l.def.Fields {
		var v any
		if fd.Init != nil {
			v = fd.Init(ctx)
		}
		bag.vals[fd.Name] = v
	}
	inst.active[l.name] = true
	if l.group != "" {
		inst.groups[l.group] = l.name
	}

	// A failed default or enter hook must not leave a half-initialized
	// layer active: unwind it so the bag releases and the group slot
	// clears before the error surfaces.
	if err := r.activateDefaults(inst, l); err != nil {
		r.deactivate(inst, l)
		return err
	}
	if l.def.Enter != nil {
		if err := l.def.Enter(ctx, args...); err != nil {
			r.deactivate(inst, l)
			return fmt.Errorf("behavior: enter %q: %w", l.name, err)
		}
	}
	return nil
}

// activateDefaults brings up the default layers of a scope: the top level
// on attach (parent == nil), or a layer's children when it activates.
func (r *Runtime) activateDefaults(inst *instance, parent *layer) error {
	scope := inst.def.roots
	if parent != nil {
		scope = parent.children
	}
	for _, l := range scope {
		if !l.def.Default {
			continue
		}
		if err := r.activate(inst, l, nil); err != nil {
			return err
		}
	}
	return nil
}

// deactivate tears a layer down: active descendants first, then the exit
// hook, then the field bag is released so any retained reference fails
// loudly instead of reading stale state.
func (r *Runtime) deactivate(inst *instance, l *layer) {
	if !inst.active[l.name] {
		return
	}
	for i := len(l.children) - 1; i >= 0; i-- {
		r.deactivate(inst, l.children[i])
	}
	if l.def.Exit != nil {
		l.def.Exit(&Context{rt: r, inst: inst, layer: l, bag: inst.bags[l.name]})
	}
	if bag := inst.bags[l.name]; bag != nil {
		bag.released = true
	}
	delete(inst.bags, l.name)
	inst.active[l.name] = false
	if l.group != "" && inst.groups[l.group] == l.name {
		inst.groups[l.group] = ""
	}
}
