package behavior

import (
	"fmt"

	"github.com/milk9111/critters/ecs"
)

// Dispatch resolves and invokes the handler chain for an event on one
// entity. Resolution walks the active layers innermost-first (deepest
// active nested layer outward) and ends at the base handler; the first
// layer wrapping the event becomes the entry point and receives a
// continuation for the rest of the chain. If nothing declares the event,
// the dispatch is a no-op and handled is false.
//
// Layers deactivated mid-dispatch are skipped when the continuation
// reaches them, so a wrap that switches states and then calls base never
// runs the dead state's code.
func (r *Runtime) Dispatch(e ecs.Entity, ev Event, args ...any) (result any, handled bool, err error) {
	inst, ok := r.instances[e]
	if !ok {
		return nil, false, fmt.Errorf("%w: entity %s", ErrNotAttached, e)
	}
	if inst.depth >= r.maxDepth {
		return nil, false, fmt.Errorf("%w: %s on entity %s exceeded depth %d", ErrHandlerLoop, ev, e, r.maxDepth)
	}
	inst.depth++
	defer func() { inst.depth-- }()

	chain := r.chain(inst, ev)
	baseHandler := inst.def.base[ev]
	if len(chain) == 0 && baseHandler == nil {
		return nil, false, nil
	}

	var call func(i int, args []any) (any, error)
	call = func(i int, args []any) (any, error) {
		if i >= len(chain) {
			if baseHandler == nil {
				return nil, nil
			}
			return baseHandler(&Context{rt: r, inst: inst, event: ev}, args...)
		}
		l := chain[i]
		if !inst.active[l.name] {
			return call(i+1, args)
		}
		ctx := &Context{rt: r, inst: inst, layer: l, bag: inst.bags[l.name], event: ev}
		base := func(bargs ...any) (any, error) {
			return call(i+1, bargs)
		}
		return l.def.Wraps[ev](ctx, base, args...)
	}

	result, err = call(0, args)
	return result, true, err
}

// chain snapshots the layers wrapping ev at dispatch entry, innermost
// first: within a scope, later-declared siblings resolve ahead of earlier
// ones, and a layer's active descendants always resolve ahead of it.
func (r *Runtime) chain(inst *instance, ev Event) []*layer {
	var out []*layer
	var walk func(ls []*layer)
	walk = func(ls []*layer) {
		for i := len(ls) - 1; i >= 0; i-- {
			l := ls[i]
			if !inst.active[l.name] {
				continue
			}
			walk(l.children)
			if l.def.Wraps[ev] != nil {
				out = append(out, l)
			}
		}
	}
	walk(inst.def.roots)
	return out
}
