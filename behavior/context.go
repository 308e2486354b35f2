package behavior

import (
	"fmt"

	"github.com/milk9111/critters/ecs"
)

// Context is handed to every handler, wrap, enter/exit hook, and field
// initializer. It binds the dispatch to one entity and, for layer code,
// to that layer's field bag.
type Context struct {
	rt    *Runtime
	inst  *instance
	layer *layer
	bag   *Fields
	event Event
}

// Entity returns the entity being dispatched.
func (c *Context) Entity() ecs.Entity {
	return c.inst.entity
}

// Host returns the external collaborators.
func (c *Context) Host() Host {
	return c.rt.host
}

// Now returns the host's simulation time.
func (c *Context) Now() float64 {
	return c.rt.host.Now()
}

// Fields returns the owning layer's field bag. Base handlers have no
// layer fields; their state lives in the host field store.
func (c *Context) Fields() *Fields {
	if c.bag == nil {
		panic(fmt.Errorf("%w: handler outside any layer", ErrInactiveFieldAccess))
	}
	c.bag.check()
	return c.bag
}

// FieldsOf returns another layer's bag, if that layer is currently
// active on this entity.
func (c *Context) FieldsOf(name string) (*Fields, error) {
	if _, ok := c.rt.lookup(c.inst, name); ok {
		if bag, live := c.inst.bags[name]; live {
			return bag, nil
		}
		return nil, fmt.Errorf("%w: layer %q", ErrInactiveFieldAccess, name)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownLayer, name)
}

// Enable activates a layer on this entity (see Runtime.Enable).
func (c *Context) Enable(name string, args ...any) error {
	return c.rt.Enable(c.inst.entity, name, args...)
}

// Disable deactivates a layer or empties a group on this entity.
func (c *Context) Disable(name string) error {
	return c.rt.Disable(c.inst.entity, name)
}

// IsEnabled reports whether a layer is active on this entity.
func (c *Context) IsEnabled(name string) bool {
	return c.rt.IsEnabled(c.inst.entity, name)
}

// Active returns the active member of a group, if any.
func (c *Context) Active(grp string) (string, bool) {
	return c.rt.Active(c.inst.entity, grp)
}

// Redispatch re-invokes the current event on this entity, resolving
// through whatever layers are active now. A wrap that has just switched
// states calls this and returns without touching its continuation, so the
// rest of the tick runs in the new state. Dispatch's depth bound turns
// mutual re-triggering into ErrHandlerLoop.
func (c *Context) Redispatch(args ...any) (any, error) {
	res, _, err := c.rt.Dispatch(c.inst.entity, c.event, args...)
	return res, err
}
