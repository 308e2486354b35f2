// Package behavior is a layered per-entity behavior runtime. An entity
// archetype declares a base set of lifecycle handlers plus a forest of
// named state layers (exclusive groups and standalone overlays, possibly
// nested). Active layers intercept events ahead of the base handlers and
// decide whether to continue into the next layer outward.
package behavior

import "fmt"

// Handler is a base handler on a definition.
type Handler func(ctx *Context, args ...any) (any, error)

// Continuation invokes the next handler outward in the resolution chain,
// ending at the base handler (or a no-op if none is declared). A wrap may
// call it zero or one times per dispatch.
type Continuation func(args ...any) (any, error)

// Wrap is a layer's interception of an event.
type Wrap func(ctx *Context, base Continuation, args ...any) (any, error)

// EnterFunc runs once when a layer activates, with the args passed to
// Enable. The layer's field bag is already populated.
type EnterFunc func(ctx *Context, args ...any) error

// ExitFunc runs when a layer deactivates, after its descendants have been
// torn down and before its field bag is released.
type ExitFunc func(ctx *Context)

// FieldInit produces a field's initial value at activation time. The
// context is bound to the activating layer, so initializers may read
// fields declared earlier in the same schema, and the host's field store
// for entity base fields.
type FieldInit func(ctx *Context) any

// FieldDef declares one field of a layer's schema.
type FieldDef struct {
	Name string
	Init FieldInit
}

// LayerDef declares a state layer.
type LayerDef struct {
	Name    string
	Group   string // empty for standalone overlays
	Default bool   // activate automatically with the enclosing scope
	Fields  []FieldDef
	Enter   EnterFunc
	Exit    ExitFunc
	Wraps   map[Event]Wrap
	Layers  []LayerDef // nested sub-engine, reachable only while active
}

// Def is the declarative form of an archetype's behavior.
type Def struct {
	Archetype string
	Base      map[Event]Handler
	Layers    []LayerDef
}

// Definition is the compiled, immutable form. Create one per archetype at
// load time with Compile.
type Definition struct {
	archetype string
	base      map[Event]Handler
	roots     []*layer
	byName    map[string]*layer
	groups    map[string]*group
}

type layer struct {
	name     string
	group    string
	def      LayerDef
	parent   *layer
	children []*layer
}

type group struct {
	name    string
	parent  *layer // nil when the group is at the top level
	members []*layer
	dflt    *layer // may be nil
}

// Archetype returns the archetype name this definition was compiled for.
func (d *Definition) Archetype() string {
	return d.archetype
}

// LayerNames returns every declared layer name.
func (d *Definition) LayerNames() []string {
	out := make([]string, 0, len(d.byName))
	var walk func(ls []*layer)
	walk = func(ls []*layer) {
		for _, l := range ls {
			out = append(out, l.name)
			walk(l.children)
		}
	}
	walk(d.roots)
	return out
}

// Compile validates a declarative Def and produces the immutable form.
// Schema errors (duplicate names, split groups, multiple defaults) are
// load-time errors, never runtime ones.
func Compile(def Def) (*Definition, error) {
	if def.Archetype == "" {
		return nil, fmt.Errorf("behavior: compile: missing archetype name")
	}
	for ev := range def.Base {
		if !ev.Valid() {
			return nil, fmt.Errorf("behavior: compile %s: unknown base event %q", def.Archetype, ev)
		}
	}

	d := &Definition{
		archetype: def.Archetype,
		base:      def.Base,
		byName:    map[string]*layer{},
		groups:    map[string]*group{},
	}

	var build func(decl LayerDef, parent *layer) (*layer, error)
	build = func(decl LayerDef, parent *layer) (*layer, error) {
		if decl.Name == "" {
			return nil, fmt.Errorf("behavior: compile %s: layer with empty name", def.Archetype)
		}
		if _, dup := d.byName[decl.Name]; dup {
			return nil, fmt.Errorf("behavior: compile %s: duplicate layer %q", def.Archetype, decl.Name)
		}
		for ev, w := range decl.Wraps {
			if !ev.Valid() {
				return nil, fmt.Errorf("behavior: compile %s: layer %q wraps unknown event %q", def.Archetype, decl.Name, ev)
			}
			if w == nil {
				return nil, fmt.Errorf("behavior: compile %s: layer %q has nil wrap for %q", def.Archetype, decl.Name, ev)
			}
		}
		seen := map[string]bool{}
		for _, fd := range decl.Fields {
			if fd.Name == "" {
				return nil, fmt.Errorf("behavior: compile %s: layer %q has field with empty name", def.Archetype, decl.Name)
			}
			if seen[fd.Name] {
				return nil, fmt.Errorf("behavior: compile %s: layer %q duplicate field %q", def.Archetype, decl.Name, fd.Name)
			}
			seen[fd.Name] = true
		}

		l := &layer{name: decl.Name, group: decl.Group, def: decl, parent: parent}
		d.byName[decl.Name] = l

		if decl.Group != "" {
			g, ok := d.groups[decl.Group]
			if !ok {
				g = &group{name: decl.Group, parent: parent}
				d.groups[decl.Group] = g
			}
			if g.parent != parent {
				return nil, fmt.Errorf("behavior: compile %s: group %q members are not siblings", def.Archetype, decl.Group)
			}
			if decl.Default {
				if g.dflt != nil {
					return nil, fmt.Errorf("behavior: compile %s: group %q has two defaults (%q, %q)", def.Archetype, decl.Group, g.dflt.name, decl.Name)
				}
				g.dflt = l
			}
			g.members = append(g.members, l)
		}

		for _, child := range decl.Layers {
			cl, err := build(child, l)
			if err != nil {
				return nil, err
			}
			l.children = append(l.children, cl)
		}
		return l, nil
	}

	for _, decl := range def.Layers {
		l, err := build(decl, nil)
		if err != nil {
			return nil, err
		}
		d.roots = append(d.roots, l)
	}

	for name := range d.groups {
		if _, clash := d.byName[name]; clash {
			return nil, fmt.Errorf("behavior: compile %s: group %q shares a name with a layer", def.Archetype, name)
		}
	}

	return d, nil
}
