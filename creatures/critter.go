package creatures

import (
	"fmt"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/critters/behavior"
	"github.com/milk9111/critters/ecs"
	"github.com/milk9111/critters/prefabs"
	"github.com/milk9111/critters/procgen"
)

// CritterDef compiles the critter archetype from its prefab. The critter
// idles on a two-axis bob, hunts the closest worm by default, panics into
// flee when told to, and carries a hungry overlay while digesting: too
// long without a meal and it bursts into a brood of fleeing offspring.
func CritterDef(spec *prefabs.CritterSpec) (*behavior.Definition, error) {
	fleeFields, err := prefabs.CompileFields(spec.Flee.Fields)
	if err != nil {
		return nil, fmt.Errorf("creatures: critter: %w", err)
	}
	huntFields, err := prefabs.CompileFields(spec.Hunt.Fields)
	if err != nil {
		return nil, fmt.Errorf("creatures: critter: %w", err)
	}
	hungryFields, err := prefabs.CompileFields(spec.Hungry.Fields)
	if err != nil {
		return nil, fmt.Errorf("creatures: critter: %w", err)
	}

	def := behavior.Def{
		Archetype: ArchetypeCritter,
		Base: map[behavior.Event]behavior.Handler{
			behavior.EventInit: func(ctx *behavior.Context, args ...any) (any, error) {
				initWander(ctx, spec.Wander, args)
				return nil, nil
			},
			behavior.EventUpdate: wanderUpdate,
			behavior.EventMessage: func(ctx *behavior.Context, args ...any) (any, error) {
				name := messageName(args)
				switch name {
				case "flee":
					return nil, ctx.Enable("flee")
				default:
					return nil, fmt.Errorf("%w: %q", behavior.ErrUnknownMessage, name)
				}
			},
		},
		Layers: []behavior.LayerDef{
			{
				Name:  "flee",
				Group: "mode",
				Fields: append(prefabFields(fleeFields), behavior.FieldDef{
					Name: "heading",
					Init: func(ctx *behavior.Context) any {
						return procgen.RandDir(ctx.Host().Rand())
					},
				}),
				Wraps: map[behavior.Event]behavior.Wrap{
					behavior.EventUpdate: fleeUpdate,
				},
			},
			{
				Name:    "hunt",
				Group:   "mode",
				Default: true,
				Fields:  prefabFields(huntFields),
				Wraps: map[behavior.Event]behavior.Wrap{
					behavior.EventUpdate:    huntUpdate(spec),
					behavior.EventCollision: huntCollision,
				},
				Layers: []behavior.LayerDef{
					{
						Name:   "hungry",
						Fields: prefabFields(hungryFields),
						Wraps: map[behavior.Event]behavior.Wrap{
							behavior.EventUpdate: hungryUpdate(spec),
						},
					},
				},
			},
		},
	}
	return behavior.Compile(def)
}

// fleeUpdate runs the panic sprint. When the duration expires it flips
// the mode group back to hunt and redispatches, so the remainder of this
// very tick already runs as a hunter.
func fleeUpdate(ctx *behavior.Context, base behavior.Continuation, args ...any) (any, error) {
	f := ctx.Fields()
	step := tickDT(args)
	elapsed := f.Float("elapsed") + step
	f.Set("elapsed", elapsed)

	if elapsed >= f.Float("duration") {
		if err := ctx.Enable("hunt"); err != nil {
			return nil, err
		}
		return ctx.Redispatch(args...)
	}

	h := ctx.Host()
	e := ctx.Entity()
	setPos(h, e, pos(h, e).Add(f.Vec("heading").Mult(f.Float("speed")*step)))
	return base(args...)
}

func huntUpdate(spec *prefabs.CritterSpec) behavior.Wrap {
	return func(ctx *behavior.Context, base behavior.Continuation, args ...any) (any, error) {
		h := ctx.Host()
		e := ctx.Entity()

		worms := h.EntitiesOf(ArchetypeWorm)
		if len(worms) == 0 {
			return base(args...)
		}
		self := pos(h, e)
		prey := procgen.Closest(self, worms, func(w ecs.Entity) cp.Vector { return pos(h, w) })
		to := pos(h, prey)
		if to.Sub(self).Length() > spec.Hunt.SenseRadius {
			return base(args...)
		}

		setPos(h, e, self.Add(procgen.Toward(self, to, spec.Hunt.Speed*tickDT(args))))
		return base(args...)
	}
}

// huntCollision is predation: touching a worm eats it. The first meal
// raises the hungry overlay; later meals refresh its clock.
func huntCollision(ctx *behavior.Context, base behavior.Continuation, args ...any) (any, error) {
	other, ok := collider(args)
	if !ok {
		return base(args...)
	}
	h := ctx.Host()
	if !oneOf(h, other, ArchetypeWorm) {
		return base(args...)
	}

	h.Kill(other)
	f := ctx.Fields()
	f.Set("meals", f.Int("meals")+1)

	if !ctx.IsEnabled("hungry") {
		if err := ctx.Enable("hungry"); err != nil {
			return nil, err
		}
	}
	hungry, err := ctx.FieldsOf("hungry")
	if err != nil {
		return nil, err
	}
	hungry.Set("worms_eaten", hungry.Int("worms_eaten")+1)
	hungry.Set("last_eaten", ctx.Now())
	return base(args...)
}

// hungryUpdate starves the critter out: past the timeout it scatters a
// brood of worms_eaten+1 offspring, sends each fleeing, and dies.
func hungryUpdate(spec *prefabs.CritterSpec) behavior.Wrap {
	return func(ctx *behavior.Context, base behavior.Continuation, args ...any) (any, error) {
		f := ctx.Fields()
		if ctx.Now()-f.Float("last_eaten") < spec.Hungry.Timeout {
			return base(args...)
		}

		h := ctx.Host()
		e := ctx.Entity()
		origin := pos(h, e)
		brood := f.Int("worms_eaten") + 1
		for i := 0; i < brood; i++ {
			at := origin.Add(procgen.RandVec(h.Rand(), spec.Hungry.ScatterMin, spec.Hungry.ScatterMax))
			child, err := h.Spawn(ArchetypeCritter, at)
			if err != nil {
				return nil, err
			}
			h.Message(child, "flee")
		}
		h.Kill(e)
		return nil, nil
	}
}
