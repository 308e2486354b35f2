package creatures

import (
	"fmt"
	"log"
	"math"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/critters/behavior"
	"github.com/milk9111/critters/ecs"
	"github.com/milk9111/critters/prefabs"
	"github.com/milk9111/critters/procgen"
)

// WaygateDef compiles the waygate archetype: a stationary gate that bobs
// gently at rest and, when a creature touches it, carries that payload to
// a random sibling gate on the same network. While the teleporting
// overlay is up it replaces the resting bob with a taller one, blended in
// and out over the transit.
func WaygateDef(spec *prefabs.WaygateSpec) (*behavior.Definition, error) {
	teleFields, err := prefabs.CompileFields(spec.Teleporting.Fields)
	if err != nil {
		return nil, fmt.Errorf("creatures: waygate: %w", err)
	}

	def := behavior.Def{
		Archetype: ArchetypeWaygate,
		Base: map[behavior.Event]behavior.Handler{
			behavior.EventInit: func(ctx *behavior.Context, args ...any) (any, error) {
				h := ctx.Host()
				e := ctx.Entity()
				if len(args) > 0 {
					if p, ok := args[0].(cp.Vector); ok {
						setPos(h, e, p)
					}
				}
				if len(args) > 1 {
					if net, ok := args[1].(string); ok {
						h.Fields().Set(e, KeyNetwork, net)
					}
				}
				h.Fields().Set(e, KeyBob, procgen.NewBob(h.Rand(), 1, spec.BobFreq))
				return nil, nil
			},
			behavior.EventUpdate: func(ctx *behavior.Context, args ...any) (any, error) {
				bobGate(ctx, spec.RestHeight, tickDT(args))
				return nil, nil
			},
			behavior.EventMessage: func(ctx *behavior.Context, args ...any) (any, error) {
				name := messageName(args)
				switch name {
				case "teleport":
					if len(args) > 1 {
						if payload, ok := args[1].(ecs.Entity); ok {
							return nil, beginTeleport(ctx, payload)
						}
					}
					return nil, nil
				case "arrive":
					ctx.Host().Fields().Set(ctx.Entity(), KeyLastArrival, ctx.Now())
					return nil, nil
				default:
					return nil, fmt.Errorf("%w: %q", behavior.ErrUnknownMessage, name)
				}
			},
			behavior.EventCollision: func(ctx *behavior.Context, args ...any) (any, error) {
				other, ok := collider(args)
				if !ok || ctx.IsEnabled("teleporting") {
					return nil, nil
				}
				h := ctx.Host()
				if !oneOf(h, other, ArchetypeCritter) && !oneOf(h, other, ArchetypeWorm) {
					return nil, nil
				}
				return nil, beginTeleport(ctx, other)
			},
		},
		Layers: []behavior.LayerDef{
			{
				Name:   "teleporting",
				Fields: prefabFields(teleFields),
				Enter: func(ctx *behavior.Context, args ...any) error {
					if len(args) < 2 {
						return fmt.Errorf("creatures: teleporting needs payload and destination")
					}
					payload, ok1 := args[0].(ecs.Entity)
					gate, ok2 := args[1].(ecs.Entity)
					if !ok1 || !ok2 {
						return fmt.Errorf("creatures: teleporting args are not entities")
					}

					h := ctx.Host()
					start := pos(h, ctx.Entity())
					dest := pos(h, gate)

					f := ctx.Fields()
					f.Set("payload", payload)
					f.Set("gate", gate)
					f.Set("start", start)
					f.Set("dest", dest)
					// Duration scales with distance; floor it so even a
					// short hop has a visible ramp.
					f.Set("duration", math.Max(dest.Sub(start).Length()/spec.Speed, 0.5))
					return nil
				},
				Wraps: map[behavior.Event]behavior.Wrap{
					behavior.EventUpdate: teleportUpdate(spec),
				},
			},
		},
	}
	return behavior.Compile(def)
}

// beginTeleport picks a random sibling gate on this gate's network and
// raises the teleporting overlay. A gate alone on its network logs and
// does nothing.
func beginTeleport(ctx *behavior.Context, payload ecs.Entity) error {
	h := ctx.Host()
	e := ctx.Entity()

	netAny, _ := h.Fields().Get(e, KeyNetwork)
	net, _ := netAny.(string)

	var siblings []ecs.Entity
	for _, g := range h.TaggedWith(TagNetwork, net) {
		if g != e {
			siblings = append(siblings, g)
		}
	}
	if len(siblings) == 0 {
		log.Printf("creatures: entity=%s waygate has no sibling on network %q", e, net)
		return nil
	}

	dest := siblings[h.Rand().Pick(len(siblings))]
	return ctx.Enable("teleporting", payload, dest)
}

// teleportUpdate replaces the resting bob with a blended, taller one and
// carries the payload along the smoothed path. On arrival it hands the
// payload off to the destination gate and lowers itself.
func teleportUpdate(spec *prefabs.WaygateSpec) behavior.Wrap {
	return func(ctx *behavior.Context, base behavior.Continuation, args ...any) (any, error) {
		f := ctx.Fields()
		step := tickDT(args)
		elapsed := f.Float("elapsed") + step
		f.Set("elapsed", elapsed)
		total := f.Float("duration")

		height := procgen.Lerp(spec.RestHeight, spec.TransitHeight, procgen.BlendFactor(elapsed, total))
		bobGate(ctx, height, step)

		h := ctx.Host()
		payload := f.EntityRef("payload")
		tn := procgen.TransitFraction(elapsed, total)
		setPos(h, payload, f.Vec("start").Lerp(f.Vec("dest"), tn))

		if elapsed >= total {
			h.Message(f.EntityRef("gate"), "arrive", payload)
			return nil, ctx.Disable("teleporting")
		}
		return nil, nil
	}
}

// bobGate applies one tick of vertical bob at the given height.
func bobGate(ctx *behavior.Context, height, step float64) {
	h := ctx.Host()
	e := ctx.Entity()
	v, ok := h.Fields().Get(e, KeyBob)
	if !ok {
		return
	}
	b, ok := v.(procgen.Bob)
	if !ok {
		return
	}
	now := ctx.Now()
	p := pos(h, e)
	p.Y += height * b.Delta(now-step, now)
	setPos(h, e, p)
}
