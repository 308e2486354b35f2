package creatures

import (
	"log"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/critters/behavior"
	"github.com/milk9111/critters/ecs"
	"github.com/milk9111/critters/prefabs"
	"github.com/milk9111/critters/procgen"
)

// tickDT pulls the frame delta out of update dispatch args.
func tickDT(args []any) float64 {
	if len(args) > 0 {
		if dt, ok := args[0].(float64); ok {
			return dt
		}
	}
	return 0
}

func messageName(args []any) string {
	if len(args) > 0 {
		if name, ok := args[0].(string); ok {
			return name
		}
	}
	return ""
}

func collider(args []any) (ecs.Entity, bool) {
	if len(args) > 0 {
		if other, ok := args[0].(ecs.Entity); ok {
			return other, true
		}
	}
	return 0, false
}

func pos(h behavior.Host, e ecs.Entity) cp.Vector {
	v, ok := h.Fields().Get(e, KeyPos)
	if !ok {
		return cp.Vector{}
	}
	p, ok := v.(cp.Vector)
	if !ok {
		return cp.Vector{}
	}
	return p
}

func setPos(h behavior.Host, e ecs.Entity, p cp.Vector) {
	h.Fields().Set(e, KeyPos, p)
}

func oneOf(h behavior.Host, e ecs.Entity, archetype string) bool {
	for _, x := range h.EntitiesOf(archetype) {
		if x == e {
			return true
		}
	}
	return false
}

// prefabFields bridges a compiled prefab field schema into behavior field
// initializers. Evaluation failures log and leave the field nil rather
// than aborting the activation.
func prefabFields(cfs []prefabs.CompiledField) []behavior.FieldDef {
	defs := make([]behavior.FieldDef, 0, len(cfs))
	for _, cf := range cfs {
		cf := cf
		defs = append(defs, behavior.FieldDef{Name: cf.Name, Init: func(ctx *behavior.Context) any {
			v, err := cf.Expr.Eval(prefabEnv(ctx))
			if err != nil {
				log.Printf("creatures: entity=%s field %s: %v", ctx.Entity(), cf.Name, err)
				return nil
			}
			return v
		}})
	}
	return defs
}

func prefabEnv(ctx *behavior.Context) prefabs.Env {
	return prefabs.Env{
		Field: func(name string) any {
			f := ctx.Fields()
			if !f.Has(name) {
				return nil
			}
			return f.Get(name)
		},
		Base: func(name string) any {
			v, _ := ctx.Host().Fields().Get(ctx.Entity(), name)
			return v
		},
		Rand: ctx.Host().Rand().Float64,
		Now:  ctx.Now,
	}
}

// initWander seeds the entity's idle drift oscillator and, when a spawn
// position was passed, plants the entity there.
func initWander(ctx *behavior.Context, w prefabs.WanderSpec, args []any) {
	h := ctx.Host()
	e := ctx.Entity()
	if len(args) > 0 {
		if p, ok := args[0].(cp.Vector); ok {
			setPos(h, e, p)
		}
	}
	h.Fields().Set(e, KeyWander, procgen.NewWander(h.Rand(), w.Height, w.FreqX, w.FreqY))
}

// wanderUpdate is the shared base update: drift by the bob delta since the
// previous tick.
func wanderUpdate(ctx *behavior.Context, args ...any) (any, error) {
	h := ctx.Host()
	e := ctx.Entity()
	v, ok := h.Fields().Get(e, KeyWander)
	if !ok {
		return nil, nil
	}
	w, ok := v.(procgen.Wander)
	if !ok {
		return nil, nil
	}
	now := ctx.Now()
	setPos(h, e, pos(h, e).Add(w.Delta(now-tickDT(args), now)))
	return nil, nil
}
