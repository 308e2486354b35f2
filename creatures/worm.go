package creatures

import (
	"fmt"

	"github.com/milk9111/critters/behavior"
	"github.com/milk9111/critters/prefabs"
)

// WormDef compiles the worm archetype: drifting prey with no layers of
// its own. It dies to predation; the host's sweep handles its removal.
func WormDef(spec *prefabs.WormSpec) (*behavior.Definition, error) {
	return behavior.Compile(behavior.Def{
		Archetype: ArchetypeWorm,
		Base: map[behavior.Event]behavior.Handler{
			behavior.EventInit: func(ctx *behavior.Context, args ...any) (any, error) {
				initWander(ctx, spec.Wander, args)
				return nil, nil
			},
			behavior.EventUpdate: wanderUpdate,
			behavior.EventMessage: func(ctx *behavior.Context, args ...any) (any, error) {
				return nil, fmt.Errorf("%w: %q", behavior.ErrUnknownMessage, messageName(args))
			},
		},
	})
}
