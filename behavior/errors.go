package behavior

import "errors"

var (
	// ErrUnknownArchetype means no definition is registered for the name.
	ErrUnknownArchetype = errors.New("behavior: unknown archetype")
	// ErrUnknownLayer means the layer name is not declared by the definition.
	ErrUnknownLayer = errors.New("behavior: unknown layer")
	// ErrNotAttached means the entity carries no behavior instance.
	ErrNotAttached = errors.New("behavior: entity not attached")
	// ErrAlreadyAttached means Attach was called twice for one entity.
	ErrAlreadyAttached = errors.New("behavior: entity already attached")
	// ErrParentInactive means a nested layer was enabled while its parent
	// layer was not active.
	ErrParentInactive = errors.New("behavior: parent layer inactive")
	// ErrHandlerLoop means self-transition redispatch exceeded the bounded
	// depth. A transition that immediately re-triggers itself ends up here.
	ErrHandlerLoop = errors.New("behavior: handler loop")
	// ErrUnknownMessage is returned by message handlers for names they do
	// not recognize. Fatal to that dispatch only; the host logs and moves
	// on to the next entity.
	ErrUnknownMessage = errors.New("behavior: unknown message")
	// ErrInactiveFieldAccess marks reads or writes of a layer's fields
	// while that layer is not active. It is a programming error, so field
	// bags panic with it rather than returning it.
	ErrInactiveFieldAccess = errors.New("behavior: inactive layer field access")
)
