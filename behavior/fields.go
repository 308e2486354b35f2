package behavior

import (
	"fmt"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/critters/ecs"
)

// Fields is the live field bag of an active layer. It exists only while
// the layer is active; the engine releases it on deactivation and any
// later access panics with ErrInactiveFieldAccess. Other layers must not
// hold one across dispatches — look values up again by entity id.
type Fields struct {
	layer    string
	vals     map[string]any
	released bool
}

func newFields(layer string) *Fields {
	return &Fields{layer: layer, vals: map[string]any{}}
}

func (f *Fields) check() {
	if f == nil || f.released {
		name := "?"
		if f != nil {
			name = f.layer
		}
		panic(fmt.Errorf("%w: layer %q", ErrInactiveFieldAccess, name))
	}
}

// Get returns a field value. Unknown names are programming errors.
func (f *Fields) Get(name string) any {
	f.check()
	v, ok := f.vals[name]
	if !ok {
		panic(fmt.Errorf("behavior: layer %q has no field %q", f.layer, name))
	}
	return v
}

// Set writes a field value. Names outside the declared schema are allowed
// as scratch state.
func (f *Fields) Set(name string, v any) {
	f.check()
	f.vals[name] = v
}

// Has reports whether the field is present.
func (f *Fields) Has(name string) bool {
	f.check()
	_, ok := f.vals[name]
	return ok
}

// Float returns a numeric field as float64.
func (f *Fields) Float(name string) float64 {
	switch v := f.Get(name).(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		panic(fmt.Errorf("behavior: layer %q field %q is %T, not a number", f.layer, name, v))
	}
}

// Int returns an integer field.
func (f *Fields) Int(name string) int {
	switch v := f.Get(name).(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		panic(fmt.Errorf("behavior: layer %q field %q is %T, not an int", f.layer, name, v))
	}
}

// Vec returns a vector field.
func (f *Fields) Vec(name string) cp.Vector {
	v, ok := f.Get(name).(cp.Vector)
	if !ok {
		panic(fmt.Errorf("behavior: layer %q field %q is not a vector", f.layer, name))
	}
	return v
}

// EntityRef returns an entity handle field.
func (f *Fields) EntityRef(name string) ecs.Entity {
	v, ok := f.Get(name).(ecs.Entity)
	if !ok {
		panic(fmt.Errorf("behavior: layer %q field %q is not an entity", f.layer, name))
	}
	return v
}
