package prefabs

import (
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// Env binds an expression evaluation to one entity at one moment. Field
// looks up fields declared earlier in the same schema, Base the entity's
// base field store. Nil members make the matching builtin return
// undefined.
type Env struct {
	Field func(name string) any
	Base  func(name string) any
	Rand  func(min, max float64) float64
	Now   func() float64
}

// Expr is a compiled field initializer expression. Compile once at spec
// load, evaluate per activation with the builtins rebound to the entity.
type Expr struct {
	src      string
	compiled *tengo.Compiled
}

var exprBuiltins = []string{"field", "base", "rand", "now"}

// CompileExpr compiles a single tengo expression. Syntax errors surface
// at load time, not at activation.
func CompileExpr(src string) (*Expr, error) {
	script := tengo.NewScript([]byte("__out := (" + src + ")"))
	for _, name := range exprBuiltins {
		if err := script.Add(name, undefinedFn(name)); err != nil {
			return nil, fmt.Errorf("prefabs: compile %q: %w", src, err)
		}
	}
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("prefabs: compile %q: %w", src, err)
	}
	return &Expr{src: src, compiled: compiled}, nil
}

// Eval runs the expression against an environment and returns its value
// as a plain Go value (int64, float64, string, bool, slices, maps).
func (x *Expr) Eval(env Env) (any, error) {
	binds := map[string]tengo.Object{
		"field": lookupFn("field", env.Field),
		"base":  lookupFn("base", env.Base),
		"rand":  randFn(env.Rand),
		"now":   nowFn(env.Now),
	}
	for name, fn := range binds {
		if err := x.compiled.Set(name, fn); err != nil {
			return nil, fmt.Errorf("prefabs: eval %q: %w", x.src, err)
		}
	}

	if err := x.compiled.Run(); err != nil {
		return nil, fmt.Errorf("prefabs: eval %q: %w", x.src, err)
	}
	return x.compiled.Get("__out").Value(), nil
}

// Src returns the source text, for error messages.
func (x *Expr) Src() string {
	return x.src
}

// CompiledField pairs a field name with its compiled initializer.
type CompiledField struct {
	Name string
	Expr *Expr
}

// CompileFields compiles a declared field schema, preserving declaration
// order so later initializers can read earlier fields.
func CompileFields(specs []FieldSpec) ([]CompiledField, error) {
	out := make([]CompiledField, 0, len(specs))
	for _, fs := range specs {
		x, err := CompileExpr(fs.Expr)
		if err != nil {
			return nil, fmt.Errorf("prefabs: field %s: %w", fs.Name, err)
		}
		out = append(out, CompiledField{Name: fs.Name, Expr: x})
	}
	return out, nil
}

func undefinedFn(name string) *tengo.UserFunction {
	return &tengo.UserFunction{Name: name, Value: func(args ...tengo.Object) (tengo.Object, error) {
		return tengo.UndefinedValue, nil
	}}
}

func lookupFn(name string, get func(string) any) *tengo.UserFunction {
	return &tengo.UserFunction{Name: name, Value: func(args ...tengo.Object) (tengo.Object, error) {
		if get == nil || len(args) < 1 {
			return tengo.UndefinedValue, nil
		}
		key, ok := tengo.ToString(args[0])
		if !ok || key == "" {
			return tengo.UndefinedValue, nil
		}
		obj, err := tengo.FromInterface(get(key))
		if err != nil {
			return tengo.UndefinedValue, nil
		}
		return obj, nil
	}}
}

func randFn(r func(min, max float64) float64) *tengo.UserFunction {
	return &tengo.UserFunction{Name: "rand", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if r == nil || len(args) < 2 {
			return tengo.UndefinedValue, nil
		}
		min, ok1 := tengo.ToFloat64(args[0])
		max, ok2 := tengo.ToFloat64(args[1])
		if !ok1 || !ok2 {
			return tengo.UndefinedValue, nil
		}
		return &tengo.Float{Value: r(min, max)}, nil
	}}
}

func nowFn(now func() float64) *tengo.UserFunction {
	return &tengo.UserFunction{Name: "now", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if now == nil {
			return tengo.UndefinedValue, nil
		}
		return &tengo.Float{Value: now()}, nil
	}}
}
