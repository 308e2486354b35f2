package prefabs

import (
	"testing"
)

func testEnv(fields, base map[string]any) Env {
	return Env{
		Field: func(name string) any { return fields[name] },
		Base:  func(name string) any { return base[name] },
		Rand:  func(min, max float64) float64 { return (min + max) / 2 },
		Now:   func() float64 { return 42.5 },
	}
}

func TestCompileExpr(t *testing.T) {
	cases := []struct {
		name string
		src  string
		ok   bool
	}{
		{"literal", "7.5", true},
		{"arith", "1 + 2 * 3", true},
		{"builtin_call", `rand(0.0, 1.0)`, true},
		{"syntax_error", "1 +", false},
		{"unknown_name", "frobnicate(1)", false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := CompileExpr(c.src)
			if c.ok != (err == nil) {
				t.Fatalf("ok=%v, err=%v", c.ok, err)
			}
		})
	}
}

func TestExprEval(t *testing.T) {
	env := testEnv(
		map[string]any{"duration": 7.5},
		map[string]any{"size": 6.0},
	)

	cases := []struct {
		name string
		src  string
		want any
	}{
		{"float_literal", "7.5", 7.5},
		{"int_literal", "3", int64(3)},
		{"earlier_field", `field("duration")`, 7.5},
		{"base_field", `base("size") * 2.0`, 12.0},
		{"rand_midpoint", `rand(0.0, 10.0)`, 5.0},
		{"now", `now()`, 42.5},
		{"missing_field_is_undefined", `field("nope") == undefined`, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			x, err := CompileExpr(c.src)
			if err != nil {
				t.Fatalf("compile: %v", err)
			}
			got, err := x.Eval(env)
			if err != nil {
				t.Fatalf("eval: %v", err)
			}
			if got != c.want {
				t.Fatalf("expected %v (%T), got %v (%T)", c.want, c.want, got, got)
			}
		})
	}
}

func TestExprEvalRebindsPerCall(t *testing.T) {
	x, err := CompileExpr(`now()`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	for _, want := range []float64{1.0, 2.0, 3.0} {
		w := want
		got, err := x.Eval(Env{Now: func() float64 { return w }})
		if err != nil {
			t.Fatalf("eval: %v", err)
		}
		if got != want {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestCompileFieldsOrderAndVisibility(t *testing.T) {
	compiled, err := CompileFields([]FieldSpec{
		{Name: "duration", Expr: "7.5"},
		{Name: "remaining", Expr: `field("duration")`},
	})
	if err != nil {
		t.Fatalf("compile fields: %v", err)
	}
	if len(compiled) != 2 || compiled[0].Name != "duration" || compiled[1].Name != "remaining" {
		t.Fatalf("declaration order not preserved: %+v", compiled)
	}

	// Evaluate in order the way an activation does, each initializer
	// seeing the fields before it.
	bag := map[string]any{}
	env := testEnv(bag, nil)
	for _, cf := range compiled {
		v, err := cf.Expr.Eval(env)
		if err != nil {
			t.Fatalf("eval %s: %v", cf.Name, err)
		}
		bag[cf.Name] = v
	}
	if bag["remaining"] != 7.5 {
		t.Fatalf("later initializer should see earlier field, got %v", bag["remaining"])
	}
}

func TestCompileFieldsBadExpr(t *testing.T) {
	if _, err := CompileFields([]FieldSpec{{Name: "broken", Expr: "1 +"}}); err == nil {
		t.Fatal("expected compile error")
	}
}
