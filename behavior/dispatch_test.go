package behavior

import (
	"errors"
	"testing"
)

func wrapAppend(log *[]string, name string, callBase bool) Wrap {
	return func(ctx *Context, base Continuation, args ...any) (any, error) {
		*log = append(*log, name)
		if callBase {
			return base(args...)
		}
		return nil, nil
	}
}

func TestDispatchResolutionOrder(t *testing.T) {
	var log []string
	d := mustCompile(t, Def{
		Archetype: "a",
		Base: map[Event]Handler{
			EventUpdate: func(ctx *Context, args ...any) (any, error) {
				log = append(log, "base")
				return "base-result", nil
			},
		},
		Layers: []LayerDef{
			{Name: "low", Wraps: map[Event]Wrap{EventUpdate: wrapAppend(&log, "low", true)}},
			{Name: "high", Wraps: map[Event]Wrap{EventUpdate: wrapAppend(&log, "high", true)},
				Layers: []LayerDef{
					{Name: "nested", Default: true, Wraps: map[Event]Wrap{EventUpdate: wrapAppend(&log, "nested", true)}},
				}},
		},
	})
	r := NewRuntime(newStubHost())
	e := attach(t, r, d)
	if err := r.Enable(e, "low"); err != nil {
		t.Fatal(err)
	}
	if err := r.Enable(e, "high"); err != nil {
		t.Fatal(err)
	}

	log = nil
	res, handled, err := r.Dispatch(e, EventUpdate)
	if err != nil {
		t.Fatal(err)
	}
	if !handled {
		t.Fatal("expected handled")
	}
	want := []string{"nested", "high", "low", "base"}
	if len(log) != len(want) {
		t.Fatalf("expected %v, got %v", want, log)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, log)
		}
	}
	if res != "base-result" {
		t.Fatalf("continuation result should flow back to the entry point, got %v", res)
	}
}

func TestDispatchWithoutContinuation(t *testing.T) {
	var log []string
	d := mustCompile(t, Def{
		Archetype: "a",
		Base: map[Event]Handler{
			EventUpdate: func(ctx *Context, args ...any) (any, error) {
				log = append(log, "base")
				return nil, nil
			},
		},
		Layers: []LayerDef{
			{Name: "top", Default: true, Wraps: map[Event]Wrap{EventUpdate: wrapAppend(&log, "top", false)}},
		},
	})
	r := NewRuntime(newStubHost())
	e := attach(t, r, d)

	log = nil
	if _, _, err := r.Dispatch(e, EventUpdate); err != nil {
		t.Fatal(err)
	}
	if len(log) != 1 || log[0] != "top" {
		t.Fatalf("base must not run when the wrap skips its continuation, got %v", log)
	}
}

func TestDispatchUnhandled(t *testing.T) {
	d := mustCompile(t, Def{Archetype: "a"})
	r := NewRuntime(newStubHost())
	e := attach(t, r, d)

	res, handled, err := r.Dispatch(e, EventCollision, nil)
	if err != nil {
		t.Fatal(err)
	}
	if handled || res != nil {
		t.Fatalf("expected unhandled no-op, got handled=%v res=%v", handled, res)
	}
}

func TestDispatchNotAttached(t *testing.T) {
	r := NewRuntime(newStubHost())
	if _, _, err := r.Dispatch(12345, EventUpdate); !errors.Is(err, ErrNotAttached) {
		t.Fatalf("expected ErrNotAttached, got %v", err)
	}
}

func TestSelfTransitionMidDispatch(t *testing.T) {
	var log []string
	d := mustCompile(t, Def{
		Archetype: "a",
		Base: map[Event]Handler{
			EventUpdate: func(ctx *Context, args ...any) (any, error) {
				log = append(log, "base")
				return nil, nil
			},
		},
		Layers: []LayerDef{
			{Name: "flee", Group: "mode", Default: true, Wraps: map[Event]Wrap{
				EventUpdate: func(ctx *Context, base Continuation, args ...any) (any, error) {
					log = append(log, "flee")
					if err := ctx.Enable("hunt"); err != nil {
						return nil, err
					}
					// hand the rest of this tick to the new state
					return ctx.Redispatch(args...)
				},
			}},
			{Name: "hunt", Group: "mode", Wraps: map[Event]Wrap{
				EventUpdate: func(ctx *Context, base Continuation, args ...any) (any, error) {
					log = append(log, "hunt")
					return nil, nil
				},
			}},
		},
	})
	r := NewRuntime(newStubHost())
	e := attach(t, r, d)

	log = nil
	if _, _, err := r.Dispatch(e, EventUpdate); err != nil {
		t.Fatal(err)
	}
	want := []string{"flee", "hunt"}
	if len(log) != 2 || log[0] != want[0] || log[1] != want[1] {
		t.Fatalf("expected %v (hunt runs in the same dispatch, base never), got %v", want, log)
	}
	if cur, _ := r.Active(e, "mode"); cur != "hunt" {
		t.Fatalf("expected hunt active after self-transition, got %q", cur)
	}
}

func TestDeactivatedLayerSkippedByContinuation(t *testing.T) {
	var log []string
	d := mustCompile(t, Def{
		Archetype: "a",
		Base: map[Event]Handler{
			EventUpdate: func(ctx *Context, args ...any) (any, error) {
				log = append(log, "base")
				return nil, nil
			},
		},
		Layers: []LayerDef{
			{Name: "victim", Default: true, Wraps: map[Event]Wrap{EventUpdate: wrapAppend(&log, "victim", true)}},
			{Name: "top", Default: true, Wraps: map[Event]Wrap{
				EventUpdate: func(ctx *Context, base Continuation, args ...any) (any, error) {
					log = append(log, "top")
					if err := ctx.Disable("victim"); err != nil {
						return nil, err
					}
					return base(args...)
				},
			}},
		},
	})
	r := NewRuntime(newStubHost())
	e := attach(t, r, d)

	log = nil
	if _, _, err := r.Dispatch(e, EventUpdate); err != nil {
		t.Fatal(err)
	}
	want := []string{"top", "base"}
	if len(log) != 2 || log[0] != want[0] || log[1] != want[1] {
		t.Fatalf("deactivated layer must be skipped, got %v", log)
	}
}

func TestHandlerLoopBound(t *testing.T) {
	d := mustCompile(t, Def{
		Archetype: "a",
		Layers: []LayerDef{
			{Name: "ping", Group: "mode", Default: true, Wraps: map[Event]Wrap{
				EventUpdate: func(ctx *Context, base Continuation, args ...any) (any, error) {
					if err := ctx.Enable("pong"); err != nil {
						return nil, err
					}
					return ctx.Redispatch(args...)
				},
			}},
			{Name: "pong", Group: "mode", Wraps: map[Event]Wrap{
				EventUpdate: func(ctx *Context, base Continuation, args ...any) (any, error) {
					if err := ctx.Enable("ping"); err != nil {
						return nil, err
					}
					return ctx.Redispatch(args...)
				},
			}},
		},
	})
	r := NewRuntime(newStubHost())
	e := attach(t, r, d)

	if _, _, err := r.Dispatch(e, EventUpdate); !errors.Is(err, ErrHandlerLoop) {
		t.Fatalf("expected ErrHandlerLoop, got %v", err)
	}
}

func TestUnknownMessageSurfaces(t *testing.T) {
	d := mustCompile(t, Def{
		Archetype: "a",
		Base: map[Event]Handler{
			EventMessage: func(ctx *Context, args ...any) (any, error) {
				name, _ := args[0].(string)
				if name == "ping" {
					return "pong", nil
				}
				return nil, ErrUnknownMessage
			},
		},
	})
	r := NewRuntime(newStubHost())
	e := attach(t, r, d)

	if res, _, err := r.Dispatch(e, EventMessage, "ping"); err != nil || res != "pong" {
		t.Fatalf("expected pong, got %v err=%v", res, err)
	}
	if _, _, err := r.Dispatch(e, EventMessage, "quack"); !errors.Is(err, ErrUnknownMessage) {
		t.Fatalf("expected ErrUnknownMessage, got %v", err)
	}
	// state is not corrupted by the failed dispatch
	if res, _, err := r.Dispatch(e, EventMessage, "ping"); err != nil || res != "pong" {
		t.Fatalf("expected pong after failed dispatch, got %v err=%v", res, err)
	}
}

func TestReload(t *testing.T) {
	build := func(withGlow bool) *Definition {
		layers := []LayerDef{
			{Name: "hunt", Group: "mode", Default: true,
				Fields: []FieldDef{{Name: "meals", Init: func(ctx *Context) any { return 0 }}}},
		}
		if withGlow {
			layers = append(layers, LayerDef{Name: "glow"})
		}
		return mustCompile(t, Def{
			Archetype: "a",
			Base: map[Event]Handler{
				EventReload: func(ctx *Context, args ...any) (any, error) { return "reloaded", nil },
			},
			Layers: layers,
		})
	}

	r := NewRuntime(newStubHost())
	e := attach(t, r, build(true))
	if err := r.Enable(e, "glow"); err != nil {
		t.Fatal(err)
	}
	bag, _ := layerFields(r, e, "hunt")
	bag.Set("meals", 3)

	r.Reload(build(false))

	if r.IsEnabled(e, "glow") {
		t.Fatal("layer removed by reload must be deactivated")
	}
	if !r.IsEnabled(e, "hunt") {
		t.Fatal("surviving layer must stay active")
	}
	bag2, err := layerFields(r, e, "hunt")
	if err != nil {
		t.Fatal(err)
	}
	if bag2.Int("meals") != 3 {
		t.Fatalf("surviving layer must keep field values, got %v", bag2.Get("meals"))
	}
}
