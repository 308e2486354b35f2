package ecs

import "testing"

func TestEntityLifecycle(t *testing.T) {
	cases := []struct {
		name         string
		create       int
		destroyIndex int // -1 = none
	}{
		{"single", 1, 0},
		{"three_destroy_middle", 3, 1},
		{"none_destroyed", 2, -1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewWorld()
			ents := make([]Entity, 0, c.create)
			for i := 0; i < c.create; i++ {
				ents = append(ents, w.Create("critter"))
			}
			if len(w.Entities()) != c.create {
				t.Fatalf("expected %d entities, got %d", c.create, len(w.Entities()))
			}
			if c.destroyIndex >= 0 {
				if !w.Destroy(ents[c.destroyIndex]) {
					t.Fatalf("Destroy should return true for alive entity")
				}
				if w.IsAlive(ents[c.destroyIndex]) {
					t.Fatalf("entity should not be alive after destruction")
				}
			}
		})
	}
}

func TestEntityHandleRecycling(t *testing.T) {
	w := NewWorld()
	e1 := w.Create("critter")
	if !w.Destroy(e1) {
		t.Fatal("destroy failed")
	}
	e2 := w.Create("critter")
	if e1 == e2 {
		t.Fatalf("recycled id must get a new generation: %v == %v", e1, e2)
	}
	if w.IsAlive(e1) {
		t.Fatal("stale handle should be dead")
	}
	if !w.IsAlive(e2) {
		t.Fatal("new handle should be alive")
	}
}

func TestFieldStore(t *testing.T) {
	w := NewWorld()
	e1 := w.Create("critter")
	e2 := w.Create("worm")

	tests := []struct {
		name  string
		setup func()
		check func(t *testing.T)
	}{
		{
			name:  "set_and_get",
			setup: func() { w.Set(e1, "size", 12.0) },
			check: func(t *testing.T) {
				v, ok := w.Get(e1, "size")
				if !ok || v.(float64) != 12.0 {
					t.Fatalf("expected 12.0, got %v ok=%v", v, ok)
				}
			},
		},
		{
			name:  "last_write_wins",
			setup: func() { w.Set(e1, "size", 12.0); w.Set(e1, "size", 20.0) },
			check: func(t *testing.T) {
				v, _ := w.Get(e1, "size")
				if v.(float64) != 20.0 {
					t.Fatalf("expected 20.0, got %v", v)
				}
			},
		},
		{
			name:  "per_entity_scope",
			setup: func() { w.Set(e1, "facing", "left") },
			check: func(t *testing.T) {
				if _, ok := w.Get(e2, "facing"); ok {
					t.Fatal("e2 should not have facing")
				}
			},
		},
		{
			name:  "unset",
			setup: func() { w.Set(e2, "frame", 3); w.Unset(e2, "frame") },
			check: func(t *testing.T) {
				if _, ok := w.Get(e2, "frame"); ok {
					t.Fatal("frame should be unset")
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.setup()
			tc.check(t)
		})
	}
}

func TestFieldsDroppedOnDestroy(t *testing.T) {
	w := NewWorld()
	e := w.Create("critter")
	w.Set(e, "size", 1.0)
	if !w.Destroy(e) {
		t.Fatal("destroy failed")
	}
	e2 := w.Create("critter")
	if _, ok := w.Get(e2, "size"); ok {
		t.Fatal("recycled id must not see prior entity's fields")
	}
}

func TestArchetypeQuery(t *testing.T) {
	w := NewWorld()
	c1 := w.Create("critter")
	w.Create("worm")
	c2 := w.Create("critter")

	got := w.OfArchetype("critter")
	if len(got) != 2 || got[0] != c1 || got[1] != c2 {
		t.Fatalf("expected [%v %v], got %v", c1, c2, got)
	}
	if arch, ok := w.Archetype(c1); !ok || arch != "critter" {
		t.Fatalf("expected critter archetype, got %q ok=%v", arch, ok)
	}
}

func TestTags(t *testing.T) {
	w := NewWorld()
	g1 := w.Create("waygate")
	g2 := w.Create("waygate")
	g3 := w.Create("waygate")
	w.Tag(g1, "network", "yard")
	w.Tag(g2, "network", "yard")
	w.Tag(g3, "network", "roof")

	t.Run("tagged", func(t *testing.T) {
		if got := w.Tagged("network"); len(got) != 3 {
			t.Fatalf("expected 3 tagged, got %v", got)
		}
	})

	t.Run("tagged_with_value", func(t *testing.T) {
		got := w.TaggedWith("network", "yard")
		if len(got) != 2 || got[0] != g1 || got[1] != g2 {
			t.Fatalf("expected [%v %v], got %v", g1, g2, got)
		}
	})

	t.Run("tag_value", func(t *testing.T) {
		if v, ok := w.TagValue(g3, "network"); !ok || v != "roof" {
			t.Fatalf("expected roof, got %q ok=%v", v, ok)
		}
	})

	t.Run("retag_overwrites", func(t *testing.T) {
		w.Tag(g3, "network", "yard")
		if got := w.TaggedWith("network", "yard"); len(got) != 3 {
			t.Fatalf("expected 3 after retag, got %v", got)
		}
	})

	t.Run("dropped_on_destroy", func(t *testing.T) {
		w.Destroy(g2)
		got := w.TaggedWith("network", "yard")
		for _, e := range got {
			if e == g2 {
				t.Fatal("destroyed entity still tagged")
			}
		}
	})
}

func TestMarkDead(t *testing.T) {
	w := NewWorld()
	e := w.Create("worm")
	w.MarkDead(e)
	w.MarkDead(e) // idempotent
	if len(w.Dead()) != 1 {
		t.Fatalf("expected 1 dead mark, got %d", len(w.Dead()))
	}
	if !w.IsAlive(e) {
		t.Fatal("marking must not destroy")
	}
	w.ClearDead()
	if len(w.Dead()) != 0 {
		t.Fatal("expected empty dead list after clear")
	}
}

func TestSparseSetRemoveSwap(t *testing.T) {
	var s SparseSet[int]
	s.Set(1, 10)
	s.Set(2, 20)
	s.Set(3, 30)
	if !s.Remove(2) {
		t.Fatal("remove failed")
	}
	if s.Has(2) {
		t.Fatal("removed id still present")
	}
	if v, ok := s.Get(3); !ok || v != 30 {
		t.Fatalf("swap corrupted value: %v ok=%v", v, ok)
	}
	if s.Len() != 2 {
		t.Fatalf("expected len 2, got %d", s.Len())
	}
}
