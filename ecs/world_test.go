package ecs

import (
	"errors"
	"maps"
	"slices"
	"testing"

	"github.com/milk9111/actioninput/ecs/component"
	"github.com/milk9111/actioninput/input"
)

func TestEntityLifecycle(t *testing.T) {
	cases := []struct {
		name         string
		create       int
		destroyIndex int // -1 = none
	}{
		{"single", 1, 0},
		{"three_create_destroy_middle", 3, 1},
		{"none_destroy", 2, -1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewWorld()
			ents := make([]Entity, 0, c.create)
			for i := 0; i < c.create; i++ {
				ents = append(ents, CreateEntity(w))
			}
			if len(Entities(w)) != c.create {
				t.Fatalf("expected %d entities, got %d", c.create, len(Entities(w)))
			}
			if c.destroyIndex < 0 {
				return
			}
			e := ents[c.destroyIndex]
			if !DestroyEntity(w, e) {
				t.Fatalf("DestroyEntity should return true for alive entity")
			}
			if IsAlive(w, e) {
				t.Fatalf("entity should not be alive after destruction")
			}
			if DestroyEntity(w, e) {
				t.Fatalf("second destroy should return false")
			}
			if len(Entities(w)) != c.create-1 {
				t.Fatalf("expected %d entities after destroy, got %d", c.create-1, len(Entities(w)))
			}
		})
	}
}

func TestRecycledSlotGetsNewGeneration(t *testing.T) {
	w := NewWorld()
	old := CreateEntity(w)
	if !DestroyEntity(w, old) {
		t.Fatalf("destroy failed")
	}

	fresh := CreateEntity(w)
	if old.id() != fresh.id() {
		t.Fatalf("expected slot %d to be reused, got %d", old.id(), fresh.id())
	}
	if old == fresh {
		t.Fatalf("recycled entity should differ from the destroyed one")
	}
	if IsAlive(w, old) || !IsAlive(w, fresh) {
		t.Fatalf("only the fresh entity should be alive")
	}
	if Entity(0).Valid() {
		t.Fatalf("zero entity should be invalid")
	}
}

func intPtr(i int) *int { return &i }

func TestComponents(t *testing.T) {
	w := NewWorld()
	hi := component.NewComponent[int]()
	hs := component.NewComponent[string]()

	e1 := CreateEntity(w)
	e2 := CreateEntity(w)

	tests := []struct {
		name  string
		setup func() error
		check func(t *testing.T)
	}{
		{
			name:  "add_and_get",
			setup: func() error { return Add(w, e1, hi.Kind(), intPtr(10)) },
			check: func(t *testing.T) {
				v, ok := Get(w, e1, hi.Kind())
				if !ok || *v != 10 {
					t.Fatalf("expected 10 on e1, got %v (ok=%v)", v, ok)
				}
				if Has(w, e2, hi.Kind()) {
					t.Fatalf("e2 should not have the int component")
				}
			},
		},
		{
			name: "pointer_mutates_storage",
			setup: func() error {
				v, _ := Get(w, e1, hi.Kind())
				*v = 11
				return nil
			},
			check: func(t *testing.T) {
				if v, _ := Get(w, e1, hi.Kind()); *v != 11 {
					t.Fatalf("expected 11, got %d", *v)
				}
			},
		},
		{
			name: "second_kind",
			setup: func() error {
				s := "b"
				return Add(w, e2, hs.Kind(), &s)
			},
			check: func(t *testing.T) {
				if !Has(w, e2, hs.Kind()) || Has(w, e1, hs.Kind()) {
					t.Fatalf("string component should only be on e2")
				}
			},
		},
		{
			name:  "remove",
			setup: func() error { return nil },
			check: func(t *testing.T) {
				if !Remove(w, e1, hi.Kind()) {
					t.Fatalf("first remove should succeed")
				}
				if Remove(w, e1, hi.Kind()) {
					t.Fatalf("second remove should fail")
				}
				if Has(w, e1, hi.Kind()) {
					t.Fatalf("component still present after remove")
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.setup(); err != nil {
				t.Fatalf("setup: %v", err)
			}
			tc.check(t)
		})
	}
}

func TestAddErrors(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]()
	dead := CreateEntity(w)
	DestroyEntity(w, dead)

	if err := Add(w, dead, h.Kind(), intPtr(1)); !errors.Is(err, component.ErrEntityNotAlive) {
		t.Fatalf("expected ErrEntityNotAlive, got %v", err)
	}
	if err := Add(w, CreateEntity(w), component.ComponentKind[int]{}, intPtr(1)); !errors.Is(err, component.ErrInvalidComponentKind) {
		t.Fatalf("expected ErrInvalidComponentKind, got %v", err)
	}
	if err := Add[int](w, CreateEntity(w), h.Kind(), nil); err == nil {
		t.Fatalf("expected error for nil component")
	}
}

func TestDestroyRemovesComponents(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]()
	e1 := CreateEntity(w)
	e2 := CreateEntity(w)
	if err := Add(w, e1, h.Kind(), intPtr(1)); err != nil {
		t.Fatalf("add e1: %v", err)
	}
	if err := Add(w, e2, h.Kind(), intPtr(2)); err != nil {
		t.Fatalf("add e2: %v", err)
	}

	DestroyEntity(w, e1)
	if recycled := CreateEntity(w); Has(w, recycled, h.Kind()) {
		t.Fatalf("recycled entity inherited a component")
	}
	if v, ok := Get(w, e2, h.Kind()); !ok || *v != 2 {
		t.Fatalf("e2 component lost")
	}
}

func sorted(ents []Entity) []Entity {
	out := slices.Clone(ents)
	slices.Sort(out)
	return out
}

func TestForEach(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]()
	e1 := CreateEntity(w)
	CreateEntity(w)
	e3 := CreateEntity(w)
	for _, e := range []Entity{e1, e3} {
		if err := Add(w, e, h.Kind(), intPtr(int(e.id()))); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	var ents []Entity
	ForEach(w, h.Kind(), func(e Entity, v *int) {
		ents = append(ents, e)
		*v *= 10
	})
	if want := sorted([]Entity{e1, e3}); !slices.Equal(sorted(ents), want) {
		t.Fatalf("expected %v, got %v", want, ents)
	}

	if v, _ := Get(w, e3, h.Kind()); *v != int(e3.id())*10 {
		t.Fatalf("ForEach did not write through, got %d", *v)
	}
	if first, ok := First(w, h.Kind()); !ok || first != e1 {
		t.Fatalf("expected first %v, got %v (ok=%v)", e1, first, ok)
	}
}

func TestForEachToleratesRemoval(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]()
	for i := 0; i < 4; i++ {
		if err := Add(w, CreateEntity(w), h.Kind(), intPtr(i)); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	seen := 0
	ForEach(w, h.Kind(), func(e Entity, _ *int) {
		seen++
		for _, other := range Entities(w) {
			if other != e {
				DestroyEntity(w, other)
			}
		}
	})
	if seen != 1 {
		t.Fatalf("expected 1 visit, got %d", seen)
	}
}

func TestForEach3(t *testing.T) {
	w := NewWorld()
	e1 := CreateEntity(w)
	e2 := CreateEntity(w)
	e3 := CreateEntity(w)
	e4 := CreateEntity(w)

	ka := component.NewComponentKind[int]()
	kb := component.NewComponentKind[int]()
	kc := component.NewComponentKind[int]()

	adds := []struct {
		e    Entity
		kind component.ComponentKind[int]
		v    int
	}{
		{e1, ka, 1},
		{e2, ka, 2}, {e2, kb, 3}, {e2, kc, 5},
		{e3, kb, 4},
		{e4, kc, 6}, {e4, ka, 7}, {e4, kb, 8},
	}
	for _, a := range adds {
		if err := Add(w, a.e, a.kind, intPtr(a.v)); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	sums := map[Entity]int{}
	ForEach3(w, ka, kb, kc, func(e Entity, a, b, c *int) { sums[e] = *a + *b + *c })
	if want := map[Entity]int{e2: 10, e4: 21}; !maps.Equal(sums, want) {
		t.Fatalf("expected %v, got %v", want, sums)
	}

	var pairs []Entity
	ForEach2(w, kb, kc, func(e Entity, _, _ *int) { pairs = append(pairs, e) })
	if want := sorted([]Entity{e2, e4}); !slices.Equal(sorted(pairs), want) {
		t.Fatalf("expected %v, got %v", want, pairs)
	}
}

type recordSystem struct {
	name string
	log  *[]string
	push bool
}

func (s recordSystem) Update(w *World) {
	*s.log = append(*s.log, s.name)
	if s.push {
		w.Events().Push(ActionEvent{Event: input.Event{Action: s.name, Kind: input.EventFired}})
		return
	}
	for _, e := range w.Events().Items() {
		*s.log = append(*s.log, "saw "+e.Action)
	}
}

func TestSchedulerOrderAndEventLifetime(t *testing.T) {
	w := NewWorld()
	var log []string
	s := NewScheduler(
		recordSystem{name: "input", log: &log, push: true},
		nil,
		recordSystem{name: "movement", log: &log},
	)
	if len(s.Systems()) != 2 {
		t.Fatalf("nil system should be dropped, got %d systems", len(s.Systems()))
	}

	s.Update(w)
	if want := []string{"input", "movement", "saw input"}; !slices.Equal(log, want) {
		t.Fatalf("expected %v, got %v", want, log)
	}
	if len(w.Events().Items()) != 0 {
		t.Fatalf("events should be flushed after the frame")
	}
	if w.Events().Drain() != nil {
		t.Fatalf("drain after flush should be nil")
	}
}
