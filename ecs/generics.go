package ecs

import (
	"fmt"

	"github.com/milk9111/actioninput/ecs/component"
)

// Add attaches value to e, replacing any previous value of the same kind.
func Add[T any](w *World, e Entity, kind component.ComponentKind[T], value *T) error {
	if !IsAlive(w, e) {
		return fmt.Errorf("%w: %s", component.ErrEntityNotAlive, e)
	}
	if value == nil {
		return fmt.Errorf("ecs: nil %s", kind)
	}
	s, err := storeFor(w, kind, true)
	if err != nil {
		return err
	}
	s.set(e, *value)
	return nil
}

// Get returns a pointer into storage; it stays valid until the next Add or
// Remove on the same kind.
func Get[T any](w *World, e Entity, kind component.ComponentKind[T]) (*T, bool) {
	if !IsAlive(w, e) {
		return nil, false
	}
	s, err := storeFor(w, kind, false)
	if err != nil || s == nil {
		return nil, false
	}
	return s.get(e.id())
}

func Has[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	_, ok := Get(w, e, kind)
	return ok
}

func Remove[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	if !IsAlive(w, e) {
		return false
	}
	s, err := storeFor(w, kind, false)
	if err != nil || s == nil {
		return false
	}
	return s.remove(e.id())
}

// First returns the first entity holding kind.
func First[T any](w *World, kind component.ComponentKind[T]) (Entity, bool) {
	s, err := storeFor(w, kind, false)
	if err != nil || s == nil || s.len() == 0 {
		return 0, false
	}
	return s.entities[0], true
}

// ForEach visits every entity holding kind. fn may add or remove components;
// entities removed during the walk are skipped.
func ForEach[T any](w *World, kind component.ComponentKind[T], fn func(Entity, *T)) {
	s, err := storeFor(w, kind, false)
	if err != nil || s == nil {
		return
	}
	for _, e := range append([]Entity(nil), s.entities...) {
		if v, ok := s.get(e.id()); ok && IsAlive(w, e) {
			fn(e, v)
		}
	}
}

// ForEach2 visits entities holding both kinds, driven by the smaller storage.
func ForEach2[A, B any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], fn func(Entity, *A, *B)) {
	sa, err := storeFor(w, ka, false)
	if err != nil || sa == nil {
		return
	}
	sb, err := storeFor(w, kb, false)
	if err != nil || sb == nil {
		return
	}
	driver := sa.entities
	if sb.len() < sa.len() {
		driver = sb.entities
	}
	for _, e := range append([]Entity(nil), driver...) {
		a, ok := sa.get(e.id())
		if !ok {
			continue
		}
		b, ok := sb.get(e.id())
		if !ok {
			continue
		}
		fn(e, a, b)
	}
}

// ForEach3 visits entities holding all three kinds.
func ForEach3[A, B, C any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], kc component.ComponentKind[C], fn func(Entity, *A, *B, *C)) {
	sc, err := storeFor(w, kc, false)
	if err != nil || sc == nil {
		return
	}
	ForEach2(w, ka, kb, func(e Entity, a *A, b *B) {
		if c, ok := sc.get(e.id()); ok {
			fn(e, a, b, c)
		}
	})
}
