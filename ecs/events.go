package ecs

import "github.com/milk9111/actioninput/input"

// ActionEvent is an input event tagged with the entity whose pipeline
// produced it.
type ActionEvent struct {
	Entity Entity
	input.Event
}

// EventQueue collects a frame's action events. The scheduler clears it after
// the last system ran.
type EventQueue struct {
	items []ActionEvent
}

func (q *EventQueue) Push(evt ActionEvent) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Items returns the events pushed so far this frame.
func (q *EventQueue) Items() []ActionEvent {
	if q == nil {
		return nil
	}
	return q.items
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []ActionEvent {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

func (q *EventQueue) flush() {
	if q == nil {
		return
	}
	q.items = q.items[:0]
}
