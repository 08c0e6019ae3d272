package input

import (
	"fmt"
	"strings"
)

// Outcome is the per-tick result of a condition, binding or action.
// Ordered so that Fired > Ongoing > None.
type Outcome uint8

const (
	OutcomeNone Outcome = iota
	OutcomeOngoing
	OutcomeFired
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeOngoing:
		return "ongoing"
	case OutcomeFired:
		return "fired"
	}
	return fmt.Sprintf("outcome(%d)", uint8(o))
}

// ParseOutcome accepts the names produced by Outcome.String.
func ParseOutcome(s string) (Outcome, error) {
	switch s {
	case "none", "":
		return OutcomeNone, nil
	case "ongoing":
		return OutcomeOngoing, nil
	case "fired":
		return OutcomeFired, nil
	}
	return OutcomeNone, fmt.Errorf("input: unknown outcome %q", s)
}

func maxOutcome(a, b Outcome) Outcome {
	if a > b {
		return a
	}
	return b
}

// ActionState is the lifecycle state of an action.
type ActionState uint8

const (
	StateNone ActionState = iota
	// StateStarted only exists within a tick; it is never stored.
	StateStarted
	StateOngoing
	StateFired
	StateCompleted
	StateCanceled
)

func (s ActionState) String() string {
	switch s {
	case StateNone:
		return "none"
	case StateStarted:
		return "started"
	case StateOngoing:
		return "ongoing"
	case StateFired:
		return "fired"
	case StateCompleted:
		return "completed"
	case StateCanceled:
		return "canceled"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// ParseState accepts the names produced by ActionState.String.
func ParseState(s string) (ActionState, error) {
	for st := StateNone; st <= StateCanceled; st++ {
		if st.String() == s {
			return st, nil
		}
	}
	if s == "" {
		return StateNone, nil
	}
	return StateNone, fmt.Errorf("input: unknown action state %q", s)
}

// Active reports whether the state is Started, Ongoing or Fired.
func (s ActionState) Active() bool {
	return s == StateStarted || s == StateOngoing || s == StateFired
}

// Quiescent reports whether the state is None, Completed or Canceled.
func (s ActionState) Quiescent() bool { return !s.Active() }

// EventKind identifies a lifecycle event.
type EventKind uint8

const (
	EventStarted EventKind = iota + 1
	EventOngoing
	EventFired
	EventCompleted
	EventCanceled
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventOngoing:
		return "ongoing"
	case EventFired:
		return "fired"
	case EventCompleted:
		return "completed"
	case EventCanceled:
		return "canceled"
	}
	return fmt.Sprintf("event(%d)", uint8(k))
}

// ParseEventKind accepts the names produced by EventKind.String.
func ParseEventKind(s string) (EventKind, error) {
	for k := EventStarted; k <= EventCanceled; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("input: unknown event kind %q", s)
}

// EventSet is a set of event kinds, e.g. everything one action emitted in a
// tick.
type EventSet uint8

// EventsOf builds a set from kinds.
func EventsOf(kinds ...EventKind) EventSet {
	var s EventSet
	for _, k := range kinds {
		s = s.With(k)
	}
	return s
}

func (s EventSet) With(k EventKind) EventSet { return s | 1<<k }

func (s EventSet) Has(k EventKind) bool { return s&(1<<k) != 0 }

// Contains reports whether every kind in o is in s.
func (s EventSet) Contains(o EventSet) bool { return s&o == o }

// Intersects reports whether s and o share a kind.
func (s EventSet) Intersects(o EventSet) bool { return s&o != 0 }

func (s EventSet) String() string {
	var parts []string
	for k := EventStarted; k <= EventCanceled; k++ {
		if s.Has(k) {
			parts = append(parts, k.String())
		}
	}
	return strings.Join(parts, "|")
}

// Event is one lifecycle transition emitted by a tick.
type Event struct {
	Context string
	Action  string
	Kind    EventKind
	// Value is the action's output for the tick that emitted the event.
	Value Sample
	// State is the action's stored state after the tick.
	State   ActionState
	Elapsed float32
	Fired   float32
}

func (e Event) String() string {
	return fmt.Sprintf("%s/%s %s value=%s elapsed=%g", e.Context, e.Action, e.Kind, e.Value, e.Elapsed)
}

// ActionTime tracks how long an action has been active and firing.
type ActionTime struct {
	Elapsed float32
	Fired   float32
}

func (t ActionTime) advance(prev, next ActionState, dt float32) ActionTime {
	switch {
	case next.Active() && prev.Quiescent():
		t = ActionTime{Elapsed: dt}
		if next == StateFired {
			t.Fired = dt
		}
	case next.Active():
		t.Elapsed += dt
		if next == StateFired {
			t.Fired += dt
		} else {
			t.Fired = 0
		}
	case next == StateNone:
		t = ActionTime{}
	}
	// Completed/Canceled keep the last values so the event can report them.
	return t
}

// transition advances the state machine by one tick and returns the stored
// next state plus the ordered events for each boundary crossed.
func transition(prev ActionState, out Outcome, interrupted, suppressRepeats bool) (ActionState, []EventKind) {
	if prev.Quiescent() {
		switch out {
		case OutcomeOngoing:
			return StateOngoing, []EventKind{EventStarted, EventOngoing}
		case OutcomeFired:
			return StateFired, []EventKind{EventStarted, EventFired}
		}
		return StateNone, nil
	}

	switch out {
	case OutcomeNone:
		if interrupted {
			return StateCanceled, []EventKind{EventCanceled}
		}
		return StateCompleted, []EventKind{EventCompleted}
	case OutcomeOngoing:
		if prev == StateOngoing && suppressRepeats {
			return StateOngoing, nil
		}
		return StateOngoing, []EventKind{EventOngoing}
	}
	if prev == StateFired && suppressRepeats {
		return StateFired, nil
	}
	return StateFired, []EventKind{EventFired}
}
