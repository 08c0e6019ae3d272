package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		name        string
		prev        ActionState
		out         Outcome
		interrupted bool
		suppress    bool
		next        ActionState
		events      []EventKind
	}{
		{"none_none", StateNone, OutcomeNone, false, false, StateNone, nil},
		{"none_ongoing", StateNone, OutcomeOngoing, false, false, StateOngoing, []EventKind{EventStarted, EventOngoing}},
		{"none_fired", StateNone, OutcomeFired, false, false, StateFired, []EventKind{EventStarted, EventFired}},
		{"completed_fired", StateCompleted, OutcomeFired, false, false, StateFired, []EventKind{EventStarted, EventFired}},
		{"canceled_none", StateCanceled, OutcomeNone, true, false, StateNone, nil},
		{"ongoing_ongoing", StateOngoing, OutcomeOngoing, false, false, StateOngoing, []EventKind{EventOngoing}},
		{"ongoing_ongoing_suppressed", StateOngoing, OutcomeOngoing, false, true, StateOngoing, nil},
		{"ongoing_fired", StateOngoing, OutcomeFired, false, true, StateFired, []EventKind{EventFired}},
		{"fired_fired", StateFired, OutcomeFired, false, false, StateFired, []EventKind{EventFired}},
		{"fired_fired_suppressed", StateFired, OutcomeFired, false, true, StateFired, nil},
		{"fired_ongoing", StateFired, OutcomeOngoing, false, true, StateOngoing, []EventKind{EventOngoing}},
		{"fired_none", StateFired, OutcomeNone, false, false, StateCompleted, []EventKind{EventCompleted}},
		{"ongoing_none_interrupted", StateOngoing, OutcomeNone, true, false, StateCanceled, []EventKind{EventCanceled}},
		{"interrupt_ignored_when_active", StateOngoing, OutcomeOngoing, true, false, StateOngoing, []EventKind{EventOngoing}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			next, events := transition(c.prev, c.out, c.interrupted, c.suppress)
			assert.Equal(t, c.next, next)
			assert.Equal(t, c.events, events)
		})
	}
}

func TestActionTimeAdvance(t *testing.T) {
	var at ActionTime
	at = at.advance(StateNone, StateOngoing, 0.5)
	assert.Equal(t, ActionTime{Elapsed: 0.5}, at)
	at = at.advance(StateOngoing, StateFired, 0.5)
	assert.Equal(t, ActionTime{Elapsed: 1, Fired: 0.5}, at)
	at = at.advance(StateFired, StateFired, 0.5)
	assert.Equal(t, ActionTime{Elapsed: 1.5, Fired: 1}, at)
	at = at.advance(StateFired, StateCompleted, 0.5)
	assert.Equal(t, ActionTime{Elapsed: 1.5, Fired: 1}, at)
	at = at.advance(StateCompleted, StateNone, 0.5)
	assert.Equal(t, ActionTime{}, at)
}

func TestStateClasses(t *testing.T) {
	for _, s := range []ActionState{StateStarted, StateOngoing, StateFired} {
		assert.True(t, s.Active(), s.String())
	}
	for _, s := range []ActionState{StateNone, StateCompleted, StateCanceled} {
		assert.True(t, s.Quiescent(), s.String())
	}
}
