package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	none    = OutcomeNone
	ongoing = OutcomeOngoing
	fired   = OutcomeFired
)

type condStep struct {
	in        float32
	want      Outcome
	interrupt bool
}

// runCondition feeds a 1D input sequence through c with a fixed dt.
func runCondition(t *testing.T, c Condition, dt float32, steps []condStep) {
	t.Helper()
	var mem Scratch
	for i, s := range steps {
		ev := NewEval(dt, 0, nil)
		got := c.Evaluate(&mem, ev, Axis1D(s.in))
		require.Equal(t, s.want, got, "tick %d", i+1)
		require.Equal(t, s.interrupt, ev.Interrupted(), "tick %d interrupt", i+1)
	}
}

func TestEdgeConditions(t *testing.T) {
	cases := []struct {
		name  string
		cond  Condition
		steps []condStep
	}{
		{"pressed", Pressed{}, []condStep{{0, none, false}, {1, fired, false}, {1, none, false}, {0, none, false}, {1, fired, false}}},
		{"pressed_continuous", Pressed{Continuous: true}, []condStep{{0, none, false}, {1, fired, false}, {1, ongoing, false}, {0, none, false}}},
		{"pressed_threshold", Pressed{Threshold: 0.1}, []condStep{{0.05, none, false}, {0.5, fired, false}}},
		{"released", Released{}, []condStep{{1, ongoing, false}, {1, ongoing, false}, {0, fired, false}, {0, none, false}}},
		{"down", Down{}, []condStep{{1, fired, false}, {0.2, none, false}, {0.7, fired, false}}},
		{"toggle", Toggle{}, []condStep{{1, fired, false}, {0, fired, false}, {1, none, false}, {0, none, false}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			runCondition(t, c.cond, 0.1, c.steps)
		})
	}
}

func TestHold(t *testing.T) {
	t.Run("fires_after_duration", func(t *testing.T) {
		runCondition(t, Hold{Duration: 1}, 0.5, []condStep{
			{1, ongoing, false},
			{1, ongoing, false},
			{1, fired, false},
			{1, ongoing, false},
			{0, none, false},
		})
	})

	t.Run("early_release_interrupts", func(t *testing.T) {
		runCondition(t, Hold{Duration: 1}, 0.5, []condStep{
			{1, ongoing, false},
			{0, none, true},
			{0, none, false},
		})
	})
}

func TestHoldRepeatPolicies(t *testing.T) {
	cases := []struct {
		name   string
		policy RepeatPolicy
		fires  []int
	}{
		{"reset", RepeatReset, []int{3, 6, 9}},
		{"carry", RepeatCarry, []int{3, 5, 7, 9}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h := Hold{Duration: 1, Repeat: true, Policy: c.policy}
			var mem Scratch
			var fires []int
			for tick := 1; tick <= 9; tick++ {
				if h.Evaluate(&mem, NewEval(0.5, 0, nil), Bool(true)) == OutcomeFired {
					fires = append(fires, tick)
				}
			}
			assert.Equal(t, c.fires, fires)
			assert.Equal(t, len(c.fires), mem.Count)
		})
	}
}

func TestTap(t *testing.T) {
	t.Run("quick_release_fires", func(t *testing.T) {
		runCondition(t, Tap{MaxDuration: 0.5}, 0.25, []condStep{
			{1, ongoing, false},
			{0, fired, false},
		})
	})

	t.Run("held_too_long_interrupts_once", func(t *testing.T) {
		runCondition(t, Tap{MaxDuration: 0.5}, 0.25, []condStep{
			{1, ongoing, false},
			{1, ongoing, false},
			{1, none, true},
			{1, none, false},
			{0, none, false},
		})
	})
}

func TestHoldAndRelease(t *testing.T) {
	runCondition(t, HoldAndRelease{Duration: 0.5}, 0.25, []condStep{
		{1, ongoing, false},
		{1, ongoing, false},
		{1, ongoing, false},
		{0, fired, false},
	})
	runCondition(t, HoldAndRelease{Duration: 0.5}, 0.25, []condStep{
		{1, ongoing, false},
		{0, none, true},
	})
}

func TestPulse(t *testing.T) {
	cases := []struct {
		name  string
		pulse Pulse
		want  []Outcome
	}{
		{"every_interval", Pulse{Interval: 1}, []Outcome{fired, ongoing, fired, ongoing, fired}},
		{"delay_first", Pulse{Interval: 1, DelayFirst: true}, []Outcome{ongoing, ongoing, fired, ongoing, fired}},
		{"limit", Pulse{Interval: 1, Limit: 2}, []Outcome{fired, ongoing, fired, none, none}},
		{"initial_delay", Pulse{Interval: 0.5, InitialDelay: 1}, []Outcome{fired, ongoing, fired, fired, fired}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var mem Scratch
			for i, want := range c.want {
				got := c.pulse.Evaluate(&mem, NewEval(0.5, 0, nil), Bool(true))
				require.Equal(t, want, got, "tick %d", i+1)
			}
		})
	}
}

func TestChord(t *testing.T) {
	cases := []struct {
		name  string
		chord Chord
		prev  map[string]ActionState
		want  Outcome
	}{
		{"all_active", ChordOf("A", "B"), map[string]ActionState{"A": StateOngoing, "B": StateFired}, fired},
		{"one_missing", ChordOf("A", "B"), map[string]ActionState{"A": StateFired, "B": StateNone}, ongoing},
		{"none_active", ChordOf("A"), map[string]ActionState{"A": StateCompleted}, none},
		{"requires_fired", Chord{Requires: []ChordRequirement{{Action: "A", State: StateFired}}}, map[string]ActionState{"A": StateOngoing}, ongoing},
		{"unknown", ChordOf("Z"), map[string]ActionState{}, none},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := c.chord.Evaluate(nil, NewEval(0.1, 0, c.prev), Bool(true))
			assert.Equal(t, c.want, got)
		})
	}
	assert.Equal(t, Implicit, kindOf(ChordOf("A")))
	assert.Equal(t, []string{"A", "B"}, ChordOf("A", "B").Dependencies())
}

func TestCooldown(t *testing.T) {
	runCondition(t, Cooldown{Duration: 1}, 0.5, []condStep{
		{1, fired, false},
		{1, fired, false},
		{0, none, false},
		{1, none, false},
		{1, fired, false},
		{1, fired, false},
	})
}

func TestBlockBy(t *testing.T) {
	b := BlockBy{Actions: []string{"Menu"}}
	assert.Equal(t, Blocker, kindOf(b))
	assert.Equal(t, none, b.Evaluate(nil, NewEval(0, 0, map[string]ActionState{"Menu": StateFired}), Bool(true)))
	assert.Equal(t, fired, b.Evaluate(nil, NewEval(0, 0, map[string]ActionState{"Menu": StateCompleted}), Bool(true)))
}

func TestTrackerCombination(t *testing.T) {
	type entry struct {
		kind ConditionKind
		out  Outcome
	}
	cases := []struct {
		name     string
		entries  []entry
		actuated bool
		want     Outcome
	}{
		{"empty_actuated", nil, true, fired},
		{"empty_idle", nil, false, none},
		{"explicit_or", []entry{{Explicit, none}, {Explicit, fired}}, false, fired},
		{"explicit_ongoing", []entry{{Explicit, ongoing}, {Explicit, none}}, true, ongoing},
		{"implicit_all_fired", []entry{{Implicit, fired}, {Implicit, fired}}, false, fired},
		{"implicit_caps", []entry{{Explicit, fired}, {Implicit, ongoing}}, true, ongoing},
		{"implicit_none_explicit_fired", []entry{{Explicit, fired}, {Implicit, none}}, true, ongoing},
		{"blocked", []entry{{Explicit, fired}, {Blocker, none}}, true, none},
		{"blocker_only_passes", []entry{{Blocker, fired}}, true, fired},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tr := newTracker()
			for _, e := range c.entries {
				tr.add(e.kind, e.out)
			}
			assert.Equal(t, c.want, tr.outcome(c.actuated))
		})
	}
}

type comboTick struct {
	dt     float32
	events map[string]EventSet
	states map[string]ActionState
	want   Outcome
}

func runCombo(t *testing.T, c Combo, ticks []comboTick) {
	t.Helper()
	var mem Scratch
	for i, tk := range ticks {
		events := map[string]EventSet{"A": 0, "B": 0, "C": 0, "X": 0}
		for k, v := range tk.events {
			events[k] = v
		}
		ev := NewEval(tk.dt, 0, tk.states).WithEvents(events)
		require.Equal(t, tk.want, c.Evaluate(&mem, ev, Bool(false)), "tick %d", i+1)
	}
}

func TestCombo(t *testing.T) {
	abc := Combo{
		Steps: []ComboStep{
			{Action: "A", Events: EventsOf(EventFired)},
			{Action: "B", Timeout: 0.6},
			{Action: "C", Timeout: 0.3},
		},
		Cancel: []ComboCancel{{Action: "X"}},
	}
	aFired := map[string]EventSet{"A": EventsOf(EventStarted, EventFired)}
	aActive := map[string]ActionState{"A": StateFired}
	completed := func(action string) map[string]EventSet {
		return map[string]EventSet{action: EventsOf(EventCompleted)}
	}

	t.Run("in_order", func(t *testing.T) {
		runCombo(t, abc, []comboTick{
			{dt: 0.1, events: aFired, states: aActive, want: ongoing},
			{dt: 0.5, events: completed("B"), want: ongoing},
			{dt: 0.2, events: completed("C"), want: fired},
			{dt: 0.1, want: none},
		})
	})
	t.Run("step_timeout", func(t *testing.T) {
		runCombo(t, abc, []comboTick{
			{dt: 0.1, events: aFired, states: aActive, want: ongoing},
			{dt: 0.7, events: completed("B"), want: none},
		})
	})
	t.Run("out_of_order", func(t *testing.T) {
		runCombo(t, abc, []comboTick{
			{dt: 0.1, events: aFired, states: aActive, want: ongoing},
			{dt: 0.1, events: completed("C"), want: none},
			{dt: 0.1, events: completed("B"), want: none},
		})
	})
	t.Run("cancel_action", func(t *testing.T) {
		runCombo(t, abc, []comboTick{
			{dt: 0.1, events: aFired, states: aActive, want: ongoing},
			{dt: 0.1, events: map[string]EventSet{"X": EventsOf(EventOngoing)}, want: none},
		})
	})
	t.Run("first_step_active", func(t *testing.T) {
		runCombo(t, abc, []comboTick{
			{dt: 0.1, states: map[string]ActionState{"A": StateOngoing}, want: ongoing},
		})
	})
	t.Run("empty_and_unknown", func(t *testing.T) {
		var mem Scratch
		assert.Equal(t, none, Combo{}.Evaluate(&mem, NewEval(0.1, 0, nil), Bool(true)))
		assert.Equal(t, none, ComboOf("Z").Evaluate(&mem, NewEval(0.1, 0, nil).WithEvents(nil), Bool(true)))
	})

	assert.Equal(t, Implicit, kindOf(abc))
	assert.Equal(t, []string{"A", "B", "C", "X"}, abc.References())
}

func TestEventSet(t *testing.T) {
	s := EventsOf(EventStarted, EventFired)
	assert.True(t, s.Has(EventFired))
	assert.False(t, s.Has(EventOngoing))
	assert.True(t, s.Contains(EventsOf(EventFired)))
	assert.False(t, s.Contains(EventsOf(EventFired, EventCompleted)))
	assert.True(t, s.Intersects(EventsOf(EventFired, EventCompleted)))
	assert.Equal(t, "started|fired", s.String())

	k, err := ParseEventKind("completed")
	require.NoError(t, err)
	assert.Equal(t, EventCompleted, k)
	_, err = ParseEventKind("done")
	assert.Error(t, err)
}
