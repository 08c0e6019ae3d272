package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/actioninput/input"
)

func TestModifierScripts(t *testing.T) {
	cases := []struct {
		name   string
		src    string
		params map[string]any
		in     input.Sample
		want   input.Sample
	}{
		{"scale_by_param", `out = [value[0] * params.factor]`, map[string]any{"factor": 2.0}, input.Axis1D(0.25), input.Axis1D(0.5)},
		{"invert_y", "out = copy(value)\nout[1] = -out[1]", nil, input.Axis2D(1, 1), input.Axis2D(1, -1)},
		{"scalar_result", `out = 3`, nil, input.Axis2D(1, 1), input.Axis2D(3, 0)},
		{"kind_visible", `out = kind == "axis1d" ? [1] : [0]`, nil, input.Axis1D(0), input.Axis1D(1)},
		{"runtime_error_is_identity", `out = value[0] + "x"`, nil, input.Axis1D(0.7), input.Axis1D(0.7)},
		{"unassigned_is_identity", `x := 1`, nil, input.Axis1D(0.7), input.Axis1D(0.7)},
		{"bad_shape_is_identity", `out = "left"`, nil, input.Axis1D(0.7), input.Axis1D(0.7)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m, err := NewModifier(c.name, []byte(c.src), c.params, nil)
			require.NoError(t, err)
			var mem input.Scratch
			assert.Equal(t, c.want, m.Apply(&mem, c.in, 0.1))
		})
	}
}

func TestModifierMemoryPersists(t *testing.T) {
	src := `
memory.count += 1
memory.elapsed += dt
out = [memory.elapsed]
`
	m, err := NewModifier("integrate", []byte(src), nil, nil)
	require.NoError(t, err)

	var a, b input.Scratch
	m.Apply(&a, input.Axis1D(1), 0.5)
	out := m.Apply(&a, input.Axis1D(1), 0.5)
	assert.Equal(t, input.Axis1D(1), out)
	assert.Equal(t, 2, a.Count)

	// Separate scratch slots do not share state.
	assert.Equal(t, input.Axis1D(0.5), m.Apply(&b, input.Axis1D(1), 0.5))
}

func TestCompileError(t *testing.T) {
	_, err := NewModifier("broken", []byte(`out = (`), nil, nil)
	assert.Error(t, err)

	_, err = NewCondition("bad_kind", []byte(`condition_kind := "sometimes"`), nil, nil)
	assert.Error(t, err)
}

func TestConditionScripts(t *testing.T) {
	t.Run("outcome_from_actuation", func(t *testing.T) {
		c, err := NewCondition("down", []byte(`outcome = actuated ? "fired" : "none"`), nil, nil)
		require.NoError(t, err)
		assert.Equal(t, input.Explicit, c.Kind())

		var mem input.Scratch
		assert.Equal(t, input.OutcomeFired, c.Evaluate(&mem, input.NewEval(0.1, 0, nil), input.Bool(true)))
		assert.Equal(t, input.OutcomeNone, c.Evaluate(&mem, input.NewEval(0.1, 0, nil), input.Bool(false)))
	})

	t.Run("threshold_param", func(t *testing.T) {
		c, err := NewCondition("down", []byte(`outcome = actuated ? "fired" : "none"`), map[string]any{"threshold": 0.9}, nil)
		require.NoError(t, err)
		var mem input.Scratch
		assert.Equal(t, input.OutcomeNone, c.Evaluate(&mem, input.NewEval(0.1, 0, nil), input.Axis1D(0.8)))
	})

	t.Run("reads_previous_states", func(t *testing.T) {
		src := `
condition_kind := "blocker"
outcome = state("Menu") == "fired" ? "none" : "fired"
`
		c, err := NewCondition("menu_blocker", []byte(src), nil, nil)
		require.NoError(t, err)
		assert.Equal(t, input.Blocker, c.Kind())

		var mem input.Scratch
		open := input.NewEval(0.1, 0, map[string]input.ActionState{"Menu": input.StateFired})
		assert.Equal(t, input.OutcomeNone, c.Evaluate(&mem, open, input.Bool(true)))
		closed := input.NewEval(0.1, 0, map[string]input.ActionState{"Menu": input.StateCompleted})
		assert.Equal(t, input.OutcomeFired, c.Evaluate(&mem, closed, input.Bool(true)))
	})

	t.Run("interrupt", func(t *testing.T) {
		c, err := NewCondition("cancel", []byte("interrupt()\noutcome = \"none\""), nil, nil)
		require.NoError(t, err)
		var mem input.Scratch
		ev := input.NewEval(0.1, 0, nil)
		assert.Equal(t, input.OutcomeNone, c.Evaluate(&mem, ev, input.Bool(true)))
		assert.True(t, ev.Interrupted())
	})

	t.Run("unknown_outcome_is_none", func(t *testing.T) {
		c, err := NewCondition("typo", []byte(`outcome = "fried"`), nil, nil)
		require.NoError(t, err)
		var mem input.Scratch
		assert.Equal(t, input.OutcomeNone, c.Evaluate(&mem, input.NewEval(0.1, 0, nil), input.Bool(true)))
	})
}

func TestConditionInPipeline(t *testing.T) {
	src := `
if actuated {
	memory.elapsed += dt
	outcome = memory.elapsed >= 0.2 ? "fired" : "ongoing"
} else {
	memory.elapsed = 0.0
	outcome = "none"
}
`
	c, err := NewCondition("charge", []byte(src), nil, nil)
	require.NoError(t, err)

	p, err := input.NewBuilder().
		AddContext(input.Context{Name: "g"}).
		AddAction("g", input.Action{Key: "Charge"}).
		MustBind("Charge", input.Binding{Source: "key:Space", Conditions: []input.Condition{c}}).
		Build()
	require.NoError(t, err)

	held := input.Frame{DT: 0.1, Samples: map[input.SourceID]input.Sample{"key:Space": input.Bool(true)}}
	var got []input.EventKind
	for i := 0; i < 2; i++ {
		for _, e := range p.Tick(held) {
			got = append(got, e.Kind)
		}
	}
	assert.Equal(t, []input.EventKind{input.EventStarted, input.EventOngoing, input.EventFired}, got)
}
