package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apply(m Modifier, in Sample, dt float32) Sample {
	var mem Scratch
	return m.Apply(&mem, in, dt)
}

func TestStatelessModifiers(t *testing.T) {
	cases := []struct {
		name string
		mod  Modifier
		in   Sample
		want Sample
	}{
		{"scale", Scale{X: 2, Y: -1}, Axis2D(0.5, 0.5), Axis2D(1, -0.5)},
		{"scale_bool_keeps_kind", ScaleBy(3), Bool(true), Bool(true)},
		{"negate_all", NegateAll(), Axis3D(1, -2, 3), Axis3D(-1, 2, -3)},
		{"negate_y", Negate{Y: true}, Axis2D(1, 1), Axis2D(1, -1)},
		{"negate_bool_untouched", NegateAll(), Bool(true), Bool(true)},
		{"swizzle_yxz", SwizzleYXZ, Axis2D(1, 2), Axis2D(2, 1)},
		{"swizzle_zyx", SwizzleZYX, Axis3D(1, 2, 3), Axis3D(3, 2, 1)},
		{"swizzle_xxz", SwizzleXXZ, Axis2D(1, 0), Axis2D(1, 1)},
		{"clamp", Clamp{Min: -1, Max: 1}, Axis2D(2, -3), Axis2D(1, -1)},
		{"curve", Curve{Exponent: 2}, Axis1D(-0.5), Axis1D(-0.25)},
		{"delta_scale", DeltaScale{}, Axis1D(4), Axis1D(1)},
		{"func", ModifierFunc(func(in Sample, _ float32) Sample { return in.Scale(0, 0, 0) }), Axis1D(1), Axis1D(0)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, apply(c.mod, c.in, 0.25))
		})
	}
}

func TestParseSwizzle(t *testing.T) {
	sw, ok := ParseSwizzle("yxz")
	require.True(t, ok)
	assert.Equal(t, SwizzleYXZ, sw)

	_, ok = ParseSwizzle("XW")
	assert.False(t, ok)
}

func TestDeadZoneRadial(t *testing.T) {
	dz := DeadZone{Lower: 0.2, Upper: 1}

	assert.Equal(t, Axis1D(0), apply(dz, Axis1D(0.1), 0))
	assert.Equal(t, Axis2D(0, 0), apply(dz, Axis2D(0.2, 0), 0))
	assert.InDelta(t, 0.5, apply(dz, Axis1D(0.6), 0).X, 1e-5)
	assert.InDelta(t, 1.0, apply(dz, Axis1D(1), 0).X, 1e-5)
	assert.InDelta(t, -1.0, apply(dz, Axis1D(-3), 0).X, 1e-5)

	// Direction is preserved.
	out := apply(dz, Axis2D(0.6, 0.8), 0)
	assert.InDelta(t, 0.6, out.X, 1e-5)
	assert.InDelta(t, 0.8, out.Y, 1e-5)
}

func TestDeadZoneMonotonic(t *testing.T) {
	dz := DeadZone{Lower: 0.25, Upper: 1}
	var prev float32
	for i := 0; i <= 20; i++ {
		m := float32(i) * 0.05
		out := apply(dz, Axis1D(m), 0).Magnitude()
		if m <= 0.25 {
			require.Equal(t, float32(0), out, "m=%g", m)
			continue
		}
		require.Greater(t, out, prev, "m=%g", m)
		require.LessOrEqual(t, out, float32(1.00001), "m=%g", m)
		prev = out
	}
}

func TestDeadZoneAxial(t *testing.T) {
	dz := DeadZone{Lower: 0.5, Upper: 1, Axial: true}
	out := apply(dz, Axis2D(0.4, -0.75), 0)
	assert.Equal(t, float32(0), out.X)
	assert.InDelta(t, -0.5, out.Y, 1e-5)
}

func TestSmooth(t *testing.T) {
	t.Run("zero_tau_passes_through", func(t *testing.T) {
		assert.Equal(t, Axis1D(0.7), apply(Smooth{}, Axis1D(0.7), 0.1))
	})

	t.Run("converges", func(t *testing.T) {
		var mem Scratch
		s := Smooth{Tau: 0.1}
		first := s.Apply(&mem, Axis1D(1), 0.1)
		assert.Greater(t, first.X, float32(0.6))
		assert.Less(t, first.X, float32(0.7))
		var last Sample
		for i := 0; i < 50; i++ {
			last = s.Apply(&mem, Axis1D(1), 0.1)
		}
		assert.InDelta(t, 1.0, last.X, 1e-4)
	})

	t.Run("deterministic", func(t *testing.T) {
		a, b := Scratch{Value: Axis1D(0.2)}, Scratch{Value: Axis1D(0.2)}
		s := Smooth{Tau: 0.3}
		assert.Equal(t, s.Apply(&a, Axis1D(1), 0.05), s.Apply(&b, Axis1D(1), 0.05))
	})
}

func TestAccumulateByTime(t *testing.T) {
	var mem Scratch
	acc := AccumulateByTime{Limit: 1.5, ResetOnZero: true}

	assert.Equal(t, Axis1D(1), acc.Apply(&mem, Axis1D(2), 0.5))
	assert.Equal(t, Axis1D(1.5), acc.Apply(&mem, Axis1D(2), 0.5))
	assert.Equal(t, Axis1D(0), acc.Apply(&mem, Axis1D(0), 0.5))
	assert.Equal(t, Axis1D(0.5), acc.Apply(&mem, Axis1D(1), 0.5))
}

func TestApplyModifiersKeepsKind(t *testing.T) {
	mods := []Modifier{
		ModifierFunc(func(in Sample, _ float32) Sample { return Axis3D(1, 2, 3) }),
		nil,
	}
	mem := make([]Scratch, len(mods))
	assert.Equal(t, Axis2D(1, 2), applyModifiers(mods, mem, Axis2D(0, 0), 0))
}
