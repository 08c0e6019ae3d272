package input

import (
	"fmt"
	"math"
)

// SourceID names one raw input source, e.g. "key:Space" or "pad:left_stick".
type SourceID string

// Kind is the dimensionality class of a sample.
type Kind uint8

const (
	KindBool Kind = iota
	KindAxis1D
	KindAxis2D
	KindAxis3D
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindAxis1D:
		return "axis1d"
	case KindAxis2D:
		return "axis2d"
	case KindAxis3D:
		return "axis3d"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind accepts the names produced by Kind.String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "bool", "":
		return KindBool, nil
	case "axis1d", "f32", "float":
		return KindAxis1D, nil
	case "axis2d", "vec2":
		return KindAxis2D, nil
	case "axis3d", "vec3":
		return KindAxis3D, nil
	}
	return KindBool, fmt.Errorf("input: unknown value kind %q", s)
}

// Sample is one raw or transformed reading. Components beyond the kind's
// dimension are always zero; a Bool sample stores 1 or 0 in X.
type Sample struct {
	Kind    Kind
	X, Y, Z float32
}

func Bool(v bool) Sample {
	if v {
		return Sample{Kind: KindBool, X: 1}
	}
	return Sample{Kind: KindBool}
}

func Axis1D(x float32) Sample { return Sample{Kind: KindAxis1D, X: x} }

func Axis2D(x, y float32) Sample { return Sample{Kind: KindAxis2D, X: x, Y: y} }

func Axis3D(x, y, z float32) Sample { return Sample{Kind: KindAxis3D, X: x, Y: y, Z: z} }

// Zero returns the zero sample of kind k.
func Zero(k Kind) Sample { return Sample{Kind: k} }

// Bool reports whether the sample has any non-zero component.
func (s Sample) Bool() bool {
	return s.X != 0 || s.Y != 0 || s.Z != 0
}

// IsZero reports whether every component is zero.
func (s Sample) IsZero() bool { return !s.Bool() }

// Magnitude is the Euclidean norm over all components.
func (s Sample) Magnitude() float32 {
	return float32(math.Sqrt(float64(s.X)*float64(s.X) + float64(s.Y)*float64(s.Y) + float64(s.Z)*float64(s.Z)))
}

// Actuated reports whether the magnitude is non-zero and at least threshold.
func (s Sample) Actuated(threshold float32) bool {
	m := s.Magnitude()
	return m > 0 && m >= threshold
}

// Convert reshapes the sample into kind k. Bool becomes 1 on X; axes become
// Bool by non-zero magnitude; extra components are dropped and missing ones
// are zero.
func (s Sample) Convert(k Kind) Sample {
	if s.Kind == k {
		return s
	}
	if k == KindBool {
		return Bool(s.Bool())
	}
	if s.Kind == KindBool {
		if s.Bool() {
			return Sample{Kind: k, X: 1}
		}
		return Zero(k)
	}
	out := Sample{Kind: k, X: s.X, Y: s.Y, Z: s.Z}
	return out.truncate()
}

// Add sums component-wise, keeping the receiver's kind.
func (s Sample) Add(o Sample) Sample {
	o = o.Convert(s.Kind)
	if s.Kind == KindBool {
		return Bool(s.Bool() || o.Bool())
	}
	return Sample{Kind: s.Kind, X: s.X + o.X, Y: s.Y + o.Y, Z: s.Z + o.Z}.truncate()
}

// Scale multiplies each component. Bool samples are treated as 0/1 and stay Bool.
func (s Sample) Scale(x, y, z float32) Sample {
	if s.Kind == KindBool {
		return Bool(s.X*x != 0)
	}
	return Sample{Kind: s.Kind, X: s.X * x, Y: s.Y * y, Z: s.Z * z}.truncate()
}

// Lerp moves from s towards o by t.
func (s Sample) Lerp(o Sample, t float32) Sample {
	o = o.Convert(s.Kind)
	if s.Kind == KindBool {
		return o
	}
	return Sample{
		Kind: s.Kind,
		X:    s.X + (o.X-s.X)*t,
		Y:    s.Y + (o.Y-s.Y)*t,
		Z:    s.Z + (o.Z-s.Z)*t,
	}.truncate()
}

// Components returns X, Y, Z as an array.
func (s Sample) Components() [3]float32 { return [3]float32{s.X, s.Y, s.Z} }

// WithComponents rebuilds a sample of the same kind from c.
func (s Sample) WithComponents(c [3]float32) Sample {
	if s.Kind == KindBool {
		return Bool(c[0] != 0 || c[1] != 0 || c[2] != 0)
	}
	return Sample{Kind: s.Kind, X: c[0], Y: c[1], Z: c[2]}.truncate()
}

// Sanitize replaces a sample that has any non-finite component with zero.
func (s Sample) Sanitize() Sample {
	if !finite(s.X) || !finite(s.Y) || !finite(s.Z) {
		return Zero(s.Kind)
	}
	return s.truncate()
}

func (s Sample) truncate() Sample {
	switch s.Kind {
	case KindBool:
		if s.Bool() {
			return Sample{Kind: KindBool, X: 1}
		}
		return Sample{Kind: KindBool}
	case KindAxis1D:
		s.Y, s.Z = 0, 0
	case KindAxis2D:
		s.Z = 0
	}
	return s
}

func (s Sample) String() string {
	switch s.Kind {
	case KindBool:
		return fmt.Sprintf("%t", s.Bool())
	case KindAxis1D:
		return fmt.Sprintf("%g", s.X)
	case KindAxis2D:
		return fmt.Sprintf("(%g, %g)", s.X, s.Y)
	}
	return fmt.Sprintf("(%g, %g, %g)", s.X, s.Y, s.Z)
}

func finite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}

// sanitizeDelta clamps dt to a finite, non-negative value.
func sanitizeDelta(dt float32) float32 {
	if !finite(dt) || dt < 0 {
		return 0
	}
	return dt
}
