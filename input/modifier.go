package input

import "math"

// Scratch is the mutable memory of one modifier or condition instance. The
// configuration values stay immutable; everything that changes tick to tick
// lives here, in the pipeline's arena.
type Scratch struct {
	Value   Sample
	Elapsed float32
	Count   int
	Primed  bool
	Latched bool
}

// Modifier transforms one sample into another of the same kind.
// Implementations must be total: out-of-range input is clamped, never an error.
type Modifier interface {
	Apply(mem *Scratch, in Sample, dt float32) Sample
}

// ModifierFunc adapts a stateless function to Modifier.
type ModifierFunc func(in Sample, dt float32) Sample

func (f ModifierFunc) Apply(_ *Scratch, in Sample, dt float32) Sample {
	if f == nil {
		return in
	}
	return f(in, dt)
}

// DeadZone zeroes magnitudes at or below Lower and rescales (Lower, Upper]
// onto (0, 1]. Radial by default; Axial treats each component separately.
type DeadZone struct {
	Lower float32
	Upper float32
	Axial bool
}

func (d DeadZone) bounds() (float32, float32) {
	lower, upper := d.Lower, d.Upper
	if !finite(lower) || lower < 0 {
		lower = 0
	}
	if !finite(upper) || upper <= 0 {
		upper = 1
	}
	if upper <= lower {
		upper = lower + 1e-6
	}
	return lower, upper
}

func (d DeadZone) rescale(m float32) float32 {
	lower, upper := d.bounds()
	if m <= lower {
		return 0
	}
	if m > upper {
		m = upper
	}
	return (m - lower) / (upper - lower)
}

func (d DeadZone) Apply(_ *Scratch, in Sample, _ float32) Sample {
	if in.Kind == KindBool {
		return in
	}
	if d.Axial {
		c := in.Components()
		for i, v := range c {
			r := d.rescale(float32(math.Abs(float64(v))))
			if v < 0 {
				r = -r
			}
			c[i] = r
		}
		return in.WithComponents(c)
	}
	m := in.Magnitude()
	r := d.rescale(m)
	if r == 0 {
		return Zero(in.Kind)
	}
	k := r / m
	return in.Scale(k, k, k)
}

// Scale multiplies each axis by a factor.
type Scale struct {
	X, Y, Z float32
}

// ScaleBy returns a uniform Scale.
func ScaleBy(f float32) Scale { return Scale{X: f, Y: f, Z: f} }

func (s Scale) Apply(_ *Scratch, in Sample, _ float32) Sample {
	return in.Scale(s.X, s.Y, s.Z)
}

// Negate flips the sign of the selected axes.
type Negate struct {
	X, Y, Z bool
}

// NegateAll flips every axis.
func NegateAll() Negate { return Negate{X: true, Y: true, Z: true} }

func (n Negate) Apply(_ *Scratch, in Sample, _ float32) Sample {
	if in.Kind == KindBool {
		return in
	}
	return in.Scale(sign(n.X), sign(n.Y), sign(n.Z))
}

func sign(neg bool) float32 {
	if neg {
		return -1
	}
	return 1
}

// Axis indexes a sample component.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Swizzle reorders components: output component i takes input component Order[i].
type Swizzle struct {
	Order [3]Axis
}

var (
	SwizzleYXZ = Swizzle{Order: [3]Axis{AxisY, AxisX, AxisZ}}
	SwizzleZYX = Swizzle{Order: [3]Axis{AxisZ, AxisY, AxisX}}
	SwizzleXZY = Swizzle{Order: [3]Axis{AxisX, AxisZ, AxisY}}
	SwizzleYZX = Swizzle{Order: [3]Axis{AxisY, AxisZ, AxisX}}
	SwizzleZXY = Swizzle{Order: [3]Axis{AxisZ, AxisX, AxisY}}
	// SwizzleXXZ copies X into Y; diagonal keys use it.
	SwizzleXXZ = Swizzle{Order: [3]Axis{AxisX, AxisX, AxisZ}}
)

// ParseSwizzle reads an order such as "YXZ".
func ParseSwizzle(s string) (Swizzle, bool) {
	if len(s) != 3 {
		return Swizzle{}, false
	}
	var sw Swizzle
	for i := 0; i < 3; i++ {
		switch s[i] {
		case 'X', 'x':
			sw.Order[i] = AxisX
		case 'Y', 'y':
			sw.Order[i] = AxisY
		case 'Z', 'z':
			sw.Order[i] = AxisZ
		default:
			return Swizzle{}, false
		}
	}
	return sw, true
}

func (s Swizzle) Apply(_ *Scratch, in Sample, _ float32) Sample {
	if in.Kind == KindBool {
		return in
	}
	c := in.Components()
	var out [3]float32
	for i, a := range s.Order {
		if a > AxisZ {
			continue
		}
		out[i] = c[a]
	}
	return in.WithComponents(out)
}

// Smooth is an exponential moving average with time constant Tau seconds.
type Smooth struct {
	Tau float32
}

func (s Smooth) Apply(mem *Scratch, in Sample, dt float32) Sample {
	alpha := float32(1)
	if finite(s.Tau) && s.Tau > 0 {
		alpha = 1 - float32(math.Exp(-float64(dt)/float64(s.Tau)))
	}
	prev := mem.Value.Convert(in.Kind)
	out := prev.Lerp(in, alpha).Sanitize()
	mem.Value = out
	return out
}

// AccumulateByTime integrates value·dt. Limit, when positive, clamps the
// accumulated magnitude; ResetOnZero restarts from zero when the input is zero.
type AccumulateByTime struct {
	Limit       float32
	ResetOnZero bool
}

func (a AccumulateByTime) Apply(mem *Scratch, in Sample, dt float32) Sample {
	if a.ResetOnZero && in.IsZero() {
		mem.Value = Zero(in.Kind)
		return mem.Value
	}
	if in.Kind == KindBool {
		in = in.Convert(KindAxis1D)
	}
	acc := mem.Value.Convert(in.Kind).Add(in.Scale(dt, dt, dt))
	if a.Limit > 0 {
		if m := acc.Magnitude(); m > a.Limit {
			k := a.Limit / m
			acc = acc.Scale(k, k, k)
		}
	}
	acc = acc.Sanitize()
	mem.Value = acc
	return acc
}

// Clamp bounds every component to [Min, Max].
type Clamp struct {
	Min, Max float32
}

func (c Clamp) Apply(_ *Scratch, in Sample, _ float32) Sample {
	if in.Kind == KindBool || c.Max < c.Min {
		return in
	}
	comps := in.Components()
	for i, v := range comps {
		comps[i] = float32(math.Max(float64(c.Min), math.Min(float64(c.Max), float64(v))))
	}
	return in.WithComponents(comps)
}

// Curve applies sign(v)·|v|^Exponent to each component.
type Curve struct {
	Exponent float32
}

func (c Curve) Apply(_ *Scratch, in Sample, _ float32) Sample {
	if in.Kind == KindBool || !finite(c.Exponent) || c.Exponent <= 0 {
		return in
	}
	comps := in.Components()
	for i, v := range comps {
		r := float32(math.Pow(math.Abs(float64(v)), float64(c.Exponent)))
		if v < 0 {
			r = -r
		}
		comps[i] = r
	}
	return in.WithComponents(comps).Sanitize()
}

// DeltaScale multiplies the value by the tick's dt.
type DeltaScale struct{}

func (DeltaScale) Apply(_ *Scratch, in Sample, dt float32) Sample {
	return in.Scale(dt, dt, dt)
}

// applyModifiers runs mods in order, one scratch slot per modifier.
func applyModifiers(mods []Modifier, mem []Scratch, in Sample, dt float32) Sample {
	kind := in.Kind
	for i, m := range mods {
		if m == nil {
			continue
		}
		in = m.Apply(&mem[i], in, dt).Convert(kind).Sanitize()
	}
	return in
}
