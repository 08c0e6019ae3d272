package input

// Preset expands into a list of bindings for one action.
type Preset interface {
	Bindings() []Binding
}

// BindPreset attaches every binding of each preset to action, stopping at
// the first error.
func (b *Builder) BindPreset(action string, presets ...Preset) ([]BindingID, error) {
	var ids []BindingID
	for _, pr := range presets {
		for _, bind := range pr.Bindings() {
			id, err := b.Bind(action, bind)
			if err != nil {
				return ids, err
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func with(src SourceID, mods ...Modifier) Binding {
	return Binding{Source: src, Modifiers: mods}
}

func appendMods(b Binding, mods ...Modifier) Binding {
	b.Modifiers = append(append([]Modifier(nil), b.Modifiers...), mods...)
	return b
}

// Bidirectional maps two sources onto one axis: Positive as +X, Negative as -X.
type Bidirectional struct {
	Positive SourceID
	Negative SourceID
}

func (p Bidirectional) Bindings() []Binding {
	return presetBindings(
		with(p.Positive),
		with(p.Negative, NegateAll()),
	)
}

// Cardinal maps four directions onto a 2D axis.
type Cardinal struct {
	North, East, South, West SourceID
}

// WASD is the Cardinal preset for the W, A, S and D keys.
func WASD() Cardinal {
	return Cardinal{North: "key:W", West: "key:A", South: "key:S", East: "key:D"}
}

// Arrows is the Cardinal preset for the arrow keys.
func Arrows() Cardinal {
	return Cardinal{North: "key:ArrowUp", West: "key:ArrowLeft", South: "key:ArrowDown", East: "key:ArrowRight"}
}

// DPad is the Cardinal preset for the gamepad directional buttons.
func DPad() Cardinal {
	return Cardinal{North: "pad:dpad_up", West: "pad:dpad_left", South: "pad:dpad_down", East: "pad:dpad_right"}
}

func (p Cardinal) Bindings() []Binding {
	x := Bidirectional{Positive: p.East, Negative: p.West}.Bindings()
	var y []Binding
	for _, b := range (Bidirectional{Positive: p.North, Negative: p.South}).Bindings() {
		y = append(y, appendMods(b, SwizzleYXZ))
	}
	return presetBindings(append(x, y...)...)
}

// Axial maps two 1D axis sources onto a 2D axis.
type Axial struct {
	X, Y SourceID
}

// LeftStick is the Axial preset for the left gamepad stick.
func LeftStick() Axial { return Axial{X: "pad:left_x", Y: "pad:left_y"} }

// RightStick is the Axial preset for the right gamepad stick.
func RightStick() Axial { return Axial{X: "pad:right_x", Y: "pad:right_y"} }

func (p Axial) Bindings() []Binding {
	return presetBindings(
		with(p.X),
		with(p.Y, SwizzleYXZ),
	)
}

// Ordinal is Cardinal plus the four diagonals.
type Ordinal struct {
	North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest SourceID
}

// Numpad is the Ordinal preset for the numeric keypad.
func Numpad() Ordinal {
	return Ordinal{
		North: "key:Numpad8", NorthEast: "key:Numpad9",
		East: "key:Numpad6", SouthEast: "key:Numpad3",
		South: "key:Numpad2", SouthWest: "key:Numpad1",
		West: "key:Numpad4", NorthWest: "key:Numpad7",
	}
}

func (p Ordinal) Bindings() []Binding {
	out := Cardinal{North: p.North, East: p.East, South: p.South, West: p.West}.Bindings()
	out = append(out,
		with(p.NorthEast, SwizzleXXZ),
		with(p.SouthEast, SwizzleXXZ, Negate{Y: true}),
		with(p.SouthWest, SwizzleXXZ, NegateAll()),
		with(p.NorthWest, SwizzleXXZ, Negate{X: true}),
	)
	return presetBindings(out...)
}

// Spatial maps six directions onto a 3D axis. Forward is -Z.
type Spatial struct {
	Forward, Backward, Left, Right, Up, Down SourceID
}

// WASDAnd is the Spatial preset for WASD plus two vertical keys.
func WASDAnd(up, down SourceID) Spatial {
	return Spatial{Forward: "key:W", Left: "key:A", Backward: "key:S", Right: "key:D", Up: up, Down: down}
}

func (p Spatial) Bindings() []Binding {
	out := Cardinal{North: p.Up, East: p.Right, South: p.Down, West: p.Left}.Bindings()
	for _, b := range (Bidirectional{Positive: p.Backward, Negative: p.Forward}).Bindings() {
		out = append(out, appendMods(b, SwizzleZYX))
	}
	return presetBindings(out...)
}

// presetBindings drops unset directions so a preset can leave slots empty.
func presetBindings(in ...Binding) []Binding {
	out := in[:0]
	for _, b := range in {
		if b.Source != "" {
			out = append(out, b)
		}
	}
	return out
}
