// Package ebitendev polls keyboard, mouse and the first standard gamepad
// through ebiten.
package ebitendev

import (
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/actioninput/device"
	"github.com/milk9111/actioninput/input"
)

type padAxis struct {
	axis ebiten.StandardGamepadAxis
	// flip turns screen-down stick axes into up-is-positive.
	flip bool
}

var padAxes = map[string]padAxis{
	"left_x":  {axis: ebiten.StandardGamepadAxisLeftStickHorizontal},
	"left_y":  {axis: ebiten.StandardGamepadAxisLeftStickVertical, flip: true},
	"right_x": {axis: ebiten.StandardGamepadAxisRightStickHorizontal},
	"right_y": {axis: ebiten.StandardGamepadAxisRightStickVertical, flip: true},
}

var padButtons = map[string]ebiten.StandardGamepadButton{
	"south":        ebiten.StandardGamepadButtonRightBottom,
	"east":         ebiten.StandardGamepadButtonRightRight,
	"west":         ebiten.StandardGamepadButtonRightLeft,
	"north":        ebiten.StandardGamepadButtonRightTop,
	"dpad_up":      ebiten.StandardGamepadButtonLeftTop,
	"dpad_down":    ebiten.StandardGamepadButtonLeftBottom,
	"dpad_left":    ebiten.StandardGamepadButtonLeftLeft,
	"dpad_right":   ebiten.StandardGamepadButtonLeftRight,
	"start":        ebiten.StandardGamepadButtonCenterRight,
	"select":       ebiten.StandardGamepadButtonCenterLeft,
	"left_bumper":  ebiten.StandardGamepadButtonFrontTopLeft,
	"right_bumper": ebiten.StandardGamepadButtonFrontTopRight,
	"left_stick":   ebiten.StandardGamepadButtonLeftStick,
	"right_stick":  ebiten.StandardGamepadButtonRightStick,
}

// Analog triggers report their pressure as Axis1D.
var padTriggers = map[string]ebiten.StandardGamepadButton{
	"left_trigger":  ebiten.StandardGamepadButtonFrontBottomLeft,
	"right_trigger": ebiten.StandardGamepadButtonFrontBottomRight,
}

var mouseButtons = map[string]ebiten.MouseButton{
	"left":   ebiten.MouseButtonLeft,
	"right":  ebiten.MouseButtonRight,
	"middle": ebiten.MouseButtonMiddle,
}

// Device reads ebiten's input state. Call Advance once per game Update after
// the pipelines ticked so mouse deltas cover exactly one frame.
type Device struct {
	logger *slog.Logger
	keys   map[string]ebiten.Key
	bad    map[input.SourceID]bool

	cursorX, cursorY int
	tracked          bool
	pads             []ebiten.GamepadID
}

func New(logger *slog.Logger) *Device {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Device{
		logger: logger,
		keys:   make(map[string]ebiten.Key),
		bad:    make(map[input.SourceID]bool),
	}
}

func (d *Device) key(name string) (ebiten.Key, bool) {
	if k, ok := d.keys[name]; ok {
		return k, true
	}
	var k ebiten.Key
	if err := k.UnmarshalText([]byte(name)); err != nil {
		return 0, false
	}
	d.keys[name] = k
	return k, true
}

func (d *Device) gamepad() (ebiten.GamepadID, bool) {
	d.pads = ebiten.AppendGamepadIDs(d.pads[:0])
	for _, id := range d.pads {
		if ebiten.IsStandardGamepadLayoutAvailable(id) {
			return id, true
		}
	}
	return 0, false
}

func (d *Device) Poll(sources []input.SourceID) map[input.SourceID]input.Sample {
	out := make(map[input.SourceID]input.Sample, len(sources))
	pad, hasPad := d.gamepad()
	for _, id := range sources {
		src, err := device.ParseSource(id)
		if err != nil {
			d.warnOnce(id, err)
			continue
		}
		var (
			v  input.Sample
			ok bool
		)
		switch src.Device {
		case device.Keyboard:
			var k ebiten.Key
			if k, ok = d.key(src.Name); ok {
				v = input.Bool(ebiten.IsKeyPressed(k))
			}
		case device.Mouse:
			v, ok = d.mouse(src.Name)
		case device.Gamepad:
			if !hasPad {
				continue
			}
			v, ok = padSample(pad, src.Name)
		}
		if !ok {
			d.warnOnce(id, device.ErrBadSource)
			continue
		}
		out[id] = v
	}
	return out
}

func (d *Device) warnOnce(id input.SourceID, err error) {
	if d.bad[id] {
		return
	}
	d.bad[id] = true
	d.logger.Warn("ebitendev: unknown source", "source", id, "err", err)
}

func (d *Device) mouse(name string) (input.Sample, bool) {
	if b, ok := mouseButtons[name]; ok {
		return input.Bool(ebiten.IsMouseButtonPressed(b)), true
	}
	switch name {
	case "delta":
		if !d.tracked {
			return input.Axis2D(0, 0), true
		}
		x, y := ebiten.CursorPosition()
		return input.Axis2D(float32(x-d.cursorX), float32(d.cursorY-y)), true
	case "wheel":
		_, dy := ebiten.Wheel()
		return input.Axis1D(float32(dy)), true
	}
	return input.Sample{}, false
}

func padSample(id ebiten.GamepadID, name string) (input.Sample, bool) {
	if a, ok := padAxes[name]; ok {
		v := ebiten.StandardGamepadAxisValue(id, a.axis)
		if a.flip {
			v = -v
		}
		return input.Axis1D(float32(v)), true
	}
	if b, ok := padButtons[name]; ok {
		return input.Bool(ebiten.IsStandardGamepadButtonPressed(id, b)), true
	}
	if b, ok := padTriggers[name]; ok {
		return input.Axis1D(float32(ebiten.StandardGamepadButtonValue(id, b))), true
	}
	switch name {
	case "left_stick_2d":
		x := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
		y := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical)
		return input.Axis2D(float32(x), float32(-y)), true
	case "right_stick_2d":
		x := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickHorizontal)
		y := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickVertical)
		return input.Axis2D(float32(x), float32(-y)), true
	}
	return input.Sample{}, false
}

// Advance records the cursor so the next frame's delta starts here.
func (d *Device) Advance() {
	d.cursorX, d.cursorY = ebiten.CursorPosition()
	d.tracked = true
}
