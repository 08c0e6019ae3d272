package device

import (
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/milk9111/actioninput/input"
)

// Terminal adapts tcell events. Terminals report key presses but not
// releases, so each press reads as held for Hold frames; auto-repeat keeps a
// held key alive as long as Hold spans the repeat gap.
type Terminal struct {
	Hold int

	keys    map[string]int
	buttons tcell.ButtonMask
	wheel   float32
	dx, dy  float32
	lastX   int
	lastY   int
	tracked bool
}

func NewTerminal(hold int) *Terminal {
	return &Terminal{Hold: max(hold, 1), keys: make(map[string]int)}
}

var terminalKeys = map[tcell.Key]string{
	tcell.KeyUp:         "ArrowUp",
	tcell.KeyDown:       "ArrowDown",
	tcell.KeyLeft:       "ArrowLeft",
	tcell.KeyRight:      "ArrowRight",
	tcell.KeyEnter:      "Enter",
	tcell.KeyEscape:     "Escape",
	tcell.KeyTab:        "Tab",
	tcell.KeyBacktab:    "Tab",
	tcell.KeyBackspace:  "Backspace",
	tcell.KeyBackspace2: "Backspace",
	tcell.KeyDelete:     "Delete",
	tcell.KeyInsert:     "Insert",
	tcell.KeyHome:       "Home",
	tcell.KeyEnd:        "End",
	tcell.KeyPgUp:       "PageUp",
	tcell.KeyPgDn:       "PageDown",
	tcell.KeyF1:         "F1",
	tcell.KeyF2:         "F2",
	tcell.KeyF3:         "F3",
	tcell.KeyF4:         "F4",
	tcell.KeyF5:         "F5",
	tcell.KeyF6:         "F6",
	tcell.KeyF7:         "F7",
	tcell.KeyF8:         "F8",
	tcell.KeyF9:         "F9",
	tcell.KeyF10:        "F10",
	tcell.KeyF11:        "F11",
	tcell.KeyF12:        "F12",
}

var runeKeys = map[rune]string{
	' ':  "Space",
	'-':  "Minus",
	'=':  "Equal",
	',':  "Comma",
	'.':  "Period",
	'/':  "Slash",
	';':  "Semicolon",
	'\'': "Quote",
	'[':  "BracketLeft",
	']':  "BracketRight",
	'\\': "Backslash",
	'`':  "Backquote",
}

// KeyNames returns the key names ev presses: the key itself plus any
// modifier keys the terminal reported with it.
func KeyNames(ev *tcell.EventKey) []string {
	var names []string
	mods := ev.Modifiers()
	k := ev.Key()

	if name, ok := terminalKeys[k]; ok {
		names = append(names, name)
		if k == tcell.KeyBacktab {
			mods |= tcell.ModShift
		}
	} else if k == tcell.KeyRune {
		r := ev.Rune()
		switch {
		case r >= 'a' && r <= 'z':
			names = append(names, string(unicode.ToUpper(r)))
		case r >= 'A' && r <= 'Z':
			names = append(names, string(r))
			mods |= tcell.ModShift
		case r >= '0' && r <= '9':
			names = append(names, "Digit"+string(r))
		default:
			if name, ok := runeKeys[r]; ok {
				names = append(names, name)
			}
		}
	} else if k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
		names = append(names, string(rune('A'+(k-tcell.KeyCtrlA))))
		mods |= tcell.ModCtrl
	}
	if len(names) == 0 {
		return nil
	}

	if mods&tcell.ModShift != 0 {
		names = append(names, "ShiftLeft")
	}
	if mods&tcell.ModCtrl != 0 {
		names = append(names, "ControlLeft")
	}
	if mods&tcell.ModAlt != 0 {
		names = append(names, "AltLeft")
	}
	return names
}

// HandleEvent records ev and reports whether it was an input event.
func (t *Terminal) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		names := KeyNames(ev)
		for _, name := range names {
			t.keys[name] = t.Hold
		}
		return len(names) > 0
	case *tcell.EventMouse:
		x, y := ev.Position()
		if t.tracked {
			t.dx += float32(x - t.lastX)
			// Rows grow downward; deltas use up-is-positive.
			t.dy -= float32(y - t.lastY)
		}
		t.lastX, t.lastY, t.tracked = x, y, true

		b := ev.Buttons()
		if b&tcell.WheelUp != 0 {
			t.wheel++
		}
		if b&tcell.WheelDown != 0 {
			t.wheel--
		}
		t.buttons = b & (tcell.Button1 | tcell.Button2 | tcell.Button3)
		return true
	}
	return false
}

func (t *Terminal) Poll(sources []input.SourceID) map[input.SourceID]input.Sample {
	out := make(map[input.SourceID]input.Sample, len(sources))
	for _, id := range sources {
		src, err := ParseSource(id)
		if err != nil {
			continue
		}
		switch src.Device {
		case Keyboard:
			out[id] = input.Bool(t.keys[src.Name] > 0)
		case Mouse:
			if v, ok := t.mouse(src.Name); ok {
				out[id] = v
			}
		}
	}
	return out
}

func (t *Terminal) mouse(name string) (input.Sample, bool) {
	switch name {
	case "left":
		return input.Bool(t.buttons&tcell.Button1 != 0), true
	case "right":
		return input.Bool(t.buttons&tcell.Button2 != 0), true
	case "middle":
		return input.Bool(t.buttons&tcell.Button3 != 0), true
	case "delta":
		return input.Axis2D(t.dx, t.dy), true
	case "wheel":
		return input.Axis1D(t.wheel), true
	}
	return input.Sample{}, false
}

// Advance ends the frame: presses age by one frame and relative axes reset.
func (t *Terminal) Advance() {
	for name, n := range t.keys {
		if n <= 1 {
			delete(t.keys, name)
			continue
		}
		t.keys[name] = n - 1
	}
	t.dx, t.dy, t.wheel = 0, 0, 0
}
