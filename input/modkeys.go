package input

import (
	"fmt"
	"math/bits"
	"strings"
)

// ModKeys is a set of keyboard modifiers. A side-less flag such as
// ModControl is satisfied by either key of the pair.
type ModKeys uint8

const (
	ModControlLeft ModKeys = 1 << iota
	ModShiftLeft
	ModAltLeft
	ModSuperLeft
	ModControlRight
	ModShiftRight
	ModAltRight
	ModSuperRight

	ModControl = ModControlLeft | ModControlRight
	ModShift   = ModShiftLeft | ModShiftRight
	ModAlt     = ModAltLeft | ModAltRight
	ModSuper   = ModSuperLeft | ModSuperRight
)

type modGroup struct {
	name        string
	left, right ModKeys
	keys        [2]SourceID
}

var modGroups = [...]modGroup{
	{"control", ModControlLeft, ModControlRight, [2]SourceID{"key:ControlLeft", "key:ControlRight"}},
	{"shift", ModShiftLeft, ModShiftRight, [2]SourceID{"key:ShiftLeft", "key:ShiftRight"}},
	{"alt", ModAltLeft, ModAltRight, [2]SourceID{"key:AltLeft", "key:AltRight"}},
	{"super", ModSuperLeft, ModSuperRight, [2]SourceID{"key:MetaLeft", "key:MetaRight"}},
}

// Count is the number of modifiers required, counting a side-less pair once.
func (m ModKeys) Count() int {
	n := 0
	for _, g := range modGroups {
		if m&(g.left|g.right) != 0 {
			n++
		}
	}
	return n
}

// Sources lists the key sources the set reads.
func (m ModKeys) Sources() []SourceID {
	out := make([]SourceID, 0, bits.OnesCount8(uint8(m)))
	for _, g := range modGroups {
		if m&g.left != 0 {
			out = append(out, g.keys[0])
		}
		if m&g.right != 0 {
			out = append(out, g.keys[1])
		}
	}
	return out
}

// Held reports whether every required modifier is down in f.
func (m ModKeys) Held(f Frame) bool {
	down := func(s SourceID) bool {
		return f.Samples[s].Sanitize().Actuated(DefaultActuation)
	}
	for _, g := range modGroups {
		left, right := down(g.keys[0]), down(g.keys[1])
		switch m & (g.left | g.right) {
		case g.left | g.right:
			if !left && !right {
				return false
			}
		case g.left:
			if !left {
				return false
			}
		case g.right:
			if !right {
				return false
			}
		}
	}
	return true
}

func (m ModKeys) String() string {
	var parts []string
	for _, g := range modGroups {
		switch m & (g.left | g.right) {
		case g.left | g.right:
			parts = append(parts, g.name)
		case g.left:
			parts = append(parts, g.name+"_left")
		case g.right:
			parts = append(parts, g.name+"_right")
		}
	}
	return strings.Join(parts, "+")
}

// ParseModKeys accepts names such as "control", "shift_left" or "super_right".
func ParseModKeys(names ...string) (ModKeys, error) {
	var m ModKeys
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		found := false
	groups:
		for _, g := range modGroups {
			switch name {
			case g.name:
				m |= g.left | g.right
			case g.name + "_left":
				m |= g.left
			case g.name + "_right":
				m |= g.right
			default:
				continue
			}
			found = true
			break groups
		}
		if !found {
			return 0, fmt.Errorf("%w: modifier key %q", ErrInvalidParameter, raw)
		}
	}
	return m, nil
}
