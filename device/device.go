// Package device turns platform input into the raw samples a pipeline reads.
//
// Source ids have the form "<device>:<name>": key:W, mouse:left,
// mouse:delta, pad:left_x, pad:south. Key names follow ebiten's key names
// (Space, ArrowUp, ShiftLeft, Numpad8, A..Z, Digit0..Digit9).
package device

import (
	"errors"
	"fmt"
	"strings"

	"github.com/milk9111/actioninput/input"
)

// Device reports the current raw sample for each requested source. Sources
// it does not know are left out.
type Device interface {
	Poll(sources []input.SourceID) map[input.SourceID]input.Sample
}

// Frame polls d for sources and wraps the result with dt.
func Frame(d Device, sources []input.SourceID, dt float32) input.Frame {
	f := input.Frame{DT: dt}
	if d != nil {
		f.Samples = d.Poll(sources)
	}
	return f
}

const (
	Keyboard = "key"
	Mouse    = "mouse"
	Gamepad  = "pad"
)

var ErrBadSource = errors.New("device: bad source id")

// Source is a parsed source id.
type Source struct {
	Device string
	Name   string
}

func (s Source) ID() input.SourceID {
	return input.SourceID(s.Device + ":" + s.Name)
}

func ParseSource(id input.SourceID) (Source, error) {
	dev, name, ok := strings.Cut(string(id), ":")
	if !ok || dev == "" || name == "" {
		return Source{}, fmt.Errorf("%w: %q", ErrBadSource, id)
	}
	switch dev {
	case Keyboard, Mouse, Gamepad:
	default:
		return Source{}, fmt.Errorf("%w: unknown device %q in %q", ErrBadSource, dev, id)
	}
	return Source{Device: dev, Name: name}, nil
}

// Static returns fixed samples; hosts use it for scripted input and tests.
type Static map[input.SourceID]input.Sample

func (s Static) Poll(sources []input.SourceID) map[input.SourceID]input.Sample {
	out := make(map[input.SourceID]input.Sample, len(sources))
	for _, id := range sources {
		if v, ok := s[id]; ok {
			out[id] = v
		}
	}
	return out
}

// Merge polls each device in order; later devices fill only the sources
// earlier ones left out.
type Merge []Device

func (m Merge) Poll(sources []input.SourceID) map[input.SourceID]input.Sample {
	out := make(map[input.SourceID]input.Sample, len(sources))
	for _, d := range m {
		for id, v := range d.Poll(sources) {
			if _, ok := out[id]; !ok {
				out[id] = v
			}
		}
	}
	return out
}
