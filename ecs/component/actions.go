package component

import "github.com/milk9111/actioninput/input"

// Actions attaches an input pipeline to an entity. The input system ticks it
// once per frame and stores that tick's events here for other systems.
type Actions struct {
	Profile  string
	Pipeline *input.Pipeline
	Events   []input.Event
}

// Fired reports whether action emitted a Fired event this frame.
func (a *Actions) Fired(action string) bool {
	return a.has(action, input.EventFired)
}

// Started reports whether action emitted a Started event this frame.
func (a *Actions) Started(action string) bool {
	return a.has(action, input.EventStarted)
}

func (a *Actions) has(action string, kind input.EventKind) bool {
	if a == nil {
		return false
	}
	for _, e := range a.Events {
		if e.Action == action && e.Kind == kind {
			return true
		}
	}
	return false
}

// Value returns the action's current value, zero when unknown.
func (a *Actions) Value(action string) input.Sample {
	if a == nil || a.Pipeline == nil {
		return input.Sample{}
	}
	v, _ := a.Pipeline.Value(action)
	return v
}

var ActionsComponent = NewComponent[Actions]()
