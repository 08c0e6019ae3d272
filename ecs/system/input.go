package system

import (
	"github.com/milk9111/actioninput/device"
	"github.com/milk9111/actioninput/ecs"
	"github.com/milk9111/actioninput/ecs/component"
	"github.com/milk9111/actioninput/input"
)

// InputSystem ticks every attached pipeline once per frame and publishes the
// resulting events on the world queue.
type InputSystem struct {
	device device.Device
	dt     float32
	// OnFrame sees every frame fed to a pipeline, e.g. for trace recording.
	OnFrame func(ecs.Entity, input.Frame)
}

func NewInputSystem(d device.Device, dt float32) *InputSystem {
	return &InputSystem{device: d, dt: dt}
}

func (s *InputSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	ecs.ForEach(w, component.ActionsComponent.Kind(), func(e ecs.Entity, a *component.Actions) {
		a.Events = nil
		if a.Pipeline == nil {
			return
		}
		f := device.Frame(s.device, a.Pipeline.Sources(), s.dt)
		if s.OnFrame != nil {
			s.OnFrame(e, f)
		}
		a.Events = a.Pipeline.Tick(f)
		for _, ev := range a.Events {
			w.Events().Push(ecs.ActionEvent{Entity: e, Event: ev})
		}
	})
}
