package system

import (
	"image/color"

	"github.com/milk9111/actioninput/ecs"
	"github.com/milk9111/actioninput/ecs/component"
	"github.com/milk9111/actioninput/input"
)

const (
	popupFrames = 45
	popupRise   = -0.8
	flashFrames = 12
)

var popupColor = color.RGBA{R: 0xff, G: 0xe0, B: 0x80, A: 0xff}

// FeedbackSystem spawns a short-lived label over the entity for every Fired
// event of the watched actions, and flashes the entity's box on Dash.
type FeedbackSystem struct {
	watch map[string]bool
}

// NewFeedbackSystem watches the given actions; none means all of them.
func NewFeedbackSystem(actions ...string) *FeedbackSystem {
	s := &FeedbackSystem{}
	if len(actions) > 0 {
		s.watch = make(map[string]bool, len(actions))
		for _, a := range actions {
			s.watch[a] = true
		}
	}
	return s
}

func (s *FeedbackSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	for _, ev := range w.Events().Items() {
		if ev.Kind != input.EventFired || (s.watch != nil && !s.watch[ev.Action]) {
			continue
		}
		if ev.Action == ActionDash && ecs.Has(w, ev.Entity, component.BoxComponent.Kind()) {
			_ = ecs.Add(w, ev.Entity, component.WhiteFlashComponent.Kind(), &component.WhiteFlash{Frames: flashFrames, Interval: 3})
		}

		t, ok := ecs.Get(w, ev.Entity, component.TransformComponent.Kind())
		if !ok {
			continue
		}
		s.popup(w, ev.Action, t.X, t.Y-24)
	}
}

func (s *FeedbackSystem) popup(w *ecs.World, text string, x, y float64) {
	e := ecs.CreateEntity(w)
	_ = ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{X: x, Y: y})
	_ = ecs.Add(w, e, component.LabelComponent.Kind(), &component.Label{Text: text, Color: popupColor, VY: popupRise})
	_ = ecs.Add(w, e, component.TTLComponent.Kind(), &component.TTL{Frames: popupFrames, Total: popupFrames})
}

// LabelDriftSystem moves labels by their per-frame drift.
type LabelDriftSystem struct{}

func NewLabelDriftSystem() *LabelDriftSystem { return &LabelDriftSystem{} }

func (s *LabelDriftSystem) Update(w *ecs.World) {
	ecs.ForEach2(w, component.LabelComponent.Kind(), component.TransformComponent.Kind(),
		func(_ ecs.Entity, l *component.Label, t *component.Transform) {
			t.Y += l.VY
		})
}
