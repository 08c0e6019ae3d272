package main

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"

	"github.com/milk9111/actioninput/common"
	"github.com/milk9111/actioninput/ecs"
	"github.com/milk9111/actioninput/ecs/component"
	"github.com/milk9111/actioninput/input"
)

const lineHeight = 14

var stateColors = map[input.ActionState]color.RGBA{
	input.StateNone:      colornames.Gray,
	input.StateOngoing:   colornames.Gold,
	input.StateFired:     colornames.Limegreen,
	input.StateCompleted: colornames.Skyblue,
	input.StateCanceled:  colornames.Crimson,
}

// RenderSystem draws boxes and the action HUD.
type RenderSystem struct {
	face ebtext.Face
}

func NewRenderSystem() *RenderSystem {
	return &RenderSystem{face: ebtext.NewGoXFace(basicfont.Face7x13)}
}

func (r *RenderSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	screen.Fill(colornames.Midnightblue)
	ecs.ForEach2(w, component.BoxComponent.Kind(), component.TransformComponent.Kind(),
		func(e ecs.Entity, b *component.Box, t *component.Transform) {
			clr := b.Color
			if wf, ok := ecs.Get(w, e, component.WhiteFlashComponent.Kind()); ok && wf.On {
				clr = colornames.White
			}
			vector.DrawFilledRect(screen,
				float32(t.X-b.Width/2), float32(t.Y-b.Height/2),
				float32(b.Width), float32(b.Height),
				clr, false)
		})
	ecs.ForEach2(w, component.LabelComponent.Kind(), component.TransformComponent.Kind(),
		func(e ecs.Entity, l *component.Label, t *component.Transform) {
			clr := l.Color
			if ttl, ok := ecs.Get(w, e, component.TTLComponent.Kind()); ok {
				clr = fade(clr, ttl.Remaining())
			}
			r.text(screen, t.X-float64(len(l.Text))*3.5, t.Y, clr, l.Text)
		})
}

func (r *RenderSystem) text(screen *ebiten.Image, x, y float64, clr color.Color, s string) {
	op := &ebtext.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	ebtext.Draw(screen, s, r.face, op)
}

// DrawHUD lists every action with its state, value and elapsed time.
func (r *RenderSystem) DrawHUD(screen *ebiten.Image, a *component.Actions, status string, showStatus bool) {
	r.text(screen, 30, 10, colornames.White, fmt.Sprintf("FPS %.0f", ebiten.ActualFPS()))
	if a == nil || a.Pipeline == nil {
		return
	}
	y := 10.0 + lineHeight
	for _, st := range a.Pipeline.Actions() {
		if !st.ContextActive {
			continue
		}
		line := fmt.Sprintf("%-9s %-11s %-9s %s %.2fs", st.Context, st.Key, st.State, st.Value, st.Time.Elapsed)
		r.text(screen, 30, y, stateColors[st.State], line)
		y += lineHeight
	}
	if showStatus {
		r.text(screen, 30, screenHeight-60, colornames.Yellow, status)
	}
}

// fade scales a premultiplied color toward transparent.
func fade(c color.RGBA, f float32) color.RGBA {
	scale := func(v uint8) uint8 { return uint8(common.Lerp(0, float32(v), f)) }
	return color.RGBA{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: scale(c.A)}
}
