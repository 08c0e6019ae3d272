package system

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/actioninput/device"
	"github.com/milk9111/actioninput/ecs"
	"github.com/milk9111/actioninput/ecs/component"
	"github.com/milk9111/actioninput/input"
)

const frameDT = 1.0 / 60

func playerPipeline(t *testing.T) *input.Pipeline {
	t.Helper()
	b := input.NewBuilder().
		AddContext(input.Context{Name: "gameplay"}).
		AddAction("gameplay", input.Action{Key: ActionMove, Kind: input.KindAxis2D}).
		AddAction("gameplay", input.Action{Key: ActionJump, Conditions: []input.Condition{input.Pressed{}}}).
		AddAction("gameplay", input.Action{Key: ActionDash, Conditions: []input.Condition{input.Pressed{}}}).
		AddAction("gameplay", input.Action{Key: ActionCharge, Conditions: []input.Condition{input.Hold{Duration: 0.1}}})
	_, err := b.BindPreset(ActionMove, input.Bidirectional{Positive: "key:D", Negative: "key:A"})
	require.NoError(t, err)
	b.MustBind(ActionJump, input.Binding{Source: "key:Space"}).
		MustBind(ActionDash, input.Binding{Source: "key:ShiftLeft"}).
		MustBind(ActionCharge, input.Binding{Source: "key:J"})
	p, err := b.Build()
	require.NoError(t, err)
	return p
}

func TestInputSystemPublishesEvents(t *testing.T) {
	w := ecs.NewWorld()
	pad := device.Static{"key:Space": input.Bool(true)}

	player := ecs.CreateEntity(w)
	require.NoError(t, ecs.Add(w, player, component.ActionsComponent.Kind(), &component.Actions{Pipeline: playerPipeline(t)}))
	idle := ecs.CreateEntity(w)
	require.NoError(t, ecs.Add(w, idle, component.ActionsComponent.Kind(), &component.Actions{}))

	var frames []input.Frame
	sys := NewInputSystem(pad, frameDT)
	sys.OnFrame = func(e ecs.Entity, f input.Frame) {
		assert.Equal(t, player, e)
		frames = append(frames, f)
	}
	sys.Update(w)

	require.Len(t, frames, 1)
	assert.Equal(t, input.Bool(true), frames[0].Samples["key:Space"])

	events := w.Events().Items()
	require.Len(t, events, 2)
	for _, ev := range events {
		assert.Equal(t, player, ev.Entity)
		assert.Equal(t, ActionJump, ev.Action)
	}
	a, _ := ecs.Get(w, player, component.ActionsComponent.Kind())
	assert.True(t, a.Started(ActionJump))
	assert.True(t, a.Fired(ActionJump))
	assert.False(t, a.Fired(ActionDash))
}

func newMover(t *testing.T, w *ecs.World, p *input.Pipeline) (ecs.Entity, *cp.Body) {
	t.Helper()
	body := cp.NewBody(1, math.Inf(1))
	e := ecs.CreateEntity(w)
	require.NoError(t, ecs.Add(w, e, component.ActionsComponent.Kind(), &component.Actions{Pipeline: p}))
	require.NoError(t, ecs.Add(w, e, component.PlayerComponent.Kind(), &component.Player{
		MoveSpeed: 200, JumpSpeed: 400, DashSpeed: 600, Grounded: true,
	}))
	require.NoError(t, ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{Body: body}))
	return e, body
}

func TestMovementSystem(t *testing.T) {
	cases := []struct {
		name    string
		samples device.Static
		mock    string
		want    cp.Vector
		charged bool
	}{
		{name: "idle", want: cp.Vector{}},
		{name: "right", samples: device.Static{"key:D": input.Bool(true)}, want: cp.Vector{X: 200}},
		{name: "left", samples: device.Static{"key:A": input.Bool(true)}, want: cp.Vector{X: -200}},
		{name: "jump", samples: device.Static{"key:Space": input.Bool(true)}, want: cp.Vector{Y: -400}},
		{name: "dash_defaults_right", samples: device.Static{"key:ShiftLeft": input.Bool(true)}, want: cp.Vector{X: 600}},
		{name: "dash_follows_facing", samples: device.Static{"key:ShiftLeft": input.Bool(true), "key:A": input.Bool(true)}, want: cp.Vector{X: -600}},
		{name: "charge_then_jump", samples: device.Static{"key:Space": input.Bool(true)}, mock: ActionCharge, want: cp.Vector{Y: -600}},
		{name: "charge_kept", mock: ActionCharge, want: cp.Vector{}, charged: true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := ecs.NewWorld()
			p := playerPipeline(t)
			if c.mock != "" {
				require.NoError(t, p.Mock(c.mock, input.Mock{Outcome: input.OutcomeFired}))
			}
			e, body := newMover(t, w, p)

			s := ecs.NewScheduler(NewInputSystem(c.samples, frameDT), NewMovementSystem())
			s.Update(w)

			assert.Equal(t, c.want, body.Velocity())
			pl, _ := ecs.Get(w, e, component.PlayerComponent.Kind())
			assert.Equal(t, c.charged, pl.Charged)
		})
	}
}

func TestJumpNeedsGround(t *testing.T) {
	w := ecs.NewWorld()
	e, body := newMover(t, w, playerPipeline(t))
	pl, _ := ecs.Get(w, e, component.PlayerComponent.Kind())
	pl.Grounded = false

	ecs.NewScheduler(
		NewInputSystem(device.Static{"key:Space": input.Bool(true)}, frameDT),
		NewMovementSystem(),
	).Update(w)
	assert.Equal(t, cp.Vector{}, body.Velocity())
}

func TestPhysicsLandsAndMoves(t *testing.T) {
	w := ecs.NewWorld()
	floor := ecs.CreateEntity(w)
	require.NoError(t, ecs.Add(w, floor, component.TransformComponent.Kind(), &component.Transform{X: 0, Y: 100}))
	require.NoError(t, ecs.Add(w, floor, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{
		Width: 2000, Height: 20, Static: true, Friction: 0.5,
	}))

	held := device.Static{}
	player := ecs.CreateEntity(w)
	require.NoError(t, ecs.Add(w, player, component.TransformComponent.Kind(), &component.Transform{X: 0, Y: 70}))
	require.NoError(t, ecs.Add(w, player, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{
		Width: 20, Height: 20, Mass: 1, Friction: 0.5,
	}))
	require.NoError(t, ecs.Add(w, player, component.PlayerComponent.Kind(), &component.Player{MoveSpeed: 200, JumpSpeed: 500}))
	require.NoError(t, ecs.Add(w, player, component.ActionsComponent.Kind(), &component.Actions{Pipeline: playerPipeline(t)}))

	physics := NewPhysicsSystem(frameDT)
	s := ecs.NewScheduler(NewInputSystem(held, frameDT), NewMovementSystem(), physics)
	for i := 0; i < 60; i++ {
		s.Update(w)
	}

	pl, _ := ecs.Get(w, player, component.PlayerComponent.Kind())
	tr, _ := ecs.Get(w, player, component.TransformComponent.Kind())
	require.True(t, pl.Grounded)
	assert.InDelta(t, 80, tr.Y, 1)
	assert.InDelta(t, 0, tr.X, 0.01)

	held["key:D"] = input.Bool(true)
	for i := 0; i < 30; i++ {
		s.Update(w)
	}
	assert.Greater(t, tr.X, 20.0)

	held["key:D"] = input.Bool(false)
	held["key:Space"] = input.Bool(true)
	s.Update(w)
	pb, _ := ecs.Get(w, player, component.PhysicsBodyComponent.Kind())
	assert.Less(t, pb.Body.Velocity().Y, 0.0)

	physics.Remove(pb)
	assert.Nil(t, pb.Body)
}

func TestFeedbackSpawnsExpiringPopups(t *testing.T) {
	w := ecs.NewWorld()
	player := ecs.CreateEntity(w)
	require.NoError(t, ecs.Add(w, player, component.ActionsComponent.Kind(), &component.Actions{Pipeline: playerPipeline(t)}))
	require.NoError(t, ecs.Add(w, player, component.TransformComponent.Kind(), &component.Transform{X: 50, Y: 100}))
	require.NoError(t, ecs.Add(w, player, component.BoxComponent.Kind(), &component.Box{Width: 10, Height: 10}))

	pad := device.Static{"key:ShiftLeft": input.Bool(true), "key:Space": input.Bool(true)}
	ecs.NewScheduler(NewInputSystem(pad, frameDT), NewFeedbackSystem(ActionDash)).Update(w)

	var popups []ecs.Entity
	ecs.ForEach(w, component.LabelComponent.Kind(), func(e ecs.Entity, l *component.Label) {
		assert.Equal(t, ActionDash, l.Text)
		popups = append(popups, e)
	})
	require.Len(t, popups, 1)
	tr, ok := ecs.Get(w, popups[0], component.TransformComponent.Kind())
	require.True(t, ok)
	assert.Equal(t, component.Transform{X: 50, Y: 76}, *tr)
	assert.True(t, ecs.Has(w, player, component.WhiteFlashComponent.Kind()))

	fade := ecs.NewScheduler(NewLabelDriftSystem(), NewTTLSystem())
	for i := 0; i < popupFrames-1; i++ {
		fade.Update(w)
	}
	require.True(t, ecs.IsAlive(w, popups[0]))
	ttl, _ := ecs.Get(w, popups[0], component.TTLComponent.Kind())
	assert.InDelta(t, 1.0/popupFrames, ttl.Remaining(), 1e-6)
	assert.Less(t, tr.Y, 76.0)

	fade.Update(w)
	assert.False(t, ecs.IsAlive(w, popups[0]))
	assert.True(t, ecs.IsAlive(w, player))
}

func TestWhiteFlashBlinksThenClears(t *testing.T) {
	w := ecs.NewWorld()
	e := ecs.CreateEntity(w)
	require.NoError(t, ecs.Add(w, e, component.WhiteFlashComponent.Kind(), &component.WhiteFlash{Frames: 12, Interval: 3}))

	s := NewWhiteFlashSystem()
	var on []bool
	for i := 0; i < 12; i++ {
		s.Update(w)
		if wf, ok := ecs.Get(w, e, component.WhiteFlashComponent.Kind()); ok {
			on = append(on, wf.On)
		}
	}
	assert.Equal(t, []bool{false, false, true, true, true, false, false, false, true, true, true}, on)
	assert.False(t, ecs.Has(w, e, component.WhiteFlashComponent.Kind()))
}
