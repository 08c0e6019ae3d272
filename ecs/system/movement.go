package system

import (
	"github.com/milk9111/actioninput/ecs"
	"github.com/milk9111/actioninput/ecs/component"
)

// Action names the movement system reads from a player's pipeline.
const (
	ActionMove   = "Move"
	ActionJump   = "Jump"
	ActionDash   = "Dash"
	ActionCharge = "Charge"
	// ActionFlurry is only shown as feedback.
	ActionFlurry = "Flurry"
)

const chargedJumpScale = 1.5

// MovementSystem turns action values and events into body velocity.
type MovementSystem struct{}

func NewMovementSystem() *MovementSystem { return &MovementSystem{} }

func (m *MovementSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	ecs.ForEach3(w,
		component.ActionsComponent.Kind(),
		component.PlayerComponent.Kind(),
		component.PhysicsBodyComponent.Kind(),
		func(_ ecs.Entity, a *component.Actions, p *component.Player, pb *component.PhysicsBody) {
			if pb.Body == nil {
				return
			}
			vel := pb.Body.Velocity()

			move := a.Value(ActionMove)
			vel.X = float64(move.X) * p.MoveSpeed
			if move.X > 0 {
				p.Facing = 1
			} else if move.X < 0 {
				p.Facing = -1
			}

			if a.Fired(ActionCharge) {
				p.Charged = true
			}
			if a.Started(ActionJump) && p.Grounded {
				jump := p.JumpSpeed
				if p.Charged {
					jump *= chargedJumpScale
					p.Charged = false
				}
				// Screen coordinates: up is negative Y.
				vel.Y = -jump
				p.Grounded = false
			}
			if a.Fired(ActionDash) {
				facing := p.Facing
				if facing == 0 {
					facing = 1
				}
				vel.X = facing * p.DashSpeed
			}
			pb.Body.SetVelocityVector(vel)
		})
}
