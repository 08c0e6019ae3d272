package system

import (
	"math"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/actioninput/ecs"
	"github.com/milk9111/actioninput/ecs/component"
)

const Gravity = 1400.0

// PhysicsSystem owns a Chipmunk space. It creates bodies for new
// PhysicsBody components, steps the space and copies positions back into
// transforms.
type PhysicsSystem struct {
	space *cp.Space
	dt    float64
}

func NewPhysicsSystem(dt float64) *PhysicsSystem {
	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(cp.Vector{X: 0, Y: Gravity})
	return &PhysicsSystem{space: space, dt: dt}
}

func (ps *PhysicsSystem) Space() *cp.Space {
	if ps == nil {
		return nil
	}
	return ps.space
}

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}
	ps.syncEntities(w)
	ps.space.Step(ps.dt)
	ps.syncTransforms(w)
	ps.updateGrounded(w)
}

func (ps *PhysicsSystem) syncEntities(w *ecs.World) {
	ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind(),
		func(_ ecs.Entity, pb *component.PhysicsBody, t *component.Transform) {
			if pb.Shape != nil {
				return
			}
			ps.createBody(pb, t)
		})
}

func (ps *PhysicsSystem) createBody(pb *component.PhysicsBody, t *component.Transform) {
	if pb.Static {
		bb := cp.BB{
			L: t.X - pb.Width/2,
			B: t.Y - pb.Height/2,
			R: t.X + pb.Width/2,
			T: t.Y + pb.Height/2,
		}
		shape := cp.NewBox2(ps.space.StaticBody, bb, 0)
		shape.SetFriction(pb.Friction)
		ps.space.AddShape(shape)
		pb.Body = ps.space.StaticBody
		pb.Shape = shape
		return
	}

	mass := pb.Mass
	if mass <= 0 {
		mass = 1
	}
	// Infinite moment keeps the box upright.
	body := cp.NewBody(mass, math.Inf(1))
	body.SetPosition(cp.Vector{X: t.X, Y: t.Y})
	shape := cp.NewBox(body, pb.Width, pb.Height, 0)
	shape.SetFriction(pb.Friction)
	ps.space.AddBody(body)
	ps.space.AddShape(shape)
	pb.Body = body
	pb.Shape = shape
}

func (ps *PhysicsSystem) syncTransforms(w *ecs.World) {
	ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind(),
		func(_ ecs.Entity, pb *component.PhysicsBody, t *component.Transform) {
			if pb.Static || pb.Body == nil {
				return
			}
			pos := pb.Body.Position()
			t.X, t.Y = pos.X, pos.Y
			t.Rotation = pb.Body.Angle()
		})
}

func (ps *PhysicsSystem) updateGrounded(w *ecs.World) {
	ecs.ForEach2(w, component.PlayerComponent.Kind(), component.PhysicsBodyComponent.Kind(),
		func(_ ecs.Entity, p *component.Player, pb *component.PhysicsBody) {
			p.Grounded = false
			if pb.Body == nil {
				return
			}
			pb.Body.EachArbiter(func(arb *cp.Arbiter) {
				n := arb.Normal()
				if a, _ := arb.Bodies(); a != pb.Body {
					n = n.Neg()
				}
				// The normal points from the player into what it touches;
				// downward means standing on it.
				if n.Y > 0.5 {
					p.Grounded = true
				}
			})
		})
}

// Remove detaches pb's body and shape from the space.
func (ps *PhysicsSystem) Remove(pb *component.PhysicsBody) {
	if ps == nil || pb == nil || pb.Shape == nil {
		return
	}
	ps.space.RemoveShape(pb.Shape)
	if !pb.Static && pb.Body != nil {
		ps.space.RemoveBody(pb.Body)
	}
	pb.Body, pb.Shape = nil, nil
}
