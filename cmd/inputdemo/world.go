package main

import (
	"github.com/jakecoffman/cp"
	"golang.org/x/image/colornames"

	"github.com/milk9111/actioninput/ecs"
	"github.com/milk9111/actioninput/ecs/component"
	"github.com/milk9111/actioninput/input"
)

var spawnPoint = cp.Vector{X: screenWidth / 2, Y: screenHeight / 2}

type platform struct {
	x, y, w, h float64
}

var platforms = []platform{
	{x: screenWidth / 2, y: screenHeight - 20, w: screenWidth, h: 40},
	{x: 200, y: screenHeight - 150, w: 220, h: 20},
	{x: screenWidth - 200, y: screenHeight - 230, w: 220, h: 20},
	{x: screenWidth / 2, y: screenHeight - 320, w: 160, h: 20},
	{x: 10, y: screenHeight / 2, w: 20, h: screenHeight},
	{x: screenWidth - 10, y: screenHeight / 2, w: 20, h: screenHeight},
}

// spawnLevel adds the static platforms and the player, returning the player.
func spawnLevel(w *ecs.World, p *input.Pipeline) (ecs.Entity, error) {
	for _, pl := range platforms {
		e := ecs.CreateEntity(w)
		if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{X: pl.x, Y: pl.y}); err != nil {
			return 0, err
		}
		if err := ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{
			Width: pl.w, Height: pl.h, Friction: 0.8, Static: true,
		}); err != nil {
			return 0, err
		}
		if err := ecs.Add(w, e, component.BoxComponent.Kind(), &component.Box{Width: pl.w, Height: pl.h, Color: colornames.Slategray}); err != nil {
			return 0, err
		}
	}

	player := ecs.CreateEntity(w)
	adds := []func() error{
		func() error {
			return ecs.Add(w, player, component.TransformComponent.Kind(), &component.Transform{X: spawnPoint.X, Y: spawnPoint.Y})
		},
		func() error {
			return ecs.Add(w, player, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{Width: 28, Height: 28, Mass: 1, Friction: 0.8})
		},
		func() error {
			return ecs.Add(w, player, component.PlayerComponent.Kind(), &component.Player{MoveSpeed: 260, JumpSpeed: 620, DashSpeed: 900, Facing: 1})
		},
		func() error {
			return ecs.Add(w, player, component.BoxComponent.Kind(), &component.Box{Width: 28, Height: 28, Color: colornames.Tomato})
		},
		func() error {
			return ecs.Add(w, player, component.ActionsComponent.Kind(), &component.Actions{Pipeline: p})
		},
	}
	for _, add := range adds {
		if err := add(); err != nil {
			return 0, err
		}
	}
	return player, nil
}
