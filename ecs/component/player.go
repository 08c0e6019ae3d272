package component

// Player tunes how action values turn into body velocity.
type Player struct {
	MoveSpeed float64
	JumpSpeed float64
	DashSpeed float64
	// Grounded is refreshed by the movement system from contact normals.
	Grounded bool
	Facing   float64
	Charged  bool
}

var PlayerComponent = NewComponent[Player]()
