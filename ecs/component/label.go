package component

import "image/color"

// Label is floating text drawn at the entity's transform, drifting by VY
// pixels per frame.
type Label struct {
	Text  string
	Color color.RGBA
	VY    float64
}

var LabelComponent = NewComponent[Label]()
