package component

import "image/color"

// Box is drawn as a filled rectangle centred on the entity transform.
type Box struct {
	Width  float64
	Height float64
	Color  color.RGBA
}

var BoxComponent = NewComponent[Box]()
