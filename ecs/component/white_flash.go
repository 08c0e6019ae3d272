package component

// WhiteFlash blinks a box white every Interval frames for Frames frames.
type WhiteFlash struct {
	Frames   int
	Interval int
	Timer    int
	On       bool
}

var WhiteFlashComponent = NewComponent[WhiteFlash]()
