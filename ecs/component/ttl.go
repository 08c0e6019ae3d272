package component

import "github.com/milk9111/actioninput/common"

// TTL destroys its entity after Frames update ticks. Total is the starting
// value, kept so renderers can fade by remaining life.
type TTL struct {
	Frames int
	Total  int
}

// Remaining is the fraction of life left, in [0, 1].
func (t TTL) Remaining() float32 {
	if t.Total <= 0 {
		return 0
	}
	return common.Clamp(float32(t.Frames)/float32(t.Total), 0, 1)
}

var TTLComponent = NewComponent[TTL]()
