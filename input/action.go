package input

import "fmt"

// BindingID identifies a binding for its whole lifetime; ids are never reused
// within one pipeline.
type BindingID int

// Binding links one raw source to one action.
type Binding struct {
	Source     SourceID
	Modifiers  []Modifier
	Conditions []Condition
	// Passthrough bindings never consume their source.
	Passthrough bool
	// ModKeys must all be held for the binding to read its source.
	ModKeys ModKeys
}

// Aggregation combines the transformed samples of an action's bindings.
type Aggregation uint8

const (
	// Sum adds samples component-wise.
	Sum Aggregation = iota
	// MaxMagnitude keeps the sample with the largest norm.
	MaxMagnitude
	// FirstNonzero keeps the first non-zero sample in declaration order.
	FirstNonzero
)

func (a Aggregation) String() string {
	switch a {
	case Sum:
		return "sum"
	case MaxMagnitude:
		return "max_magnitude"
	case FirstNonzero:
		return "first_nonzero"
	}
	return fmt.Sprintf("aggregation(%d)", uint8(a))
}

// ParseAggregation accepts the names produced by Aggregation.String.
func ParseAggregation(s string) (Aggregation, error) {
	switch s {
	case "sum", "":
		return Sum, nil
	case "max_magnitude", "max":
		return MaxMagnitude, nil
	case "first_nonzero", "first":
		return FirstNonzero, nil
	}
	return Sum, fmt.Errorf("input: unknown aggregation %q", s)
}

type aggregator struct {
	policy  Aggregation
	value   Sample
	found   bool
	bestMag float32
}

func newAggregator(policy Aggregation, kind Kind) aggregator {
	return aggregator{policy: policy, value: Zero(kind)}
}

func (g *aggregator) add(v Sample) {
	switch g.policy {
	case MaxMagnitude:
		if m := v.Magnitude(); !g.found || m > g.bestMag {
			g.value, g.bestMag, g.found = v, m, true
		}
	case FirstNonzero:
		if !g.found && !v.IsZero() {
			g.value, g.found = v, true
		}
	default:
		g.value = g.value.Add(v)
	}
}

// Action declares a semantic action.
type Action struct {
	Key         string
	Kind        Kind
	Aggregation Aggregation
	// Modifiers and Conditions run on the aggregated value, after every
	// binding-level chain.
	Modifiers  []Modifier
	Conditions []Condition
	// SuppressRepeats drops Ongoing→Ongoing and Fired→Fired events.
	SuppressRepeats bool
	// RequireReset ignores each binding until it reads zero after build,
	// rebind or context activation.
	RequireReset bool
}

// Context groups actions under one priority.
type Context struct {
	Name     string
	Priority int
	// Passthrough contexts never consume input.
	Passthrough bool
	// Inactive contexts start deactivated.
	Inactive bool
}

// Mock drives an action from a fixed outcome and value instead of its
// bindings. Manual mocks last until Unmock; otherwise Ticks, then Duration,
// is consumed, defaulting to a single tick.
type Mock struct {
	Outcome  Outcome
	Value    Sample
	Ticks    int
	Duration float32
	Manual   bool
}

// advance consumes one tick and reports whether the mock has expired.
func (m *Mock) advance(dt float32) bool {
	switch {
	case m.Manual:
		return false
	case m.Ticks > 0:
		m.Ticks--
		return m.Ticks == 0
	case m.Duration > 0:
		m.Duration -= dt
		return m.Duration <= 0
	}
	return true
}

// BindingStatus is a read-only view of one binding.
type BindingStatus struct {
	ID            BindingID
	Action        string
	Source        SourceID
	ModKeys       ModKeys
	Value         Sample
	Outcome       Outcome
	Shadowed      bool
	AwaitingReset bool
}

// ActionStatus is a read-only view of one action between ticks.
type ActionStatus struct {
	Context       string
	ContextActive bool
	Key           string
	State         ActionState
	Value         Sample
	Time          ActionTime
	Consumed      bool
	Mocked        bool
}
