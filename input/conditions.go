package input

import "math"

// RepeatPolicy decides what happens to an accumulator after a periodic fire.
type RepeatPolicy uint8

const (
	// RepeatReset restarts the accumulator from zero.
	RepeatReset RepeatPolicy = iota
	// RepeatCarry keeps the remainder modulo the period.
	RepeatCarry
)

func (p RepeatPolicy) rewind(elapsed, period float32) float32 {
	if p == RepeatCarry && period > 0 {
		return float32(math.Mod(float64(elapsed), float64(period)))
	}
	return 0
}

func nonNegative(f float32) float32 {
	if !finite(f) || f < 0 {
		return 0
	}
	return f
}

// Pressed fires on the tick the value crosses the threshold. While held it
// reports Ongoing if Continuous, otherwise None.
type Pressed struct {
	Threshold  float32
	Continuous bool
}

func (p Pressed) Evaluate(mem *Scratch, _ *Eval, in Sample) Outcome {
	was := mem.Latched
	now := in.Actuated(threshold(p.Threshold))
	mem.Latched = now
	switch {
	case now && !was:
		return OutcomeFired
	case now && p.Continuous:
		return OutcomeOngoing
	}
	return OutcomeNone
}

// Released is Ongoing while actuated and fires on the tick the value drops.
type Released struct {
	Threshold float32
}

func (r Released) Evaluate(mem *Scratch, _ *Eval, in Sample) Outcome {
	was := mem.Latched
	now := in.Actuated(threshold(r.Threshold))
	mem.Latched = now
	switch {
	case now:
		return OutcomeOngoing
	case was:
		return OutcomeFired
	}
	return OutcomeNone
}

// Down fires every tick the value is actuated.
type Down struct {
	Threshold float32
}

func (d Down) Evaluate(_ *Scratch, _ *Eval, in Sample) Outcome {
	if in.Actuated(threshold(d.Threshold)) {
		return OutcomeFired
	}
	return OutcomeNone
}

// Toggle flips on every press and fires while toggled on.
type Toggle struct {
	Threshold float32
}

func (t Toggle) Evaluate(mem *Scratch, _ *Eval, in Sample) Outcome {
	was := mem.Latched
	now := in.Actuated(threshold(t.Threshold))
	mem.Latched = now
	if now && !was {
		mem.Primed = !mem.Primed
	}
	if mem.Primed {
		return OutcomeFired
	}
	return OutcomeNone
}

// Hold fires once the value has been held for longer than Duration seconds.
// With Repeat it fires again each time the accumulator exceeds Interval
// (Duration when zero). Releasing before the first fire interrupts.
type Hold struct {
	Duration  float32
	Threshold float32
	Repeat    bool
	Interval  float32
	Policy    RepeatPolicy
}

func (h Hold) Evaluate(mem *Scratch, ev *Eval, in Sample) Outcome {
	if !in.Actuated(threshold(h.Threshold)) {
		early := mem.Primed && !mem.Latched
		*mem = Scratch{}
		if early {
			ev.Interrupt()
		}
		return OutcomeNone
	}

	mem.Primed = true
	mem.Elapsed += ev.DT
	duration := nonNegative(h.Duration)
	if !mem.Latched {
		if mem.Elapsed > duration {
			mem.Latched = true
			mem.Count++
			mem.Elapsed = h.Policy.rewind(mem.Elapsed, duration)
			return OutcomeFired
		}
		return OutcomeOngoing
	}
	if !h.Repeat {
		return OutcomeOngoing
	}

	interval := nonNegative(h.Interval)
	if interval == 0 {
		interval = duration
	}
	if mem.Elapsed > interval {
		mem.Count++
		mem.Elapsed = h.Policy.rewind(mem.Elapsed, interval)
		return OutcomeFired
	}
	return OutcomeOngoing
}

// Tap fires if the value is released within MaxDuration seconds. Holding it
// longer interrupts the activation once and reports None until released.
type Tap struct {
	MaxDuration float32
	Threshold   float32
}

func (t Tap) Evaluate(mem *Scratch, ev *Eval, in Sample) Outcome {
	if in.Actuated(threshold(t.Threshold)) {
		mem.Primed = true
		mem.Elapsed += ev.DT
		if mem.Elapsed > nonNegative(t.MaxDuration) {
			if !mem.Latched {
				mem.Latched = true
				ev.Interrupt()
			}
			return OutcomeNone
		}
		return OutcomeOngoing
	}
	tapped := mem.Primed && !mem.Latched
	*mem = Scratch{}
	if tapped {
		return OutcomeFired
	}
	return OutcomeNone
}

// HoldAndRelease fires on release if the value was held for longer than
// Duration seconds; an earlier release interrupts.
type HoldAndRelease struct {
	Duration  float32
	Threshold float32
}

func (h HoldAndRelease) Evaluate(mem *Scratch, ev *Eval, in Sample) Outcome {
	if in.Actuated(threshold(h.Threshold)) {
		mem.Primed = true
		mem.Elapsed += ev.DT
		return OutcomeOngoing
	}
	if !mem.Primed {
		return OutcomeNone
	}
	held := mem.Elapsed
	*mem = Scratch{}
	if held > nonNegative(h.Duration) {
		return OutcomeFired
	}
	ev.Interrupt()
	return OutcomeNone
}

// Pulse fires when actuated (unless DelayFirst) and then every Interval
// seconds while held. InitialDelay, when set, replaces the first wait, like
// keyboard auto-repeat. Limit caps the fires per activation; zero means
// unlimited.
type Pulse struct {
	Interval     float32
	Threshold    float32
	InitialDelay float32
	DelayFirst   bool
	Limit        int
	Policy       RepeatPolicy
}

func (p Pulse) period(fires int) float32 {
	first := fires == 1
	if p.DelayFirst {
		first = fires == 0
	}
	if first && finite(p.InitialDelay) && p.InitialDelay > 0 {
		return p.InitialDelay
	}
	return nonNegative(p.Interval)
}

func (p Pulse) Evaluate(mem *Scratch, ev *Eval, in Sample) Outcome {
	if !in.Actuated(threshold(p.Threshold)) {
		*mem = Scratch{}
		return OutcomeNone
	}

	fire := false
	if !mem.Primed {
		mem.Primed = true
		fire = !p.DelayFirst
	} else {
		mem.Elapsed += ev.DT
		period := p.period(mem.Count)
		if mem.Elapsed >= period {
			fire = true
			mem.Elapsed = p.Policy.rewind(mem.Elapsed, period)
		}
	}

	if p.Limit > 0 && mem.Count >= p.Limit {
		return OutcomeNone
	}
	if fire {
		mem.Count++
		return OutcomeFired
	}
	return OutcomeOngoing
}

// ChordRequirement names an action and the minimum state it must hold.
// StateFired requires Fired; Completed and Canceled match exactly; any other
// value means "active" (Ongoing or Fired).
type ChordRequirement struct {
	Action string
	State  ActionState
}

func (r ChordRequirement) satisfied(st ActionState) bool {
	switch r.State {
	case StateFired:
		return st == StateFired
	case StateCompleted, StateCanceled:
		return st == r.State
	}
	return st == StateOngoing || st == StateFired
}

// Chord fires only while every required action satisfies its requirement,
// judged on previous-tick states. Otherwise it reports the strongest
// dependent state capped at Ongoing.
type Chord struct {
	Requires []ChordRequirement
}

// ChordOf requires each named action to be active.
func ChordOf(actions ...string) Chord {
	c := Chord{Requires: make([]ChordRequirement, 0, len(actions))}
	for _, a := range actions {
		c.Requires = append(c.Requires, ChordRequirement{Action: a, State: StateOngoing})
	}
	return c
}

func (Chord) Kind() ConditionKind { return Implicit }

// Dependencies lists the actions the chord reads.
func (c Chord) Dependencies() []string {
	out := make([]string, 0, len(c.Requires))
	for _, r := range c.Requires {
		out = append(out, r.Action)
	}
	return out
}

func (c Chord) Evaluate(_ *Scratch, ev *Eval, _ Sample) Outcome {
	all := true
	strongest := OutcomeNone
	for _, r := range c.Requires {
		st, ok := ev.Previous(r.Action)
		if !ok {
			all = false
			continue
		}
		switch st {
		case StateOngoing:
			strongest = maxOutcome(strongest, OutcomeOngoing)
		case StateFired:
			strongest = maxOutcome(strongest, OutcomeFired)
		}
		if !r.satisfied(st) {
			all = false
		}
	}
	if all {
		return OutcomeFired
	}
	if strongest > OutcomeOngoing {
		return OutcomeOngoing
	}
	return strongest
}

// Cooldown allows activation only after Duration seconds have passed since
// the previous activation ended.
type Cooldown struct {
	Duration  float32
	Threshold float32
}

func (Cooldown) Kind() ConditionKind { return Implicit }

func (c Cooldown) Evaluate(mem *Scratch, ev *Eval, in Sample) Outcome {
	if mem.Elapsed > 0 {
		mem.Elapsed = max(0, mem.Elapsed-ev.DT)
	}
	if !in.Actuated(threshold(c.Threshold)) {
		// Primed marks an activation that actually passed the gate.
		if mem.Primed {
			mem.Elapsed = nonNegative(c.Duration)
			mem.Primed = false
		}
		return OutcomeNone
	}
	if mem.Primed || mem.Elapsed <= 0 {
		mem.Primed = true
		return OutcomeFired
	}
	return OutcomeNone
}

// BlockBy vetoes the result while any listed action was active last tick.
type BlockBy struct {
	Actions []string
}

func (BlockBy) Kind() ConditionKind { return Blocker }

// References lists the actions the blocker reads.
func (b BlockBy) References() []string { return append([]string(nil), b.Actions...) }

func (b BlockBy) Evaluate(_ *Scratch, ev *Eval, _ Sample) Outcome {
	for _, a := range b.Actions {
		if st, ok := ev.Previous(a); ok && (st == StateOngoing || st == StateFired) {
			return OutcomeNone
		}
	}
	return OutcomeFired
}

// DefaultComboTimeout bounds each combo step after the first when the step
// leaves Timeout at zero.
const DefaultComboTimeout float32 = 0.5

// ComboStep is satisfied when Action emitted every event in Events on the
// previous tick. Zero Events means Completed.
type ComboStep struct {
	Action  string
	Events  EventSet
	Timeout float32
}

func (s ComboStep) events() EventSet {
	if s.Events == 0 {
		return EventsOf(EventCompleted)
	}
	return s.Events
}

func (s ComboStep) timeout() float32 {
	if !finite(s.Timeout) || s.Timeout <= 0 {
		return DefaultComboTimeout
	}
	return s.Timeout
}

// ComboCancel restarts a combo when Action emits any of Events. Zero Events
// means Ongoing or Fired.
type ComboCancel struct {
	Action string
	Events EventSet
}

func (c ComboCancel) events() EventSet {
	if c.Events == 0 {
		return EventsOf(EventOngoing, EventFired)
	}
	return c.Events
}

// Combo fires once its steps were satisfied in order, each within its
// timeout of the previous one. A step seen out of order or a cancel action
// restarts it. Between the first and last step it reports Ongoing.
type Combo struct {
	Steps  []ComboStep
	Cancel []ComboCancel
}

// ComboOf builds a combo whose steps complete the named actions in order.
func ComboOf(actions ...string) Combo {
	c := Combo{Steps: make([]ComboStep, 0, len(actions))}
	for _, a := range actions {
		c.Steps = append(c.Steps, ComboStep{Action: a})
	}
	return c
}

func (Combo) Kind() ConditionKind { return Implicit }

// References lists every step and cancel action.
func (c Combo) References() []string {
	out := make([]string, 0, len(c.Steps)+len(c.Cancel))
	for _, s := range c.Steps {
		out = append(out, s.Action)
	}
	for _, x := range c.Cancel {
		out = append(out, x.Action)
	}
	return out
}

// mem.Count is the index of the step awaited, mem.Elapsed the time spent on it.
func (c Combo) Evaluate(mem *Scratch, ev *Eval, _ Sample) Outcome {
	if len(c.Steps) == 0 {
		return OutcomeNone
	}
	if mem.Count < 0 || mem.Count >= len(c.Steps) {
		*mem = Scratch{}
	}
	if c.broken(mem.Count, ev) {
		// The first step may still land this tick.
		*mem = Scratch{}
	}
	if mem.Count > 0 {
		mem.Elapsed += ev.DT
		if mem.Elapsed >= c.Steps[mem.Count].timeout() {
			*mem = Scratch{}
		}
	}

	step := c.Steps[mem.Count]
	got, ok := ev.PreviousEvents(step.Action)
	if !ok {
		*mem = Scratch{}
		return OutcomeNone
	}
	if got.Contains(step.events()) {
		mem.Count++
		mem.Elapsed = 0
		if mem.Count >= len(c.Steps) {
			*mem = Scratch{}
			return OutcomeFired
		}
	}
	if mem.Count > 0 {
		return OutcomeOngoing
	}
	if st, _ := ev.Previous(step.Action); st.Active() {
		return OutcomeOngoing
	}
	return OutcomeNone
}

// broken reports a cancel action or a step other than the awaited one.
func (c Combo) broken(index int, ev *Eval) bool {
	current := c.Steps[index].Action
	for _, x := range c.Cancel {
		if x.Action == current {
			continue
		}
		if got, ok := ev.PreviousEvents(x.Action); ok && got.Intersects(x.events()) {
			return true
		}
	}
	for _, s := range c.Steps {
		if s.Action == current {
			continue
		}
		if got, ok := ev.PreviousEvents(s.Action); ok && got.Intersects(s.events()) {
			return true
		}
	}
	return false
}
