package input

// DefaultActuation is the threshold used when a condition leaves it at zero.
const DefaultActuation float32 = 0.5

// ConditionKind controls how a condition contributes to the combined outcome.
type ConditionKind uint8

const (
	// Explicit conditions are OR-ed: the strongest outcome wins.
	Explicit ConditionKind = iota
	// Implicit conditions must all be Fired for the result to be Fired;
	// otherwise the result is capped at Ongoing.
	Implicit
	// Blocker conditions veto the result when they report None.
	Blocker
)

// Condition evaluates a transformed sample into an Outcome.
type Condition interface {
	Evaluate(mem *Scratch, ev *Eval, in Sample) Outcome
}

// Kinded is implemented by conditions that are not Explicit.
type Kinded interface {
	Kind() ConditionKind
}

func kindOf(c Condition) ConditionKind {
	if k, ok := c.(Kinded); ok {
		return k.Kind()
	}
	return Explicit
}

// Eval is the read-only tick context handed to conditions.
type Eval struct {
	DT float32
	// Elapsed is the owning action's active time as of the previous tick.
	Elapsed float32

	previous    func(key string) (ActionState, bool)
	events      func(key string) (EventSet, bool)
	interrupted bool
}

// NewEval builds an Eval for calling conditions outside a pipeline.
func NewEval(dt, elapsed float32, previous map[string]ActionState) *Eval {
	return &Eval{
		DT:      sanitizeDelta(dt),
		Elapsed: elapsed,
		previous: func(key string) (ActionState, bool) {
			s, ok := previous[key]
			return s, ok
		},
	}
}

// WithEvents makes PreviousEvents answer from events.
func (ev *Eval) WithEvents(events map[string]EventSet) *Eval {
	ev.events = func(key string) (EventSet, bool) {
		s, ok := events[key]
		return s, ok
	}
	return ev
}

// PreviousEvents returns the events another action emitted last tick.
func (ev *Eval) PreviousEvents(key string) (EventSet, bool) {
	if ev == nil || ev.events == nil {
		return 0, false
	}
	return ev.events(key)
}

// Previous returns another action's state as of the end of the previous tick.
func (ev *Eval) Previous(key string) (ActionState, bool) {
	if ev == nil || ev.previous == nil {
		return StateNone, false
	}
	return ev.previous(key)
}

// Interrupt asks the state machine to end the activation as Canceled
// instead of Completed if the final outcome this tick is None.
func (ev *Eval) Interrupt() {
	if ev != nil {
		ev.interrupted = true
	}
}

// Interrupted reports whether any condition interrupted this tick.
func (ev *Eval) Interrupted() bool { return ev != nil && ev.interrupted }

// ConditionFunc adapts a stateless function to Condition.
type ConditionFunc func(in Sample, ev *Eval) Outcome

func (f ConditionFunc) Evaluate(_ *Scratch, ev *Eval, in Sample) Outcome {
	if f == nil {
		return OutcomeNone
	}
	return f(in, ev)
}

func threshold(t float32) float32 {
	if !finite(t) || t <= 0 {
		return DefaultActuation
	}
	return t
}

// tracker folds condition outcomes according to their kinds.
type tracker struct {
	hasExplicit  bool
	explicitMax  Outcome
	hasImplicit  bool
	implicitsAll bool
	implicitMax  Outcome
	blocked      bool
}

func newTracker() tracker { return tracker{implicitsAll: true} }

func (t *tracker) add(kind ConditionKind, o Outcome) {
	switch kind {
	case Implicit:
		t.hasImplicit = true
		t.implicitMax = maxOutcome(t.implicitMax, o)
		if o != OutcomeFired {
			t.implicitsAll = false
		}
	case Blocker:
		if o == OutcomeNone {
			t.blocked = true
		}
	default:
		t.hasExplicit = true
		t.explicitMax = maxOutcome(t.explicitMax, o)
	}
}

func (t *tracker) merge(o tracker) {
	if o.hasExplicit {
		t.add(Explicit, o.explicitMax)
	}
	if o.hasImplicit {
		t.hasImplicit = true
		t.implicitMax = maxOutcome(t.implicitMax, o.implicitMax)
		t.implicitsAll = t.implicitsAll && o.implicitsAll
	}
	t.blocked = t.blocked || o.blocked
}

func (t tracker) empty() bool { return !t.hasExplicit && !t.hasImplicit }

// outcome resolves the folded result; actuated is used only when no explicit
// or implicit condition took part.
func (t tracker) outcome(actuated bool) Outcome {
	if t.blocked {
		return OutcomeNone
	}
	if t.empty() {
		if actuated {
			return OutcomeFired
		}
		return OutcomeNone
	}
	explicitFired := !t.hasExplicit || t.explicitMax == OutcomeFired
	if explicitFired && t.implicitsAll {
		return OutcomeFired
	}
	if maxOutcome(t.explicitMax, t.implicitMax) >= OutcomeOngoing {
		return OutcomeOngoing
	}
	return OutcomeNone
}

// evaluateConditions runs conds in order and folds them into t.
func evaluateConditions(t *tracker, conds []Condition, mem []Scratch, ev *Eval, in Sample) {
	for i, c := range conds {
		if c == nil {
			continue
		}
		t.add(kindOf(c), c.Evaluate(&mem[i], ev, in))
	}
}
