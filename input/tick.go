package input

// Tick evaluates one frame and returns the lifecycle events it produced, in
// evaluation order: contexts by descending priority, actions in declaration
// order, and each action's events in the order their boundaries were crossed.
func (p *Pipeline) Tick(f Frame) []Event {
	dt := sanitizeDelta(f.DT)
	p.ticks++

	// Conditions only ever see the states from before this tick.
	for _, a := range p.order {
		a.prev = a.state
		a.prevEvts, a.events = a.events, 0
	}

	var (
		events   []Event
		consumed = make(map[SourceID]string)
		claims   []SourceID
	)
	for _, c := range p.contexts {
		if !c.active {
			for _, a := range c.actions {
				events = p.settleInactive(a, events)
			}
			continue
		}

		claims = claims[:0]
		for _, a := range c.actions {
			events = p.evaluate(a, f, dt, consumed, &claims, events)
		}
		// Claims land after the whole context so that actions of one context
		// never shadow each other.
		for _, s := range claims {
			if _, ok := consumed[s]; !ok {
				consumed[s] = c.def.Name
			}
		}
	}
	return events
}

func (p *Pipeline) settleInactive(a *actionRun, events []Event) []Event {
	a.consumed = false
	if a.state.Active() {
		a.state = StateCanceled
		events = p.emit(a, events, EventCanceled, a.value)
		return events
	}
	a.state = StateNone
	a.time = ActionTime{}
	return events
}

func (p *Pipeline) evaluate(a *actionRun, f Frame, dt float32, consumed map[SourceID]string, claims *[]SourceID, events []Event) []Event {
	ev := Eval{DT: dt, previous: p.previous, events: p.prevEvents}
	if a.state.Active() {
		ev.Elapsed = a.time.Elapsed
	}

	var (
		out   Outcome
		value Sample
	)
	a.consumed = false
	if a.mock != nil {
		out, value = a.mock.Outcome, a.mock.Value
		if a.mock.advance(dt) {
			a.mock = nil
		}
	} else {
		out, value = p.evaluateBindings(a, f, &ev, consumed, claims)
	}

	next, kinds := transition(a.state, out, ev.interrupted, a.def.SuppressRepeats)
	a.time = a.time.advance(a.state, next, dt)
	if len(kinds) > 0 || next.Active() {
		a.value = value
	}
	a.state = next
	for _, k := range kinds {
		events = p.emit(a, events, k, value)
	}
	return events
}

func (p *Pipeline) emit(a *actionRun, events []Event, kind EventKind, value Sample) []Event {
	a.events = a.events.With(kind)
	e := Event{
		Context: a.context.def.Name,
		Action:  a.def.Key,
		Kind:    kind,
		Value:   value,
		State:   a.state,
		Elapsed: a.time.Elapsed,
		Fired:   a.time.Fired,
	}
	p.logger.Debug("input: action event",
		"tick", p.ticks,
		"context", e.Context,
		"action", e.Action,
		"event", e.Kind.String(),
		"value", e.Value.String(),
		"elapsed", e.Elapsed,
	)
	return append(events, e)
}

func (p *Pipeline) consumes(b *bindingRun) bool {
	return !b.def.Passthrough && !b.action.context.def.Passthrough
}

// evaluateBindings runs every binding of a, aggregates the surviving samples
// and folds binding and action-level conditions into one outcome.
func (p *Pipeline) evaluateBindings(a *actionRun, f Frame, ev *Eval, consumed map[SourceID]string, claims *[]SourceID) (Outcome, Sample) {
	kind := a.def.Kind
	agg := newAggregator(a.def.Aggregation, kind)
	best := OutcomeNone
	seed := newTracker()

	for _, id := range a.bindings {
		b := p.bindings.get(id)
		if b == nil {
			continue
		}
		src := b.def.Source
		b.shadowed = false
		if _, taken := consumed[src]; taken {
			// Shadowed by a higher-priority context or a modifier-key
			// binding: frozen, excluded.
			b.outcome = OutcomeNone
			b.shadowed = true
			a.consumed = true
			continue
		}

		raw := f.Samples[src].Sanitize().Convert(kind)
		if mods := b.def.ModKeys; mods != 0 {
			if !mods.Held(f) {
				raw = Zero(kind)
			} else if !raw.IsZero() && p.consumes(b) {
				// The held key belongs to this binding for the rest of the
				// tick, including later actions of the same context.
				consumed[src] = a.context.def.Name
			}
		}
		if b.pendingReset {
			if !raw.IsZero() {
				b.outcome = OutcomeNone
				if p.consumes(b) {
					*claims = append(*claims, src)
				}
				continue
			}
			b.pendingReset = false
		}

		v := applyModifiers(b.def.Modifiers, b.modMem, raw, ev.DT)
		t := newTracker()
		evaluateConditions(&t, b.def.Conditions, b.condMem, ev, v)
		o := t.outcome(v.Actuated(0))

		b.last = v
		b.outcome = o
		agg.add(v)
		if o != OutcomeNone && p.consumes(b) {
			*claims = append(*claims, src)
		}

		switch {
		case o > best:
			best = o
			seed = t
		case o == best && o != OutcomeNone:
			seed.merge(t)
		}
	}

	value := applyModifiers(a.def.Modifiers, a.modMem, agg.value, ev.DT)
	if len(a.def.Conditions) == 0 {
		return best, value
	}
	if best == OutcomeNone {
		seed = newTracker()
	}
	evaluateConditions(&seed, a.def.Conditions, a.condMem, ev, value)
	return seed.outcome(value.Actuated(0)), value
}
