package input

import (
	"log/slog"
	"slices"
	"strings"
)

// Frame is one tick's input: raw samples keyed by source plus the tick length
// in seconds. Sources missing from Samples read as zero.
type Frame struct {
	DT      float32
	Samples map[SourceID]Sample
}

type contextRun struct {
	def     Context
	active  bool
	actions []*actionRun
}

type actionRun struct {
	def      Action
	context  *contextRun
	bindings []BindingID

	seq      int
	state    ActionState
	prev     ActionState
	events   EventSet
	prevEvts EventSet
	value    Sample
	time     ActionTime
	consumed bool
	mock     *Mock

	modMem  []Scratch
	condMem []Scratch
}

type bindingRun struct {
	id     BindingID
	action *actionRun
	def    Binding

	modMem       []Scratch
	condMem      []Scratch
	last         Sample
	outcome      Outcome
	shadowed     bool
	pendingReset bool
}

// Pipeline evaluates actions tick by tick. It is not safe for concurrent
// use; configuration calls must happen between ticks.
type Pipeline struct {
	contexts []*contextRun
	actions  map[string]*actionRun
	order    []*actionRun
	bindings arena[bindingRun]
	nextID   BindingID
	ticks    uint64

	logger     *slog.Logger
	previous   func(string) (ActionState, bool)
	prevEvents func(string) (EventSet, bool)
	declared   int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger routes debug transition logs to l.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

func newPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{
		actions: make(map[string]*actionRun),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.previous = p.previousState
	p.prevEvents = p.previousEvents
	return p
}

func (p *Pipeline) previousState(key string) (ActionState, bool) {
	a, ok := p.actions[key]
	if !ok {
		return StateNone, false
	}
	return a.prev, true
}

func (p *Pipeline) previousEvents(key string) (EventSet, bool) {
	a, ok := p.actions[key]
	if !ok {
		return 0, false
	}
	return a.prevEvts, true
}

func (p *Pipeline) context(name string) *contextRun {
	for _, c := range p.contexts {
		if c.def.Name == name {
			return c
		}
	}
	return nil
}

func (p *Pipeline) addContext(c Context) error {
	if strings.TrimSpace(c.Name) == "" {
		return configErr(ErrInvalidParameter, "", "context name is empty")
	}
	if p.context(c.Name) != nil {
		return configErr(ErrDuplicateContext, "", "%q", c.Name)
	}
	p.contexts = append(p.contexts, &contextRun{def: c, active: !c.Inactive})
	// Stable: equal priorities keep registration order.
	slices.SortStableFunc(p.contexts, func(a, b *contextRun) int {
		return b.def.Priority - a.def.Priority
	})
	return nil
}

func (p *Pipeline) addAction(context string, a Action) error {
	c := p.context(context)
	if c == nil {
		return configErr(ErrUnknownContext, a.Key, "%q", context)
	}
	if strings.TrimSpace(a.Key) == "" {
		return configErr(ErrInvalidParameter, "", "action key is empty")
	}
	if _, ok := p.actions[a.Key]; ok {
		return configErr(ErrDuplicateAction, a.Key, "")
	}
	if a.Kind > KindAxis3D {
		return configErr(ErrInvalidParameter, a.Key, "value kind %d", a.Kind)
	}
	run := &actionRun{
		def:     a,
		context: c,
		seq:     p.declared,
		value:   Zero(a.Kind),
		modMem:  make([]Scratch, len(a.Modifiers)),
		condMem: make([]Scratch, len(a.Conditions)),
	}
	p.declared++
	c.actions = append(c.actions, run)
	p.actions[a.Key] = run
	p.rebuildOrder()
	return nil
}

// rebuildOrder lists actions in evaluation order: context priority, then
// actions whose bindings need more modifier keys, then declaration order.
func (p *Pipeline) rebuildOrder() {
	p.order = p.order[:0]
	for _, c := range p.contexts {
		slices.SortStableFunc(c.actions, func(x, y *actionRun) int {
			if d := p.modCount(y) - p.modCount(x); d != 0 {
				return d
			}
			return x.seq - y.seq
		})
		p.order = append(p.order, c.actions...)
	}
}

func (p *Pipeline) modCount(a *actionRun) int {
	n := 0
	for _, id := range a.bindings {
		if b := p.bindings.get(id); b != nil {
			n = max(n, b.def.ModKeys.Count())
		}
	}
	return n
}

func (p *Pipeline) bind(action string, b Binding) (BindingID, error) {
	a, ok := p.actions[action]
	if !ok {
		return 0, configErr(ErrUnknownAction, action, "")
	}
	if b.Source == "" {
		return 0, configErr(ErrInvalidParameter, action, "binding source is empty")
	}
	for _, id := range a.bindings {
		if other := p.bindings.get(id); other != nil && other.def.Source == b.Source {
			return 0, configErr(ErrDuplicateBinding, action, "source %q already bound", b.Source)
		}
	}
	p.nextID++
	id := p.nextID
	p.bindings.set(id, newBindingRun(id, a, b))
	a.bindings = append(a.bindings, id)
	p.rebuildOrder()
	return id, nil
}

func newBindingRun(id BindingID, a *actionRun, b Binding) bindingRun {
	return bindingRun{
		id:           id,
		action:       a,
		def:          b,
		modMem:       make([]Scratch, len(b.Modifiers)),
		condMem:      make([]Scratch, len(b.Conditions)),
		last:         Zero(a.def.Kind),
		pendingReset: a.def.RequireReset,
	}
}

// validate checks references and chord cycles across the whole graph.
func (p *Pipeline) validate() error {
	for _, a := range p.order {
		if err := p.checkReferences(a.def.Key, a.def.Conditions); err != nil {
			return err
		}
		for _, id := range a.bindings {
			if b := p.bindings.get(id); b != nil {
				if err := p.checkReferences(a.def.Key, b.def.Conditions); err != nil {
					return err
				}
			}
		}
	}
	return p.checkCycles()
}

// Bind attaches a binding to an existing action between ticks.
func (p *Pipeline) Bind(action string, b Binding) (BindingID, error) {
	a, ok := p.actions[action]
	if !ok {
		return 0, configErr(ErrUnknownAction, action, "")
	}
	if err := p.checkReferences(action, b.Conditions); err != nil {
		return 0, err
	}
	id, err := p.bind(action, b)
	if err != nil {
		return 0, err
	}
	if err := p.checkCycles(); err != nil {
		p.unbind(a, id)
		return 0, err
	}
	return id, nil
}

// Unbind removes a binding between ticks.
func (p *Pipeline) Unbind(id BindingID) error {
	b := p.bindings.get(id)
	if b == nil {
		return configErr(ErrUnknownBinding, "", "id %d", id)
	}
	p.unbind(b.action, id)
	return nil
}

func (p *Pipeline) unbind(a *actionRun, id BindingID) {
	a.bindings = slices.DeleteFunc(a.bindings, func(x BindingID) bool { return x == id })
	p.bindings.remove(id)
	p.rebuildOrder()
}

// Rebind replaces a binding's configuration in place, keeping its id and
// position and clearing all of its modifier and condition memory.
func (p *Pipeline) Rebind(id BindingID, b Binding) error {
	cur := p.bindings.get(id)
	if cur == nil {
		return configErr(ErrUnknownBinding, "", "id %d", id)
	}
	a := cur.action
	if b.Source == "" {
		return configErr(ErrInvalidParameter, a.def.Key, "binding source is empty")
	}
	for _, other := range a.bindings {
		if o := p.bindings.get(other); other != id && o != nil && o.def.Source == b.Source {
			return configErr(ErrDuplicateBinding, a.def.Key, "source %q already bound", b.Source)
		}
	}
	if err := p.checkReferences(a.def.Key, b.Conditions); err != nil {
		return err
	}
	old := *cur
	p.bindings.set(id, newBindingRun(id, a, b))
	if err := p.checkCycles(); err != nil {
		p.bindings.set(id, old)
		return err
	}
	p.rebuildOrder()
	return nil
}

// SetContextActive enables or disables a context between ticks. Disabling
// cancels its active actions on the next tick; enabling re-arms RequireReset.
func (p *Pipeline) SetContextActive(name string, active bool) error {
	c := p.context(name)
	if c == nil {
		return configErr(ErrUnknownContext, "", "%q", name)
	}
	if c.active == active {
		return nil
	}
	c.active = active
	for _, a := range c.actions {
		clear(a.condMem)
		for _, id := range a.bindings {
			b := p.bindings.get(id)
			if b == nil {
				continue
			}
			clear(b.condMem)
			b.outcome = OutcomeNone
			if active && a.def.RequireReset {
				b.pendingReset = true
			}
		}
	}
	p.logger.Debug("input: context activity changed", "context", name, "active", active)
	return nil
}

// ContextActive reports whether the named context is active.
func (p *Pipeline) ContextActive(name string) (bool, bool) {
	c := p.context(name)
	if c == nil {
		return false, false
	}
	return c.active, true
}

// Mock drives key from m until it expires.
func (p *Pipeline) Mock(key string, m Mock) error {
	a, ok := p.actions[key]
	if !ok {
		return configErr(ErrUnknownAction, key, "")
	}
	m.Value = m.Value.Convert(a.def.Kind).Sanitize()
	a.mock = &m
	return nil
}

// Unmock returns key to binding-driven evaluation.
func (p *Pipeline) Unmock(key string) error {
	a, ok := p.actions[key]
	if !ok {
		return configErr(ErrUnknownAction, key, "")
	}
	a.mock = nil
	return nil
}

// State returns the stored state of an action.
func (p *Pipeline) State(key string) (ActionState, bool) {
	a, ok := p.actions[key]
	if !ok {
		return StateNone, false
	}
	return a.state, true
}

// Value returns the current output value of an action.
func (p *Pipeline) Value(key string) (Sample, bool) {
	a, ok := p.actions[key]
	if !ok {
		return Sample{}, false
	}
	return a.value, true
}

// Time returns the active and fired durations of an action.
func (p *Pipeline) Time(key string) (ActionTime, bool) {
	a, ok := p.actions[key]
	if !ok {
		return ActionTime{}, false
	}
	return a.time, true
}

// Actions lists every action in evaluation order.
func (p *Pipeline) Actions() []ActionStatus {
	out := make([]ActionStatus, 0, len(p.order))
	for _, a := range p.order {
		out = append(out, ActionStatus{
			Context:       a.context.def.Name,
			ContextActive: a.context.active,
			Key:           a.def.Key,
			State:         a.state,
			Value:         a.value,
			Time:          a.time,
			Consumed:      a.consumed,
			Mocked:        a.mock != nil,
		})
	}
	return out
}

// Bindings lists the bindings of action in evaluation order with the
// results of their last evaluation. A shadowed binding keeps the value it
// had before its source was taken.
func (p *Pipeline) Bindings(action string) ([]BindingStatus, bool) {
	a, ok := p.actions[action]
	if !ok {
		return nil, false
	}
	out := make([]BindingStatus, 0, len(a.bindings))
	for _, id := range a.bindings {
		b := p.bindings.get(id)
		if b == nil {
			continue
		}
		out = append(out, BindingStatus{
			ID:            id,
			Action:        action,
			Source:        b.def.Source,
			ModKeys:       b.def.ModKeys,
			Value:         b.last,
			Outcome:       b.outcome,
			Shadowed:      b.shadowed,
			AwaitingReset: b.pendingReset,
		})
	}
	return out, true
}

// Sources lists every bound source, sorted.
func (p *Pipeline) Sources() []SourceID {
	seen := make(map[SourceID]struct{})
	for _, a := range p.order {
		for _, id := range a.bindings {
			if b := p.bindings.get(id); b != nil {
				seen[b.def.Source] = struct{}{}
				for _, k := range b.def.ModKeys.Sources() {
					seen[k] = struct{}{}
				}
			}
		}
	}
	out := make([]SourceID, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

// Ticks returns how many ticks have been evaluated.
func (p *Pipeline) Ticks() uint64 { return p.ticks }

// Clone deep-copies configuration references and all runtime state. Custom
// modifiers and conditions are shared, so scripted ones must not run on both
// copies concurrently.
func (p *Pipeline) Clone() *Pipeline {
	out := &Pipeline{
		actions: make(map[string]*actionRun, len(p.actions)),
		nextID:  p.nextID,
		ticks:   p.ticks,
		logger:  p.logger,
	}
	out.previous = out.previousState
	out.prevEvents = out.previousEvents
	out.declared = p.declared

	actionMap := make(map[*actionRun]*actionRun, len(p.actions))
	for _, c := range p.contexts {
		nc := &contextRun{def: c.def, active: c.active}
		for _, a := range c.actions {
			na := *a
			na.context = nc
			na.bindings = slices.Clone(a.bindings)
			na.modMem = slices.Clone(a.modMem)
			na.condMem = slices.Clone(a.condMem)
			if a.mock != nil {
				m := *a.mock
				na.mock = &m
			}
			nc.actions = append(nc.actions, &na)
			out.actions[na.def.Key] = &na
			actionMap[a] = &na
		}
		out.contexts = append(out.contexts, nc)
	}
	out.bindings = p.bindings.clone(func(b bindingRun) bindingRun {
		b.action = actionMap[b.action]
		b.modMem = slices.Clone(b.modMem)
		b.condMem = slices.Clone(b.condMem)
		return b
	})
	out.rebuildOrder()
	return out
}
