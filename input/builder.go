package input

import "errors"

// Builder collects contexts, actions and bindings and validates the whole
// graph once in Build. The first error is sticky: later calls are no-ops and
// Build returns it.
type Builder struct {
	p   *Pipeline
	err error
}

// NewBuilder starts an empty configuration.
func NewBuilder(opts ...Option) *Builder {
	return &Builder{p: newPipeline(opts...)}
}

// AddContext registers a context.
func (b *Builder) AddContext(c Context) *Builder {
	if b.err == nil {
		b.err = b.p.addContext(c)
	}
	return b
}

// AddAction registers an action under an existing context.
func (b *Builder) AddAction(context string, a Action) *Builder {
	if b.err == nil {
		b.err = b.p.addAction(context, a)
	}
	return b
}

// Bind attaches a binding to an existing action. Chord references are only
// checked in Build, so actions may be bound in any order.
func (b *Builder) Bind(action string, bind Binding) (BindingID, error) {
	if b.err != nil {
		return 0, b.err
	}
	id, err := b.p.bind(action, bind)
	if err != nil {
		b.err = err
	}
	return id, err
}

// MustBind is Bind for chained setup; its error surfaces from Build.
func (b *Builder) MustBind(action string, bind Binding) *Builder {
	_, _ = b.Bind(action, bind)
	return b
}

// Err returns the first error recorded so far.
func (b *Builder) Err() error { return b.err }

// Build validates references and chord cycles and returns the pipeline.
// A builder can only be built once.
func (b *Builder) Build() (*Pipeline, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.p == nil {
		return nil, errors.New("input: builder already used")
	}
	if err := b.p.validate(); err != nil {
		b.err = err
		return nil, err
	}
	p := b.p
	b.p = nil
	p.logger.Debug("input: pipeline built",
		"contexts", len(p.contexts),
		"actions", len(p.order),
		"bindings", p.bindings.len(),
	)
	return p, nil
}
