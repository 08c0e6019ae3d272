package input

import (
	"slices"
	"strings"
)

// dependent is implemented by conditions whose chord edges must stay acyclic.
type dependent interface {
	Dependencies() []string
}

// referrer is implemented by conditions that read other actions without
// forming chord edges.
type referrer interface {
	References() []string
}

func conditionRefs(c Condition) (deps, refs []string) {
	if d, ok := c.(dependent); ok {
		deps = d.Dependencies()
	}
	if r, ok := c.(referrer); ok {
		refs = r.References()
	}
	return deps, refs
}

// chordEdges collects, per action, the actions its chords depend on.
func (p *Pipeline) chordEdges() map[string][]string {
	edges := make(map[string][]string, len(p.order))
	for _, a := range p.order {
		var deps []string
		collect := func(conds []Condition) {
			for _, c := range conds {
				d, _ := conditionRefs(c)
				deps = append(deps, d...)
			}
		}
		collect(a.def.Conditions)
		for _, id := range a.bindings {
			if b := p.bindings.get(id); b != nil {
				collect(b.def.Conditions)
			}
		}
		edges[a.def.Key] = deps
	}
	return edges
}

// checkReferences rejects conditions that name actions which do not exist.
func (p *Pipeline) checkReferences(owner string, conds []Condition) error {
	for _, c := range conds {
		deps, refs := conditionRefs(c)
		for _, name := range append(deps, refs...) {
			if _, ok := p.actions[name]; !ok {
				return configErr(ErrUnknownAction, name, "referenced by %q", owner)
			}
		}
	}
	return nil
}

// checkCycles runs a three-colour DFS over chord edges in declaration order.
func (p *Pipeline) checkCycles() error {
	const (
		white = iota
		grey
		black
	)
	edges := p.chordEdges()
	colour := make(map[string]int, len(edges))
	var path []string

	var visit func(n string) error
	visit = func(n string) error {
		colour[n] = grey
		path = append(path, n)
		for _, d := range edges[n] {
			switch colour[d] {
			case grey:
				start := slices.Index(path, d)
				cycle := append(append([]string(nil), path[start:]...), d)
				return configErr(ErrCyclicChordDependency, n, "%s", strings.Join(cycle, " -> "))
			case white:
				if err := visit(d); err != nil {
					return err
				}
			}
		}
		path = path[:len(path)-1]
		colour[n] = black
		return nil
	}

	for _, a := range p.order {
		if colour[a.def.Key] == white {
			if err := visit(a.def.Key); err != nil {
				return err
			}
		}
	}
	return nil
}
