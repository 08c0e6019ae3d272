package script

import (
	"log/slog"

	"github.com/milk9111/actioninput/input"
)

var modifierGlobals = []string{"value", "kind", "dt", "memory", "params", "out"}

// Modifier is an input.Modifier backed by a tengo program.
type Modifier struct {
	prog   *program
	params map[string]any
}

// NewModifier compiles src. params is exposed to the script read-only.
func NewModifier(name string, src []byte, params map[string]any, logger *slog.Logger) (*Modifier, error) {
	prog, err := compile(name, src, modifierGlobals, logger)
	if err != nil {
		return nil, err
	}
	return &Modifier{prog: prog, params: params}, nil
}

// Apply runs the script once. Any runtime error leaves the sample unchanged.
func (m *Modifier) Apply(mem *input.Scratch, in input.Sample, dt float32) input.Sample {
	memory := memoryToObject(mem)
	err := m.prog.run(map[string]any{
		"value":  sampleToObject(in),
		"kind":   in.Kind.String(),
		"dt":     float64(dt),
		"memory": memory,
		"params": m.params,
		"out":    nil,
	})
	if err != nil {
		m.prog.logger.Warn("script: modifier failed", "script", m.prog.name, "err", err)
		return in
	}
	memoryFrom(mem, in.Kind, memory)

	raw, ok := m.prog.result("out")
	if !ok {
		m.prog.logger.Warn("script: modifier failed", "script", m.prog.name, "err", ErrNoResult)
		return in
	}
	out, err := sampleFrom(in.Kind, raw)
	if err != nil {
		m.prog.logger.Warn("script: modifier failed", "script", m.prog.name, "err", err)
		return in
	}
	return out
}
