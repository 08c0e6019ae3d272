// Package script runs tengo programs as input modifiers and conditions.
//
// A modifier script reads the globals value, kind, dt and memory and assigns
// its result to out. A condition script also sees elapsed and actuated, can
// call state(name) and interrupt(), and assigns "none", "ongoing" or "fired"
// to outcome. memory is a map persisted per binding between ticks with the
// keys value, elapsed, count, primed and latched.
package script

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/actioninput/input"
)

var ErrNoResult = errors.New("script: no result assigned")

// maxAllocs bounds a single run so that a runaway loop fails instead of
// stalling a tick.
const maxAllocs = 1 << 16

type program struct {
	name     string
	compiled *tengo.Compiled
	logger   *slog.Logger
}

func compile(name string, src []byte, globals []string, logger *slog.Logger) (*program, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := tengo.NewScript(src)
	for _, g := range globals {
		if err := s.Add(g, nil); err != nil {
			return nil, fmt.Errorf("script: %s: add %s: %w", name, g, err)
		}
	}
	s.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	s.SetMaxAllocs(maxAllocs)

	compiled, err := s.Compile()
	if err != nil {
		return nil, fmt.Errorf("script: compile %s: %w", name, err)
	}
	return &program{name: name, compiled: compiled, logger: logger}, nil
}

func (p *program) run(vars map[string]any) error {
	for k, v := range vars {
		if err := p.compiled.Set(k, v); err != nil {
			return err
		}
	}
	return p.compiled.Run()
}

func (p *program) result(name string) (any, bool) {
	if !p.compiled.IsDefined(name) {
		return nil, false
	}
	v := p.compiled.Get(name)
	if v == nil || v.IsUndefined() {
		return nil, false
	}
	return objectToAny(v.Object()), true
}

func sampleToObject(s input.Sample) *tengo.Array {
	var n int
	switch s.Kind {
	case input.KindBool, input.KindAxis1D:
		n = 1
	case input.KindAxis2D:
		n = 2
	default:
		n = 3
	}
	c := s.Components()
	arr := &tengo.Array{Value: make([]tengo.Object, 0, n)}
	for i := 0; i < n; i++ {
		arr.Value = append(arr.Value, &tengo.Float{Value: float64(c[i])})
	}
	return arr
}

// sampleFrom converts a script result into a sample of kind k. Numbers set X,
// arrays fill components in order and booleans become 0 or 1.
func sampleFrom(k input.Kind, v any) (input.Sample, error) {
	var c [3]float32
	switch x := v.(type) {
	case bool:
		if x {
			c[0] = 1
		}
	case int:
		c[0] = float32(x)
	case float64:
		c[0] = float32(x)
	case []any:
		if len(x) > 3 {
			return input.Sample{}, fmt.Errorf("script: %d components", len(x))
		}
		for i, item := range x {
			f, ok := toFloat(item)
			if !ok {
				return input.Sample{}, fmt.Errorf("script: component %d is %T", i, item)
			}
			c[i] = f
		}
	default:
		return input.Sample{}, fmt.Errorf("script: cannot use %T as a sample", v)
	}
	return input.Zero(k).WithComponents(c).Sanitize(), nil
}

func toFloat(v any) (float32, bool) {
	switch x := v.(type) {
	case int:
		return float32(x), true
	case float64:
		return float32(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func memoryToObject(mem *input.Scratch) *tengo.Map {
	return &tengo.Map{Value: map[string]tengo.Object{
		"value":   sampleToObject(mem.Value),
		"elapsed": &tengo.Float{Value: float64(mem.Elapsed)},
		"count":   &tengo.Int{Value: int64(mem.Count)},
		"primed":  boolObject(mem.Primed),
		"latched": boolObject(mem.Latched),
	}}
}

// memoryFrom copies the fields the script left in m back into mem; missing or
// mistyped keys keep their old values.
func memoryFrom(mem *input.Scratch, kind input.Kind, m *tengo.Map) {
	vals, _ := objectToAny(m).(map[string]any)
	if raw, ok := vals["value"]; ok {
		if s, err := sampleFrom(kind, raw); err == nil {
			mem.Value = s
		}
	}
	if f, ok := toFloat(vals["elapsed"]); ok {
		mem.Elapsed = f
	}
	if n, ok := vals["count"].(int); ok {
		mem.Count = n
	}
	if b, ok := vals["primed"].(bool); ok {
		mem.Primed = b
	}
	if b, ok := vals["latched"].(bool); ok {
		mem.Latched = b
	}
}

func boolObject(b bool) tengo.Object {
	if b {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

func objectToAny(obj tengo.Object) any {
	if obj == nil {
		return nil
	}

	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	case *tengo.Int:
		return int(v.Value)
	case *tengo.Float:
		return v.Value
	case *tengo.Bool:
		return !v.IsFalsy()
	case *tengo.Array:
		out := make([]any, 0, len(v.Value))
		for _, item := range v.Value {
			out = append(out, objectToAny(item))
		}
		return out
	case *tengo.ImmutableArray:
		out := make([]any, 0, len(v.Value))
		for _, item := range v.Value {
			out = append(out, objectToAny(item))
		}
		return out
	case *tengo.Map:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.ImmutableMap:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.Undefined:
		return nil
	default:
		return v.String()
	}
}
