package script

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/milk9111/actioninput/input"
)

var conditionGlobals = []string{
	"value", "kind", "dt", "elapsed", "actuated", "memory", "params",
	"state", "interrupt", "outcome",
}

// Condition is an input.Condition backed by a tengo program. A script may
// declare condition_kind := "implicit" or "blocker" at top level.
type Condition struct {
	prog      *program
	params    map[string]any
	kind      input.ConditionKind
	threshold float32
}

// NewCondition compiles src and resolves its kind with one dry run.
func NewCondition(name string, src []byte, params map[string]any, logger *slog.Logger) (*Condition, error) {
	prog, err := compile(name, src, conditionGlobals, logger)
	if err != nil {
		return nil, err
	}
	c := &Condition{prog: prog, params: params, threshold: input.DefaultActuation}
	if t, ok := toFloat(params["threshold"]); ok && t > 0 {
		c.threshold = t
	}

	var mem input.Scratch
	if err := c.run(&mem, input.NewEval(0, 0, nil), input.Zero(input.KindBool)); err != nil {
		return nil, fmt.Errorf("script: dry run %s: %w", name, err)
	}
	if prog.compiled.IsDefined("condition_kind") {
		switch k := strings.TrimSpace(objectAsString(prog.compiled.Get("condition_kind").Object())); k {
		case "", "explicit":
			c.kind = input.Explicit
		case "implicit":
			c.kind = input.Implicit
		case "blocker":
			c.kind = input.Blocker
		default:
			return nil, fmt.Errorf("script: %s: unknown condition_kind %q", name, k)
		}
	}
	return c, nil
}

func (c *Condition) Kind() input.ConditionKind { return c.kind }

func (c *Condition) run(mem *input.Scratch, ev *input.Eval, in input.Sample) error {
	memory := memoryToObject(mem)
	err := c.prog.run(map[string]any{
		"value":     sampleToObject(in),
		"kind":      in.Kind.String(),
		"dt":        float64(ev.DT),
		"elapsed":   float64(ev.Elapsed),
		"actuated":  in.Actuated(c.threshold),
		"memory":    memory,
		"params":    c.params,
		"state":     stateFunc(ev),
		"interrupt": interruptFunc(ev),
		"outcome":   nil,
	})
	if err != nil {
		return err
	}
	memoryFrom(mem, in.Kind, memory)
	return nil
}

// Evaluate runs the script once. Runtime errors and unknown outcomes report
// None.
func (c *Condition) Evaluate(mem *input.Scratch, ev *input.Eval, in input.Sample) input.Outcome {
	if err := c.run(mem, ev, in); err != nil {
		c.prog.logger.Warn("script: condition failed", "script", c.prog.name, "err", err)
		return input.OutcomeNone
	}
	raw, ok := c.prog.result("outcome")
	if !ok {
		return input.OutcomeNone
	}
	s, _ := raw.(string)
	out, err := input.ParseOutcome(s)
	if err != nil {
		c.prog.logger.Warn("script: condition failed", "script", c.prog.name, "err", err)
		return input.OutcomeNone
	}
	return out
}

func stateFunc(ev *input.Eval) *tengo.UserFunction {
	return &tengo.UserFunction{Name: "state", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return &tengo.String{Value: input.StateNone.String()}, nil
		}
		st, _ := ev.Previous(strings.TrimSpace(objectAsString(args[0])))
		return &tengo.String{Value: st.String()}, nil
	}}
}

func interruptFunc(ev *input.Eval) *tengo.UserFunction {
	return &tengo.UserFunction{Name: "interrupt", Value: func(args ...tengo.Object) (tengo.Object, error) {
		ev.Interrupt()
		return tengo.TrueValue, nil
	}}
}
