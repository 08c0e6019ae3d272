package profiles

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/actioninput/input"
)

var ErrTraceMismatch = errors.New("profiles: trace mismatch")

// SampleValue is a sample in trace files: true/false for Bool, a number for
// Axis1D and a two- or three-element list for Axis2D/Axis3D.
type SampleValue struct {
	input.Sample
}

func (v SampleValue) MarshalYAML() (any, error) {
	switch v.Kind {
	case input.KindBool:
		return v.Bool(), nil
	case input.KindAxis1D:
		return v.X, nil
	case input.KindAxis2D:
		return flowSeq(v.X, v.Y), nil
	}
	return flowSeq(v.X, v.Y, v.Z), nil
}

func flowSeq(vals ...float32) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, f := range vals {
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: fmt.Sprintf("%g", f)})
	}
	return n
}

func (v *SampleValue) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		var b bool
		if n.ShortTag() == "!!bool" {
			if err := n.Decode(&b); err != nil {
				return err
			}
			v.Sample = input.Bool(b)
			return nil
		}
		var f float32
		if err := n.Decode(&f); err != nil {
			return fmt.Errorf("profiles: line %d: sample %q: %w", n.Line, n.Value, err)
		}
		v.Sample = input.Axis1D(f)
		return nil
	case yaml.SequenceNode:
		var fs []float32
		if err := n.Decode(&fs); err != nil {
			return err
		}
		switch len(fs) {
		case 1:
			v.Sample = input.Axis1D(fs[0])
		case 2:
			v.Sample = input.Axis2D(fs[0], fs[1])
		case 3:
			v.Sample = input.Axis3D(fs[0], fs[1], fs[2])
		default:
			return fmt.Errorf("profiles: line %d: sample has %d components", n.Line, len(fs))
		}
		return nil
	}
	return fmt.Errorf("profiles: line %d: unsupported sample node", n.Line)
}

// Trace is a recorded or hand-written sequence of frames.
type Trace struct {
	Name string `yaml:"name,omitempty"`
	// DT is the default tick length for frames that leave theirs at zero.
	DT     float32      `yaml:"dt"`
	Frames []TraceFrame `yaml:"frames"`
}

// TraceFrame is one frame, optionally repeated. Contexts toggles context
// activity before the frame runs. Expect lists "Action:event" pairs that the
// last repetition must emit, in order.
type TraceFrame struct {
	DT       float32                        `yaml:"dt,omitempty"`
	Repeat   int                            `yaml:"repeat,omitempty"`
	Contexts map[string]bool                `yaml:"contexts,omitempty"`
	Samples  map[input.SourceID]SampleValue `yaml:"samples,omitempty"`
	Expect   []string                       `yaml:"expect,omitempty"`
}

func (f TraceFrame) frame(defaultDT float32) input.Frame {
	dt := f.DT
	if dt == 0 {
		dt = defaultDT
	}
	samples := make(map[input.SourceID]input.Sample, len(f.Samples))
	for k, v := range f.Samples {
		samples[k] = v.Sample
	}
	return input.Frame{DT: dt, Samples: samples}
}

// DecodeTrace parses a YAML trace.
func DecodeTrace(data []byte) (Trace, error) {
	var t Trace
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Trace{}, err
	}
	return t, nil
}

// LoadTrace reads a trace from the store.
func (s *Store) LoadTrace(name string) (Trace, error) {
	return LoadSpec[Trace](s, name)
}

// EncodeTrace renders t as YAML.
func EncodeTrace(t Trace) ([]byte, error) {
	return yaml.Marshal(t)
}

// EventLabel is the "Action:event" form used in trace expectations.
func EventLabel(e input.Event) string {
	return e.Action + ":" + e.Kind.String()
}

// Replay runs every frame of t through p. fn, if set, sees each tick's
// events. A frame whose expectations are not met stops the replay with an
// error wrapping ErrTraceMismatch.
func Replay(p *input.Pipeline, t Trace, fn func(tick int, events []input.Event)) error {
	tick := 0
	for i, tf := range t.Frames {
		for name, active := range tf.Contexts {
			if err := p.SetContextActive(name, active); err != nil {
				return fmt.Errorf("profiles: trace %s frame %d: %w", t.Name, i, err)
			}
		}

		n := max(tf.Repeat, 1)
		f := tf.frame(t.DT)
		var events []input.Event
		for r := 0; r < n; r++ {
			tick++
			events = p.Tick(f)
			if fn != nil {
				fn(tick, events)
			}
		}

		if tf.Expect == nil {
			continue
		}
		got := make([]string, 0, len(events))
		for _, e := range events {
			got = append(got, EventLabel(e))
		}
		if !slices.Equal(got, tf.Expect) {
			return fmt.Errorf("%w: trace %s frame %d: want [%s], got [%s]",
				ErrTraceMismatch, t.Name, i, strings.Join(tf.Expect, " "), strings.Join(got, " "))
		}
	}
	return nil
}

// Recorder accumulates frames into a Trace, folding identical consecutive
// frames into one repeated entry.
type Recorder struct {
	trace   Trace
	limit   int
	pending map[string]bool
	state   map[string]bool
}

// NewRecorder keeps at most limit distinct frames; zero means unlimited.
func NewRecorder(name string, limit int) *Recorder {
	return &Recorder{trace: Trace{Name: name}, limit: limit}
}

// SetContext notes a context activity change; it lands on the next recorded
// frame so that replay toggles the context before that frame runs.
func (r *Recorder) SetContext(name string, active bool) {
	if r.pending == nil {
		r.pending = make(map[string]bool)
	}
	if r.state == nil {
		r.state = make(map[string]bool)
	}
	r.pending[name] = active
	r.state[name] = active
}

func (r *Recorder) Record(f input.Frame) {
	tf := TraceFrame{DT: f.DT}
	for k, v := range f.Samples {
		if v.IsZero() {
			continue
		}
		if tf.Samples == nil {
			tf.Samples = make(map[input.SourceID]SampleValue)
		}
		tf.Samples[k] = SampleValue{v}
	}
	if len(r.pending) > 0 {
		tf.Contexts = r.pending
		r.pending = nil
	}

	if n := len(r.trace.Frames); n > 0 && tf.Contexts == nil {
		last := &r.trace.Frames[n-1]
		if last.DT == tf.DT && maps.Equal(last.Samples, tf.Samples) {
			last.Repeat = max(last.Repeat, 1) + 1
			return
		}
	}
	if r.limit > 0 && len(r.trace.Frames) >= r.limit {
		dropped := r.trace.Frames[0]
		r.trace.Frames = slices.Delete(r.trace.Frames, 0, 1)
		// The new head inherits the activity the dropped frame set up.
		if len(dropped.Contexts) > 0 {
			if len(r.trace.Frames) == 0 {
				tf.Contexts = carryContexts(dropped.Contexts, tf.Contexts)
			} else {
				head := &r.trace.Frames[0]
				head.Contexts = carryContexts(dropped.Contexts, head.Contexts)
			}
		}
	}
	r.trace.Frames = append(r.trace.Frames, tf)
}

// carryContexts returns to with every entry of from it does not override.
func carryContexts(from, to map[string]bool) map[string]bool {
	out := maps.Clone(from)
	maps.Copy(out, to)
	return out
}

// Trace returns a copy of what has been recorded.
func (r *Recorder) Trace() Trace {
	out := r.trace
	out.Frames = slices.Clone(r.trace.Frames)
	return out
}

// Len reports the number of distinct frames held.
func (r *Recorder) Len() int { return len(r.trace.Frames) }

// Reset drops every frame. The next frame restates the context activity
// noted so far.
func (r *Recorder) Reset() {
	r.trace.Frames = nil
	if len(r.state) > 0 {
		r.pending = maps.Clone(r.state)
	}
}
