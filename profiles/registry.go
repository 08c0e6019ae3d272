package profiles

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/milk9111/actioninput/input"
	"github.com/milk9111/actioninput/script"
)

var (
	ErrUnknownType = errors.New("profiles: unknown type")
	ErrMissingType = errors.New("profiles: entry has no type")
)

type buildContext struct {
	Scripts func(name string) ([]byte, error)
	Logger  *slog.Logger
}

type modifierBuildFn func(raw map[string]any, ctx *buildContext) (input.Modifier, error)
type conditionBuildFn func(raw map[string]any, ctx *buildContext) (input.Condition, error)
type presetBuildFn func(raw map[string]any) (input.Preset, error)

var modifierRegistry = map[string]modifierBuildFn{
	"dead_zone":   buildDeadZone,
	"scale":       buildScale,
	"negate":      buildNegate,
	"swizzle":     buildSwizzle,
	"smooth":      buildSmooth,
	"accumulate":  buildAccumulate,
	"clamp":       buildClamp,
	"curve":       buildCurve,
	"delta_scale": buildDeltaScale,
	"script":      buildScriptModifier,
}

var conditionRegistry = map[string]conditionBuildFn{
	"pressed":          buildPressed,
	"released":         buildReleased,
	"down":             buildDown,
	"toggle":           buildToggle,
	"hold":             buildHold,
	"tap":              buildTap,
	"hold_and_release": buildHoldAndRelease,
	"pulse":            buildPulse,
	"chord":            buildChord,
	"combo":            buildCombo,
	"cooldown":         buildCooldown,
	"block_by":         buildBlockBy,
	"script":           buildScriptCondition,
}

var presetRegistry = map[string]presetBuildFn{
	"bidirectional": buildBidirectional,
	"cardinal":      buildCardinal,
	"axial":         buildAxial,
	"ordinal":       buildOrdinal,
	"spatial":       buildSpatial,
}

// ModifierTypes lists the registered modifier type names.
func ModifierTypes() []string { return registryKeys(modifierRegistry) }

// ConditionTypes lists the registered condition type names.
func ConditionTypes() []string { return registryKeys(conditionRegistry) }

// PresetTypes lists the registered preset type names.
func PresetTypes() []string { return registryKeys(presetRegistry) }

func registryKeys[T any](m map[string]T) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func entryType(raw map[string]any) (string, error) {
	t, _ := raw["type"].(string)
	t = strings.TrimSpace(t)
	if t == "" {
		return "", ErrMissingType
	}
	return t, nil
}

func buildModifiers(raws []map[string]any, ctx *buildContext) ([]input.Modifier, error) {
	out := make([]input.Modifier, 0, len(raws))
	for i, raw := range raws {
		t, err := entryType(raw)
		if err != nil {
			return nil, fmt.Errorf("modifier %d: %w", i, err)
		}
		fn, ok := modifierRegistry[t]
		if !ok {
			return nil, fmt.Errorf("modifier %d: %w %q", i, ErrUnknownType, t)
		}
		m, err := fn(raw, ctx)
		if err != nil {
			return nil, fmt.Errorf("modifier %d (%s): %w", i, t, err)
		}
		out = append(out, m)
	}
	return out, nil
}

func buildConditions(raws []map[string]any, ctx *buildContext) ([]input.Condition, error) {
	out := make([]input.Condition, 0, len(raws))
	for i, raw := range raws {
		t, err := entryType(raw)
		if err != nil {
			return nil, fmt.Errorf("condition %d: %w", i, err)
		}
		fn, ok := conditionRegistry[t]
		if !ok {
			return nil, fmt.Errorf("condition %d: %w %q", i, ErrUnknownType, t)
		}
		c, err := fn(raw, ctx)
		if err != nil {
			return nil, fmt.Errorf("condition %d (%s): %w", i, t, err)
		}
		out = append(out, c)
	}
	return out, nil
}

type deadZoneSpec struct {
	Lower float32 `yaml:"lower"`
	Upper float32 `yaml:"upper"`
	Axial bool    `yaml:"axial"`
}

func buildDeadZone(raw map[string]any, _ *buildContext) (input.Modifier, error) {
	spec, err := DecodeSpec[deadZoneSpec](raw)
	if err != nil {
		return nil, err
	}
	if spec.Upper == 0 {
		spec.Upper = 1
	}
	if spec.Lower < 0 || spec.Upper <= spec.Lower {
		return nil, fmt.Errorf("%w: dead zone [%g, %g]", input.ErrInvalidParameter, spec.Lower, spec.Upper)
	}
	return input.DeadZone{Lower: spec.Lower, Upper: spec.Upper, Axial: spec.Axial}, nil
}

type scaleSpec struct {
	Factor *float32 `yaml:"factor"`
	X      *float32 `yaml:"x"`
	Y      *float32 `yaml:"y"`
	Z      *float32 `yaml:"z"`
}

func buildScale(raw map[string]any, _ *buildContext) (input.Modifier, error) {
	spec, err := DecodeSpec[scaleSpec](raw)
	if err != nil {
		return nil, err
	}
	s := input.ScaleBy(1)
	if spec.Factor != nil {
		s = input.ScaleBy(*spec.Factor)
	}
	if spec.X != nil {
		s.X = *spec.X
	}
	if spec.Y != nil {
		s.Y = *spec.Y
	}
	if spec.Z != nil {
		s.Z = *spec.Z
	}
	return s, nil
}

type negateSpec struct {
	X   bool `yaml:"x"`
	Y   bool `yaml:"y"`
	Z   bool `yaml:"z"`
	All bool `yaml:"all"`
}

func buildNegate(raw map[string]any, _ *buildContext) (input.Modifier, error) {
	spec, err := DecodeSpec[negateSpec](raw)
	if err != nil {
		return nil, err
	}
	if spec.All || (!spec.X && !spec.Y && !spec.Z) {
		return input.NegateAll(), nil
	}
	return input.Negate{X: spec.X, Y: spec.Y, Z: spec.Z}, nil
}

type swizzleSpec struct {
	Order string `yaml:"order"`
}

func buildSwizzle(raw map[string]any, _ *buildContext) (input.Modifier, error) {
	spec, err := DecodeSpec[swizzleSpec](raw)
	if err != nil {
		return nil, err
	}
	sw, ok := input.ParseSwizzle(spec.Order)
	if !ok {
		return nil, fmt.Errorf("%w: swizzle order %q", input.ErrInvalidParameter, spec.Order)
	}
	return sw, nil
}

type smoothSpec struct {
	Tau float32 `yaml:"tau"`
}

func buildSmooth(raw map[string]any, _ *buildContext) (input.Modifier, error) {
	spec, err := DecodeSpec[smoothSpec](raw)
	if err != nil {
		return nil, err
	}
	return input.Smooth{Tau: spec.Tau}, nil
}

type accumulateSpec struct {
	Limit       float32 `yaml:"limit"`
	ResetOnZero bool    `yaml:"reset_on_zero"`
}

func buildAccumulate(raw map[string]any, _ *buildContext) (input.Modifier, error) {
	spec, err := DecodeSpec[accumulateSpec](raw)
	if err != nil {
		return nil, err
	}
	return input.AccumulateByTime{Limit: spec.Limit, ResetOnZero: spec.ResetOnZero}, nil
}

type clampSpec struct {
	Min float32 `yaml:"min"`
	Max float32 `yaml:"max"`
}

func buildClamp(raw map[string]any, _ *buildContext) (input.Modifier, error) {
	spec, err := DecodeSpec[clampSpec](raw)
	if err != nil {
		return nil, err
	}
	if spec.Max < spec.Min {
		return nil, fmt.Errorf("%w: clamp [%g, %g]", input.ErrInvalidParameter, spec.Min, spec.Max)
	}
	return input.Clamp{Min: spec.Min, Max: spec.Max}, nil
}

type curveSpec struct {
	Exponent float32 `yaml:"exponent"`
}

func buildCurve(raw map[string]any, _ *buildContext) (input.Modifier, error) {
	spec, err := DecodeSpec[curveSpec](raw)
	if err != nil {
		return nil, err
	}
	if spec.Exponent <= 0 {
		return nil, fmt.Errorf("%w: curve exponent %g", input.ErrInvalidParameter, spec.Exponent)
	}
	return input.Curve{Exponent: spec.Exponent}, nil
}

func buildDeltaScale(map[string]any, *buildContext) (input.Modifier, error) {
	return input.DeltaScale{}, nil
}

type scriptSpec struct {
	File   string         `yaml:"file"`
	Source string         `yaml:"source"`
	Params map[string]any `yaml:"params"`
}

func loadScriptSource(spec scriptSpec, ctx *buildContext) (string, []byte, error) {
	if spec.Source != "" {
		return "inline", []byte(spec.Source), nil
	}
	if spec.File == "" {
		return "", nil, fmt.Errorf("%w: script needs file or source", input.ErrInvalidParameter)
	}
	if ctx == nil || ctx.Scripts == nil {
		return "", nil, fmt.Errorf("script %s: no script loader", spec.File)
	}
	src, err := ctx.Scripts(spec.File)
	if err != nil {
		return "", nil, fmt.Errorf("script %s: %w", spec.File, err)
	}
	return spec.File, src, nil
}

func buildScriptModifier(raw map[string]any, ctx *buildContext) (input.Modifier, error) {
	spec, err := DecodeSpec[scriptSpec](raw)
	if err != nil {
		return nil, err
	}
	name, src, err := loadScriptSource(spec, ctx)
	if err != nil {
		return nil, err
	}
	return script.NewModifier(name, src, spec.Params, ctx.logger())
}

func buildScriptCondition(raw map[string]any, ctx *buildContext) (input.Condition, error) {
	spec, err := DecodeSpec[scriptSpec](raw)
	if err != nil {
		return nil, err
	}
	name, src, err := loadScriptSource(spec, ctx)
	if err != nil {
		return nil, err
	}
	return script.NewCondition(name, src, spec.Params, ctx.logger())
}

func (ctx *buildContext) logger() *slog.Logger {
	if ctx == nil || ctx.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return ctx.Logger
}

type thresholdSpec struct {
	Threshold  float32 `yaml:"threshold"`
	Continuous bool    `yaml:"continuous"`
}

func buildPressed(raw map[string]any, _ *buildContext) (input.Condition, error) {
	spec, err := DecodeSpec[thresholdSpec](raw)
	if err != nil {
		return nil, err
	}
	return input.Pressed{Threshold: spec.Threshold, Continuous: spec.Continuous}, nil
}

func buildReleased(raw map[string]any, _ *buildContext) (input.Condition, error) {
	spec, err := DecodeSpec[thresholdSpec](raw)
	if err != nil {
		return nil, err
	}
	return input.Released{Threshold: spec.Threshold}, nil
}

func buildDown(raw map[string]any, _ *buildContext) (input.Condition, error) {
	spec, err := DecodeSpec[thresholdSpec](raw)
	if err != nil {
		return nil, err
	}
	return input.Down{Threshold: spec.Threshold}, nil
}

func buildToggle(raw map[string]any, _ *buildContext) (input.Condition, error) {
	spec, err := DecodeSpec[thresholdSpec](raw)
	if err != nil {
		return nil, err
	}
	return input.Toggle{Threshold: spec.Threshold}, nil
}

type holdSpec struct {
	Duration  float32 `yaml:"duration"`
	Threshold float32 `yaml:"threshold"`
	Repeat    bool    `yaml:"repeat"`
	Interval  float32 `yaml:"interval"`
	Policy    string  `yaml:"policy"`
}

func parsePolicy(s string) (input.RepeatPolicy, error) {
	switch s {
	case "", "reset":
		return input.RepeatReset, nil
	case "carry":
		return input.RepeatCarry, nil
	}
	return input.RepeatReset, fmt.Errorf("%w: repeat policy %q", input.ErrInvalidParameter, s)
}

func buildHold(raw map[string]any, _ *buildContext) (input.Condition, error) {
	spec, err := DecodeSpec[holdSpec](raw)
	if err != nil {
		return nil, err
	}
	if spec.Duration < 0 || spec.Interval < 0 {
		return nil, fmt.Errorf("%w: negative hold duration", input.ErrInvalidParameter)
	}
	policy, err := parsePolicy(spec.Policy)
	if err != nil {
		return nil, err
	}
	return input.Hold{
		Duration:  spec.Duration,
		Threshold: spec.Threshold,
		Repeat:    spec.Repeat,
		Interval:  spec.Interval,
		Policy:    policy,
	}, nil
}

type tapSpec struct {
	MaxDuration float32 `yaml:"max_duration"`
	Threshold   float32 `yaml:"threshold"`
}

func buildTap(raw map[string]any, _ *buildContext) (input.Condition, error) {
	spec, err := DecodeSpec[tapSpec](raw)
	if err != nil {
		return nil, err
	}
	if spec.MaxDuration <= 0 {
		return nil, fmt.Errorf("%w: tap max_duration %g", input.ErrInvalidParameter, spec.MaxDuration)
	}
	return input.Tap{MaxDuration: spec.MaxDuration, Threshold: spec.Threshold}, nil
}

func buildHoldAndRelease(raw map[string]any, _ *buildContext) (input.Condition, error) {
	spec, err := DecodeSpec[holdSpec](raw)
	if err != nil {
		return nil, err
	}
	return input.HoldAndRelease{Duration: spec.Duration, Threshold: spec.Threshold}, nil
}

type pulseSpec struct {
	Interval     float32 `yaml:"interval"`
	Threshold    float32 `yaml:"threshold"`
	InitialDelay float32 `yaml:"initial_delay"`
	DelayFirst   bool    `yaml:"delay_first"`
	Limit        int     `yaml:"limit"`
	Policy       string  `yaml:"policy"`
}

func buildPulse(raw map[string]any, _ *buildContext) (input.Condition, error) {
	spec, err := DecodeSpec[pulseSpec](raw)
	if err != nil {
		return nil, err
	}
	if spec.Interval <= 0 {
		return nil, fmt.Errorf("%w: pulse interval %g", input.ErrInvalidParameter, spec.Interval)
	}
	policy, err := parsePolicy(spec.Policy)
	if err != nil {
		return nil, err
	}
	return input.Pulse{
		Interval:     spec.Interval,
		Threshold:    spec.Threshold,
		InitialDelay: spec.InitialDelay,
		DelayFirst:   spec.DelayFirst,
		Limit:        spec.Limit,
		Policy:       policy,
	}, nil
}

type chordSpec struct {
	Actions  []string `yaml:"actions"`
	Requires []struct {
		Action string `yaml:"action"`
		State  string `yaml:"state"`
	} `yaml:"requires"`
}

func buildChord(raw map[string]any, _ *buildContext) (input.Condition, error) {
	spec, err := DecodeSpec[chordSpec](raw)
	if err != nil {
		return nil, err
	}
	c := input.ChordOf(spec.Actions...)
	for _, r := range spec.Requires {
		st, err := input.ParseState(r.State)
		if err != nil {
			return nil, err
		}
		c.Requires = append(c.Requires, input.ChordRequirement{Action: r.Action, State: st})
	}
	if len(c.Requires) == 0 {
		return nil, fmt.Errorf("%w: chord without actions", input.ErrInvalidParameter)
	}
	return c, nil
}

type comboSpec struct {
	Steps []struct {
		Action  string   `yaml:"action"`
		Events  []string `yaml:"events"`
		Timeout float32  `yaml:"timeout"`
	} `yaml:"steps"`
	Cancel []struct {
		Action string   `yaml:"action"`
		Events []string `yaml:"events"`
	} `yaml:"cancel"`
}

func parseEvents(names []string) (input.EventSet, error) {
	var set input.EventSet
	for _, n := range names {
		k, err := input.ParseEventKind(n)
		if err != nil {
			return 0, err
		}
		set = set.With(k)
	}
	return set, nil
}

func buildCombo(raw map[string]any, _ *buildContext) (input.Condition, error) {
	spec, err := DecodeSpec[comboSpec](raw)
	if err != nil {
		return nil, err
	}
	if len(spec.Steps) == 0 {
		return nil, fmt.Errorf("%w: combo without steps", input.ErrInvalidParameter)
	}
	var c input.Combo
	for _, s := range spec.Steps {
		events, err := parseEvents(s.Events)
		if err != nil {
			return nil, err
		}
		c.Steps = append(c.Steps, input.ComboStep{Action: s.Action, Events: events, Timeout: s.Timeout})
	}
	for _, x := range spec.Cancel {
		events, err := parseEvents(x.Events)
		if err != nil {
			return nil, err
		}
		c.Cancel = append(c.Cancel, input.ComboCancel{Action: x.Action, Events: events})
	}
	return c, nil
}

type cooldownSpec struct {
	Duration  float32 `yaml:"duration"`
	Threshold float32 `yaml:"threshold"`
}

func buildCooldown(raw map[string]any, _ *buildContext) (input.Condition, error) {
	spec, err := DecodeSpec[cooldownSpec](raw)
	if err != nil {
		return nil, err
	}
	return input.Cooldown{Duration: spec.Duration, Threshold: spec.Threshold}, nil
}

type blockBySpec struct {
	Actions []string `yaml:"actions"`
}

func buildBlockBy(raw map[string]any, _ *buildContext) (input.Condition, error) {
	spec, err := DecodeSpec[blockBySpec](raw)
	if err != nil {
		return nil, err
	}
	if len(spec.Actions) == 0 {
		return nil, fmt.Errorf("%w: block_by without actions", input.ErrInvalidParameter)
	}
	return input.BlockBy{Actions: spec.Actions}, nil
}

// presetSpec names either a built-in set or explicit sources.
type presetSpec struct {
	Set      string `yaml:"set"`
	Positive string `yaml:"positive"`
	Negative string `yaml:"negative"`

	North     string `yaml:"north"`
	NorthEast string `yaml:"north_east"`
	East      string `yaml:"east"`
	SouthEast string `yaml:"south_east"`
	South     string `yaml:"south"`
	SouthWest string `yaml:"south_west"`
	West      string `yaml:"west"`
	NorthWest string `yaml:"north_west"`

	X string `yaml:"x"`
	Y string `yaml:"y"`

	Forward  string `yaml:"forward"`
	Backward string `yaml:"backward"`
	Left     string `yaml:"left"`
	Right    string `yaml:"right"`
	Up       string `yaml:"up"`
	Down     string `yaml:"down"`
}

func unknownSet(kind, set string) error {
	return fmt.Errorf("%w: %s set %q", input.ErrInvalidParameter, kind, set)
}

func buildBidirectional(raw map[string]any) (input.Preset, error) {
	spec, err := DecodeSpec[presetSpec](raw)
	if err != nil {
		return nil, err
	}
	return input.Bidirectional{Positive: input.SourceID(spec.Positive), Negative: input.SourceID(spec.Negative)}, nil
}

func buildCardinal(raw map[string]any) (input.Preset, error) {
	spec, err := DecodeSpec[presetSpec](raw)
	if err != nil {
		return nil, err
	}
	switch spec.Set {
	case "wasd":
		return input.WASD(), nil
	case "arrows":
		return input.Arrows(), nil
	case "dpad":
		return input.DPad(), nil
	case "":
		return input.Cardinal{
			North: input.SourceID(spec.North),
			East:  input.SourceID(spec.East),
			South: input.SourceID(spec.South),
			West:  input.SourceID(spec.West),
		}, nil
	}
	return nil, unknownSet("cardinal", spec.Set)
}

func buildAxial(raw map[string]any) (input.Preset, error) {
	spec, err := DecodeSpec[presetSpec](raw)
	if err != nil {
		return nil, err
	}
	switch spec.Set {
	case "left_stick":
		return input.LeftStick(), nil
	case "right_stick":
		return input.RightStick(), nil
	case "":
		return input.Axial{X: input.SourceID(spec.X), Y: input.SourceID(spec.Y)}, nil
	}
	return nil, unknownSet("axial", spec.Set)
}

func buildOrdinal(raw map[string]any) (input.Preset, error) {
	spec, err := DecodeSpec[presetSpec](raw)
	if err != nil {
		return nil, err
	}
	switch spec.Set {
	case "numpad":
		return input.Numpad(), nil
	case "":
		return input.Ordinal{
			North:     input.SourceID(spec.North),
			NorthEast: input.SourceID(spec.NorthEast),
			East:      input.SourceID(spec.East),
			SouthEast: input.SourceID(spec.SouthEast),
			South:     input.SourceID(spec.South),
			SouthWest: input.SourceID(spec.SouthWest),
			West:      input.SourceID(spec.West),
			NorthWest: input.SourceID(spec.NorthWest),
		}, nil
	}
	return nil, unknownSet("ordinal", spec.Set)
}

func buildSpatial(raw map[string]any) (input.Preset, error) {
	spec, err := DecodeSpec[presetSpec](raw)
	if err != nil {
		return nil, err
	}
	if spec.Set == "wasd" {
		return input.WASDAnd(input.SourceID(spec.Up), input.SourceID(spec.Down)), nil
	}
	if spec.Set != "" {
		return nil, unknownSet("spatial", spec.Set)
	}
	return input.Spatial{
		Forward:  input.SourceID(spec.Forward),
		Backward: input.SourceID(spec.Backward),
		Left:     input.SourceID(spec.Left),
		Right:    input.SourceID(spec.Right),
		Up:       input.SourceID(spec.Up),
		Down:     input.SourceID(spec.Down),
	}, nil
}
