package profiles

import (
	"fmt"
	"log/slog"

	"github.com/milk9111/actioninput/input"
)

// BuildOptions supplies what a profile needs beyond its own text.
type BuildOptions struct {
	// Scripts resolves script file names; nil rejects file-backed scripts.
	Scripts func(name string) ([]byte, error)
	Logger  *slog.Logger
	// Pipeline is passed through to input.NewBuilder.
	Pipeline []input.Option
}

// Build turns a profile into a validated pipeline.
func Build(spec ProfileSpec, opts BuildOptions) (*input.Pipeline, error) {
	ctx := &buildContext{Scripts: opts.Scripts, Logger: opts.Logger}
	b := input.NewBuilder(opts.Pipeline...)

	for _, cs := range spec.Contexts {
		b.AddContext(input.Context{
			Name:        cs.Name,
			Priority:    cs.Priority,
			Passthrough: cs.Passthrough,
			Inactive:    cs.Inactive,
		})
		if err := b.Err(); err != nil {
			return nil, fmt.Errorf("profiles: %s: %w", spec.Name, err)
		}
		for _, as := range cs.Actions {
			if err := addAction(b, cs.Name, as, ctx); err != nil {
				return nil, fmt.Errorf("profiles: %s: context %q: action %q: %w", spec.Name, cs.Name, as.Key, err)
			}
		}
	}

	p, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("profiles: %s: %w", spec.Name, err)
	}
	return p, nil
}

func addAction(b *input.Builder, context string, as ActionSpec, ctx *buildContext) error {
	kind, err := input.ParseKind(as.Kind)
	if err != nil {
		return err
	}
	agg, err := input.ParseAggregation(as.Aggregation)
	if err != nil {
		return err
	}
	mods, err := buildModifiers(as.Modifiers, ctx)
	if err != nil {
		return err
	}
	conds, err := buildConditions(as.Conditions, ctx)
	if err != nil {
		return err
	}

	b.AddAction(context, input.Action{
		Key:             as.Key,
		Kind:            kind,
		Aggregation:     agg,
		Modifiers:       mods,
		Conditions:      conds,
		SuppressRepeats: as.SuppressRepeats,
		RequireReset:    as.RequireReset,
	})
	if err := b.Err(); err != nil {
		return err
	}

	for i, raw := range as.Presets {
		if err := bindPreset(b, as.Key, raw, ctx); err != nil {
			return fmt.Errorf("preset %d: %w", i, err)
		}
	}
	for i, bs := range as.Bindings {
		bind, err := binding(bs, ctx)
		if err != nil {
			return fmt.Errorf("binding %d (%s): %w", i, bs.Source, err)
		}
		if _, err := b.Bind(as.Key, bind); err != nil {
			return err
		}
	}
	return nil
}

func binding(bs BindingSpec, ctx *buildContext) (input.Binding, error) {
	mods, err := buildModifiers(bs.Modifiers, ctx)
	if err != nil {
		return input.Binding{}, err
	}
	conds, err := buildConditions(bs.Conditions, ctx)
	if err != nil {
		return input.Binding{}, err
	}
	keys, err := input.ParseModKeys(bs.ModKeys...)
	if err != nil {
		return input.Binding{}, err
	}
	return input.Binding{
		Source:      input.SourceID(bs.Source),
		ModKeys:     keys,
		Modifiers:   mods,
		Conditions:  conds,
		Passthrough: bs.Passthrough,
	}, nil
}

// presetExtras are the keys a preset entry may carry on top of its sources;
// they are appended to every binding the preset produces.
type presetExtras struct {
	ModKeys    []string         `yaml:"mod_keys"`
	Modifiers  []map[string]any `yaml:"modifiers"`
	Conditions []map[string]any `yaml:"conditions"`
}

func bindPreset(b *input.Builder, action string, raw map[string]any, ctx *buildContext) error {
	t, err := entryType(raw)
	if err != nil {
		return err
	}
	fn, ok := presetRegistry[t]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownType, t)
	}
	preset, err := fn(raw)
	if err != nil {
		return err
	}
	extras, err := DecodeSpec[presetExtras](raw)
	if err != nil {
		return err
	}
	keys, err := input.ParseModKeys(extras.ModKeys...)
	if err != nil {
		return err
	}

	for _, bind := range preset.Bindings() {
		// Each binding gets its own instances so scripted extras never share
		// memory across sources.
		mods, err := buildModifiers(extras.Modifiers, ctx)
		if err != nil {
			return err
		}
		conds, err := buildConditions(extras.Conditions, ctx)
		if err != nil {
			return err
		}
		bind.ModKeys |= keys
		bind.Modifiers = append(bind.Modifiers, mods...)
		bind.Conditions = append(bind.Conditions, conds...)
		if _, err := b.Bind(action, bind); err != nil {
			return err
		}
	}
	return nil
}

// Pipeline loads the named profile and builds it, resolving scripts from s.
func (s *Store) Pipeline(name string, opts ...input.Option) (*input.Pipeline, error) {
	spec, err := s.LoadProfile(name)
	if err != nil {
		return nil, err
	}
	logger := s.logger()
	p, err := Build(spec, BuildOptions{
		Scripts:  s.LoadScript,
		Logger:   logger,
		Pipeline: append([]input.Option{input.WithLogger(logger)}, opts...),
	})
	if err != nil {
		return nil, err
	}
	logger.Info("profiles: loaded", "profile", spec.Name, "file", name, "sources", len(p.Sources()))
	return p, nil
}
