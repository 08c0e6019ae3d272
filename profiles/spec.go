package profiles

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ProfileSpec is the on-disk form of a pipeline configuration.
type ProfileSpec struct {
	Name     string        `yaml:"name" toml:"name"`
	Contexts []ContextSpec `yaml:"contexts" toml:"contexts"`
}

type ContextSpec struct {
	Name        string       `yaml:"name" toml:"name"`
	Priority    int          `yaml:"priority" toml:"priority"`
	Passthrough bool         `yaml:"passthrough" toml:"passthrough"`
	Inactive    bool         `yaml:"inactive" toml:"inactive"`
	Actions     []ActionSpec `yaml:"actions" toml:"actions"`
}

type ActionSpec struct {
	Key             string           `yaml:"key" toml:"key"`
	Kind            string           `yaml:"kind" toml:"kind"`
	Aggregation     string           `yaml:"aggregation" toml:"aggregation"`
	SuppressRepeats bool             `yaml:"suppress_repeats" toml:"suppress_repeats"`
	RequireReset    bool             `yaml:"require_reset" toml:"require_reset"`
	Modifiers       []map[string]any `yaml:"modifiers" toml:"modifiers"`
	Conditions      []map[string]any `yaml:"conditions" toml:"conditions"`
	Presets         []map[string]any `yaml:"presets" toml:"presets"`
	Bindings        []BindingSpec    `yaml:"bindings" toml:"bindings"`
}

type BindingSpec struct {
	Source      string           `yaml:"source" toml:"source"`
	Passthrough bool             `yaml:"passthrough" toml:"passthrough"`
	ModKeys     []string         `yaml:"mod_keys" toml:"mod_keys"`
	Modifiers   []map[string]any `yaml:"modifiers" toml:"modifiers"`
	Conditions  []map[string]any `yaml:"conditions" toml:"conditions"`
}

// Format is a profile encoding.
type Format int

const (
	YAML Format = iota
	TOML
)

const scriptExt = ".tengo"

var profileFormats = map[string]Format{
	".yaml": YAML,
	".yml":  YAML,
	".toml": TOML,
}

func profileFormat(name string) (Format, bool) {
	f, ok := profileFormats[strings.ToLower(filepath.Ext(name))]
	return f, ok
}

// FormatOf picks the encoding from a file extension; anything unknown is YAML.
func FormatOf(name string) Format {
	f, _ := profileFormat(name)
	return f
}

// DecodeProfile parses a profile in the given format.
func DecodeProfile(data []byte, format Format) (ProfileSpec, error) {
	var spec ProfileSpec
	switch format {
	case TOML:
		if err := toml.Unmarshal(data, &spec); err != nil {
			return ProfileSpec{}, err
		}
	default:
		if err := yaml.Unmarshal(data, &spec); err != nil {
			return ProfileSpec{}, err
		}
	}
	return spec, nil
}

// LoadSpec reads name from the store and decodes it as YAML.
func LoadSpec[T any](s *Store, name string) (T, error) {
	var zero T
	data, err := s.Load(name)
	if err != nil {
		return zero, fmt.Errorf("profiles: load %s: %w", name, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("profiles: unmarshal %s: %w", name, err)
	}

	return spec, nil
}

// LoadProfile reads and decodes a profile, choosing the format by extension.
func (s *Store) LoadProfile(name string) (ProfileSpec, error) {
	data, err := s.Load(name)
	if err != nil {
		return ProfileSpec{}, fmt.Errorf("profiles: load %s: %w", name, err)
	}
	spec, err := DecodeProfile(data, FormatOf(name))
	if err != nil {
		return ProfileSpec{}, fmt.Errorf("profiles: unmarshal %s: %w", name, err)
	}
	if spec.Name == "" {
		spec.Name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}
	return spec, nil
}

// DecodeSpec re-decodes a loosely typed entry into T through YAML, so that
// registry builders can declare typed parameter structs.
func DecodeSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}
