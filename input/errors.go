package input

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownAction         = errors.New("input: unknown action")
	ErrDuplicateBinding      = errors.New("input: duplicate binding")
	ErrCyclicChordDependency = errors.New("input: cyclic chord dependency")
	ErrDuplicateAction       = errors.New("input: duplicate action")
	ErrUnknownContext        = errors.New("input: unknown context")
	ErrDuplicateContext      = errors.New("input: duplicate context")
	ErrInvalidParameter      = errors.New("input: invalid parameter")
	ErrUnknownBinding        = errors.New("input: unknown binding")
)

// ConfigError reports a configuration rejected at bind time.
type ConfigError struct {
	Kind   error
	Action string
	Detail string
}

func (e *ConfigError) Error() string {
	switch {
	case e.Action != "" && e.Detail != "":
		return fmt.Sprintf("%v: %q: %s", e.Kind, e.Action, e.Detail)
	case e.Action != "":
		return fmt.Sprintf("%v: %q", e.Kind, e.Action)
	case e.Detail != "":
		return fmt.Sprintf("%v: %s", e.Kind, e.Detail)
	}
	return e.Kind.Error()
}

func (e *ConfigError) Unwrap() error { return e.Kind }

func configErr(kind error, action, format string, args ...any) *ConfigError {
	return &ConfigError{Kind: kind, Action: action, Detail: fmt.Sprintf(format, args...)}
}
