package modcod

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownModcod    = errors.New("unknown modcod")
	ErrUnsupported      = errors.New("unsupported combination")
	ErrInvalidParameter = errors.New("invalid parameter")
)

// ConfigError is returned by every constructor that validates session
// parameters. It is fatal to the session that produced it.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("config %s=%v: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("config %s=%v: %v: %s", e.Field, e.Value, e.Err, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Invalid builds a ConfigError for an out of range parameter.
func Invalid(field string, value any, reason string) *ConfigError {
	return &ConfigError{Field: field, Value: value, Reason: reason, Err: ErrInvalidParameter}
}

// Unsupported builds a ConfigError for a parameter combination with no coding tables.
func Unsupported(field string, value any, reason string) *ConfigError {
	return &ConfigError{Field: field, Value: value, Reason: reason, Err: ErrUnsupported}
}

// IsConfigError reports whether err carries a ConfigError anywhere in its chain.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
