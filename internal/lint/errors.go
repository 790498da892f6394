package lint

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownLinter is reported for config entries naming no registered linter.
	ErrUnknownLinter = errors.New("unknown linter")
	// ErrUnknownOption is reported for option keys the linter does not define.
	ErrUnknownOption = errors.New("unknown option")
	// ErrInvalidOption is reported when an option value fails decoding or validation.
	ErrInvalidOption = errors.New("invalid option")
	// ErrMissingDependency means an optional resource needed only for autocorrection is
	// absent. Autocorrect returning it is treated as "no correction".
	ErrMissingDependency = errors.New("missing dependency")
)

// ConfigError is a fatal configuration problem detected while building a Plan.
type ConfigError struct {
	Linter string
	Key    string
	Err    error
}

func (e *ConfigError) Error() string {
	switch {
	case e.Linter == "":
		return fmt.Sprintf("config: %v", e.Err)
	case e.Key == "":
		return fmt.Sprintf("config: linter %s: %v", e.Linter, e.Err)
	default:
		return fmt.Sprintf("config: linter %s: option %q: %v", e.Linter, e.Key, e.Err)
	}
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
