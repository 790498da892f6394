package diag

import (
	"fmt"

	"erblint/internal/source"
)

// Offense is a single rule violation. It is an immutable value: two offenses are
// equal when every field, including Context, is equal.
type Offense struct {
	Linter   string
	Range    source.Range
	Message  string
	Severity Severity
	// Context carries rule-private data for autocorrection (e.g. replacement text).
	// Only comparable values may be stored here.
	Context any
}

// New builds an error-level offense without context.
func New(linter string, rng source.Range, msg string) Offense {
	return Offense{
		Linter:   linter,
		Range:    rng,
		Message:  msg,
		Severity: SevError,
	}
}

// WithContext returns a copy of o carrying ctx.
func (o Offense) WithContext(ctx any) Offense {
	o.Context = ctx
	return o
}

func (o Offense) String() string {
	return fmt.Sprintf("%s %s: %s", o.Linter, o.Range, o.Message)
}
