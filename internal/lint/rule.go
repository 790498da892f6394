package lint

import (
	"erblint/internal/diag"
	"erblint/internal/fix"
)

// Rule inspects one document and reports offenses. Run must be deterministic and
// depend only on the document and the rule's options.
type Rule interface {
	Name() string
	Run(doc *Document, r diag.Reporter) error
}

// Corrector is implemented by rules that can fix their own offenses.
// A nil procedure (or ErrMissingDependency) means "no correction".
type Corrector interface {
	Autocorrect(doc *Document, off diag.Offense) (fix.Procedure, error)
}
