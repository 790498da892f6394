package linters

import (
	"fmt"

	"erblint/internal/diag"
	"erblint/internal/lint"
)

// ParserErrorsOptions has no settings.
type ParserErrorsOptions struct{}

// ParserErrors turns recovered parse errors into offenses.
type ParserErrors struct{}

func NewParserErrors(ParserErrorsOptions) (lint.Rule, error) {
	return &ParserErrors{}, nil
}

func (r *ParserErrors) Name() string { return NameParserErrors }

func (r *ParserErrors) Run(doc *lint.Document, rep diag.Reporter) error {
	for _, perr := range doc.Tree.Errors {
		rng := doc.ToSourceRange(perr.Span)
		diag.ReportOffense(rep, r.Name(), rng, fmt.Sprintf("%s (at %s)", perr.Message, rng.Text)).Emit()
	}
	return nil
}
