package linters

import (
	"erblint/internal/diag"
	"erblint/internal/fix"
	"erblint/internal/lint"
)

// ExtraNewlineOptions has no settings.
type ExtraNewlineOptions struct{}

// ExtraNewline reports every run of three or more newlines, i.e. more than one blank line.
type ExtraNewline struct{}

func NewExtraNewline(ExtraNewlineOptions) (lint.Rule, error) {
	return &ExtraNewline{}, nil
}

func (r *ExtraNewline) Name() string { return NameExtraNewline }

func (r *ExtraNewline) Run(doc *lint.Document, rep diag.Reporter) error {
	content := doc.Content()
	for i := 0; i < len(content); {
		if content[i] != '\n' {
			i++
			continue
		}
		start := i
		for i < len(content) && content[i] == '\n' {
			i++
		}
		if i-start >= 3 {
			// первые два перевода строки оставляем: одна пустая строка допустима
			rng := doc.Range(offsetOf(start+2), offsetOf(i))
			diag.ReportOffense(rep, r.Name(), rng, "Extra blank line detected.").Emit()
		}
	}
	return nil
}

func (r *ExtraNewline) Autocorrect(_ *lint.Document, off diag.Offense) (fix.Procedure, error) {
	return func(s *fix.Splicer) error {
		return s.Remove(off.Range)
	}, nil
}
