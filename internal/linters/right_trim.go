package linters

import (
	"fmt"

	"erblint/internal/diag"
	"erblint/internal/fix"
	"erblint/internal/lint"
)

// RightTrimOptions configures RightTrim.
type RightTrimOptions struct {
	EnforcedStyle string `yaml:"enforced_style" validate:"oneof=- ="`
}

func defaultRightTrimOptions() RightTrimOptions {
	return RightTrimOptions{EnforcedStyle: "-"}
}

// RightTrim enforces one spelling of the right-trim marker before %>.
type RightTrim struct {
	opts RightTrimOptions
}

func NewRightTrim(opts RightTrimOptions) (lint.Rule, error) {
	return &RightTrim{opts: opts}, nil
}

func (r *RightTrim) Name() string { return NameRightTrim }

func (r *RightTrim) Run(doc *lint.Document, rep diag.Reporter) error {
	for _, erb := range doc.Tree.Erbs {
		if erb.RTrim == "" || erb.RTrim == r.opts.EnforcedStyle {
			continue
		}
		msg := fmt.Sprintf("Prefer %s%%> instead of %s%%> for trimming on the right.", r.opts.EnforcedStyle, erb.RTrim)
		diag.ReportOffense(rep, r.Name(), doc.ToSourceRange(erb.RTrimSpan), msg).Emit()
	}
	return nil
}

func (r *RightTrim) Autocorrect(_ *lint.Document, off diag.Offense) (fix.Procedure, error) {
	style := r.opts.EnforcedStyle
	return func(s *fix.Splicer) error {
		return s.Replace(off.Range, style)
	}, nil
}
