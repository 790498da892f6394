package linters

import (
	"bytes"

	"erblint/internal/diag"
	"erblint/internal/fix"
	"erblint/internal/lint"
)

// TrailingWhitespaceOptions has no settings.
type TrailingWhitespaceOptions struct{}

// TrailingWhitespace reports whitespace before a line break or the end of the file.
type TrailingWhitespace struct{}

func NewTrailingWhitespace(TrailingWhitespaceOptions) (lint.Rule, error) {
	return &TrailingWhitespace{}, nil
}

func (r *TrailingWhitespace) Name() string { return NameTrailingWhitespace }

func (r *TrailingWhitespace) Run(doc *lint.Document, rep diag.Reporter) error {
	content := doc.Content()
	lineStart := 0
	for lineStart <= len(content) {
		lineEnd := bytes.IndexByte(content[lineStart:], '\n')
		if lineEnd < 0 {
			lineEnd = len(content)
		} else {
			lineEnd += lineStart
		}
		ws := trailingSpace(string(content[lineStart:lineEnd]))
		if ws != "" {
			rng := doc.Range(offsetOf(lineEnd-len(ws)), offsetOf(lineEnd))
			diag.ReportOffense(rep, r.Name(), rng, "Extra whitespace detected at end of line.").Emit()
		}
		lineStart = lineEnd + 1
	}
	return nil
}

func (r *TrailingWhitespace) Autocorrect(_ *lint.Document, off diag.Offense) (fix.Procedure, error) {
	return func(s *fix.Splicer) error {
		return s.Remove(off.Range)
	}, nil
}
