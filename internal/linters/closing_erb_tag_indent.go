package linters

import (
	"fmt"
	"strings"

	"erblint/internal/diag"
	"erblint/internal/fix"
	"erblint/internal/lint"
	"erblint/internal/source"
)

// ClosingErbTagIndentOptions has no settings.
type ClosingErbTagIndentOptions struct{}

// ClosingErbTagIndent keeps the closing %> of a multi-line tag in line with its opening <%.
type ClosingErbTagIndent struct{}

func NewClosingErbTagIndent(ClosingErbTagIndentOptions) (lint.Rule, error) {
	return &ClosingErbTagIndent{}, nil
}

func (r *ClosingErbTagIndent) Name() string { return NameClosingErbTagIndent }

func (r *ClosingErbTagIndent) Run(doc *lint.Document, rep diag.Reporter) error {
	for _, erb := range doc.Tree.Erbs {
		if !erb.Closed {
			continue
		}
		startSpaces := leadingSpace(erb.Code)
		endSpaces := trailingSpace(erb.Code)
		startNL := strings.Contains(startSpaces, "\n")
		endNL := strings.Contains(endSpaces, "\n")
		codeEnd := erb.CodeSpan.End

		switch {
		case !startNL && endNL:
			rng := doc.ToSourceRange(source.Span{Start: codeEnd - offsetOf(len(endSpaces)), End: codeEnd})
			diag.ReportOffense(rep, r.Name(), rng, "Remove newline before `%>` to match start of tag.").
				WithContext(replacementContext{Text: " "}).Emit()
		case startNL && !endNL:
			rng := doc.ToSourceRange(source.Span{Start: codeEnd - offsetOf(len(endSpaces)), End: codeEnd})
			diag.ReportOffense(rep, r.Name(), rng, "Insert newline before `%>` to match start of tag.").
				WithContext(replacementContext{Text: "\n"}).Emit()
		case startNL && endNL:
			indent := endSpaces[strings.LastIndexByte(endSpaces, '\n')+1:]
			col := column(doc, erb.Span.Start)
			if col == len([]rune(indent)) {
				continue
			}
			rng := doc.ToSourceRange(source.Span{Start: codeEnd - offsetOf(len(indent)), End: codeEnd})
			diag.ReportOffense(rep, r.Name(), rng, fmt.Sprintf("Indent `%%>` on column %d to match start of tag.", col)).
				WithContext(replacementContext{Text: strings.Repeat(" ", col)}).Emit()
		}
	}
	return nil
}

func (r *ClosingErbTagIndent) Autocorrect(_ *lint.Document, off diag.Offense) (fix.Procedure, error) {
	return replaceWithContext(off)
}
