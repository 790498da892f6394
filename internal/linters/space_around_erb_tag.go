package linters

import (
	"fmt"
	"strings"

	"erblint/internal/diag"
	"erblint/internal/fix"
	"erblint/internal/lint"
	"erblint/internal/source"
)

// SpaceAroundErbTagOptions has no settings.
type SpaceAroundErbTagOptions struct{}

// SpaceAroundErbTag requires one space (or a single newline) after <% and before %>.
type SpaceAroundErbTag struct{}

func NewSpaceAroundErbTag(SpaceAroundErbTagOptions) (lint.Rule, error) {
	return &SpaceAroundErbTag{}, nil
}

func (r *SpaceAroundErbTag) Name() string { return NameSpaceAroundErbTag }

func (r *SpaceAroundErbTag) Run(doc *lint.Document, rep diag.Reporter) error {
	for _, erb := range doc.Tree.Erbs {
		if !erb.Closed || erb.IsComment() || erb.IsLiteral() || strings.TrimSpace(erb.Code) == "" {
			continue
		}
		open := "<%" + erb.LTrim + erb.Indicator
		closing := erb.RTrim + "%>"
		code := erb.CodeSpan

		start := leadingSpace(erb.Code)
		startRng := doc.ToSourceRange(source.Span{Start: code.Start, End: code.Start + offsetOf(len(start))})
		if n := strings.Count(start, "\n"); n == 0 && len(start) != 1 {
			msg := fmt.Sprintf("Use 1 space after `%s` instead of %d %s.", open, len(start), plural(len(start), "space"))
			diag.ReportOffense(rep, r.Name(), startRng, msg).WithContext(replacementContext{Text: " "}).Emit()
		} else if n > 1 {
			msg := fmt.Sprintf("Use 1 newline after `%s` instead of %d.", open, n)
			diag.ReportOffense(rep, r.Name(), startRng, msg).WithContext(replacementContext{Text: collapseNewlines(start)}).Emit()
		}

		end := trailingSpace(erb.Code)
		endRng := doc.ToSourceRange(source.Span{Start: code.End - offsetOf(len(end)), End: code.End})
		if n := strings.Count(end, "\n"); n == 0 && len(end) != 1 {
			msg := fmt.Sprintf("Use 1 space before `%s` instead of %d %s.", closing, len(end), plural(len(end), "space"))
			diag.ReportOffense(rep, r.Name(), endRng, msg).WithContext(replacementContext{Text: " "}).Emit()
		} else if n > 1 {
			msg := fmt.Sprintf("Use 1 newline before `%s` instead of %d.", closing, n)
			diag.ReportOffense(rep, r.Name(), endRng, msg).WithContext(replacementContext{Text: collapseNewlines(end)}).Emit()
		}
	}
	return nil
}

// collapseNewlines keeps the text before the first and after the last newline.
func collapseNewlines(ws string) string {
	first := ws[:strings.IndexByte(ws, '\n')]
	last := ws[strings.LastIndexByte(ws, '\n')+1:]
	return first + "\n" + last
}

func (r *SpaceAroundErbTag) Autocorrect(_ *lint.Document, off diag.Offense) (fix.Procedure, error) {
	return replaceWithContext(off)
}
