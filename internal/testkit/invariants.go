package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"erblint/internal/diag"
	"erblint/internal/markup"
	"erblint/internal/source"
)

// CheckTreeInvariants runs a minimal set of span invariants on a parsed document:
// 1) every node span is non-empty, inside the content and after the previous node
// 2) tag names and attributes lie inside their tag
// 3) the parts of every ERB tag tile its span in order
// 4) parse error spans lie inside the content
func CheckTreeInvariants(tree *markup.Tree) error {
	if tree == nil || tree.File == nil {
		return fmt.Errorf("nil tree or file")
	}
	size, err := safecast.Conv[uint32](len(tree.File.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	inBounds := func(sp source.Span) bool {
		return sp.Start <= sp.End && sp.End <= size
	}

	var prevEnd uint32
	for i, n := range tree.Nodes {
		if n.Span.Empty() || !inBounds(n.Span) {
			return fmt.Errorf("node %d (%s): bad span %v", i, n.Kind, n.Span)
		}
		if n.Span.Start < prevEnd {
			return fmt.Errorf("node %d (%s): span %v overlaps previous end %d", i, n.Kind, n.Span, prevEnd)
		}
		prevEnd = n.Span.End

		if n.Kind != markup.KindTag {
			continue
		}
		tag := n.Tag
		if !n.Span.Contains(tag.NameSpan) {
			return fmt.Errorf("tag %q: name %v outside %v", tag.Name, tag.NameSpan, n.Span)
		}
		for _, a := range tag.Attrs {
			if !n.Span.Contains(a.Span) {
				return fmt.Errorf("tag %q: attribute %q %v outside %v", tag.Name, a.Name, a.Span, n.Span)
			}
			if a.HasValue && !a.Span.Contains(a.ValueSpan) {
				return fmt.Errorf("attribute %q: value %v outside %v", a.Name, a.ValueSpan, a.Span)
			}
		}
		if tag.HasBody && (tag.Body.Start < n.Span.End || !inBounds(tag.Body)) {
			return fmt.Errorf("tag %q: body %v", tag.Name, tag.Body)
		}
	}

	for i, e := range tree.Erbs {
		if !inBounds(e.Span) {
			return fmt.Errorf("erb %d: span %v out of bounds", i, e.Span)
		}
		parts := []source.Span{e.Open, e.LTrimSpan, e.IndicatorSpan, e.CodeSpan, e.RTrimSpan, e.Close}
		at := e.Span.Start
		for j, sp := range parts {
			if sp.Start != at || sp.End < sp.Start {
				return fmt.Errorf("erb %d: part %d %v does not continue at %d", i, j, sp, at)
			}
			at = sp.End
		}
		if at != e.Span.End {
			return fmt.Errorf("erb %d: parts end at %d, span ends at %d", i, at, e.Span.End)
		}
	}
	for i, pe := range tree.Errors {
		if !inBounds(pe.Span) {
			return fmt.Errorf("parse error %d (%s): span %v out of bounds (len %d)", i, pe.Message, pe.Span, size)
		}
	}
	return nil
}

// CheckOffenses verifies that every offense range lies inside content and caches
// exactly the text it covers.
func CheckOffenses(content []byte, offenses []diag.Offense) error {
	for _, o := range offenses {
		r := o.Range
		if r.Begin > r.End || int(r.End) > len(content) {
			return fmt.Errorf("%s: range %s out of bounds (len %d)", o.Linter, r, len(content))
		}
		if got := string(content[r.Begin:r.End]); got != r.Text {
			return fmt.Errorf("%s: range %s caches %q, content has %q", o.Linter, r, r.Text, got)
		}
	}
	return nil
}
