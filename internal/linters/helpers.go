package linters

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"fortio.org/safecast"

	"erblint/internal/diag"
	"erblint/internal/fix"
	"erblint/internal/lint"
)

// offsetOf converts a byte count or index into a document offset.
func offsetOf(n int) uint32 {
	off, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("offset overflow: %w", err))
	}
	return off
}

func leadingSpace(s string) string {
	return s[:len(s)-len(strings.TrimLeftFunc(s, unicode.IsSpace))]
}

func trailingSpace(s string) string {
	return s[len(strings.TrimRightFunc(s, unicode.IsSpace)):]
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// column returns the 0-based character column of off in doc's own content.
func column(doc *lint.Document, off uint32) int {
	content := doc.Content()
	lineStart := bytes.LastIndexByte(content[:off], '\n') + 1
	return utf8.RuneCount(content[lineStart:off])
}

// replacementContext is the Context of offenses fixed by replacing their range.
type replacementContext struct {
	Text string
}

// replaceWithContext is the Autocorrect of every rule whose offenses carry a replacementContext.
func replaceWithContext(off diag.Offense) (fix.Procedure, error) {
	ctx, ok := off.Context.(replacementContext)
	if !ok {
		return nil, nil
	}
	return func(s *fix.Splicer) error {
		return s.Replace(off.Range, ctx.Text)
	}, nil
}
