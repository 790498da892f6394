package linters

import (
	"fmt"

	"erblint/internal/diag"
	"erblint/internal/fix"
	"erblint/internal/lint"
)

// FinalNewlineOptions configures FinalNewline.
type FinalNewlineOptions struct {
	Present bool `yaml:"present"`
}

func defaultFinalNewlineOptions() FinalNewlineOptions {
	return FinalNewlineOptions{Present: true}
}

type finalNewlineAction uint8

const (
	finalNewlineInsert finalNewlineAction = iota + 1
	finalNewlineRemove
)

// FinalNewline requires exactly one trailing newline, or none when Present is false.
type FinalNewline struct {
	opts FinalNewlineOptions
}

func NewFinalNewline(opts FinalNewlineOptions) (lint.Rule, error) {
	return &FinalNewline{opts: opts}, nil
}

func (r *FinalNewline) Name() string { return NameFinalNewline }

func (r *FinalNewline) Run(doc *lint.Document, rep diag.Reporter) error {
	size := doc.Len()
	if size == 0 {
		return nil
	}
	content := doc.Content()
	start := size
	for start > 0 && content[start-1] == '\n' {
		start--
	}
	count := size - start

	switch {
	case r.opts.Present && count == 0:
		diag.ReportOffense(rep, r.Name(), doc.Range(size, size), "Missing a trailing newline at the end of the file.").
			WithContext(finalNewlineInsert).Emit()
	case !r.opts.Present && count > 0:
		diag.ReportOffense(rep, r.Name(), doc.Range(start, size),
			fmt.Sprintf("Remove %d trailing %s at the end of the file.", count, plural(int(count), "newline"))).
			WithContext(finalNewlineRemove).Emit()
	case r.opts.Present && count > 1:
		diag.ReportOffense(rep, r.Name(), doc.Range(start+1, size),
			fmt.Sprintf("Remove %d trailing %s at the end of the file.", count-1, plural(int(count-1), "newline"))).
			WithContext(finalNewlineRemove).Emit()
	}
	return nil
}

func (r *FinalNewline) Autocorrect(_ *lint.Document, off diag.Offense) (fix.Procedure, error) {
	switch off.Context {
	case finalNewlineInsert:
		return func(s *fix.Splicer) error { return s.InsertAfter(off.Range, "\n") }, nil
	case finalNewlineRemove:
		return func(s *fix.Splicer) error { return s.Remove(off.Range) }, nil
	}
	return nil, nil
}
