package linters

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"erblint/internal/diag"
	"erblint/internal/fix"
	"erblint/internal/lint"
)

// Tag-boundary markers wrapped around a translated expression.
const (
	tagStart = "<%= "
	tagEnd   = " %>"
)

// ErrUnknownStrategy is reported when corrector.name names no known correction strategy.
var ErrUnknownStrategy = errors.New("unknown correction strategy")

// noTranslationNeeded lists entities that are fine to leave untranslated.
var noTranslationNeeded = map[string]bool{
	"&nbsp;":   true,
	"&amp;":    true,
	"&lt;":     true,
	"&gt;":     true,
	"&quot;":   true,
	"&copy;":   true,
	"&reg;":    true,
	"&trade;":  true,
	"&hellip;": true,
	"&mdash;":  true,
	"&bull;":   true,
	"&ldquo;":  true,
	"&rdquo;":  true,
	"&lsquo;":  true,
	"&rsquo;":  true,
	"&larr;":   true,
	"&rarr;":   true,
	"&darr;":   true,
	"&uarr;":   true,
	"&ensp;":   true,
	"&emsp;":   true,
	"&thinsp;": true,
	"&times;":  true,
	"&laquo;":  true,
	"&raquo;":  true,
	"&middot;": true,
}

// CorrectorOptions selects and parameterises a correction strategy.
type CorrectorOptions struct {
	Name         string `yaml:"name"`
	I18nLoadPath string `yaml:"i18n_load_path"`
	Scope        string `yaml:"scope"`
	Locale       string `yaml:"locale"`
}

// HardCodedStringOptions configures HardCodedString.
type HardCodedStringOptions struct {
	Corrector CorrectorOptions `yaml:"corrector"`
}

// correctionStrategy turns untranslated text into the expression that replaces it.
type correctionStrategy interface {
	Expression(text string) (string, error)
}

// correctionStrategies is the closed set of strategies selectable from config.
var correctionStrategies = map[string]func(CorrectorOptions) correctionStrategy{
	"i18n": newI18nStrategy,
}

// HardCodedString reports text nodes that are not passed through translation.
type HardCodedString struct {
	strategy correctionStrategy
}

func NewHardCodedString(opts HardCodedStringOptions) (lint.Rule, error) {
	r := &HardCodedString{}
	if name := opts.Corrector.Name; name != "" {
		factory, ok := correctionStrategies[name]
		if !ok {
			return nil, &lint.ConfigError{
				Linter: NameHardCodedString,
				Key:    "corrector.name",
				Err:    fmt.Errorf("%w: %q", ErrUnknownStrategy, name),
			}
		}
		r.strategy = factory(opts.Corrector)
	}
	return r, nil
}

func (r *HardCodedString) Name() string { return NameHardCodedString }

func (r *HardCodedString) Run(doc *lint.Document, rep diag.Reporter) error {
	for _, txt := range doc.Tree.Texts() {
		if txt.Raw != "" {
			continue
		}
		offset := txt.Span.Start
		for _, line := range strings.SplitAfter(txt.Content, "\n") {
			lineStart := offset
			offset += offsetOf(len(line))
			if !needsTranslation(line) {
				continue
			}
			trimmed := strings.TrimFunc(line, unicode.IsSpace)
			lead := offsetOf(len(line) - len(strings.TrimLeftFunc(line, unicode.IsSpace)))
			begin := lineStart + lead
			rng := doc.Range(begin, begin+offsetOf(len(trimmed)))
			diag.ReportOffense(rep, r.Name(), rng, "String not translated: "+trimmed).Emit()
		}
	}
	return nil
}

func needsTranslation(s string) bool {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	return utf8.RuneCountInString(compact) > 1 && !noTranslationNeeded[compact]
}

// Autocorrect replaces the text with a translated expression. Without a configured
// strategy, or when the strategy's resources are missing, nothing is corrected.
func (r *HardCodedString) Autocorrect(_ *lint.Document, off diag.Offense) (fix.Procedure, error) {
	if r.strategy == nil {
		return nil, nil
	}
	text := strings.TrimSpace(off.Range.Text)
	if utf8.RuneCountInString(text) <= 1 {
		return nil, nil
	}
	expr, err := r.strategy.Expression(text)
	if err != nil {
		return nil, err
	}
	return func(s *fix.Splicer) error {
		return s.Replace(off.Range, tagStart+expr+tagEnd)
	}, nil
}
