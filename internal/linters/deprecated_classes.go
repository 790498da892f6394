package linters

import (
	"fmt"
	"regexp"
	"strings"

	"erblint/internal/diag"
	"erblint/internal/lint"
	"erblint/internal/markup"
	"erblint/internal/source"
)

// DeprecatedClassRule groups class patterns that share one suggestion.
type DeprecatedClassRule struct {
	Deprecated []string `yaml:"deprecated" validate:"dive,regexp"`
	Suggestion string   `yaml:"suggestion"`
}

// DeprecatedClassesOptions configures DeprecatedClasses.
type DeprecatedClassesOptions struct {
	RuleSet  []DeprecatedClassRule `yaml:"rule_set" validate:"dive"`
	Addendum string                `yaml:"addendum"`
}

type deprecatedPattern struct {
	expr       string
	re         *regexp.Regexp
	suggestion string
}

// DeprecatedClasses reports class names matching any configured pattern, recursing into
// <script type="text/html"> templates.
type DeprecatedClasses struct {
	patterns []deprecatedPattern
	addendum string
}

func NewDeprecatedClasses(opts DeprecatedClassesOptions) (lint.Rule, error) {
	r := &DeprecatedClasses{addendum: opts.Addendum}
	for _, rule := range opts.RuleSet {
		for _, expr := range rule.Deprecated {
			re, err := regexp.Compile(`\A(?:` + expr + `)\z`)
			if err != nil {
				return nil, &lint.ConfigError{Linter: NameDeprecatedClasses, Key: "rule_set", Err: fmt.Errorf("%w: %w", lint.ErrInvalidOption, err)}
			}
			r.patterns = append(r.patterns, deprecatedPattern{expr: expr, re: re, suggestion: rule.Suggestion})
		}
	}
	return r, nil
}

func (r *DeprecatedClasses) Name() string { return NameDeprecatedClasses }

func (r *DeprecatedClasses) Run(doc *lint.Document, rep diag.Reporter) error {
	if len(r.patterns) == 0 {
		return nil
	}
	r.inspect(doc, rep)
	return nil
}

func (r *DeprecatedClasses) inspect(doc *lint.Document, rep diag.Reporter) {
	for _, tag := range doc.Tree.StartTags() {
		if class, ok := tag.Attr("class"); ok && class.Value != "" {
			rng := doc.ToSourceRange(tag.Span)
			for _, name := range strings.Fields(class.Value) {
				r.check(name, rng, rep)
			}
		}
		// тело шаблона проверяется на своём месте, чтобы сохранить порядок документа
		if isHTMLTemplate(tag) {
			r.inspect(doc.Nested(tag.Body), rep)
		}
	}
}

func isHTMLTemplate(tag *markup.Tag) bool {
	if tag.Name != "script" || !tag.HasBody || tag.Body.Empty() {
		return false
	}
	typ, ok := tag.Attr("type")
	return ok && typ.Value == "text/html"
}

func (r *DeprecatedClasses) check(class string, rng source.Range, rep diag.Reporter) {
	for _, p := range r.patterns {
		if !p.re.MatchString(class) {
			continue
		}
		suggestion := strings.TrimRight(" "+p.suggestion, " \t\n")
		msg := fmt.Sprintf("Deprecated class `%s` detected matching the pattern `%s`.%s %s", class, p.expr, suggestion, r.addendum)
		diag.ReportOffense(rep, r.Name(), rng, strings.TrimSpace(msg)).Emit()
	}
}
