package linters

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"erblint/internal/diag"
	"erblint/internal/fix"
	"erblint/internal/lint"
	"erblint/internal/markup"
	"erblint/internal/source"
)

const defaultScriptType = "text/javascript"

// AllowedScriptTypeOptions configures AllowedScriptType.
type AllowedScriptTypeOptions struct {
	AllowedTypes          []string `yaml:"allowed_types" validate:"dive,required"`
	AllowBlank            bool     `yaml:"allow_blank"`
	DisallowInlineScripts bool     `yaml:"disallow_inline_scripts"`
}

func defaultAllowedScriptTypeOptions() AllowedScriptTypeOptions {
	return AllowedScriptTypeOptions{
		AllowedTypes: []string{defaultScriptType},
		AllowBlank:   true,
	}
}

// scriptTypeContext tells Autocorrect where the type attribute is, if any.
type scriptTypeContext struct {
	HasAttr bool
	Attr    source.Range
}

// AllowedScriptType restricts the type attribute of <script> tags.
type AllowedScriptType struct {
	opts AllowedScriptTypeOptions
}

func NewAllowedScriptType(opts AllowedScriptTypeOptions) (lint.Rule, error) {
	return &AllowedScriptType{opts: opts}, nil
}

func (r *AllowedScriptType) Name() string { return NameAllowedScriptType }

func (r *AllowedScriptType) Run(doc *lint.Document, rep diag.Reporter) error {
	for _, tag := range doc.Tree.StartTags() {
		if tag.Name != "script" {
			continue
		}
		name := doc.ToSourceRange(tag.NameSpan)

		if r.opts.DisallowInlineScripts {
			if _, hasSrc := tag.Attr("src"); !hasSrc {
				diag.ReportOffense(rep, r.Name(), name,
					"Avoid using inline `<script>` tags altogether. Instead, move javascript code into a static file.").Emit()
			}
			continue
		}

		attr, hasAttr := tag.Attr("type")
		if hasAttr && attr.HasErb {
			continue
		}
		present := hasAttr && attr.Value != ""

		switch {
		case !present && !r.opts.AllowBlank:
			ctx := scriptTypeContext{HasAttr: hasAttr}
			if hasAttr {
				ctx.Attr = doc.ToSourceRange(attr.Span)
			}
			diag.ReportOffense(rep, r.Name(), name,
				fmt.Sprintf("Missing a `type=%q` attribute to `<script>` tag.", defaultScriptType)).
				WithContext(ctx).Emit()
		case present && !slices.Contains(r.opts.AllowedTypes, attr.Value):
			diag.ReportOffense(rep, r.Name(), doc.ToSourceRange(attr.Span), r.wrongTypeMessage(attr)).Emit()
		}
	}
	return nil
}

func (r *AllowedScriptType) wrongTypeMessage(attr *markup.Attr) string {
	msg := fmt.Sprintf("Avoid using %s as type for `<script>` tag. Must be one of: %s",
		strconv.Quote(attr.Value), strings.Join(r.opts.AllowedTypes, ", "))
	if r.opts.AllowBlank {
		msg += " (or no type attribute)"
	}
	return msg + "."
}

func (r *AllowedScriptType) Autocorrect(_ *lint.Document, off diag.Offense) (fix.Procedure, error) {
	ctx, ok := off.Context.(scriptTypeContext)
	if !ok {
		return nil, nil
	}
	typeAttr := fmt.Sprintf("type=%q", defaultScriptType)
	return func(s *fix.Splicer) error {
		if ctx.HasAttr {
			return s.Replace(ctx.Attr, typeAttr)
		}
		return s.InsertAfter(off.Range, " "+typeAttr)
	}, nil
}
