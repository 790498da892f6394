package linters_test

import (
	"errors"
	"testing"

	"erblint/internal/lint"
	"erblint/internal/linters"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowedScriptTypeOptions(t *testing.T) {
	tests := []struct {
		name string
		opts map[string]any
		in   string
		want []string
	}{
		{
			name: "custom allow list",
			opts: map[string]any{"allowed_types": []any{"text/javascript", "module"}},
			in:   `<script type="module"></script><script type="text/x-tmpl"></script>`,
			want: []string{"Avoid using \"text/x-tmpl\" as type for `<script>` tag. Must be one of: text/javascript, module (or no type attribute)."},
		},
		{
			name: "blank disallowed has no suffix",
			opts: map[string]any{"allow_blank": false},
			in:   `<script type="text/babel"></script>`,
			want: []string{"Avoid using \"text/babel\" as type for `<script>` tag. Must be one of: text/javascript."},
		},
		{
			name: "erb in type is skipped",
			in:   `<script type="<%= type %>"></script>`,
		},
		{
			name: "other tags are ignored",
			in:   `<div type="text/yavascript"></div>`,
		},
		{
			name: "inline scripts disallowed",
			opts: map[string]any{"disallow_inline_scripts": true},
			in:   `<script src="/app.js"></script><script>alert(1)</script>`,
			want: []string{"Avoid using inline `<script>` tags altogether. Instead, move javascript code into a static file."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := messages(inspect(t, only(linters.NameAllowedScriptType, tt.opts), tt.in))
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClosingErbTagIndentCases(t *testing.T) {
	cfg := only(linters.NameClosingErbTagIndent, nil)
	tests := []struct {
		name string
		in   string
		msg  string
		want string
	}{
		{
			name: "newline only before close",
			in:   "<% foo\n%>",
			msg:  "Remove newline before `%>` to match start of tag.",
			want: "<% foo %>",
		},
		{
			name: "newline only after open",
			in:   "<%\n  foo %>",
			msg:  "Insert newline before `%>` to match start of tag.",
			want: "<%\n  foo\n%>",
		},
		{
			name: "indented tag",
			in:   "  <%\n    foo\n%>",
			msg:  "Indent `%>` on column 2 to match start of tag.",
			want: "  <%\n    foo\n  %>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, []string{tt.msg}, messages(inspect(t, cfg, tt.in)))
			assert.Equal(t, tt.want, correctAll(t, cfg, tt.in))
		})
	}

	assert.Empty(t, inspect(t, cfg, "<%\n  foo\n%>\n  <%\n    bar\n  %>\n<% one_line %>"))
}

func TestExtraNewlineReportsEveryRun(t *testing.T) {
	cfg := only(linters.NameExtraNewline, nil)
	in := "a\n\n\n\nb\n\n\nc"

	offenses := inspect(t, cfg, in)
	require.Len(t, offenses, 2)
	assert.Equal(t, "\n\n", offenses[0].Range.Text)
	assert.Equal(t, uint32(3), offenses[0].Range.Begin)
	assert.Equal(t, uint32(8), offenses[1].Range.Begin)
	assert.Equal(t, "a\n\nb\n\nc", correctAll(t, cfg, in))
}

func TestFinalNewline(t *testing.T) {
	tests := []struct {
		name    string
		present bool
		in      string
		msg     string
		want    string
	}{
		{"missing", true, "<p></p>", "Missing a trailing newline at the end of the file.", "<p></p>\n"},
		{"too many", true, "<p></p>\n\n\n", "Remove 2 trailing newlines at the end of the file.", "<p></p>\n"},
		{"forbidden", false, "<p></p>\n", "Remove 1 trailing newline at the end of the file.", "<p></p>"},
		{"forbidden many", false, "<p></p>\n\n", "Remove 2 trailing newlines at the end of the file.", "<p></p>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := only(linters.NameFinalNewline, map[string]any{"present": tt.present})
			assert.Equal(t, []string{tt.msg}, messages(inspect(t, cfg, tt.in)))
			assert.Equal(t, tt.want, correctAll(t, cfg, tt.in))
		})
	}

	assert.Empty(t, inspect(t, only(linters.NameFinalNewline, nil), ""))
	assert.Empty(t, inspect(t, only(linters.NameFinalNewline, nil), "<p></p>\n"))
}

func TestParserErrors(t *testing.T) {
	cfg := only(linters.NameParserErrors, nil)

	offenses := inspect(t, cfg, "<p>ok</p>\n<% foo")
	require.Len(t, offenses, 1)
	assert.Equal(t, "erb tag was not closed (at <%)", offenses[0].Message)
	assert.Equal(t, uint32(10), offenses[0].Range.Begin)

	eng := run(t, cfg, "<div class=\"a></div>")
	assert.NotEmpty(t, eng.Offenses())
	cands, errs, err := eng.Candidates()
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Empty(t, cands, "parser errors are not correctable")
}

func TestParserErrorsAtEndOfInput(t *testing.T) {
	cfg := only(linters.NameParserErrors, nil)
	for _, in := range []string{"</A", "x</b", "<p></div", "<p></div "} {
		t.Run(in, func(t *testing.T) {
			offenses := inspect(t, cfg, in)
			require.Len(t, offenses, 1)
			assert.Contains(t, offenses[0].Message, "expected '>' after closing tag name")
			assert.Equal(t, uint32(len(in)), offenses[0].Range.Begin)
			assert.Equal(t, uint32(len(in)), offenses[0].Range.End)
		})
	}
}

func TestRightTrim(t *testing.T) {
	cfg := only(linters.NameRightTrim, map[string]any{"enforced_style": "="})
	in := "<% foo -%>\n<% bar =%>\n<% baz %>\n"

	assert.Equal(t, []string{"Prefer =%> instead of -%> for trimming on the right."}, messages(inspect(t, cfg, in)))
	assert.Equal(t, "<% foo =%>\n<% bar =%>\n<% baz %>\n", correctAll(t, cfg, in))
}

func TestRightTrimRejectsUnknownStyle(t *testing.T) {
	_, err := lint.BuildPlan(linters.Default(), only(linters.NameRightTrim, map[string]any{"enforced_style": "~"}), false)
	var cerr *lint.ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, linters.NameRightTrim, cerr.Linter)
	assert.Equal(t, "enforced_style", cerr.Key)
	assert.True(t, errors.Is(err, lint.ErrInvalidOption))
}

func TestUnknownOptionIsConfigError(t *testing.T) {
	_, err := lint.BuildPlan(linters.Default(), only(linters.NameTrailingWhitespace, map[string]any{"max": 3}), false)
	assert.ErrorIs(t, err, lint.ErrUnknownOption)

	_, err = lint.BuildPlan(linters.Default(), config{"NoSuchLinter": {"enabled": true}}, false)
	assert.ErrorIs(t, err, lint.ErrUnknownLinter)
}

func TestSpaceAroundErbTag(t *testing.T) {
	cfg := only(linters.NameSpaceAroundErbTag, nil)
	tests := []struct {
		name string
		in   string
		msgs []string
		want string
	}{
		{
			name: "missing and doubled spaces",
			in:   "<%=  foo%>",
			msgs: []string{
				"Use 1 space after `<%=` instead of 2 spaces.",
				"Use 1 space before `%>` instead of 0 spaces.",
			},
			want: "<%= foo %>",
		},
		{
			name: "trim markers are part of the delimiters",
			in:   "<%-foo-%>",
			msgs: []string{
				"Use 1 space after `<%-` instead of 0 spaces.",
				"Use 1 space before `-%>` instead of 0 spaces.",
			},
			want: "<%- foo -%>",
		},
		{
			name: "too many newlines",
			in:   "<%\n\n  foo\n\n%>",
			msgs: []string{
				"Use 1 newline after `<%` instead of 2.",
				"Use 1 newline before `%>` instead of 2.",
			},
			want: "<%\n  foo\n%>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.msgs, messages(inspect(t, cfg, tt.in)))
			assert.Equal(t, tt.want, correctAll(t, cfg, tt.in))
		})
	}

	assert.Empty(t, inspect(t, cfg, "<%# comment%><%%literal%><%   %><% ok %><%\n  multi\n%>"))
}

func TestTrailingWhitespace(t *testing.T) {
	cfg := only(linters.NameTrailingWhitespace, nil)
	in := "a \t\nb\n c  "

	offenses := inspect(t, cfg, in)
	require.Len(t, offenses, 2)
	assert.Equal(t, " \t", offenses[0].Range.Text)
	assert.Equal(t, "  ", offenses[1].Range.Text)
	assert.Equal(t, "Extra whitespace detected at end of line.", offenses[0].Message)
	assert.Equal(t, "a\nb\n c", correctAll(t, cfg, in))
}

func TestDeprecatedClassesRemapsNestedTemplates(t *testing.T) {
	cfg := only(linters.NameDeprecatedClasses, map[string]any{
		"rule_set": []any{
			map[string]any{"deprecated": []any{`foo-\d+`, "bar"}, "suggestion": "Use baz."},
		},
		"addendum": "See the style guide.",
	})
	in := "<div class=\"foo-1 ok\">x</div>\n" +
		"<script type=\"text/html\">\n  <span class=\"bar\"></span>\n</script>\n" +
		"<p class=\"foo-bar\"></p>\n"

	offenses := inspect(t, cfg, in)
	require.Len(t, offenses, 2)

	assert.Equal(t, `<div class="foo-1 ok">`, offenses[0].Range.Text)
	assert.Equal(t, uint32(0), offenses[0].Range.Begin)
	assert.Equal(t, "Deprecated class `foo-1` detected matching the pattern `foo-\\d+`. Use baz. See the style guide.", offenses[0].Message)

	span := `<span class="bar">`
	begin := uint32(len("<div class=\"foo-1 ok\">x</div>\n<script type=\"text/html\">\n  "))
	assert.Equal(t, span, offenses[1].Range.Text)
	assert.Equal(t, begin, offenses[1].Range.Begin)
	assert.Equal(t, begin+uint32(len(span)), offenses[1].Range.End)
}

func TestDeprecatedClassesKeepsDocumentOrder(t *testing.T) {
	cfg := only(linters.NameDeprecatedClasses, map[string]any{
		"rule_set": []any{map[string]any{"deprecated": []any{"foo"}}},
	})
	in := `<script type="text/html"><div class="foo"></div></script><p class="foo"></p>`

	offenses := inspect(t, cfg, in)
	require.Len(t, offenses, 2)
	assert.Equal(t, `<div class="foo">`, offenses[0].Range.Text)
	assert.Equal(t, uint32(25), offenses[0].Range.Begin)
	assert.Equal(t, `<p class="foo">`, offenses[1].Range.Text)
	assert.Equal(t, uint32(57), offenses[1].Range.Begin)
}

func TestDeprecatedClassesRejectsBadPattern(t *testing.T) {
	_, err := lint.BuildPlan(linters.Default(), only(linters.NameDeprecatedClasses, map[string]any{
		"rule_set": []any{map[string]any{"deprecated": []any{"("}}},
	}), false)
	var cerr *lint.ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, linters.NameDeprecatedClasses, cerr.Linter)
}
