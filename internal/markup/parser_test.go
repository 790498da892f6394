package markup

import (
	"testing"

	"erblint/internal/source"
)

func parseString(t *testing.T, src string) *Tree {
	t.Helper()
	fs := source.NewFileSet()
	return Parse(fs.Get(fs.AddVirtual("test.html.erb", []byte(src))))
}

func text(tree *Tree, sp source.Span) string {
	return string(tree.File.Content[sp.Start:sp.End])
}

func TestParseScriptTypeAttribute(t *testing.T) {
	tree := parseString(t, `<script type="text/yavascript"></script>`)
	if len(tree.Errors) != 0 {
		t.Fatalf("unexpected errors: %+v", tree.Errors)
	}
	tags := tree.StartTags()
	if len(tags) != 1 {
		t.Fatalf("expected 1 start tag, got %d", len(tags))
	}
	tag := tags[0]
	if tag.Name != "script" || tag.NameSpan.Start != 1 || tag.NameSpan.End != 7 {
		t.Errorf("name = %q %+v", tag.Name, tag.NameSpan)
	}
	attr, ok := tag.Attr("TYPE")
	if !ok {
		t.Fatal("type attribute not found")
	}
	if attr.Span.Start != 8 || attr.Span.End != 30 {
		t.Errorf("attr span = %+v, want 8..30", attr.Span)
	}
	if attr.Value != "text/yavascript" || attr.Quote != '"' {
		t.Errorf("value = %q quote %q", attr.Value, attr.Quote)
	}
	if !tag.HasBody || !tag.Body.Empty() || tag.Body.Start != 31 {
		t.Errorf("body = %+v has=%v", tag.Body, tag.HasBody)
	}
}

func TestParseErbParts(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		ltrim     string
		indicator string
		code      string
		rtrim     string
	}{
		{"plain", "<% foo %>", "", "", " foo ", ""},
		{"output", "<%= foo %>", "", "=", " foo ", ""},
		{"raw output", "<%== foo %>", "", "==", " foo ", ""},
		{"comment", "<%# note -%>", "", "#", " note ", "-"},
		{"trim both", "<%- foo -%>", "-", "", " foo ", "-"},
		{"equals rtrim", "<%= foo =%>", "", "=", " foo ", "="},
		{"empty", "<%=%>", "", "=", "", ""},
		{"multiline", "<%\n  foo\n    %>", "", "", "\n  foo\n    ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := parseString(t, tt.src)
			if len(tree.Erbs) != 1 {
				t.Fatalf("expected 1 erb, got %d", len(tree.Erbs))
			}
			erb := tree.Erbs[0]
			if erb.LTrim != tt.ltrim || erb.Indicator != tt.indicator || erb.Code != tt.code || erb.RTrim != tt.rtrim {
				t.Errorf("got ltrim=%q ind=%q code=%q rtrim=%q", erb.LTrim, erb.Indicator, erb.Code, erb.RTrim)
			}
			if !erb.Closed || text(tree, erb.Close) != "%>" || text(tree, erb.Span) != tt.src {
				t.Errorf("close=%+v span=%+v", erb.Close, erb.Span)
			}
			if text(tree, erb.CodeSpan) != tt.code {
				t.Errorf("code span text = %q", text(tree, erb.CodeSpan))
			}
		})
	}
}

func TestParseErbInsideAttributes(t *testing.T) {
	tree := parseString(t, `<div class="a <%= b %>" <%= attrs %> data-x=<%= y %>>hi</div>`)
	if len(tree.Errors) != 0 {
		t.Fatalf("unexpected errors: %+v", tree.Errors)
	}
	if len(tree.Erbs) != 3 {
		t.Fatalf("expected 3 erbs, got %d", len(tree.Erbs))
	}
	tag := tree.StartTags()[0]
	class, _ := tag.Attr("class")
	if !class.HasErb || class.Value != "a <%= b %>" {
		t.Errorf("class = %+v", class)
	}
	dx, ok := tag.Attr("data-x")
	if !ok || dx.Quote != 0 || dx.Value != "<%= y %>" {
		t.Errorf("data-x = %+v", dx)
	}
	texts := tree.Texts()
	if len(texts) != 1 || texts[0].Content != "hi" {
		t.Errorf("texts = %+v", texts)
	}
}

func TestParseRawBodyKeepsMarkupAsText(t *testing.T) {
	src := "<script type=\"text/html\"><div class=\"hide\"><%= x %></div></script><p>after</p>"
	tree := parseString(t, src)
	var script *Tag
	for _, tag := range tree.StartTags() {
		if tag.Name == "script" {
			script = tag
		}
		if tag.Name == "div" {
			t.Fatal("markup inside script must not be parsed as tags")
		}
	}
	if script == nil || !script.HasBody {
		t.Fatal("script body not found")
	}
	if got := text(tree, script.Body); got != `<div class="hide"><%= x %></div>` {
		t.Errorf("body = %q", got)
	}
	if len(tree.Erbs) != 1 {
		t.Errorf("erbs in raw body = %d", len(tree.Erbs))
	}
	var raw, plain int
	for _, tx := range tree.Texts() {
		if tx.Raw == "script" {
			raw++
		} else {
			plain++
		}
	}
	if raw != 2 || plain != 1 {
		t.Errorf("raw=%d plain=%d", raw, plain)
	}
}

func TestParseSelfClosingAndBareAttributes(t *testing.T) {
	tree := parseString(t, `<input disabled type = 'text'/><br>`)
	tags := tree.StartTags()
	if len(tags) != 2 || !tags[0].SelfClosing || tags[1].SelfClosing {
		t.Fatalf("tags = %+v", tags)
	}
	d, _ := tags[0].Attr("disabled")
	if d.HasValue || !d.ValueSpan.Empty() {
		t.Errorf("disabled = %+v", d)
	}
	ty, _ := tags[0].Attr("type")
	if ty.Value != "text" || ty.Quote != '\'' {
		t.Errorf("type = %+v", ty)
	}
}

func TestParseTextWithLessThan(t *testing.T) {
	tree := parseString(t, "a < b <!-- c --> <!DOCTYPE html>")
	if len(tree.Errors) != 0 {
		t.Fatalf("errors: %+v", tree.Errors)
	}
	kinds := []Kind{}
	for _, n := range tree.Nodes {
		kinds = append(kinds, n.Kind)
	}
	want := []Kind{KindText, KindComment, KindText, KindDeclaration}
	if len(kinds) != len(want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("kind[%d] = %s, want %s", i, kinds[i], want[i])
		}
	}
	if tree.Nodes[0].Text.Content != "a < b " {
		t.Errorf("text = %q", tree.Nodes[0].Text.Content)
	}
}

func TestParseErrorsAreRecovered(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"unclosed erb", "<p><% foo", "erb tag was not closed"},
		{"unclosed tag", "<div class='a'", "tag `div` was not closed"},
		{"unterminated value", `<a href="x>`, "unterminated attribute value"},
		{"nested open", "<div <p>x</p>", "expected '>' before '<' in tag `div`"},
		{"unclosed comment", "<!-- x", "comment was not closed"},
		{"missing value", "<a href=>x</a>", "expected attribute value after '='"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := parseString(t, tt.src)
			if len(tree.Errors) == 0 {
				t.Fatal("expected a parse error")
			}
			if tree.Errors[0].Message != tt.msg {
				t.Errorf("message = %q, want %q", tree.Errors[0].Message, tt.msg)
			}
		})
	}
}
