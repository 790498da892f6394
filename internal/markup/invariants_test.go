package markup_test

import (
	"testing"

	"erblint/internal/markup"
	"erblint/internal/source"
	"erblint/internal/testkit"
)

func TestTreeInvariants(t *testing.T) {
	docs := []string{
		"",
		"<%",
		"<p><% foo",
		"<div class='a'",
		`<a href="x>`,
		"<div <p>x</p>",
		"<!-- x",
		"<%= foo -%><%- bar =%><%# c %><%% lit %>",
		"<script type=\"text/html\"><span class=\"<%= k %>\"></span></script>",
		"<style>p { color: red }</style><br/>",
		"<!DOCTYPE html>\n<html lang=en>\n  Hello\n</html>\n",
		"</A",
		"x</b",
		"<p></div",
		`<p class="x`,
	}
	for _, doc := range docs {
		fs := source.NewFileSet()
		tree := markup.Parse(fs.Get(fs.AddVirtual("t.html.erb", []byte(doc))))
		if err := testkit.CheckTreeInvariants(tree); err != nil {
			t.Errorf("%q: %v", doc, err)
		}
	}
}
