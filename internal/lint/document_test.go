package lint

import (
	"testing"

	"erblint/internal/source"
)

func newDoc(t *testing.T, src string) *Document {
	t.Helper()
	fs := source.NewFileSet()
	return NewDocument(fs.Get(fs.AddVirtual("doc.html.erb", []byte(src))))
}

func TestNestedRemapsToRoot(t *testing.T) {
	src := `<p></p><script type="text/html"><div class="a"><script type="text/html"><b class="x"></b></script></div></script>`
	doc := newDoc(t, src)

	var outer *Document
	for _, tag := range doc.Tree.StartTags() {
		if tag.Name == "script" {
			outer = doc.Nested(tag.Body)
			break
		}
	}
	if outer == nil {
		t.Fatal("script not found")
	}
	if outer.Context() == nil || outer.Context().Parent != doc || outer.Root() != doc {
		t.Fatal("nested context not linked to parent")
	}

	var inner *Document
	for _, tag := range outer.Tree.StartTags() {
		if tag.Name == "script" {
			inner = outer.Nested(tag.Body)
		}
	}
	if inner == nil {
		t.Fatal("inner script not found")
	}

	tags := inner.Tree.StartTags()
	if len(tags) != 1 || tags[0].Name != "b" {
		t.Fatalf("inner tags = %+v", tags)
	}
	r := inner.ToSourceRange(tags[0].Span)
	if r.Text != `<b class="x">` {
		t.Errorf("remapped text = %q", r.Text)
	}
	if got := src[r.Begin:r.End]; got != r.Text {
		t.Errorf("range %s does not point at root text, got %q", r, got)
	}
	if inner.Root() != doc || inner.BaseOffset() != outer.BaseOffset()+inner.Context().Base {
		t.Errorf("base offsets: inner=%d outer=%d", inner.BaseOffset(), outer.BaseOffset())
	}
}

func TestRootDocumentRange(t *testing.T) {
	doc := newDoc(t, "line 1\n\n\nline 3\n")
	if doc.Context() != nil || doc.BaseOffset() != 0 {
		t.Fatal("root document must have no context")
	}
	r := doc.Range(8, 9)
	if r.Text != "\n" || r.String() != "8..8" {
		t.Errorf("Range = %+v (%s)", r, r)
	}
	if doc.Len() != 16 {
		t.Errorf("Len() = %d", doc.Len())
	}
}
