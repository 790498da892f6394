package lint

import (
	"fmt"

	"erblint/internal/markup"
	"erblint/internal/source"

	"fortio.org/safecast"
)

// NestedContext links a fragment document to the document it was cut from.
// Base is the fragment's start offset in the parent's coordinates.
type NestedContext struct {
	Base   uint32
	Parent *Document
}

// Document is one parsed template. It is never mutated after construction.
type Document struct {
	File *source.File
	Tree *markup.Tree
	ctx  *NestedContext
}

// NewDocument parses f. Parse problems are kept on Tree.Errors and never fail construction.
func NewDocument(f *source.File) *Document {
	return &Document{
		File: f,
		Tree: markup.Parse(f),
	}
}

// Nested parses the bytes under sp (in d's coordinates) as a child document.
func (d *Document) Nested(sp source.Span) *Document {
	frag := d.File.Fragment(sp)
	return &Document{
		File: frag,
		Tree: markup.Parse(frag),
		ctx:  &NestedContext{Base: sp.Start, Parent: d},
	}
}

// Context returns the nested context, or nil for a root document.
func (d *Document) Context() *NestedContext {
	return d.ctx
}

// Root returns the outermost ancestor.
func (d *Document) Root() *Document {
	root := d
	for root.ctx != nil {
		root = root.ctx.Parent
	}
	return root
}

// BaseOffset is the accumulated offset of d inside the root document.
func (d *Document) BaseOffset() uint32 {
	var base uint32
	for cur := d; cur.ctx != nil; cur = cur.ctx.Parent {
		base += cur.ctx.Base
	}
	return base
}

// ToSourceRange maps a span local to d into a Range of the root document, with the text
// taken from the root's raw content.
func (d *Document) ToSourceRange(local source.Span) source.Range {
	base := d.BaseOffset()
	return source.MustRange(d.Root().File, local.Start+base, local.End+base)
}

// Range is ToSourceRange for raw local offsets.
func (d *Document) Range(begin, end uint32) source.Range {
	return d.ToSourceRange(source.Span{File: d.File.ID, Start: begin, End: end})
}

// Content returns d's own bytes.
func (d *Document) Content() []byte {
	return d.File.Content
}

// Len returns the length of d's own content.
func (d *Document) Len() uint32 {
	n, err := safecast.Conv[uint32](len(d.File.Content))
	if err != nil {
		panic(fmt.Errorf("document length overflow: %w", err))
	}
	return n
}
