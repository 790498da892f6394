package source

import (
	"fmt"

	"fortio.org/safecast"
)

// Range is a half-open [Begin, End) byte interval together with the text it covers.
// Two ranges are equal iff offsets and cached text match.
type Range struct {
	Begin uint32
	End   uint32
	Text  string
}

// NewRange builds a Range over f.Content, validating bounds.
func NewRange(f *File, begin, end uint32) (Range, error) {
	if f == nil {
		return Range{}, fmt.Errorf("range %d..%d: nil file", begin, end)
	}
	size, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		return Range{}, fmt.Errorf("content length overflow: %w", err)
	}
	if begin > end || end > size {
		return Range{}, fmt.Errorf("range %d..%d out of bounds (len %d)", begin, end, size)
	}
	return Range{Begin: begin, End: end, Text: string(f.Content[begin:end])}, nil
}

// MustRange is NewRange that panics on invalid bounds; rules use it for spans taken from the tree.
func MustRange(f *File, begin, end uint32) Range {
	r, err := NewRange(f, begin, end)
	if err != nil {
		panic(err)
	}
	return r
}

// SpanRange converts a span of f into a Range.
func (f *File) SpanRange(sp Span) Range {
	return MustRange(f, sp.Start, sp.End)
}

func (r Range) Empty() bool {
	return r.Begin == r.End
}

func (r Range) Len() uint32 {
	return r.End - r.Begin
}

// Span converts the range back into a span of the given file.
func (r Range) Span(file FileID) Span {
	return Span{File: file, Start: r.Begin, End: r.End}
}

// String renders the inclusive "begin..last" notation, so [8,30) prints as 8..29
// and the insertion point at 5 prints as 5..4.
func (r Range) String() string {
	return fmt.Sprintf("%d..%d", r.Begin, int64(r.End)-1)
}

// Fragment returns a detached file holding the bytes of sp. It keeps the parent's ID and
// path so spans produced while parsing it can be traced back, but offsets start at zero.
func (f *File) Fragment(sp Span) *File {
	content := f.Content[sp.Start:sp.End]
	return &File{
		ID:      f.ID,
		Path:    f.Path,
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    f.Hash,
		Flags:   f.Flags | FileVirtual,
	}
}
