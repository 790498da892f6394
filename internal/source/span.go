package source

import (
	"fmt"
)

// Span is a half-open byte interval inside one file.
type Span struct {
	File  FileID
	Start uint32 // в байтах включительно
	End   uint32 // в байтах не включительно
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Contains reports whether other lies fully inside s.
func (s Span) Contains(other Span) bool {
	return s.File == other.File && s.Start <= other.Start && other.End <= s.End
}

func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

// ShiftLeft moves the span n bytes towards the file start.
// Spans that would underflow are returned unchanged.
func (s Span) ShiftLeft(n uint32) Span {
	if n > s.Start {
		return s
	}
	return Span{
		File:  s.File,
		Start: s.Start - n,
		End:   s.End - n,
	}
}

func (s Span) ShiftRight(n uint32) Span {
	return Span{
		File:  s.File,
		Start: s.Start + n,
		End:   s.End + n,
	}
}

// Resize keeps Start and sets the length to n.
func (s Span) Resize(n uint32) Span {
	return Span{File: s.File, Start: s.Start, End: s.Start + n}
}

// EndPoint returns the empty span sitting at s.End.
func (s Span) EndPoint() Span {
	return Span{File: s.File, Start: s.End, End: s.End}
}

// AdjustStart moves Start by delta bytes (negative values extend the span to the left).
func (s Span) AdjustStart(delta int) Span {
	start := int(s.Start) + delta
	if start < 0 {
		start = 0
	}
	if start > int(s.End) {
		start = int(s.End)
	}
	return Span{File: s.File, Start: uint32(start), End: s.End}
}
