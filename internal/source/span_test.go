package source

import (
	"math"
	"testing"
)

func TestSpan_ShiftLeft(t *testing.T) {
	tests := []struct {
		name     string
		span     Span
		shift    uint32
		expected Span
	}{
		{"shift normal span left by 5", Span{File: 1, Start: 10, End: 20}, 5, Span{File: 1, Start: 5, End: 15}},
		{"shift by 0", Span{File: 1, Start: 10, End: 20}, 0, Span{File: 1, Start: 10, End: 20}},
		{"shift equals start", Span{File: 1, Start: 10, End: 20}, 10, Span{File: 1, Start: 0, End: 10}},
		{"shift larger than start returns original", Span{File: 1, Start: 10, End: 20}, 15, Span{File: 1, Start: 10, End: 20}},
		{"zero-length span", Span{File: 1, Start: 10, End: 10}, 3, Span{File: 1, Start: 7, End: 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.span.ShiftLeft(tt.shift); result != tt.expected {
				t.Errorf("ShiftLeft() = %+v, want %+v", result, tt.expected)
			}
		})
	}
}

func TestSpan_ShiftRight(t *testing.T) {
	s := Span{File: 2, Start: 3, End: 7}
	if got := s.ShiftRight(4); got != (Span{File: 2, Start: 7, End: 11}) {
		t.Errorf("ShiftRight() = %+v", got)
	}
	// переполнение не проверяется, но File сохраняется
	maxSpan := Span{File: 9, Start: math.MaxUint32 - 1, End: math.MaxUint32 - 1}
	if got := maxSpan.ShiftLeft(1); got.File != 9 || got.Start != math.MaxUint32-2 {
		t.Errorf("ShiftLeft(max) = %+v", got)
	}
}

func TestSpan_ResizeAndEndPoint(t *testing.T) {
	s := Span{File: 1, Start: 4, End: 10}
	if got := s.Resize(2); got != (Span{File: 1, Start: 4, End: 6}) {
		t.Errorf("Resize() = %+v", got)
	}
	if got := s.EndPoint(); !got.Empty() || got.Start != 10 {
		t.Errorf("EndPoint() = %+v", got)
	}
	if s.Len() != 6 {
		t.Errorf("Len() = %d", s.Len())
	}
}

func TestSpan_AdjustStart(t *testing.T) {
	s := Span{Start: 5, End: 9}
	tests := []struct {
		delta int
		want  Span
	}{
		{-2, Span{Start: 3, End: 9}},
		{-10, Span{Start: 0, End: 9}},
		{2, Span{Start: 7, End: 9}},
		{10, Span{Start: 9, End: 9}},
	}
	for _, tt := range tests {
		if got := s.AdjustStart(tt.delta); got != tt.want {
			t.Errorf("AdjustStart(%d) = %+v, want %+v", tt.delta, got, tt.want)
		}
	}
}

func TestSpan_ContainsCover(t *testing.T) {
	outer := Span{File: 1, Start: 0, End: 10}
	inner := Span{File: 1, Start: 2, End: 5}
	if !outer.Contains(inner) || inner.Contains(outer) {
		t.Error("Contains mismatch")
	}
	if outer.Contains(Span{File: 2, Start: 2, End: 5}) {
		t.Error("spans from different files must not contain each other")
	}
	if got := inner.Cover(Span{File: 1, Start: 4, End: 12}); got != (Span{File: 1, Start: 2, End: 12}) {
		t.Errorf("Cover() = %+v", got)
	}
}
