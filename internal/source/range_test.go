package source

import (
	"testing"
)

func TestRangeString(t *testing.T) {
	tests := []struct {
		r    Range
		want string
	}{
		{Range{Begin: 8, End: 30}, "8..29"},
		{Range{Begin: 5, End: 5}, "5..4"},
		{Range{Begin: 0, End: 0}, "0..-1"},
		{Range{Begin: 1, End: 7}, "1..6"},
	}
	for _, tt := range tests {
		if got := tt.r.String(); got != tt.want {
			t.Errorf("%+v.String() = %q, want %q", tt.r, got, tt.want)
		}
	}
}

func TestNewRange(t *testing.T) {
	fs := NewFileSet()
	file := fs.Get(fs.AddVirtual("r.erb", []byte(`<script type="text/yavascript"></script>`)))

	r, err := NewRange(file, 8, 30)
	if err != nil {
		t.Fatalf("NewRange: %v", err)
	}
	if r.Text != `type="text/yavascript"` {
		t.Errorf("Text = %q", r.Text)
	}
	if r.Len() != 22 || r.Empty() {
		t.Errorf("Len/Empty mismatch: %d %v", r.Len(), r.Empty())
	}
	if sp := r.Span(file.ID); sp.Start != 8 || sp.End != 30 {
		t.Errorf("Span() = %+v", sp)
	}
	if back := file.SpanRange(r.Span(file.ID)); back != r {
		t.Errorf("SpanRange round trip = %+v", back)
	}

	if _, err := NewRange(file, 10, 5); err == nil {
		t.Error("expected error for begin > end")
	}
	if _, err := NewRange(file, 0, 1000); err == nil {
		t.Error("expected error for end past content")
	}

	insertion := MustRange(file, 40, 40)
	if !insertion.Empty() || insertion.Text != "" {
		t.Errorf("insertion = %+v", insertion)
	}
}

func TestFragment(t *testing.T) {
	fs := NewFileSet()
	file := fs.Get(fs.AddVirtual("f.erb", []byte("<a>\nb\nc</a>")))
	frag := file.Fragment(Span{File: file.ID, Start: 3, End: 7})
	if string(frag.Content) != "\nb\nc" {
		t.Fatalf("fragment = %q", frag.Content)
	}
	if len(frag.LineIdx) != 2 || frag.LineIdx[0] != 0 {
		t.Errorf("LineIdx = %v", frag.LineIdx)
	}
	if frag.ID != file.ID || frag.Flags&FileVirtual == 0 {
		t.Errorf("fragment metadata = %d %b", frag.ID, frag.Flags)
	}
}
