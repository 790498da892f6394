package fix

import (
	"testing"

	"erblint/internal/source"
)

func TestRestoreMapsEditsToRawBytes(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddNormalized("mixed.erb", []byte("a \r\nb\nc")))
	if string(file.Content) != "a \nb\nc" {
		t.Fatalf("content = %q", file.Content)
	}

	edits := []Edit{
		{Begin: 1, End: 2, OldText: " "},
		{Begin: 2, End: 3, NewText: "\n\n", OldText: "\n"},
		{Begin: 4, End: 4, NewText: "!\n"},
	}
	got, err := Restore(file, edits)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if want := "a\r\n\r\nb!\n\nc"; string(got) != want {
		t.Fatalf("Restore = %q, want %q", got, want)
	}

	same, err := Restore(file, nil)
	if err != nil || string(same) != "a \r\nb\nc" {
		t.Fatalf("Restore without edits = %q, %v", same, err)
	}
}

func TestResultEditsAreSorted(t *testing.T) {
	content := "abc def"
	cands := []Candidate{
		{Offense: offense("B", content, 4, 7), Index: 1, Procedure: replacing(rng(content, 4, 7), "D")},
		{Offense: offense("A", content, 0, 3), Index: 0, Procedure: replacing(rng(content, 0, 3), "A")},
	}
	res, err := NewCorrector([]byte(content), cands).Correct(Options{Mode: ModeAll})
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}
	if len(res.Edits) != 2 || res.Edits[0].Begin != 0 || res.Edits[1].Begin != 4 {
		t.Fatalf("edits = %+v", res.Edits)
	}
}
