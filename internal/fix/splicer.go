package fix

import (
	"errors"
	"fmt"

	"erblint/internal/source"
)

// ErrForbiddenOperation is returned when a correction tries to edit text that does not
// match what the offense saw, edits outside the document, or overlaps its own edits.
var ErrForbiddenOperation = errors.New("forbidden correction operation")

// Edit is a single splice in original document coordinates.
// OldText guards the edit: it must equal the bytes currently at [Begin, End).
type Edit struct {
	Begin   uint32
	End     uint32
	NewText string
	OldText string
}

func (e Edit) empty() bool {
	return e.Begin == e.End
}

// Procedure records the edits of one correction. It must not have other side effects.
type Procedure func(s *Splicer) error

// Splicer accumulates edits against the original content. Nothing is applied until the
// Corrector decides the whole procedure fits.
type Splicer struct {
	content []byte
	edits   []Edit
}

// NewSplicer creates a splicer over content.
func NewSplicer(content []byte) *Splicer {
	return &Splicer{content: content}
}

// Edits returns the recorded edits in recording order.
func (s *Splicer) Edits() []Edit {
	return s.edits
}

// Content returns the original bytes the splicer validates against.
func (s *Splicer) Content() []byte {
	return s.content
}

func (s *Splicer) add(e Edit) error {
	if int(e.End) > len(s.content) || e.Begin > e.End {
		return fmt.Errorf("%w: edit %d..%d outside document of %d bytes", ErrForbiddenOperation, e.Begin, e.End, len(s.content))
	}
	if got := string(s.content[e.Begin:e.End]); got != e.OldText {
		return fmt.Errorf("%w: expected %q at %d..%d, found %q", ErrForbiddenOperation, e.OldText, e.Begin, e.End, got)
	}
	for _, prev := range s.edits {
		if spansConflict(prev, e) {
			return fmt.Errorf("%w: edit %d..%d overlaps %d..%d", ErrForbiddenOperation, e.Begin, e.End, prev.Begin, prev.End)
		}
	}
	s.edits = append(s.edits, e)
	return nil
}

// Replace replaces the text covered by r.
func (s *Splicer) Replace(r source.Range, text string) error {
	return s.add(Edit{Begin: r.Begin, End: r.End, NewText: text, OldText: r.Text})
}

// Remove deletes the text covered by r.
func (s *Splicer) Remove(r source.Range) error {
	return s.Replace(r, "")
}

// InsertBefore inserts text at r.Begin.
func (s *Splicer) InsertBefore(r source.Range, text string) error {
	return s.add(Edit{Begin: r.Begin, End: r.Begin, NewText: text})
}

// InsertAfter inserts text at r.End.
func (s *Splicer) InsertAfter(r source.Range, text string) error {
	return s.add(Edit{Begin: r.End, End: r.End, NewText: text})
}

// RemoveLeading deletes the first n bytes of r.
func (s *Splicer) RemoveLeading(r source.Range, n uint32) error {
	if n > r.Len() {
		return fmt.Errorf("%w: cannot remove %d leading bytes of %s", ErrForbiddenOperation, n, r)
	}
	return s.add(Edit{Begin: r.Begin, End: r.Begin + n, OldText: r.Text[:n]})
}

// RemoveTrailing deletes the last n bytes of r.
func (s *Splicer) RemoveTrailing(r source.Range, n uint32) error {
	if n > r.Len() {
		return fmt.Errorf("%w: cannot remove %d trailing bytes of %s", ErrForbiddenOperation, n, r)
	}
	return s.add(Edit{Begin: r.End - n, End: r.End, OldText: r.Text[r.Len()-n:]})
}

// Wrap surrounds r with the tag-boundary markers start and end.
func (s *Splicer) Wrap(r source.Range, start, end string) error {
	if err := s.InsertBefore(r, start); err != nil {
		return err
	}
	return s.InsertAfter(r, end)
}
