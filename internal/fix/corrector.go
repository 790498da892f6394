package fix

import (
	"errors"
	"fmt"
	"sort"

	"erblint/internal/diag"
	"erblint/internal/source"
)

// ErrNoCorrections is returned when no correction was applied.
var ErrNoCorrections = errors.New("no applicable corrections found")

// Mode determines which candidates are applied.
type Mode uint8

const (
	// ModeOnce applies only the first correctable offense in document order.
	ModeOnce Mode = iota
	// ModeAll applies every correctable offense that does not conflict.
	ModeAll
	// ModeSelected applies the offenses whose indices are listed in Options.Indices.
	ModeSelected
)

func (m Mode) String() string {
	switch m {
	case ModeOnce:
		return "once"
	case ModeAll:
		return "all"
	case ModeSelected:
		return "selected"
	default:
		return "unknown"
	}
}

// Options configures how candidates are selected.
type Options struct {
	Mode    Mode
	Indices []int
}

// Candidate is one correctable offense.
type Candidate struct {
	Offense diag.Offense
	// Index is the position of the offense in the engine's offense list.
	Index int
	// RuleOrder is the registration order of the linter that produced the offense.
	RuleOrder int
	Procedure Procedure
}

// Applied records a correction that made it into the output.
type Applied struct {
	Linter    string
	Message   string
	Range     source.Range
	EditCount int
}

// Skipped captures a correction that was not applied, with a reason.
type Skipped struct {
	Linter  string
	Message string
	Range   source.Range
	Reason  string
}

// Result aggregates the corrected content with applied and skipped corrections.
// Errors holds ErrForbiddenOperation and procedure failures, wrapped with the linter name.
type Result struct {
	Content []byte
	// Edits are the applied edits in original coordinates, sorted by position.
	Edits   []Edit
	Applied []Applied
	Skipped []Skipped
	Errors  []error
}

// Changed reports whether any correction was applied.
func (r *Result) Changed() bool {
	return r != nil && len(r.Applied) > 0
}

// Corrector applies correction procedures to an immutable original content.
type Corrector struct {
	content    []byte
	candidates []Candidate
}

// NewCorrector creates a corrector; content is never modified.
func NewCorrector(content []byte, candidates []Candidate) *Corrector {
	cands := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Procedure != nil {
			cands = append(cands, c)
		}
	}
	return &Corrector{content: content, candidates: cands}
}

// Correct selects candidates according to opts and applies them in order.
// Overlapping candidates are skipped deterministically: the earlier one in
// (begin, end, rule order, emission order) wins.
func (c *Corrector) Correct(opts Options) (*Result, error) {
	result := &Result{
		Content: c.content,
		Applied: make([]Applied, 0),
		Skipped: make([]Skipped, 0),
	}
	if len(c.candidates) == 0 {
		return result, ErrNoCorrections
	}

	cands := append([]Candidate(nil), c.candidates...)
	sortCandidates(cands)

	selected := selectCandidates(cands, opts)
	if len(selected) == 0 {
		return result, ErrNoCorrections
	}

	applyCandidates(c.content, selected, result)
	if len(result.Applied) == 0 {
		return result, ErrNoCorrections
	}
	return result, nil
}

// sortCandidates sorts the candidate slice in-place to produce a deterministic
// application order: range begin, range end, rule registration order, emission order.
func sortCandidates(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		oi, oj := candidates[i].Offense, candidates[j].Offense
		if oi.Range.Begin != oj.Range.Begin {
			return oi.Range.Begin < oj.Range.Begin
		}
		if oi.Range.End != oj.Range.End {
			return oi.Range.End < oj.Range.End
		}
		if candidates[i].RuleOrder != candidates[j].RuleOrder {
			return candidates[i].RuleOrder < candidates[j].RuleOrder
		}
		return candidates[i].Index < candidates[j].Index
	})
}

func selectCandidates(candidates []Candidate, opts Options) []Candidate {
	switch opts.Mode {
	case ModeAll:
		return candidates
	case ModeOnce:
		return candidates[:1]
	case ModeSelected:
		want := make(map[int]bool, len(opts.Indices))
		for _, idx := range opts.Indices {
			want[idx] = true
		}
		selected := make([]Candidate, 0, len(opts.Indices))
		for _, cand := range candidates {
			if want[cand.Index] {
				selected = append(selected, cand)
			}
		}
		return selected
	default:
		return nil
	}
}

func applyCandidates(original []byte, selected []Candidate, result *Result) {
	working := original
	applied := make([]Edit, 0)
	aborted := make(map[string]bool)

	for _, cand := range selected {
		off := cand.Offense
		skip := func(reason string) {
			result.Skipped = append(result.Skipped, Skipped{
				Linter:  off.Linter,
				Message: off.Message,
				Range:   off.Range,
				Reason:  reason,
			})
		}

		if aborted[off.Linter] {
			skip("linter aborted after a forbidden operation")
			continue
		}

		splicer := NewSplicer(original)
		if err := cand.Procedure(splicer); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("%s: %w", off.Linter, err))
			if errors.Is(err, ErrForbiddenOperation) {
				aborted[off.Linter] = true
			}
			skip(err.Error())
			continue
		}
		edits := splicer.Edits()
		if len(edits) == 0 {
			skip("correction produced no edits")
			continue
		}
		if conflictsWithExisting(applied, edits) {
			skip("conflicts with previously applied edits")
			continue
		}

		next, err := splice(working, applied, edits)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("%s: %w", off.Linter, err))
			aborted[off.Linter] = true
			skip(err.Error())
			continue
		}
		working = next
		for _, e := range edits {
			applied = insertEditSorted(applied, e)
		}
		result.Applied = append(result.Applied, Applied{
			Linter:    off.Linter,
			Message:   off.Message,
			Range:     off.Range,
			EditCount: len(edits),
		})
	}
	result.Content = working
	result.Edits = applied
}

// splice applies edits (original coordinates) to working, which already contains prior.
// Edits are applied back to front so earlier splices never shift later offsets; edits at
// the same position are applied in reverse recording order so they appear in recording order.
func splice(working []byte, prior, edits []Edit) ([]byte, error) {
	order := make([]int, len(edits))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ea, eb := edits[order[a]], edits[order[b]]
		if ea.Begin != eb.Begin {
			return ea.Begin > eb.Begin
		}
		if ea.End != eb.End {
			return ea.End > eb.End
		}
		return order[a] > order[b]
	})

	out := append([]byte(nil), working...)
	for _, idx := range order {
		edit := edits[idx]
		start := int(edit.Begin) + cumulativeDelta(prior, int(edit.Begin), true)
		end := start
		if !edit.empty() {
			end = int(edit.End) + cumulativeDelta(prior, int(edit.End), false)
		}
		if start < 0 || end < start || end > len(out) {
			return nil, fmt.Errorf("%w: edit span out of range", ErrForbiddenOperation)
		}
		if !edit.empty() && string(out[start:end]) != edit.OldText {
			return nil, fmt.Errorf("%w: existing text does not match expected content", ErrForbiddenOperation)
		}
		suffix := append([]byte(nil), out[end:]...)
		out = append(append(out[:start], edit.NewText...), suffix...)
	}
	return out, nil
}

func conflictsWithExisting(existing, edits []Edit) bool {
	for _, prev := range existing {
		for _, cand := range edits {
			if spansConflict(prev, cand) {
				return true
			}
		}
	}
	return false
}

// spansConflict reports whether two edits overlap.
// Spans are treated as half-open intervals [Begin, End). Two zero-length edits
// never conflict. A zero-length edit conflicts with a non-zero span if its
// position is within that span (Begin <= pos < End). For two non-zero spans,
// any overlap yields a conflict.
func spansConflict(a, b Edit) bool {
	if a.empty() && b.empty() {
		return false
	}
	if a.empty() {
		return b.Begin <= a.Begin && a.Begin < b.End
	}
	if b.empty() {
		return a.Begin <= b.Begin && b.Begin < a.End
	}
	return a.Begin < b.End && b.Begin < a.End
}

// cumulativeDelta is the length change introduced by applied edits that end at or before pos.
// Insertions sitting exactly at pos count only when atStart is set, so a new edit ending
// at pos never swallows text inserted there.
func cumulativeDelta(edits []Edit, pos int, atStart bool) int {
	delta := 0
	for _, e := range edits {
		eStart := int(e.Begin)
		if eStart > pos {
			break
		}
		eEnd := int(e.End)
		if eEnd < pos || (eEnd == pos && (atStart || !e.empty())) {
			delta += len(e.NewText) - (eEnd - eStart)
		}
	}
	return delta
}

func insertEditSorted(edits []Edit, edit Edit) []Edit {
	insertIdx := sort.Search(len(edits), func(i int) bool {
		if edits[i].Begin == edit.Begin {
			return edits[i].End > edit.End
		}
		return edits[i].Begin > edit.Begin
	})
	edits = append(edits, Edit{})
	copy(edits[insertIdx+1:], edits[insertIdx:])
	edits[insertIdx] = edit
	return edits
}
