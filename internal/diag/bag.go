package diag

import (
	"sort"
)

// Bag is an ordered collection of offenses for one document.
type Bag struct {
	items []Offense
	max   int
}

// NewBag creates a bag that holds at most max offenses (0 means unlimited).
func NewBag(max int) *Bag {
	return &Bag{
		items: make([]Offense, 0, min(max, 64)),
		max:   max,
	}
}

// Add добавляет оффенс, учитывая лимит.
// Возвращает false, если оффенс не добавлен (достигнут лимит).
func (b *Bag) Add(o Offense) bool {
	if b.max > 0 && len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, o)
	return true
}

// HasErrors возвращает true, если есть хотя бы один оффенс с Severity >= Error
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// длина
func (b *Bag) Len() int {
	return len(b.items)
}

// Items возвращает read-only slice оффенсов.
// ВАЖНО: не модифицируйте возвращаемый срез! (он указывает на внутренний массив Bag)
func (b *Bag) Items() []Offense {
	return b.items
}

// Merge объединяет оффенсы из другого Bag.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	if b.max > 0 && len(b.items)+len(other.items) > b.max {
		b.max = len(b.items) + len(other.items)
	}
	b.items = append(b.items, other.items...)
}

// Sort orders offenses by begin, end, severity (desc) and linter name.
// The sort is stable, so offenses of one linter keep their emission order.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		oi, oj := b.items[i], b.items[j]
		if oi.Range.Begin != oj.Range.Begin {
			return oi.Range.Begin < oj.Range.Begin
		}
		if oi.Range.End != oj.Range.End {
			return oi.Range.End < oj.Range.End
		}
		if oi.Severity != oj.Severity {
			return oi.Severity > oj.Severity
		}
		return oi.Linter < oj.Linter
	})
}

type dedupKey struct {
	linter string
	sev    Severity
	begin  uint32
	end    uint32
	msg    string
}

func keyOf(o Offense) dedupKey {
	return dedupKey{
		linter: o.Linter,
		sev:    o.Severity,
		begin:  o.Range.Begin,
		end:    o.Range.End,
		msg:    o.Message,
	}
}

// Dedup drops repeated offenses with the same linter, range and message.
func (b *Bag) Dedup() {
	seen := make(map[dedupKey]bool)
	newitems := make([]Offense, 0, len(b.items))
	for _, o := range b.items {
		key := keyOf(o)
		if seen[key] {
			continue
		}
		seen[key] = true
		newitems = append(newitems, o)
	}
	b.items = newitems
}
