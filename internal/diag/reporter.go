package diag

import "erblint/internal/source"

// Reporter — минимальный контракт получения оффенсов от правил.
// Реализации: BagReporter (кладёт в Bag), DedupReporter, SeverityReporter.
type Reporter interface {
	Report(o Offense)
}

// ReportBuilder accumulates offense details before emitting to Reporter.
type ReportBuilder struct {
	reporter Reporter
	off      Offense
	emitted  bool
}

// NewReportBuilder constructs a builder bound to Reporter.
func NewReportBuilder(r Reporter, sev Severity, linter string, rng source.Range, msg string) *ReportBuilder {
	return &ReportBuilder{
		reporter: r,
		off: Offense{
			Linter:   linter,
			Range:    rng,
			Message:  msg,
			Severity: sev,
		},
	}
}

// ReportOffense is a shortcut for error-level offenses, the default for every linter.
func ReportOffense(r Reporter, linter string, rng source.Range, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevError, linter, rng, msg)
}

// WithContext attaches correction data.
func (b *ReportBuilder) WithContext(ctx any) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.off.Context = ctx
	return b
}

// Emit sends the offense to the underlying reporter exactly once.
func (b *ReportBuilder) Emit() {
	if b == nil || b.emitted {
		return
	}
	if b.reporter != nil {
		b.reporter.Report(b.off)
	}
	b.emitted = true
}

// Offense returns the accumulated offense without emitting.
func (b *ReportBuilder) Offense() Offense {
	if b == nil {
		return Offense{}
	}
	return b.off
}

// BagReporter — адаптер, который пишет в *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(o Offense) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(o)
}

// SeverityReporter overrides the severity of every offense it forwards.
// The engine wraps rules with it when the config sets a per-linter severity.
type SeverityReporter struct {
	Next     Reporter
	Severity Severity
}

func (r SeverityReporter) Report(o Offense) {
	if r.Next == nil {
		return
	}
	o.Severity = r.Severity
	r.Next.Report(o)
}
