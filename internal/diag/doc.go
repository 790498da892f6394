// Package diag defines the offense model shared by the rules, the corrector and
// the output layer.
//
// Offense is the central record:
//
//   - Linter – name of the rule that produced it.
//   - Range – half-open byte range in the root document, with the covered text.
//   - Message – human oriented text; keep it short and actionable.
//   - Severity – Info, Warning or Error (default).
//   - Context – optional rule-private data consumed by that rule's autocorrect.
//
// Rules emit through a Reporter, usually via ReportOffense(...).WithContext(...).Emit().
// BagReporter collects into a Bag, DedupReporter drops repeats and SeverityReporter
// applies per-linter severity from the config.
//
// Package diag does no IO. Rendering lives in internal/diagfmt and applying
// corrections lives in internal/fix.
package diag
