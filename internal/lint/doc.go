// Package lint defines the contracts between documents, rules and the engine:
// Document with explicit nested-context remapping, the Rule and Corrector
// interfaces, the rule Registry, option decoding and the validated Plan that
// the driver instantiates fresh rules from for every document.
package lint
