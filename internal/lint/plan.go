package lint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"erblint/internal/diag"

	"gopkg.in/yaml.v3"
)

// Keys shared by every linter section; they are handled here and never reach the
// linter's own option struct.
const (
	keyEnabled  = "enabled"
	keyExclude  = "exclude"
	keySeverity = "severity"
)

// PlannedRule is one enabled linter with validated options.
type PlannedRule struct {
	Entry       *Entry
	Config      any
	Severity    diag.Severity
	SeveritySet bool
	Exclude     []string

	exclude *GlobMatcher
}

// Instance is a freshly built rule ready to run on one document.
type Instance struct {
	Rule        Rule
	Order       int
	Severity    diag.Severity
	SeveritySet bool
}

// Plan is the validated linter configuration, built once and shared read-only by workers.
type Plan struct {
	Rules  []PlannedRule
	digest string
}

// BuildPlan validates the linter sections against reg. Every problem is a *ConfigError.
func BuildPlan(reg *Registry, linters map[string]map[string]any, enableDefaults bool) (*Plan, error) {
	names := make([]string, 0, len(linters))
	for name := range linters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, ok := reg.Lookup(name); !ok {
			return nil, &ConfigError{Linter: name, Err: ErrUnknownLinter}
		}
	}

	plan := &Plan{Rules: make([]PlannedRule, 0, len(reg.Entries()))}
	h := sha256.New()
	for _, entry := range reg.Entries() {
		raw := linters[entry.Name]
		enabled := enableDefaults && entry.EnabledByDefault
		rest := make(map[string]any, len(raw))
		pr := PlannedRule{Entry: entry, Severity: diag.SevError}

		for key, val := range raw {
			switch key {
			case keyEnabled:
				b, ok := val.(bool)
				if !ok {
					return nil, &ConfigError{Linter: entry.Name, Key: key, Err: fmt.Errorf("%w: expected a boolean, got %T", ErrInvalidOption, val)}
				}
				enabled = b
			case keyExclude:
				globs, err := stringList(val)
				if err != nil {
					return nil, &ConfigError{Linter: entry.Name, Key: key, Err: err}
				}
				pr.Exclude = globs
			case keySeverity:
				s, _ := val.(string)
				sev, err := diag.ParseSeverity(s)
				if err != nil {
					return nil, &ConfigError{Linter: entry.Name, Key: key, Err: fmt.Errorf("%w: %w", ErrInvalidOption, err)}
				}
				pr.Severity, pr.SeveritySet = sev, true
			default:
				rest[key] = val
			}
		}
		if !enabled {
			continue
		}

		cfg, err := entry.Decode(rest)
		if err != nil {
			return nil, err
		}
		// конструктор тоже проверяет опции (например, имя стратегии коррекции)
		if _, err := entry.Build(cfg); err != nil {
			return nil, err
		}
		pr.Config = cfg
		pr.exclude = NewGlobMatcher(nil, pr.Exclude)
		plan.Rules = append(plan.Rules, pr)

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, &ConfigError{Linter: entry.Name, Err: err}
		}
		fmt.Fprintf(h, "%s\x00%s\x00%d:%v\x00%v\x00", entry.Name, data, pr.Severity, pr.SeveritySet, pr.Exclude)
	}
	plan.digest = hex.EncodeToString(h.Sum(nil))
	return plan, nil
}

// Digest identifies the plan for cache keys.
func (p *Plan) Digest() string {
	return p.digest
}

// Names lists enabled linters in rule order.
func (p *Plan) Names() []string {
	out := make([]string, 0, len(p.Rules))
	for _, r := range p.Rules {
		out = append(out, r.Entry.Name)
	}
	return out
}

// Instantiate builds fresh rule instances for the document at path, skipping
// linters whose exclude patterns match it.
func (p *Plan) Instantiate(path string) ([]Instance, error) {
	out := make([]Instance, 0, len(p.Rules))
	for _, pr := range p.Rules {
		if pr.exclude.Excluded(path) {
			continue
		}
		rule, err := pr.Entry.Build(pr.Config)
		if err != nil {
			return nil, err
		}
		out = append(out, Instance{
			Rule:        rule,
			Order:       pr.Entry.Order,
			Severity:    pr.Severity,
			SeveritySet: pr.SeveritySet,
		})
	}
	return out, nil
}

func stringList(val any) ([]string, error) {
	switch v := val.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{v}, nil
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: expected a list of strings, got %T", ErrInvalidOption, item)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: expected a list of strings, got %T", ErrInvalidOption, val)
}
